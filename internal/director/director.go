package director

import (
	"errors"
	"fmt"
)

var ErrUnknownSnapPoint = errors.New("unknown snap point")

// Director builds the camera navigation of a scene.
type Director struct {
	DwellSeconds float64 // time spent at every tour stop
}

func NewDirector(dwell float64) *Director {
	if dwell <= 0 {
		dwell = 3.0
	}
	return &Director{DwellSeconds: dwell}
}

// Poses for a scene that embeds a brick model around the origin.
func GeometrySnapPoints() []SnapPoint {
	return []SnapPoint{
		{Name: "Overview", CameraPos: Vec3{0, 300, 800}, Target: Vec3{0, 0, 0}},
		{Name: "Top Down", CameraPos: Vec3{0, 800, 0}, Target: Vec3{0, 0, 0}},
		{Name: "Triage (Left)", CameraPos: Vec3{-400, 200, 400}, Target: Vec3{-200, 0, 0}},
		{Name: "Output (Right)", CameraPos: Vec3{400, 200, 400}, Target: Vec3{200, 0, 0}},
	}
}

// Poses for a flat page split into depth layers.
func HeuristicSnapPoints() []SnapPoint {
	return []SnapPoint{
		{Name: "Front View", CameraPos: Vec3{0, 0, 1200}, Target: Vec3{0, 0, 0}},
		{Name: "Top Down", CameraPos: Vec3{0, 800, 600}, Target: Vec3{0, 0, 0}},
		{Name: "Left Angle", CameraPos: Vec3{-600, 200, 1000}, Target: Vec3{0, 0, 0}},
		{Name: "Right Angle", CameraPos: Vec3{600, 200, 1000}, Target: Vec3{0, 0, 0}},
		{Name: "Close Up", CameraPos: Vec3{0, 0, 600}, Target: Vec3{0, 0, 100}},
	}
}

// HeuristicTourOrder sweeps across the layers instead of following the
// declaration order of HeuristicSnapPoints.
var HeuristicTourOrder = []string{"Front View", "Left Angle", "Close Up", "Right Angle", "Top Down"}

// Tour visits points in the given order, or in declaration order when order
// is empty. Points missing from order are visited afterwards so every snap
// point is reached.
func (d *Director) Tour(points []SnapPoint, order []string) ([]TourStop, error) {
	known := make(map[string]bool, len(points))
	for _, p := range points {
		known[p.Name] = true
	}

	stops := make([]TourStop, 0, len(points))
	visited := make(map[string]bool, len(points))
	for _, name := range order {
		if !known[name] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSnapPoint, name)
		}
		stops = append(stops, TourStop{SnapPoint: name, Seconds: d.DwellSeconds})
		visited[name] = true
	}
	for _, p := range points {
		if !visited[p.Name] {
			stops = append(stops, TourStop{SnapPoint: p.Name, Seconds: d.DwellSeconds})
		}
	}
	return stops, nil
}

// Navigate pairs points with their tour.
func (d *Director) Navigate(points []SnapPoint, order []string) (Navigation, error) {
	tour, err := d.Tour(points, order)
	if err != nil {
		return Navigation{}, err
	}
	return Navigation{SnapPoints: points, Tour: tour}, nil
}
