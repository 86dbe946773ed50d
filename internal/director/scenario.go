package director

// Vec3 is a scene-space point in pixels.
type Vec3 [3]float64

// SnapPoint is a named camera pose.
type SnapPoint struct {
	Name      string `json:"name"`
	CameraPos Vec3   `json:"cameraPos"`
	Target    Vec3   `json:"target"`
}

// TourStop is one visit of the automated tour.
type TourStop struct {
	SnapPoint string  `json:"snapPoint"`
	Seconds   float64 `json:"seconds"` // dwell time at the stop
}

// Navigation holds the snap points (the first is the default camera) and the
// tour through them.
type Navigation struct {
	SnapPoints []SnapPoint `json:"snapPoints"`
	Tour       []TourStop  `json:"tour"`
}

// Default returns the first snap point, or a zero pose when there is none.
func (n Navigation) Default() SnapPoint {
	if len(n.SnapPoints) == 0 {
		return SnapPoint{}
	}
	return n.SnapPoints[0]
}
