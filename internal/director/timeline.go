package director

// Pose is the camera at one moment of the tour.
type Pose struct {
	CameraPos Vec3 `json:"cameraPos"`
	Target    Vec3 `json:"target"`
}

// Duration is the length of one pass through the tour in seconds.
func (n Navigation) Duration() float64 {
	var total float64
	for _, s := range n.Tour {
		total += s.Seconds
	}
	return total
}

// PoseAt samples the tour at t seconds. Each stop holds for the first half
// of its dwell time and eases toward the next stop during the second half;
// the last stop holds. Stops naming unknown snap points are skipped.
func (n Navigation) PoseAt(t float64) Pose {
	stops := n.resolve()
	if len(stops) == 0 {
		d := n.Default()
		return Pose{CameraPos: d.CameraPos, Target: d.Target}
	}

	var start float64
	for i, s := range stops {
		end := start + s.seconds
		if t < end || i == len(stops)-1 {
			if i == len(stops)-1 || t <= start+s.seconds/2 {
				return s.pose
			}
			k := (t - start - s.seconds/2) / (s.seconds / 2)
			return lerpPose(s.pose, stops[i+1].pose, easeInOutCubic(k))
		}
		start = end
	}
	return stops[len(stops)-1].pose
}

type timedPose struct {
	pose    Pose
	seconds float64
}

func (n Navigation) resolve() []timedPose {
	byName := make(map[string]SnapPoint, len(n.SnapPoints))
	for _, p := range n.SnapPoints {
		byName[p.Name] = p
	}
	stops := make([]timedPose, 0, len(n.Tour))
	for _, s := range n.Tour {
		p, ok := byName[s.SnapPoint]
		if !ok || s.Seconds <= 0 {
			continue
		}
		stops = append(stops, timedPose{pose: Pose{CameraPos: p.CameraPos, Target: p.Target}, seconds: s.Seconds})
	}
	return stops
}

func lerpPose(a, b Pose, t float64) Pose {
	return Pose{CameraPos: lerpVec(a.CameraPos, b.CameraPos, t), Target: lerpVec(a.Target, b.Target, t)}
}

func lerpVec(a, b Vec3, t float64) Vec3 {
	return Vec3{lerp(a[0], b[0], t), lerp(a[1], b[1], t), lerp(a[2], b[2], t)}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// easeInOutCubic maps [0,1] onto itself with zero slope at both ends.
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}
