package layout

import "math"

// Placement is a region mapped into scene space: pixels, canvas-centred,
// y up, z toward the camera.
type Placement struct {
	Position [3]int
	Size     [2]int
}

// Project maps a region onto a canvas of the given pixel size. Only integer
// rounding is applied so cutouts line up with the background image.
func Project(r Region, canvasW, canvasH int) Placement {
	w, h := float64(canvasW), float64(canvasH)
	return Placement{
		Position: [3]int{
			round((r.X + r.W/2 - 0.5) * w),
			round((0.5 - r.Y - r.H/2) * h),
			r.Depth,
		},
		Size: [2]int{
			round(r.W * w),
			round(r.H * h),
		},
	}
}

func round(v float64) int {
	return int(math.Round(v))
}
