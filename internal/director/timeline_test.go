package director

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoseAt(t *testing.T) {
	nav, err := NewDirector(3).Navigate(GeometrySnapPoints(), nil)
	require.NoError(t, err)

	overview := Pose{CameraPos: Vec3{0, 300, 800}}
	topDown := Pose{CameraPos: Vec3{0, 800, 0}}
	right := Pose{CameraPos: Vec3{400, 200, 400}, Target: Vec3{200, 0, 0}}

	tests := []struct {
		name string
		t    float64
		want Pose
	}{
		{"before start", -1, overview},
		{"start", 0, overview},
		{"holding", 1.5, overview},
		{"halfway through transition", 2.25, Pose{CameraPos: Vec3{0, 550, 400}}},
		{"arrived", 3, topDown},
		{"last stop holds", 10.5, right},
		{"after end", 100, right},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nav.PoseAt(tt.t)
			for i := 0; i < 3; i++ {
				assert.InDelta(t, tt.want.CameraPos[i], got.CameraPos[i], 1e-9)
				assert.InDelta(t, tt.want.Target[i], got.Target[i], 1e-9)
			}
		})
	}
}

func TestDuration(t *testing.T) {
	nav, err := NewDirector(3).Navigate(HeuristicSnapPoints(), HeuristicTourOrder)
	require.NoError(t, err)
	assert.Equal(t, 15.0, nav.Duration())
	assert.Equal(t, 0.0, Navigation{}.Duration())
}

func TestPoseAtWithoutTour(t *testing.T) {
	nav := Navigation{SnapPoints: HeuristicSnapPoints()}
	assert.Equal(t, Vec3{0, 0, 1200}, nav.PoseAt(4).CameraPos)
	assert.Equal(t, Pose{}, Navigation{}.PoseAt(0))
}

func TestEaseInOutCubic(t *testing.T) {
	assert.Equal(t, 0.0, easeInOutCubic(0))
	assert.Equal(t, 0.5, easeInOutCubic(0.5))
	assert.Equal(t, 1.0, easeInOutCubic(1))
	assert.Less(t, easeInOutCubic(0.25), 0.25)
	assert.Greater(t, easeInOutCubic(0.75), 0.75)
}
