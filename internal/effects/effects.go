package effects

import "hash/fnv"

// Material describes how a plane or primitive is shaded.
type Material struct {
	Transparent bool    `json:"transparent"`
	AlphaMode   string  `json:"alphaMode,omitempty"`
	Opacity     float64 `json:"opacity"`
	Emissive    float64 `json:"emissive"`
	Color       string  `json:"color,omitempty"`
}

// Animation is a looping motion applied by the renderer.
type Animation struct {
	Type      string  `json:"type"`
	Amplitude float64 `json:"amplitude"`
	Speed     float64 `json:"speed"`
}

const (
	FloatAmplitude = 3
	minSpeed       = 0.5
	speedSteps     = 10
	speedStep      = 0.05
)

func Background() Material {
	return Material{Transparent: false, Opacity: 1.0, Emissive: 0.02}
}

// Cutout is the blended material used for heuristic cutout planes.
func Cutout() Material {
	return Material{Transparent: true, AlphaMode: "blend", Opacity: 0.95, Emissive: 0.08}
}

// Context is the material of the title cutout framing a geometry scene.
func Context() Material {
	return Material{Transparent: true, Opacity: 0.9, Emissive: 0.1}
}

func Primitive(color string, emissive float64) Material {
	return Material{Transparent: false, Opacity: 1.0, Emissive: emissive, Color: color}
}

// Float returns the floating animation for an entity. The speed is derived
// from the id alone, so it is stable across runs and varies between entities.
func Float(id string) *Animation {
	return &Animation{
		Type:      "float",
		Amplitude: FloatAmplitude,
		Speed:     Speed(id),
	}
}

// Speed maps id to one of 0.50, 0.55, ..., 0.95 using FNV-1a.
func Speed(id string) float64 {
	h := fnv.New32a()
	h.Write([]byte(id))
	step := h.Sum32() % speedSteps
	return minSpeed + float64(step)*speedStep
}
