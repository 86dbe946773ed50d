package scene

import (
	"github.com/ivlev/pdf2scene/internal/director"
	"github.com/ivlev/pdf2scene/internal/effects"
)

// Document is the per-page scene consumed by the 3D viewer.
type Document struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	SourceImage string              `json:"sourceImage"`
	Units       Units               `json:"units"`
	Camera      Camera              `json:"camera"`
	Environment Environment         `json:"environment"`
	Lights      []Light             `json:"lights"`
	Assets      Assets              `json:"assets"`
	Entities    []Entity            `json:"entities"`
	Navigation  director.Navigation `json:"navigation"`
}

type Units struct {
	System string  `json:"system"`
	Scale  float64 `json:"scale"`
}

type Camera struct {
	Type     string        `json:"type"`
	Position director.Vec3 `json:"position"`
	Target   director.Vec3 `json:"target"`
	FOV      float64       `json:"fov"`
}

type Environment struct {
	Background string `json:"background"`
	Fog        Fog    `json:"fog"`
}

type Fog struct {
	Enabled bool    `json:"enabled"`
	Color   string  `json:"color"`
	Near    float64 `json:"near"`
	Far     float64 `json:"far"`
}

type Light struct {
	Type        string         `json:"type"`
	Position    *director.Vec3 `json:"position,omitempty"`
	Color       string         `json:"color,omitempty"`
	SkyColor    string         `json:"skyColor,omitempty"`
	GroundColor string         `json:"groundColor,omitempty"`
	Intensity   float64        `json:"intensity"`
}

type Texture struct {
	ID  string `json:"id"`
	Src string `json:"src"`
}

// Assets.LDraw is never nil so it always encodes as a JSON array.
type Assets struct {
	Textures []Texture `json:"textures"`
	LDraw    []string  `json:"ldraw"`
}

const (
	TypePlane     = "plane"
	TypeCutout    = "cutoutPlane"
	TypePrimitive = "primitive"

	BackgroundID = "background"
	PageTexture  = "page"
)

// Cutout is the normalized source rectangle a cutout plane samples.
type Cutout struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Entity is a placed element. Which optional fields are set depends on Type.
type Entity struct {
	ID        string             `json:"id"`
	Type      string             `json:"type"`
	Shape     string             `json:"shape,omitempty"`
	Label     string             `json:"label,omitempty"`
	Texture   string             `json:"texture,omitempty"`
	FromImage string             `json:"fromImage,omitempty"`
	Cutout    *Cutout            `json:"cutout,omitempty"`
	Position  [3]int             `json:"position"`
	Size      []int              `json:"size"`
	Rotation  *[3]float64        `json:"rotation,omitempty"`
	Material  effects.Material   `json:"material"`
	Animation *effects.Animation `json:"animation,omitempty"`
}

// Mode reports which construction path produced the document.
func (d *Document) Mode() Mode {
	if len(d.Assets.LDraw) > 0 {
		return ModeGeometry
	}
	return ModeHeuristic
}
