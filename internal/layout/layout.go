package layout

import "fmt"

// Region is a normalized rectangle of the page (origin top-left, y down)
// lifted to a synthetic depth.
type Region struct {
	ID    string  `json:"id" yaml:"id"`
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	W     float64 `json:"w" yaml:"w"`
	H     float64 `json:"h" yaml:"h"`
	Depth int     `json:"depth" yaml:"depth"`
	Label string  `json:"label" yaml:"label"`
}

// Template selects which optional regions are appended to the base layout.
type Template struct {
	Accents bool
}

const (
	TitleDepth     = 200
	panelBaseDepth = 60
	panelDepthStep = 30
)

// TitleBar is the first region of every layout and the only one reused in
// geometry mode.
var TitleBar = Region{ID: "title-bar", X: 0.05, Y: 0.02, W: 0.9, H: 0.12, Depth: TitleDepth, Label: "Title Region"}

var panels = []Region{
	{X: 0.02, Y: 0.18, W: 0.28, H: 0.35, Label: "Left Panel"},
	{X: 0.32, Y: 0.18, W: 0.36, H: 0.35, Label: "Center Panel"},
	{X: 0.70, Y: 0.18, W: 0.28, H: 0.35, Label: "Right Panel"},
	{X: 0.02, Y: 0.56, W: 0.45, H: 0.22, Label: "Bottom Left"},
	{X: 0.50, Y: 0.56, W: 0.48, H: 0.22, Label: "Bottom Right"},
	{X: 0.35, Y: 0.80, W: 0.30, H: 0.15, Label: "Footer"},
}

// accent markers float between the title bar and the top of the panel stack
var accents = []Region{
	{X: 0.29, Y: 0.15, W: 0.04, H: 0.04, Depth: 160, Label: "Focal Point Left"},
	{X: 0.67, Y: 0.15, W: 0.04, H: 0.04, Depth: 170, Label: "Focal Point Right"},
	{X: 0.48, Y: 0.53, W: 0.04, H: 0.04, Depth: 180, Label: "Focal Point Center"},
}

// Generate returns the cutout regions for a page: the title bar, the six grid
// panels at depth 60+30*i, then the accent markers when enabled. The result
// does not depend on pageIndex and is a fresh slice on every call.
func Generate(pageIndex int, t Template) []Region {
	regions := make([]Region, 0, 1+len(panels)+len(accents))
	regions = append(regions, TitleBar)

	for i, p := range panels {
		p.ID = fmt.Sprintf("region-%d", i+1)
		p.Depth = panelBaseDepth + i*panelDepthStep
		regions = append(regions, p)
	}

	if t.Accents {
		for i, a := range accents {
			a.ID = fmt.Sprintf("accent-%d", i+1)
			regions = append(regions, a)
		}
	}
	return regions
}
