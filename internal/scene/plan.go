package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ivlev/pdf2scene/internal/layout"
	"github.com/ivlev/pdf2scene/internal/legos"
)

type Mode string

const (
	ModeGeometry  Mode = "geometry"
	ModeHeuristic Mode = "heuristic"
)

// Plan is the outcome of mode selection for one page. It is either a
// GeometryPlan or a HeuristicPlan.
type Plan interface {
	Mode() Mode
	isPlan()
}

// GeometryPlan embeds a brick model; Descriptor is never empty.
type GeometryPlan struct {
	Descriptor *legos.Descriptor
}

func (GeometryPlan) Mode() Mode { return ModeGeometry }
func (GeometryPlan) isPlan()    {}

// HeuristicPlan lifts the template regions out of the flat page.
type HeuristicPlan struct {
	Regions []layout.Region
}

func (HeuristicPlan) Mode() Mode { return ModeHeuristic }
func (HeuristicPlan) isPlan()    {}

// Page is one source image, identified by its 1-based index.
type Page struct {
	Index          int
	SourceFileName string
	ImageName      string // name of the copied page image, "0001.png" when empty
}

// ID is the zero-padded index used for scene ids and output paths.
func (p Page) ID() string {
	return fmt.Sprintf("%04d", p.Index)
}

func (p Page) Image() string {
	if p.ImageName != "" {
		return p.ImageName
	}
	return p.ID() + ".png"
}

// Name is the source file name without its extension.
func (p Page) Name() string {
	return strings.TrimSuffix(p.SourceFileName, filepath.Ext(p.SourceFileName))
}
