package scene

import (
	"fmt"
	"log/slog"

	"github.com/ivlev/pdf2scene/internal/config"
	"github.com/ivlev/pdf2scene/internal/director"
	"github.com/ivlev/pdf2scene/internal/effects"
	"github.com/ivlev/pdf2scene/internal/layout"
	"github.com/ivlev/pdf2scene/internal/legos"
)

// GeometryResolver finds the optional descriptor of a page; nil means none.
type GeometryResolver interface {
	Resolve(pageIndex int) (*legos.Descriptor, error)
}

type Canvas struct {
	Width, Height int
}

type palette struct {
	background string
}

var (
	geometryPalette  = palette{background: "#0b0d12"}
	heuristicPalette = palette{background: "#050505"}
)

const (
	pagesPrefix   = "../pages/"
	contextID     = "title-context"
	cameraFOV     = 50
	fogNear       = 800
	fogFar        = 3000
	gold          = "#c9a227"
	teal          = "#2dd4bf"
	groundColor   = "#050505"
	primitiveGlow = 0.4
)

// contextPosition keeps the title strip above and in front of the model.
var contextPosition = [3]int{0, 450, 100}

// Assembler turns a page into a scene document.
type Assembler struct {
	Canvas      Canvas
	Template    layout.Template
	Decorations bool
	Director    *director.Director
	Resolver    GeometryResolver
	Logger      *slog.Logger
}

func NewAssembler(p config.SceneParams, resolver GeometryResolver, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		Canvas:      Canvas{Width: p.Width, Height: p.Height},
		Template:    layout.Template{Accents: p.Accents},
		Decorations: p.Decorations,
		Director:    director.NewDirector(p.DwellSeconds),
		Resolver:    resolver,
		Logger:      logger,
	}
}

// Build selects the mode for page and assembles its document.
func (a *Assembler) Build(page Page) (*Document, error) {
	plan, err := a.SelectPlan(page)
	if err != nil {
		return nil, err
	}
	return a.Assemble(page, plan)
}

// SelectPlan decides the mode once per page. A descriptor that exists but
// yields no geometry falls back to the heuristic layout with a warning.
func (a *Assembler) SelectPlan(page Page) (Plan, error) {
	if a.Resolver != nil {
		d, err := a.Resolver.Resolve(page.Index)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page.Index, err)
		}
		if !d.Empty() {
			return GeometryPlan{Descriptor: d}, nil
		}
		if d != nil {
			a.Logger.Warn("geometry descriptor yields no geometry, using cutouts",
				"page", page.Index, "file", d.Path, "marker", d.HasBody)
		}
	}
	return HeuristicPlan{Regions: layout.Generate(page.Index, a.Template)}, nil
}

// Assemble builds the document for an already selected plan.
func (a *Assembler) Assemble(page Page, plan Plan) (*Document, error) {
	entities := []Entity{a.background()}
	var (
		ldraw  = []string{}
		points []director.SnapPoint
		order  []string
		pal    palette
	)

	switch p := plan.(type) {
	case GeometryPlan:
		if p.Descriptor.Empty() {
			return nil, fmt.Errorf("page %d: geometry plan without geometry", page.Index)
		}
		entities = append(entities, a.titleContext())
		ldraw = append(ldraw, p.Descriptor.Lines...)
		points = director.GeometrySnapPoints()
		pal = geometryPalette
	case HeuristicPlan:
		for _, r := range p.Regions {
			entities = append(entities, a.cutout(r))
		}
		if a.Decorations {
			entities = append(entities, decorations()...)
		}
		points = director.HeuristicSnapPoints()
		order = director.HeuristicTourOrder
		pal = heuristicPalette
	default:
		return nil, fmt.Errorf("page %d: unsupported plan %T", page.Index, plan)
	}

	nav, err := a.Director.Navigate(points, order)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page.Index, err)
	}
	cam := nav.Default()
	src := pagesPrefix + page.Image()

	return &Document{
		ID:          page.ID(),
		Title:       fmt.Sprintf("Page %d: %s", page.Index, page.Name()),
		SourceImage: src,
		Units:       Units{System: "pixels", Scale: 1},
		Camera: Camera{
			Type:     "perspective",
			Position: cam.CameraPos,
			Target:   cam.Target,
			FOV:      cameraFOV,
		},
		Environment: Environment{
			Background: pal.background,
			Fog:        Fog{Enabled: true, Color: pal.background, Near: fogNear, Far: fogFar},
		},
		Lights: lights(),
		Assets: Assets{
			Textures: []Texture{{ID: PageTexture, Src: src}},
			LDraw:    ldraw,
		},
		Entities:   entities,
		Navigation: nav,
	}, nil
}

func (a *Assembler) background() Entity {
	return Entity{
		ID:       BackgroundID,
		Type:     TypePlane,
		Texture:  PageTexture,
		Size:     []int{a.Canvas.Width, a.Canvas.Height},
		Position: [3]int{0, 0, 0},
		Rotation: &[3]float64{0, 0, 0},
		Material: effects.Background(),
	}
}

func (a *Assembler) titleContext() Entity {
	t := layout.TitleBar
	pl := layout.Project(t, a.Canvas.Width, a.Canvas.Height)
	return Entity{
		ID:        contextID,
		Type:      TypeCutout,
		Label:     t.Label,
		FromImage: PageTexture,
		Cutout:    &Cutout{X: t.X, Y: t.Y, W: t.W, H: t.H},
		Position:  contextPosition,
		Size:      pl.Size[:],
		Material:  effects.Context(),
	}
}

func (a *Assembler) cutout(r layout.Region) Entity {
	pl := layout.Project(r, a.Canvas.Width, a.Canvas.Height)
	return Entity{
		ID:        r.ID,
		Type:      TypeCutout,
		Label:     r.Label,
		FromImage: PageTexture,
		Cutout:    &Cutout{X: r.X, Y: r.Y, W: r.W, H: r.H},
		Position:  pl.Position,
		Size:      pl.Size[:],
		Material:  effects.Cutout(),
		Animation: effects.Float(r.ID),
	}
}

// decorations is a connector rod between two nodes, floating in front of the
// panel grid. Cylinder size is [radius, length]; sphere size is [radius].
func decorations() []Entity {
	return []Entity{
		{
			ID:       "connector",
			Type:     TypePrimitive,
			Shape:    "cylinder",
			Position: [3]int{0, -60, 130},
			Size:     []int{6, 600},
			Rotation: &[3]float64{0, 0, 90},
			Material: effects.Primitive(gold, primitiveGlow),
		},
		{
			ID:       "node-a",
			Type:     TypePrimitive,
			Shape:    "sphere",
			Position: [3]int{-300, -60, 130},
			Size:     []int{24},
			Material: effects.Primitive(gold, primitiveGlow),
		},
		{
			ID:       "node-b",
			Type:     TypePrimitive,
			Shape:    "sphere",
			Position: [3]int{300, -60, 130},
			Size:     []int{24},
			Material: effects.Primitive(teal, primitiveGlow),
		},
	}
}

func lights() []Light {
	return []Light{
		{Type: "hemisphere", SkyColor: gold, GroundColor: groundColor, Intensity: 0.5},
		{Type: "directional", Position: &director.Vec3{300, 800, 500}, Intensity: 1.2, Color: "#ffffff"},
		{Type: "point", Position: &director.Vec3{-400, 300, 500}, Intensity: 0.8, Color: gold},
		{Type: "point", Position: &director.Vec3{400, -200, 500}, Intensity: 0.4, Color: teal},
	}
}
