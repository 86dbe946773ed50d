package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/pdf2scene/internal/config"
	"github.com/ivlev/pdf2scene/internal/legos"
)

type stubResolver map[int]*legos.Descriptor

func (s stubResolver) Resolve(pageIndex int) (*legos.Descriptor, error) {
	return s[pageIndex], nil
}

type failingResolver struct{ err error }

func (f failingResolver) Resolve(int) (*legos.Descriptor, error) { return nil, f.err }

func newTestAssembler(r GeometryResolver) *Assembler {
	return NewAssembler(config.Default().Params(), r, nil)
}

func countType(doc *Document, typ string) int {
	n := 0
	for _, e := range doc.Entities {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func entity(t *testing.T, doc *Document, id string) Entity {
	t.Helper()
	for _, e := range doc.Entities {
		if e.ID == id {
			return e
		}
	}
	t.Fatalf("entity %q not found", id)
	return Entity{}
}

func TestFallbackScenario(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene_01_pipeline.legos"), []byte("---\n1 16 0 0 0\n"), 0644))
	a := newTestAssembler(legos.NewResolver(dir, false, nil))

	page := Page{Index: 3, SourceFileName: "slide-three.png"}
	plan, err := a.SelectPlan(page)
	require.NoError(t, err)
	assert.Equal(t, ModeHeuristic, plan.Mode())

	doc, err := a.Assemble(page, plan)
	require.NoError(t, err)

	assert.Equal(t, []string{}, doc.Assets.LDraw)
	assert.Equal(t, 7, countType(doc, TypeCutout))
	assert.Equal(t, 1, countType(doc, TypePlane))
	assert.Len(t, doc.Entities, 8)
	assert.Equal(t, ModeHeuristic, doc.Mode())
	require.NoError(t, Validate(doc))
}

func TestHeuristicDocument(t *testing.T) {
	doc, err := newTestAssembler(nil).Build(Page{Index: 2, SourceFileName: "02 Ontology.png"})
	require.NoError(t, err)

	assert.Equal(t, "0002", doc.ID)
	assert.Equal(t, "Page 2: 02 Ontology", doc.Title)
	assert.Equal(t, "../pages/0002.png", doc.SourceImage)
	assert.Equal(t, []Texture{{ID: "page", Src: "../pages/0002.png"}}, doc.Assets.Textures)
	assert.Equal(t, "#050505", doc.Environment.Background)

	bg := entity(t, doc, "background")
	assert.Equal(t, []int{1920, 1080}, bg.Size)
	assert.Equal(t, [3]int{0, 0, 0}, bg.Position)
	assert.False(t, bg.Material.Transparent)
	assert.Equal(t, 0.02, bg.Material.Emissive)

	title := entity(t, doc, "title-bar")
	assert.Equal(t, [3]int{0, 454, 200}, title.Position)
	assert.Equal(t, []int{1728, 130}, title.Size)
	assert.Equal(t, "blend", title.Material.AlphaMode)
	require.NotNil(t, title.Animation)
	assert.Equal(t, "float", title.Animation.Type)
	assert.GreaterOrEqual(t, title.Animation.Speed, 0.5)
	assert.LessOrEqual(t, title.Animation.Speed, 0.95+1e-9)

	footer := entity(t, doc, "region-6")
	assert.Equal(t, [3]int{0, -405, 210}, footer.Position)

	assert.Len(t, doc.Navigation.SnapPoints, 5)
	assert.Equal(t, [3]float64{0, 0, 1200}, [3]float64(doc.Camera.Position))

	var tour []string
	for _, s := range doc.Navigation.Tour {
		tour = append(tour, s.SnapPoint)
		assert.Equal(t, 3.0, s.Seconds)
	}
	assert.Equal(t, []string{"Front View", "Left Angle", "Close Up", "Right Angle", "Top Down"}, tour)
}

func TestGeometryDocument(t *testing.T) {
	lines := []string{"0 FILE main.ldr", "1 4 0 0 0 1 0 0 0 1 0 0 0 1 3001.dat"}
	r := stubResolver{1: {Path: "scene_01_pipeline.legos", HasBody: true, Lines: lines}}
	a := newTestAssembler(r)

	doc, err := a.Build(Page{Index: 1, SourceFileName: "cover.png"})
	require.NoError(t, err)

	assert.Equal(t, ModeGeometry, doc.Mode())
	assert.Equal(t, lines, doc.Assets.LDraw)
	require.Len(t, doc.Entities, 2)
	assert.Equal(t, "background", doc.Entities[0].ID)

	ctx := doc.Entities[1]
	assert.Equal(t, "title-context", ctx.ID)
	assert.Equal(t, TypeCutout, ctx.Type)
	assert.Equal(t, [3]int{0, 450, 100}, ctx.Position)
	assert.Equal(t, 0.9, ctx.Material.Opacity)
	assert.Nil(t, ctx.Animation)

	var names []string
	for _, s := range doc.Navigation.Tour {
		names = append(names, s.SnapPoint)
	}
	assert.Equal(t, []string{"Overview", "Top Down", "Triage (Left)", "Output (Right)"}, names)
	assert.Equal(t, "Overview", doc.Navigation.SnapPoints[0].Name)
	assert.Equal(t, [3]float64{0, 300, 800}, [3]float64(doc.Camera.Position))
	assert.Equal(t, "#0b0d12", doc.Environment.Background)
	require.NoError(t, Validate(doc))
}

func TestGeometryLinesAreCopied(t *testing.T) {
	d := &legos.Descriptor{HasBody: true, Lines: []string{"1 16"}}
	doc, err := newTestAssembler(nil).Assemble(Page{Index: 1}, GeometryPlan{Descriptor: d})
	require.NoError(t, err)

	d.Lines[0] = "changed"
	assert.Equal(t, []string{"1 16"}, doc.Assets.LDraw)
}

func TestEmptyDescriptorFallsBack(t *testing.T) {
	r := stubResolver{
		4: {Path: "scene_04_x.legos", HasBody: true},
		5: {Path: "scene_05_y.legos", HasBody: false, Lines: []string{"1 16"}},
	}
	a := newTestAssembler(r)
	for _, idx := range []int{4, 5} {
		plan, err := a.SelectPlan(Page{Index: idx})
		require.NoError(t, err)
		assert.Equal(t, ModeHeuristic, plan.Mode(), "page %d", idx)
	}
}

func TestResolverErrorPropagates(t *testing.T) {
	boom := errors.New("permission denied")
	_, err := newTestAssembler(failingResolver{err: boom}).Build(Page{Index: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestAssembleRejectsEmptyGeometryPlan(t *testing.T) {
	_, err := newTestAssembler(nil).Assemble(Page{Index: 1}, GeometryPlan{})
	assert.Error(t, err)
}

func TestModePartition(t *testing.T) {
	r := stubResolver{
		1: {HasBody: true, Lines: []string{"1 16 0 0 0"}},
		2: {HasBody: true},
		4: {HasBody: true, Lines: []string{"2 24 0 0 0 1 1 1"}},
	}
	a := newTestAssembler(r)
	for idx := 1; idx <= 5; idx++ {
		plan, err := a.SelectPlan(Page{Index: idx})
		require.NoError(t, err)
		doc, err := a.Assemble(Page{Index: idx}, plan)
		require.NoError(t, err)

		geometry := plan.Mode() == ModeGeometry
		assert.Equal(t, geometry, len(doc.Assets.LDraw) > 0, "page %d", idx)
		assert.Equal(t, plan.Mode(), doc.Mode())
	}
}

func TestDecorationsAndAccents(t *testing.T) {
	p := config.Default().Params()
	p.Accents = true
	p.Decorations = true
	doc, err := NewAssembler(p, nil, nil).Build(Page{Index: 1})
	require.NoError(t, err)

	assert.Equal(t, 10, countType(doc, TypeCutout))
	assert.Equal(t, 3, countType(doc, TypePrimitive))
	assert.Equal(t, "cylinder", entity(t, doc, "connector").Shape)
	assert.Equal(t, "sphere", entity(t, doc, "node-a").Shape)
	assert.Equal(t, "sphere", entity(t, doc, "node-b").Shape)
	require.NoError(t, Validate(doc))
}

func TestEntityIDsUnique(t *testing.T) {
	p := config.Default().Params()
	p.Accents = true
	p.Decorations = true
	r := stubResolver{2: {HasBody: true, Lines: []string{"1 16"}}}
	a := NewAssembler(p, r, nil)

	for idx := 1; idx <= 3; idx++ {
		doc, err := a.Build(Page{Index: idx})
		require.NoError(t, err)
		seen := map[string]int{}
		for _, e := range doc.Entities {
			seen[e.ID]++
		}
		for id, n := range seen {
			assert.Equal(t, 1, n, "page %d entity %s", idx, id)
		}
		assert.Equal(t, 1, seen["background"])
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	r := stubResolver{2: {HasBody: true, Lines: []string{"1 16 0 0 0", "2 24 1 1 1 2 2 2"}}}
	for _, idx := range []int{1, 2} {
		first, err := newTestAssembler(r).Build(Page{Index: idx, SourceFileName: "p.png"})
		require.NoError(t, err)
		want, err := Marshal(first)
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			doc, err := newTestAssembler(r).Build(Page{Index: idx, SourceFileName: "p.png"})
			require.NoError(t, err)
			got, err := Marshal(doc)
			require.NoError(t, err)
			assert.Equal(t, string(want), string(got))
		}
	}
}

func TestDocumentJSONShape(t *testing.T) {
	doc, err := newTestAssembler(nil).Build(Page{Index: 9, SourceFileName: "nine.png"})
	require.NoError(t, err)
	data, err := Marshal(doc)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"id", "title", "sourceImage", "units", "camera", "environment", "lights", "assets", "entities", "navigation"} {
		assert.Contains(t, raw, key)
	}

	assets := raw["assets"].(map[string]any)
	assert.Equal(t, []any{}, assets["ldraw"])
	assert.Len(t, raw["lights"], 4)

	nav := raw["navigation"].(map[string]any)
	assert.Contains(t, nav, "snapPoints")
	assert.Contains(t, nav, "tour")
}

func TestWriteReadDocument(t *testing.T) {
	doc, err := newTestAssembler(nil).Build(Page{Index: 12, SourceFileName: "twelve.png"})
	require.NoError(t, err)

	path := Path(t.TempDir(), Page{Index: 12})
	assert.Equal(t, filepath.Join("0012", "scene.json"), filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path)))
	require.NoError(t, WriteDocument(doc, path))

	back, err := ReadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, back.ID)
	assert.Equal(t, len(doc.Entities), len(back.Entities))
	assert.Equal(t, doc.Navigation, back.Navigation)
	require.NoError(t, Validate(back))
}

func TestValidateReportsBrokenDocuments(t *testing.T) {
	doc, err := newTestAssembler(nil).Build(Page{Index: 1})
	require.NoError(t, err)

	doc.Entities = append(doc.Entities, doc.Entities[0])
	doc.Navigation.Tour = doc.Navigation.Tour[1:]
	err = Validate(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate entity id")
	assert.Contains(t, err.Error(), "background")
	assert.Contains(t, err.Error(), "missing from tour")
}

func TestValidateListsMissingStopsInDeclarationOrder(t *testing.T) {
	doc, err := newTestAssembler(nil).Build(Page{Index: 1})
	require.NoError(t, err)
	require.Greater(t, len(doc.Navigation.SnapPoints), 2)

	doc.Navigation.Tour = nil
	var want []string
	for _, sp := range doc.Navigation.SnapPoints {
		want = append(want, fmt.Sprintf("snap point %q missing from tour", sp.Name))
	}
	for range 5 {
		err := Validate(doc)
		require.Error(t, err)
		assert.Equal(t, strings.Join(want, "\n"), err.Error())
	}
}
