package presentation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeck() Deck {
	return Deck{
		Title:     "Shield <Studio>",
		Version:   "1.0.0",
		Generated: "2026-10-18",
		BuildID:   "b-1",
		Slides: []Slide{
			{
				ID:          "0001",
				Title:       "intro",
				Mode:        "heuristic",
				Image:       "pages/0001.png",
				Thumbnail:   "thumbs/0001.png",
				Scene:       "scenes/0001/scene.json",
				TourSeconds: 15,
			},
			{
				ID:          "0002",
				Title:       "chart",
				Caption:     "Revenue",
				Description: "Quarterly **bars** <script>alert(1)</script>",
				Mode:        "geometry",
				Image:       "pages/0002.png",
				Scene:       "scenes/0002/scene.json",
				QR:          "scenes/0002/qr.png",
				TourSeconds: 12,
				Tags:        []string{"finance", "q3"},
				Preamble:    "title: Revenue\n",
				Geometry:    []string{"1 16 0 0 0 1 0 0 0 1 0 0 0 1 3001.dat"},
			},
		},
	}
}

func render(t *testing.T, d Deck) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, NewRenderer().Render(&sb, d))
	return sb.String()
}

func TestRenderListsSlidesInOrder(t *testing.T) {
	out := render(t, testDeck())

	first := strings.Index(out, `id="scene-0001"`)
	second := strings.Index(out, `id="scene-0002"`)
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)

	assert.Contains(t, out, `src="pages/0002.png"`)
	assert.Contains(t, out, `src="thumbs/0001.png"`)
	assert.Contains(t, out, `href="scenes/0002/scene.json"`)
	assert.Contains(t, out, `src="scenes/0002/qr.png"`)
	assert.Contains(t, out, "tour 15s")
	assert.Contains(t, out, "1 16 0 0 0 1 0 0 0 1 0 0 0 1 3001.dat")
}

func TestRenderEscapesText(t *testing.T) {
	out := render(t, testDeck())
	assert.Contains(t, out, "Shield &lt;Studio&gt;")
	assert.NotContains(t, out, "<script>alert(1)</script>")
}

func TestRenderMarkdownDescription(t *testing.T) {
	out := render(t, testDeck())
	assert.Contains(t, out, "<strong>bars</strong>")
	assert.Contains(t, out, ">Revenue<em")
}

func TestRenderTags(t *testing.T) {
	out := render(t, testDeck())
	assert.Contains(t, out, `<p class="tags"><span>finance</span><span>q3</span></p>`)
	assert.Equal(t, 1, strings.Count(out, `<p class="tags">`))
}

func TestRenderMathDescription(t *testing.T) {
	d := testDeck()
	d.Slides[0].Description = "$$x^2$$"
	out := render(t, d)
	assert.Contains(t, out, "<math")
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, NewRenderer().Write(testDeck(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<!DOCTYPE html>"))
}
