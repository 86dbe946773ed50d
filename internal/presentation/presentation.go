// Package presentation renders a single static HTML page that lists every
// scene of a build with its page image, descriptor preamble and geometry.
package presentation

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"

	treeblood "github.com/wyatt915/goldmark-treeblood"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const FileName = "presentation.html"

type Deck struct {
	Title     string
	Version   string
	Generated string
	BuildID   string
	Slides    []Slide
}

// Slide is one scene card. Paths are relative to the output directory.
type Slide struct {
	ID          string
	Title       string
	Caption     string
	Description string // Markdown, $$...$$ blocks become MathML
	Mode        string
	Image       string
	Thumbnail   string
	Scene       string
	QR          string
	TourSeconds float64
	Tags        []string
	Preamble    string
	Geometry    []string
}

// Renderer turns a Deck into HTML. It is safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			treeblood.MathML(),
		),
	)
	tmpl := template.Must(template.New("deck").Funcs(template.FuncMap{
		"markdown": func(s string) (template.HTML, error) { return renderMarkdown(md, s) },
		"seconds":  func(f float64) string { return strings.TrimSuffix(fmt.Sprintf("%.1f", f), ".0") + "s" },
	}).Parse(page))
	return &Renderer{tmpl: tmpl}
}

func renderMarkdown(md goldmark.Markdown, s string) (template.HTML, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(s), &buf); err != nil {
		return "", err
	}
	// the default renderer drops raw HTML from the source
	return template.HTML(buf.String()), nil
}

func (r *Renderer) Render(w io.Writer, d Deck) error {
	return r.tmpl.Execute(w, d)
}

// Write renders d into filename.
func (r *Renderer) Write(d Deck, filename string) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		return fmt.Errorf("render presentation: %w", err)
	}
	return os.WriteFile(filename, buf.Bytes(), 0644)
}

const page = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
:root { --bg: #050505; --panel: #0a0a0a; --border: #333; --gold: #c9a227; --teal: #2dd4bf; --text: #e0e0e0; --dim: #666; }
* { margin: 0; padding: 0; box-sizing: border-box; }
body { font-family: Inter, sans-serif; background: var(--bg); color: var(--text); font-size: 13px; line-height: 1.4; }
header { border-bottom: 1px solid var(--border); padding: 12px 1rem; display: flex; justify-content: space-between; align-items: baseline; }
header h1 { color: var(--gold); font-size: 0.95rem; letter-spacing: 0.05em; }
header small, .meta { color: var(--dim); font-family: monospace; font-size: 10px; }
nav { display: flex; gap: 6px; overflow-x: auto; padding: 8px 1rem; border-bottom: 1px solid var(--border); }
nav a { color: var(--dim); border: 1px solid var(--border); padding: 3px 8px; border-radius: 3px; font-family: monospace; font-size: 10px; text-decoration: none; }
main { max-width: 1600px; margin: 0 auto; padding: 1rem; }
section { border: 1px solid var(--border); background: var(--panel); margin-bottom: 2rem; }
section > h2 { font-size: 11px; text-transform: uppercase; letter-spacing: 0.05em; padding: 8px 12px; border-bottom: 1px solid var(--border); }
section > h2 span { color: var(--gold); font-family: monospace; margin-right: 8px; }
.mode { float: right; font-family: monospace; font-size: 10px; color: var(--teal); }
.mode.heuristic { color: var(--dim); }
.body { display: grid; grid-template-columns: minmax(0, 2fr) minmax(0, 1fr); gap: 1rem; padding: 12px; }
.body img.page { width: 100%; border: 1px solid var(--border); }
.desc p { margin-bottom: 0.5rem; }
pre { background: #000; border: 1px solid var(--border); padding: 8px; font-size: 10px; overflow: auto; max-height: 240px; margin-top: 8px; }
a { color: var(--gold); }
nav img.thumb { height: 36px; }
.tags span { display: inline-block; border: 1px solid var(--teal); color: var(--teal); border-radius: 3px; padding: 0 6px; margin: 4px 4px 0 0; font-family: monospace; font-size: 10px; }
img.qr { width: 96px; margin-top: 8px; background: #fff; }
</style>
</head>
<body>
<header>
<h1>{{.Title}}</h1>
<small>v{{.Version}} · {{.Generated}} · {{.BuildID}}</small>
</header>
<nav>{{range .Slides}}<a href="#scene-{{.ID}}">{{if .Thumbnail}}<img class="thumb" src="{{.Thumbnail}}" alt=""><br>{{end}}{{.ID}}</a>{{end}}</nav>
<main>
{{range .Slides}}
<section id="scene-{{.ID}}">
<h2><span>{{.ID}}</span>{{if .Caption}}{{.Caption}}{{else}}{{.Title}}{{end}}<em class="mode {{.Mode}}">{{.Mode}}</em></h2>
<div class="body">
<div><img class="page" loading="lazy" src="{{.Image}}" alt="{{.Title}}"></div>
<div>
<div class="desc">{{markdown .Description}}</div>
<p class="meta">source {{.Title}} · tour {{seconds .TourSeconds}}</p>
{{if .Tags}}<p class="tags">{{range .Tags}}<span>{{.}}</span>{{end}}</p>{{end}}
<p><a href="{{.Scene}}">scene.json</a> · <a href="{{.Image}}">page</a></p>
{{if .QR}}<img class="qr" src="{{.QR}}" alt="QR code for scene {{.ID}}">{{end}}
{{if .Preamble}}<pre>{{.Preamble}}</pre>{{end}}
{{if .Geometry}}<pre>{{range .Geometry}}{{.}}
{{end}}</pre>{{end}}
</div>
</div>
</section>
{{end}}
</main>
</body>
</html>
`
