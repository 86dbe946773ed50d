package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/pdf2scene/internal/config"
	"github.com/ivlev/pdf2scene/internal/legos"
	"github.com/ivlev/pdf2scene/internal/presentation"
	"github.com/ivlev/pdf2scene/internal/scene"
	"github.com/ivlev/pdf2scene/internal/source"
	"github.com/ivlev/pdf2scene/internal/system"
)

const (
	PagesDir     = "pages"
	ScenesDir    = "scenes"
	ThumbsDir    = "thumbs"
	ManifestFile = "manifest.json"
	StatsFile    = "build.log"
)

// Project compiles every page of a source into the output tree.
type Project struct {
	Config    *config.Config
	Source    source.Source
	Assembler *scene.Assembler
	Logger    *slog.Logger
}

func NewProject(cfg *config.Config, src source.Source, logger *slog.Logger) *Project {
	if logger == nil {
		logger = slog.Default()
	}
	resolver := legos.NewResolver(cfg.LegosPath(), cfg.StrictGeometry, logger)
	return &Project{
		Config:    cfg,
		Source:    src,
		Assembler: scene.NewAssembler(cfg.Params(), resolver, logger),
		Logger:    logger,
	}
}

// Result is what one compiled page contributes to the manifest.
type Result struct {
	Page       scene.Page
	Mode       scene.Mode
	Descriptor *legos.Descriptor
	ScenePath  string
	Thumbnail  string
	QRCode     string
	Tour       float64 // seconds for one pass of the tour
}

// Pages lists the source pages with 1-based indexes.
func (p *Project) Pages() []scene.Page {
	n := p.Source.PageCount()
	pages := make([]scene.Page, n)
	for i := 0; i < n; i++ {
		pages[i] = scene.Page{
			Index:          i + 1,
			SourceFileName: p.Source.PageName(i),
			ImageName:      fmt.Sprintf("%04d.png", i+1),
		}
	}
	return pages
}

// Run copies the pages, compiles one scene per page and writes the manifest.
func (p *Project) Run(ctx context.Context) (*Manifest, error) {
	startTime := time.Now()

	pages := p.Pages()
	if len(pages) == 0 {
		return nil, source.ErrNoPages
	}

	out := p.Config.OutputDir
	for _, d := range []string{PagesDir, ScenesDir} {
		if err := os.MkdirAll(filepath.Join(out, d), 0755); err != nil {
			return nil, err
		}
	}
	if p.Config.ThumbWidth > 0 {
		if err := os.MkdirAll(filepath.Join(out, ThumbsDir), 0755); err != nil {
			return nil, err
		}
	}

	p.Logger.Info("building scenes", "pages", len(pages), "canvas", fmt.Sprintf("%dx%d", p.Config.Width, p.Config.Height), "workers", p.Config.Workers)

	results := make([]Result, len(pages))

	copyStart := time.Now()
	err := p.forEach(ctx, pages, func(i int, page scene.Page) error {
		p.checkAspect(i, page)
		thumb, err := p.copyPage(i, page)
		if err != nil {
			return fmt.Errorf("copy page %d (%s): %w", page.Index, page.SourceFileName, err)
		}
		results[i].Thumbnail = thumb
		return nil
	})
	if err != nil {
		return nil, err
	}
	copyTime := time.Since(copyStart)

	compileStart := time.Now()
	err = p.forEach(ctx, pages, func(i int, page scene.Page) error {
		res, err := p.compile(page)
		if err != nil {
			return err
		}
		res.Thumbnail = results[i].Thumbnail
		results[i] = res
		p.Logger.Info("scene ready", "page", page.Index, "of", len(pages), "mode", res.Mode)
		return nil
	})
	if err != nil {
		return nil, err
	}
	compileTime := time.Since(compileStart)

	manifest := p.buildManifest(results)
	if err := WriteManifest(manifest, filepath.Join(out, ManifestFile)); err != nil {
		return nil, err
	}
	if p.Config.Presentation {
		deck := buildDeck(manifest, results)
		if err := presentation.NewRenderer().Write(deck, filepath.Join(out, presentation.FileName)); err != nil {
			return nil, err
		}
	}

	if p.Config.ShowStats {
		p.report(len(pages), time.Since(startTime), copyTime, compileTime)
	}
	return manifest, nil
}

// forEach runs fn for every page on at most Config.Workers goroutines and
// stops at the first error.
func (p *Project) forEach(ctx context.Context, pages []scene.Page, fn func(i int, page scene.Page) error) error {
	g, gctx := errgroup.WithContext(ctx)
	workers := p.Config.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, page := range pages {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(i, page)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// compile selects the mode, assembles, validates and writes one scene.
func (p *Project) compile(page scene.Page) (Result, error) {
	plan, err := p.Assembler.SelectPlan(page)
	if err != nil {
		return Result{}, err
	}
	doc, err := p.Assembler.Assemble(page, plan)
	if err != nil {
		return Result{}, err
	}
	if err := scene.Validate(doc); err != nil {
		return Result{}, fmt.Errorf("page %d: invalid scene: %w", page.Index, err)
	}

	path := scene.Path(filepath.Join(p.Config.OutputDir, ScenesDir), page)
	if err := scene.WriteDocument(doc, path); err != nil {
		return Result{}, fmt.Errorf("write scene %d: %w", page.Index, err)
	}

	res := Result{Page: page, Mode: plan.Mode(), ScenePath: path, Tour: doc.Navigation.Duration()}
	if gp, ok := plan.(scene.GeometryPlan); ok {
		res.Descriptor = gp.Descriptor
	}

	if p.Config.BaseURL != "" {
		qr, err := writeQRCode(p.Config.BaseURL, p.Config.OutputDir, page)
		if err != nil {
			return Result{}, fmt.Errorf("qr code %d: %w", page.Index, err)
		}
		res.QRCode = qr
	}
	return res, nil
}

func (p *Project) report(pages int, total, copyTime, compileTime time.Duration) {
	memLine := "memory: n/a"
	if stats, err := system.ReadMemoryStats(); err == nil {
		memLine = "memory: " + stats.String()
	} else {
		p.Logger.Debug("memory stats unavailable", "err", err)
	}

	report := fmt.Sprintf(
		"--- [BUILD REPORT] ---\n"+
			"Build: %s\n"+
			"Pages: %d\n"+
			"Total Time: %.2fs\n"+
			"Copy + Thumbnails: %.2fs\n"+
			"Scene Compilation: %.2fs\n"+
			"%s\n"+
			"----------------------\n",
		p.Config.BuildVersion, pages, total.Seconds(), copyTime.Seconds(), compileTime.Seconds(), memLine,
	)
	fmt.Print(report)

	logEntry := fmt.Sprintf("[%s] Build: %s | Input: %s | Pages: %d | Total: %.2fs | Copy: %.2fs | Compile: %.2fs | %s\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		filepath.Base(p.Config.InputPath),
		pages,
		total.Seconds(),
		copyTime.Seconds(),
		compileTime.Seconds(),
		strings.TrimPrefix(memLine, "memory: "),
	)

	f, err := os.OpenFile(filepath.Join(p.Config.OutputDir, StatsFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		p.Logger.Warn("could not write build log", "err", err)
		return
	}
	defer f.Close()
	f.WriteString(logEntry)
}
