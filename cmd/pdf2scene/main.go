package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/pdf2scene/internal/config"
	"github.com/ivlev/pdf2scene/internal/engine"
	"github.com/ivlev/pdf2scene/internal/legos"
	"github.com/ivlev/pdf2scene/internal/scene"
	"github.com/ivlev/pdf2scene/internal/server"
	"github.com/ivlev/pdf2scene/internal/source"
	"github.com/ivlev/pdf2scene/internal/system"
	"github.com/ivlev/pdf2scene/internal/watch"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	configPtr := flag.String("config", "", "Config file (.yaml, .yml or .toml)")
	inputPtr := flag.String("input", "", "PDF file or directory of page images (default: current directory)")
	outputPtr := flag.String("output", "", "Output directory (default: dist)")
	legosPtr := flag.String("legos", "", "Directory of scene_NN_*.legos descriptors (default: <output>/legos)")
	titlePtr := flag.String("title", "", "Manifest title")
	widthPtr := flag.Int("width", 0, "Canvas width in pixels")
	heightPtr := flag.Int("height", 0, "Canvas height in pixels")
	workersPtr := flag.Int("workers", system.DefaultWorkers(), "Parallel page workers")
	dpiPtr := flag.Int("dpi", 0, "PDF render DPI")
	dwellPtr := flag.Float64("dwell", 0, "Seconds per tour stop")
	accentsPtr := flag.Bool("accents", false, "Add accent cutout regions")
	decorationsPtr := flag.Bool("decorations", false, "Add connector primitives to fallback scenes")
	strictPtr := flag.Bool("strict-geometry", false, "Fail when a page matches several descriptors")
	thumbPtr := flag.Int("thumb-width", 0, "Thumbnail width, 0 keeps the config value")
	noThumbPtr := flag.Bool("no-thumbs", false, "Skip thumbnails")
	baseURLPtr := flag.String("base-url", "", "Public URL of the output; enables per-scene QR codes")
	statsPtr := flag.Bool("stats", false, "Print a build report and append it to build.log")
	noPresentationPtr := flag.Bool("no-presentation", false, "Skip presentation.html")
	servePtr := flag.String("serve", "", "Serve the output on this address after building, e.g. :8000")
	watchPtr := flag.Bool("watch", false, "Rebuild when pages or descriptors change")
	verbosePtr := flag.Bool("v", false, "Verbose logging")
	quietPtr := flag.Bool("q", false, "Only log warnings and errors")

	flag.Parse()

	level := slog.LevelInfo
	switch {
	case *verbosePtr:
		level = slog.LevelDebug
	case *quietPtr:
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	system.InitResourceLimits()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if *inputPtr != "" {
		cfg.InputPath = *inputPtr
	}
	if *outputPtr != "" {
		cfg.OutputDir = *outputPtr
	}
	if *legosPtr != "" {
		cfg.LegosDir = *legosPtr
	}
	if *titlePtr != "" {
		cfg.Title = *titlePtr
	}
	if *widthPtr > 0 {
		cfg.Width = *widthPtr
	}
	if *heightPtr > 0 {
		cfg.Height = *heightPtr
	}
	if set["workers"] {
		cfg.Workers = *workersPtr
	}
	if *dpiPtr > 0 {
		cfg.DPI = *dpiPtr
	}
	if *dwellPtr > 0 {
		cfg.DwellSeconds = *dwellPtr
	}
	if *thumbPtr > 0 {
		cfg.ThumbWidth = *thumbPtr
	}
	if *noThumbPtr {
		cfg.ThumbWidth = 0
	}
	if *baseURLPtr != "" {
		cfg.BaseURL = *baseURLPtr
	}
	applyBoolFlags(cfg, set, boolFlags{
		accents:     *accentsPtr,
		decorations: *decorationsPtr,
		strict:      *strictPtr,
		stats:       *statsPtr,
	})
	if *noPresentationPtr {
		cfg.Presentation = false
	}
	cfg.BuildVersion = version

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := build(ctx, cfg, logger); err != nil {
		log.Fatalf("[-] Build failed: %v", err)
	}

	if *servePtr == "" && !*watchPtr {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	if *servePtr != "" {
		app := server.New(server.Config{Root: cfg.OutputDir, Title: cfg.Title, Quiet: *quietPtr, Logger: logger})
		fmt.Printf("[*] Serving %s on %s\n", cfg.OutputDir, *servePtr)
		g.Go(func() error { return server.Serve(gctx, app, *servePtr) })
	}
	if *watchPtr {
		w := watch.New(logger, cfg.InputPath, cfg.LegosPath())
		w.Match = watchable
		fmt.Printf("[*] Watching %s and %s\n", cfg.InputPath, cfg.LegosPath())
		g.Go(func() error {
			return w.Run(gctx, func(ctx context.Context) error { return build(ctx, cfg, logger) })
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("[-] %v", err)
	}
}

// build opens the input afresh so that watch mode picks up added pages.
func build(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	src, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	fmt.Printf("[*] Source: %s (%d pages)\n", cfg.InputPath, src.PageCount())

	manifest, err := engine.NewProject(cfg, src, logger).Run(ctx)
	if err != nil {
		return err
	}

	var geometry int
	for _, s := range manifest.Scenes {
		if s.Mode == string(scene.ModeGeometry) {
			geometry++
		}
	}
	fmt.Printf("[+++] Done: %d scenes (%d geometry, %d cutout) in %s\n",
		manifest.TotalPages, geometry, manifest.TotalPages-geometry, cfg.OutputDir)
	return nil
}

// openSource falls back to the newest PDF of the input directory when it
// holds no page images.
func openSource(cfg *config.Config) (source.Source, error) {
	src, err := source.Open(cfg.InputPath, cfg.OutputDir)
	if err == nil || !errors.Is(err, source.ErrNoPages) {
		return src, err
	}

	fi, statErr := os.Stat(cfg.InputPath)
	if statErr != nil || !fi.IsDir() {
		return nil, err
	}
	latest, findErr := system.FindLatest(cfg.InputPath, ".pdf")
	if findErr != nil {
		return nil, err
	}
	fmt.Printf("[*] No page images, using %s\n", latest)
	cfg.InputPath = latest
	return source.Open(latest)
}

type boolFlags struct {
	accents, decorations, strict, stats bool
}

// applyBoolFlags lets an explicit -flag=false switch off a value the config
// file turned on.
func applyBoolFlags(cfg *config.Config, set map[string]bool, f boolFlags) {
	if set["accents"] {
		cfg.Accents = f.accents
	}
	if set["decorations"] {
		cfg.Decorations = f.decorations
	}
	if set["strict-geometry"] {
		cfg.StrictGeometry = f.strict
	}
	if set["stats"] {
		cfg.ShowStats = f.stats
	}
}

func watchable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".png", ".jpg", ".jpeg", ".webp", ".bmp", legos.Extension:
		return true
	}
	return false
}
