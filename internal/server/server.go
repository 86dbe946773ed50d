package server

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/static"

	"github.com/ivlev/pdf2scene/internal/engine"
	"github.com/ivlev/pdf2scene/internal/scene"
)

var sceneID = regexp.MustCompile(`^[0-9]{4,}$`)

type Config struct {
	Root   string // build output directory
	Title  string
	Quiet  bool // disable request logging
	Logger *slog.Logger
}

// New returns the viewer app: the build tree served as static files plus a
// small JSON API over the manifest and scenes.
func New(cfg Config) *fiber.App {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	appName := cfg.Title
	if appName == "" {
		appName = "pdf2scene"
	}

	app := fiber.New(fiber.Config{
		AppName:      appName,
		ErrorHandler: errorHandler(cfg.Logger),
	})

	app.Use(recover.New())
	if !cfg.Quiet {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{fiber.MethodGet, fiber.MethodHead},
	}))

	h := &handlers{root: cfg.Root}

	app.Get("/health/live", liveness)

	api := app.Group("/api")
	api.Get("/manifest", h.manifest)
	api.Get("/scenes/:id", h.scene)
	api.Get("/scenes/:id/pose", h.pose)

	app.Get("/*", static.New(cfg.Root))

	return app
}

// Serve runs app on addr until ctx is done.
func Serve(ctx context.Context, app *fiber.App, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return app.Shutdown()
	}
}

func liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "alive"})
}

type handlers struct {
	root string
}

func (h *handlers) manifest(c fiber.Ctx) error {
	m, err := engine.ReadManifest(filepath.Join(h.root, engine.ManifestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fiber.NewError(fiber.StatusNotFound, "no build found")
		}
		return err
	}
	return c.JSON(m)
}

func (h *handlers) scenePath(c fiber.Ctx) (string, error) {
	id := c.Params("id")
	if !sceneID.MatchString(id) {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid scene id")
	}

	// a rebuild with fewer pages leaves older scene directories behind
	m, err := engine.ReadManifest(filepath.Join(h.root, engine.ManifestFile))
	switch {
	case err == nil:
		if _, ok := m.Entry(id); !ok {
			return "", fiber.NewError(fiber.StatusNotFound, "scene not in manifest")
		}
	case !errors.Is(err, os.ErrNotExist):
		return "", err
	}

	path := filepath.Join(h.root, engine.ScenesDir, id, "scene.json")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fiber.NewError(fiber.StatusNotFound, "scene not found")
		}
		return "", err
	}
	return path, nil
}

func (h *handlers) scene(c fiber.Ctx) error {
	path, err := h.scenePath(c)
	if err != nil {
		return err
	}
	c.Type("json")
	return c.SendFile(path)
}

// pose samples the scene's camera tour at ?t= seconds.
func (h *handlers) pose(c fiber.Ctx) error {
	path, err := h.scenePath(c)
	if err != nil {
		return err
	}
	t, err := strconv.ParseFloat(c.Query("t", "0"), 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "t must be a number of seconds")
	}

	doc, err := scene.ReadDocument(path)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"t":        t,
		"duration": doc.Navigation.Duration(),
		"pose":     doc.Navigation.PoseAt(t),
	})
}

func errorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed", "path", c.Path(), "err", err)
		}
		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}
