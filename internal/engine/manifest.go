package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/ivlev/pdf2scene/internal/presentation"
)

const manifestVersion = "1.0.0"

// Manifest indexes every scene of a build in page order.
type Manifest struct {
	Title      string          `json:"title"`
	Version    string          `json:"version"`
	Generated  string          `json:"generated"`
	BuildID    string          `json:"buildId"`
	TotalPages int             `json:"totalPages"`
	Scenes     []ManifestEntry `json:"scenes"`
}

type ManifestEntry struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Page        string   `json:"page"`
	Scene       string   `json:"scene"`
	Mode        string   `json:"mode"`
	TourSeconds float64  `json:"tourSeconds"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	QR          string   `json:"qr,omitempty"`
	Geometry    string   `json:"geometry,omitempty"`
	Caption     string   `json:"caption,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

func (p *Project) buildManifest(results []Result) *Manifest {
	version := p.Config.BuildVersion
	if version == "" {
		version = manifestVersion
	}

	m := &Manifest{
		Title:      p.Config.Title,
		Version:    version,
		Generated:  time.Now().Format("2006-01-02"),
		BuildID:    uuid.NewString(),
		TotalPages: len(results),
		Scenes:     make([]ManifestEntry, 0, len(results)),
	}

	for _, r := range results {
		e := ManifestEntry{
			ID:          r.Page.ID(),
			Title:       r.Page.Name(),
			Page:        path.Join(PagesDir, r.Page.Image()),
			Scene:       path.Join(ScenesDir, r.Page.ID(), "scene.json"),
			Mode:        string(r.Mode),
			TourSeconds: r.Tour,
			Thumbnail:   r.Thumbnail,
			QR:          r.QRCode,
		}
		if d := r.Descriptor; d != nil {
			e.Geometry = path.Base(d.Path)
			e.Caption = d.Meta.Title
			e.Description = d.Meta.Description
			e.Tags = d.Meta.Tags
		}
		m.Scenes = append(m.Scenes, e)
	}
	return m
}

// buildDeck pairs manifest entries with the descriptor text they came from.
func buildDeck(m *Manifest, results []Result) presentation.Deck {
	deck := presentation.Deck{
		Title:     m.Title,
		Version:   m.Version,
		Generated: m.Generated,
		BuildID:   m.BuildID,
		Slides:    make([]presentation.Slide, len(m.Scenes)),
	}
	for i, e := range m.Scenes {
		s := presentation.Slide{
			ID:          e.ID,
			Title:       e.Title,
			Caption:     e.Caption,
			Description: e.Description,
			Mode:        e.Mode,
			Image:       e.Page,
			Thumbnail:   e.Thumbnail,
			Scene:       e.Scene,
			QR:          e.QR,
			TourSeconds: e.TourSeconds,
			Tags:        e.Tags,
		}
		if d := results[i].Descriptor; d != nil {
			s.Preamble = d.Meta.YAML()
			s.Geometry = d.Lines
		}
		deck.Slides[i] = s
	}
	return deck
}

// Entry finds a scene by its zero-padded id.
func (m *Manifest) Entry(id string) (ManifestEntry, bool) {
	for _, e := range m.Scenes {
		if e.ID == id {
			return e, true
		}
	}
	return ManifestEntry{}, false
}

func WriteManifest(m *Manifest, filename string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, append(data, '\n'), 0644)
}

func ReadManifest(filename string) (*Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}
