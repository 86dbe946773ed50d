package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Path returns <scenesDir>/<NNNN>/scene.json.
func Path(scenesDir string, page Page) string {
	return filepath.Join(scenesDir, page.ID(), "scene.json")
}

// Marshal encodes a document as indented JSON with a trailing newline.
func Marshal(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// WriteDocument writes doc to path, creating the parent directory.
func WriteDocument(doc *Document, path string) error {
	data, err := Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode scene %s: %w", doc.ID, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode scene %s: %w", path, err)
	}
	return &doc, nil
}

// Validate checks the structural invariants of a document.
func Validate(doc *Document) error {
	var errs []error

	backgrounds := 0
	seen := make(map[string]bool, len(doc.Entities))
	for _, e := range doc.Entities {
		if e.ID == BackgroundID {
			backgrounds++
		}
		if seen[e.ID] {
			errs = append(errs, fmt.Errorf("duplicate entity id %q", e.ID))
		}
		seen[e.ID] = true
	}
	if backgrounds != 1 {
		errs = append(errs, fmt.Errorf("expected 1 background entity, got %d", backgrounds))
	}

	if doc.Assets.LDraw == nil {
		errs = append(errs, errors.New("assets.ldraw is nil"))
	}
	if len(doc.Lights) != 4 {
		errs = append(errs, fmt.Errorf("expected 4 lights, got %d", len(doc.Lights)))
	}
	if len(doc.Assets.Textures) == 0 || doc.Assets.Textures[0].Src != doc.SourceImage {
		errs = append(errs, errors.New("page texture does not match sourceImage"))
	}

	declared := make(map[string]bool, len(doc.Navigation.SnapPoints))
	for _, sp := range doc.Navigation.SnapPoints {
		declared[sp.Name] = true
	}
	toured := make(map[string]bool, len(doc.Navigation.Tour))
	for _, stop := range doc.Navigation.Tour {
		if !declared[stop.SnapPoint] {
			errs = append(errs, fmt.Errorf("tour visits unknown snap point %q", stop.SnapPoint))
		}
		toured[stop.SnapPoint] = true
	}
	for _, sp := range doc.Navigation.SnapPoints {
		if !toured[sp.Name] {
			errs = append(errs, fmt.Errorf("snap point %q missing from tour", sp.Name))
		}
	}

	if doc.Camera.Position != doc.Navigation.Default().CameraPos {
		errs = append(errs, errors.New("camera is not at the first snap point"))
	}
	return errors.Join(errs...)
}
