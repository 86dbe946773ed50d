package source

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

var ErrNoPages = errors.New("no pages found")

// Source is an ordered list of pages. Indexes are 0-based here; scenes use
// index+1.
type Source interface {
	PageCount() int
	PageName(index int) string
	GetPageDimensions(index int) (width, height float64, err error)
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// FileSource is a Source whose pages are files on disk and can be copied
// without decoding.
type FileSource interface {
	Source
	File(index int) string
}

// Open picks a PDF or an image source from path.
func Open(path string, exclude ...string) (Source, error) {
	var (
		src Source
		err error
	)
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		src, err = NewFitzPDFSource(path)
	} else {
		src, err = NewImageSource(path, exclude...)
	}
	if err != nil {
		return nil, err
	}
	if src.PageCount() == 0 {
		src.Close()
		return nil, fmt.Errorf("%w in %s", ErrNoPages, path)
	}
	return src, nil
}

type FitzPDFSource struct {
	doc  *fitz.Document
	path string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

// PageName is "<pdf name> p<N>.png" so page titles read naturally.
func (f *FitzPDFSource) PageName(index int) string {
	base := strings.TrimSuffix(filepath.Base(f.path), filepath.Ext(f.path))
	return fmt.Sprintf("%s p%d.png", base, index+1)
}

func (f *FitzPDFSource) GetPageDimensions(index int) (float64, float64, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	// separate document per call so workers do not share MuPDF state
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(index, float64(dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
