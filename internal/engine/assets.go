package engine

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/pdf2scene/internal/scene"
	"github.com/ivlev/pdf2scene/internal/source"
	"github.com/ivlev/pdf2scene/internal/system"
)

const (
	qrSize = 256

	// relative aspect difference tolerated before cutouts visibly stretch
	aspectTolerance = 0.02
)

// checkAspect warns when a page's shape differs from the canvas. Regions are
// fractions of the canvas, so such pages are stretched in the scene.
func (p *Project) checkAspect(i int, page scene.Page) {
	w, h, err := p.Source.GetPageDimensions(i)
	if err != nil {
		p.Logger.Debug("page dimensions unavailable", "page", page.Index, "err", err)
		return
	}
	if aspectMismatch(w, h, p.Config.Width, p.Config.Height) {
		p.Logger.Warn("page aspect differs from canvas",
			"page", page.Index, "size", fmt.Sprintf("%.0fx%.0f", w, h),
			"canvas", fmt.Sprintf("%dx%d", p.Config.Width, p.Config.Height))
	}
}

func aspectMismatch(w, h float64, canvasW, canvasH int) bool {
	if w <= 0 || h <= 0 || canvasW <= 0 || canvasH <= 0 {
		return false
	}
	want := float64(canvasW) / float64(canvasH)
	return math.Abs(w/h-want)/want > aspectTolerance
}

// copyPage writes pages/NNNN.png and, when enabled, thumbs/NNNN.png. PNG
// files are copied byte for byte; everything else is decoded and re-encoded.
// It returns the thumbnail path relative to the output directory.
func (p *Project) copyPage(i int, page scene.Page) (string, error) {
	dst := filepath.Join(p.Config.OutputDir, PagesDir, page.Image())

	var img image.Image
	if fs, ok := p.Source.(source.FileSource); ok && strings.EqualFold(filepath.Ext(fs.File(i)), ".png") {
		if err := copyFile(fs.File(i), dst); err != nil {
			return "", err
		}
	} else {
		var err error
		img, err = p.Source.RenderPage(i, p.Config.DPI)
		if err != nil {
			return "", err
		}
		if err := writePNG(img, dst); err != nil {
			return "", err
		}
	}

	if p.Config.ThumbWidth <= 0 {
		return "", nil
	}
	if img == nil {
		var err error
		img, err = p.Source.RenderPage(i, p.Config.DPI)
		if err != nil {
			return "", err
		}
	}
	rel := path.Join(ThumbsDir, page.Image())
	if err := writeThumbnail(img, p.Config.ThumbWidth, filepath.Join(p.Config.OutputDir, filepath.FromSlash(rel))); err != nil {
		return "", err
	}
	return rel, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func writePNG(img image.Image, dst string) error {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Thumbnail scales img to width, keeping the aspect ratio. The returned
// buffer comes from the shared pool; release it with system.PutImage.
func Thumbnail(img image.Image, width int) *image.RGBA {
	b := img.Bounds()
	height := 1
	if b.Dx() > 0 {
		height = max(1, b.Dy()*width/b.Dx())
	}
	dst := system.GetImage(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

func writeThumbnail(img image.Image, width int, dst string) error {
	thumb := Thumbnail(img, width)
	defer system.PutImage(thumb)
	return writePNG(thumb, dst)
}

// SceneURL is the public address of a page's scene under baseURL.
func SceneURL(baseURL string, page scene.Page) string {
	return strings.TrimRight(baseURL, "/") + "/" + path.Join(ScenesDir, page.ID(), "scene.json")
}

// writeQRCode stores scenes/NNNN/qr.png pointing at the scene URL and returns
// its path relative to the output directory.
func writeQRCode(baseURL, outDir string, page scene.Page) (string, error) {
	rel := path.Join(ScenesDir, page.ID(), "qr.png")
	dst := filepath.Join(outDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}
	if err := qrcode.WriteFile(SceneURL(baseURL, page), qrcode.Medium, qrSize, dst); err != nil {
		return "", err
	}
	return rel, nil
}
