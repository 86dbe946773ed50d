package system

import (
	"image"
	"sync"
)

// ImagePool hands out *image.RGBA buffers grouped by their bounds. Thumbnails
// of one deck usually share a size, so workers mostly hit a single bucket.
type ImagePool struct {
	buckets sync.Map // image.Rectangle -> *sync.Pool
}

var thumbs = NewImagePool()

func NewImagePool() *ImagePool {
	return &ImagePool{}
}

// GetImage returns a buffer with the given bounds from the shared pool.
// Its pixels are not cleared.
func GetImage(rect image.Rectangle) *image.RGBA {
	return thumbs.Get(rect)
}

// PutImage hands a buffer back to the shared pool.
func PutImage(img *image.RGBA) {
	thumbs.Put(img)
}

func (p *ImagePool) bucket(rect image.Rectangle) *sync.Pool {
	if b, ok := p.buckets.Load(rect); ok {
		return b.(*sync.Pool)
	}
	b, _ := p.buckets.LoadOrStore(rect, &sync.Pool{
		New: func() any { return image.NewRGBA(rect) },
	})
	return b.(*sync.Pool)
}

func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	return p.bucket(rect).Get().(*image.RGBA)
}

// Put ignores nil and buffers whose bounds were never handed out.
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	if b, ok := p.buckets.Load(img.Rect); ok {
		b.(*sync.Pool).Put(img)
	}
}
