package canvas

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrPDFRender PDF 해석 또는 렌더링 실패
var ErrPDFRender = errors.New("could not render PDF")

// Rasterizer PDF 바이트를 페이지 이미지로
type Rasterizer interface {
	Rasterize(ctx context.Context, data []byte) ([]image.Image, error)
}

// Rasterizer defaults
const (
	DefaultDPI           = 110.0
	DefaultRenderTimeout = 30 * time.Second
	DefaultMaxPages      = 60
)

// FitzRasterizer pdfcpu로 구조를 검증하고 페이지 수를 확인한 뒤 go-fitz(MuPDF)로 렌더링
type FitzRasterizer struct {
	DPI      float64
	Timeout  time.Duration
	MaxPages int
}

func NewFitzRasterizer(dpi float64, timeout time.Duration) *FitzRasterizer {
	return &FitzRasterizer{DPI: dpi, Timeout: timeout, MaxPages: DefaultMaxPages}
}

// Rasterize 한 페이지라도 실패하면 전체 실패
func (r *FitzRasterizer) Rasterize(ctx context.Context, data []byte) ([]image.Image, error) {
	dpi := r.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dims, err := api.PageDims(bytes.NewReader(data), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFRender, err)
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrPDFRender)
	}
	if r.MaxPages > 0 && len(dims) > r.MaxPages {
		return nil, fmt.Errorf("%w: %d pages exceeds the limit of %d", ErrPDFRender, len(dims), r.MaxPages)
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrPDFRender, err)
	}
	defer doc.Close()

	if doc.NumPage() != len(dims) {
		return nil, fmt.Errorf("%w: page count mismatch (%d vs %d)", ErrPDFRender, doc.NumPage(), len(dims))
	}

	// fitz pages are zero indexed
	pages := make([]image.Image, 0, len(dims))
	for n := 0; n < doc.NumPage(); n++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrPDFRender, ctx.Err())
		default:
		}
		img, err := doc.ImageDPI(n, dpi)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrPDFRender, n+1, err)
		}
		pages = append(pages, img)
	}
	return pages, nil
}
