package canvas

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/fogleman/gg"

	"studio-backend/internal/model"
	"studio-backend/internal/sanitize"
)

// Export canvas size in canonical units
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
	previewWidth  = 320
	previewHeight = 180
)

// RenderPNG 한 페이지의 canonical 획을 PNG로. 지우개 획은 배경(없으면 흰색)을 드러낸다
func RenderPNG(strokes []model.Stroke, background image.Image, width, height int) ([]byte, error) {
	img := Render(strokes, background, width, height, 1)
	dc := gg.NewContextForImage(img)
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Render 배경 위에 획 레이어를 합성. scale은 canonical -> 픽셀 배율
func Render(strokes []model.Stroke, background image.Image, width, height int, scale float64) image.Image {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()
	if background != nil {
		b := background.Bounds()
		dc.Push()
		dc.Scale(float64(width)/float64(b.Dx()), float64(height)/float64(b.Dy()))
		dc.DrawImage(background, -b.Min.X, -b.Min.Y)
		dc.Pop()
	}

	layer := strokeLayer(strokes, width, height, scale)
	dc.DrawImage(layer, 0, 0)
	return dc.Image()
}

// strokeLayer 투명 레이어에 획을 순서대로 그린다. 연속된 지우개 획은 한 번에 지운다
func strokeLayer(strokes []model.Stroke, width, height int, scale float64) *image.RGBA {
	layer := gg.NewContext(width, height)
	for i := 0; i < len(strokes); {
		if !strokes[i].IsEraser() {
			drawStroke(layer, strokes[i], scale, parseColor(strokes[i].StrokeColor))
			i++
			continue
		}
		mask := gg.NewContext(width, height)
		for ; i < len(strokes) && strokes[i].IsEraser(); i++ {
			drawStroke(mask, strokes[i], scale, color.Black)
		}
		erase(layer.Image().(*image.RGBA), mask.AsMask())
	}
	return layer.Image().(*image.RGBA)
}

func drawStroke(dc *gg.Context, s model.Stroke, scale float64, c color.Color) {
	if len(s.Points) == 0 {
		return
	}
	width := s.StrokeWidth
	if width <= 0 {
		width = model.DefaultStrokeWidth
	}
	dc.SetColor(c)
	if len(s.Points) == 1 {
		p := s.Points[0]
		dc.DrawCircle(p.X*scale, p.Y*scale, width*scale/2)
		dc.Fill()
		return
	}
	dc.SetLineWidth(width * scale)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	dc.MoveTo(s.Points[0].X*scale, s.Points[0].Y*scale)
	for _, p := range s.Points[1:] {
		dc.LineTo(p.X*scale, p.Y*scale)
	}
	dc.Stroke()
}

// erase 마스크 알파만큼 레이어 픽셀을 투명하게 (premultiplied)
func erase(layer *image.RGBA, mask *image.Alpha) {
	b := layer.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			a := mask.AlphaAt(x, y).A
			if a == 0 {
				continue
			}
			keep := uint32(255 - a)
			i := layer.PixOffset(x, y)
			for k := 0; k < 4; k++ {
				layer.Pix[i+k] = uint8(uint32(layer.Pix[i+k]) * keep / 255)
			}
		}
	}
}

// parseColor #rgb, #rgba, #rrggbb, #rrggbbaa, rgb(), rgba(). 실패하면 기본 획 색
func parseColor(s string) color.NRGBA {
	if c, ok := parseColorOK(strings.TrimSpace(s)); ok {
		return c
	}
	c, _ := parseColorOK(sanitize.DefaultStrokeColor)
	return c
}

func parseColorOK(s string) (color.NRGBA, bool) {
	if strings.HasPrefix(s, "#") {
		h := s[1:]
		if len(h) == 3 || len(h) == 4 {
			var b strings.Builder
			for _, r := range h {
				b.WriteRune(r)
				b.WriteRune(r)
			}
			h = b.String()
		}
		if len(h) == 6 {
			h += "ff"
		}
		raw, err := hex.DecodeString(h)
		if err != nil || len(raw) != 4 {
			return color.NRGBA{}, false
		}
		return color.NRGBA{R: raw[0], G: raw[1], B: raw[2], A: raw[3]}, true
	}

	lower := strings.ToLower(s)
	open, end := strings.IndexByte(lower, '('), strings.LastIndexByte(lower, ')')
	if !strings.HasPrefix(lower, "rgb") || open < 0 || end < open {
		return color.NRGBA{}, false
	}
	parts := strings.Split(lower[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return color.NRGBA{}, false
		}
		ch[i] = uint8(v)
	}
	alpha := uint8(255)
	if len(parts) == 4 {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || f < 0 || f > 1 {
			return color.NRGBA{}, false
		}
		alpha = uint8(f*255 + 0.5)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: alpha}, true
}

// PreviewDataURL 목록 썸네일용 작은 PNG data URL. 허용 크기를 넘으면 ""
func PreviewDataURL(strokes []model.Stroke, background image.Image) string {
	scale := float64(previewWidth) / float64(DefaultWidth)
	img := Render(strokes, background, previewWidth, previewHeight, scale)
	var buf bytes.Buffer
	if err := gg.NewContextForImage(img).EncodePNG(&buf); err != nil {
		return ""
	}
	return sanitize.DataURLImage("data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()))
}
