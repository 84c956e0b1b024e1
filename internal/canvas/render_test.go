package canvas

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"studio-backend/internal/model"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#ff0000", color.NRGBA{R: 255, A: 255}},
		{"#0f0", color.NRGBA{G: 255, A: 255}},
		{"#0000ff80", color.NRGBA{B: 255, A: 128}},
		{"rgb(1, 2, 3)", color.NRGBA{R: 1, G: 2, B: 3, A: 255}},
		{"rgba(10,20,30,0.5)", color.NRGBA{R: 10, G: 20, B: 30, A: 128}},
		{"teal", color.NRGBA{R: 0x11, G: 0x11, B: 0x11, A: 255}},
		{"rgb(300,0,0)", color.NRGBA{R: 0x11, G: 0x11, B: 0x11, A: 255}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseColor(tt.in))
		})
	}
}

func pixel(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestRenderEraserRevealsBackground(t *testing.T) {
	red := model.Stroke{
		Points:      []model.Point{{X: 0, Y: 10}, {X: 40, Y: 10}},
		StrokeWidth: 8,
		StrokeColor: "#ff0000",
		DrawMode:    true,
	}
	eraser := model.Stroke{
		Points:      []model.Point{{X: 20, Y: 10}},
		StrokeWidth: 8,
		DrawMode:    false,
	}

	img := Render([]model.Stroke{red}, nil, 40, 20, 1)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, pixel(img, 10, 10))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, pixel(img, 10, 18))

	img = Render([]model.Stroke{red, eraser}, nil, 40, 20, 1)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, pixel(img, 20, 10))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, pixel(img, 5, 10))

	bg := solidPage(color.RGBA{B: 255, A: 255})
	img = Render([]model.Stroke{red, eraser}, bg, 40, 20, 1)
	assert.Equal(t, color.RGBA{B: 255, A: 255}, pixel(img, 20, 10))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, pixel(img, 10, 18))
}

func TestRenderPNGDefaultsSize(t *testing.T) {
	raw, err := RenderPNG(nil, nil, 0, 0)
	assert.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.NotEmpty(t, PreviewDataURL(nil, nil))
}
