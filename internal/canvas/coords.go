// Package canvas is the multi-page whiteboard editor model: page switching,
// zoom, PDF page import and PNG/JSON export over a drawing surface.
package canvas

import (
	"math"

	"studio-backend/internal/model"
)

// ZoomLevels 선택 가능한 배율 (오름차순)
var ZoomLevels = []float64{0.75, 1, 1.25, 1.5, 2, 2.5}

// DefaultZoom fit 배율
const DefaultZoom = 1.0

// canonicalPrecision canonical 좌표는 1e-4 단위로 저장 (배율 왕복 시 오차 흡수)
const canonicalPrecision = 1e4

// ScreenPoint 현재 배율이 적용된 화면 좌표
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ScreenStroke 화면 좌표계의 획
type ScreenStroke struct {
	Points      []ScreenPoint `json:"paths"`
	StrokeWidth float64       `json:"strokeWidth"`
	StrokeColor string        `json:"strokeColor"`
	DrawMode    bool          `json:"drawMode"`
}

// ToScreen canonical -> 화면 (x zoom)
func ToScreen(strokes []model.Stroke, zoom float64) []ScreenStroke {
	out := make([]ScreenStroke, len(strokes))
	for i, s := range strokes {
		pts := make([]ScreenPoint, len(s.Points))
		for j, p := range s.Points {
			pts[j] = ScreenPoint{X: p.X * zoom, Y: p.Y * zoom}
		}
		out[i] = ScreenStroke{Points: pts, StrokeWidth: s.StrokeWidth, StrokeColor: s.StrokeColor, DrawMode: s.DrawMode}
	}
	return out
}

// ToCanonical 화면 -> canonical (/ zoom)
func ToCanonical(strokes []ScreenStroke, zoom float64) []model.Stroke {
	if zoom <= 0 {
		zoom = DefaultZoom
	}
	out := make([]model.Stroke, len(strokes))
	for i, s := range strokes {
		pts := make([]model.Point, len(s.Points))
		for j, p := range s.Points {
			pts[j] = model.Point{X: quantize(p.X / zoom), Y: quantize(p.Y / zoom)}
		}
		out[i] = model.Stroke{Points: pts, StrokeWidth: s.StrokeWidth, StrokeColor: s.StrokeColor, DrawMode: s.DrawMode}
	}
	return out
}

func quantize(v float64) float64 {
	return math.Round(v*canonicalPrecision) / canonicalPrecision
}

// zoomIndex 배율 단계 위치. 없으면 -1
func zoomIndex(z float64) int {
	for i, level := range ZoomLevels {
		if math.Abs(level-z) < 1e-9 {
			return i
		}
	}
	return -1
}
