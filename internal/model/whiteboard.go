package model

import (
	"fmt"
	"time"
)

// Point 캔버스 좌표 (1x 기준, canonical)
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke 한 번의 자유곡선 획. DrawMode가 false면 지우개 획
type Stroke struct {
	Points      []Point `json:"paths"`
	StrokeWidth float64 `json:"strokeWidth"`
	StrokeColor string  `json:"strokeColor"`
	DrawMode    bool    `json:"drawMode"`
}

// IsEraser 지우개 획 여부
func (s Stroke) IsEraser() bool {
	return !s.DrawMode
}

// Whiteboard 다중 페이지 화이트보드 문서
type Whiteboard struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Author        string              `json:"author"`
	Paths         []Stroke            `json:"paths"`
	PageDrawings  map[string][]Stroke `json:"pageDrawings"`
	PageOrder     []string            `json:"pageOrder"`
	PageLabels    map[string]string   `json:"pageLabels"`
	ActivePageKey string              `json:"activePageKey"`
	PreviewImage  string              `json:"previewImage"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// WhiteboardSummary 목록용 요약
type WhiteboardSummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	PathCount     int       `json:"pathCount"`
	PageCount     int       `json:"pageCount"`
	ActivePageKey string    `json:"activePageKey"`
	PreviewImage  string    `json:"previewImage"`
}

// PathCount 전체 페이지의 획 수 합계
func (w *Whiteboard) PathCount() int {
	total := 0
	for _, strokes := range w.PageDrawings {
		total += len(strokes)
	}
	return total
}

// Summary 요약 생성
func (w *Whiteboard) Summary() WhiteboardSummary {
	pageCount := len(w.PageOrder)
	if pageCount == 0 {
		pageCount = 1
	}
	return WhiteboardSummary{
		ID:            w.ID,
		Title:         w.Title,
		Author:        w.Author,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
		PathCount:     w.PathCount(),
		PageCount:     pageCount,
		ActivePageKey: w.ActivePageKey,
		PreviewImage:  w.PreviewImage,
	}
}

// HasPage pageOrder에 포함된 키인지
func (w *Whiteboard) HasPage(key string) bool {
	for _, k := range w.PageOrder {
		if k == key {
			return true
		}
	}
	return false
}

// Clone deep copy
func (w *Whiteboard) Clone() *Whiteboard {
	out := *w
	out.Paths = CloneStrokes(w.Paths)
	out.PageOrder = append([]string(nil), w.PageOrder...)
	out.PageDrawings = make(map[string][]Stroke, len(w.PageDrawings))
	for k, v := range w.PageDrawings {
		out.PageDrawings[k] = CloneStrokes(v)
	}
	out.PageLabels = make(map[string]string, len(w.PageLabels))
	for k, v := range w.PageLabels {
		out.PageLabels[k] = v
	}
	return &out
}

// CloneStrokes deep copy of a stroke list (never nil).
func CloneStrokes(in []Stroke) []Stroke {
	out := make([]Stroke, len(in))
	for i, s := range in {
		s.Points = append([]Point(nil), s.Points...)
		out[i] = s
	}
	return out
}

// DefaultPageLabel "Page N" (1부터)
func DefaultPageLabel(index int) string {
	return fmt.Sprintf("Page %d", index+1)
}
