package canvas

import (
	"context"
	"image"
	"sync"
)

// Surface 실제 그리기 면 (브라우저 캔버스, 메모리 구현 등)
type Surface interface {
	ExportPaths(ctx context.Context) ([]ScreenStroke, error)
	LoadPaths(ctx context.Context, strokes []ScreenStroke) error
	Reset(ctx context.Context) error
	SetBackground(img image.Image)
	SetEraseMode(erase bool)
}

// MemorySurface 프로세스 내 Surface. 변경 시 콜백 호출
type MemorySurface struct {
	mu         sync.Mutex
	strokes    []ScreenStroke
	background image.Image
	erase      bool
	onChange   func([]ScreenStroke)
}

func NewMemorySurface() *MemorySurface {
	return &MemorySurface{}
}

// OnChange 획 목록이 바뀔 때마다 호출될 콜백 (LoadPaths 포함)
func (m *MemorySurface) OnChange(fn func([]ScreenStroke)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

func (m *MemorySurface) ExportPaths(ctx context.Context) ([]ScreenStroke, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneScreen(m.strokes), nil
}

func (m *MemorySurface) LoadPaths(ctx context.Context, strokes []ScreenStroke) error {
	m.mu.Lock()
	m.strokes = append(m.strokes, cloneScreen(strokes)...)
	snapshot, cb := cloneScreen(m.strokes), m.onChange
	m.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
	return nil
}

func (m *MemorySurface) Reset(ctx context.Context) error {
	m.mu.Lock()
	m.strokes = nil
	cb := m.onChange
	m.mu.Unlock()

	if cb != nil {
		cb([]ScreenStroke{})
	}
	return nil
}

func (m *MemorySurface) SetBackground(img image.Image) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.background = img
}

func (m *MemorySurface) SetEraseMode(erase bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.erase = erase
}

// Draw 사용자 획 추가. 지우개 모드면 DrawMode=false
func (m *MemorySurface) Draw(points []ScreenPoint, width float64, color string) {
	m.mu.Lock()
	m.strokes = append(m.strokes, ScreenStroke{
		Points:      append([]ScreenPoint(nil), points...),
		StrokeWidth: width,
		StrokeColor: color,
		DrawMode:    !m.erase,
	})
	snapshot, cb := cloneScreen(m.strokes), m.onChange
	m.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Background 현재 배경
func (m *MemorySurface) Background() image.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.background
}

// EraseMode 지우개 모드 여부
func (m *MemorySurface) EraseMode() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.erase
}

func cloneScreen(in []ScreenStroke) []ScreenStroke {
	out := make([]ScreenStroke, len(in))
	for i, s := range in {
		s.Points = append([]ScreenPoint(nil), s.Points...)
		out[i] = s
	}
	return out
}
