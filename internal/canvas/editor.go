package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"studio-backend/internal/model"
	"studio-backend/internal/sanitize"
	"studio-backend/internal/store"
)

var (
	ErrUnknownPage   = errors.New("unknown page")
	ErrInvalidZoom   = errors.New("zoom level is not on the ladder")
	ErrNoDocument    = errors.New("no whiteboard open")
	ErrNoRasterizer  = errors.New("PDF import is not configured")
	ErrTooManyStroke = errors.New("page stroke limit reached")
)

// PageInfo 페이지 목록 항목
type PageInfo struct {
	Key           string `json:"key"`
	Label         string `json:"label"`
	Strokes       int    `json:"strokes"`
	HasBackground bool   `json:"hasBackground"`
}

// EditorState 화면 표시용 상태
type EditorState struct {
	WhiteboardID  string     `json:"whiteboardId"`
	ActivePageKey string     `json:"activePageKey"`
	Pages         []PageInfo `json:"pages"`
	Zoom          float64    `json:"zoom"`
	EraseMode     bool       `json:"eraseMode"`
	Dirty         bool       `json:"dirty"`
	PathCount     int        `json:"pathCount"`
	Status        string     `json:"status"`
	Error         string     `json:"error"`
}

// Editor 하나의 Surface 위에 여러 페이지를 얹는 편집 모델
//
// 문서에는 항상 canonical 좌표만 저장된다. 화면 좌표는 Surface와 주고받을 때만
// ToScreen/ToCanonical로 변환한다.
type Editor struct {
	mu      sync.Mutex
	surface Surface
	raster  Rasterizer
	now     func() time.Time

	doc         *model.Whiteboard
	backgrounds map[string]image.Image
	zoom        float64
	erase       bool
	dirty       bool
	pathCount   int
	status      string
	errMsg      string

	width, height int

	hydrating atomic.Bool
}

// EditorOption Editor 설정
type EditorOption func(*Editor)

// WithRasterizer PDF 가져오기에 사용할 래스터라이저
func WithRasterizer(r Rasterizer) EditorOption {
	return func(e *Editor) { e.raster = r }
}

// WithCanvasSize PNG 내보내기 크기 (canonical 단위)
func WithCanvasSize(width, height int) EditorOption {
	return func(e *Editor) { e.width, e.height = width, height }
}

// WithEditorClock 테스트용 시계
func WithEditorClock(now func() time.Time) EditorOption {
	return func(e *Editor) { e.now = now }
}

func NewEditor(surface Surface, opts ...EditorOption) *Editor {
	e := &Editor{
		surface:     surface,
		now:         time.Now,
		zoom:        DefaultZoom,
		backgrounds: map[string]image.Image{},
		width:       DefaultWidth,
		height:      DefaultHeight,
	}
	for _, opt := range opts {
		opt(e)
	}
	if ms, ok := surface.(*MemorySurface); ok {
		ms.OnChange(e.OnSurfaceChange)
	}
	return e
}

// Open 문서를 열고 활성 페이지를 Surface에 올린다. PDF 배경은 초기화된다
func (e *Editor) Open(ctx context.Context, wb *model.Whiteboard) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc := wb.Clone()
	ensurePages(doc)
	e.doc = doc
	e.backgrounds = map[string]image.Image{}
	e.dirty = false
	e.setStatusLocked("", "")
	return e.loadLocked(ctx, doc.ActivePageKey)
}

// SwitchPage 현재 페이지를 커밋한 뒤 대상 페이지를 불러온다
func (e *Editor) SwitchPage(ctx context.Context, key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.doc == nil {
		return ErrNoDocument
	}
	if !e.doc.HasPage(key) {
		return fmt.Errorf("%w: %q", ErrUnknownPage, key)
	}
	if key == e.doc.ActivePageKey {
		return nil
	}
	if err := e.commitLocked(ctx); err != nil {
		return err
	}
	e.doc.ActivePageKey = key
	return e.loadLocked(ctx, key)
}

// AddPage 빈 페이지를 끝에 추가하고 활성화. label이 비면 "Page N"
func (e *Editor) AddPage(ctx context.Context, label string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.doc == nil {
		return "", ErrNoDocument
	}
	if err := e.commitLocked(ctx); err != nil {
		return "", err
	}
	key := e.appendPageLocked(label)
	e.doc.ActivePageKey = key
	e.dirty = true
	if err := e.loadLocked(ctx, key); err != nil {
		return "", err
	}
	e.setStatusLocked("Added "+e.doc.PageLabels[key]+".", "")
	return key, nil
}

// RenamePage 페이지 라벨 변경. 빈 라벨은 위치 기반 기본값
func (e *Editor) RenamePage(key, label string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.doc == nil {
		return ErrNoDocument
	}
	idx := indexOf(e.doc.PageOrder, key)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownPage, key)
	}
	label = sanitize.String(label, model.MaxPageLabelLength)
	if label == "" {
		label = model.DefaultPageLabel(idx)
	}
	e.doc.PageLabels[key] = label
	e.dirty = true
	return nil
}

// ClearPage 활성 페이지의 획을 모두 지운다
func (e *Editor) ClearPage(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.doc == nil {
		return ErrNoDocument
	}
	e.hydrating.Store(true)
	err := e.surface.Reset(ctx)
	e.hydrating.Store(false)
	if err != nil {
		return err
	}
	e.doc.PageDrawings[e.doc.ActivePageKey] = []model.Stroke{}
	e.doc.Paths = []model.Stroke{}
	e.pathCount = 0
	e.dirty = true
	e.setStatusLocked("Cleared "+e.doc.PageLabels[e.doc.ActivePageKey]+".", "")
	return nil
}

// SetEraseMode 펜/지우개 전환
func (e *Editor) SetEraseMode(erase bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.erase = erase
	e.surface.SetEraseMode(erase)
}

// Zoom 현재 배율
func (e *Editor) Zoom() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.zoom
}

// SetZoom 현재 획을 이전 배율로 canonical 변환해 저장한 뒤 새 배율로 다시 올린다
func (e *Editor) SetZoom(ctx context.Context, zoom float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setZoomLocked(ctx, zoom)
}

// ZoomIn 한 단계 확대 (최대면 그대로)
func (e *Editor) ZoomIn(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := zoomIndex(e.zoom)
	if i < 0 || i == len(ZoomLevels)-1 {
		return nil
	}
	return e.setZoomLocked(ctx, ZoomLevels[i+1])
}

// ZoomOut 한 단계 축소 (최소면 그대로)
func (e *Editor) ZoomOut(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := zoomIndex(e.zoom)
	if i <= 0 {
		return nil
	}
	return e.setZoomLocked(ctx, ZoomLevels[i-1])
}

// ZoomFit 1x로
func (e *Editor) ZoomFit(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setZoomLocked(ctx, DefaultZoom)
}

func (e *Editor) setZoomLocked(ctx context.Context, zoom float64) error {
	if zoomIndex(zoom) < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidZoom, zoom)
	}
	if e.doc == nil {
		e.zoom = zoom
		return nil
	}
	if err := e.commitLocked(ctx); err != nil {
		return err
	}
	e.zoom = zoom
	return e.loadLocked(ctx, e.doc.ActivePageKey)
}

// ImportPDF PDF 각 페이지를 배경으로 하는 새 페이지들을 추가
//
// 모든 페이지가 렌더링된 경우에만 문서가 바뀐다. 실패하면 기존 페이지는 그대로이고
// 오류 메시지만 남는다.
func (e *Editor) ImportPDF(ctx context.Context, filename string, data []byte) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.doc == nil {
		return nil, ErrNoDocument
	}
	if e.raster == nil {
		return nil, ErrNoRasterizer
	}

	// 렌더링 중에는 문서를 건드리지 않는다
	pages, err := e.raster.Rasterize(ctx, data)
	if err == nil && len(pages) == 0 {
		err = fmt.Errorf("%w: document has no pages", ErrPDFRender)
	}
	if err != nil {
		if !errors.Is(err, ErrPDFRender) {
			err = fmt.Errorf("%w: %v", ErrPDFRender, err)
		}
		e.setStatusLocked("", "Could not import that PDF. Existing pages were left unchanged.")
		return nil, err
	}

	if err := e.commitLocked(ctx); err != nil {
		return nil, err
	}
	base := pdfBaseName(filename)
	keys := make([]string, 0, len(pages))
	for i, img := range pages {
		key := e.appendPageLocked(fmt.Sprintf("%s - Page %d", base, i+1))
		e.backgrounds[key] = img
		keys = append(keys, key)
	}
	e.doc.ActivePageKey = keys[0]
	e.dirty = true
	if err := e.loadLocked(ctx, keys[0]); err != nil {
		return nil, err
	}
	e.setStatusLocked(fmt.Sprintf("Imported %d PDF page(s) from %s.", len(keys), base), "")
	return keys, nil
}

// Snapshot 현재 Surface를 커밋한 문서 사본
func (e *Editor) Snapshot(ctx context.Context) (*model.Whiteboard, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.doc == nil {
		return nil, ErrNoDocument
	}
	if err := e.commitLocked(ctx); err != nil {
		return nil, err
	}
	return e.doc.Clone(), nil
}

// ExportDocument JSON 백업 형식
type ExportDocument struct {
	*model.Whiteboard
	ExportedAt time.Time `json:"exportedAt"`
}

// ExportJSON 전체 페이지의 canonical 좌표 문서
func (e *Editor) ExportJSON(ctx context.Context) ([]byte, error) {
	wb, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(ExportDocument{Whiteboard: wb, ExportedAt: e.now().UTC()}, "", "  ")
}

// ExportPNG 활성 페이지만 평면화. withBackground면 PDF 배경 포함
func (e *Editor) ExportPNG(ctx context.Context, withBackground bool) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.doc == nil {
		return nil, ErrNoDocument
	}
	if err := e.commitLocked(ctx); err != nil {
		return nil, err
	}
	var bg image.Image
	if withBackground {
		bg = e.backgrounds[e.doc.ActivePageKey]
	}
	return RenderPNG(e.doc.PageDrawings[e.doc.ActivePageKey], bg, e.width, e.height)
}

// SaveRequest 저장 API에 보낼 필드 (미리보기 이미지 포함)
func (e *Editor) SaveRequest(ctx context.Context) (string, store.WhiteboardFields, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.doc == nil {
		return "", store.WhiteboardFields{}, ErrNoDocument
	}
	if err := e.commitLocked(ctx); err != nil {
		return "", store.WhiteboardFields{}, err
	}
	doc := e.doc.Clone()
	title, author, active := doc.Title, doc.Author, doc.ActivePageKey
	preview := PreviewDataURL(doc.PageDrawings[active], e.backgrounds[active])
	return doc.ID, store.WhiteboardFields{
		Title:         &title,
		Author:        &author,
		Paths:         doc.PageDrawings[active],
		PageDrawings:  doc.PageDrawings,
		PageOrder:     doc.PageOrder,
		PageLabels:    doc.PageLabels,
		ActivePageKey: &active,
		PreviewImage:  &preview,
	}, nil
}

// MarkSaved 저장 성공 후 dirty 해제
func (e *Editor) MarkSaved(wb *model.Whiteboard) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc != nil && wb != nil && wb.ID == e.doc.ID {
		e.doc.UpdatedAt = wb.UpdatedAt
	}
	e.dirty = false
	e.setStatusLocked("Whiteboard saved.", "")
}

// OnSurfaceChange Surface 변경 알림. 프로그램이 획을 불러오는 중이면 무시
func (e *Editor) OnSurfaceChange(strokes []ScreenStroke) {
	if e.hydrating.Load() {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dirty = true
	e.pathCount = len(strokes)
}

// State 현재 상태
func (e *Editor) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := EditorState{
		Zoom:      e.zoom,
		EraseMode: e.erase,
		Dirty:     e.dirty,
		PathCount: e.pathCount,
		Status:    e.status,
		Error:     e.errMsg,
		Pages:     []PageInfo{},
	}
	if e.doc == nil {
		return st
	}
	st.WhiteboardID = e.doc.ID
	st.ActivePageKey = e.doc.ActivePageKey
	for _, key := range e.doc.PageOrder {
		_, hasBg := e.backgrounds[key]
		st.Pages = append(st.Pages, PageInfo{
			Key:           key,
			Label:         e.doc.PageLabels[key],
			Strokes:       len(e.doc.PageDrawings[key]),
			HasBackground: hasBg,
		})
	}
	return st
}

// commitLocked Surface의 화면 획을 canonical로 바꿔 활성 페이지에 저장
func (e *Editor) commitLocked(ctx context.Context) error {
	strokes, err := e.surface.ExportPaths(ctx)
	if err != nil {
		return fmt.Errorf("export paths: %w", err)
	}
	if len(strokes) > model.MaxStrokesPerPage {
		e.setStatusLocked("", fmt.Sprintf("Pages keep at most %d strokes; the oldest were dropped.", model.MaxStrokesPerPage))
		strokes = strokes[len(strokes)-model.MaxStrokesPerPage:]
	}
	canonical := ToCanonical(strokes, e.zoom)
	e.doc.PageDrawings[e.doc.ActivePageKey] = canonical
	e.doc.Paths = model.CloneStrokes(canonical)
	return nil
}

// loadLocked 페이지 획을 현재 배율로 Surface에 올린다 (변경 알림 억제)
func (e *Editor) loadLocked(ctx context.Context, key string) error {
	e.hydrating.Store(true)
	defer e.hydrating.Store(false)

	if err := e.surface.Reset(ctx); err != nil {
		return fmt.Errorf("reset surface: %w", err)
	}
	e.surface.SetBackground(e.backgrounds[key])
	e.surface.SetEraseMode(e.erase)
	strokes := e.doc.PageDrawings[key]
	if err := e.surface.LoadPaths(ctx, ToScreen(strokes, e.zoom)); err != nil {
		return fmt.Errorf("load paths: %w", err)
	}
	e.doc.Paths = model.CloneStrokes(strokes)
	e.pathCount = len(strokes)
	return nil
}

func (e *Editor) appendPageLocked(label string) string {
	key := nextPageKey(e.doc)
	e.doc.PageOrder = append(e.doc.PageOrder, key)
	e.doc.PageDrawings[key] = []model.Stroke{}
	label = sanitize.String(label, model.MaxPageLabelLength)
	if label == "" {
		label = model.DefaultPageLabel(len(e.doc.PageOrder) - 1)
	}
	e.doc.PageLabels[key] = label
	return key
}

func (e *Editor) setStatusLocked(status, errMsg string) {
	e.status = status
	e.errMsg = errMsg
}

// ensurePages 저장소를 거치지 않은 문서도 페이지 불변식을 만족하도록
func ensurePages(doc *model.Whiteboard) {
	if doc.PageDrawings == nil {
		doc.PageDrawings = map[string][]model.Stroke{}
	}
	if doc.PageLabels == nil {
		doc.PageLabels = map[string]string{}
	}
	if len(doc.PageOrder) == 0 {
		doc.PageOrder = []string{model.DefaultPageKey}
		if _, ok := doc.PageDrawings[model.DefaultPageKey]; !ok {
			doc.PageDrawings[model.DefaultPageKey] = model.CloneStrokes(doc.Paths)
		}
	}
	for i, key := range doc.PageOrder {
		if _, ok := doc.PageDrawings[key]; !ok {
			doc.PageDrawings[key] = []model.Stroke{}
		}
		if doc.PageLabels[key] == "" {
			doc.PageLabels[key] = model.DefaultPageLabel(i)
		}
	}
	if !doc.HasPage(doc.ActivePageKey) {
		doc.ActivePageKey = doc.PageOrder[0]
	}
}

func nextPageKey(doc *model.Whiteboard) string {
	for n := len(doc.PageOrder) + 1; ; n++ {
		key := fmt.Sprintf("page-%d", n)
		if _, taken := doc.PageDrawings[key]; !taken && !doc.HasPage(key) {
			return key
		}
	}
}

func pdfBaseName(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		return "PDF"
	}
	return base
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
