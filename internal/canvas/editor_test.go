package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio-backend/internal/model"
)

type fakeRasterizer struct {
	pages []image.Image
	err   error
	calls int
}

func (f *fakeRasterizer) Rasterize(ctx context.Context, data []byte) ([]image.Image, error) {
	f.calls++
	return f.pages, f.err
}

func solidPage(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func testBoard() *model.Whiteboard {
	stroke := model.Stroke{
		Points:      []model.Point{{X: 10.1234, Y: 20.5}, {X: 33.3333, Y: 47.0001}},
		StrokeWidth: 4,
		StrokeColor: "#1d4ed8",
		DrawMode:    true,
	}
	return &model.Whiteboard{
		ID:     "wb-1",
		Title:  "Lesson",
		Author: "Ana",
		PageDrawings: map[string][]model.Stroke{
			"page-1": {stroke},
			"page-2": {},
		},
		PageOrder:     []string{"page-1", "page-2"},
		PageLabels:    map[string]string{"page-1": "Page 1", "page-2": "Page 2"},
		ActivePageKey: "page-1",
	}
}

func openEditor(t *testing.T, opts ...EditorOption) (*Editor, *MemorySurface) {
	t.Helper()
	surface := NewMemorySurface()
	e := NewEditor(surface, opts...)
	require.NoError(t, e.Open(context.Background(), testBoard()))
	return e, surface
}

func TestZoomRoundTripKeepsCanonicalPoints(t *testing.T) {
	e, surface := openEditor(t)
	ctx := context.Background()
	before, err := e.Snapshot(ctx)
	require.NoError(t, err)

	require.NoError(t, e.SetZoom(ctx, 2))
	shown, err := surface.ExportPaths(ctx)
	require.NoError(t, err)
	require.Len(t, shown, 1)
	assert.InDelta(t, 20.2468, shown[0].Points[0].X, 1e-9)

	require.NoError(t, e.SetZoom(ctx, 0.75))
	require.NoError(t, e.SetZoom(ctx, 1))

	after, err := e.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.PageDrawings, after.PageDrawings)
	assert.False(t, e.State().Dirty)
}

func TestZoomLadder(t *testing.T) {
	e, _ := openEditor(t)
	ctx := context.Background()

	err := e.SetZoom(ctx, 1.1)
	assert.ErrorIs(t, err, ErrInvalidZoom)
	assert.Equal(t, 1.0, e.Zoom())

	for range len(ZoomLevels) + 2 {
		require.NoError(t, e.ZoomIn(ctx))
	}
	assert.Equal(t, 2.5, e.Zoom())
	for range len(ZoomLevels) + 2 {
		require.NoError(t, e.ZoomOut(ctx))
	}
	assert.Equal(t, 0.75, e.Zoom())
	require.NoError(t, e.ZoomFit(ctx))
	assert.Equal(t, 1.0, e.Zoom())
}

func TestSwitchPageCommitsThenLoads(t *testing.T) {
	e, surface := openEditor(t)
	ctx := context.Background()

	surface.Draw([]ScreenPoint{{X: 1, Y: 1}, {X: 5, Y: 5}}, 6, "#ff0000")
	assert.True(t, e.State().Dirty)
	assert.Equal(t, 2, e.State().PathCount)

	require.NoError(t, e.SwitchPage(ctx, "page-2"))
	shown, err := surface.ExportPaths(ctx)
	require.NoError(t, err)
	assert.Empty(t, shown)

	require.NoError(t, e.SwitchPage(ctx, "page-1"))
	shown, err = surface.ExportPaths(ctx)
	require.NoError(t, err)
	assert.Len(t, shown, 2)

	err = e.SwitchPage(ctx, "page-9")
	assert.ErrorIs(t, err, ErrUnknownPage)
}

func TestHydrationDoesNotMarkDirty(t *testing.T) {
	e, _ := openEditor(t)
	ctx := context.Background()

	require.NoError(t, e.SwitchPage(ctx, "page-2"))
	require.NoError(t, e.SwitchPage(ctx, "page-1"))
	require.NoError(t, e.SetZoom(ctx, 1.5))

	st := e.State()
	assert.False(t, st.Dirty)
	assert.Equal(t, 1, st.PathCount)
}

func TestImportPDFAddsPages(t *testing.T) {
	raster := &fakeRasterizer{pages: []image.Image{solidPage(color.White), solidPage(color.Black)}}
	e, surface := openEditor(t, WithRasterizer(raster))
	ctx := context.Background()
	before, err := e.Snapshot(ctx)
	require.NoError(t, err)

	keys, err := e.ImportPDF(ctx, "/tmp/Romans Notes.pdf", []byte("%PDF"))
	require.NoError(t, err)
	require.Len(t, keys, 2)

	st := e.State()
	require.Len(t, st.Pages, 4)
	assert.Equal(t, keys[0], st.ActivePageKey)
	assert.Equal(t, "Romans Notes - Page 1", st.Pages[2].Label)
	assert.Equal(t, "Romans Notes - Page 2", st.Pages[3].Label)
	assert.True(t, st.Pages[2].HasBackground)
	assert.False(t, st.Pages[0].HasBackground)
	assert.True(t, st.Dirty)
	assert.NotNil(t, surface.Background())

	after, err := e.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.PageDrawings["page-1"], after.PageDrawings["page-1"])
	assert.Empty(t, after.PageDrawings[keys[1]])

	require.NoError(t, e.SwitchPage(ctx, "page-1"))
	assert.Nil(t, surface.Background())
}

func TestImportPDFFailureLeavesDocumentUntouched(t *testing.T) {
	raster := &fakeRasterizer{err: errors.New("page 2: broken xref")}
	e, _ := openEditor(t, WithRasterizer(raster))
	ctx := context.Background()
	before, err := e.Snapshot(ctx)
	require.NoError(t, err)

	keys, err := e.ImportPDF(ctx, "broken.pdf", []byte("junk"))
	assert.ErrorIs(t, err, ErrPDFRender)
	assert.Nil(t, keys)

	after, err := e.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	st := e.State()
	assert.Len(t, st.Pages, 2)
	assert.Equal(t, "page-1", st.ActivePageKey)
	assert.NotEmpty(t, st.Error)

	noRaster, _ := openEditor(t)
	_, err = noRaster.ImportPDF(ctx, "x.pdf", nil)
	assert.ErrorIs(t, err, ErrNoRasterizer)
}

func TestAddRenameClearPage(t *testing.T) {
	e, surface := openEditor(t)
	ctx := context.Background()

	key, err := e.AddPage(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "page-3", key)
	st := e.State()
	assert.Equal(t, key, st.ActivePageKey)
	assert.Equal(t, "Page 3", st.Pages[2].Label)

	require.NoError(t, e.RenamePage(key, "  Timeline  "))
	assert.Equal(t, "Timeline", e.State().Pages[2].Label)
	require.NoError(t, e.RenamePage(key, "   "))
	assert.Equal(t, "Page 3", e.State().Pages[2].Label)
	assert.ErrorIs(t, e.RenamePage("nope", "x"), ErrUnknownPage)

	require.NoError(t, e.SwitchPage(ctx, "page-1"))
	require.NoError(t, e.ClearPage(ctx))
	shown, err := surface.ExportPaths(ctx)
	require.NoError(t, err)
	assert.Empty(t, shown)
	wb, err := e.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, wb.PageDrawings["page-1"])
}

func TestEraseModeFollowsSurface(t *testing.T) {
	e, surface := openEditor(t)
	e.SetEraseMode(true)
	surface.Draw([]ScreenPoint{{X: 3, Y: 3}}, 20, "#000000")

	wb, err := e.Snapshot(context.Background())
	require.NoError(t, err)
	strokes := wb.PageDrawings["page-1"]
	require.Len(t, strokes, 2)
	assert.True(t, strokes[1].IsEraser())
	assert.True(t, e.State().EraseMode)
}

func TestOpenFillsMissingPages(t *testing.T) {
	e := NewEditor(NewMemorySurface())
	wb := &model.Whiteboard{
		ID:    "legacy",
		Paths: []model.Stroke{{Points: []model.Point{{X: 1, Y: 1}}, StrokeWidth: 2, StrokeColor: "#000", DrawMode: true}},
	}
	require.NoError(t, e.Open(context.Background(), wb))

	st := e.State()
	require.Len(t, st.Pages, 1)
	assert.Equal(t, model.DefaultPageKey, st.ActivePageKey)
	assert.Equal(t, 1, st.Pages[0].Strokes)
	assert.Nil(t, wb.PageDrawings, "caller's document is not mutated")
}

func TestExports(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	e, _ := openEditor(t, WithEditorClock(func() time.Time { return now }), WithCanvasSize(64, 48))
	ctx := context.Background()

	raw, err := e.ExportJSON(ctx)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "wb-1", doc["id"])
	assert.Equal(t, "2026-03-04T05:06:07Z", doc["exportedAt"])
	assert.Len(t, doc["pageOrder"], 2)

	pngBytes, err := e.ExportPNG(ctx, true)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 48), img.Bounds())

	id, fields, err := e.SaveRequest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "wb-1", id)
	require.NotNil(t, fields.PreviewImage)
	assert.Contains(t, *fields.PreviewImage, "data:image/png;base64,")
	assert.Equal(t, []string{"page-1", "page-2"}, fields.PageOrder)
	assert.Len(t, fields.Paths, 1)

	e.MarkSaved(&model.Whiteboard{ID: "wb-1", UpdatedAt: now})
	assert.Equal(t, "Whiteboard saved.", e.State().Status)
}

func TestEditorWithoutDocument(t *testing.T) {
	e := NewEditor(NewMemorySurface())
	ctx := context.Background()
	_, err := e.Snapshot(ctx)
	assert.ErrorIs(t, err, ErrNoDocument)
	assert.ErrorIs(t, e.SwitchPage(ctx, "page-1"), ErrNoDocument)
	assert.NoError(t, e.SetZoom(ctx, 2))
	assert.Equal(t, 2.0, e.Zoom())
}
