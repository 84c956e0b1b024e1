package canvas

import (
	"context"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio-backend/internal/logger"
	"studio-backend/internal/model"
	"studio-backend/internal/store"
)

func newBoardStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	st := store.New(store.NewFileBackend(filepath.Join(t.TempDir(), "school.json")), logger.NewNop())
	title := "Romans"
	res, err := st.CreateWhiteboard(context.Background(), store.WhiteboardFields{
		Title: &title,
		Paths: []model.Stroke{{
			Points:      []model.Point{{X: 5, Y: 5}, {X: 50, Y: 5}},
			StrokeWidth: 4,
			StrokeColor: "#000000",
			DrawMode:    true,
		}},
	})
	require.NoError(t, err)
	return st, res.Whiteboard.ID
}

func TestImportPDFToBoard(t *testing.T) {
	st, id := newBoardStore(t)
	ctx := context.Background()
	raster := &fakeRasterizer{pages: []image.Image{solidPage(color.White), solidPage(color.White)}}

	res, err := ImportPDFToBoard(ctx, st, raster, id, "Handout.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, []string{"page-2", "page-3"}, res.Pages)
	assert.Equal(t, "page-2", res.Whiteboard.ActivePageKey)

	saved, err := st.GetWhiteboard(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"page-1", "page-2", "page-3"}, saved.PageOrder)
	assert.Equal(t, "Handout - Page 2", saved.PageLabels["page-3"])
	assert.Len(t, saved.PageDrawings["page-1"], 1)

	raster.err = errors.New("bad page")
	_, err = ImportPDFToBoard(ctx, st, raster, id, "Other.pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, ErrPDFRender)
	again, err := st.GetWhiteboard(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, saved.PageOrder, again.PageOrder)

	_, err = ImportPDFToBoard(ctx, st, raster, "missing", "x.pdf", nil)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRenderBoardPage(t *testing.T) {
	st, id := newBoardStore(t)
	ctx := context.Background()

	raw, err := RenderBoardPage(ctx, st, id, "", 80, 40)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	_, err = RenderBoardPage(ctx, st, id, "page-9", 80, 40)
	assert.ErrorIs(t, err, ErrUnknownPage)
}
