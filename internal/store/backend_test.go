package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio-backend/internal/config"
	"studio-backend/internal/database"
	"studio-backend/internal/logger"
)

func TestFileBackendMissing(t *testing.T) {
	b := NewFileBackend(filepath.Join(t.TempDir(), "absent.json"))
	_, err := b.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestFileBackendRoundTrip(t *testing.T) {
	dir := t.TempDir()
	b := NewFileBackend(filepath.Join(dir, "a", "b", "school.json"))
	ctx := context.Background()

	require.NoError(t, b.Save(ctx, []byte(`{"x":1}`)))
	require.NoError(t, b.Save(ctx, []byte(`{"x":2}`)))
	data, err := b.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":2}`, string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "a", "b"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestGormBackendPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	db, err := database.Open(database.Config{Driver: "postgres", DSN: dsn})
	require.NoError(t, err)
	defer database.Close(db)
	require.NoError(t, db.Exec("DELETE FROM school_documents").Error)

	backend := NewGormBackend(db)
	ctx := context.Background()
	_, err = backend.Load(ctx)
	assert.ErrorIs(t, err, ErrNoDocument)

	s := New(backend, logger.NewNop())
	res, err := s.CreateWhiteboard(ctx, WhiteboardFields{Title: ptr("SQL board")})
	require.NoError(t, err)

	got, err := s.GetWhiteboard(ctx, res.Whiteboard.ID)
	require.NoError(t, err)
	assert.Equal(t, "SQL board", got.Title)
	assert.NoError(t, backend.Ping(ctx))
}

func TestOpenBackendSQLite(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "studio.db") + "?_busy_timeout=5000"
	backend, closeBackend, err := OpenBackend(config.StoreConfig{Driver: "sqlite", DSN: dsn}, logger.NewNop())
	require.NoError(t, err)
	defer closeBackend()
	require.IsType(t, &GormBackend{}, backend)

	ctx := context.Background()
	s := New(backend, logger.NewNop())
	school, err := s.Read(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, school.Announcements)

	res, err := s.CreateWhiteboard(ctx, WhiteboardFields{Title: ptr("Row board")})
	require.NoError(t, err)
	got, err := s.GetWhiteboard(ctx, res.Whiteboard.ID)
	require.NoError(t, err)
	assert.Equal(t, "Row board", got.Title)
}

func TestOpenBackendDefaultsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "school.json")
	backend, closeBackend, err := OpenBackend(config.StoreConfig{Path: path}, logger.NewNop())
	require.NoError(t, err)
	defer closeBackend()

	fb, ok := backend.(*FileBackend)
	require.True(t, ok)
	assert.Equal(t, path, fb.Path())
}
