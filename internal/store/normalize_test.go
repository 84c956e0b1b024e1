package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio-backend/internal/model"
)

func TestDecodeSchoolRejectsNonObject(t *testing.T) {
	_, err := DecodeSchool([]byte(`[1,2,3]`))
	assert.Error(t, err)
	_, err = DecodeSchool([]byte(`nope`))
	assert.Error(t, err)
}

func TestDecodeWhiteboardSelfHeals(t *testing.T) {
	school, err := DecodeSchool([]byte(`{
		"whiteboards": [
			{"id": "wb-1", "title": "", "pageDrawings": "broken", "paths": [{"paths": [{"x": 1, "y": 2}]}], "activePageKey": "nope"},
			{"title": "no id"},
			{"id": "wb-2", "updatedAt": "2026-05-01T00:00:00Z",
			 "pageDrawings": {"page-1": [], "page-10": [], "page-2": [], "bad key!": []},
			 "pageOrder": ["page-2", "page-2", "ghost"],
			 "pageLabels": {"page-2": "Second"}}
		]
	}`))
	require.NoError(t, err)
	require.Len(t, school.Whiteboards, 2)

	wb2 := school.Whiteboards[0]
	assert.Equal(t, "wb-2", wb2.ID)
	assert.Equal(t, []string{"page-2", "bad-key-", "page-1", "page-10"}, wb2.PageOrder)
	assert.Equal(t, "Second", wb2.PageLabels["page-2"])
	assert.Equal(t, "Page 3", wb2.PageLabels["page-1"])
	assert.Equal(t, "page-2", wb2.ActivePageKey)

	wb1 := school.Whiteboards[1]
	assert.Equal(t, model.DefaultWhiteboardTitle, wb1.Title)
	assert.Equal(t, []string{"page-1"}, wb1.PageOrder)
	assert.Equal(t, "page-1", wb1.ActivePageKey)
	require.Len(t, wb1.PageDrawings["page-1"], 1)
	assert.Equal(t, float64(model.DefaultStrokeWidth), wb1.PageDrawings["page-1"][0].StrokeWidth)
}

func TestDecodeStrokeLimits(t *testing.T) {
	var b strings.Builder
	b.WriteString(`[`)
	for i := 0; i < model.MaxStrokesPerPage+10; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"paths":[{"x":999999,"y":-999999},{"x":"3","y":null}],"drawMode":false}`)
	}
	b.WriteString(`]`)

	school, err := DecodeSchool([]byte(`{"whiteboards":[{"id":"w","pageDrawings":{"page-1":` + b.String() + `}}]}`))
	require.NoError(t, err)
	page := school.Whiteboards[0].PageDrawings["page-1"]
	require.Len(t, page, model.MaxStrokesPerPage)
	assert.Equal(t, model.Point{X: model.MaxCoordinate, Y: -model.MaxCoordinate}, page[0].Points[0])
	assert.Equal(t, model.Point{X: 3, Y: 0}, page[0].Points[1])
	assert.True(t, page[0].IsEraser())
}

func TestDecodeSchoolFiltersInvalidItems(t *testing.T) {
	school, err := DecodeSchool([]byte(`{
		"classroom": {"name": "Room 7"},
		"resources": [
			{"id": "r1", "title": "ok", "url": "https://example.com"},
			{"id": "r2", "title": "bad", "url": "ftp://example.com"}
		],
		"questions": [{"id": "q1", "message": "no author"}],
		"announcements": "nope"
	}`))
	require.NoError(t, err)
	assert.Equal(t, "Room 7", school.Classroom.Name)
	assert.Equal(t, "LEARN-WITH-ME", school.Classroom.InviteCode)
	require.Len(t, school.Resources, 1)
	assert.Equal(t, "Resource", school.Resources[0].Type)
	assert.Empty(t, school.Questions)
	assert.Len(t, school.Announcements, 1, "non-array falls back to default")
}

func TestNaturalLess(t *testing.T) {
	assert.True(t, naturalLess("page-2", "page-10"))
	assert.False(t, naturalLess("page-10", "page-2"))
	assert.True(t, naturalLess("a", "b"))
}
