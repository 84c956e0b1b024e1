package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type form struct {
	Title string `json:"title" validate:"notblank"`
	Mode  string `json:"mode" validate:"oneof=fast slow"`
	Count int    `json:"count" validate:"min=1"`
}

func TestStructNotBlank(t *testing.T) {
	err := Struct(form{Title: "   ", Mode: "fast", Count: 1})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"title": "title is required"}, Fields(err))
	assert.Equal(t, "title is required", Message(err))

	assert.NoError(t, Struct(form{Title: "Ruth", Mode: "slow", Count: 3}))
}

func TestMessageUsesJSONNamesInOrder(t *testing.T) {
	err := Struct(form{Title: "x", Mode: "medium", Count: 0})
	require.Error(t, err)

	fields := Fields(err)
	assert.Len(t, fields, 2)
	assert.Contains(t, fields, "count")
	assert.Contains(t, fields, "mode")
	assert.Contains(t, fields["mode"], "fast slow")
	assert.Equal(t, fields["count"], Message(err))
}

func TestFieldsIgnoresOtherErrors(t *testing.T) {
	plain := errors.New("boom")
	assert.Nil(t, Fields(plain))
	assert.Equal(t, "boom", Message(plain))
	assert.Equal(t, "", Message(nil))
}
