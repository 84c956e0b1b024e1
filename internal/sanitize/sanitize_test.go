package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "hello", String("  hello  ", 10))
	assert.Equal(t, "hel", String("hello", 3))
	assert.Equal(t, "", String(nil, 10))
	assert.Equal(t, "42", String(42.0, 10))
	assert.Equal(t, "", String(map[string]any{"a": 1}, 10))
	assert.Equal(t, "가나", String("가나다", 2))
}

func TestDate(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"2026-03-01", "2026-03-01"},
		{"2026-03-01T10:00:00Z", "2026-03-01"},
		{"not a date", ""},
		{"", ""},
		{12, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Date(tt.in), "input %v", tt.in)
	}
}

func TestURL(t *testing.T) {
	assert.Equal(t, "https://example.com/study-guide", URL("https://example.com/study-guide"))
	assert.Equal(t, "http://example.com", URL(" http://example.com "))
	assert.Equal(t, "", URL("ftp://example.com/file"))
	assert.Equal(t, "", URL("javascript:alert(1)"))
	assert.Equal(t, "", URL("example.com"))
	assert.Equal(t, "", URL(nil))
}

func TestNumber(t *testing.T) {
	assert.Equal(t, 4.0, Number(nil, 4, 1, 60))
	assert.Equal(t, 60.0, Number(500.0, 4, 1, 60))
	assert.Equal(t, 1.0, Number(-3, 4, 1, 60))
	assert.Equal(t, 12.5, Number("12.5", 4, 1, 60))
	assert.Equal(t, 4.0, Number("abc", 4, 1, 60))
}

func TestPageKey(t *testing.T) {
	assert.Equal(t, "page-1", PageKey("page-1"))
	assert.Equal(t, "pdf:my-file-2", PageKey(" pdf:my file/2 "))
	assert.Len(t, PageKey(strings.Repeat("a", 200)), MaxPageKeyLength)
	assert.Equal(t, "", PageKey(nil))
}

func TestStrokeColor(t *testing.T) {
	assert.Equal(t, "#abc", StrokeColor("#abc"))
	assert.Equal(t, "#11223344", StrokeColor("#11223344"))
	assert.Equal(t, "rgba(0,0,0,0.5)", StrokeColor("rgba(0,0,0,0.5)"))
	assert.Equal(t, DefaultStrokeColor, StrokeColor("red"))
	assert.Equal(t, DefaultStrokeColor, StrokeColor("#12"))
	assert.Equal(t, DefaultStrokeColor, StrokeColor(nil))
}

func TestDataURLImage(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", DataURLImage("data:image/png;base64,iVBORw0KGgo="))
	assert.Equal(t, "DATA:IMAGE/JPEG;base64,AAAA", DataURLImage("DATA:IMAGE/JPEG;base64,AAAA"))
	assert.Equal(t, "", DataURLImage("data:image/gif;base64,AAAA"))
	assert.Equal(t, "", DataURLImage("data:image/png;base64,<script>"))
	assert.Equal(t, "", DataURLImage("data:image/png;base64,"+strings.Repeat("A", MaxDataURLLength)))
	assert.Equal(t, "", DataURLImage(42))
}
