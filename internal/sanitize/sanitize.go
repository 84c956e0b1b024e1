// Package sanitize holds the total coercion helpers used at the store
// boundary. None of them return errors: malformed input collapses to a safe
// default value.
package sanitize

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	MaxURLLength       = 500
	MaxPageKeyLength   = 80
	MaxColorLength     = 24
	MaxDataURLLength   = 650000
	DefaultStrokeColor = "#111111"
	DefaultStringLimit = 600
)

var (
	pageKeyInvalid = regexp.MustCompile(`[^a-zA-Z0-9:_-]`)
	hexColor       = regexp.MustCompile(`^#[0-9a-fA-F]{3,8}$`)
	rgbColor       = regexp.MustCompile(`^rgba?\([^)]{1,24}\)$`)
	dataURLImage   = regexp.MustCompile(`(?i)^data:image/(png|jpeg);base64,[A-Za-z0-9+/=]+$`)
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// String 문자열로 변환 후 trim, max 글자(rune) 기준으로 자름
func String(v any, max int) string {
	if max <= 0 {
		max = DefaultStringLimit
	}
	s := strings.TrimSpace(stringify(v))
	if runes := []rune(s); len(runes) > max {
		s = string(runes[:max])
	}
	return s
}

// Date returns the value as a YYYY-MM-DD date, or "" if it does not parse.
func Date(v any) string {
	s := strings.TrimSpace(stringify(v))
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format("2006-01-02")
		}
	}
	return ""
}

// URL accepts absolute http/https URLs only.
func URL(v any) string {
	s := String(v, MaxURLLength)
	if s == "" {
		return ""
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// Number 숫자로 변환 후 [min, max] 범위로 제한. 변환 실패 시 fallback
func Number(v any, fallback, min, max float64) float64 {
	n, ok := toFloat(v)
	if !ok {
		return fallback
	}
	return math.Min(max, math.Max(min, n))
}

// PageKey 페이지 키 정규화 (허용되지 않는 문자는 "-"로 치환)
func PageKey(v any) string {
	s := String(v, MaxPageKeyLength)
	return pageKeyInvalid.ReplaceAllString(s, "-")
}

// StrokeColor returns a hex or rgb()/rgba() color, else DefaultStrokeColor.
func StrokeColor(v any) string {
	s := String(v, MaxColorLength)
	if hexColor.MatchString(s) || rgbColor.MatchString(s) {
		return s
	}
	return DefaultStrokeColor
}

// DataURLImage keeps base64 png/jpeg data URLs within the size cap.
func DataURLImage(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" || len(s) > MaxDataURLLength {
		return ""
	}
	if !dataURLImage.MatchString(s) {
		return ""
	}
	return s
}

// Bool is true only for an actual boolean true.
func Bool(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

func toFloat(v any) (float64, bool) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case int32:
		n = float64(t)
	case uint32:
		n = float64(t)
	case uint64:
		n = float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool, int, int64:
		return fmt.Sprint(t)
	default:
		return ""
	}
}
