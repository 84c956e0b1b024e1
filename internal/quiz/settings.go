package quiz

import (
	"errors"
	"fmt"
	"strings"

	"studio-backend/internal/validate"
)

// Testament scopes
const (
	TestamentAll = "all"
	TestamentOT  = "OT"
	TestamentNT  = "NT"
)

// ErrInvalidSettings 세션 설정 검증 실패
var ErrInvalidSettings = errors.New("invalid quiz settings")

// BookScopeAll 책 범위 미지정
const BookScopeAll = "all"

// MaxRetakeLength 오답 재시험 최대 길이
const MaxRetakeLength = 40

// Settings 세션 시작 설정
type Settings struct {
	Mode       string `json:"mode" validate:"required,oneof=adaptive crossref motif explain book alphabet"`
	Testament  string `json:"testament" validate:"required,oneof=OT NT Both all"`
	BookScope  string `json:"bookScope" validate:"omitempty,max=40"`
	Length     int    `json:"length" validate:"min=1,max=100"`
	Seconds    int    `json:"seconds" validate:"min=5,max=600"`
	Difficulty int    `json:"difficulty" validate:"min=1,max=5"`
}

// DefaultSettings 설정 화면 기본값
func DefaultSettings() Settings {
	return Settings{
		Mode:       ModeAdaptive,
		Testament:  TestamentAll,
		BookScope:  BookScopeAll,
		Length:     12,
		Seconds:    45,
		Difficulty: DefaultDifficulty,
	}
}

// Normalize 빈 값 기본값 채우기, "Both"는 all로 취급, 책 이름 정규화
func (s Settings) Normalize() Settings {
	def := DefaultSettings()
	s.Mode = strings.ToLower(strings.TrimSpace(s.Mode))
	if s.Mode == "" {
		s.Mode = def.Mode
	}
	s.Testament = strings.TrimSpace(s.Testament)
	switch strings.ToLower(s.Testament) {
	case "", "all", "both":
		s.Testament = TestamentAll
	case "ot":
		s.Testament = TestamentOT
	case "nt":
		s.Testament = TestamentNT
	}
	if s.BookScope == "" || strings.EqualFold(s.BookScope, BookScopeAll) {
		s.BookScope = BookScopeAll
	} else if book := ResolveBook(s.BookScope); book != "" {
		s.BookScope = book
	}
	if s.Length == 0 {
		s.Length = def.Length
	}
	if s.Seconds == 0 {
		s.Seconds = def.Seconds
	}
	if s.Difficulty == 0 {
		s.Difficulty = def.Difficulty
	}
	return s
}

// Validate 태그 검증 후 책 범위 확인
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, validate.Message(err))
	}
	if s.BookScope != BookScopeAll && BookNumber(s.BookScope) == 0 {
		return fmt.Errorf("%w: unknown book %q", ErrInvalidSettings, s.BookScope)
	}
	return nil
}

// RetakeLength 오답 수에 따른 재시험 길이
func RetakeLength(misses int) int {
	return min(MaxRetakeLength, max(5, misses))
}
