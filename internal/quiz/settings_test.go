package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettingsNormalize(t *testing.T) {
	s := Settings{Mode: " Motif ", Testament: "Both", BookScope: "rom"}.Normalize()
	assert.Equal(t, ModeMotif, s.Mode)
	assert.Equal(t, TestamentAll, s.Testament)
	assert.Equal(t, "Romans", s.BookScope)
	assert.Equal(t, 12, s.Length)
	assert.Equal(t, 45, s.Seconds)
	assert.Equal(t, DefaultDifficulty, s.Difficulty)
	assert.NoError(t, s.Validate())
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"unknown mode", func(s *Settings) { s.Mode = "speedrun" }},
		{"bad testament", func(s *Settings) { s.Testament = "Apocrypha" }},
		{"length too long", func(s *Settings) { s.Length = 500 }},
		{"seconds too short", func(s *Settings) { s.Seconds = 2 }},
		{"difficulty out of range", func(s *Settings) { s.Difficulty = 9 }},
		{"unknown book", func(s *Settings) { s.BookScope = "Hezekiah" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)
		})
	}
	assert.NoError(t, DefaultSettings().Validate())
}

func TestRetakeLength(t *testing.T) {
	assert.Equal(t, 5, RetakeLength(1))
	assert.Equal(t, 17, RetakeLength(17))
	assert.Equal(t, MaxRetakeLength, RetakeLength(90))
}
