package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBank() *Bank {
	return &Bank{
		Questions: []Question{
			{ID: "ot-easy", Testament: "OT", Category: "Torah", Difficulty: 1, Type: TypeMCQ, Reference: "Exodus 12:13"},
			{ID: "ot-text", Testament: "OT", Category: "Torah", Difficulty: 2, Type: TypeText, Reference: "Exodus 19:20"},
			{ID: "both-cross", Testament: "Both", Category: CategoryCrossRef, Difficulty: 3, Type: TypeMCQ, Reference: "Genesis 15:6"},
			{ID: "nt-motif", Testament: "NT", Category: CategoryMotif, Difficulty: 4, Type: TypeMulti, Reference: "John 1:29"},
			{ID: "nt-theme", Testament: "NT", Category: "Gospels", Difficulty: 2, Type: TypeMCQ, Tags: []string{"theme"}, Reference: "John 6:35"},
			{ID: "nt-plain", Testament: "NT", Category: "Gospels", Difficulty: 1, Type: TypeMCQ, Reference: "Mark 1:15"},
		},
		Alphabet: []Question{
			{ID: "alphabet-greek-name-1", Type: TypeMCQ, Tags: []string{"alphabet", "greek"}},
			{ID: "alphabet-hebrew-name-1", Type: TypeMCQ, Tags: []string{"alphabet", "hebrew"}},
		},
		books: map[string]string{
			"ot-easy": "Exodus", "ot-text": "Exodus", "both-cross": "Genesis",
			"nt-motif": "John", "nt-theme": "John", "nt-plain": "Mark",
		},
	}
}

func ids(qs []Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func settings(mode, testament string, difficulty, length int) Settings {
	return Settings{Mode: mode, Testament: testament, BookScope: BookScopeAll, Length: length, Seconds: 30, Difficulty: difficulty}
}

func TestFilterTestament(t *testing.T) {
	b := testBank()
	got := ids(Filter(b, settings(ModeAdaptive, TestamentOT, 3, 10)))
	assert.Equal(t, []string{"ot-easy", "ot-text", "both-cross"}, got)

	got = ids(Filter(b, settings(ModeAdaptive, TestamentAll, 3, 10)))
	assert.Len(t, got, 6)
}

func TestFilterAlphabetScripts(t *testing.T) {
	b := testBank()
	assert.Equal(t, []string{"alphabet-hebrew-name-1"}, ids(Filter(b, settings(ModeAlphabet, TestamentOT, 3, 10))))
	assert.Equal(t, []string{"alphabet-greek-name-1"}, ids(Filter(b, settings(ModeAlphabet, TestamentNT, 3, 10))))
	assert.Len(t, Filter(b, settings(ModeAlphabet, TestamentAll, 3, 10)), 2)
}

func TestFilterThemeModesOrderBasePoolFirst(t *testing.T) {
	b := testBank()
	got := ids(Filter(b, settings(ModeMotif, TestamentAll, 3, 10)))
	assert.Equal(t, []string{"nt-motif", "nt-theme", "both-cross", "ot-easy", "ot-text", "nt-plain"}, got)

	got = ids(Filter(b, settings(ModeCrossRef, TestamentAll, 3, 10)))
	assert.Equal(t, []string{"both-cross", "nt-motif", "nt-theme", "ot-easy", "ot-text", "nt-plain"}, got)
}

func TestFilterBookScope(t *testing.T) {
	b := testBank()
	s := settings(ModeBook, TestamentAll, 3, 10)
	s.BookScope = "John"
	assert.Equal(t, []string{"nt-theme", "nt-motif"}, ids(Filter(b, s)))

	s.BookScope = BookScopeAll
	got := Filter(b, s)
	require.Len(t, got, 6)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Level(), got[i].Level())
	}
}

func TestFilterLowDifficultyPrefersApproachable(t *testing.T) {
	b := testBank()

	// preferred set cannot fill the session: everything stays, preferred first
	got := ids(Filter(b, settings(ModeAdaptive, TestamentAll, 1, 10)))
	assert.Equal(t, []string{"ot-easy", "nt-plain", "ot-text", "both-cross", "nt-motif", "nt-theme"}, got)

	// preferred set fills the session: complex items are excluded
	got = ids(Filter(b, settings(ModeAdaptive, TestamentAll, 1, 2)))
	assert.Equal(t, []string{"ot-easy", "nt-plain"}, got)

	got = ids(Filter(b, settings(ModeAdaptive, TestamentAll, 2, 4)))
	assert.Equal(t, []string{"ot-easy", "ot-text", "both-cross", "nt-theme", "nt-plain"}, got)
	assert.NotContains(t, got, "nt-motif")
}
