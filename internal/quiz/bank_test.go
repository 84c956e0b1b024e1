package quiz

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBank(t *testing.T) {
	b, err := DefaultBank()
	require.NoError(t, err)

	assert.Len(t, b.Questions, 43)
	assert.Len(t, b.Alphabet, (24+22)*2)
	assert.Len(t, b.Chains, 12)

	q, ok := b.Question("exod-passover-blood")
	require.True(t, ok)
	assert.Equal(t, "Blood of the lamb", q.Answer)
	assert.Equal(t, "Exodus", b.PrimaryBook("exod-passover-blood"))
	assert.Equal(t, "Genesis", b.PrimaryBook("gen-abram-call"))

	_, ok = b.Question("alphabet-hebrew-script-1")
	assert.True(t, ok)

	scopes := b.BookScopes()
	require.NotEmpty(t, scopes)
	assert.Equal(t, "Genesis", scopes[0])
	assert.Equal(t, "Revelation", scopes[len(scopes)-1])
}

func TestAlphabetQuestionsAreDeterministic(t *testing.T) {
	first, err := NewBank(questionsYAML, chainsYAML, alphabetsYAML)
	require.NoError(t, err)
	second, err := NewBank(questionsYAML, chainsYAML, alphabetsYAML)
	require.NoError(t, err)

	for i := range first.Alphabet {
		a, b := first.Alphabet[i], second.Alphabet[i]
		assert.Equal(t, a.Choices, b.Choices)
		assert.Len(t, a.Choices, 4)
		assert.Contains(t, a.Choices, a.Answer)
	}
}

func TestNewBankRejectsBadQuestions(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unsupported type", "- {id: x, prompt: p, type: essay}"},
		{"mcq answer missing", "- {id: x, prompt: p, type: mcq, choices: [a, b], answer: c}"},
		{"duplicate id", "- {id: x, prompt: p, type: text, answers: [a]}\n- {id: x, prompt: q, type: text, answers: [b]}"},
		{"missing prompt", "- {id: x, type: text, answers: [a]}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBank([]byte(tt.yaml), []byte("[]"), []byte("{}"))
			assert.Error(t, err)
		})
	}

	_, err := NewBank([]byte("- {id: x, prompt: p, type: essay}"), []byte("[]"), []byte("{}"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestInferPrimaryBook(t *testing.T) {
	tests := map[string]string{
		"Exodus 12:13; John 1:29": "Exodus",
		"1 Corinthians 5:7":       "1 Corinthians",
		"Song of Solomon 2:4":     "Song of Solomon",
		"Ps 23:1":                 "Psalms",
		"Greek Alphabet":          "",
		"":                        "",
	}
	for ref, want := range tests {
		assert.Equal(t, want, InferPrimaryBook(ref), ref)
	}
}

func TestAlphabetChoicesSmallTable(t *testing.T) {
	letters := []Letter{{Script: "a"}, {Script: "b"}, {Script: "c"}}
	got := alphabetChoices(letters, 1, func(l Letter) string { return l.Script }, rand.New(rand.NewSource(1)))
	assert.ElementsMatch(t, []string{"a", "b", "c"}, got)
}
