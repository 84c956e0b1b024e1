package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multiQuestion() *Question {
	return &Question{
		ID:       "multi-abc",
		Type:     TypeMulti,
		Choices:  []string{"A", "B", "C", "D"},
		Answers:  []string{"A", "B", "C"},
		Prompt:   "Pick the three",
		Category: "Motif",
	}
}

func TestGradeMultiPartialCredit(t *testing.T) {
	g, err := GradeAnswer(multiQuestion(), Draft{SelectedMany: []string{"A", "B", "D"}})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, g.Ratio, 1e-9)
	assert.False(t, g.Correct)
	assert.Equal(t, "A; B; D", g.Response)
	assert.Equal(t, "A; B; C", g.CorrectAnswerText)
}

func TestGradeMulti(t *testing.T) {
	tests := []struct {
		name     string
		selected []string
		ratio    float64
		correct  bool
	}{
		{"exact", []string{"C", "B", "A"}, 1, true},
		{"missing one", []string{"A", "B"}, 2.0 / 3, false},
		{"only wrong", []string{"D"}, 0, false},
		{"duplicates count once", []string{"A", "A", "B", "C"}, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := GradeAnswer(multiQuestion(), Draft{SelectedMany: tt.selected})
			require.NoError(t, err)
			assert.InDelta(t, tt.ratio, g.Ratio, 1e-9)
			assert.Equal(t, tt.correct, g.Correct)
		})
	}
}

func TestGradeValidation(t *testing.T) {
	mcq := &Question{ID: "m", Type: TypeMCQ, Choices: []string{"x", "y"}, Answer: "x"}
	text := &Question{ID: "t", Type: TypeText, Answers: []string{"Sinai"}}

	_, err := GradeAnswer(mcq, Draft{})
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.Equal(t, "Pick an option before submitting.", Message(err))

	_, err = GradeAnswer(text, Draft{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = GradeAnswer(multiQuestion(), Draft{})
	assert.ErrorIs(t, err, ErrEmptyMulti)
	assert.Equal(t, "Select at least one option.", Message(err))

	_, err = GradeAnswer(&Question{Type: "essay"}, Draft{Text: "x"})
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Equal(t, "Unsupported question type.", Message(err))
}

func TestGradeMCQAndText(t *testing.T) {
	mcq := &Question{ID: "m", Type: TypeMCQ, Choices: []string{"x", "y"}, Answer: "x"}
	g, err := GradeAnswer(mcq, Draft{Selected: "y"})
	require.NoError(t, err)
	assert.False(t, g.Correct)
	assert.Zero(t, g.Ratio)

	text := &Question{ID: "t", Type: TypeText, Answers: []string{"Mount Sinai", "Horeb"}}
	g, err = GradeAnswer(text, Draft{Text: "  mount   SINAI! "})
	require.NoError(t, err)
	assert.True(t, g.Correct)
	assert.Equal(t, "mount   SINAI!", g.Response)
	assert.Equal(t, "Mount Sinai / Horeb", g.CorrectAnswerText)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "elohim", Normalize("Élōhîm"))
	assert.Equal(t, "john 3:16", Normalize("  John   3:16. "))
	assert.Equal(t, "son-of-man", Normalize("Son-of-Man!"))
	assert.Equal(t, "", Normalize(""))
}

func TestAssessExplanation(t *testing.T) {
	q := &Question{
		ID:          "exod-passover-blood",
		Type:        TypeMCQ,
		Category:    "Torah",
		Tags:        []string{"passover"},
		Answer:      "Blood of the lamb",
		Reference:   "Exodus 12:13",
		Explanation: "The blood was a sign on the houses.",
	}

	_, err := AssessExplanation(q, "too short to count")
	assert.ErrorIs(t, err, ErrShortExplain)

	e, err := AssessExplanation(q, "The lamb blood marked each house because passover protected Israel")
	require.NoError(t, err)
	assert.Contains(t, e.Hits, "blood")
	assert.Contains(t, e.Hits, "lamb")
	assert.Contains(t, e.Hits, "passover")
	assert.LessOrEqual(t, len(e.Keywords), maxRubricKeywords)
	// 3 hits over a denominator of 5, plus the connector bonus
	assert.InDelta(t, 0.75, e.Ratio, 1e-9)

	g := BlendExplanation(Grade{Response: "Blood of the lamb", Ratio: 1, Correct: true}, e)
	assert.True(t, g.Correct)
	assert.InDelta(t, 0.7+0.75*0.3, g.Ratio, 1e-9)
	assert.Contains(t, g.Response, " | Why: ")

	weak, err := AssessExplanation(q, "i really do not know this one at all")
	require.NoError(t, err)
	g = BlendExplanation(Grade{Response: "Blood of the lamb", Ratio: 1, Correct: true}, weak)
	assert.False(t, g.Correct)
	assert.InDelta(t, 0.7+weak.Ratio*0.3, g.Ratio, 1e-9)
}

func TestRubricKeywordsSkipStopwords(t *testing.T) {
	q := &Question{Answer: "The covenant with Abraham", Explanation: "because of faith"}
	kw := RubricKeywords(q)
	assert.Equal(t, []string{"covenant", "abraham", "faith"}, kw)
}

func TestFeedbackMessage(t *testing.T) {
	assert.Equal(t, "Time expired.", FeedbackMessage(Grade{}, true))
	assert.Equal(t, "Correct.", FeedbackMessage(Grade{Correct: true, Ratio: 1}, false))
	assert.Equal(t, "Partially correct.", FeedbackMessage(Grade{Ratio: 0.5}, false))
	assert.Equal(t, "Incorrect.", FeedbackMessage(Grade{}, false))
}
