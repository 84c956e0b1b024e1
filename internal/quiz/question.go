package quiz

import (
	"slices"
	"strings"
)

// Question types
const (
	TypeMCQ   = "mcq"
	TypeText  = "text"
	TypeMulti = "multi"
)

// Modes
const (
	ModeAdaptive = "adaptive"
	ModeCrossRef = "crossref"
	ModeMotif    = "motif"
	ModeExplain  = "explain"
	ModeBook     = "book"
	ModeAlphabet = "alphabet"
)

// Modes in display order
var Modes = []string{ModeAdaptive, ModeCrossRef, ModeMotif, ModeExplain, ModeBook, ModeAlphabet}

// ModeLabels human readable mode names
var ModeLabels = map[string]string{
	ModeAdaptive: "Adaptive Exam",
	ModeCrossRef: "Cross-Reference Focus",
	ModeMotif:    "Motif Drill",
	ModeExplain:  "Explain-Why Mode",
	ModeBook:     "Book Exam",
	ModeAlphabet: "Greek + Hebrew Alphabet Drill",
}

const (
	CategoryCrossRef  = "Cross-Reference"
	CategoryMotif     = "Motif"
	TestamentBoth     = "Both"
	DefaultDifficulty = 2
)

// Question 문제 은행 항목
type Question struct {
	ID          string   `yaml:"id" json:"id"`
	Testament   string   `yaml:"testament" json:"testament"`
	Category    string   `yaml:"category" json:"category"`
	Difficulty  int      `yaml:"difficulty" json:"difficulty"`
	Type        string   `yaml:"type" json:"type"`
	Tags        []string `yaml:"tags" json:"tags"`
	Prompt      string   `yaml:"prompt" json:"prompt"`
	Choices     []string `yaml:"choices" json:"choices,omitempty"`
	Answer      string   `yaml:"answer" json:"-"`
	Answers     []string `yaml:"answers" json:"-"`
	Reference   string   `yaml:"reference" json:"reference"`
	Explanation string   `yaml:"explanation" json:"-"`
}

// Level difficulty, 0 means the default of 2
func (q *Question) Level() int {
	if q.Difficulty <= 0 {
		return DefaultDifficulty
	}
	return q.Difficulty
}

func (q *Question) hasTag(tag string) bool {
	return slices.Contains(q.Tags, tag)
}

// IsCrossRef cross-reference 카테고리 또는 태그
func (q *Question) IsCrossRef() bool {
	return q.Category == CategoryCrossRef || q.hasTag("cross-reference")
}

// IsMotif motif 카테고리 또는 motif/theme 태그
func (q *Question) IsMotif() bool {
	return q.Category == CategoryMotif || q.hasTag("motif") || q.hasTag("theme")
}

// IsThemeHeavy cross-reference나 motif 성격의 문제
func (q *Question) IsThemeHeavy() bool {
	return q.IsCrossRef() || q.IsMotif()
}

// CorrectAnswerText 정답 표시 문자열
func (q *Question) CorrectAnswerText() string {
	switch q.Type {
	case TypeMCQ:
		return q.Answer
	case TypeText:
		return strings.Join(q.Answers, " / ")
	default:
		return strings.Join(q.Answers, "; ")
	}
}
