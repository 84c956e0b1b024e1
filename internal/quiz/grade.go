package quiz

import (
	"errors"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrUnsupportedType = errors.New("unsupported question type")
	ErrNoSelection     = errors.New("pick an option before submitting")
	ErrEmptyText       = errors.New("type your answer before submitting")
	ErrEmptyMulti      = errors.New("select at least one option")
	ErrShortExplain    = errors.New("explain-why mode requires a short reason (at least 6 words)")
)

// User-facing messages for each grading validation error
var gradeMessages = map[error]string{
	ErrUnsupportedType: "Unsupported question type.",
	ErrNoSelection:     "Pick an option before submitting.",
	ErrEmptyText:       "Type your answer before submitting.",
	ErrEmptyMulti:      "Select at least one option.",
	ErrShortExplain:    "Explain-Why mode requires a short reason (at least 6 words).",
}

// Message 채점 검증 오류를 화면 문구로 변환
func Message(err error) string {
	for target, msg := range gradeMessages {
		if errors.Is(err, target) {
			return msg
		}
	}
	return err.Error()
}

// MinExplainWords explain 모드 최소 단어 수
const MinExplainWords = 6

var (
	answerDisallowed = regexp.MustCompile(`[^a-z0-9:\s-]`)
	answerSpaces     = regexp.MustCompile(`\s+`)
)

// Normalize 소문자화, 발음 구별 기호 제거, 허용 문자 외 삭제, 공백 정리
func Normalize(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(value))
	if err != nil {
		out = strings.ToLower(value)
	}
	out = answerDisallowed.ReplaceAllString(out, "")
	out = answerSpaces.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// Draft 학습자가 제출한 답안
type Draft struct {
	Selected     string   `json:"selected"`
	SelectedMany []string `json:"selectedMany"`
	Text         string   `json:"text"`
	Explain      string   `json:"explain"`
}

// Grade 채점 결과
type Grade struct {
	Response          string   `json:"response"`
	Ratio             float64  `json:"ratio"`
	Correct           bool     `json:"correct"`
	CorrectAnswerText string   `json:"correctAnswer"`
	BaseRatio         float64  `json:"baseRatio"`
	ExplainRatio      *float64 `json:"explainRatio,omitempty"`
	ExplainHits       []string `json:"explainHits,omitempty"`
	ExplainText       string   `json:"explainText,omitempty"`
}

// GradeAnswer 문제 유형별 채점. 답이 비어 있으면 검증 오류
func GradeAnswer(q *Question, d Draft) (Grade, error) {
	switch q.Type {
	case TypeMCQ:
		if d.Selected == "" {
			return Grade{}, ErrNoSelection
		}
		correct := d.Selected == q.Answer
		return Grade{
			Response:          d.Selected,
			Ratio:             boolRatio(correct),
			Correct:           correct,
			CorrectAnswerText: q.CorrectAnswerText(),
		}, nil

	case TypeText:
		response := strings.TrimSpace(d.Text)
		if response == "" {
			return Grade{}, ErrEmptyText
		}
		given := Normalize(response)
		correct := slices.ContainsFunc(q.Answers, func(a string) bool { return Normalize(a) == given })
		return Grade{
			Response:          response,
			Ratio:             boolRatio(correct),
			Correct:           correct,
			CorrectAnswerText: q.CorrectAnswerText(),
		}, nil

	case TypeMulti:
		selected := uniqueStrings(d.SelectedMany)
		if len(selected) == 0 {
			return Grade{}, ErrEmptyMulti
		}
		answers := uniqueStrings(q.Answers)
		var hits, wrong int
		for _, s := range selected {
			if slices.Contains(answers, s) {
				hits++
			} else {
				wrong++
			}
		}
		missing := 0
		for _, a := range answers {
			if !slices.Contains(selected, a) {
				missing++
			}
		}
		ratio := clamp01((float64(hits) - float64(wrong)*0.5) / float64(max(1, len(answers))))
		return Grade{
			Response:          strings.Join(selected, "; "),
			Ratio:             ratio,
			Correct:           missing == 0 && wrong == 0,
			CorrectAnswerText: q.CorrectAnswerText(),
		}, nil
	}
	return Grade{}, ErrUnsupportedType
}

// Forfeit 시간 초과나 건너뛰기의 0점 결과
func Forfeit(q *Question, timedOut bool) Grade {
	response := "Skipped"
	if timedOut {
		response = "No answer (time)"
	}
	return Grade{Response: response, CorrectAnswerText: q.CorrectAnswerText()}
}

var explainStopwords = map[string]bool{
	"the": true, "and": true, "for": true, "that": true, "with": true, "this": true,
	"from": true, "have": true, "were": true, "been": true, "into": true, "your": true,
	"their": true, "about": true, "because": true, "which": true, "what": true, "when": true,
	"where": true, "also": true, "after": true, "before": true, "most": true, "very": true,
	"does": true, "did": true, "through": true, "under": true, "over": true, "them": true,
	"then": true, "than": true,
}

var explainConnectors = []string{"because", "therefore", "since", "shows", "fulfills", "echoes", "theme", "motif"}

const maxRubricKeywords = 10

// RubricKeywords 정답, 카테고리, 태그, 출처, 해설에서 뽑은 채점 키워드 (최대 10개)
func RubricKeywords(q *Question) []string {
	source := []string{}
	if q.Answer != "" {
		source = append(source, q.Answer)
	}
	source = append(source, q.Answers...)
	if q.Category != "" {
		source = append(source, q.Category)
	}
	source = append(source, q.Tags...)
	source = append(source, q.Reference, q.Explanation)

	out := []string{}
	seen := map[string]bool{}
	for _, item := range source {
		for _, token := range strings.Fields(Normalize(item)) {
			if len(token) < 3 || explainStopwords[token] || seen[token] {
				continue
			}
			seen[token] = true
			out = append(out, token)
			if len(out) == maxRubricKeywords {
				return out
			}
		}
	}
	return out
}

// Explanation explain 모드 설명 평가 결과
type Explanation struct {
	Ratio    float64
	Hits     []string
	Keywords []string
	Text     string
}

// AssessExplanation 키워드 일치와 논리 연결어로 설명 점수 산정
func AssessExplanation(q *Question, text string) (Explanation, error) {
	text = strings.TrimSpace(text)
	normalized := Normalize(text)
	if len(strings.Fields(normalized)) < MinExplainWords {
		return Explanation{}, ErrShortExplain
	}

	keywords := RubricKeywords(q)
	hits := []string{}
	for _, k := range keywords {
		if strings.Contains(normalized, k) {
			hits = append(hits, k)
		}
	}
	connector := slices.ContainsFunc(explainConnectors, func(c string) bool {
		return strings.Contains(normalized, c)
	})

	ratio := float64(len(hits)) / float64(max(2, min(5, len(keywords))))
	if connector {
		ratio += 0.15
	}
	return Explanation{Ratio: clamp01(ratio), Hits: hits, Keywords: keywords, Text: text}, nil
}

// BlendExplanation 기본 정답률 70%와 설명 점수 30%를 합산
func BlendExplanation(g Grade, e Explanation) Grade {
	g.BaseRatio = g.Ratio
	ratio := e.Ratio
	g.ExplainRatio = &ratio
	g.ExplainHits = e.Hits
	g.ExplainText = e.Text
	g.Ratio = clamp01(g.BaseRatio*0.7 + e.Ratio*0.3)
	g.Correct = g.BaseRatio >= 0.99 && e.Ratio >= 0.45
	g.Response = g.Response + " | Why: " + e.Text
	return g
}

// FeedbackMessage 채점 직후 표시 문구
func FeedbackMessage(g Grade, timedOut bool) string {
	switch {
	case timedOut:
		return "Time expired."
	case g.Correct:
		return "Correct."
	case g.Ratio > 0:
		return "Partially correct."
	}
	return "Incorrect."
}

func boolRatio(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}

func uniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
