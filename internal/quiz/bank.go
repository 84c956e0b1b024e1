package quiz

import (
	_ "embed"
	"fmt"
	"math/rand"
	"slices"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	//go:embed data/questions.yaml
	questionsYAML []byte
	//go:embed data/chains.yaml
	chainsYAML []byte
	//go:embed data/alphabets.yaml
	alphabetsYAML []byte
)

// ThemeChain 채점 후 제시되는 주제 연결 보너스 문제
type ThemeChain struct {
	ID          string   `yaml:"id" json:"id"`
	Themes      []string `yaml:"themes" json:"themes"`
	Testament   string   `yaml:"testament" json:"testament"`
	Prompt      string   `yaml:"prompt" json:"prompt"`
	Options     []string `yaml:"options" json:"options"`
	Answer      string   `yaml:"answer" json:"-"`
	Explanation string   `yaml:"explanation" json:"-"`
}

// Bank 정적 문제 은행 (성경 문제 + 생성된 알파벳 문제 + 주제 연결)
type Bank struct {
	Questions []Question
	Alphabet  []Question
	Chains    []ThemeChain

	index map[string]*Question
	books map[string]string
}

// alphabetSeed fixes the choice order of generated alphabet questions.
const alphabetSeed = 1

// NewBank YAML 원본으로 은행 구성
func NewBank(questions, chains, alphabets []byte) (*Bank, error) {
	b := &Bank{index: map[string]*Question{}, books: map[string]string{}}

	if err := yaml.Unmarshal(questions, &b.Questions); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}
	if err := yaml.Unmarshal(chains, &b.Chains); err != nil {
		return nil, fmt.Errorf("parse theme chains: %w", err)
	}
	var tables alphabetTables
	if err := yaml.Unmarshal(alphabets, &tables); err != nil {
		return nil, fmt.Errorf("parse alphabets: %w", err)
	}
	rng := rand.New(rand.NewSource(alphabetSeed))
	b.Alphabet = append(alphabetQuestions(tables.Greek, "Greek", rng), alphabetQuestions(tables.Hebrew, "Hebrew", rng)...)

	for _, list := range [][]Question{b.Questions, b.Alphabet} {
		for i := range list {
			q := &list[i]
			if err := validateQuestion(q); err != nil {
				return nil, err
			}
			if _, dup := b.index[q.ID]; dup {
				return nil, fmt.Errorf("duplicate question id %q", q.ID)
			}
			b.index[q.ID] = q
		}
	}
	for i := range b.Questions {
		q := &b.Questions[i]
		if book := InferPrimaryBook(q.Reference); book != "" {
			b.books[q.ID] = book
		}
	}
	for _, c := range b.Chains {
		if !slices.Contains(c.Options, c.Answer) {
			return nil, fmt.Errorf("theme chain %q: answer not among options", c.ID)
		}
	}
	return b, nil
}

func validateQuestion(q *Question) error {
	if q.ID == "" || q.Prompt == "" {
		return fmt.Errorf("question %q: id and prompt are required", q.ID)
	}
	switch q.Type {
	case TypeMCQ:
		if !slices.Contains(q.Choices, q.Answer) {
			return fmt.Errorf("question %q: answer not among choices", q.ID)
		}
	case TypeText:
		if len(q.Answers) == 0 {
			return fmt.Errorf("question %q: text question needs answers", q.ID)
		}
	case TypeMulti:
		if len(q.Answers) == 0 {
			return fmt.Errorf("question %q: multi question needs answers", q.ID)
		}
	default:
		return fmt.Errorf("question %q: %w %q", q.ID, ErrUnsupportedType, q.Type)
	}
	return nil
}

var (
	defaultBank     *Bank
	defaultBankErr  error
	defaultBankOnce sync.Once
)

// DefaultBank 내장 YAML로 만든 은행 (한 번만 파싱)
func DefaultBank() (*Bank, error) {
	defaultBankOnce.Do(func() {
		defaultBank, defaultBankErr = NewBank(questionsYAML, chainsYAML, alphabetsYAML)
	})
	return defaultBank, defaultBankErr
}

// Question id로 조회 (알파벳 포함)
func (b *Bank) Question(id string) (*Question, bool) {
	q, ok := b.index[id]
	return q, ok
}

// PrimaryBook 문제의 주 책 이름
func (b *Bank) PrimaryBook(id string) string {
	return b.books[id]
}

// BookScopes 문제가 있는 책 목록 (정경 순서)
func (b *Bank) BookScopes() []string {
	seen := map[string]bool{}
	out := []string{}
	for _, book := range b.books {
		if !seen[book] {
			seen[book] = true
			out = append(out, book)
		}
	}
	sort.Slice(out, func(i, j int) bool { return BookNumber(out[i]) < BookNumber(out[j]) })
	return out
}
