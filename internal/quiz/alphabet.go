package quiz

import (
	"fmt"
	"math/rand"
	"strings"
)

// Letter 알파벳 한 글자
type Letter struct {
	Script          string `yaml:"script"`
	Name            string `yaml:"name"`
	Pronunciation   string `yaml:"pronunciation"`
	Transliteration string `yaml:"transliteration"`
}

type alphabetTables struct {
	Greek  []Letter `yaml:"greek"`
	Hebrew []Letter `yaml:"hebrew"`
}

func (l Letter) nameLabel() string {
	return fmt.Sprintf("%s (%s)", l.Name, l.Pronunciation)
}

// alphabetChoices picks the answer plus letters at answer+3k (mod n), then shuffles.
// Tables too small for that stride are filled from the neighbouring letters.
func alphabetChoices(letters []Letter, answer int, label func(Letter) string, rng *rand.Rand) []string {
	n := len(letters)
	wanted := min(4, n)
	picked := []int{answer}
	seen := map[int]bool{answer: true}
	add := func(idx int) {
		if !seen[idx] && len(picked) < wanted {
			seen[idx] = true
			picked = append(picked, idx)
		}
	}
	for step := 1; step < n && len(picked) < wanted; step++ {
		add((answer + step*3) % n)
	}
	for step := 1; step < n && len(picked) < wanted; step++ {
		add((answer + step) % n)
	}
	out := make([]string, len(picked))
	for i, idx := range picked {
		out[i] = label(letters[idx])
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// alphabetQuestions name 문제(난이도 1)와 script 문제(난이도 2)를 글자마다 생성
func alphabetQuestions(letters []Letter, family string, rng *rand.Rand) []Question {
	tag := strings.ToLower(family)
	out := make([]Question, 0, len(letters)*2)
	for i, l := range letters {
		out = append(out, Question{
			ID:          fmt.Sprintf("alphabet-%s-name-%d", tag, i+1),
			Testament:   TestamentBoth,
			Category:    "Alphabet",
			Difficulty:  1,
			Type:        TypeMCQ,
			Tags:        []string{"alphabet", tag, "pronunciation"},
			Prompt:      fmt.Sprintf("%s: What is the name/pronunciation of the letter %s?", family, l.Script),
			Choices:     alphabetChoices(letters, i, Letter.nameLabel, rng),
			Answer:      l.nameLabel(),
			Reference:   family + " Alphabet",
			Explanation: fmt.Sprintf("%s is %s. Pronunciation: %s. Transliteration: %s.", l.Script, l.Name, l.Pronunciation, l.Transliteration),
		})
		out = append(out, Question{
			ID:          fmt.Sprintf("alphabet-%s-script-%d", tag, i+1),
			Testament:   TestamentBoth,
			Category:    "Alphabet",
			Difficulty:  2,
			Type:        TypeMCQ,
			Tags:        []string{"alphabet", tag, "pronunciation"},
			Prompt:      fmt.Sprintf("%s: Which letter is %s?", family, l.nameLabel()),
			Choices:     alphabetChoices(letters, i, func(x Letter) string { return x.Script }, rng),
			Answer:      l.Script,
			Reference:   family + " Alphabet",
			Explanation: fmt.Sprintf("%s is written %s. Transliteration: %s.", l.Name, l.Script, l.Transliteration),
		})
	}
	return out
}
