package quiz

import (
	"slices"
	"sort"
)

// Filter 설정에 맞는 후보 문제를 출제 우선순서로 반환
//
// 기본 난이도가 2 이하이면 접근하기 쉬운 문제(preferred)를 앞에 둔다.
// preferred만으로 세션 길이를 채울 수 있으면 나머지는 제외한다.
func Filter(b *Bank, s Settings) []Question {
	if s.Mode == ModeAlphabet {
		return filterAlphabet(b, s.Testament)
	}

	scoped := make([]Question, 0, len(b.Questions))
	for _, q := range b.Questions {
		if matchesTestament(q, s.Testament) {
			scoped = append(scoped, q)
		}
	}

	var ordered []Question
	switch s.Mode {
	case ModeBook:
		for _, q := range scoped {
			if s.BookScope == "" || s.BookScope == BookScopeAll || b.PrimaryBook(q.ID) == s.BookScope {
				ordered = append(ordered, q)
			}
		}
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Level() < ordered[j].Level() })
	case ModeAdaptive, ModeExplain:
		ordered = scoped
	default:
		var motif, cross []Question
		for _, q := range scoped {
			if q.IsMotif() {
				motif = append(motif, q)
			}
			if q.IsCrossRef() {
				cross = append(cross, q)
			}
		}
		base := append(slices.Clone(cross), motif...)
		if s.Mode == ModeMotif {
			base = append(slices.Clone(motif), cross...)
		}
		ordered = uniqueByID(append(base, scoped...))
	}

	if s.Difficulty > 2 {
		return ordered
	}
	var preferred, rest []Question
	for _, q := range ordered {
		if approachable(q, s) {
			preferred = append(preferred, q)
		} else {
			rest = append(rest, q)
		}
	}
	if len(preferred) >= s.Length {
		return preferred
	}
	return append(preferred, rest...)
}

func filterAlphabet(b *Bank, testament string) []Question {
	tag := ""
	switch testament {
	case TestamentOT:
		tag = "hebrew"
	case TestamentNT:
		tag = "greek"
	}
	out := []Question{}
	for _, q := range b.Alphabet {
		if tag == "" || q.hasTag(tag) {
			out = append(out, q)
		}
	}
	return out
}

func matchesTestament(q Question, testament string) bool {
	switch testament {
	case "", TestamentAll, TestamentBoth:
		return true
	}
	return q.Testament == TestamentBoth || q.Testament == testament
}

// approachable 낮은 기본 난이도에서 우선 출제할 문제
func approachable(q Question, s Settings) bool {
	if s.Difficulty == 1 {
		switch s.Mode {
		case ModeAdaptive, ModeBook, ModeExplain:
			return q.Type == TypeMCQ && q.Level() <= 2 && !q.IsThemeHeavy()
		}
		return q.Type == TypeMCQ && q.Level() <= 3
	}
	return q.Type != TypeMulti && q.Level() <= 3
}

func uniqueByID(in []Question) []Question {
	seen := map[string]bool{}
	out := make([]Question, 0, len(in))
	for _, q := range in {
		if !seen[q.ID] {
			seen[q.ID] = true
			out = append(out, q)
		}
	}
	return out
}
