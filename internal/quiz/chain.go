package quiz

import (
	"math/rand"
	"slices"
)

// ChainBonus 주제 연결 정답 보너스
func ChainBonus(q *Question) int {
	return 25 + q.Level()*6
}

// PickChain 카테고리, 태그, testament 순으로 후보를 좁히고 직전 연결은 피한다
func PickChain(chains []ThemeChain, q *Question, lastID string, rng *rand.Rand) *ThemeChain {
	if len(chains) == 0 {
		return nil
	}
	pool := chainsWhere(chains, func(c ThemeChain) bool {
		return slices.Contains(c.Themes, q.Category)
	})
	if len(pool) == 0 && len(q.Tags) > 0 {
		tags := make([]string, len(q.Tags))
		for i, t := range q.Tags {
			tags[i] = Normalize(t)
		}
		pool = chainsWhere(chains, func(c ThemeChain) bool {
			return slices.ContainsFunc(c.Themes, func(theme string) bool {
				return slices.Contains(tags, Normalize(theme))
			})
		})
	}
	if len(pool) == 0 {
		pool = chainsWhere(chains, func(c ThemeChain) bool {
			return c.Testament == TestamentBoth || c.Testament == q.Testament
		})
	}
	if len(pool) == 0 {
		pool = chainsWhere(chains, func(ThemeChain) bool { return true })
	}

	working := pool
	if fresh := chainsWhere(pool, func(c ThemeChain) bool { return c.ID != lastID }); len(fresh) > 0 {
		working = fresh
	}
	c := working[rng.Intn(len(working))]
	return &c
}

func chainsWhere(chains []ThemeChain, keep func(ThemeChain) bool) []ThemeChain {
	out := []ThemeChain{}
	for _, c := range chains {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
