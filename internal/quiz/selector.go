package quiz

import (
	"math"
	"math/rand"
	"time"
)

// WeightFloor 어떤 후보도 선택 확률이 0이 되지 않도록 하는 최소 가중치
const WeightFloor = 0.08

const (
	unseenWeakness  = 0.75
	dueBoost        = 0.65
	recencyWindow   = 15 * time.Minute
	recencyPenalty  = -0.2
	jitterRange     = 0.2
	minWeakness     = 0.1
	minDifficultyFx = 0.1
)

// Weight 후보 하나의 가중치 구성 요소
type Weight struct {
	Question    *Question `json:"-"`
	Weakness    float64   `json:"weakness"`
	Due         float64   `json:"due"`
	Difficulty  float64   `json:"difficulty"`
	Mode        float64   `json:"mode"`
	Recency     float64   `json:"recency"`
	EasyPenalty float64   `json:"easyPenalty"`
	Jitter      float64   `json:"jitter"`
	Total       float64   `json:"total"`
}

// Selector 숙련도 기반 가중 무작위 출제
type Selector struct {
	rng *rand.Rand
}

// NewSelector rng가 nil이면 현재 시각으로 시드
func NewSelector(rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{rng: rng}
}

// Weights 후보별 가중치 계산
func (s *Selector) Weights(candidates []Question, progress *Progress, target float64, mode string, baseline int, now time.Time) []Weight {
	out := make([]Weight, len(candidates))
	for i := range candidates {
		q := &candidates[i]
		p := progress.Profile(q.ID)

		w := Weight{Question: q}
		if p.Attempts == 0 {
			w.Weakness = unseenWeakness
		} else {
			rate := float64(p.Correct) / float64(p.Attempts)
			w.Weakness = max(minWeakness, 1.15-rate)
		}
		if p.DueAt == nil || !p.DueAt.After(now) {
			w.Due = dueBoost
		}
		w.Difficulty = max(minDifficultyFx, 1.2-math.Abs(float64(q.Level())-target)*0.22)
		w.Mode = ModeBoost(q, mode)
		if p.LastSeen != nil && now.Sub(*p.LastSeen) < recencyWindow {
			w.Recency = recencyPenalty
		}
		w.EasyPenalty = EasyComplexityPenalty(q, baseline)
		w.Jitter = s.rng.Float64() * jitterRange

		w.Total = max(WeightFloor, w.Weakness+w.Due+w.Difficulty+w.Mode+w.Recency+w.EasyPenalty+w.Jitter)
		out[i] = w
	}
	return out
}

// Pick 누적 가중치 룰렛. 후보가 없으면 -1
func (s *Selector) Pick(candidates []Question, progress *Progress, target float64, mode string, baseline int, now time.Time) int {
	if len(candidates) == 0 {
		return -1
	}
	weights := s.Weights(candidates, progress, target, mode, baseline, now)
	total := 0.0
	for _, w := range weights {
		total += w.Total
	}
	roll := s.rng.Float64() * total
	for i, w := range weights {
		roll -= w.Total
		if roll <= 0 {
			return i
		}
	}
	return len(weights) - 1
}

// ModeBoost 현재 모드와 관련된 문제 가산점
func ModeBoost(q *Question, mode string) float64 {
	cross, motif := q.IsCrossRef(), q.IsMotif()
	switch mode {
	case ModeCrossRef:
		switch {
		case cross:
			return 1.3
		case motif:
			return 0.8
		}
		return 0
	case ModeMotif:
		switch {
		case motif:
			return 1.35
		case cross:
			return 0.7
		}
		return -0.05
	case ModeExplain:
		if cross || motif {
			return 0.3
		}
		return 0.15
	}
	if cross || motif {
		return 0.25
	}
	return 0
}

// EasyComplexityPenalty 기본 난이도 2 이하에서 복잡한 문제 억제
func EasyComplexityPenalty(q *Question, baseline int) float64 {
	if baseline > 2 {
		return 0
	}
	pick := func(easiest, easy float64) float64 {
		if baseline <= 1 {
			return easiest
		}
		return easy
	}
	penalty := 0.0
	switch q.Type {
	case TypeMulti:
		penalty -= pick(1.1, 0.7)
	case TypeText:
		penalty -= pick(0.45, 0.15)
	}
	if q.Level() >= 4 {
		penalty -= pick(1.0, 0.35)
	}
	if q.IsThemeHeavy() {
		penalty -= pick(0.5, 0.2)
	}
	return penalty
}
