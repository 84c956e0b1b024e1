package quiz

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var selectorNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func TestWeightsNeverAttempted(t *testing.T) {
	s := NewSelector(rand.New(rand.NewSource(7)))
	q := []Question{{ID: "q1", Type: TypeMCQ, Difficulty: 5, Category: "Gospels"}}

	for _, baseline := range []int{1, 3, 5} {
		w := s.Weights(q, NewProgress(), 1, ModeMotif, baseline, selectorNow)[0]
		assert.Equal(t, 0.75, w.Weakness)
		assert.Equal(t, 0.65, w.Due)
	}
}

func TestWeightsComponents(t *testing.T) {
	s := NewSelector(rand.New(rand.NewSource(7)))
	p := NewProgress()
	seen := selectorNow.Add(-5 * time.Minute)
	due := selectorNow.Add(time.Hour)
	p.Questions["q1"] = &Profile{Attempts: 4, Correct: 3, Strength: 2, LastSeen: &seen, DueAt: &due}

	q := []Question{{ID: "q1", Type: TypeMCQ, Difficulty: 3, Category: CategoryCrossRef}}
	w := s.Weights(q, p, 3, ModeCrossRef, 3, selectorNow)[0]

	assert.InDelta(t, 0.4, w.Weakness, 1e-9)
	assert.Zero(t, w.Due)
	assert.InDelta(t, 1.2, w.Difficulty, 1e-9)
	assert.Equal(t, 1.3, w.Mode)
	assert.Equal(t, -0.2, w.Recency)
	assert.Zero(t, w.EasyPenalty)
	assert.GreaterOrEqual(t, w.Jitter, 0.0)
	assert.Less(t, w.Jitter, 0.2)
	assert.InDelta(t, w.Weakness+w.Difficulty+w.Mode+w.Recency+w.Jitter, w.Total, 1e-9)
}

func TestWeightsDueAtBoundary(t *testing.T) {
	s := NewSelector(rand.New(rand.NewSource(1)))
	p := NewProgress()
	due := selectorNow
	p.Questions["q1"] = &Profile{Attempts: 1, Correct: 1, Strength: 1, DueAt: &due}
	w := s.Weights([]Question{{ID: "q1", Type: TypeMCQ}}, p, 2, ModeAdaptive, 3, selectorNow)[0]
	assert.Equal(t, 0.65, w.Due)
}

func TestWeightFloorKeepsEveryCandidateReachable(t *testing.T) {
	s := NewSelector(rand.New(rand.NewSource(42)))
	p := NewProgress()
	due := selectorNow.Add(24 * time.Hour)
	seen := selectorNow.Add(-time.Minute)

	pool := []Question{
		{ID: "easy", Type: TypeMCQ, Difficulty: 1, Category: CategoryCrossRef},
		// heavily penalised: mastered, recent, multi, hard, off-mode
		{ID: "hard", Type: TypeMulti, Difficulty: 5, Category: "Gospels"},
		{ID: "text", Type: TypeText, Difficulty: 4, Category: "Torah"},
	}
	for _, id := range []string{"hard", "text"} {
		p.Questions[id] = &Profile{Attempts: 10, Correct: 10, Strength: 5, LastSeen: &seen, DueAt: &due}
	}

	for _, w := range s.Weights(pool, p, 1, ModeMotif, 1, selectorNow) {
		assert.GreaterOrEqual(t, w.Total, WeightFloor)
	}

	counts := map[string]int{}
	for i := 0; i < 5000; i++ {
		idx := s.Pick(pool, p, 1, ModeMotif, 1, selectorNow)
		require.GreaterOrEqual(t, idx, 0)
		counts[pool[idx].ID]++
	}
	for _, q := range pool {
		assert.Positive(t, counts[q.ID], "candidate %s never picked", q.ID)
	}
	assert.Greater(t, counts["easy"], counts["hard"])
}

func TestPickEmpty(t *testing.T) {
	s := NewSelector(nil)
	assert.Equal(t, -1, s.Pick(nil, NewProgress(), 2, ModeAdaptive, 2, selectorNow))
}

func TestModeBoost(t *testing.T) {
	cross := &Question{Category: CategoryCrossRef}
	motif := &Question{Category: "Prophets", Tags: []string{"theme"}}
	plain := &Question{Category: "Torah"}

	tests := []struct {
		mode               string
		cross, motif, none float64
	}{
		{ModeCrossRef, 1.3, 0.8, 0},
		{ModeMotif, 0.7, 1.35, -0.05},
		{ModeExplain, 0.3, 0.3, 0.15},
		{ModeAdaptive, 0.25, 0.25, 0},
		{ModeBook, 0.25, 0.25, 0},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			assert.Equal(t, tt.cross, ModeBoost(cross, tt.mode))
			assert.Equal(t, tt.motif, ModeBoost(motif, tt.mode))
			assert.Equal(t, tt.none, ModeBoost(plain, tt.mode))
		})
	}
}

func TestEasyComplexityPenalty(t *testing.T) {
	q := &Question{Type: TypeMulti, Difficulty: 4, Category: CategoryMotif}
	assert.InDelta(t, -(1.1 + 1.0 + 0.5), EasyComplexityPenalty(q, 1), 1e-9)
	assert.InDelta(t, -(0.7 + 0.35 + 0.2), EasyComplexityPenalty(q, 2), 1e-9)
	assert.Zero(t, EasyComplexityPenalty(q, 3))

	text := &Question{Type: TypeText, Difficulty: 2}
	assert.InDelta(t, -0.45, EasyComplexityPenalty(text, 1), 1e-9)
}

func TestScoring(t *testing.T) {
	q := &Question{Difficulty: 3}
	assert.Equal(t, 170, BasePoints(q))
	assert.Equal(t, 170, Earned(q, 1, 30, 30))
	assert.Equal(t, 119, Earned(q, 1, 10, 30))
	assert.Equal(t, 0, Earned(q, 0, 30, 30))
	assert.Equal(t, 54, Earned(&Question{}, 0.5, 15, 30))

	assert.InDelta(t, 2.35, NextTarget(2, 1), 1e-9)
	assert.InDelta(t, 2.1, NextTarget(2, 0.6), 1e-9)
	assert.InDelta(t, 1.72, NextTarget(2, 0.5), 1e-9)
	assert.Equal(t, 5.0, NextTarget(4.9, 1))
	assert.Equal(t, 1.0, NextTarget(1.1, 0))

	assert.Equal(t, 2.0, BookTarget(2, 0, 12))
	assert.Equal(t, 3.0, BookTarget(2, 3, 12))
	assert.Equal(t, 5.0, BookTarget(4, 11, 12))
	assert.Equal(t, 4.0, BookTarget(2, 2, 3))
}
