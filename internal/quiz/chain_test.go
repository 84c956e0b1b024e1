package quiz

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChains() []ThemeChain {
	return []ThemeChain{
		{ID: "torah-1", Themes: []string{"Torah"}, Testament: "OT"},
		{ID: "torah-2", Themes: []string{"Torah"}, Testament: "OT"},
		{ID: "passover", Themes: []string{"Passover Lamb"}, Testament: "Both"},
		{ID: "nt-only", Themes: []string{"Epistles"}, Testament: "NT"},
	}
}

func TestPickChainByCategory(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	q := &Question{Category: "Torah", Testament: "OT"}
	for i := 0; i < 20; i++ {
		c := PickChain(testChains(), q, "", rng)
		require.NotNil(t, c)
		assert.Contains(t, []string{"torah-1", "torah-2"}, c.ID)
	}
}

func TestPickChainAvoidsRepeat(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	q := &Question{Category: "Torah", Testament: "OT"}
	for i := 0; i < 20; i++ {
		assert.Equal(t, "torah-2", PickChain(testChains(), q, "torah-1", rng).ID)
	}

	only := []ThemeChain{{ID: "solo", Themes: []string{"Torah"}}}
	assert.Equal(t, "solo", PickChain(only, q, "solo", rng).ID)
}

func TestPickChainFallbacks(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	byTag := &Question{Category: "Gospels", Tags: []string{"passover-lamb", "PASSOVER LAMB"}, Testament: "NT"}
	assert.Equal(t, "passover", PickChain(testChains(), byTag, "", rng).ID)

	byTestament := &Question{Category: "Acts", Testament: "NT"}
	for i := 0; i < 20; i++ {
		assert.Contains(t, []string{"passover", "nt-only"}, PickChain(testChains(), byTestament, "", rng).ID)
	}

	assert.Nil(t, PickChain(nil, byTestament, "", rng))
	assert.Equal(t, 37, ChainBonus(&Question{Difficulty: 2}))
}
