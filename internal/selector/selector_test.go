package selector

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tessera/internal/trait"
)

func makeClass(id string, zIndex int, weights ...float64) trait.TraitClass {
	class := trait.TraitClass{ID: id, Name: id, ZIndex: zIndex}
	for i, w := range weights {
		class.Traits = append(class.Traits, trait.Trait{
			ID:      fmt.Sprintf("%s-t%d", id, i),
			Name:    fmt.Sprintf("%s trait %d", id, i),
			Weight:  w,
			ClassID: id,
		})
	}
	return class
}

func TestStream_PureFunctionOfSeed(t *testing.T) {
	a := NewStream("seed-1")
	b := NewStream("seed-1")
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Float64(), b.Float64(), "draw %d diverged", i)
	}

	c := NewStream("seed-2")
	d := NewStream("seed-1")
	// Different seeds should diverge on the first draw with
	// overwhelming probability.
	assert.NotEqual(t, c.Float64(), d.Float64())
}

func TestSelectWeighted_Deterministic(t *testing.T) {
	classes := []trait.TraitClass{
		makeClass("background", 1, 70, 30),
		makeClass("body", 2, 10, 10, 10),
		makeClass("fx", 3, 100),
	}

	first := SelectWeighted("s1", classes)
	second := SelectWeighted("s1", classes)
	assert.Equal(t, first, second)
}

func TestSelectWeighted_OneTraitPerClass(t *testing.T) {
	classes := []trait.TraitClass{
		makeClass("background", 1, 70, 30),
		makeClass("fx", 2, 100),
	}

	sel := SelectWeighted("any-seed", classes)
	require.Len(t, sel, 2)
	assert.Equal(t, "background", sel["background"].ClassID)
	assert.Equal(t, "fx-t0", sel["fx"].ID)
}

func TestSelectWeighted_ZeroWeightClassAbsent(t *testing.T) {
	classes := []trait.TraitClass{
		makeClass("background", 1, 100),
		makeClass("dead", 2, 0, 0),
		makeClass("empty", 3),
	}

	for i := 0; i < 50; i++ {
		sel := SelectWeighted(fmt.Sprintf("seed-%d", i), classes)
		require.Contains(t, sel, "background")
		assert.NotContains(t, sel, "dead", "zero total weight class selected")
		assert.NotContains(t, sel, "empty", "empty class selected")
	}
}

// Appending an unrelated class must not change earlier classes'
// outcomes under the same seed: selection consumes one shared stream
// sequentially, so later classes draw after earlier ones.
func TestSelectWeighted_AppendedClassDoesNotPerturbEarlier(t *testing.T) {
	base := []trait.TraitClass{
		makeClass("background", 1, 70, 30),
		makeClass("body", 2, 50, 50),
	}
	extended := append([]trait.TraitClass{}, base...)
	extended = append(extended, makeClass("hat", 3, 1, 2, 3))

	for i := 0; i < 50; i++ {
		seed := fmt.Sprintf("seed-%d", i)
		before := SelectWeighted(seed, base)
		after := SelectWeighted(seed, extended)
		assert.Equal(t, before["background"], after["background"], "seed %s", seed)
		assert.Equal(t, before["body"], after["body"], "seed %s", seed)
	}
}

// Zero-weight classes consume no draw, so inserting one between two
// live classes leaves both outcomes intact.
func TestSelectWeighted_SkippedClassConsumesNoDraw(t *testing.T) {
	base := []trait.TraitClass{
		makeClass("background", 1, 70, 30),
		makeClass("fx", 2, 40, 60),
	}
	withDead := []trait.TraitClass{
		base[0],
		makeClass("dead", 5, 0),
		base[1],
	}

	for i := 0; i < 50; i++ {
		seed := fmt.Sprintf("seed-%d", i)
		assert.Equal(t, SelectWeighted(seed, base), SelectWeighted(seed, withDead))
	}
}

// Weighted-selection law: empirical frequency converges to wi / sum(w)
// across independently varied seeds.
func TestSelectWeighted_FrequencyConvergesToWeights(t *testing.T) {
	classes := []trait.TraitClass{makeClass("background", 1, 70, 20, 10)}

	const draws = 20000
	counts := map[string]int{}
	for i := 0; i < draws; i++ {
		sel := SelectWeighted(fmt.Sprintf("freq-seed-%d", i), classes)
		counts[sel["background"].ID]++
	}

	expected := map[string]float64{
		"background-t0": 0.70,
		"background-t1": 0.20,
		"background-t2": 0.10,
	}
	for id, want := range expected {
		got := float64(counts[id]) / draws
		assert.InDeltaf(t, want, got, 0.02,
			"trait %s frequency %f, want %f +/- 0.02", id, got, want)
	}
}

func TestSelectWeighted_DeclarationOrderTieBreak(t *testing.T) {
	// With one trait carrying all the weight, every seed selects it.
	classes := []trait.TraitClass{makeClass("solo", 1, 100, 0, 0)}
	for i := 0; i < 20; i++ {
		sel := SelectWeighted(fmt.Sprintf("seed-%d", i), classes)
		assert.Equal(t, "solo-t0", sel["solo"].ID)
	}
}

func TestSelectWeighted_FractionalWeights(t *testing.T) {
	classes := []trait.TraitClass{makeClass("background", 1, 0.7, 0.3)}
	sel := SelectWeighted("s", classes)
	require.Len(t, sel, 1)
	assert.False(t, math.IsNaN(classes[0].TotalWeight()))
}
