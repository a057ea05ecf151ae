package composer

import (
	"math/rand/v2"
	"testing"

	"github.com/Conceptual-Machines/magda-tunes-go/models"
	"github.com/Conceptual-Machines/magda-tunes-go/moods"
	"github.com/Conceptual-Machines/magda-tunes-go/tones"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRand always returns the same index
type fixedRand struct{ index int }

func (f fixedRand) IntN(n int) int { return f.index % n }

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestPlan_DurationsSumToTotal(t *testing.T) {
	durations := []float64{0.1, 1, 2.5, 7.3, 8, 30, 61.7}

	for _, mood := range moods.All() {
		for seed := uint64(1); seed <= 5; seed++ {
			planner := NewPlanner(seeded(seed))
			for _, d := range durations {
				events := planner.Plan(mood, d)
				require.NotEmpty(t, events, "mood=%s d=%v", mood.Name, d)
				assert.InDelta(t, d, models.TotalDuration(events), 1e-9, "mood=%s d=%v seed=%d", mood.Name, d, seed)
				for i, e := range events {
					assert.Positive(t, e.Duration, "mood=%s d=%v event %d", mood.Name, d, i)
				}
			}
		}
	}
}

func TestPlan_UsesScaleAndRhythms(t *testing.T) {
	mood, err := moods.Lookup("happy")
	require.NoError(t, err)

	allowed := map[string]bool{tones.Rest: true}
	for _, n := range mood.Scale {
		allowed[n] = true
	}
	rhythms := Rhythms(mood)

	events := NewPlanner(seeded(42)).Plan(mood, 60)
	for i, e := range events {
		assert.True(t, allowed[e.Note], "event %d note %s not in scale", i, e.Note)
		if i < len(events)-1 {
			assert.Contains(t, rhythms, e.Duration, "event %d", i)
		}
	}
}

func TestRhythms(t *testing.T) {
	mood, err := moods.Lookup("happy")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.25, 0.75}, Rhythms(mood))
}

func TestPlan_ClipsLastEvent(t *testing.T) {
	mood, err := moods.Lookup("happy")
	require.NoError(t, err)

	// index 2 picks the dotted quarter (0.75s) and the third scale note
	events := NewPlanner(fixedRand{index: 2}).Plan(mood, 2)
	require.Len(t, events, 3)
	assert.Equal(t, 0.75, events[0].Duration)
	assert.Equal(t, 0.75, events[1].Duration)
	assert.InDelta(t, 0.5, events[2].Duration, 1e-12)
	for _, e := range events {
		assert.Equal(t, "E4", e.Note)
	}
}

func TestPlan_ExactFitHasNoTrailingEvent(t *testing.T) {
	mood, err := moods.Lookup("happy")
	require.NoError(t, err)

	// quarter notes only: 4 beats of 0.5s fill 2s exactly
	events := NewPlanner(fixedRand{index: 0}).Plan(mood, 2)
	require.Len(t, events, 4)
	assert.Equal(t, 2.0, models.TotalDuration(events))
}

func TestPlan_NonPositiveTotal(t *testing.T) {
	mood, err := moods.Lookup("sad")
	require.NoError(t, err)
	planner := NewPlanner(seeded(1))
	assert.Empty(t, planner.Plan(mood, 0))
	assert.Empty(t, planner.Plan(mood, -3))
}

func TestPlan_SeedIsReproducible(t *testing.T) {
	mood, err := moods.Lookup("dreamy")
	require.NoError(t, err)

	a := NewPlanner(seeded(7)).Plan(mood, 20)
	b := NewPlanner(seeded(7)).Plan(mood, 20)
	c := NewPlanner(seeded(8)).Plan(mood, 20)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
