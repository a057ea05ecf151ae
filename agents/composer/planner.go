package composer

import (
	"github.com/Conceptual-Machines/magda-tunes-go/models"
	"github.com/Conceptual-Machines/magda-tunes-go/moods"
	"github.com/Conceptual-Machines/magda-tunes-go/tones"
)

// Rand is the random source used to pick rhythms and notes.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// Planner generates random melodies over a mood's scale and tempo
type Planner struct {
	rng Rand
}

// NewPlanner creates a planner drawing from rng
func NewPlanner(rng Rand) *Planner {
	return &Planner{rng: rng}
}

// Rhythms returns the candidate note lengths in seconds for a mood:
// a quarter note, an eighth note and a dotted quarter.
func Rhythms(mood moods.Mood) []float64 {
	q := mood.QuarterNote()
	return []float64{q, q / 2, q * 1.5}
}

// Plan fills totalDuration seconds with random melody events.
// The last event is clipped so the durations add up to totalDuration;
// a non-positive total yields no events.
func (p *Planner) Plan(mood moods.Mood, totalDuration float64) []models.MelodyEvent {
	if totalDuration <= 0 || mood.BPM <= 0 {
		return nil
	}

	rhythms := Rhythms(mood)
	choices := make([]string, 0, len(mood.Scale)+1)
	choices = append(choices, mood.Scale...)
	choices = append(choices, tones.Rest)

	var events []models.MelodyEvent
	elapsed := 0.0
	for elapsed < totalDuration {
		duration := rhythms[p.rng.IntN(len(rhythms))]
		clipped := false
		if elapsed+duration > totalDuration {
			duration = totalDuration - elapsed
			clipped = true
		}
		if duration <= 0 {
			break
		}

		note := choices[p.rng.IntN(len(choices))]
		events = append(events, models.MelodyEvent{Note: note, Duration: duration})
		elapsed += duration
		if clipped {
			// avoid a trailing sliver from float rounding
			elapsed = totalDuration
		}
	}

	return events
}
