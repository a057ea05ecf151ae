package models

// MelodyEvent is one step of a planned melody.
// Note is a tone library name or tones.Rest.
type MelodyEvent struct {
	Note     string  `json:"note"`
	Duration float64 `json:"duration"` // seconds
}

// TotalDuration sums the durations of a melody
func TotalDuration(events []MelodyEvent) float64 {
	var total float64
	for _, e := range events {
		total += e.Duration
	}
	return total
}
