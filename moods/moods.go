package moods

import (
	"errors"
	"fmt"
)

// ErrUnknownMood is returned when a mood name is not in the catalog
var ErrUnknownMood = errors.New("unknown mood")

// Chord is an ordered tuple of note names played together
type Chord []string

// Mood bundles a scale, a chord progression and a tempo
type Mood struct {
	Name   string   `json:"name"`
	Scale  []string `json:"scale"`
	Chords []Chord  `json:"chords"`
	BPM    int      `json:"bpm"`
}

// QuarterNote returns the length of one beat in seconds
func (m Mood) QuarterNote() float64 {
	return 60 / float64(m.BPM)
}

// Bar returns the length of a 4-beat bar in seconds
func (m Mood) Bar() float64 {
	return 4 * m.QuarterNote()
}

// Some chords reference notes outside the tone library (Ab3 in "sad").
// Those notes are skipped at render time.
var catalog = map[string]Mood{
	"happy": {
		Name:  "happy",
		Scale: []string{"C4", "D4", "E4", "F4", "G4", "A4", "B4", "C5"},
		Chords: []Chord{
			{"C4", "E4", "G4"},
			{"G4", "B4", "D5"},
			{"A4", "C5", "E5"},
			{"F4", "A4", "C5"},
		},
		BPM: 120,
	},
	"sad": {
		Name:  "sad",
		Scale: []string{"C4", "Eb4", "F4", "G4", "Ab4", "C5"},
		Chords: []Chord{
			{"C4", "Eb4", "G4"},
			{"Ab4", "C5", "Eb4"},
			{"F3", "Ab3", "C4"},
			{"G3", "A3", "D4"},
		},
		BPM: 75,
	},
	"dreamy": {
		Name:  "dreamy",
		Scale: []string{"C4", "E4", "G4", "A4", "C5", "E5", "G5"},
		Chords: []Chord{
			{"C4", "E4", "G4", "B4"},
			{"A3", "C4", "E4", "G4"},
		},
		BPM: 60,
	},
}

// order keeps menus stable
var order = []string{"happy", "sad", "dreamy"}

// Lookup returns a copy of the named mood
func Lookup(name string) (Mood, error) {
	m, ok := catalog[name]
	if !ok {
		return Mood{}, fmt.Errorf("%w: %q", ErrUnknownMood, name)
	}
	return m.clone(), nil
}

// Names returns the catalog's mood names in menu order
func Names() []string {
	names := make([]string, len(order))
	copy(names, order)
	return names
}

// All returns copies of every mood in menu order
func All() []Mood {
	all := make([]Mood, 0, len(order))
	for _, name := range order {
		all = append(all, catalog[name].clone())
	}
	return all
}

func (m Mood) clone() Mood {
	out := m
	out.Scale = append([]string(nil), m.Scale...)
	out.Chords = make([]Chord, len(m.Chords))
	for i, c := range m.Chords {
		out.Chords[i] = append(Chord(nil), c...)
	}
	return out
}
