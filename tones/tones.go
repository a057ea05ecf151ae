package tones

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Rest is the sentinel note name for a silent melody event
const Rest = "REST"

// library maps note names to frequencies in Hz.
// Only listed notes resolve; anything else is skipped by the mixer.
var library = map[string]float64{
	// Lower octave
	"C3": 130.81, "D3": 146.83, "E3": 164.81, "F3": 174.61, "G3": 196.00, "A3": 220.00, "B3": 246.94,
	// Main octave
	"C4": 261.63, "D4": 293.66, "Eb4": 311.13, "E4": 329.63, "F4": 349.23, "G4": 392.00, "Ab4": 415.30, "A4": 440.00, "B4": 493.88,
	// Higher octave
	"C5": 523.25, "D5": 587.33, "E5": 659.25, "G5": 783.99,
}

// Frequency returns the frequency of a note name.
// Rest and unknown names report ok=false.
func Frequency(name string) (float64, bool) {
	if name == Rest {
		return 0, false
	}
	freq, ok := library[name]
	return freq, ok
}

// IsRest reports whether name is the rest sentinel
func IsRest(name string) bool {
	return name == Rest
}

// Names returns every note in the library ordered by pitch
func Names() []string {
	names := make([]string, 0, len(library))
	for name := range library {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return library[names[i]] < library[names[j]]
	})
	return names
}

// Pitch is a parsed note name such as "Eb4"
type Pitch struct {
	Name   string
	Class  string // "C", "Eb", "F#", ...
	Octave int
	MIDI   int
}

// semitones from C for every accepted pitch class
var pitchClasses = map[string]int{
	"C":  0,
	"C#": 1, "Db": 1,
	"D":  2,
	"D#": 3, "Eb": 3,
	"E":  4,
	"F":  5,
	"F#": 6, "Gb": 6,
	"G":  7,
	"G#": 8, "Ab": 8,
	"A":  9,
	"A#": 10, "Bb": 10,
	"B":  11,
}

// Parse splits a note name into pitch class and octave.
// MIDI numbering puts A4 at 69 (so C4 = 60).
func Parse(name string) (Pitch, error) {
	if len(name) < 2 {
		return Pitch{}, fmt.Errorf("invalid note name: %q", name)
	}

	class := name[:1]
	rest := name[1:]
	if len(name) > 2 && (name[1] == '#' || name[1] == 'b') {
		class = name[:2]
		rest = name[2:]
	}

	offset, ok := pitchClasses[class]
	if !ok {
		return Pitch{}, fmt.Errorf("invalid pitch class %q in note %q", class, name)
	}

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return Pitch{}, fmt.Errorf("invalid octave in note %q: %w", name, err)
	}

	midi := (octave+1)*12 + offset
	if midi < 0 || midi > 127 {
		return Pitch{}, fmt.Errorf("note %q out of MIDI range", name)
	}

	return Pitch{Name: name, Class: class, Octave: octave, MIDI: midi}, nil
}

// EqualTempered returns the 12-TET frequency of a note name with A4 = 440 Hz.
// It does not consult the library.
func EqualTempered(name string) (float64, error) {
	p, err := Parse(name)
	if err != nil {
		return 0, err
	}
	return 440 * math.Pow(2, float64(p.MIDI-69)/12), nil
}
