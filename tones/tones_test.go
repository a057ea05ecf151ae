package tones

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequency(t *testing.T) {
	tests := []struct {
		name     string
		note     string
		expected float64
		ok       bool
	}{
		{"concert A", "A4", 440.00, true},
		{"middle C", "C4", 261.63, true},
		{"flat", "Eb4", 311.13, true},
		{"lower octave", "F3", 174.61, true},
		{"higher octave", "G5", 783.99, true},
		{"not in library", "Ab3", 0, false},
		{"rest", Rest, 0, false},
		{"garbage", "H9", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			freq, ok := Frequency(tt.note)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, freq)
		})
	}
}

func TestNames_OrderedByPitch(t *testing.T) {
	names := Names()
	require.Len(t, names, len(library))
	assert.Equal(t, "C3", names[0])
	assert.Equal(t, "G5", names[len(names)-1])

	for i := 1; i < len(names); i++ {
		prev, _ := Frequency(names[i-1])
		cur, _ := Frequency(names[i])
		assert.Less(t, prev, cur, "%s should sit below %s", names[i-1], names[i])
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		note   string
		class  string
		octave int
		midi   int
	}{
		{"C4", "C", 4, 60},
		{"A4", "A", 4, 69},
		{"Eb4", "Eb", 4, 63},
		{"Ab3", "Ab", 3, 56},
		{"F#2", "F#", 2, 42},
		{"G5", "G", 5, 79},
	}

	for _, tt := range tests {
		t.Run(tt.note, func(t *testing.T) {
			p, err := Parse(tt.note)
			require.NoError(t, err)
			assert.Equal(t, tt.class, p.Class)
			assert.Equal(t, tt.octave, p.Octave)
			assert.Equal(t, tt.midi, p.MIDI)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, note := range []string{"", "C", "H4", "Cx", "Eb", "C99"} {
		_, err := Parse(note)
		assert.Error(t, err, "expected error for %q", note)
	}
}

func TestLibraryMatchesEqualTemperament(t *testing.T) {
	for _, name := range Names() {
		freq, _ := Frequency(name)
		expected, err := EqualTempered(name)
		require.NoError(t, err)
		assert.InDelta(t, expected, freq, 0.01, "note %s", name)
	}
}
