package synth

import (
	"math"
	"strings"
)

// Instrument selects a timbre recipe
type Instrument string

const (
	Piano      Instrument = "piano"
	Organ      Instrument = "organ"
	RetroSynth Instrument = "retro_synth"
	// Default is the fallback recipe for unrecognized instruments
	Default Instrument = "default"
)

// decayRate is the exponent reached by the envelope at the last sample
const decayRate = 5.0

// Instruments lists the selectable instruments in menu order
func Instruments() []Instrument {
	return []Instrument{Piano, Organ, RetroSynth}
}

// ParseInstrument maps an identifier to an instrument.
// Unknown identifiers fall back to Default with ok=false.
func ParseInstrument(id string) (Instrument, bool) {
	switch Instrument(strings.ToLower(strings.TrimSpace(id))) {
	case Piano:
		return Piano, true
	case Organ:
		return Organ, true
	case RetroSynth:
		return RetroSynth, true
	default:
		return Default, false
	}
}

// partial is one sine component: amplitude * sin(2π * ratio * f * t)
type partial struct {
	ratio     float64
	amplitude float64
}

var recipes = map[Instrument][]partial{
	Piano:   {{1, 0.6}, {2, 0.2}, {3, 0.1}},
	Organ:   {{0.5, 0.5}, {1, 0.5}, {2, 0.3}},
	Default: {{1, 0.6}, {2, 0.2}},
}

// SampleCount returns round(sampleRate * duration), or 0 for degenerate input
func SampleCount(duration float64, sampleRate int) int {
	if duration <= 0 || sampleRate <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return 0
	}
	return int(math.Round(float64(sampleRate) * duration))
}

// Raw renders the undecayed waveform of one note starting at phase 0.
// Non-positive frequency, duration or sample rate yields an empty buffer.
func Raw(frequency, duration float64, sampleRate int, instrument Instrument) []float64 {
	n := SampleCount(duration, sampleRate)
	if n == 0 || frequency <= 0 {
		return []float64{}
	}

	out := make([]float64, n)
	rate := float64(sampleRate)

	if instrument == RetroSynth {
		for i := range out {
			t := float64(i) / rate
			out[i] = sign(math.Sin(2 * math.Pi * frequency * t))
		}
		return out
	}

	parts, ok := recipes[instrument]
	if !ok {
		parts = recipes[Default]
	}
	for i := range out {
		t := float64(i) / rate
		var v float64
		for _, p := range parts {
			v += p.amplitude * math.Sin(2*math.Pi*p.ratio*frequency*t)
		}
		out[i] = v
	}
	return out
}

// Envelope returns the exponential decay curve exp(-5 * i/(n-1)).
// It starts at 1 and ends at exp(-5).
func Envelope(n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	env := make([]float64, n)
	if n == 1 {
		env[0] = 1
		return env
	}
	last := float64(n - 1)
	for i := range env {
		env[i] = math.Exp(-decayRate * float64(i) / last)
	}
	return env
}

// Synthesize renders one decayed note of length round(sampleRate * duration)
func Synthesize(frequency, duration float64, sampleRate int, instrument Instrument) []float64 {
	out := Raw(frequency, duration, sampleRate, instrument)
	env := Envelope(len(out))
	for i := range out {
		out[i] *= env[i]
	}
	return out
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
