package mixer

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Conceptual-Machines/magda-tunes-go/agents/composer"
	"github.com/Conceptual-Machines/magda-tunes-go/logger"
	"github.com/Conceptual-Machines/magda-tunes-go/models"
	"github.com/Conceptual-Machines/magda-tunes-go/moods"
	"github.com/Conceptual-Machines/magda-tunes-go/synth"
	"github.com/Conceptual-Machines/magda-tunes-go/tones"
)

const (
	DefaultSampleRate = 44100

	// MelodyGain and ChordGain are fixed voice levels; the final
	// normalization pass takes care of headroom.
	MelodyGain = 0.45
	ChordGain  = 0.20

	// ChordInstrument is the timbre of every chord voice
	ChordInstrument = synth.Organ

	BeatsPerBar = 4

	fullScale = 32767
)

// ErrInvalidSampleRate is returned for a non-positive sample rate
var ErrInvalidSampleRate = errors.New("invalid sample rate")

// Track is a rendered piece of music
type Track struct {
	Mood       string               `json:"mood"`
	Instrument synth.Instrument     `json:"instrument"`
	SampleRate int                  `json:"sample_rate"`
	Events     []models.MelodyEvent `json:"events"`
	// ChordTrace holds the chord index sounding under each event
	ChordTrace []int `json:"chord_trace"`
	// Peak is the absolute peak of the mix before normalization
	Peak    float64   `json:"peak"`
	Samples []float64 `json:"-"`
	PCM     []int16   `json:"-"`
}

// Duration returns the track length in seconds
func (t *Track) Duration() float64 {
	if t.SampleRate <= 0 {
		return 0
	}
	return float64(len(t.PCM)) / float64(t.SampleRate)
}

// Mixer renders melodies and their chord accompaniment into one buffer.
// A Mixer owns its random source and is not safe for concurrent use.
type Mixer struct {
	sampleRate int
	planner    *composer.Planner
}

// NewMixer creates a mixer rendering at sampleRate with melodies drawn from rng
func NewMixer(sampleRate int, rng composer.Rand) (*Mixer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	return &Mixer{
		sampleRate: sampleRate,
		planner:    composer.NewPlanner(rng),
	}, nil
}

// SampleRate returns the mixer's output rate in Hz
func (m *Mixer) SampleRate() int {
	return m.sampleRate
}

// Render plans a random melody for the named mood and mixes it.
// Unknown moods fail with moods.ErrUnknownMood; unknown instruments
// fall back to the default timbre.
func (m *Mixer) Render(ctx context.Context, moodName, instrument string, totalDuration float64) (*Track, error) {
	mood, err := moods.Lookup(moodName)
	if err != nil {
		return nil, err
	}

	inst, ok := synth.ParseInstrument(instrument)
	if !ok {
		logger.Warn("Unknown instrument, using default timbre", logger.Fields{
			"instrument": instrument,
		})
	}

	events := m.planner.Plan(mood, totalDuration)
	return m.RenderEvents(ctx, mood, inst, events, totalDuration)
}

// RenderEvents mixes a prepared melody over the mood's chord progression.
// The output buffer holds round(sampleRate*totalDuration) samples.
func (m *Mixer) RenderEvents(ctx context.Context, mood moods.Mood, inst synth.Instrument, events []models.MelodyEvent, totalDuration float64) (*Track, error) {
	buf := make([]float64, synth.SampleCount(totalDuration, m.sampleRate))
	trace := make([]int, 0, len(events))

	barLength := int(math.Round(mood.Bar() * float64(m.sampleRate)))
	cursor := 0
	chordIndex := 0

	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if freq, ok := tones.Frequency(event.Note); ok {
			wave := synth.Synthesize(freq, event.Duration, m.sampleRate, inst)
			addAt(buf, cursor, wave, MelodyGain)
		}

		trace = append(trace, chordIndex)
		if len(mood.Chords) > 0 {
			for _, note := range mood.Chords[chordIndex] {
				freq, ok := tones.Frequency(note)
				if !ok {
					continue
				}
				wave := synth.Synthesize(freq, event.Duration, m.sampleRate, ChordInstrument)
				addAt(buf, cursor, wave, ChordGain)
			}
		}

		eventSamples := synth.SampleCount(event.Duration, m.sampleRate)
		cursor += eventSamples

		// One chord per bar: advance when this event reached or crossed
		// a bar line. Events longer than a bar can skip a change.
		if barLength > 0 && len(mood.Chords) > 0 && cursor%barLength < eventSamples {
			chordIndex = (chordIndex + 1) % len(mood.Chords)
		}
	}

	peak := Normalize(buf)

	logger.Debug("Track mixed", logger.Fields{
		"mood":       mood.Name,
		"instrument": string(inst),
		"events":     len(events),
		"samples":    len(buf),
		"peak":       peak,
	})

	return &Track{
		Mood:       mood.Name,
		Instrument: inst,
		SampleRate: m.sampleRate,
		Events:     events,
		ChordTrace: trace,
		Peak:       peak,
		Samples:    buf,
		PCM:        Quantize(buf),
	}, nil
}

// addAt adds gain*wave into buf starting at offset, dropping what overruns
func addAt(buf []float64, offset int, wave []float64, gain float64) {
	if offset >= len(buf) {
		return
	}
	room := buf[offset:]
	if len(wave) > len(room) {
		wave = wave[:len(room)]
	}
	for i, v := range wave {
		room[i] += v * gain
	}
}

// Normalize scales buf in place so its absolute peak is 1.0 and returns
// the peak before scaling. A silent buffer is left unchanged.
func Normalize(buf []float64) float64 {
	var peak float64
	for _, v := range buf {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return 0
	}
	for i := range buf {
		buf[i] /= peak
	}
	return peak
}

// Quantize converts normalized samples to 16-bit PCM, truncating toward zero
func Quantize(buf []float64) []int16 {
	pcm := make([]int16, len(buf))
	for i, v := range buf {
		pcm[i] = int16(v * fullScale)
	}
	return pcm
}
