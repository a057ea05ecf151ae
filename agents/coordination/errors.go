package coordination

import (
	"errors"
	"fmt"
)

// ErrInvalidDuration is returned for negative, non-finite or oversized durations
var ErrInvalidDuration = errors.New("invalid duration")

// Stage names where a generation request can fail
const (
	StageValidate = "validate"
	StageRender   = "render"
	StageWrite    = "write"
)

// RenderError reports which stage of a generation request failed
type RenderError struct {
	Stage      string // "validate", "render", "write"
	Mood       string
	Instrument string
	Cause      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s failed for %s/%s: %v", e.Stage, e.Mood, e.Instrument, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

func newRenderError(stage string, req Request, cause error) *RenderError {
	return &RenderError{
		Stage:      stage,
		Mood:       req.Mood,
		Instrument: req.Instrument,
		Cause:      cause,
	}
}
