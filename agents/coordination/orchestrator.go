package coordination

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/Conceptual-Machines/magda-tunes-go/agents/mixer"
	"github.com/Conceptual-Machines/magda-tunes-go/config"
	"github.com/Conceptual-Machines/magda-tunes-go/logger"
	"github.com/Conceptual-Machines/magda-tunes-go/metrics"
	"github.com/Conceptual-Machines/magda-tunes-go/moods"
	"github.com/Conceptual-Machines/magda-tunes-go/wavfile"
	"github.com/getsentry/sentry-go"
	"github.com/remeh/sizedwaitgroup"
)

// Request describes one track to generate
type Request struct {
	Mood       string  `json:"mood"`
	Instrument string  `json:"instrument"`
	Duration   float64 `json:"duration"` // seconds
	// Seed fixes the melody; 0 picks a random seed
	Seed uint64 `json:"seed,omitempty"`
	// OutputPath overrides the default file name in the output directory
	OutputPath string `json:"output_path,omitempty"`
}

// Result describes a generated track
type Result struct {
	Path    string        `json:"path,omitempty"`
	Seed    uint64        `json:"seed"`
	Bytes   int64         `json:"bytes,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
	Track   *mixer.Track  `json:"track"`
}

// BatchItem pairs a batch request with its outcome
type BatchItem struct {
	Request Request
	Result  *Result
	Err     error
}

// Orchestrator validates requests, renders tracks and hands them to the WAV sink
type Orchestrator struct {
	cfg     *config.Config
	metrics *metrics.SentryMetrics
	now     func() time.Time
}

// NewOrchestrator creates a new orchestrator instance
func NewOrchestrator(cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		metrics: metrics.NewSentryMetrics(),
		now:     time.Now,
	}
}

// Validate checks a request without rendering it
func (o *Orchestrator) Validate(req Request) error {
	if _, err := moods.Lookup(req.Mood); err != nil {
		return newRenderError(StageValidate, req, err)
	}
	d := req.Duration
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 || d > o.cfg.MaxDurationSeconds {
		return newRenderError(StageValidate, req,
			fmt.Errorf("%w: %v (allowed 0 to %v seconds)", ErrInvalidDuration, d, o.cfg.MaxDurationSeconds))
	}
	return nil
}

// Render produces the track for a request without writing it anywhere.
// The seed actually used is returned so the track can be reproduced.
func (o *Orchestrator) Render(ctx context.Context, req Request) (*mixer.Track, uint64, error) {
	if err := o.Validate(req); err != nil {
		return nil, 0, err
	}

	seed := req.Seed
	if seed == 0 {
		seed = rand.Uint64() | 1
	}

	m, err := mixer.NewMixer(o.cfg.SampleRate, rand.New(rand.NewPCG(seed, seed)))
	if err != nil {
		return nil, 0, newRenderError(StageRender, req, err)
	}

	track, err := m.Render(ctx, req.Mood, req.Instrument, req.Duration)
	if err != nil {
		return nil, 0, newRenderError(StageRender, req, err)
	}

	o.metrics.RecordRender(ctx, track.Mood, string(track.Instrument), req.Duration, len(track.PCM), track.Peak)
	return track, seed, nil
}

// Generate renders a request and writes it as a WAV file.
// Nothing is written when any stage fails.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Result, error) {
	start := o.now()

	transaction := sentry.StartTransaction(ctx, "tune.generate")
	defer transaction.Finish()
	ctx = transaction.Context()

	logger.Info("Synthesizing tune", logger.Fields{
		"mood":       req.Mood,
		"instrument": req.Instrument,
		"duration":   req.Duration,
	})

	result, err := o.generate(ctx, req, start)
	o.metrics.RecordGenerationDuration(ctx, o.now().Sub(start), err == nil)
	if err != nil {
		transaction.SetTag("success", "false")
		logger.Error("Tune generation failed", err, logger.Fields{
			"mood":       req.Mood,
			"instrument": req.Instrument,
		})
		return nil, err
	}

	transaction.SetTag("success", "true")
	logger.Info("Tune saved", logger.Fields{
		"path":  result.Path,
		"seed":  result.Seed,
		"bytes": result.Bytes,
	})
	return result, nil
}

func (o *Orchestrator) generate(ctx context.Context, req Request, start time.Time) (*Result, error) {
	track, seed, err := o.Render(ctx, req)
	if err != nil {
		return nil, err
	}

	path := req.OutputPath
	if path == "" {
		path = filepath.Join(o.cfg.OutputDir, o.FileName(track.Mood, string(track.Instrument)))
	}

	if err := wavfile.Write(path, track.SampleRate, track.PCM); err != nil {
		return nil, newRenderError(StageWrite, req, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, newRenderError(StageWrite, req, err)
	}

	return &Result{
		Path:    path,
		Seed:    seed,
		Bytes:   info.Size(),
		Elapsed: o.now().Sub(start),
		Track:   track,
	}, nil
}

// FileName builds the default track file name: track_<mood>_<instrument>_<unix>.wav
func (o *Orchestrator) FileName(mood, instrument string) string {
	return fmt.Sprintf("track_%s_%s_%d.wav", mood, instrument, o.now().Unix())
}

// GenerateBatch runs Generate for every request with at most
// RenderWorkers renders in flight. Items line up with reqs.
func (o *Orchestrator) GenerateBatch(ctx context.Context, reqs []Request) []BatchItem {
	items := make([]BatchItem, len(reqs))

	workers := o.cfg.RenderWorkers
	if workers <= 0 {
		workers = 1
	}
	swg := sizedwaitgroup.New(workers)

	for i, req := range reqs {
		items[i].Request = req
		if err := ctx.Err(); err != nil {
			items[i].Err = err
			continue
		}

		swg.Add()
		go func(i int, req Request) {
			defer swg.Done()
			items[i].Result, items[i].Err = o.Generate(ctx, req)
		}(i, req)
	}

	swg.Wait()
	return items
}
