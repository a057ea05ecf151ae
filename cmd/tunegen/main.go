package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Conceptual-Machines/magda-tunes-go/agents/coordination"
	"github.com/Conceptual-Machines/magda-tunes-go/config"
	"github.com/Conceptual-Machines/magda-tunes-go/moods"
	"github.com/Conceptual-Machines/magda-tunes-go/server"
	"github.com/Conceptual-Machines/magda-tunes-go/synth"
	"github.com/Conceptual-Machines/magda-tunes-go/tones"
	"github.com/dustin/go-humanize"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/hako/durafmt"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const sentryFlushTimeout = 2 * time.Second

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

var cfg *config.Config

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg = config.Load()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "magda-tunes@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			Debug:            !cfg.IsProduction(),
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			defer sentry.Flush(sentryFlushTimeout)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		sentry.Flush(sentryFlushTimeout)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tunegen",
	Short: "Generate short procedural tunes as WAV files",
	Long: `tunegen composes a random melody over a mood's scale, layers the
mood's chord progression on an organ voice and writes the mix as a
16-bit mono WAV file.

Moods: happy, sad, dreamy. Instruments: piano, organ, retro_synth.`,
	Version:       releaseVersion,
	SilenceUsage:  true,
	SilenceErrors: false,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one track",
	Long: `Generate one track from flags.

Examples:
  tunegen generate --mood sad --instrument organ --duration 8
  tunegen generate -m happy -i retro_synth -d 30 --seed 42 -o chiptune.wav`,
	RunE: runGenerate,
}

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Pick instrument, mood and duration from menus",
	RunE:  runInteractive,
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Render several tracks in parallel",
	Long: `Render every mood/instrument combination, or --count tracks with
consecutive seeds for a single mood and instrument.

Examples:
  tunegen batch --duration 10
  tunegen batch -m dreamy -i piano --count 8 --seed 100`,
	RunE: runBatch,
}

var moodsCmd = &cobra.Command{
	Use:   "moods",
	Short: "List moods with their tempo, scale and chords",
	Run: func(cmd *cobra.Command, args []string) {
		for _, m := range moods.All() {
			chords := make([]string, len(m.Chords))
			for i, c := range m.Chords {
				chords[i] = "(" + strings.Join(c, " ") + ")"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %3d bpm  scale: %s\n         chords: %s\n",
				m.Name, m.BPM, strings.Join(m.Scale, " "), strings.Join(chords, " "))
		}
	},
}

var instrumentsCmd = &cobra.Command{
	Use:   "instruments",
	Short: "List instruments",
	Run: func(cmd *cobra.Command, args []string) {
		for _, inst := range synth.Instruments() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", inst, menuLabel(string(inst)))
		}
	},
}

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "List the tone library",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range tones.Names() {
			freq, _ := tones.Frequency(name)
			p, err := tones.Parse(name)
			if err != nil {
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-4s midi %3d  %7.2f Hz\n", name, p.MIDI, freq)
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the render API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}
		router := server.SetupRouter(cfg, releaseVersion)
		log.Printf("🚀 Starting server on port %s", cfg.Port)
		return router.Run(":" + cfg.Port)
	},
}

var (
	moodFlag       string
	instrumentFlag string
	durationFlag   float64
	seedFlag       uint64
	outputFlag     string

	batchMood       string
	batchInstrument string
	batchDuration   float64
	batchSeed       uint64
	batchCount      int
)

func init() {
	generateCmd.Flags().StringVarP(&moodFlag, "mood", "m", "happy", "Mood (happy, sad, dreamy)")
	generateCmd.Flags().StringVarP(&instrumentFlag, "instrument", "i", "piano", "Instrument (piano, organ, retro_synth)")
	generateCmd.Flags().Float64VarP(&durationFlag, "duration", "d", 30, "Track length in seconds")
	generateCmd.Flags().Uint64Var(&seedFlag, "seed", 0, "Random seed (0 = random)")
	generateCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output WAV path (default: OUTPUT_DIR/track_<mood>_<instrument>_<time>.wav)")

	batchCmd.Flags().StringVarP(&batchMood, "mood", "m", "", "Mood for --count renders")
	batchCmd.Flags().StringVarP(&batchInstrument, "instrument", "i", "piano", "Instrument for --count renders")
	batchCmd.Flags().Float64VarP(&batchDuration, "duration", "d", 10, "Track length in seconds")
	batchCmd.Flags().Uint64Var(&batchSeed, "seed", 1, "First seed")
	batchCmd.Flags().IntVarP(&batchCount, "count", "n", 0, "Number of tracks (0 = every mood/instrument pair)")

	rootCmd.AddCommand(generateCmd, interactiveCmd, batchCmd, moodsCmd, instrumentsCmd, notesCmd, serveCmd)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	return generate(ctx, cmd, coordination.Request{
		Mood:       moodFlag,
		Instrument: instrumentFlag,
		Duration:   durationFlag,
		Seed:       seedFlag,
		OutputPath: outputFlag,
	})
}

func runInteractive(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), "--- 🎵 Tune Generator 🎵 ---")

	req, err := promptRequest(cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		if errors.Is(err, errInvalidChoice) {
			fmt.Fprintln(cmd.OutOrStdout(), "\nInvalid choice. Please run tunegen again and enter a valid number.")
		}
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	return generate(ctx, cmd, req)
}

func generate(ctx context.Context, cmd *cobra.Command, req coordination.Request) error {
	out := cmd.OutOrStdout()
	if _, ok := synth.ParseInstrument(req.Instrument); !ok {
		fmt.Fprintf(out, "Unknown instrument %q, using the default sound\n", req.Instrument)
	}
	fmt.Fprintf(out, "\nSynthesizing a '%s' tune with a '%s' sound...\n", req.Mood, req.Instrument)

	result, err := coordination.NewOrchestrator(cfg).Generate(ctx, req)
	if err != nil {
		if errors.Is(err, moods.ErrUnknownMood) {
			fmt.Fprintf(out, "Unknown mood %q, choose one of: %s\n", req.Mood, strings.Join(moods.Names(), ", "))
		}
		return err
	}

	fmt.Fprintf(out, "Done! 🎉 Your masterpiece is saved as '%s' (%s, seed %d, took %s)\n",
		result.Path,
		humanize.Bytes(uint64(result.Bytes)),
		result.Seed,
		durafmt.Parse(result.Elapsed).LimitFirstN(2),
	)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	reqs := batchRequests(cfg.OutputDir, batchMood, batchInstrument, batchDuration, batchSeed, batchCount)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Rendering %d tracks with %d workers...\n", len(reqs), cfg.RenderWorkers)

	start := time.Now()
	items := coordination.NewOrchestrator(cfg).GenerateBatch(ctx, reqs)

	var failed int
	var total int64
	for _, item := range items {
		if item.Err != nil {
			failed++
			fmt.Fprintf(out, "  ✗ %s/%s: %v\n", item.Request.Mood, item.Request.Instrument, item.Err)
			continue
		}
		total += item.Result.Bytes
		fmt.Fprintf(out, "  ✓ %s (%s)\n", item.Result.Path, humanize.Bytes(uint64(item.Result.Bytes)))
	}

	fmt.Fprintf(out, "Wrote %s in %s\n", humanize.Bytes(uint64(total)), durafmt.Parse(time.Since(start)).LimitFirstN(2))
	if failed > 0 {
		return fmt.Errorf("%d of %d renders failed", failed, len(items))
	}
	return nil
}

// batchRequests expands batch flags into requests with distinct output paths
func batchRequests(dir, mood, instrument string, duration float64, seed uint64, count int) []coordination.Request {
	var reqs []coordination.Request
	add := func(m, inst string, s uint64) {
		reqs = append(reqs, coordination.Request{
			Mood:       m,
			Instrument: inst,
			Duration:   duration,
			Seed:       s,
			OutputPath: filepath.Join(dir, fmt.Sprintf("track_%s_%s_%d.wav", m, inst, s)),
		})
	}

	if count > 0 {
		if mood == "" {
			mood = moods.Names()[0]
		}
		for i := 0; i < count; i++ {
			add(mood, instrument, seed+uint64(i))
		}
		return reqs
	}

	for _, m := range moods.Names() {
		for _, inst := range synth.Instruments() {
			add(m, string(inst), seed)
		}
	}
	return reqs
}
