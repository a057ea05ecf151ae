package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/Conceptual-Machines/magda-tunes-go/agents/coordination"
	"github.com/Conceptual-Machines/magda-tunes-go/logger"
	"github.com/Conceptual-Machines/magda-tunes-go/moods"
	"github.com/Conceptual-Machines/magda-tunes-go/synth"
	"github.com/Conceptual-Machines/magda-tunes-go/wavfile"
	"github.com/gin-gonic/gin"
)

// TrackHandler serves mood/instrument listings and track renders
type TrackHandler struct {
	orchestrator *coordination.Orchestrator
	version      string
}

func NewTrackHandler(o *coordination.Orchestrator, version string) *TrackHandler {
	return &TrackHandler{orchestrator: o, version: version}
}

// CreateTrackRequest is the body of POST /api/v1/tracks
type CreateTrackRequest struct {
	Mood       string  `json:"mood" binding:"required"`
	Instrument string  `json:"instrument"`
	Duration   float64 `json:"duration" binding:"required"`
	Seed       uint64  `json:"seed"`
}

// Health returns the service status
func (h *TrackHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": h.version,
	})
}

// ListMoods returns the mood catalog
func (h *TrackHandler) ListMoods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"moods": moods.All()})
}

// ListInstruments returns the selectable instruments
func (h *TrackHandler) ListInstruments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"instruments": synth.Instruments()})
}

// CreateTrack renders a track and returns it as audio/wav
func (h *TrackHandler) CreateTrack(c *gin.Context) {
	var req CreateTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	track, seed, err := h.orchestrator.Render(c.Request.Context(), coordination.Request{
		Mood:       req.Mood,
		Instrument: req.Instrument,
		Duration:   req.Duration,
		Seed:       req.Seed,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{
			"error":      err.Error(),
			"request_id": c.GetString("request_id"),
		})
		return
	}

	tmp, err := os.CreateTemp("", "tune-*.wav")
	if err != nil {
		h.fail(c, "Failed to create temp file", err)
		return
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err := wavfile.Encode(tmp, track.SampleRate, track.PCM); err != nil {
		h.fail(c, "Failed to encode track", err)
		return
	}
	size, err := tmp.Seek(0, io.SeekEnd)
	if err == nil {
		_, err = tmp.Seek(0, io.SeekStart)
	}
	if err != nil {
		h.fail(c, "Failed to rewind track", err)
		return
	}

	fileName := h.orchestrator.FileName(track.Mood, string(track.Instrument))
	c.DataFromReader(http.StatusOK, size, "audio/wav", tmp, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", fileName),
		"X-Tune-Seed":         strconv.FormatUint(seed, 10),
		"X-Tune-Instrument":   string(track.Instrument),
	})
}

func (h *TrackHandler) fail(c *gin.Context, msg string, err error) {
	fields := logger.WithContext(c)
	logger.Error(msg, err, fields)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":      msg,
		"request_id": c.GetString("request_id"),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, moods.ErrUnknownMood):
		return http.StatusNotFound
	case errors.Is(err, coordination.ErrInvalidDuration):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
