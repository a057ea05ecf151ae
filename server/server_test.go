package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Conceptual-Machines/magda-tunes-go/config"
	"github.com/gin-gonic/gin"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		SampleRate:         8000,
		OutputDir:          t.TempDir(),
		MaxDurationSeconds: 30,
		RenderWorkers:      1,
		RateLimitRPS:       100,
		RateLimitBurst:     100,
	}
	return SetupRouter(cfg, "test")
}

func postTrack(t *testing.T, router *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	jsonBody, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, "/api/v1/tracks", bytes.NewBuffer(jsonBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := setupTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Body.String(), `"version":"test"`)
}

func TestListMoods(t *testing.T) {
	router := setupTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/moods", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Moods []struct {
			Name string `json:"name"`
			BPM  int    `json:"bpm"`
		} `json:"moods"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Moods, 3)
	assert.Equal(t, "happy", resp.Moods[0].Name)
	assert.Equal(t, 120, resp.Moods[0].BPM)
}

func TestListInstruments(t *testing.T) {
	router := setupTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/instruments", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"instruments":["piano","organ","retro_synth"]}`, w.Body.String())
}

func TestCreateTrack(t *testing.T) {
	router := setupTestRouter(t)

	w := postTrack(t, router, CreateTrackRequest{Mood: "sad", Instrument: "organ", Duration: 2, Seed: 7})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "audio/wav", w.Header().Get("Content-Type"))
	assert.Equal(t, "7", w.Header().Get("X-Tune-Seed"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "track_sad_organ_")

	dec := wav.NewDecoder(bytes.NewReader(w.Body.Bytes()))
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, uint32(8000), dec.SampleRate)
	assert.Len(t, buf.Data, 16000)

	// same seed, same audio
	again := postTrack(t, router, CreateTrackRequest{Mood: "sad", Instrument: "organ", Duration: 2, Seed: 7})
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, w.Body.Bytes(), again.Body.Bytes())
}

func TestCreateTrack_UnknownInstrument(t *testing.T) {
	router := setupTestRouter(t)

	w := postTrack(t, router, CreateTrackRequest{Mood: "happy", Instrument: "kazoo", Duration: 1, Seed: 3})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "default", w.Header().Get("X-Tune-Instrument"))
}

func TestCreateTrack_Errors(t *testing.T) {
	router := setupTestRouter(t)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"unknown mood", CreateTrackRequest{Mood: "polka", Instrument: "piano", Duration: 8}, http.StatusNotFound},
		{"too long", CreateTrackRequest{Mood: "happy", Instrument: "piano", Duration: 31}, http.StatusBadRequest},
		{"negative", CreateTrackRequest{Mood: "happy", Instrument: "piano", Duration: -2}, http.StatusBadRequest},
		{"missing mood", map[string]any{"duration": 4}, http.StatusBadRequest},
		{"wrong types", map[string]any{"mood": 5, "duration": "long"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postTrack(t, router, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestCreateTrack_RateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		SampleRate:         8000,
		OutputDir:          t.TempDir(),
		MaxDurationSeconds: 30,
		RateLimitRPS:       0.001,
		RateLimitBurst:     1,
	}
	router := SetupRouter(cfg, "test")

	first := postTrack(t, router, CreateTrackRequest{Mood: "happy", Instrument: "piano", Duration: 1, Seed: 1})
	assert.Equal(t, http.StatusOK, first.Code)

	second := postTrack(t, router, CreateTrackRequest{Mood: "happy", Instrument: "piano", Duration: 1, Seed: 1})
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRecoverWithSentry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RecoverWithSentry())
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
