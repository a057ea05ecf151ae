package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchRequests_AllPairs(t *testing.T) {
	reqs := batchRequests("out", "", "piano", 10, 5, 0)
	require.Len(t, reqs, 9)

	seen := map[string]bool{}
	for _, r := range reqs {
		assert.Equal(t, 10.0, r.Duration)
		assert.Equal(t, uint64(5), r.Seed)
		assert.False(t, seen[r.OutputPath], "duplicate path %s", r.OutputPath)
		seen[r.OutputPath] = true
	}
	assert.Equal(t, filepath.Join("out", "track_happy_piano_5.wav"), reqs[0].OutputPath)
	assert.Equal(t, filepath.Join("out", "track_dreamy_retro_synth_5.wav"), reqs[8].OutputPath)
}

func TestBatchRequests_Count(t *testing.T) {
	reqs := batchRequests("out", "sad", "organ", 4, 100, 3)
	require.Len(t, reqs, 3)
	for i, r := range reqs {
		assert.Equal(t, "sad", r.Mood)
		assert.Equal(t, "organ", r.Instrument)
		assert.Equal(t, uint64(100+i), r.Seed)
	}

	defaults := batchRequests("out", "", "piano", 4, 1, 2)
	assert.Equal(t, "happy", defaults[0].Mood)
}
