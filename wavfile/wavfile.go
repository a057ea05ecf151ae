package wavfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitDepth    = 16
	numChannels = 1
	pcmFormat   = 1 // WAVE_FORMAT_PCM
)

// Encode writes mono 16-bit PCM samples as a WAV stream
func Encode(w io.WriteSeeker, sampleRate int, samples []int16) error {
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	enc := wav.NewEncoder(w, sampleRate, bitDepth, numChannels, pcmFormat)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: numChannels,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to encode samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize wav header: %w", err)
	}
	return nil
}

// Write stores samples at path. The file is written next to its
// destination and renamed into place, so a failed write leaves nothing behind.
func Write(path string, sampleRate int, samples []int16) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tune-*.wav")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := Encode(tmp, sampleRate, samples); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move wav into place: %w", err)
	}
	return nil
}

// Read decodes a mono 16-bit WAV file
func Read(path string) (sampleRate int, samples []int16, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0, nil, fmt.Errorf("not a valid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return 0, nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if dec.BitDepth != bitDepth || dec.NumChans != numChannels {
		return 0, nil, fmt.Errorf("unsupported wav layout: %d-bit, %d channels", dec.BitDepth, dec.NumChans)
	}

	samples = make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = int16(v)
	}
	return int(dec.SampleRate), samples, nil
}
