package wav_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/audio"
	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/audio/wav"
)

// writeWAV encodes samples as a 16-bit PCM WAV file in a temp dir.
func writeWAV(t *testing.T, sampleRate, channels int, samples []int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ring.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	enc := gowav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("encoder close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("file close: %v", err)
	}
	return path
}

func TestStream_ReadsBlocksUntilShortBlock(t *testing.T) {
	t.Parallel()
	samples := make([]int, 10)
	for i := range samples {
		samples[i] = 16384
	}
	path := writeWAV(t, 8000, 1, samples)

	s := wav.New(path, wav.WithBlockSize(4))
	var sizes []int
	err := audio.Use(s, func() error {
		if got := s.Format().SampleRate; got != 8000 {
			t.Errorf("SampleRate = %d, want 8000", got)
		}
		for !s.Depleted() {
			b, err := s.Read()
			if err != nil {
				return err
			}
			if b.Index != s.BlocksRead() {
				t.Errorf("block index %d != BlocksRead %d", b.Index, s.BlocksRead())
			}
			for _, v := range b.Samples {
				if v != 0.5 {
					t.Fatalf("sample = %v, want 0.5", v)
				}
			}
			sizes = append(sizes, len(b.Samples))
		}
		if _, err := s.Read(); !errors.Is(err, io.EOF) {
			t.Errorf("read after depletion: got %v, want io.EOF", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Use: %v", err)
	}
	want := []int{4, 4, 2}
	if len(sizes) != len(want) {
		t.Fatalf("block sizes = %v, want %v", sizes, want)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Errorf("block %d size = %d, want %d", i, sizes[i], want[i])
		}
	}
}

func TestStream_DownmixesStereo(t *testing.T) {
	t.Parallel()
	path := writeWAV(t, 8000, 2, []int{16384, -16384, 16384, 16384})

	s := wav.New(path, wav.WithBlockSize(8))
	err := audio.Use(s, func() error {
		b, err := s.Read()
		if err != nil {
			return err
		}
		if len(b.Samples) != 2 {
			t.Fatalf("got %d samples, want 2", len(b.Samples))
		}
		if b.Samples[0] != 0 || b.Samples[1] != 0.5 {
			t.Errorf("samples = %v, want [0 0.5]", b.Samples)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Use: %v", err)
	}
}

func TestStream_LifecycleMisuse(t *testing.T) {
	t.Parallel()
	path := writeWAV(t, 8000, 1, []int{1, 2, 3})
	s := wav.New(path)

	if _, err := s.Read(); !errors.Is(err, audio.ErrNotOpen) {
		t.Errorf("Read before Open: got %v, want ErrNotOpen", err)
	}
	if err := s.Close(); !errors.Is(err, audio.ErrNotOpen) {
		t.Errorf("Close before Open: got %v, want ErrNotOpen", err)
	}
	if err := s.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Open(); !errors.Is(err, audio.ErrAlreadyOpen) {
		t.Errorf("second Open: got %v, want ErrAlreadyOpen", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestStream_InvalidFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "not.wav")
	if err := os.WriteFile(path, []byte("definitely not riff data"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := wav.New(path)
	if err := s.Open(); !errors.Is(err, wav.ErrInvalidFile) {
		t.Fatalf("Open: got %v, want ErrInvalidFile", err)
	}
}

func TestStream_MissingFile(t *testing.T) {
	t.Parallel()
	s := wav.New(filepath.Join(t.TempDir(), "missing.wav"))
	if err := s.Open(); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Open: got %v, want ErrNotExist", err)
	}
}
