package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/audio"
	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/audio/pcm"
	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/audio/wav"
	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/confidence"
	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/pitch"
)

// stdinPath selects standard input for --trace and --pcm.
const stdinPath = "-"

type inputFlags struct {
	trace string
	wav   string
	pcm   string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.trace, "trace", "", "read confidences from a text file")
	cmd.Flags().StringVar(&f.wav, "wav", "", "read audio from a WAV file")
	cmd.Flags().StringVar(&f.pcm, "pcm", "", "read raw s16le PCM from a file or pipe")
	cmd.MarkFlagsMutuallyExclusive("trace", "wav", "pcm")
	cmd.MarkFlagsOneRequired("trace", "wav", "pcm")
}

// openInput builds the confidence input selected by f. It is returned closed.
func (a *app) openInput(f inputFlags) (confidence.Input, error) {
	switch {
	case f.trace == stdinPath:
		return confidence.NewTraceReader("stdin", a.stdin), nil
	case f.trace != "":
		return confidence.NewTrace(f.trace), nil
	case f.wav != "":
		return a.wavInput(f.wav)
	case f.pcm != "":
		return a.pcmInput(f.pcm)
	}
	return nil, errors.New("no input selected")
}

// fileInput picks the input type for a recorded file by its extension.
func (a *app) fileInput(path string) (confidence.Input, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return a.wavInput(path)
	}
	return confidence.NewTrace(path), nil
}

func (a *app) wavInput(path string) (confidence.Input, error) {
	cfg := a.config()
	s := wav.New(path, wav.WithBlockSize(cfg.Audio.BlockSize))
	// The sample rate is read from the file header on Open.
	return a.streamInput(s, audio.Format{BlockSize: cfg.Audio.BlockSize})
}

func (a *app) pcmInput(path string) (confidence.Input, error) {
	cfg := a.config()
	open := func() (io.ReadCloser, error) { return os.Open(path) }
	if path == stdinPath {
		open = func() (io.ReadCloser, error) { return io.NopCloser(a.stdin), nil }
	}
	s, err := pcm.New(pcm.Config{Source: cfg.Audio.Format(), TargetRate: cfg.Audio.TargetRate}, open)
	if err != nil {
		return nil, err
	}
	return a.streamInput(s, s.Format())
}

func (a *app) streamInput(s audio.Stream, f audio.Format) (confidence.Input, error) {
	cfg := a.config()
	engine, err := a.registry.CreateEngine(cfg.Pitch)
	if err != nil {
		return nil, fmt.Errorf("pitch engine for %v: %w", s, err)
	}
	tracker := pitch.NewTracker(engine, cfg.Pitch.AnalyzerConfig(f))
	return confidence.NewStreamSource(s, tracker), nil
}

// session keeps an input open across detections so each detection resumes
// where the previous one stopped. Open and Close are no-ops after the first
// Open; release closes the underlying input.
type session struct {
	confidence.Input
	opened bool
}

func (s *session) Open() error {
	if s.opened {
		return nil
	}
	if err := s.Input.Open(); err != nil {
		return err
	}
	s.opened = true
	return nil
}

func (s *session) Close() error { return nil }

func (s *session) release() error {
	if !s.opened {
		return nil
	}
	s.opened = false
	return s.Input.Close()
}

func (s *session) String() string {
	return fmt.Sprint(s.Input)
}
