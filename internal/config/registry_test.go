package config_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/sam-brownlow/remote-doorbell-intercom/internal/config"
	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/pitch"
	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/pitch/mock"
)

func TestRegistry_CreateEngine(t *testing.T) {
	t.Parallel()
	r := config.NewRegistry()
	engine := &mock.Engine{}
	var got config.PitchConfig
	r.RegisterEngine("fake", func(cfg config.PitchConfig) (pitch.Engine, error) {
		got = cfg
		return engine, nil
	})

	e, err := r.CreateEngine(config.PitchConfig{Engine: "fake", Method: "yin"})
	if err != nil {
		t.Fatalf("CreateEngine: %v", err)
	}
	if e != engine {
		t.Error("CreateEngine returned a different engine")
	}
	if got.Method != "yin" {
		t.Errorf("factory received %+v", got)
	}
}

func TestRegistry_NotRegistered(t *testing.T) {
	t.Parallel()
	r := config.NewRegistry()
	r.RegisterEngine("b", func(config.PitchConfig) (pitch.Engine, error) { return nil, nil })
	r.RegisterEngine("a", func(config.PitchConfig) (pitch.Engine, error) { return nil, nil })

	_, err := r.CreateEngine(config.PitchConfig{Engine: "missing"})
	if !errors.Is(err, config.ErrEngineNotRegistered) {
		t.Fatalf("got %v, want ErrEngineNotRegistered", err)
	}
	if names := r.Engines(); !slices.Equal(names, []string{"a", "b"}) {
		t.Errorf("Engines() = %v", names)
	}
}

func TestRegistry_FactoryError(t *testing.T) {
	t.Parallel()
	r := config.NewRegistry()
	boom := errors.New("boom")
	r.RegisterEngine("bad", func(config.PitchConfig) (pitch.Engine, error) { return nil, boom })
	if _, err := r.CreateEngine(config.PitchConfig{Engine: "bad"}); !errors.Is(err, boom) {
		t.Errorf("got %v, want boom", err)
	}
}
