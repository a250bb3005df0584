package config

import (
	"errors"
	"testing"

	"github.com/Codrin-Popa/neutral-go/neutralerr"
	"github.com/Codrin-Popa/neutral-go/tally"
)

func TestLoadEmbeddedDefaultsValidates(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.Mesh.NX <= 0 {
		t.Fatalf("expected a positive default mesh.nx, got %d", cfg.Mesh.NX)
	}
	if cfg.Derived.CellWidth != cfg.Mesh.Width/float64(cfg.Mesh.NX) {
		t.Fatalf("derived cell width not computed correctly")
	}
}

func TestValidateRejectsBadParticleCount(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Particles.Count = cfg.Particles.BlockSize + 1

	if err := cfg.Validate(); !errors.Is(err, neutralerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidateRejectsOversizedSource(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Source.Width = cfg.Mesh.Width + 1

	if err := cfg.Validate(); !errors.Is(err, neutralerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for oversized source, got %v", err)
	}
}

func TestValidateRejectsUnknownTallyMode(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Tally.Mode = "eventual"

	if err := cfg.Validate(); !errors.Is(err, neutralerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for unknown tally mode, got %v", err)
	}
}

func TestTallyModeResolution(t *testing.T) {
	cfg, _ := Load("")
	cfg.Tally.Mode = "deferred"
	if cfg.TallyMode() != tally.DeferredFlush {
		t.Fatalf("expected DeferredFlush")
	}
	cfg.Tally.Mode = "atomic"
	if cfg.TallyMode() != tally.AtomicPerWrite {
		t.Fatalf("expected AtomicPerWrite")
	}
}
