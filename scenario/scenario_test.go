package scenario

import (
	"testing"

	"github.com/Codrin-Popa/neutral-go/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func TestBuildPaintsLaterRegionOverEarlier(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mesh.NX, cfg.Mesh.NY = 10, 10
	cfg.Mesh.Width, cfg.Mesh.Height = 10, 10
	cfg.Derived.CellWidth, cfg.Derived.CellHeight = 1, 1
	cfg.Regions = []config.RegionConfig{
		{X: 0, Y: 0, Width: 10, Height: 10, Density: 1.0},
		{X: 4, Y: 4, Width: 2, Height: 2, Density: 9.0},
	}

	problem, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	haloNX := problem.NX + 2*problem.Pad
	// Cell (1,1) is background only.
	bgIdx := (1+problem.Pad)*haloNX + (1 + problem.Pad)
	if problem.Density[bgIdx] != 1.0 {
		t.Fatalf("expected background density 1.0 at (1,1), got %v", problem.Density[bgIdx])
	}
	// Cell (4,4) falls inside the inclusion rectangle.
	incIdx := (4+problem.Pad)*haloNX + (4 + problem.Pad)
	if problem.Density[incIdx] != 9.0 {
		t.Fatalf("expected inclusion density 9.0 at (4,4), got %v", problem.Density[incIdx])
	}
}

func TestBuildProducesSourceFromConfig(t *testing.T) {
	cfg := testConfig(t)
	problem, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if problem.Source.InitialEnergy != cfg.Source.InitialEnergy {
		t.Fatalf("source energy not carried through: got %v, want %v",
			problem.Source.InitialEnergy, cfg.Source.InitialEnergy)
	}
}

func TestBuildMeshEdgesAreMonotone(t *testing.T) {
	cfg := testConfig(t)
	problem, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i := 1; i < len(problem.Mesh.EdgeX); i++ {
		if problem.Mesh.EdgeX[i] <= problem.Mesh.EdgeX[i-1] {
			t.Fatalf("mesh edge_x is not strictly increasing at %d", i)
		}
	}
}
