// Command neutral is the process entry point for the transport mini-app:
// load configuration, build the scenario, inject the source, and step
// the driver until the run schedule ends.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/Codrin-Popa/neutral-go/config"
	"github.com/Codrin-Popa/neutral-go/driver"
	"github.com/Codrin-Popa/neutral-go/inject"
	"github.com/Codrin-Popa/neutral-go/particle"
	"github.com/Codrin-Popa/neutral-go/report"
	"github.com/Codrin-Popa/neutral-go/scenario"
	"github.com/Codrin-Popa/neutral-go/tally"
	"github.com/Codrin-Popa/neutral-go/transport"
	"github.com/Codrin-Popa/neutral-go/visualize"
	"github.com/Codrin-Popa/neutral-go/xsection"
)

var (
	params    = flag.String("params", "", "Path to a YAML config overlay (empty uses embedded defaults)")
	headless  = flag.Bool("headless", false, "Run without the heatmap viewer at the end")
	maxTicks  = flag.Int("max-ticks", 0, "Stop after N iterations (0 = use run.iterations from config)")
	visitDump = flag.Bool("visit-dump", false, "Override config's run.visit_dump")
	perfLog   = flag.Bool("perf", false, "Log per-step timing")
)

func main() {
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*params)
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	if *visitDump {
		cfg.Run.VisitDump = true
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("run failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	problem, err := scenario.Build(cfg)
	if err != nil {
		return fmt.Errorf("building scenario: %w", err)
	}

	scatter, err := xsection.LoadTable(cfg.CrossSections.ScatterTable)
	if err != nil {
		return fmt.Errorf("loading scatter cross-section table: %w", err)
	}
	absorb, err := xsection.LoadTable(cfg.CrossSections.AbsorbTable)
	if err != nil {
		return fmt.Errorf("loading absorb cross-section table: %w", err)
	}

	store, err := particle.NewStore(cfg.Particles.Count, cfg.Particles.BlockSize)
	if err != nil {
		return fmt.Errorf("allocating particle store: %w", err)
	}

	tallyGrid := tally.NewGrid(problem.NX, problem.NY, cfg.TallyMode())

	material := transport.Material{
		MolarMass:               cfg.Material.MolarMass,
		MassNumber:              cfg.Material.MassNumber,
		MinEnergyOfInterest:     cfg.Material.MinEnergyOfInterest,
		AverageExitEnergyAbsorb: cfg.Material.AverageExitEnergyAbsorb,
	}

	env := &transport.Environment{
		Mesh:               problem.Mesh,
		GlobalNX:           problem.NX,
		GlobalNY:           problem.NY,
		NX:                 problem.NX,
		XOff:               0,
		YOff:               0,
		Pad:                problem.Pad,
		Density:            problem.Density,
		CSScatter:          scatter,
		CSAbsorb:           absorb,
		Material:           material,
		Tally:              tallyGrid,
		MasterKey:          cfg.Run.MasterKeySeed,
		InvNTotalParticles: 1.0 / float64(cfg.Particles.Count),
	}

	inject.Fill(store, problem.Mesh, problem.Source, cfg.Mesh.DT)

	iterations := cfg.Run.Iterations
	if *maxTicks > 0 {
		iterations = *maxTicks
	}

	var simTime float64
	for step := 0; step < iterations && simTime < cfg.Mesh.SimEnd; step++ {
		env.MasterKey = cfg.Run.MasterKeySeed + uint64(step)

		start := time.Now()
		result, err := driver.RunTimeStep(env, store, cfg.Particles.Count, cfg.Mesh.DT, step == 0, logger)
		elapsed := time.Since(start)
		if err != nil {
			return fmt.Errorf("time step %d: %w", step, err)
		}

		if *perfLog {
			logger.Info("step timing", "step", step, "elapsed", elapsed)
		}
		logger.Info("step complete",
			"step", step, "facets", result.Facets, "collisions", result.Collisions)

		simTime += cfg.Mesh.DT
	}

	grid := env.Tally.Data()
	expected := float64(cfg.Particles.Count) * cfg.Source.InitialEnergy * transport.EVToJoule
	validation := report.Validate(grid, expected, 0.25)
	stats := report.Summarize(grid, problem.NX, problem.NY)
	logger.Info("run complete",
		"grand_sum", validation.GrandSum, "expected", validation.Expected,
		"relative_error", validation.RelativeError, "passed", validation.Passed,
		"mean", stats.Mean, "stddev", stats.StdDev, "max", stats.Max)

	if cfg.Run.VisitDump {
		if err := dumpTallyCSV("tally.csv", grid, problem.NX, problem.NY); err != nil {
			return fmt.Errorf("writing tally dump: %w", err)
		}
		logger.Info("tally dump written", "path", "tally.csv")
	}

	if cfg.Run.VisitDump && !*headless {
		if err := visualize.Run(grid, problem.NX, problem.NY, stats.Max); err != nil {
			return fmt.Errorf("launching viewer: %w", err)
		}
	}

	return nil
}

// tallyRow is one cell of a CSV tally dump, consumed by cmd/visualize for
// offline viewing of a finished run.
type tallyRow struct {
	CellX int     `csv:"cell_x"`
	CellY int     `csv:"cell_y"`
	Value float64 `csv:"value"`
}

func dumpTallyCSV(path string, grid []float64, nx, ny int) error {
	rows := make([]tallyRow, len(grid))
	for celly := 0; celly < ny; celly++ {
		for cellx := 0; cellx < nx; cellx++ {
			idx := celly*nx + cellx
			rows[idx] = tallyRow{CellX: cellx, CellY: celly, Value: grid[idx]}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(&rows, f)
}
