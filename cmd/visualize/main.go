// Command visualize loads a CSV tally dump (cell_x, cell_y, value rows)
// and opens the interactive heatmap viewer over it.
//
// Usage: go run ./cmd/visualize -in tally.csv
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/Codrin-Popa/neutral-go/visualize"
)

var (
	in       = flag.String("in", "", "Path to a CSV tally dump (cell_x,cell_y,value columns)")
	scaleMax = flag.Float64("scale-max", 0, "Initial color-scale maximum (0 = derive from the grid)")
)

type cell struct {
	CellX int     `csv:"cell_x"`
	CellY int     `csv:"cell_y"`
	Value float64 `csv:"value"`
}

func main() {
	flag.Parse()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *in == "" {
		logger.Error("-in is required")
		os.Exit(1)
	}

	grid, nx, ny, err := loadGrid(*in)
	if err != nil {
		logger.Error("failed to load tally dump", "path", *in, "err", err)
		os.Exit(1)
	}

	if err := visualize.Run(grid, nx, ny, *scaleMax); err != nil {
		logger.Error("viewer failed", "err", err)
		os.Exit(1)
	}
}

// loadGrid reads a CSV tally dump and reassembles it into a dense
// row-major nx*ny grid, sized from the largest cell_x/cell_y seen.
func loadGrid(path string) (grid []float64, nx, ny int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var rows []cell
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, 0, 0, fmt.Errorf("parsing %s: %w", path, err)
	}

	for _, r := range rows {
		if r.CellX+1 > nx {
			nx = r.CellX + 1
		}
		if r.CellY+1 > ny {
			ny = r.CellY + 1
		}
	}

	grid = make([]float64, nx*ny)
	for _, r := range rows {
		grid[r.CellY*nx+r.CellX] = r.Value
	}
	return grid, nx, ny, nil
}
