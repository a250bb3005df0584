// Package report computes the end-of-run validation check and
// distributional summary over a finished tally grid.
package report

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Result is the outcome of comparing a tally's grand sum against an
// expected value within a relative tolerance.
type Result struct {
	GrandSum      float64
	Expected      float64
	RelativeError float64
	Passed        bool
}

// Validate sums tally with floats.Sum and compares it to expected within
// tolerance, mirroring the grand-sum VALIDATE_TOLERANCE check.
func Validate(tally []float64, expected, tolerance float64) Result {
	sum := floats.Sum(tally)

	var relErr float64
	if expected != 0 {
		relErr = math.Abs(sum-expected) / math.Abs(expected)
	} else {
		relErr = math.Abs(sum)
	}

	return Result{
		GrandSum:      sum,
		Expected:      expected,
		RelativeError: relErr,
		Passed:        relErr <= tolerance,
	}
}

// GridStats is a per-cell distributional summary of a tally grid.
type GridStats struct {
	NX, NY      int
	Mean        float64
	StdDev      float64
	Min, Max    float64
	P50, P90, P99 float64
}

// Summarize computes descriptive statistics over a tally grid's cells.
func Summarize(tally []float64, nx, ny int) GridStats {
	if len(tally) == 0 {
		return GridStats{NX: nx, NY: ny}
	}

	sorted := append([]float64(nil), tally...)
	sort.Float64s(sorted)

	return GridStats{
		NX:     nx,
		NY:     ny,
		Mean:   stat.Mean(sorted, nil),
		StdDev: stat.StdDev(sorted, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		P50:    stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.90, stat.Empirical, sorted, nil),
		P99:    stat.Quantile(0.99, stat.Empirical, sorted, nil),
	}
}
