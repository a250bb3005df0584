// Package xsection implements cross-section table lookup: binary search
// plus linear interpolation over an energy-sorted (key, value) array, with
// support for warm-restart index hints from the caller.
package xsection

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/Codrin-Popa/neutral-go/neutralerr"
)

// Table is a piecewise-linear microscopic cross section sigma(E), keyed by
// energy in eV with values in barns. Keys must be strictly increasing.
type Table struct {
	Keys   []float64
	Values []float64
}

// row is the CSV row shape consumed by LoadTable: header "energy_ev,barns".
type row struct {
	EnergyEV float64 `csv:"energy_ev"`
	Barns    float64 `csv:"barns"`
}

// LoadTable reads a two-column CSV cross-section table and validates that
// it is strictly monotone in energy.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening cross-section table %s: %w", path, err)
	}
	defer f.Close()

	var rows []row
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parsing cross-section table %s: %w", path, err)
	}

	t := &Table{
		Keys:   make([]float64, len(rows)),
		Values: make([]float64, len(rows)),
	}
	for i, r := range rows {
		t.Keys[i] = r.EnergyEV
		t.Values[i] = r.Barns
	}
	if err := t.validateMonotone(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func (t *Table) validateMonotone() error {
	for i := 1; i < len(t.Keys); i++ {
		if t.Keys[i] <= t.Keys[i-1] {
			return fmt.Errorf("cross-section keys are not strictly increasing at index %d", i)
		}
	}
	return nil
}

// Lookup returns the linearly interpolated cross section at energy e,
// together with the lower-index bracketing bin. hint seeds the binary
// search (a warm restart from a previous lookup at a nearby energy); pass
// -1 or any out-of-range value for a cold start.
//
// The search starts at N/2 with stride N/4, halving the stride (clamped to
// >= 1) until keys[i] <= e < keys[i+1]. An energy outside [keys[0],
// keys[N-1]] is a fatal configuration error.
func (t *Table) Lookup(e float64, hint int) (value float64, index int, err error) {
	n := len(t.Keys)
	if n < 2 {
		return 0, 0, fmt.Errorf("%w: table has fewer than 2 entries", neutralerr.ErrCrossSectionOutOfRange)
	}
	if e < t.Keys[0] || e >= t.Keys[n-1] {
		// e exactly at the top key is the one in-range exception: the
		// table's last bin is closed on both ends so the final energy
		// group remains reachable. Return it directly rather than
		// falling into the search loop below: every other candidate bin
		// fails its bracket test at e == Keys[n-1], so the loop would
		// never terminate.
		if e != t.Keys[n-1] {
			return 0, 0, fmt.Errorf("%w: energy %.12e not in [%.12e, %.12e]",
				neutralerr.ErrCrossSectionOutOfRange, e, t.Keys[0], t.Keys[n-1])
		}
		ind := n - 2
		value = t.Values[ind] + (e-t.Keys[ind])/(t.Keys[ind+1]-t.Keys[ind])*(t.Values[ind+1]-t.Values[ind])
		return value, ind, nil
	}

	ind := hint
	if ind < 0 || ind > n-2 {
		ind = n / 2
	}
	width := n / 4
	if width < 1 {
		width = 1
	}

	for e < t.Keys[ind] || e >= t.Keys[ind+1] {
		if e < t.Keys[ind] {
			ind -= width
		} else {
			ind += width
		}
		if ind < 0 {
			ind = 0
		}
		if ind > n-2 {
			ind = n - 2
		}
		if width > 1 {
			width /= 2
		}
	}

	value = t.Values[ind] + (e-t.Keys[ind])/(t.Keys[ind+1]-t.Keys[ind])*(t.Values[ind+1]-t.Values[ind])
	return value, ind, nil
}
