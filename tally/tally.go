// Package tally implements the per-cell energy-deposition accumulator,
// supporting both an atomic-per-write mode and a deferred-flush mode as
// two equivalent policies rather than compile-time variants.
package tally

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// Mode selects how energy contributions reach the grid.
type Mode int

const (
	// AtomicPerWrite updates the grid with a lock-free compare-and-swap
	// add on every contribution. Safe for concurrent writers with no
	// other synchronization.
	AtomicPerWrite Mode = iota
	// DeferredFlush gives each driver worker its own private Grid, which
	// the driver merges into the shared Grid with MergeFrom once the
	// worker's blocks are done. Produces an identical grand sum in exact
	// arithmetic; floating-point summation order may differ from
	// AtomicPerWrite.
	DeferredFlush
)

// Grid is the per-local-cell energy-deposition accumulator, indexed by
// (celly-yOff)*nx + (cellx-xOff).
type Grid struct {
	mode   Mode
	nx, ny int
	data   []float64
}

// NewGrid creates a zeroed nx*ny accumulator.
func NewGrid(nx, ny int, mode Mode) *Grid {
	return &Grid{mode: mode, nx: nx, ny: ny, data: make([]float64, nx*ny)}
}

// Mode reports the accumulation policy this grid was constructed with.
func (g *Grid) Mode() Mode { return g.mode }

// Data returns the underlying contiguous nx*ny array. Safe to read once
// the time step's event loop has completed.
func (g *Grid) Data() []float64 { return g.data }

// Add deposits delta energy at local index idx. The grid write is always
// a lock-free compare-and-swap add, so Add is safe to call concurrently
// from any number of worker goroutines regardless of Mode. Mode does not
// change how the transport event loop calls Add: in both modes a lane
// buffers its deposition in a per-lane scalar and calls Add at each facet
// crossing, at census and at death. Mode is read by the driver, which
// decides whether workers share this Grid or write to private ones.
func (g *Grid) Add(idx int, delta float64) {
	if delta == 0 {
		return
	}
	addAtomicFloat64(&g.data[idx], delta)
}

// Dims returns the grid's (nx, ny) extent.
func (g *Grid) Dims() (nx, ny int) { return g.nx, g.ny }

// MergeFrom adds every cell of src into g, cell for cell. Used to combine
// per-worker local grids (deferred-flush mode) into the shared grid once
// each worker's chunk of blocks has finished; callers must not run this
// concurrently with further writes to src or g.
func (g *Grid) MergeFrom(src *Grid) {
	for i, v := range src.data {
		if v != 0 {
			g.Add(i, v)
		}
	}
}

// GrandSum returns the sum of every cell, the validation observable.
func (g *Grid) GrandSum() float64 {
	var sum float64
	for _, v := range g.data {
		sum += v
	}
	return sum
}

// addAtomicFloat64 performs a lock-free fetch-add on a float64 using a
// compare-and-swap loop over its bit pattern, the idiomatic Go substitute
// for a native atomic double-add intrinsic.
func addAtomicFloat64(addr *float64, delta float64) {
	bits := (*uint64)(unsafe.Pointer(addr))
	for {
		old := atomic.LoadUint64(bits)
		newVal := math.Float64frombits(old) + delta
		if atomic.CompareAndSwapUint64(bits, old, math.Float64bits(newVal)) {
			return
		}
	}
}
