// Package driver implements the transport driver: one call per time
// step, fanning the block event loop out across a worker pool and
// summing per-worker facet and collision counters.
package driver

import (
	"log/slog"
	"runtime"
	"sync"

	"github.com/Codrin-Popa/neutral-go/particle"
	"github.com/Codrin-Popa/neutral-go/tally"
	"github.com/Codrin-Popa/neutral-go/transport"
)

// Result reports the events resolved during one time step.
type Result struct {
	Facets     uint64
	Collisions uint64
}

// pool holds the reusable per-worker resources for the
// snapshot/scratch/WaitGroup worker-chunk pattern RunTimeStep uses.
type pool struct {
	numWorkers int
	scratches  []*transport.Scratch
	envs       []*transport.Environment
}

// newPool builds one Scratch and, in DeferredFlush tally mode, one
// worker-local tally Grid per worker. AtomicPerWrite mode shares the
// single Environment (and its Grid) across all workers since every Add
// is already safe for concurrent callers.
func newPool(env *transport.Environment, blockSize, numWorkers int) *pool {
	p := &pool{
		numWorkers: numWorkers,
		scratches:  make([]*transport.Scratch, numWorkers),
		envs:       make([]*transport.Environment, numWorkers),
	}
	deferred := env.Tally.Mode() == tally.DeferredFlush
	nx, ny := env.Tally.Dims()
	for w := 0; w < numWorkers; w++ {
		p.scratches[w] = transport.NewScratch(blockSize)
		if deferred {
			local := *env
			local.Tally = tally.NewGrid(nx, ny, tally.AtomicPerWrite)
			p.envs[w] = &local
		} else {
			p.envs[w] = env
		}
	}
	return p
}

// RunTimeStep advances every block in store one time step of length dt
// through the event loop. initial seeds dt_to_census and
// mfp_to_collision for particles on their first step (injection or
// reload from a checkpoint). If nlocalParticles is zero the step is
// logged and skipped; otherwise the blocks are split into contiguous
// chunks across runtime.GOMAXPROCS(0) workers, each processing its
// chunk single-threaded, after which any deferred-flush worker grids are
// merged into env.Tally. A non-nil error means some worker hit a
// corrupted-input condition (see transport.RunBlock); the step's counts
// are still returned but should not be trusted.
func RunTimeStep(env *transport.Environment, store *particle.Store, nlocalParticles int, dt float64, initial bool, logger *slog.Logger) (Result, error) {
	if nlocalParticles == 0 {
		logger.Info("out of particles")
		return Result{}, nil
	}

	nb := store.NumBlocks()
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > nb {
		numWorkers = nb
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	p := newPool(env, store.BlockSize(), numWorkers)

	chunkSize := (nb + numWorkers - 1) / numWorkers
	facetCounts := make([]uint64, numWorkers)
	collisionCounts := make([]uint64, numWorkers)
	errs := make([]error, numWorkers)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > nb {
			end = nb
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(workerID, i0, i1 int) {
			defer wg.Done()
			var f, c uint64
			workerEnv := p.envs[workerID]
			scratch := p.scratches[workerID]
			for bid := i0; bid < i1; bid++ {
				blk := store.Block(bid)
				bf, bc, err := transport.RunBlock(workerEnv, blk, bid, scratch, dt, initial)
				f += bf
				c += bc
				if err != nil {
					errs[workerID] = err
					break
				}
			}
			facetCounts[workerID] = f
			collisionCounts[workerID] = c
		}(w, start, end)
	}
	wg.Wait()

	if env.Tally.Mode() == tally.DeferredFlush {
		for w := 0; w < numWorkers; w++ {
			if p.envs[w].Tally != env.Tally {
				env.Tally.MergeFrom(p.envs[w].Tally)
			}
		}
	}

	var totalFacets, totalCollisions uint64
	var firstErr error
	for i := range facetCounts {
		totalFacets += facetCounts[i]
		totalCollisions += collisionCounts[i]
		if errs[i] != nil && firstErr == nil {
			firstErr = errs[i]
		}
	}

	logger.Debug("time step complete",
		"facets", totalFacets, "collisions", totalCollisions, "particles", nlocalParticles)
	return Result{Facets: totalFacets, Collisions: totalCollisions}, firstErr
}
