package transport

import (
	"math"

	"github.com/Codrin-Popa/neutral-go/particle"
	"github.com/Codrin-Popa/neutral-go/rng"
)

// EventKind tags the event a lane is about to process.
type EventKind int

const (
	EventDead EventKind = iota
	EventCollision
	EventFacet
	EventCensus
)

// Scratch holds the per-lane working arrays the block event loop needs.
// A Scratch is reused across every block a worker processes, the same
// way a chunked parallel pass reuses one scratch buffer per worker
// rather than allocating per block.
type Scratch struct {
	XFacet           []bool
	ScatterIndex     []int
	AbsorbIndex      []int
	CellMFP          []float64
	LocalDensity     []float64
	MicroScatter     []float64
	MicroAbsorb      []float64
	NumberDensity    []float64
	MacroScatter     []float64
	MacroAbsorb      []float64
	Speed            []float64
	EnergyDeposition []float64
	DistanceToFacet  []float64
	NextEvent        []EventKind
}

// NewScratch allocates a Scratch sized for blockSize lanes.
func NewScratch(blockSize int) *Scratch {
	return &Scratch{
		XFacet:           make([]bool, blockSize),
		ScatterIndex:     fill(blockSize, -1),
		AbsorbIndex:      fill(blockSize, -1),
		CellMFP:          make([]float64, blockSize),
		LocalDensity:     make([]float64, blockSize),
		MicroScatter:     make([]float64, blockSize),
		MicroAbsorb:      make([]float64, blockSize),
		NumberDensity:    make([]float64, blockSize),
		MacroScatter:     make([]float64, blockSize),
		MacroAbsorb:      make([]float64, blockSize),
		Speed:            make([]float64, blockSize),
		EnergyDeposition: make([]float64, blockSize),
		DistanceToFacet:  make([]float64, blockSize),
		NextEvent:        make([]EventKind, blockSize),
	}
}

func fill(n, v int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// RunBlock advances every live lane of blk through collision, facet and
// census events until every lane has either reached census or died, per
// the outer block event loop. initial selects whether dt_to_census and
// mfp_to_collision are (re)seeded for the step, true on a particle's
// first step after injection or reload. Returns the number of facet and
// collision events resolved in this block. A non-nil error means some
// lane's direction cosines were found to be degenerate; the block loop
// stops at that point since the invariant violated is a corrupted-input
// condition, not a recoverable one.
func RunBlock(env *Environment, blk *particle.Block, bid int, sc *Scratch, dt float64, initial bool) (facets, collisions uint64, err error) {
	blockSize := len(blk.Dead)
	var counter uint64

	for ip := 0; ip < blockSize; ip++ {
		if blk.Dead[ip] {
			continue
		}

		sc.XFacet[ip] = false
		sc.EnergyDeposition[ip] = 0.0
		sc.LocalDensity[ip] = env.densityAt(blk.CellX[ip], blk.CellY[ip])
		refreshCrossSections(env, blk, sc, ip)
		sc.Speed[ip] = Speed(blk.Energy[ip])

		key := particle.ParticleKey(bid, ip, blockSize)
		if initial {
			blk.DtToCensus[ip] = dt
			r0, _, _, _ := rng.Draw4(key, env.MasterKey, 0)
			blk.MfpToCollision[ip] = -math.Log(r0) / sc.MacroScatter[ip]
		}
	}
	counter = 1

	for {
		ncompleted := 0
		for ip := 0; ip < blockSize; ip++ {
			if blk.Dead[ip] {
				sc.NextEvent[ip] = EventDead
				ncompleted++
				continue
			}

			sc.CellMFP[ip] = 1.0 / (sc.MacroScatter[ip] + sc.MacroAbsorb[ip])
			dist, xFacet, derr := env.Mesh.DistanceToFacet(blk.X[ip], blk.Y[ip], blk.OmegaX[ip], blk.OmegaY[ip],
				sc.Speed[ip], int(blk.CellX[ip]), int(blk.CellY[ip]))
			if derr != nil {
				return facets, collisions, derr
			}
			sc.DistanceToFacet[ip] = dist
			sc.XFacet[ip] = xFacet

			distCollision := blk.MfpToCollision[ip] * sc.CellMFP[ip]
			distCensus := sc.Speed[ip] * blk.DtToCensus[ip]

			switch {
			case distCollision < dist && distCollision < distCensus:
				sc.NextEvent[ip] = EventCollision
				collisions++
			case dist < distCensus:
				sc.NextEvent[ip] = EventFacet
				facets++
			default:
				sc.NextEvent[ip] = EventCensus
				ncompleted++
			}
		}

		if ncompleted == blockSize {
			break
		}

		for ip := 0; ip < blockSize; ip++ {
			if sc.NextEvent[ip] == EventCollision {
				collisionEvent(env, blk, sc, ip, bid, blockSize, counter)
			}
		}
		counter++

		for ip := 0; ip < blockSize; ip++ {
			if sc.NextEvent[ip] == EventFacet {
				facetEvent(env, blk, sc, ip)
			}
		}
	}

	for ip := 0; ip < blockSize; ip++ {
		if sc.NextEvent[ip] == EventCensus {
			censusEvent(env, blk, sc, ip)
		}
	}

	return facets, collisions, nil
}
