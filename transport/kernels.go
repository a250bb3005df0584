package transport

import (
	"math"

	"github.com/Codrin-Popa/neutral-go/geometry"
	"github.com/Codrin-Popa/neutral-go/particle"
	"github.com/Codrin-Popa/neutral-go/rng"
	"github.com/Codrin-Popa/neutral-go/tally"
	"github.com/Codrin-Popa/neutral-go/xsection"
)

// Environment bundles the read-mostly inputs one block event loop pass
// needs: the mesh, the haloed density field, the two cross-section
// tables, the material constants and the tally grid contributions are
// written to. Workers never mutate an Environment except through its
// tally Grid, whose Add is safe for concurrent callers. In AtomicPerWrite
// mode the driver shares one Environment across every worker; in
// DeferredFlush mode each worker gets a copy carrying its own Grid.
type Environment struct {
	Mesh     *geometry.Mesh
	GlobalNX int
	GlobalNY int
	NX       int
	XOff     int
	YOff     int
	Pad      int

	// Density is the haloed mass-density grid, width NX+2*Pad.
	Density []float64

	CSScatter *xsection.Table
	CSAbsorb  *xsection.Table
	Material  Material

	Tally              *tally.Grid
	MasterKey          uint64
	InvNTotalParticles float64
}

func (e *Environment) densityAt(cellx, celly int32) float64 {
	idx := geometry.HaloIndex(int(cellx), int(celly), e.XOff, e.YOff, e.Pad, e.NX)
	return e.Density[idx]
}

func (e *Environment) localIndex(cellx, celly int32) int {
	return geometry.LocalIndex(int(cellx), int(celly), e.XOff, e.YOff, e.NX)
}

// energyDeposition implements the heating-response model: the energy a
// path of length pathLength deposits, net of the assumed absorption and
// scattering exit energies.
func energyDeposition(m Material, weight, pathLength, energy, microAbsorb, microTotal, numberDensity float64) float64 {
	absorbFrac := microAbsorb / microTotal
	exitScatter := energy * (m.MassNumber*m.MassNumber + m.MassNumber + 1.0) /
		((m.MassNumber + 1.0) * (m.MassNumber + 1.0))
	heat := energy - absorbFrac*m.AverageExitEnergyAbsorb - (1.0-absorbFrac)*exitScatter
	return weight * pathLength * (microTotal * Barns) * heat * numberDensity
}

// refreshCrossSections re-derives the macroscopic cross sections and
// number density for lane ip after its energy or cell has changed.
func refreshCrossSections(env *Environment, blk *particle.Block, sc *Scratch, ip int) {
	microScatter, si, _ := env.CSScatter.Lookup(blk.Energy[ip], sc.ScatterIndex[ip])
	microAbsorb, ai, _ := env.CSAbsorb.Lookup(blk.Energy[ip], sc.AbsorbIndex[ip])
	sc.ScatterIndex[ip] = si
	sc.AbsorbIndex[ip] = ai
	sc.MicroScatter[ip] = microScatter
	sc.MicroAbsorb[ip] = microAbsorb

	nd := env.Material.NumberDensity(sc.LocalDensity[ip])
	sc.NumberDensity[ip] = nd
	sc.MacroScatter[ip] = nd * microScatter * Barns
	sc.MacroAbsorb[ip] = nd * microAbsorb * Barns
}

// flushTally writes lane ip's accumulated scratch energy deposition to
// the shared tally at its current cell, then zeroes the scratch value.
func flushTally(env *Environment, blk *particle.Block, sc *Scratch, ip int) {
	idx := env.localIndex(blk.CellX[ip], blk.CellY[ip])
	env.Tally.Add(idx, sc.EnergyDeposition[ip]*env.InvNTotalParticles)
	sc.EnergyDeposition[ip] = 0.0
}

// collisionEvent resolves a collision: implicit capture with probability
// p_a = Σa/Σt, otherwise elastic scattering in the center-of-mass frame.
func collisionEvent(env *Environment, blk *particle.Block, sc *Scratch, ip, bid, blockSize int, counter uint64) {
	distance := blk.MfpToCollision[ip] * sc.CellMFP[ip]

	sc.EnergyDeposition[ip] += energyDeposition(env.Material, blk.Weight[ip], distance,
		blk.Energy[ip], sc.MicroAbsorb[ip], sc.MicroScatter[ip]+sc.MicroAbsorb[ip], sc.NumberDensity[ip])

	blk.X[ip] += distance * blk.OmegaX[ip]
	blk.Y[ip] += distance * blk.OmegaY[ip]

	pAbsorb := sc.MacroAbsorb[ip] / (sc.MacroScatter[ip] + sc.MacroAbsorb[ip])

	key := particle.ParticleKey(bid, ip, blockSize)
	r0, r1, _, r3 := rng.Draw4(key, env.MasterKey, counter)

	if r0 < pAbsorb {
		blk.Weight[ip] *= 1.0 - pAbsorb
		if blk.Energy[ip] < env.Material.MinEnergyOfInterest {
			blk.Dead[ip] = true
			flushTally(env, blk, sc, ip)
			return
		}
	} else {
		muCM := 1.0 - 2.0*r1
		a := env.Material.MassNumber
		eNew := blk.Energy[ip] * (a*a + 2.0*a*muCM + 1.0) / ((a + 1.0) * (a + 1.0))
		cosTheta := 0.5*(a+1.0)*math.Sqrt(eNew/blk.Energy[ip]) -
			0.5*(a-1.0)*math.Sqrt(blk.Energy[ip]/eNew)
		sinTheta := math.Sqrt(1.0 - cosTheta*cosTheta)
		omegaX := blk.OmegaX[ip]*cosTheta - blk.OmegaY[ip]*sinTheta
		omegaY := blk.OmegaX[ip]*sinTheta + blk.OmegaY[ip]*cosTheta
		blk.OmegaX[ip] = omegaX
		blk.OmegaY[ip] = omegaY
		blk.Energy[ip] = eNew
	}

	speedBefore := sc.Speed[ip]
	refreshCrossSections(env, blk, sc, ip)
	blk.MfpToCollision[ip] = -math.Log(r3) / sc.MacroScatter[ip]
	blk.DtToCensus[ip] -= distance / speedBefore
	sc.Speed[ip] = Speed(blk.Energy[ip])
}

// facetEvent moves a lane to its facet, reflects at global boundaries or
// steps the cell index, and refreshes the cell-local density terms.
func facetEvent(env *Environment, blk *particle.Block, sc *Scratch, ip int) {
	de := energyDeposition(env.Material, blk.Weight[ip], sc.DistanceToFacet[ip],
		blk.Energy[ip], sc.MicroAbsorb[ip], sc.MicroScatter[ip]+sc.MicroAbsorb[ip], sc.NumberDensity[ip])
	sc.EnergyDeposition[ip] += de
	flushTally(env, blk, sc, ip)

	sc.CellMFP[ip] = 1.0 / (sc.MacroScatter[ip] + sc.MacroAbsorb[ip])
	blk.MfpToCollision[ip] -= sc.DistanceToFacet[ip] / sc.CellMFP[ip]
	blk.DtToCensus[ip] -= sc.DistanceToFacet[ip] / sc.Speed[ip]

	blk.X[ip] += sc.DistanceToFacet[ip] * blk.OmegaX[ip]
	blk.Y[ip] += sc.DistanceToFacet[ip] * blk.OmegaY[ip]

	if sc.XFacet[ip] {
		if (blk.OmegaX[ip] > 0.0 && blk.CellX[ip] >= int32(env.GlobalNX-1)) || (blk.OmegaX[ip] < 0.0 && blk.CellX[ip] <= 0) {
			blk.OmegaX[ip] = -blk.OmegaX[ip]
		} else if blk.OmegaX[ip] > 0.0 && blk.CellX[ip] < int32(env.GlobalNX-1) {
			blk.CellX[ip]++
		} else if blk.OmegaX[ip] < 0.0 && blk.CellX[ip] > 0 {
			blk.CellX[ip]--
		}
	} else {
		if (blk.OmegaY[ip] > 0.0 && blk.CellY[ip] >= int32(env.GlobalNY-1)) || (blk.OmegaY[ip] < 0.0 && blk.CellY[ip] <= 0) {
			blk.OmegaY[ip] = -blk.OmegaY[ip]
		} else if blk.OmegaY[ip] > 0.0 && blk.CellY[ip] < int32(env.GlobalNY-1) {
			blk.CellY[ip]++
		} else if blk.OmegaY[ip] < 0.0 && blk.CellY[ip] > 0 {
			blk.CellY[ip]--
		}
	}

	sc.LocalDensity[ip] = env.densityAt(blk.CellX[ip], blk.CellY[ip])
	sc.NumberDensity[ip] = env.Material.NumberDensity(sc.LocalDensity[ip])
	sc.MacroScatter[ip] = sc.NumberDensity[ip] * sc.MicroScatter[ip] * Barns
	sc.MacroAbsorb[ip] = sc.NumberDensity[ip] * sc.MicroAbsorb[ip] * Barns
}

// censusEvent advances a lane to the end of the time step and retires it.
func censusEvent(env *Environment, blk *particle.Block, sc *Scratch, ip int) {
	distance := sc.Speed[ip] * blk.DtToCensus[ip]

	blk.X[ip] += distance * blk.OmegaX[ip]
	blk.Y[ip] += distance * blk.OmegaY[ip]
	blk.MfpToCollision[ip] -= distance / sc.CellMFP[ip]

	sc.EnergyDeposition[ip] += energyDeposition(env.Material, blk.Weight[ip], distance,
		blk.Energy[ip], sc.MicroAbsorb[ip], sc.MicroScatter[ip]+sc.MicroAbsorb[ip], sc.NumberDensity[ip])
	flushTally(env, blk, sc, ip)
	blk.DtToCensus[ip] = 0.0
}
