// Package inject implements initial source sampling: filling a particle
// store with particles uniformly distributed in a source rectangle,
// isotropic in direction, at a single mono-energetic energy.
package inject

import (
	"math"

	"github.com/Codrin-Popa/neutral-go/geometry"
	"github.com/Codrin-Popa/neutral-go/particle"
	"github.com/Codrin-Popa/neutral-go/rng"
)

// Source describes a rectangular emission region and the mono-energetic
// spectrum particles are born at.
type Source struct {
	X, Y          float64 // lower-left corner, mesh-local coordinates
	Width, Height float64
	InitialEnergy float64
}

// Fill populates every lane of store with a freshly sampled particle
// from src, using (pid, master_key=0, counter=0) as the RNG draw for
// every particle — injection is independent of the step's own
// master_key, so source sampling always reproduces identically across
// runs regardless of which step it occurs on.
//
// Cell indices are located by linear search over the mesh's edge
// arrays, since a freshly injected particle carries no prior cell to
// warm-start from.
func Fill(store *particle.Store, mesh *geometry.Mesh, src Source, dt float64) {
	blockSize := store.BlockSize()
	for bid := 0; bid < store.NumBlocks(); bid++ {
		blk := store.Block(bid)
		for ip := 0; ip < blockSize; ip++ {
			pid := particle.ParticleKey(bid, ip, blockSize)
			r0, r1, r2, _ := rng.Draw4(pid, 0, 0)

			x := src.X + r0*src.Width
			y := src.Y + r1*src.Height
			theta := 2.0 * math.Pi * r2

			blk.X[ip] = x
			blk.Y[ip] = y
			blk.OmegaX[ip] = math.Cos(theta)
			blk.OmegaY[ip] = math.Sin(theta)
			blk.Energy[ip] = src.InitialEnergy
			blk.Weight[ip] = 1.0
			blk.DtToCensus[ip] = dt
			blk.MfpToCollision[ip] = 0.0
			blk.Dead[ip] = false

			cellx, celly := locateCell(mesh, x, y)
			blk.CellX[ip] = int32(cellx)
			blk.CellY[ip] = int32(celly)
		}
	}
}

// locateCell finds the global cell containing (x, y) by linear search
// over the mesh's local edge arrays, returning global cell coordinates.
func locateCell(mesh *geometry.Mesh, x, y float64) (cellx, celly int) {
	cellx = searchEdges(mesh.EdgeX, x) - mesh.Pad + mesh.XOff
	celly = searchEdges(mesh.EdgeY, y) - mesh.Pad + mesh.YOff
	return cellx, celly
}

func searchEdges(edges []float64, v float64) int {
	for i := 0; i < len(edges)-1; i++ {
		if v >= edges[i] && v < edges[i+1] {
			return i
		}
	}
	return len(edges) - 2
}
