// Package geometry implements the mesh geometry kernel: distance-to-facet
// computation and the cell-local coordinate conventions it depends on.
package geometry

import "github.com/Codrin-Popa/neutral-go/neutralerr"

// OpenBoundCorrection nudges the closed (negative) cell boundary a hair
// outward so a particle that lands exactly on an edge is unambiguously
// inside the leaving cell, not the one it just left.
const OpenBoundCorrection = 1e-14

// Mesh holds the read-only edge-coordinate arrays and halo width shared by
// every distance computation. Edge arrays are monotonically increasing and
// sized nx+2*pad+1 (x) / ny+2*pad+1 (y).
type Mesh struct {
	EdgeX, EdgeY []float64
	Pad          int
	XOff, YOff   int
}

// localX/localY convert a global cell index into the halo-adjusted local
// index used to address EdgeX/EdgeY.
func (m *Mesh) localX(cellx int) int { return cellx - m.XOff + m.Pad }
func (m *Mesh) localY(celly int) int { return celly - m.YOff + m.Pad }

// DistanceToFacet computes, in cell-local coordinates, the distance from
// (x,y) travelling at (omegaX,omegaY)*speed to the nearer of the cell's x-
// or y-facet. Ties (dtx == dty) are broken in favour of an x-facet
// crossing, matching the block loop's tie policy (collision beats facet
// beats census; within facet-vs-facet, x wins).
//
// A (0,0) direction cannot arise from isotropic sampling; it would divide
// both dtx and dty by zero and is rejected as neutralerr.ErrDegenerateDirection
// rather than silently producing an Inf/NaN distance.
func (m *Mesh) DistanceToFacet(x, y, omegaX, omegaY, speed float64, cellx, celly int) (distance float64, xFacet bool, err error) {
	if omegaX == 0 && omegaY == 0 {
		return 0, false, neutralerr.ErrDegenerateDirection
	}

	lx := m.localX(cellx)
	ly := m.localY(celly)

	var dtx float64
	if omegaX >= 0 {
		dtx = (m.EdgeX[lx+1] - x) / (omegaX * speed)
	} else {
		dtx = (m.EdgeX[lx] - OpenBoundCorrection - x) / (omegaX * speed)
	}

	var dty float64
	if omegaY >= 0 {
		dty = (m.EdgeY[ly+1] - y) / (omegaY * speed)
	} else {
		dty = (m.EdgeY[ly] - OpenBoundCorrection - y) / (omegaY * speed)
	}

	xFacet = dtx <= dty
	if xFacet {
		distance = dtx * speed
	} else {
		distance = dty * speed
	}
	return distance, xFacet, nil
}

// LocalIndex resolves a global cell index to the flat index into a local
// (non-haloed) per-cell array of width nx, for tally and density lookups.
func LocalIndex(cellx, celly, xOff, yOff, nx int) int {
	return (celly-yOff)*nx + (cellx - xOff)
}

// HaloIndex resolves a global cell index to the flat index into a
// haloed density grid of width nx+2*pad.
func HaloIndex(cellx, celly, xOff, yOff, pad, nx int) int {
	lx := cellx - xOff + pad
	ly := celly - yOff + pad
	return ly*(nx+2*pad) + lx
}
