// Package scenario builds the read-only problem a transport run
// consumes: the mesh, the haloed density grid, and the particle source.
// Material regions are authored as ECS entities and resolved down to a
// flat density grid; this is the one place in the module where an
// entity-component model is a genuine fit — scene authoring, not the
// per-event particle loop, which stays raw SoA.
package scenario

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/Codrin-Popa/neutral-go/config"
	"github.com/Codrin-Popa/neutral-go/geometry"
	"github.com/Codrin-Popa/neutral-go/inject"
)

// Rect is a material patch's footprint in mesh-local coordinates.
type Rect struct {
	X, Y, Width, Height float64
}

// Material is the mass density painted over a Rect.
type Material struct {
	Density float64
}

// Problem is the fully resolved, read-only input the driver consumes.
type Problem struct {
	Mesh    *geometry.Mesh
	Density []float64 // haloed, width (nx+2*pad)
	NX, NY  int
	Pad     int
	Source  inject.Source
}

// contains reports whether (x, y) falls within r.
func (r Rect) contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Build authors one ECS entity per configured region, then resolves
// overlaps by running one query over the regions for each cell: later
// entities (later in cfg.Regions) win wherever two regions cover the
// same cell, matching the paint order documented on config.RegionConfig.
func Build(cfg *config.Config) (*Problem, error) {
	world := ecs.NewWorld()
	mapper := ecs.NewMap2[Rect, Material](world)

	for _, r := range cfg.Regions {
		rect := Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
		mat := Material{Density: r.Density}
		mapper.NewEntity(&rect, &mat)
	}

	nx, ny, pad := cfg.Mesh.NX, cfg.Mesh.NY, cfg.Mesh.Pad
	cellW := cfg.Derived.CellWidth
	cellH := cfg.Derived.CellHeight

	haloNX := nx + 2*pad
	haloNY := ny + 2*pad
	density := make([]float64, haloNX*haloNY)

	filter := ecs.NewFilter2[Rect, Material](world)
	for celly := 0; celly < ny; celly++ {
		for cellx := 0; cellx < nx; cellx++ {
			cx := (float64(cellx) + 0.5) * cellW
			cy := (float64(celly) + 0.5) * cellH

			d := 0.0
			query := filter.Query()
			for query.Next() {
				rect, mat := query.Get()
				if rect.contains(cx, cy) {
					d = mat.Density
				}
			}

			idx := (celly+pad)*haloNX + (cellx + pad)
			density[idx] = d
		}
	}

	mesh := buildMesh(nx, ny, pad, cellW, cellH)

	problem := &Problem{
		Mesh:    mesh,
		Density: density,
		NX:      nx,
		NY:      ny,
		Pad:     pad,
		Source: inject.Source{
			X:             cfg.Source.X,
			Y:             cfg.Source.Y,
			Width:         cfg.Source.Width,
			Height:        cfg.Source.Height,
			InitialEnergy: cfg.Source.InitialEnergy,
		},
	}
	return problem, nil
}

// buildMesh produces the haloed edge-coordinate arrays for a uniform
// nx*ny grid of cellW x cellH cells.
func buildMesh(nx, ny, pad int, cellW, cellH float64) *geometry.Mesh {
	edgeX := make([]float64, nx+2*pad+1)
	for i := range edgeX {
		edgeX[i] = float64(i-pad) * cellW
	}
	edgeY := make([]float64, ny+2*pad+1)
	for i := range edgeY {
		edgeY[i] = float64(i-pad) * cellH
	}
	return &geometry.Mesh{
		EdgeX: edgeX,
		EdgeY: edgeY,
		Pad:   pad,
		XOff:  0,
		YOff:  0,
	}
}
