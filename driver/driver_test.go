package driver

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/Codrin-Popa/neutral-go/geometry"
	"github.com/Codrin-Popa/neutral-go/neutralerr"
	"github.com/Codrin-Popa/neutral-go/particle"
	"github.com/Codrin-Popa/neutral-go/tally"
	"github.com/Codrin-Popa/neutral-go/transport"
	"github.com/Codrin-Popa/neutral-go/xsection"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEnv(mode tally.Mode) *transport.Environment {
	mesh := &geometry.Mesh{
		EdgeX: []float64{-1, 0, 1, 2, 3, 4},
		EdgeY: []float64{-1, 0, 1, 2, 3, 4},
		Pad:   1,
		XOff:  0,
		YOff:  0,
	}
	nx, ny := 4, 4
	density := make([]float64, (nx+2)*(ny+2))
	flat := &xsection.Table{Keys: []float64{1e-3, 1e1}, Values: []float64{0, 0}}
	return &transport.Environment{
		Mesh:               mesh,
		GlobalNX:           nx,
		GlobalNY:           ny,
		NX:                 nx,
		XOff:               0,
		YOff:               0,
		Pad:                1,
		Density:            density,
		CSScatter:          flat,
		CSAbsorb:           flat,
		Material:           transport.DefaultMaterial(),
		Tally:              tally.NewGrid(nx, ny, mode),
		MasterKey:          7,
		InvNTotalParticles: 1.0 / 16.0,
	}
}

func testStore(t *testing.T, n int) *particle.Store {
	t.Helper()
	store, err := particle.NewStore(n, particle.DefaultBlockSize)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	for bid := 0; bid < store.NumBlocks(); bid++ {
		blk := store.Block(bid)
		for ip := range blk.Dead {
			blk.Dead[ip] = false
			blk.Energy[ip] = 1.0
			blk.Weight[ip] = 1.0
			blk.OmegaX[ip] = 1.0
			blk.CellX[ip] = 1
			blk.CellY[ip] = 1
		}
	}
	return store
}

func TestRunTimeStepZeroParticlesLogsAndReturns(t *testing.T) {
	env := testEnv(tally.AtomicPerWrite)
	store := testStore(t, particle.DefaultBlockSize*2)
	result, err := RunTimeStep(env, store, 0, 1e-4, true, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Facets != 0 || result.Collisions != 0 {
		t.Fatalf("expected a zero result when nlocalParticles is 0, got %+v", result)
	}
}

func TestRunTimeStepVacuumReachesCensusAcrossWorkers(t *testing.T) {
	env := testEnv(tally.AtomicPerWrite)
	store := testStore(t, particle.DefaultBlockSize*4)

	result, err := RunTimeStep(env, store, store.NumParticles(), 1e-10, true, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Collisions != 0 {
		t.Fatalf("vacuum should produce no collisions, got %d", result.Collisions)
	}
	for bid := 0; bid < store.NumBlocks(); bid++ {
		blk := store.Block(bid)
		for ip := range blk.Dead {
			if blk.Dead[ip] {
				t.Fatalf("block %d lane %d unexpectedly died in vacuum", bid, ip)
			}
			if blk.DtToCensus[ip] != 0 {
				t.Fatalf("block %d lane %d did not reach census: dt_to_census=%v", bid, ip, blk.DtToCensus[ip])
			}
		}
	}
}

func TestRunTimeStepDeferredFlushMatchesAtomicGrandSum(t *testing.T) {
	envAtomic := testEnv(tally.AtomicPerWrite)
	envDeferred := testEnv(tally.DeferredFlush)
	// Use an absorbing cross section so some energy is actually deposited.
	hot := &xsection.Table{Keys: []float64{1e-3, 1e1}, Values: []float64{5, 5}}
	envAtomic.CSAbsorb = hot
	envDeferred.CSAbsorb = hot
	for i := range envAtomic.Density {
		envAtomic.Density[i] = 1.0
		envDeferred.Density[i] = 1.0
	}

	storeAtomic := testStore(t, particle.DefaultBlockSize*4)
	storeDeferred := testStore(t, particle.DefaultBlockSize*4)

	if _, err := RunTimeStep(envAtomic, storeAtomic, storeAtomic.NumParticles(), 1e-6, true, discardLogger()); err != nil {
		t.Fatalf("unexpected error (atomic): %v", err)
	}
	if _, err := RunTimeStep(envDeferred, storeDeferred, storeDeferred.NumParticles(), 1e-6, true, discardLogger()); err != nil {
		t.Fatalf("unexpected error (deferred): %v", err)
	}

	if math.Abs(envAtomic.Tally.GrandSum()-envDeferred.Tally.GrandSum()) > 1e-3 {
		t.Fatalf("atomic and deferred modes diverged: %v vs %v",
			envAtomic.Tally.GrandSum(), envDeferred.Tally.GrandSum())
	}
}

func TestRunTimeStepPropagatesDegenerateDirectionError(t *testing.T) {
	env := testEnv(tally.AtomicPerWrite)
	store := testStore(t, particle.DefaultBlockSize)
	store.Block(0).OmegaX[0], store.Block(0).OmegaY[0] = 0.0, 0.0

	_, err := RunTimeStep(env, store, store.NumParticles(), 1e-6, true, discardLogger())
	if !errors.Is(err, neutralerr.ErrDegenerateDirection) {
		t.Fatalf("expected ErrDegenerateDirection, got %v", err)
	}
}
