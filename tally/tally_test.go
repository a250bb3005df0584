package tally

import (
	"math"
	"sync"
	"testing"
)

func TestGrandSumZeroGrid(t *testing.T) {
	g := NewGrid(4, 4, AtomicPerWrite)
	if g.GrandSum() != 0 {
		t.Fatalf("expected zero grand sum, got %v", g.GrandSum())
	}
}

func TestAddAccumulates(t *testing.T) {
	g := NewGrid(2, 2, DeferredFlush)
	g.Add(0, 1.5)
	g.Add(0, 2.5)
	if math.Abs(g.Data()[0]-4.0) > 1e-12 {
		t.Fatalf("expected 4.0, got %v", g.Data()[0])
	}
}

func TestAtomicAddConcurrent(t *testing.T) {
	g := NewGrid(1, 1, AtomicPerWrite)
	var wg sync.WaitGroup
	const n = 1000
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Add(0, 1.0)
		}()
	}
	wg.Wait()
	if g.Data()[0] != float64(n) {
		t.Fatalf("expected %d, got %v", n, g.Data()[0])
	}
}

func TestMergeFromCombinesWorkerGrids(t *testing.T) {
	shared := NewGrid(2, 2, AtomicPerWrite)
	w1 := NewGrid(2, 2, AtomicPerWrite)
	w2 := NewGrid(2, 2, AtomicPerWrite)
	w1.Add(0, 1.0)
	w1.Add(3, 2.0)
	w2.Add(0, 0.5)
	w2.Add(1, 4.0)

	shared.MergeFrom(w1)
	shared.MergeFrom(w2)

	want := []float64{1.5, 4.0, 0.0, 2.0}
	for i, w := range want {
		if math.Abs(shared.Data()[i]-w) > 1e-12 {
			t.Fatalf("index %d: expected %v, got %v", i, w, shared.Data()[i])
		}
	}
}

func TestGrandSumCommutative(t *testing.T) {
	vals := []float64{1.1, 2.2, 3.3, -0.5, 4.4}
	g1 := NewGrid(5, 1, DeferredFlush)
	for i, v := range vals {
		g1.Add(i, v)
	}
	g2 := NewGrid(5, 1, DeferredFlush)
	for i := len(vals) - 1; i >= 0; i-- {
		g2.Add(i, vals[i])
	}
	if math.Abs(g1.GrandSum()-g2.GrandSum()) > 1e-10 {
		t.Fatalf("grand sum not invariant under ordering: %v vs %v", g1.GrandSum(), g2.GrandSum())
	}
}
