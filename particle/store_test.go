package particle

import (
	"errors"
	"testing"

	"github.com/Codrin-Popa/neutral-go/neutralerr"
)

func TestNewStoreRejectsNonMultipleCount(t *testing.T) {
	_, err := NewStore(10, 8)
	if !errors.Is(err, neutralerr.ErrBadParticleCount) {
		t.Fatalf("expected ErrBadParticleCount, got %v", err)
	}
}

func TestNewStoreLaysOutBlocks(t *testing.T) {
	store, err := NewStore(16, 8)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if store.NumBlocks() != 2 {
		t.Fatalf("expected 2 blocks, got %d", store.NumBlocks())
	}
	if store.NumParticles() != 16 {
		t.Fatalf("expected 16 particles, got %d", store.NumParticles())
	}
	for b := 0; b < store.NumBlocks(); b++ {
		blk := store.Block(b)
		for i, dead := range blk.Dead {
			if !dead {
				t.Fatalf("block %d lane %d expected dead=true by default", b, i)
			}
		}
	}
}

func TestParticleKeyIsUniquePerLane(t *testing.T) {
	seen := make(map[uint64]bool)
	blockSize := 8
	for bid := 0; bid < 4; bid++ {
		for ip := 0; ip < blockSize; ip++ {
			key := ParticleKey(bid, ip, blockSize)
			if seen[key] {
				t.Fatalf("duplicate particle key %d for block %d lane %d", key, bid, ip)
			}
			seen[key] = true
		}
	}
}

func TestBlockReturnsDistinctUnaliasedStorage(t *testing.T) {
	store, err := NewStore(16, 8)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	store.Block(0).X[0] = 42
	if store.Block(1).X[0] == 42 {
		t.Fatalf("expected block 1 to be unaffected by a write to block 0")
	}
}
