// Package particle implements the SoA (struct-of-arrays) particle store: a
// slice of fixed-width blocks, each field held as its own separately
// allocated B-wide array so the inner event loop can be vectorised. Particles are
// never individually addressable objects — callers always operate through
// a Block view for one block at a time.
package particle

import (
	"fmt"

	"github.com/Codrin-Popa/neutral-go/neutralerr"
)

// DefaultBlockSize is the default SoA block width B. 8 keeps each field's
// block at one or two cache lines for common field widths while staying a
// friendly vectorisation width. NewStore accepts any positive width (16
// included); Store.BlockSize reports whichever was configured at
// construction.
const DefaultBlockSize = 8

// Block is one fixed-width group of particles: every field is a B-wide
// array held in lock-step across lanes. The last block of a store may be
// padded with Dead lanes if the caller requests fewer than a multiple of B
// (NewStore rejects that; callers that need padding add it explicitly).
type Block struct {
	X, Y             []float64
	OmegaX, OmegaY   []float64
	Energy           []float64
	Weight           []float64
	DtToCensus       []float64
	MfpToCollision   []float64
	CellX, CellY     []int32
	Dead             []bool
}

// Store owns the particle blocks. The blocks sit in one slice, but each
// field of each block is its own allocation; the fields are not laid out
// in a single contiguous buffer and no SIMD alignment is applied.
type Store struct {
	blockSize int
	blocks    []Block
}

// NewStore allocates a store for n particles, split into blocks of width
// blockSize. n must be a multiple of blockSize; violating this is the
// fatal BadParticleCount condition from the error handling design.
func NewStore(n, blockSize int) (*Store, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("block size must be positive, got %d", blockSize)
	}
	if n%blockSize != 0 {
		return nil, fmt.Errorf("%w: %d particles is not a multiple of block size %d",
			neutralerr.ErrBadParticleCount, n, blockSize)
	}

	nb := n / blockSize
	blocks := make([]Block, nb)
	for i := range blocks {
		blocks[i] = newBlock(blockSize)
	}
	return &Store{blockSize: blockSize, blocks: blocks}, nil
}

func newBlock(b int) Block {
	blk := Block{
		X:              make([]float64, b),
		Y:              make([]float64, b),
		OmegaX:         make([]float64, b),
		OmegaY:         make([]float64, b),
		Energy:         make([]float64, b),
		Weight:         make([]float64, b),
		DtToCensus:     make([]float64, b),
		MfpToCollision: make([]float64, b),
		CellX:          make([]int32, b),
		CellY:          make([]int32, b),
		Dead:           make([]bool, b),
	}
	for i := range blk.Dead {
		blk.Dead[i] = true
	}
	return blk
}

// BlockSize returns the configured lane width B.
func (s *Store) BlockSize() int { return s.blockSize }

// NumBlocks returns the number of blocks in the store.
func (s *Store) NumBlocks() int { return len(s.blocks) }

// NumParticles returns the total particle capacity (including any dead
// padding lanes in the last block).
func (s *Store) NumParticles() int { return len(s.blocks) * s.blockSize }

// Block returns a pointer to the i-th block. The returned pointer borrows
// from the store for the lifetime of the caller's event loop; aliasing
// across blocks never occurs because each block owns its own arrays.
func (s *Store) Block(i int) *Block {
	return &s.blocks[i]
}

// ParticleKey returns the global particle id for lane ip of block bid,
// used as the RNG particle key.
func ParticleKey(bid, ip, blockSize int) uint64 {
	return uint64(bid*blockSize + ip)
}
