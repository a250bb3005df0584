// Package rng provides the counter-based random number source used by the
// transport engine. Every draw is a pure function of (particle key, master
// key, counter): there is no mutable generator state, so results do not
// depend on thread scheduling or block partitioning.
package rng

const (
	skeinParity64 = 0x1BD11BDAA9FC1A22

	// FACTOR/HALFFACTOR turn a uniform 64-bit integer into a double in
	// [0,1) without the low-order bit bias of a naive division.
	factor     = 1.0 / 9223372036854775808.0 // 1 / 2^63
	halfFactor = 0.5 * factor
)

var rotation = [8][2]uint64{
	{14, 16},
	{52, 57},
	{23, 40},
	{5, 37},
	{25, 33},
	{46, 12},
	{58, 22},
	{32, 32},
}

const rounds = 20

func rotl64(x uint64, n uint64) uint64 {
	return (x << n) | (x >> (64 - n))
}

// Counter is the 4-word counter input; only v[0] varies in this engine
// (the per-event counter), the rest stay zero per spec.
type Counter [4]uint64

// Key is the 4-word key input; v[0] is the particle key (global particle
// id), v[1] is the master key (incremented once per time step by the
// caller), v[2] and v[3] are unused and fixed at zero.
type Key [4]uint64

// threefry4x64 is a bijective mixing function over two 4x64-bit blocks,
// following the Random123 Threefry-4x64 construction. It has no process
// state: identical (ctr, key) always produces identical output, regardless
// of invocation order or parallelism.
func threefry4x64(ctr Counter, key Key) [4]uint64 {
	var ks [5]uint64
	ks[4] = skeinParity64
	for i := 0; i < 4; i++ {
		ks[i] = key[i]
		ks[4] ^= key[i]
	}

	x := [4]uint64{
		ctr[0] + ks[0],
		ctr[1] + ks[1],
		ctr[2] + ks[2],
		ctr[3] + ks[3],
	}

	for r := 0; r < rounds; r++ {
		rot := rotation[r%8]

		x[0] += x[1]
		x[1] = rotl64(x[1], rot[0])
		x[1] ^= x[0]

		x[2] += x[3]
		x[3] = rotl64(x[3], rot[1])
		x[3] ^= x[2]

		x[1], x[3] = x[3], x[1]

		if (r+1)%4 == 0 {
			i := uint64((r + 1) / 4)
			x[0] += ks[i%5]
			x[1] += ks[(i+1)%5]
			x[2] += ks[(i+2)%5]
			x[3] += ks[(i+3)%5] + i
		}
	}

	return x
}

// Draw4 returns four independent uniform doubles in [0,1) for the event at
// (particleKey, masterKey, counter). Distinct particle keys produce
// non-overlapping streams in practice; the same inputs always produce the
// same outputs, which is what lets the block event loop be reproducible
// independent of how work is scheduled across workers.
func Draw4(particleKey, masterKey, counter uint64) (r0, r1, r2, r3 float64) {
	ctr := Counter{counter, 0, 0, 0}
	key := Key{particleKey, masterKey, 0, 0}
	out := threefry4x64(ctr, key)

	r0 = float64(out[0]>>1)*factor + halfFactor
	r1 = float64(out[1]>>1)*factor + halfFactor
	r2 = float64(out[2]>>1)*factor + halfFactor
	r3 = float64(out[3]>>1)*factor + halfFactor
	return
}
