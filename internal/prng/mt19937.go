// Package prng implements the 32-bit Mersenne Twister with the seeding and
// sampling procedures of CPython's random module.
//
// SeedString followed by RandBelow yields the same values as
//
//	random.seed(finalSeed)
//	random.choice(pool)
package prng

import (
	"crypto/sha512"
	"math/bits"
)

const (
	n         = 624
	m         = 397
	matrixA   = 0x9908b0df
	upperMask = 0x80000000
	lowerMask = 0x7fffffff
)

// MT19937 is a Mersenne Twister generator. The zero value must be seeded
// before use.
type MT19937 struct {
	mt  [n]uint32
	mti int
}

// NewFromString returns a generator seeded with SeedString(s).
func NewFromString(s string) *MT19937 {
	r := &MT19937{}
	r.SeedString(s)
	return r
}

// NewFromKey returns a generator seeded with SeedKey(key).
func NewFromKey(key []uint32) *MT19937 {
	r := &MT19937{}
	r.SeedKey(key)
	return r
}

func (r *MT19937) initGenrand(s uint32) {
	r.mt[0] = s
	for i := 1; i < n; i++ {
		r.mt[i] = 1812433253*(r.mt[i-1]^(r.mt[i-1]>>30)) + uint32(i)
	}
	r.mti = n
}

// SeedKey initializes the state from a key array (init_by_array).
// An empty key behaves like a single zero word.
func (r *MT19937) SeedKey(key []uint32) {
	if len(key) == 0 {
		key = []uint32{0}
	}

	r.initGenrand(19650218)
	i, j := 1, 0
	k := n
	if len(key) > k {
		k = len(key)
	}
	for ; k > 0; k-- {
		r.mt[i] = (r.mt[i] ^ ((r.mt[i-1] ^ (r.mt[i-1] >> 30)) * 1664525)) + key[j] + uint32(j)
		i++
		j++
		if i >= n {
			r.mt[0] = r.mt[n-1]
			i = 1
		}
		if j >= len(key) {
			j = 0
		}
	}
	for k = n - 1; k > 0; k-- {
		r.mt[i] = (r.mt[i] ^ ((r.mt[i-1] ^ (r.mt[i-1] >> 30)) * 1566083941)) - uint32(i)
		i++
		if i >= n {
			r.mt[0] = r.mt[n-1]
			i = 1
		}
	}
	r.mt[0] = 0x80000000
}

// SeedString seeds the generator from s. The UTF-8 bytes of s followed by
// their SHA-512 digest are read as one big-endian unsigned integer, which is
// split into 32-bit words, least significant first, to form the key.
func (r *MT19937) SeedString(s string) {
	digest := sha512.Sum512([]byte(s))
	buf := make([]byte, 0, len(s)+len(digest))
	buf = append(buf, s...)
	buf = append(buf, digest[:]...)
	r.SeedKey(keyFromBigEndian(buf))
}

func keyFromBigEndian(buf []byte) []uint32 {
	for len(buf) > 0 && buf[0] == 0 {
		buf = buf[1:]
	}
	key := make([]uint32, (len(buf)+3)/4)
	for p := 0; p < len(buf); p++ {
		key[p/4] |= uint32(buf[len(buf)-1-p]) << (8 * (p % 4))
	}
	return key
}

// Uint32 returns the next tempered 32-bit output.
func (r *MT19937) Uint32() uint32 {
	if r.mti >= n {
		r.generate()
	}

	y := r.mt[r.mti]
	r.mti++

	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18
	return y
}

func (r *MT19937) generate() {
	mag01 := [2]uint32{0, matrixA}

	var kk int
	for ; kk < n-m; kk++ {
		y := (r.mt[kk] & upperMask) | (r.mt[kk+1] & lowerMask)
		r.mt[kk] = r.mt[kk+m] ^ (y >> 1) ^ mag01[y&1]
	}
	for ; kk < n-1; kk++ {
		y := (r.mt[kk] & upperMask) | (r.mt[kk+1] & lowerMask)
		r.mt[kk] = r.mt[kk+(m-n)] ^ (y >> 1) ^ mag01[y&1]
	}
	y := (r.mt[n-1] & upperMask) | (r.mt[0] & lowerMask)
	r.mt[n-1] = r.mt[m-1] ^ (y >> 1) ^ mag01[y&1]

	r.mti = 0
}

// GetRandBits returns an integer with k random bits, 0 <= k <= 64.
// Words are consumed least significant first and the final partial word
// keeps its high bits.
func (r *MT19937) GetRandBits(k int) uint64 {
	if k < 0 || k > 64 {
		panic("prng: GetRandBits argument out of range")
	}
	if k == 0 {
		return 0
	}
	if k <= 32 {
		return uint64(r.Uint32() >> (32 - k))
	}

	var out uint64
	for shift := 0; k > 0; shift, k = shift+32, k-32 {
		w := r.Uint32()
		if k < 32 {
			w >>= 32 - k
		}
		out |= uint64(w) << shift
	}
	return out
}

// RandBelow returns a uniform integer in [0, bound) by rejection sampling
// over GetRandBits(bitlen(bound)). It panics if bound <= 0.
func (r *MT19937) RandBelow(bound int) int {
	if bound <= 0 {
		panic("prng: invalid argument to RandBelow")
	}

	k := bits.Len64(uint64(bound))
	v := r.GetRandBits(k)
	for v >= uint64(bound) {
		v = r.GetRandBits(k)
	}
	return int(v)
}

// Float64 returns a float in [0.0, 1.0) with 53 bits of precision.
func (r *MT19937) Float64() float64 {
	a := r.Uint32() >> 5
	b := r.Uint32() >> 6
	return (float64(a)*67108864.0 + float64(b)) * (1.0 / 9007199254740992.0)
}
