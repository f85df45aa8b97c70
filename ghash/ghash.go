// Package ghash implements the GHASH universal hash over GF(2^128) used as
// the authentication primitive of GCM. The field polynomial is
// x^128 + x^7 + x^2 + x + 1, and field elements are 16-byte bitstrings in
// the GCM bit order: the most significant bit of byte 0 is the coefficient
// of x^0 and the least significant bit of byte 15 that of x^127.
package ghash

// reduction is the bit-reflected representation of x^7 + x^2 + x + 1, the
// low-order terms of the field polynomial, used to fold the carry out of the
// x^127 bit during the right-shift multiply.
const reduction = 0xe1

// Size is the width of a GHASH field element and running accumulator, in bytes.
const Size = 16

// GHASH holds the pair (H, Y) described by the GCM construction: H is the
// hash subkey (constant for the lifetime of one GCM operation) and Y is the
// running accumulator, updated one 16-byte block at a time.
type GHASH struct {
	h [Size]byte
	y [Size]byte
}

// New returns a GHASH context seeded with hash subkey h (E_K(0^128)).
// The accumulator Y starts at the all-zero block.
func New(h [Size]byte) *GHASH {
	return &GHASH{h: h}
}

// Reset zeroes the running accumulator without changing H.
func (g *GHASH) Reset() {
	g.y = [Size]byte{}
}

// Sum returns the current accumulator Y.
func (g *GHASH) Sum() [Size]byte {
	return g.y
}

// UpdateBlock absorbs one full 16-byte block: Y <- (Y xor block) * H.
func (g *GHASH) UpdateBlock(block [Size]byte) {
	var xored [Size]byte
	for i := range xored {
		xored[i] = g.y[i] ^ block[i]
	}
	g.y = multiply(xored, g.h)
}

// Update absorbs data of arbitrary length, processing full blocks directly
// and zero-padding a trailing partial block to the right before absorbing it.
func (g *GHASH) Update(data []byte) {
	for len(data) >= Size {
		var block [Size]byte
		copy(block[:], data[:Size])
		g.UpdateBlock(block)
		data = data[Size:]
	}
	if len(data) > 0 {
		var block [Size]byte
		copy(block[:], data)
		g.UpdateBlock(block)
	}
}

// multiply computes x*y in GF(2^128) using the right-shift algorithm: Z
// starts at zero and V at y; for each bit of x from MSB to LSB, Z is XORed
// with V whenever the bit is set, and V is shifted right by one field
// position (folding the polynomial reduction term in when a 1 bit is
// shifted out).
func multiply(x, y [Size]byte) [Size]byte {
	var z, v [Size]byte
	v = y

	for i := 0; i < 128; i++ {
		byteIdx := i >> 3
		bitIdx := 7 - uint(i&7)
		if (x[byteIdx]>>bitIdx)&1 == 1 {
			for j := range z {
				z[j] ^= v[j]
			}
		}

		lsb := v[Size-1] & 1
		shiftRight(&v)
		if lsb == 1 {
			v[0] ^= reduction
		}
	}
	return z
}

// shiftRight shifts a 128-bit big-endian bitstring right by one bit.
func shiftRight(v *[Size]byte) {
	var carry byte
	for i := 0; i < Size; i++ {
		next := v[i] & 1
		v[i] = (v[i] >> 1) | (carry << 7)
		carry = next
	}
}
