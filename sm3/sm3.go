// Package sm3 implements the SM3 cryptographic hash algorithm
// (GB/T 32905-2016), a Merkle-Damgard construction with 512-bit blocks and
// a 256-bit chaining state.
//
// Beyond the usual streaming hash.Hash surface, Digest exposes two
// test-affordances the standard library's hash types do not: Digest, a
// non-destructive finalisation that snapshots state, pads, compresses and
// restores without mutating the live instance; and ImportState, which
// installs an arbitrary chaining state and bit counter. ImportState exists
// solely to let callers outside this package (see the length-extension
// helper) continue a Merkle-Damgard hash from a public digest without
// knowing the original prefix.
package sm3

import (
	"encoding/binary"
	"hash"
)

const (
	// Size is the size of an SM3 checksum in bytes.
	Size = 32
	// BlockSize is the block size of SM3 in bytes.
	BlockSize = 64
)

// initialHash is the fixed initial chaining value.
var initialHash = [8]uint32{
	0x7380166f, 0x4914b2b9, 0x172442d7, 0xda8a0600,
	0xa96f30bc, 0x163138aa, 0xe38dee4d, 0xb0fb0e4e,
}

const (
	tj0 = uint32(0x79cc4519)
	tj1 = uint32(0x7a879d8a)
)

// Digest is the partial evaluation of an SM3 checksum.
type Digest struct {
	h      [8]uint32
	data   []byte // pending bytes, always < BlockSize
	length uint64 // message length processed so far, in bits
}

// New returns a new Digest computing the SM3 checksum.
func New() *Digest {
	d := &Digest{}
	d.Reset()
	return d
}

// Reset returns the digest to the initial SM3 state.
func (d *Digest) Reset() {
	d.h = initialHash
	d.length = 0
	d.data = d.data[:0]
}

// Size returns the number of bytes Sum will return.
func (d *Digest) Size() int { return Size }

// BlockSize returns the hash's underlying block size.
func (d *Digest) BlockSize() int { return BlockSize }

// Write adds more data to the running hash. It never returns an error.
func (d *Digest) Write(p []byte) (int, error) {
	n := len(p)
	d.length += uint64(n) * 8
	data := append(d.data, p...)

	full := len(data) / BlockSize * BlockSize
	for off := 0; off < full; off += BlockSize {
		d.h = compressBlock(d.h, data[off:off+BlockSize])
	}
	d.data = append(d.data[:0], data[full:]...)
	return n, nil
}

// Sum appends the current SM3 checksum to b and returns the resulting
// slice, without modifying the underlying hash state (standard hash.Hash
// semantics: repeated Sum calls with no intervening Write return the same
// digest, and Write may still be called afterwards to extend the hash).
func (d *Digest) Sum(b []byte) []byte {
	digest := d.Digest()
	return append(b, digest[:]...)
}

// Digest is the spec's explicit non-destructive finalisation: it snapshots
// the chaining state, pads and compresses the tail in a scratch copy, reads
// the eight words back out, and leaves the live instance untouched. Calling
// it repeatedly without an intervening Write always returns the same bytes,
// and further Write calls continue the hash exactly as if Digest had never
// been called.
func (d *Digest) Digest() [Size]byte {
	h := d.h
	padded := pad(d.data, d.length)
	for off := 0; off < len(padded); off += BlockSize {
		h = compressBlock(h, padded[off:off+BlockSize])
	}

	var out [Size]byte
	for i := 0; i < 8; i++ {
		binary.BigEndian.PutUint32(out[i*4:], h[i])
	}
	return out
}

// ImportState installs an arbitrary 256-bit chaining state and 64-bit bit
// counter, discarding any buffered data. This is not part of a general
// hashing API: it exists to let a caller continue a Merkle-Damgard hash
// from a digest it did not itself compute, which is exactly what a
// length-extension forgery requires.
func (d *Digest) ImportState(h [8]uint32, bitLength uint64) {
	d.h = h
	d.length = bitLength
	d.data = d.data[:0]
}

// ImportDigest is ImportState for callers holding the chaining state as a
// raw 32-byte big-endian digest rather than eight parsed words, which is how
// a length-extension forgery actually receives it: as the public digest
// bytes of SM3(secret || message).
func (d *Digest) ImportDigest(digest []byte, bitLength uint64) error {
	if len(digest) != Size {
		return InvalidHashLengthError(len(digest))
	}
	var h [8]uint32
	for i := 0; i < 8; i++ {
		h[i] = binary.BigEndian.Uint32(digest[i*4 : i*4+4])
	}
	d.ImportState(h, bitLength)
	return nil
}

// pad appends the 0x80 terminator, zero bytes until the residual length
// modulo BlockSize is 56, and the 8-byte big-endian bit count.
func pad(data []byte, bitLength uint64) []byte {
	padded := make([]byte, 0, len(data)+BlockSize+8)
	padded = append(padded, data...)
	padded = append(padded, 0x80)
	for len(padded)%BlockSize != 56 {
		padded = append(padded, 0x00)
	}
	var lenBytes [8]byte
	binary.BigEndian.PutUint64(lenBytes[:], bitLength)
	return append(padded, lenBytes[:]...)
}

// compressBlock runs one Merkle-Damgard compression step over a single
// 64-byte block and returns the updated chaining value.
func compressBlock(h [8]uint32, block []byte) [8]uint32 {
	var w [68]uint32
	var w1 [64]uint32

	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(block[4*i : 4*i+4])
	}
	for i := 16; i < 68; i++ {
		w[i] = p1(w[i-16]^w[i-9]^leftRotate(w[i-3], 15)) ^ leftRotate(w[i-13], 7) ^ w[i-6]
	}
	for j := 0; j < 64; j++ {
		w1[j] = w[j] ^ w[j+4]
	}

	a, b, c, dd, e, f, g, hh := h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7]

	for i := 0; i < 16; i++ {
		ss1 := leftRotate(leftRotate(a, 12)+e+leftRotate(tj0, uint32(i)), 7)
		ss2 := ss1 ^ leftRotate(a, 12)
		tt1 := ff0(a, b, c) + dd + ss2 + w1[i]
		tt2 := gg0(e, f, g) + hh + ss1 + w[i]
		dd = c
		c = leftRotate(b, 9)
		b = a
		a = tt1
		hh = g
		g = leftRotate(f, 19)
		f = e
		e = p0(tt2)
	}
	for i := 16; i < 64; i++ {
		ss1 := leftRotate(leftRotate(a, 12)+e+leftRotate(tj1, uint32(i)), 7)
		ss2 := ss1 ^ leftRotate(a, 12)
		tt1 := ff1(a, b, c) + dd + ss2 + w1[i]
		tt2 := gg1(e, f, g) + hh + ss1 + w[i]
		dd = c
		c = leftRotate(b, 9)
		b = a
		a = tt1
		hh = g
		g = leftRotate(f, 19)
		f = e
		e = p0(tt2)
	}

	return [8]uint32{
		h[0] ^ a, h[1] ^ b, h[2] ^ c, h[3] ^ dd,
		h[4] ^ e, h[5] ^ f, h[6] ^ g, h[7] ^ hh,
	}
}

func leftRotate(x uint32, i uint32) uint32 {
	return x<<(i%32) | x>>(32-i%32)
}

func ff0(x, y, z uint32) uint32 { return x ^ y ^ z }
func ff1(x, y, z uint32) uint32 { return (x & y) | (x & z) | (y & z) }
func gg0(x, y, z uint32) uint32 { return x ^ y ^ z }
func gg1(x, y, z uint32) uint32 { return (x & y) | (^x & z) }

func p0(x uint32) uint32 { return x ^ leftRotate(x, 9) ^ leftRotate(x, 17) }
func p1(x uint32) uint32 { return x ^ leftRotate(x, 15) ^ leftRotate(x, 23) }

// Ensure Digest implements the standard hash.Hash interface.
var _ hash.Hash = (*Digest)(nil)
