// Package sm4 implements the SM4 block cipher (GB/T 32907-2016).
//
// Besides the usual single-block encrypt path, the package exposes
// an 8-wide ECB kernel that processes eight independent blocks in lockstep.
// The single-block path is defined in terms of the wide kernel: it replicates
// its input across all eight lanes and keeps only the first lane of the
// output, so both paths share one round-function definition.
package sm4

import (
	stdCipher "crypto/cipher"
	"encoding/binary"
	"sync"
)

const (
	// BlockSize is the SM4 block size in bytes.
	BlockSize = 16
	// KeySize is the SM4 key size in bytes.
	KeySize = 16
	// Lanes is the width of the parallel ECB kernel.
	Lanes = 8
	// rounds is the number of Feistel rounds in the SM4 round function.
	rounds = 32
)

// s-box (according to GB/T 32907-2016)
var sBox = [256]byte{
	0xd6, 0x90, 0xe9, 0xfe, 0xcc, 0xe1, 0x3d, 0xb7, 0x16, 0xb6, 0x14, 0xc2, 0x28, 0xfb, 0x2c, 0x05,
	0x2b, 0x67, 0x9a, 0x76, 0x2a, 0xbe, 0x04, 0xc3, 0xaa, 0x44, 0x13, 0x26, 0x49, 0x86, 0x06, 0x99,
	0x9c, 0x42, 0x50, 0xf4, 0x91, 0xef, 0x98, 0x7a, 0x33, 0x54, 0x0b, 0x43, 0xed, 0xcf, 0xac, 0x62,
	0xe4, 0xb3, 0x1c, 0xa9, 0xc9, 0x08, 0xe8, 0x95, 0x80, 0xdf, 0x94, 0xfa, 0x75, 0x8f, 0x3f, 0xa6,
	0x47, 0x07, 0xa7, 0xfc, 0xf3, 0x73, 0x17, 0xba, 0x83, 0x59, 0x3c, 0x19, 0xe6, 0x85, 0x4f, 0xa8,
	0x68, 0x6b, 0x81, 0xb2, 0x71, 0x64, 0xda, 0x8b, 0xf8, 0xeb, 0x0f, 0x4b, 0x70, 0x56, 0x9d, 0x35,
	0x1e, 0x24, 0x0e, 0x5e, 0x63, 0x58, 0xd1, 0xa2, 0x25, 0x22, 0x7c, 0x3b, 0x01, 0x21, 0x78, 0x87,
	0xd4, 0x00, 0x46, 0x57, 0x9f, 0xd3, 0x27, 0x52, 0x4c, 0x36, 0x02, 0xe7, 0xa0, 0xc4, 0xc8, 0x9e,
	0xea, 0xbf, 0x8a, 0xd2, 0x40, 0xc7, 0x38, 0xb5, 0xa3, 0xf7, 0xf2, 0xce, 0xf9, 0x61, 0x15, 0xa1,
	0xe0, 0xae, 0x5d, 0xa4, 0x9b, 0x34, 0x1a, 0x55, 0xad, 0x93, 0x32, 0x30, 0xf5, 0x8c, 0xb1, 0xe3,
	0x1d, 0xf6, 0xe2, 0x2e, 0x82, 0x66, 0xca, 0x60, 0xc0, 0x29, 0x23, 0xab, 0x0d, 0x53, 0x4e, 0x6f,
	0xd5, 0xdb, 0x37, 0x45, 0xde, 0xfd, 0x8e, 0x2f, 0x03, 0xff, 0x6a, 0x72, 0x6d, 0x6c, 0x5b, 0x51,
	0x8d, 0x1b, 0xaf, 0x92, 0xbb, 0xdd, 0xbc, 0x7f, 0x11, 0xd9, 0x5c, 0x41, 0x1f, 0x10, 0x5a, 0xd8,
	0x0a, 0xc1, 0x31, 0x88, 0xa5, 0xcd, 0x7b, 0xbd, 0x2d, 0x74, 0xd0, 0x12, 0xb8, 0xe5, 0xb4, 0xb0,
	0x89, 0x69, 0x97, 0x4a, 0x0c, 0x96, 0x77, 0x7e, 0x65, 0xb9, 0xf1, 0x09, 0xc5, 0x6e, 0xc6, 0x84,
	0x18, 0xf0, 0x7d, 0xec, 0x3a, 0xdc, 0x4d, 0x20, 0x79, 0xee, 0x5f, 0x3e, 0xd7, 0xcb, 0x39, 0x48,
}

// fk holds the family key constants used to whiten the master key.
var fk = [4]uint32{0xa3b1bac6, 0x56aa3350, 0x677d9197, 0xb27022dc}

// ck holds the fixed round constants used during key expansion.
var ck = [32]uint32{
	0x00070e15, 0x1c232a31, 0x383f464d, 0x545b6269,
	0x70777e85, 0x8c939aa1, 0xa8afb6bd, 0xc4cbd2d9,
	0xe0e7eef5, 0xfc030a11, 0x181f262d, 0x343b4249,
	0x50575e65, 0x6c737a81, 0x888f969d, 0xa4abb2b9,
	0xc0c7ced5, 0xdce3eaf1, 0xf8ff060d, 0x141b2229,
	0x30373e45, 0x4c535a61, 0x686f767d, 0x848b9299,
	0xa0a7aeb5, 0xbcc3cad1, 0xd8dfe6ed, 0xf4fb0209,
	0x10171e25, 0x2c333a41, 0x484f565d, 0x646b7279,
}

// T0..T3 are the precomputed tables realising T(x) = L(S-box(x)), one per
// byte position, so a round only needs four table lookups and three XORs
// instead of a byte substitution followed by a rotate-heavy linear layer.
// They are process-wide, read-only, and built once from the S-box.
var (
	tTables     [4][256]uint32
	tTablesOnce sync.Once
)

func rotl32(x uint32, n uint) uint32 {
	return (x << n) | (x >> (32 - n))
}

// lTransform is the linear transform L used in the encryption round function.
func lTransform(b uint32) uint32 {
	return b ^ rotl32(b, 2) ^ rotl32(b, 10) ^ rotl32(b, 18) ^ rotl32(b, 24)
}

// lPrimeTransform is the linear transform L' used in key expansion.
func lPrimeTransform(b uint32) uint32 {
	return b ^ rotl32(b, 13) ^ rotl32(b, 23)
}

func tauTransform(a uint32) uint32 {
	return uint32(sBox[a>>24&0xff])<<24 |
		uint32(sBox[a>>16&0xff])<<16 |
		uint32(sBox[a>>8&0xff])<<8 |
		uint32(sBox[a&0xff])
}

func initTTables() {
	tTablesOnce.Do(func() {
		for b := 0; b < 256; b++ {
			t := lTransform(uint32(sBox[b]) << 24)
			tTables[0][b] = t
			tTables[1][b] = rotl32(t, 24)
			tTables[2][b] = rotl32(t, 16)
			tTables[3][b] = rotl32(t, 8)
		}
	})
}

// tTransform applies the combined S-box + linear-layer round transform via
// the precomputed tables: T0[b3] ^ T1[b2] ^ T2[b1] ^ T3[b0].
func tTransform(x uint32) uint32 {
	return tTables[0][x>>24&0xff] ^ tTables[1][x>>16&0xff] ^ tTables[2][x>>8&0xff] ^ tTables[3][x&0xff]
}

// RoundKeys is the 32-word round-key schedule derived from a 16-byte key.
// It is immutable once returned by ExpandKey and safe for concurrent use by
// multiple encryptions.
type RoundKeys [rounds]uint32

// ExpandKey derives the 32-word round-key schedule for key, a 16-byte SM4 key.
func ExpandKey(key []byte) (RoundKeys, error) {
	var rk RoundKeys
	if len(key) != KeySize {
		return rk, KeySizeError(len(key))
	}
	initTTables()

	var k [4]uint32
	k[0] = binary.BigEndian.Uint32(key[0:4]) ^ fk[0]
	k[1] = binary.BigEndian.Uint32(key[4:8]) ^ fk[1]
	k[2] = binary.BigEndian.Uint32(key[8:12]) ^ fk[2]
	k[3] = binary.BigEndian.Uint32(key[12:16]) ^ fk[3]

	for i := 0; i < rounds; i++ {
		t := lPrimeTransform(tauTransform(k[1] ^ k[2] ^ k[3] ^ ck[i]))
		next := k[0] ^ t
		rk[i] = next
		k[0], k[1], k[2], k[3] = k[1], k[2], k[3], next
	}
	return rk, nil
}

// EncryptBlocks8 runs the 8-wide ECB kernel over eight independent 16-byte
// blocks in lockstep and returns eight ciphertext blocks. This is the
// performance-critical path shared by both single-block and bulk encryption.
func EncryptBlocks8(rk RoundKeys, blocks [Lanes][BlockSize]byte) [Lanes][BlockSize]byte {
	var x [4][Lanes]uint32
	for lane := 0; lane < Lanes; lane++ {
		x[0][lane] = binary.BigEndian.Uint32(blocks[lane][0:4])
		x[1][lane] = binary.BigEndian.Uint32(blocks[lane][4:8])
		x[2][lane] = binary.BigEndian.Uint32(blocks[lane][8:12])
		x[3][lane] = binary.BigEndian.Uint32(blocks[lane][12:16])
	}

	for i := 0; i < rounds; i++ {
		for lane := 0; lane < Lanes; lane++ {
			t := tTransform(x[1][lane] ^ x[2][lane] ^ x[3][lane] ^ rk[i])
			next := x[0][lane] ^ t
			x[0][lane], x[1][lane], x[2][lane], x[3][lane] = x[1][lane], x[2][lane], x[3][lane], next
		}
	}

	var out [Lanes][BlockSize]byte
	for lane := 0; lane < Lanes; lane++ {
		// Reverse order: output is (X35, X34, X33, X32).
		binary.BigEndian.PutUint32(out[lane][0:4], x[3][lane])
		binary.BigEndian.PutUint32(out[lane][4:8], x[2][lane])
		binary.BigEndian.PutUint32(out[lane][8:12], x[1][lane])
		binary.BigEndian.PutUint32(out[lane][12:16], x[0][lane])
	}
	return out
}

// EncryptBlock encrypts a single 16-byte block by replicating it across all
// eight lanes of the wide kernel and discarding lanes 1-7.
func EncryptBlock(rk RoundKeys, block [BlockSize]byte) [BlockSize]byte {
	var lanes [Lanes][BlockSize]byte
	for i := range lanes {
		lanes[i] = block
	}
	out := EncryptBlocks8(rk, lanes)
	return out[0]
}

// sm4Block adapts RoundKeys to the standard library's cipher.Block interface
// so SM4 can be composed with stdlib block-mode helpers.
type sm4Block struct {
	rk RoundKeys
}

// NewCipher returns a cipher.Block implementing SM4 with the given 16-byte key.
func NewCipher(key []byte) (stdCipher.Block, error) {
	rk, err := ExpandKey(key)
	if err != nil {
		return nil, err
	}
	return &sm4Block{rk: rk}, nil
}

// BlockSize returns the SM4 block size.
func (b *sm4Block) BlockSize() int { return BlockSize }

// Encrypt encrypts the first block in src into dst.
func (b *sm4Block) Encrypt(dst, src []byte) {
	var block [BlockSize]byte
	copy(block[:], src[:BlockSize])
	out := EncryptBlock(b.rk, block)
	copy(dst[:BlockSize], out[:])
}

// Decrypt is not implemented: the core only needs SM4 as a keystream
// generator (ECB-encrypt-only), per the counter-mode usage in GCM.
func (b *sm4Block) Decrypt(dst, src []byte) {
	panic("sm4: Decrypt is not supported, SM4 is used only as a keystream generator")
}
