// Package gcm implements SM4-GCM: counter-mode confidentiality composed
// with GHASH authentication, using SM4 both as the keystream generator and
// to derive the GHASH subkey H.
//
// The operation runs as a strict state machine: init, then absorb(AAD),
// then repeated emit-ciphertext-block+absorb steps, then absorb the length
// block, then finalise into the tag. Absorbing after finalisation is
// undefined and this package provides no way to do it.
package gcm

import (
	"crypto/subtle"
	"encoding/binary"

	"github.com/gmsuite/smcore/ghash"
	"github.com/gmsuite/smcore/sm4"
)

// Cipher is an SM4-GCM session bound to a single key. H = SM4_encrypt(K, 0)
// is derived once and reused for every Seal call.
type Cipher struct {
	rk sm4.RoundKeys
	h  [ghash.Size]byte
}

// New derives the SM4 round-key schedule and the GHASH subkey H for key, a
// 16-byte SM4 key.
func New(key []byte) (*Cipher, error) {
	rk, err := sm4.ExpandKey(key)
	if err != nil {
		return nil, err
	}
	h := sm4.EncryptBlock(rk, [sm4.BlockSize]byte{})
	return &Cipher{rk: rk, h: h}, nil
}

// deriveJ0 computes the initial counter block from the IV. A 12-byte IV is
// the GCM fast path: J0 = IV || 0x00000001. Any other length is GHASHed
// (zero-padded to a block boundary) together with a length block.
func (c *Cipher) deriveJ0(iv []byte) [ghash.Size]byte {
	if len(iv) == 12 {
		var j0 [ghash.Size]byte
		copy(j0[:], iv)
		j0[15] = 0x01
		return j0
	}

	g := ghash.New(c.h)
	g.Update(iv)
	var lenBlock [ghash.Size]byte
	binary.BigEndian.PutUint64(lenBlock[8:], uint64(len(iv))*8)
	g.UpdateBlock(lenBlock)
	return g.Sum()
}

// Seal encrypts plaintext under iv and aad, producing ciphertext of the same
// length and an authentication tag truncated to tagLen bytes (0..16).
//
// The running counter increments only its low 32 bits, preserving the upper
// 96 bits of J0 unchanged for the lifetime of the operation — this is the
// RFC-interoperable behaviour of the GCM construction. See SealLegacyCounter
// for the alternative full-128-bit increment used by the original reference
// implementation this package was modelled on.
func (c *Cipher) Seal(iv, aad, plaintext []byte, tagLen int) (ciphertext, tag []byte, err error) {
	return c.seal(iv, aad, plaintext, tagLen, incrementLow32)
}

// SealLegacyCounter behaves like Seal but increments the full 128-bit
// big-endian counter block instead of only its low 32 bits. This matches the
// original C reference implementation bit-for-bit but is not interoperable
// with standard SM4-GCM implementations once the low 32 bits wrap.
func (c *Cipher) SealLegacyCounter(iv, aad, plaintext []byte, tagLen int) (ciphertext, tag []byte, err error) {
	return c.seal(iv, aad, plaintext, tagLen, incrementFull)
}

// Open decrypts ciphertext and verifies it against tag, returning the
// recovered plaintext. It is the inverse of Seal: encryption and decryption
// under CTR mode are the same keystream XOR, so Open recomputes the
// expected tag from the received ciphertext before releasing any plaintext.
func (c *Cipher) Open(iv, aad, ciphertext, tag []byte) ([]byte, error) {
	return c.open(iv, aad, ciphertext, tag, incrementLow32)
}

// OpenLegacyCounter is the inverse of SealLegacyCounter.
func (c *Cipher) OpenLegacyCounter(iv, aad, ciphertext, tag []byte) ([]byte, error) {
	return c.open(iv, aad, ciphertext, tag, incrementFull)
}

func (c *Cipher) open(iv, aad, ciphertext, tag []byte, increment func(*[ghash.Size]byte)) ([]byte, error) {
	if len(tag) > ghash.Size {
		return nil, InvalidTagLengthError(len(tag))
	}

	j0 := c.deriveJ0(iv)
	g := ghash.New(c.h)
	g.Update(aad)
	g.Update(ciphertext)

	var lenBlock [sm4.BlockSize]byte
	binary.BigEndian.PutUint64(lenBlock[0:8], uint64(len(aad))*8)
	binary.BigEndian.PutUint64(lenBlock[8:16], uint64(len(ciphertext))*8)
	g.UpdateBlock(lenBlock)

	tagMask := sm4.EncryptBlock(c.rk, j0)
	sum := g.Sum()
	var expected [sm4.BlockSize]byte
	for i := range expected {
		expected[i] = tagMask[i] ^ sum[i]
	}

	if subtle.ConstantTimeCompare(expected[:len(tag)], tag) != 1 {
		return nil, AuthenticationError{}
	}

	plaintext := make([]byte, len(ciphertext))
	ctr := j0
	off := 0

	for len(ciphertext)-off >= sm4.Lanes*sm4.BlockSize {
		var ctrBlocks [sm4.Lanes][sm4.BlockSize]byte
		for lane := 0; lane < sm4.Lanes; lane++ {
			ctrBlocks[lane] = ctr
			increment(&ctr)
		}
		keystream := sm4.EncryptBlocks8(c.rk, ctrBlocks)
		for lane := 0; lane < sm4.Lanes; lane++ {
			base := off + lane*sm4.BlockSize
			for b := 0; b < sm4.BlockSize; b++ {
				plaintext[base+b] = ciphertext[base+b] ^ keystream[lane][b]
			}
		}
		off += sm4.Lanes * sm4.BlockSize
	}

	for len(ciphertext)-off >= sm4.BlockSize {
		ks := sm4.EncryptBlock(c.rk, ctr)
		increment(&ctr)
		for b := 0; b < sm4.BlockSize; b++ {
			plaintext[off+b] = ciphertext[off+b] ^ ks[b]
		}
		off += sm4.BlockSize
	}

	if off < len(ciphertext) {
		ks := sm4.EncryptBlock(c.rk, ctr)
		n := len(ciphertext) - off
		for b := 0; b < n; b++ {
			plaintext[off+b] = ciphertext[off+b] ^ ks[b]
		}
	}

	return plaintext, nil
}

func (c *Cipher) seal(iv, aad, plaintext []byte, tagLen int, increment func(*[ghash.Size]byte)) ([]byte, []byte, error) {
	if tagLen < 0 || tagLen > ghash.Size {
		return nil, nil, InvalidTagLengthError(tagLen)
	}

	j0 := c.deriveJ0(iv)
	g := ghash.New(c.h)
	g.Update(aad)

	ciphertext := make([]byte, len(plaintext))
	ctr := j0
	off := 0

	// Stage 1: eight-block batches through the wide ECB kernel.
	for len(plaintext)-off >= sm4.Lanes*sm4.BlockSize {
		var ctrBlocks [sm4.Lanes][sm4.BlockSize]byte
		for lane := 0; lane < sm4.Lanes; lane++ {
			ctrBlocks[lane] = ctr
			increment(&ctr)
		}
		keystream := sm4.EncryptBlocks8(c.rk, ctrBlocks)
		for lane := 0; lane < sm4.Lanes; lane++ {
			var block [sm4.BlockSize]byte
			base := off + lane*sm4.BlockSize
			for b := 0; b < sm4.BlockSize; b++ {
				block[b] = plaintext[base+b] ^ keystream[lane][b]
			}
			copy(ciphertext[base:], block[:])
			g.UpdateBlock(block)
		}
		off += sm4.Lanes * sm4.BlockSize
	}

	// Stage 2: remaining single blocks.
	for len(plaintext)-off >= sm4.BlockSize {
		ks := sm4.EncryptBlock(c.rk, ctr)
		increment(&ctr)
		var block [sm4.BlockSize]byte
		for b := 0; b < sm4.BlockSize; b++ {
			block[b] = plaintext[off+b] ^ ks[b]
		}
		copy(ciphertext[off:], block[:])
		g.UpdateBlock(block)
		off += sm4.BlockSize
	}

	// Stage 3: final zero-padded fragment, if any plaintext remains.
	if off < len(plaintext) {
		ks := sm4.EncryptBlock(c.rk, ctr)
		var block [sm4.BlockSize]byte
		n := len(plaintext) - off
		for b := 0; b < n; b++ {
			block[b] = plaintext[off+b] ^ ks[b]
		}
		copy(ciphertext[off:], block[:n])
		g.UpdateBlock(block)
	}

	var lenBlock [sm4.BlockSize]byte
	binary.BigEndian.PutUint64(lenBlock[0:8], uint64(len(aad))*8)
	binary.BigEndian.PutUint64(lenBlock[8:16], uint64(len(plaintext))*8)
	g.UpdateBlock(lenBlock)

	tagMask := sm4.EncryptBlock(c.rk, j0)
	sum := g.Sum()
	var fullTag [sm4.BlockSize]byte
	for i := range fullTag {
		fullTag[i] = tagMask[i] ^ sum[i]
	}

	return ciphertext, fullTag[:tagLen], nil
}

// incrementLow32 increments only the rightmost 32 bits of the counter block,
// matching the GCM specification's treatment of J0.
func incrementLow32(ctr *[ghash.Size]byte) {
	c := uint32(1)
	for i := 15; i >= 12; i-- {
		c += uint32(ctr[i])
		ctr[i] = byte(c)
		c >>= 8
	}
}

// incrementFull increments the entire 16-byte big-endian integer, carrying
// across all 128 bits. This is what the original reference implementation
// does, in deviation from the GCM specification (see SealLegacyCounter).
func incrementFull(ctr *[ghash.Size]byte) {
	for i := 15; i >= 0; i-- {
		ctr[i]++
		if ctr[i] != 0 {
			break
		}
	}
}
