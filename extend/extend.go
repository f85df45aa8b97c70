// Package extend implements SM3 length-extension forgery: given only
// h = SM3(secret || message) and the byte length of secret || message, it
// computes SM3(secret || message || pad || extension) for an attacker-chosen
// extension, without ever learning secret.
//
// This works because SM3, like any Merkle-Damgard hash, exposes its
// internal chaining state as the public digest: the final compression step
// is indistinguishable from an ordinary one. Seeding a fresh instance with
// that state and the bit count the original padding would have produced,
// then continuing to write, reproduces exactly what the original instance
// would have computed had it kept hashing.
package extend

import (
	"encoding/binary"

	"github.com/gmsuite/smcore/sm3"
)

// Forge computes SM3(prefix || pad(knownLength) || extension) given only
// digest = SM3(prefix) and knownLength = len(prefix), where prefix is
// unknown to the caller (e.g. secret || original message). It returns the
// forged digest.
func Forge(digest []byte, knownLength int, extension []byte) ([32]byte, error) {
	var forged [32]byte
	if len(digest) != sm3.Size {
		return forged, InvalidDigestLengthError(len(digest))
	}

	padZeros := ((55 - knownLength%64) % 64 + 64) % 64
	totalPadded := knownLength + 1 + padZeros + 8
	bitLength := uint64(totalPadded) * 8

	d := sm3.New()
	if err := d.ImportDigest(digest, bitLength); err != nil {
		return forged, err
	}
	if _, err := d.Write(extension); err != nil {
		return forged, err
	}

	return d.Digest(), nil
}

// Padding returns the bytes SM3 would insert between a message of the given
// length and anything appended after it: a 0x80 terminator, zero bytes out
// to a 56-mod-64 boundary, and the 8-byte big-endian bit count. A forger
// with access to the plaintext prefix (but not the secret within it) needs
// these bytes to construct prefix || Padding(len(prefix)) || extension as
// the message that actually produced the forged digest.
func Padding(knownLength int) []byte {
	padZeros := ((55 - knownLength%64) % 64 + 64) % 64
	out := make([]byte, 0, 1+padZeros+8)
	out = append(out, 0x80)
	for i := 0; i < padZeros; i++ {
		out = append(out, 0x00)
	}
	var lenBytes [8]byte
	binary.BigEndian.PutUint64(lenBytes[:], uint64(knownLength)*8)
	return append(out, lenBytes[:]...)
}
