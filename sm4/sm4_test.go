package sm4

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test vector from GB/T 32907-2016 Appendix A.1.
var (
	gbKey        = mustHex("0123456789abcdeffedcba9876543210")
	gbPlaintext  = mustHex("0123456789abcdeffedcba9876543210")
	gbCiphertext = mustHex("681edf34d206965e86b3e94f536e4246")
)

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func TestExpandKeyRejectsBadSize(t *testing.T) {
	_, err := ExpandKey(make([]byte, 15))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid key size")
}

func TestEncryptBlockKnownAnswer(t *testing.T) {
	rk, err := ExpandKey(gbKey)
	assert.NoError(t, err)

	var block [BlockSize]byte
	copy(block[:], gbPlaintext)

	out := EncryptBlock(rk, block)
	assert.Equal(t, gbCiphertext, out[:])
}

func TestWideKernelAgreesWithSingleBlock(t *testing.T) {
	rk, err := ExpandKey(gbKey)
	assert.NoError(t, err)

	var block [BlockSize]byte
	copy(block[:], gbPlaintext)

	var lanes [Lanes][BlockSize]byte
	for i := range lanes {
		lanes[i] = block
	}

	wide := EncryptBlocks8(rk, lanes)
	single := EncryptBlock(rk, block)

	for lane := 0; lane < Lanes; lane++ {
		assert.Equal(t, single, wide[lane], "lane %d disagrees with single-block result", lane)
	}
}

func TestWideKernelIndependentLanes(t *testing.T) {
	rk, err := ExpandKey(gbKey)
	assert.NoError(t, err)

	var lanes [Lanes][BlockSize]byte
	for i := range lanes {
		var block [BlockSize]byte
		copy(block[:], gbPlaintext)
		block[0] ^= byte(i)
		lanes[i] = block
	}

	wide := EncryptBlocks8(rk, lanes)
	for i := range lanes {
		want := EncryptBlock(rk, lanes[i])
		assert.Equal(t, want, wide[i], "lane %d does not match independent single-block encryption", i)
	}
}

func TestNewCipherBlockSize(t *testing.T) {
	block, err := NewCipher(gbKey)
	assert.NoError(t, err)
	assert.Equal(t, BlockSize, block.BlockSize())

	dst := make([]byte, BlockSize)
	block.Encrypt(dst, gbPlaintext)
	assert.Equal(t, gbCiphertext, dst)
}
