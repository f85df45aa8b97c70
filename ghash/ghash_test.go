package ghash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateBlockAccumulatesOverGF128(t *testing.T) {
	var h [Size]byte
	h[15] = 2 // H = 2, a small nonzero field element

	g := New(h)
	var block [Size]byte
	block[15] = 1 // Y starts at 0, absorb a single 1-bit block

	g.UpdateBlock(block)
	want := multiply(block, h)
	assert.Equal(t, want, g.Sum())
}

func TestUpdatePadsPartialTrailingBlock(t *testing.T) {
	var h [Size]byte
	h[14] = 0x01
	h[15] = 0x01

	full := New(h)
	full.Update([]byte{0x01, 0x02, 0x03})

	padded := New(h)
	var block [Size]byte
	block[0], block[1], block[2] = 0x01, 0x02, 0x03
	padded.UpdateBlock(block)

	assert.Equal(t, padded.Sum(), full.Sum())
}

func TestMultiplyByZeroIsZero(t *testing.T) {
	var x [Size]byte
	x[0] = 0xff
	x[15] = 0x01
	var zero [Size]byte

	assert.Equal(t, zero, multiply(x, zero))
	assert.Equal(t, zero, multiply(zero, x))
}

func TestMultiplyByOneIsIdentity(t *testing.T) {
	var one [Size]byte
	one[0] = 0x80 // the field element 1: x^0 is the top bit of byte 0

	var x [Size]byte
	x[0], x[7], x[15] = 0xab, 0xcd, 0xef

	assert.Equal(t, x, multiply(x, one))
	assert.Equal(t, x, multiply(one, x))
}

func TestResetClearsAccumulatorNotH(t *testing.T) {
	var h [Size]byte
	h[15] = 3

	g := New(h)
	g.Update([]byte("some authenticated data"))
	assert.NotEqual(t, [Size]byte{}, g.Sum())

	g.Reset()
	assert.Equal(t, [Size]byte{}, g.Sum())

	// H must be unchanged: re-running the same update reproduces the same sum.
	g.Update([]byte("some authenticated data"))
	g2 := New(h)
	g2.Update([]byte("some authenticated data"))
	assert.Equal(t, g2.Sum(), g.Sum())
}
