package sm3

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestKnownAnswerAbc(t *testing.T) {
	d := New()
	_, err := d.Write([]byte("abc"))
	require.NoError(t, err)

	got := d.Digest()
	want := mustHex(t, "66c7f0f462eeedd9d1f2d46bdc10e4e24167c4875cf2f7a2297da02b8f4ba8e0")
	assert.Equal(t, want, got[:])
}

func TestKnownAnswer64ByteMessage(t *testing.T) {
	msg := make([]byte, 0, 64)
	for i := 0; i < 16; i++ {
		msg = append(msg, []byte("abcd")...)
	}

	d := New()
	_, err := d.Write(msg)
	require.NoError(t, err)

	got := d.Digest()
	want := mustHex(t, "debe9ff92275b8a138604889c18e5a4d6fdb70e5387e5765293dcba39c0c5732")
	assert.Equal(t, want, got[:])
}

func TestSumMatchesDigest(t *testing.T) {
	d := New()
	_, _ = d.Write([]byte("abc"))
	digest := d.Digest()
	sum := d.Sum(nil)
	assert.Equal(t, digest[:], sum)
}

func TestDigestIsNonDestructive(t *testing.T) {
	d := New()
	_, _ = d.Write([]byte("hello "))

	first := d.Digest()
	second := d.Digest()
	assert.Equal(t, first, second, "repeated Digest calls must agree")

	_, _ = d.Write([]byte("world"))
	extended := d.Digest()

	reference := New()
	_, _ = reference.Write([]byte("hello world"))
	want := reference.Digest()

	assert.Equal(t, want, extended, "Digest must not have disturbed live state")
}

func TestIncrementalWritesMatchSingleWrite(t *testing.T) {
	d1 := New()
	_, _ = d1.Write([]byte("the quick "))
	_, _ = d1.Write([]byte("brown fox"))

	d2 := New()
	_, _ = d2.Write([]byte("the quick brown fox"))

	assert.Equal(t, d2.Digest(), d1.Digest())
}

func TestResetReturnsToInitialState(t *testing.T) {
	d := New()
	_, _ = d.Write([]byte("some data"))
	d.Reset()

	fresh := New()
	assert.Equal(t, fresh.Digest(), d.Digest())
}

func TestImportStateRoundTrips(t *testing.T) {
	reference := New()
	_, _ = reference.Write([]byte("secretdata"))
	digest := reference.Digest()

	var h [8]uint32
	for i := 0; i < 8; i++ {
		h[i] = uint32(digest[i*4])<<24 | uint32(digest[i*4+1])<<16 | uint32(digest[i*4+2])<<8 | uint32(digest[i*4+3])
	}

	// The digest already covers "secretdata" and its padding, so continuing
	// from it hashes "secretdata" || pad || "more".
	padded := pad([]byte("secretdata"), uint64(len("secretdata"))*8)

	imported := New()
	imported.ImportState(h, uint64(len(padded))*8)

	continued := New()
	_, _ = continued.Write(padded)
	_, _ = continued.Write([]byte("more"))
	want := continued.Digest()

	_, _ = imported.Write([]byte("more"))
	got := imported.Digest()

	assert.Equal(t, want, got)
}

func TestImportDigestRoundTrips(t *testing.T) {
	reference := New()
	_, _ = reference.Write([]byte("secretdata"))
	digest := reference.Digest()

	padded := pad([]byte("secretdata"), uint64(len("secretdata"))*8)

	imported := New()
	require.NoError(t, imported.ImportDigest(digest[:], uint64(len(padded))*8))
	_, _ = imported.Write([]byte("more"))
	got := imported.Digest()

	continued := New()
	_, _ = continued.Write(padded)
	_, _ = continued.Write([]byte("more"))
	want := continued.Digest()

	assert.Equal(t, want, got)
}

func TestImportDigestRejectsWrongLength(t *testing.T) {
	d := New()
	err := d.ImportDigest(make([]byte, 31), 0)
	require.Error(t, err)
	var lenErr InvalidHashLengthError
	require.ErrorAs(t, err, &lenErr)
	assert.Equal(t, 31, int(lenErr))
}

func TestBlockSizeAndSize(t *testing.T) {
	d := New()
	assert.Equal(t, 32, d.Size())
	assert.Equal(t, 64, d.BlockSize())
}
