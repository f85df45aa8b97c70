package extend

import (
	"testing"

	"github.com/gmsuite/smcore/sm3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sm3Sum(t *testing.T, data []byte) [32]byte {
	t.Helper()
	d := sm3.New()
	_, err := d.Write(data)
	require.NoError(t, err)
	return d.Digest()
}

func TestForgeMatchesDirectHashOfPaddedExtension(t *testing.T) {
	secret := []byte("secret")
	message := []byte("data")
	extension := []byte("append")

	prefix := append(append([]byte{}, secret...), message...)
	knownDigest := sm3Sum(t, prefix)

	forged, err := Forge(knownDigest[:], len(prefix), extension)
	require.NoError(t, err)

	expectedMessage := append(append([]byte{}, prefix...), Padding(len(prefix))...)
	expectedMessage = append(expectedMessage, extension...)
	want := sm3Sum(t, expectedMessage)

	assert.Equal(t, want, forged)
}

func TestForgeAcrossVariousPrefixLengths(t *testing.T) {
	extension := []byte("more data appended by an attacker")

	for _, n := range []int{0, 1, 55, 56, 57, 63, 64, 65, 127, 128, 129} {
		prefix := make([]byte, n)
		for i := range prefix {
			prefix[i] = byte(i)
		}

		digest := sm3Sum(t, prefix)
		forged, err := Forge(digest[:], n, extension)
		require.NoError(t, err, "prefix length %d", n)

		expectedMessage := append(append([]byte{}, prefix...), Padding(n)...)
		expectedMessage = append(expectedMessage, extension...)
		want := sm3Sum(t, expectedMessage)

		assert.Equal(t, want, forged, "prefix length %d", n)
	}
}

func TestForgeRejectsWrongDigestLength(t *testing.T) {
	_, err := Forge(make([]byte, 31), 10, []byte("x"))
	assert.Error(t, err)
	var lenErr InvalidDigestLengthError
	assert.ErrorAs(t, err, &lenErr)
}
