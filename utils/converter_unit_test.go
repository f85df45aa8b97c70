package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString2Bytes(t *testing.T) {
	cases := []string{
		"",
		"hello",
		"你好世界",
		"line1\nline2\tline3",
		"hello\x00world",
		"Hello 👋 World 🌍",
	}
	for _, input := range cases {
		result := String2Bytes(input)
		assert.Equal(t, []byte(input), result)
		assert.Equal(t, len(input), len(result))
	}
}

func TestBytes2String(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		[]byte("hello"),
		[]byte("你好世界"),
		{0x00, 0x01, 0x02, 0xFF, 0xFE, 0xFD},
	}
	for _, input := range cases {
		result := Bytes2String(input)
		assert.Equal(t, string(input), result)
		assert.Equal(t, len(input), len(result))
	}
}

func TestString2BytesAndBytes2StringRoundTrip(t *testing.T) {
	input := "Hello, World! 你好世界 👋"

	bytes := String2Bytes(input)
	assert.Equal(t, input, Bytes2String(bytes))

	original := []byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0xFD}
	assert.Equal(t, original, String2Bytes(Bytes2String(original)))
}
