package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 0, WordCount("  \n\t "))
	assert.Equal(t, 3, WordCount("one  two\nthree"))
	assert.Equal(t, 2, WordCount("café ouvert"))
}

func TestDetectDirection(t *testing.T) {
	assert.Equal(t, LeftToRight, DetectDirection("Hello"))
	assert.Equal(t, RightToLeft, DetectDirection("שלום world"))
	assert.Equal(t, RightToLeft, DetectDirection("123 مرحبا"))
	assert.Equal(t, LeftToRight, DetectDirection("123 !?"))
	assert.Equal(t, "rtl", RightToLeft.String())
}

func TestWrap(t *testing.T) {
	// every rune is 1 unit wide
	width := func(s string) float64 { return float64(len([]rune(s))) }

	lines := Wrap("aaa bbb ccc", 7, width)
	assert.Equal(t, []string{"aaa bbb", "ccc"}, lines)

	lines = Wrap("aaa\n\nbbb", 10, width)
	assert.Equal(t, []string{"aaa", "", "bbb"}, lines)

	lines = Wrap("short averyveryverylongword end", 8, width)
	assert.Equal(t, []string{"short", "averyveryverylongword", "end"}, lines)

	assert.Equal(t, []string{""}, Wrap("", 10, width))
	assert.Equal(t, []string{"a b"}, Wrap("a b", 0, width))
}
