package chunk

import (
	"testing"

	"github.com/binlens/elfcore/internal/testrunner/assert"
)

func TestSliceBounds(t *testing.T) {
	c := New([]byte{1, 2, 3, 4, 5})

	sub, err := c.Slice(1, 3)
	assert.NoError(t, err)
	assert.True(t, sub.Equal(New([]byte{2, 3, 4})))

	_, err = c.Slice(3, 10)
	assert.Error(t, err)
}

func TestEmptyChunksAlwaysEqual(t *testing.T) {
	a, err := New([]byte{1, 2, 3}).Slice(0, 0)
	assert.NoError(t, err)
	b := Empty

	assert.True(t, a.Equal(b))
	assert.Equal(t, 0, a.Len())
}

func TestConcat(t *testing.T) {
	out := Concat(New([]byte{1, 2}), New([]byte{3}), Empty, New([]byte{4, 5}))
	assert.True(t, out.Equal(New([]byte{1, 2, 3, 4, 5})))
}

func TestHex(t *testing.T) {
	c := New([]byte{0x90, 0xc3})
	assert.Equal(t, "90c3", c.Hex())
}
