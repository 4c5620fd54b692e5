package chain

import (
	"strings"
	"testing"

	"github.com/binlens/elfcore/internal/chunk"
	"github.com/binlens/elfcore/internal/testrunner/assert"
)

// S6 — chain decode: nop, nop, ret.
func TestS6ChainDecode(t *testing.T) {
	raw := chunk.New([]byte{0x90, 0x90, 0xc3})

	c, err := FromString(StubDecoder{}, 0x400000, raw)
	assert.NoError(t, err)
	assert.Len(t, c.Instructions(), 3)

	wantAddrs := []uint64{0x400000, 0x400001, 0x400002}
	for i, ins := range c.Instructions() {
		assert.Equal(t, wantAddrs[i], ins.Address)
	}

	total := 0
	for _, ins := range c.Instructions() {
		total += ins.Bytes.Len()
	}

	assert.Equal(t, raw.Len(), total)
	assert.Equal(t, 2, strings.Count(c.String(), "nop"))
	assert.Equal(t, 1, strings.Count(c.String(), "ret"))
}

func TestFromInstructionsSynthesizesChunkAndString(t *testing.T) {
	instructions := []Instruction{
		{Address: 0x1000, Mnemonic: "nop", Bytes: chunk.New([]byte{0x90})},
		{Address: 0x1001, Mnemonic: "ret", Bytes: chunk.New([]byte{0xc3})},
	}

	c, err := FromInstructions(0x1000, instructions)
	assert.NoError(t, err)
	assert.True(t, c.Chunk().Equal(chunk.New([]byte{0x90, 0xc3})))
	assert.Equal(t, "nop\nret", c.String())
}

func TestFromInstructionsRejectsNonMonotonicAddresses(t *testing.T) {
	instructions := []Instruction{
		{Address: 0x1000, Mnemonic: "nop", Bytes: chunk.New([]byte{0x90})},
		{Address: 0x1000, Mnemonic: "ret", Bytes: chunk.New([]byte{0xc3})},
	}

	_, err := FromInstructions(0x1000, instructions)
	assert.Error(t, err)
}

func TestGetMapAndPrefix(t *testing.T) {
	raw := chunk.New([]byte{0x90, 0xcc, 0x90})

	c, err := FromString(StubDecoder{}, 0x2000, raw)
	assert.NoError(t, err)

	m := c.GetMap()
	assert.Len(t, m, 3)
	assert.Equal(t, "nop", m[0].Mnemonic)
	assert.Equal(t, "int3", m[1].Mnemonic)

	prefix := c.GetMapPrefix(chunk.New([]byte{0x90}))
	assert.Len(t, prefix, 2)

	_, hasInt3Offset := prefix[1]
	assert.False(t, hasInt3Offset)
}

func TestAnalysisContextRoundTrip(t *testing.T) {
	c := Create(0x3000, "ret", chunk.New([]byte{0xc3}), []Instruction{
		{Address: 0x3000, Mnemonic: "ret", Bytes: chunk.New([]byte{0xc3})},
	})

	_, ok := c.AnalysisContext()
	assert.False(t, ok)

	c.SetAnalysisContext("solver-handle")

	ctx, ok := c.AnalysisContext()
	assert.True(t, ok)
	assert.Equal(t, "solver-handle", ctx)
}

func TestStubDecoderRejectsUnknownOpcode(t *testing.T) {
	_, err := StubDecoder{}.Decode([]byte{0xfe}, 0)
	assert.Error(t, err)
}
