package chain

import (
	"fmt"

	"github.com/binlens/elfcore/internal/chunk"
	elferrors "github.com/binlens/elfcore/internal/errors"
)

// Instruction is one decoded machine instruction. The instruction decoder
// itself is an external collaborator (a production x86 decoder); this
// toolkit only stores what it hands back.
type Instruction struct {
	Address  uint64
	Mnemonic string
	Bytes    chunk.Chunk
}

// Decoder decodes a single instruction starting at the front of data. It
// returns the decoded Instruction and must not consume more bytes than the
// instruction's length; Chain re-slices the remainder itself.
type Decoder interface {
	Decode(data []byte, addr uint64) (Instruction, error)
}

// StubDecoder is a reference Decoder good enough to decode the small set of
// no-operand x86-64 opcodes exercised by this toolkit's own tests and
// tooling: the single-byte NOP, RET and INT3, plus the two-byte CPUID and
// four-byte ENDBR64. A production decoder
// is expected to be wired in by the caller in its place; StubDecoder exists
// so Chain.FromString has something to decode with out of the box.
type StubDecoder struct{}

var knownOpcodes = map[byte]string{
	0x90: "nop",
	0xc3: "ret",
	0xcc: "int3",
}

// Decode implements Decoder.
func (StubDecoder) Decode(data []byte, addr uint64) (Instruction, error) {
	if len(data) == 0 {
		return Instruction{}, elferrors.InvalidFormat("decode: empty instruction stream")
	}

	// 0f a2 = cpuid, f3 0f 1e fa = endbr64; both multi-byte opcodes this
	// stub happens to know about.
	if len(data) >= 2 && data[0] == 0x0f && data[1] == 0xa2 {
		return Instruction{Address: addr, Mnemonic: "cpuid", Bytes: chunk.New(data[:2])}, nil
	}

	if len(data) >= 4 && data[0] == 0xf3 && data[1] == 0x0f && data[2] == 0x1e && data[3] == 0xfa {
		return Instruction{Address: addr, Mnemonic: "endbr64", Bytes: chunk.New(data[:4])}, nil
	}

	mnemonic, ok := knownOpcodes[data[0]]
	if !ok {
		return Instruction{}, elferrors.InvalidFormat(fmt.Sprintf("decode: unrecognized opcode 0x%02x", data[0]))
	}

	return Instruction{Address: addr, Mnemonic: mnemonic, Bytes: chunk.New(data[:1])}, nil
}
