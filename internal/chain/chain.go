// Package chain implements Chain, an address-keyed grouping of decoded
// instructions with their raw bytes and a byte-offset -> instruction map,
// for downstream symbolic or structural analysis.
package chain

import (
	"strings"

	"github.com/binlens/elfcore/internal/chunk"
	elferrors "github.com/binlens/elfcore/internal/errors"
)

// Chain holds a virtual address, a disassembly string, the chunk of bytes
// the instructions were decoded from, the ordered instruction list, and an
// optional opaque analysis context (e.g. an SMT solver handle) attached
// later by an analysis pass.
//
// Invariant: the concatenation of instruction byte lengths equals the
// chunk's length, and instruction addresses increase monotonically
// starting at the chain's address.
type Chain struct {
	addr         uint64
	str          string
	data         chunk.Chunk
	instructions []Instruction
	offsetMap    map[int]Instruction
	analysisCtx  any
}

// FromString decodes instructions out of raw using decoder, starting at
// addr, and assembles the disassembly string from each instruction's
// mnemonic.
func FromString(decoder Decoder, addr uint64, raw chunk.Chunk) (*Chain, error) {
	var (
		instructions []Instruction
		sb           strings.Builder
	)

	cur := addr
	remaining := raw.Bytes()

	for len(remaining) > 0 {
		ins, err := decoder.Decode(remaining, cur)
		if err != nil {
			return nil, err
		}

		n := ins.Bytes.Len()
		if n <= 0 || n > len(remaining) {
			return nil, elferrors.InvalidFormat("decoder returned an invalid instruction length")
		}

		instructions = append(instructions, ins)

		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}

		sb.WriteString(ins.Mnemonic)

		cur += uint64(n)
		remaining = remaining[n:]
	}

	return assemble(addr, sb.String(), raw, instructions)
}

// FromInstructions takes pre-decoded instructions and synthesizes the
// backing chunk (by concatenating each instruction's bytes) and the
// disassembly string.
func FromInstructions(addr uint64, instructions []Instruction) (*Chain, error) {
	chunks := make([]chunk.Chunk, len(instructions))

	var sb strings.Builder

	for i, ins := range instructions {
		chunks[i] = ins.Bytes

		if i > 0 {
			sb.WriteByte('\n')
		}

		sb.WriteString(ins.Mnemonic)
	}

	return assemble(addr, sb.String(), chunk.Concat(chunks...), instructions)
}

// Create is the trusted raw constructor: it performs no validation and
// simply wires the given fields into a Chain. Use FromString or
// FromInstructions unless the caller has already established the
// chain invariant itself.
func Create(addr uint64, str string, data chunk.Chunk, instructions []Instruction) *Chain {
	c := &Chain{addr: addr, str: str, data: data, instructions: instructions}
	c.offsetMap = buildOffsetMap(addr, instructions)

	return c
}

func assemble(addr uint64, str string, data chunk.Chunk, instructions []Instruction) (*Chain, error) {
	if err := validate(addr, data, instructions); err != nil {
		return nil, err
	}

	return Create(addr, str, data, instructions), nil
}

func validate(addr uint64, data chunk.Chunk, instructions []Instruction) error {
	total := 0
	expectAddr := addr

	for _, ins := range instructions {
		if ins.Address != expectAddr {
			return elferrors.InvalidFormat("instruction addresses are not strictly increasing from the chain address")
		}

		total += ins.Bytes.Len()
		expectAddr += uint64(ins.Bytes.Len())
	}

	if total != data.Len() {
		return elferrors.InvalidFormat("sum of instruction lengths does not equal chunk length")
	}

	return nil
}

func buildOffsetMap(addr uint64, instructions []Instruction) map[int]Instruction {
	m := make(map[int]Instruction, len(instructions))
	offset := 0

	for _, ins := range instructions {
		m[offset] = ins
		offset += ins.Bytes.Len()
	}

	return m
}

// Address returns the chain's entry-point virtual address.
func (c *Chain) Address() uint64 { return c.addr }

// String returns the assembled disassembly text.
func (c *Chain) String() string { return c.str }

// Chunk returns the chunk of bytes the instructions were decoded from.
func (c *Chain) Chunk() chunk.Chunk { return c.data }

// Instructions returns the ordered instruction list.
func (c *Chain) Instructions() []Instruction { return c.instructions }

// GetMap returns the byte-offset-within-chunk -> instruction map.
func (c *Chain) GetMap() map[int]Instruction {
	return c.offsetMap
}

// GetMapPrefix returns the subset of GetMap whose instruction bytes start
// with prefix; used by the analyzer for pattern search.
func (c *Chain) GetMapPrefix(prefix chunk.Chunk) map[int]Instruction {
	out := make(map[int]Instruction)

	p := prefix.Bytes()

	for offset, ins := range c.offsetMap {
		b := ins.Bytes.Bytes()
		if len(b) < len(p) {
			continue
		}

		match := true

		for i := range p {
			if b[i] != p[i] {
				match = false

				break
			}
		}

		if match {
			out[offset] = ins
		}
	}

	return out
}

// SetAnalysisContext attaches an opaque analysis context (e.g. an SMT
// solver handle) to the chain; it is never interpreted here.
func (c *Chain) SetAnalysisContext(ctx any) {
	c.analysisCtx = ctx
}

// AnalysisContext returns the previously attached analysis context, if any.
func (c *Chain) AnalysisContext() (any, bool) {
	if c.analysisCtx == nil {
		return nil, false
	}

	return c.analysisCtx, true
}
