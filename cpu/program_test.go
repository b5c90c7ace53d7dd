package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/triad/internal"
)

func TestDisassemble(t *testing.T) {
	assert := assert.New(t)

	program := []Instruction{
		Load{A: 1, B: REG_PC, Disp: 8},
		Load{A: 1, B: 1},
		Alu{Op: OP_ADD, A: 2, B: 2, C: 1},
		Pop{A: REG_PC},
		PopCsr{A: CSR_STATUS},
		Halt{},
	}

	mem := internal.Sparse{}
	addr := uint32(MEMORY_START)
	for _, inst := range program {
		for _, code := range inst.Codes() {
			mem.SetWord(addr, code.Word())
			addr += CODE_SIZE
		}
	}
	mem.SetWord(addr, 0xffff_ffff)
	addr += CODE_SIZE

	var listing []Listing
	for list := range Disassemble(mem, MEMORY_START, addr-MEMORY_START) {
		listing = append(listing, list)
	}

	if !assert.Equal(5, len(listing)) {
		return
	}

	assert.Equal(uint32(MEMORY_START), listing[0].Address)
	assert.Equal(Atomic{First: program[0], Second: program[1]}, listing[0].Instruction)
	assert.Equal(2, len(listing[0].Codes))

	assert.Equal(uint32(MEMORY_START+8), listing[1].Address)
	assert.Equal(program[2], listing[1].Instruction)

	assert.Equal(uint32(MEMORY_START+12), listing[2].Address)
	assert.Equal(Atomic{First: program[3], Second: program[4]}, listing[2].Instruction)

	assert.Equal(Halt{}, listing[3].Instruction)

	assert.Equal(uint32(MEMORY_START+24), listing[4].Address)
	assert.Nil(listing[4].Instruction)
	assert.ErrorIs(listing[4].Err, ErrOpcodeInvalid)
}

func TestDisassembleEarlyStop(t *testing.T) {
	assert := assert.New(t)

	mem := internal.Sparse{}
	for n := range uint32(8) {
		mem.SetWord(n*CODE_SIZE, Halt{}.Codes()[0].Word())
	}

	count := 0
	for range Disassemble(mem, 0, 32) {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(3, count)
}
