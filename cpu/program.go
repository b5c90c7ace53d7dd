package cpu

import (
	"iter"

	"github.com/ezrec/triad/internal"
)

// Listing is one disassembled instruction.
type Listing struct {
	Address     uint32
	Codes       []Code
	Instruction Instruction // nil if the word does not decode.
	Err         error
}

// Disassemble decodes the words of [addr, addr+size), pairing atomic idioms
// the same way the processor does.
func Disassemble(mem internal.Sparse, addr uint32, size uint32) iter.Seq[Listing] {
	return func(yield func(Listing) bool) {
		end := uint64(addr) + uint64(size)
		for pc := uint64(addr); pc+CODE_SIZE <= end; {
			word, _ := mem.Word(uint32(pc))
			code := CodeOf(word)

			list := Listing{Address: uint32(pc), Codes: []Code{code}}
			list.Instruction, list.Err = Decode(code)
			if list.Err == nil && pc+2*CODE_SIZE <= end {
				word, _ = mem.Word(uint32(pc + CODE_SIZE))
				next := CodeOf(word)
				if pair, ok := Pair(list.Instruction, next); ok {
					list.Instruction = pair
					list.Codes = append(list.Codes, next)
				}
			}

			if !yield(list) {
				return
			}
			pc += uint64(len(list.Codes) * CODE_SIZE)
		}
	}
}
