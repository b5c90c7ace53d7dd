package cpu

import (
	"fmt"
)

// Opcode is the first byte of an instruction word.
type Opcode uint8

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_HALT    = Opcode(0x00) // halt
	OP_INT     = Opcode(0x10) // int
	OP_CALL    = Opcode(0x21) // call
	OP_JMP     = Opcode(0x38) // jmp
	OP_BEQ     = Opcode(0x39) // beq
	OP_BNE     = Opcode(0x3a) // bne
	OP_BGT     = Opcode(0x3b) // bgt
	OP_XCHG    = Opcode(0x40) // xchg
	OP_ADD     = Opcode(0x50) // add
	OP_SUB     = Opcode(0x51) // sub
	OP_MUL     = Opcode(0x52) // mul
	OP_DIV     = Opcode(0x53) // div
	OP_NOT     = Opcode(0x60) // not
	OP_AND     = Opcode(0x61) // and
	OP_OR      = Opcode(0x62) // or
	OP_XOR     = Opcode(0x63) // xor
	OP_SHL     = Opcode(0x70) // shl
	OP_SHR     = Opcode(0x71) // shr
	OP_ST      = Opcode(0x80) // st
	OP_PUSH    = Opcode(0x81) // push
	OP_ST_IND  = Opcode(0x82) // sti
	OP_CSRRD   = Opcode(0x90) // csrrd
	OP_MOV     = Opcode(0x91) // mov
	OP_LD      = Opcode(0x92) // ld
	OP_POP     = Opcode(0x93) // pop
	OP_CSRWR   = Opcode(0x94) // csrwr
	OP_POP_CSR = Opcode(0x97) // popcsr
)

// Reg is a general purpose register number.
type Reg uint8

const (
	REG_R0 = Reg(0)
	REG_SP = Reg(14) // Stack pointer.
	REG_PC = Reg(15) // Program counter.

	REG_COUNT = 16
)

func (reg Reg) String() string {
	switch reg {
	case REG_SP:
		return "%sp"
	case REG_PC:
		return "%pc"
	}
	return fmt.Sprintf("%%r%d", uint8(reg))
}

// Csr is a control register number.
type Csr uint8

const (
	CSR_STATUS  = Csr(0) // status
	CSR_HANDLER = Csr(1) // handler
	CSR_CAUSE   = Csr(2) // cause

	CSR_COUNT = 3
)

var csrName = []string{"%status", "%handler", "%cause"}

func (csr Csr) String() string {
	if int(csr) < len(csrName) {
		return csrName[csr]
	}
	return fmt.Sprintf("%%csr%d", uint8(csr))
}

// Valid returns true if the control register exists.
func (csr Csr) Valid() bool {
	return csr < CSR_COUNT
}

// Displacement range of an instruction word.
const (
	DISP_MIN = -2048
	DISP_MAX = 2047
)

// DispValid returns true if disp is encodable in an instruction word.
func DispValid(disp int32) bool {
	return disp >= DISP_MIN && disp <= DISP_MAX
}

// CODE_SIZE is the size in bytes of an instruction word.
const CODE_SIZE = 4

// Code is an instruction word, in memory order:
//
//	byte0 = opcode
//	byte1 = A<<4 | B
//	byte2 = C<<4 | disp[11:8]
//	byte3 = disp[7:0]
type Code [CODE_SIZE]byte

// MakeCode packs the fields of an instruction word.
// Only the low 12 bits of disp are kept.
func MakeCode(op Opcode, a, b, c uint8, disp int32) (code Code) {
	code[0] = byte(op)
	code[1] = (a&0xf)<<4 | (b & 0xf)
	code[2] = (c&0xf)<<4 | byte((disp>>8)&0xf)
	code[3] = byte(disp & 0xff)
	return
}

// Op returns the opcode.
func (code Code) Op() Opcode {
	return Opcode(code[0])
}

// A returns the A field.
func (code Code) A() uint8 {
	return code[1] >> 4
}

// B returns the B field.
func (code Code) B() uint8 {
	return code[1] & 0xf
}

// C returns the C field.
func (code Code) C() uint8 {
	return code[2] >> 4
}

// Disp returns the sign extended displacement.
func (code Code) Disp() int32 {
	disp := int32(code[2]&0xf)<<8 | int32(code[3])
	if disp&0x800 != 0 {
		disp -= 0x1000
	}
	return disp
}

// String returns the code as hex bytes.
func (code Code) String() string {
	return fmt.Sprintf("%02x %02x %02x %02x", code[0], code[1], code[2], code[3])
}

// CodeOf converts a little-endian memory word to a code.
func CodeOf(word uint32) Code {
	return Code{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)}
}

// Word returns the code as a little-endian memory word.
func (code Code) Word() uint32 {
	return uint32(code[0]) | uint32(code[1])<<8 | uint32(code[2])<<16 | uint32(code[3])<<24
}
