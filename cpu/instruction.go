package cpu

import (
	"errors"
	"fmt"
)

// Instruction is a decoded, validated instruction.
// The set of implementations is closed.
type Instruction interface {
	// Codes returns the instruction words.
	Codes() []Code
	// String returns the assembly form.
	String() string

	instruction()
}

// Cond is the branch condition of a Jump.
type Cond uint8

//go:generate go tool stringer -linecomment -type=Cond
const (
	COND_ALWAYS = Cond(0) // jmp
	COND_EQ     = Cond(1) // beq
	COND_NE     = Cond(2) // bne
	COND_GT     = Cond(3) // bgt
)

// Halt stops the processor.
type Halt struct{}

// Int raises a software interrupt.
type Int struct{}

// Call pushes pc, then jumps to mem[pc+Disp].
type Call struct {
	Disp int32
}

// Jump jumps to mem[pc+Disp] when Cond holds for B and C.
type Jump struct {
	Cond Cond
	B, C Reg
	Disp int32
}

// Xchg swaps B and C.
type Xchg struct {
	B, C Reg
}

// Alu computes A = B op C.
type Alu struct {
	Op      Opcode
	A, B, C Reg
}

// Not computes A = ^B.
type Not struct {
	A, B Reg
}

// Store writes C to mem[A+B+Disp].
type Store struct {
	A, B, C Reg
	Disp    int32
}

// StoreIndirect writes C to mem[mem[A+B+Disp]].
type StoreIndirect struct {
	A, B, C Reg
	Disp    int32
}

// Push decrements sp, then writes C to mem[sp].
type Push struct {
	C Reg
}

// Pop reads A from mem[sp], then increments sp.
type Pop struct {
	A Reg
}

// PopCsr reads a control register from mem[sp], then increments sp.
// It is only legal as the second half of an interrupt return.
type PopCsr struct {
	A Csr
}

// CsrRead copies control register B into A.
type CsrRead struct {
	A Reg
	B Csr
}

// CsrWrite copies B into control register A.
type CsrWrite struct {
	A Csr
	B Reg
}

// Move copies B into A.
type Move struct {
	A, B Reg
}

// Load reads A from mem[B+C+Disp].
type Load struct {
	A, B, C Reg
	Disp    int32
}

// Atomic is a pair of instructions executed without an interrupt check
// between them: an interrupt return, or a memory direct load.
type Atomic struct {
	First, Second Instruction
}

func (Halt) instruction()          {}
func (Int) instruction()           {}
func (Call) instruction()          {}
func (Jump) instruction()          {}
func (Xchg) instruction()          {}
func (Alu) instruction()           {}
func (Not) instruction()           {}
func (Store) instruction()         {}
func (StoreIndirect) instruction() {}
func (Push) instruction()          {}
func (Pop) instruction()           {}
func (PopCsr) instruction()        {}
func (CsrRead) instruction()       {}
func (CsrWrite) instruction()      {}
func (Move) instruction()          {}
func (Load) instruction()          {}
func (Atomic) instruction()        {}

func (Halt) Codes() []Code { return []Code{MakeCode(OP_HALT, 0, 0, 0, 0)} }
func (Int) Codes() []Code  { return []Code{MakeCode(OP_INT, 0, 0, 0, 0)} }

func (in Call) Codes() []Code {
	return []Code{MakeCode(OP_CALL, uint8(REG_PC), 0, 0, in.Disp)}
}

func (in Jump) Codes() []Code {
	return []Code{MakeCode(OP_JMP+Opcode(in.Cond), uint8(REG_PC), uint8(in.B), uint8(in.C), in.Disp)}
}

func (in Xchg) Codes() []Code {
	return []Code{MakeCode(OP_XCHG, 0, uint8(in.B), uint8(in.C), 0)}
}

func (in Alu) Codes() []Code {
	return []Code{MakeCode(in.Op, uint8(in.A), uint8(in.B), uint8(in.C), 0)}
}

func (in Not) Codes() []Code {
	return []Code{MakeCode(OP_NOT, uint8(in.A), uint8(in.B), 0, 0)}
}

func (in Store) Codes() []Code {
	return []Code{MakeCode(OP_ST, uint8(in.A), uint8(in.B), uint8(in.C), in.Disp)}
}

func (in StoreIndirect) Codes() []Code {
	return []Code{MakeCode(OP_ST_IND, uint8(in.A), uint8(in.B), uint8(in.C), in.Disp)}
}

func (in Push) Codes() []Code {
	return []Code{MakeCode(OP_PUSH, uint8(REG_SP), 0, uint8(in.C), -4)}
}

func (in Pop) Codes() []Code {
	return []Code{MakeCode(OP_POP, uint8(in.A), uint8(REG_SP), 0, 4)}
}

func (in PopCsr) Codes() []Code {
	return []Code{MakeCode(OP_POP_CSR, uint8(in.A), uint8(REG_SP), 0, 4)}
}

func (in CsrRead) Codes() []Code {
	return []Code{MakeCode(OP_CSRRD, uint8(in.A), uint8(in.B), 0, 0)}
}

func (in CsrWrite) Codes() []Code {
	return []Code{MakeCode(OP_CSRWR, uint8(in.A), uint8(in.B), 0, 0)}
}

func (in Move) Codes() []Code {
	return []Code{MakeCode(OP_MOV, uint8(in.A), uint8(in.B), 0, 0)}
}

func (in Load) Codes() []Code {
	return []Code{MakeCode(OP_LD, uint8(in.A), uint8(in.B), uint8(in.C), in.Disp)}
}

func (in Atomic) Codes() []Code {
	return append(in.First.Codes(), in.Second.Codes()...)
}

func memString(a, b Reg, disp int32) (text string) {
	text = "[" + a.String()
	if b != REG_R0 {
		text += " + " + b.String()
	}
	if disp != 0 {
		text += fmt.Sprintf(" + %d", disp)
	}
	text += "]"
	return
}

func (Halt) String() string      { return "halt" }
func (Int) String() string       { return "int" }
func (in Call) String() string   { return "call " + memString(REG_PC, REG_R0, in.Disp) }
func (in Xchg) String() string   { return fmt.Sprintf("xchg %v, %v", in.B, in.C) }
func (in Not) String() string    { return fmt.Sprintf("not %v, %v", in.A, in.B) }
func (in Push) String() string   { return fmt.Sprintf("push %v", in.C) }
func (in Pop) String() string    { return fmt.Sprintf("pop %v", in.A) }
func (in Move) String() string   { return fmt.Sprintf("ld %v, %v", in.B, in.A) }
func (in PopCsr) String() string { return fmt.Sprintf("pop %v", in.A) }

func (in Jump) String() string {
	if in.Cond == COND_ALWAYS {
		return fmt.Sprintf("%v %v", in.Cond, memString(REG_PC, REG_R0, in.Disp))
	}
	return fmt.Sprintf("%v %v, %v, %v", in.Cond, in.B, in.C, memString(REG_PC, REG_R0, in.Disp))
}

func (in Alu) String() string {
	return fmt.Sprintf("%v %v, %v, %v", in.Op, in.A, in.B, in.C)
}

func (in Store) String() string {
	return fmt.Sprintf("st %v, %v", in.C, memString(in.A, in.B, in.Disp))
}

func (in StoreIndirect) String() string {
	return fmt.Sprintf("st %v, [%v]", in.C, memString(in.A, in.B, in.Disp))
}

func (in CsrRead) String() string {
	return fmt.Sprintf("csrrd %v, %v", in.B, in.A)
}

func (in CsrWrite) String() string {
	return fmt.Sprintf("csrwr %v, %v", in.B, in.A)
}

func (in Load) String() string {
	return fmt.Sprintf("ld %v, %v", memString(in.B, in.C, in.Disp), in.A)
}

func (in Atomic) String() string {
	if in.IsReturn() {
		return "iret"
	}
	return fmt.Sprintf("{ %v; %v }", in.First, in.Second)
}

// IsReturn returns true for the interrupt return pair.
func (in Atomic) IsReturn() bool {
	_, ok := in.Second.(PopCsr)
	return ok
}

// decodeCheck collects the violated field constraints of a word.
type decodeCheck []error

func (dc *decodeCheck) require(ok bool, err error) {
	if !ok {
		*dc = append(*dc, err)
	}
}

// Decode validates and decodes a single instruction word.
func Decode(code Code) (inst Instruction, err error) {
	op := code.Op()
	a, b, c, disp := Reg(code.A()), Reg(code.B()), Reg(code.C()), code.Disp()

	var check decodeCheck
	zeroA := func() { check.require(a == 0, ErrOperandA) }
	zeroB := func() { check.require(b == 0, ErrOperandB) }
	zeroC := func() { check.require(c == 0, ErrOperandC) }
	zeroD := func() { check.require(disp == 0, ErrOperandDisp) }

	switch op {
	case OP_HALT:
		zeroA()
		zeroB()
		zeroC()
		zeroD()
		inst = Halt{}
	case OP_INT:
		zeroA()
		zeroB()
		zeroC()
		zeroD()
		inst = Int{}
	case OP_CALL:
		check.require(a == REG_PC, ErrOperandA)
		zeroB()
		zeroC()
		inst = Call{Disp: disp}
	case OP_JMP, OP_BEQ, OP_BNE, OP_BGT:
		check.require(a == REG_PC, ErrOperandA)
		inst = Jump{Cond: Cond(op - OP_JMP), B: b, C: c, Disp: disp}
	case OP_XCHG:
		zeroA()
		zeroD()
		inst = Xchg{B: b, C: c}
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_AND, OP_OR, OP_XOR, OP_SHL, OP_SHR:
		zeroD()
		inst = Alu{Op: op, A: a, B: b, C: c}
	case OP_NOT:
		zeroC()
		zeroD()
		inst = Not{A: a, B: b}
	case OP_ST:
		zeroB()
		inst = Store{A: a, B: b, C: c, Disp: disp}
	case OP_ST_IND:
		zeroB()
		inst = StoreIndirect{A: a, B: b, C: c, Disp: disp}
	case OP_PUSH:
		check.require(a == REG_SP, ErrOperandA)
		zeroB()
		check.require(disp == -4, ErrOperandDisp)
		inst = Push{C: c}
	case OP_POP:
		check.require(b == REG_SP, ErrOperandB)
		zeroC()
		check.require(disp == 4, ErrOperandDisp)
		inst = Pop{A: a}
	case OP_POP_CSR:
		check.require(Csr(a).Valid(), ErrOperandCsr)
		check.require(b == REG_SP, ErrOperandB)
		zeroC()
		check.require(disp == 4, ErrOperandDisp)
		inst = PopCsr{A: Csr(a)}
	case OP_CSRRD:
		check.require(Csr(b).Valid(), ErrOperandCsr)
		zeroC()
		zeroD()
		inst = CsrRead{A: a, B: Csr(b)}
	case OP_CSRWR:
		check.require(Csr(a).Valid(), ErrOperandCsr)
		zeroC()
		zeroD()
		inst = CsrWrite{A: Csr(a), B: b}
	case OP_MOV:
		zeroC()
		zeroD()
		inst = Move{A: a, B: b}
	case OP_LD:
		inst = Load{A: a, B: b, C: c, Disp: disp}
	default:
		check = append(check, ErrOpcodeInvalid)
	}

	if len(check) != 0 {
		inst = nil
		err = &ErrDecode{Code: code, Err: errors.Join(check...)}
	}

	return
}

// Pair combines a decoded instruction with the following word when the two
// form an atomic idiom. ok is false if they do not.
func Pair(first Instruction, next Code) (inst Instruction, ok bool) {
	second, err := Decode(next)
	if err != nil {
		return
	}

	switch in := first.(type) {
	case Pop:
		if in.A != REG_PC {
			return
		}
		if pop, is_pop := second.(PopCsr); is_pop && pop.A == CSR_STATUS {
			inst, ok = Atomic{First: first, Second: second}, true
		}
	case Load:
		if in.B != REG_PC || in.C != REG_R0 {
			return
		}
		if ld, is_ld := second.(Load); is_ld && ld == (Load{A: in.A, B: in.A}) {
			inst, ok = Atomic{First: first, Second: second}, true
		}
	}

	return
}
