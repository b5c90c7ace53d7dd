package cpu

import (
	"fmt"
)

// Execute performs the semantics of a decoded instruction.
// pc must already point past the instruction's first word.
func (cpu *Cpu) Execute(inst Instruction) (err error) {
	switch in := inst.(type) {
	case Atomic:
		return cpu.executeAtomic(in)
	case PopCsr:
		return fmt.Errorf("%w: %v", ErrOpcodeInvalid, in)
	}

	return cpu.execute(inst)
}

// executeAtomic runs both halves of a pair without yielding.
func (cpu *Cpu) executeAtomic(in Atomic) (err error) {
	err = cpu.execute(in.First)
	if err != nil {
		return
	}

	// The second word is skipped unless the first half moved pc.
	if target(in.First) != REG_PC {
		cpu.Register[REG_PC] += CODE_SIZE
	}

	switch second := in.Second.(type) {
	case PopCsr:
		var value uint32
		value, err = cpu.pop()
		if err != nil {
			return
		}
		cpu.Csr[second.A] = value
		cpu.Csr[CSR_CAUSE] = uint32(CAUSE_NONE)
	default:
		err = cpu.execute(second)
	}

	return
}

// target returns the register written by a pair's first half.
func target(inst Instruction) Reg {
	switch in := inst.(type) {
	case Pop:
		return in.A
	case Load:
		return in.A
	}
	return REG_R0
}

func (cpu *Cpu) execute(inst Instruction) (err error) {
	reg := &cpu.Register
	pc := reg[REG_PC]

	switch in := inst.(type) {
	case Halt:
		cpu.Halted = true
	case Int:
		err = cpu.interrupt(CAUSE_SOFTWARE)
	case Call:
		var dest uint32
		dest, err = cpu.Load(pc + uint32(in.Disp))
		if err == nil {
			err = cpu.push(pc)
		}
		if err == nil {
			reg[REG_PC] = dest
		}
	case Jump:
		var taken bool
		switch in.Cond {
		case COND_ALWAYS:
			taken = true
		case COND_EQ:
			taken = reg[in.B] == reg[in.C]
		case COND_NE:
			taken = reg[in.B] != reg[in.C]
		case COND_GT:
			taken = int32(reg[in.B]) > int32(reg[in.C])
		}
		if taken {
			var dest uint32
			dest, err = cpu.Load(pc + uint32(in.Disp))
			if err == nil {
				reg[REG_PC] = dest
			}
		}
	case Xchg:
		reg[in.B], reg[in.C] = reg[in.C], reg[in.B]
	case Alu:
		var value uint32
		value, err = alu(in.Op, reg[in.B], reg[in.C])
		if err == nil {
			reg[in.A] = value
		}
	case Not:
		reg[in.A] = ^reg[in.B]
	case Store:
		err = cpu.Store(reg[in.A]+reg[in.B]+uint32(in.Disp), reg[in.C])
	case StoreIndirect:
		var addr uint32
		addr, err = cpu.Load(reg[in.A] + reg[in.B] + uint32(in.Disp))
		if err == nil {
			err = cpu.Store(addr, reg[in.C])
		}
	case Push:
		err = cpu.push(reg[in.C])
	case Pop:
		var value uint32
		value, err = cpu.peek()
		if err == nil {
			reg[in.A] = value
			reg[REG_SP] += CODE_SIZE
		}
	case CsrRead:
		reg[in.A] = cpu.Csr[in.B]
	case CsrWrite:
		cpu.Csr[in.A] = reg[in.B]
	case Move:
		reg[in.A] = reg[in.B]
	case Load:
		var value uint32
		value, err = cpu.Load(reg[in.B] + reg[in.C] + uint32(in.Disp))
		if err == nil {
			reg[in.A] = value
		}
	default:
		err = fmt.Errorf("%w: %v", ErrOpcodeInvalid, inst)
	}

	return
}

// alu computes a two operand arithmetic or logic operation.
func alu(op Opcode, b, c uint32) (value uint32, err error) {
	switch op {
	case OP_ADD:
		value = b + c
	case OP_SUB:
		value = b - c
	case OP_MUL:
		value = b * c
	case OP_DIV:
		if c == 0 {
			err = ErrDivideZero
			return
		}
		value = uint32(int32(b) / int32(c))
	case OP_AND:
		value = b & c
	case OP_OR:
		value = b | c
	case OP_XOR:
		value = b ^ c
	case OP_SHL:
		value = b << c
	case OP_SHR:
		value = uint32(int32(b) >> c)
	default:
		err = ErrOpcodeInvalid
	}

	return
}
