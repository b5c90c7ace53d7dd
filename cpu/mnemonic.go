package cpu

// encoder builds the instruction for a mnemonic from its operands.
type encoder func(asm *Assembler, ops []Operand) (Instruction, error)

var mnemonics = map[string]encoder{
	"halt":  fixed(Halt{}),
	"int":   fixed(Int{}),
	"iret":  fixed(Atomic{First: Pop{A: REG_PC}, Second: PopCsr{A: CSR_STATUS}}),
	"ret":   fixed(Pop{A: REG_PC}),
	"call":  encodeCall,
	"jmp":   encodeJump(COND_ALWAYS),
	"beq":   encodeJump(COND_EQ),
	"bne":   encodeJump(COND_NE),
	"bgt":   encodeJump(COND_GT),
	"push":  encodePush,
	"pop":   encodePop,
	"xchg":  encodeXchg,
	"add":   encodeAlu(OP_ADD),
	"sub":   encodeAlu(OP_SUB),
	"mul":   encodeAlu(OP_MUL),
	"div":   encodeAlu(OP_DIV),
	"and":   encodeAlu(OP_AND),
	"or":    encodeAlu(OP_OR),
	"xor":   encodeAlu(OP_XOR),
	"shl":   encodeAlu(OP_SHL),
	"shr":   encodeAlu(OP_SHR),
	"not":   encodeNot,
	"ld":    encodeLoad,
	"st":    encodeStore,
	"csrrd": encodeCsrRead,
	"csrwr": encodeCsrWrite,
}

// expect checks the operand count and addressing forms.
func expect(ops []Operand, kinds ...OperandKind) (err error) {
	if len(ops) != len(kinds) {
		return ErrOperandCount
	}
	for n, kind := range kinds {
		if ops[n].Kind != kind {
			return ErrOperandInvalid
		}
	}
	return
}

func fixed(inst Instruction) encoder {
	return func(asm *Assembler, ops []Operand) (Instruction, error) {
		if len(ops) != 0 {
			return nil, ErrOperandCount
		}
		return inst, nil
	}
}

func encodeCall(asm *Assembler, ops []Operand) (inst Instruction, err error) {
	err = expect(ops, OPERAND_MEMORY)
	if err != nil {
		return
	}

	disp, err := asm.pool(ops[0])
	if err != nil {
		return
	}

	inst = Call{Disp: disp}
	return
}

func encodeJump(cond Cond) encoder {
	return func(asm *Assembler, ops []Operand) (inst Instruction, err error) {
		var b, c Reg
		var dest Operand
		if cond == COND_ALWAYS {
			err = expect(ops, OPERAND_MEMORY)
			if err != nil {
				return
			}
			dest = ops[0]
		} else {
			err = expect(ops, OPERAND_REGISTER, OPERAND_REGISTER, OPERAND_MEMORY)
			if err != nil {
				return
			}
			b, c, dest = ops[0].Reg, ops[1].Reg, ops[2]
		}

		disp, err := asm.pool(dest)
		if err != nil {
			return
		}

		inst = Jump{Cond: cond, B: b, C: c, Disp: disp}
		return
	}
}

func encodePush(asm *Assembler, ops []Operand) (inst Instruction, err error) {
	err = expect(ops, OPERAND_REGISTER)
	if err == nil {
		inst = Push{C: ops[0].Reg}
	}
	return
}

func encodePop(asm *Assembler, ops []Operand) (inst Instruction, err error) {
	err = expect(ops, OPERAND_REGISTER)
	if err == nil {
		inst = Pop{A: ops[0].Reg}
	}
	return
}

func encodeNot(asm *Assembler, ops []Operand) (inst Instruction, err error) {
	err = expect(ops, OPERAND_REGISTER)
	if err == nil {
		inst = Not{A: ops[0].Reg, B: ops[0].Reg}
	}
	return
}

// encodeXchg encodes xchg %src, %dst.
func encodeXchg(asm *Assembler, ops []Operand) (inst Instruction, err error) {
	err = expect(ops, OPERAND_REGISTER, OPERAND_REGISTER)
	if err == nil {
		inst = Xchg{B: ops[0].Reg, C: ops[1].Reg}
	}
	return
}

// encodeAlu encodes op %src, %dst as dst = dst op src.
func encodeAlu(op Opcode) encoder {
	return func(asm *Assembler, ops []Operand) (inst Instruction, err error) {
		err = expect(ops, OPERAND_REGISTER, OPERAND_REGISTER)
		if err == nil {
			inst = Alu{Op: op, A: ops[1].Reg, B: ops[1].Reg, C: ops[0].Reg}
		}
		return
	}
}

// encodeLoad encodes ld src, %dst.
func encodeLoad(asm *Assembler, ops []Operand) (inst Instruction, err error) {
	if len(ops) != 2 {
		err = ErrOperandCount
		return
	}
	if ops[1].Kind != OPERAND_REGISTER {
		err = ErrOperandInvalid
		return
	}

	src, dst := ops[0], ops[1].Reg

	var disp int32
	switch src.Kind {
	case OPERAND_IMMEDIATE:
		disp, err = asm.pool(src)
		inst = Load{A: dst, B: REG_PC, Disp: disp}
	case OPERAND_MEMORY:
		disp, err = asm.pool(src)
		inst = Atomic{
			First:  Load{A: dst, B: REG_PC, Disp: disp},
			Second: Load{A: dst, B: dst},
		}
	case OPERAND_REGISTER:
		inst = Move{A: dst, B: src.Reg}
	case OPERAND_INDIRECT:
		disp, err = asm.displacement(src)
		inst = Load{A: dst, B: src.Reg, Disp: disp}
	default:
		err = ErrOperandInvalid
	}

	if err != nil {
		inst = nil
	}

	return
}

// encodeStore encodes st %src, dst.
func encodeStore(asm *Assembler, ops []Operand) (inst Instruction, err error) {
	if len(ops) != 2 {
		err = ErrOperandCount
		return
	}
	if ops[0].Kind != OPERAND_REGISTER {
		err = ErrOperandInvalid
		return
	}

	src, dst := ops[0].Reg, ops[1]

	var disp int32
	switch dst.Kind {
	case OPERAND_MEMORY:
		disp, err = asm.pool(dst)
		inst = StoreIndirect{A: REG_PC, C: src, Disp: disp}
	case OPERAND_REGISTER:
		inst = Move{A: dst.Reg, B: src}
	case OPERAND_INDIRECT:
		disp, err = asm.displacement(dst)
		inst = Store{A: dst.Reg, C: src, Disp: disp}
	default:
		err = ErrOperandInvalid
	}

	if err != nil {
		inst = nil
	}

	return
}

// encodeCsrRead encodes csrrd %csr, %dst.
func encodeCsrRead(asm *Assembler, ops []Operand) (inst Instruction, err error) {
	err = expect(ops, OPERAND_CSR, OPERAND_REGISTER)
	if err == nil {
		inst = CsrRead{A: ops[1].Reg, B: ops[0].Csr}
	}
	return
}

// encodeCsrWrite encodes csrwr %src, %csr.
func encodeCsrWrite(asm *Assembler, ops []Operand) (inst Instruction, err error) {
	err = expect(ops, OPERAND_REGISTER, OPERAND_CSR)
	if err == nil {
		inst = CsrWrite{A: ops[1].Csr, B: ops[0].Reg}
	}
	return
}
