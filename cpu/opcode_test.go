package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeFields(t *testing.T) {
	assert := assert.New(t)

	code := MakeCode(OP_LD, 0x1, 0xf, 0x3, -2)
	assert.Equal(Code{0x92, 0x1f, 0x3f, 0xfe}, code)
	assert.Equal(OP_LD, code.Op())
	assert.Equal(uint8(1), code.A())
	assert.Equal(uint8(15), code.B())
	assert.Equal(uint8(3), code.C())
	assert.Equal(int32(-2), code.Disp())
	assert.Equal(uint32(0xfe3f1f92), code.Word())
	assert.Equal(code, CodeOf(code.Word()))
	assert.Equal("92 1f 3f fe", code.String())
}

func TestCodeRoundTrip(t *testing.T) {
	assert := assert.New(t)

	for op := range _Opcode_map {
		for disp := int32(DISP_MIN); disp <= DISP_MAX; disp++ {
			a, b, c := uint8(disp&0xf), uint8((disp>>4)&0xf), uint8((disp>>8)&0xf)
			code := MakeCode(op, a, b, c, disp)
			if code.Op() != op || code.A() != a || code.B() != b || code.C() != c || code.Disp() != disp {
				assert.Fail("round trip", "%v disp %d: %v", op, disp, code)
				return
			}
		}
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	assert := assert.New(t)

	table := []Instruction{
		Halt{},
		Int{},
		Call{Disp: DISP_MIN},
		Jump{Cond: COND_ALWAYS, Disp: DISP_MAX},
		Jump{Cond: COND_EQ, B: 1, C: 2, Disp: -1},
		Jump{Cond: COND_NE, B: 3, C: 4, Disp: 8},
		Jump{Cond: COND_GT, B: 5, C: 6, Disp: 0},
		Xchg{B: 7, C: 8},
		Alu{Op: OP_ADD, A: 1, B: 1, C: 2},
		Alu{Op: OP_SUB, A: 3, B: 4, C: 5},
		Alu{Op: OP_MUL, A: 6, B: 7, C: 8},
		Alu{Op: OP_DIV, A: 9, B: 10, C: 11},
		Alu{Op: OP_AND, A: 12, B: 13, C: 14},
		Alu{Op: OP_OR, A: 15, B: 0, C: 1},
		Alu{Op: OP_XOR, A: 2, B: 2, C: 2},
		Alu{Op: OP_SHL, A: 3, B: 3, C: 4},
		Alu{Op: OP_SHR, A: 5, B: 5, C: 6},
		Not{A: 1, B: 1},
		Store{A: 14, C: 3, Disp: -4},
		StoreIndirect{A: REG_PC, C: 2, Disp: 100},
		Push{C: 9},
		Pop{A: REG_PC},
		PopCsr{A: CSR_STATUS},
		CsrRead{A: 1, B: CSR_CAUSE},
		CsrWrite{A: CSR_HANDLER, B: 2},
		Move{A: 4, B: 5},
		Load{A: 1, B: REG_PC, C: 0, Disp: 2047},
	}

	for _, inst := range table {
		codes := inst.Codes()
		assert.Len(codes, 1, inst.String())

		got, err := Decode(codes[0])
		assert.NoError(err, inst.String())
		assert.Equal(inst, got)
	}
}

func TestDecodeIllegal(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		code Code
		err  error
	}){
		{"unknown", MakeCode(0xff, 0, 0, 0, 0), ErrOpcodeInvalid},
		{"halt_a", MakeCode(OP_HALT, 1, 0, 0, 0), ErrOperandA},
		{"int_disp", MakeCode(OP_INT, 0, 0, 0, 1), ErrOperandDisp},
		{"call_a", MakeCode(OP_CALL, 1, 0, 0, 0), ErrOperandA},
		{"call_b", MakeCode(OP_CALL, 15, 1, 0, 0), ErrOperandB},
		{"jmp_a", MakeCode(OP_JMP, 14, 0, 0, 0), ErrOperandA},
		{"bgt_a", MakeCode(OP_BGT, 0, 1, 2, 0), ErrOperandA},
		{"xchg_a", MakeCode(OP_XCHG, 1, 2, 3, 0), ErrOperandA},
		{"add_disp", MakeCode(OP_ADD, 1, 2, 3, 4), ErrOperandDisp},
		{"not_c", MakeCode(OP_NOT, 1, 1, 1, 0), ErrOperandC},
		{"st_b", MakeCode(OP_ST, 1, 1, 1, 0), ErrOperandB},
		{"sti_b", MakeCode(OP_ST_IND, 15, 2, 1, 0), ErrOperandB},
		{"push_a", MakeCode(OP_PUSH, 13, 0, 1, -4), ErrOperandA},
		{"push_disp", MakeCode(OP_PUSH, 14, 0, 1, -8), ErrOperandDisp},
		{"pop_b", MakeCode(OP_POP, 1, 13, 0, 4), ErrOperandB},
		{"pop_disp", MakeCode(OP_POP, 1, 14, 0, 8), ErrOperandDisp},
		{"popcsr_csr", MakeCode(OP_POP_CSR, 3, 14, 0, 4), ErrOperandCsr},
		{"csrrd_csr", MakeCode(OP_CSRRD, 1, 3, 0, 0), ErrOperandCsr},
		{"csrwr_csr", MakeCode(OP_CSRWR, 4, 1, 0, 0), ErrOperandCsr},
		{"csrwr_c", MakeCode(OP_CSRWR, 1, 1, 1, 0), ErrOperandC},
		{"mov_disp", MakeCode(OP_MOV, 1, 2, 0, 4), ErrOperandDisp},
	}

	for _, entry := range table {
		inst, err := Decode(entry.code)
		assert.Nil(inst, entry.name)
		assert.ErrorIs(err, entry.err, entry.name)

		var ed *ErrDecode
		assert.True(errors.As(err, &ed), entry.name)
		assert.Equal(entry.code, ed.Code, entry.name)
	}

	// Every violated field is reported.
	_, err := Decode(MakeCode(OP_HALT, 1, 2, 3, 4))
	assert.ErrorIs(err, ErrOperandA)
	assert.ErrorIs(err, ErrOperandB)
	assert.ErrorIs(err, ErrOperandC)
	assert.ErrorIs(err, ErrOperandDisp)
}

func FuzzDecode(f *testing.F) {
	for op := range _Opcode_map {
		f.Add(uint32(MakeCode(op, 0, 0, 0, 0).Word()))
		f.Add(uint32(MakeCode(op, 15, 14, 0, 4).Word()))
		f.Add(uint32(MakeCode(op, 14, 0, 3, -4).Word()))
	}

	f.Fuzz(func(t *testing.T, word uint32) {
		assert := assert.New(t)

		code := CodeOf(word)
		inst, err := Decode(code)
		if err != nil {
			assert.Nil(inst)
			return
		}

		// A decoded word re-encodes to itself.
		assert.Equal([]Code{code}, inst.Codes(), inst.String())
	})
}

func TestNames(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		value interface{ String() string }
		text  string
	}){
		{OP_HALT, "halt"},
		{OP_ST_IND, "sti"},
		{OP_POP_CSR, "popcsr"},
		{Opcode(0xee), "Opcode(238)"},
		{COND_ALWAYS, "jmp"},
		{COND_GT, "bgt"},
		{Cond(7), "Cond(7)"},
		{CAUSE_NONE, "none"},
		{CAUSE_SOFTWARE, "software"},
		{Cause(9), "Cause(9)"},
		{CSR_HANDLER, "%handler"},
		{REG_SP, "%sp"},
		{Reg(3), "%r3"},
	}

	for _, entry := range table {
		assert.Equal(entry.text, entry.value.String(), entry.text)
	}
}
