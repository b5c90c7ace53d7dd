package cpu

import (
	"regexp"
	"strconv"
	"strings"
)

// OperandKind is the addressing form of an instruction operand.
type OperandKind int

const (
	OPERAND_IMMEDIATE = OperandKind(0) // $value
	OPERAND_MEMORY    = OperandKind(1) // value
	OPERAND_REGISTER  = OperandKind(2) // %reg
	OPERAND_CSR       = OperandKind(3) // %csr
	OPERAND_INDIRECT  = OperandKind(4) // [%reg + value]
)

// Operand is a parsed instruction operand.
type Operand struct {
	Kind   OperandKind
	Reg    Reg    // Register, or base register when indirect.
	Csr    Csr    // Control register.
	Symbol string // Referenced symbol; empty for a literal.
	Value  int32  // Literal value.
}

// Key returns the literal pool text of the operand's value.
func (op *Operand) Key() string {
	if op.Symbol != "" {
		return op.Symbol
	}
	return strconv.FormatInt(int64(op.Value), 10)
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var regMap = map[string]Reg{
	"sp": REG_SP,
	"pc": REG_PC,
}

var csrMap = map[string]Csr{
	"status":  CSR_STATUS,
	"handler": CSR_HANDLER,
	"cause":   CSR_CAUSE,
}

// IsIdentifier returns true if word is a valid symbol name.
func IsIdentifier(word string) bool {
	return identRe.MatchString(word)
}

// parseNumber parses a decimal, 0x, 0o or 0b literal which fits in 32 bits.
func parseNumber(word string) (value int32, err error) {
	v64, err := strconv.ParseInt(word, 0, 64)
	if err != nil || v64 < -0x8000_0000 || v64 > 0xffff_ffff {
		err = ErrParseNumber(word)
		return
	}

	value = int32(uint32(v64))
	return
}

// parseValue parses a literal or a symbol name.
func parseValue(word string) (value int32, symbol string, err error) {
	word = strings.TrimSpace(word)
	if IsIdentifier(word) {
		symbol = word
		return
	}

	value, err = parseNumber(word)
	return
}

// parseRegister parses %r0..%r15, %sp or %pc.
func parseRegister(word string) (reg Reg, err error) {
	name, ok := strings.CutPrefix(strings.TrimSpace(word), "%")
	if !ok {
		err = ErrRegisterInvalid
		return
	}

	reg, ok = regMap[name]
	if ok {
		return
	}

	num, ok := strings.CutPrefix(name, "r")
	if ok {
		var n uint64
		n, err = strconv.ParseUint(num, 10, 8)
		if err == nil && n < REG_COUNT {
			reg = Reg(n)
			return
		}
	}

	err = ErrRegisterInvalid
	return
}

// parseOperand parses one instruction operand.
func parseOperand(word string) (op Operand, err error) {
	word = strings.TrimSpace(word)

	switch {
	case len(word) == 0:
		err = ErrOperandInvalid
	case word[0] == '$':
		op.Kind = OPERAND_IMMEDIATE
		op.Value, op.Symbol, err = parseValue(word[1:])
	case word[0] == '%':
		if csr, ok := csrMap[word[1:]]; ok {
			op.Kind = OPERAND_CSR
			op.Csr = csr
			return
		}
		op.Kind = OPERAND_REGISTER
		op.Reg, err = parseRegister(word)
	case word[0] == '[':
		inner, ok := strings.CutSuffix(word[1:], "]")
		if !ok {
			err = ErrOperandInvalid
			return
		}
		op.Kind = OPERAND_INDIRECT
		base, offset, plus := strings.Cut(inner, "+")
		negate := false
		if !plus {
			base, offset, negate = strings.Cut(inner, "-")
		}
		op.Reg, err = parseRegister(base)
		if err != nil || !(plus || negate) {
			return
		}
		op.Value, op.Symbol, err = parseValue(offset)
		if negate {
			if op.Symbol != "" {
				err = ErrOperandInvalid
			}
			op.Value = -op.Value
		}
	default:
		op.Kind = OPERAND_MEMORY
		op.Value, op.Symbol, err = parseValue(word)
	}

	return
}
