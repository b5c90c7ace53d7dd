package cpu

import (
	"errors"

	"github.com/ezrec/triad/translate"
)

var f = translate.From

var (
	// Cpu faults
	ErrMemoryUnmapped = errors.New(f("unmapped memory read"))
	ErrMemoryBounds   = errors.New(f("write out of bounds"))
	ErrMemoryMmio     = errors.New(f("write to reserved i/o address"))
	ErrStackEmpty     = errors.New(f("stack empty"))
	ErrStackFull      = errors.New(f("stack full"))
	ErrDivideZero     = errors.New(f("division by zero"))
	ErrHalted         = errors.New(f("cpu halted"))

	// Instruction decode errors
	ErrOpcodeInvalid = errors.New(f("opcode invalid"))
	ErrOperandA      = errors.New(f("operand A illegal"))
	ErrOperandB      = errors.New(f("operand B illegal"))
	ErrOperandC      = errors.New(f("operand C illegal"))
	ErrOperandDisp   = errors.New(f("displacement illegal"))
	ErrOperandCsr    = errors.New(f("control register invalid"))

	// Assembler errors
	ErrSectionMissing     = errors.New(f("outside of a .section"))
	ErrSymbolRedefined    = errors.New(f("symbol redefined"))
	ErrSymbolUndefined    = errors.New(f("symbol undefined"))
	ErrSymbolExternal     = errors.New(f("symbol is external"))
	ErrSymbolNotAbsolute  = errors.New(f("symbol is not an absolute constant"))
	ErrExternDefined      = errors.New(f(".extern of a defined symbol"))
	ErrEquateRedefined    = errors.New(f(".equ redefines a symbol"))
	ErrEquateExternal     = errors.New(f(".equ of an external symbol"))
	ErrDirectiveInvalid   = errors.New(f("directive invalid"))
	ErrDirectiveArgs      = errors.New(f("directive arguments invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrOperandCount       = errors.New(f("wrong number of operands"))
	ErrOperandInvalid     = errors.New(f("operand invalid"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrDisplacementRange  = errors.New(f("displacement out of range"))
	ErrStringInvalid      = errors.New(f("string literal invalid"))
	ErrSectionOverflow    = errors.New(f("section exceeds the address space"))
)

// ErrDecode reports an instruction word that failed to decode.
type ErrDecode struct {
	Code Code
	Err  error
}

func (err *ErrDecode) Error() string {
	return f("bad opcode %v: %v", err.Code, err.Err)
}

func (err *ErrDecode) Unwrap() error {
	return err.Err
}

// ErrFault reports a fault and the address of the faulting instruction.
type ErrFault struct {
	Pc  uint32
	Err error
}

func (err *ErrFault) Error() string {
	return f("fault at 0x%08x: %v", err.Pc, err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

// ErrSyntax reports the source line of an assembler error.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("'%v' is not a valid expression", string(err))
}

// ErrSymbol attaches a symbol name to a symbol error.
type ErrSymbol struct {
	Name string
	Err  error
}

func (err *ErrSymbol) Error() string {
	return f("%v: %v", err.Name, err.Err)
}

func (err *ErrSymbol) Unwrap() error {
	return err.Err
}
