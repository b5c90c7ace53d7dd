// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"io"
	"log"
	"math"
	"strings"

	"github.com/ezrec/triad/object"
)

// Assembler is a two pass assembler producing relocatable objects.
//
// The first pass lays out sections, defines symbols and collects literal
// pool entries. The second pass encodes instructions and data, and emits
// relocations for every value not known until link time.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	obj      *object.Object
	generate bool              // Set during the second pass.
	section  uint32            // Current section, or SECTION_UNDEFINED.
	lc       uint32            // Location counter of the current section.
	counter  map[uint32]uint32 // Location counters of inactive sections.
	lineNo   int
}

// Parse assembles source text.
func (asm *Assembler) Parse(r io.Reader) (obj *object.Object, err error) {
	lines, err := Tokenize(r)
	if err != nil {
		return
	}

	return asm.Assemble(lines)
}

// Assemble translates tokenized source into a relocatable object.
func (asm *Assembler) Assemble(lines []Line) (obj *object.Object, err error) {
	asm.obj = object.New()

	asm.generate = false
	err = asm.pass(lines)
	if err != nil {
		return
	}
	err = asm.layoutPools()
	if err != nil {
		return
	}

	if asm.Verbose {
		log.Printf("asm: layout: %d sections, %d symbols", len(asm.obj.Sections), len(asm.obj.Symbols))
	}

	asm.generate = true
	err = asm.pass(lines)
	if err != nil {
		return
	}

	err = asm.writePools()
	if err != nil {
		return
	}

	if asm.Verbose {
		log.Printf("asm: generate: %d relocations", len(asm.obj.Relocations))
	}

	obj = asm.obj
	return
}

// pass walks every statement once.
func (asm *Assembler) pass(lines []Line) (err error) {
	asm.section = object.SECTION_UNDEFINED
	asm.lc = 0
	asm.counter = map[uint32]uint32{}

	for _, line := range lines {
		asm.lineNo = line.LineNo

		var end bool
		end, err = asm.statement(&line)
		if err != nil {
			err = ErrSyntax{LineNo: line.LineNo, Line: line.Text, Err: err}
			return
		}
		if end {
			break
		}
	}

	asm.closeSection()
	return
}

func (asm *Assembler) statement(line *Line) (end bool, err error) {
	if len(line.Label) != 0 && !asm.generate {
		err = asm.defineLabel(line.Label)
		if err != nil {
			return
		}
	}

	switch {
	case len(line.Name) == 0:
	case line.IsDirective():
		end, err = asm.directive(line)
	default:
		err = asm.instruction(line)
	}

	return
}

// current returns the active section.
func (asm *Assembler) current() (sec *object.Section, err error) {
	if asm.section == object.SECTION_UNDEFINED {
		err = ErrSectionMissing
		return
	}

	sec = asm.obj.Sections[asm.section]
	return
}

// advance moves the location counter without writing.
func (asm *Assembler) advance(size uint64) (err error) {
	if uint64(asm.lc)+size > math.MaxUint32 {
		err = ErrSectionOverflow
		return
	}
	asm.lc += uint32(size)
	return
}

// emit appends data at the location counter. Nothing is written during
// the first pass.
func (asm *Assembler) emit(data []byte) (err error) {
	lc := asm.lc
	err = asm.advance(uint64(len(data)))
	if err != nil {
		return
	}
	if asm.generate {
		asm.obj.Sections[asm.section].Data.SetBytes(lc, data)
	}
	return
}

func (asm *Assembler) emitWord(value int32) (err error) {
	return asm.emit([]byte{byte(value), byte(value >> 8), byte(value >> 16), byte(value >> 24)})
}

func (asm *Assembler) closeSection() {
	if asm.section == object.SECTION_UNDEFINED {
		return
	}

	asm.counter[asm.section] = asm.lc
	if !asm.generate {
		asm.obj.Sections[asm.section].Length = asm.lc
	}
	asm.section = object.SECTION_UNDEFINED
}

func (asm *Assembler) openSection(name string) (err error) {
	asm.closeSection()

	index, ok := asm.obj.SectionIndex(name)
	if ok && index <= object.SECTION_ABSOLUTE {
		err = ErrDirectiveArgs
		return
	}

	if !ok {
		if _, exists := asm.obj.Lookup(name); exists {
			err = &ErrSymbol{Name: name, Err: ErrSymbolRedefined}
			return
		}
		index = asm.obj.AddSection(name)
		if asm.Verbose {
			log.Printf("asm: section %v", name)
		}
	}

	asm.section = index
	asm.lc = asm.counter[index]
	return
}

// defineLabel binds a label to the location counter.
func (asm *Assembler) defineLabel(name string) (err error) {
	if asm.section == object.SECTION_UNDEFINED {
		err = ErrSectionMissing
		return
	}

	index, ok := asm.obj.Lookup(name)
	if !ok {
		asm.obj.AddSymbol(object.Symbol{
			Name:    name,
			Section: asm.section,
			Value:   int32(asm.lc),
			Defined: true,
		})
		return
	}

	sym := &asm.obj.Symbols[index]
	if sym.Defined || sym.External {
		err = &ErrSymbol{Name: name, Err: ErrSymbolRedefined}
		return
	}

	sym.Section = asm.section
	sym.Value = int32(asm.lc)
	sym.Defined = true

	return
}

// reference resolves a symbol used as a 32-bit value at offset of the
// current section. Absolute symbols return their value; everything else
// emits a relocation and returns 0.
func (asm *Assembler) reference(section uint32, offset uint32, name string) (value int32, err error) {
	index, ok := asm.obj.Lookup(name)
	if !ok {
		err = &ErrSymbol{Name: name, Err: ErrSymbolUndefined}
		return
	}

	sym := asm.obj.Symbols[index]
	switch {
	case sym.Defined && sym.Absolute():
		value = sym.Value
	case sym.Global || sym.External:
		asm.obj.Relocations = append(asm.obj.Relocations, object.Relocation{
			Section: section,
			Offset:  offset,
			Symbol:  index,
			Type:    object.RELOC_ABS32,
		})
	case sym.Defined:
		// Local symbols are relative to their section.
		secsym, _ := asm.obj.SectionSymbol(sym.Section)
		asm.obj.Relocations = append(asm.obj.Relocations, object.Relocation{
			Section: section,
			Offset:  offset,
			Symbol:  secsym,
			Addend:  sym.Value,
			Type:    object.RELOC_ABS32,
		})
	default:
		err = &ErrSymbol{Name: name, Err: ErrSymbolUndefined}
	}

	return
}

// layoutPools places each literal pool after its section's code, and
// turns undefined globals into imports.
func (asm *Assembler) layoutPools() (err error) {
	for n := range asm.obj.Symbols {
		sym := &asm.obj.Symbols[n]
		if sym.Global && !sym.Defined {
			sym.External = true
		}
	}

	for _, sec := range asm.obj.Sections {
		if uint64(sec.Length)+uint64(len(sec.Pool)*object.LITERAL_SIZE) > math.MaxUint32 {
			err = fmt.Errorf("%w: %v", ErrSectionOverflow, sec.Name)
			return
		}
		for n := range sec.Pool {
			sec.Pool[n].Location = sec.Length + uint32(n*object.LITERAL_SIZE)
		}
	}

	return
}

// writePools serializes every literal pool, extending its section.
func (asm *Assembler) writePools() (err error) {
	for index, sec := range asm.obj.Sections {
		for _, lit := range sec.Pool {
			value := lit.Value
			if len(lit.Symbol) != 0 {
				value, err = asm.reference(uint32(index), lit.Location, lit.Symbol)
				if err != nil {
					err = ErrSyntax{LineNo: lit.LineNo, Line: lit.Text, Err: err}
					return
				}
			}
			sec.Data.SetWord(lit.Location, uint32(value))
		}
		sec.Length += uint32(len(sec.Pool) * object.LITERAL_SIZE)
	}

	return
}

// pool returns the pc relative displacement of a literal pool entry,
// registering the entry during the first pass.
func (asm *Assembler) pool(op Operand) (disp int32, err error) {
	sec, err := asm.current()
	if err != nil {
		return
	}

	if !asm.generate {
		sec.AddLiteral(object.Literal{
			Text:   op.Key(),
			Symbol: op.Symbol,
			Value:  op.Value,
			LineNo: asm.lineNo,
		})
		return
	}

	index, ok := sec.Literal(op.Key())
	if !ok {
		err = ErrOperandInvalid
		return
	}

	disp = int32(sec.Pool[index].Location) - int32(asm.lc) - CODE_SIZE
	if !DispValid(disp) {
		err = ErrDisplacementRange
	}

	return
}

// displacement returns the constant offset of a register indirect operand.
func (asm *Assembler) displacement(op Operand) (disp int32, err error) {
	disp = op.Value

	if len(op.Symbol) != 0 {
		if !asm.generate {
			return 0, nil
		}

		index, ok := asm.obj.Lookup(op.Symbol)
		switch {
		case !ok || !asm.obj.Symbols[index].Defined:
			err = &ErrSymbol{Name: op.Symbol, Err: ErrSymbolUndefined}
		case !asm.obj.Symbols[index].Absolute():
			err = &ErrSymbol{Name: op.Symbol, Err: ErrSymbolNotAbsolute}
		}
		if err != nil {
			return
		}
		disp = asm.obj.Symbols[index].Value
	}

	if !DispValid(disp) {
		err = ErrDisplacementRange
	}

	return
}

// instruction encodes one instruction statement.
func (asm *Assembler) instruction(line *Line) (err error) {
	_, err = asm.current()
	if err != nil {
		return
	}

	encode, ok := mnemonics[line.Name]
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	ops := make([]Operand, len(line.Operands))
	for n, word := range line.Operands {
		ops[n], err = parseOperand(word)
		if err != nil {
			return
		}
	}

	inst, err := encode(asm, ops)
	if err != nil {
		return
	}

	for _, code := range inst.Codes() {
		err = asm.emit(code[:])
		if err != nil {
			return
		}
	}

	return
}

// names splits a directive's operands into symbol names.
func names(line *Line) (list []string, err error) {
	if len(line.Operands) == 0 {
		err = ErrDirectiveArgs
		return
	}
	for _, name := range line.Operands {
		if !IsIdentifier(name) {
			err = ErrDirectiveArgs
			return
		}
	}

	list = line.Operands
	return
}

// directive processes one assembler directive.
func (asm *Assembler) directive(line *Line) (end bool, err error) {
	switch line.Name {
	case ".global":
		err = asm.dirGlobal(line)
	case ".extern":
		err = asm.dirExtern(line)
	case ".section":
		if len(line.Operands) != 1 || !IsIdentifier(line.Operands[0]) {
			err = ErrDirectiveArgs
			return
		}
		err = asm.openSection(line.Operands[0])
	case ".word":
		err = asm.dirWord(line)
	case ".skip":
		err = asm.dirSkip(line)
	case ".ascii":
		err = asm.dirAscii(line)
	case ".equ":
		err = asm.dirEquate(line)
	case ".end":
		end = true
	default:
		err = ErrDirectiveInvalid
	}

	return
}

func (asm *Assembler) dirGlobal(line *Line) (err error) {
	list, err := names(line)
	if err != nil || asm.generate {
		return
	}

	for _, name := range list {
		index, ok := asm.obj.Lookup(name)
		if ok {
			asm.obj.Symbols[index].Global = true
			continue
		}
		asm.obj.AddSymbol(object.Symbol{
			Name:    name,
			Section: object.SECTION_UNDEFINED,
			Global:  true,
		})
	}

	return
}

func (asm *Assembler) dirExtern(line *Line) (err error) {
	list, err := names(line)
	if err != nil || asm.generate {
		return
	}

	for _, name := range list {
		index, ok := asm.obj.Lookup(name)
		if !ok {
			asm.obj.AddSymbol(object.Symbol{
				Name:     name,
				Section:  object.SECTION_UNDEFINED,
				Global:   true,
				External: true,
			})
			continue
		}

		sym := &asm.obj.Symbols[index]
		if sym.Defined {
			err = &ErrSymbol{Name: name, Err: ErrExternDefined}
			return
		}
		sym.Global = true
		sym.External = true
	}

	return
}

func (asm *Assembler) dirWord(line *Line) (err error) {
	_, err = asm.current()
	if err != nil {
		return
	}
	if len(line.Operands) == 0 {
		err = ErrDirectiveArgs
		return
	}

	for _, word := range line.Operands {
		value, symbol, perr := parseValue(word)
		if perr != nil {
			err = perr
			return
		}
		if len(symbol) != 0 && asm.generate {
			value, err = asm.reference(asm.section, asm.lc, symbol)
			if err != nil {
				return
			}
		}
		err = asm.emitWord(value)
		if err != nil {
			return
		}
	}

	return
}

func (asm *Assembler) dirSkip(line *Line) (err error) {
	_, err = asm.current()
	if err != nil {
		return
	}
	if len(line.Operands) != 1 {
		err = ErrDirectiveArgs
		return
	}

	size, err := parseNumber(line.Operands[0])
	if err != nil {
		return
	}
	if size < 0 {
		err = ErrDirectiveArgs
		return
	}

	// Skipped bytes read back as 0.
	err = asm.advance(uint64(size))
	return
}

func (asm *Assembler) dirAscii(line *Line) (err error) {
	_, err = asm.current()
	if err != nil {
		return
	}
	if len(line.Operands) != 1 {
		err = ErrDirectiveArgs
		return
	}

	quoted := line.Operands[0]
	if len(quoted) < 2 || quoted[0] != '"' || quoted[len(quoted)-1] != '"' {
		err = ErrStringInvalid
		return
	}

	err = asm.emit([]byte(quoted[1 : len(quoted)-1]))
	if err != nil {
		return
	}

	// Pad the location counter to the next word.
	err = asm.advance(uint64((CODE_SIZE - asm.lc%CODE_SIZE) % CODE_SIZE))
	return
}

func (asm *Assembler) dirEquate(line *Line) (err error) {
	if len(line.Operands) != 2 || !IsIdentifier(line.Operands[0]) {
		err = ErrDirectiveArgs
		return
	}
	if asm.generate {
		return
	}

	name := line.Operands[0]
	index, ok := asm.obj.Lookup(name)
	if ok {
		sym := &asm.obj.Symbols[index]
		switch {
		case sym.External:
			err = &ErrSymbol{Name: name, Err: ErrEquateExternal}
		case sym.Defined:
			err = &ErrSymbol{Name: name, Err: ErrEquateRedefined}
		}
		if err != nil {
			return
		}
	}

	value, err := asm.evalExpression(strings.TrimSpace(line.Operands[1]))
	if err != nil {
		return
	}

	if !ok {
		index = asm.obj.AddSymbol(object.Symbol{Name: name})
	}

	sym := &asm.obj.Symbols[index]
	sym.Section = object.SECTION_ABSOLUTE
	sym.Value = value
	sym.Defined = true

	if asm.Verbose {
		log.Printf("asm: .equ %v = %d", name, value)
	}

	return
}
