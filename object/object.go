// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package object is the relocatable object model shared by the assembler
// and the linker, and the executable image consumed by the emulator.
//
// An Object holds three append-only tables. Symbols and sections are
// addressed by their index; indexes 0 and 1 of both tables are reserved for
// the undefined and absolute entries.
package object

import (
	"github.com/ezrec/triad/internal"
)

// Reserved section and symbol indexes.
const (
	SECTION_UNDEFINED = uint32(0) // UNDEFINED
	SECTION_ABSOLUTE  = uint32(1) // ABSOLUTE

	SYMBOL_UND = uint32(0) // UND
	SYMBOL_ABS = uint32(1) // ABS
)

// Reserved names.
const (
	NAME_UNDEFINED = "UNDEFINED"
	NAME_ABSOLUTE  = "ABSOLUTE"
	NAME_UND       = "UND"
	NAME_ABS       = "ABS"
)

// LITERAL_SIZE is the size in bytes of a literal pool entry.
const LITERAL_SIZE = 4

// Symbol is an entry of the symbol table.
type Symbol struct {
	Name     string
	Section  uint32 // Owning section index.
	Value    int32  // Section relative offset, or constant when absolute.
	Defined  bool
	External bool
	Global   bool
}

// Absolute returns true if the symbol is a constant.
func (sym *Symbol) Absolute() bool {
	return sym.Section == SECTION_ABSOLUTE
}

// Literal is a literal pool entry.
type Literal struct {
	Text     string // Source text, used to deduplicate entries.
	Symbol   string // Name of the referenced symbol, or empty for a constant.
	Value    int32  // Constant value when Symbol is empty.
	Location uint32 // Section offset assigned after layout.
	LineNo   int    // First source line referencing the entry.
}

// Section is a named region of code and data.
type Section struct {
	Name   string
	Base   int32           // Offset inside the linked aggregate, set when linking.
	Length uint32          // Length in bytes.
	Data   internal.Sparse // Written bytes, by section offset.
	Pool   []Literal       // Literal pool, in order of first reference.
}

// NewSection creates an empty section.
func NewSection(name string) *Section {
	return &Section{
		Name: name,
		Data: internal.Sparse{},
	}
}

// Literal finds a pool entry by its source text.
func (sec *Section) Literal(text string) (index int, ok bool) {
	for index = range sec.Pool {
		if sec.Pool[index].Text == text {
			ok = true
			return
		}
	}

	index = -1
	return
}

// AddLiteral adds a pool entry, unless an entry with the same text exists.
func (sec *Section) AddLiteral(lit Literal) (index int) {
	index, ok := sec.Literal(lit.Text)
	if ok {
		return
	}

	index = len(sec.Pool)
	sec.Pool = append(sec.Pool, lit)
	return
}

// Bytes returns the dense contents of the section.
func (sec *Section) Bytes() []byte {
	return sec.Data.Bytes(0, sec.Length)
}

// RelocType is the kind of patch a relocation applies.
type RelocType int

//go:generate go tool stringer -linecomment -type=RelocType
const (
	RELOC_ABS32 = RelocType(0) // abs32
)

// Relocation is a deferred patch of a 32-bit field.
type Relocation struct {
	Section uint32 // Section containing the field.
	Offset  uint32 // Section offset of the field.
	Symbol  uint32 // Symbol index the field refers to.
	Addend  int32
	Type    RelocType
}

// Object is a relocatable object.
type Object struct {
	Symbols     []Symbol
	Sections    []*Section
	Relocations []Relocation
}

// New creates an object containing only the reserved entries.
func New() (obj *Object) {
	obj = &Object{
		Symbols: []Symbol{
			{Name: NAME_UND, Section: SECTION_UNDEFINED, Defined: true},
			{Name: NAME_ABS, Section: SECTION_ABSOLUTE, Defined: true},
		},
		Sections: []*Section{
			NewSection(NAME_UNDEFINED),
			NewSection(NAME_ABSOLUTE),
		},
	}

	return
}

// Lookup finds the first symbol with the given name.
func (obj *Object) Lookup(name string) (index uint32, ok bool) {
	for n := range obj.Symbols {
		if obj.Symbols[n].Name == name {
			index = uint32(n)
			ok = true
			return
		}
	}

	return
}

// AddSymbol appends a symbol, returning its index.
func (obj *Object) AddSymbol(sym Symbol) (index uint32) {
	index = uint32(len(obj.Symbols))
	obj.Symbols = append(obj.Symbols, sym)
	return
}

// SectionIndex finds a section by name.
func (obj *Object) SectionIndex(name string) (index uint32, ok bool) {
	for n, sec := range obj.Sections {
		if sec.Name == name {
			index = uint32(n)
			ok = true
			return
		}
	}

	return
}

// AddSection appends a section and its defining local symbol.
func (obj *Object) AddSection(name string) (index uint32) {
	index = uint32(len(obj.Sections))
	obj.Sections = append(obj.Sections, NewSection(name))
	obj.AddSymbol(Symbol{
		Name:    name,
		Section: index,
		Defined: true,
	})

	return
}

// IsSectionSymbol returns true if the symbol names its own section.
func (obj *Object) IsSectionSymbol(index uint32) bool {
	if int(index) >= len(obj.Symbols) {
		return false
	}
	sym := &obj.Symbols[index]
	if sym.Section <= SECTION_ABSOLUTE || int(sym.Section) >= len(obj.Sections) {
		return false
	}
	return obj.Sections[sym.Section].Name == sym.Name
}

// SectionSymbol returns the symbol index naming a section.
func (obj *Object) SectionSymbol(section uint32) (index uint32, ok bool) {
	for n := range obj.Symbols {
		if obj.Symbols[n].Section == section && obj.IsSectionSymbol(uint32(n)) {
			index = uint32(n)
			ok = true
			return
		}
	}

	return
}
