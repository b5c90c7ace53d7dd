// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package linker

import (
	"errors"
	"fmt"
	"log"

	"github.com/ezrec/triad/object"
)

// input is one object being linked, and where its pieces went.
type input struct {
	obj     *object.Object
	section []uint32 // Aggregate index of each input section.
	symbol  []uint32 // Aggregate index of each input symbol.
}

// base returns the offset of an input section inside its aggregate.
func (in *input) base(section uint32) uint32 {
	return uint32(in.obj.Sections[section].Base)
}

// Context is a linker session.
//
// Objects are added in link order. Link then runs every step in turn;
// the steps may also be called one by one.
type Context struct {
	Verbose     bool        // If set, verbosely logs the linker actions.
	Relocatable bool        // Produce a further linkable object instead of an executable.
	Placements  []Placement // Sections pinned to virtual addresses.

	inputs  []*input
	output  *object.Object
	address []uint32 // Virtual address of each aggregate section.
	linked  bool     // Set once every step has completed.
}

// NewContext creates an empty linker session.
func NewContext() (ctx *Context) {
	ctx = &Context{}

	return
}

// Add appends objects to the link. Linking records each input section's
// Base, so an object is added to one link at a time.
func (ctx *Context) Add(objs ...*object.Object) {
	for _, obj := range objs {
		ctx.inputs = append(ctx.inputs, &input{obj: obj})
	}
}

// Link merges every added object into one.
func (ctx *Context) Link() (obj *object.Object, err error) {
	for _, step := range []func() error{
		ctx.AggregateSections,
		ctx.AllocateSections,
		ctx.AggregateSymbols,
		ctx.AggregateRelocations,
		ctx.AggregateData,
		ctx.ResolveRelocations,
	} {
		err = step()
		if err != nil {
			return
		}
	}

	obj = ctx.output
	return
}

// Address returns the virtual address assigned to an aggregated section.
func (ctx *Context) Address(section string) (addr uint32, ok bool) {
	if ctx.output == nil {
		return
	}

	index, ok := ctx.output.SectionIndex(section)
	if !ok || int(index) >= len(ctx.address) {
		ok = false
		return
	}

	addr = ctx.address[index]
	return
}

// Executable returns the placed program image of a linked executable.
// Empty sections produce no segment.
func (ctx *Context) Executable() (exe *object.Executable, err error) {
	if ctx.Relocatable {
		err = ErrRelocatable
		return
	}
	if !ctx.linked {
		_, err = ctx.Link()
		if err != nil {
			return
		}
	}

	exe = &object.Executable{}
	for index, sec := range ctx.output.Sections {
		if index <= int(object.SECTION_ABSOLUTE) || sec.Length == 0 {
			continue
		}
		exe.Segments = append(exe.Segments, object.Segment{
			Address: ctx.address[index],
			Data:    sec.Bytes(),
		})
	}
	exe.Sort()

	return
}

// AggregateSections merges input sections by name, in the order they are
// encountered, recording in each input section's Base its offset inside
// its aggregate.
func (ctx *Context) AggregateSections() (err error) {
	ctx.output = object.New()
	ctx.address = nil
	ctx.linked = false

	for _, in := range ctx.inputs {
		err = in.obj.Validate()
		if err != nil {
			return
		}

		in.section = make([]uint32, len(in.obj.Sections))

		for n, sec := range in.obj.Sections {
			index, ok := ctx.output.SectionIndex(sec.Name)
			if !ok {
				index = uint32(len(ctx.output.Sections))
				ctx.output.Sections = append(ctx.output.Sections, object.NewSection(sec.Name))
			}

			agg := ctx.output.Sections[index]
			if uint64(agg.Length)+uint64(sec.Length) > 1<<32 {
				err = fmt.Errorf("%w: %v", ErrAddressSpace, sec.Name)
				return
			}

			in.section[n] = index
			sec.Base = int32(agg.Length)
			agg.Length += sec.Length
		}
	}

	if ctx.Verbose {
		for _, sec := range ctx.output.Sections {
			log.Printf("link: section %v: %d bytes", sec.Name, sec.Length)
		}
	}

	return
}

// AllocateSections assigns virtual addresses. Pinned sections must not
// overlap; the rest are packed after the highest pinned address.
// A relocatable link leaves every section at address 0.
func (ctx *Context) AllocateSections() (err error) {
	if ctx.output == nil {
		return ErrNotLinked
	}

	sections := ctx.output.Sections
	ctx.address = make([]uint32, len(sections))

	if ctx.Relocatable {
		return
	}

	pinned := make([]bool, len(sections))
	var spans []span
	var free uint64

	for _, place := range ctx.Placements {
		index, ok := ctx.output.SectionIndex(place.Section)
		if !ok || index <= object.SECTION_ABSOLUTE {
			if ctx.Verbose {
				log.Printf("link: placement %v: no such section", place)
			}
			continue
		}
		if pinned[index] {
			err = fmt.Errorf("%w: %v", ErrPlacementDuplicate, place.Section)
			return
		}

		sp := span{Placement: place, size: sections[index].Length}
		if sp.end() > 1<<32 {
			err = fmt.Errorf("%w: %v", ErrAddressSpace, place)
			return
		}
		for _, other := range spans {
			if sp.overlaps(other) {
				err = &ErrOverlap{First: other.Placement, Second: sp.Placement}
				return
			}
		}

		spans = append(spans, sp)
		pinned[index] = true
		ctx.address[index] = place.Address
		free = max(free, sp.end())
	}

	for index, sec := range sections {
		if index <= int(object.SECTION_ABSOLUTE) || pinned[index] {
			continue
		}
		if free+uint64(sec.Length) > 1<<32 {
			err = fmt.Errorf("%w: %v", ErrAddressSpace, sec.Name)
			return
		}
		ctx.address[index] = uint32(free)
		free += uint64(sec.Length)
	}

	if ctx.Verbose {
		for index, sec := range sections {
			if index > int(object.SECTION_ABSOLUTE) {
				log.Printf("link: place %v@0x%08x", sec.Name, ctx.address[index])
			}
		}
	}

	return
}

// special returns true for symbols merged by name even when local: the
// reserved symbols, and section symbols.
func special(obj *object.Object, index uint32) bool {
	return index <= object.SYMBOL_ABS || obj.IsSectionSymbol(index)
}

// AggregateSymbols merges the symbol tables. Global and special symbols
// merge by name; locals stay file scoped. Defined symbols end up at their
// aggregate section's virtual address plus their offset in it.
func (ctx *Context) AggregateSymbols() (err error) {
	if ctx.address == nil {
		return ErrNotLinked
	}

	out := ctx.output
	out.Symbols = nil
	named := map[string]uint32{}

	for _, in := range ctx.inputs {
		in.symbol = make([]uint32, len(in.obj.Symbols))

		for n, sym := range in.obj.Symbols {
			local := !sym.Global && !sym.External && !special(in.obj, uint32(n))

			if sym.Defined && sym.Section > object.SECTION_ABSOLUTE && !in.obj.IsSectionSymbol(uint32(n)) {
				sym.Value += int32(in.base(sym.Section))
			}
			sym.Section = in.section[sym.Section]

			index, exists := named[sym.Name]
			if local || !exists {
				index = out.AddSymbol(sym)
				in.symbol[n] = index
				if !local {
					named[sym.Name] = index
				}
				continue
			}

			agg := &out.Symbols[index]
			if agg.Global && sym.Global && agg.Defined && sym.Defined {
				err = &ErrSymbol{Name: sym.Name, Err: ErrMultipleDefinition}
				return
			}

			if sym.Defined && !agg.Defined {
				agg.Section = sym.Section
				agg.Value = sym.Value
			}
			agg.Defined = agg.Defined || sym.Defined
			agg.External = agg.External || sym.External
			agg.Global = agg.Global || sym.Global

			in.symbol[n] = index
		}
	}

	var unresolved []error
	for n := range out.Symbols {
		sym := &out.Symbols[n]
		if sym.Defined {
			sym.External = false
			if sym.Section > object.SECTION_ABSOLUTE {
				sym.Value += int32(ctx.address[sym.Section])
			}
			continue
		}
		if sym.External && !ctx.Relocatable {
			unresolved = append(unresolved, &ErrSymbol{Name: sym.Name, Err: ErrUnresolved})
		}
	}

	err = errors.Join(unresolved...)
	if err != nil {
		return
	}

	if ctx.Verbose {
		for _, sym := range out.Symbols {
			log.Printf("link: symbol %v: section %v value 0x%08x", sym.Name, out.Sections[sym.Section].Name, uint32(sym.Value))
		}
	}

	return
}

// AggregateRelocations rebases every relocation into its aggregate section.
// Executable relocations carry the final value to patch in; relocatable
// ones keep the symbol value out of the addend.
func (ctx *Context) AggregateRelocations() (err error) {
	if ctx.address == nil {
		return ErrNotLinked
	}

	out := ctx.output
	out.Relocations = nil

	for _, in := range ctx.inputs {
		if len(in.symbol) != len(in.obj.Symbols) {
			return ErrNotLinked
		}

		for _, rel := range in.obj.Relocations {
			index := in.symbol[rel.Symbol]
			sym := &out.Symbols[index]

			addend := rel.Addend
			if in.obj.IsSectionSymbol(rel.Symbol) {
				addend += int32(in.base(in.obj.Symbols[rel.Symbol].Section))
			}
			switch {
			case sym.Absolute():
				addend = sym.Value
			case !ctx.Relocatable:
				addend += sym.Value
			}

			out.Relocations = append(out.Relocations, object.Relocation{
				Section: in.section[rel.Section],
				Offset:  in.base(rel.Section) + rel.Offset,
				Symbol:  index,
				Addend:  addend,
				Type:    rel.Type,
			})
		}
	}

	if ctx.Verbose {
		for _, rel := range out.Relocations {
			log.Printf("link: relocation %v+0x%x: %v %v%+d",
				out.Sections[rel.Section].Name, rel.Offset, rel.Type,
				out.Symbols[rel.Symbol].Name, rel.Addend)
		}
	}

	return
}

// AggregateData copies every input section's bytes into its aggregate.
func (ctx *Context) AggregateData() (err error) {
	if ctx.output == nil {
		return ErrNotLinked
	}

	for _, in := range ctx.inputs {
		for n, sec := range in.obj.Sections {
			agg := ctx.output.Sections[in.section[n]]
			base := uint32(sec.Base)
			for offset, value := range sec.Data.All() {
				if offset < sec.Length {
					agg.Data[base+offset] = value
				}
			}
		}
	}

	return
}

// ResolveRelocations patches each relocated field of an executable with
// its little-endian addend. Relocatable output is left untouched.
func (ctx *Context) ResolveRelocations() (err error) {
	if ctx.output == nil {
		return ErrNotLinked
	}
	if !ctx.Relocatable {
		for _, rel := range ctx.output.Relocations {
			sec := ctx.output.Sections[rel.Section]
			if uint64(rel.Offset)+object.LITERAL_SIZE > uint64(sec.Length) {
				err = fmt.Errorf("%w: %v+0x%x", ErrRelocationRange, sec.Name, rel.Offset)
				return
			}
			sec.Data.SetWord(rel.Offset, uint32(rel.Addend))
		}
	}

	ctx.linked = true
	return
}
