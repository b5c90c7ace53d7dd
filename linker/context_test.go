package linker

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/triad/cpu"
	"github.com/ezrec/triad/object"
)

func assemble(t *testing.T, source ...string) (obj *object.Object) {
	asm := &cpu.Assembler{}
	obj, err := asm.Parse(strings.NewReader(strings.Join(source, "\n")))
	if err != nil {
		t.Fatalf("%v", err)
	}
	return
}

func word(data []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(data[offset:])
}

func TestParsePlacement(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		text  string
		place Placement
		err   error
	}){
		{"main@0x40000000", Placement{Section: "main", Address: 0x4000_0000}, nil},
		{"_data1@0X10", Placement{Section: "_data1", Address: 0x10}, nil},
		{"main@1000", Placement{}, ErrPlacementInvalid},
		{"main@0x100000000", Placement{}, ErrPlacementInvalid},
		{"1main@0x10", Placement{}, ErrPlacementInvalid},
		{"main", Placement{}, ErrPlacementInvalid},
	}

	for _, entry := range table {
		place, err := ParsePlacement(entry.text)
		if entry.err != nil {
			assert.ErrorIs(err, entry.err, entry.text)
			continue
		}
		assert.NoError(err, entry.text)
		assert.Equal(entry.place, place, entry.text)
	}

	assert.Equal("main@0x40000000", Placement{Section: "main", Address: 0x4000_0000}.String())
}

func TestLinkMultipleDefinition(t *testing.T) {
	assert := assert.New(t)

	source := []string{
		".global f",
		".section text",
		"f: halt",
	}

	ctx := NewContext()
	ctx.Add(assemble(t, source...), assemble(t, source...))
	_, err := ctx.Link()
	assert.ErrorIs(err, ErrMultipleDefinition)

	var es *ErrSymbol
	if assert.True(errors.As(err, &es)) {
		assert.Equal("f", es.Name)
	}
}

func TestLinkExtern(t *testing.T) {
	assert := assert.New(t)

	ctx := NewContext()
	ctx.Placements = []Placement{{Section: "text", Address: 0x4000_0000}}
	ctx.Add(
		assemble(t,
			".extern f",
			".section text",
			"    call f",
			"    halt",
		),
		assemble(t,
			".global f",
			".section lib",
			"    .word 0",
			"f:  halt",
		),
	)

	obj, err := ctx.Link()
	if !assert.NoError(err) {
		return
	}

	addr, ok := ctx.Address("text")
	assert.True(ok)
	assert.Equal(uint32(0x4000_0000), addr)

	// Unpinned sections follow the highest pinned section.
	addr, ok = ctx.Address("lib")
	assert.True(ok)
	assert.Equal(uint32(0x4000_000c), addr)

	_, ok = ctx.Address("missing")
	assert.False(ok)

	index, ok := obj.Lookup("f")
	if assert.True(ok) {
		sym := obj.Symbols[index]
		assert.True(sym.Defined)
		assert.True(sym.Global)
		assert.False(sym.External)
		assert.Equal(int32(0x4000_0010), sym.Value)
	}

	exe, err := ctx.Executable()
	if !assert.NoError(err) {
		return
	}
	if !assert.Equal(2, len(exe.Segments)) {
		return
	}
	assert.Equal(uint32(0x4000_0000), exe.Segments[0].Address)
	assert.Equal(12, len(exe.Segments[0].Data))
	assert.Equal(uint32(0x4000_0010), word(exe.Segments[0].Data, 8))
	assert.Equal(uint32(0x4000_000c), exe.Segments[1].Address)
}

func TestLinkMergeSections(t *testing.T) {
	assert := assert.New(t)

	first := assemble(t,
		".section text",
		"loop: ld $x, %r1",
		"    halt",
		"x:  .word 5",
	)
	second := assemble(t,
		".section text",
		"loop: ld $y, %r2",
		"    halt",
		"y:  .word 6",
	)

	ctx := NewContext()
	ctx.Placements = []Placement{{Section: "text", Address: 0x1000}}
	ctx.Add(first, second)

	obj, err := ctx.Link()
	if !assert.NoError(err) {
		return
	}

	// Each input records where it landed in the aggregate.
	assert.Equal(int32(0), first.Sections[2].Base)
	assert.Equal(int32(16), second.Sections[2].Base)

	text, ok := obj.SectionIndex("text")
	assert.True(ok)
	assert.Equal(uint32(32), obj.Sections[text].Length)

	// Same named locals stay distinct.
	count := 0
	for _, sym := range obj.Symbols {
		if sym.Name == "loop" {
			count++
		}
	}
	assert.Equal(2, count)

	index, _ := obj.Lookup("y")
	assert.Equal(int32(0x1018), obj.Symbols[index].Value)

	if assert.Equal(2, len(obj.Relocations)) {
		assert.Equal(uint32(12), obj.Relocations[0].Offset)
		assert.Equal(int32(0x1008), obj.Relocations[0].Addend)
		assert.Equal(uint32(28), obj.Relocations[1].Offset)
		assert.Equal(int32(0x1018), obj.Relocations[1].Addend)
		assert.True(obj.IsSectionSymbol(obj.Relocations[0].Symbol))
		assert.Equal(obj.Relocations[0].Symbol, obj.Relocations[1].Symbol)
	}

	exe, err := ctx.Executable()
	if !assert.NoError(err) {
		return
	}
	data := exe.Segments[0].Data
	assert.Equal(uint32(5), word(data, 8))
	assert.Equal(uint32(0x1008), word(data, 12))
	assert.Equal(uint32(6), word(data, 24))
	assert.Equal(uint32(0x1018), word(data, 28))
}

func TestLinkOverlap(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		size string
		err  error
	}){
		{"16", &ErrOverlap{}},
		{"8", nil},
	}

	for _, entry := range table {
		ctx := NewContext()
		ctx.Placements = []Placement{
			{Section: "A", Address: 0x1000},
			{Section: "B", Address: 0x1008},
		}
		ctx.Add(assemble(t,
			".section A",
			".skip "+entry.size,
			".section B",
			".skip 16",
		))

		_, err := ctx.Link()
		if entry.err == nil {
			assert.NoError(err, entry.size)
			addr, _ := ctx.Address("B")
			assert.Equal(uint32(0x1008), addr)
			continue
		}

		var eo *ErrOverlap
		if assert.True(errors.As(err, &eo), entry.size) {
			assert.Equal("A", eo.First.Section)
			assert.Equal("B", eo.Second.Section)
		}
	}
}

func TestLinkPlacement(t *testing.T) {
	assert := assert.New(t)

	ctx := NewContext()
	ctx.Verbose = true
	ctx.Placements = []Placement{
		{Section: "data", Address: 0x2000},
		{Section: "nowhere", Address: 0x8000},
	}
	ctx.Add(assemble(t,
		".section text",
		"    ld $1, %r1",
		"    halt",
		".section empty",
		".section data",
		"    .word 1, 2",
	))

	exe, err := ctx.Executable()
	if !assert.NoError(err) {
		return
	}

	assert.Equal([]object.Segment{
		{Address: 0x2000, Data: []byte{1, 0, 0, 0, 2, 0, 0, 0}},
		{Address: 0x2008, Data: []byte{0x92, 0x1f, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 1, 0, 0, 0}},
	}, exe.Segments)

	addr, ok := ctx.Address("empty")
	assert.True(ok)
	assert.Equal(uint32(0x2014), addr)

	ctx.Placements = append(ctx.Placements, Placement{Section: "data", Address: 0x3000})
	_, err = ctx.Link()
	assert.ErrorIs(err, ErrPlacementDuplicate)
}

func TestLinkUnresolved(t *testing.T) {
	assert := assert.New(t)

	source := []string{
		".extern f, g",
		".section text",
		"    call f",
		"    halt",
	}

	ctx := NewContext()
	ctx.Add(assemble(t, source...))
	_, err := ctx.Link()
	assert.ErrorIs(err, ErrUnresolved)
	assert.Contains(err.Error(), "f")
	assert.Contains(err.Error(), "g")

	_, err = ctx.Executable()
	assert.ErrorIs(err, ErrUnresolved)

	ctx = NewContext()
	ctx.Relocatable = true
	ctx.Add(assemble(t, source...))
	obj, err := ctx.Link()
	if !assert.NoError(err) {
		return
	}

	index, ok := obj.Lookup("f")
	assert.True(ok)
	assert.True(obj.Symbols[index].External)
	assert.Equal([]object.Relocation{
		{Section: 2, Offset: 8, Symbol: index, Addend: 0, Type: object.RELOC_ABS32},
	}, obj.Relocations)

	// Relocatable output is not patched.
	value, _ := obj.Sections[2].Data.Word(8)
	assert.Equal(uint32(0), value)

	_, err = ctx.Executable()
	assert.ErrorIs(err, ErrRelocatable)
}

func TestLinkRelocatableThenExecutable(t *testing.T) {
	assert := assert.New(t)

	ctx := NewContext()
	ctx.Relocatable = true
	ctx.Add(
		assemble(t,
			".extern f",
			".section text",
			"    call f",
			"    ld $x, %r1",
			"    halt",
			"x:  .word 7",
		),
		assemble(t,
			".global f",
			".section text",
			"    halt",
			"f:  halt",
		),
	)

	partial, err := ctx.Link()
	if !assert.NoError(err) {
		return
	}

	// Relink the serialized partial result.
	buf := &bytes.Buffer{}
	_, err = partial.WriteTo(buf)
	assert.NoError(err)
	obj, err := object.Read(buf)
	if !assert.NoError(err) {
		return
	}

	ctx = NewContext()
	ctx.Placements = []Placement{{Section: "text", Address: 0x4000_0000}}
	ctx.Add(obj)
	exe, err := ctx.Executable()
	if !assert.NoError(err) {
		return
	}

	// First object: call@0 ld@4 halt@8 x@12 pool f@16 x@20; second at 24.
	data := exe.Segments[0].Data
	assert.Equal(32, len(data))
	assert.Equal(uint32(0x4000_001c), word(data, 16))
	assert.Equal(uint32(0x4000_000c), word(data, 20))
}

func TestLinkStepOrder(t *testing.T) {
	assert := assert.New(t)

	ctx := NewContext()
	assert.ErrorIs(ctx.AllocateSections(), ErrNotLinked)
	assert.ErrorIs(ctx.AggregateSymbols(), ErrNotLinked)
	assert.ErrorIs(ctx.AggregateRelocations(), ErrNotLinked)
	assert.ErrorIs(ctx.AggregateData(), ErrNotLinked)
	assert.ErrorIs(ctx.ResolveRelocations(), ErrNotLinked)

	ctx.Add(assemble(t, ".section text", "halt"))
	assert.NoError(ctx.AggregateSections())
	assert.NoError(ctx.AllocateSections())
	assert.NoError(ctx.AggregateSymbols())
	assert.NoError(ctx.AggregateRelocations())
	assert.NoError(ctx.AggregateData())
	assert.NoError(ctx.ResolveRelocations())
}
