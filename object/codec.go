package object

import (
	"encoding/binary"
	"io"
)

// NAME_LIMIT bounds decoded name lengths.
const NAME_LIMIT = 1 << 16

// encoder writes little-endian fields, remembering the first error.
type encoder struct {
	w   io.Writer
	n   int64
	err error
}

func (enc *encoder) put(value any) {
	if enc.err != nil {
		return
	}
	enc.err = binary.Write(enc.w, binary.LittleEndian, value)
	if enc.err == nil {
		enc.n += int64(binary.Size(value))
	}
}

func (enc *encoder) putName(name string) {
	enc.put(uint32(len(name)))
	enc.put([]byte(name))
}

// decoder reads little-endian fields, remembering the first error.
type decoder struct {
	r   io.Reader
	err error
}

func (dec *decoder) get(value any) {
	if dec.err != nil {
		return
	}
	dec.err = binary.Read(dec.r, binary.LittleEndian, value)
	if dec.err == io.EOF {
		dec.err = io.ErrUnexpectedEOF
	}
}

func (dec *decoder) u32() (value uint32) {
	dec.get(&value)
	return
}

func (dec *decoder) i32() (value int32) {
	dec.get(&value)
	return
}

func (dec *decoder) flag() (value bool) {
	dec.get(&value)
	return
}

func (dec *decoder) name() (name string) {
	size := dec.u32()
	if dec.err != nil {
		return
	}
	if size > NAME_LIMIT {
		dec.err = ErrNameLength
		return
	}
	buf := make([]byte, size)
	dec.get(buf)
	name = string(buf)
	return
}

// index reads a table index, which must match its position.
func (dec *decoder) index(expect int) {
	index := dec.u32()
	if dec.err == nil && int(index) != expect {
		dec.err = ErrIndexMismatch
	}
}

// WriteTo writes the relocatable object binary image.
func (obj *Object) WriteTo(w io.Writer) (n int64, err error) {
	enc := &encoder{w: w}

	enc.put(uint32(len(obj.Symbols)))
	for index, sym := range obj.Symbols {
		enc.put(uint32(index))
		enc.putName(sym.Name)
		enc.put(sym.Section)
		enc.put(sym.Defined)
		enc.put(sym.External)
		enc.put(sym.Global)
		enc.put(sym.Value)
	}

	enc.put(uint32(len(obj.Sections)))
	for index, sec := range obj.Sections {
		enc.put(uint32(index))
		enc.putName(sec.Name)
		enc.put(sec.Base)
		enc.put(sec.Length)
		enc.put(sec.Length)
		for offset, value := range sec.Bytes() {
			enc.put(uint32(offset))
			enc.put(int8(value))
		}
	}

	enc.put(uint32(len(obj.Relocations)))
	for index, rel := range obj.Relocations {
		enc.put(uint32(index))
		enc.put(rel.Addend)
		enc.put(rel.Offset)
		enc.put(rel.Section)
		enc.put(rel.Symbol)
	}

	n, err = enc.n, enc.err
	return
}

// Read decodes a relocatable object binary image.
func Read(r io.Reader) (obj *Object, err error) {
	dec := &decoder{r: r}
	obj = &Object{}

	fail := func(what string, index int) (*Object, error) {
		return nil, &ErrFormat{What: what, Index: index, Err: dec.err}
	}

	count := dec.u32()
	if dec.err != nil {
		return fail("symbols", 0)
	}
	for index := range int(count) {
		dec.index(index)
		sym := Symbol{}
		sym.Name = dec.name()
		sym.Section = dec.u32()
		sym.Defined = dec.flag()
		sym.External = dec.flag()
		sym.Global = dec.flag()
		sym.Value = dec.i32()
		if dec.err != nil {
			return fail("symbol", index)
		}
		obj.Symbols = append(obj.Symbols, sym)
	}

	count = dec.u32()
	if dec.err != nil {
		return fail("sections", 0)
	}
	for index := range int(count) {
		dec.index(index)
		sec := NewSection(dec.name())
		sec.Base = dec.i32()
		sec.Length = dec.u32()
		bytes := dec.u32()
		for range bytes {
			addr := dec.u32()
			var value int8
			dec.get(&value)
			if dec.err != nil {
				break
			}
			sec.Data[addr] = byte(value)
		}
		if dec.err != nil {
			return fail("section", index)
		}
		obj.Sections = append(obj.Sections, sec)
	}

	count = dec.u32()
	if dec.err != nil {
		return fail("relocations", 0)
	}
	for index := range int(count) {
		dec.index(index)
		rel := Relocation{Type: RELOC_ABS32}
		rel.Addend = dec.i32()
		rel.Offset = dec.u32()
		rel.Section = dec.u32()
		rel.Symbol = dec.u32()
		if dec.err != nil {
			return fail("relocation", index)
		}
		obj.Relocations = append(obj.Relocations, rel)
	}

	err = obj.Validate()
	if err != nil {
		obj = nil
	}

	return
}

// Validate checks that every cross reference between the tables is in range.
func (obj *Object) Validate() (err error) {
	for index, sym := range obj.Symbols {
		if int(sym.Section) >= len(obj.Sections) {
			return &ErrFormat{What: "symbol", Index: index, Err: ErrSectionIndex}
		}
	}

	for index, rel := range obj.Relocations {
		switch {
		case int(rel.Section) >= len(obj.Sections):
			err = ErrSectionIndex
		case int(rel.Symbol) >= len(obj.Symbols):
			err = ErrSymbolIndex
		case uint64(rel.Offset)+LITERAL_SIZE > uint64(obj.Sections[rel.Section].Length):
			err = ErrOffsetInvalid
		}
		if err != nil {
			return &ErrFormat{What: "relocation", Index: index, Err: err}
		}
	}

	return
}
