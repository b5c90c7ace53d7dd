package object

import (
	"cmp"
	"io"
	"slices"
)

// Segment is a loadable range of bytes at a virtual address.
type Segment struct {
	Address uint32
	Data    []byte
}

// End returns the address following the segment.
func (seg *Segment) End() uint64 {
	return uint64(seg.Address) + uint64(len(seg.Data))
}

// Executable is a placed, fully resolved program image.
type Executable struct {
	Segments []Segment
}

// Sort orders the segments by address.
func (exe *Executable) Sort() {
	slices.SortFunc(exe.Segments, func(a, b Segment) int {
		return cmp.Compare(a.Address, b.Address)
	})
}

// WriteTo writes the executable binary image.
func (exe *Executable) WriteTo(w io.Writer) (n int64, err error) {
	enc := &encoder{w: w}

	enc.put(uint32(len(exe.Segments)))
	for _, seg := range exe.Segments {
		enc.put(seg.Address)
		enc.put(uint32(len(seg.Data)))
		enc.put(seg.Data)
	}

	n, err = enc.n, enc.err
	return
}

// SEGMENT_LIMIT bounds a decoded segment size.
const SEGMENT_LIMIT = 1 << 28

// ReadExecutable decodes an executable binary image.
func ReadExecutable(r io.Reader) (exe *Executable, err error) {
	dec := &decoder{r: r}
	exe = &Executable{}

	count := dec.u32()
	for index := range int(count) {
		seg := Segment{}
		seg.Address = dec.u32()
		size := dec.u32()
		if dec.err == nil && size > SEGMENT_LIMIT {
			dec.err = ErrOffsetInvalid
		}
		if dec.err == nil {
			seg.Data = make([]byte, size)
			dec.get(seg.Data)
		}
		if dec.err != nil {
			return nil, &ErrFormat{What: "segment", Index: index, Err: dec.err}
		}
		exe.Segments = append(exe.Segments, seg)
	}

	if dec.err != nil {
		return nil, &ErrFormat{What: "segments", Err: dec.err}
	}

	return
}
