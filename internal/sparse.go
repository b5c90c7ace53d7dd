// Package internal holds helpers shared by the object model and the emulator.
package internal

import (
	"encoding/binary"
	"iter"
	"maps"
	"slices"
)

// Sparse is a byte addressed store populated out of order.
// Only written addresses occupy memory.
type Sparse map[uint32]byte

// Byte returns the byte at addr, and whether it was ever written.
func (sp Sparse) Byte(addr uint32) (value byte, ok bool) {
	value, ok = sp[addr]
	return
}

// Word returns the little-endian word at addr.
// ok is false if any of the four bytes is unmapped.
func (sp Sparse) Word(addr uint32) (value uint32, ok bool) {
	var buf [4]byte
	for n := range buf {
		buf[n], ok = sp[addr+uint32(n)]
		if !ok {
			return
		}
	}

	value = binary.LittleEndian.Uint32(buf[:])
	return
}

// SetWord stores value at addr in little-endian order.
func (sp Sparse) SetWord(addr uint32, value uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)
	sp.SetBytes(addr, buf[:])
}

// SetBytes stores data starting at addr.
func (sp Sparse) SetBytes(addr uint32, data []byte) {
	for n, b := range data {
		sp[addr+uint32(n)] = b
	}
}

// Bytes returns a dense copy of [addr, addr+length). Unmapped bytes are 0.
func (sp Sparse) Bytes(addr uint32, length uint32) (data []byte) {
	data = make([]byte, length)
	for n := range length {
		data[n] = sp[addr+n]
	}
	return
}

// All iterates over the mapped bytes in ascending address order.
func (sp Sparse) All() iter.Seq2[uint32, byte] {
	return func(yield func(uint32, byte) bool) {
		for _, addr := range slices.Sorted(maps.Keys(sp)) {
			if !yield(addr, sp[addr]) {
				return
			}
		}
	}
}
