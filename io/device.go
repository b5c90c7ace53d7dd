// Package io provides the memory mapped devices of the emulator:
// a byte oriented Terminal, a periodic Timer, and a host Console that
// feeds the terminal from the controlling tty.
package io

// Device is a memory mapped I/O device. Registers are word sized and
// addressed by their byte offset from the device base.
type Device interface {
	// Load reads a register.
	Load(offset uint32) (value uint32, err error)
	// Store writes a register.
	Store(offset uint32, value uint32) error
}
