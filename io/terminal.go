package io

import (
	"errors"
	"io"
)

// Terminal register offsets.
const (
	TERMINAL_OUT  = 0 // Writing the low byte sends it to Output.
	TERMINAL_IN   = 4 // Last byte received from Input.
	TERMINAL_SIZE = 8
)

// availabler is implemented by inputs that can report pending bytes
// without blocking, such as a Console.
type availabler interface {
	Available() (int, error)
}

// Terminal is a byte stream device. It wraps an io.Reader for input and an
// io.Writer for output.
//
// Input is polled once per cycle. An Input without an Available method
// must not block on Read; wrap blocking readers with NewStream.
type Terminal struct {
	Input  io.Reader
	Output io.Writer

	out uint32
	in  uint32
}

var _ Device = (*Terminal)(nil)

// Reset clears the registers.
func (term *Terminal) Reset() {
	term.out = 0
	term.in = 0
}

// Load reads a terminal register.
func (term *Terminal) Load(offset uint32) (value uint32, err error) {
	switch offset {
	case TERMINAL_OUT:
		value = term.out
	case TERMINAL_IN:
		value = term.in
	default:
		err = ErrRegisterInvalid
	}
	return
}

// Store writes a terminal register.
func (term *Terminal) Store(offset uint32, value uint32) (err error) {
	switch offset {
	case TERMINAL_OUT:
		term.out = value
		if term.Output != nil {
			_, err = term.Output.Write([]byte{byte(value)})
		}
	case TERMINAL_IN:
		term.in = value
	default:
		err = ErrRegisterInvalid
	}
	return
}

// Poll reads at most one pending input byte without blocking.
// A received byte is latched into the input register.
func (term *Terminal) Poll() (value byte, ok bool, err error) {
	if term.Input == nil {
		return
	}

	if av, is_av := term.Input.(availabler); is_av {
		var count int
		count, err = av.Available()
		if err != nil || count == 0 {
			return
		}
	}

	var one [1]byte
	n, err := term.Input.Read(one[:])
	if errors.Is(err, io.EOF) {
		err = nil
	}
	if n == 1 {
		value = one[0]
		ok = true
		term.in = uint32(value)
	}

	return
}
