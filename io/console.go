package io

import (
	"os"

	"github.com/pkg/term"
)

// Console is the host's controlling terminal in cbreak mode: input is
// unbuffered and not echoed, so the emulator sees every key press.
type Console struct {
	*term.Term
}

// OpenConsole opens a tty device, usually /dev/tty.
func OpenConsole(path string) (con *Console, err error) {
	tty, err := term.Open(path, term.CBreakMode)
	if err != nil {
		return
	}

	con = &Console{Term: tty}
	return
}

// IsTerminal returns true if file is a character device.
func IsTerminal(file *os.File) bool {
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// Close restores the saved terminal mode, then closes the device.
func (con *Console) Close() (err error) {
	err = con.Term.Restore()
	if err != nil {
		con.Term.Close()
		return
	}
	return con.Term.Close()
}
