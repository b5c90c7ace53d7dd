package emulator

import (
	"github.com/ezrec/triad/translate"
)

var f = translate.From

// ErrRuntime indicates where in the program a runtime error occurred.
type ErrRuntime struct {
	Pc    uint32
	Cycle int
	Err   error
}

func (err *ErrRuntime) Error() string {
	return f("cycle %d pc 0x%08x: %v", err.Cycle, err.Pc, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
