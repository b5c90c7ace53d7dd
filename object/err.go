package object

import (
	"errors"

	"github.com/ezrec/triad/translate"
)

var f = translate.From

var (
	ErrIndexMismatch = errors.New(f("table index out of order"))
	ErrNameLength    = errors.New(f("name length too large"))
	ErrSectionIndex  = errors.New(f("section index invalid"))
	ErrSymbolIndex   = errors.New(f("symbol index invalid"))
	ErrOffsetInvalid = errors.New(f("offset outside section"))
)

// ErrFormat indicates which part of a binary image failed to decode.
type ErrFormat struct {
	What  string
	Index int
	Err   error
}

func (err *ErrFormat) Error() string {
	return f("%v[%d]: %v", err.What, err.Index, err.Err)
}

func (err *ErrFormat) Unwrap() error {
	return err.Err
}
