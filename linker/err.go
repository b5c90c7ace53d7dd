package linker

import (
	"errors"

	"github.com/ezrec/triad/translate"
)

var f = translate.From

var (
	ErrMultipleDefinition = errors.New(f("multiple definitions"))
	ErrUnresolved         = errors.New(f("unresolved external symbol"))
	ErrPlacementInvalid   = errors.New(f("placement must be name@0xADDR"))
	ErrPlacementDuplicate = errors.New(f("section placed twice"))
	ErrAddressSpace       = errors.New(f("section exceeds the address space"))
	ErrRelocationRange    = errors.New(f("relocation outside its section"))
	ErrRelocatable        = errors.New(f("relocatable output has no executable image"))
	ErrNotLinked          = errors.New(f("objects not yet aggregated"))
	ErrScriptMode         = errors.New(f("script mode must be executable or relocatable"))
)

// ErrSymbol attaches a symbol name to a link error.
type ErrSymbol struct {
	Name string
	Err  error
}

func (err *ErrSymbol) Error() string {
	return f("%v: %v", err.Name, err.Err)
}

func (err *ErrSymbol) Unwrap() error {
	return err.Err
}

// ErrOverlap reports two placed sections sharing addresses.
type ErrOverlap struct {
	First, Second Placement
}

func (err *ErrOverlap) Error() string {
	return f("placed sections %v and %v overlap", err.First.String(), err.Second.String())
}
