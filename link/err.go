package link

import (
	"errors"

	"github.com/ezrec/talos/translate"
)

var f = translate.From

var (
	// Linker errors
	ErrDuplicateGlobal   = errors.New(f("duplicate global symbol"))
	ErrUnresolvedExtern  = errors.New(f("unresolved extern symbol"))
	ErrUnknownEntry      = errors.New(f("unknown entry symbol"))
	ErrNoEntryDefined    = errors.New(f("no entry symbol defined"))
	ErrUnknownSymbol     = errors.New(f("unknown relocation symbol"))
	ErrRelocationRange   = errors.New(f("relocation out of range"))
	ErrRelocationInvalid = errors.New(f("invalid relocation"))
	ErrNoObjects         = errors.New(f("no object files"))
)

// ErrSymbol is a linker error about a symbol of an object file.
type ErrSymbol struct {
	Object int // Index of the object file in the link order.
	Symbol string
	Err    error
}

func (err *ErrSymbol) Error() string {
	return f("object %d: %v: %v", err.Object, err.Symbol, err.Err)
}

func (err *ErrSymbol) Unwrap() error {
	return err.Err
}
