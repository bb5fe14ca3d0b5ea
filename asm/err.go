package asm

import (
	"errors"

	"github.com/ezrec/talos/translate"
)

var f = translate.From

var (
	// Assembler errors
	ErrUnknownInstruction     = errors.New(f("unknown instruction"))
	ErrInvalidArgument        = errors.New(f("invalid argument"))
	ErrUnknownLabel           = errors.New(f("unknown label"))
	ErrUnknownSymbol          = errors.New(f("unknown symbol"))
	ErrInvalidCharacter       = errors.New(f("invalid character"))
	ErrNumericOverflow        = errors.New(f("numeric overflow"))
	ErrLineOverflow           = errors.New(f("too many lines"))
	ErrMemoryOverflow         = errors.New(f("memory overflow"))
	ErrInstructionOutsideText = errors.New(f("instruction outside .text"))
	ErrVarOutsideDataOrRodata = errors.New(f("variable outside .data or .rodata"))
	ErrVarOutsideBss          = errors.New(f("variable outside .bss"))
	ErrDuplicateLabel         = errors.New(f("label duplicated"))
	ErrInvalidLabelSection    = errors.New(f("label outside .text"))
	ErrEquateSyntax           = errors.New(f(".equ syntax"))
	ErrEquateDuplicate        = errors.New(f(".equ duplicated"))
)

// errKinds are the error kinds reported by ErrSyntax.Kind, most specific first.
var errKinds = []error{
	ErrUnknownInstruction,
	ErrInvalidArgument,
	ErrUnknownLabel,
	ErrUnknownSymbol,
	ErrInvalidCharacter,
	ErrNumericOverflow,
	ErrLineOverflow,
	ErrMemoryOverflow,
	ErrInstructionOutsideText,
	ErrVarOutsideDataOrRodata,
	ErrVarOutsideBss,
	ErrDuplicateLabel,
	ErrInvalidLabelSection,
	ErrEquateSyntax,
	ErrEquateDuplicate,
}

// ErrSyntax is an assembly error at a 0-based source line index.
type ErrSyntax struct {
	LineIndex int
	Line      string
	Err       error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineIndex+1, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

// Kind returns the assembler error kind, or nil if unknown.
func (err *ErrSyntax) Kind() error {
	for _, kind := range errKinds {
		if errors.Is(err.Err, kind) {
			return kind
		}
	}
	return nil
}
