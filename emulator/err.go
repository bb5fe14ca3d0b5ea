package emulator

import (
	"errors"

	"github.com/ezrec/talos/translate"
)

var f = translate.From

var (
	ErrConfig    = errors.New(f("invalid configuration"))
	ErrStepLimit = errors.New(f("step limit exceeded"))
	ErrRegister  = errors.New(f("invalid register"))
	ErrAddress   = errors.New(f("invalid memory address"))
)

// ErrSource indicates which source of a linked build failed.
type ErrSource struct {
	Index int // Index of the source in the build order.
	Err   error
}

func (err *ErrSource) Error() string {
	return f("source %d: %v", err.Index, err.Err)
}

func (err *ErrSource) Unwrap() error {
	return err.Err
}

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Pc        uint32
	Source    int
	LineIndex int // 0-based line index, or -1 if unknown.
	Err       error
}

func (err *ErrRuntime) Error() string {
	if err.LineIndex < 0 {
		return f("pc %04x: %v", err.Pc, err.Err)
	}
	return f("source %d line %d: pc %04x: %v", err.Source, err.LineIndex+1, err.Pc, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrConfigValue is a rejected configuration value.
type ErrConfigValue struct {
	Name  string
	Value string
}

func (err *ErrConfigValue) Error() string {
	return f("config %v: invalid value %v", err.Name, err.Value)
}

func (err *ErrConfigValue) Is(target error) bool {
	return target == ErrConfig
}
