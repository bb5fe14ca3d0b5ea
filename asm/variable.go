package asm

import (
	"bytes"
	"strings"
)

// Directive is a data declaration directive.
type Directive struct {
	Name   string
	Size   int  // Element size in bytes.
	Define bool // Set for initialized (define) directives, clear for reserve.
}

var directiveMap = map[string]Directive{
	"db":   {"db", 1, true},
	"dw":   {"dw", 2, true},
	"dd":   {"dd", 4, true},
	"dq":   {"dq", 8, true},
	"resb": {"resb", 1, false},
	"resw": {"resw", 2, false},
	"resd": {"resd", 4, false},
	"resq": {"resq", 8, false},
}

// ParseDirective looks up a data directive, case-insensitively.
func ParseDirective(word string) (dir Directive, ok bool) {
	dir, ok = directiveMap[strings.ToLower(word)]
	return
}

// Variable is a declared data object.
type Variable struct {
	Name    string
	Section Section
	Address uint32 // Section relative byte offset.
	Size    int    // Element size in bytes.
	Count   int    // Element count.
}

// Bytes returns the total size of the variable.
func (v Variable) Bytes() uint32 {
	return uint32(v.Size * v.Count)
}

// declaration is a parsed variable declaration line.
type declaration struct {
	name  string
	dir   Directive
	count int
	init  string
}

// parseDeclaration parses 'NAME DIRECTIVE [INIT]' or 'NAME times COUNT DIRECTIVE [INIT]'.
// For reserve directives INIT is an optional element count.
func parseDeclaration(words []string) (decl declaration, err error) {
	if len(words) < 2 {
		err = ErrUnknownInstruction
		return
	}

	decl.name = words[0]
	decl.count = 1
	args := words[1:]

	if strings.EqualFold(args[0], "times") {
		if len(args) < 3 {
			err = ErrInvalidArgument
			return
		}
		var count int32
		count, err = ParseInt(args[1])
		if err != nil {
			return
		}
		if count < 1 {
			err = ErrInvalidArgument
			return
		}
		decl.count = int(count)
		args = args[2:]

		var ok bool
		decl.dir, ok = ParseDirective(args[0])
		if !ok {
			err = ErrInvalidArgument
			return
		}
	} else {
		var ok bool
		decl.dir, ok = ParseDirective(args[0])
		if !ok {
			err = ErrUnknownInstruction
			return
		}
	}

	args = args[1:]
	switch {
	case decl.dir.Define && len(args) == 1:
		decl.init = args[0]
	case !decl.dir.Define && len(args) == 0:
		// pass
	case !decl.dir.Define && len(args) == 1:
		// Reserve count, scaled by any 'times' repeat.
		var count int32
		count, err = ParseInt(args[0])
		if err != nil {
			return
		}
		if count < 1 {
			err = ErrInvalidArgument
			return
		}
		decl.count *= int(count)
	default:
		err = ErrInvalidArgument
		return
	}

	return
}

// initializer returns the initial bytes of a define declaration.
func (decl declaration) initializer() (data []byte, err error) {
	element, err := ParseBytes(decl.init, decl.dir.Size)
	if err != nil {
		return
	}

	data = bytes.Repeat(element, decl.count)
	return
}
