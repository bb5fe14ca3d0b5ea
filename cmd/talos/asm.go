package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezrec/talos/asm"
	"github.com/ezrec/talos/translate"
)

// asmCmd represents the asm command
var asmCmd = &cobra.Command{
	Use:   "asm sourceFile",
	Short: "Assemble a source file and print its listing",
	Long: `Asm assembles a single source file into an object file, and prints
the listing of every text slot (encoded record, disassembly and source
line), followed by the symbol table and the pending relocations.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		config, err := loadConfig()
		if err != nil {
			return
		}

		path := args[0]
		text, err := readSource(path)
		if err != nil {
			return
		}

		assembler := &asm.Assembler{
			Verbose:    verbose,
			MaxLines:   config.MaxLines,
			MemorySize: config.MemorySize,
		}
		for key, value := range config.Predefine {
			assembler.Predefine(key, value)
		}

		obj, err := assembler.Parse(strings.NewReader(text))
		if err != nil {
			err = &sourceError{paths: []string{path}, texts: []string{text}, err: err}
			return
		}

		listing(cmd.OutOrStdout(), obj, text)
		return
	},
}

func init() {
	rootCmd.AddCommand(asmCmd)
}

// listing prints the object file listing.
func listing(w io.Writer, obj *asm.ObjectFile, text string) {
	p := translate.Printer()

	p.Fprintf(w, "; .text %d slots, .data %d, .rodata %d, .bss %d bytes\n",
		len(obj.Text), len(obj.Data), len(obj.Rodata), obj.BssSize)

	for slot, in := range obj.Text {
		line := obj.Lines[slot]
		p.Fprintf(w, "%04x  %02x %x %x %x %08x  %-28v ; %d: %v\n",
			slot, uint8(in.Opcode), in.Rd, in.Rs1, in.Rs2, uint32(in.Imm),
			in.String(), line+1, strings.TrimSpace(sourceLine(text, line)))
	}

	if len(obj.Symbols) != 0 {
		p.Fprintf(w, "\n; symbols\n")
	}
	for name := range obj.SymbolNames() {
		sym := obj.Symbols[name]
		p.Fprintf(w, "%-16v %-8v %-7v %08x\n", name, sym.Section, sym.Binding, sym.Offset)
	}

	if len(obj.Relocations) != 0 {
		p.Fprintf(w, "\n; relocations\n")
	}
	for _, reloc := range obj.Relocations {
		p.Fprintf(w, "%04x  %-10v %v\n", reloc.Offset, reloc.Kind, reloc.Symbol)
	}

	if len(obj.Entry) != 0 {
		p.Fprintf(w, "\n; entry %v\n", obj.Entry)
	}
}
