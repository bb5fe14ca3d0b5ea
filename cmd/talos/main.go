// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Command talos assembles, links and runs Talos programs.
package main

import (
	"errors"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezrec/talos/asm"
	"github.com/ezrec/talos/emulator"
	"github.com/ezrec/talos/translate"
)

var (
	verbose    bool
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "talos",
	Short: "Talos assembler, linker and emulator",
	Long: `Talos assembles sources for the Talos register machine, links the
resulting object files, and executes the linked binary either to halt
or one instruction at a time.

Configuration is read from an optional Starlark script (-c), which may
set memory_size, max_lines, max_steps, memory_policy, trap_policy and
a predefine dict of assembler equates.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose mode")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Starlark configuration file")
}

// loadConfig returns the configuration selected by the -c flag.
func loadConfig() (config emulator.Config, err error) {
	if len(configFile) == 0 {
		config = emulator.DefaultConfig()
		return
	}

	inf, err := os.Open(configFile)
	if err != nil {
		return
	}
	defer inf.Close()

	config, err = emulator.LoadConfig(configFile, inf)
	return
}

// readSource reads a source file, or stdin for '-'.
func readSource(path string) (text string, err error) {
	var data []byte
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	text = string(data)
	return
}

// sourceLine returns a 0-based line of a source text.
func sourceLine(text string, index int) string {
	lines := strings.Split(text, "\n")
	if index < 0 || index >= len(lines) {
		return ""
	}
	return strings.TrimRight(lines[index], "\r")
}

// sourceError is an error located in one of a set of sources.
type sourceError struct {
	paths []string
	texts []string
	err   error
}

func (err *sourceError) Error() string {
	return err.err.Error()
}

func (err *sourceError) Unwrap() error {
	return err.err
}

// report prints a diagnostic for err, locating it in the named sources.
func report(w io.Writer, paths []string, texts []string, err error) {
	p := translate.Printer()

	index := 0
	var es *emulator.ErrSource
	if errors.As(err, &es) {
		index = es.Index
	}

	path := "-"
	if index < len(paths) {
		path = paths[index]
	}

	var se *asm.ErrSyntax
	if errors.As(err, &se) {
		p.Fprintf(w, "%v:%d: %v\n", path, se.LineIndex+1, se.Err)
		if index < len(texts) {
			p.Fprintf(w, "    %v\n", sourceLine(texts[index], se.LineIndex))
		}
		return
	}

	var rt *emulator.ErrRuntime
	if errors.As(err, &rt) && rt.LineIndex >= 0 && rt.Source < len(paths) {
		p.Fprintf(w, "%v:%d: pc %04x: %v\n", paths[rt.Source], rt.LineIndex+1, rt.Pc, rt.Err)
		if rt.Source < len(texts) {
			p.Fprintf(w, "    %v\n", sourceLine(texts[rt.Source], rt.LineIndex))
		}
		return
	}

	p.Fprintf(w, "talos: %v\n", err)
}

func main() {
	log.SetFlags(0)

	err := rootCmd.Execute()
	if err != nil {
		var serr *sourceError
		if errors.As(err, &serr) {
			report(os.Stderr, serr.paths, serr.texts, serr.err)
		} else {
			translate.Printer().Fprintf(os.Stderr, "talos: %v\n", err)
		}
		os.Exit(1)
	}
}
