package main

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ezrec/talos/emulator"
	"github.com/ezrec/talos/translate"
)

var (
	stepMode bool
	maxSteps int
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run sourceFile...",
	Short: "Assemble, link and execute source files",
	Long: `Run assembles each source file, links them in order, and executes
the result. A single source runs from its .entry symbol, or from the
first instruction if it declares none. Multiple sources must declare
exactly one .entry between them.

With --step each instruction is traced before it executes; when stdin
is a terminal, Enter advances to the next instruction.
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		config, err := loadConfig()
		if err != nil {
			return
		}
		if cmd.Flags().Changed("max-steps") {
			config.MaxSteps = maxSteps
		}

		texts := make([]string, len(args))
		for n, path := range args {
			texts[n], err = readSource(path)
			if err != nil {
				return
			}
		}

		emu := emulator.NewEmulator(config)
		emu.Verbose = verbose

		if len(texts) == 1 {
			err = emu.BuildSingle(texts[0])
		} else {
			err = emu.BuildLinked(texts)
		}
		if err == nil {
			err = execute(cmd.OutOrStdout(), emu, args, texts)
		}
		if err != nil {
			err = &sourceError{paths: args, texts: texts, err: err}
			return
		}

		status(cmd.OutOrStdout(), emu)
		return
	},
}

func init() {
	runCmd.Flags().BoolVar(&stepMode, "step", false, "Trace and single-step each instruction")
	runCmd.Flags().IntVar(&maxSteps, "max-steps", 0, "Maximum instructions to execute; 0 is unlimited")
	rootCmd.AddCommand(runCmd)
}

// execute runs the loaded binary per the --step flag.
func execute(w io.Writer, emu *emulator.Emulator, paths, texts []string) (err error) {
	if !stepMode {
		emu.SetMode(emulator.MODE_AUTO)
		_, err = emu.Start()
		return
	}

	p := translate.Printer()

	emu.SetMode(emulator.MODE_STEP)
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	input := bufio.NewReader(os.Stdin)

	for done := false; !done; {
		ref, ok := emu.LineRef()
		if ok {
			line := strings.TrimSpace(sourceLine(texts[ref.Source], ref.LineIndex))
			p.Fprintf(w, "%04x  %-28v ; %v:%d: %v\n", emu.Pc, emu.Program[emu.Pc].String(),
				paths[ref.Source], ref.LineIndex+1, line)
		}

		if interactive {
			_, err = input.ReadString('\n')
			if err != nil {
				return
			}
		}

		done, err = emu.Start()
		if err != nil {
			return
		}

		if verbose {
			p.Fprintf(w, "      flags %v\n", emu.CpuFlags())
		}
	}

	return
}

// status prints the final machine state.
func status(w io.Writer, emu *emulator.Emulator) {
	p := translate.Printer()

	p.Fprint(w, emu.Cpu.String())
	p.Fprintf(w, "% 5s: %d\n", "ticks", emu.Ticks)
	p.Fprintf(w, "% 5s: %d\n", "traps", emu.Traps)
	p.Fprintf(w, "% 5s: %d\n", "fault", emu.Faults())
}
