// Command lox is the interpreter's entry point: it runs a script file or
// drops into an interactive REPL, matching the exit-code contract spec.md
// §6.1 defines.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	easy "github.com/t-tomalak/logrus-easy-formatter"

	"loxvm/internal/compiler"
	"loxvm/internal/vm"
)

const (
	exitUsage        = 64
	exitCompileError = 65
	exitRuntimeError = 70
	exitIOError      = 74
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Usage: lox [path]\n")
		os.Exit(exitUsage)
	}
}

func newRootCommand() *cobra.Command {
	var debug, disassemble bool

	cmd := &cobra.Command{
		Use:           "lox [script]",
		Short:         "A bytecode compiler and stack-based virtual machine for Lox.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configureLogging(debug)
			if len(args) == 0 {
				return runPrompt(disassemble)
			}
			return runFile(args[0], disassemble)
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "trace internal compiler/VM lifecycle events")
	cmd.Flags().BoolVar(&disassemble, "disassemble", false, "dump bytecode disassembly before running")
	return cmd
}

func configureLogging(debug bool) {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&easy.Formatter{LogFormat: "[%lvl%] %msg%\n"})
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}
}

func runFile(path string, disassemble bool) error {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %s\n", err)
		os.Exit(exitIOError)
	}

	interner := vm.NewInterner()
	machine := vm.New(interner)
	defer machine.Free()

	switch interpret(string(source), "script", interner, machine, os.Stdout, disassemble) {
	case vm.CompileError:
		os.Exit(exitCompileError)
	case vm.RuntimeError:
		os.Exit(exitRuntimeError)
	}
	return nil
}

// runPrompt drives an interactive session, persisting one VM (and its
// globals and interned strings) across every line, mirroring the teacher's
// "shared VM for persistence" REPL (spec.md §6.1).
func runPrompt(disassemble bool) error {
	interactive := isatty.IsTerminal(os.Stdin.Fd())
	prompt := ""
	if interactive {
		prompt = "> "
	}

	rl, err := readline.New(prompt)
	if err != nil {
		return err
	}
	defer rl.Close()

	logrus.Debugln("REPL started")

	interner := vm.NewInterner()
	machine := vm.New(interner)
	defer machine.Free()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return nil
			}
			return err
		}
		if line == "" {
			return nil
		}
		interpret(line, "repl", interner, machine, os.Stdout, disassemble)
	}
}

// interpret compiles source and, if that succeeds, runs it on machine,
// reporting whichever diagnostic fires first (spec.md §4.4's "compile then
// run" contract) and returning the coarse Result the caller maps to an exit
// code.
func interpret(source, label string, interner *vm.Interner, machine *vm.VM, out io.Writer, disassemble bool) vm.Result {
	logrus.Debugf("compiling %s", label)
	c := compiler.New(interner)
	ch, err := c.Compile(source)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return vm.CompileError
	}

	if disassemble {
		ch.Disassemble(label)
	}

	machine.Stdout = out
	result, runErr := machine.Interpret(ch)
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
	}
	return result
}
