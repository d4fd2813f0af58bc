// Command golox is the golox driver: a REPL, a file runner, and a golden
// fixture runner, wired to the lex → parse → resolve → interpret pipeline
// in internal/.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/sdecook/golox/internal/golden"
	"github.com/sdecook/golox/internal/interpreter"
	"github.com/sdecook/golox/internal/lexer"
	"github.com/sdecook/golox/internal/parser"
	"github.com/sdecook/golox/internal/resolver"
)

const usage = "Usage: golox [script] | golox -golden <dir>"

func main() {
	switch len(os.Args) {
	case 1:
		runREPL(os.Stdin, os.Stdout)
	case 2:
		os.Exit(runFile(os.Args[1]))
	case 3:
		if os.Args[1] != "-golden" {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(64)
		}
		os.Exit(runGolden(os.Args[2]))
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(64)
	}
}

// runFile reads path, runs it once through the full pipeline, and returns
// the sysexits-style process exit code: 0 success, 64 static fault
// (lex/parse/resolve), 70 runtime fault.
func runFile(path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "golox: %v\n", err)
		return 64
	}
	return run(string(src), os.Stdout, os.Stderr)
}

// runGolden runs every testdata fixture in dir and reports pass/fail,
// returning a nonzero process exit code if any fixture failed.
func runGolden(dir string) int {
	failures, err := golden.RunAll(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "golox: %v\n", err)
		return 1
	}
	if failures > 0 {
		return 1
	}
	return 0
}

// runREPL implements the interactive loop: prompt "> ", read
// a line, run it as a standalone program, print diagnostics to stderr and
// "print" output to stdout, and keep going — no error here terminates the
// session. Readline gives history and line editing the way the REPLs in
// the wider example pack do (chzyer/readline + fatih/color banners).
func runREPL(in io.Reader, out io.Writer) {
	rl, err := readline.New("> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "golox: %v\n", err)
		return
	}
	defer rl.Close()

	globals := replGlobals()
	color.New(color.FgCyan).Fprintln(out, "golox REPL — Ctrl+D to exit")

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF on Ctrl+D, readline.ErrInterrupt on Ctrl+C
			return
		}
		if line == "" {
			continue
		}
		globals = runREPLLine(line, globals, out)
	}
}

// replGlobals returns nil: the first REPL line creates a fresh global
// scope, and every subsequent line reuses it.
func replGlobals() *interpreter.Environment { return nil }

func runREPLLine(src string, globals *interpreter.Environment, out io.Writer) *interpreter.Environment {
	toks, lexErrs := lexer.Scan(src)
	for _, e := range lexErrs {
		reportError(e)
	}
	if len(lexErrs) > 0 {
		return globals
	}

	stmts, parseErrs := parser.Parse(toks)
	for _, e := range parseErrs {
		reportError(e)
	}
	if len(parseErrs) > 0 {
		return globals
	}

	depths, resolveErr := resolver.Resolve(stmts)
	if resolveErr != nil {
		reportError(resolveErr)
		return globals
	}

	interp := interpreter.NewWithGlobals(out, globals, depths)
	if err := interp.Run(stmts); err != nil {
		reportError(err)
	}
	return interp.Globals()
}

// run executes src once and returns the process exit code that should
// result.
func run(src string, stdout, stderr io.Writer) int {
	toks, lexErrs := lexer.Scan(src)
	for _, e := range lexErrs {
		fmt.Fprintln(stderr, e.Error())
	}
	if len(lexErrs) > 0 {
		return 64
	}

	stmts, parseErrs := parser.Parse(toks)
	for _, e := range parseErrs {
		fmt.Fprintln(stderr, e.Error())
	}
	if len(parseErrs) > 0 {
		return 64
	}

	depths, resolveErr := resolver.Resolve(stmts)
	if resolveErr != nil {
		fmt.Fprintln(stderr, resolveErr.Error())
		return 64
	}

	bufOut := bufio.NewWriter(stdout)
	defer bufOut.Flush()

	interp := interpreter.New(bufOut, depths)
	if err := interp.Run(stmts); err != nil {
		bufOut.Flush()
		fmt.Fprintln(stderr, err.Error())
		return 70
	}
	return 0
}

func reportError(err error) {
	color.New(color.FgRed).Fprintln(os.Stderr, err.Error())
}
