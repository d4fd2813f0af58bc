// Package golden runs whole Lox programs under testdata/ end to end and
// diffs their observable output against checked-in expectations. Earlier
// Lox harnesses in this lineage shelled out to a reference interpreter
// binary and compared stdout/stderr/exit code; here the "reference" is
// simply the expected-output fixture, and the interpreter under test runs
// as a library call rather than a subprocess.
package golden

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/sdecook/golox/internal/interpreter"
	"github.com/sdecook/golox/internal/lexer"
	"github.com/sdecook/golox/internal/parser"
	"github.com/sdecook/golox/internal/resolver"
)

const width = 80

// Case is one fixture: a .lox source file paired with a .golden expected
// stdout file.
type Case struct {
	Name     string // fixture name, without extension
	Source   string
	Expected string
}

// Result is the observed outcome of running a Case.
type Result struct {
	Case     Case
	Stdout   string
	ExitCode int
	Duration time.Duration
}

// Passed reports whether the observed stdout matched the fixture's
// expectation exactly.
func (r Result) Passed() bool {
	return r.Stdout == r.Case.Expected
}

// Load collects every *.lox/*.golden pair under dir, sorted by name. A
// *.lox file with no matching *.golden sibling is skipped.
func Load(dir string) ([]Case, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) == ".lox" {
			names = append(names, strings.TrimSuffix(e.Name(), ".lox"))
		}
	}
	sort.Strings(names)

	cases := make([]Case, 0, len(names))
	for _, name := range names {
		goldenPath := path.Join(dir, name+".golden")
		if _, err := os.Stat(goldenPath); err != nil {
			continue
		}
		src, err := os.ReadFile(path.Join(dir, name+".lox"))
		if err != nil {
			return nil, err
		}
		want, err := os.ReadFile(goldenPath)
		if err != nil {
			return nil, err
		}
		cases = append(cases, Case{Name: name, Source: string(src), Expected: string(want)})
	}
	return cases, nil
}

// Run executes one Case's source through the full pipeline in-process and
// captures its stdout and exit code the same way cmd/golox would: 64 for
// a lex/parse/resolve fault, 70 for a runtime fault, 0 on success.
func Run(c Case) Result {
	start := time.Now()
	var out bytes.Buffer
	exitCode := Execute(c.Source, &out)
	return Result{Case: c, Stdout: out.String(), ExitCode: exitCode, Duration: time.Since(start)}
}

// Execute runs src through lex → parse → resolve → interpret, writing
// "print" output to stdout, and returns the sysexits-style code cmd/golox
// should exit with.
func Execute(src string, stdout *bytes.Buffer) int {
	toks, lexErrs := lexer.Scan(src)
	if len(lexErrs) > 0 {
		return 64
	}

	stmts, parseErrs := parser.Parse(toks)
	if len(parseErrs) > 0 {
		return 64
	}

	depths, resolveErr := resolver.Resolve(stmts)
	if resolveErr != nil {
		return 64
	}

	interp := interpreter.New(stdout, depths)
	if err := interp.Run(stmts); err != nil {
		return 70
	}
	return 0
}

// RunAll runs every case in dir and prints a pass/fail report, colored with
// color.GreenString/color.RedString. It returns the number of failing
// cases.
func RunAll(dir string) (int, error) {
	cases, err := Load(dir)
	if err != nil {
		return 0, err
	}

	failures := 0
	for _, c := range cases {
		r := Run(c)
		if r.Passed() {
			fmt.Printf("  [%s] %s (%s)\n", color.GreenString("passed"), c.Name, r.Duration)
			continue
		}
		failures++
		fmt.Printf("  [%s] %s (%s)\n", color.RedString("failed"), c.Name, r.Duration)
		printDiff(c.Expected, r.Stdout)
	}
	return failures, nil
}

func printDiff(expected, actual string) {
	divider := strings.Repeat("-", width)
	fmt.Println(divider)
	fmt.Println("expected:")
	fmt.Println(expected)
	fmt.Println("actual:")
	fmt.Println(actual)
	fmt.Println(divider)
}
