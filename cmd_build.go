package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"mayoc/codegen"
	"mayoc/compileerror"
	"mayoc/lexer"
	"mayoc/optimizer"
	"mayoc/parser"
	"mayoc/semantics"

	"github.com/google/subcommands"
)

// buildCmd implements the `build` subcommand: lex, parse, analyze,
// optionally fold constants, then emit IR and drive the downstream
// assembler/linker chain (spec §6 "Downstream tool invocation").
type buildCmd struct {
	output        string
	cflags        string
	printTokens   bool
	printAST      bool
	foldConstants bool
}

func (*buildCmd) Name() string     { return "build" }
func (*buildCmd) Synopsis() string { return "Compile a source file to a native executable" }
func (*buildCmd) Usage() string {
	return `build [-o path] [--CFLAGS flags] [--print-tokens] [--print-ast] [--fold-constants] <file>:
  Compile a mayo source file, emitting IR and linking a native executable.
`
}

func defaultOutput() string {
	if runtime.GOOS == "windows" {
		return "./output.exe"
	}
	return "./output.o"
}

func (cmd *buildCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.output, "o", defaultOutput(), "Output executable path")
	f.StringVar(&cmd.cflags, "CFLAGS", "", "Verbatim flags appended to the downstream C compiler invocation")
	f.BoolVar(&cmd.printTokens, "print-tokens", false, "Dump tokens before parsing")
	f.BoolVar(&cmd.printAST, "print-ast", false, "Dump AST after analysis")
	f.BoolVar(&cmd.foldConstants, "fold-constants", false, "Run the AST constant folder before codegen")
}

func (cmd *buildCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", compileerror.IOError{Path: path, Message: err.Error()})
		return subcommands.ExitFailure
	}
	source := string(data)

	tokens, err := lexer.New(path, source).Scan()
	if err != nil {
		fmt.Fprintln(os.Stderr, compileerror.FormatDiagnostic(err, source))
		return subcommands.ExitFailure
	}
	if cmd.printTokens {
		printTokens(tokens)
	}

	tu, err := parser.Parse(path, tokens)
	if err != nil {
		fmt.Fprintln(os.Stderr, compileerror.FormatDiagnostic(err, source))
		return subcommands.ExitFailure
	}

	if err := semantics.Analyze(path, tu); err != nil {
		fmt.Fprintln(os.Stderr, compileerror.FormatDiagnostic(err, source))
		return subcommands.ExitFailure
	}

	if cmd.foldConstants {
		optimizer.Fold(tu)
	}

	if cmd.printAST {
		printAST(tu)
	}

	ir, err := codegen.Generate(path, tu)
	if err != nil {
		fmt.Fprintln(os.Stderr, compileerror.FormatDiagnostic(err, source))
		return subcommands.ExitFailure
	}

	ssaPath := strings.TrimSuffix(path, ".mayo") + ".ssa"
	if err := os.WriteFile(ssaPath, []byte(ir), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", compileerror.IOError{Path: ssaPath, Message: err.Error()})
		return subcommands.ExitFailure
	}

	return runDownstream(ssaPath, cmd.output, cmd.cflags)
}

// runDownstream drives the conceptual assembler/linker chain of spec §6:
// the IR assembler ("qbe" in the reference toolchain) lowers the .ssa file
// written beside the source to an .s file, then cc links it into output
// with --CFLAGS appended.
// These tools are external collaborators (spec §1 "Out of scope"); their
// absence from the host is reported as a build failure, not a panic.
func runDownstream(ssaPath, output, cflags string) subcommands.ExitStatus {
	asmPath := strings.TrimSuffix(ssaPath, ".ssa") + ".s"

	qbe := exec.Command("qbe", "-o", asmPath, ssaPath)
	qbe.Stderr = os.Stderr
	if err := qbe.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "💥 IR assembler failed: %v\n", err)
		return subcommands.ExitFailure
	}

	ccArgs := []string{"-o", output, asmPath}
	if cflags != "" {
		ccArgs = append(ccArgs, strings.Fields(cflags)...)
	}
	cc := exec.Command("cc", ccArgs...)
	cc.Stderr = os.Stderr
	if err := cc.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "💥 Linker failed: %v\n", err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
