package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"mayoc/ast"
	"mayoc/astdump"
	"mayoc/compileerror"
	"mayoc/lexer"
	"mayoc/parser"
	"mayoc/semantics"

	"github.com/google/subcommands"
)

// astCmd implements the `ast` subcommand, a standalone exposure of
// `build`'s --print-ast flag that dumps the fully analyzed (type
// annotated) tree as JSON instead of discarding it after a compile.
type astCmd struct{}

func (*astCmd) Name() string     { return "ast" }
func (*astCmd) Synopsis() string { return "Dump the analyzed AST of a source file as JSON" }
func (*astCmd) Usage() string {
	return `ast <file>:
  Lex, parse and semantically analyze a mayo source file, printing its AST.
`
}

func (*astCmd) SetFlags(f *flag.FlagSet) {}

func (cmd *astCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	tu, err := parser.Parse(path, tokens)
	if err != nil {
		fmt.Fprintln(os.Stderr, compileerror.FormatDiagnostic(err, source))
		return subcommands.ExitFailure
	}

	if err := semantics.Analyze(path, tu); err != nil {
		fmt.Fprintln(os.Stderr, compileerror.FormatDiagnostic(err, source))
		return subcommands.ExitFailure
	}

	printAST(tu)
	return subcommands.ExitSuccess
}

func printAST(tu *ast.TranslationUnit) {
	out, err := json.MarshalIndent(astdump.Dump(tu), "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "🤖 %s\n", compileerror.InternalError{Message: err.Error()})
		return
	}
	fmt.Println(string(out))
}
