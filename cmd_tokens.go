package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"mayoc/compileerror"
	"mayoc/lexer"
	"mayoc/token"

	"github.com/google/subcommands"
)

// tokensCmd implements the `tokens` subcommand, a standalone exposure of
// `build`'s --print-tokens flag for scripting against the lexer alone.
type tokensCmd struct{}

func (*tokensCmd) Name() string     { return "tokens" }
func (*tokensCmd) Synopsis() string { return "Dump the token stream of a source file" }
func (*tokensCmd) Usage() string {
	return `tokens <file>:
  Lex a mayo source file and print its token stream.
`
}

func (*tokensCmd) SetFlags(f *flag.FlagSet) {}

func (cmd *tokensCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	printTokens(tokens)
	return subcommands.ExitSuccess
}

func printTokens(tokens []token.Token) {
	for _, tok := range tokens {
		if tok.Literal != nil {
			fmt.Printf("%4d:%-3d %-14s %-12q %v\n", tok.Line, tok.Column, tok.Kind, tok.Lexeme, tok.Literal)
			continue
		}
		fmt.Printf("%4d:%-3d %-14s %q\n", tok.Line, tok.Column, tok.Kind, tok.Lexeme)
	}
}
