package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"mayoc/compileerror"
	"mayoc/lexer"
	"mayoc/parser"
	"mayoc/semantics"
	"mayoc/token"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"
)

// replCmd implements the `repl` subcommand: an interactive token/AST
// inspector, the direct descendant of nilan's cmd_repl_compiled.go REPL
// loop, rebuilt on chzyer/readline for line editing and history and on
// the front-end's own lexer/parser/semantics instead of the bytecode VM.
type replCmd struct {
	showTokens bool
}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive token/AST inspector" }
func (*replCmd) Usage() string {
	return `repl [--tokens]:
  Read mayo top-level declarations interactively and print their tokens or analyzed AST.
`
}

func (cmd *replCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.showTokens, "tokens", false, "Print the token stream instead of the analyzed AST")
}

func (cmd *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("\nWelcome to the mayoc front-end REPL!")
	fmt.Println("Type an `fn`, `extern fn`, `struct` or `import` declaration; `exit` or Ctrl-D quits.")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     "/tmp/mayoc_repl_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("🤖 %s\n", compileerror.InternalError{Message: err.Error()})
		return subcommands.ExitFailure
	}
	defer rl.Close()

	var buffer strings.Builder
	for {
		if buffer.Len() == 0 {
			rl.SetPrompt(">>> ")
		} else {
			rl.SetPrompt("... ")
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			buffer.Reset()
			continue
		}
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Printf("🤖 %s\n", compileerror.InternalError{Message: err.Error()})
			return subcommands.ExitFailure
		}

		if strings.TrimSpace(line) == "exit" && buffer.Len() == 0 {
			return subcommands.ExitSuccess
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		tokens, err := lexer.New("<repl>", source).Scan()
		if err != nil {
			fmt.Println(compileerror.FormatDiagnostic(err, source))
			buffer.Reset()
			continue
		}

		if !isInputReady(tokens) {
			continue
		}

		if cmd.showTokens {
			printTokens(tokens)
			buffer.Reset()
			continue
		}

		tu, err := parser.Parse("<repl>", tokens)
		if err != nil {
			if allParseErrorsAtEOF(err, tokens) {
				continue
			}
			fmt.Println(compileerror.FormatDiagnostic(err, source))
			buffer.Reset()
			continue
		}

		if err := semantics.Analyze("<repl>", tu); err != nil {
			fmt.Println(compileerror.FormatDiagnostic(err, source))
			buffer.Reset()
			continue
		}

		printAST(tu)
		buffer.Reset()
	}
}

// isInputReady reports whether tokens form a balanced, seemingly complete
// statement: an unbalanced `{` means the user is still typing a multi-line
// `fn`/`struct`/`if` body. Grounded on cmd_repl_compiled.go's
// isInputReady, carried over in spirit for the new token set.
func isInputReady(tokens []token.Token) bool {
	braceBalance := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case token.LCURLY:
			braceBalance++
		case token.RCURLY:
			braceBalance--
		}
	}
	return braceBalance <= 0
}

// allParseErrorsAtEOF reports whether err is a ParseError located at the
// position of the final (EOF) token, meaning the input is merely
// incomplete rather than malformed. Grounded on
// cmd_repl_compiled.go's allParseErrorsAtEOF, adapted from a slice of
// parse errors to the single-error-per-stage model of compileerror.Abort.
func allParseErrorsAtEOF(err error, tokens []token.Token) bool {
	parseErr, ok := err.(compileerror.ParseError)
	if !ok || len(tokens) == 0 {
		return false
	}
	eof := tokens[len(tokens)-1]
	return parseErr.Pos.Line == eof.Line && parseErr.Pos.Column == eof.Column
}
