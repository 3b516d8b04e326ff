package compileerror

import (
	"fmt"
	"strings"
)

const (
	colorRed    = "\033[31m"
	colorBold   = "\033[1m"
	colorReset  = "\033[0m"
)

// diagnostic is implemented by every error kind that carries a Position,
// letting FormatDiagnostic render a source snippet for any of them.
type diagnostic interface {
	error
	position() Position
}

func (e LexError) position() Position      { return e.Pos }
func (e ParseError) position() Position    { return e.Pos }
func (e SemanticError) position() Position { return e.Pos }

// FormatDiagnostic renders an error as "--> file:line:col:" followed by up
// to two lines of leading and trailing source context with the offending
// span underlined, matching spec §6's diagnostic format. source is the
// full text of the file named in the error's position; errors without a
// position (IOError, InternalError) render as a plain message.
func FormatDiagnostic(err error, source string) string {
	d, ok := err.(diagnostic)
	if !ok {
		return err.Error()
	}

	pos := d.position()
	var b strings.Builder
	fmt.Fprintf(&b, "--> %s:\n", pos)

	lines := strings.Split(source, "\n")
	lineIdx := pos.Line - 1
	start := lineIdx - 2
	if start < 0 {
		start = 0
	}
	end := lineIdx + 2
	if end >= len(lines) {
		end = len(lines) - 1
	}

	for i := start; i <= end && i < len(lines); i++ {
		fmt.Fprintf(&b, "  %s\n", lines[i])
		if i == lineIdx {
			underline := strings.Repeat(" ", pos.Column) + colorRed + colorBold +
				strings.Repeat("^", max(1, pos.Length)) + colorReset
			fmt.Fprintf(&b, "  %s\n", underline)
		}
	}

	fmt.Fprintf(&b, "%s%s%s\n", colorRed, stripUnderlying(err), colorReset)
	return b.String()
}



// stripUnderlying removes the emoji/kind prefix this package's Error()
// methods add, since FormatDiagnostic already prints the location line.
func stripUnderlying(err error) string {
	switch e := err.(type) {
	case LexError:
		return e.Message
	case ParseError:
		return e.Message
	case SemanticError:
		return e.Message
	default:
		return err.Error()
	}
}

