// Package errs is the shared error taxonomy for the language pipeline:
// scan, parse, resolve and interpret errors, plus the caret-annotated
// report renderer used by both the TCP session and the CLI.
//
// What: one concrete error type per pipeline stage, each carrying the
// token.Span needed to point back into the original source.
// How: every constructor wraps the error with github.com/pkg/errors so a
// server can log a full stack trace at debug level while still handing
// the client only the clean, human-readable report.
// Why: a host (session, CLI, test) needs to branch on error *kind*
// without string-matching messages, and needs the original span to
// render a useful diagnostic.
package errs

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/lykiadb/lykiadb/internal/token"
)

// ScanError reports a lexical failure.
type ScanError struct {
	Kind string // "UnexpectedCharacter" | "UnterminatedString" | "MalformedNumber"
	Span token.Span
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%s at %s", e.Kind, e.Span)
}

func NewScanError(kind string, span token.Span) error {
	return errors.WithStack(&ScanError{Kind: kind, Span: span})
}

// ParseError reports a syntactic failure.
type ParseError struct {
	Kind     string // "UnexpectedToken" | "MissingToken" | "InvalidAssignmentTarget"
	Token    token.Token
	Expected token.Kind
	HasExp   bool
}

func (e *ParseError) Error() string {
	if e.HasExp {
		return fmt.Sprintf("%s: expected %s near %q at %s", e.Kind, e.Expected, e.Token.Lexeme, e.Token.Span)
	}
	return fmt.Sprintf("%s near %q at %s", e.Kind, e.Token.Lexeme, e.Token.Span)
}

func NewUnexpectedToken(tok token.Token) error {
	return errors.WithStack(&ParseError{Kind: "UnexpectedToken", Token: tok})
}

func NewMissingToken(tok token.Token, expected token.Kind) error {
	return errors.WithStack(&ParseError{Kind: "MissingToken", Token: tok, Expected: expected, HasExp: true})
}

func NewInvalidAssignmentTarget(tok token.Token) error {
	return errors.WithStack(&ParseError{Kind: "InvalidAssignmentTarget", Token: tok})
}

// ResolveError reports a static binding failure found by the resolver.
type ResolveError struct {
	Kind string // "ReadInOwnInitializer"
	Name string
	Span token.Span
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s: %q at %s", e.Kind, e.Name, e.Span)
}

func NewReadInOwnInitializer(name string, span token.Span) error {
	return errors.WithStack(&ResolveError{Kind: "ReadInOwnInitializer", Name: name, Span: span})
}

// InterpretError reports a runtime evaluation failure.
type InterpretError struct {
	Kind     string // "ArityMismatch" | "NotCallable" | "Other"
	Span     token.Span
	Expected int
	Found    int
	Message  string
}

func (e *InterpretError) Error() string {
	switch e.Kind {
	case "ArityMismatch":
		return fmt.Sprintf("arity mismatch: expected %d, found %d at %s", e.Expected, e.Found, e.Span)
	case "NotCallable":
		return fmt.Sprintf("not callable at %s", e.Span)
	default:
		return e.Message
	}
}

func NewArityMismatch(span token.Span, expected, found int) error {
	return errors.WithStack(&InterpretError{Kind: "ArityMismatch", Span: span, Expected: expected, Found: found})
}

func NewNotCallable(span token.Span) error {
	return errors.WithStack(&InterpretError{Kind: "NotCallable", Span: span})
}

func NewOther(message string) error {
	return errors.WithStack(&InterpretError{Kind: "Other", Message: message})
}

// Report renders a human-readable diagnostic: "<Message> at line <n>" plus
// a hint and a caret pointing at the offending span in source. Grounded on
// original_source/src/runtime/error.rs's report_error match arms.
func Report(source string, err error) string {
	cause := errors.Cause(err)
	switch e := cause.(type) {
	case *ScanError:
		hint := map[string]string{
			"UnexpectedCharacter": "Remove this character.",
			"UnterminatedString":  `Terminate the string with a double quote (").`,
			"MalformedNumber":     "Make sure the number literal is well-formed.",
		}[e.Kind]
		return render(source, humanize(e.Kind), hint, e.Span)
	case *ParseError:
		switch e.Kind {
		case "MissingToken":
			return render(source, "Missing token", fmt.Sprintf("Add a %s token after %q.", e.Expected, e.Token.Lexeme), e.Token.Span)
		case "InvalidAssignmentTarget":
			return render(source, "Invalid assignment target", fmt.Sprintf("No value can be assigned to %q.", e.Token.Lexeme), e.Token.Span)
		default:
			return render(source, "Unexpected token", fmt.Sprintf("Unexpected token %q.", e.Token.Lexeme), e.Token.Span)
		}
	case *ResolveError:
		return render(source, "Variable read in its own initializer", fmt.Sprintf("%q is read before it finishes initializing.", e.Name), e.Span)
	case *InterpretError:
		switch e.Kind {
		case "ArityMismatch":
			return render(source, "Function arity mismatch", fmt.Sprintf("Function expects %d arguments, while provided %d.", e.Expected, e.Found), e.Span)
		case "NotCallable":
			return render(source, "Not callable", "Expression does not yield a callable.", e.Span)
		default:
			return render(source, e.Message, "", token.Span{})
		}
	default:
		return err.Error()
	}
}

// KindOf reports the pipeline stage a client can branch on without
// string-matching a message: "Scan", "Parse", "Resolve", "Interpret", or
// "Other" for anything not constructed by this package.
func KindOf(err error) string {
	switch errors.Cause(err).(type) {
	case *ScanError:
		return "Scan"
	case *ParseError:
		return "Parse"
	case *ResolveError:
		return "Resolve"
	case *InterpretError:
		return "Interpret"
	default:
		return "Other"
	}
}

func humanize(kind string) string {
	switch kind {
	case "UnexpectedCharacter":
		return "Unexpected character"
	case "UnterminatedString":
		return "Unterminated string"
	case "MalformedNumber":
		return "Malformed number literal"
	default:
		return kind
	}
}

func render(source, message, hint string, span token.Span) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s at line %d", message, span.Line+1)
	if hint != "" {
		b.WriteString("\n  ")
		b.WriteString(hint)
	}
	if line, col, ok := sourceLine(source, span); ok {
		b.WriteString("\n  ")
		b.WriteString(line)
		b.WriteString("\n  ")
		b.WriteString(caret(col, span))
	}
	return b.String()
}

// sourceLine returns the text of span.Line plus the column (byte offset
// from that line's start) where span.Start falls.
func sourceLine(source string, span token.Span) (line string, col int, ok bool) {
	lines := strings.Split(source, "\n")
	if span.Line < 0 || span.Line >= len(lines) {
		return "", 0, false
	}
	offset := 0
	for i := 0; i < span.Line; i++ {
		offset += len(lines[i]) + 1
	}
	col = span.Start - offset
	if col < 0 {
		col = 0
	}
	return lines[span.Line], col, true
}

func caret(col int, span token.Span) string {
	width := span.End - span.Start
	if width < 1 {
		width = 1
	}
	return strings.Repeat(" ", col) + strings.Repeat("^", width)
}
