// Package lexer turns a LykiaDB source string into a token.Token sequence.
//
// What: a single-pass, rune-aware scanner recognizing numbers, strings,
// `$name` and bare identifiers, two keyword tables (case-sensitive script
// keywords and case-insensitive SQL keywords), punctuation, and `//`
// line comments.
// How: Scan() repeatedly pulls runes from the source and dispatches on
// the first character of the next lexeme, mirroring
// internal/engine/lexer.go's nextToken dispatch in the teacher repo. It
// stops at the first error (no recovery), per the spec.
// Why: a compact, single-pass scanner keeps error messages local and
// actionable without needing a separate recovery pass.
package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lykiadb/lykiadb/internal/errs"
	"github.com/lykiadb/lykiadb/internal/token"
)

// sqlFold upper-cases a SQL keyword candidate the Unicode-correct way
// (cases.Upper rather than strings.ToUpper), since identifiers may
// contain non-ASCII letters.
var sqlFold = cases.Upper(language.Und)

// Lexer holds scanning state over one source string.
type Lexer struct {
	src  string
	pos  int
	line int
}

// New creates a Lexer over src.
func New(src string) *Lexer {
	return &Lexer{src: src}
}

// Scan tokenizes the entire source, returning a sequence terminated by a
// KindEOF token, or the first scan error encountered.
func Scan(src string) ([]token.Token, error) {
	lx := New(src)
	var toks []token.Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == token.KindEOF {
			return toks, nil
		}
	}
}

func (lx *Lexer) peek() rune {
	return lx.peekN(0)
}

// peekN returns the rune n runes ahead of the current position, decoding
// UTF-8 rather than indexing bytes so a multi-byte character counts as one
// rune of lookahead, not one byte.
func (lx *Lexer) peekN(n int) rune {
	p := lx.pos
	for i := 0; i < n; i++ {
		if p >= len(lx.src) {
			return 0
		}
		_, size := utf8.DecodeRuneInString(lx.src[p:])
		p += size
	}
	if p >= len(lx.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(lx.src[p:])
	return r
}

func (lx *Lexer) advance() rune {
	if lx.pos >= len(lx.src) {
		return 0
	}
	r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
	lx.pos += size
	if r == '\n' {
		lx.line++
	}
	return r
}

func (lx *Lexer) skipWhitespaceAndComments() {
	for {
		if lx.pos >= len(lx.src) {
			return
		}
		r := lx.peek()
		if unicode.IsSpace(r) {
			lx.advance()
			continue
		}
		if r == '/' && lx.peekN(1) == '/' {
			for lx.pos < len(lx.src) && lx.peek() != '\n' {
				lx.advance()
			}
			continue
		}
		return
	}
}

func (lx *Lexer) span(start, startLine int) token.Span {
	return token.Span{Start: start, End: lx.pos, Line: startLine, LineEnd: lx.line}
}

// Next scans and returns the next token, or a scan error.
func (lx *Lexer) Next() (token.Token, error) {
	lx.skipWhitespaceAndComments()
	start, startLine := lx.pos, lx.line

	if lx.pos >= len(lx.src) {
		return token.Token{Kind: token.KindEOF, Span: lx.span(start, startLine)}, nil
	}

	r := lx.peek()
	switch {
	case r == '"':
		return lx.scanString(start, startLine)
	case unicode.IsDigit(r):
		return lx.scanNumber(start, startLine)
	case r == '$':
		return lx.scanDollarIdent(start, startLine)
	case r == '_' || unicode.IsLetter(r):
		return lx.scanIdentOrKeyword(start, startLine)
	default:
		return lx.scanSymbol(start, startLine)
	}
}

func (lx *Lexer) scanString(start, startLine int) (token.Token, error) {
	lx.advance() // opening quote
	var b strings.Builder
	for {
		if lx.pos >= len(lx.src) {
			return token.Token{}, errs.NewScanError("UnterminatedString", lx.span(start, startLine))
		}
		ch := lx.advance()
		if ch == '\\' && lx.peek() == '"' {
			lx.advance()
			b.WriteRune('"')
			continue
		}
		if ch == '"' {
			break
		}
		b.WriteRune(ch)
	}
	sp := lx.span(start, startLine)
	return token.Token{
		Kind:    token.KindString,
		Literal: token.Literal{Str: b.String()},
		Lexeme:  lx.src[start:lx.pos],
		Span:    sp,
	}, nil
}

func (lx *Lexer) scanNumber(start, startLine int) (token.Token, error) {
	sawDot := false
	sawDigitAfterDot := true
	for lx.pos < len(lx.src) {
		ch := lx.peek()
		switch {
		case unicode.IsDigit(ch):
			lx.advance()
			if sawDot {
				sawDigitAfterDot = true
			}
		case ch == '.' && !sawDot:
			sawDot = true
			sawDigitAfterDot = false
			lx.advance()
		case (ch == 'e' || ch == 'E') && lx.isExponentStart():
			lx.advance()
			if lx.peek() == '+' || lx.peek() == '-' {
				lx.advance()
			}
			if !unicode.IsDigit(lx.peek()) {
				return token.Token{}, errs.NewScanError("MalformedNumber", lx.span(start, startLine))
			}
			for unicode.IsDigit(lx.peek()) {
				lx.advance()
			}
		default:
			goto done
		}
	}
done:
	if sawDot && !sawDigitAfterDot {
		return token.Token{}, errs.NewScanError("MalformedNumber", lx.span(start, startLine))
	}
	lexeme := lx.src[start:lx.pos]
	f, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return token.Token{}, errs.NewScanError("MalformedNumber", lx.span(start, startLine))
	}
	return token.Token{
		Kind:    token.KindNumber,
		Literal: token.Literal{Num: f},
		Lexeme:  lexeme,
		Span:    lx.span(start, startLine),
	}, nil
}

func (lx *Lexer) isExponentStart() bool {
	n := lx.peekN(1)
	if n == '+' || n == '-' {
		n = lx.peekN(2)
	}
	return unicode.IsDigit(n)
}

func (lx *Lexer) scanDollarIdent(start, startLine int) (token.Token, error) {
	lx.advance() // consume '$'
	nameStart := lx.pos
	for lx.pos < len(lx.src) && isIdentRune(lx.peek()) {
		lx.advance()
	}
	name := lx.src[nameStart:lx.pos]
	return token.Token{
		Kind:   token.KindIdentifier,
		Dollar: true,
		Lexeme: name,
		Span:   lx.span(start, startLine),
	}, nil
}

func (lx *Lexer) scanIdentOrKeyword(start, startLine int) (token.Token, error) {
	for lx.pos < len(lx.src) && isIdentRune(lx.peek()) {
		lx.advance()
	}
	lexeme := lx.src[start:lx.pos]
	sp := lx.span(start, startLine)

	switch lexeme {
	case "true":
		return token.Token{Kind: token.KindTrue, Literal: token.Literal{Bool: true}, Lexeme: lexeme, Span: sp}, nil
	case "false":
		return token.Token{Kind: token.KindFalse, Literal: token.Literal{Bool: false}, Lexeme: lexeme, Span: sp}, nil
	case "null":
		return token.Token{Kind: token.KindNull, Literal: token.Literal{IsNull: true}, Lexeme: lexeme, Span: sp}, nil
	}
	if isScriptKeyword(lexeme) {
		return token.Token{Kind: token.KindKeyword, Lexeme: lexeme, Span: sp}, nil
	}
	if upper := sqlFold.String(lexeme); isSQLKeyword(upper) {
		return token.Token{Kind: token.KindSQLKeyword, Lexeme: upper, Span: sp}, nil
	}
	return token.Token{Kind: token.KindIdentifier, Lexeme: lexeme, Span: sp}, nil
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

var twoCharSymbols = map[string]bool{
	"==": true, "!=": true, "<=": true, ">=": true,
}

func (lx *Lexer) scanSymbol(start, startLine int) (token.Token, error) {
	first := lx.advance()
	switch first {
	case '(', ')', '{', '}', ',', ':', ';', '.', '-', '+', '/', '*':
		return token.Token{Kind: token.KindSymbol, Lexeme: string(first), Span: lx.span(start, startLine)}, nil
	case '=', '!', '<', '>':
		if second := lx.peek(); twoCharSymbols[string(first)+string(second)] {
			lx.advance()
			return token.Token{Kind: token.KindSymbol, Lexeme: string(first) + string(second), Span: lx.span(start, startLine)}, nil
		}
		return token.Token{Kind: token.KindSymbol, Lexeme: string(first), Span: lx.span(start, startLine)}, nil
	default:
		return token.Token{}, errs.NewScanError("UnexpectedCharacter", lx.span(start, startLine))
	}
}
