package formula

import "fmt"

// TokenType represents different types of tokens in formulas
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenEquals
	TokenNumber
	TokenString
	TokenCell
	TokenRange
	TokenFunction
	TokenBinaryOp
	TokenComma
	TokenLeftParen
	TokenRightParen
	TokenIdentifier
)

// character classification constants. slightly easier to read.
const (
	charQuote      = '"'
	charApostrophe = '\''
	charDollar     = '$'
	charPeriod     = '.'
	charColon      = ':'
	charExclaim    = '!'
	charUnderscore = '_'
)

// Token represents a lexical token with position information
type Token struct {
	Type  TokenType
	Value string
	Pos   int // rune position in input
}

// Lexer tokenizes formula expressions
type Lexer struct {
	runes  []rune // UTF-8 aware representation
	pos    int
	tokens []Token
}

// NewLexer creates a new lexer for the given formula input
func NewLexer(input string) *Lexer {
	return &Lexer{
		runes:  []rune(input),
		pos:    0,
		tokens: []Token{},
	}
}

// Tokenize scans the whole input and returns its tokens, ending with an
// EOF token. The first error stops the scan.
func (l *Lexer) Tokenize() ([]Token, error) {
	for l.pos < len(l.runes) {
		ch := l.runes[l.pos]

		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			l.pos++

		case ch == '=' && len(l.tokens) == 0:
			l.emit(TokenEquals, "=", l.pos)
			l.pos++

		case ch >= '0' && ch <= '9' || ch == charPeriod:
			l.lexNumber()

		case ch == charQuote:
			if err := l.lexString(); err != nil {
				return nil, err
			}

		case ch == charApostrophe:
			if err := l.lexQuotedReference(); err != nil {
				return nil, err
			}

		case isWordRune(ch):
			l.lexWord()

		case ch == '+' || ch == '-' || ch == '*' || ch == '/' || ch == '^':
			l.emit(TokenBinaryOp, string(ch), l.pos)
			l.pos++

		case ch == ',':
			l.emit(TokenComma, ",", l.pos)
			l.pos++

		case ch == '(':
			l.emit(TokenLeftParen, "(", l.pos)
			l.pos++

		case ch == ')':
			l.emit(TokenRightParen, ")", l.pos)
			l.pos++

		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", ch, l.pos)
		}
	}

	l.emit(TokenEOF, "", l.pos)
	return l.tokens, nil
}

func (l *Lexer) emit(t TokenType, value string, pos int) {
	l.tokens = append(l.tokens, Token{Type: t, Value: value, Pos: pos})
}

// lexNumber scans a numeric literal, or a reference with a numeric table
// prefix like 2!A1.
func (l *Lexer) lexNumber() {
	start := l.pos
	seenDot := false
	for l.pos < len(l.runes) {
		ch := l.runes[l.pos]
		if ch >= '0' && ch <= '9' {
			l.pos++
		} else if ch == charPeriod && !seenDot {
			seenDot = true
			l.pos++
		} else {
			break
		}
	}
	if !seenDot && l.pos < len(l.runes) && l.runes[l.pos] == charExclaim {
		l.pos++
		l.scanReferenceWord()
		l.finishReference(start)
		return
	}
	l.emit(TokenNumber, string(l.runes[start:l.pos]), start)
}

// lexString scans a double-quoted string literal. doubled quotes escape.
func (l *Lexer) lexString() error {
	start := l.pos
	l.pos++ // opening quote
	value := []rune{}
	for l.pos < len(l.runes) {
		ch := l.runes[l.pos]
		if ch == charQuote {
			if l.pos+1 < len(l.runes) && l.runes[l.pos+1] == charQuote {
				value = append(value, charQuote)
				l.pos += 2
				continue
			}
			l.pos++
			l.emit(TokenString, string(value), start)
			return nil
		}
		value = append(value, ch)
		l.pos++
	}
	return fmt.Errorf("unterminated string starting at position %d", start)
}

// lexQuotedReference scans a quoted table prefix like 'My Table'!A1 into a
// cell or range token carrying the prefix.
func (l *Lexer) lexQuotedReference() error {
	start := l.pos
	l.pos++ // opening apostrophe
	for l.pos < len(l.runes) && l.runes[l.pos] != charApostrophe {
		l.pos++
	}
	if l.pos >= len(l.runes) {
		return fmt.Errorf("unterminated table name starting at position %d", start)
	}
	l.pos++ // closing apostrophe
	if l.pos >= len(l.runes) || l.runes[l.pos] != charExclaim {
		return fmt.Errorf("expected '!' after table name at position %d", l.pos)
	}
	l.pos++
	refStart := l.pos
	l.scanReferenceWord()
	if l.pos == refStart {
		return fmt.Errorf("expected cell reference after table name at position %d", l.pos)
	}
	l.finishReference(start)
	return nil
}

// lexWord scans identifiers, function names, cell references, and ranges,
// including an unquoted table prefix.
func (l *Lexer) lexWord() {
	start := l.pos
	l.scanReferenceWord()

	// table-prefixed reference
	if l.pos < len(l.runes) && l.runes[l.pos] == charExclaim {
		l.pos++
		l.scanReferenceWord()
		l.finishReference(start)
		return
	}

	word := string(l.runes[start:l.pos])

	// function call
	if l.pos < len(l.runes) && l.runes[l.pos] == '(' {
		l.emit(TokenFunction, word, start)
		return
	}

	if _, ok := ParseReference(word); ok {
		l.finishReference(start)
		return
	}

	l.emit(TokenIdentifier, word, start)
}

// scanReferenceWord consumes letters, digits, $ and _ without classifying
func (l *Lexer) scanReferenceWord() {
	for l.pos < len(l.runes) && isWordRune(l.runes[l.pos]) {
		l.pos++
	}
}

// finishReference turns the scanned word starting at start into a cell
// token, extending it through ":ref" into a range token when present.
func (l *Lexer) finishReference(start int) {
	if l.pos < len(l.runes) && l.runes[l.pos] == charColon {
		l.pos++
		l.scanReferenceWord()
		l.emit(TokenRange, string(l.runes[start:l.pos]), start)
		return
	}
	l.emit(TokenCell, string(l.runes[start:l.pos]), start)
}

func isWordRune(ch rune) bool {
	return ch >= 'A' && ch <= 'Z' || ch >= 'a' && ch <= 'z' ||
		ch >= '0' && ch <= '9' || ch == charDollar || ch == charUnderscore
}
