package syntax

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lex splits src into tokens. Whitespace and comments are skipped; their
// text stays recoverable from the gaps between token offsets. Lexing never
// fails: unrecognized input becomes BadCharacter tokens.
func Lex(src string) []Token {
	l := &lexer{src: src}
	for {
		l.skipTrivia()
		if l.pos >= len(l.src) {
			return l.tokens
		}
		l.next()
	}
}

type lexer struct {
	src    string
	pos    int
	tokens []Token
}

func (l *lexer) emit(kind TokenKind, start int) {
	l.tokens = append(l.tokens, Token{Kind: kind, Text: l.src[start:l.pos], Offset: start})
}

func (l *lexer) peek(n int) byte {
	if l.pos+n < len(l.src) {
		return l.src[l.pos+n]
	}
	return 0
}

func (l *lexer) skipTrivia() {
	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			l.pos++
		case c == '/' && l.peek(1) == '/':
			end := strings.IndexByte(l.src[l.pos:], '\n')
			if end < 0 {
				l.pos = len(l.src)
			} else {
				l.pos += end
			}
		case c == '/' && l.peek(1) == '*':
			end := strings.Index(l.src[l.pos+2:], "*/")
			if end < 0 {
				l.pos = len(l.src)
			} else {
				l.pos += end + 4
			}
		default:
			return
		}
	}
}

func (l *lexer) next() {
	start := l.pos
	c := l.src[l.pos]

	switch {
	case isIdentStart(c):
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		if kw, ok := keywords[l.src[start:l.pos]]; ok {
			l.emit(kw, start)
		} else {
			l.emit(Ident, start)
		}
		return
	case c >= utf8.RuneSelf:
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if unicode.IsLetter(r) {
			l.pos += size
			for l.pos < len(l.src) {
				r, size := utf8.DecodeRuneInString(l.src[l.pos:])
				if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !(r < utf8.RuneSelf && isIdentPart(byte(r))) {
					break
				}
				l.pos += size
			}
			l.emit(Ident, start)
			return
		}
		l.pos += size
		l.emit(BadCharacter, start)
		return
	case isDigit(c) || (c == '.' && isDigit(l.peek(1))):
		l.emit(l.number(), start)
		return
	case c == '"':
		l.quoted('"')
		l.emit(StringLiteral, start)
		return
	case c == '\'':
		l.quoted('\'')
		l.emit(CharLiteral, start)
		return
	}

	l.emit(l.operator(), start)
}

// quoted consumes a quoted literal, stopping at the closing quote or the end
// of the line.
func (l *lexer) quoted(quote byte) {
	l.pos++
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
			continue
		case '\n':
			return
		case quote:
			l.pos++
			return
		}
		l.pos++
	}
	if l.pos > len(l.src) {
		l.pos = len(l.src)
	}
}

func (l *lexer) number() TokenKind {
	if l.src[l.pos] == '0' && (l.peek(1) == 'x' || l.peek(1) == 'X' || l.peek(1) == 'b' || l.peek(1) == 'B') {
		l.pos += 2
		for l.pos < len(l.src) && (isHexDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
			l.pos++
		}
		if l.pos < len(l.src) && (l.src[l.pos] == 'l' || l.src[l.pos] == 'L') {
			l.pos++
			return LongLiteral
		}
		return IntLiteral
	}

	floating := false
	l.digits()
	if l.pos < len(l.src) && l.src[l.pos] == '.' && isDigit(l.peek(1)) {
		floating = true
		l.pos++
		l.digits()
	} else if l.pos < len(l.src) && l.src[l.pos] == '.' && !isIdentStart(l.peek(1)) && l.peek(1) != '.' {
		floating = true
		l.pos++
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		save := l.pos
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		if l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			floating = true
			l.digits()
		} else {
			l.pos = save
		}
	}

	if l.pos < len(l.src) {
		switch l.src[l.pos] {
		case 'l', 'L':
			l.pos++
			return LongLiteral
		case 'f', 'F':
			l.pos++
			return FloatLiteral
		case 'd', 'D':
			l.pos++
			return DoubleLiteral
		}
	}
	if floating {
		return DoubleLiteral
	}
	return IntLiteral
}

func (l *lexer) digits() {
	for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
		l.pos++
	}
}

// operator lexes punctuation using longest match. A '>' is always lexed on
// its own; the parser re-joins '>>', '>>>' and '>=' so that nested type
// argument lists close correctly.
func (l *lexer) operator() TokenKind {
	c := l.src[l.pos]
	two := func(next byte, long, short TokenKind) TokenKind {
		if l.peek(1) == next {
			l.pos += 2
			return long
		}
		l.pos++
		return short
	}

	switch c {
	case '(':
		l.pos++
		return LParen
	case ')':
		l.pos++
		return RParen
	case '{':
		l.pos++
		return LBrace
	case '}':
		l.pos++
		return RBrace
	case '[':
		l.pos++
		return LBracket
	case ']':
		l.pos++
		return RBracket
	case ';':
		l.pos++
		return Semicolon
	case ',':
		l.pos++
		return Comma
	case '@':
		l.pos++
		return At
	case '?':
		l.pos++
		return Question
	case '~':
		l.pos++
		return Tilde
	case '>':
		l.pos++
		return Gt
	case '.':
		if l.peek(1) == '.' && l.peek(2) == '.' {
			l.pos += 3
			return Ellipsis
		}
		l.pos++
		return Dot
	case ':':
		return two(':', ColonColon, Colon)
	case '=':
		return two('=', EqEq, Eq)
	case '!':
		return two('=', Ne, Bang)
	case '*':
		return two('=', StarEq, Star)
	case '/':
		return two('=', SlashEq, Slash)
	case '%':
		return two('=', PercentEq, Percent)
	case '^':
		return two('=', XorEq, Xor)
	case '+':
		if l.peek(1) == '+' {
			l.pos += 2
			return PlusPlus
		}
		return two('=', PlusEq, Plus)
	case '-':
		switch l.peek(1) {
		case '-':
			l.pos += 2
			return MinusMinus
		case '>':
			l.pos += 2
			return Arrow
		}
		return two('=', MinusEq, Minus)
	case '&':
		if l.peek(1) == '&' {
			l.pos += 2
			return AndAnd
		}
		return two('=', AndEq, And)
	case '|':
		if l.peek(1) == '|' {
			l.pos += 2
			return OrOr
		}
		return two('=', OrEq, Or)
	case '<':
		if l.peek(1) == '<' {
			if l.peek(2) == '=' {
				l.pos += 3
				return ShlEq
			}
			l.pos += 2
			return Shl
		}
		return two('=', Le, Lt)
	}

	l.pos++
	return BadCharacter
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
