package syntax

import "fmt"

// TokenKind identifies a lexical token.
type TokenKind int

const (
	EOF TokenKind = iota
	BadCharacter

	Ident
	IntLiteral
	LongLiteral
	FloatLiteral
	DoubleLiteral
	CharLiteral
	StringLiteral

	KwAbstract
	KwBoolean
	KwByte
	KwChar
	KwClass
	KwDouble
	KwElse
	KwExtends
	KwFalse
	KwFinal
	KwFloat
	KwFor
	KwIf
	KwImplements
	KwImport
	KwInstanceof
	KwInt
	KwInterface
	KwLong
	KwNew
	KwNull
	KwPackage
	KwPrivate
	KwProtected
	KwPublic
	KwReturn
	KwShort
	KwStatic
	KwSuper
	KwThis
	KwThrows
	KwTrue
	KwVoid
	KwWhile

	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Semicolon
	Comma
	Dot
	Ellipsis
	At
	Colon
	ColonColon
	Question
	Arrow

	Eq
	EqEq
	Ne
	Lt
	Gt
	Le
	Plus
	Minus
	Star
	Slash
	Percent
	PlusPlus
	MinusMinus
	Bang
	Tilde
	AndAnd
	OrOr
	And
	Or
	Xor
	Shl
	PlusEq
	MinusEq
	StarEq
	SlashEq
	PercentEq
	AndEq
	OrEq
	XorEq
	ShlEq

	// Produced only by collapsing adjacent '>' and '=' tokens.
	Ge
	Shr
	Ushr
	ShrEq
	UshrEq
)

var tokenNames = map[TokenKind]string{
	EOF:           "EOF",
	BadCharacter:  "BadCharacter",
	Ident:         "Ident",
	IntLiteral:    "IntLiteral",
	LongLiteral:   "LongLiteral",
	FloatLiteral:  "FloatLiteral",
	DoubleLiteral: "DoubleLiteral",
	CharLiteral:   "CharLiteral",
	StringLiteral: "StringLiteral",
}

var keywords = map[string]TokenKind{
	"abstract":   KwAbstract,
	"boolean":    KwBoolean,
	"byte":       KwByte,
	"char":       KwChar,
	"class":      KwClass,
	"double":     KwDouble,
	"else":       KwElse,
	"extends":    KwExtends,
	"false":      KwFalse,
	"final":      KwFinal,
	"float":      KwFloat,
	"for":        KwFor,
	"if":         KwIf,
	"implements": KwImplements,
	"import":     KwImport,
	"instanceof": KwInstanceof,
	"int":        KwInt,
	"interface":  KwInterface,
	"long":       KwLong,
	"new":        KwNew,
	"null":       KwNull,
	"package":    KwPackage,
	"private":    KwPrivate,
	"protected":  KwProtected,
	"public":     KwPublic,
	"return":     KwReturn,
	"short":      KwShort,
	"static":     KwStatic,
	"super":      KwSuper,
	"this":       KwThis,
	"throws":     KwThrows,
	"true":       KwTrue,
	"void":       KwVoid,
	"while":      KwWhile,
}

var punctuation = map[TokenKind]string{
	LParen:     "(",
	RParen:     ")",
	LBrace:     "{",
	RBrace:     "}",
	LBracket:   "[",
	RBracket:   "]",
	Semicolon:  ";",
	Comma:      ",",
	Dot:        ".",
	Ellipsis:   "...",
	At:         "@",
	Colon:      ":",
	ColonColon: "::",
	Question:   "?",
	Arrow:      "->",
	Eq:         "=",
	EqEq:       "==",
	Ne:         "!=",
	Lt:         "<",
	Gt:         ">",
	Le:         "<=",
	Plus:       "+",
	Minus:      "-",
	Star:       "*",
	Slash:      "/",
	Percent:    "%",
	PlusPlus:   "++",
	MinusMinus: "--",
	Bang:       "!",
	Tilde:      "~",
	AndAnd:     "&&",
	OrOr:       "||",
	And:        "&",
	Or:         "|",
	Xor:        "^",
	Shl:        "<<",
	PlusEq:     "+=",
	MinusEq:    "-=",
	StarEq:     "*=",
	SlashEq:    "/=",
	PercentEq:  "%=",
	AndEq:      "&=",
	OrEq:       "|=",
	XorEq:      "^=",
	ShlEq:      "<<=",
	Ge:         ">=",
	Shr:        ">>",
	Ushr:       ">>>",
	ShrEq:      ">>=",
	UshrEq:     ">>>=",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	if text, ok := punctuation[k]; ok {
		return fmt.Sprintf("%q", text)
	}
	for text, kw := range keywords {
		if kw == k {
			return text
		}
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// IsKeyword reports whether k is a reserved word.
func (k TokenKind) IsKeyword() bool {
	return k >= KwAbstract && k <= KwWhile
}

// IsLiteral reports whether k starts a literal expression.
func (k TokenKind) IsLiteral() bool {
	switch k {
	case IntLiteral, LongLiteral, FloatLiteral, DoubleLiteral, CharLiteral, StringLiteral,
		KwTrue, KwFalse, KwNull:
		return true
	}
	return false
}

// IsPrimitive reports whether k names a primitive type.
func (k TokenKind) IsPrimitive() bool {
	switch k {
	case KwBoolean, KwByte, KwChar, KwShort, KwInt, KwLong, KwFloat, KwDouble, KwVoid:
		return true
	}
	return false
}

// IsModifier reports whether k is a declaration modifier.
func (k TokenKind) IsModifier() bool {
	switch k {
	case KwPublic, KwPrivate, KwProtected, KwStatic, KwFinal, KwAbstract:
		return true
	}
	return false
}

// Token is a single lexeme together with its byte offset in the source.
type Token struct {
	Kind   TokenKind
	Text   string
	Offset int
}

// End returns the offset just past the token.
func (t Token) End() int {
	return t.Offset + len(t.Text)
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}
