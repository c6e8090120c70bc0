package sql

import "fmt"

type tokenType int

const (
	tokEOF tokenType = iota
	tokIdent
	tokString
	tokNumber
	tokStar
	tokComma
	tokDot
	tokLParen
	tokRParen
	tokSemicolon
	tokEq
	tokGt
	tokGte
	tokLt
	tokLte
	tokPlus
	tokMinus
)

func (t tokenType) String() string {
	switch t {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokString:
		return "string"
	case tokNumber:
		return "number"
	case tokStar:
		return "'*'"
	case tokComma:
		return "','"
	case tokDot:
		return "'.'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokSemicolon:
		return "';'"
	case tokEq:
		return "'='"
	case tokGt:
		return "'>'"
	case tokGte:
		return "'>='"
	case tokLt:
		return "'<'"
	case tokLte:
		return "'<='"
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	default:
		return "unknown token"
	}
}

type token struct {
	typ    tokenType
	lexeme string
	pos    int
}

// ParseError reports a rejected or malformed query with the byte offset
// where parsing stopped.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
}
