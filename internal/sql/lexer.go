package sql

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// scan tokenizes the whole input. Keywords are not distinguished here;
// the parser matches identifiers case-insensitively against keywords.
func scan(input string) ([]token, error) {
	var toks []token
	pos := 0

	for pos < len(input) {
		r, size := utf8.DecodeRuneInString(input[pos:])

		switch {
		case unicode.IsSpace(r):
			pos += size
			continue
		case r == '\'':
			lexeme, next, err := scanString(input, pos)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{typ: tokString, lexeme: lexeme, pos: pos})
			pos = next
			continue
		case unicode.IsDigit(r):
			lexeme, next := scanNumber(input, pos)
			toks = append(toks, token{typ: tokNumber, lexeme: lexeme, pos: pos})
			pos = next
			continue
		case unicode.IsLetter(r) || r == '_':
			lexeme, next := scanIdent(input, pos)
			toks = append(toks, token{typ: tokIdent, lexeme: lexeme, pos: pos})
			pos = next
			continue
		}

		simple := map[rune]tokenType{
			'*': tokStar,
			',': tokComma,
			'.': tokDot,
			'(': tokLParen,
			')': tokRParen,
			';': tokSemicolon,
			'=': tokEq,
			'+': tokPlus,
			'-': tokMinus,
		}
		if typ, ok := simple[r]; ok {
			toks = append(toks, token{typ: typ, lexeme: string(r), pos: pos})
			pos += size
			continue
		}

		switch r {
		case '>':
			if strings.HasPrefix(input[pos:], ">=") {
				toks = append(toks, token{typ: tokGte, lexeme: ">=", pos: pos})
				pos += 2
			} else {
				toks = append(toks, token{typ: tokGt, lexeme: ">", pos: pos})
				pos++
			}
		case '<':
			if strings.HasPrefix(input[pos:], "<=") {
				toks = append(toks, token{typ: tokLte, lexeme: "<=", pos: pos})
				pos += 2
			} else {
				toks = append(toks, token{typ: tokLt, lexeme: "<", pos: pos})
				pos++
			}
		case '"':
			return nil, &ParseError{Pos: pos, Msg: "double-quoted identifiers are not supported"}
		case '!':
			return nil, &ParseError{Pos: pos, Msg: "operator '!' is not supported"}
		default:
			return nil, &ParseError{Pos: pos, Msg: "unexpected character " + string(r)}
		}
	}

	toks = append(toks, token{typ: tokEOF, pos: len(input)})
	return toks, nil
}

// scanString reads a single-quoted string literal. A doubled quote inside
// the literal escapes a quote character.
func scanString(input string, start int) (string, int, error) {
	var b strings.Builder
	pos := start + 1
	for pos < len(input) {
		r, size := utf8.DecodeRuneInString(input[pos:])
		if r != '\'' {
			b.WriteRune(r)
			pos += size
			continue
		}
		if strings.HasPrefix(input[pos:], "''") {
			b.WriteByte('\'')
			pos += 2
			continue
		}
		return b.String(), pos + 1, nil
	}
	return "", 0, &ParseError{Pos: start, Msg: "unterminated string literal"}
}

func scanNumber(input string, start int) (string, int) {
	pos := start
	seenDot := false
	seenExp := false
	for pos < len(input) {
		c := input[pos]
		switch {
		case c >= '0' && c <= '9':
			pos++
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
			pos++
		case (c == 'e' || c == 'E') && !seenExp && pos > start:
			seenExp = true
			pos++
			if pos < len(input) && (input[pos] == '+' || input[pos] == '-') {
				pos++
			}
		default:
			return input[start:pos], pos
		}
	}
	return input[start:pos], pos
}

func scanIdent(input string, start int) (string, int) {
	pos := start
	for pos < len(input) {
		r, size := utf8.DecodeRuneInString(input[pos:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			pos += size
			continue
		}
		break
	}
	return input[start:pos], pos
}
