// Package sql parses a restricted SELECT dialect into a logical plan.
//
// The dialect covers single-table SELECTs with equi-joins on a shared
// column name, WHERE expressions over comparisons and integer arithmetic,
// ORDER BY, and LIMIT. Constructs outside the dialect are rejected with a
// targeted error rather than a generic syntax error.
package sql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/siftql/sift/internal/plan"
)

// reserved words that terminate a table reference, so a following
// identifier is never mistaken for an implicit alias.
var reserved = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "JOIN": true,
	"INNER": true, "LEFT": true, "RIGHT": true, "FULL": true,
	"CROSS": true, "OUTER": true, "ON": true, "USING": true,
	"AS": true, "AND": true, "OR": true, "NOT": true,
	"GROUP": true, "HAVING": true, "ORDER": true, "BY": true,
	"ASC": true, "DESC": true, "NULLS": true, "LIMIT": true,
	"OFFSET": true, "UNION": true, "EXCEPT": true, "INTERSECT": true,
	"FETCH": true, "FOR": true, "WITH": true, "DISTINCT": true,
}

type parser struct {
	toks []token
	i    int
}

// Parse converts a SQL statement into a logical plan.
func Parse(input string) (plan.Node, error) {
	toks, err := scan(input)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}

	if p.cur().typ == tokEOF {
		return nil, p.errHere("empty query")
	}
	if p.isKeyword("WITH") {
		return nil, p.errHere("WITH is not supported")
	}
	if !p.isKeyword("SELECT") {
		return nil, p.errHere("only SELECT statements are supported")
	}

	node, err := p.parseSelect()
	if err != nil {
		return nil, err
	}

	if p.acceptKeyword("ORDER") {
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		keys, err := p.parseSortKeys()
		if err != nil {
			return nil, err
		}
		node = plan.Sort{Input: node, Keys: keys}
	}

	if p.acceptKeyword("LIMIT") {
		n, err := p.parseLimit()
		if err != nil {
			return nil, err
		}
		node = plan.Limit{Input: node, N: n}
	}

	p.accept(tokSemicolon)
	if p.cur().typ != tokEOF {
		return nil, p.trailingError()
	}

	return node, nil
}

func (p *parser) parseSelect() (plan.Node, error) {
	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}
	if p.isKeyword("DISTINCT") {
		return nil, p.errHere("DISTINCT is not supported")
	}

	fields, star, err := p.parseProjection()
	if err != nil {
		return nil, err
	}

	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}

	scan, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	var node plan.Node = scan

	node, err = p.parseJoins(node)
	if err != nil {
		return nil, err
	}

	if p.acceptKeyword("WHERE") {
		pred, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		node = plan.Filter{Input: node, Pred: pred}
	}

	if p.isKeyword("GROUP") {
		return nil, p.errHere("GROUP BY is not supported")
	}
	if p.isKeyword("HAVING") {
		return nil, p.errHere("HAVING is not supported")
	}

	if !star {
		node = plan.Project{Input: node, Fields: fields}
	}
	return node, nil
}

// parseProjection returns the projected expressions, or star=true for a
// bare wildcard, which omits the Project node entirely.
func (p *parser) parseProjection() ([]plan.Expr, bool, error) {
	if p.accept(tokStar) {
		if p.cur().typ == tokComma {
			return nil, false, p.errHere("the wildcard must be the only projection")
		}
		return nil, true, nil
	}

	var fields []plan.Expr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, false, err
		}
		if p.isKeyword("AS") {
			return nil, false, p.errHere("projection aliases are not supported")
		}
		fields = append(fields, e)
		if !p.accept(tokComma) {
			break
		}
		if p.cur().typ == tokStar {
			return nil, false, p.errHere("the wildcard must be the only projection")
		}
	}
	return fields, false, nil
}

func (p *parser) parseTableRef() (plan.Scan, error) {
	name, err := p.expectIdent("table name")
	if err != nil {
		return plan.Scan{}, err
	}

	alias := ""
	if p.acceptKeyword("AS") {
		alias, err = p.expectIdent("table alias")
		if err != nil {
			return plan.Scan{}, err
		}
	} else if tok := p.cur(); tok.typ == tokIdent && !reserved[strings.ToUpper(tok.lexeme)] {
		alias = tok.lexeme
		p.advance()
	}
	if p.cur().typ == tokLParen {
		return plan.Scan{}, p.errHere("table-valued functions are not supported")
	}

	return plan.Scan{Table: name, Alias: alias}, nil
}

func (p *parser) parseJoins(node plan.Node) (plan.Node, error) {
	for {
		jt, ok, err := p.parseJoinType()
		if err != nil {
			return nil, err
		}
		if !ok {
			return node, nil
		}

		right, err := p.parseTableRef()
		if err != nil {
			return nil, err
		}

		if p.isKeyword("USING") {
			return nil, p.errHere("JOIN ... USING is not supported")
		}
		if err := p.expectKeyword("ON"); err != nil {
			return nil, err
		}

		col, err := p.parseColumnRef()
		if err != nil {
			return nil, err
		}
		switch p.cur().typ {
		case tokEq, tokGt, tokGte, tokLt, tokLte:
			return nil, p.errHere("ON accepts a single column name shared by both sides")
		}

		// The join column resolves by name on the left side and is pinned
		// to the joined table's alias on the right.
		node = plan.Join{
			Type:  jt,
			Left:  node,
			Right: right,
			On: plan.JoinOn{
				Left:  col,
				Right: plan.ColumnRef{Table: right.Alias, Name: col.Name},
			},
		}
	}
}

func (p *parser) parseJoinType() (plan.JoinType, bool, error) {
	switch {
	case p.acceptKeyword("JOIN"):
		return plan.JoinInner, true, nil
	case p.acceptKeyword("INNER"):
		if err := p.expectKeyword("JOIN"); err != nil {
			return 0, false, err
		}
		return plan.JoinInner, true, nil
	case p.acceptKeyword("LEFT"):
		p.acceptKeyword("OUTER")
		if err := p.expectKeyword("JOIN"); err != nil {
			return 0, false, err
		}
		return plan.JoinLeftOuter, true, nil
	case p.isKeyword("RIGHT"), p.isKeyword("FULL"), p.isKeyword("CROSS"):
		return 0, false, p.errHere(
			strings.ToUpper(p.cur().lexeme) + " joins are not supported")
	default:
		return 0, false, nil
	}
}

func (p *parser) parseColumnRef() (plan.ColumnRef, error) {
	first, err := p.expectIdent("column name")
	if err != nil {
		return plan.ColumnRef{}, err
	}
	if !p.accept(tokDot) {
		return plan.ColumnRef{Name: first}, nil
	}
	second, err := p.expectIdent("column name after '.'")
	if err != nil {
		return plan.ColumnRef{}, err
	}
	if p.cur().typ == tokDot {
		return plan.ColumnRef{}, p.errHere("column references deeper than alias.column are not supported")
	}
	return plan.ColumnRef{Table: first, Name: second}, nil
}

func (p *parser) parseSortKeys() ([]plan.SortKey, error) {
	var keys []plan.SortKey
	for {
		col, err := p.parseColumnRef()
		if err != nil {
			return nil, err
		}
		desc := false
		if p.acceptKeyword("DESC") {
			desc = true
		} else {
			p.acceptKeyword("ASC")
		}
		if p.isKeyword("NULLS") {
			return nil, p.errHere("NULLS FIRST/LAST is not supported")
		}
		keys = append(keys, plan.SortKey{Column: col, Desc: desc})
		if !p.accept(tokComma) {
			return keys, nil
		}
	}
}

func (p *parser) parseLimit() (int64, error) {
	tok := p.cur()
	if tok.typ != tokNumber {
		return 0, p.errHere("LIMIT must be a non-negative integer")
	}
	n, err := strconv.ParseInt(tok.lexeme, 10, 64)
	if err != nil {
		return 0, p.errHere("LIMIT must be a non-negative integer")
	}
	p.advance()

	if p.accept(tokComma) {
		return 0, p.errHere("LIMIT offset, count is not supported")
	}
	if p.isKeyword("OFFSET") {
		return 0, p.errHere("OFFSET is not supported")
	}
	if p.isKeyword("BY") {
		return 0, p.errHere("LIMIT BY is not supported")
	}
	return n, nil
}

// Expression grammar, loosest to tightest: OR, AND, comparisons,
// additive, primary.

func (p *parser) parseExpr() (plan.Expr, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (plan.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.acceptKeyword("OR") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = plan.Binary{Left: left, Op: plan.OpOr, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (plan.Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.acceptKeyword("AND") {
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = plan.Binary{Left: left, Op: plan.OpAnd, Right: right}
	}
	return left, nil
}

func (p *parser) parseComparison() (plan.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var op plan.Op
		switch p.cur().typ {
		case tokEq:
			op = plan.OpEq
		case tokGt:
			op = plan.OpGt
		case tokGte:
			op = plan.OpGte
		case tokLt:
			op = plan.OpLt
		case tokLte:
			op = plan.OpLte
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = plan.Binary{Left: left, Op: op, Right: right}
	}
}

func (p *parser) parseAdditive() (plan.Expr, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		var op plan.Op
		switch p.cur().typ {
		case tokPlus:
			op = plan.OpAdd
		case tokMinus:
			op = plan.OpSub
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = plan.Binary{Left: left, Op: op, Right: right}
	}
}

func (p *parser) parsePrimary() (plan.Expr, error) {
	tok := p.cur()
	switch tok.typ {
	case tokNumber:
		p.advance()
		return numberLiteral(tok)
	case tokMinus:
		p.advance()
		num := p.cur()
		if num.typ != tokNumber {
			return nil, p.errHere("expected a number after '-'")
		}
		p.advance()
		lit, err := numberLiteral(num)
		if err != nil {
			return nil, err
		}
		switch v := lit.(plan.Literal).Value.(type) {
		case int64:
			return plan.Literal{Value: -v}, nil
		case float64:
			return plan.Literal{Value: -v}, nil
		}
		return nil, p.errHere("expected a number after '-'")
	case tokString:
		p.advance()
		return plan.Literal{Value: tok.lexeme}, nil
	case tokLParen:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return plan.Paren{Expr: inner}, nil
	case tokIdent:
		switch strings.ToUpper(tok.lexeme) {
		case "TRUE":
			p.advance()
			return plan.Literal{Value: true}, nil
		case "FALSE":
			p.advance()
			return plan.Literal{Value: false}, nil
		case "NULL":
			p.advance()
			return plan.Literal{Value: nil}, nil
		case "NOT":
			return nil, p.errHere("NOT is not supported")
		case "SELECT":
			return nil, p.errHere("subqueries are not supported")
		}
		if p.peek().typ == tokLParen {
			return p.parseCall()
		}
		return p.parseColumnRef()
	default:
		return nil, p.errHere(fmt.Sprintf("unexpected %s in expression", tok.typ))
	}
}

func (p *parser) parseCall() (plan.Expr, error) {
	name := p.cur()
	var fn plan.Func
	switch strings.ToUpper(name.lexeme) {
	case "SUM":
		fn = plan.FuncSum
	case "COUNT":
		fn = plan.FuncCount
	default:
		return nil, p.errHere(fmt.Sprintf("unknown function %q", name.lexeme))
	}
	p.advance()
	p.advance() // consume '('

	if fn == plan.FuncCount && p.accept(tokStar) {
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return plan.Call{Func: fn, Star: true}, nil
	}

	var args []plan.Expr
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.accept(tokComma) {
			break
		}
	}
	if err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	if len(args) != 1 {
		return nil, p.errHere(fmt.Sprintf("%s takes exactly one argument", fn))
	}
	return plan.Call{Func: fn, Args: args}, nil
}

func numberLiteral(tok token) (plan.Expr, error) {
	if !strings.ContainsAny(tok.lexeme, ".eE") {
		n, err := strconv.ParseInt(tok.lexeme, 10, 64)
		if err == nil {
			return plan.Literal{Value: n}, nil
		}
	}
	f, err := strconv.ParseFloat(tok.lexeme, 64)
	if err != nil {
		return nil, &ParseError{Pos: tok.pos, Msg: "invalid number " + tok.lexeme}
	}
	return plan.Literal{Value: f}, nil
}

func (p *parser) trailingError() error {
	tok := p.cur()
	if tok.typ == tokIdent {
		switch strings.ToUpper(tok.lexeme) {
		case "UNION", "EXCEPT", "INTERSECT":
			return p.errHere(strings.ToUpper(tok.lexeme) + " is not supported")
		case "GROUP":
			return p.errHere("GROUP BY is not supported")
		case "HAVING":
			return p.errHere("HAVING is not supported")
		case "OFFSET":
			return p.errHere("OFFSET is not supported")
		case "FETCH":
			return p.errHere("FETCH is not supported")
		case "FOR":
			return p.errHere("FOR UPDATE/SHARE is not supported")
		case "SELECT":
			return p.errHere("expected a single statement")
		}
	}
	return p.errHere(fmt.Sprintf("unexpected input after query: %q", tok.lexeme))
}

// token cursor helpers

func (p *parser) cur() token {
	return p.toks[p.i]
}

func (p *parser) peek() token {
	if p.i+1 < len(p.toks) {
		return p.toks[p.i+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) advance() {
	if p.i < len(p.toks)-1 {
		p.i++
	}
}

func (p *parser) accept(typ tokenType) bool {
	if p.cur().typ == typ {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(typ tokenType) error {
	if !p.accept(typ) {
		return p.errHere(fmt.Sprintf("expected %s, found %s", typ, p.cur().typ))
	}
	return nil
}

func (p *parser) expectIdent(what string) (string, error) {
	tok := p.cur()
	if tok.typ != tokIdent || reserved[strings.ToUpper(tok.lexeme)] {
		return "", p.errHere("expected " + what)
	}
	p.advance()
	return tok.lexeme, nil
}

func (p *parser) isKeyword(kw string) bool {
	tok := p.cur()
	return tok.typ == tokIdent && strings.EqualFold(tok.lexeme, kw)
}

func (p *parser) acceptKeyword(kw string) bool {
	if p.isKeyword(kw) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expectKeyword(kw string) error {
	if !p.acceptKeyword(kw) {
		return p.errHere(fmt.Sprintf("expected %s", kw))
	}
	return nil
}

func (p *parser) errHere(msg string) error {
	return &ParseError{Pos: p.cur().pos, Msg: msg}
}
