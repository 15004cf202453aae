package parser

import (
	"strings"

	"github.com/brightscope/bsc/ast"
	"github.com/brightscope/bsc/token"
)

// precedence levels, lowest to highest.
const (
	precLowest = iota
	precAssign
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precCall
	precPrimary
)

var binaryPrecedence = map[token.Kind]int{
	token.KindPipePipe:  precOr,
	token.KindAmpAmp:    precAnd,
	token.KindEqEq:      precEquality,
	token.KindNotEq:     precEquality,
	token.KindLess:      precRelational,
	token.KindLessEq:    precRelational,
	token.KindGreater:   precRelational,
	token.KindGreaterEq: precRelational,
	token.KindPlus:      precAdditive,
	token.KindMinus:     precAdditive,
	token.KindStar:      precMultiplicative,
	token.KindSlash:     precMultiplicative,
	token.KindMod:       precMultiplicative,
}

func keywordBinaryPrecedence(t token.Token) (int, bool) {
	if t.Kind != token.KindKeyword {
		return 0, false
	}
	switch {
	case strings.EqualFold(t.Text, "or"):
		return precOr, true
	case strings.EqualFold(t.Text, "and"):
		return precAnd, true
	case strings.EqualFold(t.Text, "mod"):
		return precMultiplicative, true
	}
	return 0, false
}

// parseExpression parses an expression binding at least as tightly as
// minPrec (standard Pratt precedence climbing).
func (p *parser) parseExpression(minPrec int) *ast.Expression {
	left := p.parseUnary()
	for {
		opTok := p.cur()
		prec, isOp := binaryPrecedence[opTok.Kind]
		if !isOp {
			prec, isOp = keywordBinaryPrecedence(opTok)
		}
		if !isOp || prec < minPrec {
			break
		}
		p.advance()
		right := p.parseExpression(prec + 1)
		start := left.Range.Start
		left = &ast.Expression{
			Kind:  ast.ExprBinary,
			Range: token.Range{Start: start, End: right.Range.End},
			Binary: &ast.BinaryExpression{
				Op:    opTok.Text,
				Left:  left,
				Right: right,
			},
		}
	}
	return left
}

func (p *parser) parseUnary() *ast.Expression {
	start := p.cur().Range.Start
	if p.check(token.KindMinus) || p.check(token.KindBang) || p.checkKeyword("not") {
		opTok := p.advance()
		operand := p.parseExpression(precUnary)
		return &ast.Expression{
			Kind:  ast.ExprUnary,
			Range: token.Range{Start: start, End: operand.Range.End},
			Unary: &ast.UnaryExpression{Op: opTok.Text, Operand: operand},
		}
	}
	return p.parsePostfix(p.parsePrimary())
}

// parsePostfix absorbs trailing `.name`, `(args)` and `[index]` onto a
// primary expression, left to right.
func (p *parser) parsePostfix(expr *ast.Expression) *ast.Expression {
	for {
		switch {
		case p.check(token.KindDot):
			p.advance()
			nameTok := p.expect(token.KindIdentifier, "member name")
			expr = &ast.Expression{
				Kind:  ast.ExprDottedGet,
				Range: token.Range{Start: expr.Range.Start, End: nameTok.Range.End},
				DottedGet: &ast.DottedGetExpression{Target: expr, Name: nameTok.Text},
			}
		case p.check(token.KindLParen):
			expr = p.parseCallTail(expr)
		case p.check(token.KindLBracket):
			p.advance()
			idx := p.parseExpression(precLowest)
			p.skipNewlines()
			closeTok := p.expect(token.KindRBracket, "']'")
			expr = &ast.Expression{
				Kind:  ast.ExprIndexGet,
				Range: token.Range{Start: expr.Range.Start, End: closeTok.Range.End},
				IndexGet: &ast.IndexGetExpression{Target: expr, Index: idx},
			}
		default:
			return expr
		}
	}
}

func (p *parser) parseCallTail(callee *ast.Expression) *ast.Expression {
	p.advance() // "("
	var args []*ast.Expression
	if !p.check(token.KindRParen) {
		args = append(args, p.parseExpression(precAssign))
		for {
			if _, ok := p.match(token.KindComma); !ok {
				break
			}
			args = append(args, p.parseExpression(precAssign))
		}
	}
	closeTok := p.expect(token.KindRParen, "')'")
	fullRange := token.Range{Start: callee.Range.Start, End: closeTok.Range.End}

	calleeName := ""
	switch callee.Kind {
	case ast.ExprIdentifier:
		calleeName = callee.Identifier.Name
	case ast.ExprDottedGet:
		calleeName = callee.DottedGet.Name
	}
	// DottedGet doesn't retain the trailing member name's own token
	// range, so the callee's full range anchors the diagnostic instead.
	call := &ast.FunctionCall{CalleeName: calleeName, NameRange: callee.Range, Args: args, FullRange: fullRange}
	if calleeName != "" {
		p.result.FunctionCalls = append(p.result.FunctionCalls, call)
	}

	return &ast.Expression{
		Kind:  ast.ExprCall,
		Range: fullRange,
		Call:  call,
	}
}

func (p *parser) parsePrimary() *ast.Expression {
	start := p.cur().Range.Start
	t := p.cur()

	switch {
	case t.Kind == token.KindNumber, t.Kind == token.KindString:
		p.advance()
		return &ast.Expression{Kind: ast.ExprLiteral, Range: t.Range, Literal: &ast.LiteralExpression{Text: t.Text}}

	case t.Kind == token.KindKeyword && (strings.EqualFold(t.Text, "true") || strings.EqualFold(t.Text, "false") || strings.EqualFold(t.Text, "invalid")):
		p.advance()
		return &ast.Expression{Kind: ast.ExprLiteral, Range: t.Range, Literal: &ast.LiteralExpression{Text: t.Text}}

	case t.Kind == token.KindKeyword && strings.EqualFold(t.Text, "new"):
		return p.parseNewExpression(start)

	case t.Kind == token.KindKeyword && (strings.EqualFold(t.Text, "function") || strings.EqualFold(t.Text, "sub")):
		return p.parseFunctionValue(start)

	case t.Kind == token.KindIdentifier:
		p.advance()
		return &ast.Expression{Kind: ast.ExprIdentifier, Range: t.Range, Identifier: &ast.IdentifierExpression{Name: t.Text}}

	case t.Kind == token.KindLParen:
		p.advance()
		inner := p.parseExpression(precLowest)
		p.expect(token.KindRParen, "')'")
		return inner

	case t.Kind == token.KindLBracket:
		return p.parseArrayLiteral(start)

	case t.Kind == token.KindLBrace:
		return p.parseAALiteral(start)

	default:
		p.errorHere("expected expression")
		p.advance()
		return &ast.Expression{Kind: ast.ExprInvalid, Range: token.Range{Start: start, End: p.prevEnd()}}
	}
}

// parseArrayLiteral parses `[ item (, item | newline item)* ]`. Newline
// tokens are absorbed as item separators inside the brackets (spec.md
// §4.1), and trailing separators are tolerated.
func (p *parser) parseArrayLiteral(start token.Position) *ast.Expression {
	p.advance() // "["
	var items []*ast.Expression
	p.skipNewlines()
	for !p.check(token.KindRBracket) && !p.atEOF() {
		items = append(items, p.parseExpression(precAssign))
		p.skipNewlines()
		if _, ok := p.match(token.KindComma); ok {
			p.skipNewlines()
			continue
		}
		p.skipNewlines()
	}
	closeTok := p.expect(token.KindRBracket, "']'")
	return &ast.Expression{
		Kind:     ast.ExprArrayLiteral,
		Range:    token.Range{Start: start, End: closeTok.Range.End},
		ArrayLit: &ast.ArrayLiteralExpression{Items: items},
	}
}

// parseAALiteral parses `{ key: value (, | newline)* }` associative
// array literals, with the same newline-absorption discipline as
// array literals.
func (p *parser) parseAALiteral(start token.Position) *ast.Expression {
	p.advance() // "{"
	var entries []ast.AAEntry
	p.skipNewlines()
	for !p.check(token.KindRBrace) && !p.atEOF() {
		var key *ast.Expression
		if p.check(token.KindIdentifier) || p.check(token.KindString) {
			keyTok := p.advance()
			key = &ast.Expression{Kind: ast.ExprLiteral, Range: keyTok.Range, Literal: &ast.LiteralExpression{Text: keyTok.Text}}
		} else {
			key = p.parseExpression(precAssign)
		}
		p.expect(token.KindColon, "':'")
		value := p.parseExpression(precAssign)
		entries = append(entries, ast.AAEntry{Key: key, Value: value})
		p.skipNewlines()
		if _, ok := p.match(token.KindComma); ok {
			p.skipNewlines()
			continue
		}
		p.skipNewlines()
	}
	closeTok := p.expect(token.KindRBrace, "'}'")
	return &ast.Expression{
		Kind:  ast.ExprAALiteral,
		Range: token.Range{Start: start, End: closeTok.Range.End},
		AALit: &ast.AALiteralExpression{Entries: entries},
	}
}

func (p *parser) parseNewExpression(start token.Position) *ast.Expression {
	p.advance() // "new"
	if p.mode != Superset {
		p.errorAt(token.Range{Start: start, End: p.cur().Range.End}, "'new' requires superset parse mode")
	}
	className := p.parseDottedName()
	var args []*ast.Expression
	if p.check(token.KindLParen) {
		p.advance()
		if !p.check(token.KindRParen) {
			args = append(args, p.parseExpression(precAssign))
			for {
				if _, ok := p.match(token.KindComma); !ok {
					break
				}
				args = append(args, p.parseExpression(precAssign))
			}
		}
		p.expect(token.KindRParen, "')'")
	}
	newExpr := &ast.NewExpression{ClassName: className, Args: args}
	p.result.NewExpressions = append(p.result.NewExpressions, newExpr)
	return &ast.Expression{Kind: ast.ExprNew, Range: token.Range{Start: start, End: p.prevEnd()}, New: newExpr}
}

func (p *parser) parseFunctionValue(start token.Position) *ast.Expression {
	p.advance() // "function" or "sub"
	p.expect(token.KindLParen, "'('")
	params := p.parseParamList()
	p.expect(token.KindRParen, "')'")
	returnType := ""
	if p.matchKeyword("as") {
		returnType = p.parseTypeName()
	}
	return &ast.Expression{
		Kind:  ast.ExprFunctionValue,
		Range: token.Range{Start: start, End: p.prevEnd()},
		FuncValue: &ast.FunctionValueExpression{Params: params, ReturnType: returnType},
	}
}
