// Package parser implements the recursive-descent, Pratt-precedence
// parser described in spec.md §4.1: it consumes an already-lexed token
// stream and produces a tagged-variant AST plus per-file diagnostics,
// never panicking — every malformed construct becomes a diagnostic and
// the parser recovers at the next statement boundary.
package parser

import (
	"strconv"
	"strings"

	"github.com/brightscope/bsc/ast"
	"github.com/brightscope/bsc/diagnostic"
	"github.com/brightscope/bsc/token"
)

// Mode selects which grammar constructs the parser accepts.
type Mode int

const (
	// Baseline is the device-compiler grammar: no namespaces, classes,
	// `new` expressions or imports.
	Baseline Mode = iota
	// Superset additionally accepts namespaces, classes, new
	// expressions and script imports.
	Superset
)

// Result is everything the parser produces for one file: the top-level
// statement list, diagnostics, and the secondary collections spec.md
// §4.1 calls out as "incidentally populated" during the single parse
// pass (avoids a second AST walk to gather them).
type Result struct {
	Statements []*ast.Statement
	Diagnostics []diagnostic.Diagnostic

	Namespaces    []*ast.NamespaceStatement
	Classes       []*ast.ClassStatement
	Functions     []*ast.FunctionStatement
	NewExpressions []*ast.NewExpression
	FunctionCalls []*ast.FunctionCall
}

// Parse runs the parser over tokens (which must end in a token.KindEOF
// sentinel) in the given mode, tagging every diagnostic with file.
func Parse(tokens []token.Token, mode Mode, file string) *Result {
	p := &parser{tokens: tokens, mode: mode, file: file, result: &Result{}}
	p.skipNewlines()
	for !p.atEOF() {
		stmt := p.parseStatement(nil)
		if stmt != nil {
			p.result.Statements = append(p.result.Statements, stmt)
		}
		p.skipNewlines()
	}
	return p.result
}

type parser struct {
	tokens []token.Token
	pos    int
	mode   Mode
	file   string
	result *Result
}

// --- token cursor helpers -------------------------------------------------

func (p *parser) cur() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.KindEOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) atEOF() bool {
	return p.cur().Kind == token.KindEOF
}

func (p *parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *parser) check(kind token.Kind) bool {
	return p.cur().Kind == kind
}

func (p *parser) checkKeyword(text string) bool {
	c := p.cur()
	return c.Kind == token.KindKeyword && strings.EqualFold(c.Text, text)
}

func (p *parser) match(kind token.Kind) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	return token.Token{}, false
}

func (p *parser) matchKeyword(text string) bool {
	if p.checkKeyword(text) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(kind token.Kind, what string) token.Token {
	if t, ok := p.match(kind); ok {
		return t
	}
	p.errorHere("expected " + what)
	return p.cur()
}

func (p *parser) skipNewlines() {
	for p.check(token.KindNewline) || p.check(token.KindComment) {
		p.advance()
	}
}

// --- diagnostics & recovery ------------------------------------------------

func (p *parser) errorHere(msg string) {
	r := token.Range{Start: p.cur().Range.Start, End: p.cur().Range.End}
	p.result.Diagnostics = append(p.result.Diagnostics, diagnostic.New(
		diagnostic.CodeUnexpectedToken, diagnostic.SeverityError, r, p.file, msg))
}

func (p *parser) errorAt(r token.Range, msg string) {
	p.result.Diagnostics = append(p.result.Diagnostics, diagnostic.New(
		diagnostic.CodeLexicalOrParseError, diagnostic.SeverityError, r, p.file, msg))
}

// recover advances past the current statement: up to the next newline
// or colon at depth zero, tracking bracket depth so it doesn't stop
// inside an unfinished bracketed literal (spec.md §4.1 error recovery).
func (p *parser) recover() {
	depth := 0
	for !p.atEOF() {
		switch p.cur().Kind {
		case token.KindLParen, token.KindLBracket, token.KindLBrace:
			depth++
		case token.KindRParen, token.KindRBracket, token.KindRBrace:
			if depth > 0 {
				depth--
			}
		case token.KindNewline, token.KindColon:
			if depth == 0 {
				if p.check(token.KindColon) {
					p.advance()
				}
				return
			}
		}
		p.advance()
	}
}

// --- statements -------------------------------------------------------------

// parseStatement parses one statement. namespacePath is the dotted
// parts of the namespace enclosing this statement, nil at top level;
// it is threaded down into any class or function declared here so
// they carry their fully qualified namespace (spec.md §3).
func (p *parser) parseStatement(namespacePath []string) *ast.Statement {
	start := p.cur().Range.Start
	switch {
	case p.checkKeyword("namespace"):
		return p.parseNamespace(start, namespacePath)
	case p.checkKeyword("class"):
		return p.parseClass(start, namespacePath)
	case p.checkKeyword("sub"), p.checkKeyword("function"):
		return p.parseFunctionDecl(start, nil, namespacePath)
	case p.checkKeyword("if"):
		return p.parseIf(start, namespacePath)
	case p.checkKeyword("for"):
		return p.parseFor(start, namespacePath)
	case p.checkKeyword("while"):
		return p.parseWhile(start, namespacePath)
	case p.checkKeyword("return"):
		return p.parseReturn(start)
	case p.checkKeyword("print"):
		return p.parsePrint(start)
	case p.checkKeyword("import"):
		return p.parseImport(start)
	case p.check(token.KindIdentifier):
		return p.parseAssignmentOrExprStatement(start)
	default:
		p.errorHere("unexpected token in statement")
		p.recover()
		return nil
	}
}

func (p *parser) parseBlockUntil(namespacePath []string, terminators ...string) []*ast.Statement {
	var body []*ast.Statement
	p.skipNewlines()
	for !p.atEOF() && !p.atKeywordAny(terminators...) {
		stmt := p.parseStatement(namespacePath)
		if stmt != nil {
			body = append(body, stmt)
		}
		p.skipNewlines()
	}
	return body
}

func (p *parser) atKeywordAny(keywords ...string) bool {
	for _, kw := range keywords {
		if p.checkKeyword(kw) {
			return true
		}
	}
	return false
}

func (p *parser) parseNamespace(start token.Position, enclosing []string) *ast.Statement {
	p.advance() // "namespace"
	if p.mode != Superset {
		p.errorAt(token.Range{Start: start, End: p.cur().Range.End}, "namespaces require superset parse mode")
	}
	nameRange := token.Range{Start: p.cur().Range.Start}
	parts := p.parseDottedName()
	nameRange.End = p.prevEnd()

	fullPath := make([]string, 0, len(enclosing)+len(parts))
	fullPath = append(fullPath, enclosing...)
	fullPath = append(fullPath, parts...)

	body := p.parseBlockUntil(fullPath, "end", "endnamespace")
	p.consumeBlockEnd("endnamespace")

	ns := &ast.NamespaceStatement{NameParts: parts, NameRange: nameRange, Body: body}
	p.result.Namespaces = append(p.result.Namespaces, ns)
	return &ast.Statement{Kind: ast.StmtNamespace, Range: token.Range{Start: start, End: p.prevEnd()}, Namespace: ns}
}

// parseClass parses a class declaration; namespacePath is the
// enclosing namespace's dotted parts, nil if top-level.
func (p *parser) parseClass(start token.Position, namespacePath []string) *ast.Statement {
	p.advance() // "class"
	if p.mode != Superset {
		p.errorAt(token.Range{Start: start, End: p.cur().Range.End}, "classes require superset parse mode")
	}
	nameTok := p.expect(token.KindIdentifier, "class name")
	cls := &ast.ClassStatement{Name: nameTok.Text, NameRange: nameTok.Range, NamespacePath: namespacePath}

	if p.matchKeyword("extends") {
		cls.ParentNameRange = token.Range{Start: p.cur().Range.Start}
		cls.ParentName = p.parseDottedName()
		cls.ParentNameRange.End = p.prevEnd()
	}

	p.skipNewlines()
	for !p.atEOF() && !p.atKeywordAny("end", "endclass") {
		p.parseClassMember(cls)
		p.skipNewlines()
	}
	p.consumeBlockEnd("endclass")

	p.result.Classes = append(p.result.Classes, cls)
	return &ast.Statement{Kind: ast.StmtClass, Range: token.Range{Start: start, End: p.prevEnd()}, Class: cls}
}

func (p *parser) parseClassMember(cls *ast.ClassStatement) {
	access := ast.AccessPublic
	final := false
	for {
		switch {
		case p.matchKeyword("public"):
			access = ast.AccessPublic
			continue
		case p.matchKeyword("private"):
			access = ast.AccessPrivate
			continue
		case p.matchKeyword("protected"):
			access = ast.AccessProtected
			continue
		case p.matchKeyword("final"):
			final = true
			continue
		}
		break
	}

	if p.checkKeyword("sub") || p.checkKeyword("function") {
		start := p.cur().Range.Start
		stmt := p.parseFunctionDecl(start, cls, nil)
		if stmt != nil && stmt.Function != nil {
			stmt.Function.Access = access
			stmt.Function.IsFinal = final
			stmt.Function.OwnerClass = cls.QualifiedName()
			cls.Methods = append(cls.Methods, stmt.Function)
		}
		return
	}

	// field: identifier [as Type]
	nameTok := p.expect(token.KindIdentifier, "field name")
	field := &ast.FieldMember{Name: nameTok.Text, NameRange: nameTok.Range, Access: access, IsFinal: final}
	if p.matchKeyword("as") {
		field.Type = p.parseTypeName()
	}
	cls.Fields = append(cls.Fields, field)
}

// parseFunctionDecl parses a sub/function declaration. cls is non-nil
// for a class method; namespacePath is the enclosing namespace path.
func (p *parser) parseFunctionDecl(start token.Position, cls *ast.ClassStatement, namespacePath []string) *ast.Statement {
	isFunction := p.checkKeyword("function")
	p.advance() // "sub" or "function"
	nameTok := p.expect(token.KindIdentifier, "function name")

	fn := &ast.FunctionStatement{Name: nameTok.Text, NameRange: nameTok.Range, NamespacePath: namespacePath}
	if cls != nil {
		fn.NamespacePath = cls.NamespacePath
	}

	p.expect(token.KindLParen, "'('")
	fn.Params = p.parseParamList()
	p.expect(token.KindRParen, "')'")

	if isFunction && p.matchKeyword("as") {
		fn.ReturnType = p.parseTypeName()
	}

	endKeywords := []string{"end"}
	if isFunction {
		endKeywords = append(endKeywords, "endfunction")
	} else {
		endKeywords = append(endKeywords, "endsub")
	}
	fn.Body = p.parseBlockUntil(fn.NamespacePath, endKeywords...)
	p.consumeBlockEnd(endKeywords[len(endKeywords)-1])

	p.result.Functions = append(p.result.Functions, fn)
	return &ast.Statement{Kind: ast.StmtFunction, Range: token.Range{Start: start, End: p.prevEnd()}, Function: fn}
}

func (p *parser) parseParamList() []ast.Param {
	var params []ast.Param
	if p.check(token.KindRParen) {
		return params
	}
	for {
		nameTok := p.expect(token.KindIdentifier, "parameter name")
		param := ast.Param{Name: nameTok.Text, NameRange: nameTok.Range}
		if p.matchKeyword("as") {
			param.Type = p.parseTypeName()
		}
		if _, ok := p.match(token.KindEquals); ok {
			param.IsOptional = true
			d := p.parseExpression(precAssign)
			param.Default = *d
		}
		params = append(params, param)
		if _, ok := p.match(token.KindComma); ok {
			continue
		}
		break
	}
	return params
}

func (p *parser) parseTypeName() string {
	if p.matchKeyword("function") {
		return "function"
	}
	t := p.expect(token.KindIdentifier, "type name")
	return t.Text
}

func (p *parser) parseDottedName() []string {
	parts := []string{p.expect(token.KindIdentifier, "identifier").Text}
	for {
		if _, ok := p.match(token.KindDot); !ok {
			break
		}
		parts = append(parts, p.expect(token.KindIdentifier, "identifier").Text)
	}
	return parts
}

// consumeBlockEnd accepts any of the dialect's accepted spellings for
// closing a block: the fused keyword ("endsub"), "end" followed by the
// matching word as two tokens ("end sub"), or a bare "end".
func (p *parser) consumeBlockEnd(fused string) {
	if p.matchKeyword(fused) {
		return
	}
	if p.matchKeyword("end") {
		p.matchKeyword(strings.TrimPrefix(fused, "end"))
		return
	}
	p.errorHere("expected block terminator")
}

func (p *parser) parseIf(start token.Position, namespacePath []string) *ast.Statement {
	p.advance() // "if"
	cond := p.parseExpression(precLowest)
	p.matchKeyword("then")
	thenBody := p.parseBlockUntil(namespacePath, "else", "elseif", "end", "endif")

	var elseBody []*ast.Statement
	if p.checkKeyword("elseif") {
		nestedStart := p.cur().Range.Start
		elseBody = []*ast.Statement{p.parseIf(nestedStart, namespacePath)}
		return &ast.Statement{Kind: ast.StmtIf, Range: token.Range{Start: start, End: p.prevEnd()},
			If: &ast.IfStatement{Cond: cond, Then: thenBody, Else: elseBody}}
	}
	if p.matchKeyword("else") {
		elseBody = p.parseBlockUntil(namespacePath, "end", "endif")
	}
	p.consumeBlockEnd("endif")

	return &ast.Statement{Kind: ast.StmtIf, Range: token.Range{Start: start, End: p.prevEnd()},
		If: &ast.IfStatement{Cond: cond, Then: thenBody, Else: elseBody}}
}

func (p *parser) parseFor(start token.Position, namespacePath []string) *ast.Statement {
	p.advance() // "for"
	varTok := p.expect(token.KindIdentifier, "loop variable")
	p.expect(token.KindEquals, "'='")
	from := p.parseExpression(precLowest)
	p.matchKeyword("to")
	to := p.parseExpression(precLowest)
	var step *ast.Expression
	if p.matchKeyword("step") {
		step = p.parseExpression(precLowest)
	}
	body := p.parseBlockUntil(namespacePath, "end", "endfor")
	p.consumeBlockEnd("endfor")
	return &ast.Statement{Kind: ast.StmtFor, Range: token.Range{Start: start, End: p.prevEnd()},
		For: &ast.ForStatement{VarName: varTok.Text, Start: from, End: to, Step: step, Body: body}}
}

func (p *parser) parseWhile(start token.Position, namespacePath []string) *ast.Statement {
	p.advance() // "while"
	cond := p.parseExpression(precLowest)
	body := p.parseBlockUntil(namespacePath, "end", "endwhile", "wend")
	if !p.matchKeyword("wend") {
		p.consumeBlockEnd("endwhile")
	}
	return &ast.Statement{Kind: ast.StmtWhile, Range: token.Range{Start: start, End: p.prevEnd()},
		While: &ast.WhileStatement{Cond: cond, Body: body}}
}

func (p *parser) parseReturn(start token.Position) *ast.Statement {
	p.advance() // "return"
	var val *ast.Expression
	if !p.check(token.KindNewline) && !p.check(token.KindColon) && !p.atEOF() && !p.atKeywordAny("end", "endsub", "endfunction") {
		val = p.parseExpression(precLowest)
	}
	return &ast.Statement{Kind: ast.StmtReturn, Range: token.Range{Start: start, End: p.prevEnd()},
		Return: &ast.ReturnStatement{Value: val}}
}

func (p *parser) parsePrint(start token.Position) *ast.Statement {
	p.advance() // "print"
	var args []*ast.Expression
	if !p.check(token.KindNewline) && !p.atEOF() {
		args = append(args, p.parseExpression(precLowest))
		for {
			if _, ok := p.match(token.KindComma); !ok {
				break
			}
			args = append(args, p.parseExpression(precLowest))
		}
	}
	return &ast.Statement{Kind: ast.StmtPrint, Range: token.Range{Start: start, End: p.prevEnd()},
		Print: &ast.PrintStatement{Args: args}}
}

func (p *parser) parseImport(start token.Position) *ast.Statement {
	p.advance() // "import"
	if p.mode != Superset {
		p.errorAt(token.Range{Start: start, End: p.cur().Range.End}, "imports require superset parse mode")
	}
	pathTok := p.expect(token.KindString, "import path")
	return &ast.Statement{Kind: ast.StmtImport, Range: token.Range{Start: start, End: p.prevEnd()},
		Import: &ast.ImportStatement{PkgPath: unquote(pathTok.Text)}}
}

func (p *parser) parseAssignmentOrExprStatement(start token.Position) *ast.Statement {
	expr := p.parseExpression(precLowest)
	if _, ok := p.match(token.KindEquals); ok {
		value := p.parseExpression(precAssign)
		assign := &ast.AssignmentStatement{Value: value}
		if expr.Kind == ast.ExprIdentifier {
			assign.TargetName = expr.Identifier.Name
		} else {
			assign.Target = expr
		}
		return &ast.Statement{Kind: ast.StmtAssignment, Range: token.Range{Start: start, End: p.prevEnd()}, Assignment: assign}
	}
	return &ast.Statement{Kind: ast.StmtExpressionStatement, Range: token.Range{Start: start, End: p.prevEnd()},
		ExprStmt: &ast.ExpressionStatement{Value: expr}}
}

func (p *parser) prevEnd() token.Position {
	if p.pos == 0 {
		return p.cur().Range.Start
	}
	return p.tokens[p.pos-1].Range.End
}

func unquote(s string) string {
	u, err := strconv.Unquote(s)
	if err != nil {
		if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
			return s[1 : len(s)-1]
		}
		return s
	}
	return u
}
