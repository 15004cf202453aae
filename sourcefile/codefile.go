package sourcefile

import (
	"strings"

	"github.com/brightscope/bsc/ast"
	"github.com/brightscope/bsc/diagnostic"
	"github.com/brightscope/bsc/lexer"
	"github.com/brightscope/bsc/parser"
	"github.com/brightscope/bsc/token"
	"github.com/brightscope/bsc/util"
)

// CodeFile wraps one parse of a dialect source file: the raw parser
// output plus the function-scope index spec.md §4.2 requires (one
// scope per function body, plus a file-level scope).
type CodeFile struct {
	absPath util.Path
	pkgPath util.PkgPath
	source  string

	Mode   parser.Mode
	Tokens []token.Token

	Statements  []*ast.Statement
	diagnostics []diagnostic.Diagnostic

	Namespaces     []*ast.NamespaceStatement
	Classes        []*ast.ClassStatement
	Functions      []*ast.FunctionStatement
	NewExpressions []*ast.NewExpression
	Calls          []*ast.FunctionCall

	scopes []*FunctionScope

	// PropertyNameCompletions is the flat catalog of field/method names
	// offered after a "." in completion requests (spec.md §2).
	PropertyNameCompletions []string
}

// NewCodeFile lexes and parses source, builds the function-scope
// index, and returns the resulting CodeFile. absPath is the file
// registry key; pkgPath is its project-relative package path.
func NewCodeFile(absPath util.Path, pkgPath util.PkgPath, source string, mode parser.Mode) *CodeFile {
	toks := lexer.Tokenize(source)
	res := parser.Parse(toks, mode, absPath)

	f := &CodeFile{
		absPath:        absPath,
		pkgPath:        pkgPath,
		source:         source,
		Mode:           mode,
		Tokens:         toks,
		Statements:     res.Statements,
		diagnostics:    res.Diagnostics,
		Namespaces:     res.Namespaces,
		Classes:        res.Classes,
		Functions:      res.Functions,
		NewExpressions: res.NewExpressions,
		Calls:          res.FunctionCalls,
	}
	f.buildFunctionScopes()
	f.buildPropertyNameCompletions()
	return f
}

func (f *CodeFile) AbsPath() util.Path                        { return f.absPath }
func (f *CodeFile) PkgPath() util.PkgPath                     { return f.pkgPath }
func (f *CodeFile) Source() string                            { return f.source }
func (f *CodeFile) Diagnostics() []diagnostic.Diagnostic       { return f.diagnostics }
func (f *CodeFile) Callables() []*ast.FunctionStatement        { return f.Functions }
func (f *CodeFile) FunctionScopes() []*FunctionScope           { return f.scopes }
func (f *CodeFile) FunctionCalls() []*ast.FunctionCall         { return f.Calls }

// GetFunctionScopeAtPosition returns the innermost FunctionScope whose
// range contains pos, falling back to the file-level scope. Used by
// the unknown-function-call check (spec.md §4.4.2) to decide whether a
// call site resolves to a local variable instead.
func (f *CodeFile) GetFunctionScopeAtPosition(pos token.Position) *FunctionScope {
	var best *FunctionScope
	for _, s := range f.scopes {
		if !s.Range.ContainsPosition(pos) {
			continue
		}
		if best == nil || rangeSize(s.Range) < rangeSize(best.Range) {
			best = s
		}
	}
	return best
}

// rangeSize orders ranges by line span first, then by column span
// within a line, so the innermost (smallest) enclosing range wins ties
// between a function scope and the file-level scope.
func rangeSize(r token.Range) uint64 {
	lines := uint64(r.End.Line) - uint64(r.Start.Line)
	cols := uint64(r.End.Character) - uint64(r.Start.Character)
	return lines<<32 | (cols & 0xffffffff)
}

func (f *CodeFile) buildFunctionScopes() {
	fileScope := newFunctionScope(nil, fileRange(f.Tokens))
	f.scopes = append(f.scopes, fileScope)
	walkStatements(f.Statements, fileScope, f)
}

func fileRange(toks []token.Token) token.Range {
	if len(toks) == 0 {
		return token.Zero
	}
	return token.Range{Start: toks[0].Range.Start, End: toks[len(toks)-1].Range.End}
}

// walkStatements recurses through a statement list, threading the
// currently active FunctionScope and registering a fresh scope (plus
// its parameters) whenever it enters a FunctionStatement body.
func walkStatements(stmts []*ast.Statement, active *FunctionScope, f *CodeFile) {
	for _, s := range stmts {
		switch s.Kind {
		case ast.StmtFunction:
			fn := s.Function
			inner := newFunctionScope(fn, s.Range)
			for _, p := range fn.Params {
				typ := p.Type
				if p.IsFunctionType() {
					typ = "function"
				}
				inner.declare(VarDecl{Name: p.Name, NameRange: p.NameRange, Type: typ})
			}
			f.scopes = append(f.scopes, inner)
			walkStatements(fn.Body, inner, f)

		case ast.StmtNamespace:
			walkStatements(s.Namespace.Body, active, f)

		case ast.StmtClass:
			for _, m := range s.Class.Methods {
				inner := newFunctionScope(m, methodRange(m))
				for _, p := range m.Params {
					typ := p.Type
					if p.IsFunctionType() {
						typ = "function"
					}
					inner.declare(VarDecl{Name: p.Name, NameRange: p.NameRange, Type: typ})
				}
				f.scopes = append(f.scopes, inner)
				walkStatements(m.Body, inner, f)
			}

		case ast.StmtAssignment:
			active.declare(inferAssignmentDecl(s.Assignment))

		case ast.StmtIf:
			walkStatements(s.If.Then, active, f)
			walkStatements(s.If.Else, active, f)
		case ast.StmtFor:
			active.declare(VarDecl{Name: s.For.VarName, NameRange: s.Range, Type: ""})
			walkStatements(s.For.Body, active, f)
		case ast.StmtWhile:
			walkStatements(s.While.Body, active, f)
		}
	}
}

// methodRange approximates a class method's source span since
// FunctionStatement (unlike the statement that wraps a top-level
// function) doesn't retain the enclosing "function"/"end function"
// token range: from the name to the last body statement's end.
func methodRange(m *ast.FunctionStatement) token.Range {
	end := m.NameRange.End
	if len(m.Body) > 0 {
		end = m.Body[len(m.Body)-1].NodeRange().End
	}
	return token.Range{Start: m.NameRange.Start, End: end}
}

func inferAssignmentDecl(a *ast.AssignmentStatement) VarDecl {
	decl := VarDecl{Name: a.TargetName}
	if a.Value == nil {
		return decl
	}
	switch a.Value.Kind {
	case ast.ExprFunctionValue:
		decl.Type = "function"
	case ast.ExprNew:
		decl.Type = strings.Join(a.Value.New.ClassName, ".")
	}
	return decl
}

// buildPropertyNameCompletions flattens every field and method name
// declared on any class in this file into a single completion catalog
// (spec.md §2). Order follows declaration order; duplicates across
// classes are kept since completion lists are presentation, not a set.
func (f *CodeFile) buildPropertyNameCompletions() {
	for _, cls := range f.Classes {
		for _, field := range cls.Fields {
			f.PropertyNameCompletions = append(f.PropertyNameCompletions, field.Name)
		}
		for _, m := range cls.Methods {
			f.PropertyNameCompletions = append(f.PropertyNameCompletions, m.Name)
		}
	}
}
