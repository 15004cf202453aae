// Package sourcefile implements the two file kinds of spec.md §4.2: a
// code file (parsed dialect source) and a descriptor file (an XML-like
// component manifest). Both satisfy File, the capability set called
// for by spec.md §9's "polymorphic file type → capability set" note;
// descriptor-only operations live on *DescriptorFile.
package sourcefile

import (
	"strings"

	"github.com/brightscope/bsc/ast"
	"github.com/brightscope/bsc/diagnostic"
	"github.com/brightscope/bsc/token"
	"github.com/brightscope/bsc/util"
)

// File is the capability set shared by code files and descriptor
// files: everything a Scope or validator needs without caring which
// concrete kind it holds.
type File interface {
	AbsPath() util.Path
	PkgPath() util.PkgPath
	Diagnostics() []diagnostic.Diagnostic
	Callables() []*ast.FunctionStatement
	FunctionScopes() []*FunctionScope
	FunctionCalls() []*ast.FunctionCall
}

// FileReference is one `<script uri="pkg:/…">` entry of a descriptor
// file: the normalized package path it points at, the source range of
// that uri attribute, and a back-reference to the owning descriptor.
type FileReference struct {
	PkgPath       util.PkgPath
	FilePathRange token.Range
	Source        *DescriptorFile
}

// VarDecl is one local-variable declaration inside a FunctionScope:
// from an assignment's inferred type or a function parameter's
// declared type. Type == "function" marks a callable-typed local
// (spec.md §4.2's "of particular importance" case).
type VarDecl struct {
	Name      string
	NameRange token.Range
	Type      string
}

// IsFunctionType reports whether this declaration holds a callable
// value.
func (v VarDecl) IsFunctionType() bool {
	return v.Type == "function"
}

// FunctionScope is one function body's (or the whole file's) variable
// table, keyed by lower-cased name so lookups match the dialect's
// case-insensitive identifier rules.
type FunctionScope struct {
	Owner     *ast.FunctionStatement // nil for the file-level scope
	Range     token.Range
	Variables map[string]*VarDecl
}

func newFunctionScope(owner *ast.FunctionStatement, r token.Range) *FunctionScope {
	return &FunctionScope{Owner: owner, Range: r, Variables: map[string]*VarDecl{}}
}

func (fs *FunctionScope) declare(decl VarDecl) {
	fs.Variables[strings.ToLower(decl.Name)] = &decl
}

// Lookup returns the declaration for name (case-insensitive), if any.
func (fs *FunctionScope) Lookup(name string) (*VarDecl, bool) {
	d, ok := fs.Variables[strings.ToLower(name)]
	return d, ok
}
