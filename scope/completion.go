package scope

import (
	"strings"

	"github.com/brightscope/bsc/ast"
	"github.com/brightscope/bsc/parser"
	"github.com/brightscope/bsc/sourcefile"
	"github.com/brightscope/bsc/token"
	"github.com/brightscope/bsc/util"
)

// CompletionKind distinguishes the origin of a CompletionItem so a
// client can render/sort callables and properties differently.
type CompletionKind int

const (
	CompletionCallable CompletionKind = iota
	CompletionProperty
)

// CompletionItem is one entry of a Completions() result (spec.md §2's
// "propertyNameCompletions catalog" plus the callable catalog,
// unified into a single client-facing shape).
type CompletionItem struct {
	Name string
	Kind CompletionKind
}

// Completions returns every callable visible from s (own then
// ancestors, namespace-filtered per mode) plus every member code
// file's property-name completions.
func (s *Scope) Completions(mode parser.Mode) []CompletionItem {
	var out []CompletionItem
	for _, fn := range s.GetCallablesAsCompletions(mode) {
		out = append(out, CompletionItem{Name: fn.Name, Kind: CompletionCallable})
	}
	for _, f := range s.files {
		cf, ok := f.(*sourcefile.CodeFile)
		if !ok {
			continue
		}
		for _, name := range cf.PropertyNameCompletions {
			out = append(out, CompletionItem{Name: name, Kind: CompletionProperty})
		}
	}
	return out
}

// DefinitionFor resolves name (case-insensitive) to the declaration
// site of a callable or class visible from s, own before ancestors
// (spec.md §4.10's generalization of the descriptor-parent-name
// go-to-definition case to ordinary names).
func (s *Scope) DefinitionFor(name string) (token.Location, bool) {
	if fn, ok := s.GetCallableByName(name); ok {
		return token.Location{File: s.fileOfCallable(fn), Range: fn.NameRange}, true
	}
	target := strings.ToLower(name)
	for key, cls := range s.classEntries() {
		if key == target || strings.ToLower(cls.Class.Name) == target {
			return token.Location{File: cls.File, Range: cls.Class.NameRange}, true
		}
	}
	return token.Location{}, false
}

func (s *Scope) fileOfCallable(fn *ast.FunctionStatement) util.Path {
	for _, e := range s.allEntries() {
		if e.fn == fn {
			return e.file
		}
	}
	return ""
}
