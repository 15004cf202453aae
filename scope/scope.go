// Package scope implements the Scope hierarchy of spec.md §4.4–§4.6:
// a base Scope that holds a file subset, lazily computed namespace and
// class lookups, and the full cross-file validation pipeline;
// PlatformScope, the built-in-seeded root; and DescriptorScope, the
// per-component specialization. Parent linkage and invalidation are
// modeled as the explicit signal/slot graph called for by spec.md §9
// ("event-driven parent linkage → explicit signal graph") instead of a
// global event emitter, grounded on the parent-chasing resolution
// family in the teacher's server/symbols.go (FindSymbol*, FindDefinition).
package scope

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/brightscope/bsc/ast"
	"github.com/brightscope/bsc/diagnostic"
	"github.com/brightscope/bsc/parser"
	"github.com/brightscope/bsc/signal"
	"github.com/brightscope/bsc/sourcefile"
	"github.com/brightscope/bsc/util"
)

// MembershipFunc decides whether file belongs to a Scope.
type MembershipFunc func(file sourcefile.File) bool

// callableEntry pairs a declared callable with the scope that owns it,
// matching spec.md §3's transient CallableContainer.
type callableEntry struct {
	fn    *ast.FunctionStatement
	scope *Scope
	file  util.Path
}

// Scope is a named analysis context: a membership-selected file set, a
// parent link, and the lazily computed lookups and diagnostics spec.md
// §3/§4.4 describe.
type Scope struct {
	// ID uniquely identifies this scope across workspace reloads, safe
	// as a log-correlation key and a map key where names may collide
	// (spec.md §4.9).
	ID   uuid.UUID
	Name string

	membership MembershipFunc

	files map[util.Path]sourcefile.File

	parent       *Scope
	parentHandle signal.Handle

	invalidated *signal.Signal[struct{}]

	isValidated bool
	diagnostics []diagnostic.Diagnostic

	namespaceLookup map[string]*namespaceEntry
	classLookup     map[string]*ast.ClassStatement
	classOwner      map[string]*Scope

	group singleflight.Group

	// hook lets a specialization (DescriptorScope) run its own extra
	// validation after the base pass, replacing the source's fragile
	// isValidated-false-then-true re-flip (spec.md §9 Open Question).
	hook func()

	// isPlatform marks the root scope: platform callables are excluded
	// from "own" vs "ancestor" bucketing distinctions that only make
	// sense for non-root scopes.
	isPlatform bool

	// builtinCallables seeds the root PlatformScope's own-callable set
	// (spec.md §2); empty for every other Scope.
	builtinCallables []*ast.FunctionStatement
}

type namespaceEntry struct {
	dotted   string
	parent   *namespaceEntry
	children map[string]*namespaceEntry
}

// New constructs a non-root Scope with the given name and membership
// predicate. The new scope has no parent; use AttachParentScope to set
// one.
func New(name string, membership MembershipFunc) *Scope {
	return &Scope{
		ID:          uuid.New(),
		Name:        name,
		membership:  membership,
		files:       map[util.Path]sourcefile.File{},
		invalidated: signal.New[struct{}](),
	}
}

// OnInvalidated lets another Scope (or any observer) subscribe to this
// scope's "invalidated" signal.
func (s *Scope) OnInvalidated(fn func(struct{})) signal.Handle {
	return s.invalidated.Subscribe(fn)
}

// UnsubscribeInvalidated releases a handle from OnInvalidated.
func (s *Scope) UnsubscribeInvalidated(h signal.Handle) {
	s.invalidated.Unsubscribe(h)
}

// SetHook installs the extra-validation hook a specialization runs
// after the base pass (spec.md §9's onValidate() resolution).
func (s *Scope) SetHook(hook func()) {
	s.hook = hook
}

// Invalidate purges derived state and emits "invalidated" to
// subscribers (their own invalidation cascades from there).
func (s *Scope) Invalidate() {
	if !s.isValidated && s.namespaceLookup == nil && s.classLookup == nil {
		return // already invalid; avoid redundant fan-out
	}
	s.isValidated = false
	s.namespaceLookup = nil
	s.classLookup = nil
	s.classOwner = nil
	s.invalidated.Emit(struct{}{})
}

// AttachParentScope subscribes to parent's invalidation and adopts its
// current validity immediately (spec.md §4.4 "Parent link").
func (s *Scope) AttachParentScope(parent *Scope) {
	if s.parent != nil {
		s.DetachParent()
	}
	s.parent = parent
	s.parentHandle = parent.OnInvalidated(func(struct{}) { s.Invalidate() })
	if !parent.isValidated {
		s.Invalidate()
	}
}

// DetachParent tears down the parent subscription. The caller (a
// DescriptorScope losing its resolved ancestor) is responsible for
// re-attaching to PlatformScope afterwards; Scope itself never assumes
// a fallback because PlatformScope has no parent of its own.
func (s *Scope) DetachParent() {
	if s.parent == nil {
		return
	}
	s.parent.UnsubscribeInvalidated(s.parentHandle)
	s.parent = nil
	s.parentHandle = signal.Handle{}
}

func (s *Scope) Parent() *Scope { return s.parent }

// --- membership -------------------------------------------------------------

// ApplyMembership inserts or replaces file if the membership predicate
// accepts it, invalidating self on any change. Re-adding an already
// accepted file is idempotent but still invalidates, since its content
// may have changed (spec.md §3 invariant).
func (s *Scope) ApplyMembership(file sourcefile.File) {
	if !s.membership(file) {
		return
	}
	s.files[file.AbsPath()] = file
	s.Invalidate()
}

// RemoveFile drops file from membership if present, invalidating self.
func (s *Scope) RemoveFile(absPath util.Path) {
	if _, ok := s.files[absPath]; !ok {
		return
	}
	delete(s.files, absPath)
	s.Invalidate()
}

func (s *Scope) Files() map[util.Path]sourcefile.File { return s.files }

// --- callable queries --------------------------------------------------------

// GetOwnCallables flattens callables from every member file, plus the
// built-in catalog for the root PlatformScope.
func (s *Scope) GetOwnCallables() []*ast.FunctionStatement {
	out := append([]*ast.FunctionStatement{}, s.builtinCallables...)
	for _, f := range s.files {
		out = append(out, f.Callables()...)
	}
	return out
}

func (s *Scope) ownEntries() []callableEntry {
	var out []callableEntry
	for _, fn := range s.builtinCallables {
		out = append(out, callableEntry{fn: fn, scope: s, file: ""})
	}
	for _, f := range s.files {
		for _, fn := range f.Callables() {
			out = append(out, callableEntry{fn: fn, scope: s, file: f.AbsPath()})
		}
	}
	return out
}

// GetAllCallables concatenates own callables with the parent's
// recursive callables; parent callables appear after own (spec.md
// §4.4 "Queries").
func (s *Scope) GetAllCallables() []*ast.FunctionStatement {
	out := s.GetOwnCallables()
	if s.parent != nil {
		out = append(out, s.parent.GetAllCallables()...)
	}
	return out
}

func (s *Scope) allEntries() []callableEntry {
	out := s.ownEntries()
	if s.parent != nil {
		out = append(out, s.parent.allEntries()...)
	}
	return out
}

// GetCallableByName returns the nearest (self before ancestors) match
// for name, case-insensitive.
func (s *Scope) GetCallableByName(name string) (*ast.FunctionStatement, bool) {
	target := strings.ToLower(name)
	for _, fn := range s.GetAllCallables() {
		if strings.ToLower(fn.Name) == target {
			return fn, true
		}
	}
	return nil, false
}

// IsKnownNamespace reports whether any member file declares a
// namespace whose lower-cased dotted name equals name or starts with
// name followed by a dot.
func (s *Scope) IsKnownNamespace(name string) bool {
	target := strings.ToLower(name)
	for _, f := range s.files {
		cf, ok := f.(*sourcefile.CodeFile)
		if !ok {
			continue
		}
		for _, ns := range cf.Namespaces {
			dotted := strings.ToLower(ns.DottedName())
			if dotted == target || strings.HasPrefix(dotted, target+".") {
				return true
			}
		}
	}
	return false
}

// GetCallablesAsCompletions returns GetAllCallables filtered, in
// superset mode, to exclude callables declared inside a namespace
// (those surface only via namespace-qualified completion elsewhere).
// mode reuses parser.Mode rather than a parallel enum, since it's the
// same baseline/superset distinction the parser itself draws.
func (s *Scope) GetCallablesAsCompletions(mode parser.Mode) []*ast.FunctionStatement {
	all := s.GetAllCallables()
	if mode != parser.Superset {
		return all
	}
	out := make([]*ast.FunctionStatement, 0, len(all))
	for _, fn := range all {
		if len(fn.NamespacePath) == 0 {
			out = append(out, fn)
		}
	}
	return out
}

// --- validation entry point --------------------------------------------------

// GetDiagnostics triggers validation if needed (coalescing concurrent
// callers of the same scope via singleflight), applies comment-based
// suppression (spec.md §7) and returns the resulting diagnostic list.
func (s *Scope) GetDiagnostics() []diagnostic.Diagnostic {
	s.Validate(false)
	return diagnostic.FilterSuppressed(s.diagnostics, s.sourceByFile())
}

// sourceByFile collects source text for every member code file, keyed
// by absolute path, for FilterSuppressed's per-line comment scan.
// Descriptor files have no entry: the dialect's `'`-comment syntax
// doesn't apply to XML.
func (s *Scope) sourceByFile() map[util.Path]string {
	out := make(map[util.Path]string, len(s.files))
	for path, f := range s.files {
		if cf, ok := f.(*sourcefile.CodeFile); ok {
			out[path] = cf.Source()
		}
	}
	return out
}

// Validate runs the pipeline of spec.md §4.4 "Validation pipeline". If
// already validated and force is false, it is a no-op.
func (s *Scope) Validate(force bool) {
	if s.isValidated && !force {
		return
	}
	if _, err, _ := s.group.Do("validate", func() (any, error) {
		s.validateOnce()
		return nil, nil
	}); err != nil {
		// validateOnce never returns an error; kept for singleflight's shape.
		_ = err
	}
}

func (s *Scope) validateOnce() {
	if s.parent != nil {
		s.parent.Validate(false)
	}
	s.diagnostics = nil

	entries := s.allEntries()
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].file != entries[j].file {
			return entries[i].file < entries[j].file
		}
		return entries[i].fn.Name < entries[j].fn.Name
	})

	buckets := map[string][]callableEntry{}
	for _, e := range entries {
		key := strings.ToLower(e.fn.Name)
		buckets[key] = append(buckets[key], e)
	}

	s.validateDuplicatesAndOverrides(buckets)
	validateClassHierarchy(s)

	files := make([]sourcefile.File, 0, len(s.files))
	for _, f := range s.files {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].AbsPath() < files[j].AbsPath()
	})

	for _, f := range files {
		cf, ok := f.(*sourcefile.CodeFile)
		if !ok {
			continue
		}
		s.validateUnknownCalls(cf)
		s.validateArgCounts(cf)
		s.validateShadowedLocals(cf)
	}
	s.validateStdlibCollisions()

	if s.hook != nil {
		s.hook()
	}
	s.isValidated = true
}

func (s *Scope) addDiagnostic(d diagnostic.Diagnostic) {
	s.diagnostics = append(s.diagnostics, d)
}
