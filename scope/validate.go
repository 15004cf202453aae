package scope

import (
	"strconv"
	"strings"

	"github.com/brightscope/bsc/builtins"
	"github.com/brightscope/bsc/classvalidator"
	"github.com/brightscope/bsc/diagnostic"
	"github.com/brightscope/bsc/sourcefile"
	"github.com/brightscope/bsc/token"
)

// --- §4.4.1 duplicate & override rules --------------------------------------

// validateDuplicatesAndOverrides partitions each name bucket into own
// entries and non-platform ancestor entries. More than one own entry
// for a name is a duplicate implementation; an own entry with a
// non-platform ancestor entry of the same name overrides it (reported
// as info, except the "init" constructor hook which every class is
// expected to redeclare).
func (s *Scope) validateDuplicatesAndOverrides(buckets map[string][]callableEntry) {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sortKeys(keys)

	for _, name := range keys {
		var own, ancestorNonPlatform []callableEntry
		for _, e := range buckets[name] {
			if e.scope == s {
				own = append(own, e)
			} else if !e.scope.isPlatform {
				ancestorNonPlatform = append(ancestorNonPlatform, e)
			}
		}

		if len(own) > 1 {
			for _, e := range own {
				d := diagnostic.New(diagnostic.CodeDuplicateFunctionImplementation, diagnostic.SeverityError,
					e.fn.NameRange, e.file, "duplicate implementation of '"+e.fn.Name+"' in this scope")
				s.addDiagnostic(d)
			}
		}

		if len(own) > 0 && len(ancestorNonPlatform) > 0 && !strings.EqualFold(name, "init") {
			ancestor := ancestorNonPlatform[0]
			for _, e := range own {
				d := diagnostic.New(diagnostic.CodeOverridesAncestorFunction, diagnostic.SeverityInfo,
					e.fn.NameRange, e.file, "'"+e.fn.Name+"' overrides an ancestor-scope function")
				d = d.WithRelated(
					token.Location{File: ancestor.file, Range: ancestor.fn.NameRange},
					"overridden function declared here")
				s.addDiagnostic(d)
			}
		}
	}
}

func sortKeys(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// --- §4.4.2 unknown function calls -------------------------------------------

// validateUnknownCalls reports a call site whose callee name resolves
// to neither a local variable in the enclosing function scope nor any
// callable visible from s (own or ancestor).
func (s *Scope) validateUnknownCalls(cf *sourcefile.CodeFile) {
	for _, call := range cf.FunctionCalls() {
		if fs := cf.GetFunctionScopeAtPosition(call.NameRange.Start); fs != nil {
			if _, shadowed := fs.Lookup(call.CalleeName); shadowed {
				continue
			}
		}
		if _, ok := s.GetCallableByName(call.CalleeName); ok {
			continue
		}
		s.addDiagnostic(diagnostic.New(diagnostic.CodeCallToUnknownFunction, diagnostic.SeverityError,
			call.NameRange, cf.AbsPath(), "call to unknown function '"+call.CalleeName+"'"))
	}
}

// --- §4.4.3 argument count ----------------------------------------------------

// validateArgCounts reports a call site whose argument count falls
// outside the resolved callable's [min, max] bound.
func (s *Scope) validateArgCounts(cf *sourcefile.CodeFile) {
	for _, call := range cf.FunctionCalls() {
		fn, ok := s.GetCallableByName(call.CalleeName)
		if !ok {
			continue // already reported by validateUnknownCalls
		}
		if fn.AcceptsArgCount(len(call.Args)) {
			continue
		}
		s.addDiagnostic(diagnostic.New(diagnostic.CodeMismatchArgumentCount, diagnostic.SeverityError,
			call.NameRange, cf.AbsPath(),
			"'"+call.CalleeName+"' expects "+fn.ParamCountBounds()+" argument(s), got "+strconv.Itoa(len(call.Args))))
	}
}

// --- §4.4.4 shadowed locals ---------------------------------------------------

// validateShadowedLocals reports function-typed locals that shadow a
// platform built-in or a scope-declared function, and plain locals
// that collide with a scope-declared function of the same name.
func (s *Scope) validateShadowedLocals(cf *sourcefile.CodeFile) {
	for _, fs := range cf.FunctionScopes() {
		names := make([]string, 0, len(fs.Variables))
		for k := range fs.Variables {
			names = append(names, k)
		}
		sortKeys(names)

		for _, key := range names {
			decl := fs.Variables[key]
			scopeFn, hasScopeFn := s.GetCallableByName(decl.Name)

			if decl.IsFunctionType() {
				if builtins.IsBuiltin(decl.Name) {
					s.addDiagnostic(diagnostic.New(diagnostic.CodeLocalFunctionShadowsStdlib, diagnostic.SeverityWarning,
						decl.NameRange, cf.AbsPath(), "local '"+decl.Name+"' shadows a built-in function"))
					continue
				}
				if hasScopeFn {
					d := diagnostic.New(diagnostic.CodeLocalFunctionShadowsScope, diagnostic.SeverityWarning,
						decl.NameRange, cf.AbsPath(), "local '"+decl.Name+"' shadows a function declared in this scope").
						WithRelated(token.Location{File: cf.AbsPath(), Range: scopeFn.NameRange}, "shadowed function declared here")
					s.addDiagnostic(d)
				}
				continue
			}

			if hasScopeFn && !builtins.IsBuiltin(decl.Name) {
				d := diagnostic.New(diagnostic.CodeLocalVarShadowedByScopedFunction, diagnostic.SeverityWarning,
					decl.NameRange, cf.AbsPath(), "local variable '"+decl.Name+"' is shadowed by a function of the same name in this scope").
					WithRelated(token.Location{File: cf.AbsPath(), Range: scopeFn.NameRange}, "shadowing function declared here")
				s.addDiagnostic(d)
			}
		}
	}
}

// --- §4.4.5 stdlib collisions -------------------------------------------------

// validateStdlibCollisions reports every own, non-platform callable
// whose name collides with a platform built-in.
func (s *Scope) validateStdlibCollisions() {
	if s.isPlatform {
		return
	}
	for _, e := range s.ownEntries() {
		if !builtins.IsBuiltin(e.fn.Name) {
			continue
		}
		s.addDiagnostic(diagnostic.New(diagnostic.CodeScopeFunctionShadowedByBuiltIn, diagnostic.SeverityWarning,
			e.fn.NameRange, e.file, "'"+e.fn.Name+"' has the same name as a built-in function and is unreachable by that name"))
	}
}

// --- §4.5 class hierarchy bridge ---------------------------------------------

// validateClassHierarchy flattens s's reachable class set (own classes
// take priority over ancestors' on a name collision, same discipline
// as allEntries) and delegates to package classvalidator.
func validateClassHierarchy(s *Scope) {
	for _, d := range classvalidator.Validate(s.classEntries()) {
		s.addDiagnostic(d)
	}
}

func (s *Scope) classEntries() map[string]classvalidator.Entry {
	out := map[string]classvalidator.Entry{}
	if s.parent != nil {
		for k, v := range s.parent.classEntries() {
			out[k] = v
		}
	}
	for _, f := range s.files {
		cf, ok := f.(*sourcefile.CodeFile)
		if !ok {
			continue
		}
		for _, cls := range cf.Classes {
			out[cls.QualifiedName()] = classvalidator.Entry{Class: cls, File: f.AbsPath()}
		}
	}
	return out
}

