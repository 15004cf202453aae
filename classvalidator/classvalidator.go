// Package classvalidator implements the cross-file class hierarchy
// checker of spec.md §4.5. It is invoked once per Scope validation
// pass and walks a flattened class lookup (own classes before
// ancestors', as Scope.GetAllCallables does for callables), resolving
// each class's declared parent first as a same-namespace-relative
// name, then as a fully qualified name, and reporting unknown
// parents, inheritance cycles, member mismatches, illegal final
// overrides, field shadowing, and duplicate member names.
//
// No direct teacher analogue exists (the teacher's dialect has no
// class hierarchy); the DFS-color-marking cycle detector and the
// diagnostic-emitting walker keyed off a name lookup map follow the
// structural style package scope itself borrows from the teacher.
package classvalidator

import (
	"strings"

	"github.com/brightscope/bsc/ast"
	"github.com/brightscope/bsc/diagnostic"
	"github.com/brightscope/bsc/util"
)

// Entry pairs a declared class with the absolute path of the file that
// declared it, for diagnostic attribution.
type Entry struct {
	Class *ast.ClassStatement
	File  util.Path
}

// color is the DFS marking state used for cycle detection.
type color int

const (
	white color = iota
	gray
	black
)

// Validate walks lookup (every reachable class, keyed by
// Class.QualifiedName(), own-scope entries expected first on name
// collision) and returns every diagnostic spec.md §4.5 calls for.
func Validate(lookup map[string]Entry) []diagnostic.Diagnostic {
	v := &validator{lookup: lookup, colors: map[string]color{}}
	var diags []diagnostic.Diagnostic

	// Deterministic order: sort keys so diagnostic ordering doesn't
	// depend on map iteration.
	keys := make([]string, 0, len(lookup))
	for k := range lookup {
		keys = append(keys, k)
	}
	sortStrings(keys)

	for _, k := range keys {
		diags = append(diags, v.checkDuplicateMembers(lookup[k])...)
		diags = append(diags, v.checkMemberRules(lookup[k])...)
	}
	for _, k := range keys {
		if v.colors[k] == white {
			diags = append(diags, v.walkParentChain(k)...)
		}
	}
	return diags
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

type validator struct {
	lookup map[string]Entry
	colors map[string]color
}

// resolveParent finds the Entry a class's declared parent name refers
// to: first as a name relative to the class's own namespace, then as
// a fully qualified dotted name (spec.md §4.5).
func (v *validator) resolveParent(cls *ast.ClassStatement) (Entry, bool) {
	if len(cls.ParentName) == 0 {
		return Entry{}, false
	}
	parentDotted := strings.ToLower(cls.ParentDottedName())

	if len(cls.NamespacePath) > 0 {
		relative := strings.ToLower(strings.Join(cls.NamespacePath, ".") + "." + cls.ParentDottedName())
		if e, ok := v.lookup[relative]; ok {
			return e, true
		}
	}
	if e, ok := v.lookup[parentDotted]; ok {
		return e, true
	}
	return Entry{}, false
}

// walkParentChain performs the DFS color-marking cycle check (spec.md
// §4.5) for the class named key and, transitively, every ancestor it
// has not already visited. Unknown-parent and cycle diagnostics are
// attached to the class that named the problem parent.
func (v *validator) walkParentChain(key string) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	var visit func(k string) []diagnostic.Diagnostic
	visit = func(k string) []diagnostic.Diagnostic {
		entry, ok := v.lookup[k]
		if !ok {
			return nil
		}
		if v.colors[k] == black {
			return nil
		}
		if v.colors[k] == gray {
			return []diagnostic.Diagnostic{diagnostic.New(
				diagnostic.CodeCyclicInheritance, diagnostic.SeverityError,
				entry.Class.ParentNameRange, entry.File,
				"cyclic inheritance involving class '"+entry.Class.Name+"'")}
		}
		v.colors[k] = gray

		cls := entry.Class
		if len(cls.ParentName) > 0 {
			parentEntry, found := v.resolveParent(cls)
			if !found {
				diags = append(diags, diagnostic.New(
					diagnostic.CodeUnknownParentClass, diagnostic.SeverityError,
					cls.ParentNameRange, entry.File,
					"unknown parent class '"+cls.ParentDottedName()+"'"))
			} else {
				parentKey := strings.ToLower(parentEntry.Class.QualifiedName())
				diags = append(diags, visit(parentKey)...)
			}
		}
		v.colors[k] = black
		return nil
	}
	return append(diags, visit(key)...)
}

// checkDuplicateMembers reports member names declared more than once
// within one class (fields and methods share one namespace).
func (v *validator) checkDuplicateMembers(e Entry) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	seen := map[string]bool{}
	for _, f := range e.Class.Fields {
		key := strings.ToLower(f.Name)
		if seen[key] {
			diags = append(diags, diagnostic.New(
				diagnostic.CodeDuplicateMemberName, diagnostic.SeverityError,
				f.NameRange, e.File, "duplicate member '"+f.Name+"'"))
		}
		seen[key] = true
	}
	for _, m := range e.Class.Methods {
		key := strings.ToLower(m.Name)
		if seen[key] {
			diags = append(diags, diagnostic.New(
				diagnostic.CodeDuplicateMemberName, diagnostic.SeverityError,
				m.NameRange, e.File, "duplicate member '"+m.Name+"'"))
		}
		seen[key] = true
	}
	return diags
}

// checkMemberRules reports field-shadows-parent-field, illegal final
// override, and member-signature mismatches against the resolved
// parent's members.
func (v *validator) checkMemberRules(e Entry) []diagnostic.Diagnostic {
	parent, ok := v.resolveParent(e.Class)
	if !ok {
		return nil
	}
	var diags []diagnostic.Diagnostic

	parentFields := map[string]*ast.FieldMember{}
	for _, f := range parent.Class.Fields {
		parentFields[strings.ToLower(f.Name)] = f
	}
	parentMethods := map[string]*ast.FunctionStatement{}
	for _, m := range parent.Class.Methods {
		parentMethods[strings.ToLower(m.Name)] = m
	}

	for _, f := range e.Class.Fields {
		if _, shadowed := parentFields[strings.ToLower(f.Name)]; shadowed {
			diags = append(diags, diagnostic.New(
				diagnostic.CodeFieldShadowsParentField, diagnostic.SeverityWarning,
				f.NameRange, e.File, "field '"+f.Name+"' shadows a field declared on '"+parent.Class.Name+"'"))
		}
	}

	for _, m := range e.Class.Methods {
		ancestor, overridden := parentMethods[strings.ToLower(m.Name)]
		if !overridden {
			continue
		}
		if ancestor.IsFinal {
			diags = append(diags, diagnostic.New(
				diagnostic.CodeIllegalFinalOverride, diagnostic.SeverityError,
				m.NameRange, e.File, "cannot override final member '"+m.Name+"'"))
			continue
		}
		if m.MinParams() != ancestor.MinParams() || m.MaxParams() != ancestor.MaxParams() || m.Access != ancestor.Access {
			diags = append(diags, diagnostic.New(
				diagnostic.CodeMemberSignatureMismatch, diagnostic.SeverityError,
				m.NameRange, e.File,
				"override of '"+m.Name+"' does not match the signature declared on '"+parent.Class.Name+"'"))
		}
	}
	return diags
}
