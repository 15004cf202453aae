package scope

import (
	"strings"

	"github.com/brightscope/bsc/ast"
	"github.com/brightscope/bsc/sourcefile"
)

// NamespaceLookup returns the lazily built namespace closure for this
// scope's own files, keyed by lower-cased dotted path. For a
// namespace "A.B.C" three entries exist — "a", "a.b", "a.b.c" — each
// linked to its parent and children (spec.md §3).
func (s *Scope) NamespaceLookup() map[string]*namespaceEntry {
	s.Validate(false)
	if s.namespaceLookup == nil {
		s.buildNamespaceLookup()
	}
	return s.namespaceLookup
}

func (s *Scope) buildNamespaceLookup() {
	s.namespaceLookup = map[string]*namespaceEntry{}
	for _, f := range s.files {
		cf, ok := f.(*sourcefile.CodeFile)
		if !ok {
			continue
		}
		for _, ns := range cf.Namespaces {
			s.registerNamespacePath(ns.NameParts)
		}
	}
}

// registerNamespacePath ensures every dotted prefix of parts exists in
// namespaceLookup, linking each newly created entry to its immediate
// parent and registering it as that parent's child.
func (s *Scope) registerNamespacePath(parts []string) {
	var prefix []string
	var parent *namespaceEntry
	for _, part := range parts {
		prefix = append(prefix, part)
		key := strings.ToLower(strings.Join(prefix, "."))
		entry, ok := s.namespaceLookup[key]
		if !ok {
			entry = &namespaceEntry{dotted: key, parent: parent, children: map[string]*namespaceEntry{}}
			s.namespaceLookup[key] = entry
			if parent != nil {
				parent.children[strings.ToLower(part)] = entry
			}
		}
		parent = entry
	}
}

// ClassLookup returns the lazily built own-class lookup for this
// scope, keyed by Class.QualifiedName() (spec.md §3).
func (s *Scope) ClassLookup() map[string]*ast.ClassStatement {
	s.Validate(false)
	if s.classLookup == nil {
		s.buildClassLookup()
	}
	return s.classLookup
}

func (s *Scope) buildClassLookup() {
	s.classLookup = map[string]*ast.ClassStatement{}
	s.classOwner = map[string]*Scope{}
	for _, f := range s.files {
		cf, ok := f.(*sourcefile.CodeFile)
		if !ok {
			continue
		}
		for _, cls := range cf.Classes {
			key := cls.QualifiedName()
			s.classLookup[key] = cls
			s.classOwner[key] = s
		}
	}
}

// OwnerOfClass returns the scope owning the class named by the
// qualified key, preferring s over its ancestors.
func (s *Scope) OwnerOfClass(key string) (*Scope, bool) {
	if _, ok := s.ClassLookup()[key]; ok {
		return s, true
	}
	if s.parent != nil {
		return s.parent.OwnerOfClass(key)
	}
	return nil, false
}
