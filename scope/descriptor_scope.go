package scope

import (
	"github.com/brightscope/bsc/diagnostic"
	"github.com/brightscope/bsc/signal"
	"github.com/brightscope/bsc/sourcefile"
	"github.com/brightscope/bsc/token"
	"github.com/brightscope/bsc/util"
)

// FileResolver answers "does pkgPath exist in the project, and under
// what on-disk-cased package path", letting DescriptorScope check
// script-tag imports without depending on package program directly.
type FileResolver func(pkgPath util.PkgPath) (actualPkgPath util.PkgPath, exists bool)

// DescriptorScope is the per-component specialization of spec.md §4.6:
// its membership predicate is the owning descriptor's DoesReferenceFile,
// it invalidates itself when the descriptor's resolved parent is
// attached or detached (subscribed via signals rather than polled; the
// parent scope link itself is set by program.Program), and its
// validation hook
// adds the descriptor-specific diagnostics the base pipeline doesn't
// know about.
type DescriptorScope struct {
	*Scope
	Descriptor *sourcefile.DescriptorFile

	resolve      FileResolver
	attachHandle signal.Handle
	detachHandle signal.Handle
}

// NewDescriptorScope builds a DescriptorScope for descriptor. resolve
// is used to check script-tag import targets against the project's
// actual file set; pass nil to skip existence/case checks (e.g. in
// isolated tests).
func NewDescriptorScope(descriptor *sourcefile.DescriptorFile, resolve FileResolver) *DescriptorScope {
	base := New(descriptor.ComponentName, func(f sourcefile.File) bool {
		return descriptor.DoesReferenceFile(f)
	})
	ds := &DescriptorScope{Scope: base, Descriptor: descriptor, resolve: resolve}
	ds.SetHook(ds.validateDescriptor)

	ds.attachHandle = descriptor.OnAttachParent(func(sourcefile.AttachEvent) { ds.Invalidate() })
	ds.detachHandle = descriptor.OnDetachParent(func(sourcefile.AttachEvent) { ds.Invalidate() })
	return ds
}

// DefinitionAt returns the resolved parent descriptor's declaration
// site if pos falls within this descriptor's "extends" attribute
// range (spec.md §4.6's "Go-to-definition" paragraph).
func (ds *DescriptorScope) DefinitionAt(pos token.Position) (token.Location, bool) {
	if ds.Descriptor.ParentNameRange == (token.Range{}) || !ds.Descriptor.ParentNameRange.ContainsPosition(pos) {
		return token.Location{}, false
	}
	parent := ds.Descriptor.ResolvedParent()
	if parent == nil {
		return token.Location{}, false
	}
	return token.Location{File: parent.AbsPath(), Range: token.Range{}}, true
}

// Close unsubscribes from the owning descriptor's attach/detach
// signals; call when the DescriptorScope itself is being torn down.
func (ds *DescriptorScope) Close() {
	ds.Descriptor.UnsubscribeAttach(ds.attachHandle)
	ds.Descriptor.UnsubscribeDetach(ds.detachHandle)
}

// validateDescriptor runs as the base pipeline's hook (spec.md §9's
// onValidate() resolution) and adds script-tag import diagnostics:
// empty src, missing target, case mismatch against the resolver, and
// duplicate-ancestor imports.
func (ds *DescriptorScope) validateDescriptor() {
	ancestorImports := ds.Descriptor.GetAncestorScriptTagImports()

	for _, ref := range ds.Descriptor.ScriptTagImports {
		if ref.PkgPath == "" {
			ds.addDiagnostic(diagnostic.New(diagnostic.CodeScriptSrcCannotBeEmpty, diagnostic.SeverityError,
				ref.FilePathRange, ds.Descriptor.AbsPath(), "script uri cannot be empty"))
			continue
		}

		if ds.resolve != nil {
			actual, exists := ds.resolve(ref.PkgPath)
			if !exists {
				ds.addDiagnostic(diagnostic.New(diagnostic.CodeReferencedFileDoesNotExist, diagnostic.SeverityError,
					ref.FilePathRange, ds.Descriptor.AbsPath(), "referenced file '"+ref.PkgPath+"' does not exist"))
			} else if actual != ref.PkgPath {
				ds.addDiagnostic(diagnostic.New(diagnostic.CodeScriptImportCaseMismatch, diagnostic.SeverityWarning,
					ref.FilePathRange, ds.Descriptor.AbsPath(),
					"script uri '"+ref.PkgPath+"' differs in case from the file on disk ('"+actual+"')"))
			}
		}

		for _, ancestorRef := range ancestorImports {
			if util.PkgPathEqual(ref.PkgPath, ancestorRef.PkgPath) {
				ds.addDiagnostic(diagnostic.New(diagnostic.CodeDuplicateAncestorScriptImport, diagnostic.SeverityWarning,
					ref.FilePathRange, ds.Descriptor.AbsPath(),
					"'"+ref.PkgPath+"' is already imported by ancestor component '"+ancestorRef.Source.ComponentName+"'"))
				break
			}
		}
	}
}
