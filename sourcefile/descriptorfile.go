package sourcefile

import (
	"encoding/xml"
	"regexp"

	"github.com/brightscope/bsc/ast"
	"github.com/brightscope/bsc/diagnostic"
	"github.com/brightscope/bsc/signal"
	"github.com/brightscope/bsc/token"
	"github.com/brightscope/bsc/util"
)

// descriptorXML is the root element shape spec.md §6 describes: a
// `name` attribute, an optional `extends` attribute, and `<script
// uri="pkg:/…">` children. No third-party XML library surfaced
// anywhere in the retrieved corpus, so this one component uses the
// standard library's encoding/xml (see DESIGN.md).
type descriptorXML struct {
	XMLName xml.Name `xml:""`
	Name    string   `xml:"name,attr"`
	Extends string   `xml:"extends,attr"`
	Scripts []struct {
		URI string `xml:"uri,attr"`
	} `xml:"script"`
}

// AttachEvent carries a DescriptorFile's own pointer to attach/detach
// subscribers (the parent-resolution protocol of spec.md §4.6 needs no
// payload beyond "which descriptor changed").
type AttachEvent struct {
	Descriptor *DescriptorFile
}

// DescriptorFile is the parsed component-descriptor file kind: a
// component name, an optional parent component name, and the list of
// script-tag imports it declares (spec.md §4.2).
type DescriptorFile struct {
	absPath util.Path
	pkgPath util.PkgPath
	source  string

	ComponentName   string
	ParentName      string
	ParentNameRange token.Range

	ScriptTagImports []FileReference

	resolvedParent *DescriptorFile

	diagnostics []diagnostic.Diagnostic

	onAttach *signal.Signal[AttachEvent]
	onDetach *signal.Signal[AttachEvent]
}

// NewDescriptorFile parses an XML-like descriptor document. A
// malformed root tag is an unrecoverable condition per spec.md §7 and
// is surfaced to the caller as an error rather than a Diagnostic;
// everything else (missing/empty script paths) is resolved later by
// DescriptorScope, which has the project-wide context needed to judge
// "file does not exist".
func NewDescriptorFile(absPath util.Path, pkgPath util.PkgPath, source string) (*DescriptorFile, error) {
	var doc descriptorXML
	if err := xml.Unmarshal([]byte(source), &doc); err != nil {
		return nil, &CorruptDescriptorError{Path: absPath, Cause: err}
	}

	f := &DescriptorFile{
		absPath:       absPath,
		pkgPath:       pkgPath,
		source:        source,
		ComponentName: doc.Name,
		ParentName:    doc.Extends,
		onAttach:      signal.New[AttachEvent](),
		onDetach:      signal.New[AttachEvent](),
	}
	if m := extendsAttrRe.FindStringSubmatchIndex(source); m != nil {
		f.ParentNameRange = byteRangeToRange(source, m[2], m[3])
	}

	uriMatches := scriptURIRe.FindAllStringSubmatchIndex(source, -1)
	for i, s := range doc.Scripts {
		ref := FileReference{PkgPath: util.NormalizePkgPath(s.URI), Source: f}
		if i < len(uriMatches) {
			m := uriMatches[i]
			ref.FilePathRange = byteRangeToRange(source, m[2], m[3])
		}
		f.ScriptTagImports = append(f.ScriptTagImports, ref)
	}
	return f, nil
}

// encoding/xml reports no source positions for attribute values, so
// the ranges spec.md needs for go-to-definition and for anchoring
// script-import diagnostics are recovered with a second, text-level
// pass over the raw source.
var extendsAttrRe = regexp.MustCompile(`\bextends\s*=\s*"([^"]*)"`)
var scriptURIRe = regexp.MustCompile(`<script\b[^>]*\buri\s*=\s*"([^"]*)"`)

func byteRangeToRange(source string, start, end int) token.Range {
	startPos, _ := token.OffsetToPosition(uint(start), source, token.UTF8)
	endPos, _ := token.OffsetToPosition(uint(end), source, token.UTF8)
	return token.Range{Start: startPos, End: endPos}
}

// CorruptDescriptorError reports a descriptor file whose root tag
// could not be parsed at all (spec.md §7's unrecoverable taxonomy).
type CorruptDescriptorError struct {
	Path  util.Path
	Cause error
}

func (e *CorruptDescriptorError) Error() string {
	return "sourcefile: corrupt descriptor " + e.Path + ": " + e.Cause.Error()
}

func (e *CorruptDescriptorError) Unwrap() error { return e.Cause }

func (f *DescriptorFile) AbsPath() util.Path                  { return f.absPath }
func (f *DescriptorFile) PkgPath() util.PkgPath                { return f.pkgPath }
func (f *DescriptorFile) Source() string                       { return f.source }
func (f *DescriptorFile) Diagnostics() []diagnostic.Diagnostic { return f.diagnostics }

// Callables and FunctionCalls are always empty: descriptor files carry
// no dialect code of their own. FunctionScopes is likewise empty.
func (f *DescriptorFile) Callables() []*ast.FunctionStatement { return nil }
func (f *DescriptorFile) FunctionScopes() []*FunctionScope    { return nil }
func (f *DescriptorFile) FunctionCalls() []*ast.FunctionCall  { return nil }

func (f *DescriptorFile) SetDiagnostics(diags []diagnostic.Diagnostic) {
	f.diagnostics = diags
}

// ResolvedParent is the descriptor this one extends, once resolved by
// component-name matching; nil if unresolved or this descriptor has no
// ParentName.
func (f *DescriptorFile) ResolvedParent() *DescriptorFile {
	return f.resolvedParent
}

// OnAttachParent / OnDetachParent let a DescriptorScope subscribe to
// this descriptor's parent-resolution lifecycle (spec.md §4.6).
func (f *DescriptorFile) OnAttachParent(fn func(AttachEvent)) signal.Handle {
	return f.onAttach.Subscribe(fn)
}
func (f *DescriptorFile) OnDetachParent(fn func(AttachEvent)) signal.Handle {
	return f.onDetach.Subscribe(fn)
}
func (f *DescriptorFile) UnsubscribeAttach(h signal.Handle) { f.onAttach.Unsubscribe(h) }
func (f *DescriptorFile) UnsubscribeDetach(h signal.Handle) { f.onDetach.Unsubscribe(h) }

// AttachParent resolves parent as this descriptor's ancestor and fires
// "attach-parent" to subscribers.
func (f *DescriptorFile) AttachParent(parent *DescriptorFile) {
	f.resolvedParent = parent
	f.onAttach.Emit(AttachEvent{Descriptor: f})
}

// DetachParent clears the resolved parent and fires "detach-parent".
func (f *DescriptorFile) DetachParent() {
	f.resolvedParent = nil
	f.onDetach.Emit(AttachEvent{Descriptor: f})
}

// GetAncestorScriptTagImports concatenates the script imports of every
// transitive resolved ancestor, parents-first (spec.md §4.2).
func (f *DescriptorFile) GetAncestorScriptTagImports() []FileReference {
	var chain []*DescriptorFile
	for p := f.resolvedParent; p != nil; p = p.resolvedParent {
		chain = append(chain, p)
	}
	var out []FileReference
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i].ScriptTagImports...)
	}
	return out
}

// DoesReferenceFile reports whether file is this descriptor itself, or
// whether file's package path equals some transitive script-import of
// this descriptor or its resolved ancestors (spec.md §4.2).
func (f *DescriptorFile) DoesReferenceFile(file File) bool {
	if file.AbsPath() == f.absPath {
		return true
	}
	for _, ref := range f.ScriptTagImports {
		if util.PkgPathEqual(ref.PkgPath, file.PkgPath()) {
			return true
		}
	}
	for _, ref := range f.GetAncestorScriptTagImports() {
		if util.PkgPathEqual(ref.PkgPath, file.PkgPath()) {
			return true
		}
	}
	return false
}
