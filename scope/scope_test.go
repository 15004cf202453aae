package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightscope/bsc/diagnostic"
	"github.com/brightscope/bsc/parser"
	"github.com/brightscope/bsc/scope"
	"github.com/brightscope/bsc/sourcefile"
	"github.com/brightscope/bsc/util"
)

func codesOf(diags []diagnostic.Diagnostic) []diagnostic.Code {
	var out []diagnostic.Code
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func newScopeWithFiles(files ...sourcefile.File) *scope.Scope {
	s := scope.New("test", func(sourcefile.File) bool { return true })
	for _, f := range files {
		s.ApplyMembership(f)
	}
	return s
}

func TestScopeHasStableID(t *testing.T) {
	s := scope.New("a", func(sourcefile.File) bool { return true })
	assert.NotEqual(t, s.ID.String(), "")
	other := scope.New("b", func(sourcefile.File) bool { return true })
	assert.NotEqual(t, s.ID, other.ID)
}

func TestValidateDuplicateFunctionImplementation(t *testing.T) {
	f := sourcefile.NewCodeFile("/proj/a.brs", "a.brs",
		"sub foo()\nend sub\nsub foo()\nend sub", parser.Baseline)
	s := newScopeWithFiles(f)
	diags := s.GetDiagnostics()
	assert.Contains(t, codesOf(diags), diagnostic.CodeDuplicateFunctionImplementation)
}

func TestValidateOverridesAncestorFunction(t *testing.T) {
	parentFile := sourcefile.NewCodeFile("/proj/base.brs", "base.brs", "sub foo()\nend sub", parser.Baseline)
	childFile := sourcefile.NewCodeFile("/proj/child.brs", "child.brs", "sub foo()\nend sub", parser.Baseline)

	parent := newScopeWithFiles(parentFile)
	child := scope.New("child", func(sourcefile.File) bool { return true })
	child.ApplyMembership(childFile)
	child.AttachParentScope(parent)

	diags := child.GetDiagnostics()
	assert.Contains(t, codesOf(diags), diagnostic.CodeOverridesAncestorFunction)
}

func TestValidateInitOverrideIsExempt(t *testing.T) {
	parentFile := sourcefile.NewCodeFile("/proj/base.brs", "base.brs", "sub init()\nend sub", parser.Baseline)
	childFile := sourcefile.NewCodeFile("/proj/child.brs", "child.brs", "sub init()\nend sub", parser.Baseline)

	parent := newScopeWithFiles(parentFile)
	child := scope.New("child", func(sourcefile.File) bool { return true })
	child.ApplyMembership(childFile)
	child.AttachParentScope(parent)

	diags := child.GetDiagnostics()
	assert.NotContains(t, codesOf(diags), diagnostic.CodeOverridesAncestorFunction)
}

func TestValidateSuppressesDisabledLine(t *testing.T) {
	f := sourcefile.NewCodeFile("/proj/a.brs", "a.brs",
		"sub main()\n  bogus() 'bs:disable-line 2000\nend sub", parser.Baseline)
	s := newScopeWithFiles(f)
	diags := s.GetDiagnostics()
	assert.NotContains(t, codesOf(diags), diagnostic.CodeCallToUnknownFunction)
}

func TestValidateCallToUnknownFunction(t *testing.T) {
	f := sourcefile.NewCodeFile("/proj/a.brs", "a.brs", "sub main()\n  bogus()\nend sub", parser.Baseline)
	s := newScopeWithFiles(f)
	diags := s.GetDiagnostics()
	assert.Contains(t, codesOf(diags), diagnostic.CodeCallToUnknownFunction)
}

func TestValidateArgCountMismatchReportsBounds(t *testing.T) {
	f := sourcefile.NewCodeFile("/proj/a.brs", "a.brs",
		"sub foo(x, y)\nend sub\nsub main()\n  foo(1)\nend sub", parser.Baseline)
	s := newScopeWithFiles(f)
	diags := s.GetDiagnostics()
	require.Contains(t, codesOf(diags), diagnostic.CodeMismatchArgumentCount)
	for _, d := range diags {
		if d.Code == diagnostic.CodeMismatchArgumentCount {
			assert.Contains(t, d.Message, "2")
		}
	}
}

func TestValidateLocalFunctionShadowsStdlib(t *testing.T) {
	f := sourcefile.NewCodeFile("/proj/a.brs", "a.brs",
		"sub main()\n  len = function() as integer\n  end function\nend sub", parser.Baseline)
	s := newScopeWithFiles(f)
	diags := s.GetDiagnostics()
	assert.Contains(t, codesOf(diags), diagnostic.CodeLocalFunctionShadowsStdlib)
}

func TestValidateScopeFunctionShadowedByBuiltin(t *testing.T) {
	f := sourcefile.NewCodeFile("/proj/a.brs", "a.brs", "sub len()\nend sub", parser.Baseline)
	s := newScopeWithFiles(f)
	diags := s.GetDiagnostics()
	assert.Contains(t, codesOf(diags), diagnostic.CodeScopeFunctionShadowedByBuiltIn)
}

func TestNamespaceLookupBuildsDottedPrefixes(t *testing.T) {
	f := sourcefile.NewCodeFile("/proj/a.brs", "a.brs",
		"namespace A.B.C\nsub foo()\nend sub\nend namespace", parser.Superset)
	s := newScopeWithFiles(f)
	lookup := s.NamespaceLookup()
	require.Contains(t, lookup, "a")
	require.Contains(t, lookup, "a.b")
	require.Contains(t, lookup, "a.b.c")
}

func TestScopeQueryableAfterInvalidate(t *testing.T) {
	f := sourcefile.NewCodeFile("/proj/a.brs", "a.brs", "class Dog\nend class", parser.Superset)
	s := newScopeWithFiles(f)
	require.NotEmpty(t, s.ClassLookup())
	s.Invalidate()
	assert.False(t, s.IsKnownNamespace("nonexistent"))
}

func TestDefinitionForResolvesCallable(t *testing.T) {
	f := sourcefile.NewCodeFile("/proj/a.brs", "a.brs", "sub bark()\nend sub", parser.Baseline)
	s := newScopeWithFiles(f)
	loc, ok := s.DefinitionFor("BARK")
	require.True(t, ok)
	assert.Equal(t, "/proj/a.brs", loc.File)
}

func TestCompletionsIncludesCallablesAndProperties(t *testing.T) {
	f := sourcefile.NewCodeFile("/proj/a.brs", "a.brs",
		"class Dog\n  name as string\n  sub bark()\n  end sub\nend class", parser.Superset)
	s := newScopeWithFiles(f)
	items := s.Completions(parser.Superset)

	var names []string
	for _, it := range items {
		names = append(names, it.Name)
	}
	assert.Contains(t, names, "name")
	assert.Contains(t, names, "bark")
}

func TestPlatformScopeSeedsBuiltinCallables(t *testing.T) {
	ps := scope.NewPlatformScope()
	_, ok := ps.GetCallableByName("len")
	assert.True(t, ok)
}

func TestDescriptorScopeEmptyScriptSrc(t *testing.T) {
	df, err := sourcefile.NewDescriptorFile("/proj/widget.xml", "widget.xml",
		`<component name="Widget"><script uri="" /></component>`)
	require.NoError(t, err)
	ds := scope.NewDescriptorScope(df, nil)
	diags := ds.GetDiagnostics()
	assert.Contains(t, codesOf(diags), diagnostic.CodeScriptSrcCannotBeEmpty)
}

func TestDescriptorScopeReferencedFileDoesNotExist(t *testing.T) {
	df, err := sourcefile.NewDescriptorFile("/proj/widget.xml", "widget.xml",
		`<component name="Widget"><script uri="pkg:/missing.brs" /></component>`)
	require.NoError(t, err)
	resolver := func(util.PkgPath) (util.PkgPath, bool) { return "", false }
	ds := scope.NewDescriptorScope(df, resolver)
	diags := ds.GetDiagnostics()
	assert.Contains(t, codesOf(diags), diagnostic.CodeReferencedFileDoesNotExist)
}

func TestDescriptorScopeDuplicateAncestorScriptImport(t *testing.T) {
	parent, err := sourcefile.NewDescriptorFile("/proj/base.xml", "base.xml",
		`<component name="Base"><script uri="pkg:/shared.brs" /></component>`)
	require.NoError(t, err)
	child, err := sourcefile.NewDescriptorFile("/proj/widget.xml", "widget.xml",
		`<component name="Widget" extends="Base"><script uri="pkg:/shared.brs" /></component>`)
	require.NoError(t, err)
	child.AttachParent(parent)

	ds := scope.NewDescriptorScope(child, nil)
	diags := ds.GetDiagnostics()
	assert.Contains(t, codesOf(diags), diagnostic.CodeDuplicateAncestorScriptImport)
}

func TestDescriptorScopeQueryableAfterParentAttach(t *testing.T) {
	parent, err := sourcefile.NewDescriptorFile("/proj/base.xml", "base.xml", `<component name="Base"></component>`)
	require.NoError(t, err)
	child, err := sourcefile.NewDescriptorFile("/proj/widget.xml", "widget.xml", `<component name="Widget"></component>`)
	require.NoError(t, err)

	ds := scope.NewDescriptorScope(child, nil)
	ds.GetDiagnostics() // force validation so isValidated is true before attach

	child.AttachParent(parent)
	assert.False(t, ds.IsKnownNamespace("anything")) // still callable post-invalidate, just documenting no panic
}
