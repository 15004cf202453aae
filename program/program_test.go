package program_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightscope/bsc/diagnostic"
	"github.com/brightscope/bsc/parser"
	"github.com/brightscope/bsc/program"
)

func TestAddFileRegistersCodeFile(t *testing.T) {
	p := program.New("/proj", parser.Baseline)
	err := p.AddFile(program.InputFile{AbsPath: "/proj/main.brs", PkgPath: "main.brs", Source: "sub main()\nend sub"})
	require.NoError(t, err)
	assert.Len(t, p.Files(), 1)
}

func TestAddDescriptorCreatesScope(t *testing.T) {
	p := program.New("/proj", parser.Baseline)
	src := `<component name="Widget"><script uri="pkg:/widget.brs" /></component>`
	err := p.AddFile(program.InputFile{AbsPath: "/proj/widget.xml", PkgPath: "widget.xml", Source: src})
	require.NoError(t, err)

	scopes := p.GetScopesForFile("/proj/widget.xml")
	require.Len(t, scopes, 2) // platform + the new descriptor scope
}

func TestAddFileReportsMissingScriptImport(t *testing.T) {
	p := program.New("/proj", parser.Baseline)
	src := `<component name="Widget"><script uri="pkg:/missing.brs" /></component>`
	require.NoError(t, p.AddFile(program.InputFile{AbsPath: "/proj/widget.xml", PkgPath: "widget.xml", Source: src}))

	diags := p.ValidateAll()
	found := false
	for _, ds := range diags {
		for _, d := range ds {
			if d.Code == diagnostic.CodeReferencedFileDoesNotExist {
				found = true
			}
		}
	}
	assert.True(t, found)
}

func TestResolveDescriptorParentAttachesScope(t *testing.T) {
	p := program.New("/proj", parser.Baseline)
	require.NoError(t, p.AddFile(program.InputFile{
		AbsPath: "/proj/base.xml", PkgPath: "base.xml",
		Source: `<component name="Base"></component>`,
	}))
	require.NoError(t, p.AddFile(program.InputFile{
		AbsPath: "/proj/widget.xml", PkgPath: "widget.xml",
		Source: `<component name="Widget" extends="Base"></component>`,
	}))

	scopes := p.GetScopesForFile("/proj/widget.xml")
	require.Len(t, scopes, 2)
}

func TestRemoveFileDropsDescriptorScope(t *testing.T) {
	p := program.New("/proj", parser.Baseline)
	require.NoError(t, p.AddFile(program.InputFile{
		AbsPath: "/proj/widget.xml", PkgPath: "widget.xml",
		Source: `<component name="Widget"></component>`,
	}))
	require.Len(t, p.Files(), 1)

	p.RemoveFile("/proj/widget.xml")
	assert.Empty(t, p.Files())
}

func TestLoadAllParsesConcurrently(t *testing.T) {
	p := program.New("/proj", parser.Baseline)
	inputs := []program.InputFile{
		{AbsPath: "/proj/a.brs", PkgPath: "a.brs", Source: "sub a()\nend sub"},
		{AbsPath: "/proj/b.brs", PkgPath: "b.brs", Source: "sub b()\nend sub"},
	}
	err := p.LoadAll(context.Background(), inputs)
	require.NoError(t, err)
	assert.Len(t, p.Files(), 2)
}

func TestOnFileChangedReparsesInPlace(t *testing.T) {
	p := program.New("/proj", parser.Baseline)
	require.NoError(t, p.AddFile(program.InputFile{AbsPath: "/proj/a.brs", PkgPath: "a.brs", Source: "sub a()\nend sub"}))
	require.NoError(t, p.OnFileChanged("/proj/a.brs", "a.brs", "sub a()\nend sub\nsub b()\nend sub"))
	assert.Len(t, p.Files(), 1)
}

func TestFileAddedSignalFires(t *testing.T) {
	p := program.New("/proj", parser.Baseline)
	var got []string
	p.OnFileAdded(func(e program.FileEvent) { got = append(got, e.AbsPath) })
	require.NoError(t, p.AddFile(program.InputFile{AbsPath: "/proj/a.brs", PkgPath: "a.brs", Source: "sub a()\nend sub"}))
	assert.Equal(t, []string{"/proj/a.brs"}, got)
}

func TestDependencyGraphTracksScriptImports(t *testing.T) {
	p := program.New("/proj", parser.Baseline)
	require.NoError(t, p.AddFile(program.InputFile{AbsPath: "/proj/util.brs", PkgPath: "util.brs", Source: "sub helper()\nend sub"}))
	src := `<component name="Widget"><script uri="pkg:/util.brs" /></component>`
	require.NoError(t, p.AddFile(program.InputFile{AbsPath: "/proj/widget.xml", PkgPath: "widget.xml", Source: src}))

	assert.True(t, p.Deps.DependsOn("widget.xml", "util.brs"))
}
