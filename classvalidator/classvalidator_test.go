package classvalidator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightscope/bsc/ast"
	"github.com/brightscope/bsc/classvalidator"
	"github.com/brightscope/bsc/diagnostic"
)

func codesOf(diags []diagnostic.Diagnostic) []diagnostic.Code {
	var out []diagnostic.Code
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func TestValidateUnknownParentClass(t *testing.T) {
	cls := &ast.ClassStatement{Name: "Dog", ParentName: []string{"Animal"}}
	lookup := map[string]classvalidator.Entry{
		"dog": {Class: cls, File: "/proj/dog.brs"},
	}
	diags := classvalidator.Validate(lookup)
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.CodeUnknownParentClass, diags[0].Code)
}

func TestValidateCyclicInheritanceDetected(t *testing.T) {
	a := &ast.ClassStatement{Name: "A", ParentName: []string{"B"}}
	b := &ast.ClassStatement{Name: "B", ParentName: []string{"A"}}
	lookup := map[string]classvalidator.Entry{
		"a": {Class: a, File: "/proj/a.brs"},
		"b": {Class: b, File: "/proj/b.brs"},
	}
	diags := classvalidator.Validate(lookup)
	assert.Contains(t, codesOf(diags), diagnostic.CodeCyclicInheritance)
}

func TestValidateNoCycleForDiamondlessChain(t *testing.T) {
	grandparent := &ast.ClassStatement{Name: "Animal"}
	parent := &ast.ClassStatement{Name: "Dog", ParentName: []string{"Animal"}}
	child := &ast.ClassStatement{Name: "Puppy", ParentName: []string{"Dog"}}
	lookup := map[string]classvalidator.Entry{
		"animal": {Class: grandparent, File: "/proj/animal.brs"},
		"dog":    {Class: parent, File: "/proj/dog.brs"},
		"puppy":  {Class: child, File: "/proj/puppy.brs"},
	}
	diags := classvalidator.Validate(lookup)
	assert.Empty(t, diags)
}

func TestValidateDuplicateMemberName(t *testing.T) {
	cls := &ast.ClassStatement{
		Name: "Dog",
		Fields: []*ast.FieldMember{
			{Name: "name"},
			{Name: "Name"},
		},
	}
	lookup := map[string]classvalidator.Entry{"dog": {Class: cls, File: "/proj/dog.brs"}}
	diags := classvalidator.Validate(lookup)
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.CodeDuplicateMemberName, diags[0].Code)
}

func TestValidateFieldShadowsParentField(t *testing.T) {
	parent := &ast.ClassStatement{Name: "Animal", Fields: []*ast.FieldMember{{Name: "name"}}}
	child := &ast.ClassStatement{
		Name:       "Dog",
		ParentName: []string{"Animal"},
		Fields:     []*ast.FieldMember{{Name: "name"}},
	}
	lookup := map[string]classvalidator.Entry{
		"animal": {Class: parent, File: "/proj/animal.brs"},
		"dog":    {Class: child, File: "/proj/dog.brs"},
	}
	diags := classvalidator.Validate(lookup)
	assert.Contains(t, codesOf(diags), diagnostic.CodeFieldShadowsParentField)
}

func TestValidateIllegalFinalOverride(t *testing.T) {
	parent := &ast.ClassStatement{
		Name:    "Animal",
		Methods: []*ast.FunctionStatement{{Name: "speak", IsFinal: true}},
	}
	child := &ast.ClassStatement{
		Name:       "Dog",
		ParentName: []string{"Animal"},
		Methods:    []*ast.FunctionStatement{{Name: "speak"}},
	}
	lookup := map[string]classvalidator.Entry{
		"animal": {Class: parent, File: "/proj/animal.brs"},
		"dog":    {Class: child, File: "/proj/dog.brs"},
	}
	diags := classvalidator.Validate(lookup)
	assert.Contains(t, codesOf(diags), diagnostic.CodeIllegalFinalOverride)
}

func TestValidateMemberSignatureMismatch(t *testing.T) {
	parent := &ast.ClassStatement{
		Name:    "Animal",
		Methods: []*ast.FunctionStatement{{Name: "speak", Params: []ast.Param{{Name: "volume"}}}},
	}
	child := &ast.ClassStatement{
		Name:       "Dog",
		ParentName: []string{"Animal"},
		Methods:    []*ast.FunctionStatement{{Name: "speak"}},
	}
	lookup := map[string]classvalidator.Entry{
		"animal": {Class: parent, File: "/proj/animal.brs"},
		"dog":    {Class: child, File: "/proj/dog.brs"},
	}
	diags := classvalidator.Validate(lookup)
	assert.Contains(t, codesOf(diags), diagnostic.CodeMemberSignatureMismatch)
}

func TestValidateCompatibleOverrideIsClean(t *testing.T) {
	parent := &ast.ClassStatement{
		Name:    "Animal",
		Methods: []*ast.FunctionStatement{{Name: "speak", Access: ast.AccessPublic}},
	}
	child := &ast.ClassStatement{
		Name:       "Dog",
		ParentName: []string{"Animal"},
		Methods:    []*ast.FunctionStatement{{Name: "speak", Access: ast.AccessPublic}},
	}
	lookup := map[string]classvalidator.Entry{
		"animal": {Class: parent, File: "/proj/animal.brs"},
		"dog":    {Class: child, File: "/proj/dog.brs"},
	}
	diags := classvalidator.Validate(lookup)
	assert.Empty(t, diags)
}

func TestValidateNamespaceRelativeParentResolution(t *testing.T) {
	parent := &ast.ClassStatement{Name: "Base", NamespacePath: []string{"Widgets"}}
	child := &ast.ClassStatement{
		Name:          "Button",
		ParentName:    []string{"Base"},
		NamespacePath: []string{"Widgets"},
	}
	lookup := map[string]classvalidator.Entry{
		"widgets.base":   {Class: parent, File: "/proj/base.brs"},
		"widgets.button": {Class: child, File: "/proj/button.brs"},
	}
	diags := classvalidator.Validate(lookup)
	assert.Empty(t, diags)
}
