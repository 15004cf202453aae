package parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightscope/bsc/ast"
	"github.com/brightscope/bsc/lexer"
	"github.com/brightscope/bsc/parser"
	"github.com/brightscope/bsc/token"
)

func TestEmptyArrayOneLine(t *testing.T) {
	res := parser.Parse(lexer.Tokenize("_ = []"), parser.Baseline, "f.brs")

	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Statements, 1)

	stmt := res.Statements[0]
	require.Equal(t, ast.StmtAssignment, stmt.Kind)
	require.Equal(t, ast.ExprArrayLiteral, stmt.Assignment.Value.Kind)
	assert.Empty(t, stmt.Assignment.Value.ArrayLit.Items)
}

func TestArrayAcrossBlankLines(t *testing.T) {
	res := parser.Parse(lexer.Tokenize("_ = [ \n \n \n ]"), parser.Baseline, "f.brs")

	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Statements, 1)

	lit := res.Statements[0].Assignment.Value
	assert.Equal(t, ast.ExprArrayLiteral, lit.Kind)
	assert.Empty(t, lit.ArrayLit.Items)
}

func TestUnknownFunctionCallIsCollected(t *testing.T) {
	src := "sub main()\n  doThing()\nend sub"
	res := parser.Parse(lexer.Tokenize(src), parser.Baseline, "f.brs")

	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Functions, 1)
	require.Len(t, res.FunctionCalls, 1)
	assert.Equal(t, "doThing", res.FunctionCalls[0].CalleeName)
}

func TestArgCountMismatchSiteParsesCleanly(t *testing.T) {
	src := "function f(a, b, c = 1)\nend function\nx = f(1)"
	res := parser.Parse(lexer.Tokenize(src), parser.Baseline, "f.brs")

	require.Empty(t, res.Diagnostics)
	fn := res.Functions[0]
	assert.Equal(t, 2, fn.MinParams())
	assert.Equal(t, 3, fn.MaxParams())
	assert.Equal(t, "2-3", fn.ParamCountBounds())
}

func TestSupersetConstructsRejectedInBaseline(t *testing.T) {
	res := parser.Parse(lexer.Tokenize("namespace A\nend namespace"), parser.Baseline, "f.brs")
	assert.NotEmpty(t, res.Diagnostics)
}

func TestNamespaceDottedName(t *testing.T) {
	src := "namespace A.B.C\nend namespace"
	res := parser.Parse(lexer.Tokenize(src), parser.Superset, "f.brs")

	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Namespaces, 1)
	assert.Equal(t, "A.B.C", res.Namespaces[0].DottedName())
}

func TestClassWithParent(t *testing.T) {
	src := "class Dog extends Animal\n  public sub bark()\n  end sub\nend class"
	res := parser.Parse(lexer.Tokenize(src), parser.Superset, "f.brs")

	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Classes, 1)
	cls := res.Classes[0]
	assert.Equal(t, "Animal", cls.ParentDottedName())
	require.Len(t, cls.Methods, 1)
	assert.Equal(t, "bark", cls.Methods[0].Name)
}

func TestIfElseIf(t *testing.T) {
	src := "if a then\n  print 1\nelseif b then\n  print 2\nelse\n  print 3\nend if"
	res := parser.Parse(lexer.Tokenize(src), parser.Baseline, "f.brs")
	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Statements, 1)
	assert.Equal(t, ast.StmtIf, res.Statements[0].Kind)
}

func TestBinaryPrecedence(t *testing.T) {
	src := "x = 1 + 2 * 3"
	res := parser.Parse(lexer.Tokenize(src), parser.Baseline, "f.brs")
	require.Empty(t, res.Diagnostics)

	val := res.Statements[0].Assignment.Value
	require.Equal(t, ast.ExprBinary, val.Kind)
	assert.Equal(t, "+", val.Binary.Op)
	assert.Equal(t, ast.ExprBinary, val.Binary.Right.Kind)
	assert.Equal(t, "*", val.Binary.Right.Binary.Op)
}

// TestArrayLiteralRangeSpansOpenerToCloser exercises spec.md §8's
// round-trip invariant: a node's range runs from its first token to
// its last, including any blank lines in between. go-cmp gives a
// structural diff of the two token.Range values on failure instead of
// a single "not equal" assertion.
func TestArrayLiteralRangeSpansOpenerToCloser(t *testing.T) {
	src := "_ = [\n\n\n\n\n]"
	res := parser.Parse(lexer.Tokenize(src), parser.Baseline, "f.brs")
	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Statements, 1)

	got := res.Statements[0].Assignment.Value.Range
	want := token.Range{
		Start: token.Position{Line: 0, Character: 4},
		End:   token.Position{Line: 5, Character: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("array literal range mismatch (-want +got):\n%s", diff)
	}
}

func TestRecoversAfterUnexpectedToken(t *testing.T) {
	src := ") garbage\nx = 1"
	res := parser.Parse(lexer.Tokenize(src), parser.Baseline, "f.brs")
	assert.NotEmpty(t, res.Diagnostics)
	require.Len(t, res.Statements, 1)
	assert.Equal(t, ast.StmtAssignment, res.Statements[0].Kind)
}
