// Package builtins is the static catalog of platform callables that
// seeds the PlatformScope (spec.md §2's "root scope seeded from a
// static catalog of built-in callables"). The set below covers the
// device-dialect standard library surface the test scenarios and
// shadowing diagnostics (spec.md §4.4.4, §4.4.5) exercise; it is not
// exhaustive of a real device's SDK.
package builtins

import (
	"strings"

	"github.com/brightscope/bsc/ast"
)

// entry is one built-in's bare signature: name plus parameter arity
// bounds, enough for argument-count and shadowing checks. Built-ins
// have no source range; callers use token.Zero for their Location.
type entry struct {
	name       string
	minParams  int
	maxParams  int
	returnType string
}

var catalog = []entry{
	{"print", 0, 16, ""},
	{"len", 1, 1, "integer"},
	{"left", 2, 2, "string"},
	{"right", 2, 2, "string"},
	{"mid", 2, 3, "string"},
	{"instr", 2, 3, "integer"},
	{"ucase", 1, 1, "string"},
	{"lcase", 1, 1, "string"},
	{"str", 1, 1, "string"},
	{"val", 1, 1, "float"},
	{"strtoi", 1, 1, "integer"},
	{"type", 1, 2, "string"},
	{"getglobalaa", 0, 0, "object"},
	{"createobject", 1, 4, "object"},
	{"getinterface", 2, 2, "interface"},
	{"findmemberfunction", 2, 2, "function"},
	{"box", 1, 1, "object"},
	{"run", 1, 16, "dynamic"},
	{"eval", 1, 1, "dynamic"},
	{"sleep", 1, 1, ""},
	{"wait", 2, 2, "object"},
	{"getlastruncompileerror", 0, 0, "object"},
	{"getlastrunruntimeerror", 0, 0, "object"},
	{"rebooted", 0, 0, "boolean"},
	{"copyfile", 2, 2, "boolean"},
	{"formatjson", 1, 2, "string"},
	{"parsejson", 1, 2, "dynamic"},
	{"tab", 1, 1, ""},
	{"pos", 0, 0, "integer"},
	{"abs", 1, 1, "float"},
	{"cdbl", 1, 1, "double"},
	{"cint", 1, 1, "integer"},
	{"csng", 1, 1, "float"},
	{"fix", 1, 1, "integer"},
	{"int", 1, 1, "integer"},
	{"rnd", 0, 1, "dynamic"},
	{"sgn", 1, 1, "integer"},
	{"sqr", 1, 1, "float"},
}

// Callables returns one synthetic FunctionStatement per catalog entry,
// suitable for seeding PlatformScope's own-callables set.
func Callables() []*ast.FunctionStatement {
	out := make([]*ast.FunctionStatement, 0, len(catalog))
	for _, e := range catalog {
		out = append(out, toFunctionStatement(e))
	}
	return out
}

func toFunctionStatement(e entry) *ast.FunctionStatement {
	fn := &ast.FunctionStatement{Name: e.name, ReturnType: e.returnType}
	for i := 0; i < e.maxParams; i++ {
		p := ast.Param{Name: syntheticParamName(i)}
		if i >= e.minParams {
			p.IsOptional = true
		}
		fn.Params = append(fn.Params, p)
	}
	return fn
}

func syntheticParamName(i int) string {
	names := [...]string{"a", "b", "c", "d", "e", "f", "g", "h"}
	if i < len(names) {
		return names[i]
	}
	return "arg"
}

// IsBuiltin reports whether name (case-insensitively) names a platform
// callable.
func IsBuiltin(name string) bool {
	for _, e := range catalog {
		if strings.EqualFold(e.name, name) {
			return true
		}
	}
	return false
}
