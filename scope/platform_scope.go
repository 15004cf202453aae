package scope

import (
	"github.com/brightscope/bsc/builtins"
	"github.com/brightscope/bsc/sourcefile"
)

// NewPlatformScope builds the root scope every other Scope eventually
// chains up to: no member files of its own, seeded instead with the
// built-in catalog (spec.md §2 "root scope seeded from a static
// catalog of built-in callables"). It has no parent.
func NewPlatformScope() *Scope {
	s := New("platform", func(sourcefile.File) bool { return false })
	s.isPlatform = true
	s.builtinCallables = builtins.Callables()
	return s
}
