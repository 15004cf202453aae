package main

import (
	"fmt"

	"github.com/brightscope/bsc/diagnostic"
)

// printDiagnostic renders one diagnostic as a single line in the
// familiar "file:line:col: severity: message [code]" shape.
func printDiagnostic(d diagnostic.Diagnostic) {
	fmt.Printf("%s:%d:%d: %s: %s [%d]\n",
		d.File, d.Range.Start.Line+1, d.Range.Start.Character+1, d.Severity, d.Message, d.Code)
	for _, rel := range d.Related {
		fmt.Printf("  related: %s:%d:%d: %s\n",
			rel.Location.File, rel.Location.Range.Start.Line+1, rel.Location.Range.Start.Character+1, rel.Message)
	}
}
