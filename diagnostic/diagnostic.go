// Package diagnostic implements the wire Diagnostic schema (spec.md
// §3, §6, §7): stable numeric codes, one per diagnostic kind, plus the
// severity-override, ignore-code and inline-comment suppression rules
// applied at read time (spec.md §7).
package diagnostic

import "github.com/brightscope/bsc/token"

// Severity mirrors the LSP DiagnosticSeverity scale used by spec.md §6.
type Severity int

const (
	SeverityHint Severity = iota + 1
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warn"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Code is a stable numeric diagnostic code. Each diagnostic kind below
// has exactly one code, per spec.md §6.
type Code int

const (
	// Parser
	CodeLexicalOrParseError Code = 1000 + iota
	CodeUnexpectedToken
)

const (
	// Scope / cross-scope validator
	CodeCallToUnknownFunction Code = 2000 + iota
	CodeMismatchArgumentCount
	CodeDuplicateFunctionImplementation
	CodeLocalFunctionShadowsStdlib
	CodeLocalFunctionShadowsScope
	CodeLocalVarShadowedByScopedFunction
	CodeScopeFunctionShadowedByBuiltIn
	CodeOverridesAncestorFunction
)

const (
	// Descriptor scope
	CodeScriptSrcCannotBeEmpty Code = 3000 + iota
	CodeReferencedFileDoesNotExist
	CodeScriptImportCaseMismatch
	CodeDuplicateAncestorScriptImport
)

const (
	// Class validator
	CodeUnknownParentClass Code = 4000 + iota
	CodeCyclicInheritance
	CodeMemberSignatureMismatch
	CodeIllegalFinalOverride
	CodeFieldShadowsParentField
	CodeDuplicateMemberName
)

// Source identifies the engine that produced a Diagnostic, mirroring
// the wire schema's "source" field.
const Source = "bsc"

// RelatedInformation attaches a secondary location to a Diagnostic,
// e.g. "overrides ancestor function defined here".
type RelatedInformation struct {
	Location token.Location
	Message  string
}

// Diagnostic is a structured message with a stable code, severity,
// range, owning file and optional related locations (spec.md §3/§6).
type Diagnostic struct {
	Code     Code
	Source   string
	Severity Severity
	Range    token.Range
	Message  string
	Related  []RelatedInformation
	File     string // absolute path of the owning file
}

// New builds a Diagnostic with Source pre-filled.
func New(code Code, severity Severity, r token.Range, file, message string) Diagnostic {
	return Diagnostic{
		Code:     code,
		Source:   Source,
		Severity: severity,
		Range:    r,
		Message:  message,
		File:     file,
	}
}

// WithRelated returns a copy of d with related information appended.
func (d Diagnostic) WithRelated(loc token.Location, message string) Diagnostic {
	d.Related = append(append([]RelatedInformation{}, d.Related...), RelatedInformation{Location: loc, Message: message})
	return d
}
