package diagnostic

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

// SeverityOverrides remaps diagnostic codes to a different severity,
// per spec.md §6's diagnosticSeverityOverrides option.
type SeverityOverrides map[Code]Severity

// Filter applies the CLI collaborator's configuration-driven severity
// overrides and ignore list to a diagnostic list (spec.md §6). Comment
// based suppression is a separate, always-on concern handled by
// FilterSuppressed at the scope layer, not by this type.
type Filter struct {
	Overrides   SeverityOverrides
	IgnoreCodes map[Code]struct{}
}

// NewFilter builds a Filter from raw config values.
func NewFilter(overrides map[Code]Severity, ignore []Code) Filter {
	ig := make(map[Code]struct{}, len(ignore))
	for _, c := range ignore {
		ig[c] = struct{}{}
	}
	return Filter{Overrides: overrides, IgnoreCodes: ig}
}

var disableLineRe = regexp.MustCompile(`'bs:disable-line(?:\s+(.*))?`)
var disableNextLineRe = regexp.MustCompile(`'bs:disable-next-line(?:\s+(.*))?`)

// suppressedLines maps a 0-based line number to the set of codes
// suppressed on it (nil set means "suppress all codes").
type suppressedLines map[uint32]map[Code]struct{}

// parseCodeList parses a whitespace/comma separated list of numeric
// diagnostic codes, e.g. "2001 2002" or "2001,2002".
func parseCodeList(s string) map[Code]struct{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	out := map[Code]struct{}{}
	for _, field := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	}) {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			continue
		}
		out[Code(n)] = struct{}{}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ScanSuppressions scans file source text for `'bs:disable-line [codes]`
// and `'bs:disable-next-line [codes]` comments and returns the line ->
// suppressed-codes map used by Apply.
func ScanSuppressions(source string) suppressedLines {
	result := suppressedLines{}
	scanner := bufio.NewScanner(strings.NewReader(source))
	var line uint32
	for scanner.Scan() {
		text := scanner.Text()
		if m := disableLineRe.FindStringSubmatch(text); m != nil {
			mergeSuppression(result, line, parseCodeList(m[1]))
		}
		if m := disableNextLineRe.FindStringSubmatch(text); m != nil {
			mergeSuppression(result, line+1, parseCodeList(m[1]))
		}
		line++
	}
	return result
}

func mergeSuppression(result suppressedLines, line uint32, codes map[Code]struct{}) {
	if codes == nil {
		result[line] = nil // nil sentinel: suppress everything on this line
		return
	}
	existing, ok := result[line]
	if ok && existing == nil {
		return // already suppressing everything
	}
	if existing == nil {
		existing = map[Code]struct{}{}
	}
	for c := range codes {
		existing[c] = struct{}{}
	}
	result[line] = existing
}

func (s suppressedLines) suppresses(line uint32, code Code) bool {
	codes, ok := s[line]
	if !ok {
		return false
	}
	if codes == nil {
		return true
	}
	_, found := codes[code]
	return found
}

// Apply drops every diagnostic whose code is in f.IgnoreCodes and
// remaps the severity of every remaining one present in f.Overrides.
func (f Filter) Apply(diags []Diagnostic) []Diagnostic {
	out := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		if _, ignored := f.IgnoreCodes[d.Code]; ignored {
			continue
		}
		if sev, ok := f.Overrides[d.Code]; ok {
			d.Severity = sev
		}
		out = append(out, d)
	}
	return out
}

func rangeSuppressed(suppressed suppressedLines, d Diagnostic) bool {
	for line := d.Range.Start.Line; line <= d.Range.End.Line; line++ {
		if suppressed.suppresses(line, d.Code) {
			return true
		}
	}
	return false
}

// FilterSuppressed drops every diagnostic whose range intersects a
// `'bs:disable-line`/`'bs:disable-next-line` comment in its own file's
// source, per spec.md §7 ("filtering happens at getDiagnostics read
// time"). sources maps a diagnostic's File to that file's text; a
// diagnostic whose file has no entry (e.g. a descriptor file, which
// carries no dialect comment syntax) passes through unchanged.
func FilterSuppressed(diags []Diagnostic, sources map[string]string) []Diagnostic {
	cache := map[string]suppressedLines{}
	out := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		src, ok := sources[d.File]
		if !ok {
			out = append(out, d)
			continue
		}
		suppressed, ok := cache[d.File]
		if !ok {
			suppressed = ScanSuppressions(src)
			cache[d.File] = suppressed
		}
		if rangeSuppressed(suppressed, d) {
			continue
		}
		out = append(out, d)
	}
	return out
}
