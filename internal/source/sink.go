package source

import "fmt"

// ErrTooManyDiagnostics is returned once a Sink's fatal threshold is
// exceeded; the caller should stop feeding the sink and abort the pass.
type ErrTooManyDiagnostics struct{ Threshold int }

func (e *ErrTooManyDiagnostics) Error() string {
	return fmt.Sprintf("aborting: more than %d diagnostics reported", e.Threshold)
}

// Sink collects diagnostics for one compilation in the order they are
// reported. Passes report in source order; Sink does not itself sort, it trusts callers to walk the
// AST/CST in order.
type Sink struct {
	Catalog *Catalog
	Strict bool // promotes Severity warnings to hard failures
	Threshold int // 0 means DefaultThreshold

	diags []Diagnostic
}

// DefaultThreshold is the default fatal-aggregation threshold from
// ("configurable, default... stop at 100").
const DefaultThreshold = 100

// Report records d, filling in Hint/Suggestion from the catalog when the
// diagnostic didn't already set them explicitly. It returns
// ErrTooManyDiagnostics once the threshold is crossed; the caller decides
// whether to stop immediately or finish the current token/node first.
func (s *Sink) Report(d Diagnostic) error {
	if s.Catalog != nil {
		if entry, ok := s.Catalog.Lookup(d.Code); ok {
			if d.Hint == "" {
				d.Hint = entry.Hint
			}
			if d.Suggestion == "" {
				d.Suggestion = entry.Suggestion
			}
		}
	}
	s.diags = append(s.diags, d)
	threshold := s.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	if s.FatalCount() > threshold {
		return &ErrTooManyDiagnostics{Threshold: threshold}
	}
	return nil
}

// Diagnostics returns every diagnostic reported so far, in report order.
func (s *Sink) Diagnostics() []Diagnostic { return s.diags }

// FatalCount counts diagnostics that count toward the abort threshold:
// all errors, plus warnings when Strict is set.
func (s *Sink) FatalCount() int {
	n := 0
	for _, d := range s.diags {
		if d.Severity == SeverityError || s.Strict {
			n++
		}
	}
	return n
}

// HasErrors reports whether any diagnostic (under Strict semantics) is a
// hard failure — used to decide whether a subsequent pass may run.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity == SeverityError || (s.Strict && d.Severity == SeverityWarning) {
			return true
		}
	}
	return false
}
