package source

import "github.com/google/uuid"

// Stage identifies which compiler pass raised a diagnostic.
type Stage string

const (
	StageScanning Stage = "scanning"
	StageParsing Stage = "parsing"
	StageSemantic Stage = "semantic"
	StageMemory Stage = "memory"
	StageVisibility Stage = "visibility"
	StageLIR Stage = "lir"
	StageRuntime Stage = "runtime"
)

// Code is a catalog key, e.g. "E201". The leading letter/digit ranges
// follow taxonomy (see catalog.go for the default catalog).
type Code string

// Severity distinguishes hard failures from advisory diagnostics (e.g. a
// strict-mode-only warning such as linear-not-consumed).
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Range is a half-open byte range [Start, End) within a single file.
type Range struct {
	Start, End int
}

// CausedBy links a diagnostic to an earlier, still-open construct — e.g.
// an unterminated block comment points back at its opening "/*".
type CausedBy struct {
	Message string
	File string
	Range Range
}

// Diagnostic is the stable, structured error shape used across every
// stage of the pipeline.
type Diagnostic struct {
	ID string // stable UUID, for cross-tool correlation/dedup
	Code Code
	Severity Severity
	Stage Stage
	File string
	Range Range
	Message string
	Hint string
	Suggestion string
	CausedBy *CausedBy
}

// New stamps a diagnostic with a fresh correlation ID. Catalog hints and
// suggestions are filled in by Sink.Report via the default catalog.
func New(code Code, stage Stage, file string, rng Range, message string) Diagnostic {
	return Diagnostic{
		ID: uuid.NewString(),
		Code: code,
		Stage: stage,
		File: file,
		Range: rng,
		Message: message,
	}
}

// Warning marks a diagnostic as advisory; strict mode (see Sink.Strict)
// promotes these to errors.
func (d Diagnostic) Warning() Diagnostic {
	d.Severity = SeverityWarning
	return d
}
