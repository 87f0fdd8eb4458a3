package source

import (
	"encoding/json"
	"io"
)

// jsonDiagnostic mirrors Diagnostic in a stable wire shape, independent
// of internal field ordering/naming changes.
type jsonDiagnostic struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Severity   string `json:"severity"`
	Stage      string `json:"stage"`
	File       string `json:"file"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Line       int    `json:"line"`
	Column     int    `json:"column"`
	Message    string `json:"message"`
	Hint       string `json:"hint,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// WriteJSONLines emits one JSON object per line, one per diagnostic —
// the machine-readable counterpart to Renderer, for tools that key off
// d.Code programmatically rather than parsing terminal text.
func WriteJSONLines(w io.Writer, diags []Diagnostic, fset *FileSet) error {
	enc := json.NewEncoder(w)
	for _, d := range diags {
		sev := "error"
		if d.Severity == SeverityWarning {
			sev = "warning"
		}
		line, col := 0, 0
		if f := fset.Get(d.File); f != nil {
			pos := f.Position(d.Range.Start)
			line, col = pos.Line, pos.Column
		}
		jd := jsonDiagnostic{
			ID: d.ID, Code: string(d.Code), Severity: sev, Stage: string(d.Stage),
			File: d.File, Start: d.Range.Start, End: d.Range.End,
			Line: line, Column: col, Message: d.Message,
			Hint: d.Hint, Suggestion: d.Suggestion,
		}
		if err := enc.Encode(jd); err != nil {
			return err
		}
	}
	return nil
}
