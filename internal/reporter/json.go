package reporter

import (
	"encoding/json"
)

// JSONReporter outputs results as JSON
type JSONReporter struct {
	cfg *Config
}

// JSONOutput is the JSON output structure
type JSONOutput struct {
	Files   []JSONFile  `json:"files"`
	Summary JSONSummary `json:"summary"`
}

// JSONFile is the outcome for one file
type JSONFile struct {
	Filename     string     `json:"filename"`
	OK           bool       `json:"ok"`
	Cached       bool       `json:"cached,omitempty"`
	Images       int        `json:"images"`
	Instructions int        `json:"instructions"`
	Error        *JSONError `json:"error,omitempty"`
}

// JSONError describes a failure. Line and column are 1-based and omitted
// when the failure is not a syntax error.
type JSONError struct {
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// JSONSummary contains summary counts
type JSONSummary struct {
	Total  int `json:"total"`
	Failed int `json:"failed"`
}

// Report outputs the parse results as JSON
func (r *JSONReporter) Report(results []Result) error {
	output := JSONOutput{
		Files: make([]JSONFile, 0, len(results)),
		Summary: JSONSummary{
			Total:  len(results),
			Failed: countFailed(results),
		},
	}

	for _, res := range results {
		jf := JSONFile{
			Filename: res.Filename,
			OK:       !res.Failed(),
			Cached:   res.Cached,
		}
		switch pe := res.ParseError(); {
		case pe != nil:
			jf.Error = &JSONError{Message: pe.Message, Line: pe.Line, Column: pe.Column}
		case res.Err != nil:
			jf.Error = &JSONError{Message: res.Err.Error()}
		case res.File != nil:
			jf.Images = len(res.File.Body.Images)
			jf.Instructions = len(res.File.Instructions())
		}
		output.Files = append(output.Files, jf)
	}

	encoder := json.NewEncoder(r.cfg.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
