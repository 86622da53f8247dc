// Package analysis defines the compliance-analysis collaborator. The real
// analysis runs in an external AI service; this package keeps it behind an
// interface with a deterministic stub for everything that is not the model.
package analysis

import "context"

// Input describes the file handed to the analyzer.
type Input struct {
	BlueprintID string
	FileKey     string
	FileType    string
}

// Violation is a single detected compliance issue.
type Violation struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Report is the outcome of a compliance analysis run.
type Report struct {
	ComplianceScore float64        `json:"compliance_score"`
	Violations      []Violation    `json:"violations"`
	ExtractedData   map[string]any `json:"extracted_data"`
	RawResponse     map[string]any `json:"raw_response"`
}

// Analyzer runs compliance analysis over an uploaded blueprint.
type Analyzer interface {
	Analyze(ctx context.Context, in Input) (*Report, error)
}
