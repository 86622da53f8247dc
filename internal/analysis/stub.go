package analysis

import "context"

var _ Analyzer = (*Stub)(nil)

// Stub produces a canned report without calling any external service. Output
// is deterministic for a given input so tests and demos are stable.
type Stub struct{}

func NewStub() *Stub { return &Stub{} }

func (s *Stub) Analyze(ctx context.Context, in Input) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report := &Report{
		ComplianceScore: 87.5,
		Violations: []Violation{
			{Code: "SETBACK-001", Severity: "minor", Message: "front setback below municipal minimum"},
		},
		ExtractedData: map[string]any{
			"file_key":  in.FileKey,
			"file_type": in.FileType,
			"pages":     1,
		},
		RawResponse: map[string]any{
			"model":        "stub",
			"blueprint_id": in.BlueprintID,
		},
	}
	// Structural drawings get a clean pass in the stub; keeps demo flows able
	// to show both outcomes.
	if in.FileType == "structural" {
		report.ComplianceScore = 100
		report.Violations = nil
	}
	return report, nil
}
