package analysis

import (
	"context"
	"testing"
)

func TestStubAnalyze(t *testing.T) {
	stub := NewStub()

	report, err := stub.Analyze(context.Background(), Input{
		BlueprintID: "bp-1",
		FileKey:     "blueprints/abc_plan.pdf",
		FileType:    "architectural",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.ComplianceScore <= 0 || report.ComplianceScore > 100 {
		t.Fatalf("score out of range: %v", report.ComplianceScore)
	}
	if len(report.Violations) == 0 {
		t.Fatal("expected stub violations for architectural drawings")
	}
	if report.ExtractedData["file_key"] != "blueprints/abc_plan.pdf" {
		t.Fatalf("extracted data missing file key: %v", report.ExtractedData)
	}
}

func TestStubStructuralPasses(t *testing.T) {
	report, err := NewStub().Analyze(context.Background(), Input{FileType: "structural"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.ComplianceScore != 100 || len(report.Violations) != 0 {
		t.Fatalf("expected clean pass for structural, got %+v", report)
	}
}

func TestStubHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewStub().Analyze(ctx, Input{}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
