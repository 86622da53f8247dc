package blueprint

import (
	"time"

	"creativecube.dev/internal/analysis"
)

// File types accepted for upload.
const (
	FileDeed          = "deed"
	FileSurvey        = "survey"
	FileArchitectural = "architectural"
	FileMEP           = "mep"
	FileStructural    = "structural"
)

// Blueprint lifecycle statuses.
const (
	StatusUploaded   = "uploaded"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
)

// ValidFileType reports whether t is one of the accepted upload types.
func ValidFileType(t string) bool {
	switch t {
	case FileDeed, FileSurvey, FileArchitectural, FileMEP, FileStructural:
		return true
	}
	return false
}

// Blueprint is an uploaded drawing or document attached to a project.
type Blueprint struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	FileKey   string    `json:"file_key"`
	FileURL   string    `json:"file_url"`
	FileType  string    `json:"file_type"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Result holds the compliance analysis outcome for a blueprint. One result
// per blueprint; re-processing overwrites it.
type Result struct {
	ID              string               `json:"id"`
	BlueprintID     string               `json:"blueprint_id"`
	ComplianceScore float64              `json:"compliance_score"`
	Violations      []analysis.Violation `json:"violations"`
	ExtractedData   map[string]any       `json:"extracted_data"`
	RawResponse     map[string]any       `json:"raw_response,omitempty"`
	ReportURL       *string              `json:"report_url,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}
