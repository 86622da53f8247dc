package blueprint

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// renderReport produces the plain-text compliance report body.
func renderReport(b Blueprint, r Result, generatedAt time.Time) io.Reader {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Compliance Report\n")
	fmt.Fprintf(&sb, "=================\n\n")
	fmt.Fprintf(&sb, "Blueprint:    %s\n", b.ID)
	fmt.Fprintf(&sb, "Project:      %s\n", b.ProjectID)
	fmt.Fprintf(&sb, "File type:    %s\n", b.FileType)
	fmt.Fprintf(&sb, "Generated:    %s\n", generatedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Score:        %.1f / 100\n\n", r.ComplianceScore)

	if len(r.Violations) == 0 {
		fmt.Fprintf(&sb, "No violations detected.\n")
	} else {
		fmt.Fprintf(&sb, "Violations (%d):\n", len(r.Violations))
		for _, v := range r.Violations {
			fmt.Fprintf(&sb, "  [%s] %s: %s\n", v.Severity, v.Code, v.Message)
		}
	}
	return strings.NewReader(sb.String())
}
