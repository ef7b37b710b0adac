package rules

import (
	"fmt"
	"strings"
)

// FormatReport renders the operator-facing defect listing for a report.
func FormatReport(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Detected: %s  |  Ruleset: %s\n", r.DetectedKind, r.RulesetKey)
	fmt.Fprintf(&b, "Errors: %d | Warnings: %d\n\n", r.ErrorCount, r.WarnCount)

	if len(r.Findings) == 0 {
		b.WriteString("No issues found.")
		return b.String()
	}

	b.WriteString("Defects:\n")
	b.WriteString(FormatFindings(r.Findings))
	return strings.TrimRight(b.String(), "\n")
}

// FormatFindings renders a numbered finding listing.
func FormatFindings(findings []Finding) string {
	var b strings.Builder
	writeFindings(&b, findings)
	return b.String()
}

func writeFindings(b *strings.Builder, findings []Finding) {
	for i, f := range findings {
		fmt.Fprintf(b, "%d. [%s] %s", i+1, f.Severity, f.Code)
		if f.Field != "" {
			fmt.Fprintf(b, " (%s)", f.Field)
		}
		fmt.Fprintf(b, ": %s\n", f.Message)
	}
}
