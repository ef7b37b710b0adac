package failure

import (
	"fmt"
	"strings"
)

// FormatReport renders the operator-facing failure analysis text.
func FormatReport(r *Report) string {
	o := r.Overview
	var b strings.Builder

	b.WriteString("Failure Analysis\n")
	fmt.Fprintf(&b, "- Type: %s\n", o.DetectedKind)
	if o.Status != "" {
		fmt.Fprintf(&b, "- Status: %s\n", o.Status)
	}
	if o.ReasonCode != "" {
		line := "- Reason: " + o.ReasonCode
		if o.ReasonMeaning != "" {
			line += " (" + o.ReasonMeaning + ")"
		}
		b.WriteString(line + "\n")
	}
	if o.AdditionalInfo != "" {
		fmt.Fprintf(&b, "- Additional info: %s\n", o.AdditionalInfo)
	}
	if o.UETR != "" {
		fmt.Fprintf(&b, "- UETR: %s\n", o.UETR)
	}
	if o.OriginalMsgID != "" {
		fmt.Fprintf(&b, "- OrgnlMsgId: %s\n", o.OriginalMsgID)
	}
	if o.OriginalInstrID != "" {
		fmt.Fprintf(&b, "- OrgnlInstrId: %s\n", o.OriginalInstrID)
	}
	if o.OriginalEndToEndID != "" {
		fmt.Fprintf(&b, "- OrgnlEndToEndId: %s\n", o.OriginalEndToEndID)
	}

	b.WriteString("\nSummary\n")
	for _, s := range r.Summary {
		fmt.Fprintf(&b, "- %s\n", s)
	}

	b.WriteString("\nWhat to check\n")
	for i, c := range r.Checks {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c)
	}

	b.WriteString("\nWhat to ask the other bank\n")
	for i, q := range r.Questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}

	b.WriteString("\nRecommended next actions\n")
	for _, a := range r.RecommendedActions {
		fmt.Fprintf(&b, "- %s\n", a)
	}

	b.WriteString("\nInvestigation message draft\n")
	fmt.Fprintf(&b, "Subject: %s\n", r.Draft.Subject)
	b.WriteString(r.Draft.Body)

	return b.String()
}
