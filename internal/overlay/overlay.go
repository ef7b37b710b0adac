// Package overlay layers a second, independently versioned ruleset on top
// of the base validation result. Overlays express a stricter future
// standard (SR2026) without touching the base rules.
package overlay

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/payshield/payment-triage/internal/rules"
)

// Assessor composes the base rule engine with an overlay registry.
type Assessor struct {
	engine   *rules.Engine
	overlays rules.Registry
	logger   *zap.Logger
}

// NewAssessor creates an overlay assessor. The overlay registry is keyed by
// the same normalized kinds as the base registry.
func NewAssessor(engine *rules.Engine, overlays rules.Registry, logger *zap.Logger) *Assessor {
	return &Assessor{engine: engine, overlays: overlays, logger: logger}
}

// Assess runs base validation, then applies the overlay rule list for the
// same normalized kind against the same field map. Overlay findings are
// appended after the base findings; mandatory-field checks are not
// repeated. A kind with no overlay entry contributes zero findings:
// overlays are optional refinements, never required.
func (a *Assessor) Assess(raw string) *rules.Report {
	report := a.engine.Validate(raw)

	ov, ok := a.overlays[report.RulesetKey]
	if !ok {
		return report
	}

	extra := rules.EvaluateRules(report.Extracted.Fields, ov.Rules)
	if len(extra) > 0 {
		report.Findings = append(report.Findings, extra...)
		report.ErrorCount, report.WarnCount = rules.Tally(report.Findings)
	}

	a.logger.Debug("overlay assessment complete",
		zap.String("ruleset", report.RulesetKey),
		zap.Int("overlay_findings", len(extra)))

	return report
}

// FormatAssessment renders an overlay assessment, including the standing
// SR2026 readiness reminders shown to operators.
func FormatAssessment(r *rules.Report) string {
	var b strings.Builder

	b.WriteString("SR2026 Assessment\n")
	fmt.Fprintf(&b, "Type: %s  |  Ruleset: %s\n", r.DetectedKind, r.RulesetKey)
	fmt.Fprintf(&b, "Errors: %d | Warnings: %d\n\n", r.ErrorCount, r.WarnCount)

	if len(r.Findings) == 0 {
		b.WriteString("No issues found.\n")
	} else {
		b.WriteString("Findings:\n")
		b.WriteString(rules.FormatFindings(r.Findings))
	}

	b.WriteString("\nSR2026 Reminders:\n")
	b.WriteString("- Standards Release 2026 goes live on 14 Nov 2026 (plan testing well before).\n")
	b.WriteString("- SR2026 trend: tighter validation and reduced free-form data (e.g., addresses move to structured/hybrid).")

	return b.String()
}
