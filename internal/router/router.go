// Package router classifies free-form input into one of a fixed set of
// kinds and dispatches it to the appropriate combination of rule
// validation, overlay assessment, and failure classification, assembling a
// uniform multi-section result for the presentation layer. It never fails:
// the worst case for any input is a single informational section.
package router

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/payshield/payment-triage/internal/failure"
	"github.com/payshield/payment-triage/internal/overlay"
	"github.com/payshield/payment-triage/internal/rules"
)

// Input kinds, in classification order (first match wins).
const (
	KindCommand           = "command"
	KindStatusReportXML   = "status_report_xml"
	KindCreditTransferXML = "credit_transfer_xml"
	KindOtherXML          = "other_xml"
	KindLegacyText        = "legacy_text"
	KindIncidentText      = "incident_text"
	KindFreeText          = "free_text"
)

// Section is one titled block of the routed result. Presentation layers
// must render sections in the given order without reordering or filtering.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Result is the routed outcome for one input.
type Result struct {
	Kind     string    `json:"kind"`
	Sections []Section `json:"sections"`
}

// SchemaValidator is the structural schema-validation collaborator. The
// error strings it returns are opaque human-readable diagnostics.
type SchemaValidator interface {
	Validate(ctx context.Context, xmlText string) (valid bool, errors []string, err error)
}

// SuggestionContext is the minimal fact record handed to the
// remediation-text collaborator.
type SuggestionContext struct {
	ReasonCode    string `json:"reason_code"`
	ReasonMeaning string `json:"reason_meaning"`
	TrackingID    string `json:"tracking_id"`
}

// Suggester is the remediation-text collaborator. The returned string is
// treated as opaque prose.
type Suggester interface {
	Suggest(ctx context.Context, sctx SuggestionContext) (string, error)
}

// FailureRecorder counts collaborator call failures. A nil recorder
// disables recording.
type FailureRecorder interface {
	RecordCollaboratorFailure(collaborator string)
}

// maxSchemaErrors bounds how many schema diagnostics a section displays.
const maxSchemaErrors = 50

// noSuggestion replaces a blank collaborator response.
const noSuggestion = "No suggestion generated."

var commandPrefixes = []string{"validate:", "sr2026:", "xsd_validate:", "failure_analysis:"}

var incidentKeywords = []string{"rjct", "reject", "rejected", "return", "failed", "ac04", "ac01", "ag01", "am04"}

// Router dispatches classified input to the validation pipeline. The
// schema and suggester collaborators are optional capabilities: a nil
// handle skips the corresponding section instead of branching on sentinels.
type Router struct {
	engine    *rules.Engine
	assessor  *overlay.Assessor
	analyzer  *failure.Analyzer
	schema    SchemaValidator
	suggester Suggester
	recorder  FailureRecorder
	logger    *zap.Logger
}

// New creates a router. schema, suggester, and recorder may be nil.
func New(
	engine *rules.Engine,
	assessor *overlay.Assessor,
	analyzer *failure.Analyzer,
	schema SchemaValidator,
	suggester Suggester,
	recorder FailureRecorder,
	logger *zap.Logger,
) *Router {
	return &Router{
		engine:    engine,
		assessor:  assessor,
		analyzer:  analyzer,
		schema:    schema,
		suggester: suggester,
		recorder:  recorder,
		logger:    logger,
	}
}

// DetectKind classifies free-form input. Checks run in declaration order;
// the first match wins.
func DetectKind(text string) string {
	t := strings.TrimSpace(text)
	lower := strings.ToLower(t)

	for _, prefix := range commandPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return KindCommand
		}
	}

	if strings.HasPrefix(t, "<") && strings.Contains(t, ">") {
		if strings.Contains(lower, "pacs.002") || strings.Contains(lower, "fitofipmtstsrpt") {
			return KindStatusReportXML
		}
		if strings.Contains(lower, "pacs.008") || strings.Contains(lower, "fitoficstmrcdttrf") {
			return KindCreditTransferXML
		}
		return KindOtherXML
	}

	if strings.Contains(t, ":20:") && (strings.Contains(t, ":32A:") || strings.Contains(t, ":23B:")) {
		return KindLegacyText
	}

	for _, kw := range incidentKeywords {
		if strings.Contains(lower, kw) {
			return KindIncidentText
		}
	}

	return KindFreeText
}

// Route classifies raw input and runs the matching pipeline subset. A
// collaborator failure replaces only its own section; everything else
// proceeds.
func (r *Router) Route(ctx context.Context, raw string) Result {
	kind := DetectKind(raw)
	result := Result{Kind: kind}

	switch kind {
	case KindCommand:
		result.Sections = append(result.Sections, Section{
			Title: "INFO",
			Body:  "Detected explicit command. Autopilot skipped.",
		})

	case KindStatusReportXML, KindIncidentText:
		rep := r.analyzer.Analyze(raw)
		result.Sections = append(result.Sections, Section{
			Title: "FAILURE_ANALYSIS",
			Body:  failure.FormatReport(rep),
		})
		r.appendSuggestion(ctx, &result, SuggestionContext{
			ReasonCode:    rep.Overview.ReasonCode,
			ReasonMeaning: rep.Overview.ReasonMeaning,
			TrackingID:    rep.Overview.UETR,
		})

	case KindCreditTransferXML:
		r.appendSchemaSection(ctx, &result, raw)

		assessed := r.assessor.Assess(raw)
		result.Sections = append(result.Sections, Section{
			Title: "SR2026",
			Body:  overlay.FormatAssessment(assessed),
		})

		base := r.engine.Validate(raw)
		result.Sections = append(result.Sections, Section{
			Title: "RULES_VALIDATE",
			Body:  rules.FormatReport(base),
		})

		r.appendSuggestion(ctx, &result, SuggestionContext{
			ReasonCode:    "VALIDATION_FINDINGS",
			ReasonMeaning: "XSD/SR2026/Rules findings detected",
			TrackingID:    failure.ScanTrackingID(raw),
		})

	case KindLegacyText:
		base := r.engine.Validate(raw)
		result.Sections = append(result.Sections, Section{
			Title: "RULES_VALIDATE",
			Body:  rules.FormatReport(base),
		})
		result.Sections = append(result.Sections, Section{
			Title: "SR2026",
			Body:  "SR2026 mainly applies to MX/CBPR+ usage. For MT, focus on MX readiness & mapping tests.",
		})

	case KindOtherXML:
		result.Sections = append(result.Sections, Section{
			Title: "INFO",
			Body:  "XML document does not match a known payment message family. No validation performed.",
		})

	default: // free text
		result.Sections = append(result.Sections, Section{
			Title: "INFO",
			Body:  "Looks like a normal question. Route to the knowledge-base assistant.",
		})
	}

	r.logger.Debug("routed input",
		zap.String("kind", kind),
		zap.Int("sections", len(result.Sections)))

	return result
}

func (r *Router) recordFailure(collaborator string) {
	if r.recorder != nil {
		r.recorder.RecordCollaboratorFailure(collaborator)
	}
}

func (r *Router) appendSchemaSection(ctx context.Context, result *Result, raw string) {
	if r.schema == nil {
		return
	}

	valid, diags, err := r.schema.Validate(ctx, raw)
	if err != nil {
		r.logger.Warn("schema validation collaborator failed", zap.Error(err))
		r.recordFailure("schema")
		result.Sections = append(result.Sections, Section{
			Title: "XSD",
			Body:  "Schema validation unavailable: " + err.Error(),
		})
		return
	}

	if valid {
		result.Sections = append(result.Sections, Section{
			Title: "XSD",
			Body:  "XSD VALID (SR2026 pacs.008)",
		})
		return
	}

	if len(diags) > maxSchemaErrors {
		diags = diags[:maxSchemaErrors]
	}
	result.Sections = append(result.Sections, Section{
		Title: "XSD",
		Body:  "XSD INVALID (SR2026 pacs.008)\n" + strings.Join(diags, "\n"),
	})
}

func (r *Router) appendSuggestion(ctx context.Context, result *Result, sctx SuggestionContext) {
	if r.suggester == nil {
		return
	}

	suggestion, err := r.suggester.Suggest(ctx, sctx)
	if err != nil {
		r.logger.Warn("remediation collaborator failed", zap.Error(err))
		r.recordFailure("remediation")
		result.Sections = append(result.Sections, Section{
			Title: "AI_SUGGESTIONS",
			Body:  "Remediation suggestions unavailable: " + err.Error(),
		})
		return
	}

	if strings.TrimSpace(suggestion) == "" {
		suggestion = noSuggestion
	}
	result.Sections = append(result.Sections, Section{
		Title: "AI_SUGGESTIONS",
		Body:  suggestion,
	})
}
