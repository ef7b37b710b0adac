package rules

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/payshield/payment-triage/internal/message"
)

// Report is the outcome of one validation call. ErrorCount and WarnCount
// are always recomputed from Findings, never cached.
type Report struct {
	DetectedKind message.Kind          `json:"detected_kind"`
	RulesetKey   string                `json:"ruleset_key"`
	Findings     []Finding             `json:"findings"`
	ErrorCount   int                   `json:"error_count"`
	WarnCount    int                   `json:"warn_count"`
	Extracted    message.ParsedMessage `json:"extracted"`
}

// Engine evaluates extracted messages against the registered rulesets.
type Engine struct {
	registry Registry
	logger   *zap.Logger
}

// NewEngine creates a rule engine over an immutable registry.
func NewEngine(registry Registry, logger *zap.Logger) *Engine {
	return &Engine{registry: registry, logger: logger}
}

// NormalizeKind maps a detected message kind to its ruleset key. The legacy
// text family shares one key; each XML family has its own.
func NormalizeKind(kind message.Kind) string {
	switch strings.ToLower(strings.TrimSpace(string(kind))) {
	case "mt103":
		return "mt103"
	case "pacs.008", "pacs008":
		return "pacs008"
	case "pacs.002", "pacs002":
		return "pacs002"
	default:
		return strings.ToLower(strings.TrimSpace(string(kind)))
	}
}

// Validate extracts raw input and evaluates it against the ruleset for the
// detected kind. An unregistered kind is non-fatal: the report carries a
// single NO_RULESET warning so the pipeline still returns a usable result.
func (e *Engine) Validate(raw string) *Report {
	parsed := message.Extract(raw)
	key := NormalizeKind(parsed.Kind)

	report := &Report{
		DetectedKind: parsed.Kind,
		RulesetKey:   key,
		Extracted:    parsed,
	}

	rs, ok := e.registry[key]
	if !ok {
		report.Findings = []Finding{{
			Severity: SeverityWarn,
			Code:     "NO_RULESET",
			Message:  fmt.Sprintf("No ruleset found for message type: %s", parsed.Kind),
		}}
		report.ErrorCount, report.WarnCount = tally(report.Findings)
		return report
	}

	findings := Evaluate(parsed.Fields, rs)
	for _, note := range parsed.ParserNotes {
		findings = append(findings, Finding{
			Severity: SeverityWarn,
			Code:     "PARSER_CHECK",
			Message:  note,
		})
	}

	report.Findings = findings
	report.ErrorCount, report.WarnCount = tally(findings)

	e.logger.Debug("validated message",
		zap.String("kind", string(parsed.Kind)),
		zap.Int("errors", report.ErrorCount),
		zap.Int("warnings", report.WarnCount))

	return report
}

// Evaluate runs the mandatory-field checks followed by the custom rules in
// declaration order. It is a pure function: identical inputs always produce
// an identical finding sequence.
func Evaluate(fields message.FieldMap, rs *RuleSet) []Finding {
	findings := make([]Finding, 0, len(rs.MandatoryFields)+len(rs.Rules))

	for _, f := range rs.MandatoryFields {
		if !fields.Has(f) {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Code:     "MISSING_MANDATORY",
				Field:    f,
				Message:  "Missing mandatory field: " + f,
			})
		}
	}

	return append(findings, EvaluateRules(fields, rs.Rules)...)
}

// EvaluateRules runs only the custom rule list, skipping the mandatory-field
// pass. Overlay evaluation uses this so mandatory checks are not repeated.
func EvaluateRules(fields message.FieldMap, specs []RuleSpec) []Finding {
	var findings []Finding
	for _, spec := range specs {
		if finding, ok := evalRule(fields, spec); ok {
			findings = append(findings, finding)
		}
	}
	return findings
}

func evalRule(fields message.FieldMap, spec RuleSpec) (Finding, bool) {
	switch r := spec.(type) {
	case MandatoryCheck:
		if !fields.Has(r.Field) {
			return Finding{
				Severity: SeverityError,
				Code:     r.ID,
				Field:    r.Field,
				Message:  fmt.Sprintf("%s (field missing/empty)", r.Desc),
			}, true
		}

	case PatternMatch:
		val := fields.Get(r.Field)
		if val == "" {
			return Finding{
				Severity: SeverityError,
				Code:     r.ID,
				Field:    r.Field,
				Message:  fmt.Sprintf("%s (field missing/empty)", r.Desc),
			}, true
		}
		if !r.Pattern.MatchString(val) {
			return Finding{
				Severity: SeverityError,
				Code:     r.ID,
				Field:    r.Field,
				Message:  fmt.Sprintf("%s. Found: %s", r.Desc, val),
			}, true
		}

	case OptionalPatternMatch:
		val := fields.Get(r.Field)
		if val == "" {
			return Finding{}, false
		}
		if !r.Pattern.MatchString(val) {
			return Finding{
				Severity: SeverityWarn,
				Code:     r.ID,
				Field:    r.Field,
				Message:  fmt.Sprintf("%s. Found: %s", r.Desc, val),
			}, true
		}

	case EnumMembership:
		val := fields.Get(r.Field)
		if val == "" {
			return Finding{
				Severity: SeverityError,
				Code:     r.ID,
				Field:    r.Field,
				Message:  fmt.Sprintf("%s (field missing/empty)", r.Desc),
			}, true
		}
		if !contains(r.Allowed, val) {
			return Finding{
				Severity: SeverityError,
				Code:     r.ID,
				Field:    r.Field,
				Message:  fmt.Sprintf("%s. Found: %s. Allowed: %v", r.Desc, val, r.Allowed),
			}, true
		}

	case Guidance:
		msg := r.Desc
		if r.Message != "" {
			if msg != "" {
				msg += ": "
			}
			msg += r.Message
		}
		return Finding{
			Severity: r.Severity,
			Code:     r.ID,
			Field:    r.Field,
			Message:  msg,
		}, true

	case Unrecognized:
		return Finding{
			Severity: SeverityWarn,
			Code:     "UNKNOWN_RULE_TYPE",
			Field:    r.Field,
			Message:  fmt.Sprintf("Unknown rule type: %s for rule %s (%s)", r.Type, r.ID, r.Reason),
		}, true
	}

	return Finding{}, false
}

// Tally counts findings by severity.
func Tally(findings []Finding) (errors, warns int) {
	return tally(findings)
}

func tally(findings []Finding) (errors, warns int) {
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			errors++
		case SeverityWarn:
			warns++
		}
	}
	return errors, warns
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
