package rules

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Severity classifies a finding.
type Severity string

const (
	SeverityError Severity = "ERROR"
	SeverityWarn  Severity = "WARN"
)

// Finding is one validation result. Findings are immutable once produced
// and collected in evaluation order.
type Finding struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
}

// RuleSpec is one declarative rule decoded from configuration. The variant
// set is closed: evaluation type-switches over exactly these six shapes.
type RuleSpec interface {
	ruleSpec()
}

// MandatoryCheck re-states the mandatory-field test for a single field
// inside the custom rule list.
type MandatoryCheck struct {
	ID    string
	Field string
	Desc  string
}

// PatternMatch requires the field to be present and match Pattern from the
// start of the value.
type PatternMatch struct {
	ID      string
	Field   string
	Desc    string
	Pattern *regexp.Regexp
}

// OptionalPatternMatch is advisory: absent fields are skipped silently, a
// populated field failing Pattern yields a WARN.
type OptionalPatternMatch struct {
	ID      string
	Field   string
	Desc    string
	Pattern *regexp.Regexp
}

// EnumMembership requires the field value to be one of Allowed.
type EnumMembership struct {
	ID      string
	Field   string
	Desc    string
	Allowed []string
}

// Guidance unconditionally emits a finding at the configured severity. Used
// by overlays to inject reminders.
type Guidance struct {
	ID       string
	Field    string
	Desc     string
	Message  string
	Severity Severity
}

// Unrecognized carries a rule entry that could not be decoded. It evaluates
// to a WARN so rule-authoring mistakes stay visible without breaking the
// rest of the ruleset.
type Unrecognized struct {
	ID     string
	Field  string
	Type   string
	Reason string
}

func (MandatoryCheck) ruleSpec()       {}
func (PatternMatch) ruleSpec()         {}
func (OptionalPatternMatch) ruleSpec() {}
func (EnumMembership) ruleSpec()       {}
func (Guidance) ruleSpec()             {}
func (Unrecognized) ruleSpec()         {}

// RuleSet is the declarative rule collection for one normalized message
// kind. Rules keep their declaration order.
type RuleSet struct {
	MandatoryFields []string
	Rules           []RuleSpec
}

// Registry maps normalized message kinds to their rulesets. It is built
// once at startup and read-only afterwards, so concurrent reads need no
// synchronization.
type Registry map[string]*RuleSet

type rawRule struct {
	ID       string   `yaml:"id"`
	Type     string   `yaml:"type"`
	Field    string   `yaml:"field"`
	Desc     string   `yaml:"desc"`
	Pattern  string   `yaml:"pattern"`
	Allowed  []string `yaml:"allowed"`
	Severity string   `yaml:"severity"`
	Message  string   `yaml:"message"`
}

type rawRuleSet struct {
	MandatoryFields []string  `yaml:"mandatory_fields"`
	Rules           []rawRule `yaml:"rules"`
}

// LoadRegistry reads a base ruleset document (a mapping from normalized
// kind to ruleset). A missing or unreadable file is a configuration error
// and should be fatal at startup; malformed individual rules are decoded to
// Unrecognized and degrade to WARN findings at evaluation time.
func LoadRegistry(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ruleset file %s: %w", path, err)
	}

	var raw map[string]rawRuleSet
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing ruleset file %s: %w", path, err)
	}

	return buildRegistry(raw), nil
}

// LoadOverlayRegistry reads an overlay ruleset document. Overlay files nest
// the kind mapping under a top-level "overlays" key so base and overlay
// documents cannot be confused for one another.
func LoadOverlayRegistry(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overlay file %s: %w", path, err)
	}

	var raw struct {
		Overlays map[string]rawRuleSet `yaml:"overlays"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing overlay file %s: %w", path, err)
	}

	return buildRegistry(raw.Overlays), nil
}

func buildRegistry(raw map[string]rawRuleSet) Registry {
	reg := make(Registry, len(raw))
	for kind, rs := range raw {
		decoded := &RuleSet{MandatoryFields: rs.MandatoryFields}
		for _, r := range rs.Rules {
			decoded.Rules = append(decoded.Rules, decodeRule(r))
		}
		reg[kind] = decoded
	}
	return reg
}

// decodeRule turns one raw configuration entry into its variant. Decoding
// happens once at load; evaluation never sees raw maps.
func decodeRule(r rawRule) RuleSpec {
	id := r.ID
	if id == "" {
		id = "RULE"
	}

	switch r.Type {
	case "mandatory":
		return MandatoryCheck{ID: id, Field: r.Field, Desc: r.Desc}
	case "regex_field":
		pat, err := compileAnchored(r.Pattern)
		if err != nil {
			return Unrecognized{ID: id, Field: r.Field, Type: r.Type, Reason: err.Error()}
		}
		return PatternMatch{ID: id, Field: r.Field, Desc: r.Desc, Pattern: pat}
	case "regex_optional":
		pat, err := compileAnchored(r.Pattern)
		if err != nil {
			return Unrecognized{ID: id, Field: r.Field, Type: r.Type, Reason: err.Error()}
		}
		return OptionalPatternMatch{ID: id, Field: r.Field, Desc: r.Desc, Pattern: pat}
	case "in_set":
		return EnumMembership{ID: id, Field: r.Field, Desc: r.Desc, Allowed: r.Allowed}
	case "guidance":
		sev := Severity(r.Severity)
		if sev != SeverityError {
			sev = SeverityWarn
		}
		return Guidance{ID: id, Field: r.Field, Desc: r.Desc, Message: r.Message, Severity: sev}
	default:
		return Unrecognized{ID: id, Field: r.Field, Type: r.Type, Reason: "unknown rule type"}
	}
}

// compileAnchored anchors the configured pattern at the start of the value,
// matching the match-from-start contract rule authors write against.
func compileAnchored(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + pattern + `)`)
}
