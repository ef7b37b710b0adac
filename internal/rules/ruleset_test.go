package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadRegistry(t *testing.T) {
	path := writeTemp(t, "rules.yaml", `
mt103:
  mandatory_fields: ["20", "23B"]
  rules:
    - id: MT103_23B_CODE
      type: in_set
      field: "23B"
      desc: "Bank operation code must be supported"
      allowed: ["CRED", "SPAY"]
    - id: MT103_32A_FORMAT
      type: regex_field
      field: "32A"
      desc: "Value date, currency, amount"
      pattern: '\d{6}[A-Z]{3}[0-9,.]+$'
    - id: MT103_71A_CHARGES
      type: regex_optional
      field: "71A"
      desc: "Charge bearer"
      pattern: '(OUR|SHA|BEN)$'
    - id: MT103_50K_PRESENT
      type: mandatory
      field: "50K"
      desc: "Ordering customer"
pacs008:
  mandatory_fields: ["MsgId"]
`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, reg, 2)

	mt := reg["mt103"]
	require.NotNil(t, mt)
	assert.Equal(t, []string{"20", "23B"}, mt.MandatoryFields)
	require.Len(t, mt.Rules, 4)

	assert.IsType(t, EnumMembership{}, mt.Rules[0])
	assert.IsType(t, PatternMatch{}, mt.Rules[1])
	assert.IsType(t, OptionalPatternMatch{}, mt.Rules[2])
	assert.IsType(t, MandatoryCheck{}, mt.Rules[3])

	enum := mt.Rules[0].(EnumMembership)
	assert.Equal(t, "MT103_23B_CODE", enum.ID)
	assert.Equal(t, []string{"CRED", "SPAY"}, enum.Allowed)

	pat := mt.Rules[1].(PatternMatch)
	assert.True(t, pat.Pattern.MatchString("250101USD1000,00"))
	assert.False(t, pat.Pattern.MatchString("x250101USD1000,00"))
}

func TestLoadRegistryUnknownType(t *testing.T) {
	path := writeTemp(t, "rules.yaml", `
mt103:
  rules:
    - id: ODD
      type: fuzzy_match
      field: "20"
`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)

	require.Len(t, reg["mt103"].Rules, 1)
	u, ok := reg["mt103"].Rules[0].(Unrecognized)
	require.True(t, ok)
	assert.Equal(t, "ODD", u.ID)
	assert.Equal(t, "fuzzy_match", u.Type)
}

func TestLoadRegistryBadPattern(t *testing.T) {
	path := writeTemp(t, "rules.yaml", `
mt103:
  rules:
    - id: BROKEN
      type: regex_field
      field: "32A"
      pattern: '([unclosed'
`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err, "a bad pattern must not fail the whole load")

	u, ok := reg["mt103"].Rules[0].(Unrecognized)
	require.True(t, ok)
	assert.Equal(t, "regex_field", u.Type)
	assert.NotEmpty(t, u.Reason)
}

func TestLoadRegistryGuidanceSeverity(t *testing.T) {
	path := writeTemp(t, "rules.yaml", `
mt103:
  rules:
    - id: LOUD
      type: guidance
      desc: "must act"
      severity: ERROR
    - id: QUIET
      type: guidance
      desc: "should review"
    - id: ODD_SEV
      type: guidance
      desc: "typo severity"
      severity: CRITICAL
`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	rules := reg["mt103"].Rules
	require.Len(t, rules, 3)

	assert.Equal(t, SeverityError, rules[0].(Guidance).Severity)
	assert.Equal(t, SeverityWarn, rules[1].(Guidance).Severity)
	assert.Equal(t, SeverityWarn, rules[2].(Guidance).Severity)
}

func TestLoadRegistryDefaultsRuleID(t *testing.T) {
	path := writeTemp(t, "rules.yaml", `
mt103:
  rules:
    - type: guidance
      desc: "anonymous"
`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "RULE", reg["mt103"].Rules[0].(Guidance).ID)
}

func TestLoadRegistryMissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading ruleset file")
}

func TestLoadRegistryMalformedYAML(t *testing.T) {
	path := writeTemp(t, "rules.yaml", "mt103: [not: a: mapping\n")
	_, err := LoadRegistry(path)
	require.Error(t, err)
}

func TestLoadOverlayRegistry(t *testing.T) {
	path := writeTemp(t, "overlay.yaml", `
overlays:
  pacs008:
    rules:
      - id: SR2026_UETR_REQUIRED
        type: regex_field
        field: "UETR"
        desc: "UETR becomes mandatory"
        pattern: '[0-9a-f]{8}-'
      - id: SR2026_STRUCTURED_ADDRESS
        type: guidance
        desc: "Structured postal addresses"
        message: "verify address mapping"
`)

	reg, err := LoadOverlayRegistry(path)
	require.NoError(t, err)

	require.Contains(t, reg, "pacs008")
	require.Len(t, reg["pacs008"].Rules, 2)
	assert.IsType(t, PatternMatch{}, reg["pacs008"].Rules[0])
	assert.IsType(t, Guidance{}, reg["pacs008"].Rules[1])

	_, ok := reg["mt103"]
	assert.False(t, ok)
}

func TestShippedConfigsLoad(t *testing.T) {
	base, err := LoadRegistry(filepath.Join("..", "..", "configs", "rules.yaml"))
	require.NoError(t, err)
	assert.Contains(t, base, "mt103")
	assert.Contains(t, base, "pacs008")

	for kind, rs := range base {
		for _, spec := range rs.Rules {
			_, bad := spec.(Unrecognized)
			assert.Falsef(t, bad, "shipped ruleset %s contains an undecodable rule", kind)
		}
	}

	overlay, err := LoadOverlayRegistry(filepath.Join("..", "..", "configs", "sr2026.yaml"))
	require.NoError(t, err)
	assert.Contains(t, overlay, "pacs008")
	assert.Contains(t, overlay, "mt103")
}
