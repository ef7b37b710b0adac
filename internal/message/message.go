package message

import "strings"

// Kind identifies the message family of a parsed payment document.
type Kind string

const (
	// LegacyText is the line-oriented, colon-tagged MT103 instruction format.
	LegacyText Kind = "MT103"
	// XMLCreditTransfer is the ISO 20022 pacs.008 customer credit transfer.
	XMLCreditTransfer Kind = "pacs.008"
	// XMLStatusReport is the ISO 20022 pacs.002 payment status report.
	XMLStatusReport Kind = "pacs.002"
	// Unknown covers anything the detector could not place.
	Unknown Kind = "unknown"
)

// FieldMap holds extracted field values keyed by tag code or canonical
// element name. A missing key and a blank value are both treated as
// "missing" by rule evaluation.
type FieldMap map[string]string

// Get returns the trimmed value for key, or "" when the key is absent.
func (f FieldMap) Get(key string) string {
	return strings.TrimSpace(f[key])
}

// Has reports whether key is present with a non-blank value.
func (f FieldMap) Has(key string) bool {
	return f.Get(key) != ""
}

// ParsedMessage is the canonical extraction result. It is created once per
// request and never mutated afterwards.
type ParsedMessage struct {
	Kind        Kind     `json:"msg_type"`
	Fields      FieldMap `json:"fields"`
	ParserNotes []string `json:"parser_notes,omitempty"`
}
