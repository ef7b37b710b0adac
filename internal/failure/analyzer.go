// Package failure classifies payment-failure notifications (pacs.002
// status reports and free-text incident descriptions) by reason code and
// assembles the diagnostic material an operator needs to investigate.
package failure

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/payshield/payment-triage/internal/message"
)

// Overview holds the headline facts extracted from the failure document.
type Overview struct {
	DetectedKind       message.Kind `json:"detected_message_type"`
	Status             string       `json:"status,omitempty"`
	ReasonCode         string       `json:"reason_code,omitempty"`
	ReasonMeaning      string       `json:"reason_meaning,omitempty"`
	AdditionalInfo     string       `json:"addtl_info,omitempty"`
	UETR               string       `json:"uetr,omitempty"`
	OriginalMsgID      string       `json:"original_msg_id,omitempty"`
	OriginalInstrID    string       `json:"original_instr_id,omitempty"`
	OriginalEndToEndID string       `json:"original_end_to_end_id,omitempty"`
	AmountHint         string       `json:"amount_hint,omitempty"`
	Currency           string       `json:"currency,omitempty"`
	ChargesHint        string       `json:"charges_hint,omitempty"`
	DebtorHint         string       `json:"debtor_hint,omitempty"`
	CreditorHint       string       `json:"creditor_hint,omitempty"`
}

// Draft is a ready-to-paste investigation message for the counterparty.
type Draft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Report is the full failure-classification result.
type Report struct {
	Overview           Overview `json:"overview"`
	Summary            []string `json:"summary"`
	Checks             []string `json:"what_to_check"`
	Questions          []string `json:"what_to_ask_other_bank"`
	RecommendedActions []string `json:"recommended_next_actions"`
	Draft              Draft    `json:"investigation_draft"`
}

// Analyzer classifies failures against the reason-code knowledge table.
type Analyzer struct {
	codes  CodeTable
	logger *zap.Logger
}

// NewAnalyzer creates an analyzer over an immutable code table.
func NewAnalyzer(codes CodeTable, logger *zap.Logger) *Analyzer {
	return &Analyzer{codes: codes, logger: logger}
}

// reasonCodePattern is the last-resort scan for a two-letter/two-digit
// token in free text. Best effort only: it can match incidental substrings
// (a reference number, for example) that are not status codes. That
// weakness is accepted; do not tighten or loosen it.
var reasonCodePattern = regexp.MustCompile(`\b[A-Z]{2}\d{2}\b`)

// uetrPattern locates an RFC 4122 identifier anywhere in the input, used as
// a fallback correlation key when no structured reference is present.
var uetrPattern = regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-5][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}\b`)

// alwaysChecks apply to every failure regardless of reason code.
var alwaysChecks = []string{
	"Confirm corridor & scheme rules (CBPR+, local clearing, correspondent chain).",
	"Confirm whether this is REJECT vs RETURN vs REPAIR scenario (procedure differs).",
	"Check sanctions/AML screening hits (names, addresses, countries) if forbidden/blocked hints appear.",
	"If MT-to-MX conversion involved, verify mapping for account/agent fields and address blocks.",
	"If SR2026 readiness: confirm address structuring/hybrid compliance where applicable.",
}

// Analyze classifies a failure notification. It is total: unrecognized or
// missing reason codes degrade to a generic summary, never an error.
func (a *Analyzer) Analyze(raw string) *Report {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)

	var statusFields message.FieldMap
	isStatusReport := strings.Contains(raw, "<") &&
		(strings.Contains(lower, "pacs.002") || strings.Contains(lower, "fitofipmtstsrpt"))
	if isStatusReport {
		statusFields = message.ParseStatusReport(raw).Fields
	}

	parsed := message.Extract(raw)
	fields := parsed.Fields

	var code, status, addtl, orgMsgID, orgInstr, orgE2E, orgUETR string
	if isStatusReport {
		code = firstNonEmpty(statusFields.Get("RsnCd"), statusFields.Get("RsnPrtry"))
		status = firstNonEmpty(statusFields.Get("TxSts"), statusFields.Get("GrpSts"))
		addtl = statusFields.Get("AddtlInf")
		orgMsgID = statusFields.Get("OrgnlMsgId")
		orgInstr = statusFields.Get("OrgnlInstrId")
		orgE2E = statusFields.Get("OrgnlEndToEndId")
		orgUETR = firstNonEmpty(statusFields.Get("OrgnlUETR"), statusFields.Get("UETR"))
	}

	if code == "" {
		code = guessReasonCode(raw)
	}

	entry, known := a.codes[code]
	if code == "" {
		known = false
	}

	uetr := firstNonEmpty(fields.Get("121"), fields.Get("UETR"), orgUETR, scanUETR(raw))

	kind := parsed.Kind
	if isStatusReport {
		kind = message.XMLStatusReport
	}

	overview := Overview{
		DetectedKind:       kind,
		Status:             status,
		ReasonCode:         code,
		AdditionalInfo:     addtl,
		UETR:               uetr,
		OriginalMsgID:      orgMsgID,
		OriginalInstrID:    orgInstr,
		OriginalEndToEndID: orgE2E,
		AmountHint:         firstNonEmpty(fields.Get("IntrBkSttlmAmt"), fields.Get("32A")),
		Currency:           fields.Get("Ccy"),
		ChargesHint:        firstNonEmpty(fields.Get("71A"), fields.Get("ChrgBr")),
		DebtorHint:         firstNonEmpty(fields.Get("50K"), fields.Get("DbtrNm")),
		CreditorHint:       firstNonEmpty(fields.Get("59"), fields.Get("CdtrNm")),
	}

	var summary []string
	checks := append([]string{}, alwaysChecks...)
	var asks []string

	if known {
		overview.ReasonMeaning = entry.Meaning
		summary = append(summary, fmt.Sprintf("Reason code %s: %s", code, entry.Meaning))
		checks = append(checks, entry.Checks...)
		asks = append(asks, entry.Ask...)
	} else {
		summary = append(summary, "Reason code not confidently identified. Prefer the pacs.002 status reason (Rsn/Cd or Rsn/Prtry) if available.")
		checks = append(checks,
			"Capture exact pacs.002 status + reason and additional info",
			"Verify MsgId/InstrId/EndToEndId/UETR consistency across hops",
		)
		asks = append(asks,
			"Ask receiving bank for exact rejection reason code and additional info",
			"Ask for their internal reference / investigation ticket number",
		)
	}

	if uetr != "" {
		summary = append(summary, "Use UETR to trace across gpi/internal logs: "+uetr)
	}
	if orgMsgID != "" {
		summary = append(summary, "Correlate using OrgnlMsgId: "+orgMsgID)
	}

	report := &Report{
		Overview:           overview,
		Summary:            summary,
		Checks:             Dedupe(checks),
		Questions:          Dedupe(asks),
		RecommendedActions: recommendedActions(code),
	}
	report.Draft = buildDraft(overview)

	a.logger.Debug("failure analysis complete",
		zap.String("kind", string(kind)),
		zap.String("reason_code", code),
		zap.Bool("code_known", known))

	return report
}

// recommendedActions returns the fixed operator checklist, with
// code-conditional cautions inserted before the resend/repair step.
func recommendedActions(code string) []string {
	base := []string{
		"1) Confirm exact status + reason from pacs.002 (GrpSts/TxSts + Rsn/Cd + AddtlInf).",
		"2) Correlate across logs using UETR + OrgnlMsgId/InstrId/EndToEndId (and internal reference).",
		"3) Decide path: REPAIR/RESEND vs RETURN vs CANCEL (camt.056) based on scheme rules and bank procedures.",
		"4) If mapping issue suspected: reproduce in lower env with same payload, fix mapping, then follow controlled prod repair.",
		"5) Record a defect ticket: symptoms, exact code, impacted fields, proposed fix, evidence (logs + message copies).",
	}

	switch code {
	case "AC04", "BE04":
		base = insertAt(base, 3, "3a) Account issue: confirm beneficiary account details with receiving bank; do NOT resend blindly without correction.")
	case "AG01":
		base = insertAt(base, 3, "3a) Forbidden/compliance: involve AML/Compliance; collect required info and follow repair workflow.")
	}
	return base
}

func insertAt(items []string, i int, v string) []string {
	out := make([]string, 0, len(items)+1)
	out = append(out, items[:i]...)
	out = append(out, v)
	return append(out, items[i:]...)
}

// buildDraft composes the investigation message purely from overview
// fields. Only references actually present are listed.
func buildDraft(o Overview) Draft {
	subjectParts := []string{"Investigation: Payment status"}
	if o.Status != "" {
		subjectParts = append(subjectParts, o.Status)
	}
	if o.ReasonCode != "" {
		subjectParts = append(subjectParts, o.ReasonCode)
	}
	if o.ReasonMeaning != "" {
		subjectParts = append(subjectParts, "- "+o.ReasonMeaning)
	}

	lines := []string{
		"Hello Team,",
		"",
		"We received a payment status indicating a failure. Please help confirm the exact rejection details and required corrective action.",
		"",
		"Key references:",
	}
	if o.UETR != "" {
		lines = append(lines, "- UETR: "+o.UETR)
	}
	if o.OriginalMsgID != "" {
		lines = append(lines, "- Original MsgId: "+o.OriginalMsgID)
	}
	if o.OriginalInstrID != "" {
		lines = append(lines, "- Original InstrId: "+o.OriginalInstrID)
	}
	if o.OriginalEndToEndID != "" {
		lines = append(lines, "- Original EndToEndId: "+o.OriginalEndToEndID)
	}
	if o.ReasonCode != "" {
		line := "- Reason code: " + o.ReasonCode
		if o.ReasonMeaning != "" {
			line += " (" + o.ReasonMeaning + ")"
		}
		lines = append(lines, line)
	}
	if o.AdditionalInfo != "" {
		lines = append(lines, "- Additional info: "+o.AdditionalInfo)
	}

	lines = append(lines,
		"",
		"Please confirm:",
		"1) The exact rejection reason and any mandatory data required for repair/re-submission",
		"2) Whether this should be repaired, returned, or cancelled (per your scheme/corridor rules)",
		"3) Any internal reference/ticket number for tracking on your side",
		"",
		"Thanks,",
		"Operations Team",
	)

	return Draft{
		Subject: strings.Join(subjectParts, " "),
		Body:    strings.Join(lines, "\n"),
	}
}

// Dedupe removes duplicates by trimmed value, preserving first-seen order.
// Running it on its own output is a no-op.
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		v := strings.TrimSpace(item)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func guessReasonCode(text string) string {
	return reasonCodePattern.FindString(text)
}

// ScanTrackingID returns the first RFC 4122 identifier found anywhere in
// the text, or "" when none is present.
func ScanTrackingID(text string) string {
	return scanUETR(text)
}

func scanUETR(text string) string {
	return uetrPattern.FindString(text)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
