package message

import (
	"fmt"
	"regexp"
	"strings"
)

// legacyTags is the fixed allow-list of MT103 tags the extractor captures.
// Anything outside this list is ignored even when present.
var legacyTags = []string{"20", "23B", "32A", "50K", "59", "71A", "121"}

// legacyTagPatterns captures everything between :<TAG>: and the next tag
// boundary (a newline followed by a colon) or end of input. Values may span
// multiple lines.
var legacyTagPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(legacyTags))
	for _, tag := range legacyTags {
		m[tag] = regexp.MustCompile(`(?s):` + tag + `:(.*?)(?:\n:|\z)`)
	}
	return m
}()

// Extract parses raw input into a ParsedMessage. It is total: malformed
// input degrades to fewer populated fields plus a parser note, never an
// error. Detection is checked in order, first match wins.
func Extract(raw string) ParsedMessage {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)

	if strings.HasPrefix(trimmed, "<") &&
		(strings.Contains(lower, "pacs.008") || strings.Contains(lower, "fitoficstmrcdttrf")) {
		return parseCreditTransfer(trimmed)
	}

	if strings.Contains(trimmed, ":20:") && strings.Contains(trimmed, ":32A:") {
		return parseLegacyText(trimmed)
	}

	return ParsedMessage{
		Kind:        Unknown,
		Fields:      FieldMap{},
		ParserNotes: []string{"unrecognized message format"},
	}
}

func parseLegacyText(raw string) ParsedMessage {
	fields := FieldMap{}
	for _, tag := range legacyTags {
		m := legacyTagPatterns[tag].FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		if v := strings.TrimSpace(m[1]); v != "" {
			fields[tag] = v
		}
	}
	return ParsedMessage{Kind: LegacyText, Fields: fields}
}

func parseCreditTransfer(raw string) ParsedMessage {
	msg := ParsedMessage{Kind: XMLCreditTransfer, Fields: FieldMap{}}

	root, err := parseTree(raw)
	if err != nil {
		msg.ParserNotes = append(msg.ParserNotes, fmt.Sprintf("XML parse failed: %v", err))
		return msg
	}

	put := func(key string, path ...string) {
		if v := root.findText(path...); v != "" {
			msg.Fields[key] = v
		}
	}

	put("MsgId", "GrpHdr", "MsgId")
	put("CreDtTm", "GrpHdr", "CreDtTm")
	put("InstrId", "PmtId", "InstrId")
	put("EndToEndId", "PmtId", "EndToEndId")
	put("IntrBkSttlmAmt", "IntrBkSttlmAmt")
	put("DbtrNm", "Dbtr", "Nm")
	put("CdtrNm", "Cdtr", "Nm")
	put("ChrgBr", "ChrgBr")
	put("UETR", "UETR")

	// The settlement currency rides on an attribute:
	// <IntrBkSttlmAmt Ccy="USD">100.50</IntrBkSttlmAmt>
	if amt := root.findFirst("IntrBkSttlmAmt"); amt != nil {
		if ccy := strings.TrimSpace(amt.attrs["Ccy"]); ccy != "" {
			msg.Fields["Ccy"] = ccy
		}
	}

	return msg
}

// ParseStatusReport extracts the pacs.002 field subset used by failure
// classification: group/transaction status, the status reason, and the
// original message identifiers needed to correlate the rejection with the
// outbound payment. Like Extract, it never fails.
func ParseStatusReport(raw string) ParsedMessage {
	msg := ParsedMessage{Kind: XMLStatusReport, Fields: FieldMap{}}

	root, err := parseTree(strings.TrimSpace(raw))
	if err != nil {
		msg.ParserNotes = append(msg.ParserNotes, fmt.Sprintf("XML parse failed: %v", err))
		return msg
	}

	put := func(key string, path ...string) {
		if v := root.findText(path...); v != "" {
			msg.Fields[key] = v
		}
	}

	put("GrpSts", "OrgnlGrpInfAndSts", "GrpSts")
	put("TxSts", "TxInfAndSts", "TxSts")

	put("RsnCd", "StsRsnInf", "Rsn", "Cd")
	put("RsnPrtry", "StsRsnInf", "Rsn", "Prtry")
	put("AddtlInf", "StsRsnInf", "AddtlInf")

	put("OrgnlMsgId", "OrgnlGrpInfAndSts", "OrgnlMsgId")
	put("OrgnlMsgNmId", "OrgnlGrpInfAndSts", "OrgnlMsgNmId")
	put("OrgnlCreDtTm", "OrgnlGrpInfAndSts", "OrgnlCreDtTm")

	put("OrgnlInstrId", "OrgnlInstrId")
	put("OrgnlEndToEndId", "OrgnlEndToEndId")
	put("OrgnlUETR", "OrgnlUETR")

	// Some variants carry a bare UETR element as well.
	put("UETR", "UETR")

	return msg
}
