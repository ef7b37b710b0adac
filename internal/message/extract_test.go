package message

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePacs008 = `<?xml version="1.0" encoding="UTF-8"?>
<Document xmlns="urn:iso:std:iso:20022:tech:xsd:pacs.008.001.08">
  <FIToFICstmrCdtTrf>
    <GrpHdr>
      <MsgId>MSG-2026-0001</MsgId>
      <CreDtTm>2026-02-10T09:30:00Z</CreDtTm>
    </GrpHdr>
    <CdtTrfTxInf>
      <PmtId>
        <InstrId>INSTR-1</InstrId>
        <EndToEndId>E2E-42</EndToEndId>
        <UETR>97ed4827-7b6f-4491-a06f-b548d5a7512d</UETR>
      </PmtId>
      <IntrBkSttlmAmt Ccy="USD">100.50</IntrBkSttlmAmt>
      <ChrgBr>SHAR</ChrgBr>
      <Dbtr><Nm>Alpha Exports Ltd</Nm></Dbtr>
      <Cdtr><Nm>Beta Imports GmbH</Nm></Cdtr>
    </CdtTrfTxInf>
  </FIToFICstmrCdtTrf>
</Document>`

const samplePacs002 = `<?xml version="1.0" encoding="UTF-8"?>
<Document xmlns="urn:iso:std:iso:20022:tech:xsd:pacs.002.001.10">
  <FIToFIPmtStsRpt>
    <OrgnlGrpInfAndSts>
      <OrgnlMsgId>MSG-2026-0001</OrgnlMsgId>
      <OrgnlMsgNmId>pacs.008.001.08</OrgnlMsgNmId>
      <GrpSts>RJCT</GrpSts>
    </OrgnlGrpInfAndSts>
    <TxInfAndSts>
      <OrgnlInstrId>INSTR-1</OrgnlInstrId>
      <OrgnlEndToEndId>E2E-42</OrgnlEndToEndId>
      <OrgnlUETR>97ed4827-7b6f-4491-a06f-b548d5a7512d</OrgnlUETR>
      <TxSts>RJCT</TxSts>
      <StsRsnInf>
        <Rsn><Cd>AC04</Cd></Rsn>
        <AddtlInf>Beneficiary account closed in 2025</AddtlInf>
      </StsRsnInf>
    </TxInfAndSts>
  </FIToFIPmtStsRpt>
</Document>`

func TestExtractIsTotal(t *testing.T) {
	inputs := map[string]string{
		"empty":         "",
		"whitespace":    "   \n\t  ",
		"binary":        string([]byte{0x00, 0xff, 0xfe, 0x01}),
		"truncated xml": "<Document xmlns=\"urn:pacs.008\"><GrpHdr><MsgId>abc",
		"free text":     "please check this payment",
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			msg := Extract(input)
			assert.Contains(t, []Kind{LegacyText, XMLCreditTransfer, XMLStatusReport, Unknown}, msg.Kind)
			assert.NotNil(t, msg.Fields)
		})
	}
}

func TestExtractUnknown(t *testing.T) {
	msg := Extract("random text with no markers")
	assert.Equal(t, Unknown, msg.Kind)
	assert.Empty(t, msg.Fields)
	require.Len(t, msg.ParserNotes, 1)
}

func TestExtractLegacyText(t *testing.T) {
	raw := ":20:REF1\n:23B:CRED\n:32A:250101USD1000,00\n:50K:/12345678\nALPHA EXPORTS LTD\nMAIN STREET 1\n:59:/87654321\nBETA IMPORTS GMBH\n:71A:SHA"

	msg := Extract(raw)
	require.Equal(t, LegacyText, msg.Kind)

	assert.Equal(t, "REF1", msg.Fields["20"])
	assert.Equal(t, "CRED", msg.Fields["23B"])
	assert.Equal(t, "250101USD1000,00", msg.Fields["32A"])
	assert.Equal(t, "SHA", msg.Fields["71A"])

	// Multi-line values run until the next tag boundary.
	assert.True(t, strings.Contains(msg.Fields["50K"], "ALPHA EXPORTS LTD"))
	assert.True(t, strings.Contains(msg.Fields["50K"], "MAIN STREET 1"))

	_, has121 := msg.Fields["121"]
	assert.False(t, has121, "absent tags must not be extracted")
}

func TestExtractLegacyTextIgnoresUnknownTags(t *testing.T) {
	raw := ":20:REF1\n:32A:250101USD1,00\n:70:SOME REMITTANCE INFO"

	msg := Extract(raw)
	require.Equal(t, LegacyText, msg.Kind)
	_, ok := msg.Fields["70"]
	assert.False(t, ok, "tags outside the allow-list are ignored")
}

func TestExtractCreditTransfer(t *testing.T) {
	msg := Extract(samplePacs008)
	require.Equal(t, XMLCreditTransfer, msg.Kind)

	assert.Equal(t, "MSG-2026-0001", msg.Fields["MsgId"])
	assert.Equal(t, "2026-02-10T09:30:00Z", msg.Fields["CreDtTm"])
	assert.Equal(t, "INSTR-1", msg.Fields["InstrId"])
	assert.Equal(t, "E2E-42", msg.Fields["EndToEndId"])
	assert.Equal(t, "100.50", msg.Fields["IntrBkSttlmAmt"])
	assert.Equal(t, "USD", msg.Fields["Ccy"])
	assert.Equal(t, "Alpha Exports Ltd", msg.Fields["DbtrNm"])
	assert.Equal(t, "Beta Imports GmbH", msg.Fields["CdtrNm"])
	assert.Equal(t, "SHAR", msg.Fields["ChrgBr"])
	assert.Equal(t, "97ed4827-7b6f-4491-a06f-b548d5a7512d", msg.Fields["UETR"])
}

func TestExtractCreditTransferIgnoresNamespaceDrift(t *testing.T) {
	// Same document, different namespace version: extraction matches by
	// local name and must not care.
	raw := strings.Replace(samplePacs008, "pacs.008.001.08", "pacs.008.001.13", 1)

	msg := Extract(raw)
	require.Equal(t, XMLCreditTransfer, msg.Kind)
	assert.Equal(t, "MSG-2026-0001", msg.Fields["MsgId"])
	assert.Equal(t, "USD", msg.Fields["Ccy"])
}

func TestExtractCreditTransferMalformedXML(t *testing.T) {
	msg := Extract("<Document>pacs.008<GrpHdr><MsgId>oops</Document>")
	require.Equal(t, XMLCreditTransfer, msg.Kind)
	assert.Empty(t, msg.Fields)
	require.NotEmpty(t, msg.ParserNotes)
	assert.Contains(t, msg.ParserNotes[0], "XML parse failed")
}

func TestParseStatusReport(t *testing.T) {
	msg := ParseStatusReport(samplePacs002)
	require.Equal(t, XMLStatusReport, msg.Kind)

	assert.Equal(t, "RJCT", msg.Fields["GrpSts"])
	assert.Equal(t, "RJCT", msg.Fields["TxSts"])
	assert.Equal(t, "AC04", msg.Fields["RsnCd"])
	assert.Equal(t, "Beneficiary account closed in 2025", msg.Fields["AddtlInf"])
	assert.Equal(t, "MSG-2026-0001", msg.Fields["OrgnlMsgId"])
	assert.Equal(t, "pacs.008.001.08", msg.Fields["OrgnlMsgNmId"])
	assert.Equal(t, "INSTR-1", msg.Fields["OrgnlInstrId"])
	assert.Equal(t, "E2E-42", msg.Fields["OrgnlEndToEndId"])
	assert.Equal(t, "97ed4827-7b6f-4491-a06f-b548d5a7512d", msg.Fields["OrgnlUETR"])
}

func TestParseStatusReportMalformed(t *testing.T) {
	msg := ParseStatusReport("<pacs.002 truncated")
	assert.Equal(t, XMLStatusReport, msg.Kind)
	assert.Empty(t, msg.Fields)
	assert.NotEmpty(t, msg.ParserNotes)
}

func TestFieldMapMissingSemantics(t *testing.T) {
	fields := FieldMap{"20": "REF", "59": "   "}

	assert.True(t, fields.Has("20"))
	assert.False(t, fields.Has("59"), "blank value counts as missing")
	assert.False(t, fields.Has("32A"), "absent key counts as missing")
	assert.Equal(t, "", fields.Get("59"))
}

func TestExtractCreditTransferLaterTransactionCarriesID(t *testing.T) {
	// The first PmtId block has no InstrId; the lookup must not commit to
	// it and lose the identifier a later block carries.
	raw := `<Document xmlns="urn:iso:std:iso:20022:tech:xsd:pacs.008.001.08">
  <FIToFICstmrCdtTrf>
    <GrpHdr><MsgId>MSG-2</MsgId></GrpHdr>
    <CdtTrfTxInf>
      <PmtId><EndToEndId>E2E-FIRST</EndToEndId></PmtId>
    </CdtTrfTxInf>
    <CdtTrfTxInf>
      <PmtId><InstrId>INSTR-SECOND</InstrId><EndToEndId>E2E-SECOND</EndToEndId></PmtId>
    </CdtTrfTxInf>
  </FIToFICstmrCdtTrf>
</Document>`

	msg := Extract(raw)
	require.Equal(t, XMLCreditTransfer, msg.Kind)
	assert.Equal(t, "INSTR-SECOND", msg.Fields["InstrId"])
	assert.Equal(t, "E2E-FIRST", msg.Fields["EndToEndId"], "first match in document order still wins")
}
