package xmlparser

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const multiBlockDoc = `<?xml version="1.0" encoding="UTF-8"?>
<p:Document xmlns:p="urn:iso:std:iso:20022:tech:xsd:pain.001.001.09">
  <p:CstmrCdtTrfInitn>
    <p:GrpHdr>
      <p:MsgId> MULTI-01 </p:MsgId>
      <p:NbOfTxs>3</p:NbOfTxs>
    </p:GrpHdr>
    <p:PmtInf>
      <p:PmtInfId>BLOCK-A</p:PmtInfId>
      <p:PmtMtd>TRF</p:PmtMtd>
      <p:ReqdExctnDt><p:Dt>2025-02-01</p:Dt></p:ReqdExctnDt>
      <p:Dbtr><p:Nm>Debtor A</p:Nm></p:Dbtr>
      <p:DbtrAcct><p:Id><p:IBAN>FR7600000000000000000000001</p:IBAN></p:Id></p:DbtrAcct>
      <p:DbtrAgt><p:FinInstnId><p:BICFI>AAAAFRPPXXX</p:BICFI></p:FinInstnId></p:DbtrAgt>
      <p:ChrgBr>SHAR</p:ChrgBr>
      <p:CdtTrfTxInf>
        <p:PmtId><p:InstrId>A-1</p:InstrId><p:EndToEndId>E-A-1</p:EndToEndId></p:PmtId>
        <p:Amt><p:InstdAmt Ccy="EUR">10.50</p:InstdAmt></p:Amt>
        <p:Cdtr><p:Nm>Creditor A1</p:Nm></p:Cdtr>
      </p:CdtTrfTxInf>
      <p:CdtTrfTxInf>
        <p:PmtId><p:InstrId>A-2</p:InstrId></p:PmtId>
        <p:ChrgBr>DEBT</p:ChrgBr>
        <p:Amt><p:InstdAmt Ccy="USD">20</p:InstdAmt></p:Amt>
        <p:Cdtr><p:Nm>Creditor A2</p:Nm></p:Cdtr>
      </p:CdtTrfTxInf>
    </p:PmtInf>
    <p:PmtInf>
      <p:PmtInfId>BLOCK-B</p:PmtInfId>
      <p:ReqdExctnDt><p:Dt>2025-03-01</p:Dt></p:ReqdExctnDt>
      <p:Dbtr><p:Nm>Debtor B</p:Nm></p:Dbtr>
      <p:CdtTrfTxInf>
        <p:PmtId><p:InstrId>B-1</p:InstrId></p:PmtId>
        <p:Amt><p:InstdAmt Ccy="GBP">30.00</p:InstdAmt></p:Amt>
        <p:CdtrAgt><p:FinInstnId><p:BIC>BBBBGB22</p:BIC></p:FinInstnId></p:CdtrAgt>
        <p:Cdtr><p:Nm>Creditor B1</p:Nm></p:Cdtr>
      </p:CdtTrfTxInf>
    </p:PmtInf>
  </p:CstmrCdtTrfInitn>
</p:Document>`

func TestParseFile(t *testing.T) {
	msg, err := ParseFile(filepath.Join("testdata", "pain001_single.xml"))
	require.NoError(t, err)

	assert.Equal(t, "MSG001", msg.MessageID)
	assert.Equal(t, "2025-01-10T09:30:00", msg.CreationTimestamp)
	assert.Equal(t, "1", msg.NumberOfTransactions)
	assert.Equal(t, "100.00", msg.ControlSum)
	assert.Equal(t, "ACME SARL", msg.InitiatingPartyName)
	assert.Equal(t, "PMT-001", msg.PaymentInformationID)
	assert.Equal(t, "TRF", msg.PaymentMethod)
	assert.Equal(t, "2025-01-15", msg.RequestedExecutionDate)
	assert.Equal(t, "ACME SARL", msg.DebtorName)
	assert.Equal(t, "FR7630006000011234567890189", msg.DebtorAccount)
	assert.Equal(t, "BANKFRPP", msg.DebtorBIC)

	require.Len(t, msg.PaymentInstructions, 1)
	instr := msg.PaymentInstructions[0]
	assert.Equal(t, "INSTR-001", instr.InstructionID)
	assert.Equal(t, "E2E-001", instr.EndToEndID)
	assert.Equal(t, "100.00", instr.Amount)
	assert.Equal(t, "EUR", instr.Currency)
	assert.Equal(t, "Widget GmbH", instr.CreditorName)
	assert.Equal(t, "DE89370400440532013000", instr.CreditorAccount)
	assert.Equal(t, "BANKDEFF", instr.CreditorBIC)
	assert.Equal(t, "Invoice 2025-001", instr.RemittanceInfo)

	// Inherited from PmtInf.
	assert.Equal(t, "SLEV", instr.ChargeBearer)
	assert.Equal(t, "2025-01-15", instr.RequestedExecutionDate)
	assert.Equal(t, "ACME SARL", instr.DebtorName)
	assert.Equal(t, "FR7630006000011234567890189", instr.DebtorAccount)
	assert.Equal(t, "BANKFRPP", instr.DebtorBIC)
}

func TestParseMultiplePaymentInformationBlocks(t *testing.T) {
	msg, err := Parse(multiBlockDoc)
	require.NoError(t, err)

	assert.Equal(t, "MULTI-01", msg.MessageID, "text content is trimmed")
	assert.Equal(t, "BLOCK-A", msg.PaymentInformationID, "header uses the first PmtInf")
	assert.Equal(t, "2025-02-01", msg.RequestedExecutionDate)
	assert.Equal(t, "AAAAFRPPXXX", msg.DebtorBIC, "BICFI is accepted")

	require.Len(t, msg.PaymentInstructions, 3)

	ids := []string{}
	for _, p := range msg.PaymentInstructions {
		ids = append(ids, p.InstructionID)
	}
	assert.Equal(t, []string{"A-1", "A-2", "B-1"}, ids)

	a1, a2, b1 := msg.PaymentInstructions[0], msg.PaymentInstructions[1], msg.PaymentInstructions[2]

	assert.Equal(t, "SHAR", a1.ChargeBearer)
	assert.Equal(t, "DEBT", a2.ChargeBearer, "transaction level ChrgBr wins")
	assert.Equal(t, "", b1.ChargeBearer, "block B has no ChrgBr")

	assert.Equal(t, "Debtor A", a2.DebtorName)
	assert.Equal(t, "AAAAFRPPXXX", a2.DebtorBIC)
	assert.Equal(t, "Debtor B", b1.DebtorName)
	assert.Equal(t, "", b1.DebtorBIC)
	assert.Equal(t, "2025-03-01", b1.RequestedExecutionDate)
	assert.Equal(t, "BBBBGB22", b1.CreditorBIC)
	assert.Equal(t, "USD", a2.Currency)
	assert.Equal(t, "20", a2.Amount)
}

func TestParseAbsentFieldsAreEmpty(t *testing.T) {
	doc := `<Document><CstmrCdtTrfInitn>
	  <GrpHdr><MsgId>M</MsgId></GrpHdr>
	  <PmtInf><CdtTrfTxInf><Cdtr><Nm>   </Nm></Cdtr></CdtTrfTxInf></PmtInf>
	</CstmrCdtTrfInitn></Document>`

	msg, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, msg.PaymentInstructions, 1)

	instr := msg.PaymentInstructions[0]
	assert.Empty(t, instr.InstructionID)
	assert.Empty(t, instr.Amount)
	assert.Empty(t, instr.Currency)
	assert.Empty(t, instr.CreditorName, "whitespace-only text counts as absent")
	assert.Empty(t, instr.ChargeBearer)
	assert.Empty(t, msg.ControlSum)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "malformed xml",
			doc:     `<Document><GrpHdr><MsgId>X</GrpHdr></Document>`,
			wantErr: ErrMalformedXML,
		},
		{
			name:    "empty input",
			doc:     ``,
			wantErr: ErrMalformedXML,
		},
		{
			name:    "missing group header",
			doc:     `<Document><CstmrCdtTrfInitn><PmtInf/></CstmrCdtTrfInitn></Document>`,
			wantErr: ErrMissingGroupHeader,
		},
		{
			name:    "no payment information",
			doc:     `<Document><CstmrCdtTrfInitn><GrpHdr><MsgId>X</MsgId></GrpHdr></CstmrCdtTrfInitn></Document>`,
			wantErr: ErrNoPaymentInformation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Parse(tt.doc)
			assert.Nil(t, msg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseIsIdempotent(t *testing.T) {
	first, err := Parse(multiBlockDoc)
	require.NoError(t, err)
	second, err := Parse(multiBlockDoc)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)
}

func TestParseLatin1Document(t *testing.T) {
	// "Société Générale" with é encoded as the single byte 0xE9.
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<Document><CstmrCdtTrfInitn><GrpHdr><MsgId>LATIN1</MsgId></GrpHdr>" +
		"<PmtInf><CdtTrfTxInf><Cdtr><Nm>Soci\xe9t\xe9 G\xe9n\xe9rale</Nm></Cdtr></CdtTrfTxInf></PmtInf>" +
		"</CstmrCdtTrfInitn></Document>"

	msg, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, msg.PaymentInstructions, 1)
	assert.Equal(t, "Société Générale", msg.PaymentInstructions[0].CreditorName)
}

func TestParseUnsupportedCharset(t *testing.T) {
	doc := `<?xml version="1.0" encoding="X-NO-SUCH-CHARSET"?><Document/>`

	_, err := Parse(doc)
	require.ErrorIs(t, err, ErrMalformedXML)
	assert.Contains(t, err.Error(), "charset")
}
