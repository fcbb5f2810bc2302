// =============================================================================
// MX to MT101 Converter - pain.001 Ingestor
// =============================================================================
//
// This module parses an ISO 20022 pain.001 (Customer Credit Transfer
// Initiation) document into the canonical types.SourceMessage.
//
// EXTRACTION:
//   1. Build the element tree (namespace-aware, matched by local name)
//   2. Read the first GrpHdr anywhere in the document
//   3. For every PmtInf, in document order:
//      a. Read the payment information level fields
//      b. Build one PaymentInstruction per nested CdtTrfTxInf
//      c. Merge PmtInf level debtor data, ChrgBr and ReqdExctnDt into each
//         instruction that does not carry its own value
//
// ERRORS:
//   ErrMalformedXML, ErrMissingGroupHeader and ErrNoPaymentInformation are
//   terminal. Callers match them with errors.Is.
//
// =============================================================================

package xmlparser

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/types"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrMalformedXML is returned when the document is not well-formed XML.
	ErrMalformedXML = errors.New("malformed XML")

	// ErrMissingGroupHeader is returned when no GrpHdr element exists.
	ErrMissingGroupHeader = errors.New("missing group header (GrpHdr)")

	// ErrNoPaymentInformation is returned when no PmtInf element exists.
	ErrNoPaymentInformation = errors.New("no payment information (PmtInf)")
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile reads a pain.001 file and parses it.
func ParseFile(filePath string) (*types.SourceMessage, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(string(data))
}

// Parse extracts a SourceMessage from pain.001 XML text.
//
// PARAMETERS:
//   - xmlText: The raw document.
//
// RETURNS:
//   - The parsed message. Instructions are in document order.
//   - A wrapped ErrMalformedXML, ErrMissingGroupHeader or
//     ErrNoPaymentInformation.
func Parse(xmlText string) (*types.SourceMessage, error) {
	root, err := buildTree(strings.NewReader(xmlText))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}

	grpHdr := root.Find("GrpHdr")
	if grpHdr == nil {
		return nil, ErrMissingGroupHeader
	}

	pmtInfs := root.FindAll("PmtInf")
	if len(pmtInfs) == 0 {
		return nil, ErrNoPaymentInformation
	}

	msg := &types.SourceMessage{
		MessageID:            grpHdr.Child("MsgId").Text(),
		CreationTimestamp:    grpHdr.Child("CreDtTm").Text(),
		NumberOfTransactions: grpHdr.Child("NbOfTxs").Text(),
		ControlSum:           grpHdr.Child("CtrlSum").Text(),
		InitiatingPartyName:  grpHdr.Path("InitgPty", "Nm").Text(),
	}

	for i, pmtInf := range pmtInfs {
		info := readPaymentInformation(pmtInf)

		// The header carries the first block's values as the message-level
		// fallback.
		if i == 0 {
			msg.PaymentInformationID = info.id
			msg.PaymentMethod = info.method
			msg.RequestedExecutionDate = info.executionDate
			msg.DebtorName = info.debtorName
			msg.DebtorAccount = info.debtorAccount
			msg.DebtorBIC = info.debtorBIC
		}

		for _, tx := range pmtInf.FindAll("CdtTrfTxInf") {
			msg.PaymentInstructions = append(msg.PaymentInstructions, readInstruction(tx, info))
		}
	}

	return msg, nil
}

// =============================================================================
// PAYMENT INFORMATION
// =============================================================================

// paymentInformation holds the PmtInf level values that cascade into each
// transaction of the block.
type paymentInformation struct {
	id            string
	method        string
	executionDate string
	chargeBearer  string
	debtorName    string
	debtorAccount string
	debtorBIC     string
}

func readPaymentInformation(pmtInf *Node) paymentInformation {
	return paymentInformation{
		id:            pmtInf.Child("PmtInfId").Text(),
		method:        pmtInf.Child("PmtMtd").Text(),
		executionDate: pmtInf.Child("ReqdExctnDt").Text(),
		chargeBearer:  pmtInf.Child("ChrgBr").Text(),
		debtorName:    pmtInf.Path("Dbtr", "Nm").Text(),
		debtorAccount: pmtInf.Path("DbtrAcct", "Id", "IBAN").Text(),
		debtorBIC:     agentBIC(pmtInf.Child("DbtrAgt")),
	}
}

// readInstruction builds a self-contained PaymentInstruction from a
// CdtTrfTxInf node, falling back to the enclosing block for every value the
// transaction does not carry itself.
func readInstruction(tx *Node, info paymentInformation) types.PaymentInstruction {
	instdAmt := tx.Path("Amt", "InstdAmt")

	return types.PaymentInstruction{
		InstructionID:   tx.Path("PmtId", "InstrId").Text(),
		EndToEndID:      tx.Path("PmtId", "EndToEndId").Text(),
		Amount:          instdAmt.Text(),
		Currency:        instdAmt.Attr("Ccy"),
		CreditorName:    tx.Path("Cdtr", "Nm").Text(),
		CreditorAccount: tx.Path("CdtrAcct", "Id", "IBAN").Text(),
		CreditorBIC:     agentBIC(tx.Child("CdtrAgt")),
		RemittanceInfo:  tx.Path("RmtInf", "Ustrd").Text(),

		DebtorName:             firstNonEmpty(tx.Path("Dbtr", "Nm").Text(), info.debtorName),
		DebtorAccount:          firstNonEmpty(tx.Path("DbtrAcct", "Id", "IBAN").Text(), info.debtorAccount),
		DebtorBIC:              firstNonEmpty(agentBIC(tx.Child("DbtrAgt")), info.debtorBIC),
		ChargeBearer:           firstNonEmpty(tx.Child("ChrgBr").Text(), info.chargeBearer),
		RequestedExecutionDate: firstNonEmpty(tx.Child("ReqdExctnDt").Text(), info.executionDate),
	}
}

// agentBIC reads FinInstnId/BIC, or FinInstnId/BICFI used by newer pain.001
// versions, from an agent element.
func agentBIC(agent *Node) string {
	finInstnID := agent.Child("FinInstnId")
	if bic := finInstnID.Child("BIC").Text(); bic != "" {
		return bic
	}
	return finInstnID.Child("BICFI").Text()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
