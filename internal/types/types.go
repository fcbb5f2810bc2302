// =============================================================================
// MX to MT101 Converter - Shared Types
// =============================================================================
//
// This package contains the canonical types shared by the codec stages to
// avoid import cycles. Types defined here are used by:
//   - xmlparser  (produces SourceMessage)
//   - mtwriter   (consumes SourceMessage, produces Findings)
//   - validation (produces Findings)
//   - converter  (assembles ConversionOutcome)
//
// ABSENT VALUES:
//   An element missing from the source document is represented by the empty
//   string. The ingestor trims text, so whitespace-only content is absent too.
//   No placeholder text is ever stored in these types.
//
// =============================================================================

package types

import "fmt"

// =============================================================================
// SOURCE MESSAGE
// =============================================================================

// SourceMessage is the canonical parse of one pain.001 document.
type SourceMessage struct {
	// MessageID is the group header MsgId. Rendered as :20:.
	MessageID string

	// CreationTimestamp is the group header CreDtTm, kept verbatim.
	CreationTimestamp string

	// NumberOfTransactions is the group header NbOfTxs, kept verbatim.
	NumberOfTransactions string

	// ControlSum is the group header CtrlSum, kept verbatim.
	ControlSum string

	// InitiatingPartyName is InitgPty/Nm.
	InitiatingPartyName string

	// The following fields come from the first PmtInf block of the document.
	PaymentInformationID   string
	PaymentMethod          string
	RequestedExecutionDate string
	DebtorName             string
	DebtorAccount          string
	DebtorBIC              string

	// PaymentInstructions holds one entry per CdtTrfTxInf, in document order.
	// The order determines the order of the generated sequence B blocks.
	PaymentInstructions []PaymentInstruction
}

// PaymentInstruction is one credit transfer leg. Values inherited from the
// enclosing PmtInf are merged in at ingestion time, so an instruction never
// needs to look at its parent.
type PaymentInstruction struct {
	InstructionID string
	EndToEndID    string

	// Amount is the InstdAmt text, dot separated (e.g. "1234.56").
	Amount string

	// Currency is the InstdAmt Ccy attribute (ISO 4217).
	Currency string

	DebtorName    string
	DebtorAccount string
	DebtorBIC     string

	CreditorName    string
	CreditorAccount string
	CreditorBIC     string

	// ChargeBearer is the ISO 20022 code (DEBT, CRED, SHAR, SLEV) or an
	// MT code that is already translated (OUR, BEN, SHA).
	ChargeBearer string

	RemittanceInfo         string
	RequestedExecutionDate string
}

// =============================================================================
// FINDINGS
// =============================================================================

// Severity classifies a Finding.
type Severity string

const (
	// SeverityWarning is advisory and never blocks a conversion.
	SeverityWarning Severity = "warning"

	// SeverityError marks a missing or unmappable mandatory field.
	SeverityError Severity = "error"
)

// Finding is a single validation or transformation note attached to a
// conversion attempt.
type Finding struct {
	// FieldTag is the MT field (":32B:") or block marker ("{1:") concerned.
	FieldTag string

	// Message is a human-readable description.
	Message string

	// Severity is SeverityWarning or SeverityError.
	Severity Severity

	// Instruction is the 1-based sequence B index the finding belongs to,
	// or 0 for message-level findings.
	Instruction int
}

// IsError reports whether the finding blocks a successful conversion.
func (f Finding) IsError() bool {
	return f.Severity == SeverityError
}

// String formats the finding for logs and reports.
func (f Finding) String() string {
	if f.Instruction > 0 {
		return fmt.Sprintf("[%s] %s (transaction %d): %s", f.Severity, f.FieldTag, f.Instruction, f.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.FieldTag, f.Message)
}

// HasErrors reports whether any finding has error severity.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.IsError() {
			return true
		}
	}
	return false
}

// CountBySeverity returns the number of error and warning findings.
func CountBySeverity(findings []Finding) (errors, warnings int) {
	for _, f := range findings {
		if f.IsError() {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}

// =============================================================================
// CONVERSION OUTCOME
// =============================================================================

// ConversionOutcome is the result of running the codec on one document.
type ConversionOutcome struct {
	// Success is true when the structural validator passed and no error
	// finding was recorded.
	Success bool

	// RenderedText is the generated MT101. It is populated whenever
	// generation ran, including failed conversions, for diagnostics.
	RenderedText string

	// Findings holds generation findings followed by structural findings.
	Findings []Finding

	// Err is the terminal ingestion failure, if any. When set, generation
	// was not attempted and RenderedText is empty.
	Err error

	// Message is the parsed source message when ingestion succeeded.
	Message *SourceMessage
}
