// =============================================================================
// MX to MT101 Converter - MT101 Writer Module
// =============================================================================
//
// This module renders a types.SourceMessage as SWIFT MT101 block text.
//
// MT101 STRUCTURE:
//   The generated message follows this block layout, one block per line:
//
//   {1:F01BANKFRPPXXX1234567890}         <!-- Basic header: sender BIC11 + session -->
//   {2:I101BANKDEFFN}                    <!-- Application header: receiver BIC8 + priority -->
//   {3:{108:REF20250115093000}}          <!-- User header (optional) -->
//   {4:                                  <!-- Text block -->
//   :20:MSG001                           <!-- Sequence A -->
//   :28D:1/1
//   :30:20250115
//   :21:INSTR-001                        <!-- Sequence B, one per instruction -->
//   :32B:EUR100,00
//   :50K:ACME SARL
//   :59:Widget GmbH
//   :71A:SHA
//   :70:Invoice 2025-001
//   -}
//
// MISSING VALUES:
//   A mandatory value that is missing or cannot be mapped is never replaced
//   by a default. The tag line is left out and an error finding is recorded,
//   so the structural validator and the operator both see the gap.
//
// The trailer block {5:} is not generated.
//
// =============================================================================

package mtwriter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/types"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultReceiverBIC is used for block 2 when neither the creditor agent
	// nor the debtor agent carries a BIC.
	DefaultReceiverBIC = "BMCEMAMCXXX"

	// DefaultPriority is the block 2 priority letter.
	DefaultPriority = "N"

	// DefaultSessionSequence is the session and sequence number of block 1.
	DefaultSessionSequence = "1234567890"

	// maxReferenceLength is the 16x limit of :20: and :21:.
	maxReferenceLength = 16
)

// =============================================================================
// CLOCK
// =============================================================================

// Clock supplies the render time used by the user header.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct {
	Time time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return c.Time }

// =============================================================================
// GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for MT101 generation.
type GenerateOptions struct {
	// ReceiverBIC is the last fallback for the block 2 receiver.
	// Default: "BMCEMAMCXXX"
	ReceiverBIC string

	// PrioritySuffix is the block 2 priority. Only the first character is
	// used, upper-cased.
	// Default: "N"
	PrioritySuffix string

	// SessionSequence is the 10-digit session and sequence number appended
	// to the block 1 BIC.
	// Default: "1234567890"
	SessionSequence string

	// IncludeUserHeader determines whether block 3 is written.
	// Default: true
	IncludeUserHeader bool

	// Clock supplies the block 3 timestamp.
	// Default: SystemClock
	Clock Clock
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		ReceiverBIC:       DefaultReceiverBIC,
		PrioritySuffix:    DefaultPriority,
		SessionSequence:   DefaultSessionSequence,
		IncludeUserHeader: true,
		Clock:             SystemClock{},
	}
}

// =============================================================================
// GENERATION FUNCTIONS
// =============================================================================

// Generate renders msg as MT101 text with the default options.
//
// PARAMETERS:
//   - msg: The parsed source message.
//
// RETURNS:
//   - The rendered text. Always populated, even when findings were recorded.
//   - The findings collected while mapping fields, in rendering order.
func Generate(msg *types.SourceMessage) (string, []types.Finding) {
	return GenerateWithOptions(msg, DefaultGenerateOptions())
}

// GenerateWithOptions renders msg as MT101 text with custom options.
//
// GENERATION PROCESS:
//   1. Basic header from the debtor BIC
//   2. Application header from the receiver BIC and priority
//   3. User header, when enabled
//   4. Text block: sequence A, then one sequence B per instruction
//   5. Join the blocks with line breaks
func GenerateWithOptions(msg *types.SourceMessage, options GenerateOptions) (string, []types.Finding) {
	if msg == nil {
		msg = &types.SourceMessage{}
	}
	if options.Clock == nil {
		options.Clock = SystemClock{}
	}
	if options.SessionSequence == "" {
		options.SessionSequence = DefaultSessionSequence
	}

	g := &generator{msg: msg, options: options}

	blocks := []string{
		g.basicHeader(),
		g.applicationHeader(),
	}
	if options.IncludeUserHeader {
		blocks = append(blocks, g.userHeader())
	}
	blocks = append(blocks, g.textBlock())

	return strings.Join(blocks, "\n"), g.findings
}

// =============================================================================
// GENERATOR STATE
// =============================================================================

// generator carries the findings of one rendering pass.
type generator struct {
	msg      *types.SourceMessage
	options  GenerateOptions
	findings []types.Finding
}

func (g *generator) errorf(tag string, instruction int, format string, args ...interface{}) {
	g.findings = append(g.findings, types.Finding{
		FieldTag:    tag,
		Message:     fmt.Sprintf(format, args...),
		Severity:    types.SeverityError,
		Instruction: instruction,
	})
}

func (g *generator) warnf(tag string, instruction int, format string, args ...interface{}) {
	g.findings = append(g.findings, types.Finding{
		FieldTag:    tag,
		Message:     fmt.Sprintf(format, args...),
		Severity:    types.SeverityWarning,
		Instruction: instruction,
	})
}

// =============================================================================
// HEADER BLOCKS
// =============================================================================

// basicHeader builds {1:F01<BIC11><session>}. The BIC is left out when it
// is absent or cannot be normalized.
func (g *generator) basicHeader() string {
	source := g.msg.DebtorBIC
	if len(g.msg.PaymentInstructions) > 0 && g.msg.PaymentInstructions[0].DebtorBIC != "" {
		source = g.msg.PaymentInstructions[0].DebtorBIC
	}

	bic, truncated, err := NormalizeBIC(source)
	switch {
	case errors.Is(err, ErrMissingValue):
		g.errorf("{1:", 0, "sender BIC missing")
	case err != nil:
		g.errorf("{1:", 0, "sender BIC rejected: %v", err)
	case truncated:
		g.warnf("{1:", 0, "sender BIC truncated to %s", bic)
	}

	return "{1:F01" + bic + g.options.SessionSequence + "}"
}

// applicationHeader builds {2:I101<BIC8><priority>}.
func (g *generator) applicationHeader() string {
	var source string
	if len(g.msg.PaymentInstructions) > 0 {
		source = g.msg.PaymentInstructions[0].CreditorBIC
	}
	if strings.TrimSpace(source) == "" {
		source = g.msg.DebtorBIC
	}
	if strings.TrimSpace(source) == "" {
		source = g.options.ReceiverBIC
	}

	receiver, err := BIC8(source)
	if err != nil {
		g.errorf("{2:", 0, "receiver BIC: %v", err)
	}

	return "{2:I101" + receiver + priority(g.options.PrioritySuffix) + "}"
}

// priority returns the first character of suffix upper-cased, or N.
func priority(suffix string) string {
	suffix = strings.TrimSpace(suffix)
	if suffix == "" {
		return DefaultPriority
	}
	return strings.ToUpper(suffix[:1])
}

// userHeader builds {3:{108:REF<yyyyMMddHHmmss>}}.
func (g *generator) userHeader() string {
	return "{3:{108:REF" + g.options.Clock.Now().Format("20060102150405") + "}}"
}

// =============================================================================
// TEXT BLOCK
// =============================================================================

// textBlock builds {4: ... -} with sequence A followed by one sequence B
// per payment instruction.
func (g *generator) textBlock() string {
	lines := []string{"{4:"}
	lines = append(lines, g.sequenceA()...)

	if len(g.msg.PaymentInstructions) == 0 {
		g.errorf("{4:", 0, "no payment instructions")
	}
	for i, instr := range g.msg.PaymentInstructions {
		lines = append(lines, g.sequenceB(i+1, instr)...)
	}

	lines = append(lines, "-}")
	return strings.Join(lines, "\n")
}

func (g *generator) sequenceA() []string {
	var lines []string

	if ref := g.reference(":20:", 0, g.msg.MessageID, "transaction reference"); ref != "" {
		lines = append(lines, ":20:"+ref)
	}

	lines = append(lines, ":28D:1/1")

	date, err := NormalizeDate(g.msg.RequestedExecutionDate)
	switch {
	case errors.Is(err, ErrMissingValue):
		g.errorf(":30:", 0, "requested execution date missing")
	case err != nil:
		g.errorf(":30:", 0, "%v", err)
	default:
		lines = append(lines, ":30:"+date)
	}

	return lines
}

func (g *generator) sequenceB(n int, instr types.PaymentInstruction) []string {
	var lines []string

	if ref := g.reference(":21:", n, instr.InstructionID, "instruction reference"); ref != "" {
		lines = append(lines, ":21:"+ref)
	}

	if amount, ok := g.currencyAmount(n, instr); ok {
		lines = append(lines, ":32B:"+amount)
	}

	if name, ok := g.freeText(":50K:", n, instr.DebtorName, "ordering customer name", false); ok {
		lines = append(lines, ":50K:"+name)
	}

	if name, ok := g.freeText(":59:", n, instr.CreditorName, "beneficiary name", true); ok {
		lines = append(lines, ":59:"+name)
	}

	code, err := TranslateChargeBearer(instr.ChargeBearer)
	switch {
	case errors.Is(err, ErrMissingValue):
		g.errorf(":71A:", n, "charge bearer missing")
	case err != nil:
		g.errorf(":71A:", n, "charge bearer %v", err)
	default:
		lines = append(lines, ":71A:"+code)
	}

	if info, ok := g.freeText(":70:", n, instr.RemittanceInfo, "remittance information", false); ok {
		lines = append(lines, ":70:"+info)
	}

	return lines
}

// freeText returns value on a single line. A missing value is an error
// only when the tag is mandatory; a value carrying message structure is
// always an error.
func (g *generator) freeText(tag string, n int, value, label string, mandatory bool) (string, bool) {
	text, err := SingleLine(value)
	switch {
	case errors.Is(err, ErrMissingValue):
		if mandatory {
			g.errorf(tag, n, "%s missing", label)
		}
		return "", false
	case err != nil:
		g.errorf(tag, n, "%s %v", label, err)
		return "", false
	}
	return text, true
}

// reference returns a :20: or :21: value on a single line, recording an
// error when it is missing or unsafe and a warning when it exceeds 16
// characters.
func (g *generator) reference(tag string, n int, value, label string) string {
	value, ok := g.freeText(tag, n, value, label, true)
	if !ok {
		return ""
	}
	if len(value) > maxReferenceLength {
		g.warnf(tag, n, "%s exceeds %d characters", label, maxReferenceLength)
	}
	return value
}

// currencyAmount builds the :32B: value. Each failing side records its own
// finding and the line is left out when either side fails.
func (g *generator) currencyAmount(n int, instr types.PaymentInstruction) (string, bool) {
	ok := true

	currency, err := FormatCurrency(instr.Currency)
	switch {
	case errors.Is(err, ErrMissingValue):
		g.errorf(":32B:", n, "currency missing")
		ok = false
	case err != nil:
		g.errorf(":32B:", n, "%v", err)
		ok = false
	}

	amount, err := FormatAmount(instr.Amount)
	switch {
	case errors.Is(err, ErrMissingValue):
		g.errorf(":32B:", n, "amount missing")
		ok = false
	case err != nil:
		g.errorf(":32B:", n, "%v", err)
		ok = false
	default:
		for _, note := range AmountNotes(instr.Amount) {
			g.warnf(":32B:", n, "%s", note)
		}
	}

	if !ok {
		return "", false
	}
	return currency + amount, true
}
