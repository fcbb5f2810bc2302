package mtwriter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/types"
)

var renderTime = time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)

func testOptions() GenerateOptions {
	opts := DefaultGenerateOptions()
	opts.Clock = FixedClock{Time: renderTime}
	return opts
}

func sampleInstruction() types.PaymentInstruction {
	return types.PaymentInstruction{
		InstructionID:          "INSTR-001",
		EndToEndID:             "E2E-001",
		Amount:                 "100.00",
		Currency:               "EUR",
		DebtorName:             "ACME SARL",
		DebtorAccount:          "FR7630006000011234567890189",
		DebtorBIC:              "BANKFRPP",
		CreditorName:           "Widget GmbH",
		CreditorAccount:        "DE89370400440532013000",
		CreditorBIC:            "BANKDEFF",
		ChargeBearer:           "SLEV",
		RemittanceInfo:         "Invoice 2025-001",
		RequestedExecutionDate: "2025-01-15",
	}
}

func sampleMessage() *types.SourceMessage {
	return &types.SourceMessage{
		MessageID:              "MSG001",
		PaymentInformationID:   "PMT-001",
		RequestedExecutionDate: "2025-01-15",
		DebtorName:             "ACME SARL",
		DebtorBIC:              "BANKFRPP",
		PaymentInstructions:    []types.PaymentInstruction{sampleInstruction()},
	}
}

// findingsFor returns the findings recorded against tag.
func findingsFor(findings []types.Finding, tag string) []types.Finding {
	var out []types.Finding
	for _, f := range findings {
		if f.FieldTag == tag {
			out = append(out, f)
		}
	}
	return out
}

func TestGenerateSingleInstruction(t *testing.T) {
	text, findings := GenerateWithOptions(sampleMessage(), testOptions())

	want := strings.Join([]string{
		"{1:F01BANKFRPPXXX1234567890}",
		"{2:I101BANKDEFFN}",
		"{3:{108:REF20250115093000}}",
		"{4:",
		":20:MSG001",
		":28D:1/1",
		":30:20250115",
		":21:INSTR-001",
		":32B:EUR100,00",
		":50K:ACME SARL",
		":59:Widget GmbH",
		":71A:SHA",
		":70:Invoice 2025-001",
		"-}",
	}, "\n")

	assert.Equal(t, want, text)
	assert.Empty(t, findings)
}

func TestGenerateKeepsInstructionOrder(t *testing.T) {
	msg := sampleMessage()
	msg.PaymentInstructions = nil
	for _, id := range []string{"C-3", "A-1", "B-2"} {
		instr := sampleInstruction()
		instr.InstructionID = id
		msg.PaymentInstructions = append(msg.PaymentInstructions, instr)
	}

	text, findings := GenerateWithOptions(msg, testOptions())
	require.Empty(t, findings)

	assert.Equal(t, 3, strings.Count(text, ":21:"))
	c := strings.Index(text, ":21:C-3")
	a := strings.Index(text, ":21:A-1")
	b := strings.Index(text, ":21:B-2")
	require.True(t, c >= 0 && a >= 0 && b >= 0)
	assert.Less(t, c, a)
	assert.Less(t, a, b)
}

func TestGenerateNeverDefaultsChargeBearer(t *testing.T) {
	msg := sampleMessage()
	second := sampleInstruction()
	second.InstructionID = "INSTR-002"
	second.ChargeBearer = ""
	msg.PaymentInstructions = append(msg.PaymentInstructions, second)

	text, findings := GenerateWithOptions(msg, testOptions())

	assert.Equal(t, 1, strings.Count(text, ":71A:"), "only the first instruction has a charge bearer line")
	secondBlock := text[strings.Index(text, ":21:INSTR-002"):]
	assert.NotContains(t, secondBlock, ":71A:")

	chargeFindings := findingsFor(findings, ":71A:")
	require.Len(t, chargeFindings, 1)
	assert.Equal(t, types.SeverityError, chargeFindings[0].Severity)
	assert.Equal(t, 2, chargeFindings[0].Instruction)
	assert.Contains(t, chargeFindings[0].Message, "missing")
}

func TestGenerateChargeBearerTranslation(t *testing.T) {
	table := map[string]string{
		"DEBT": "OUR",
		"CRED": "BEN",
		"SHAR": "SHA",
		"SLEV": "SHA",
		"OUR":  "OUR",
		"BEN":  "BEN",
		"SHA":  "SHA",
	}

	for input, want := range table {
		t.Run(input, func(t *testing.T) {
			msg := sampleMessage()
			msg.PaymentInstructions[0].ChargeBearer = input

			text, findings := GenerateWithOptions(msg, testOptions())
			assert.Contains(t, text, "\n:71A:"+want+"\n")
			assert.Empty(t, findingsFor(findings, ":71A:"))
		})
	}

	t.Run("unknown code", func(t *testing.T) {
		msg := sampleMessage()
		msg.PaymentInstructions[0].ChargeBearer = "FREE"

		text, findings := GenerateWithOptions(msg, testOptions())
		assert.NotContains(t, text, ":71A:")

		chargeFindings := findingsFor(findings, ":71A:")
		require.Len(t, chargeFindings, 1)
		assert.True(t, chargeFindings[0].IsError())
		assert.Contains(t, chargeFindings[0].Message, "unknown code")
	})
}

func TestGenerateBasicHeaderBIC(t *testing.T) {
	tests := []struct {
		name        string
		bic         string
		wantHeader  string
		wantFinding types.Severity
	}{
		{name: "bic8 padded", bic: "BANKFRPP", wantHeader: "{1:F01BANKFRPPXXX1234567890}"},
		{name: "bic11 unchanged", bic: "BANKFRPPABC", wantHeader: "{1:F01BANKFRPPABC1234567890}"},
		{name: "long bic truncated", bic: "BANKFRPPABCDEF", wantHeader: "{1:F01BANKFRPPABC1234567890}", wantFinding: types.SeverityWarning},
		{name: "absent bic omitted", bic: "", wantHeader: "{1:F011234567890}", wantFinding: types.SeverityError},
		{name: "short bic omitted", bic: "BANKFR", wantHeader: "{1:F011234567890}", wantFinding: types.SeverityError},
		{name: "ten character bic omitted", bic: "BANKFRPPAB", wantHeader: "{1:F011234567890}", wantFinding: types.SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := sampleMessage()
			msg.DebtorBIC = tt.bic
			msg.PaymentInstructions[0].DebtorBIC = tt.bic

			text, findings := GenerateWithOptions(msg, testOptions())
			assert.Equal(t, tt.wantHeader, strings.SplitN(text, "\n", 2)[0])

			headerFindings := findingsFor(findings, "{1:")
			if tt.wantFinding == "" {
				assert.Empty(t, headerFindings)
				return
			}
			require.Len(t, headerFindings, 1)
			assert.Equal(t, tt.wantFinding, headerFindings[0].Severity)
		})
	}
}

func TestGenerateBasicHeaderPrefersInstructionDebtorBIC(t *testing.T) {
	msg := sampleMessage()
	msg.DebtorBIC = "HEADERBIC"
	msg.PaymentInstructions[0].DebtorBIC = "INSTRBIC"

	text, _ := GenerateWithOptions(msg, testOptions())
	assert.True(t, strings.HasPrefix(text, "{1:F01INSTRBICXXX1234567890}"))

	msg.PaymentInstructions[0].DebtorBIC = ""
	msg.DebtorBIC = "HEADBANK"
	text, _ = GenerateWithOptions(msg, testOptions())
	assert.True(t, strings.HasPrefix(text, "{1:F01HEADBANKXXX1234567890}"))
}

func TestGenerateApplicationHeader(t *testing.T) {
	tests := []struct {
		name        string
		creditorBIC string
		debtorBIC   string
		priority    string
		want        string
	}{
		{name: "creditor agent first", creditorBIC: "BANKDEFFXXX", debtorBIC: "BANKFRPP", want: "{2:I101BANKDEFFN}"},
		{name: "debtor agent fallback", debtorBIC: "BANKFRPPXXX", want: "{2:I101BANKFRPPN}"},
		{name: "configured receiver", want: "{2:I101BMCEMAMCN}"},
		{name: "priority first letter", creditorBIC: "BANKDEFF", priority: "urgent", want: "{2:I101BANKDEFFU}"},
		{name: "empty priority", creditorBIC: "BANKDEFF", priority: " ", want: "{2:I101BANKDEFFN}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := sampleMessage()
			msg.DebtorBIC = tt.debtorBIC
			msg.PaymentInstructions[0].DebtorBIC = tt.debtorBIC
			msg.PaymentInstructions[0].CreditorBIC = tt.creditorBIC

			opts := testOptions()
			if tt.priority != "" {
				opts.PrioritySuffix = tt.priority
			}

			text, findings := GenerateWithOptions(msg, opts)
			assert.Contains(t, text, "\n"+tt.want+"\n")
			assert.Empty(t, findingsFor(findings, "{2:"))
		})
	}
}

func TestGenerateUserHeader(t *testing.T) {
	opts := testOptions()
	text, _ := GenerateWithOptions(sampleMessage(), opts)
	assert.Contains(t, text, "{3:{108:REF20250115093000}}")

	opts.IncludeUserHeader = false
	text, _ = GenerateWithOptions(sampleMessage(), opts)
	assert.NotContains(t, text, "{3:")
	assert.Contains(t, text, "{2:I101BANKDEFFN}\n{4:")
}

func TestGenerateAmountFormatting(t *testing.T) {
	msg := sampleMessage()
	msg.PaymentInstructions[0].Amount = "1234.56"
	msg.PaymentInstructions[0].Currency = "EUR"

	text, findings := GenerateWithOptions(msg, testOptions())
	assert.Contains(t, text, ":32B:EUR1234,56")
	assert.Empty(t, findings)
}

func TestGenerateCurrencyAndAmountFindings(t *testing.T) {
	tests := []struct {
		name         string
		currency     string
		amount       string
		wantFindings int
	}{
		{name: "both missing", wantFindings: 2},
		{name: "currency missing", amount: "10.00", wantFindings: 1},
		{name: "amount missing", currency: "EUR", wantFindings: 1},
		{name: "bad currency", currency: "EURO", amount: "10.00", wantFindings: 1},
		{name: "negative amount", currency: "EUR", amount: "-10.00", wantFindings: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := sampleMessage()
			msg.PaymentInstructions[0].Currency = tt.currency
			msg.PaymentInstructions[0].Amount = tt.amount

			text, findings := GenerateWithOptions(msg, testOptions())
			assert.NotContains(t, text, ":32B:")

			amountFindings := findingsFor(findings, ":32B:")
			assert.Len(t, amountFindings, tt.wantFindings)
			for _, f := range amountFindings {
				assert.True(t, f.IsError())
				assert.Equal(t, 1, f.Instruction)
			}
		})
	}
}

func TestGenerateZeroAmountWarns(t *testing.T) {
	msg := sampleMessage()
	msg.PaymentInstructions[0].Amount = "0.00"

	text, findings := GenerateWithOptions(msg, testOptions())
	assert.Contains(t, text, ":32B:EUR0,00")
	require.Len(t, findings, 1)
	assert.Equal(t, types.SeverityWarning, findings[0].Severity)
}

func TestGenerateMandatoryFieldsOmitted(t *testing.T) {
	msg := sampleMessage()
	msg.MessageID = ""
	msg.RequestedExecutionDate = "15/01/2025"
	msg.PaymentInstructions[0].InstructionID = ""
	msg.PaymentInstructions[0].CreditorName = ""
	msg.PaymentInstructions[0].DebtorName = ""
	msg.PaymentInstructions[0].RemittanceInfo = ""

	text, findings := GenerateWithOptions(msg, testOptions())

	for _, tag := range []string{":20:", ":30:", ":21:", ":59:", ":50K:", ":70:"} {
		assert.NotContains(t, text, tag)
	}
	for _, tag := range []string{":20:", ":30:", ":21:", ":59:"} {
		tagFindings := findingsFor(findings, tag)
		require.Len(t, tagFindings, 1, tag)
		assert.True(t, tagFindings[0].IsError(), tag)
	}
	assert.Empty(t, findingsFor(findings, ":50K:"), "debtor name is optional")
	assert.Empty(t, findingsFor(findings, ":70:"), "remittance info is optional")
}

func TestGenerateLongReferencesWarn(t *testing.T) {
	msg := sampleMessage()
	msg.MessageID = "MESSAGE-ID-LONGER-THAN-16"
	msg.PaymentInstructions[0].InstructionID = "INSTRUCTION-0000001"

	text, findings := GenerateWithOptions(msg, testOptions())
	assert.Contains(t, text, ":20:MESSAGE-ID-LONGER-THAN-16")
	assert.Contains(t, text, ":21:INSTRUCTION-0000001")

	errs, warnings := types.CountBySeverity(findings)
	assert.Equal(t, 0, errs)
	assert.Equal(t, 2, warnings)
}

func TestGenerateEmptyInstructions(t *testing.T) {
	msg := sampleMessage()
	msg.PaymentInstructions = nil

	text, findings := GenerateWithOptions(msg, testOptions())

	assert.True(t, strings.HasSuffix(text, "{4:\n:20:MSG001\n:28D:1/1\n:30:20250115\n-}"))
	assert.NotContains(t, text, ":21:")

	blockFindings := findingsFor(findings, "{4:")
	require.Len(t, blockFindings, 1)
	assert.True(t, blockFindings[0].IsError())
	assert.Equal(t, "no payment instructions", blockFindings[0].Message)
}

func TestGenerateDefaults(t *testing.T) {
	text, _ := Generate(sampleMessage())

	assert.True(t, strings.HasPrefix(text, "{1:F01BANKFRPPXXX1234567890}\n{2:I101BANKDEFFN}\n{3:{108:REF"))

	text, _ = GenerateWithOptions(nil, GenerateOptions{})
	assert.True(t, strings.HasPrefix(text, "{1:F011234567890}"))
}

func TestGenerateFreeTextOnSingleLine(t *testing.T) {
	msg := sampleMessage()
	msg.PaymentInstructions[0].CreditorName = "Widget\n  GmbH\r\n"
	msg.PaymentInstructions[0].RemittanceInfo = "Invoice\t2025-001\nand 2025-002"

	text, findings := GenerateWithOptions(msg, testOptions())

	assert.Empty(t, findings)
	assert.Contains(t, text, "\n:59:Widget GmbH\n")
	assert.Contains(t, text, "\n:70:Invoice 2025-001 and 2025-002\n")
}

func TestGenerateRejectsInjectedStructure(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.PaymentInstruction)
		tag    string
	}{
		{
			name:   "field tag in remittance information",
			mutate: func(i *types.PaymentInstruction) { i.RemittanceInfo = "Invoice\n:32B:EUR999999,00\n" },
			tag:    ":70:",
		},
		{
			name:   "block terminator in beneficiary name",
			mutate: func(i *types.PaymentInstruction) { i.CreditorName = "Widget GmbH\n-}" },
			tag:    ":59:",
		},
		{
			name:   "block opener in ordering customer name",
			mutate: func(i *types.PaymentInstruction) { i.DebtorName = "ACME {5:{CHK:0}}" },
			tag:    ":50K:",
		},
		{
			name:   "field tag in instruction reference",
			mutate: func(i *types.PaymentInstruction) { i.InstructionID = "X:71A:OUR" },
			tag:    ":21:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := sampleMessage()
			tt.mutate(&msg.PaymentInstructions[0])

			text, findings := GenerateWithOptions(msg, testOptions())

			assert.NotContains(t, text, "\n"+tt.tag)
			assert.Equal(t, 1, strings.Count(text, ":32B:"))
			assert.Equal(t, 1, strings.Count(text, "-}"))
			assert.True(t, strings.HasSuffix(text, "-}"))

			tagFindings := findingsFor(findings, tt.tag)
			require.Len(t, tagFindings, 1)
			assert.True(t, tagFindings[0].IsError())
			assert.Contains(t, tagFindings[0].Message, ErrControlSequence.Error())
		})
	}
}
