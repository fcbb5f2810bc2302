// =============================================================================
// MX to MT101 Converter - Field Transformation Rules
// =============================================================================
//
// This module holds the field-level rules used when mapping pain.001 values
// into MT101 fields:
//   - Code-set translation (ISO 20022 charge bearer -> MT 71A)
//   - BIC normalization (BIC8 -> BIC11, truncation, BIC8 extraction)
//   - Date normalization (YYYY-MM-DD / YYYYMMDD -> YYYYMMDD)
//   - Amount formatting (decimal point -> decimal comma)
//   - Currency code checks
//
// Every rule returns an error instead of substituting a value. The generator
// turns those errors into findings and omits the field.
//
// =============================================================================

package mtwriter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrMissingValue is returned when the input value is empty.
	ErrMissingValue = errors.New("missing")

	// ErrUnknownChargeBearer is returned for codes outside the translation table.
	ErrUnknownChargeBearer = errors.New("unknown code")

	// ErrInvalidBIC is returned for BICs that cannot be normalized to 11 characters.
	ErrInvalidBIC = errors.New("invalid BIC")

	// ErrInvalidDate is returned for dates that are neither YYYY-MM-DD nor YYYYMMDD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidAmount is returned for amounts that are not plain non-negative decimals.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidCurrency is returned for currency codes that are not three letters.
	ErrInvalidCurrency = errors.New("invalid currency")

	// ErrControlSequence is returned for free text that carries a field tag
	// or a block delimiter.
	ErrControlSequence = errors.New("contains a SWIFT tag or block delimiter")
)

// =============================================================================
// CHARGE BEARER TRANSLATION
// =============================================================================

// chargeBearerTable maps ISO 20022 ChrgBr codes, and MT codes that are
// already translated, to MT101 field 71A codes.
var chargeBearerTable = map[string]string{
	"DEBT": "OUR",
	"CRED": "BEN",
	"SHAR": "SHA",
	"SLEV": "SHA",
	"OUR":  "OUR",
	"BEN":  "BEN",
	"SHA":  "SHA",
}

// TranslateChargeBearer returns the 71A code for a charge bearer code.
// Matching ignores case and surrounding whitespace.
//
// EXAMPLE:
//   Input: "SLEV"
//   Output: "SHA"
func TranslateChargeBearer(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", ErrMissingValue
	}
	translated, ok := chargeBearerTable[code]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownChargeBearer, code)
	}
	return translated, nil
}

// =============================================================================
// BIC NORMALIZATION
// =============================================================================

var bicPattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// NormalizeBIC returns the 11 character form of a BIC.
//
// RULES:
//   - 8 characters: "XXX" branch code is appended
//   - 11 characters: unchanged
//   - more than 11: truncated to 11 (truncated is true)
//   - anything else: ErrInvalidBIC
//
// EXAMPLE:
//   Input: "BANKFRPP"
//   Output: "BANKFRPPXXX"
func NormalizeBIC(bic string) (normalized string, truncated bool, err error) {
	bic = strings.ToUpper(strings.TrimSpace(bic))
	if bic == "" {
		return "", false, ErrMissingValue
	}
	if !bicPattern.MatchString(bic) {
		return "", false, fmt.Errorf("%w %q: unexpected characters", ErrInvalidBIC, bic)
	}

	switch {
	case len(bic) == 8:
		return bic + "XXX", false, nil
	case len(bic) == 11:
		return bic, false, nil
	case len(bic) > 11:
		return bic[:11], true, nil
	default:
		return "", false, fmt.Errorf("%w %q: length %d", ErrInvalidBIC, bic, len(bic))
	}
}

// BIC8 returns the institution part (first 8 characters) of a BIC.
func BIC8(bic string) (string, error) {
	bic = strings.ToUpper(strings.TrimSpace(bic))
	if bic == "" {
		return "", ErrMissingValue
	}
	if len(bic) < 8 || !bicPattern.MatchString(bic) {
		return "", fmt.Errorf("%w %q", ErrInvalidBIC, bic)
	}
	return bic[:8], nil
}

// =============================================================================
// DATE NORMALIZATION
// =============================================================================

var compactDatePattern = regexp.MustCompile(`^\d{8}$`)
var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NormalizeDate converts "YYYY-MM-DD" or "YYYYMMDD" to "YYYYMMDD". The value
// must also be a real calendar date.
func NormalizeDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrMissingValue
	}

	var layout string
	switch {
	case isoDatePattern.MatchString(value):
		layout = "2006-01-02"
	case compactDatePattern.MatchString(value):
		layout = "20060102"
	default:
		return "", fmt.Errorf("%w %q: expected YYYY-MM-DD or YYYYMMDD", ErrInvalidDate, value)
	}

	parsed, err := time.Parse(layout, value)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidDate, value, err)
	}
	return parsed.Format("20060102"), nil
}

// =============================================================================
// AMOUNT AND CURRENCY
// =============================================================================

var amountPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)
var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// maxAmountLength is the MT field length for amounts, decimal comma included.
const maxAmountLength = 15

// FormatAmount rewrites a dot separated decimal amount with the MT decimal
// comma. The digits are kept exactly as written.
//
// EXAMPLE:
//   Input: "1234.56"
//   Output: "1234,56"
func FormatAmount(amount string) (string, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return "", ErrMissingValue
	}
	if !amountPattern.MatchString(amount) {
		return "", fmt.Errorf("%w %q", ErrInvalidAmount, amount)
	}
	if _, err := decimal.NewFromString(amount); err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidAmount, amount, err)
	}
	return strings.Replace(amount, ".", ",", 1), nil
}

// AmountNotes returns advisory notes about an amount that FormatAmount
// accepted: zero values and values longer than the MT field allows.
func AmountNotes(amount string) []string {
	var notes []string

	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil
	}
	if d.IsZero() {
		notes = append(notes, "amount is zero")
	}
	if len(strings.TrimSpace(amount)) > maxAmountLength {
		notes = append(notes, fmt.Sprintf("amount exceeds %d characters", maxAmountLength))
	}
	return notes
}

// FormatCurrency checks an ISO 4217 code and returns it upper-cased.
func FormatCurrency(currency string) (string, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return "", ErrMissingValue
	}
	if !currencyPattern.MatchString(currency) {
		return "", fmt.Errorf("%w %q", ErrInvalidCurrency, currency)
	}
	return currency, nil
}

// =============================================================================
// FREE TEXT
// =============================================================================

// controlSequencePattern matches field tags (:32B:), block openers ({4:)
// and the text block terminator (-}).
var controlSequencePattern = regexp.MustCompile(`:[0-9]{2}[A-Z]?:|\{[0-9A-Z]:|-\}`)

// SingleLine prepares a free text value for a tag line. Runs of whitespace,
// line breaks included, are collapsed to one space. A value that still
// contains a field tag or block delimiter is rejected, as it would be read
// as message structure.
//
// EXAMPLE:
//   "Invoice\n  2025-001" -> "Invoice 2025-001"
//   "Invoice\n:32B:EUR999,00" -> ErrControlSequence
func SingleLine(value string) (string, error) {
	value = strings.Join(strings.Fields(value), " ")
	if value == "" {
		return "", ErrMissingValue
	}
	if controlSequencePattern.MatchString(value) {
		return "", ErrControlSequence
	}
	return value, nil
}
