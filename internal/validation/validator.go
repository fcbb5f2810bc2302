// =============================================================================
// MX to MT101 Converter - Structural Validator
// =============================================================================
//
// This module re-checks a rendered MT101 message for the presence of the
// mandatory blocks and tags. It works on the text alone and does not see the
// generator's findings, so a tag dropped without a finding is still caught.
//
// CHECKS:
//   Blocks: {1: {2: {4:
//   Tags:   :20: :28D: :30: :21: :32B: :59: :71A:
//
// Every missing element produces its own error finding. The message is
// valid only when every check passes.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/types"
)

// =============================================================================
// MANDATORY ELEMENTS
// =============================================================================

// requiredElement is a marker that must appear in a rendered MT101.
type requiredElement struct {
	Marker      string
	Description string
}

// requiredElements lists the checks in the order they are reported.
var requiredElements = []requiredElement{
	{Marker: "{1:", Description: "Basic Header block"},
	{Marker: "{2:", Description: "Application Header block"},
	{Marker: "{4:", Description: "Text block"},
	{Marker: ":20:", Description: "Transaction Reference"},
	{Marker: ":28D:", Description: "Message Index/Total"},
	{Marker: ":30:", Description: "Requested Execution Date"},
	{Marker: ":21:", Description: "Transaction Reference per transaction"},
	{Marker: ":32B:", Description: "Currency/Amount"},
	{Marker: ":59:", Description: "Beneficiary Customer"},
	{Marker: ":71A:", Description: "Details of Charges"},
}

// =============================================================================
// VALIDATION FUNCTIONS
// =============================================================================

// ValidateMT101 checks that the rendered text contains every mandatory
// block and tag.
//
// PARAMETERS:
//   - text: The rendered MT101 message.
//
// RETURNS:
//   - true if every check passed.
//   - One error finding per missing element.
func ValidateMT101(text string) (bool, []types.Finding) {
	var findings []types.Finding

	for _, e := range requiredElements {
		if strings.Contains(text, e.Marker) {
			continue
		}
		findings = append(findings, types.Finding{
			FieldTag: e.Marker,
			Message:  fmt.Sprintf("%s (%s) missing", e.Marker, e.Description),
			Severity: types.SeverityError,
		})
	}

	return len(findings) == 0, findings
}

// =============================================================================
// FORMATTING
// =============================================================================

// FormatFindings formats findings for display or logging.
//
// PARAMETERS:
//   - findings: The findings to format.
//
// RETURNS:
//   - A numbered list preceded by an error/warning summary line.
func FormatFindings(findings []types.Finding) string {
	if len(findings) == 0 {
		return "No findings."
	}

	errs, warnings := types.CountBySeverity(findings)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Conversion produced %d error(s) and %d warning(s):\n\n", errs, warnings))

	for i, f := range findings {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, f.String()))
	}

	return builder.String()
}
