// =============================================================================
// MX to MT101 Converter - pain.001 Pre-check
// =============================================================================
//
// This module runs a quick structural check over raw pain.001 text before the
// codec is invoked. It is a heuristic, not schema validation:
//   1. The document must be well-formed XML
//   2. The expected namespace string must appear in the text
//   3. The literal tags <Document, <CstmrCdtTrfInitn>, <GrpHdr>, <PmtInf>
//      and <CdtTrfTxInf> must appear in the text
//
// All failures are collected into a single PreCheckResult.
//
// =============================================================================

package validation

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// DefaultNamespace is the namespace prefix shared by every pain.001 version.
const DefaultNamespace = "urn:iso:std:iso:20022:tech:xsd:pain.001"

// requiredTags are the literal markers checked by PreCheck.
var requiredTags = []string{
	"<Document",
	"<CstmrCdtTrfInitn>",
	"<GrpHdr>",
	"<PmtInf>",
	"<CdtTrfTxInf>",
}

// PreCheckResult is the outcome of PreCheck.
type PreCheckResult struct {
	// Valid is true when Errors is empty.
	Valid bool

	// Errors holds one message per failed check.
	Errors []string
}

// Error joins the failures into one message.
func (r PreCheckResult) Error() string {
	return strings.Join(r.Errors, "; ")
}

// PreCheck inspects raw pain.001 text.
//
// PARAMETERS:
//   - xmlText: The raw document.
//   - namespace: The namespace string to look for. Empty uses DefaultNamespace.
//
// RETURNS:
//   - The collected result. Checks keep running after a failure.
func PreCheck(xmlText, namespace string) PreCheckResult {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	var errs []string

	if strings.TrimSpace(xmlText) == "" {
		errs = append(errs, "document is empty")
	} else if err := checkWellFormed(xmlText); err != nil {
		errs = append(errs, fmt.Sprintf("document is not well-formed XML: %v", err))
	}

	if !strings.Contains(xmlText, namespace) {
		errs = append(errs, fmt.Sprintf("namespace %s missing or incorrect", namespace))
	}

	for _, tag := range requiredTags {
		if !strings.Contains(xmlText, tag) {
			errs = append(errs, fmt.Sprintf("element %s missing", tag))
		}
	}

	return PreCheckResult{Valid: len(errs) == 0, Errors: errs}
}

// checkWellFormed reads every token of the document.
func checkWellFormed(xmlText string) error {
	decoder := xml.NewDecoder(strings.NewReader(xmlText))
	decoder.CharsetReader = charset.NewReaderLabel

	for {
		_, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
