// =============================================================================
// MX to MT101 Converter - Codec
// =============================================================================
//
// The pure conversion core: pain.001 text in, MT101 text and findings out.
// No files are touched, so the same codec serves the batch runner, the
// 'convert' command and the tests.
//
// PIPELINE:
//   1. Parse the pain.001 document into a SourceMessage
//   2. Generate the MT101 blocks, recording generation findings
//   3. Validate the rendered text structurally
//
// =============================================================================

package converter

import (
	"fmt"

	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/mtwriter"
	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/types"
	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/validation"
	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/xmlparser"
)

// Codec runs parse, generate and validate over one pain.001 document.
// It holds no mutable state and is safe for concurrent use.
type Codec struct {
	options mtwriter.GenerateOptions
}

// NewCodec returns a codec that renders with options.
func NewCodec(options mtwriter.GenerateOptions) *Codec {
	return &Codec{options: options}
}

// Convert converts pain.001 text to MT101.
//
// An ingestion failure sets Err and leaves RenderedText empty. Otherwise
// the rendered text is always returned, with generation findings followed
// by structural findings. Success requires a structurally valid message
// and no error finding from generation.
func (c *Codec) Convert(xmlText string) types.ConversionOutcome {
	msg, err := xmlparser.Parse(xmlText)
	if err != nil {
		return types.ConversionOutcome{Err: fmt.Errorf("failed to parse pain.001: %w", err)}
	}

	text, findings := mtwriter.GenerateWithOptions(msg, c.options)
	generationOK := !types.HasErrors(findings)

	valid, structural := validation.ValidateMT101(text)
	findings = append(findings, structural...)

	return types.ConversionOutcome{
		Success:      valid && generationOK,
		RenderedText: text,
		Findings:     findings,
		Message:      msg,
	}
}
