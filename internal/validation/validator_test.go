package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/MX-to-MT101-conversion/internal/types"
)

const completeMT101 = "{1:F01BANKFRPPXXX1234567890}\n" +
	"{2:I101BANKDEFFN}\n" +
	"{3:{108:REF20250115093000}}\n" +
	"{4:\n" +
	":20:MSG001\n" +
	":28D:1/1\n" +
	":30:20250115\n" +
	":21:INSTR-001\n" +
	":32B:EUR100,00\n" +
	":59:Widget GmbH\n" +
	":71A:SHA\n" +
	"-}"

func TestValidateMT101Complete(t *testing.T) {
	valid, findings := ValidateMT101(completeMT101)

	assert.True(t, valid)
	assert.Empty(t, findings)
}

func TestValidateMT101EachMissingElement(t *testing.T) {
	for _, e := range requiredElements {
		marker := e.Marker
		t.Run(marker, func(t *testing.T) {
			text := strings.ReplaceAll(completeMT101, marker, "")

			valid, findings := ValidateMT101(text)

			assert.False(t, valid)
			require.Len(t, findings, 1)
			assert.Equal(t, marker, findings[0].FieldTag)
			assert.Equal(t, types.SeverityError, findings[0].Severity)
			assert.Contains(t, findings[0].Message, marker)
		})
	}
}

func TestValidateMT101Empty(t *testing.T) {
	valid, findings := ValidateMT101("")

	assert.False(t, valid)
	assert.Len(t, findings, len(requiredElements))
}

func TestFormatFindings(t *testing.T) {
	assert.Equal(t, "No findings.", FormatFindings(nil))

	out := FormatFindings([]types.Finding{
		{FieldTag: ":71A:", Message: "charge bearer missing", Severity: types.SeverityError, Instruction: 2},
		{FieldTag: ":20:", Message: "transaction reference exceeds 16 characters", Severity: types.SeverityWarning},
	})

	assert.Contains(t, out, "1 error(s) and 1 warning(s)")
	assert.Contains(t, out, "1. [error] :71A: (transaction 2): charge bearer missing")
	assert.Contains(t, out, "2. [warning] :20: transaction reference exceeds 16 characters")
}
