package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateRange(t *testing.T) {
	min, max := decimal.NewFromInt(1), decimal.NewFromInt(200)

	tests := []struct {
		value   string
		wantErr bool
	}{
		{"0", true},
		{"0.99", true},
		{"1", false},
		{"200", false},
		{"200.01", true},
		{"201", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := ValidateRange(decimal.RequireFromString(tt.value), min, max)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "line one\nline two", SanitizeString("  line one\nline\x00 two\x7f  "))
	assert.Equal(t, "", SanitizeString("\x01\x02"))
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"timesheet.pdf":                "timesheet.pdf",
		"../../etc/passwd":             "passwd",
		`C:\Users\lee\march.xlsx`:      "march.xlsx",
		"..":                           "",
		"":                             "",
		"report\x00.docx":              "report.docx",
		"folder/sub/scan of hours.png": "scan of hours.png",
	}

	for input, want := range tests {
		assert.Equal(t, want, SanitizeFilename(input), "input %q", input)
	}
}
