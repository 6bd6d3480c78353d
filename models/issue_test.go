package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatIssueID(t *testing.T) {
	day := time.Date(2026, time.March, 7, 15, 4, 5, 0, time.Local)

	assert.Equal(t, "PP-20260307-0001", FormatIssueID(day, 1))
	assert.Equal(t, "PP-20260307-0420", FormatIssueID(day, 420))
	assert.Regexp(t, IssueIDPattern, FormatIssueID(day, 9999))
}

func TestIssueIDPattern(t *testing.T) {
	assert.True(t, IssueIDPattern.MatchString("PP-20251001-0042"))
	assert.False(t, IssueIDPattern.MatchString("PP-2025101-0042"))
	assert.False(t, IssueIDPattern.MatchString("64b7f0c2a1b2c3d4e5f60718"))
}

func TestSeverity_Valid(t *testing.T) {
	assert.True(t, SeverityLow.Valid())
	assert.True(t, SeverityMedium.Valid())
	assert.True(t, SeverityHigh.Valid())
	assert.False(t, Severity("Critical").Valid())
	assert.False(t, Severity("").Valid())
}
