package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUserNote(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		valid   bool
		message string
	}{
		{"plain text", "今日は天気が良かった", true, ""},
		{"surrounded by whitespace", "  散歩した  ", true, ""},
		{"single char", "a", true, ""},
		{"internal whitespace", "雨 の 日", true, ""},
		{"empty", "", false, MsgUserNoteEmpty},
		{"spaces only", "   ", false, MsgUserNoteEmpty},
		{"newlines and tabs", "\n\t \n", false, MsgUserNoteEmpty},
		{"full-width space", "　　", false, MsgUserNoteEmpty},
		{"nil", nil, false, MsgUserNoteNotString},
		{"number", 42.0, false, MsgUserNoteNotString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateUserNote(tt.input)
			assert.Equal(t, tt.valid, got.IsValid)
			assert.Equal(t, tt.message, got.Error)
		})
	}
}

func TestValidateDate(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		valid   bool
		message string
	}{
		{"valid", "2025-10-20", true, ""},
		{"leap day", "2024-02-29", true, ""},
		{"far past", "1001-01-01", true, ""},
		{"far future", "9999-12-31", true, ""},
		{"impossible feb 30", "2025-02-30", false, MsgDateInvalid},
		{"non-leap feb 29", "2025-02-29", false, MsgDateInvalid},
		{"month 13", "2025-13-01", false, MsgDateInvalid},
		{"day zero", "2025-10-00", false, MsgDateInvalid},
		{"slashes", "2025/10/20", false, MsgDateFormat},
		{"short year", "25-10-20", false, MsgDateFormat},
		{"single digit month", "2025-1-20", false, MsgDateFormat},
		{"with time", "2025-10-20T00:00:00Z", false, MsgDateFormat},
		{"words", "yesterday", false, MsgDateFormat},
		{"empty", "", false, MsgDateRequired},
		{"nil", nil, false, MsgDateRequired},
		{"number", 20251020.0, false, MsgDateRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateDate(tt.input)
			assert.Equal(t, tt.valid, got.IsValid)
			assert.Equal(t, tt.message, got.Error)
		})
	}
}

func TestValidateDiaryContent(t *testing.T) {
	assert.True(t, ValidateDiaryContent("本文").IsValid)
	assert.Equal(t, MsgContentEmpty, ValidateDiaryContent(" \n").Error)
	assert.Equal(t, MsgContentNotString, ValidateDiaryContent(1).Error)
}

func TestValidators_AreIdempotent(t *testing.T) {
	inputs := []any{"2025-10-20", "2025-02-30", "bad", "", nil, "  note  "}
	for _, in := range inputs {
		assert.Equal(t, ValidateDate(in), ValidateDate(in))
		assert.Equal(t, ValidateUserNote(in), ValidateUserNote(in))
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-10-20")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.October, 20, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, "2025-10-20", got.Format(DateLayout))

	_, err = ParseDate("2025-02-30")
	assert.EqualError(t, err, MsgDateInvalid)
}
