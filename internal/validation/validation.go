// Package validation holds the pure input checks for the generation endpoint.
package validation

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

const (
	MsgUserNoteNotString = "入力内容は文字列である必要があります"
	MsgUserNoteEmpty     = "入力内容は1文字以上である必要があります"
	MsgDateRequired      = "日付は必須です"
	MsgDateFormat        = "日付はYYYY-MM-DD形式である必要があります"
	MsgDateInvalid       = "有効な日付を指定してください"
	MsgContentNotString  = "日記内容は文字列である必要があります"
	MsgContentEmpty      = "日記内容は1文字以上である必要があります"
)

var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type Result struct {
	IsValid bool
	Error   string
}

func valid() Result             { return Result{IsValid: true} }
func invalid(msg string) Result { return Result{Error: msg} }

// Err converts an invalid result into an error carrying the validator message.
func (r Result) Err() error {
	if r.IsValid {
		return nil
	}
	return errors.New(r.Error)
}

func ValidateUserNote(input any) Result {
	s, ok := input.(string)
	if !ok {
		return invalid(MsgUserNoteNotString)
	}
	if strings.TrimSpace(s) == "" {
		return invalid(MsgUserNoteEmpty)
	}
	return valid()
}

func ValidateDiaryContent(input any) Result {
	s, ok := input.(string)
	if !ok {
		return invalid(MsgContentNotString)
	}
	if strings.TrimSpace(s) == "" {
		return invalid(MsgContentEmpty)
	}
	return valid()
}

// ValidateDate accepts any YYYY-MM-DD string whose components survive a round
// trip through a calendar date. There is no range restriction.
func ValidateDate(input any) Result {
	s, ok := input.(string)
	if !ok || s == "" {
		return invalid(MsgDateRequired)
	}
	if !dateRegex.MatchString(s) {
		return invalid(MsgDateFormat)
	}

	year, _ := strconv.Atoi(s[0:4])
	month, _ := strconv.Atoi(s[5:7])
	day, _ := strconv.Atoi(s[8:10])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return invalid(MsgDateInvalid)
	}
	return valid()
}

// ParseDate returns UTC midnight of a date that passed ValidateDate.
func ParseDate(s string) (time.Time, error) {
	if r := ValidateDate(s); !r.IsValid {
		return time.Time{}, r.Err()
	}
	return time.Date(
		mustAtoi(s[0:4]), time.Month(mustAtoi(s[5:7])), mustAtoi(s[8:10]),
		0, 0, 0, 0, time.UTC,
	), nil
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
