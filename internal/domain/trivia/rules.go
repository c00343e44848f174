package trivia

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Row is one CSV record keyed by trimmed header name.
type Row map[string]string

// Field returns the trimmed cell for a header, "" when absent.
func (r Row) Field(key string) string {
	return strings.TrimSpace(r[key])
}

// ParseValue extracts the integer dollar amount from a currency-formatted
// string like "$1,200". Returns nil when no digits remain after stripping.
func ParseValue(raw string) *int {
	var digits strings.Builder
	for _, ch := range raw {
		if unicode.IsDigit(ch) {
			digits.WriteRune(ch)
		}
	}
	if digits.Len() == 0 {
		return nil
	}

	amount, err := strconv.Atoi(digits.String())
	if err != nil {
		return nil
	}
	return &amount
}

func ParseAirDate(raw string) (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, ErrInvalidAirDate
	}
	return parsed, nil
}

// QuestionFromRow maps a CSV row into a validated record. Every field
// except Value is required; callers drop rows that fail here.
func QuestionFromRow(row Row) (Question, error) {
	for _, key := range []string{"Show Number", "Air Date", "Round", "Category", "Question", "Answer"} {
		if row.Field(key) == "" {
			return Question{}, ErrMissingField
		}
	}

	showNumber, err := strconv.Atoi(row.Field("Show Number"))
	if err != nil {
		return Question{}, ErrInvalidShowNumber
	}

	airDate, err := ParseAirDate(row.Field("Air Date"))
	if err != nil {
		return Question{}, err
	}

	round, err := ParseRound(row.Field("Round"))
	if err != nil {
		return Question{}, err
	}

	return Question{
		ShowNumber: showNumber,
		AirDate:    airDate,
		Round:      round,
		Category:   row.Field("Category"),
		Value:      ParseValue(row.Field("Value")),
		Question:   row.Field("Question"),
		Answer:     row.Field("Answer"),
	}, nil
}
