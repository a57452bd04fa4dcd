package handler

import (
	"errors"
	"strings"
	"time"
)

// dayLayout is the calendar-day form the booking client stores in
// appointment.date (JavaScript's Date.toDateString).
const dayLayout = "Mon Jan 02 2006"

var dayInputs = []string{
	dayLayout,
	"Mon Jan 2 2006",
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"1/2/2006",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

var errBadDate = errors.New("unrecognised date")

// normalizeDay turns the date query parameter into dayLayout. Full
// JavaScript Date strings ("Thu Oct 15 2026 10:00:00 GMT+0600 (...)") are
// reduced to their first four fields.
func normalizeDay(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", nil
	}
	for _, layout := range dayInputs {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dayLayout), nil
		}
	}
	if f := strings.Fields(s); len(f) > 4 {
		if t, err := time.Parse("Mon Jan 2 2006", strings.Join(f[:4], " ")); err == nil {
			return t.Format(dayLayout), nil
		}
	}
	return "", errBadDate
}
