package services

import (
	"time"

	"achievement-wordle/apperrors"
)

// DayKeyLayout is the calendar key format used for every date column.
const DayKeyLayout = "2006-01-02"

// TodayKey returns the UTC calendar key for now.
func TodayKey(now time.Time) string {
	return now.UTC().Format(DayKeyLayout)
}

// ParseDayKey validates a YYYY-MM-DD key and returns midnight UTC of that day.
func ParseDayKey(date string) (time.Time, error) {
	day, err := time.Parse(DayKeyLayout, date)
	if err != nil {
		return time.Time{}, apperrors.Wrap(err, apperrors.CodeInvalidInput, "dates must use the YYYY-MM-DD format")
	}
	return day, nil
}

// PreviousDayKey returns the key of the day before date.
func PreviousDayKey(date string) (string, error) {
	day, err := ParseDayKey(date)
	if err != nil {
		return "", err
	}
	return day.AddDate(0, 0, -1).Format(DayKeyLayout), nil
}
