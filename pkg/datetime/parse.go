// Package datetime provides date and time utility functions.
package datetime

import (
	"time"

	"github.com/iwvelando/loan-calculator/pkg/constants"
)

const (
	// DateTimeLayout is the format expected for scenario start dates and is
	// also the month label format.
	DateTimeLayout = constants.DateTimeLayout
)

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// ValidateMonth checks that date is a YYYY-MM month.
func ValidateMonth(date string) error {
	_, err := time.Parse(DateTimeLayout, date)
	return err
}

// MonthLabels returns the calendar month of each schedule month when the
// first payment falls in startDate. An empty startDate yields nil.
func MonthLabels(startDate string, months int) ([]string, error) {
	if startDate == "" || months <= 0 {
		return nil, nil
	}
	labels := make([]string, months)
	for i := range labels {
		label, err := OffsetDate(startDate, DateTimeLayout, i)
		if err != nil {
			return nil, err
		}
		labels[i] = label
	}
	return labels, nil
}
