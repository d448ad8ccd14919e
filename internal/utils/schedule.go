package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"debtledger-backend/internal/domain"
)

// Date represents a calendar date
type Date struct {
	Year  int
	Month int
	Day   int
}

// ParseDate converts a yyyy-mm-dd formatted string into a Date struct
func ParseDate(dateStr string) (Date, error) {
	parts := strings.Split(dateStr, "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd")
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Date{}, fmt.Errorf("invalid year: %v", err)
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return Date{}, fmt.Errorf("invalid month: %v", err)
	}

	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return Date{}, fmt.Errorf("invalid day: %v", err)
	}

	if month < 1 || month > 12 {
		return Date{}, fmt.Errorf("month must be between 1 and 12")
	}

	if day < 1 || day > DaysInMonth(year, month) {
		return Date{}, fmt.Errorf("day must be between 1 and %d", DaysInMonth(year, month))
	}

	return Date{Year: year, Month: month, Day: day}, nil
}

// String renders the date back to yyyy-mm-dd.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Weekday returns the day of the week for the date (Sunday = 0).
func (d Date) Weekday() int {
	return int(time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC).Weekday())
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// DaysInMonth returns the number of days in a given month
func DaysInMonth(year, month int) int {
	if month == 2 {
		// Check for leap year
		if (year%4 == 0 && year%100 != 0) || (year%400 == 0) {
			return 29
		}
		return 28
	}

	// Months with 30 days: April, June, September, November
	if month == 4 || month == 6 || month == 9 || month == 11 {
		return 30
	}

	// All other months have 31 days
	return 31
}

// GenerateSchedule produces the due dates for an installment plan: exactly
// termCount dates, strictly increasing, computed purely from the inputs so
// the same plan always regenerates the same sequence.
//
// MONTHLY plans fall due on the selector day (1-28) of each month; the first
// due date lands in the start month unless the start day has already passed
// the selector, in which case it moves to the month after. WEEKLY plans fall
// due on the selector weekday (Sunday = 0), starting with the first
// occurrence on or after the start date, then every 7 days.
func GenerateSchedule(startDate string, frequency domain.Frequency, selector, termCount int) ([]string, error) {
	if termCount <= 0 {
		return nil, domain.Validationf("term count must be positive, got %d", termCount)
	}

	start, err := ParseDate(startDate)
	if err != nil {
		return nil, domain.Validationf("invalid start date %q: %v", startDate, err)
	}

	dueDates := make([]string, 0, termCount)

	switch frequency {
	case domain.FrequencyWeekly:
		if selector < 0 || selector > 6 {
			return nil, domain.Validationf("weekday selector must be between 0 and 6, got %d", selector)
		}
		due := start.AddDays((selector - start.Weekday() + 7) % 7)
		for i := 0; i < termCount; i++ {
			dueDates = append(dueDates, due.String())
			due = due.AddDays(7)
		}

	case domain.FrequencyMonthly:
		if selector < 1 || selector > 28 {
			return nil, domain.Validationf("day-of-month selector must be between 1 and 28, got %d", selector)
		}
		year, month := start.Year, start.Month
		if start.Day > selector {
			year, month = nextMonth(year, month)
		}
		for i := 0; i < termCount; i++ {
			day := selector
			if dim := DaysInMonth(year, month); day > dim {
				day = dim
			}
			dueDates = append(dueDates, Date{Year: year, Month: month, Day: day}.String())
			year, month = nextMonth(year, month)
		}

	default:
		return nil, domain.Validationf("frequency must be %s or %s, got %q",
			domain.FrequencyWeekly, domain.FrequencyMonthly, frequency)
	}

	return dueDates, nil
}

func nextMonth(year, month int) (int, int) {
	if month == 12 {
		return year + 1, 1
	}
	return year, month + 1
}
