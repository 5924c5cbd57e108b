package utils

import (
	"fmt"
	"time"

	"bora-alugar-backend/internal/domain"
)

const (
	DateLayout  = "2006-01-02"
	daysPerWeek = 7
)

// DateDifference represents the difference between two dates
type DateDifference struct {
	Months int
	Days   int
}

// RentalCostBreakdown provides detailed cost breakdown
type RentalCostBreakdown struct {
	TotalDays  int
	Months     int
	Weeks      int
	Days       int
	MonthsCost int32
	WeeksCost  int32
	DaysCost   int32
	TotalCost  int32
}

// ParseDate converts a yyyy-mm-dd string into a UTC midnight time
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, dateStr, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected yyyy-mm-dd", dateStr)
	}
	return t, nil
}

// TruncateToDate drops the clock part of t, in UTC
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days in a given month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// InclusiveDays counts calendar days in [start, end]
func InclusiveDays(start, end time.Time) int {
	return int(TruncateToDate(end).Sub(TruncateToDate(start)).Hours()/24) + 1
}

// CalculateDateDifference computes whole calendar months plus leftover days
// between two dates, counting both the start and end date.
func CalculateDateDifference(start, end time.Time) (DateDifference, error) {
	start, end = TruncateToDate(start), TruncateToDate(end)
	if end.Before(start) {
		return DateDifference{}, fmt.Errorf("end date must be >= start date")
	}

	years := end.Year() - start.Year()
	months := int(end.Month()) - int(start.Month())
	days := end.Day() - start.Day() + 1

	if days < 0 {
		months--
		prev := end.AddDate(0, -1, 0)
		days += DaysInMonth(prev.Year(), prev.Month())
	}
	if months < 0 {
		years--
		months += 12
	}
	months += 12 * years

	// A full month ending on the day before the start day reads as N months and 0 days
	if days == DaysInMonth(start.Year(), start.Month()) && start.Day() == 1 {
		months++
		days = 0
	}

	return DateDifference{Months: months, Days: days}, nil
}

// CalculateRentalCost prices an inclusive date range for an item. Week and month
// rates are used only when the owner set them, and the cheapest of the tiered
// price and the plain daily price wins.
func CalculateRentalCost(start, end time.Time, item *domain.Item) (RentalCostBreakdown, error) {
	if item.PricePerDayCents <= 0 {
		return RentalCostBreakdown{}, fmt.Errorf("item %d has no daily price", item.ID)
	}

	diff, err := CalculateDateDifference(start, end)
	if err != nil {
		return RentalCostBreakdown{}, err
	}
	totalDays := InclusiveDays(start, end)

	daily := RentalCostBreakdown{
		TotalDays: totalDays,
		Days:      totalDays,
		DaysCost:  int32(totalDays) * item.PricePerDayCents,
	}
	daily.TotalCost = daily.DaysCost

	tiered := RentalCostBreakdown{TotalDays: totalDays}
	remaining := totalDays
	if item.PricePerMonthCents > 0 && diff.Months > 0 {
		tiered.Months = diff.Months
		tiered.MonthsCost = int32(diff.Months) * item.PricePerMonthCents
		remaining = diff.Days
	}
	if item.PricePerWeekCents > 0 {
		tiered.Weeks = remaining / daysPerWeek
		tiered.WeeksCost = int32(tiered.Weeks) * item.PricePerWeekCents
		remaining = remaining % daysPerWeek
	}
	tiered.Days = remaining
	tiered.DaysCost = int32(remaining) * item.PricePerDayCents
	tiered.TotalCost = tiered.MonthsCost + tiered.WeeksCost + tiered.DaysCost

	if tiered.TotalCost < daily.TotalCost {
		return tiered, nil
	}
	return daily, nil
}
