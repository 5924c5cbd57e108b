// Package booking holds the pure rental rules: date-range availability and the
// rental status state machine. Nothing here touches storage.
package booking

import (
	"time"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/utils"
)

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange truncates both ends to whole UTC dates.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: utils.TruncateToDate(start), End: utils.TruncateToDate(end)}
}

// Valid reports whether Start is not after End.
func (r DateRange) Valid() bool {
	return !r.Start.After(r.End)
}

// Overlaps is the inclusive interval test: a.start <= b.end && a.end >= b.start.
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.Start.After(o.End) && !r.End.Before(o.Start)
}

// Blocks reports whether a rental holds its dates. Cancelled rentals never do.
func Blocks(r *domain.Rental) bool {
	return r.Status != domain.RentalStatusCancelled
}

// Conflicts returns the rentals of itemID that hold dates overlapping want.
func Conflicts(rentals []domain.Rental, itemID int32, want DateRange) []domain.Rental {
	var out []domain.Rental
	for i := range rentals {
		r := &rentals[i]
		if r.ItemID != itemID || !Blocks(r) {
			continue
		}
		if want.Overlaps(NewDateRange(r.StartDate, r.EndDate)) {
			out = append(out, *r)
		}
	}
	return out
}

// IsAvailable reports whether no non-cancelled rental of itemID overlaps want.
// want is not validated; an inverted range overlaps nothing.
func IsAvailable(rentals []domain.Rental, itemID int32, want DateRange) bool {
	return len(Conflicts(rentals, itemID, want)) == 0
}
