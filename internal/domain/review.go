package domain

import "time"

type ReviewerRole string

const (
	ReviewerRoleRenter ReviewerRole = "RENTER"
	ReviewerRoleOwner  ReviewerRole = "OWNER"
)

// Review is one party's rating of the other after a completed rental.
// At most one review exists per (rental, reviewer role).
type Review struct {
	ID           int32        `json:"id"`
	RentalID     int32        `json:"rental_id"`
	ItemID       int32        `json:"item_id"`
	ReviewerID   int32        `json:"reviewer_id"`
	ReviewedID   int32        `json:"reviewed_id"`
	ReviewerRole ReviewerRole `json:"reviewer_role"`
	Rating       int32        `json:"rating"`
	Comment      string       `json:"comment"`
	CreatedOn    time.Time    `json:"created_on"`
}
