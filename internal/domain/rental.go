package domain

import "time"

type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "PENDING"
	RentalStatusConfirmed RentalStatus = "CONFIRMED"
	RentalStatusShipped   RentalStatus = "SHIPPED"
	RentalStatusDelivered RentalStatus = "DELIVERED"
	RentalStatusActive    RentalStatus = "ACTIVE"
	RentalStatusCompleted RentalStatus = "COMPLETED"
	RentalStatusCancelled RentalStatus = "CANCELLED"
)

type DeliveryMethod string

const (
	DeliveryMethodPickup   DeliveryMethod = "PICKUP"
	DeliveryMethodDelivery DeliveryMethod = "DELIVERY"
)

// Rental is a booking of one item for an inclusive date range.
// StartDate and EndDate are calendar dates at midnight UTC.
type Rental struct {
	ID               int32          `json:"id"`
	ItemID           int32          `json:"item_id"`
	RenterID         int32          `json:"renter_id"`
	OwnerID          int32          `json:"owner_id"`
	StartDate        time.Time      `json:"start_date"`
	EndDate          time.Time      `json:"end_date"`
	TotalPriceCents  int32          `json:"total_price_cents"`
	DeliveryMethod   DeliveryMethod `json:"delivery_method"`
	DeliveryFeeCents int32          `json:"delivery_fee_cents"`
	DeliveryAddress  string         `json:"delivery_address"`
	ContractAccepted bool           `json:"contract_accepted"`
	Status           RentalStatus   `json:"status"`
	CancelReason     string         `json:"cancel_reason"`
	CancelledBy      *int32         `json:"cancelled_by,omitempty"`
	CreatedOn        time.Time      `json:"created_on"`
	UpdatedOn        time.Time      `json:"updated_on"`
}

// IsParty reports whether the user is the renter or the owner.
func (r *Rental) IsParty(userID int32) bool {
	return r.RenterID == userID || r.OwnerID == userID
}
