package domain

import "time"

type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

type Plan string

const (
	PlanFree    Plan = "FREE"
	PlanBasic   Plan = "BASIC"
	PlanPremium Plan = "PREMIUM"
)

// Valid reports whether p is one of the known plans.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanBasic, PlanPremium:
		return true
	}
	return false
}

type KYCStatus string

const (
	KYCStatusNone     KYCStatus = "NONE"
	KYCStatusPending  KYCStatus = "PENDING"
	KYCStatusApproved KYCStatus = "APPROVED"
	KYCStatusRejected KYCStatus = "REJECTED"
)

// User is the profile of a marketplace member.
type User struct {
	ID                int32      `json:"id"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	Name              string     `json:"name"`
	Phone             string     `json:"phone"`
	TaxID             string     `json:"tax_id"`
	AvatarURL         string     `json:"avatar_url"`
	City              string     `json:"city"`
	Latitude          *float64   `json:"latitude,omitempty"`
	Longitude         *float64   `json:"longitude,omitempty"`
	Role              UserRole   `json:"role"`
	Plan              Plan       `json:"plan"`
	PlanExpiresOn     *time.Time `json:"plan_expires_on,omitempty"`
	KYCStatus         KYCStatus  `json:"kyc_status"`
	TrustScore        int32      `json:"trust_score"`
	CompletedRentals  int32      `json:"completed_rentals"`
	TotalTransactions int32      `json:"total_transactions"`
	PushToken         string     `json:"-"`
	CreatedOn         time.Time  `json:"created_on"`
	UpdatedOn         time.Time  `json:"updated_on"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// EffectivePlan is the plan used for gating. An expired paid plan gates as Free
// but nothing the user already owns is touched.
func (u *User) EffectivePlan(now time.Time) Plan {
	if u.Plan == PlanFree || u.Plan == "" {
		return PlanFree
	}
	if u.PlanExpiresOn != nil && u.PlanExpiresOn.Before(now) {
		return PlanFree
	}
	return u.Plan
}

// Location returns the user's saved coordinates, if any.
func (u *User) Location() *GeoPoint {
	if u.Latitude == nil || u.Longitude == nil {
		return nil
	}
	return &GeoPoint{Lat: *u.Latitude, Lng: *u.Longitude}
}
