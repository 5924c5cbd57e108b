package domain

import "time"

// KYCRequest is a user's identity verification submission.
type KYCRequest struct {
	ID              int32      `json:"id"`
	UserID          int32      `json:"user_id"`
	DocumentKey     string     `json:"document_key"`
	SelfieKey       string     `json:"selfie_key"`
	Status          KYCStatus  `json:"status"`
	ReviewerID      *int32     `json:"reviewer_id,omitempty"`
	RejectionReason string     `json:"rejection_reason"`
	CreatedOn       time.Time  `json:"created_on"`
	ReviewedOn      *time.Time `json:"reviewed_on,omitempty"`
}
