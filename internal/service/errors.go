package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"bora-alugar-backend/internal/booking"
	"bora-alugar-backend/internal/domain"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrForbidden          = errors.New("not allowed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid token")

	ErrItemNotRentable     = errors.New("item is not available for rent")
	ErrSelfRental          = errors.New("owners cannot rent their own items")
	ErrContractRequired    = errors.New("rental contract must be accepted")
	ErrDeliveryUnavailable = errors.New("item does not offer delivery")
	ErrUnavailable         = errors.New("item is already booked for these dates")
	ErrInvalidTransition   = booking.ErrInvalidTransition

	ErrKYCRequired      = errors.New("identity verification required for this listing price")
	ErrKYCAlreadyFiled  = errors.New("identity verification already pending or approved")
	ErrPlanLimitReached = errors.New("listing limit reached for current plan")

	ErrReviewNotAllowed = errors.New("only completed rentals can be reviewed")
	ErrAlreadyReviewed  = errors.New("rental already reviewed by this party")
)

// ValidationError carries per-field messages. It matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// validation collects field errors; err returns nil when nothing was added
type validation map[string]string

func (v validation) check(ok bool, field, msg string) {
	if !ok {
		if _, exists := v[field]; !exists {
			v[field] = msg
		}
	}
}

func (v validation) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Fields: v}
}

func invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// PlanLimitError tells the client which plan would let them publish again.
type PlanLimitError struct {
	Plan      domain.Plan
	Limit     int
	UpgradeTo domain.Plan
}

func (e *PlanLimitError) Error() string {
	if e.UpgradeTo == "" {
		return fmt.Sprintf("%s: %s allows %d listings", ErrPlanLimitReached, e.Plan, e.Limit)
	}
	return fmt.Sprintf("%s: %s allows %d listings, upgrade to %s", ErrPlanLimitReached, e.Plan, e.Limit, e.UpgradeTo)
}

func (e *PlanLimitError) Unwrap() error {
	return ErrPlanLimitReached
}
