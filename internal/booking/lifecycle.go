package booking

import (
	"errors"
	"fmt"

	"bora-alugar-backend/internal/domain"
)

var (
	ErrInvalidTransition = errors.New("invalid rental status transition")
	ErrNotAllowed        = errors.New("actor may not perform this transition")
)

// Actor is the capacity in which a user acts on a rental.
type Actor string

const (
	ActorRenter Actor = "RENTER"
	ActorOwner  Actor = "OWNER"
	ActorAdmin  Actor = "ADMIN"
)

// ActorFor resolves the capacity of userID on r. Admins acting on rentals they
// are not party to act as ActorAdmin; an empty result means no standing.
func ActorFor(r *domain.Rental, userID int32, isAdmin bool) Actor {
	switch {
	case r.OwnerID == userID:
		return ActorOwner
	case r.RenterID == userID:
		return ActorRenter
	case isAdmin:
		return ActorAdmin
	}
	return ""
}

type actorSet map[Actor]struct{}

func actors(a ...Actor) actorSet {
	s := make(actorSet, len(a)+1)
	for _, x := range a {
		s[x] = struct{}{}
	}
	// Admins may do anything the owner may.
	if _, ok := s[ActorOwner]; ok {
		s[ActorAdmin] = struct{}{}
	}
	return s
}

// transitions is the only place rental status changes are defined.
var transitions = map[domain.RentalStatus]map[domain.RentalStatus]actorSet{
	domain.RentalStatusPending: {
		domain.RentalStatusConfirmed: actors(ActorOwner),
		domain.RentalStatusCancelled: actors(ActorOwner, ActorRenter),
	},
	domain.RentalStatusConfirmed: {
		domain.RentalStatusShipped:   actors(ActorOwner),
		domain.RentalStatusActive:    actors(ActorOwner),
		domain.RentalStatusCancelled: actors(ActorOwner, ActorRenter),
	},
	domain.RentalStatusShipped: {
		domain.RentalStatusDelivered: actors(ActorOwner, ActorRenter),
	},
	domain.RentalStatusDelivered: {
		domain.RentalStatusActive: actors(ActorOwner),
	},
	domain.RentalStatusActive: {
		domain.RentalStatusCompleted: actors(ActorOwner),
	},
	domain.RentalStatusCompleted: {},
	domain.RentalStatusCancelled: {},
}

// CanTransition reports whether from -> to is an edge of the state machine,
// regardless of who performs it.
func CanTransition(from, to domain.RentalStatus) bool {
	_, ok := transitions[from][to]
	return ok
}

// Allowed reports whether actor may move a rental from -> to.
func Allowed(from, to domain.RentalStatus, actor Actor) bool {
	set, ok := transitions[from][to]
	if !ok {
		return false
	}
	_, ok = set[actor]
	return ok
}

// Next lists the statuses actor may move a rental to from its current status.
func Next(from domain.RentalStatus, actor Actor) []domain.RentalStatus {
	var out []domain.RentalStatus
	for _, to := range order {
		if Allowed(from, to, actor) {
			out = append(out, to)
		}
	}
	return out
}

var order = []domain.RentalStatus{
	domain.RentalStatusPending,
	domain.RentalStatusConfirmed,
	domain.RentalStatusShipped,
	domain.RentalStatusDelivered,
	domain.RentalStatusActive,
	domain.RentalStatusCompleted,
	domain.RentalStatusCancelled,
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status domain.RentalStatus) bool {
	return len(transitions[status]) == 0
}

// Transition validates the move and returns the status the rental had before it.
// The rental is mutated only when the move is allowed.
func Transition(r *domain.Rental, to domain.RentalStatus, actor Actor) (domain.RentalStatus, error) {
	from := r.Status
	if !CanTransition(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if !Allowed(from, to, actor) {
		return from, fmt.Errorf("%w: %s cannot move %s -> %s", ErrNotAllowed, actor, from, to)
	}
	r.Status = to
	return from, nil
}
