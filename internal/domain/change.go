package domain

// Collection names used for change events pushed to realtime subscribers.
const (
	CollectionItems         = "items"
	CollectionRentals       = "rentals"
	CollectionMessages      = "messages"
	CollectionNotifications = "notifications"
	CollectionReviews       = "reviews"
	CollectionProfiles      = "profiles"
)

type ChangeOp string

const (
	ChangeInsert ChangeOp = "INSERT"
	ChangeUpdate ChangeOp = "UPDATE"
	ChangeDelete ChangeOp = "DELETE"
)

// ChangeEvent identifies one mutated entity. Audience limits delivery to the
// listed users; an empty audience means the event is public.
type ChangeEvent struct {
	Collection string   `json:"collection"`
	Op         ChangeOp `json:"op"`
	ID         int32    `json:"id"`
	Audience   []int32  `json:"audience,omitempty"`
}

// VisibleTo reports whether the event may be delivered to the user.
func (e ChangeEvent) VisibleTo(userID int32) bool {
	if len(e.Audience) == 0 {
		return true
	}
	for _, id := range e.Audience {
		if id == userID {
			return true
		}
	}
	return false
}
