package repository

import (
	"context"
	"errors"
	"time"

	"bora-alugar-backend/internal/domain"
)

var (
	// ErrNotFound is returned when a row addressed by id does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write loses a race or violates a uniqueness rule.
	ErrConflict = errors.New("conflicting write")
	// ErrOverlap is returned when a rental's dates collide with a non-cancelled rental.
	ErrOverlap = errors.New("dates overlap an existing rental")
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateLocation(ctx context.Context, id int32, point domain.GeoPoint, city string) error
	UpdatePushToken(ctx context.Context, id int32, token string) error
	UpdatePlan(ctx context.Context, id int32, plan domain.Plan, expiresOn *time.Time) error
	UpdateKYCStatus(ctx context.Context, id int32, status domain.KYCStatus) error
	UpdateTrustScore(ctx context.Context, id int32, score int32) error
	IncrementTransactions(ctx context.Context, ids ...int32) error
	List(ctx context.Context, query string, page, pageSize int32) ([]domain.User, int32, error)
	ListIDs(ctx context.Context) ([]int32, error)
	ListExpiredPlans(ctx context.Context, now time.Time) ([]domain.User, error)
}

type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id int32) (*domain.Item, error)
	Update(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, id int32) error
	CountActiveByOwner(ctx context.Context, ownerID int32) (int, error)
	ListByOwner(ctx context.Context, ownerID int32, page, pageSize int32) ([]domain.Item, int32, error)
	Search(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, int32, error)
	UpdateRating(ctx context.Context, id int32) error

	// Image management (pending until the upload is confirmed)
	CreateImage(ctx context.Context, image *domain.ItemImage) error
	GetImage(ctx context.Context, id int32) (*domain.ItemImage, error)
	ConfirmImage(ctx context.Context, imageID, itemID int32) error
	DeleteExpiredPendingImages(ctx context.Context, now time.Time) ([]domain.ItemImage, error)
}

type RentalRepository interface {
	// Create locks the item, rejects overlapping dates with ErrOverlap and inserts.
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id int32) (*domain.Rental, error)
	// UpdateStatus applies a status change only if the row still has status from.
	UpdateStatus(ctx context.Context, rental *domain.Rental, from domain.RentalStatus) error
	ListByItem(ctx context.Context, itemID int32, from, to time.Time) ([]domain.Rental, error)
	ListByRenter(ctx context.Context, renterID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error)
	ListByOwner(ctx context.Context, ownerID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error)
	ListPendingOlderThan(ctx context.Context, before time.Time) ([]domain.Rental, error)
	ListCompletedWithoutReviews(ctx context.Context, since time.Time) ([]domain.Rental, error)
}

type ReviewRepository interface {
	// Create returns ErrConflict when the rental already has a review from that role.
	Create(ctx context.Context, review *domain.Review) error
	ListByRental(ctx context.Context, rentalID int32) ([]domain.Review, error)
	ListByItem(ctx context.Context, itemID int32, page, pageSize int32) ([]domain.Review, int32, error)
	ListByReviewed(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Review, int32, error)
	AverageForUser(ctx context.Context, userID int32) (float64, int32, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListConversation(ctx context.Context, userID, otherID int32, page, pageSize int32) ([]domain.Message, int32, error)
	ListConversations(ctx context.Context, userID int32) ([]domain.Conversation, error)
	MarkAsRead(ctx context.Context, id, receiverID int32) error
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}

type KYCRepository interface {
	Create(ctx context.Context, req *domain.KYCRequest) error
	GetByID(ctx context.Context, id int32) (*domain.KYCRequest, error)
	ListByStatus(ctx context.Context, status domain.KYCStatus) ([]domain.KYCRequest, error)
	Review(ctx context.Context, req *domain.KYCRequest) error
}
