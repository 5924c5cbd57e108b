package service

import (
	"context"
	"time"

	"bora-alugar-backend/internal/booking"
	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/geocoding"
	"bora-alugar-backend/internal/plan"
	"bora-alugar-backend/internal/security"
)

// Tokens is a freshly issued access/refresh pair.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

type SignupInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
	TaxID    string
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.User, *Tokens, error)
	Login(ctx context.Context, email, password string) (*domain.User, *Tokens, error)
	// Refresh rotates the pair: the presented refresh token is revoked.
	Refresh(ctx context.Context, refreshToken string) (*Tokens, error)
	Logout(ctx context.Context, access *security.UserClaims, refreshToken string) error
}

type ProfileUpdate struct {
	Name      string
	Phone     string
	TaxID     string
	AvatarURL string
}

type UserService interface {
	GetProfile(ctx context.Context, userID int32) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int32, in ProfileUpdate) (*domain.User, error)
	UpdateLocation(ctx context.Context, userID int32, point domain.GeoPoint) (*domain.User, error)
	UpdatePushToken(ctx context.Context, userID int32, token string) error
	ReverseGeocode(ctx context.Context, point domain.GeoPoint) (geocoding.Place, error)
	SubmitKYC(ctx context.Context, userID int32, documentKey, selfieKey string) (*domain.KYCRequest, error)
}

type ItemInput struct {
	Title              string
	Description        string
	Category           string
	VideoURL           string
	PricePerDayCents   int32
	PricePerWeekCents  int32
	PricePerMonthCents int32
	Delivery           domain.Delivery
	Available          bool
	Status             domain.ItemStatus
	Location           domain.GeoPoint
	City               string
}

// Availability answers whether a date range is free and which bookings block it.
type Availability struct {
	Available bool
	Blocked   []booking.DateRange
}

type ItemService interface {
	CreateItem(ctx context.Context, ownerID int32, in ItemInput) (*domain.Item, error)
	GetItem(ctx context.Context, id int32, viewer *domain.GeoPoint) (*domain.ItemWithDistance, error)
	UpdateItem(ctx context.Context, userID int32, isAdmin bool, id int32, in ItemInput) (*domain.Item, error)
	DeleteItem(ctx context.Context, userID int32, isAdmin bool, id int32) error
	ListMyItems(ctx context.Context, ownerID int32, page, pageSize int32) ([]domain.Item, int32, error)
	SearchItems(ctx context.Context, filter domain.ItemFilter) ([]domain.ItemWithDistance, int32, error)
	CheckAvailability(ctx context.Context, itemID int32, start, end time.Time) (*Availability, error)
}

type RentalRequest struct {
	ItemID           int32
	StartDate        time.Time
	EndDate          time.Time
	DeliveryMethod   domain.DeliveryMethod
	DeliveryAddress  string
	ContractAccepted bool
}

type RentalService interface {
	RequestRental(ctx context.Context, renterID int32, req RentalRequest) (*domain.Rental, error)
	GetRental(ctx context.Context, userID int32, isAdmin bool, rentalID int32) (*domain.Rental, error)
	ListRentals(ctx context.Context, renterID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error)
	ListLendings(ctx context.Context, ownerID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error)
	// Transition moves a rental along the lifecycle. reason is kept only for cancellations.
	Transition(ctx context.Context, userID int32, isAdmin bool, rentalID int32, to domain.RentalStatus, reason string) (*domain.Rental, error)
}

type ReviewService interface {
	CreateReview(ctx context.Context, reviewerID, rentalID int32, rating int32, comment string) (*domain.Review, error)
	ListItemReviews(ctx context.Context, itemID int32, page, pageSize int32) ([]domain.Review, int32, error)
	ListUserReviews(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Review, int32, error)
	RecomputeTrustScore(ctx context.Context, userID int32) (int32, error)
}

type MessageService interface {
	Send(ctx context.Context, senderID, receiverID int32, itemID *int32, content string) (*domain.Message, error)
	Conversation(ctx context.Context, userID, otherID int32, page, pageSize int32) ([]domain.Message, int32, error)
	Conversations(ctx context.Context, userID int32) ([]domain.Conversation, error)
	MarkAsRead(ctx context.Context, userID, messageID int32) error
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

type SubscriptionService interface {
	Plans() []plan.Tier
	ChangePlan(ctx context.Context, userID int32, p domain.Plan) (*domain.User, error)
	// LapseExpired returns expired paid users to FREE. Listings are not touched.
	LapseExpired(ctx context.Context) (int, error)
}

type UploadTicket struct {
	Key       string
	UploadURL string
	ExpiresAt time.Time
}

type UploadService interface {
	// RequestUpload hands out a presigned URL for a KYC document, selfie or avatar.
	RequestUpload(ctx context.Context, userID int32, purpose, contentType string) (*UploadTicket, error)
	RequestItemImage(ctx context.Context, userID, itemID int32, fileName, contentType string) (*domain.ItemImage, *UploadTicket, error)
	ConfirmItemImage(ctx context.Context, userID, itemID, imageID int32) (*domain.Item, error)
	// DownloadURL presigns a read. KYC files are readable only by their owner and admins.
	DownloadURL(ctx context.Context, userID int32, isAdmin bool, key string) (string, error)
	CleanupExpired(ctx context.Context) (int, error)
}

type AdminService interface {
	ListKYCRequests(ctx context.Context, status domain.KYCStatus) ([]domain.KYCRequest, error)
	ApproveKYC(ctx context.Context, adminID, requestID int32) (*domain.KYCRequest, error)
	RejectKYC(ctx context.Context, adminID, requestID int32, reason string) (*domain.KYCRequest, error)
	ListUsers(ctx context.Context, query string, page, pageSize int32) ([]domain.User, int32, error)
	SetUserPlan(ctx context.Context, adminID, userID int32, p domain.Plan, expiresOn *time.Time) (*domain.User, error)
	DeleteItem(ctx context.Context, adminID, itemID int32) error
}

type EmailService interface {
	Send(ctx context.Context, toEmail, toName, subject, body string) error
}

// Publisher receives one change event per mutation. realtime.Hub implements it.
type Publisher interface {
	Publish(ctx context.Context, ev domain.ChangeEvent)
}
