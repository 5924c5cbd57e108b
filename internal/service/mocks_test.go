package service_test

import (
	"context"
	"sync"
	"time"

	"bora-alugar-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) UpdateLocation(ctx context.Context, id int32, point domain.GeoPoint, city string) error {
	args := m.Called(ctx, id, point, city)
	return args.Error(0)
}
func (m *MockUserRepo) UpdatePushToken(ctx context.Context, id int32, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}
func (m *MockUserRepo) UpdatePlan(ctx context.Context, id int32, plan domain.Plan, expiresOn *time.Time) error {
	args := m.Called(ctx, id, plan, expiresOn)
	return args.Error(0)
}
func (m *MockUserRepo) UpdateKYCStatus(ctx context.Context, id int32, status domain.KYCStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockUserRepo) UpdateTrustScore(ctx context.Context, id int32, score int32) error {
	args := m.Called(ctx, id, score)
	return args.Error(0)
}
func (m *MockUserRepo) IncrementTransactions(ctx context.Context, ids ...int32) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}
func (m *MockUserRepo) List(ctx context.Context, query string, page, pageSize int32) ([]domain.User, int32, error) {
	args := m.Called(ctx, query, page, pageSize)
	return args.Get(0).([]domain.User), args.Get(1).(int32), args.Error(2)
}
func (m *MockUserRepo) ListIDs(ctx context.Context) ([]int32, error) {
	args := m.Called(ctx)
	return args.Get(0).([]int32), args.Error(1)
}
func (m *MockUserRepo) ListExpiredPlans(ctx context.Context, now time.Time) ([]domain.User, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockItemRepo
type MockItemRepo struct {
	mock.Mock
}

func (m *MockItemRepo) Create(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}
func (m *MockItemRepo) GetByID(ctx context.Context, id int32) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}
func (m *MockItemRepo) Update(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}
func (m *MockItemRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockItemRepo) CountActiveByOwner(ctx context.Context, ownerID int32) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}
func (m *MockItemRepo) ListByOwner(ctx context.Context, ownerID int32, page, pageSize int32) ([]domain.Item, int32, error) {
	args := m.Called(ctx, ownerID, page, pageSize)
	return args.Get(0).([]domain.Item), args.Get(1).(int32), args.Error(2)
}
func (m *MockItemRepo) Search(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Item), args.Get(1).(int32), args.Error(2)
}
func (m *MockItemRepo) UpdateRating(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockItemRepo) CreateImage(ctx context.Context, image *domain.ItemImage) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}
func (m *MockItemRepo) GetImage(ctx context.Context, id int32) (*domain.ItemImage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ItemImage), args.Error(1)
}
func (m *MockItemRepo) ConfirmImage(ctx context.Context, imageID, itemID int32) error {
	args := m.Called(ctx, imageID, itemID)
	return args.Error(0)
}
func (m *MockItemRepo) DeleteExpiredPendingImages(ctx context.Context, now time.Time) ([]domain.ItemImage, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.ItemImage), args.Error(1)
}

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) Create(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) UpdateStatus(ctx context.Context, rental *domain.Rental, from domain.RentalStatus) error {
	args := m.Called(ctx, rental, from)
	return args.Error(0)
}
func (m *MockRentalRepo) ListByItem(ctx context.Context, itemID int32, from, to time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, itemID, from, to)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListByRenter(ctx context.Context, renterID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, renterID, status, page, pageSize)
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}
func (m *MockRentalRepo) ListByOwner(ctx context.Context, ownerID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, ownerID, status, page, pageSize)
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}
func (m *MockRentalRepo) ListPendingOlderThan(ctx context.Context, before time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, before)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListCompletedWithoutReviews(ctx context.Context, since time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]domain.Rental), args.Error(1)
}

// MockReviewRepo
type MockReviewRepo struct {
	mock.Mock
}

func (m *MockReviewRepo) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}
func (m *MockReviewRepo) ListByRental(ctx context.Context, rentalID int32) ([]domain.Review, error) {
	args := m.Called(ctx, rentalID)
	return args.Get(0).([]domain.Review), args.Error(1)
}
func (m *MockReviewRepo) ListByItem(ctx context.Context, itemID int32, page, pageSize int32) ([]domain.Review, int32, error) {
	args := m.Called(ctx, itemID, page, pageSize)
	return args.Get(0).([]domain.Review), args.Get(1).(int32), args.Error(2)
}
func (m *MockReviewRepo) ListByReviewed(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Review, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.Review), args.Get(1).(int32), args.Error(2)
}
func (m *MockReviewRepo) AverageForUser(ctx context.Context, userID int32) (float64, int32, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(float64), args.Get(1).(int32), args.Error(2)
}

// MockMessageRepo
type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
func (m *MockMessageRepo) ListConversation(ctx context.Context, userID, otherID int32, page, pageSize int32) ([]domain.Message, int32, error) {
	args := m.Called(ctx, userID, otherID, page, pageSize)
	return args.Get(0).([]domain.Message), args.Get(1).(int32), args.Error(2)
}
func (m *MockMessageRepo) ListConversations(ctx context.Context, userID int32) ([]domain.Conversation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Conversation), args.Error(1)
}
func (m *MockMessageRepo) MarkAsRead(ctx context.Context, id, receiverID int32) error {
	args := m.Called(ctx, id, receiverID)
	return args.Error(0)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockKYCRepo
type MockKYCRepo struct {
	mock.Mock
}

func (m *MockKYCRepo) Create(ctx context.Context, req *domain.KYCRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockKYCRepo) GetByID(ctx context.Context, id int32) (*domain.KYCRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KYCRequest), args.Error(1)
}
func (m *MockKYCRepo) ListByStatus(ctx context.Context, status domain.KYCStatus) ([]domain.KYCRequest, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.KYCRequest), args.Error(1)
}
func (m *MockKYCRepo) Review(ctx context.Context, req *domain.KYCRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) Send(ctx context.Context, toEmail, toName, subject, body string) error {
	args := m.Called(ctx, toEmail, toName, subject, body)
	return args.Error(0)
}

// MockObjectStore
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) PresignUpload(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, contentType, expiresIn)
	return args.String(0), args.Error(1)
}
func (m *MockObjectStore) PresignDownload(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Error(1)
}
func (m *MockObjectStore) Exists(ctx context.Context, key string) (bool, int64, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}
func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// recorder captures change events instead of pushing them to a hub
type recorder struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
}

func (r *recorder) Publish(ctx context.Context, ev domain.ChangeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) collections() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Collection)
	}
	return out
}
