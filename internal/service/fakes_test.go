package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"bora-alugar-backend/internal/booking"
	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/repository"
)

// In-memory repositories for scenario tests that span several services.

type memStore struct {
	mu            sync.Mutex
	users         map[int32]*domain.User
	items         map[int32]*domain.Item
	rentals       map[int32]*domain.Rental
	reviews       []domain.Review
	notifications []domain.Notification
	nextID        int32
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[int32]*domain.User{},
		items:   map[int32]*domain.Item{},
		rentals: map[int32]*domain.Rental{},
	}
}

func (s *memStore) id() int32 {
	s.nextID++
	return s.nextID
}

type memUserRepo struct{ *memStore }

func (r memUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrConflict
		}
	}
	if u.Plan == "" {
		u.Plan = domain.PlanFree
	}
	if u.Role == "" {
		u.Role = domain.UserRoleUser
	}
	if u.KYCStatus == "" {
		u.KYCStatus = domain.KYCStatusNone
	}
	u.ID = r.id()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r memUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memUserRepo) with(id int32, fn func(u *domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(u)
	return nil
}

func (r memUserRepo) Update(ctx context.Context, u *domain.User) error {
	return r.with(u.ID, func(stored *domain.User) { *stored = *u })
}

func (r memUserRepo) UpdateLocation(ctx context.Context, id int32, p domain.GeoPoint, city string) error {
	return r.with(id, func(u *domain.User) { u.Latitude, u.Longitude, u.City = &p.Lat, &p.Lng, city })
}

func (r memUserRepo) UpdatePushToken(ctx context.Context, id int32, token string) error {
	return r.with(id, func(u *domain.User) { u.PushToken = token })
}

func (r memUserRepo) UpdatePlan(ctx context.Context, id int32, p domain.Plan, expiresOn *time.Time) error {
	return r.with(id, func(u *domain.User) { u.Plan, u.PlanExpiresOn = p, expiresOn })
}

func (r memUserRepo) UpdateKYCStatus(ctx context.Context, id int32, status domain.KYCStatus) error {
	return r.with(id, func(u *domain.User) { u.KYCStatus = status })
}

func (r memUserRepo) UpdateTrustScore(ctx context.Context, id int32, score int32) error {
	return r.with(id, func(u *domain.User) { u.TrustScore = score })
}

func (r memUserRepo) IncrementTransactions(ctx context.Context, ids ...int32) error {
	for _, id := range ids {
		if err := r.with(id, func(u *domain.User) { u.CompletedRentals++; u.TotalTransactions++ }); err != nil {
			return err
		}
	}
	return nil
}

func (r memUserRepo) List(ctx context.Context, query string, page, pageSize int32) ([]domain.User, int32, error) {
	return nil, 0, nil
}

func (r memUserRepo) ListIDs(ctx context.Context) ([]int32, error) {
	return nil, nil
}

func (r memUserRepo) ListExpiredPlans(ctx context.Context, now time.Time) ([]domain.User, error) {
	return nil, nil
}

type memItemRepo struct{ *memStore }

func (r memItemRepo) Create(ctx context.Context, it *domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if it.Status == "" {
		it.Status = domain.ItemStatusAvailable
	}
	it.ID = r.id()
	cp := *it
	r.items[it.ID] = &cp
	return nil
}

func (r memItemRepo) GetByID(ctx context.Context, id int32) (*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (r memItemRepo) Update(ctx context.Context, it *domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *it
	r.items[it.ID] = &cp
	return nil
}

func (r memItemRepo) Delete(ctx context.Context, id int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok || it.DeletedOn != nil {
		return repository.ErrNotFound
	}
	now := time.Now()
	it.DeletedOn = &now
	return nil
}

func (r memItemRepo) CountActiveByOwner(ctx context.Context, ownerID int32) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, it := range r.items {
		if it.OwnerID == ownerID && it.DeletedOn == nil {
			n++
		}
	}
	return n, nil
}

func (r memItemRepo) ListByOwner(ctx context.Context, ownerID int32, page, pageSize int32) ([]domain.Item, int32, error) {
	return nil, 0, nil
}

func (r memItemRepo) Search(ctx context.Context, f domain.ItemFilter) ([]domain.Item, int32, error) {
	return nil, 0, nil
}

func (r memItemRepo) UpdateRating(ctx context.Context, id int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum, n int32
	for _, rv := range r.reviews {
		if rv.ItemID == id && rv.ReviewerRole == domain.ReviewerRoleRenter {
			sum += rv.Rating
			n++
		}
	}
	if n > 0 {
		r.items[id].Rating = float64(sum) / float64(n)
	}
	r.items[id].ReviewCount = n
	return nil
}

func (r memItemRepo) CreateImage(ctx context.Context, img *domain.ItemImage) error { return nil }
func (r memItemRepo) GetImage(ctx context.Context, id int32) (*domain.ItemImage, error) {
	return nil, repository.ErrNotFound
}
func (r memItemRepo) ConfirmImage(ctx context.Context, imageID, itemID int32) error { return nil }
func (r memItemRepo) DeleteExpiredPendingImages(ctx context.Context, now time.Time) ([]domain.ItemImage, error) {
	return nil, nil
}

type memRentalRepo struct{ *memStore }

func (r memRentalRepo) all() []domain.Rental {
	out := make([]domain.Rental, 0, len(r.rentals))
	for _, rt := range r.rentals {
		out = append(out, *rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memRentalRepo) Create(ctx context.Context, rt *domain.Rental) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !booking.IsAvailable(r.all(), rt.ItemID, booking.NewDateRange(rt.StartDate, rt.EndDate)) {
		return repository.ErrOverlap
	}
	rt.ID = r.id()
	cp := *rt
	r.rentals[rt.ID] = &cp
	return nil
}

func (r memRentalRepo) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.rentals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *rt
	return &cp, nil
}

func (r memRentalRepo) UpdateStatus(ctx context.Context, rt *domain.Rental, from domain.RentalStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rentals[rt.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != from {
		return repository.ErrConflict
	}
	cp := *rt
	r.rentals[rt.ID] = &cp
	return nil
}

func (r memRentalRepo) ListByItem(ctx context.Context, itemID int32, from, to time.Time) ([]domain.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Rental
	want := booking.NewDateRange(from, to)
	for _, rt := range r.all() {
		if rt.ItemID == itemID && want.Overlaps(booking.NewDateRange(rt.StartDate, rt.EndDate)) {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (r memRentalRepo) ListByRenter(ctx context.Context, renterID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error) {
	return nil, 0, nil
}

func (r memRentalRepo) ListByOwner(ctx context.Context, ownerID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error) {
	return nil, 0, nil
}

func (r memRentalRepo) ListPendingOlderThan(ctx context.Context, before time.Time) ([]domain.Rental, error) {
	return nil, nil
}

func (r memRentalRepo) ListCompletedWithoutReviews(ctx context.Context, since time.Time) ([]domain.Rental, error) {
	return nil, nil
}

type memReviewRepo struct{ *memStore }

func (r memReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.RentalID == rv.RentalID && existing.ReviewerRole == rv.ReviewerRole {
			return repository.ErrConflict
		}
	}
	rv.ID = r.id()
	r.reviews = append(r.reviews, *rv)
	return nil
}

func (r memReviewRepo) ListByRental(ctx context.Context, rentalID int32) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Review
	for _, rv := range r.reviews {
		if rv.RentalID == rentalID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r memReviewRepo) ListByItem(ctx context.Context, itemID int32, page, pageSize int32) ([]domain.Review, int32, error) {
	return nil, 0, nil
}

func (r memReviewRepo) ListByReviewed(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Review, int32, error) {
	return nil, 0, nil
}

func (r memReviewRepo) AverageForUser(ctx context.Context, userID int32) (float64, int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum, n int32
	for _, rv := range r.reviews {
		if rv.ReviewedID == userID {
			sum += rv.Rating
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(n), n, nil
}

type memNotificationRepo struct{ *memStore }

func (r memNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = r.id()
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r memNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, int32(len(out)), nil
}

func (r memNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	return nil
}
