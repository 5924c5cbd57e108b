package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"bora-alugar-backend/internal/booking"
	"bora-alugar-backend/internal/cache"
	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/geocoding"
	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/metrics"
	"bora-alugar-backend/internal/plan"
	"bora-alugar-backend/internal/repository"
	"bora-alugar-backend/internal/utils"
)

type itemService struct {
	itemRepo     repository.ItemRepository
	userRepo     repository.UserRepository
	rentalRepo   repository.RentalRepository
	gate         *plan.Gate
	kycThreshold int32
	cache        cache.ItemCache
	geocoder     geocoding.Geocoder
	events       Publisher
	now          func() time.Time
}

func NewItemService(
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	rentalRepo repository.RentalRepository,
	gate *plan.Gate,
	kycThreshold int32,
	itemCache cache.ItemCache,
	geocoder geocoding.Geocoder,
	events Publisher,
) ItemService {
	return &itemService{
		itemRepo:     itemRepo,
		userRepo:     userRepo,
		rentalRepo:   rentalRepo,
		gate:         gate,
		kycThreshold: kycThreshold,
		cache:        itemCache,
		geocoder:     geocoder,
		events:       events,
		now:          time.Now,
	}
}

func validateItem(in ItemInput) error {
	v := validation{}
	v.check(strings.TrimSpace(in.Title) != "", "title", "is required")
	v.check(len(in.Title) <= 120, "title", "must be at most 120 characters")
	v.check(strings.TrimSpace(in.Category) != "", "category", "is required")
	v.check(in.PricePerDayCents > 0, "pricePerDay", "must be greater than zero")
	v.check(in.PricePerWeekCents >= 0, "pricePerWeek", "must not be negative")
	v.check(in.PricePerMonthCents >= 0, "pricePerMonth", "must not be negative")
	v.check(in.Delivery.FeeCents >= 0, "delivery.fee", "must not be negative")
	v.check(in.Delivery.MaxRadiusKm >= 0, "delivery.maxRadiusKm", "must not be negative")
	v.check(in.Location.Valid(), "location", "latitude must be within ±90 and longitude within ±180")
	switch in.Status {
	case "", domain.ItemStatusAvailable, domain.ItemStatusRented, domain.ItemStatusMaintenance:
	default:
		v.check(false, "status", "must be AVAILABLE, RENTED or MAINTENANCE")
	}
	return v.err()
}

// checkKYC refuses listings priced above the verification threshold for unverified owners
func (s *itemService) checkKYC(owner *domain.User, pricePerDay int32) error {
	if s.kycThreshold > 0 && pricePerDay > s.kycThreshold && owner.KYCStatus != domain.KYCStatusApproved {
		return ErrKYCRequired
	}
	return nil
}

func (s *itemService) CreateItem(ctx context.Context, ownerID int32, in ItemInput) (*domain.Item, error) {
	logger.EnterMethod("itemService.CreateItem", "ownerID", ownerID, "title", in.Title)

	if err := validateItem(in); err != nil {
		logger.ExitMethodWithError("itemService.CreateItem", err)
		return nil, err
	}

	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	count, err := s.itemRepo.CountActiveByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	current := owner.EffectivePlan(s.now())
	if !s.gate.CanCreateListing(current, count) {
		limit, _ := s.gate.Limit(current)
		upgrade, _ := s.gate.Upgrade(count)
		metrics.RecordPlanLimit(string(current))
		err := &PlanLimitError{Plan: current, Limit: limit, UpgradeTo: upgrade}
		logger.ExitMethodWithError("itemService.CreateItem", err, "count", count)
		return nil, err
	}

	if err := s.checkKYC(owner, in.PricePerDayCents); err != nil {
		logger.ExitMethodWithError("itemService.CreateItem", err)
		return nil, err
	}

	item := &domain.Item{OwnerID: ownerID, Available: true}
	s.apply(ctx, item, in)
	if err := s.itemRepo.Create(ctx, item); err != nil {
		logger.ExitMethodWithError("itemService.CreateItem", err)
		return nil, err
	}

	s.events.Publish(ctx, domain.ChangeEvent{Collection: domain.CollectionItems, Op: domain.ChangeInsert, ID: item.ID})
	logger.ExitMethod("itemService.CreateItem", "itemID", item.ID)
	return item, nil
}

func (s *itemService) apply(ctx context.Context, item *domain.Item, in ItemInput) {
	item.Title = strings.TrimSpace(in.Title)
	item.Description = in.Description
	item.Category = strings.TrimSpace(in.Category)
	item.VideoURL = in.VideoURL
	item.PricePerDayCents = in.PricePerDayCents
	item.PricePerWeekCents = in.PricePerWeekCents
	item.PricePerMonthCents = in.PricePerMonthCents
	item.Delivery = in.Delivery
	item.Available = in.Available
	if in.Status != "" {
		item.Status = in.Status
	}

	moved := item.Latitude != in.Location.Lat || item.Longitude != in.Location.Lng
	item.Latitude, item.Longitude = in.Location.Lat, in.Location.Lng

	switch {
	case in.City != "":
		item.City = geocoding.NormalizeCity(in.City)
	case moved || item.City == "":
		if place := s.geocoder.Reverse(ctx, in.Location); place.City != geocoding.UnknownLocation {
			item.City = place.City
		}
	}
}

func (s *itemService) load(ctx context.Context, id int32) (*domain.Item, error) {
	item, err := s.cache.Get(ctx, id)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logger.Warn("Item cache read failed", "itemID", id, "error", err)
	}

	item, err = s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, item); err != nil {
		logger.Warn("Item cache write failed", "itemID", id, "error", err)
	}
	return item, nil
}

func (s *itemService) invalidate(ctx context.Context, id int32) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		logger.Warn("Item cache invalidation failed", "itemID", id, "error", err)
	}
}

// GetItem returns a live listing. When viewer is set the distance to it is filled in.
func (s *itemService) GetItem(ctx context.Context, id int32, viewer *domain.GeoPoint) (*domain.ItemWithDistance, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.DeletedOn != nil {
		return nil, repository.ErrNotFound
	}

	owner, err := s.userRepo.GetByID(ctx, item.OwnerID)
	if err == nil {
		item.Owner = owner
	} else {
		logger.Warn("Failed to load item owner", "itemID", id, "ownerID", item.OwnerID, "error", err)
	}
	return withDistance(*item, viewer), nil
}

func withDistance(item domain.Item, viewer *domain.GeoPoint) *domain.ItemWithDistance {
	out := &domain.ItemWithDistance{Item: item}
	if viewer != nil {
		km := utils.DistanceKm(*viewer, domain.GeoPoint{Lat: item.Latitude, Lng: item.Longitude})
		out.DistanceKm = &km
	}
	return out
}

func (s *itemService) owned(ctx context.Context, userID int32, isAdmin bool, id int32) (*domain.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.DeletedOn != nil {
		return nil, repository.ErrNotFound
	}
	if item.OwnerID != userID && !isAdmin {
		return nil, ErrForbidden
	}
	return item, nil
}

func (s *itemService) UpdateItem(ctx context.Context, userID int32, isAdmin bool, id int32, in ItemInput) (*domain.Item, error) {
	item, err := s.owned(ctx, userID, isAdmin, id)
	if err != nil {
		return nil, err
	}
	if err := validateItem(in); err != nil {
		return nil, err
	}

	if in.PricePerDayCents != item.PricePerDayCents {
		owner, err := s.userRepo.GetByID(ctx, item.OwnerID)
		if err != nil {
			return nil, err
		}
		if err := s.checkKYC(owner, in.PricePerDayCents); err != nil {
			return nil, err
		}
	}

	s.apply(ctx, item, in)
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	s.events.Publish(ctx, domain.ChangeEvent{Collection: domain.CollectionItems, Op: domain.ChangeUpdate, ID: id})
	return item, nil
}

// DeleteItem soft-deletes the listing, freeing a slot under the plan cap
func (s *itemService) DeleteItem(ctx context.Context, userID int32, isAdmin bool, id int32) error {
	if _, err := s.owned(ctx, userID, isAdmin, id); err != nil {
		return err
	}
	if err := s.itemRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("Item deleted", "itemID", id, "by", userID, "admin", isAdmin)

	s.invalidate(ctx, id)
	s.events.Publish(ctx, domain.ChangeEvent{Collection: domain.CollectionItems, Op: domain.ChangeDelete, ID: id})
	return nil
}

func (s *itemService) ListMyItems(ctx context.Context, ownerID int32, page, pageSize int32) ([]domain.Item, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.itemRepo.ListByOwner(ctx, ownerID, page, pageSize)
}

func (s *itemService) SearchItems(ctx context.Context, filter domain.ItemFilter) ([]domain.ItemWithDistance, int32, error) {
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)
	if filter.Near != nil && !filter.Near.Valid() {
		return nil, 0, invalid("location", "latitude must be within ±90 and longitude within ±180")
	}
	if filter.RadiusKm < 0 {
		return nil, 0, invalid("radiusKm", "must not be negative")
	}
	if filter.Sort == domain.ItemSortDistance && filter.Near == nil {
		return nil, 0, invalid("sort", "distance sort needs lat and lng")
	}

	items, total, err := s.itemRepo.Search(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]domain.ItemWithDistance, 0, len(items))
	for _, it := range items {
		out = append(out, *withDistance(it, filter.Near))
	}
	return out, total, nil
}

// CheckAvailability reports whether [start, end] is free and lists the booked
// ranges that collide with it.
func (s *itemService) CheckAvailability(ctx context.Context, itemID int32, start, end time.Time) (*Availability, error) {
	want := booking.NewDateRange(start, end)
	if !want.Valid() {
		return nil, invalid("end", "must not be before start")
	}
	if _, err := s.load(ctx, itemID); err != nil {
		return nil, err
	}

	rentals, err := s.rentalRepo.ListByItem(ctx, itemID, want.Start, want.End)
	if err != nil {
		return nil, err
	}

	conflicts := booking.Conflicts(rentals, itemID, want)
	res := &Availability{Available: len(conflicts) == 0}
	for _, r := range conflicts {
		res.Blocked = append(res.Blocked, booking.NewDateRange(r.StartDate, r.EndDate))
	}
	return res, nil
}
