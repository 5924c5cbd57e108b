package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"bora-alugar-backend/internal/cache"
	"bora-alugar-backend/internal/config"
	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/geocoding"
	"bora-alugar-backend/internal/plan"
	"bora-alugar-backend/internal/repository"
	"bora-alugar-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type itemFixture struct {
	items   *MockItemRepo
	users   *MockUserRepo
	rentals *MockRentalRepo
	events  *recorder
	svc     service.ItemService
}

func newItemFixture() *itemFixture {
	f := &itemFixture{
		items:   new(MockItemRepo),
		users:   new(MockUserRepo),
		rentals: new(MockRentalRepo),
		events:  &recorder{},
	}
	gate := plan.NewGate(config.PlansConfig{FreeListingLimit: 1, BasicListingLimit: 10, PremiumListingLimit: -1})
	f.svc = service.NewItemService(f.items, f.users, f.rentals, gate, 50000, cache.NewMemory(time.Minute),
		geocoding.Static{Place: geocoding.Place{City: "Campinas"}}, f.events)
	return f
}

func TestItemService_CreateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Geocodes the city", func(t *testing.T) {
		f := newItemFixture()
		f.users.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Plan: domain.PlanFree}, nil)
		f.items.On("CountActiveByOwner", ctx, int32(1)).Return(0, nil)
		f.items.On("Create", ctx, mock.AnythingOfType("*domain.Item")).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Item).ID = 7
		}).Return(nil)

		item, err := f.svc.CreateItem(ctx, 1, listing("Escada", 1500))
		require.NoError(t, err)
		assert.Equal(t, int32(7), item.ID)
		assert.Equal(t, "Campinas", item.City)
		assert.Equal(t, int32(1), item.OwnerID)
		assert.Equal(t, []string{domain.CollectionItems}, f.events.collections())
		f.items.AssertExpectations(t)
	})

	t.Run("Explicit city is normalized", func(t *testing.T) {
		f := newItemFixture()
		f.users.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1}, nil)
		f.items.On("CountActiveByOwner", ctx, int32(1)).Return(0, nil)
		f.items.On("Create", ctx, mock.Anything).Return(nil)

		in := listing("Escada", 1500)
		in.City = "  rio DE janeiro "
		item, err := f.svc.CreateItem(ctx, 1, in)
		require.NoError(t, err)
		assert.Equal(t, "Rio de Janeiro", item.City)
	})

	t.Run("Free plan limit", func(t *testing.T) {
		f := newItemFixture()
		f.users.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Plan: domain.PlanFree}, nil)
		f.items.On("CountActiveByOwner", ctx, int32(1)).Return(1, nil)

		_, err := f.svc.CreateItem(ctx, 1, listing("Escada", 1500))
		var limitErr *service.PlanLimitError
		require.True(t, errors.As(err, &limitErr))
		assert.Equal(t, 1, limitErr.Limit)
		assert.Equal(t, domain.PlanBasic, limitErr.UpgradeTo)
		f.items.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Expired paid plan gates as free", func(t *testing.T) {
		f := newItemFixture()
		expired := time.Now().Add(-time.Hour)
		f.users.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Plan: domain.PlanBasic, PlanExpiresOn: &expired}, nil)
		f.items.On("CountActiveByOwner", ctx, int32(1)).Return(3, nil)

		_, err := f.svc.CreateItem(ctx, 1, listing("Escada", 1500))
		assert.ErrorIs(t, err, service.ErrPlanLimitReached)
	})

	t.Run("Expensive listing needs KYC", func(t *testing.T) {
		f := newItemFixture()
		f.users.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, KYCStatus: domain.KYCStatusPending}, nil)
		f.items.On("CountActiveByOwner", ctx, int32(1)).Return(0, nil)

		_, err := f.svc.CreateItem(ctx, 1, listing("Trator", 60000))
		assert.ErrorIs(t, err, service.ErrKYCRequired)
	})

	t.Run("Invalid input", func(t *testing.T) {
		f := newItemFixture()
		in := listing("", 0)
		in.Location = domain.GeoPoint{Lat: 91}
		_, err := f.svc.CreateItem(ctx, 1, in)

		var verr *service.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "title")
		assert.Contains(t, verr.Fields, "pricePerDay")
		assert.Contains(t, verr.Fields, "location")
		f.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestItemService_GetItem(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	stored := &domain.Item{ID: 3, OwnerID: 1, Title: "Escada", Latitude: -23.5505, Longitude: -46.6333}
	f.items.On("GetByID", ctx, int32(3)).Return(stored, nil).Once()
	f.users.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Name: "Ana"}, nil)

	viewer := &domain.GeoPoint{Lat: -22.9068, Lng: -43.1729}
	got, err := f.svc.GetItem(ctx, 3, viewer)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Owner.Name)
	require.NotNil(t, got.DistanceKm)
	assert.InDelta(t, 361, *got.DistanceKm, 5)

	// second read is served from the cache
	again, err := f.svc.GetItem(ctx, 3, nil)
	require.NoError(t, err)
	assert.Nil(t, again.DistanceKm)
	f.items.AssertNumberOfCalls(t, "GetByID", 1)

	t.Run("Deleted item is not found", func(t *testing.T) {
		deleted := time.Now()
		f.items.On("GetByID", ctx, int32(4)).Return(&domain.Item{ID: 4, DeletedOn: &deleted}, nil)
		_, err := f.svc.GetItem(ctx, 4, nil)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestItemService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Non owner is forbidden", func(t *testing.T) {
		f := newItemFixture()
		f.items.On("GetByID", ctx, int32(3)).Return(&domain.Item{ID: 3, OwnerID: 1}, nil)
		_, err := f.svc.UpdateItem(ctx, 2, false, 3, listing("Escada", 1500))
		assert.ErrorIs(t, err, service.ErrForbidden)
		assert.ErrorIs(t, f.svc.DeleteItem(ctx, 2, false, 3), service.ErrForbidden)
	})

	t.Run("Price raise re-checks KYC", func(t *testing.T) {
		f := newItemFixture()
		f.items.On("GetByID", ctx, int32(3)).Return(&domain.Item{ID: 3, OwnerID: 1, PricePerDayCents: 1500}, nil)
		f.users.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, KYCStatus: domain.KYCStatusNone}, nil)
		_, err := f.svc.UpdateItem(ctx, 1, false, 3, listing("Escada", 90000))
		assert.ErrorIs(t, err, service.ErrKYCRequired)
	})

	t.Run("Admin may delete", func(t *testing.T) {
		f := newItemFixture()
		f.items.On("GetByID", ctx, int32(3)).Return(&domain.Item{ID: 3, OwnerID: 1}, nil)
		f.items.On("Delete", ctx, int32(3)).Return(nil)
		require.NoError(t, f.svc.DeleteItem(ctx, 99, true, 3))
		assert.Equal(t, domain.ChangeDelete, f.events.events[0].Op)
	})
}

func TestItemService_SearchItems(t *testing.T) {
	ctx := context.Background()

	t.Run("Distance sort needs a location", func(t *testing.T) {
		f := newItemFixture()
		_, _, err := f.svc.SearchItems(ctx, domain.ItemFilter{Sort: domain.ItemSortDistance})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("Distances are filled in", func(t *testing.T) {
		f := newItemFixture()
		near := &domain.GeoPoint{Lat: -23.5505, Lng: -46.6333}
		f.items.On("Search", ctx, mock.MatchedBy(func(fl domain.ItemFilter) bool {
			return fl.PageSize == 20 && fl.Page == 1 && fl.RadiusKm == 10
		})).Return([]domain.Item{{ID: 1, Latitude: -23.5505, Longitude: -46.6333}}, int32(1), nil)

		got, total, err := f.svc.SearchItems(ctx, domain.ItemFilter{Near: near, RadiusKm: 10})
		require.NoError(t, err)
		assert.Equal(t, int32(1), total)
		require.Len(t, got, 1)
		assert.InDelta(t, 0, *got[0].DistanceKm, 0.001)
	})
}

func TestItemService_CheckAvailability(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture()
	f.items.On("GetByID", ctx, int32(3)).Return(&domain.Item{ID: 3, OwnerID: 1}, nil)
	f.rentals.On("ListByItem", ctx, int32(3), day("2024-03-01"), day("2024-03-10")).Return([]domain.Rental{
		{ItemID: 3, StartDate: day("2024-03-05"), EndDate: day("2024-03-06"), Status: domain.RentalStatusConfirmed},
		{ItemID: 3, StartDate: day("2024-03-02"), EndDate: day("2024-03-03"), Status: domain.RentalStatusCancelled},
	}, nil)

	got, err := f.svc.CheckAvailability(ctx, 3, day("2024-03-01"), day("2024-03-10"))
	require.NoError(t, err)
	assert.False(t, got.Available)
	require.Len(t, got.Blocked, 1)
	assert.Equal(t, day("2024-03-05"), got.Blocked[0].Start)

	_, err = f.svc.CheckAvailability(ctx, 3, day("2024-03-10"), day("2024-03-01"))
	assert.ErrorIs(t, err, service.ErrValidation)
}
