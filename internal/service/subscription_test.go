package service_test

import (
	"context"
	"testing"
	"time"

	"bora-alugar-backend/internal/config"
	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/plan"
	"bora-alugar-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSubscriptions(users *MockUserRepo, notes *MockNotificationRepo, email service.EmailService, events *recorder) service.SubscriptionService {
	gate := plan.NewGate(config.PlansConfig{FreeListingLimit: 1, BasicListingLimit: 10, PremiumListingLimit: -1, BasicPriceCents: 1990, PremiumPriceCents: 4990})
	notifier := service.NewNotifier(notes, users, nil, email, events)
	return service.NewSubscriptionService(users, gate, 30, notifier, events)
}

func TestSubscriptionService_Plans(t *testing.T) {
	svc := newSubscriptions(new(MockUserRepo), new(MockNotificationRepo), nil, &recorder{})
	tiers := svc.Plans()
	require.Len(t, tiers, 3)
	assert.Equal(t, domain.PlanFree, tiers[0].Plan)
	assert.Equal(t, plan.Unlimited, tiers[2].ListingLimit)
}

func TestSubscriptionService_ChangePlan(t *testing.T) {
	ctx := context.Background()

	t.Run("Paid plan runs for one period", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("UpdatePlan", ctx, int32(1), domain.PlanPremium, mock.MatchedBy(func(exp *time.Time) bool {
			return exp != nil && exp.Sub(time.Now()) > 29*24*time.Hour && exp.Sub(time.Now()) <= 30*24*time.Hour
		})).Return(nil)
		users.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Plan: domain.PlanPremium}, nil)
		events := &recorder{}

		u, err := newSubscriptions(users, new(MockNotificationRepo), nil, events).ChangePlan(ctx, 1, domain.PlanPremium)
		require.NoError(t, err)
		assert.Equal(t, domain.PlanPremium, u.Plan)
		assert.Equal(t, []int32{1}, events.events[0].Audience)
		users.AssertExpectations(t)
	})

	t.Run("Free has no expiry", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("UpdatePlan", ctx, int32(1), domain.PlanFree, (*time.Time)(nil)).Return(nil)
		users.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1}, nil)

		_, err := newSubscriptions(users, new(MockNotificationRepo), nil, &recorder{}).ChangePlan(ctx, 1, domain.PlanFree)
		require.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("Unknown plan", func(t *testing.T) {
		_, err := newSubscriptions(new(MockUserRepo), new(MockNotificationRepo), nil, &recorder{}).ChangePlan(ctx, 1, "GOLD")
		assert.ErrorIs(t, err, service.ErrValidation)
	})
}

func TestSubscriptionService_LapseExpired(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepo)
	notes := new(MockNotificationRepo)
	email := new(MockEmailService)

	users.On("ListExpiredPlans", ctx, mock.Anything).Return([]domain.User{
		{ID: 1, Plan: domain.PlanBasic},
		{ID: 2, Plan: domain.PlanPremium},
	}, nil)
	users.On("UpdatePlan", ctx, int32(1), domain.PlanFree, (*time.Time)(nil)).Return(nil)
	users.On("UpdatePlan", ctx, int32(2), domain.PlanFree, (*time.Time)(nil)).Return(assert.AnError)
	users.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Email: "ana@example.com", Name: "Ana"}, nil)
	notes.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == 1 && n.Type == domain.NotificationPlan
	})).Return(nil)
	email.On("Send", ctx, "ana@example.com", "Ana", "Seu plano expirou", mock.Anything).Return(nil)

	n, err := newSubscriptions(users, notes, email, &recorder{}).LapseExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	notes.AssertExpectations(t)
	email.AssertExpectations(t)
}
