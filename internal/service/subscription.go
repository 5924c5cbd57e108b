package service

import (
	"context"
	"fmt"
	"time"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/plan"
	"bora-alugar-backend/internal/repository"
)

type subscriptionService struct {
	userRepo   repository.UserRepository
	gate       *plan.Gate
	periodDays int
	notifier   *Notifier
	events     Publisher
	now        func() time.Time
}

func NewSubscriptionService(userRepo repository.UserRepository, gate *plan.Gate, periodDays int, notifier *Notifier, events Publisher) SubscriptionService {
	return &subscriptionService{
		userRepo:   userRepo,
		gate:       gate,
		periodDays: periodDays,
		notifier:   notifier,
		events:     events,
		now:        time.Now,
	}
}

func (s *subscriptionService) Plans() []plan.Tier {
	return s.gate.Tiers()
}

// ChangePlan switches the user's plan. Paid plans run for one period from now;
// a downgrade keeps every existing listing and only gates new ones.
func (s *subscriptionService) ChangePlan(ctx context.Context, userID int32, p domain.Plan) (*domain.User, error) {
	if !p.Valid() {
		return nil, invalid("plan", "must be FREE, BASIC or PREMIUM")
	}

	var expires *time.Time
	if p != domain.PlanFree {
		t := s.now().AddDate(0, 0, s.periodDays)
		expires = &t
	}
	if err := s.userRepo.UpdatePlan(ctx, userID, p, expires); err != nil {
		return nil, err
	}
	logger.Info("Plan changed", "userID", userID, "plan", p)

	s.events.Publish(ctx, domain.ChangeEvent{Collection: domain.CollectionProfiles, Op: domain.ChangeUpdate, ID: userID, Audience: []int32{userID}})
	return s.userRepo.GetByID(ctx, userID)
}

func (s *subscriptionService) LapseExpired(ctx context.Context) (int, error) {
	users, err := s.userRepo.ListExpiredPlans(ctx, s.now())
	if err != nil {
		return 0, err
	}

	lapsed := 0
	for _, u := range users {
		if err := s.userRepo.UpdatePlan(ctx, u.ID, domain.PlanFree, nil); err != nil {
			logger.Error("Failed to lapse plan", "userID", u.ID, "error", err)
			continue
		}
		lapsed++
		s.notifier.Notify(ctx, Note{
			UserID:     u.ID,
			Type:       domain.NotificationPlan,
			Title:      "Seu plano expirou",
			Message:    fmt.Sprintf("O plano %s expirou. Seus anúncios continuam ativos, mas novos anúncios seguem os limites do plano gratuito.", u.Plan),
			Attributes: map[string]string{"plan": string(u.Plan)},
			Email:      true,
		})
		s.events.Publish(ctx, domain.ChangeEvent{Collection: domain.CollectionProfiles, Op: domain.ChangeUpdate, ID: u.ID, Audience: []int32{u.ID}})
	}
	return lapsed, nil
}
