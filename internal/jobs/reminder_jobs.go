package jobs

import (
	"context"
	"fmt"
	"time"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/service"
)

// Reminder windows match the default cron cadence so each rental is reminded once
const (
	reviewReminderWindow  = 24 * time.Hour
	pendingReminderWindow = time.Hour
)

// sendReviewReminders nudges each party of a rental completed in the last day
// that has not reviewed the other yet
func (jr *JobRunner) sendReviewReminders(ctx context.Context) error {
	rentals, err := jr.repos.Rentals.ListCompletedWithoutReviews(ctx, jr.now().Add(-reviewReminderWindow))
	if err != nil {
		return err
	}

	count := 0
	for _, rt := range rentals {
		reviews, err := jr.repos.Reviews.ListByRental(ctx, rt.ID)
		if err != nil {
			logger.Error("Failed to load rental reviews", "rental_id", rt.ID, "error", err)
			continue
		}
		done := map[domain.ReviewerRole]bool{}
		for _, rv := range reviews {
			done[rv.ReviewerRole] = true
		}

		attrs := map[string]string{"rental_id": fmt.Sprintf("%d", rt.ID), "item_id": fmt.Sprintf("%d", rt.ItemID)}
		if !done[domain.ReviewerRoleRenter] {
			jr.notifier.Notify(ctx, service.Note{
				UserID:     rt.RenterID,
				Type:       domain.NotificationReviewReminder,
				Title:      "Como foi o aluguel?",
				Message:    "Avalie o proprietário e o item que você alugou.",
				Attributes: attrs,
			})
			count++
		}
		if !done[domain.ReviewerRoleOwner] {
			jr.notifier.Notify(ctx, service.Note{
				UserID:     rt.OwnerID,
				Type:       domain.NotificationReviewReminder,
				Title:      "Como foi o aluguel?",
				Message:    "Avalie quem alugou o seu item.",
				Attributes: attrs,
			})
			count++
		}
	}
	logger.Info("Review reminders sent", "count", count)
	return nil
}

// sendPendingReminders tells owners about requests that have waited longer
// than the configured number of hours without an answer
func (jr *JobRunner) sendPendingReminders(ctx context.Context) error {
	hours := jr.config.PendingReminderAfterHours
	if hours <= 0 {
		hours = 24
	}
	before := jr.now().Add(-time.Duration(hours) * time.Hour)
	rentals, err := jr.repos.Rentals.ListPendingOlderThan(ctx, before)
	if err != nil {
		return err
	}

	count := 0
	for _, rt := range rentals {
		// older requests were reminded on an earlier run
		if rt.CreatedOn.Before(before.Add(-pendingReminderWindow)) {
			continue
		}
		jr.notifier.Notify(ctx, service.Note{
			UserID:  rt.OwnerID,
			Type:    domain.NotificationPendingReminder,
			Title:   "Pedido de aluguel aguardando resposta",
			Message: fmt.Sprintf("Há um pedido de %s a %s esperando sua confirmação.", rt.StartDate.Format("02/01"), rt.EndDate.Format("02/01")),
			Attributes: map[string]string{
				"rental_id": fmt.Sprintf("%d", rt.ID),
				"item_id":   fmt.Sprintf("%d", rt.ItemID),
			},
			Email: true,
		})
		count++
	}
	logger.Info("Pending request reminders sent", "count", count)
	return nil
}
