package jobs

import (
	"context"

	"bora-alugar-backend/internal/logger"
)

// recomputeTrustScores refreshes every member's score. Scores already change on
// each review, so this only catches drift such as a KYC decision.
func (jr *JobRunner) recomputeTrustScores(ctx context.Context) error {
	ids, err := jr.repos.Users.ListIDs(ctx)
	if err != nil {
		return err
	}

	failed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := jr.services.Review.RecomputeTrustScore(ctx, id); err != nil {
			logger.Error("Failed to recompute trust score", "user_id", id, "error", err)
			failed++
		}
	}
	logger.Info("Trust scores recomputed", "users", len(ids), "failed", failed)
	return nil
}

// lapseSubscriptions returns expired paid plans to FREE. Listings are untouched.
func (jr *JobRunner) lapseSubscriptions(ctx context.Context) error {
	n, err := jr.services.Subscription.LapseExpired(ctx)
	if err != nil {
		return err
	}
	logger.Info("Subscriptions lapsed", "count", n)
	return nil
}

func (jr *JobRunner) cleanupPendingUploads(ctx context.Context) error {
	n, err := jr.services.Upload.CleanupExpired(ctx)
	if err != nil {
		return err
	}
	logger.Info("Expired uploads removed", "count", n)
	return nil
}
