package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bora-alugar-backend/internal/cache"
	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/repository"
	"bora-alugar-backend/internal/utils"
)

type reviewService struct {
	reviewRepo repository.ReviewRepository
	rentalRepo repository.RentalRepository
	itemRepo   repository.ItemRepository
	userRepo   repository.UserRepository
	cache      cache.ItemCache
	notifier   *Notifier
	events     Publisher
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	rentalRepo repository.RentalRepository,
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	itemCache cache.ItemCache,
	notifier *Notifier,
	events Publisher,
) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		rentalRepo: rentalRepo,
		itemRepo:   itemRepo,
		userRepo:   userRepo,
		cache:      itemCache,
		notifier:   notifier,
		events:     events,
	}
}

// CreateReview records one party's rating of the other. Each side of a
// completed rental may review exactly once.
func (s *reviewService) CreateReview(ctx context.Context, reviewerID, rentalID int32, rating int32, comment string) (*domain.Review, error) {
	logger.EnterMethod("reviewService.CreateReview", "rentalID", rentalID, "reviewerID", reviewerID)

	if rating < 1 || rating > 5 {
		return nil, invalid("rating", "must be between 1 and 5")
	}
	if len(comment) > 2000 {
		return nil, invalid("comment", "must be at most 2000 characters")
	}

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	review := &domain.Review{
		RentalID:   rental.ID,
		ItemID:     rental.ItemID,
		ReviewerID: reviewerID,
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
	}
	switch reviewerID {
	case rental.RenterID:
		review.ReviewerRole = domain.ReviewerRoleRenter
		review.ReviewedID = rental.OwnerID
	case rental.OwnerID:
		review.ReviewerRole = domain.ReviewerRoleOwner
		review.ReviewedID = rental.RenterID
	default:
		return nil, ErrForbidden
	}

	if rental.Status != domain.RentalStatusCompleted {
		return nil, ErrReviewNotAllowed
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			err = ErrAlreadyReviewed
		}
		logger.ExitMethodWithError("reviewService.CreateReview", err)
		return nil, err
	}

	if review.ReviewerRole == domain.ReviewerRoleRenter {
		if err := s.itemRepo.UpdateRating(ctx, rental.ItemID); err != nil {
			logger.Error("Failed to update item rating", "itemID", rental.ItemID, "error", err)
		} else {
			if err := s.cache.Invalidate(ctx, rental.ItemID); err != nil {
				logger.Warn("Item cache invalidation failed", "itemID", rental.ItemID, "error", err)
			}
			s.events.Publish(ctx, domain.ChangeEvent{Collection: domain.CollectionItems, Op: domain.ChangeUpdate, ID: rental.ItemID})
		}
	}

	if _, err := s.RecomputeTrustScore(ctx, review.ReviewedID); err != nil {
		logger.Error("Failed to update trust score", "userID", review.ReviewedID, "error", err)
	}

	s.events.Publish(ctx, domain.ChangeEvent{Collection: domain.CollectionReviews, Op: domain.ChangeInsert, ID: review.ID})
	s.notifier.Notify(ctx, Note{
		UserID:  review.ReviewedID,
		Type:    domain.NotificationRentalStatus,
		Title:   "Você recebeu uma avaliação",
		Message: fmt.Sprintf("Nova avaliação de %d estrelas", rating),
		Attributes: map[string]string{
			"rental_id": fmt.Sprintf("%d", rental.ID),
			"review_id": fmt.Sprintf("%d", review.ID),
		},
	})

	logger.ExitMethod("reviewService.CreateReview", "reviewID", review.ID)
	return review, nil
}

func (s *reviewService) ListItemReviews(ctx context.Context, itemID int32, page, pageSize int32) ([]domain.Review, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.reviewRepo.ListByItem(ctx, itemID, page, pageSize)
}

func (s *reviewService) ListUserReviews(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Review, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.reviewRepo.ListByReviewed(ctx, userID, page, pageSize)
}

// RecomputeTrustScore derives the user's score from reviews received, completed
// rentals and verification, and stores it when it changed.
func (s *reviewService) RecomputeTrustScore(ctx context.Context, userID int32) (int32, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	avg, count, err := s.reviewRepo.AverageForUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	score := utils.TrustScore(avg, count, user.CompletedRentals, user.KYCStatus == domain.KYCStatusApproved)
	if score == user.TrustScore {
		return score, nil
	}
	if err := s.userRepo.UpdateTrustScore(ctx, userID, score); err != nil {
		return 0, err
	}
	s.events.Publish(ctx, domain.ChangeEvent{Collection: domain.CollectionProfiles, Op: domain.ChangeUpdate, ID: userID})
	return score, nil
}
