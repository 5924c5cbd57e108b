package postgres

import (
	"context"
	"database/sql"
	"time"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/repository"
)

type reviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewColumns = `id, rental_id, item_id, reviewer_id, reviewed_id, reviewer_role, rating, comment, created_on`

func scanReviews(rows *sql.Rows) ([]domain.Review, error) {
	defer rows.Close()
	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.RentalID, &rv.ItemID, &rv.ReviewerID, &rv.ReviewedID, &rv.ReviewerRole,
			&rv.Rating, &rv.Comment, &rv.CreatedOn); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

func (r *reviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	now := time.Now()
	query := `INSERT INTO reviews (rental_id, item_id, reviewer_id, reviewed_id, reviewer_role, rating, comment, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	logger.DatabaseCall("INSERT", "reviews", "rentalID", rv.RentalID, "role", rv.ReviewerRole)
	err := r.db.QueryRowContext(ctx, query, rv.RentalID, rv.ItemID, rv.ReviewerID, rv.ReviewedID, rv.ReviewerRole,
		rv.Rating, rv.Comment, now).Scan(&rv.ID)
	logger.DatabaseResult("INSERT", 1, err, "reviewID", rv.ID)
	if err != nil {
		return mapError(err)
	}
	rv.CreatedOn = now
	return nil
}

func (r *reviewRepository) ListByRental(ctx context.Context, rentalID int32) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE rental_id = $1 ORDER BY created_on`, rentalID)
	if err != nil {
		return nil, mapError(err)
	}
	return scanReviews(rows)
}

// ListByItem returns the renters' reviews of an item, newest first
func (r *reviewRepository) ListByItem(ctx context.Context, itemID int32, page, pageSize int32) ([]domain.Review, int32, error) {
	var count int32
	countQuery := `SELECT count(*) FROM reviews WHERE item_id = $1 AND reviewer_role = 'RENTER'`
	if err := r.db.QueryRowContext(ctx, countQuery, itemID).Scan(&count); err != nil {
		return nil, 0, mapError(err)
	}

	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE item_id = $1 AND reviewer_role = 'RENTER'
	          ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, itemID, pageSize, offset(page, pageSize))
	if err != nil {
		return nil, 0, mapError(err)
	}
	reviews, err := scanReviews(rows)
	return reviews, count, err
}

func (r *reviewRepository) ListByReviewed(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Review, int32, error) {
	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM reviews WHERE reviewed_id = $1`, userID).Scan(&count); err != nil {
		return nil, 0, mapError(err)
	}

	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE reviewed_id = $1 ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, pageSize, offset(page, pageSize))
	if err != nil {
		return nil, 0, mapError(err)
	}
	reviews, err := scanReviews(rows)
	return reviews, count, err
}

// AverageForUser returns the mean rating a user received and how many reviews it is based on
func (r *reviewRepository) AverageForUser(ctx context.Context, userID int32) (float64, int32, error) {
	var avg float64
	var count int32
	query := `SELECT COALESCE(AVG(rating), 0), count(*) FROM reviews WHERE reviewed_id = $1`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&avg, &count); err != nil {
		return 0, 0, mapError(err)
	}
	return avg, count, nil
}
