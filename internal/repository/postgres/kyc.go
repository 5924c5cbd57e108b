package postgres

import (
	"context"
	"database/sql"
	"time"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/repository"
)

type kycRepository struct {
	db *sql.DB
}

func NewKYCRepository(db *sql.DB) repository.KYCRepository {
	return &kycRepository{db: db}
}

const kycColumns = `id, user_id, document_key, selfie_key, status, reviewer_id, rejection_reason, created_on, reviewed_on`

func scanKYC(row rowScanner) (*domain.KYCRequest, error) {
	k := &domain.KYCRequest{}
	var reviewer sql.NullInt32
	var reviewed sql.NullTime
	if err := row.Scan(&k.ID, &k.UserID, &k.DocumentKey, &k.SelfieKey, &k.Status, &reviewer, &k.RejectionReason,
		&k.CreatedOn, &reviewed); err != nil {
		return nil, err
	}
	if reviewer.Valid {
		k.ReviewerID = &reviewer.Int32
	}
	if reviewed.Valid {
		k.ReviewedOn = &reviewed.Time
	}
	return k, nil
}

// Create stores the submission and flips the user to PENDING in one transaction
func (r *kycRepository) Create(ctx context.Context, k *domain.KYCRequest) error {
	logger.EnterMethod("kycRepository.Create", "userID", k.UserID)
	k.Status = domain.KYCStatusPending
	now := time.Now()

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `INSERT INTO kyc_requests (user_id, document_key, selfie_key, status, created_on)
		          VALUES ($1, $2, $3, $4, $5) RETURNING id`
		if err := tx.QueryRowContext(ctx, query, k.UserID, k.DocumentKey, k.SelfieKey, k.Status, now).Scan(&k.ID); err != nil {
			return mapError(err)
		}
		res, err := tx.ExecContext(ctx, `UPDATE users SET kyc_status = $1, updated_on = $2 WHERE id = $3`, k.Status, now, k.UserID)
		if err != nil {
			return mapError(err)
		}
		return expectOne(res)
	})
	if err != nil {
		logger.ExitMethodWithError("kycRepository.Create", err, "userID", k.UserID)
		return err
	}
	k.CreatedOn = now
	logger.ExitMethod("kycRepository.Create", "kycID", k.ID)
	return nil
}

func (r *kycRepository) GetByID(ctx context.Context, id int32) (*domain.KYCRequest, error) {
	k, err := scanKYC(r.db.QueryRowContext(ctx, `SELECT `+kycColumns+` FROM kyc_requests WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return k, nil
}

func (r *kycRepository) ListByStatus(ctx context.Context, status domain.KYCStatus) ([]domain.KYCRequest, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+kycColumns+` FROM kyc_requests WHERE status = $1 ORDER BY created_on`, status)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var reqs []domain.KYCRequest
	for rows.Next() {
		k, err := scanKYC(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *k)
	}
	return reqs, rows.Err()
}

// Review records an admin decision on a pending request and mirrors it onto the user
func (r *kycRepository) Review(ctx context.Context, k *domain.KYCRequest) error {
	logger.EnterMethod("kycRepository.Review", "kycID", k.ID, "status", k.Status)
	now := time.Now()

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `UPDATE kyc_requests SET status = $1, reviewer_id = $2, rejection_reason = $3, reviewed_on = $4
		          WHERE id = $5 AND status = 'PENDING'`
		res, err := tx.ExecContext(ctx, query, k.Status, k.ReviewerID, k.RejectionReason, now, k.ID)
		if err != nil {
			return mapError(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrConflict
		}
		res, err = tx.ExecContext(ctx, `UPDATE users SET kyc_status = $1, updated_on = $2 WHERE id = $3`, k.Status, now, k.UserID)
		if err != nil {
			return mapError(err)
		}
		return expectOne(res)
	})
	if err != nil {
		logger.ExitMethodWithError("kycRepository.Review", err, "kycID", k.ID)
		return err
	}
	k.ReviewedOn = &now
	logger.ExitMethod("kycRepository.Review", "kycID", k.ID)
	return nil
}
