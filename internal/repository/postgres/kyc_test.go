package postgres_test

import (
	"context"
	"testing"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/repository"
	"bora-alugar-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKYCRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewKYCRepository(db)

	req := &domain.KYCRequest{UserID: 3, DocumentKey: "kyc/3/doc.jpg", SelfieKey: "kyc/3/selfie.jpg"}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO kyc_requests").
		WithArgs(int32(3), "kyc/3/doc.jpg", "kyc/3/selfie.jpg", domain.KYCStatusPending, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec("UPDATE users SET kyc_status = \\$1").
		WithArgs(domain.KYCStatusPending, sqlmock.AnyArg(), int32(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), req))
	assert.Equal(t, int32(1), req.ID)
	assert.Equal(t, domain.KYCStatusPending, req.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKYCRepository_Review(t *testing.T) {
	ctx := context.Background()
	adminID := int32(1)

	t.Run("Approve", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewKYCRepository(db)
		req := &domain.KYCRequest{ID: 1, UserID: 3, Status: domain.KYCStatusApproved, ReviewerID: &adminID}

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE kyc_requests SET status = \\$1").
			WithArgs(domain.KYCStatusApproved, sqlmock.AnyArg(), "", sqlmock.AnyArg(), int32(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE users SET kyc_status = \\$1").
			WithArgs(domain.KYCStatusApproved, sqlmock.AnyArg(), int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Review(ctx, req))
		assert.NotNil(t, req.ReviewedOn)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already reviewed", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := postgres.NewKYCRepository(db)
		req := &domain.KYCRequest{ID: 1, UserID: 3, Status: domain.KYCStatusRejected, ReviewerID: &adminID, RejectionReason: "blurry"}

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE kyc_requests SET status = \\$1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Review(ctx, req), repository.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
