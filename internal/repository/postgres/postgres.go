package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/repository"

	"github.com/lib/pq"
)

// PostgreSQL error codes the repositories translate
const (
	pqUniqueViolation    = "23505"
	pqExclusionViolation = "23P01"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.ItemRepository
	repository.RentalRepository
	repository.ReviewRepository
	repository.MessageRepository
	repository.NotificationRepository
	repository.KYCRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		UserRepository:         NewUserRepository(db),
		ItemRepository:         NewItemRepository(db),
		RentalRepository:       NewRentalRepository(db),
		ReviewRepository:       NewReviewRepository(db),
		MessageRepository:      NewMessageRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		KYCRepository:          NewKYCRepository(db),
	}
}

// Open connects and pings the database
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Ping reports whether the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DB exposes the underlying handle for jobs that run set-based SQL
func (s *Store) DB() *sql.DB {
	return s.db
}

// withTx runs fn in a transaction, rolling back on error or panic
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("Failed to roll back transaction", "error", rbErr)
			}
			return
		}
		err = tx.Commit()
	}()
	return fn(tx)
}

// mapError translates driver errors into repository sentinels
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return fmt.Errorf("%w: %s", repository.ErrConflict, pqErr.Constraint)
		case pqExclusionViolation:
			return repository.ErrOverlap
		}
	}
	return err
}

// expectOne turns a zero-row update into ErrNotFound
func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func offset(page, pageSize int32) int32 {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
