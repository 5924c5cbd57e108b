package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/repository"
)

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

const rentalColumns = `id, item_id, renter_id, owner_id, start_date, end_date, total_price_cents, delivery_method, delivery_fee_cents,
	delivery_address, contract_accepted, status, cancel_reason, cancelled_by, created_on, updated_on`

func scanRental(row rowScanner) (*domain.Rental, error) {
	rt := &domain.Rental{}
	var cancelledBy sql.NullInt32
	err := row.Scan(&rt.ID, &rt.ItemID, &rt.RenterID, &rt.OwnerID, &rt.StartDate, &rt.EndDate, &rt.TotalPriceCents,
		&rt.DeliveryMethod, &rt.DeliveryFeeCents, &rt.DeliveryAddress, &rt.ContractAccepted, &rt.Status, &rt.CancelReason,
		&cancelledBy, &rt.CreatedOn, &rt.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if cancelledBy.Valid {
		rt.CancelledBy = &cancelledBy.Int32
	}
	return rt, nil
}

func scanRentals(rows *sql.Rows) ([]domain.Rental, error) {
	defer rows.Close()
	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}

// Create serialises bookings per item: the item row is locked, overlapping
// non-cancelled rentals are checked, then the rental is inserted. The
// rentals_no_overlap exclusion constraint backs this up.
func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	logger.EnterMethod("rentalRepository.Create", "itemID", rt.ItemID, "renterID", rt.RenterID)

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var lockedID int32
		if err := tx.QueryRowContext(ctx, `SELECT id FROM items WHERE id = $1 AND deleted_on IS NULL FOR UPDATE`, rt.ItemID).Scan(&lockedID); err != nil {
			return mapError(err)
		}

		var overlapping int
		overlapQuery := `SELECT count(*) FROM rentals
		                 WHERE item_id = $1 AND status <> 'CANCELLED' AND start_date <= $3 AND end_date >= $2`
		if err := tx.QueryRowContext(ctx, overlapQuery, rt.ItemID, rt.StartDate, rt.EndDate).Scan(&overlapping); err != nil {
			return mapError(err)
		}
		if overlapping > 0 {
			return repository.ErrOverlap
		}

		now := time.Now()
		query := `INSERT INTO rentals (item_id, renter_id, owner_id, start_date, end_date, total_price_cents, delivery_method,
		          delivery_fee_cents, delivery_address, contract_accepted, status, created_on, updated_on)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
		logger.DatabaseCall("INSERT", "rentals", "itemID", rt.ItemID)
		err := tx.QueryRowContext(ctx, query, rt.ItemID, rt.RenterID, rt.OwnerID, rt.StartDate, rt.EndDate, rt.TotalPriceCents,
			rt.DeliveryMethod, rt.DeliveryFeeCents, rt.DeliveryAddress, rt.ContractAccepted, rt.Status, now, now).Scan(&rt.ID)
		logger.DatabaseResult("INSERT", 1, err, "rentalID", rt.ID)
		if err != nil {
			return mapError(err)
		}
		rt.CreatedOn, rt.UpdatedOn = now, now
		return nil
	})

	if err != nil {
		logger.ExitMethodWithError("rentalRepository.Create", err, "itemID", rt.ItemID)
		return err
	}
	logger.ExitMethod("rentalRepository.Create", "rentalID", rt.ID)
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return rt, nil
}

// UpdateStatus writes the new status only if nobody changed it since it was read.
// A lost race surfaces as ErrConflict.
func (r *rentalRepository) UpdateStatus(ctx context.Context, rt *domain.Rental, from domain.RentalStatus) error {
	rt.UpdatedOn = time.Now()
	query := `UPDATE rentals SET status=$1, cancel_reason=$2, cancelled_by=$3, updated_on=$4 WHERE id=$5 AND status=$6`
	logger.DatabaseCall("UPDATE", "rentals", "rentalID", rt.ID, "from", from, "to", rt.Status)
	res, err := r.db.ExecContext(ctx, query, rt.Status, rt.CancelReason, rt.CancelledBy, rt.UpdatedOn, rt.ID, from)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: rental %d is no longer %s", repository.ErrConflict, rt.ID, from)
	}
	return nil
}

// ListByItem returns rentals of the item whose dates touch [from, to], cancelled ones included
func (r *rentalRepository) ListByItem(ctx context.Context, itemID int32, from, to time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE item_id = $1 AND start_date <= $3 AND end_date >= $2 ORDER BY start_date`
	rows, err := r.db.QueryContext(ctx, query, itemID, from, to)
	if err != nil {
		return nil, mapError(err)
	}
	return scanRentals(rows)
}

func (r *rentalRepository) ListByRenter(ctx context.Context, renterID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error) {
	return r.listBy(ctx, "renter_id", renterID, status, page, pageSize)
}

func (r *rentalRepository) ListByOwner(ctx context.Context, ownerID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error) {
	return r.listBy(ctx, "owner_id", ownerID, status, page, pageSize)
}

func (r *rentalRepository) listBy(ctx context.Context, column string, userID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error) {
	where := fmt.Sprintf(" WHERE %s = $1", column)
	args := []any{userID}
	argIdx := 2
	if status != "" {
		where += " AND status = $2"
		args = append(args, status)
		argIdx++
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM rentals"+where, args...).Scan(&count); err != nil {
		return nil, 0, mapError(err)
	}

	query := fmt.Sprintf("SELECT "+rentalColumns+" FROM rentals%s ORDER BY created_on DESC LIMIT $%d OFFSET $%d", where, argIdx, argIdx+1)
	args = append(args, pageSize, offset(page, pageSize))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	rentals, err := scanRentals(rows)
	return rentals, count, err
}

func (r *rentalRepository) ListPendingOlderThan(ctx context.Context, before time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE status = 'PENDING' AND created_on < $1 ORDER BY created_on`
	rows, err := r.db.QueryContext(ctx, query, before)
	if err != nil {
		return nil, mapError(err)
	}
	return scanRentals(rows)
}

// ListCompletedWithoutReviews returns rentals completed since the given time that
// are still missing a review from at least one party
func (r *rentalRepository) ListCompletedWithoutReviews(ctx context.Context, since time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals rt
	          WHERE rt.status = 'COMPLETED' AND rt.updated_on >= $1
	            AND (SELECT count(*) FROM reviews rv WHERE rv.rental_id = rt.id) < 2
	          ORDER BY rt.updated_on`
	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, mapError(err)
	}
	return scanRentals(rows)
}
