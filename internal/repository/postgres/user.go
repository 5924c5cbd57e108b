package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/repository"

	"github.com/lib/pq"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, name, phone, tax_id, avatar_url, city, latitude, longitude, role, plan, plan_expires_on,
	kyc_status, trust_score, completed_rentals, total_transactions, push_token, created_on, updated_on`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	var lat, lng sql.NullFloat64
	var planExpires sql.NullTime
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Phone, &u.TaxID, &u.AvatarURL, &u.City, &lat, &lng,
		&u.Role, &u.Plan, &planExpires, &u.KYCStatus, &u.TrustScore, &u.CompletedRentals, &u.TotalTransactions,
		&u.PushToken, &u.CreatedOn, &u.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if lat.Valid && lng.Valid {
		u.Latitude, u.Longitude = &lat.Float64, &lng.Float64
	}
	if planExpires.Valid {
		u.PlanExpiresOn = &planExpires.Time
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	if u.Role == "" {
		u.Role = domain.UserRoleUser
	}
	if u.Plan == "" {
		u.Plan = domain.PlanFree
	}
	if u.KYCStatus == "" {
		u.KYCStatus = domain.KYCStatusNone
	}
	if u.TrustScore == 0 {
		u.TrustScore = 50
	}
	now := time.Now()
	query := `INSERT INTO users (email, password_hash, name, phone, tax_id, role, plan, kyc_status, trust_score, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	logger.DatabaseCall("INSERT", "users", "email", u.Email)
	err := r.db.QueryRowContext(ctx, query, u.Email, u.PasswordHash, u.Name, u.Phone, u.TaxID, u.Role, u.Plan, u.KYCStatus, u.TrustScore, now, now).Scan(&u.ID)
	logger.DatabaseResult("INSERT", 1, err, "userID", u.ID)
	if err != nil {
		return mapError(err)
	}
	u.CreatedOn, u.UpdatedOn = now, now
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET name=$1, phone=$2, tax_id=$3, avatar_url=$4, city=$5, updated_on=$6 WHERE id=$7`
	res, err := r.db.ExecContext(ctx, query, u.Name, u.Phone, u.TaxID, u.AvatarURL, u.City, time.Now(), u.ID)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res)
}

func (r *userRepository) UpdateLocation(ctx context.Context, id int32, p domain.GeoPoint, city string) error {
	query := `UPDATE users SET latitude=$1, longitude=$2, city=$3, updated_on=$4 WHERE id=$5`
	res, err := r.db.ExecContext(ctx, query, p.Lat, p.Lng, city, time.Now(), id)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res)
}

func (r *userRepository) UpdatePushToken(ctx context.Context, id int32, token string) error {
	query := `UPDATE users SET push_token=$1, updated_on=$2 WHERE id=$3`
	res, err := r.db.ExecContext(ctx, query, token, time.Now(), id)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res)
}

func (r *userRepository) UpdatePlan(ctx context.Context, id int32, plan domain.Plan, expiresOn *time.Time) error {
	query := `UPDATE users SET plan=$1, plan_expires_on=$2, updated_on=$3 WHERE id=$4`
	logger.DatabaseCall("UPDATE", "users", "userID", id, "plan", plan)
	res, err := r.db.ExecContext(ctx, query, plan, expiresOn, time.Now(), id)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res)
}

func (r *userRepository) UpdateKYCStatus(ctx context.Context, id int32, status domain.KYCStatus) error {
	query := `UPDATE users SET kyc_status=$1, updated_on=$2 WHERE id=$3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res)
}

func (r *userRepository) UpdateTrustScore(ctx context.Context, id int32, score int32) error {
	query := `UPDATE users SET trust_score=$1, updated_on=$2 WHERE id=$3`
	res, err := r.db.ExecContext(ctx, query, score, time.Now(), id)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res)
}

// IncrementTransactions bumps completed rental counters for every party of a completed rental
func (r *userRepository) IncrementTransactions(ctx context.Context, ids ...int32) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE users SET completed_rentals = completed_rentals + 1, total_transactions = total_transactions + 1, updated_on = $1
	          WHERE id = ANY($2)`
	_, err := r.db.ExecContext(ctx, query, time.Now(), pq.Array(ids))
	return mapError(err)
}

func (r *userRepository) List(ctx context.Context, query string, page, pageSize int32) ([]domain.User, int32, error) {
	where := ""
	args := []any{}
	if query != "" {
		where = " WHERE name ILIKE $1 OR email ILIKE $1"
		args = append(args, "%"+query+"%")
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM users`+where, args...).Scan(&count); err != nil {
		return nil, 0, mapError(err)
	}

	n := len(args)
	sqlStr := fmt.Sprintf(`SELECT `+userColumns+` FROM users%s ORDER BY created_on DESC LIMIT $%d OFFSET $%d`, where, n+1, n+2)
	args = append(args, pageSize, offset(page, pageSize))

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, count, rows.Err()
}

func (r *userRepository) ListIDs(ctx context.Context) ([]int32, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListExpiredPlans returns paid users whose plan period ended before now
func (r *userRepository) ListExpiredPlans(ctx context.Context, now time.Time) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE plan <> 'FREE' AND plan_expires_on IS NOT NULL AND plan_expires_on < $1`
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
