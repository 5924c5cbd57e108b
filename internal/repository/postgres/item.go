package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/repository"

	"github.com/lib/pq"
)

type itemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

const itemColumns = `id, owner_id, title, description, category, images, video_url, price_per_day_cents, price_per_week_cents,
	price_per_month_cents, delivery_enabled, delivery_fee_cents, delivery_radius_km, available, status, latitude, longitude,
	city, rating, review_count, created_on, updated_on, deleted_on`

func scanItem(row rowScanner) (*domain.Item, error) {
	it := &domain.Item{}
	var deleted sql.NullTime
	err := row.Scan(&it.ID, &it.OwnerID, &it.Title, &it.Description, &it.Category, pq.Array(&it.Images), &it.VideoURL,
		&it.PricePerDayCents, &it.PricePerWeekCents, &it.PricePerMonthCents, &it.Delivery.Enabled, &it.Delivery.FeeCents,
		&it.Delivery.MaxRadiusKm, &it.Available, &it.Status, &it.Latitude, &it.Longitude, &it.City, &it.Rating,
		&it.ReviewCount, &it.CreatedOn, &it.UpdatedOn, &deleted)
	if err != nil {
		return nil, err
	}
	if deleted.Valid {
		it.DeletedOn = &deleted.Time
	}
	return it, nil
}

func scanItems(rows *sql.Rows) ([]domain.Item, error) {
	defer rows.Close()
	var items []domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (r *itemRepository) Create(ctx context.Context, it *domain.Item) error {
	if it.Status == "" {
		it.Status = domain.ItemStatusAvailable
	}
	if it.Images == nil {
		it.Images = []string{}
	}
	now := time.Now()
	query := `INSERT INTO items (owner_id, title, description, category, images, video_url, price_per_day_cents, price_per_week_cents,
	          price_per_month_cents, delivery_enabled, delivery_fee_cents, delivery_radius_km, available, status, latitude, longitude, city,
	          created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19) RETURNING id`
	logger.DatabaseCall("INSERT", "items", "ownerID", it.OwnerID)
	err := r.db.QueryRowContext(ctx, query, it.OwnerID, it.Title, it.Description, it.Category, pq.Array(it.Images), it.VideoURL,
		it.PricePerDayCents, it.PricePerWeekCents, it.PricePerMonthCents, it.Delivery.Enabled, it.Delivery.FeeCents,
		it.Delivery.MaxRadiusKm, it.Available, it.Status, it.Latitude, it.Longitude, it.City, now, now).Scan(&it.ID)
	logger.DatabaseResult("INSERT", 1, err, "itemID", it.ID)
	if err != nil {
		return mapError(err)
	}
	it.CreatedOn, it.UpdatedOn = now, now
	return nil
}

func (r *itemRepository) GetByID(ctx context.Context, id int32) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	it, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return it, nil
}

func (r *itemRepository) Update(ctx context.Context, it *domain.Item) error {
	it.UpdatedOn = time.Now()
	query := `UPDATE items SET title=$1, description=$2, category=$3, images=$4, video_url=$5, price_per_day_cents=$6,
	          price_per_week_cents=$7, price_per_month_cents=$8, delivery_enabled=$9, delivery_fee_cents=$10, delivery_radius_km=$11,
	          available=$12, status=$13, latitude=$14, longitude=$15, city=$16, updated_on=$17
	          WHERE id=$18 AND deleted_on IS NULL`
	res, err := r.db.ExecContext(ctx, query, it.Title, it.Description, it.Category, pq.Array(it.Images), it.VideoURL,
		it.PricePerDayCents, it.PricePerWeekCents, it.PricePerMonthCents, it.Delivery.Enabled, it.Delivery.FeeCents,
		it.Delivery.MaxRadiusKm, it.Available, it.Status, it.Latitude, it.Longitude, it.City, it.UpdatedOn, it.ID)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res)
}

// Delete soft-deletes the listing; rentals keep referencing it
func (r *itemRepository) Delete(ctx context.Context, id int32) error {
	query := `UPDATE items SET deleted_on = $1, available = FALSE WHERE id = $2 AND deleted_on IS NULL`
	res, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res)
}

func (r *itemRepository) CountActiveByOwner(ctx context.Context, ownerID int32) (int, error) {
	var count int
	query := `SELECT count(*) FROM items WHERE owner_id = $1 AND deleted_on IS NULL`
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&count)
	return count, mapError(err)
}

func (r *itemRepository) ListByOwner(ctx context.Context, ownerID int32, page, pageSize int32) ([]domain.Item, int32, error) {
	var count int32
	countQuery := `SELECT count(*) FROM items WHERE owner_id = $1 AND deleted_on IS NULL`
	if err := r.db.QueryRowContext(ctx, countQuery, ownerID).Scan(&count); err != nil {
		return nil, 0, mapError(err)
	}

	query := `SELECT ` + itemColumns + ` FROM items WHERE owner_id = $1 AND deleted_on IS NULL ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, ownerID, pageSize, offset(page, pageSize))
	if err != nil {
		return nil, 0, mapError(err)
	}
	items, err := scanItems(rows)
	return items, count, err
}

// maxRadiusKm is half the Earth's circumference, i.e. no radius limit
const maxRadiusKm = 20038

// haversineSQL is the great-circle distance in km from ($lat, $lng) to the item row
const haversineSQL = `(6371 * 2 * asin(sqrt(power(sin(radians(latitude - $%[1]d) / 2), 2) +
	cos(radians($%[1]d)) * cos(radians(latitude)) * power(sin(radians(longitude - $%[2]d) / 2), 2))))`

func (r *itemRepository) Search(ctx context.Context, f domain.ItemFilter) ([]domain.Item, int32, error) {
	conds := []string{"deleted_on IS NULL", "available = TRUE"}
	var args []any
	argIdx := 1

	if f.Query != "" {
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+f.Query+"%")
		argIdx++
	}
	if f.Category != "" {
		conds = append(conds, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, f.Category)
		argIdx++
	}
	if f.MaxPriceCents > 0 {
		conds = append(conds, fmt.Sprintf("price_per_day_cents <= $%d", argIdx))
		args = append(args, f.MaxPriceCents)
		argIdx++
	}
	if f.City != "" {
		conds = append(conds, fmt.Sprintf("lower(city) = lower($%d)", argIdx))
		args = append(args, f.City)
		argIdx++
	}

	distance := ""
	if f.Near != nil {
		distance = fmt.Sprintf(haversineSQL, argIdx, argIdx+1)
		args = append(args, f.Near.Lat, f.Near.Lng)
		argIdx += 2
		radius := f.RadiusKm
		if radius <= 0 {
			radius = maxRadiusKm
		}
		conds = append(conds, fmt.Sprintf("%s <= $%d", distance, argIdx))
		args = append(args, radius)
		argIdx++
	}

	where := " WHERE " + strings.Join(conds, " AND ")

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM items`+where, args...).Scan(&count); err != nil {
		return nil, 0, mapError(err)
	}

	order := "created_on DESC"
	switch f.Sort {
	case domain.ItemSortPrice:
		order = "price_per_day_cents ASC, id ASC"
	case domain.ItemSortRating:
		order = "rating DESC, review_count DESC, id ASC"
	case domain.ItemSortDistance:
		if distance != "" {
			order = distance + " ASC, id ASC"
		}
	}

	query := fmt.Sprintf(`SELECT `+itemColumns+` FROM items%s ORDER BY %s LIMIT $%d OFFSET $%d`, where, order, argIdx, argIdx+1)
	args = append(args, f.PageSize, offset(f.Page, f.PageSize))

	logger.DatabaseCall("SELECT", "items", "filter", f.Query, "category", f.Category, "sort", f.Sort)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	items, err := scanItems(rows)
	return items, count, err
}

// UpdateRating recomputes the aggregate from reviews left by renters
func (r *itemRepository) UpdateRating(ctx context.Context, id int32) error {
	query := `UPDATE items SET
	            rating = COALESCE((SELECT AVG(rating)::float8 FROM reviews WHERE item_id = $1 AND reviewer_role = 'RENTER'), 0),
	            review_count = (SELECT count(*) FROM reviews WHERE item_id = $1 AND reviewer_role = 'RENTER')
	          WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return mapError(err)
}

func (r *itemRepository) CreateImage(ctx context.Context, img *domain.ItemImage) error {
	if img.Status == "" {
		img.Status = domain.ImageStatusPending
	}
	img.CreatedOn = time.Now()
	var itemID sql.NullInt32
	if img.ItemID != 0 {
		itemID = sql.NullInt32{Int32: img.ItemID, Valid: true}
	}
	query := `INSERT INTO item_images (item_id, user_id, file_name, file_path, mime_type, status, expires_at, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, itemID, img.UserID, img.FileName, img.FilePath, img.MimeType, img.Status, img.ExpiresAt, img.CreatedOn).Scan(&img.ID)
	return mapError(err)
}

func (r *itemRepository) GetImage(ctx context.Context, id int32) (*domain.ItemImage, error) {
	img := &domain.ItemImage{}
	var itemID sql.NullInt32
	var expires, confirmed sql.NullTime
	query := `SELECT id, item_id, user_id, file_name, file_path, mime_type, status, expires_at, created_on, confirmed_on
	          FROM item_images WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&img.ID, &itemID, &img.UserID, &img.FileName, &img.FilePath, &img.MimeType,
		&img.Status, &expires, &img.CreatedOn, &confirmed)
	if err != nil {
		return nil, mapError(err)
	}
	img.ItemID = itemID.Int32
	if expires.Valid {
		img.ExpiresAt = &expires.Time
	}
	if confirmed.Valid {
		img.ConfirmedOn = &confirmed.Time
	}
	return img, nil
}

// ConfirmImage marks a pending upload confirmed and appends it to the item's gallery
func (r *itemRepository) ConfirmImage(ctx context.Context, imageID, itemID int32) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var path string
		err := tx.QueryRowContext(ctx,
			`UPDATE item_images SET status = 'CONFIRMED', item_id = $1, confirmed_on = $2, expires_at = NULL
			 WHERE id = $3 AND status = 'PENDING' RETURNING file_path`,
			itemID, time.Now(), imageID).Scan(&path)
		if err != nil {
			return mapError(err)
		}
		res, err := tx.ExecContext(ctx, `UPDATE items SET images = array_append(images, $1), updated_on = $2 WHERE id = $3`, path, time.Now(), itemID)
		if err != nil {
			return mapError(err)
		}
		return expectOne(res)
	})
}

// DeleteExpiredPendingImages removes unconfirmed uploads past their expiry and returns them
// so the caller can delete the stored objects
func (r *itemRepository) DeleteExpiredPendingImages(ctx context.Context, now time.Time) ([]domain.ItemImage, error) {
	query := `DELETE FROM item_images WHERE status = 'PENDING' AND expires_at < $1
	          RETURNING id, user_id, file_name, file_path, mime_type, status, created_on`
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var images []domain.ItemImage
	for rows.Next() {
		var img domain.ItemImage
		if err := rows.Scan(&img.ID, &img.UserID, &img.FileName, &img.FilePath, &img.MimeType, &img.Status, &img.CreatedOn); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}
