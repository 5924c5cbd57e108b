package postgres_test

import (
	"context"
	"testing"
	"time"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/repository"
	"bora-alugar-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var itemCols = []string{"id", "owner_id", "title", "description", "category", "images", "video_url", "price_per_day_cents",
	"price_per_week_cents", "price_per_month_cents", "delivery_enabled", "delivery_fee_cents", "delivery_radius_km", "available", "status",
	"latitude", "longitude", "city", "rating", "review_count", "created_on", "updated_on", "deleted_on"}

func itemRow(rows *sqlmock.Rows, id int32, title string) *sqlmock.Rows {
	return rows.AddRow(id, 4, title, "", "tools", "{a.jpg,b.jpg}", "", 5000, 0, 0, true, 1500, 20, true, "AVAILABLE",
		-23.55, -46.63, "São Paulo", 4.5, 2, time.Now(), time.Now(), nil)
}

func TestItemRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewItemRepository(db)

	item := &domain.Item{OwnerID: 4, Title: "Drill", Category: "tools", PricePerDayCents: 5000, Available: true, Latitude: -23.55, Longitude: -46.63}
	mock.ExpectQuery("INSERT INTO items").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	require.NoError(t, repo.Create(context.Background(), item))
	assert.Equal(t, int32(11), item.ID)
	assert.Equal(t, domain.ItemStatusAvailable, item.Status)
	assert.NotNil(t, item.Images)
}

func TestItemRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewItemRepository(db)

	mock.ExpectQuery("(?s)SELECT (.+) FROM items WHERE id = \\$1").
		WithArgs(int32(11)).
		WillReturnRows(itemRow(sqlmock.NewRows(itemCols), 11, "Drill"))

	item, err := repo.GetByID(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, item.Images)
	assert.True(t, item.Delivery.Enabled)
	assert.Equal(t, int32(20), item.Delivery.MaxRadiusKm)
	assert.True(t, item.Rentable())
}

func TestItemRepository_Search(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewItemRepository(db)
	ctx := context.Background()

	t.Run("Text and category", func(t *testing.T) {
		filter := domain.ItemFilter{Query: "drill", Category: "tools", Sort: domain.ItemSortPrice, Page: 1, PageSize: 20}

		mock.ExpectQuery("SELECT count\\(\\*\\) FROM items WHERE deleted_on IS NULL AND available = TRUE AND \\(title ILIKE \\$1 OR description ILIKE \\$1\\) AND category = \\$2").
			WithArgs("%drill%", "tools").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("ORDER BY price_per_day_cents ASC, id ASC LIMIT \\$3 OFFSET \\$4").
			WithArgs("%drill%", "tools", int32(20), int32(0)).
			WillReturnRows(itemRow(sqlmock.NewRows(itemCols), 11, "Drill"))

		items, count, err := repo.Search(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int32(1), count)
		require.Len(t, items, 1)
		assert.Equal(t, "Drill", items[0].Title)
	})

	t.Run("Near a point sorted by distance", func(t *testing.T) {
		filter := domain.ItemFilter{Near: &domain.GeoPoint{Lat: -23.5, Lng: -46.6}, Sort: domain.ItemSortDistance, Page: 1, PageSize: 10}

		mock.ExpectQuery("(?s)SELECT count\\(\\*\\) FROM items WHERE (.+) asin").
			WithArgs(-23.5, -46.6, 20038).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectQuery("(?s)ORDER BY \\(6371 (.+) ASC, id ASC LIMIT \\$4 OFFSET \\$5").
			WithArgs(-23.5, -46.6, 20038, int32(10), int32(0)).
			WillReturnRows(itemRow(itemRow(sqlmock.NewRows(itemCols), 11, "Drill"), 12, "Ladder"))

		items, count, err := repo.Search(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int32(2), count)
		assert.Len(t, items, 2)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewItemRepository(db)

	mock.ExpectExec("UPDATE items SET deleted_on = \\$1, available = FALSE").
		WithArgs(sqlmock.AnyArg(), int32(11)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 11), repository.ErrNotFound)
}

func TestItemRepository_ConfirmImage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewItemRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE item_images SET status = 'CONFIRMED'").
		WithArgs(int32(11), sqlmock.AnyArg(), int32(3)).
		WillReturnRows(sqlmock.NewRows([]string{"file_path"}).AddRow("items/11/a.jpg"))
	mock.ExpectExec("UPDATE items SET images = array_append").
		WithArgs("items/11/a.jpg", sqlmock.AnyArg(), int32(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.ConfirmImage(context.Background(), 3, 11))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_GetImage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewItemRepository(db)

	cols := []string{"id", "item_id", "user_id", "file_name", "file_path", "mime_type", "status", "expires_at", "created_on", "confirmed_on"}

	t.Run("Pending upload", func(t *testing.T) {
		expires := time.Now().Add(time.Hour)
		mock.ExpectQuery("SELECT (.+) FROM item_images WHERE id = \\$1").WithArgs(int32(3)).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(3, nil, 4, "drill.jpg", "items/4/abc.jpg", "image/jpeg", "PENDING", expires, time.Now(), nil))

		img, err := repo.GetImage(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, int32(0), img.ItemID)
		assert.Equal(t, "items/4/abc.jpg", img.FilePath)
		assert.NotNil(t, img.ExpiresAt)
		assert.Nil(t, img.ConfirmedOn)
	})

	t.Run("Missing", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM item_images").WillReturnRows(sqlmock.NewRows(cols))
		_, err := repo.GetImage(context.Background(), 9)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
