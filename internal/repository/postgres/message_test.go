package postgres_test

import (
	"context"
	"testing"
	"time"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewMessageRepository(db)
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		itemID := int32(11)
		msg := &domain.Message{SenderID: 3, ReceiverID: 4, ItemID: &itemID, Content: "Is it free on Saturday?"}

		mock.ExpectQuery("INSERT INTO messages").
			WithArgs(int32(3), int32(4), &itemID, "Is it free on Saturday?", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		require.NoError(t, repo.Create(ctx, msg))
		assert.Equal(t, int32(1), msg.ID)
	})

	t.Run("ListConversations", func(t *testing.T) {
		mock.ExpectQuery("WITH latest AS").
			WithArgs(int32(3)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "sender_id", "receiver_id", "item_id", "content", "is_read", "created_on", "other_id", "name", "count"}).
				AddRow(2, 4, 3, nil, "Yes it is", false, time.Now(), 4, "Bruno", 1))

		convs, err := repo.ListConversations(ctx, 3)
		require.NoError(t, err)
		require.Len(t, convs, 1)
		assert.Equal(t, int32(4), convs[0].OtherUserID)
		assert.Equal(t, "Bruno", convs[0].OtherName)
		assert.Equal(t, int32(1), convs[0].UnreadCount)
		assert.Nil(t, convs[0].LastMessage.ItemID)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
