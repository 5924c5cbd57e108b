package postgres

import (
	"context"
	"database/sql"
	"time"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/repository"
)

type messageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) repository.MessageRepository {
	return &messageRepository{db: db}
}

const messageColumns = `id, sender_id, receiver_id, item_id, content, is_read, created_on`

func scanMessage(row rowScanner) (*domain.Message, error) {
	m := &domain.Message{}
	var itemID sql.NullInt32
	if err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &itemID, &m.Content, &m.IsRead, &m.CreatedOn); err != nil {
		return nil, err
	}
	if itemID.Valid {
		m.ItemID = &itemID.Int32
	}
	return m, nil
}

func (r *messageRepository) Create(ctx context.Context, m *domain.Message) error {
	now := time.Now()
	query := `INSERT INTO messages (sender_id, receiver_id, item_id, content, is_read, created_on)
	          VALUES ($1, $2, $3, $4, FALSE, $5) RETURNING id`
	logger.DatabaseCall("INSERT", "messages", "senderID", m.SenderID, "receiverID", m.ReceiverID)
	err := r.db.QueryRowContext(ctx, query, m.SenderID, m.ReceiverID, m.ItemID, m.Content, now).Scan(&m.ID)
	logger.DatabaseResult("INSERT", 1, err, "messageID", m.ID)
	if err != nil {
		return mapError(err)
	}
	m.CreatedOn = now
	return nil
}

// ListConversation pages through the messages exchanged by two users, newest first
func (r *messageRepository) ListConversation(ctx context.Context, userID, otherID int32, page, pageSize int32) ([]domain.Message, int32, error) {
	pair := ` FROM messages WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)`

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*)`+pair, userID, otherID).Scan(&count); err != nil {
		return nil, 0, mapError(err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+messageColumns+pair+` ORDER BY created_on DESC, id DESC LIMIT $3 OFFSET $4`,
		userID, otherID, pageSize, offset(page, pageSize))
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, 0, err
		}
		msgs = append(msgs, *m)
	}
	return msgs, count, rows.Err()
}

// ListConversations returns one entry per counterpart with the latest message
// and the number of unread messages addressed to the user
func (r *messageRepository) ListConversations(ctx context.Context, userID int32) ([]domain.Conversation, error) {
	query := `WITH latest AS (
	              SELECT DISTINCT ON (LEAST(sender_id, receiver_id), GREATEST(sender_id, receiver_id))
	                     id, sender_id, receiver_id, item_id, content, is_read, created_on,
	                     CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS other_id
	              FROM messages
	              WHERE sender_id = $1 OR receiver_id = $1
	              ORDER BY LEAST(sender_id, receiver_id), GREATEST(sender_id, receiver_id), created_on DESC, id DESC
	          )
	          SELECT l.id, l.sender_id, l.receiver_id, l.item_id, l.content, l.is_read, l.created_on,
	                 l.other_id, u.name,
	                 (SELECT count(*) FROM messages m WHERE m.sender_id = l.other_id AND m.receiver_id = $1 AND NOT m.is_read)
	          FROM latest l JOIN users u ON u.id = l.other_id
	          ORDER BY l.created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		var itemID sql.NullInt32
		m := &c.LastMessage
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &itemID, &m.Content, &m.IsRead, &m.CreatedOn,
			&c.OtherUserID, &c.OtherName, &c.UnreadCount); err != nil {
			return nil, err
		}
		if itemID.Valid {
			m.ItemID = &itemID.Int32
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

// MarkAsRead only succeeds for the receiver of the message
func (r *messageRepository) MarkAsRead(ctx context.Context, id, receiverID int32) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET is_read = TRUE WHERE id = $1 AND receiver_id = $2`, id, receiverID)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res)
}
