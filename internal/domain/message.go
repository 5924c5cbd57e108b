package domain

import "time"

type Message struct {
	ID         int32     `json:"id"`
	SenderID   int32     `json:"sender_id"`
	ReceiverID int32     `json:"receiver_id"`
	ItemID     *int32    `json:"item_id,omitempty"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"is_read"`
	CreatedOn  time.Time `json:"created_on"`
}

// Conversation summarises the latest exchange with one other user.
type Conversation struct {
	OtherUserID int32   `json:"other_user_id"`
	OtherName   string  `json:"other_name"`
	LastMessage Message `json:"last_message"`
	UnreadCount int32   `json:"unread_count"`
}
