package models

import "time"

// Message belongs to exactly one request. SenderRole is captured at send
// time, not re-derived from the identity store later.
type Message struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	SenderRole string    `json:"sender_role"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}
