package repositories

import (
	"context"
	"database/sql"

	"dispatchBack/internal/models"
)

type MessageRepository struct {
	DB *sql.DB
}

func (r *MessageRepository) InsertMessage(ctx context.Context, message models.Message) error {
	query := `
        INSERT INTO messages (id, request_id, sender_id, sender_role, content, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.DB.ExecContext(ctx, query,
		message.ID, message.RequestID, message.SenderID,
		message.SenderRole, message.Content, message.CreatedAt,
	)
	return err
}

// ListByRequest returns the full message sequence for a request, oldest
// first. The seq column breaks created_at ties in insertion order.
func (r *MessageRepository) ListByRequest(ctx context.Context, requestID string) ([]models.Message, error) {
	query := `
        SELECT m.id, m.request_id, m.sender_id, u.username, m.sender_role, m.content, m.created_at
        FROM messages m
        JOIN users u ON u.id = m.sender_id
        WHERE m.request_id = $1
        ORDER BY m.created_at ASC, m.seq ASC
    `
	rows, err := r.DB.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var message models.Message
		err := rows.Scan(
			&message.ID, &message.RequestID, &message.SenderID,
			&message.SenderName, &message.SenderRole, &message.Content, &message.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
