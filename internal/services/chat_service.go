package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dispatchBack/internal/models"
)

// MessageStore persists the chat history of a request.
type MessageStore interface {
	InsertMessage(ctx context.Context, message models.Message) error
	ListByRequest(ctx context.Context, requestID string) ([]models.Message, error)
}

type ChatService struct {
	MessageRepo MessageStore
	RequestRepo RequestStore
}

// SaveMessage persists a chat message with the sender's role as it was at
// send time and returns the stored record ready for broadcast.
func (s *ChatService) SaveMessage(ctx context.Context, requestID string, sender models.User, senderRole, content string) (models.Message, error) {
	content = strings.TrimSpace(content)
	if requestID == "" || content == "" {
		return models.Message{}, fmt.Errorf("%w: request id and content are required", models.ErrValidation)
	}
	if senderRole != models.RoleRequester && senderRole != models.RoleProvider {
		return models.Message{}, fmt.Errorf("%w: unknown sender role %q", models.ErrValidation, senderRole)
	}
	if _, err := s.RequestRepo.GetRequestByID(ctx, requestID); err != nil {
		return models.Message{}, err
	}

	message := models.Message{
		ID:         uuid.NewString(),
		RequestID:  requestID,
		SenderID:   sender.ID,
		SenderName: sender.Username,
		SenderRole: senderRole,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	if err := s.MessageRepo.InsertMessage(ctx, message); err != nil {
		return models.Message{}, err
	}
	return message, nil
}

// History returns the full ordered message sequence for a request. There is
// no pagination; history is expected to stay small per request.
func (s *ChatService) History(ctx context.Context, requestID string) ([]models.Message, error) {
	return s.MessageRepo.ListByRequest(ctx, requestID)
}
