package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dispatchBack/internal/lifecycle"
	"dispatchBack/internal/models"
)

// RequestStore is the durable-store contract the lifecycle manager consumes.
type RequestStore interface {
	InsertRequest(ctx context.Context, req models.Request) error
	GetRequestByID(ctx context.Context, id string) (models.Request, error)
	ConditionalUpdateStatus(ctx context.Context, id, expectedStatus, newStatus string, providerID *string) (bool, error)
	UpdateFeedback(ctx context.Context, id string, fb models.Feedback) error
	ListByRequester(ctx context.Context, requesterID string) ([]models.Request, error)
	ListUnassignedPending(ctx context.Context) ([]models.Request, error)
	FindActiveForProvider(ctx context.Context, providerID string) (models.Request, error)
	ListCompletedForParty(ctx context.Context, userID, role string) ([]models.Request, error)
}

// Notifier delivers out-of-band pushes about lifecycle changes. A nil
// notifier disables them.
type Notifier interface {
	NotifyUser(ctx context.Context, userID, title, body string)
}

type RequestService struct {
	RequestRepo RequestStore
	Notifier    Notifier
}

const (
	MinRating = 1
	MaxRating = 5
)

func (s *RequestService) CreateRequest(ctx context.Context, requesterID, category, description string, location models.RequestLocation) (models.Request, error) {
	if _, ok := models.Categories[category]; !ok {
		return models.Request{}, fmt.Errorf("%w: unknown category %q", models.ErrValidation, category)
	}
	if strings.TrimSpace(location.Address) == "" {
		return models.Request{}, fmt.Errorf("%w: location address is required", models.ErrValidation)
	}

	now := time.Now()
	req := models.Request{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		Category:    category,
		Description: description,
		Location:    location,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.RequestRepo.InsertRequest(ctx, req); err != nil {
		return models.Request{}, err
	}
	return req, nil
}

// AcceptRequest claims a pending request for a provider. The conditional
// update guarantees that out of any number of concurrent accepts exactly one
// wins; the rest observe a non-pending status.
func (s *RequestService) AcceptRequest(ctx context.Context, requestID, providerID string) (models.Request, error) {
	ok, err := s.RequestRepo.ConditionalUpdateStatus(ctx, requestID, models.StatusPending, models.StatusAccepted, &providerID)
	if err != nil {
		return models.Request{}, err
	}
	if !ok {
		// Either the request is gone or someone else got there first.
		if _, err := s.RequestRepo.GetRequestByID(ctx, requestID); err != nil {
			return models.Request{}, err
		}
		return models.Request{}, models.ErrInvalidTransition
	}

	req, err := s.RequestRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return models.Request{}, err
	}
	if s.Notifier != nil {
		s.Notifier.NotifyUser(ctx, req.RequesterID, "Request accepted", "A provider has taken your request")
	}
	return req, nil
}

// UpdateStatus is restricted to the assigned provider and to the legal
// forward transitions of the request state machine.
func (s *RequestService) UpdateStatus(ctx context.Context, requestID, providerID, newStatus string) (models.Request, error) {
	if !lifecycle.KnownStatus(newStatus) {
		return models.Request{}, fmt.Errorf("%w: unknown status %q", models.ErrValidation, newStatus)
	}

	req, err := s.RequestRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return models.Request{}, err
	}
	if req.ProviderID == nil || *req.ProviderID != providerID {
		return models.Request{}, models.ErrForbidden
	}
	if !lifecycle.CanTransition(req.Status, newStatus) {
		return models.Request{}, models.ErrInvalidTransition
	}

	ok, err := s.RequestRepo.ConditionalUpdateStatus(ctx, requestID, req.Status, newStatus, nil)
	if err != nil {
		return models.Request{}, err
	}
	if !ok {
		// Status moved between the read and the update.
		return models.Request{}, models.ErrInvalidTransition
	}

	req, err = s.RequestRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return models.Request{}, err
	}
	if s.Notifier != nil {
		s.Notifier.NotifyUser(ctx, req.RequesterID, "Request update", "Your request is now "+req.Status)
	}
	return req, nil
}

// CancelRequest lets the requester withdraw a request that nobody accepted yet.
func (s *RequestService) CancelRequest(ctx context.Context, requestID, requesterID string) (models.Request, error) {
	req, err := s.RequestRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return models.Request{}, err
	}
	if req.RequesterID != requesterID {
		return models.Request{}, models.ErrForbidden
	}
	if req.Status != models.StatusPending {
		return models.Request{}, models.ErrInvalidTransition
	}

	ok, err := s.RequestRepo.ConditionalUpdateStatus(ctx, requestID, models.StatusPending, models.StatusCancelled, nil)
	if err != nil {
		return models.Request{}, err
	}
	if !ok {
		return models.Request{}, models.ErrInvalidTransition
	}
	return s.RequestRepo.GetRequestByID(ctx, requestID)
}

func (s *RequestService) RecordFeedback(ctx context.Context, requestID, requesterID string, rating int, comment string) (models.Request, error) {
	if rating < MinRating || rating > MaxRating {
		return models.Request{}, fmt.Errorf("%w: rating must be between %d and %d", models.ErrValidation, MinRating, MaxRating)
	}

	req, err := s.RequestRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return models.Request{}, err
	}
	if req.RequesterID != requesterID {
		return models.Request{}, models.ErrForbidden
	}
	if req.Status != models.StatusCompleted {
		return models.Request{}, models.ErrInvalidTransition
	}
	if req.Feedback != nil {
		return models.Request{}, models.ErrFeedbackRecorded
	}

	if err := s.RequestRepo.UpdateFeedback(ctx, requestID, models.Feedback{Rating: rating, Comment: comment}); err != nil {
		return models.Request{}, err
	}
	return s.RequestRepo.GetRequestByID(ctx, requestID)
}

func (s *RequestService) GetRequestByID(ctx context.Context, requestID string) (models.Request, error) {
	return s.RequestRepo.GetRequestByID(ctx, requestID)
}

func (s *RequestService) ListByRequester(ctx context.Context, requesterID string) ([]models.Request, error) {
	return s.RequestRepo.ListByRequester(ctx, requesterID)
}

func (s *RequestService) ListUnassignedPending(ctx context.Context) ([]models.Request, error) {
	return s.RequestRepo.ListUnassignedPending(ctx)
}

func (s *RequestService) FindActiveForProvider(ctx context.Context, providerID string) (models.Request, error) {
	return s.RequestRepo.FindActiveForProvider(ctx, providerID)
}

func (s *RequestService) ListCompletedForParty(ctx context.Context, userID, role string) ([]models.Request, error) {
	if role != models.RoleRequester && role != models.RoleProvider {
		return nil, fmt.Errorf("%w: unknown role %q", models.ErrValidation, role)
	}
	return s.RequestRepo.ListCompletedForParty(ctx, userID, role)
}
