package services

import (
	"context"
	"errors"
	"time"

	"dispatchBack/internal/models"
	"dispatchBack/utils"
)

// UserStore resolves identities and refresh sessions against the identity
// store.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error)
	SetSession(ctx context.Context, userID string, session models.Session) error
}

type AuthService struct {
	UserRepo   UserStore
	Tokens     *utils.Manager
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Authenticate verifies a bearer token and confirms the account still
// exists. Any failure collapses into ErrAuthentication: the realtime
// boundary must never keep a connection in a half-authenticated state.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.User, string, error) {
	userID, role, err := s.Tokens.Parse(token)
	if err != nil {
		return models.User{}, "", models.ErrAuthentication
	}
	user, err := s.UserRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return models.User{}, "", models.ErrAuthentication
		}
		return models.User{}, "", err
	}
	if role == "" {
		role = user.Role
	}
	return user, role, nil
}

// Refresh exchanges a stored refresh token for a new access token and a
// rotated refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (models.Tokens, error) {
	session, err := s.UserRepo.GetSessionByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return models.Tokens{}, models.ErrAuthentication
		}
		return models.Tokens{}, err
	}
	if session.ExpiresAt.Before(time.Now()) {
		return models.Tokens{}, models.ErrSessionExpired
	}

	accessToken, err := s.Tokens.NewJWT(session.UserID, session.Role, s.AccessTTL)
	if err != nil {
		return models.Tokens{}, err
	}
	newRefresh, err := s.Tokens.NewRefreshToken()
	if err != nil {
		return models.Tokens{}, err
	}
	err = s.UserRepo.SetSession(ctx, session.UserID, models.Session{
		UserID:       session.UserID,
		Role:         session.Role,
		RefreshToken: newRefresh,
		ExpiresAt:    time.Now().Add(s.RefreshTTL),
	})
	if err != nil {
		return models.Tokens{}, err
	}
	return models.Tokens{AccessToken: accessToken, RefreshToken: newRefresh}, nil
}
