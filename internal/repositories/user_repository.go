package repositories

import (
	"context"
	"database/sql"
	"errors"

	"dispatchBack/internal/models"
)

// UserRepository reads the identity store. Account creation and credential
// checks belong to the identity service; this side only resolves users and
// manages refresh sessions and device tokens.
type UserRepository struct {
	DB *sql.DB
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	query := `
        SELECT id, username, role, created_at
        FROM users
        WHERE id = $1
    `
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.Role, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrNoRecord
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error) {
	var session models.Session
	query := `
        SELECT id, role, refresh_token, expires_at
        FROM users
        WHERE refresh_token = $1
    `
	err := r.DB.QueryRowContext(ctx, query, refreshToken).Scan(
		&session.UserID, &session.Role, &session.RefreshToken, &session.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, models.ErrNoRecord
	}
	if err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (r *UserRepository) SetSession(ctx context.Context, userID string, session models.Session) error {
	query := `
        UPDATE users
        SET refresh_token = $1, expires_at = $2
        WHERE id = $3
    `
	res, err := r.DB.ExecContext(ctx, query, session.RefreshToken, session.ExpiresAt, userID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrNoRecord
	}
	return nil
}

func (r *UserRepository) GetDeviceToken(ctx context.Context, userID string) (string, error) {
	var token sql.NullString
	query := `SELECT device_token FROM users WHERE id = $1`
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", models.ErrNoRecord
	}
	if err != nil {
		return "", err
	}
	return token.String, nil
}
