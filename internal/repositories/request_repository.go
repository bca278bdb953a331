package repositories

import (
	"context"
	"database/sql"
	"errors"

	"dispatchBack/internal/models"
)

type RequestRepository struct {
	DB *sql.DB
}

const requestColumns = `
        r.id, r.requester_id, r.provider_id, r.category, r.description,
        r.address, r.lat, r.lng, r.status, r.feedback_rating, r.feedback_comment,
        r.created_at, r.updated_at,
        ur.username, up.username
`

const requestJoins = `
        FROM requests r
        JOIN users ur ON ur.id = r.requester_id
        LEFT JOIN users up ON up.id = r.provider_id
`

func scanRequest(row interface {
	Scan(dest ...interface{}) error
}) (models.Request, error) {
	var (
		req          models.Request
		providerID   sql.NullString
		rating       sql.NullInt64
		comment      sql.NullString
		providerName sql.NullString
	)
	err := row.Scan(
		&req.ID, &req.RequesterID, &providerID, &req.Category, &req.Description,
		&req.Location.Address, &req.Location.Lat, &req.Location.Lng, &req.Status,
		&rating, &comment, &req.CreatedAt, &req.UpdatedAt,
		&req.RequesterName, &providerName,
	)
	if err != nil {
		return models.Request{}, err
	}
	if providerID.Valid {
		req.ProviderID = &providerID.String
	}
	if rating.Valid {
		req.Feedback = &models.Feedback{Rating: int(rating.Int64), Comment: comment.String}
	}
	if providerName.Valid {
		req.ProviderName = providerName.String
	}
	return req, nil
}

func (r *RequestRepository) InsertRequest(ctx context.Context, req models.Request) error {
	query := `
        INSERT INTO requests (id, requester_id, category, description, address, lat, lng, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.DB.ExecContext(ctx, query,
		req.ID, req.RequesterID, req.Category, req.Description,
		req.Location.Address, req.Location.Lat, req.Location.Lng,
		req.Status, req.CreatedAt, req.UpdatedAt,
	)
	return err
}

func (r *RequestRepository) GetRequestByID(ctx context.Context, id string) (models.Request, error) {
	query := `SELECT ` + requestColumns + requestJoins + ` WHERE r.id = $1`
	req, err := scanRequest(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Request{}, models.ErrNoRecord
	}
	if err != nil {
		return models.Request{}, err
	}
	return req, nil
}

// ConditionalUpdateStatus moves a request to newStatus only if it still has
// expectedStatus, optionally claiming the provider slot in the same
// statement. The single UPDATE is what makes concurrent accepts safe.
func (r *RequestRepository) ConditionalUpdateStatus(ctx context.Context, id, expectedStatus, newStatus string, providerID *string) (bool, error) {
	query := `
        UPDATE requests
        SET status = $1, provider_id = COALESCE($2, provider_id), updated_at = CURRENT_TIMESTAMP
        WHERE id = $3 AND status = $4
    `
	res, err := r.DB.ExecContext(ctx, query, newStatus, providerID, id, expectedStatus)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *RequestRepository) UpdateFeedback(ctx context.Context, id string, fb models.Feedback) error {
	query := `
        UPDATE requests
        SET feedback_rating = $1, feedback_comment = $2, updated_at = CURRENT_TIMESTAMP
        WHERE id = $3
    `
	res, err := r.DB.ExecContext(ctx, query, fb.Rating, fb.Comment, id)
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

func (r *RequestRepository) ListByRequester(ctx context.Context, requesterID string) ([]models.Request, error) {
	query := `SELECT ` + requestColumns + requestJoins + `
        WHERE r.requester_id = $1
        ORDER BY r.created_at DESC`
	return r.listRequests(ctx, query, requesterID)
}

func (r *RequestRepository) ListUnassignedPending(ctx context.Context) ([]models.Request, error) {
	query := `SELECT ` + requestColumns + requestJoins + `
        WHERE r.status = $1 AND r.provider_id IS NULL
        ORDER BY r.created_at DESC`
	return r.listRequests(ctx, query, models.StatusPending)
}

func (r *RequestRepository) FindActiveForProvider(ctx context.Context, providerID string) (models.Request, error) {
	query := `SELECT ` + requestColumns + requestJoins + `
        WHERE r.provider_id = $1 AND r.status IN ($2, $3)
        LIMIT 1`
	req, err := scanRequest(r.DB.QueryRowContext(ctx, query, providerID, models.StatusAccepted, models.StatusInProgress))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Request{}, models.ErrNoRecord
	}
	if err != nil {
		return models.Request{}, err
	}
	return req, nil
}

func (r *RequestRepository) ListCompletedForParty(ctx context.Context, userID, role string) ([]models.Request, error) {
	column := "r.requester_id"
	if role == models.RoleProvider {
		column = "r.provider_id"
	}
	query := `SELECT ` + requestColumns + requestJoins + `
        WHERE ` + column + ` = $1 AND r.status = $2
        ORDER BY r.updated_at DESC`
	return r.listRequests(ctx, query, userID, models.StatusCompleted)
}

func (r *RequestRepository) listRequests(ctx context.Context, query string, args ...interface{}) ([]models.Request, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}
