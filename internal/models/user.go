package models

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

// Participant roles. A request links exactly one of each.
const (
	RoleRequester = "requester"
	RoleProvider  = "provider"
	RoleAdmin     = "admin"
)

// User is the identity-store view of an account. Credentials live in the
// identity service, not here.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Session struct {
	UserID       string    `json:"user_id"`
	Role         string    `json:"role"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}
