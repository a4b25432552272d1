package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/identity"
	"github.com/logidocs/backend/internal/domain/shared"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Username string
	Password string
	IP       string // Client IP for login tracking
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo is the user as exposed to the API
type UserInfo struct {
	ID          uuid.UUID         `json:"id"`
	Username    string            `json:"username"`
	Email       string            `json:"email"`
	DisplayName string            `json:"display_name"`
	Department  shared.Department `json:"department"`
	IsAdmin     bool              `json:"is_admin"`
	Status      string            `json:"status"`
	LastLoginAt *time.Time        `json:"last_login_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ToUserInfo converts a domain user
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.NameForDisplay(),
		Department:  u.Department,
		IsAdmin:     u.IsAdmin,
		Status:      string(u.Status),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	UserID   uuid.UUID
	TokenJTI string        // access token id to revoke
	TokenTTL time.Duration // remaining lifetime of that token
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// CreateUserInput contains the input for creating a user
type CreateUserInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
	Department  string
	IsAdmin     bool
}

// ListUsersInput contains filters for listing users
type ListUsersInput struct {
	Page       int
	PageSize   int
	OrderBy    string
	OrderDir   string
	Search     string
	Department string
	Status     string
}
