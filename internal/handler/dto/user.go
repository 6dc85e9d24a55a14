package dto

import (
	"time"

	"github.com/quoteboard/quoteboard/internal/model"
)

// LoginRequest represents the request body for logging in.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the session token and the authenticated user.
// The token is also set as an HTTP-only cookie for browser clients.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// CreateUserRequest represents the request body for creating a user.
type CreateUserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin,omitempty"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	IsAdmin     bool      `json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToUserResponse converts a user model to its API shape.
func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		IsAdmin:     user.IsAdmin,
		CreatedAt:   user.CreatedAt,
	}
}

// UserListResponse represents the user directory.
type UserListResponse struct {
	Data []UserResponse `json:"data"`
}

// ToUserListResponse converts user models to the list shape.
func ToUserListResponse(users []*model.User) UserListResponse {
	data := make([]UserResponse, 0, len(users))
	for _, user := range users {
		data = append(data, ToUserResponse(user))
	}
	return UserListResponse{Data: data}
}

// UserStatsResponse represents a user's quote counts.
type UserStatsResponse struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	QuotesSaid  int64  `json:"quotes_said"`
	QuotesAdded int64  `json:"quotes_added"`
}

// ToUserStatsResponse converts a stats model to its API shape.
func ToUserStatsResponse(stats *model.UserStats) UserStatsResponse {
	return UserStatsResponse{
		UserID:      stats.UserID,
		Username:    stats.Username,
		DisplayName: stats.DisplayName,
		QuotesSaid:  stats.QuotesSaid,
		QuotesAdded: stats.QuotesAdded,
	}
}
