// Package model defines domain entities for the application.
package model

import "time"

// User represents an account on the quotes board.
// Users double as quote subjects: every quote is attributed to a user.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never serialize
	DisplayName  string    `json:"display_name"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the authenticated identity attached to a request.
// It is resolved once by the session middleware and passed explicitly
// into every core operation; core code never reads ambient session state.
type Principal struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
}

// UserStats holds per-user aggregation counts, restricted to the
// caller's visible group set at query time.
type UserStats struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	QuotesSaid  int64  `json:"quotes_said"`  // quotes where the user is the subject
	QuotesAdded int64  `json:"quotes_added"` // quotes the user submitted
}

// LeaderboardEntry is one row of the leaderboard projection.
// Users with zero quotes as subject never appear.
type LeaderboardEntry struct {
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
	QuoteCount  int64  `json:"quote_count"`
}
