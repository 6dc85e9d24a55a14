package dto

import (
	"time"

	"github.com/quoteboard/quoteboard/internal/model"
)

// CreateQuoteRequest represents the request body for filing a quote.
// GroupID may be omitted; the quote then lands in the default group.
type CreateQuoteRequest struct {
	Text      string `json:"text"`
	SubjectID int64  `json:"subject_id"`
	GroupID   int64  `json:"group_id,omitempty"`
}

// QuoteResponse represents a quote in API responses.
type QuoteResponse struct {
	ID            int64     `json:"id"`
	Text          string    `json:"text"`
	SubjectID     int64     `json:"subject_id"`
	SubjectName   string    `json:"subject_name"`
	SubmitterID   int64     `json:"submitter_id"`
	SubmitterName string    `json:"submitter_name"`
	GroupID       int64     `json:"group_id"`
	GroupName     string    `json:"group_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToQuoteResponse converts a quote model to its API shape.
func ToQuoteResponse(quote *model.Quote) QuoteResponse {
	return QuoteResponse{
		ID:            quote.ID,
		Text:          quote.Text,
		SubjectID:     quote.SubjectID,
		SubjectName:   quote.SubjectName,
		SubmitterID:   quote.SubmitterID,
		SubmitterName: quote.SubmitterName,
		GroupID:       quote.GroupID,
		GroupName:     quote.GroupName,
		CreatedAt:     quote.CreatedAt,
	}
}

// QuoteListResponse represents a list of quotes with the applied sort.
type QuoteListResponse struct {
	Data []QuoteResponse `json:"data"`
	Sort string          `json:"sort"`
}

// ToQuoteListResponse converts quote models to the list shape.
func ToQuoteListResponse(quotes []*model.Quote, sort string) QuoteListResponse {
	data := make([]QuoteResponse, 0, len(quotes))
	for _, quote := range quotes {
		data = append(data, ToQuoteResponse(quote))
	}
	return QuoteListResponse{Data: data, Sort: sort}
}

// LeaderboardEntryResponse represents one leaderboard row.
type LeaderboardEntryResponse struct {
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
	QuoteCount  int64  `json:"quote_count"`
}

// LeaderboardResponse represents the leaderboard.
type LeaderboardResponse struct {
	Data []LeaderboardEntryResponse `json:"data"`
}

// ToLeaderboardResponse converts leaderboard entries to the API shape.
func ToLeaderboardResponse(entries []*model.LeaderboardEntry) LeaderboardResponse {
	data := make([]LeaderboardEntryResponse, 0, len(entries))
	for _, entry := range entries {
		data = append(data, LeaderboardEntryResponse{
			UserID:      entry.UserID,
			DisplayName: entry.DisplayName,
			QuoteCount:  entry.QuoteCount,
		})
	}
	return LeaderboardResponse{Data: data}
}
