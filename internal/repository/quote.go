package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/quoteboard/quoteboard/internal/model"
)

// ErrQuoteNotFound is returned when no quote matches, including the
// empty-visible-set case for random selection.
var ErrQuoteNotFound = errors.New("quote not found")

// quoteSelect joins subject, submitter and group names onto each quote row.
const quoteSelect = `
	SELECT q.id, q.quote_text,
	       q.subject_id, s.display_name,
	       q.submitter_id, a.display_name,
	       q.group_id, g.name,
	       q.created_at
	FROM quotes q
	JOIN users s ON s.id = q.subject_id
	JOIN users a ON a.id = q.submitter_id
	JOIN groups g ON g.id = q.group_id
`

// InsertQuote stores a new quote and fills in the assigned ID and timestamp.
// The group-membership invariant is enforced by the service layer before
// this call; there is no standing DB constraint for it.
func (r *Repository) InsertQuote(ctx context.Context, quote *model.Quote) error {
	query := `
		INSERT INTO quotes (quote_text, subject_id, submitter_id, group_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		quote.Text,
		quote.SubjectID,
		quote.SubmitterID,
		quote.GroupID,
	).Scan(&quote.ID, &quote.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}

	return nil
}

// ListQuotes returns quotes bounded by the scope in the given sort order.
// The sort value must already be normalized against the allow-list.
func (r *Repository) ListQuotes(ctx context.Context, scope model.GroupScope, sort string) ([]*model.Quote, error) {
	query := quoteSelect
	args := []any{}

	if !scope.All {
		query += ` WHERE q.group_id = ANY($1)`
		args = append(args, scopeIDs(scope))
	}

	switch sort {
	case model.SortDateAsc:
		query += ` ORDER BY q.created_at ASC, q.id ASC`
	case model.SortPerson:
		query += ` ORDER BY s.display_name ASC, q.created_at DESC, q.id DESC`
	default:
		query += ` ORDER BY q.created_at DESC, q.id DESC`
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	quotes := []*model.Quote{}
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, quote)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quotes: %w", err)
	}

	return quotes, nil
}

// RandomQuote uniformly selects one quote within the scope.
// Returns ErrQuoteNotFound when the visible set is empty.
func (r *Repository) RandomQuote(ctx context.Context, scope model.GroupScope) (*model.Quote, error) {
	query := quoteSelect
	args := []any{}

	if !scope.All {
		query += ` WHERE q.group_id = ANY($1)`
		args = append(args, scopeIDs(scope))
	}

	query += ` ORDER BY random() LIMIT 1`

	quote, err := scanQuote(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to select random quote: %w", err)
	}

	return quote, nil
}

// Leaderboard counts quotes-as-subject per user within the scope.
// The inner join drops users with zero quotes; ties break on name.
func (r *Repository) Leaderboard(ctx context.Context, scope model.GroupScope) ([]*model.LeaderboardEntry, error) {
	query := `
		SELECT u.id, u.display_name, COUNT(q.id)
		FROM quotes q
		JOIN users u ON u.id = q.subject_id
	`
	args := []any{}

	if !scope.All {
		query += ` WHERE q.group_id = ANY($1)`
		args = append(args, scopeIDs(scope))
	}

	query += `
		GROUP BY u.id, u.display_name
		ORDER BY COUNT(q.id) DESC, u.display_name ASC, u.id ASC
	`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []*model.LeaderboardEntry{}
	for rows.Next() {
		var entry model.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.DisplayName, &entry.QuoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard: %w", err)
	}

	return entries, nil
}

// CountQuotesForUser returns the user's quotes-as-subject and
// quotes-as-submitter counts within the scope.
func (r *Repository) CountQuotesForUser(ctx context.Context, userID int64, scope model.GroupScope) (said, added int64, err error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE subject_id = $1),
			COUNT(*) FILTER (WHERE submitter_id = $1)
		FROM quotes
		WHERE (subject_id = $1 OR submitter_id = $1)
	`
	args := []any{userID}

	if !scope.All {
		query += ` AND group_id = ANY($2)`
		args = append(args, scopeIDs(scope))
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&said, &added); err != nil {
		return 0, 0, fmt.Errorf("failed to count quotes for user: %w", err)
	}

	return said, added, nil
}

func scanQuote(row pgx.Row) (*model.Quote, error) {
	var quote model.Quote
	err := row.Scan(
		&quote.ID,
		&quote.Text,
		&quote.SubjectID,
		&quote.SubjectName,
		&quote.SubmitterID,
		&quote.SubmitterName,
		&quote.GroupID,
		&quote.GroupName,
		&quote.CreatedAt,
	)
	return &quote, err
}
