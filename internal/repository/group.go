package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/quoteboard/quoteboard/internal/model"
)

// Common errors for group repository operations.
var (
	ErrGroupNotFound = errors.New("group not found")
	ErrGroupExists   = errors.New("group name already exists")
)

// scopeIDs returns the scope's group IDs, never nil, so pgx encodes an
// empty array instead of NULL in "= ANY($n)" filters.
func scopeIDs(scope model.GroupScope) []int64 {
	if scope.GroupIDs == nil {
		return []int64{}
	}
	return scope.GroupIDs
}

// CreateGroup inserts a new group and fills in the assigned ID and timestamp.
func (r *Repository) CreateGroup(ctx context.Context, group *model.Group) error {
	query := `
		INSERT INTO groups (name)
		VALUES ($1)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, group.Name).Scan(&group.ID, &group.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrGroupExists
		}
		return fmt.Errorf("failed to create group: %w", err)
	}

	return nil
}

// GetGroupByID retrieves a group by its ID.
func (r *Repository) GetGroupByID(ctx context.Context, id int64) (*model.Group, error) {
	query := `SELECT id, name, created_at FROM groups WHERE id = $1`

	var group model.Group
	err := r.pool.QueryRow(ctx, query, id).Scan(&group.ID, &group.Name, &group.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group by ID: %w", err)
	}

	return &group, nil
}

// GetGroupByName retrieves a group by its unique name.
func (r *Repository) GetGroupByName(ctx context.Context, name string) (*model.Group, error) {
	query := `SELECT id, name, created_at FROM groups WHERE name = $1`

	var group model.Group
	err := r.pool.QueryRow(ctx, query, name).Scan(&group.ID, &group.Name, &group.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group by name: %w", err)
	}

	return &group, nil
}

// ListGroups returns all groups ordered by name.
func (r *Repository) ListGroups(ctx context.Context) ([]*model.Group, error) {
	query := `SELECT id, name, created_at FROM groups ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	return scanGroups(rows)
}

// ListGroupsForUser returns the groups the user is a member of, ordered by name.
func (r *Repository) ListGroupsForUser(ctx context.Context, userID int64) ([]*model.Group, error) {
	query := `
		SELECT g.id, g.name, g.created_at
		FROM groups g
		JOIN memberships m ON m.group_id = g.id
		WHERE m.user_id = $1
		ORDER BY g.name ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for user: %w", err)
	}
	defer rows.Close()

	return scanGroups(rows)
}

func scanGroups(rows pgx.Rows) ([]*model.Group, error) {
	var groups []*model.Group
	for rows.Next() {
		var group model.Group
		if err := rows.Scan(&group.ID, &group.Name, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, &group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}

	return groups, nil
}

// AddMembership enrolls a user into a group. Adding an existing pair is
// a no-op success.
func (r *Repository) AddMembership(ctx context.Context, userID, groupID int64) error {
	query := `
		INSERT INTO memberships (user_id, group_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, group_id) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, query, userID, groupID); err != nil {
		return fmt.Errorf("failed to add membership: %w", err)
	}

	return nil
}

// RemoveMembership removes a (user, group) pair. Removing an absent pair
// is a no-op success; a user losing their last group is accepted and
// simply leaves them with an empty visible set.
func (r *Repository) RemoveMembership(ctx context.Context, userID, groupID int64) error {
	query := `DELETE FROM memberships WHERE user_id = $1 AND group_id = $2`

	if _, err := r.pool.Exec(ctx, query, userID, groupID); err != nil {
		return fmt.Errorf("failed to remove membership: %w", err)
	}

	return nil
}

// IsMember reports whether the user belongs to the group.
func (r *Repository) IsMember(ctx context.Context, userID, groupID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM memberships WHERE user_id = $1 AND group_id = $2)`

	var member bool
	if err := r.pool.QueryRow(ctx, query, userID, groupID).Scan(&member); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}

	return member, nil
}

// UserInScope reports whether the user belongs to at least one group in
// the scope. Unrestricted scopes match every user.
func (r *Repository) UserInScope(ctx context.Context, userID int64, scope model.GroupScope) (bool, error) {
	if scope.All {
		return true, nil
	}

	query := `SELECT EXISTS(SELECT 1 FROM memberships WHERE user_id = $1 AND group_id = ANY($2))`

	var shared bool
	if err := r.pool.QueryRow(ctx, query, userID, scopeIDs(scope)).Scan(&shared); err != nil {
		return false, fmt.Errorf("failed to check user scope: %w", err)
	}

	return shared, nil
}

// ListGroupIDsForUser returns the IDs of all groups the user belongs to.
// An empty result is valid and means the user sees no group-scoped data.
func (r *Repository) ListGroupIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	query := `SELECT group_id FROM memberships WHERE user_id = $1 ORDER BY group_id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group IDs for user: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan group ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group IDs: %w", err)
	}

	return ids, nil
}
