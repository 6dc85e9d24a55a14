// Package service provides business logic for the application.
package service

import (
	"context"

	"github.com/quoteboard/quoteboard/internal/model"
)

// Store interfaces consumed by the services. *repository.Repository
// implements all of them; tests substitute in-memory fakes.

// UserStore provides user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context, scope model.GroupScope) ([]*model.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// GroupStore provides group persistence.
type GroupStore interface {
	CreateGroup(ctx context.Context, group *model.Group) error
	GetGroupByID(ctx context.Context, id int64) (*model.Group, error)
	GetGroupByName(ctx context.Context, name string) (*model.Group, error)
	ListGroups(ctx context.Context) ([]*model.Group, error)
}

// MembershipStore provides (user, group) membership persistence.
type MembershipStore interface {
	AddMembership(ctx context.Context, userID, groupID int64) error
	RemoveMembership(ctx context.Context, userID, groupID int64) error
	IsMember(ctx context.Context, userID, groupID int64) (bool, error)
	UserInScope(ctx context.Context, userID int64, scope model.GroupScope) (bool, error)
	ListGroupIDsForUser(ctx context.Context, userID int64) ([]int64, error)
	ListGroupsForUser(ctx context.Context, userID int64) ([]*model.Group, error)
}

// QuoteStore provides quote persistence and aggregation queries.
type QuoteStore interface {
	InsertQuote(ctx context.Context, quote *model.Quote) error
	ListQuotes(ctx context.Context, scope model.GroupScope, sort string) ([]*model.Quote, error)
	RandomQuote(ctx context.Context, scope model.GroupScope) (*model.Quote, error)
	Leaderboard(ctx context.Context, scope model.GroupScope) ([]*model.LeaderboardEntry, error)
	CountQuotesForUser(ctx context.Context, userID int64, scope model.GroupScope) (said, added int64, err error)
}
