package service

import (
	"context"
	"errors"
	"strings"

	"github.com/quoteboard/quoteboard/internal/metrics"
	"github.com/quoteboard/quoteboard/internal/model"
	"github.com/quoteboard/quoteboard/internal/repository"
)

// Group service errors.
var (
	ErrGroupNotFound    = errors.New("group not found")
	ErrGroupExists      = errors.New("group name already exists")
	ErrInvalidGroupName = errors.New("group name is required")
)

// GroupService handles group and membership administration.
type GroupService struct {
	groups      GroupStore
	users       UserStore
	memberships MembershipStore
	access      *Access
	metrics     metrics.Recorder
}

// NewGroupService creates a new GroupService.
func NewGroupService(
	groups GroupStore,
	users UserStore,
	memberships MembershipStore,
	access *Access,
	recorder metrics.Recorder,
) *GroupService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &GroupService{
		groups:      groups,
		users:       users,
		memberships: memberships,
		access:      access,
		metrics:     recorder,
	}
}

// VisibleGroups returns the groups the principal may file quotes into:
// all groups for admins, otherwise the principal's memberships.
func (s *GroupService) VisibleGroups(ctx context.Context, p model.Principal) ([]*model.Group, error) {
	if p.IsAdmin {
		return s.groups.ListGroups(ctx)
	}
	return s.memberships.ListGroupsForUser(ctx, p.UserID)
}

// CreateGroup creates a new named visibility scope.
func (s *GroupService) CreateGroup(ctx context.Context, name string) (*model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidGroupName
	}

	group := &model.Group{Name: name}
	if err := s.groups.CreateGroup(ctx, group); err != nil {
		if errors.Is(err, repository.ErrGroupExists) {
			return nil, ErrGroupExists
		}
		return nil, err
	}

	s.metrics.IncGroupCreated()

	return group, nil
}

// AddMember enrolls a user into a group. Adding an existing pair is a
// no-op success.
func (s *GroupService) AddMember(ctx context.Context, groupID, userID int64) error {
	if err := s.checkPair(ctx, groupID, userID); err != nil {
		return err
	}

	if err := s.memberships.AddMembership(ctx, userID, groupID); err != nil {
		return err
	}

	s.metrics.IncMembershipAdded()

	return nil
}

// RemoveMember removes a user from a group. Removing an absent pair is
// a no-op success; removing a user's last group is accepted and leaves
// them with an empty visible set.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, userID int64) error {
	if err := s.checkPair(ctx, groupID, userID); err != nil {
		return err
	}

	if err := s.memberships.RemoveMembership(ctx, userID, groupID); err != nil {
		return err
	}

	s.metrics.IncMembershipRemoved()

	return nil
}

// checkPair verifies both sides of a membership pair exist.
func (s *GroupService) checkPair(ctx context.Context, groupID, userID int64) error {
	if _, err := s.groups.GetGroupByID(ctx, groupID); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return ErrGroupNotFound
		}
		return err
	}

	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return nil
}
