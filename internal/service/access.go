package service

import (
	"context"
	"fmt"

	"github.com/quoteboard/quoteboard/internal/model"
)

// Access is the single authorization policy for group-scoped data.
// Every read and write site resolves its bounds through this type
// instead of re-deriving the admin bypass locally.
type Access struct {
	memberships MembershipStore
}

// NewAccess creates a new Access filter.
func NewAccess(memberships MembershipStore) *Access {
	return &Access{memberships: memberships}
}

// VisibleGroupsFor computes the scope that bounds all group-scoped
// queries for the principal: unrestricted for admins, otherwise the
// principal's exact membership set. An empty set means "no visible
// data", not an error. A storage failure fails the whole operation;
// there is no default-allow fallback.
func (a *Access) VisibleGroupsFor(ctx context.Context, p model.Principal) (model.GroupScope, error) {
	if p.IsAdmin {
		return model.ScopeAll(), nil
	}

	ids, err := a.memberships.ListGroupIDsForUser(ctx, p.UserID)
	if err != nil {
		return model.GroupScope{}, fmt.Errorf("resolve visible groups: %w", err)
	}

	return model.ScopeOf(ids), nil
}

// ShouldShowGroupSelector decides whether the client should offer a
// group choice when filing a quote. A non-admin whose only membership
// is the default "Everyone" group has no meaningful choice, so the
// selector is hidden and submissions fall through to that group.
//
// This is UX policy derived from membership cardinality, not a security
// boundary: server-side filtering always goes through VisibleGroupsFor.
func (a *Access) ShouldShowGroupSelector(ctx context.Context, p model.Principal) (bool, error) {
	if p.IsAdmin {
		return true, nil
	}

	groups, err := a.memberships.ListGroupsForUser(ctx, p.UserID)
	if err != nil {
		return false, fmt.Errorf("resolve memberships: %w", err)
	}

	switch {
	case len(groups) == 0:
		// Nothing to choose from; submission will be rejected anyway.
		return false, nil
	case len(groups) == 1 && groups[0].Name == model.DefaultGroupName:
		return false, nil
	default:
		return true, nil
	}
}
