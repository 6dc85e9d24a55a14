package model

import "time"

// DefaultGroupName is the visibility scope every new user is enrolled
// into. The row is seeded by migration and must always exist.
const DefaultGroupName = "Everyone"

// Group is a named visibility scope. Quotes belong to exactly one group
// and are visible only to members of that group (admins excepted).
type Group struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Membership is a (user, group) pair. Pairs are unique and carry no
// ordering significance.
type Membership struct {
	UserID    int64     `json:"user_id"`
	GroupID   int64     `json:"group_id"`
	CreatedAt time.Time `json:"created_at"`
}

// GroupScope bounds every group-scoped read for one request. It is
// either unrestricted (admin) or an explicit finite set of group IDs.
// An empty set is valid and means "no visible data", not an error.
type GroupScope struct {
	All      bool
	GroupIDs []int64
}

// ScopeAll returns the unrestricted scope used for admin principals.
func ScopeAll() GroupScope {
	return GroupScope{All: true}
}

// ScopeOf returns a scope restricted to the given group IDs.
// A nil slice is normalized to an empty one so storage drivers encode
// it as an empty array rather than NULL.
func ScopeOf(ids []int64) GroupScope {
	if ids == nil {
		ids = []int64{}
	}
	return GroupScope{GroupIDs: ids}
}

// IsEmpty reports whether the scope cannot match any data.
func (s GroupScope) IsEmpty() bool {
	return !s.All && len(s.GroupIDs) == 0
}

// Contains reports whether the scope covers the given group.
func (s GroupScope) Contains(groupID int64) bool {
	if s.All {
		return true
	}
	for _, id := range s.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}
