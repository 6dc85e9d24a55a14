package testutil

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/quoteboard/quoteboard/internal/model"
	"github.com/quoteboard/quoteboard/internal/repository"
)

// FakeStore is an in-memory implementation of the service store
// interfaces. It mirrors the repository's sentinel errors and query
// semantics (scope filtering, sort orders, idempotent membership ops)
// so services can be exercised without a database.
type FakeStore struct {
	mu sync.Mutex

	users       map[int64]*model.User
	groups      map[int64]*model.Group
	memberships map[[2]int64]bool // [user_id, group_id]
	quotes      []*model.Quote

	nextUserID  int64
	nextGroupID int64
	nextQuoteID int64

	// FailWith, when set, makes every store method return this error.
	// Used to verify fail-closed behavior on storage failures.
	FailWith error
}

// NewFakeStore returns an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		users:       make(map[int64]*model.User),
		groups:      make(map[int64]*model.Group),
		memberships: make(map[[2]int64]bool),
	}
}

// ----------------------------------------------------------------------------
// Seed helpers
// ----------------------------------------------------------------------------

// SeedUser adds a user directly, bypassing validation.
func (f *FakeStore) SeedUser(username, displayName string, isAdmin bool) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextUserID++
	user := &model.User{
		ID:           f.nextUserID,
		Username:     username,
		PasswordHash: "$argon2id$fake",
		DisplayName:  displayName,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	f.users[user.ID] = user
	return user
}

// SeedGroup adds a group directly.
func (f *FakeStore) SeedGroup(name string) *model.Group {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextGroupID++
	group := &model.Group{
		ID:        f.nextGroupID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	f.groups[group.ID] = group
	return group
}

// SeedMembership enrolls a user into a group directly.
func (f *FakeStore) SeedMembership(userID, groupID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memberships[[2]int64{userID, groupID}] = true
}

// SeedQuote adds a quote directly with a synthetic timestamp offset so
// insertion order is reflected in created_at.
func (f *FakeStore) SeedQuote(text string, subjectID, submitterID, groupID int64) *model.Quote {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextQuoteID++
	quote := &model.Quote{
		ID:          f.nextQuoteID,
		Text:        text,
		SubjectID:   subjectID,
		SubmitterID: submitterID,
		GroupID:     groupID,
		CreatedAt:   time.Unix(f.nextQuoteID*60, 0).UTC(),
	}
	f.decorate(quote)
	f.quotes = append(f.quotes, quote)
	return quote
}

// MembershipCount returns the number of stored membership pairs.
func (f *FakeStore) MembershipCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.memberships)
}

// ----------------------------------------------------------------------------
// UserStore
// ----------------------------------------------------------------------------

// CreateUser implements service.UserStore.
func (f *FakeStore) CreateUser(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return f.FailWith
	}

	for _, existing := range f.users {
		if existing.Username == user.Username {
			return repository.ErrUsernameExists
		}
	}

	f.nextUserID++
	user.ID = f.nextUserID
	user.CreatedAt = time.Now().UTC()
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

// GetUserByID implements service.UserStore.
func (f *FakeStore) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return nil, f.FailWith
	}

	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// GetUserByUsername implements service.UserStore.
func (f *FakeStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return nil, f.FailWith
	}

	for _, user := range f.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// ListUsers implements service.UserStore.
func (f *FakeStore) ListUsers(ctx context.Context, scope model.GroupScope) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return nil, f.FailWith
	}

	var users []*model.User
	for _, user := range f.users {
		if !scope.All && !f.userInScopeLocked(user.ID, scope) {
			continue
		}
		copied := *user
		users = append(users, &copied)
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].DisplayName != users[j].DisplayName {
			return users[i].DisplayName < users[j].DisplayName
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

// CountUsers implements service.UserStore.
func (f *FakeStore) CountUsers(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return 0, f.FailWith
	}
	return int64(len(f.users)), nil
}

// ----------------------------------------------------------------------------
// GroupStore
// ----------------------------------------------------------------------------

// CreateGroup implements service.GroupStore.
func (f *FakeStore) CreateGroup(ctx context.Context, group *model.Group) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return f.FailWith
	}

	for _, existing := range f.groups {
		if existing.Name == group.Name {
			return repository.ErrGroupExists
		}
	}

	f.nextGroupID++
	group.ID = f.nextGroupID
	group.CreatedAt = time.Now().UTC()
	stored := *group
	f.groups[group.ID] = &stored
	return nil
}

// GetGroupByID implements service.GroupStore.
func (f *FakeStore) GetGroupByID(ctx context.Context, id int64) (*model.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return nil, f.FailWith
	}

	group, ok := f.groups[id]
	if !ok {
		return nil, repository.ErrGroupNotFound
	}
	copied := *group
	return &copied, nil
}

// GetGroupByName implements service.GroupStore.
func (f *FakeStore) GetGroupByName(ctx context.Context, name string) (*model.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return nil, f.FailWith
	}

	for _, group := range f.groups {
		if group.Name == name {
			copied := *group
			return &copied, nil
		}
	}
	return nil, repository.ErrGroupNotFound
}

// ListGroups implements service.GroupStore.
func (f *FakeStore) ListGroups(ctx context.Context) ([]*model.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return nil, f.FailWith
	}

	var groups []*model.Group
	for _, group := range f.groups {
		copied := *group
		groups = append(groups, &copied)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

// ----------------------------------------------------------------------------
// MembershipStore
// ----------------------------------------------------------------------------

// AddMembership implements service.MembershipStore.
func (f *FakeStore) AddMembership(ctx context.Context, userID, groupID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return f.FailWith
	}
	f.memberships[[2]int64{userID, groupID}] = true
	return nil
}

// RemoveMembership implements service.MembershipStore.
func (f *FakeStore) RemoveMembership(ctx context.Context, userID, groupID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return f.FailWith
	}
	delete(f.memberships, [2]int64{userID, groupID})
	return nil
}

// IsMember implements service.MembershipStore.
func (f *FakeStore) IsMember(ctx context.Context, userID, groupID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return false, f.FailWith
	}
	return f.memberships[[2]int64{userID, groupID}], nil
}

// UserInScope implements service.MembershipStore.
func (f *FakeStore) UserInScope(ctx context.Context, userID int64, scope model.GroupScope) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return false, f.FailWith
	}
	if scope.All {
		return true, nil
	}
	return f.userInScopeLocked(userID, scope), nil
}

func (f *FakeStore) userInScopeLocked(userID int64, scope model.GroupScope) bool {
	for _, groupID := range scope.GroupIDs {
		if f.memberships[[2]int64{userID, groupID}] {
			return true
		}
	}
	return false
}

// ListGroupIDsForUser implements service.MembershipStore.
func (f *FakeStore) ListGroupIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return nil, f.FailWith
	}

	ids := []int64{}
	for pair := range f.memberships {
		if pair[0] == userID {
			ids = append(ids, pair[1])
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// ListGroupsForUser implements service.MembershipStore.
func (f *FakeStore) ListGroupsForUser(ctx context.Context, userID int64) ([]*model.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return nil, f.FailWith
	}

	var groups []*model.Group
	for pair := range f.memberships {
		if pair[0] != userID {
			continue
		}
		if group, ok := f.groups[pair[1]]; ok {
			copied := *group
			groups = append(groups, &copied)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

// ----------------------------------------------------------------------------
// QuoteStore
// ----------------------------------------------------------------------------

// InsertQuote implements service.QuoteStore.
func (f *FakeStore) InsertQuote(ctx context.Context, quote *model.Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return f.FailWith
	}

	f.nextQuoteID++
	quote.ID = f.nextQuoteID
	quote.CreatedAt = time.Unix(f.nextQuoteID*60, 0).UTC()
	stored := *quote
	f.decorate(&stored)
	f.quotes = append(f.quotes, &stored)
	*quote = stored
	return nil
}

// decorate fills the joined display names the way the SQL select does.
func (f *FakeStore) decorate(quote *model.Quote) {
	if user, ok := f.users[quote.SubjectID]; ok {
		quote.SubjectName = user.DisplayName
	}
	if user, ok := f.users[quote.SubmitterID]; ok {
		quote.SubmitterName = user.DisplayName
	}
	if group, ok := f.groups[quote.GroupID]; ok {
		quote.GroupName = group.Name
	}
}

func (f *FakeStore) visibleQuotesLocked(scope model.GroupScope) []*model.Quote {
	var quotes []*model.Quote
	for _, quote := range f.quotes {
		if scope.Contains(quote.GroupID) {
			copied := *quote
			quotes = append(quotes, &copied)
		}
	}
	return quotes
}

// ListQuotes implements service.QuoteStore.
func (f *FakeStore) ListQuotes(ctx context.Context, scope model.GroupScope, sortOrder string) ([]*model.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return nil, f.FailWith
	}

	quotes := f.visibleQuotesLocked(scope)

	switch sortOrder {
	case model.SortDateAsc:
		sort.Slice(quotes, func(i, j int) bool { return quotes[i].ID < quotes[j].ID })
	case model.SortPerson:
		sort.Slice(quotes, func(i, j int) bool {
			if quotes[i].SubjectName != quotes[j].SubjectName {
				return quotes[i].SubjectName < quotes[j].SubjectName
			}
			return quotes[i].ID > quotes[j].ID
		})
	default:
		sort.Slice(quotes, func(i, j int) bool { return quotes[i].ID > quotes[j].ID })
	}

	if quotes == nil {
		quotes = []*model.Quote{}
	}
	return quotes, nil
}

// RandomQuote implements service.QuoteStore.
func (f *FakeStore) RandomQuote(ctx context.Context, scope model.GroupScope) (*model.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return nil, f.FailWith
	}

	quotes := f.visibleQuotesLocked(scope)
	if len(quotes) == 0 {
		return nil, repository.ErrQuoteNotFound
	}
	return quotes[rand.Intn(len(quotes))], nil
}

// Leaderboard implements service.QuoteStore.
func (f *FakeStore) Leaderboard(ctx context.Context, scope model.GroupScope) ([]*model.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return nil, f.FailWith
	}

	counts := make(map[int64]int64)
	for _, quote := range f.quotes {
		if scope.Contains(quote.GroupID) {
			counts[quote.SubjectID]++
		}
	}

	entries := []*model.LeaderboardEntry{}
	for userID, count := range counts {
		entry := &model.LeaderboardEntry{UserID: userID, QuoteCount: count}
		if user, ok := f.users[userID]; ok {
			entry.DisplayName = user.DisplayName
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].QuoteCount != entries[j].QuoteCount {
			return entries[i].QuoteCount > entries[j].QuoteCount
		}
		if entries[i].DisplayName != entries[j].DisplayName {
			return entries[i].DisplayName < entries[j].DisplayName
		}
		return entries[i].UserID < entries[j].UserID
	})
	return entries, nil
}

// CountQuotesForUser implements service.QuoteStore.
func (f *FakeStore) CountQuotesForUser(ctx context.Context, userID int64, scope model.GroupScope) (said, added int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != nil {
		return 0, 0, f.FailWith
	}

	for _, quote := range f.quotes {
		if !scope.Contains(quote.GroupID) {
			continue
		}
		if quote.SubjectID == userID {
			said++
		}
		if quote.SubmitterID == userID {
			added++
		}
	}
	return said, added, nil
}
