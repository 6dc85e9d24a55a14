package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/quoteboard/quoteboard/internal/model"
	"github.com/quoteboard/quoteboard/internal/testutil"
)

// quoteFixture wires a QuoteService over a fake store with two groups
// and three users:
//
//	alice: member of Everyone and Engineering
//	bob:   member of Everyone
//	carol: member of Sales only
type quoteFixture struct {
	store       *testutil.FakeStore
	svc         *QuoteService
	everyone    *model.Group
	engineering *model.Group
	sales       *model.Group
	alice       *model.User
	bob         *model.User
	carol       *model.User
}

func newQuoteFixture(t *testing.T) *quoteFixture {
	t.Helper()

	store := testutil.NewFakeStore()
	f := &quoteFixture{
		store:       store,
		everyone:    store.SeedGroup("Everyone"),
		engineering: store.SeedGroup("Engineering"),
		sales:       store.SeedGroup("Sales"),
		alice:       store.SeedUser("alice", "Alice", false),
		bob:         store.SeedUser("bob", "Bob", false),
		carol:       store.SeedUser("carol", "Carol", false),
	}
	store.SeedMembership(f.alice.ID, f.everyone.ID)
	store.SeedMembership(f.alice.ID, f.engineering.ID)
	store.SeedMembership(f.bob.ID, f.everyone.ID)
	store.SeedMembership(f.carol.ID, f.sales.ID)

	access := NewAccess(store)
	f.svc = NewQuoteService(store, store, store, store, access, DefaultMaxQuoteLength, nil)
	return f
}

func (f *quoteFixture) principal(user *model.User) model.Principal {
	return model.Principal{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		IsAdmin:     user.IsAdmin,
	}
}

func TestListQuotes_ScopeFiltering(t *testing.T) {
	t.Parallel()

	f := newQuoteFixture(t)
	f.store.SeedQuote("everyone quote", f.bob.ID, f.alice.ID, f.everyone.ID)
	f.store.SeedQuote("engineering quote", f.alice.ID, f.alice.ID, f.engineering.ID)
	f.store.SeedQuote("sales quote", f.carol.ID, f.carol.ID, f.sales.ID)

	ctx := context.Background()

	// Bob only sees the Everyone group.
	quotes, err := f.svc.ListQuotes(ctx, f.principal(f.bob), "")
	if err != nil {
		t.Fatalf("ListQuotes failed: %v", err)
	}
	if len(quotes) != 1 || quotes[0].Text != "everyone quote" {
		t.Errorf("bob should see exactly the Everyone quote, got %d quotes", len(quotes))
	}

	// Alice sees Everyone and Engineering.
	quotes, err = f.svc.ListQuotes(ctx, f.principal(f.alice), "")
	if err != nil {
		t.Fatalf("ListQuotes failed: %v", err)
	}
	if len(quotes) != 2 {
		t.Errorf("alice should see 2 quotes, got %d", len(quotes))
	}
	for _, quote := range quotes {
		if quote.GroupID == f.sales.ID {
			t.Error("alice must never see Sales quotes")
		}
	}

	// Admins see everything regardless of membership.
	quotes, err = f.svc.ListQuotes(ctx, testutil.NewAdminPrincipal(99), "")
	if err != nil {
		t.Fatalf("ListQuotes failed: %v", err)
	}
	if len(quotes) != 3 {
		t.Errorf("admin should see all 3 quotes, got %d", len(quotes))
	}
}

func TestListQuotes_SortOrders(t *testing.T) {
	t.Parallel()

	f := newQuoteFixture(t)
	// Seeded in this order; created_at follows insertion order.
	f.store.SeedQuote("first", f.bob.ID, f.alice.ID, f.everyone.ID)   // subject Bob
	f.store.SeedQuote("second", f.alice.ID, f.bob.ID, f.everyone.ID)  // subject Alice
	f.store.SeedQuote("third", f.bob.ID, f.alice.ID, f.everyone.ID)   // subject Bob

	ctx := context.Background()
	admin := testutil.NewAdminPrincipal(99)

	tests := []struct {
		name     string
		sort     string
		expected []string
	}{
		{"default_newest_first", "", []string{"third", "second", "first"}},
		{"date_desc", model.SortDateDesc, []string{"third", "second", "first"}},
		{"date_asc", model.SortDateAsc, []string{"first", "second", "third"}},
		{"person_groups_by_subject", model.SortPerson, []string{"second", "third", "first"}},
		{"unknown_falls_back_to_newest", "clicks", []string{"third", "second", "first"}},
		{"garbage_falls_back_to_newest", "'; DROP TABLE quotes;--", []string{"third", "second", "first"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			quotes, err := f.svc.ListQuotes(ctx, admin, test.sort)
			if err != nil {
				t.Fatalf("ListQuotes failed: %v", err)
			}
			if len(quotes) != len(test.expected) {
				t.Fatalf("expected %d quotes, got %d", len(test.expected), len(quotes))
			}
			for i, want := range test.expected {
				if quotes[i].Text != want {
					t.Errorf("position %d: expected %q, got %q", i, want, quotes[i].Text)
				}
			}
		})
	}
}

func TestListQuotes_EmptyMembershipSet(t *testing.T) {
	t.Parallel()

	f := newQuoteFixture(t)
	f.store.SeedQuote("hidden", f.bob.ID, f.alice.ID, f.everyone.ID)
	loner := f.store.SeedUser("loner", "Loner", false)

	quotes, err := f.svc.ListQuotes(context.Background(), f.principal(loner), "")
	if err != nil {
		t.Fatalf("empty membership must not be an error: %v", err)
	}
	if len(quotes) != 0 {
		t.Errorf("expected no visible quotes, got %d", len(quotes))
	}
}

func TestRandomQuote(t *testing.T) {
	t.Parallel()

	f := newQuoteFixture(t)
	f.store.SeedQuote("only sales", f.carol.ID, f.carol.ID, f.sales.ID)

	ctx := context.Background()

	// Bob cannot see Sales, so his visible set is empty.
	if _, err := f.svc.RandomQuote(ctx, f.principal(f.bob)); !errors.Is(err, ErrQuoteNotFound) {
		t.Errorf("expected ErrQuoteNotFound, got %v", err)
	}

	quote, err := f.svc.RandomQuote(ctx, f.principal(f.carol))
	if err != nil {
		t.Fatalf("RandomQuote failed: %v", err)
	}
	if quote.Text != "only sales" {
		t.Errorf("unexpected quote: %q", quote.Text)
	}
}

func TestAddQuote_Validation(t *testing.T) {
	t.Parallel()

	f := newQuoteFixture(t)
	ctx := context.Background()
	alice := f.principal(f.alice)

	tests := []struct {
		name    string
		input   AddQuoteInput
		wantErr error
	}{
		{
			name:    "empty_text",
			input:   AddQuoteInput{Text: "", SubjectID: f.bob.ID, GroupID: f.everyone.ID},
			wantErr: ErrEmptyQuote,
		},
		{
			name:    "whitespace_only_text",
			input:   AddQuoteInput{Text: "   \n\t ", SubjectID: f.bob.ID, GroupID: f.everyone.ID},
			wantErr: ErrEmptyQuote,
		},
		{
			name:    "oversized_text",
			input:   AddQuoteInput{Text: strings.Repeat("x", DefaultMaxQuoteLength+1), SubjectID: f.bob.ID, GroupID: f.everyone.ID},
			wantErr: ErrQuoteTooLong,
		},
		{
			name:    "unknown_subject",
			input:   AddQuoteInput{Text: "hi", SubjectID: 9999, GroupID: f.everyone.ID},
			wantErr: ErrSubjectNotFound,
		},
		{
			name:    "unknown_group",
			input:   AddQuoteInput{Text: "hi", SubjectID: f.bob.ID, GroupID: 9999},
			wantErr: ErrGroupNotFound,
		},
		{
			name:    "non_member_group",
			input:   AddQuoteInput{Text: "hi", SubjectID: f.bob.ID, GroupID: f.sales.ID},
			wantErr: ErrGroupForbidden,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := f.svc.AddQuote(ctx, alice, test.input); !errors.Is(err, test.wantErr) {
				t.Errorf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestAddQuote_Success(t *testing.T) {
	t.Parallel()

	f := newQuoteFixture(t)

	quote, err := f.svc.AddQuote(context.Background(), f.principal(f.alice), AddQuoteInput{
		Text:      "  ship it  ",
		SubjectID: f.bob.ID,
		GroupID:   f.engineering.ID,
	})
	if err != nil {
		t.Fatalf("AddQuote failed: %v", err)
	}

	if quote.ID == 0 {
		t.Error("quote should have an assigned ID")
	}
	if quote.Text != "ship it" {
		t.Errorf("text should be trimmed, got %q", quote.Text)
	}
	if quote.SubmitterID != f.alice.ID {
		t.Errorf("submitter should be the principal, got %d", quote.SubmitterID)
	}
	if quote.GroupID != f.engineering.ID {
		t.Errorf("unexpected group: %d", quote.GroupID)
	}
}

func TestAddQuote_DefaultsToEveryone(t *testing.T) {
	t.Parallel()

	f := newQuoteFixture(t)

	// Bob belongs only to Everyone; omitting the group must land there.
	quote, err := f.svc.AddQuote(context.Background(), f.principal(f.bob), AddQuoteInput{
		Text:      "no selector shown",
		SubjectID: f.alice.ID,
	})
	if err != nil {
		t.Fatalf("AddQuote failed: %v", err)
	}
	if quote.GroupID != f.everyone.ID {
		t.Errorf("expected default group %d, got %d", f.everyone.ID, quote.GroupID)
	}

	// Carol is not a member of Everyone, so the default is forbidden for her.
	if _, err := f.svc.AddQuote(context.Background(), f.principal(f.carol), AddQuoteInput{
		Text:      "should fail",
		SubjectID: f.alice.ID,
	}); !errors.Is(err, ErrGroupForbidden) {
		t.Errorf("expected ErrGroupForbidden, got %v", err)
	}
}

func TestAddQuote_AdminMustBeMemberToo(t *testing.T) {
	t.Parallel()

	f := newQuoteFixture(t)
	admin := f.store.SeedUser("root", "Root", true)
	f.store.SeedMembership(admin.ID, f.everyone.ID)

	ctx := context.Background()
	p := f.principal(admin)

	// Admin reads bypass groups, but writes do not: Sales is off limits.
	if _, err := f.svc.AddQuote(ctx, p, AddQuoteInput{
		Text:      "admin overreach",
		SubjectID: f.carol.ID,
		GroupID:   f.sales.ID,
	}); !errors.Is(err, ErrGroupForbidden) {
		t.Errorf("expected ErrGroupForbidden for admin non-member, got %v", err)
	}

	if _, err := f.svc.AddQuote(ctx, p, AddQuoteInput{
		Text:      "admin in bounds",
		SubjectID: f.bob.ID,
		GroupID:   f.everyone.ID,
	}); err != nil {
		t.Errorf("admin submission into own group failed: %v", err)
	}
}

func TestLeaderboard_OrderingAndExclusion(t *testing.T) {
	t.Parallel()

	f := newQuoteFixture(t)
	// Alice and Bob tie at 3 quotes each; Carol has 1; the admin has 0.
	// Alphabetical tie-break puts Alice before Bob.
	for i := 0; i < 3; i++ {
		f.store.SeedQuote("a", f.alice.ID, f.bob.ID, f.everyone.ID)
		f.store.SeedQuote("b", f.bob.ID, f.alice.ID, f.everyone.ID)
	}
	f.store.SeedQuote("c", f.carol.ID, f.carol.ID, f.sales.ID)
	f.store.SeedUser("root", "Root", true)

	entries, err := f.svc.Leaderboard(context.Background(), testutil.NewAdminPrincipal(99))
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}

	want := []struct {
		name  string
		count int64
	}{
		{"Alice", 3},
		{"Bob", 3},
		{"Carol", 1},
	}

	if len(entries) != len(want) {
		t.Fatalf("expected %d entries (zero-count users excluded), got %d", len(want), len(entries))
	}
	for i, expected := range want {
		if entries[i].DisplayName != expected.name || entries[i].QuoteCount != expected.count {
			t.Errorf("position %d: expected %s(%d), got %s(%d)",
				i, expected.name, expected.count, entries[i].DisplayName, entries[i].QuoteCount)
		}
	}
}

func TestLeaderboard_Scoped(t *testing.T) {
	t.Parallel()

	f := newQuoteFixture(t)
	f.store.SeedQuote("a", f.alice.ID, f.bob.ID, f.everyone.ID)
	f.store.SeedQuote("c1", f.carol.ID, f.carol.ID, f.sales.ID)
	f.store.SeedQuote("c2", f.carol.ID, f.carol.ID, f.sales.ID)

	entries, err := f.svc.Leaderboard(context.Background(), f.principal(f.bob))
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}

	// Carol leads overall but is invisible to Bob.
	if len(entries) != 1 || entries[0].DisplayName != "Alice" {
		t.Errorf("bob's leaderboard should contain only Alice, got %+v", entries)
	}
}

func TestUserStats(t *testing.T) {
	t.Parallel()

	f := newQuoteFixture(t)
	f.store.SeedQuote("a", f.alice.ID, f.bob.ID, f.everyone.ID)       // alice said, bob added
	f.store.SeedQuote("b", f.alice.ID, f.alice.ID, f.engineering.ID)  // invisible to bob
	f.store.SeedQuote("c", f.bob.ID, f.alice.ID, f.everyone.ID)

	ctx := context.Background()

	// Bob sees only Everyone-scoped counts for Alice.
	stats, err := f.svc.UserStats(ctx, f.principal(f.bob), f.alice.ID)
	if err != nil {
		t.Fatalf("UserStats failed: %v", err)
	}
	if stats.QuotesSaid != 1 || stats.QuotesAdded != 1 {
		t.Errorf("expected said=1 added=1 within bob's scope, got said=%d added=%d",
			stats.QuotesSaid, stats.QuotesAdded)
	}

	// Admin sees unscoped counts.
	stats, err = f.svc.UserStats(ctx, testutil.NewAdminPrincipal(99), f.alice.ID)
	if err != nil {
		t.Fatalf("UserStats failed: %v", err)
	}
	if stats.QuotesSaid != 2 || stats.QuotesAdded != 2 {
		t.Errorf("expected said=2 added=2 for admin, got said=%d added=%d",
			stats.QuotesSaid, stats.QuotesAdded)
	}
}

func TestUserStats_InvisibleTargetIsNotFound(t *testing.T) {
	t.Parallel()

	f := newQuoteFixture(t)
	f.store.SeedQuote("c", f.carol.ID, f.carol.ID, f.sales.ID)

	ctx := context.Background()

	// Carol shares no group with Bob: not found, never zero-valued stats.
	if _, err := f.svc.UserStats(ctx, f.principal(f.bob), f.carol.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound for invisible target, got %v", err)
	}

	// A genuinely absent user looks exactly the same.
	if _, err := f.svc.UserStats(ctx, f.principal(f.bob), 9999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound for absent target, got %v", err)
	}

	// Admins do not need to share a group with the target.
	if _, err := f.svc.UserStats(ctx, testutil.NewAdminPrincipal(99), f.carol.ID); err != nil {
		t.Errorf("admin stats lookup failed: %v", err)
	}
}

func TestQuoteService_StorageFailurePropagates(t *testing.T) {
	t.Parallel()

	f := newQuoteFixture(t)
	f.store.FailWith = errors.New("connection reset")

	ctx := context.Background()
	bob := f.principal(f.bob)

	if _, err := f.svc.ListQuotes(ctx, bob, ""); err == nil {
		t.Error("ListQuotes should propagate storage failure")
	}
	if _, err := f.svc.Leaderboard(ctx, bob); err == nil {
		t.Error("Leaderboard should propagate storage failure")
	}
	if _, err := f.svc.AddQuote(ctx, bob, AddQuoteInput{Text: "x", SubjectID: f.alice.ID}); err == nil {
		t.Error("AddQuote should propagate storage failure")
	}
}
