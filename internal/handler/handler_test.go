package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quoteboard/quoteboard/internal/auth"
	"github.com/quoteboard/quoteboard/internal/model"
	"github.com/quoteboard/quoteboard/internal/service"
	"github.com/quoteboard/quoteboard/internal/testutil"
)

// fixture wires the full handler surface over a FakeStore with three
// groups and three users, mirroring the usual board population:
//
//	alice: Everyone + Engineering
//	bob:   Everyone
//	carol: Sales only
type fixture struct {
	store       *testutil.FakeStore
	router      chi.Router
	sessions    *memorySessions
	users       *service.UserService
	everyone    *model.Group
	engineering *model.Group
	sales       *model.Group
	alice       *model.User
	bob         *model.User
	carol       *model.User
}

// memorySessions is an in-memory SessionStore for handler tests.
type memorySessions struct {
	sessions map[string]*model.Principal
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: make(map[string]*model.Principal)}
}

func (m *memorySessions) SetSession(_ context.Context, token string, p *model.Principal, _ time.Duration) error {
	m.sessions[token] = p
	return nil
}

func (m *memorySessions) DeleteSession(_ context.Context, token string) error {
	delete(m.sessions, token)
	return nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := testutil.NewFakeStore()
	f := &fixture{
		store:       store,
		sessions:    newMemorySessions(),
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

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	access := service.NewAccess(store)
	quoteSvc := service.NewQuoteService(store, store, store, store, access, 0, nil)
	userSvc := service.NewUserService(store, store, store, access, nil, logger)
	groupSvc := service.NewGroupService(store, store, store, access, nil)
	f.users = userSvc

	authHandler := NewAuthHandler(userSvc, f.sessions, time.Hour, false, logger)
	quoteHandler := NewQuoteHandler(quoteSvc, logger)
	userHandler := NewUserHandler(userSvc, quoteSvc, logger)
	groupHandler := NewGroupHandler(groupSvc, access, logger)

	router := chi.NewRouter()
	router.Post("/api/v1/auth/login", authHandler.Login)
	router.Post("/api/v1/auth/logout", authHandler.Logout)
	router.Get("/api/v1/auth/me", authHandler.Me)
	router.Get("/api/v1/quotes", quoteHandler.List)
	router.Post("/api/v1/quotes", quoteHandler.Create)
	router.Get("/api/v1/quotes/random", quoteHandler.Random)
	router.Get("/api/v1/leaderboard", quoteHandler.Leaderboard)
	router.Get("/api/v1/users", userHandler.List)
	router.Get("/api/v1/users/{id}/stats", userHandler.Stats)
	router.Get("/api/v1/groups", groupHandler.List)
	router.Post("/api/v1/admin/users", userHandler.Create)
	router.Post("/api/v1/admin/groups", groupHandler.Create)
	router.Put("/api/v1/admin/groups/{id}/members/{userID}", groupHandler.AddMember)
	router.Delete("/api/v1/admin/groups/{id}/members/{userID}", groupHandler.RemoveMember)
	f.router = router

	return f
}

// do performs a request with the given principal injected, the way the
// session middleware would.
func (f *fixture) do(req *http.Request, user *model.User) *httptest.ResponseRecorder {
	if user != nil {
		p := &model.Principal{
			UserID:      user.ID,
			Username:    user.Username,
			DisplayName: user.DisplayName,
			IsAdmin:     user.IsAdmin,
		}
		req = req.WithContext(auth.ContextWithPrincipal(req.Context(), p))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}
