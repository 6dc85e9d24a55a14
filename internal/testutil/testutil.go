// Package testutil provides shared helpers and fakes for tests.
package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/quoteboard/quoteboard/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestPrincipal creates a non-admin principal for tests.
func NewTestPrincipal(userID int64) model.Principal {
	return model.Principal{
		UserID:      userID,
		Username:    fmt.Sprintf("user-%d", userID),
		DisplayName: fmt.Sprintf("User %d", userID),
		IsAdmin:     false,
	}
}

// NewAdminPrincipal creates an admin principal for tests.
func NewAdminPrincipal(userID int64) model.Principal {
	p := NewTestPrincipal(userID)
	p.Username = fmt.Sprintf("admin-%d", userID)
	p.DisplayName = fmt.Sprintf("Admin %d", userID)
	p.IsAdmin = true
	return p
}

// UniqueName generates a unique name for tests.
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
