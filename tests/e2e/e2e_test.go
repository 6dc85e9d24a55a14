//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/quoteboard/quoteboard/internal/auth"
	"github.com/quoteboard/quoteboard/internal/model"
	"github.com/quoteboard/quoteboard/internal/repository"
	"github.com/quoteboard/quoteboard/internal/testutil"
)

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		IsAdmin  bool   `json:"is_admin"`
	} `json:"user"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type groupResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type quoteResponse struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	GroupName string `json:"group_name"`
}

type quoteListResponse struct {
	Data []quoteResponse `json:"data"`
}

type statsResponse struct {
	QuotesSaid  int64 `json:"quotes_said"`
	QuotesAdded int64 `json:"quotes_added"`
}

// TestE2ESmoke drives the running API through the core flow: an admin
// provisions a group and a user, the user logs in, files a quote and
// reads it back through every projection.
func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("QUOTEBOARD_BASE_URL", "http://localhost:8080")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatalf("DATABASE_URL is required for e2e tests")
	}

	adminUsername := testutil.UniqueName("e2e-admin")
	adminPassword := "e2e-admin-password"
	bootstrapAdmin(t, dbURL, adminUsername, adminPassword)

	client := &http.Client{Timeout: 10 * time.Second}

	adminToken := login(t, client, baseURL, adminUsername, adminPassword)

	// Admin provisions a group and a member.
	group := createGroup(t, client, baseURL, adminToken, testutil.UniqueName("e2e-group"))

	username := testutil.UniqueName("e2e-user")
	password := "e2e-user-password"
	user := createUser(t, client, baseURL, adminToken, username, password)
	addMember(t, client, baseURL, adminToken, group.ID, user.ID)

	userToken := login(t, client, baseURL, username, password)

	// File a quote into the new group and read it back.
	quote := createQuote(t, client, baseURL, userToken, "works end to end", user.ID, group.ID)
	if quote.Text != "works end to end" {
		t.Fatalf("unexpected quote text: %q", quote.Text)
	}

	quotes := listQuotes(t, client, baseURL, userToken)
	if !containsQuote(quotes, quote.ID) {
		t.Errorf("filed quote missing from list: %+v", quotes)
	}

	random := getJSON[quoteResponse](t, client, baseURL+"/api/v1/quotes/random", userToken)
	if random.ID == 0 {
		t.Error("random quote should return a visible quote")
	}

	stats := getJSON[statsResponse](t, client, fmt.Sprintf("%s/api/v1/users/%d/stats", baseURL, user.ID), userToken)
	if stats.QuotesSaid < 1 || stats.QuotesAdded < 1 {
		t.Errorf("expected at least one said and added quote, got %+v", stats)
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// bootstrapAdmin creates an admin account directly in the database so
// the test does not depend on the server's startup bootstrap.
func bootstrapAdmin(t *testing.T, dbURL, username, password string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer repo.Close()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  "E2E Admin",
		IsAdmin:      true,
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create admin: %v", err)
	}

	group, err := repo.GetGroupByName(ctx, model.DefaultGroupName)
	if err != nil {
		t.Fatalf("default group lookup: %v", err)
	}
	if err := repo.AddMembership(ctx, user.ID, group.ID); err != nil {
		t.Fatalf("enroll admin: %v", err)
	}
}

func login(t *testing.T, client *http.Client, baseURL, username, password string) string {
	t.Helper()
	resp := postJSON[loginResponse](t, client, baseURL+"/api/v1/auth/login", "",
		map[string]string{"username": username, "password": password}, http.StatusOK)
	if resp.Token == "" {
		t.Fatal("login returned no token")
	}
	return resp.Token
}

func createGroup(t *testing.T, client *http.Client, baseURL, token, name string) groupResponse {
	t.Helper()
	return postJSON[groupResponse](t, client, baseURL+"/api/v1/admin/groups", token,
		map[string]string{"name": name}, http.StatusCreated)
}

func createUser(t *testing.T, client *http.Client, baseURL, token, username, password string) userResponse {
	t.Helper()
	return postJSON[userResponse](t, client, baseURL+"/api/v1/admin/users", token,
		map[string]string{
			"username":     username,
			"password":     password,
			"display_name": "E2E User",
		}, http.StatusCreated)
}

func addMember(t *testing.T, client *http.Client, baseURL, token string, groupID, userID int64) {
	t.Helper()
	url := fmt.Sprintf("%s/api/v1/admin/groups/%d/members/%d", baseURL, groupID, userID)
	req, err := http.NewRequest(http.MethodPut, url, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("add member: expected 204, got %d: %s", resp.StatusCode, body)
	}
}

func createQuote(t *testing.T, client *http.Client, baseURL, token, text string, subjectID, groupID int64) quoteResponse {
	t.Helper()
	return postJSON[quoteResponse](t, client, baseURL+"/api/v1/quotes", token,
		map[string]any{
			"text":       text,
			"subject_id": subjectID,
			"group_id":   groupID,
		}, http.StatusCreated)
}

func listQuotes(t *testing.T, client *http.Client, baseURL, token string) []quoteResponse {
	t.Helper()
	return getJSON[quoteListResponse](t, client, baseURL+"/api/v1/quotes", token).Data
}

func containsQuote(quotes []quoteResponse, id int64) bool {
	for _, quote := range quotes {
		if quote.ID == id {
			return true
		}
	}
	return false
}

func postJSON[T any](t *testing.T, client *http.Client, url, token string, body any, wantStatus int) T {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		t.Fatalf("POST %s: expected %d, got %d: %s", url, wantStatus, resp.StatusCode, raw)
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode response from %s: %v", url, err)
	}
	return out
}

func getJSON[T any](t *testing.T, client *http.Client, url, token string) T {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: expected 200, got %d: %s", url, resp.StatusCode, raw)
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode response from %s: %v", url, err)
	}
	return out
}
