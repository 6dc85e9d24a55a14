// Command bootstrap-admin creates an admin account directly against the
// database. Useful for recovering access or provisioning environments
// where the ADMIN_PASSWORD startup bootstrap is not used.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/quoteboard/quoteboard/internal/auth"
	"github.com/quoteboard/quoteboard/internal/model"
	"github.com/quoteboard/quoteboard/internal/repository"
)

type output struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		username    = flag.String("username", "admin", "Admin username")
		password    = flag.String("password", "", "Admin password (required)")
		displayName = flag.String("display-name", "Admin", "Admin display name")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *password == "" {
		fmt.Fprintln(os.Stderr, "-password is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}

	user := &model.User{
		Username:     *username,
		PasswordHash: hash,
		DisplayName:  *displayName,
		IsAdmin:      true,
	}

	if err := repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			fmt.Fprintf(os.Stderr, "username %q already exists\n", *username)
		} else {
			fmt.Fprintln(os.Stderr, "create user:", err)
		}
		os.Exit(1)
	}

	// Admins read everything, but need the default membership to submit.
	if group, err := repo.GetGroupByName(ctx, model.DefaultGroupName); err == nil {
		if err := repo.AddMembership(ctx, user.ID, group.ID); err != nil {
			fmt.Fprintln(os.Stderr, "warning: default group enrollment failed:", err)
		}
	} else {
		fmt.Fprintln(os.Stderr, "warning: default group lookup failed:", err)
	}

	out := output{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Printf("created admin %q (id %d)\n", out.Username, out.UserID)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}
