package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/quoteboard/quoteboard/internal/auth"
	"github.com/quoteboard/quoteboard/internal/metrics"
	"github.com/quoteboard/quoteboard/internal/model"
	"github.com/quoteboard/quoteboard/internal/repository"
)

// User service errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidUsername    = errors.New("invalid username format")
	ErrMissingUserFields  = errors.New("username, password and display name are required")
)

// Username format: 3-32 chars, alphanumeric plus dot, dash, underscore.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,32}$`)

// UserService handles account management and credential verification.
type UserService struct {
	users       UserStore
	groups      GroupStore
	memberships MembershipStore
	access      *Access
	metrics     metrics.Recorder
	logger      *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	users UserStore,
	groups GroupStore,
	memberships MembershipStore,
	access *Access,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:       users,
		groups:      groups,
		memberships: memberships,
		access:      access,
		metrics:     recorder,
		logger:      logger,
	}
}

// Authenticate verifies a username/password pair. Unknown usernames and
// wrong passwords produce the same error so accounts cannot be probed.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLoginFailure()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		s.metrics.IncLoginFailure()
		return nil, ErrInvalidCredentials
	}

	s.metrics.IncLoginSuccess()

	return user, nil
}

// CreateUserInput defines input for creating an account.
type CreateUserInput struct {
	Username    string
	Password    string
	DisplayName string
	IsAdmin     bool
}

// CreateUser creates an account and enrolls it into the default group.
// The enrollment is a best-effort second step: there is no transaction
// spanning both inserts, and a failed enrollment is logged rather than
// rolled back.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	displayName := strings.TrimSpace(input.DisplayName)

	if username == "" || input.Password == "" || displayName == "" {
		return nil, ErrMissingUserFields
	}
	if !usernameRegex.MatchString(username) {
		return nil, ErrInvalidUsername
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  displayName,
		IsAdmin:      input.IsAdmin,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}

	s.metrics.IncUserCreated()
	s.enrollInDefaultGroup(ctx, user)

	return user, nil
}

// enrollInDefaultGroup adds the user to the "Everyone" group.
// Failure leaves the account valid but with an empty visible set.
func (s *UserService) enrollInDefaultGroup(ctx context.Context, user *model.User) {
	group, err := s.groups.GetGroupByName(ctx, model.DefaultGroupName)
	if err != nil {
		s.logger.Warn("default group lookup failed, user not auto-enrolled",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := s.memberships.AddMembership(ctx, user.ID, group.ID); err != nil {
		s.logger.Warn("default group enrollment failed",
			slog.Int64("user_id", user.ID),
			slog.Int64("group_id", group.ID),
			slog.String("error", err.Error()),
		)
	}
}

// ListUsers returns the user directory visible to the principal.
// Non-admins only see users sharing at least one visible group.
func (s *UserService) ListUsers(ctx context.Context, p model.Principal) ([]*model.User, error) {
	scope, err := s.access.VisibleGroupsFor(ctx, p)
	if err != nil {
		return nil, err
	}

	if scope.IsEmpty() {
		return []*model.User{}, nil
	}

	return s.users.ListUsers(ctx, scope)
}

// BootstrapAdmin creates the initial admin account when the users table
// is empty. Returns false without error when users already exist.
func (s *UserService) BootstrapAdmin(ctx context.Context, username, password, displayName string) (bool, error) {
	count, err := s.users.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	if _, err := s.CreateUser(ctx, CreateUserInput{
		Username:    username,
		Password:    password,
		DisplayName: displayName,
		IsAdmin:     true,
	}); err != nil {
		return false, err
	}

	return true, nil
}
