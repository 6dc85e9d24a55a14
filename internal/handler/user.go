package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quoteboard/quoteboard/internal/auth"
	"github.com/quoteboard/quoteboard/internal/handler/dto"
	"github.com/quoteboard/quoteboard/internal/service"
)

// UserHandler handles HTTP requests for the user directory and stats.
type UserHandler struct {
	users  *service.UserService
	quotes *service.QuoteService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, quotes *service.QuoteService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		quotes: quotes,
		logger: logger,
	}
}

// List handles GET /api/v1/users.
// Non-admins only see users sharing at least one visible group.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	p := auth.MustPrincipalFromContext(r.Context())

	users, err := h.users.ListUsers(r.Context(), *p)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserListResponse(users))
}

// Create handles POST /api/v1/admin/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.users.CreateUser(r.Context(), service.CreateUserInput{
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		IsAdmin:     req.IsAdmin,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_created",
		"user_id", user.ID,
		"username", user.Username,
		"is_admin", user.IsAdmin,
	)

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Stats handles GET /api/v1/users/{id}/stats.
// Asking about a user outside the caller's visible groups is a 404,
// indistinguishable from a user that does not exist.
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	p := auth.MustPrincipalFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "User ID must be numeric")
		return
	}

	stats, err := h.quotes.UserStats(r.Context(), *p, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserStatsResponse(stats))
}

// handleServiceError maps user service errors to HTTP responses.
func (h *UserHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrUsernameExists):
		writeError(w, http.StatusConflict, "USERNAME_TAKEN", "Username already exists")
	case errors.Is(err, service.ErrInvalidUsername):
		writeError(w, http.StatusBadRequest, "INVALID_USERNAME", "Username must be 3-32 characters of letters, digits, dot, dash or underscore")
	case errors.Is(err, service.ErrMissingUserFields):
		writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "Username, password and display name are required")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
