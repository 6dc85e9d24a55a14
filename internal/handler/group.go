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

// GroupHandler handles HTTP requests for groups and memberships.
type GroupHandler struct {
	groups *service.GroupService
	access *service.Access
	logger *slog.Logger
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groups *service.GroupService, access *service.Access, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{
		groups: groups,
		access: access,
		logger: logger,
	}
}

// List handles GET /api/v1/groups.
// Returns the groups the caller may file quotes into, along with the
// show_group_selector hint for submission UIs.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	p := auth.MustPrincipalFromContext(r.Context())

	groups, err := h.groups.VisibleGroups(r.Context(), *p)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	showSelector, err := h.access.ShouldShowGroupSelector(r.Context(), *p)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToGroupListResponse(groups, showSelector))
}

// Create handles POST /api/v1/admin/groups.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	group, err := h.groups.CreateGroup(r.Context(), req.Name)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("group_created",
		"group_id", group.ID,
		"name", group.Name,
	)

	writeJSON(w, http.StatusCreated, dto.ToGroupResponse(group))
}

// AddMember handles PUT /api/v1/admin/groups/{id}/members/{userID}.
// Adding an existing member is a no-op success.
func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	groupID, userID, ok := h.memberParams(w, r)
	if !ok {
		return
	}

	if err := h.groups.AddMember(r.Context(), groupID, userID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("member_added",
		"group_id", groupID,
		"user_id", userID,
	)

	w.WriteHeader(http.StatusNoContent)
}

// RemoveMember handles DELETE /api/v1/admin/groups/{id}/members/{userID}.
// Removing an absent member is a no-op success.
func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	groupID, userID, ok := h.memberParams(w, r)
	if !ok {
		return
	}

	if err := h.groups.RemoveMember(r.Context(), groupID, userID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("member_removed",
		"group_id", groupID,
		"user_id", userID,
	)

	w.WriteHeader(http.StatusNoContent)
}

// memberParams parses the {id} and {userID} URL parameters.
func (h *GroupHandler) memberParams(w http.ResponseWriter, r *http.Request) (groupID, userID int64, ok bool) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Group ID must be numeric")
		return 0, 0, false
	}
	userID, err = strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "User ID must be numeric")
		return 0, 0, false
	}
	return groupID, userID, true
}

// handleServiceError maps group service errors to HTTP responses.
func (h *GroupHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		writeError(w, http.StatusNotFound, "GROUP_NOT_FOUND", "Group not found")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrGroupExists):
		writeError(w, http.StatusConflict, "GROUP_EXISTS", "Group name already exists")
	case errors.Is(err, service.ErrInvalidGroupName):
		writeError(w, http.StatusBadRequest, "INVALID_GROUP_NAME", "Group name is required")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
