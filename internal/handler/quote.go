package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/quoteboard/quoteboard/internal/auth"
	"github.com/quoteboard/quoteboard/internal/handler/dto"
	"github.com/quoteboard/quoteboard/internal/model"
	"github.com/quoteboard/quoteboard/internal/service"
)

// QuoteHandler handles HTTP requests for quote operations.
type QuoteHandler struct {
	svc    *service.QuoteService
	logger *slog.Logger
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(svc *service.QuoteService, logger *slog.Logger) *QuoteHandler {
	return &QuoteHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/v1/quotes.
// The sort query parameter accepts date_desc, date_asc and person;
// anything else falls back to newest-first.
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	p := auth.MustPrincipalFromContext(r.Context())
	sort := model.NormalizeSort(r.URL.Query().Get("sort"))

	quotes, err := h.svc.ListQuotes(r.Context(), *p, sort)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToQuoteListResponse(quotes, sort))
}

// Random handles GET /api/v1/quotes/random.
func (h *QuoteHandler) Random(w http.ResponseWriter, r *http.Request) {
	p := auth.MustPrincipalFromContext(r.Context())

	quote, err := h.svc.RandomQuote(r.Context(), *p)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToQuoteResponse(quote))
}

// Create handles POST /api/v1/quotes.
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	p := auth.MustPrincipalFromContext(r.Context())

	var req dto.CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	quote, err := h.svc.AddQuote(r.Context(), *p, service.AddQuoteInput{
		Text:      req.Text,
		SubjectID: req.SubjectID,
		GroupID:   req.GroupID,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("quote_created",
		"quote_id", quote.ID,
		"subject_id", quote.SubjectID,
		"group_id", quote.GroupID,
		"submitter_id", p.UserID,
	)

	writeJSON(w, http.StatusCreated, dto.ToQuoteResponse(quote))
}

// Leaderboard handles GET /api/v1/leaderboard.
func (h *QuoteHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	p := auth.MustPrincipalFromContext(r.Context())

	entries, err := h.svc.Leaderboard(r.Context(), *p)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLeaderboardResponse(entries))
}

// handleServiceError maps quote service errors to HTTP responses.
func (h *QuoteHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyQuote):
		writeError(w, http.StatusBadRequest, "EMPTY_QUOTE", "Quote text is required")
	case errors.Is(err, service.ErrQuoteTooLong):
		writeError(w, http.StatusBadRequest, "QUOTE_TOO_LONG", "Quote text exceeds maximum length")
	case errors.Is(err, service.ErrQuoteNotFound):
		writeError(w, http.StatusNotFound, "QUOTE_NOT_FOUND", "No quote found")
	case errors.Is(err, service.ErrSubjectNotFound):
		writeError(w, http.StatusNotFound, "SUBJECT_NOT_FOUND", "Subject user not found")
	case errors.Is(err, service.ErrGroupNotFound):
		writeError(w, http.StatusNotFound, "GROUP_NOT_FOUND", "Group not found")
	case errors.Is(err, service.ErrGroupForbidden):
		writeError(w, http.StatusForbidden, "GROUP_FORBIDDEN", "Not a member of the target group")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
