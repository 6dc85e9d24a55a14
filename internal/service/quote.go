package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/quoteboard/quoteboard/internal/metrics"
	"github.com/quoteboard/quoteboard/internal/model"
	"github.com/quoteboard/quoteboard/internal/repository"
)

// Quote service errors.
var (
	ErrEmptyQuote      = errors.New("quote text is empty")
	ErrQuoteTooLong    = errors.New("quote text exceeds maximum length")
	ErrQuoteNotFound   = errors.New("quote not found")
	ErrSubjectNotFound = errors.New("subject user not found")
	ErrGroupForbidden  = errors.New("submitter is not a member of the target group")
)

// DefaultMaxQuoteLength caps quote text in characters after trimming.
const DefaultMaxQuoteLength = 4096

// QuoteService handles quote submission and the scoped read projections.
type QuoteService struct {
	quotes      QuoteStore
	users       UserStore
	groups      GroupStore
	memberships MembershipStore
	access      *Access
	maxLen      int
	metrics     metrics.Recorder
}

// NewQuoteService creates a new QuoteService.
func NewQuoteService(
	quotes QuoteStore,
	users UserStore,
	groups GroupStore,
	memberships MembershipStore,
	access *Access,
	maxQuoteLength int,
	recorder metrics.Recorder,
) *QuoteService {
	if maxQuoteLength <= 0 {
		maxQuoteLength = DefaultMaxQuoteLength
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &QuoteService{
		quotes:      quotes,
		users:       users,
		groups:      groups,
		memberships: memberships,
		access:      access,
		maxLen:      maxQuoteLength,
		metrics:     recorder,
	}
}

// ListQuotes returns the quotes visible to the principal. Unknown sort
// values fall back to newest-first rather than erroring.
func (s *QuoteService) ListQuotes(ctx context.Context, p model.Principal, sort string) ([]*model.Quote, error) {
	scope, err := s.access.VisibleGroupsFor(ctx, p)
	if err != nil {
		return nil, err
	}

	if scope.IsEmpty() {
		return []*model.Quote{}, nil
	}

	return s.quotes.ListQuotes(ctx, scope, model.NormalizeSort(sort))
}

// RandomQuote uniformly selects one quote visible to the principal.
// An empty visible set is a not-found outcome, not an error.
func (s *QuoteService) RandomQuote(ctx context.Context, p model.Principal) (*model.Quote, error) {
	scope, err := s.access.VisibleGroupsFor(ctx, p)
	if err != nil {
		return nil, err
	}

	if scope.IsEmpty() {
		return nil, ErrQuoteNotFound
	}

	quote, err := s.quotes.RandomQuote(ctx, scope)
	if err != nil {
		if errors.Is(err, repository.ErrQuoteNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, err
	}

	return quote, nil
}

// AddQuoteInput defines input for filing a quote.
// A zero GroupID means "no choice made" and resolves to the default group.
type AddQuoteInput struct {
	Text      string
	SubjectID int64
	GroupID   int64
}

// AddQuote validates and stores a new quote. The submitter must be a
// member of the target group; this holds for admins too, since the
// write-side membership check is independent of the admin read bypass.
func (s *QuoteService) AddQuote(ctx context.Context, p model.Principal, input AddQuoteInput) (*model.Quote, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		s.metrics.IncQuoteRejected("invalid_text")
		return nil, ErrEmptyQuote
	}
	if utf8.RuneCountInString(text) > s.maxLen {
		s.metrics.IncQuoteRejected("invalid_text")
		return nil, ErrQuoteTooLong
	}

	subject, err := s.users.GetUserByID(ctx, input.SubjectID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncQuoteRejected("subject_missing")
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}

	group, err := s.resolveTargetGroup(ctx, input.GroupID)
	if err != nil {
		return nil, err
	}

	member, err := s.memberships.IsMember(ctx, p.UserID, group.ID)
	if err != nil {
		return nil, fmt.Errorf("check group membership: %w", err)
	}
	if !member {
		s.metrics.IncQuoteRejected("forbidden_group")
		return nil, ErrGroupForbidden
	}

	quote := &model.Quote{
		Text:          text,
		SubjectID:     subject.ID,
		SubjectName:   subject.DisplayName,
		SubmitterID:   p.UserID,
		SubmitterName: p.DisplayName,
		GroupID:       group.ID,
		GroupName:     group.Name,
	}

	if err := s.quotes.InsertQuote(ctx, quote); err != nil {
		return nil, err
	}

	s.metrics.IncQuoteCreated()

	return quote, nil
}

// resolveTargetGroup maps a submitted group ID onto a group row, falling
// back to the default group when the client made no choice.
func (s *QuoteService) resolveTargetGroup(ctx context.Context, groupID int64) (*model.Group, error) {
	var (
		group *model.Group
		err   error
	)

	if groupID == 0 {
		group, err = s.groups.GetGroupByName(ctx, model.DefaultGroupName)
	} else {
		group, err = s.groups.GetGroupByID(ctx, groupID)
	}

	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	return group, nil
}

// Leaderboard returns quotes-as-subject counts within the principal's
// scope, ordered by count descending with name as the tie-break. Users
// with zero quotes are excluded.
func (s *QuoteService) Leaderboard(ctx context.Context, p model.Principal) ([]*model.LeaderboardEntry, error) {
	scope, err := s.access.VisibleGroupsFor(ctx, p)
	if err != nil {
		return nil, err
	}

	if scope.IsEmpty() {
		return []*model.LeaderboardEntry{}, nil
	}

	return s.quotes.Leaderboard(ctx, scope)
}

// UserStats returns the target user's quote counts within the
// principal's scope. A non-admin asking about a user who shares no
// visible group gets not-found, never zero-valued stats, so invisible
// users cannot be enumerated.
func (s *QuoteService) UserStats(ctx context.Context, p model.Principal, targetID int64) (*model.UserStats, error) {
	scope, err := s.access.VisibleGroupsFor(ctx, p)
	if err != nil {
		return nil, err
	}

	target, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !p.IsAdmin {
		visible, err := s.memberships.UserInScope(ctx, targetID, scope)
		if err != nil {
			return nil, fmt.Errorf("check target visibility: %w", err)
		}
		if !visible {
			return nil, ErrUserNotFound
		}
	}

	said, added, err := s.quotes.CountQuotesForUser(ctx, targetID, scope)
	if err != nil {
		return nil, err
	}

	return &model.UserStats{
		UserID:      target.ID,
		Username:    target.Username,
		DisplayName: target.DisplayName,
		QuotesSaid:  said,
		QuotesAdded: added,
	}, nil
}
