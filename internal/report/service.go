// Package report implements the filtered-reporting pipeline: the paired
// list+summary fetch, the sequence-ordered application of results, the
// derived view, and the create-then-refresh mutation.
package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"expensedash/internal/api"
	"expensedash/internal/cache"
	"expensedash/internal/core"
	applog "expensedash/internal/log"
	"expensedash/internal/session"
)

var (
	// ErrValidationRejected is returned when a draft fails local validation;
	// the creation surface stays open and the draft is retained.
	ErrValidationRejected = errors.New("report: validation rejected")
	// ErrMutationFailed is returned when the create call fails at the
	// transport; the draft is retained.
	ErrMutationFailed = errors.New("report: mutation failed")
)

// CreatedPublisher receives a notification after a successful create. It is
// optional; a nil publisher disables notifications.
type CreatedPublisher interface {
	PublishExpenseCreated(ctx context.Context, d core.Draft) error
}

// ViewListener observes every applied ViewState replacement.
type ViewListener func(ViewState)

type fetched struct {
	records []core.Expense
	summary []core.CategorySummary
}

// ServiceConfig wires a Service.
type ServiceConfig struct {
	Provider  *session.Provider
	API       API
	Deriver   *Deriver
	Publisher CreatedPublisher
	Logger    *applog.Logger
	CacheTTL  time.Duration
	CacheSize int
}

// Service holds the current ViewState and the active filter, and runs the
// refresh and submit flows against them. The view is the only shared mutable
// resource; it is replaced wholesale by the newest completed fetch and left
// untouched by failed or superseded ones.
type Service struct {
	provider  *session.Provider
	api       API
	fetcher   *Fetcher
	deriver   *Deriver
	seq       Tracker
	publisher CreatedPublisher
	logger    *applog.Logger

	// fetched pairs per filter window, invalidated after a create
	reports *cache.LRU[fetched]

	mu      sync.Mutex
	view    ViewState
	hasView bool
	active  core.Range
	subs    []ViewListener
}

func NewService(cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentReport)
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 32
	}
	return &Service{
		provider:  cfg.Provider,
		api:       cfg.API,
		fetcher:   NewFetcher(cfg.API),
		deriver:   cfg.Deriver,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
		reports:   cache.NewLRU[fetched](cfg.CacheSize, cfg.CacheTTL),
	}
}

// Refresh runs the guarded pipeline for the given filter: token precondition,
// paired fetch, ordered application. On any failure the previous view is
// returned unchanged along with the error; a superseded fetch is silently
// discarded in favor of the current view.
func (s *Service) Refresh(ctx context.Context, f core.Range) (ViewState, error) {
	token, err := s.provider.Token(ctx)
	if err != nil {
		// No network call is made on this path.
		return s.View(), err
	}

	s.mu.Lock()
	s.active = f
	s.mu.Unlock()

	seq := s.seq.Begin()

	if res, ok := s.reports.Get(f.Key()); ok {
		v, _ := s.finish(seq, &res)
		return v, nil
	}

	records, summary, ferr := s.fetcher.Fetch(ctx, token, f)
	if ferr != nil {
		v, _ := s.finish(seq, nil)
		s.logger.ErrorContext(ctx, "Report fetch failed",
			applog.FieldError, ferr.Error(),
			applog.FieldFilter, f.Key(),
			applog.FieldSequence, seq)
		if errors.Is(ferr, api.ErrUnauthorized) {
			return v, session.ErrUnauthenticated
		}
		return v, fmt.Errorf("%w: %v", ErrFetchFailed, ferr)
	}

	res := fetched{records: records, summary: summary}
	v, applied := s.finish(seq, &res)
	if !applied {
		s.logger.WarnContext(ctx, "Discarding out-of-order fetch result",
			applog.FieldSequence, seq,
			applog.FieldFilter, f.Key())
		return v, nil
	}
	s.reports.Set(f.Key(), res)
	s.logger.DebugContext(ctx, "Report applied",
		applog.FieldFilter, f.Key(),
		applog.FieldSequence, seq,
		applog.FieldCount, len(records))
	return v, nil
}

// Submit validates and sends a new draft, then re-fetches under the filter
// that is active right now. A created record that falls outside the active
// window will not show up in the refreshed view; that is expected.
func (s *Service) Submit(ctx context.Context, d core.Draft) error {
	// Re-checked independently of the page-level guard: the creation surface
	// can outlive a session expiry.
	token, err := s.provider.Token(ctx)
	if err != nil {
		return err
	}

	if err := d.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationRejected, err)
	}

	if err := s.api.AddExpense(ctx, token, d); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return session.ErrUnauthenticated
		}
		return fmt.Errorf("%w: %v", ErrMutationFailed, err)
	}

	s.logger.InfoContext(ctx, "Expense created",
		applog.FieldHeader, d.Header,
		applog.FieldCategory, string(d.Category),
		applog.FieldCost, d.Cost,
		applog.FieldDate, d.Date)

	if s.publisher != nil {
		if perr := s.publisher.PublishExpenseCreated(ctx, d); perr != nil {
			// Notification is best effort; the create already succeeded.
			s.logger.ErrorContext(ctx, "Failed to publish created event",
				applog.FieldError, perr.Error(),
				applog.FieldHeader, d.Header)
		}
	}

	// The new record can fall into any cached window, not just the active
	// one, so every cached pair is dropped.
	s.reports.Clear()
	active := s.ActiveFilter()
	if _, rerr := s.Refresh(ctx, active); rerr != nil {
		s.logger.ErrorContext(ctx, "Post-create refresh failed",
			applog.FieldError, rerr.Error(),
			applog.FieldFilter, active.Key())
	}
	return nil
}

// Subscribe registers a listener for applied view replacements.
func (s *Service) Subscribe(fn ViewListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// View returns the last applied ViewState, zero if nothing was applied yet.
func (s *Service) View() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// HasView reports whether any fetch has been applied.
func (s *Service) HasView() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasView
}

// ActiveFilter returns the filter of the most recent Refresh dispatch.
func (s *Service) ActiveFilter() core.Range {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// finish records the completion of fetch seq and, when it carries a result
// and is the newest completion seen, installs the derived view. The newest
// check and the assignment happen under one lock: a completion racing in
// between would otherwise slip an older result over a newer view. A nil res
// marks a failed fetch, which advances the completion order but never touches
// the view.
func (s *Service) finish(seq uint64, res *fetched) (ViewState, bool) {
	var v ViewState
	if res != nil {
		v = s.deriver.Derive(res.records, res.summary)
	}

	s.mu.Lock()
	if !s.seq.Complete(seq) || res == nil {
		cur := s.view
		s.mu.Unlock()
		return cur, false
	}
	s.view = v
	s.hasView = true
	subs := make([]ViewListener, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
	return v, true
}
