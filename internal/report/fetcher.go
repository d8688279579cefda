package report

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"expensedash/internal/core"
)

// ErrFetchFailed wraps any transport or decode failure on either half of the
// paired fetch. The caller keeps its previous view; nothing is partially
// applied.
var ErrFetchFailed = errors.New("report: fetch failed")

// API is the slice of the expense service this package consumes.
type API interface {
	ListExpenses(ctx context.Context, token string, f core.Range) ([]core.Expense, error)
	Summary(ctx context.Context, token string, f core.Range) ([]core.CategorySummary, error)
	AddExpense(ctx context.Context, token string, d core.Draft) error
}

// Fetcher issues the two correlated queries for a filter window.
type Fetcher struct {
	api API
}

func NewFetcher(api API) *Fetcher {
	return &Fetcher{api: api}
}

// Fetch retrieves the itemized list and the category summary with identical
// range parameters and waits for both. The two queries share no snapshot on
// the server, so their totals are allowed to disagree; consistency between
// them is not asserted here. If either call fails the pair fails as a whole.
func (f *Fetcher) Fetch(ctx context.Context, token string, r core.Range) ([]core.Expense, []core.CategorySummary, error) {
	var (
		records []core.Expense
		summary []core.CategorySummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = f.api.ListExpenses(gctx, token, r)
		if err != nil {
			return fmt.Errorf("list: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		summary, err = f.api.Summary(gctx, token, r)
		if err != nil {
			return fmt.Errorf("summary: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return records, summary, nil
}
