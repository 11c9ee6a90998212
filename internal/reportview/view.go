// Package reportview drives the analytics page: it loads the three report
// datasets for one record type and turns them into chart payloads.
package reportview

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

// FailureMessage is shown when any dataset fails to load.
const FailureMessage = "Failed to load summary data. Please try again."

type State int

const (
	Loading State = iota
	Success
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Source provides the report datasets of one record type. Results must
// already be in display order.
type Source interface {
	Monthly(ctx context.Context, t core.TransactionType) ([]report.MonthBucket, error)
	Categories(ctx context.Context, t core.TransactionType) ([]report.CategoryBucket, error)
	Trend(ctx context.Context, t core.TransactionType) ([]report.DayBucket, error)
}

// View holds one load of the analytics page.
type View struct {
	Type       core.TransactionType
	State      State
	Monthly    []report.MonthBucket
	Categories []report.CategoryBucket
	Trend      []report.DayBucket

	// Err is the user-facing message when State is Failed; Cause is the
	// underlying error for logging.
	Err   string
	Cause error
}

func New(t core.TransactionType) *View {
	return &View{Type: t, State: Loading}
}

// Load fetches all three datasets concurrently. The first failure cancels
// the others and leaves the view Failed with no partial data. There is no
// retry; callers build a fresh View to try again.
func (v *View) Load(ctx context.Context, src Source) *View {
	v.State = Loading
	v.Err, v.Cause = "", nil

	var (
		monthly    []report.MonthBucket
		categories []report.CategoryBucket
		trend      []report.DayBucket
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		monthly, err = src.Monthly(gctx, v.Type)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = src.Categories(gctx, v.Type)
		return err
	})
	g.Go(func() error {
		var err error
		trend, err = src.Trend(gctx, v.Type)
		return err
	})

	if err := g.Wait(); err != nil {
		v.State = Failed
		v.Err = FailureMessage
		v.Cause = err
		v.Monthly, v.Categories, v.Trend = nil, nil, nil
		return v
	}

	v.State = Success
	v.Monthly = nonNil(monthly)
	v.Categories = nonNil(categories)
	v.Trend = nonNil(trend)
	return v
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
