// Package adapters binds the finance backend client to the report view and
// the dashboard, choosing between local aggregation and the backend's
// pre-aggregated endpoints.
package adapters

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/report"
	"fintrack/internal/reportview"
	"fintrack/internal/session"
)

// Report sources, matching the REPORT_SOURCE setting.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)

// RemoteReportClient is the part of the backend client serving
// pre-aggregated reports.
type RemoteReportClient interface {
	MonthlyReport(ctx context.Context, t core.TransactionType) ([]report.MonthBucket, error)
	CategoryReport(ctx context.Context, t core.TransactionType) ([]report.CategoryBucket, error)
	TrendReport(ctx context.Context, t core.TransactionType) ([]report.DayBucket, error)
}

// ReportClient is what either source may need.
type ReportClient interface {
	session.Lister
	RemoteReportClient
}

// NewReportSource picks the implementation for kind. Build one per page load.
func NewReportSource(kind string, client ReportClient) (reportview.Source, error) {
	switch kind {
	case SourceLocal, "":
		return NewLocalReports(client), nil
	case SourceRemote:
		return RemoteReports{client: client}, nil
	}
	return nil, fmt.Errorf("unknown report source %q", kind)
}

// LocalReports fetches the full record list once per load and aggregates it
// in process.
type LocalReports struct {
	lister session.Lister

	mu      sync.Mutex
	records map[core.TransactionType][]core.Transaction
}

func NewLocalReports(l session.Lister) *LocalReports {
	return &LocalReports{lister: l, records: make(map[core.TransactionType][]core.Transaction)}
}

func (r *LocalReports) fetch(ctx context.Context, t core.TransactionType) ([]core.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if recs, ok := r.records[t]; ok {
		return recs, nil
	}
	recs, err := r.lister.ListTransactions(ctx, t)
	if err != nil {
		return nil, err
	}
	r.records[t] = recs
	return recs, nil
}

func (r *LocalReports) Monthly(ctx context.Context, t core.TransactionType) ([]report.MonthBucket, error) {
	recs, err := r.fetch(ctx, t)
	if err != nil {
		return nil, err
	}
	return report.Monthly(recs), nil
}

func (r *LocalReports) Categories(ctx context.Context, t core.TransactionType) ([]report.CategoryBucket, error) {
	recs, err := r.fetch(ctx, t)
	if err != nil {
		return nil, err
	}
	return report.ByCategory(recs), nil
}

func (r *LocalReports) Trend(ctx context.Context, t core.TransactionType) ([]report.DayBucket, error) {
	recs, err := r.fetch(ctx, t)
	if err != nil {
		return nil, err
	}
	return report.DailyTrend(recs), nil
}

// RemoteReports decodes the backend's rows and puts them in the same order
// the local engine produces.
type RemoteReports struct {
	client RemoteReportClient
}

func (r RemoteReports) Monthly(ctx context.Context, t core.TransactionType) ([]report.MonthBucket, error) {
	b, err := r.client.MonthlyReport(ctx, t)
	if err != nil {
		return nil, err
	}
	report.SortMonths(b)
	return b, nil
}

func (r RemoteReports) Categories(ctx context.Context, t core.TransactionType) ([]report.CategoryBucket, error) {
	b, err := r.client.CategoryReport(ctx, t)
	if err != nil {
		return nil, err
	}
	report.SortCategories(b)
	return b, nil
}

func (r RemoteReports) Trend(ctx context.Context, t core.TransactionType) ([]report.DayBucket, error) {
	b, err := r.client.TrendReport(ctx, t)
	if err != nil {
		return nil, err
	}
	report.SortDays(b)
	return b, nil
}
