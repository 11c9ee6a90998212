package adapters

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/report"
	"fintrack/internal/session"
)

// Dashboard is the data behind the home page.
type Dashboard struct {
	Summary report.Summary
	Recent  []core.Transaction
}

// DashboardSource loads the dashboard for the current session.
type DashboardSource interface {
	Dashboard(ctx context.Context, limit int) (Dashboard, error)
}

// DashboardClient is the part of the backend client the dashboard uses.
type DashboardClient interface {
	session.Lister
	Summary(ctx context.Context) (report.Summary, error)
	RecentTransactions(ctx context.Context) ([]core.Transaction, error)
}

func NewDashboardSource(kind string, client DashboardClient, st *session.State) (DashboardSource, error) {
	switch kind {
	case SourceLocal, "":
		return LocalDashboard{client: client, state: st}, nil
	case SourceRemote:
		return RemoteDashboard{client: client}, nil
	}
	return nil, fmt.Errorf("unknown report source %q", kind)
}

// LocalDashboard derives everything from the session caches, so the totals
// always agree with the transaction lists the user sees.
type LocalDashboard struct {
	client session.Lister
	state  *session.State
}

func (d LocalDashboard) Dashboard(ctx context.Context, limit int) (Dashboard, error) {
	if err := d.state.EnsureLoaded(ctx, d.client); err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Summary: d.state.Summary(),
		Recent:  report.Recent(d.state.Records(core.Expense), d.state.Records(core.Income), limit),
	}, nil
}

// RemoteDashboard asks the backend for both parts in parallel.
type RemoteDashboard struct {
	client DashboardClient
}

func (d RemoteDashboard) Dashboard(ctx context.Context, limit int) (Dashboard, error) {
	var out Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Summary, err = d.client.Summary(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		out.Recent, err = d.client.RecentTransactions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	if limit >= 0 && len(out.Recent) > limit {
		out.Recent = out.Recent[:limit]
	}
	return out, nil
}
