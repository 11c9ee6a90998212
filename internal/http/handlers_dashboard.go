package http

import (
	"net/http"

	"fintrack/internal/adapters"
	"fintrack/internal/core"
	"fintrack/internal/reportview"
)

type dashboardPage struct {
	layout
	Cards    []reportview.Card
	Negative bool
	Recent   []core.Transaction
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	st := mustState(r)
	src, err := adapters.NewDashboardSource(s.reportSource, s.backend(st), st)
	if err != nil {
		s.writeError(w, r, err, "Dashboard is misconfigured")
		return
	}
	d, err := src.Dashboard(r.Context(), s.recentLimit)
	if err != nil {
		s.writeError(w, r, err, "Failed to load dashboard data. Please try again.")
		return
	}

	s.render(w, r, http.StatusOK, "dashboard", dashboardPage{
		layout: s.layoutFor(r, "Dashboard", "dashboard"),
		Cards: []reportview.Card{
			{Title: "Total Income", Value: s.formatter.Money(d.Summary.TotalIncome)},
			{Title: "Total Expenses", Value: s.formatter.Money(d.Summary.TotalExpense)},
			{Title: "Balance", Value: s.formatter.Money(d.Summary.Balance)},
		},
		Negative: d.Summary.Balance.Cents < 0,
		Recent:   d.Recent,
	})
}
