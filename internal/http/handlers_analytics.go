package http

import (
	"errors"
	"net/http"

	"fintrack/internal/adapters"
	"fintrack/internal/api"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/reportview"
)

type analyticsPage struct {
	layout
	Type   core.TransactionType
	Types  []core.TransactionType
	Report reportview.Page
}

// loadReport runs one report view load. It returns false when the response
// has already been written.
func (s *Server) loadReport(w http.ResponseWriter, r *http.Request, t core.TransactionType) (*reportview.View, bool) {
	st := mustState(r)
	src, err := adapters.NewReportSource(s.reportSource, s.backend(st))
	if err != nil {
		s.writeError(w, r, err, "Reports are misconfigured")
		return nil, false
	}

	view := reportview.New(t).Load(r.Context(), src)
	if view.State == reportview.Failed {
		if errors.Is(view.Cause, api.ErrUnauthorized) {
			s.endSession(w, r)
			return nil, false
		}
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Report load failed",
			applog.FieldError, view.Cause,
			applog.FieldTxType, string(t),
			applog.FieldReportSource, s.reportSource)
	}
	return view, true
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	t, err := queryType(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	view, ok := s.loadReport(w, r, t)
	if !ok {
		return
	}

	page := analyticsPage{
		layout: s.layoutFor(r, t.Label()+" Analytics", "analytics"),
		Type:   t,
		Types:  core.TransactionTypes(),
		Report: view.Render(s.formatter, ParseYear(r.URL.Query())),
	}
	page.Error = page.Report.Error
	s.render(w, r, http.StatusOK, "analytics", page)
}

// handleReportData serves the chart datasets as JSON.
func (s *Server) handleReportData(w http.ResponseWriter, r *http.Request) {
	t, err := pathType(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	view, ok := s.loadReport(w, r, t)
	if !ok {
		return
	}

	status := http.StatusOK
	if view.State == reportview.Failed {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, view.Render(s.formatter, ParseYear(r.URL.Query())))
}

type summaryData struct {
	report.Summary
	Display map[string]string `json:"display"`
}

func (s *Server) handleSummaryData(w http.ResponseWriter, r *http.Request) {
	st := mustState(r)
	if err := st.EnsureLoaded(r.Context(), s.backend(st)); err != nil {
		s.writeError(w, r, err, "Failed to load summary data. Please try again.")
		return
	}
	sum := st.Summary()
	writeJSON(w, http.StatusOK, summaryData{
		Summary: sum,
		Display: map[string]string{
			"totalIncome":  s.formatter.Money(sum.TotalIncome),
			"totalExpense": s.formatter.Money(sum.TotalExpense),
			"balance":      s.formatter.Money(sum.Balance),
		},
	})
}
