package http

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/api"
	"fintrack/internal/core"
	"fintrack/internal/export"
	applog "fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/session"
)

// listTarget is the element id htmx swaps when a list refreshes.
const listTarget = "transaction-list"

type (
	transactionsPage struct {
		layout
		Type       core.TransactionType
		Types      []core.TransactionType
		Categories []string
		Filter     report.Filter
		ListURL    string
		ExportURL  string
		Records    []core.Transaction
		Count      int
		Total      string
		Form       txForm
	}

	// txForm drives the add and edit forms.
	txForm struct {
		Draft      core.Draft
		Types      []core.TransactionType
		Categories []string
		Errors     map[string]string
		Action     string
		Editing    bool
		MaxDate    string
	}

	editPage struct {
		layout
		Type core.TransactionType
		Form txForm
	}
)

func listURL(t core.TransactionType) string {
	return "/transactions?type=" + string(t)
}

func recordURL(t core.TransactionType, id string) string {
	return "/transactions/" + string(t) + "/" + url.PathEscape(id)
}

func (s *Server) today() core.Date {
	return core.DateOf(s.now())
}

// newForm builds the form model. The category list follows the draft's type
// and falls back to expense categories while the type is unparseable.
func (s *Server) newForm(d core.Draft, errs map[string]string) txForm {
	t, err := core.ParseTransactionType(d.Type)
	if err != nil {
		t = core.Expense
	}
	return txForm{
		Draft:      d,
		Types:      core.TransactionTypes(),
		Categories: t.Categories(),
		Errors:     errs,
		Action:     "/transactions",
		MaxDate:    s.today().String(),
	}
}

func (s *Server) editForm(t core.TransactionType, d core.Draft, errs map[string]string) txForm {
	f := s.newForm(d, errs)
	f.Categories = t.Categories()
	f.Action = recordURL(t, d.ID)
	f.Editing = true
	return f
}

func (s *Server) listPage(r *http.Request, st *session.State, t core.TransactionType, f report.Filter, form txForm) transactionsPage {
	records := report.Apply(st.Records(t), f)
	q := f.Query()
	q.Set("type", string(t))
	return transactionsPage{
		layout:     s.layoutFor(r, t.Label()+"s", "transactions"),
		Type:       t,
		Types:      core.TransactionTypes(),
		Categories: t.Categories(),
		Filter:     f,
		ListURL:    "/transactions?" + q.Encode(),
		ExportURL:  "/transactions/export?" + q.Encode(),
		Records:    records,
		Count:      len(records),
		Total:      s.formatter.Money(report.Total(records)),
		Form:       form,
	}
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	st := mustState(r)
	t, err := queryType(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	if err := st.EnsureLoaded(r.Context(), s.backend(st)); err != nil {
		s.writeError(w, r, err, "Failed to load transactions. Please try again.")
		return
	}

	page := s.listPage(r, st, t, report.ParseFilter(r.URL.Query()), s.newForm(core.NewDraft(t, s.today()), nil))
	if isHTMX(r) && r.Header.Get("HX-Target") == listTarget {
		s.renderPartial(w, r, http.StatusOK, "transaction_list", page)
		return
	}
	s.render(w, r, http.StatusOK, "transactions", page)
}

// handleTransactionForm re-renders the add form after the type select
// changes. The previous type arrives as prev_type so a real switch can
// clear the category.
func (s *Server) handleTransactionForm(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d := DraftFromForm(q)
	next, err := core.ParseTransactionType(d.Type)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	d.Type = formValue(q, "prev_type")
	d = d.WithType(string(next))
	s.renderPartial(w, r, http.StatusOK, "transaction_form", s.newForm(d, nil))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	st := mustState(r)
	if err := parseForm(w, r); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid request")
		return
	}
	d := DraftFromForm(r.PostForm)

	created, err := s.tx.Create(r.Context(), s.backend(st), st, d)
	if verrs, ok := core.AsValidation(err); ok {
		form := s.newForm(d, verrs.Messages())
		if isHTMX(r) {
			s.renderPartial(w, r, http.StatusUnprocessableEntity, "transaction_form", form)
			return
		}
		t, perr := core.ParseTransactionType(d.Type)
		if perr != nil {
			t = core.Expense
		}
		s.render(w, r, http.StatusUnprocessableEntity, "transactions", s.listPage(r, st, t, report.Filter{}, form))
		return
	}
	if err != nil {
		s.writeError(w, r, err, "Failed to save the transaction. Please try again.")
		return
	}

	if !isHTMX(r) {
		http.Redirect(w, r, listURL(created.Type), http.StatusSeeOther)
		return
	}
	body, err := s.partial("transaction_form", s.newForm(core.NewDraft(created.Type, s.today()), nil))
	if err != nil {
		s.templateFailure(w, r, "transaction_form", err)
		return
	}
	NewHTMXResponse().
		TriggerTransaction("created", created.Type, created.ID).
		TriggerFormReset().
		TriggerSuccessNotification(created.Type.Label() + " added").
		BodyHTML(string(body)).
		Write(w)
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	st := mustState(r)
	t, err := pathType(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	if err := st.EnsureLoaded(r.Context(), s.backend(st)); err != nil {
		s.writeError(w, r, err, "Failed to load transactions. Please try again.")
		return
	}
	tx, ok := st.Find(t, chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, r, api.ErrNotFound, "")
		return
	}
	s.render(w, r, http.StatusOK, "edit", editPage{
		layout: s.layoutFor(r, "Edit "+t.Label(), "transactions"),
		Type:   t,
		Form:   s.editForm(t, core.DraftFrom(tx), nil),
	})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	st := mustState(r)
	t, err := pathType(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	if err := parseForm(w, r); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid request")
		return
	}
	d := DraftFromForm(r.PostForm)
	d.ID = chi.URLParam(r, "id")
	d.Type = string(t)

	_, err = s.tx.Update(r.Context(), s.backend(st), st, t, d)
	if verrs, ok := core.AsValidation(err); ok {
		s.render(w, r, http.StatusUnprocessableEntity, "edit", editPage{
			layout: s.layoutFor(r, "Edit "+t.Label(), "transactions"),
			Type:   t,
			Form:   s.editForm(t, d, verrs.Messages()),
		})
		return
	}
	if err != nil {
		s.writeError(w, r, err, "Failed to update the transaction. Please try again.")
		return
	}
	s.redirect(w, r, listURL(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	st := mustState(r)
	t, err := pathType(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.tx.Delete(r.Context(), s.backend(st), st, t, id); err != nil {
		s.writeError(w, r, err, "Failed to delete the transaction. Please try again.")
		return
	}

	if !isHTMX(r) {
		http.Redirect(w, r, listURL(t), http.StatusSeeOther)
		return
	}
	// Empty body: the row swaps itself out.
	NewHTMXResponse().
		TriggerTransaction("deleted", t, id).
		TriggerSuccessNotification(t.Label() + " deleted").
		Write(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	st := mustState(r)
	q := r.URL.Query()
	t, err := queryType(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	if err := st.EnsureLoaded(r.Context(), s.backend(st)); err != nil {
		s.writeError(w, r, err, "Failed to load transactions. Please try again.")
		return
	}

	records := report.Apply(st.Records(t), report.ParseFilter(q))
	body, err := export.Encode(format, records)
	if err != nil {
		s.writeError(w, r, err, "Export failed")
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transactions exported",
		applog.FieldComponent, applog.ComponentExport,
		applog.FieldOperation, applog.OpExport,
		applog.FieldTxType, string(t),
		"format", string(format),
		applog.FieldRecordCount, len(records))

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(t, format)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
