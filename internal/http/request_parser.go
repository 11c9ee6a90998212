package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
)

// maxFormBytes caps urlencoded bodies.
const maxFormBytes = 64 << 10

// parseForm bounds the body and parses it.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	return r.ParseForm()
}

// formValue returns a trimmed, sanitized form or query value.
func formValue(form url.Values, key string) string {
	return sanitizeInput(form.Get(key))
}

// DraftFromForm copies the add/edit form fields into a Draft verbatim.
func DraftFromForm(form url.Values) core.Draft {
	return core.Draft{
		ID:          formValue(form, "id"),
		Type:        formValue(form, core.FieldType),
		Amount:      formValue(form, core.FieldAmount),
		Category:    formValue(form, core.FieldCategory),
		Date:        formValue(form, core.FieldDate),
		Description: formValue(form, core.FieldDescription),
	}
}

// ParseType reads a record type, defaulting to expense when absent.
func ParseType(raw string) (core.TransactionType, error) {
	if strings.TrimSpace(raw) == "" {
		return core.Expense, nil
	}
	return core.ParseTransactionType(raw)
}

// queryType parses the "type" query parameter.
func queryType(r *http.Request) (core.TransactionType, error) {
	return ParseType(r.URL.Query().Get("type"))
}

// pathType parses the {type} route parameter; both "expense" and "expenses" work.
func pathType(r *http.Request) (core.TransactionType, error) {
	return core.ParseTransactionType(chi.URLParam(r, "type"))
}

// ParseYear returns the "year" parameter, or 0 for all years.
func ParseYear(q url.Values) int {
	y, err := strconv.Atoi(strings.TrimSpace(q.Get("year")))
	if err != nil || y < 1900 || y > 9999 {
		return 0
	}
	return y
}

// sanitizeInput trims and drops control characters other than tab and newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
