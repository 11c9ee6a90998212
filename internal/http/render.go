package http

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/present"
	appweb "fintrack/web"
)

// Pages each define "content" on top of layout.html.
var pageNames = []string{
	"login", "register", "dashboard", "transactions", "edit", "analytics", "profile", "error",
}

type templates struct {
	pages    map[string]*template.Template
	partials *template.Template
}

func loadTemplates(f *present.Formatter) (*templates, error) {
	funcs := template.FuncMap{
		"money":    f.Money,
		"number":   f.Number,
		"dayLabel": present.DayLabel,
		"title":    func(t core.TransactionType) string { return t.Label() },
		"plural":   func(t core.TransactionType) string { return t.Label() + "s" },
		"lower":    strings.ToLower,
	}

	base, err := template.New("layout.html").Funcs(funcs).
		ParseFS(appweb.TemplatesFS, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, err
	}

	t := &templates{pages: make(map[string]*template.Template, len(pageNames)), partials: base}
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		page, err := clone.ParseFS(appweb.TemplatesFS, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("page %s: %w", name, err)
		}
		t.pages[name] = page
	}
	return t, nil
}

// layout is embedded by every page's view model.
type layout struct {
	Title    string
	Active   string
	User     core.User
	LoggedIn bool
	Flash    string
	Error    string
}

func (s *Server) layoutFor(r *http.Request, title, active string) layout {
	l := layout{Title: title, Active: active}
	if st, ok := stateFrom(r.Context()); ok {
		l.User = st.User()
		l.LoggedIn = true
	}
	return l
}

// render executes a full page into a buffer first so a template failure
// turns into a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	t, ok := s.templates.pages[page]
	if !ok {
		s.templateFailure(w, r, page, fmt.Errorf("unknown page %q", page))
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.templateFailure(w, r, page, err)
		return
	}
	writeHTML(w, status, buf.Bytes())
}

// renderPartial executes one named block from partials.html.
func (s *Server) renderPartial(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	body, err := s.partial(name, data)
	if err != nil {
		s.templateFailure(w, r, name, err)
		return
	}
	writeHTML(w, status, body)
}

func (s *Server) partial(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.partials.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) templateFailure(w http.ResponseWriter, r *http.Request, name string, err error) {
	applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
		applog.FieldError, err,
		"template", name,
		applog.FieldComponent, applog.ComponentTemplate)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
