package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	ports "fintrack/internal/sheets"
)

type fakeSheets struct {
	mu       sync.Mutex
	header   [][]any
	appended [][]any
	updates  int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("valueInputOption") != "USER_ENTERED" || r.URL.Query().Get("insertDataOption") != "INSERT_ROWS" {
			http.Error(w, "bad options", http.StatusBadRequest)
			return
		}
		f.appended = append(f.appended, vr.Values...)
		row := len(f.appended) + 1
		_ = json.NewEncoder(w).Encode(map[string]any{
			"spreadsheetId": "sheet-1",
			"updates": map[string]any{
				"updatedRange": "Ledger!A" + strconv.Itoa(row) + ":J" + strconv.Itoa(row),
				"updatedRows":  1,
			},
		})
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"range": "Ledger!A1:J1", "values": f.header})
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		var vr gsheet.ValueRange
		_ = json.Unmarshal(body, &vr)
		f.header = vr.Values
		f.updates++
		_ = json.NewEncoder(w).Encode(map[string]any{"updatedRows": 1})
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeSheets) {
	t.Helper()
	fs := &fakeSheets{}
	srv := httptest.NewServer(fs)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return newWithService(svc, Config{SpreadsheetID: "sheet-1"}, applog.Discard()), fs
}

func TestAppendEntry(t *testing.T) {
	c, fs := newTestClient(t)
	e := ports.Entry{
		RecordedAt:    time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		EventID:       "ev-1",
		Action:        "created",
		Type:          core.Expense,
		TransactionID: "t1",
		Date:          core.NewDate(2024, 3, 1),
		Category:      "Food",
		Amount:        core.Cents(1250),
		Description:   "lunch",
		UserID:        "u1",
	}

	ref, err := c.AppendEntry(context.Background(), e)
	if err != nil {
		t.Fatalf("AppendEntry: %v", err)
	}
	if ref != "Ledger!A2:J2" {
		t.Errorf("unexpected ref %q", ref)
	}
	if len(fs.appended) != 1 || len(fs.appended[0]) != ports.Columns {
		t.Fatalf("unexpected rows %v", fs.appended)
	}
	row := fs.appended[0]
	if row[0] != "2024-03-01T09:30:00Z" || row[5] != "2024-03-01" || row[7] != "12.50" {
		t.Errorf("unexpected row %v", row)
	}
}

func TestEnsureHeader(t *testing.T) {
	c, fs := newTestClient(t)

	if err := c.EnsureHeader(context.Background()); err != nil {
		t.Fatalf("EnsureHeader: %v", err)
	}
	if fs.updates != 1 || len(fs.header) != 1 || fs.header[0][0] != "Recorded At" {
		t.Fatalf("header not written: %v", fs.header)
	}

	if err := c.EnsureHeader(context.Background()); err != nil {
		t.Fatalf("EnsureHeader again: %v", err)
	}
	if fs.updates != 1 {
		t.Fatalf("header should be written once, got %d writes", fs.updates)
	}
}

func TestNilServiceFails(t *testing.T) {
	c := &Client{spreadsheetID: "x", ledgerSheet: "Ledger", logger: applog.Discard()}
	if _, err := c.AppendEntry(context.Background(), ports.Entry{}); err == nil {
		t.Fatal("expected error without a service")
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{}, nil)
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServiceAccountCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	if _, err := serviceAccountCredentials(Config{}); err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}

	got, err := serviceAccountCredentials(Config{CredentialsJSON: ` {"type":"service_account"} `})
	if err != nil || string(got) != `{"type":"service_account"}` {
		t.Fatalf("inline JSON: %q %v", got, err)
	}

	file := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(file, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err = serviceAccountCredentials(Config{CredentialsFile: file})
	if err != nil || string(got) != `{"from":"file"}` {
		t.Fatalf("file: %q %v", got, err)
	}

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", file)
	if got, err := serviceAccountCredentials(Config{}); err != nil || string(got) != `{"from":"file"}` {
		t.Fatalf("ADC fallback: %q %v", got, err)
	}

	if _, err := serviceAccountCredentials(Config{CredentialsFile: "/non/existent.json"}); err == nil {
		t.Fatal("expected read error")
	}
}
