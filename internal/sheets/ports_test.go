package sheets

import (
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestEntryRow(t *testing.T) {
	e := Entry{
		RecordedAt:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600)),
		EventID:       "ev",
		Action:        "deleted",
		Type:          core.Income,
		TransactionID: "t9",
	}
	row := e.Row()
	if len(row) != Columns || len(Header()) != Columns {
		t.Fatalf("row and header must have %d columns", Columns)
	}
	if row[0] != "2024-03-01T09:00:00Z" {
		t.Errorf("timestamp should be UTC, got %v", row[0])
	}
	if row[5] != "" || row[7] != "" {
		t.Errorf("missing date and amount should render empty, got %v", row)
	}

	e.Amount = core.Cents(150050)
	e.Date = core.NewDate(2024, 2, 28)
	row = e.Row()
	if row[7] != "1500.50" || row[5] != "2024-02-28" {
		t.Errorf("unexpected row %v", row)
	}
}
