package core

import (
	"errors"
	"testing"
)

func TestDraftTransaction(t *testing.T) {
	today := NewDate(2024, 3, 10)
	d := Draft{
		ID:          "42",
		Type:        "expense",
		Amount:      "12,50",
		Category:    "Food",
		Date:        "2024-03-09",
		Description: "  lunch ",
	}
	tx, err := d.Transaction(today)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if tx.ID != "42" || tx.Type != Expense || tx.Amount.Cents != 1250 || tx.Description != "lunch" {
		t.Fatalf("unexpected transaction %+v", tx)
	}
	if !tx.Date.Equal(NewDate(2024, 3, 9)) {
		t.Fatalf("unexpected date %s", tx.Date)
	}
}

func TestDraftTransactionErrors(t *testing.T) {
	today := NewDate(2024, 3, 10)
	cases := []struct {
		name  string
		draft Draft
		field string
		want  error
		msg   string
	}{
		{"empty amount", Draft{Type: "expense", Category: "Food", Date: "2024-03-01"}, FieldAmount, ErrMissingAmount, "Amount is required"},
		{"zero amount", Draft{Type: "expense", Amount: "0", Category: "Food", Date: "2024-03-01"}, FieldAmount, ErrInvalidAmount, "Amount must be greater than zero"},
		{"no category", Draft{Type: "income", Amount: "5", Date: "2024-03-01"}, FieldCategory, ErrMissingCategory, "Category is required"},
		{"no date", Draft{Type: "income", Amount: "5", Category: "Gift"}, FieldDate, ErrMissingDate, "Date is required"},
		{"future date", Draft{Type: "income", Amount: "5", Category: "Gift", Date: "2024-03-11"}, FieldDate, ErrFutureDate, "Date cannot be in the future"},
		{"bad type", Draft{Type: "loan", Amount: "5", Category: "Gift", Date: "2024-03-01"}, FieldType, ErrInvalidType, "Invalid transaction type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.draft.Transaction(today)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			verrs, _ := AsValidation(err)
			if got := verrs.Field(tc.field); got != tc.msg {
				t.Fatalf("field %s: got %q, want %q", tc.field, got, tc.msg)
			}
		})
	}
}

func TestDraftWithTypeClearsCategory(t *testing.T) {
	d := Draft{Type: "expense", Category: "Food"}
	if got := d.WithType("expense"); got.Category != "Food" {
		t.Fatalf("same type must keep category, got %q", got.Category)
	}
	got := d.WithType("income")
	if got.Category != "" || got.Type != "income" {
		t.Fatalf("type change must reset category, got %+v", got)
	}
	if d.Category != "Food" {
		t.Fatalf("WithType must not mutate the receiver")
	}
}

func TestDraftFromRoundTrip(t *testing.T) {
	tx := Transaction{ID: "1", Type: Income, Amount: Cents(150050), Category: "Salary", Date: NewDate(2024, 1, 31)}
	back, err := DraftFrom(tx).Transaction(NewDate(2024, 2, 1))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if back.ID != tx.ID || back.Type != tx.Type || back.Amount != tx.Amount ||
		back.Category != tx.Category || !back.Date.Equal(tx.Date) {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, tx)
	}
}
