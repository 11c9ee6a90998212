package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseTransactionType(t *testing.T) {
	cases := []struct {
		in   string
		want TransactionType
		ok   bool
	}{
		{"expense", Expense, true},
		{"Expenses", Expense, true},
		{" income ", Income, true},
		{"incomes", Income, true},
		{"transfer", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseTransactionType(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidType) {
			t.Fatalf("%q expected ErrInvalidType, got %v", tc.in, err)
		}
	}
}

func TestValidCategory(t *testing.T) {
	if !Expense.ValidCategory("Food") {
		t.Fatalf("Food should be an expense category")
	}
	if Expense.ValidCategory("Salary") {
		t.Fatalf("Salary should not be an expense category")
	}
	if Expense.ValidCategory("food") {
		t.Fatalf("category match must be case-sensitive")
	}
	if !Income.ValidCategory("Others") || !Expense.ValidCategory("Others") {
		t.Fatalf("Others belongs to both sets")
	}

	cats := Expense.Categories()
	cats[0] = "Mutated"
	if Expense.Categories()[0] != "Food" {
		t.Fatalf("Categories must return a copy")
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -5}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	today := NewDate(2024, 3, 10)
	good := Transaction{
		Type:     Expense,
		Amount:   Money{Cents: 1050},
		Category: "Food",
		Date:     NewDate(2024, 3, 10),
	}
	if err := good.Validate(today); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name  string
		mut   func(*Transaction)
		field string
		want  error
	}{
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, FieldAmount, ErrInvalidAmount},
		{"missing category", func(tx *Transaction) { tx.Category = " " }, FieldCategory, ErrMissingCategory},
		{"category of other type", func(tx *Transaction) { tx.Category = "Salary" }, FieldCategory, ErrInvalidCategory},
		{"missing date", func(tx *Transaction) { tx.Date = Date{} }, FieldDate, ErrMissingDate},
		{"future date", func(tx *Transaction) { tx.Date = NewDate(2024, 3, 11) }, FieldDate, ErrFutureDate},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, FieldType, ErrInvalidType},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("x", MaxDescriptionLength+1) }, FieldDescription, ErrDescriptionTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mut(&tx)
			err := tx.Validate(today)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			verrs, ok := AsValidation(err)
			if !ok {
				t.Fatalf("expected ValidationErrors, got %T", err)
			}
			if verrs.Field(tc.field) == "" {
				t.Fatalf("expected message on field %q, got %v", tc.field, verrs.Messages())
			}
		})
	}
}

func TestTransactionValidateCollectsAllFields(t *testing.T) {
	err := Transaction{Type: Income}.Validate(NewDate(2024, 1, 1))
	verrs, ok := AsValidation(err)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	msgs := verrs.Messages()
	for _, f := range []string{FieldAmount, FieldCategory, FieldDate} {
		if msgs[f] == "" {
			t.Errorf("missing message for %s in %v", f, msgs)
		}
	}
	if msgs[FieldCategory] != "Category is required" {
		t.Errorf("unexpected category message %q", msgs[FieldCategory])
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		err  error
	}{
		{"2024-01-05", NewDate(2024, 1, 5), nil},
		{"2024-01-05T23:30:00-05:00", NewDate(2024, 1, 5), nil},
		{"2024-01-05T00:00:00.000Z", NewDate(2024, 1, 5), nil},
		{"", Date{}, ErrMissingDate},
		{"05/01/2024", Date{}, ErrInvalidDate},
		{"2024-02-30", Date{}, ErrInvalidDate},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("%q expected %v, got %v", tc.in, tc.err, err)
			}
			continue
		}
		if err != nil || !got.Equal(tc.want) {
			t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, got, err)
		}
	}
}

func TestTransactionJSON(t *testing.T) {
	tx := Transaction{
		ID:       "abc",
		Type:     Income,
		Amount:   Money{Cents: 150050},
		Category: "Salary",
		Date:     NewDate(2024, 2, 1),
	}
	b, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"abc","type":"income","amount":1500.5,"category":"Salary","date":"2024-02-01"}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}

	var back Transaction
	if err := json.Unmarshal([]byte(`{"id":"x","amount":"12.345","date":"2024-02-01T10:00:00Z"}`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Amount.Cents != 1235 || !back.Date.Equal(NewDate(2024, 2, 1)) {
		t.Fatalf("unexpected decode %+v", back)
	}
}
