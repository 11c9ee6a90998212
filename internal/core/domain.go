package core

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

// MaxDescriptionLength bounds the optional free-text note on a record.
const MaxDescriptionLength = 200

type (
	TransactionType string

	// Date is a calendar day with no time component, always stored at UTC midnight.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single income or expense entry as held by the backend.
	Transaction struct {
		ID          string          `json:"id" yaml:"id"`
		Type        TransactionType `json:"type" yaml:"type"`
		Amount      Money           `json:"amount" yaml:"amount"`
		Category    string          `json:"category" yaml:"category"`
		Date        Date            `json:"date" yaml:"date"`
		Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	}

	User struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
)

var (
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrMissingAmount      = errors.New("amount is required")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrMissingCategory    = errors.New("category is required")
	ErrInvalidCategory    = errors.New("category is not valid for this type")
	ErrMissingDate        = errors.New("date is required")
	ErrInvalidDate        = errors.New("date is not valid")
	ErrFutureDate         = errors.New("date cannot be in the future")
	ErrDescriptionTooLong = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
)

var (
	expenseCategories = []string{"Food", "Transport", "Entertainment", "Bills", "Health", "Shopping", "Others"}
	incomeCategories  = []string{"Salary", "Freelance", "Investment", "Refund", "Gift", "Others"}
)

// TransactionTypes lists the known types in display order.
func TransactionTypes() []TransactionType {
	return []TransactionType{Expense, Income}
}

// ParseTransactionType accepts the singular or plural form, case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expense", "expenses":
		return Expense, nil
	case "income", "incomes":
		return Income, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

func (t TransactionType) Valid() bool {
	return t == Expense || t == Income
}

func (t TransactionType) String() string {
	return string(t)
}

// Label is the capitalised singular form used in headings.
func (t TransactionType) Label() string {
	switch t {
	case Expense:
		return "Expense"
	case Income:
		return "Income"
	}
	return ""
}

// Plural is the collection name used in URLs ("expenses", "incomes").
func (t TransactionType) Plural() string {
	return string(t) + "s"
}

// Categories returns a copy of the fixed category set for the type.
func (t TransactionType) Categories() []string {
	switch t {
	case Expense:
		return slices.Clone(expenseCategories)
	case Income:
		return slices.Clone(incomeCategories)
	}
	return nil
}

// ValidCategory reports whether c belongs to the category set of t. Matching is case-sensitive.
func (t TransactionType) ValidCategory(c string) bool {
	switch t {
	case Expense:
		return slices.Contains(expenseCategories, c)
	case Income:
		return slices.Contains(incomeCategories, c)
	}
	return false
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf takes the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// Today returns the current local calendar day.
func Today() Date {
	return DateOf(time.Now())
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) After(o Date) bool {
	return d.Time.After(o.Time)
}

func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

func (d Date) Equal(o Date) bool {
	return d.Time.Equal(o.Time)
}

// Compare returns -1, 0 or +1 like time.Time.Compare.
func (d Date) Compare(o Date) int {
	return d.Time.Compare(o.Time)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks the record invariants against the given current day.
// All failing fields are reported at once as ValidationErrors.
func (tx Transaction) Validate(today Date) error {
	var errs ValidationErrors

	if !tx.Type.Valid() {
		errs = errs.Add(FieldType, ErrInvalidType)
	}
	if err := tx.Amount.Validate(); err != nil {
		errs = errs.Add(FieldAmount, err)
	}
	switch {
	case strings.TrimSpace(tx.Category) == "":
		errs = errs.Add(FieldCategory, ErrMissingCategory)
	case tx.Type.Valid() && !tx.Type.ValidCategory(tx.Category):
		errs = errs.Add(FieldCategory, ErrInvalidCategory)
	}
	switch {
	case tx.Date.IsZero():
		errs = errs.Add(FieldDate, ErrMissingDate)
	case tx.Date.After(today):
		errs = errs.Add(FieldDate, ErrFutureDate)
	}
	if len(tx.Description) > MaxDescriptionLength {
		errs = errs.Add(FieldDescription, ErrDescriptionTooLong)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
