package core

import "strings"

// Draft is the edit buffer behind the add and edit forms. Fields hold the
// text exactly as typed; nothing is parsed until Transaction is called.
type Draft struct {
	ID          string
	Type        string
	Amount      string
	Category    string
	Date        string
	Description string
}

// NewDraft returns an empty buffer for a new record dated today.
func NewDraft(t TransactionType, today Date) Draft {
	return Draft{Type: string(t), Date: today.String()}
}

// DraftFrom seeds the buffer from an existing record.
func DraftFrom(tx Transaction) Draft {
	return Draft{
		ID:          tx.ID,
		Type:        string(tx.Type),
		Amount:      tx.Amount.String(),
		Category:    tx.Category,
		Date:        tx.Date.String(),
		Description: tx.Description,
	}
}

// WithType switches the record type. The category is cleared when the
// type actually changes, since category sets differ per type.
func (d Draft) WithType(t string) Draft {
	if d.Type != t {
		d.Category = ""
	}
	d.Type = t
	return d
}

// Transaction parses and validates the buffer. On failure the returned
// error is ValidationErrors listing every bad field.
func (d Draft) Transaction(today Date) (Transaction, error) {
	var errs ValidationErrors

	typ, err := ParseTransactionType(d.Type)
	if err != nil {
		errs = errs.Add(FieldType, ErrInvalidType)
	}

	amount, err := ParseAmount(d.Amount)
	if err != nil {
		errs = errs.Add(FieldAmount, err)
	}

	date, err := ParseDate(d.Date)
	if err != nil {
		errs = errs.Add(FieldDate, err)
	}

	tx := Transaction{
		ID:          d.ID,
		Type:        typ,
		Amount:      amount,
		Category:    strings.TrimSpace(d.Category),
		Date:        date,
		Description: strings.TrimSpace(d.Description),
	}

	if verr := tx.Validate(today); verr != nil {
		for _, fe := range verr.(ValidationErrors) {
			if errs.Field(fe.Field) == "" {
				errs = append(errs, fe)
			}
		}
	}
	if len(errs) > 0 {
		return Transaction{}, errs
	}
	return tx, nil
}
