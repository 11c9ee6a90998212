package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"fintrack/internal/core"
)

// record is the backend's JSON shape for one transaction. The backend
// names the key "_id"; "id" is accepted as well.
type record struct {
	MongoID     string     `json:"_id,omitempty"`
	ID          string     `json:"id,omitempty"`
	Type        string     `json:"type,omitempty"`
	Amount      core.Money `json:"amount"`
	Category    string     `json:"category"`
	Date        core.Date  `json:"date"`
	Description string     `json:"description"`
}

// recordInput is the create/update payload: the record minus id and type.
type recordInput struct {
	Amount      core.Money `json:"amount"`
	Category    string     `json:"category"`
	Date        core.Date  `json:"date"`
	Description string     `json:"description"`
}

func (r record) transaction(fallback core.TransactionType) core.Transaction {
	id := r.MongoID
	if id == "" {
		id = r.ID
	}
	typ := fallback
	if t, err := core.ParseTransactionType(r.Type); err == nil {
		typ = t
	}
	return core.Transaction{
		ID:          id,
		Type:        typ,
		Amount:      r.Amount,
		Category:    r.Category,
		Date:        r.Date,
		Description: r.Description,
	}
}

func inputOf(tx core.Transaction) recordInput {
	return recordInput{
		Amount:      tx.Amount,
		Category:    tx.Category,
		Date:        tx.Date,
		Description: tx.Description,
	}
}

func collection(t core.TransactionType) (string, error) {
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidType, t)
	}
	return "/" + t.Plural(), nil
}

// ListTransactions returns every record of type t, in the backend's order.
func (c *Client) ListTransactions(ctx context.Context, t core.TransactionType) ([]core.Transaction, error) {
	path, err := collection(t)
	if err != nil {
		return nil, err
	}
	var rows []record
	if err := c.do(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return nil, fmt.Errorf("list %s: %w", t.Plural(), err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.transaction(t))
	}
	return out, nil
}

// CreateTransaction posts tx and returns the server's representation, id included.
func (c *Client) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	path, err := collection(tx.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	var created record
	if err := c.do(ctx, http.MethodPost, path, inputOf(tx), &created); err != nil {
		return core.Transaction{}, fmt.Errorf("create %s: %w", tx.Type, err)
	}
	return created.transaction(tx.Type), nil
}

// UpdateTransaction replaces the editable fields of tx.ID.
func (c *Client) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	path, err := collection(tx.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	if tx.ID == "" {
		return core.Transaction{}, fmt.Errorf("update %s: missing id", tx.Type)
	}
	var updated record
	if err := c.do(ctx, http.MethodPut, path+"/"+url.PathEscape(tx.ID), inputOf(tx), &updated); err != nil {
		return core.Transaction{}, fmt.Errorf("update %s %s: %w", tx.Type, tx.ID, err)
	}
	res := updated.transaction(tx.Type)
	if res.ID == "" {
		res.ID = tx.ID
	}
	return res, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, t core.TransactionType, id string) error {
	path, err := collection(t)
	if err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodDelete, path+"/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete %s %s: %w", t, id, err)
	}
	return nil
}
