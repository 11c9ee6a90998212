package api

import (
	"context"
	"fmt"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

// Summary returns the backend's own totals.
func (c *Client) Summary(ctx context.Context) (report.Summary, error) {
	var s report.Summary
	if err := c.do(ctx, http.MethodGet, "/summary", nil, &s); err != nil {
		return report.Summary{}, fmt.Errorf("summary: %w", err)
	}
	return s, nil
}

// RecentTransactions returns the backend's recent list. Rows without a
// recognisable type are dropped.
func (c *Client) RecentTransactions(ctx context.Context) ([]core.Transaction, error) {
	var rows []record
	if err := c.do(ctx, http.MethodGet, "/summary/recent-transactions", nil, &rows); err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, r := range rows {
		tx := r.transaction("")
		if tx.Type.Valid() {
			out = append(out, tx)
		}
	}
	return out, nil
}
