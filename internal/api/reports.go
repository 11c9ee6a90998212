package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

// Pre-aggregated report rows. Expense rows carry "totalSpent", income rows
// "totalEarned"; both are read so one decoder serves either report.
type (
	reportTotal struct {
		Spent  *core.Money `json:"totalSpent"`
		Earned *core.Money `json:"totalEarned"`
		Total  *core.Money `json:"total"`
	}

	monthRow struct {
		ID struct {
			Year  int `json:"year"`
			Month int `json:"month"`
		} `json:"_id"`
		reportTotal
	}

	categoryRow struct {
		ID       json.RawMessage `json:"_id"`
		Category string          `json:"category"`
		reportTotal
	}

	dayRow struct {
		ID   json.RawMessage `json:"_id"`
		Date string          `json:"date"`
		reportTotal
	}
)

func (t reportTotal) value() core.Money {
	for _, m := range []*core.Money{t.Spent, t.Earned, t.Total} {
		if m != nil {
			return *m
		}
	}
	return core.Money{}
}

// key returns the grouping key whether the backend sent it as "_id", as
// "_id.category" / "_id.date", or under its own name.
func key(id json.RawMessage, named string) string {
	if named != "" {
		return named
	}
	var s string
	if err := json.Unmarshal(id, &s); err == nil {
		return s
	}
	var obj struct {
		Category string `json:"category"`
		Date     string `json:"date"`
	}
	if err := json.Unmarshal(id, &obj); err == nil {
		if obj.Category != "" {
			return obj.Category
		}
		return obj.Date
	}
	return ""
}

func reportPath(t core.TransactionType, kind string) (string, error) {
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidType, t)
	}
	return "/" + string(t) + "-report/" + kind, nil
}

// MonthlyReport returns the backend's monthly totals, unsorted.
func (c *Client) MonthlyReport(ctx context.Context, t core.TransactionType) ([]report.MonthBucket, error) {
	path, err := reportPath(t, "monthly")
	if err != nil {
		return nil, err
	}
	var rows []monthRow
	if err := c.do(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return nil, fmt.Errorf("monthly %s report: %w", t, err)
	}
	out := make([]report.MonthBucket, 0, len(rows))
	for _, r := range rows {
		out = append(out, report.MonthBucket{Year: r.ID.Year, Month: r.ID.Month, Total: r.value()})
	}
	return out, nil
}

// CategoryReport returns the backend's per-category totals, unsorted.
func (c *Client) CategoryReport(ctx context.Context, t core.TransactionType) ([]report.CategoryBucket, error) {
	path, err := reportPath(t, "category")
	if err != nil {
		return nil, err
	}
	var rows []categoryRow
	if err := c.do(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return nil, fmt.Errorf("category %s report: %w", t, err)
	}
	out := make([]report.CategoryBucket, 0, len(rows))
	for _, r := range rows {
		out = append(out, report.CategoryBucket{Category: key(r.ID, r.Category), Total: r.value()})
	}
	return out, nil
}

// TrendReport returns the backend's per-day totals, unsorted.
func (c *Client) TrendReport(ctx context.Context, t core.TransactionType) ([]report.DayBucket, error) {
	path, err := reportPath(t, "trends")
	if err != nil {
		return nil, err
	}
	var rows []dayRow
	if err := c.do(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return nil, fmt.Errorf("trend %s report: %w", t, err)
	}
	out := make([]report.DayBucket, 0, len(rows))
	for _, r := range rows {
		day, err := core.ParseDate(key(r.ID, r.Date))
		if err != nil {
			return nil, fmt.Errorf("trend %s report: bad day %q: %w", t, key(r.ID, r.Date), err)
		}
		out = append(out, report.DayBucket{Day: day, Total: r.value()})
	}
	return out, nil
}
