package report

import "fintrack/internal/core"

// Summary is the dashboard headline. Balance may be negative.
type Summary struct {
	TotalIncome  core.Money `json:"totalIncome"`
	TotalExpense core.Money `json:"totalExpense"`
	Balance      core.Money `json:"balance"`
}

// Summarize derives the headline from the given record lists. Callers
// recompute it on every read; it is never stored.
func Summarize(expenses, incomes []core.Transaction) Summary {
	income := Total(incomes)
	expense := Total(expenses)
	return Summary{
		TotalIncome:  income,
		TotalExpense: expense,
		Balance:      income.Sub(expense),
	}
}
