package report

import (
	"slices"

	"fintrack/internal/core"
)

// Cards are the summary tiles above the analytics charts.
type Cards struct {
	Total          core.Money
	MonthlyAverage core.Money
	TopCategory    string
	MonthsTracked  int
}

// NewCards derives the tiles from already aggregated buckets. The monthly
// average is guarded against an empty month list.
func NewCards(monthly []MonthBucket, categories []CategoryBucket) Cards {
	st := StatsOf(monthly)
	c := Cards{
		Total:          st.Sum,
		MonthlyAverage: st.Average,
		MonthsTracked:  st.Count,
	}
	if len(categories) > 0 {
		c.TopCategory = categories[0].Category
	}
	return c
}

// Years lists the distinct years present in monthly, ascending.
func Years(monthly []MonthBucket) []int {
	years := make([]int, 0)
	for _, b := range monthly {
		if !slices.Contains(years, b.Year) {
			years = append(years, b.Year)
		}
	}
	slices.Sort(years)
	return years
}

// MonthsOfYear keeps the buckets of one year. Year 0 means all years.
func MonthsOfYear(monthly []MonthBucket, year int) []MonthBucket {
	out := make([]MonthBucket, 0, len(monthly))
	for _, b := range monthly {
		if year == 0 || b.Year == year {
			out = append(out, b)
		}
	}
	return out
}

// Recent merges both record lists most-recent-first and keeps at most n.
// Records on the same day keep their cache order, expenses before incomes.
func Recent(expenses, incomes []core.Transaction, n int) []core.Transaction {
	all := make([]core.Transaction, 0, len(expenses)+len(incomes))
	all = append(all, expenses...)
	all = append(all, incomes...)
	slices.SortStableFunc(all, func(a, b core.Transaction) int {
		return b.Date.Compare(a.Date)
	})
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all
}
