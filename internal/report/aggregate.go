package report

import (
	"cmp"
	"slices"

	"fintrack/internal/core"
)

type (
	MonthBucket struct {
		Year  int
		Month int
		Total core.Money
	}

	CategoryBucket struct {
		Category string
		Total    core.Money
	}

	DayBucket struct {
		Day   core.Date
		Total core.Money
	}
)

// Amount lets the statistics work on any bucket kind.

func (b MonthBucket) Amount() core.Money { return b.Total }
func (b CategoryBucket) Amount() core.Money { return b.Total }
func (b DayBucket) Amount() core.Money { return b.Total }

type (
	monthKey struct{ year, month int }
	dayKey   struct{ year, month, day int }
)

// Monthly groups records by (year, month) of their date, ascending.
func Monthly(records []core.Transaction) []MonthBucket {
	totals := make(map[monthKey]core.Money)
	for _, r := range records {
		k := monthKey{r.Date.Year(), r.Date.Month()}
		totals[k] = totals[k].Add(r.Amount)
	}

	out := make([]MonthBucket, 0, len(totals))
	for k, v := range totals {
		out = append(out, MonthBucket{Year: k.year, Month: k.month, Total: v})
	}
	SortMonths(out)
	return out
}

// ByCategory groups records by category, largest total first.
// Equal totals are ordered by category name.
func ByCategory(records []core.Transaction) []CategoryBucket {
	totals := make(map[string]core.Money)
	for _, r := range records {
		totals[r.Category] = totals[r.Category].Add(r.Amount)
	}

	out := make([]CategoryBucket, 0, len(totals))
	for c, v := range totals {
		out = append(out, CategoryBucket{Category: c, Total: v})
	}
	SortCategories(out)
	return out
}

// DailyTrend groups records by calendar day, ascending.
func DailyTrend(records []core.Transaction) []DayBucket {
	totals := make(map[dayKey]core.Money)
	for _, r := range records {
		k := dayKey{r.Date.Year(), r.Date.Month(), r.Date.Day()}
		totals[k] = totals[k].Add(r.Amount)
	}

	out := make([]DayBucket, 0, len(totals))
	for k, v := range totals {
		out = append(out, DayBucket{Day: core.NewDate(k.year, k.month, k.day), Total: v})
	}
	SortDays(out)
	return out
}

func SortMonths(b []MonthBucket) {
	slices.SortFunc(b, func(x, y MonthBucket) int {
		if c := cmp.Compare(x.Year, y.Year); c != 0 {
			return c
		}
		return cmp.Compare(x.Month, y.Month)
	})
}

func SortCategories(b []CategoryBucket) {
	slices.SortFunc(b, func(x, y CategoryBucket) int {
		if c := y.Total.Compare(x.Total); c != 0 {
			return c
		}
		return cmp.Compare(x.Category, y.Category)
	})
}

func SortDays(b []DayBucket) {
	slices.SortFunc(b, func(x, y DayBucket) int {
		return x.Day.Compare(y.Day)
	})
}

// Total sums the amounts of records.
func Total(records []core.Transaction) core.Money {
	var sum core.Money
	for _, r := range records {
		sum = sum.Add(r.Amount)
	}
	return sum
}
