package present

import (
	"fintrack/internal/core"
	"fintrack/internal/report"
)

// Point is one chart datum.
type Point struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// Highlights are the figures printed under a chart.
type Highlights struct {
	Highest      string `json:"highest"`
	HighestLabel string `json:"highestLabel"`
	Lowest       string `json:"lowest"`
	LowestLabel  string `json:"lowestLabel"`
	Average      string `json:"average"`
	Total        string `json:"total"`
}

// Chart is one dataset ready for the browser.
type Chart struct {
	Kind       string     `json:"kind"`
	Title      string     `json:"title"`
	Points     []Point    `json:"points"`
	Highlights Highlights `json:"highlights"`
	Empty      bool       `json:"empty"`
}

func (f *Formatter) point(label string, m core.Money) Point {
	return Point{Label: label, Value: m.Float64(), Display: f.Money(m)}
}

func (f *Formatter) MonthlyPoints(buckets []report.MonthBucket) []Point {
	out := make([]Point, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, f.point(MonthLabel(b.Year, b.Month), b.Total))
	}
	return out
}

func (f *Formatter) CategoryPoints(buckets []report.CategoryBucket) []Point {
	out := make([]Point, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, f.point(b.Category, b.Total))
	}
	return out
}

func (f *Formatter) TrendPoints(buckets []report.DayBucket) []Point {
	out := make([]Point, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, f.point(DayLabel(b.Day), b.Total))
	}
	return out
}

// HighlightsOf formats st. Every field reads NotAvailable when st has no data.
func HighlightsOf[B report.Bucket](f *Formatter, st report.Stats[B], label func(B) string) Highlights {
	if !st.HasData {
		return Highlights{
			Highest:      NotAvailable,
			HighestLabel: NotAvailable,
			Lowest:       NotAvailable,
			LowestLabel:  NotAvailable,
			Average:      NotAvailable,
			Total:        NotAvailable,
		}
	}
	return Highlights{
		Highest:      f.Money(st.Max.Amount()),
		HighestLabel: label(st.Max),
		Lowest:       f.Money(st.Min.Amount()),
		LowestLabel:  label(st.Min),
		Average:      f.Money(st.Average),
		Total:        f.Money(st.Sum),
	}
}

func monthBucketLabel(b report.MonthBucket) string { return MonthLabel(b.Year, b.Month) }
func categoryBucketLabel(b report.CategoryBucket) string { return b.Category }
func dayBucketLabel(b report.DayBucket) string { return DayLabel(b.Day) }

func (f *Formatter) MonthlyChart(title string, buckets []report.MonthBucket) Chart {
	return Chart{
		Kind:       "monthly",
		Title:      title,
		Points:     f.MonthlyPoints(buckets),
		Highlights: HighlightsOf(f, report.StatsOf(buckets), monthBucketLabel),
		Empty:      len(buckets) == 0,
	}
}

func (f *Formatter) CategoryChart(title string, buckets []report.CategoryBucket) Chart {
	return Chart{
		Kind:       "category",
		Title:      title,
		Points:     f.CategoryPoints(buckets),
		Highlights: HighlightsOf(f, report.StatsOf(buckets), categoryBucketLabel),
		Empty:      len(buckets) == 0,
	}
}

func (f *Formatter) TrendChart(title string, buckets []report.DayBucket) Chart {
	return Chart{
		Kind:       "trend",
		Title:      title,
		Points:     f.TrendPoints(buckets),
		Highlights: HighlightsOf(f, report.StatsOf(buckets), dayBucketLabel),
		Empty:      len(buckets) == 0,
	}
}
