package reportview

import (
	"slices"

	"fintrack/internal/core"
	"fintrack/internal/present"
	"fintrack/internal/report"
)

// Card is one summary tile, already formatted.
type Card struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// Page is everything the analytics template and the chart endpoint need.
type Page struct {
	Type     string        `json:"type"`
	State    string        `json:"state"`
	Error    string        `json:"error,omitempty"`
	Year     int           `json:"year"`
	Years    []int         `json:"years"`
	Cards    []Card        `json:"cards"`
	Monthly  present.Chart `json:"monthly"`
	Category present.Chart `json:"category"`
	Trend    present.Chart `json:"trend"`
	Rows     []Row         `json:"rows"`
}

// Row is a line of the raw monthly data table.
type Row struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

// Render formats a loaded view. Year narrows the monthly chart and table to
// one year; 0 or a year with no data shows every month. Cards always cover
// the full history.
func (v *View) Render(f *present.Formatter, year int) Page {
	p := Page{
		Type:  string(v.Type),
		State: v.State.String(),
		Error: v.Err,
	}
	if v.State != Success {
		return p
	}

	p.Years = report.Years(v.Monthly)
	if !slices.Contains(p.Years, year) {
		year = 0
	}
	p.Year = year

	cards := report.NewCards(v.Monthly, v.Categories)
	top := cards.TopCategory
	if top == "" {
		top = present.NotAvailable
	}
	p.Cards = []Card{
		{Title: "Total " + totalNoun(v), Value: f.Money(cards.Total)},
		{Title: "Monthly Average", Value: f.Money(cards.MonthlyAverage)},
		{Title: "Top Category", Value: top},
		{Title: "Months Tracked", Value: f.Number(cards.MonthsTracked)},
	}

	months := report.MonthsOfYear(v.Monthly, year)
	noun := v.Type.Label()
	p.Monthly = f.MonthlyChart("Monthly "+noun, months)
	p.Category = f.CategoryChart(noun+" by Category", v.Categories)
	p.Trend = f.TrendChart(noun+" Trend", v.Trend)

	p.Rows = make([]Row, 0, len(months))
	for _, pt := range p.Monthly.Points {
		p.Rows = append(p.Rows, Row{Label: pt.Label, Amount: pt.Display})
	}
	return p
}

func totalNoun(v *View) string {
	if v.Type == core.Income {
		return "Earnings"
	}
	return "Spending"
}
