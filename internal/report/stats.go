package report

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Bucket is any aggregate with a summed amount.
type Bucket interface {
	Amount() core.Money
}

// Stats are the derived figures shown next to a chart.
type Stats[B Bucket] struct {
	Sum     core.Money
	Count   int
	Average core.Money
	Max     B
	Min     B
	HasData bool
}

// StatsOf walks buckets in their display order. Max and Min keep the first
// bucket reaching the extreme, so ties resolve to the earliest key.
// Average is Sum/Count rounded half-up to cents, and zero for no buckets.
func StatsOf[B Bucket](buckets []B) Stats[B] {
	var s Stats[B]
	if len(buckets) == 0 {
		return s
	}

	s.HasData = true
	s.Count = len(buckets)
	s.Max, s.Min = buckets[0], buckets[0]
	for _, b := range buckets {
		a := b.Amount()
		s.Sum = s.Sum.Add(a)
		if a.Compare(s.Max.Amount()) > 0 {
			s.Max = b
		}
		if a.Compare(s.Min.Amount()) < 0 {
			s.Min = b
		}
	}

	avg := s.Sum.Decimal().DivRound(decimal.NewFromInt(int64(s.Count)), 2)
	s.Average, _ = core.MoneyFromDecimal(avg)
	return s
}
