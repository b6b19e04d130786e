package frontend_domain

import (
	"sort"

	"github.com/microsmart/portal/shared/domain"
)

// Series is the input shape of every dashboard chart: parallel label and
// value slices. The page embeds it as JSON for the chart script.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

func (s Series) Empty() bool { return len(s.Values) == 0 }

func (s *Series) add(label string, v float64) {
	s.Labels = append(s.Labels, label)
	s.Values = append(s.Values, v)
}

// StatusSeries orders statuses by lifecycle; statuses the portal does not
// know are appended alphabetically so nothing the backend reports is lost.
func StatusSeries(dist map[domain.LoanStatus]int) Series {
	var s Series
	for _, status := range domain.LoanStatuses {
		if n, ok := dist[status]; ok {
			s.add(string(status), float64(n))
		}
	}
	var extra []string
	for status := range dist {
		if !status.Valid() {
			extra = append(extra, string(status))
		}
	}
	sort.Strings(extra)
	for _, status := range extra {
		s.add(status, float64(dist[domain.LoanStatus(status)]))
	}
	return s
}

// AmountRangeSeries keeps the backend's bucket order.
func AmountRangeSeries(stats *domain.AmountStats) Series {
	var s Series
	if stats == nil {
		return s
	}
	for _, r := range stats.Ranges {
		s.add(r.Range, float64(r.Count))
	}
	return s
}

// MonthlyTrendSeries sorts by month (YYYY-MM sorts lexically).
func MonthlyTrendSeries(trend []domain.MonthCount) Series {
	sorted := append([]domain.MonthCount(nil), trend...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Month < sorted[j].Month })

	var s Series
	for _, m := range sorted {
		s.add(m.Month, float64(m.Count))
	}
	return s
}

// PaymentHistorySeries plots successful payments only, oldest first.
func PaymentHistorySeries(history []domain.PaymentPoint) Series {
	points := make([]domain.PaymentPoint, 0, len(history))
	for _, p := range history {
		if p.Status == "" || p.Status == domain.PaymentSuccessful {
			points = append(points, p)
		}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	var s Series
	for _, p := range points {
		s.add(p.Date, p.Amount)
	}
	return s
}

// FinancialSeries builds one series per metric type, in a fixed type order.
func FinancialSeries(metrics map[domain.MetricType][]domain.FinancialMetric) []NamedSeries {
	var out []NamedSeries
	for _, mt := range domain.MetricTypes {
		points, ok := metrics[mt]
		if !ok || len(points) == 0 {
			continue
		}
		var s Series
		for _, p := range points {
			s.add(p.Date, p.Value)
		}
		out = append(out, NamedSeries{Name: string(mt), Series: s})
	}
	return out
}

type NamedSeries struct {
	Name string `json:"name"`
	Series
}
