package features

import (
	"sort"

	"edgarcli/pkg/contracts/domain"
)

// FillBenchmarkDaily resamples the benchmark series onto a full daily
// calendar between its first and last observation, carrying the last
// close over weekends and holidays. The input is not mutated.
func FillBenchmarkDaily(bars []domain.BenchmarkBar) []domain.BenchmarkBar {
	if len(bars) == 0 {
		return nil
	}

	sorted := make([]domain.BenchmarkBar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	observed := make(map[string]float64, len(sorted))
	for _, bar := range sorted {
		observed[dateKey(bar.Date)] = bar.Close
	}

	var filled []domain.BenchmarkBar
	last := sorted[0].Close
	end := sorted[len(sorted)-1].Date

	for d := sorted[0].Date; !d.After(end); d = d.AddDate(0, 0, 1) {
		if close, ok := observed[dateKey(d)]; ok {
			last = close
		}
		filled = append(filled, domain.BenchmarkBar{Date: d, Close: last})
	}

	return filled
}

// benchmarkIndex builds a date-keyed lookup over a benchmark series.
func benchmarkIndex(bars []domain.BenchmarkBar) map[string]float64 {
	index := make(map[string]float64, len(bars))
	for _, bar := range bars {
		index[dateKey(bar.Date)] = bar.Close
	}
	return index
}
