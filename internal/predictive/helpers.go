package predictive

import (
	"math"
	"sort"
	"time"
)

type keyCount struct {
	Key   string
	Count int
}

// topN ranks counts descending, ties broken by key, and keeps at most n (all when n <= 0).
func topN(counts map[string]int, n int) []keyCount {
	ranked := make([]keyCount, 0, len(counts))
	for k, c := range counts {
		ranked = append(ranked, keyCount{Key: k, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Key < ranked[j].Key
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func topKeys(counts map[string]int, n int) []string {
	ranked := topN(counts, n)
	keys := make([]string, len(ranked))
	for i, kc := range ranked {
		keys[i] = kc.Key
	}
	return keys
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func addDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}
