package stats

import (
	"sort"

	"github.com/verte-zerg/qwerty/internal/model"
)

// SelectWeakWords returns up to top mistyped words, highest error rate
// first. A non-positive top keeps every mistyped word.
func SelectWeakWords(aggs []model.WordAggregate, top int) []model.WordAggregate {
	candidates := make([]model.WordAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Wrong > 0 {
			candidates = append(candidates, agg)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ri := errorRate(candidates[i])
		rj := errorRate(candidates[j])
		if ri == rj {
			return candidates[i].Word < candidates[j].Word
		}
		return ri > rj
	})
	if top > 0 && top < len(candidates) {
		candidates = candidates[:top]
	}
	return candidates
}

func errorRate(agg model.WordAggregate) float64 {
	if agg.Attempts <= 0 {
		return float64(agg.Wrong)
	}
	return float64(agg.Wrong) / float64(agg.Attempts)
}
