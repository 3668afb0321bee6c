package scoring

import (
	"errors"
	"sort"
)

// ErrNothingToClassify is returned when no category is scorable.
var ErrNothingToClassify = errors.New("no scorable categories to classify")

// gapEpsilon absorbs float noise when comparing against the secondary gap.
const gapEpsilon = 1e-9

// Classification is the dominant category and, when close enough, the
// runner-up. Secondary is empty when absent.
type Classification struct {
	Primary   string
	Secondary string
}

// Classify ranks scorable categories by normalized score, breaking ties by
// the lexicographically smallest category id. The runner-up is reported as
// secondary only when it lies within gap points of the primary.
func Classify(scores Scores, gap float64) (Classification, error) {
	ranked := make([]CategoryScore, 0, len(scores))
	for _, cs := range scores {
		if cs.Scorable {
			ranked = append(ranked, cs)
		}
	}
	if len(ranked) == 0 {
		return Classification{}, ErrNothingToClassify
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Normalized != ranked[j].Normalized {
			return ranked[i].Normalized > ranked[j].Normalized
		}
		return ranked[i].Category < ranked[j].Category
	})

	c := Classification{Primary: ranked[0].Category}
	if len(ranked) > 1 && ranked[0].Normalized-ranked[1].Normalized <= gap+gapEpsilon {
		c.Secondary = ranked[1].Category
	}
	return c, nil
}
