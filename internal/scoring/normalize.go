package scoring

import "sort"

// Normalizers map raw metrics onto a 0-10 scale. Missing inputs never
// fail: each normalizer has a documented default so partial records
// from any collector variant still score.

const (
	// neutralScore is the midpoint default used when a metric that is
	// normally present has no value (failed lookup, absent field).
	neutralScore = 5.0

	// neutralRating is the default for a missing 1-5 rating, the
	// midpoint of the rating scale.
	neutralRating = 3.0
)

// TravelTimeScore converts minutes to a 0-10 score. Five minutes is
// ~9.2, sixty minutes is 0. A nil duration scores the neutral midpoint.
func TravelTimeScore(minutes *int) float64 {
	if minutes == nil {
		return neutralScore
	}
	return clamp(0, 10, 10-float64(*minutes)/6)
}

// CountScore converts an amenity count to 0-10 against a per-metric
// ceiling. Zero or missing counts score 0: an absent amenity is a real
// absence of the amenity, not unknown data.
func CountScore(count int, maxExpected float64) float64 {
	if count <= 0 || maxExpected <= 0 {
		return 0
	}
	return clamp(0, 10, float64(count)/maxExpected*10)
}

// RatingScore maps a 1-5 rating onto 0-10 via (r-1)*2.5. A nil rating
// scores the midpoint 5.0.
func RatingScore(rating *float64) float64 {
	if rating == nil {
		return neutralScore
	}
	return clamp(0, 10, (*rating-1)*2.5)
}

// CountRatingScore blends quantity and quality: 60% normalized count
// plus 40% normalized rating.
func CountRatingScore(count int, rating *float64, maxExpected float64) float64 {
	return CountScore(count, maxExpected)*0.6 + RatingScore(rating)*0.4
}

// SubjectiveScore rescales a 1-5 rating linearly to 0-10 via (r/5)*10.
// A nil rating defaults to 3.0 on the 1-5 scale before rescaling, for
// every preset. With invert set, 1 means best (noise level, flooding
// risk) and the score is ((5-r)/5)*10.
func SubjectiveScore(rating *float64, invert bool) float64 {
	r := neutralRating
	if rating != nil {
		r = clamp(1, 5, *rating)
	}
	if invert {
		return (5 - r) / 5 * 10
	}
	return r / 5 * 10
}

// DerivedScore passes through a signal already on a 0-10 scale,
// clamped, with nil scoring the neutral midpoint.
func DerivedScore(v *float64) float64 {
	if v == nil {
		return neutralScore
	}
	return clamp(0, 10, *v)
}

// RangeScore normalizes a value linearly between min and max, clamped,
// scaled to 0-10. Nil scores the neutral midpoint. With invert set,
// smaller raw values score higher (travel times).
func RangeScore(v *float64, min, max float64, invert bool) float64 {
	if v == nil || max <= min {
		return neutralScore
	}
	n := clamp(0, 1, (*v-min)/(max-min))
	if invert {
		n = 1 - n
	}
	return n * 10
}

// PercentileScore scores a value by its rank within the population of
// all non-nil values for the same metric. A nil value, or an empty
// population, scores the neutral midpoint.
func PercentileScore(v *float64, population []float64) float64 {
	if v == nil || len(population) == 0 {
		return neutralScore
	}
	sorted := make([]float64, len(population))
	copy(sorted, population)
	sort.Float64s(sorted)

	rank := 0
	for _, p := range sorted {
		if p <= *v {
			rank++
		}
	}
	return float64(rank) / float64(len(sorted)) * 10
}

// CurvePoint is one breakpoint of a piecewise-linear value curve.
type CurvePoint struct {
	Value float64 `yaml:"value"`
	Score float64 `yaml:"score"` // 0-10
}

// BellCurveScore evaluates a piecewise-linear "sweet spot" curve:
// values near the configured midrange score high, extremes score low.
// Points must be sorted ascending by Value; the curve is flat beyond
// its endpoints. Nil scores the neutral midpoint.
func BellCurveScore(v *float64, curve []CurvePoint) float64 {
	if v == nil || len(curve) == 0 {
		return neutralScore
	}
	x := *v
	if x <= curve[0].Value {
		return clamp(0, 10, curve[0].Score)
	}
	last := curve[len(curve)-1]
	if x >= last.Value {
		return clamp(0, 10, last.Score)
	}
	for i := 1; i < len(curve); i++ {
		a, b := curve[i-1], curve[i]
		if x <= b.Value {
			t := (x - a.Value) / (b.Value - a.Value)
			return clamp(0, 10, a.Score+t*(b.Score-a.Score))
		}
	}
	return clamp(0, 10, last.Score)
}

func clamp(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
