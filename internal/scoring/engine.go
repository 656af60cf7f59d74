// Package scoring reduces heterogeneous per-locality metrics to 0-10
// category scores and a weighted overall score, then ranks localities.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/kerala-atlas/locality-cli/internal/model"
)

// Population holds the cross-locality value lists needed by
// population-relative normalizers. Percentiles require the full batch,
// so scoring is batch-oriented rather than streaming.
type Population struct {
	prices map[string][]float64
}

// PriceValues returns all non-nil values collected for a price field.
func (p Population) PriceValues(field string) []float64 {
	if p.prices == nil {
		return nil
	}
	return p.prices[field]
}

// Engine scores localities against a single preset.
type Engine struct {
	preset Preset
}

// New validates the preset and returns an engine for it.
func New(preset Preset) (*Engine, error) {
	if err := preset.Validate(); err != nil {
		return nil, err
	}
	return &Engine{preset: preset}, nil
}

// Preset returns the engine's weighting scheme.
func (e *Engine) Preset() Preset { return e.preset }

// BuildPopulation collects the price populations from the records that
// will actually be scored. Records without a value for a field are
// excluded from that field's population.
func (e *Engine) BuildPopulation(localities []model.LocalityRecord) Population {
	pop := Population{prices: make(map[string][]float64)}
	for i := range localities {
		if v := localities[i].Price.LandPerCent; v != nil {
			pop.prices[PriceLandPerCent] = append(pop.prices[PriceLandPerCent], *v)
		}
		if v := localities[i].Price.ApartmentSqft; v != nil {
			pop.prices[PriceApartmentSqft] = append(pop.prices[PriceApartmentSqft], *v)
		}
	}
	return pop
}

// Score computes category sub-scores and the weighted overall score for
// one locality against the given population. Sums run at full precision;
// the reported overall is rounded to 2 decimals and each category to 1,
// so rounding error never compounds through the aggregation.
func (e *Engine) Score(rec *model.LocalityRecord, pop Population) model.RankedLocality {
	breakdown := make(map[string]float64, len(e.preset.Categories))
	var overall float64

	for _, cat := range e.preset.Categories {
		var catScore float64
		for _, m := range cat.Metrics {
			catScore += e.metricScore(rec, m.Source, pop) * m.Weight
		}
		overall += catScore * cat.Weight
		breakdown[cat.Name] = round1(catScore)
	}

	return model.RankedLocality{
		Name:         rec.Name,
		OverallScore: round2(overall),
		Breakdown:    breakdown,
	}
}

// Rank scores every successful record against the batch population,
// sorts descending by overall score, and assigns 1-based ranks in sort
// position. The sort is stable, so equal scores keep input order. A bad
// record is isolated with a diagnostic; it never aborts the batch.
func (e *Engine) Rank(localities []model.LocalityRecord) (*model.Report, error) {
	log := zap.L().Named("scoring").With(zap.String("preset", e.preset.Name))

	var scorable []model.LocalityRecord
	var warnings []string
	for i := range localities {
		rec := localities[i]
		if rec.Name == "" {
			warnings = append(warnings, fmt.Sprintf("record %d rejected: missing name", i))
			log.Warn("malformed record rejected", zap.Int("index", i))
			continue
		}
		if rec.Status != model.StatusSuccess {
			warnings = append(warnings, fmt.Sprintf("%s excluded: status=%s", rec.Name, rec.Status))
			continue
		}
		scorable = append(scorable, rec)
	}

	pop := e.BuildPopulation(scorable)

	ranked := make([]model.RankedLocality, 0, len(scorable))
	for i := range scorable {
		ranked = append(ranked, e.Score(&scorable[i], pop))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].OverallScore > ranked[j].OverallScore
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	top := ranked
	if len(top) > 10 {
		top = top[:10]
	}

	log.Info("ranking complete",
		zap.Int("input", len(localities)),
		zap.Int("ranked", len(ranked)),
		zap.Int("excluded", len(localities)-len(ranked)),
	)

	return &model.Report{
		Methodology:     e.preset.Methodology,
		CategoryWeights: e.preset.Weights(),
		Top10:           top,
		AllRankings:     ranked,
		Warnings:        warnings,
	}, nil
}

// metricScore resolves one metric's raw value from the record and
// normalizes it. Absent fields hit each normalizer's documented
// default; nothing here can fail.
func (e *Engine) metricScore(rec *model.LocalityRecord, src Source, pop Population) float64 {
	switch src.Kind {
	case SourceTravelTime:
		return TravelTimeScore(rec.TravelTime(src.Keys[0]))

	case SourceTravelRange:
		var v *float64
		if m := rec.TravelTime(src.Keys[0]); m != nil {
			f := float64(*m)
			v = &f
		}
		return RangeScore(v, src.Min, src.Max, src.Invert)

	case SourceCount:
		return CountScore(sumCounts(rec, src.Keys), src.MaxExpected)

	case SourceCountRange:
		total, known := 0, false
		for _, k := range src.Keys {
			if n, ok := rec.CountValue(k); ok {
				total += n
				known = true
			}
		}
		if !known {
			return RangeScore(nil, src.Min, src.Max, src.Invert)
		}
		f := float64(total)
		return RangeScore(&f, src.Min, src.Max, src.Invert)

	case SourceCountRating:
		return CountRatingScore(sumCounts(rec, src.Keys), rec.AvgRating(src.RatingKey), src.MaxExpected)

	case SourceDerived:
		return DerivedScore(derivedValue(rec, src.Keys[0]))

	case SourceSubjective:
		return SubjectiveScore(rec.SubjectiveValue(src.Keys[0]), src.Invert)

	case SourcePercentile:
		return PercentileScore(priceValue(rec, src.PriceField), pop.PriceValues(src.PriceField))

	case SourceBellCurve:
		return BellCurveScore(priceValue(rec, src.PriceField), src.Curve)
	}
	// Unknown kinds are rejected by Validate; unreachable for a built engine.
	return neutralScore
}

func sumCounts(rec *model.LocalityRecord, keys []string) int {
	total := 0
	for _, k := range keys {
		total += rec.Count(k)
	}
	return total
}

func derivedValue(rec *model.LocalityRecord, name string) *float64 {
	switch name {
	case DerivedNoise:
		return rec.Derived.NoiseScore
	case DerivedFloodSafety:
		return rec.Derived.FloodSafetyScore
	case DerivedJobs:
		return rec.Derived.JobProximity
	}
	return nil
}

func priceValue(rec *model.LocalityRecord, field string) *float64 {
	switch field {
	case PriceLandPerCent:
		return rec.Price.LandPerCent
	case PriceApartmentSqft:
		return rec.Price.ApartmentSqft
	}
	return nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
