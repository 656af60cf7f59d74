package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerala-atlas/locality-cli/internal/model"
)

func record(name string, mutate func(*model.LocalityRecord)) model.LocalityRecord {
	rec := model.LocalityRecord{Name: name, Status: model.StatusSuccess}
	if mutate != nil {
		mutate(&rec)
	}
	return rec
}

func mustEngine(t *testing.T, name string) *Engine {
	t.Helper()
	p, ok := PresetByName(name)
	require.True(t, ok)
	e, err := New(p)
	require.NoError(t, err)
	return e
}

func TestScoreBounds(t *testing.T) {
	// Extreme records must stay within [0, 10] for every preset.
	best := record("best", func(r *model.LocalityRecord) {
		r.TravelTimes = map[string]*int{
			"technopark": ip(0), "city_centre": ip(0), "secretariat": ip(0),
			"airport": ip(0), "ksrtc_stand": ip(0), "medical_college": ip(0),
		}
		r.AmenityCounts = map[string]int{
			"schools": 999, "hospitals": 999, "restaurants": 999, "cafes": 999,
			"supermarkets": 999, "pharmacies": 999, "banks": 999, "atms": 999,
			"gyms": 999, "parks": 999, "police_stations": 999, "fire_stations": 999,
			"real_estate_agencies": 999,
		}
		r.AmenityRatings = map[string]*float64{"schools": fp(5), "hospitals": fp(5), "banks": fp(5), "restaurants": fp(5)}
		r.Derived = model.DerivedScores{NoiseScore: fp(10), FloodSafetyScore: fp(10), JobProximity: fp(10)}
		r.Price = model.Price{LandPerCent: fp(20), ApartmentSqft: fp(6000)}
		r.Subjective = map[string]model.SubjectiveRating{}
		for _, k := range []string{"safety_score", "prestige", "urban_character", "cleanliness",
			"air_quality", "green_cover", "infrastructure_maturity", "future_potential",
			"public_transport", "road_quality", "school_quality", "healthcare_access",
			"commercial_vibrancy"} {
			r.Subjective[k] = model.SubjectiveRating{Value: 5}
		}
	})
	worst := record("worst", func(r *model.LocalityRecord) {
		r.TravelTimes = map[string]*int{"technopark": ip(240), "city_centre": ip(240)}
	})
	empty := record("empty", nil)

	for _, preset := range []string{"objective", "clean", "pillar"} {
		t.Run(preset, func(t *testing.T) {
			e := mustEngine(t, preset)
			report, err := e.Rank([]model.LocalityRecord{best, worst, empty})
			require.NoError(t, err)

			for _, rl := range report.AllRankings {
				assert.GreaterOrEqual(t, rl.OverallScore, 0.0, rl.Name)
				assert.LessOrEqual(t, rl.OverallScore, 10.0, rl.Name)
				for cat, score := range rl.Breakdown {
					assert.GreaterOrEqual(t, score, 0.0, "%s/%s", rl.Name, cat)
					assert.LessOrEqual(t, score, 10.0, "%s/%s", rl.Name, cat)
				}
			}
		})
	}
}

func TestBetterLocalityOutranksWorse(t *testing.T) {
	// A: short technopark commute, plenty of schools. B: long commute,
	// no schools. A must win accessibility, amenities, and overall.
	a := record("A", func(r *model.LocalityRecord) {
		r.TravelTimes = map[string]*int{"technopark": ip(10)}
		r.AmenityCounts = map[string]int{"schools": 20}
	})
	b := record("B", func(r *model.LocalityRecord) {
		r.TravelTimes = map[string]*int{"technopark": ip(60)}
		r.AmenityCounts = map[string]int{"schools": 0}
	})

	e := mustEngine(t, "objective")
	report, err := e.Rank([]model.LocalityRecord{b, a})
	require.NoError(t, err)
	require.Len(t, report.AllRankings, 2)

	first, second := report.AllRankings[0], report.AllRankings[1]
	assert.Equal(t, "A", first.Name)
	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, 2, second.Rank)
	assert.Greater(t, first.OverallScore, second.OverallScore)
	assert.Greater(t, first.Breakdown["accessibility"], second.Breakdown["accessibility"])
	assert.Greater(t, first.Breakdown["amenities"], second.Breakdown["amenities"])
}

func TestTravelTimeMonotonicity(t *testing.T) {
	e := mustEngine(t, "objective")
	pop := Population{}

	var prev float64 = 11
	for _, minutes := range []int{5, 15, 30, 45, 60} {
		rec := record("x", func(r *model.LocalityRecord) {
			r.TravelTimes = map[string]*int{"technopark": ip(minutes)}
		})
		score := e.Score(&rec, pop).Breakdown["accessibility"]
		assert.LessOrEqual(t, score, prev, "minutes=%d", minutes)
		prev = score
	}
}

func TestCountMonotonicity(t *testing.T) {
	e := mustEngine(t, "objective")
	pop := Population{}

	var prev float64 = -1
	for _, count := range []int{0, 5, 10, 20, 40, 100} {
		rec := record("x", func(r *model.LocalityRecord) {
			r.AmenityCounts = map[string]int{"schools": count}
		})
		score := e.Score(&rec, pop).Breakdown["amenities"]
		assert.GreaterOrEqual(t, score, prev, "count=%d", count)
		prev = score
	}
}

func TestFailedRecordExcluded(t *testing.T) {
	ok := record("ok", nil)
	failed := model.LocalityRecord{Name: "broken", Status: model.StatusFailed}

	e := mustEngine(t, "objective")
	report, err := e.Rank([]model.LocalityRecord{ok, failed})
	require.NoError(t, err)

	require.Len(t, report.AllRankings, 1)
	assert.Equal(t, "ok", report.AllRankings[0].Name)
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[0], "broken")
}

func TestMalformedRecordRejectedNotFatal(t *testing.T) {
	nameless := model.LocalityRecord{Status: model.StatusSuccess}
	ok := record("ok", nil)

	e := mustEngine(t, "clean")
	report, err := e.Rank([]model.LocalityRecord{nameless, ok})
	require.NoError(t, err)

	assert.Len(t, report.AllRankings, 1)
	assert.NotEmpty(t, report.Warnings)
}

func TestAllNullRecordScoresMidpointish(t *testing.T) {
	empty := record("ghost", nil)

	for _, preset := range []string{"objective", "clean", "pillar"} {
		t.Run(preset, func(t *testing.T) {
			e := mustEngine(t, preset)
			report, err := e.Rank([]model.LocalityRecord{empty})
			require.NoError(t, err)
			require.Len(t, report.AllRankings, 1)

			rl := report.AllRankings[0]
			assert.Equal(t, 1, rl.Rank)
			// Travel defaults and derived defaults pull toward 5; count
			// metrics legitimately score 0, so "midpoint-ish" is wide.
			assert.Greater(t, rl.OverallScore, 1.0)
			assert.Less(t, rl.OverallScore, 7.0)
			assert.Len(t, rl.Breakdown, len(e.Preset().Categories))
		})
	}
}

func TestRankingConsistency(t *testing.T) {
	recs := []model.LocalityRecord{
		record("a", func(r *model.LocalityRecord) { r.AmenityCounts = map[string]int{"schools": 5} }),
		record("b", func(r *model.LocalityRecord) { r.AmenityCounts = map[string]int{"schools": 25} }),
		record("c", func(r *model.LocalityRecord) { r.AmenityCounts = map[string]int{"schools": 15} }),
		record("d", nil),
	}

	e := mustEngine(t, "clean")
	report, err := e.Rank(recs)
	require.NoError(t, err)

	for i, rl := range report.AllRankings {
		assert.Equal(t, i+1, rl.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, report.AllRankings[i-1].OverallScore, rl.OverallScore)
		}
	}
}

func TestEqualScoresKeepInputOrder(t *testing.T) {
	// Identical records tie exactly; the stable sort must preserve
	// their input order.
	recs := []model.LocalityRecord{record("first", nil), record("second", nil), record("third", nil)}

	e := mustEngine(t, "objective")
	report, err := e.Rank(recs)
	require.NoError(t, err)

	require.Len(t, report.AllRankings, 3)
	assert.Equal(t, "first", report.AllRankings[0].Name)
	assert.Equal(t, "second", report.AllRankings[1].Name)
	assert.Equal(t, "third", report.AllRankings[2].Name)
}

func TestPrestigePercentileUsesPopulation(t *testing.T) {
	cheap := record("cheap", func(r *model.LocalityRecord) { r.Price.LandPerCent = fp(8) })
	mid := record("mid", func(r *model.LocalityRecord) { r.Price.LandPerCent = fp(20) })
	rich := record("rich", func(r *model.LocalityRecord) { r.Price.LandPerCent = fp(45) })
	unknown := record("unknown", nil)

	e := mustEngine(t, "clean")
	report, err := e.Rank([]model.LocalityRecord{cheap, mid, rich, unknown})
	require.NoError(t, err)

	byName := map[string]model.RankedLocality{}
	for _, rl := range report.AllRankings {
		byName[rl.Name] = rl
	}

	assert.Greater(t, byName["rich"].Breakdown["prestige"], byName["mid"].Breakdown["prestige"])
	assert.Greater(t, byName["mid"].Breakdown["prestige"], byName["cheap"].Breakdown["prestige"])
	// No price: neutral midpoint, excluded from others' population.
	assert.InDelta(t, 5.0, byName["unknown"].Breakdown["prestige"], 1e-9)
	// Highest price is the 100th percentile of the 3-value population.
	assert.InDelta(t, 10.0, byName["rich"].Breakdown["prestige"], 1e-9)
}

func TestPopulationInsufficientFallsBackToMidpoint(t *testing.T) {
	// Nobody has a price: prestige is neutral for everyone.
	recs := []model.LocalityRecord{record("a", nil), record("b", nil)}

	e := mustEngine(t, "clean")
	report, err := e.Rank(recs)
	require.NoError(t, err)

	for _, rl := range report.AllRankings {
		assert.InDelta(t, 5.0, rl.Breakdown["prestige"], 1e-9)
	}
}

func TestTop10Split(t *testing.T) {
	var recs []model.LocalityRecord
	for i := 0; i < 14; i++ {
		n := i
		recs = append(recs, record(string(rune('a'+i)), func(r *model.LocalityRecord) {
			r.AmenityCounts = map[string]int{"schools": n}
		}))
	}

	e := mustEngine(t, "objective")
	report, err := e.Rank(recs)
	require.NoError(t, err)

	assert.Len(t, report.Top10, 10)
	assert.Len(t, report.AllRankings, 14)
	assert.Equal(t, report.AllRankings[:10], report.Top10)
}

func TestReportCarriesMethodologyAndWeights(t *testing.T) {
	e := mustEngine(t, "pillar")
	report, err := e.Rank([]model.LocalityRecord{record("x", nil)})
	require.NoError(t, err)

	assert.Contains(t, report.Methodology, "QoL 55%")
	assert.InDelta(t, 0.55, report.CategoryWeights["quality_of_life"], 1e-9)
	assert.InDelta(t, 0.20, report.CategoryWeights["economic_ability"], 1e-9)
	assert.InDelta(t, 0.25, report.CategoryWeights["sustainability"], 1e-9)
}

func TestCategoryRoundingAtBoundary(t *testing.T) {
	// Breakdown values are reported to 1 decimal, overall to 2.
	rec := record("x", func(r *model.LocalityRecord) {
		r.TravelTimes = map[string]*int{"technopark": ip(7)}
	})

	e := mustEngine(t, "objective")
	got := e.Score(&rec, Population{})

	for cat, v := range got.Breakdown {
		assert.InDelta(t, v, round1(v), 1e-12, cat)
	}
	assert.InDelta(t, got.OverallScore, round2(got.OverallScore), 1e-12)
}
