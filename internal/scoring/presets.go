package scoring

// The three shipped weighting schemes. Weight tables and curve
// breakpoints are configuration: integrators can load a modified copy
// from YAML instead of editing these.

// LandValueCurve is the default sweet-spot curve for land price in lakh
// rupees per cent. Midrange prices score high; very cheap means
// undeveloped, very expensive means unaffordable.
var LandValueCurve = []CurvePoint{
	{Value: 0, Score: 3},
	{Value: 5, Score: 3},
	{Value: 15, Score: 8},
	{Value: 25, Score: 8},
	{Value: 40, Score: 4},
	{Value: 80, Score: 2},
}

// ApartmentValueCurve is the default sweet-spot curve for apartment
// price in rupees per square foot.
var ApartmentValueCurve = []CurvePoint{
	{Value: 0, Score: 4},
	{Value: 3000, Score: 4},
	{Value: 5500, Score: 9},
	{Value: 7000, Score: 9},
	{Value: 9000, Score: 5},
	{Value: 14000, Score: 2},
}

// PresetByName returns a shipped preset: objective, clean, or pillar.
func PresetByName(name string) (Preset, bool) {
	switch name {
	case "objective":
		return ObjectivePreset(), true
	case "clean":
		return CleanPreset(), true
	case "pillar":
		return PillarPreset(), true
	}
	return Preset{}, false
}

// ObjectivePreset scores on API-sourced metrics only: five categories,
// no price or subjective inputs.
func ObjectivePreset() Preset {
	return Preset{
		Name:        "objective",
		Methodology: "100% objective API-sourced data",
		Categories: []Category{
			accessibilityCategory(0.25),
			{
				Name:   "amenities",
				Weight: 0.25,
				Metrics: []Metric{
					{Name: "healthcare", Weight: 0.25, Source: Source{
						Kind: SourceCountRating, Keys: []string{"hospitals"}, RatingKey: "hospitals", MaxExpected: 40,
					}},
					{Name: "education", Weight: 0.20, Source: Source{
						Kind: SourceCountRating, Keys: []string{"schools"}, RatingKey: "schools", MaxExpected: 40,
					}},
					{Name: "shopping", Weight: 0.20, Source: Source{
						Kind: SourceCount, Keys: []string{"supermarkets", "pharmacies"}, MaxExpected: 40,
					}},
					{Name: "banking", Weight: 0.15, Source: Source{
						Kind: SourceCountRating, Keys: []string{"banks", "atms"}, RatingKey: "banks", MaxExpected: 40,
					}},
					{Name: "lifestyle", Weight: 0.20, Source: Source{
						Kind: SourceCountRating, Keys: []string{"restaurants", "cafes", "gyms"}, RatingKey: "restaurants", MaxExpected: 40,
					}},
				},
			},
			safetyCategory(0.15),
			environmentCategory(0.15),
			economyCategory(0.20, []string{"banks", "supermarkets", "atms"}, 50),
		},
	}
}

// CleanPreset is the objective scheme plus price-based prestige.
func CleanPreset() Preset {
	return Preset{
		Name:        "clean",
		Methodology: "100% objective API-sourced data + price-based prestige",
		Categories: []Category{
			accessibilityCategory(0.20),
			{
				Name:   "amenities",
				Weight: 0.25,
				Metrics: []Metric{
					{Name: "healthcare", Weight: 0.25, Source: Source{
						Kind: SourceCountRating, Keys: []string{"hospitals"}, RatingKey: "hospitals", MaxExpected: 20,
					}},
					{Name: "education", Weight: 0.20, Source: Source{
						Kind: SourceCountRating, Keys: []string{"schools"}, RatingKey: "schools", MaxExpected: 20,
					}},
					{Name: "shopping", Weight: 0.20, Source: Source{
						Kind: SourceCount, Keys: []string{"supermarkets", "pharmacies"}, MaxExpected: 40,
					}},
					{Name: "banking", Weight: 0.15, Source: Source{
						Kind: SourceCount, Keys: []string{"banks", "atms"}, MaxExpected: 40,
					}},
					{Name: "lifestyle", Weight: 0.20, Source: Source{
						Kind: SourceCount, Keys: []string{"restaurants", "cafes", "gyms"}, MaxExpected: 60,
					}},
				},
			},
			safetyCategory(0.15),
			environmentCategory(0.15),
			economyCategory(0.15, []string{"banks", "supermarkets"}, 40),
			{
				Name:   "prestige",
				Weight: 0.10,
				Metrics: []Metric{
					{Name: "land_price_percentile", Weight: 1.0, Source: Source{
						Kind: SourcePercentile, PriceField: PriceLandPerCent,
					}},
				},
			},
		},
	}
}

// PillarPreset is the AI-augmented scheme: three pillars built from 1-5
// subjective ratings, range-normalized travel times and counts, and
// sweet-spot price value.
func PillarPreset() Preset {
	return Preset{
		Name:        "pillar",
		Methodology: "EoLI-based weighted scoring: QoL 55%, Economic 20%, Sustainability 25%",
		Categories: []Category{
			{
				Name:    "quality_of_life",
				Weight:  0.55,
				Metrics: qolMetrics(),
			},
			{
				Name:   "economic_ability",
				Weight: 0.20,
				Metrics: []Metric{
					{Name: "land_value", Weight: 0.30, Source: Source{
						Kind: SourceBellCurve, PriceField: PriceLandPerCent, Curve: LandValueCurve,
					}},
					{Name: "apartment_value", Weight: 0.30, Source: Source{
						Kind: SourceBellCurve, PriceField: PriceApartmentSqft, Curve: ApartmentValueCurve,
					}},
					{Name: "technopark_access", Weight: 0.20, Source: Source{
						Kind: SourceTravelRange, Keys: []string{"technopark"}, Min: 10, Max: 60, Invert: true,
					}},
					{Name: "city_centre_access", Weight: 0.12, Source: Source{
						Kind: SourceTravelRange, Keys: []string{"city_centre"}, Min: 5, Max: 45, Invert: true,
					}},
					{Name: "commercial_vibrancy", Weight: 0.08, Source: Source{
						Kind: SourceSubjective, Keys: []string{"commercial_vibrancy"},
					}},
				},
			},
			{
				Name:   "sustainability",
				Weight: 0.25,
				Metrics: []Metric{
					{Name: "air_quality", Weight: 0.12, Source: Source{
						Kind: SourceSubjective, Keys: []string{"air_quality"},
					}},
					{Name: "quietness", Weight: 0.12, Source: Source{
						Kind: SourceSubjective, Keys: []string{"noise_level"}, Invert: true,
					}},
					{Name: "cleanliness", Weight: 0.08, Source: Source{
						Kind: SourceSubjective, Keys: []string{"cleanliness"},
					}},
					{Name: "green_cover", Weight: 0.08, Source: Source{
						Kind: SourceSubjective, Keys: []string{"green_cover"},
					}},
					{Name: "urban_character", Weight: 0.12, Source: Source{
						Kind: SourceSubjective, Keys: []string{"urban_character"},
					}},
					{Name: "prestige", Weight: 0.16, Source: Source{
						Kind: SourceSubjective, Keys: []string{"prestige"},
					}},
					{Name: "infrastructure_maturity", Weight: 0.12, Source: Source{
						Kind: SourceSubjective, Keys: []string{"infrastructure_maturity"},
					}},
					{Name: "future_potential", Weight: 0.20, Source: Source{
						Kind: SourceSubjective, Keys: []string{"future_potential"},
					}},
				},
			},
		},
	}
}

// qolMetrics flattens the quality-of-life sub-pillars (accessibility
// 18/55, safety 12/55, services 8/55, education 7/55, recreation 7/55,
// health 3/55) into one metric table; each weight is the sub-pillar
// share times the metric's share within it.
func qolMetrics() []Metric {
	const (
		accessibility = 18.0 / 55.0
		safety        = 12.0 / 55.0
		services      = 8.0 / 55.0
		education     = 7.0 / 55.0
		recreation    = 7.0 / 55.0
		health        = 3.0 / 55.0
	)
	return []Metric{
		{Name: "city_centre_access", Weight: accessibility * 0.25, Source: Source{
			Kind: SourceTravelRange, Keys: []string{"city_centre"}, Min: 5, Max: 45, Invert: true,
		}},
		{Name: "technopark_access", Weight: accessibility * 0.25, Source: Source{
			Kind: SourceTravelRange, Keys: []string{"technopark"}, Min: 10, Max: 60, Invert: true,
		}},
		{Name: "airport_access", Weight: accessibility * 0.15, Source: Source{
			Kind: SourceTravelRange, Keys: []string{"airport"}, Min: 10, Max: 50, Invert: true,
		}},
		{Name: "medical_college_access", Weight: accessibility * 0.15, Source: Source{
			Kind: SourceTravelRange, Keys: []string{"medical_college"}, Min: 2, Max: 40, Invert: true,
		}},
		{Name: "public_transport", Weight: accessibility * 0.10, Source: Source{
			Kind: SourceSubjective, Keys: []string{"public_transport"},
		}},
		{Name: "road_quality", Weight: accessibility * 0.10, Source: Source{
			Kind: SourceSubjective, Keys: []string{"road_quality"},
		}},

		{Name: "safety", Weight: safety, Source: Source{
			Kind: SourceSubjective, Keys: []string{"safety_score"},
		}},

		{Name: "flood_resilience", Weight: services * 0.4, Source: Source{
			Kind: SourceSubjective, Keys: []string{"flooding_risk"}, Invert: true,
		}},
		{Name: "cleanliness", Weight: services * 0.3, Source: Source{
			Kind: SourceSubjective, Keys: []string{"cleanliness"},
		}},
		{Name: "hospital_density", Weight: services * 0.3, Source: Source{
			Kind: SourceCountRange, Keys: []string{"hospitals"}, Min: 5, Max: 25,
		}},

		{Name: "school_density", Weight: education * 0.6, Source: Source{
			Kind: SourceCountRange, Keys: []string{"schools"}, Min: 5, Max: 25,
		}},
		{Name: "school_quality", Weight: education * 0.4, Source: Source{
			Kind: SourceSubjective, Keys: []string{"school_quality"},
		}},

		{Name: "restaurants", Weight: recreation * 0.3, Source: Source{
			Kind: SourceCountRange, Keys: []string{"restaurants"}, Min: 5, Max: 25,
		}},
		{Name: "cafes", Weight: recreation * 0.2, Source: Source{
			Kind: SourceCountRange, Keys: []string{"cafes"}, Min: 5, Max: 25,
		}},
		{Name: "supermarkets", Weight: recreation * 0.2, Source: Source{
			Kind: SourceCountRange, Keys: []string{"supermarkets"}, Min: 5, Max: 25,
		}},
		{Name: "gyms", Weight: recreation * 0.3, Source: Source{
			Kind: SourceCountRange, Keys: []string{"gyms"}, Min: 2, Max: 15,
		}},

		{Name: "air_quality", Weight: health * 0.5, Source: Source{
			Kind: SourceSubjective, Keys: []string{"air_quality"},
		}},
		{Name: "healthcare_access", Weight: health * 0.5, Source: Source{
			Kind: SourceSubjective, Keys: []string{"healthcare_access"},
		}},
	}
}

func accessibilityCategory(weight float64) Category {
	return Category{
		Name:   "accessibility",
		Weight: weight,
		Metrics: []Metric{
			{Name: "technopark", Weight: 0.30, Source: Source{Kind: SourceTravelTime, Keys: []string{"technopark"}}},
			{Name: "city_centre", Weight: 0.25, Source: Source{Kind: SourceTravelTime, Keys: []string{"city_centre"}}},
			{Name: "secretariat", Weight: 0.15, Source: Source{Kind: SourceTravelTime, Keys: []string{"secretariat"}}},
			{Name: "airport", Weight: 0.15, Source: Source{Kind: SourceTravelTime, Keys: []string{"airport"}}},
			{Name: "ksrtc_stand", Weight: 0.15, Source: Source{Kind: SourceTravelTime, Keys: []string{"ksrtc_stand"}}},
		},
	}
}

func safetyCategory(weight float64) Category {
	return Category{
		Name:   "safety",
		Weight: weight,
		Metrics: []Metric{
			{Name: "police", Weight: 0.7, Source: Source{Kind: SourceCount, Keys: []string{"police_stations"}, MaxExpected: 20}},
			{Name: "fire", Weight: 0.3, Source: Source{Kind: SourceCount, Keys: []string{"fire_stations"}, MaxExpected: 5}},
		},
	}
}

func environmentCategory(weight float64) Category {
	return Category{
		Name:   "environment",
		Weight: weight,
		Metrics: []Metric{
			{Name: "green_cover", Weight: 0.4, Source: Source{Kind: SourceCount, Keys: []string{"parks"}, MaxExpected: 20}},
			{Name: "quietness", Weight: 0.3, Source: Source{Kind: SourceDerived, Keys: []string{DerivedNoise}}},
			{Name: "flood_safety", Weight: 0.3, Source: Source{Kind: SourceDerived, Keys: []string{DerivedFloodSafety}}},
		},
	}
}

func economyCategory(weight float64, commercialKeys []string, commercialMax float64) Category {
	return Category{
		Name:   "economy",
		Weight: weight,
		Metrics: []Metric{
			{Name: "job_proximity", Weight: 0.5, Source: Source{Kind: SourceDerived, Keys: []string{DerivedJobs}}},
			{Name: "commercial", Weight: 0.3, Source: Source{Kind: SourceCount, Keys: commercialKeys, MaxExpected: commercialMax}},
			{Name: "development", Weight: 0.2, Source: Source{Kind: SourceCount, Keys: []string{"real_estate_agencies"}, MaxExpected: 20}},
		},
	}
}
