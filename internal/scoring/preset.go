package scoring

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// SourceKind tags how a metric's raw value is obtained and normalized.
type SourceKind string

const (
	// SourceTravelTime scores minutes to Keys[0] via 10 - min/6.
	SourceTravelTime SourceKind = "travel_time"
	// SourceTravelRange scores minutes to Keys[0] linearly within
	// [Min, Max]; Invert makes shorter times score higher.
	SourceTravelRange SourceKind = "travel_range"
	// SourceCount sums the counts of all Keys against MaxExpected.
	SourceCount SourceKind = "count"
	// SourceCountRange scores the summed counts of Keys linearly
	// within [Min, Max]; an unknown count scores the midpoint.
	SourceCountRange SourceKind = "count_range"
	// SourceCountRating blends the summed counts of Keys with the
	// average rating of RatingKey, 60/40.
	SourceCountRating SourceKind = "count_rating"
	// SourceDerived passes through a precomputed 0-10 signal named by
	// Keys[0]: noise_score, flood_safety_score, or job_proximity_score.
	SourceDerived SourceKind = "derived"
	// SourceSubjective rescales the 1-5 rating named by Keys[0].
	SourceSubjective SourceKind = "subjective"
	// SourcePercentile scores the price field by population percentile.
	SourcePercentile SourceKind = "percentile"
	// SourceBellCurve scores the price field on a piecewise-linear
	// sweet-spot curve.
	SourceBellCurve SourceKind = "bellcurve"
)

// Price field names for percentile and bellcurve sources.
const (
	PriceLandPerCent   = "land_price_per_cent"
	PriceApartmentSqft = "apartment_price_per_sqft"
)

// Derived signal names for SourceDerived.
const (
	DerivedNoise       = "noise_score"
	DerivedFloodSafety = "flood_safety_score"
	DerivedJobs        = "job_proximity_score"
)

// Source is the tagged normalizer configuration for one metric.
type Source struct {
	Kind        SourceKind   `yaml:"kind"`
	Keys        []string     `yaml:"keys,omitempty"`
	RatingKey   string       `yaml:"rating_key,omitempty"`
	MaxExpected float64      `yaml:"max_expected,omitempty"`
	Min         float64      `yaml:"min,omitempty"`
	Max         float64      `yaml:"max,omitempty"`
	Invert      bool         `yaml:"invert,omitempty"`
	PriceField  string       `yaml:"price_field,omitempty"`
	Curve       []CurvePoint `yaml:"curve,omitempty"`
}

// Metric is one weighted component of a category.
type Metric struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
	Source Source  `yaml:"source"`
}

// Category is a fixed weighted sum of normalized metric scores.
type Category struct {
	Name    string   `yaml:"name"`
	Weight  float64  `yaml:"weight"`
	Metrics []Metric `yaml:"metrics"`
}

// Preset is a complete weighting scheme: the category table plus the
// per-metric normalizer table. The three shipped variants are presets
// of the same engine, not separate code paths.
type Preset struct {
	Name        string     `yaml:"name"`
	Methodology string     `yaml:"methodology"`
	Categories  []Category `yaml:"categories"`
}

const weightTolerance = 1e-6

// Validate checks weight closure: category weights sum to 1.0 and each
// category's metric weights sum to 1.0, within tolerance.
func (p Preset) Validate() error {
	var errs []string

	if p.Name == "" {
		errs = append(errs, "preset name is required")
	}
	if len(p.Categories) == 0 {
		errs = append(errs, "preset has no categories")
	}

	var catSum float64
	for _, cat := range p.Categories {
		if cat.Weight < 0 {
			errs = append(errs, fmt.Sprintf("category %s: weight must be >= 0", cat.Name))
		}
		catSum += cat.Weight

		if len(cat.Metrics) == 0 {
			errs = append(errs, fmt.Sprintf("category %s: no metrics", cat.Name))
			continue
		}
		var metricSum float64
		for _, m := range cat.Metrics {
			if m.Weight < 0 {
				errs = append(errs, fmt.Sprintf("category %s: metric %s: weight must be >= 0", cat.Name, m.Name))
			}
			metricSum += m.Weight
			if err := m.Source.validate(); err != nil {
				errs = append(errs, fmt.Sprintf("category %s: metric %s: %v", cat.Name, m.Name, err))
			}
		}
		if math.Abs(metricSum-1) > weightTolerance {
			errs = append(errs, fmt.Sprintf("category %s: metric weights sum to %.6f, want 1.0", cat.Name, metricSum))
		}
	}
	if len(p.Categories) > 0 && math.Abs(catSum-1) > weightTolerance {
		errs = append(errs, fmt.Sprintf("category weights sum to %.6f, want 1.0", catSum))
	}

	if len(errs) > 0 {
		return eris.Errorf("scoring: preset %q invalid: %s", p.Name, strings.Join(errs, "; "))
	}
	return nil
}

func (s Source) validate() error {
	switch s.Kind {
	case SourceTravelTime, SourceDerived, SourceSubjective:
		if len(s.Keys) != 1 {
			return fmt.Errorf("%s source needs exactly one key", s.Kind)
		}
	case SourceTravelRange:
		if len(s.Keys) != 1 {
			return fmt.Errorf("travel_range source needs exactly one key")
		}
		if s.Max <= s.Min {
			return fmt.Errorf("travel_range needs max > min")
		}
	case SourceCount, SourceCountRating:
		if len(s.Keys) == 0 {
			return fmt.Errorf("%s source needs at least one key", s.Kind)
		}
		if s.MaxExpected <= 0 {
			return fmt.Errorf("%s source needs max_expected > 0", s.Kind)
		}
	case SourceCountRange:
		if len(s.Keys) == 0 {
			return fmt.Errorf("count_range source needs at least one key")
		}
		if s.Max <= s.Min {
			return fmt.Errorf("count_range needs max > min")
		}
	case SourcePercentile:
		if s.PriceField == "" {
			return fmt.Errorf("percentile source needs price_field")
		}
	case SourceBellCurve:
		if s.PriceField == "" {
			return fmt.Errorf("bellcurve source needs price_field")
		}
		if len(s.Curve) < 2 {
			return fmt.Errorf("bellcurve source needs at least two curve points")
		}
		for i := 1; i < len(s.Curve); i++ {
			if s.Curve[i].Value <= s.Curve[i-1].Value {
				return fmt.Errorf("bellcurve points must be strictly ascending by value")
			}
		}
	default:
		return fmt.Errorf("unknown source kind %q", s.Kind)
	}
	return nil
}

// Weights returns the category name to weight mapping, for the report's
// auditability contract.
func (p Preset) Weights() map[string]float64 {
	w := make(map[string]float64, len(p.Categories))
	for _, c := range p.Categories {
		w[c.Name] = c.Weight
	}
	return w
}

// LoadPresetFile reads a preset from a YAML file and validates it.
// Integrators override the shipped weight tables and curve breakpoints
// this way rather than by editing code.
func LoadPresetFile(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, eris.Wrapf(err, "scoring: read preset %s", path)
	}
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preset{}, eris.Wrapf(err, "scoring: parse preset %s", path)
	}
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	return p, nil
}
