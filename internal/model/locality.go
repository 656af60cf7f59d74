// Package model defines the locality record schema shared by the
// collection, deduplication, and scoring stages.
package model

// Status represents the collection state of a locality record.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Confidence qualifies an AI-generated subjective rating.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Destination keys for the travel-time map.
const (
	DestCityCentre     = "city_centre"
	DestTechnopark     = "technopark"
	DestAirport        = "airport"
	DestMedicalCollege = "medical_college"
	DestSecretariat    = "secretariat"
	DestKSRTCStand     = "ksrtc_stand"
)

// AmenityPlace is one physical point of interest discovered near a
// locality. The same place may appear under several localities when
// their search radii overlap; ExternalID is the cross-locality key.
type AmenityPlace struct {
	ExternalID string   `json:"place_id"`
	Name       string   `json:"name"`
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`
	Rating     *float64 `json:"rating,omitempty"`
}

// SubjectiveRating is a 1-5 AI-generated rating for one metric.
type SubjectiveRating struct {
	Value      float64    `json:"value"`
	Confidence Confidence `json:"confidence,omitempty"`
}

// DerivedScores holds precomputed scalar signals on a 1-10 scale
// (except elevation, which is raw meters).
type DerivedScores struct {
	NoiseScore       *float64 `json:"noise_score,omitempty"`        // higher = quieter
	FloodSafetyScore *float64 `json:"flood_safety_score,omitempty"` // higher = safer
	JobProximity     *float64 `json:"job_proximity_score,omitempty"`
	ElevationMeters  *float64 `json:"elevation_meters,omitempty"`
}

// Price holds property price signals for a locality.
type Price struct {
	LandPerCent    *float64   `json:"land_price_per_cent,omitempty"`     // lakh rupees per cent
	ApartmentSqft  *float64   `json:"apartment_price_per_sqft,omitempty"`
	LandRange      string     `json:"land_price_range,omitempty"`
	ApartmentRange string     `json:"apartment_price_range,omitempty"`
	Confidence     Confidence `json:"confidence,omitempty"`
}

// LocalityRecord is one row per named place. All fields other than Name
// and Status are optional; consumers substitute documented defaults for
// anything missing. Records are treated as immutable by the pipeline
// stages: deduplication and scoring return new values rather than
// mutating their inputs.
type LocalityRecord struct {
	Name      string   `json:"name"`
	Status    Status   `json:"status"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	// TravelTimes maps destination key to minutes. A nil entry (JSON
	// null) means the lookup failed for that destination.
	TravelTimes map[string]*int `json:"travel_times,omitempty"`

	// AmenityEntries maps amenity type to the detailed place list. May
	// be absent entirely, in which case AmenityCounts is authoritative.
	AmenityEntries map[string][]AmenityPlace `json:"amenity_entries,omitempty"`

	// AmenityCounts maps amenity type to the (possibly deduplicated)
	// count. AmenityRatings carries the average rating per type.
	AmenityCounts  map[string]int      `json:"amenity_counts,omitempty"`
	AmenityRatings map[string]*float64 `json:"amenity_avg_ratings,omitempty"`

	Derived DerivedScores `json:"derived_scores,omitempty"`
	Price   Price         `json:"price,omitempty"`

	// Subjective maps metric name (safety_score, road_quality,
	// prestige, ...) to a 1-5 rating. Unknown metric names are simply
	// absent; the scoring engine substitutes its documented default.
	Subjective map[string]SubjectiveRating `json:"subjective_ratings,omitempty"`
}

// HasCoordinates reports whether the record carries a usable center.
func (r *LocalityRecord) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// TravelTime returns the minutes to the given destination, or nil when
// the destination is absent or the lookup failed.
func (r *LocalityRecord) TravelTime(dest string) *int {
	if r.TravelTimes == nil {
		return nil
	}
	return r.TravelTimes[dest]
}

// Count returns the amenity count for a type, falling back to the
// length of the detailed entry list when no count was recorded.
func (r *LocalityRecord) Count(amenityType string) int {
	if r.AmenityCounts != nil {
		if n, ok := r.AmenityCounts[amenityType]; ok {
			return n
		}
	}
	if r.AmenityEntries != nil {
		return len(r.AmenityEntries[amenityType])
	}
	return 0
}

// CountValue returns the count for an amenity type along with whether
// the type was observed at all. Normalizers that treat unknown counts
// differently from zero counts need the distinction.
func (r *LocalityRecord) CountValue(amenityType string) (int, bool) {
	if r.AmenityCounts != nil {
		if n, ok := r.AmenityCounts[amenityType]; ok {
			return n, true
		}
	}
	if r.AmenityEntries != nil {
		if places, ok := r.AmenityEntries[amenityType]; ok {
			return len(places), true
		}
	}
	return 0, false
}

// AvgRating returns the average rating for an amenity type, or nil.
func (r *LocalityRecord) AvgRating(amenityType string) *float64 {
	if r.AmenityRatings == nil {
		return nil
	}
	return r.AmenityRatings[amenityType]
}

// SubjectiveValue returns the 1-5 rating for a metric, or nil when the
// metric was never rated.
func (r *LocalityRecord) SubjectiveValue(metric string) *float64 {
	if r.Subjective == nil {
		return nil
	}
	if sr, ok := r.Subjective[metric]; ok {
		v := sr.Value
		return &v
	}
	return nil
}

// Clone returns a deep copy of the record. Pipeline stages that replace
// amenity data operate on clones so the input list stays untouched.
func (r LocalityRecord) Clone() LocalityRecord {
	out := r

	if r.TravelTimes != nil {
		out.TravelTimes = make(map[string]*int, len(r.TravelTimes))
		for k, v := range r.TravelTimes {
			out.TravelTimes[k] = clonePtr(v)
		}
	}
	if r.AmenityEntries != nil {
		out.AmenityEntries = make(map[string][]AmenityPlace, len(r.AmenityEntries))
		for k, places := range r.AmenityEntries {
			cp := make([]AmenityPlace, len(places))
			copy(cp, places)
			out.AmenityEntries[k] = cp
		}
	}
	if r.AmenityCounts != nil {
		out.AmenityCounts = make(map[string]int, len(r.AmenityCounts))
		for k, v := range r.AmenityCounts {
			out.AmenityCounts[k] = v
		}
	}
	if r.AmenityRatings != nil {
		out.AmenityRatings = make(map[string]*float64, len(r.AmenityRatings))
		for k, v := range r.AmenityRatings {
			out.AmenityRatings[k] = clonePtr(v)
		}
	}
	if r.Subjective != nil {
		out.Subjective = make(map[string]SubjectiveRating, len(r.Subjective))
		for k, v := range r.Subjective {
			out.Subjective[k] = v
		}
	}

	out.Latitude = clonePtr(r.Latitude)
	out.Longitude = clonePtr(r.Longitude)
	out.Derived.NoiseScore = clonePtr(r.Derived.NoiseScore)
	out.Derived.FloodSafetyScore = clonePtr(r.Derived.FloodSafetyScore)
	out.Derived.JobProximity = clonePtr(r.Derived.JobProximity)
	out.Derived.ElevationMeters = clonePtr(r.Derived.ElevationMeters)
	out.Price.LandPerCent = clonePtr(r.Price.LandPerCent)
	out.Price.ApartmentSqft = clonePtr(r.Price.ApartmentSqft)

	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// RankedLocality is one row of scoring output.
type RankedLocality struct {
	Name         string             `json:"name"`
	Rank         int                `json:"rank"`
	OverallScore float64            `json:"overall_score"`
	Breakdown    map[string]float64 `json:"category_breakdown"`
}

// Report is the full ranking output contract.
type Report struct {
	Methodology     string             `json:"methodology"`
	CategoryWeights map[string]float64 `json:"category_weights"`
	Top10           []RankedLocality   `json:"top_10"`
	AllRankings     []RankedLocality   `json:"all_rankings"`
	Warnings        []string           `json:"warnings,omitempty"`
}
