// Package collect gathers objective metrics for localities from the
// Google Maps Platform: travel times to fixed destinations, amenity
// counts and ratings, elevation, and the scores derived from them.
package collect

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kerala-atlas/locality-cli/internal/geo"
	"github.com/kerala-atlas/locality-cli/internal/model"
	"github.com/kerala-atlas/locality-cli/pkg/google"
)

// destination is a fixed point travel times are measured to.
type destination struct {
	key string
	lat float64
	lng float64
}

// Reference points in Thiruvananthapuram.
var destinations = []destination{
	{model.DestCityCentre, 8.4875, 76.9525},
	{model.DestTechnopark, 8.5564, 76.8812},
	{model.DestAirport, 8.4804, 76.9201},
	{model.DestMedicalCollege, 8.5254, 76.9117},
	{model.DestSecretariat, 8.5042, 76.9600},
	{model.DestKSRTCStand, 8.4885, 76.9506},
}

// amenitySpec maps a record key to a Places type and search radius in
// meters.
type amenitySpec struct {
	key       string
	placeType string
	radius    int
}

var amenities = []amenitySpec{
	{"schools", "school", 3000},
	{"hospitals", "hospital", 3000},
	{"police_stations", "police", 5000},
	{"fire_stations", "fire_station", 5000},
	{"bus_stations", "bus_station", 2000},
	{"parks", "park", 2000},
	{"banks", "bank", 2000},
	{"atms", "atm", 2000},
	{"supermarkets", "supermarket", 2000},
	{"pharmacies", "pharmacy", 2000},
	{"gyms", "gym", 2000},
	{"restaurants", "restaurant", 2000},
	{"cafes", "cafe", 2000},
	{"real_estate_agencies", "real_estate_agency", 3000},
}

// Major noise sources used for the quietness estimate.
var noiseSources = []struct {
	lat float64
	lng float64
}{
	{8.4804, 76.9201}, // airport
	{8.4885, 76.9506}, // KSRTC stand
	{8.4890, 76.9494}, // railway station
}

var errMissingCoordinates = eris.New("collect: locality has no coordinates")

// Config controls collection behavior.
type Config struct {
	// MaxConcurrent bounds how many localities are processed at once.
	MaxConcurrent int
	// KeepPlaces retains individual place entries on the record so a
	// later dedup pass can reassign shared amenities.
	KeepPlaces bool
}

// Collector fetches objective metrics for localities.
type Collector struct {
	maps  google.Client
	cfg   Config
	title cases.Caser
}

// New creates a Collector.
func New(maps google.Client, cfg Config) *Collector {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	return &Collector{
		maps:  maps,
		cfg:   cfg,
		title: cases.Title(language.English),
	}
}

// CanonicalName normalizes a locality display name.
func (c *Collector) CanonicalName(name string) string {
	return c.title.String(strings.ToLower(strings.TrimSpace(name)))
}

// CollectAll fetches metrics for every locality with a bounded fan-out.
// Per-locality failures mark that record failed rather than aborting
// the run. The input slice is not modified.
func (c *Collector) CollectAll(ctx context.Context, localities []model.LocalityRecord) []model.LocalityRecord {
	out := make([]model.LocalityRecord, len(localities))
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.MaxConcurrent)

	for i := range localities {
		g.Go(func() error {
			rec := localities[i].Clone()
			rec.Name = c.CanonicalName(rec.Name)

			if err := c.collectOne(ctx, &rec); err != nil {
				rec.Status = model.StatusFailed
				zap.L().Error("locality collection failed",
					zap.String("locality", rec.Name),
					zap.Error(err),
				)
			} else {
				rec.Status = model.StatusSuccess
				zap.L().Info("locality collected",
					zap.String("locality", rec.Name),
					zap.Int("amenity_types", len(rec.AmenityCounts)),
				)
			}

			out[i] = rec
			return nil
		})
	}

	// Goroutines never return errors; Wait only releases the limit.
	_ = g.Wait()

	zap.L().Info("collection complete",
		zap.Int("localities", len(localities)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out
}

func (c *Collector) collectOne(ctx context.Context, rec *model.LocalityRecord) error {
	if !rec.HasCoordinates() {
		return errMissingCoordinates
	}
	lat, lng := *rec.Latitude, *rec.Longitude

	if rec.TravelTimes == nil {
		rec.TravelTimes = make(map[string]*int, len(destinations))
	}
	for _, dest := range destinations {
		minutes, err := c.maps.TravelTime(ctx, lat, lng, dest.lat, dest.lng)
		if err != nil {
			zap.L().Warn("travel time unavailable",
				zap.String("locality", rec.Name),
				zap.String("destination", dest.key),
				zap.Error(err),
			)
			rec.TravelTimes[dest.key] = nil
			continue
		}
		rec.TravelTimes[dest.key] = &minutes
	}

	elev, err := c.maps.Elevation(ctx, lat, lng)
	if err != nil {
		zap.L().Warn("elevation unavailable",
			zap.String("locality", rec.Name),
			zap.Error(err),
		)
		rec.Derived.ElevationMeters = nil
	} else {
		rec.Derived.ElevationMeters = &elev
	}

	if rec.AmenityCounts == nil {
		rec.AmenityCounts = make(map[string]int, len(amenities))
	}
	if rec.AmenityRatings == nil {
		rec.AmenityRatings = make(map[string]*float64, len(amenities))
	}
	for _, spec := range amenities {
		places, err := c.maps.NearbySearch(ctx, lat, lng, spec.placeType, spec.radius)
		if err != nil {
			return err
		}

		rec.AmenityCounts[spec.key] = len(places)
		rec.AmenityRatings[spec.key] = avgRating(places)

		if c.cfg.KeepPlaces {
			if rec.AmenityEntries == nil {
				rec.AmenityEntries = make(map[string][]model.AmenityPlace)
			}
			rec.AmenityEntries[spec.key] = toAmenityPlaces(places)
		}
	}

	c.deriveScores(rec, lat, lng)
	return nil
}

// deriveScores computes the 1-10 scores derived from raw metrics.
func (c *Collector) deriveScores(rec *model.LocalityRecord, lat, lng float64) {
	// Quietness: mean distance to noise sources in km, 10km+ is quiet.
	var total float64
	for _, src := range noiseSources {
		total += geo.DistanceKM(lat, lng, src.lat, src.lng)
	}
	noise := round1(clamp(1, 10, total/float64(len(noiseSources))))
	rec.Derived.NoiseScore = &noise

	// Flood safety from elevation: 50m+ is safe.
	if rec.Derived.ElevationMeters != nil {
		flood := round1(clamp(1, 10, *rec.Derived.ElevationMeters/5))
		rec.Derived.FloodSafetyScore = &flood
	} else {
		mid := 5.0
		rec.Derived.FloodSafetyScore = &mid
	}

	// Job proximity from weighted travel times to employment hubs.
	jobWeights := map[string]float64{
		model.DestTechnopark:  0.5,
		model.DestCityCentre:  0.3,
		model.DestSecretariat: 0.2,
	}
	var weighted float64
	for key, w := range jobWeights {
		if t := rec.TravelTime(key); t != nil {
			weighted += float64(*t) * w
		}
	}
	jobs := round1(clamp(1, 10, 11-weighted/6))
	rec.Derived.JobProximity = &jobs
}

func avgRating(places []google.Place) *float64 {
	var sum float64
	var n int
	for _, p := range places {
		if p.Rating != nil {
			sum += *p.Rating
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := round1(sum / float64(n))
	return &avg
}

func toAmenityPlaces(places []google.Place) []model.AmenityPlace {
	out := make([]model.AmenityPlace, len(places))
	for i, p := range places {
		out[i] = model.AmenityPlace{
			ExternalID: p.PlaceID,
			Name:       p.Name,
			Lat:        p.Lat,
			Lng:        p.Lng,
			Rating:     p.Rating,
		}
	}
	return out
}

func clamp(lo, hi, v float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
