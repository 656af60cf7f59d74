// Package dedup assigns each shared amenity place to exactly one owning
// locality so overlapping search radii never double-count a place.
package dedup

import (
	"math"

	"go.uber.org/zap"

	"github.com/kerala-atlas/locality-cli/internal/geo"
	"github.com/kerala-atlas/locality-cli/internal/model"
)

// Owner records which locality currently owns a place id and at what
// distance from its center.
type Owner struct {
	Locality   string
	DistanceKM float64
}

// Registry maps amenity external id to its current owner. It is built
// in the first pass and consulted in the second; callers only see it
// through Stats for diagnostics.
type Registry map[string]Owner

// Stats summarizes a deduplication run.
type Stats struct {
	UniquePlaces    int      `json:"unique_places"`
	DuplicatesFound int      `json:"duplicates_found"`
	Removed         int      `json:"removed"`
	Warnings        []string `json:"warnings,omitempty"`
}

// Deduplicate assigns every amenity place with a non-empty external id
// to the geographically nearest locality and returns a new record list
// with filtered entry lists and recomputed counts. Places without an
// external id are kept in every locality that reports them; dropping
// them silently would understate coverage. The input list is not
// mutated, and the operation is idempotent.
func Deduplicate(localities []model.LocalityRecord) ([]model.LocalityRecord, *Stats) {
	log := zap.L().Named("dedup")
	stats := &Stats{}

	registry := buildRegistry(localities, stats, log)
	stats.UniquePlaces = len(registry)

	out := make([]model.LocalityRecord, 0, len(localities))
	for _, loc := range localities {
		cp := loc.Clone()
		if cp.AmenityEntries == nil {
			// Nothing to filter; counts from upstream stand as-is.
			out = append(out, cp)
			continue
		}

		if cp.AmenityCounts == nil {
			cp.AmenityCounts = make(map[string]int, len(cp.AmenityEntries))
		}
		for amenityType, places := range cp.AmenityEntries {
			kept := places[:0:0]
			for _, p := range places {
				if p.ExternalID == "" {
					kept = append(kept, p)
					continue
				}
				if registry[p.ExternalID].Locality == cp.Name {
					kept = append(kept, p)
				} else {
					stats.Removed++
				}
			}
			cp.AmenityEntries[amenityType] = kept
			cp.AmenityCounts[amenityType] = len(kept)
		}
		out = append(out, cp)
	}

	log.Info("deduplication complete",
		zap.Int("localities", len(localities)),
		zap.Int("unique_places", stats.UniquePlaces),
		zap.Int("duplicates_found", stats.DuplicatesFound),
		zap.Int("removed", stats.Removed),
	)
	return out, stats
}

// buildRegistry is the first pass: find the nearest locality for every
// unique external id. Strictly smaller distance re-assigns ownership;
// an exact tie keeps the first-seen locality so the result is stable
// for a given input order.
func buildRegistry(localities []model.LocalityRecord, stats *Stats, log *zap.Logger) Registry {
	registry := make(Registry)

	for _, loc := range localities {
		if loc.AmenityEntries == nil {
			warn := "no detailed amenity data for " + loc.Name
			stats.Warnings = append(stats.Warnings, warn)
			log.Warn("no detailed amenity data", zap.String("locality", loc.Name))
			continue
		}

		dist := distanceFunc(loc, stats, log)
		for _, places := range loc.AmenityEntries {
			for _, p := range places {
				if p.ExternalID == "" {
					continue
				}
				d := dist(p)
				cur, seen := registry[p.ExternalID]
				if !seen {
					registry[p.ExternalID] = Owner{Locality: loc.Name, DistanceKM: d}
					continue
				}
				stats.DuplicatesFound++
				if d < cur.DistanceKM {
					registry[p.ExternalID] = Owner{Locality: loc.Name, DistanceKM: d}
				}
			}
		}
	}
	return registry
}

// distanceFunc returns the place-distance function for one locality.
// A locality without coordinates cannot compete on distance, so its
// places register at +Inf: it keeps a place only if nobody with a known
// distance also reports it (first-seen fallback).
func distanceFunc(loc model.LocalityRecord, stats *Stats, log *zap.Logger) func(model.AmenityPlace) float64 {
	if !loc.HasCoordinates() {
		warn := "no coordinates for " + loc.Name + "; ownership falls back to first-seen order"
		stats.Warnings = append(stats.Warnings, warn)
		log.Warn("no coordinates, distance unknown", zap.String("locality", loc.Name))
		return func(model.AmenityPlace) float64 { return math.Inf(1) }
	}
	lat, lng := *loc.Latitude, *loc.Longitude
	return func(p model.AmenityPlace) float64 {
		return geo.DistanceKM(lat, lng, p.Lat, p.Lng)
	}
}
