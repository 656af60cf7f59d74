// Package prices estimates land and apartment prices per locality by
// searching listing sites and having Claude extract structured figures
// from the result snippets.
package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kerala-atlas/locality-cli/internal/model"
	"github.com/kerala-atlas/locality-cli/pkg/anthropic"
	"github.com/kerala-atlas/locality-cli/pkg/serper"
)

const systemPrompt = `You extract real estate prices for localities in Thiruvananthapuram (Trivandrum), Kerala from web search snippets.

Land prices in Kerala are quoted in lakhs of rupees per cent (1 cent = 435.6 sqft). Apartment prices are quoted in rupees per sqft.

From the snippets, estimate a typical residential land price (lakhs per cent) and apartment price (rupees per sqft) for the locality. Give a confidence of "high", "medium", or "low" based on how many consistent figures you found. Use null when the snippets contain no usable figure.

Respond with ONLY a JSON object:
{"land_price_per_cent": 12.5, "land_price_range": "10-15", "apartment_price_per_sqft": 5500, "apartment_price_range": "5000-6000", "confidence": "medium"}`

// Estimator fetches and extracts price data.
type Estimator struct {
	search    serper.Client
	ai        anthropic.Client
	model     string
	maxTokens int64
	city      string
}

// New creates an Estimator.
func New(search serper.Client, ai anthropic.Client, aiModel string, maxTokens int64, city string) *Estimator {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	if city == "" {
		city = "Thiruvananthapuram"
	}
	return &Estimator{search: search, ai: ai, model: aiModel, maxTokens: maxTokens, city: city}
}

// EstimateAll fills prices for every successfully collected locality.
// Records that already carry prices are skipped unless force is set.
// The input is not modified.
func (e *Estimator) EstimateAll(ctx context.Context, localities []model.LocalityRecord, force bool) ([]model.LocalityRecord, error) {
	out := make([]model.LocalityRecord, len(localities))
	var priced, skipped, failed int

	for i := range localities {
		rec := localities[i].Clone()
		out[i] = rec

		if rec.Status != model.StatusSuccess {
			skipped++
			continue
		}
		if (rec.Price.LandPerCent != nil || rec.Price.ApartmentSqft != nil) && !force {
			skipped++
			continue
		}

		price, err := e.estimateOne(ctx, rec.Name)
		if err != nil {
			if ctx.Err() != nil {
				return out, err
			}
			failed++
			zap.L().Error("price estimation failed",
				zap.String("locality", rec.Name),
				zap.Error(err),
			)
			continue
		}

		rec.Price = *price
		out[i] = rec
		priced++
	}

	zap.L().Info("price estimation complete",
		zap.Int("priced", priced),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)
	return out, nil
}

func (e *Estimator) estimateOne(ctx context.Context, name string) (*model.Price, error) {
	queries := []string{
		fmt.Sprintf("land price per cent %s %s residential plot", name, e.city),
		fmt.Sprintf("apartment price per sqft %s %s flat", name, e.city),
	}

	var snippets []string
	for _, q := range queries {
		resp, err := e.search.Search(ctx, q, serper.WithNumResults(10))
		if err != nil {
			return nil, eris.Wrap(err, "prices: search")
		}
		for _, r := range resp.Organic {
			snippets = append(snippets, r.Title+": "+r.Snippet)
		}
	}

	if len(snippets) == 0 {
		zap.L().Warn("no listing snippets found", zap.String("locality", name))
		return &model.Price{Confidence: model.ConfidenceLow}, nil
	}

	return e.extract(ctx, name, snippets)
}

type rawPrice struct {
	LandPerCent    *float64 `json:"land_price_per_cent"`
	LandRange      string   `json:"land_price_range"`
	ApartmentSqft  *float64 `json:"apartment_price_per_sqft"`
	ApartmentRange string   `json:"apartment_price_range"`
	Confidence     string   `json:"confidence"`
}

// extract asks Claude to turn listing snippets into structured prices.
func (e *Estimator) extract(ctx context.Context, name string, snippets []string) (*model.Price, error) {
	userMsg := fmt.Sprintf("Locality: %s\n\nSearch snippets:\n%s", name, strings.Join(snippets, "\n"))

	resp, err := e.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		System:    systemPrompt,
		Messages:  []anthropic.Message{{Role: "user", Content: userMsg}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "prices: claude request")
	}
	resp.Usage.LogCost(e.model, "prices")

	text := resp.Text()
	jsonStart := strings.Index(text, "{")
	jsonEnd := strings.LastIndex(text, "}")
	if jsonStart < 0 || jsonEnd <= jsonStart {
		return nil, eris.Errorf("prices: no JSON in response: %s", text)
	}

	var raw rawPrice
	if err := json.Unmarshal([]byte(text[jsonStart:jsonEnd+1]), &raw); err != nil {
		return nil, eris.Wrap(err, "prices: parse response JSON")
	}

	price := &model.Price{
		LandPerCent:    sanitize(raw.LandPerCent),
		LandRange:      raw.LandRange,
		ApartmentSqft:  sanitize(raw.ApartmentSqft),
		ApartmentRange: raw.ApartmentRange,
		Confidence:     normalizeConfidence(raw.Confidence),
	}
	return price, nil
}

// sanitize drops non-positive figures.
func sanitize(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

func normalizeConfidence(c string) model.Confidence {
	switch model.Confidence(strings.ToLower(strings.TrimSpace(c))) {
	case model.ConfidenceHigh:
		return model.ConfidenceHigh
	case model.ConfidenceMedium:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}
