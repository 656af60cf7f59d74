// Package ratings fills in the subjective 1-5 aspect ratings that no
// API can measure directly, using Claude's local knowledge of the city.
package ratings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kerala-atlas/locality-cli/internal/model"
	"github.com/kerala-atlas/locality-cli/pkg/anthropic"
)

// Aspects are the subjective dimensions requested for every locality.
var Aspects = []string{
	"public_transport",
	"road_quality",
	"safety_score",
	"flooding_risk",
	"cleanliness",
	"school_quality",
	"air_quality",
	"healthcare_access",
	"commercial_vibrancy",
	"noise_level",
	"green_cover",
	"urban_character",
	"prestige",
	"infrastructure_maturity",
	"future_potential",
}

const systemPrompt = `You are a long-time resident and urban planning expert for Thiruvananthapuram (Trivandrum), Kerala, India. You rate localities on specific aspects.

For each aspect, give a rating from 1 (very poor) to 5 (excellent) and a confidence of "high", "medium", or "low". Use "low" when you genuinely do not know the locality well.

Respond with ONLY a JSON object of the form:
{"aspect_name": {"rating": 4, "confidence": "high"}, ...}`

// Rater scores localities on subjective aspects.
type Rater struct {
	ai        anthropic.Client
	model     string
	maxTokens int64
}

// New creates a Rater.
func New(ai anthropic.Client, aiModel string, maxTokens int64) *Rater {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Rater{ai: ai, model: aiModel, maxTokens: maxTokens}
}

// RateAll rates every successfully collected locality. Already-rated
// records are skipped unless force is set. The input is not modified.
func (r *Rater) RateAll(ctx context.Context, localities []model.LocalityRecord, force bool) ([]model.LocalityRecord, error) {
	out := make([]model.LocalityRecord, len(localities))
	var rated, skipped, failed int

	for i := range localities {
		rec := localities[i].Clone()
		out[i] = rec

		if rec.Status != model.StatusSuccess {
			skipped++
			continue
		}
		if len(rec.Subjective) > 0 && !force {
			skipped++
			continue
		}

		ratings, err := r.rateOne(ctx, rec.Name)
		if err != nil {
			if ctx.Err() != nil {
				return out, err
			}
			failed++
			zap.L().Error("rating failed",
				zap.String("locality", rec.Name),
				zap.Error(err),
			)
			continue
		}

		rec.Subjective = ratings
		out[i] = rec
		rated++
	}

	zap.L().Info("subjective ratings complete",
		zap.Int("rated", rated),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)
	return out, nil
}

// rateOne asks Claude for all aspect ratings of one locality.
func (r *Rater) rateOne(ctx context.Context, name string) (map[string]model.SubjectiveRating, error) {
	userMsg := fmt.Sprintf("Locality: %s\n\nRate these aspects: %s", name, strings.Join(Aspects, ", "))

	resp, err := r.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     r.model,
		MaxTokens: r.maxTokens,
		System:    systemPrompt,
		Messages:  []anthropic.Message{{Role: "user", Content: userMsg}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "ratings: claude request")
	}
	resp.Usage.LogCost(r.model, "ratings")

	text := resp.Text()
	if text == "" {
		return nil, eris.New("ratings: empty claude response")
	}

	parsed, err := parseRatings(text)
	if err != nil {
		return nil, err
	}
	if len(parsed) == 0 {
		return nil, eris.Errorf("ratings: no known aspects in response: %s", text)
	}
	return parsed, nil
}

type rawRating struct {
	Rating     float64 `json:"rating"`
	Confidence string  `json:"confidence"`
}

// parseRatings extracts the JSON object from the response text, which
// may carry surrounding prose, and normalizes each rating.
func parseRatings(text string) (map[string]model.SubjectiveRating, error) {
	jsonStart := strings.Index(text, "{")
	jsonEnd := strings.LastIndex(text, "}")
	if jsonStart < 0 || jsonEnd <= jsonStart {
		return nil, eris.Errorf("ratings: no JSON in response: %s", text)
	}

	var raw map[string]rawRating
	if err := json.Unmarshal([]byte(text[jsonStart:jsonEnd+1]), &raw); err != nil {
		return nil, eris.Wrap(err, "ratings: parse response JSON")
	}

	known := make(map[string]bool, len(Aspects))
	for _, a := range Aspects {
		known[a] = true
	}

	out := make(map[string]model.SubjectiveRating)
	for aspect, rr := range raw {
		if !known[aspect] {
			zap.L().Debug("unknown aspect in response", zap.String("aspect", aspect))
			continue
		}
		out[aspect] = model.SubjectiveRating{
			Value:      clampRating(rr.Rating),
			Confidence: normalizeConfidence(rr.Confidence),
		}
	}
	return out, nil
}

func clampRating(v float64) float64 {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}

func normalizeConfidence(c string) model.Confidence {
	switch model.Confidence(strings.ToLower(strings.TrimSpace(c))) {
	case model.ConfidenceHigh:
		return model.ConfidenceHigh
	case model.ConfidenceLow:
		return model.ConfidenceLow
	default:
		return model.ConfidenceMedium
	}
}
