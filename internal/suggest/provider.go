// Package suggest produces tag candidates for a photo and ranks the existing
// vocabulary against them.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Candidate is a suggested tag with the model's confidence in [0, 1].
type Candidate struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Provider defines the interface for suggestion backends.
type Provider interface {
	Name() string
	SuggestTags(ctx context.Context, imageData []byte, knownTags []string) ([]Candidate, error)

	// Usage tracking.
	GetUsage() *Usage
	ResetUsage()
}

// Usage tracks token usage and calculates cost.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalCost    float64 // in USD
}

// RequestPricing holds input/output prices per 1M tokens.
type RequestPricing struct {
	Input  float64
	Output float64
}

func buildSuggestionPrompt(template string, knownTags []string) string {
	vocabJSON, _ := json.Marshal(knownTags)
	return fmt.Sprintf(template, string(vocabJSON))
}

type suggestionPayload struct {
	Tags []Candidate `json:"tags"`
}

// parseCandidates decodes a model response. Names are normalized to trimmed
// lowercase, confidences clamped to [0, 1], duplicates collapsed keeping the
// highest confidence, and the result sorted by confidence descending.
func parseCandidates(content string) ([]Candidate, error) {
	var payload suggestionPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, err
	}

	best := make(map[string]float64)
	for _, c := range payload.Tags {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name == "" {
			continue
		}
		conf := c.Confidence
		if conf < 0 {
			conf = 0
		}
		if conf > 1 {
			conf = 1
		}
		if conf > best[name] {
			best[name] = conf
		}
	}

	out := make([]Candidate, 0, len(best))
	for name, conf := range best {
		out = append(out, Candidate{Name: name, Confidence: conf})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
