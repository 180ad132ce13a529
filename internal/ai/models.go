package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ModelInfo decorates an upstream model id with curated ratings the client
// renders as pickers. Ratings are 1-5; cost 1 is cheapest, speed 5 is
// fastest.
type ModelInfo struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Icon         string  `json:"icon"`
	Power        int     `json:"power"`
	Cost         int     `json:"cost"`
	Speed        int     `json:"speed"`
	SpecialLabel *string `json:"special_label,omitempty"`
}

type ModelList struct {
	Data    []ModelInfo `json:"data"`
	HasMore bool        `json:"has_more"`
	FirstID *string     `json:"first_id"`
	LastID  *string     `json:"last_id"`
}

type upstreamModelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
	HasMore bool    `json:"has_more"`
	FirstID *string `json:"first_id"`
	LastID  *string `json:"last_id"`
}

func label(s string) *string { return &s }

func modelMetadata(id string) ModelInfo {
	switch id {
	case "claude-3-haiku-20240307":
		return ModelInfo{
			ID: id, Name: "Claude 3 Haiku",
			Description: "Fast and cost-effective for simple tasks",
			Icon:        "⚡", Power: 2, Cost: 1, Speed: 5,
		}
	case "claude-3-5-haiku-20241022":
		return ModelInfo{
			ID: id, Name: "Claude 3.5 Haiku",
			Description: "Enhanced speed and intelligence",
			Icon:        "🚀", Power: 3, Cost: 2, Speed: 5,
			SpecialLabel: label("latest"),
		}
	case "claude-3-5-sonnet-20241022":
		return ModelInfo{
			ID: id, Name: "Claude 3.5 Sonnet",
			Description: "Balanced performance and capability",
			Icon:        "🎼", Power: 4, Cost: 3, Speed: 4,
			SpecialLabel: label("flagship"),
		}
	case "claude-sonnet-4-20250514":
		return ModelInfo{
			ID: id, Name: "Claude Sonnet 4",
			Description: "Most advanced model with superior intelligence",
			Icon:        "🧠", Power: 5, Cost: 4, Speed: 3,
			SpecialLabel: label("most powerful"),
		}
	case "claude-3-opus-20240229":
		return ModelInfo{
			ID: id, Name: "Claude 3 Opus",
			Description: "Powerful model for complex tasks",
			Icon:        "💎", Power: 5, Cost: 5, Speed: 2,
		}
	default:
		return ModelInfo{
			ID: id, Name: "Model " + id,
			Description: "Advanced AI model",
			Icon:        "🤖", Power: 3, Cost: 3, Speed: 3,
		}
	}
}

// ListModels proxies the upstream models list, decorated with local ratings
// and sorted most powerful first.
func (c *Client) ListModels(ctx context.Context) (*ModelList, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v1/models", nil)
	if err != nil {
		return nil, fmt.Errorf("build models request: %w", err)
	}
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", c.cfg.APIVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("anthropic api error: %s", resp.Status)
	}

	var upstream upstreamModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&upstream); err != nil {
		return nil, fmt.Errorf("decode models response: %w", err)
	}

	models := make([]ModelInfo, 0, len(upstream.Data))
	for _, m := range upstream.Data {
		models = append(models, modelMetadata(m.ID))
	}

	sort.Slice(models, func(i, j int) bool {
		if models[i].Power != models[j].Power {
			return models[i].Power > models[j].Power
		}
		return strings.Compare(models[i].Name, models[j].Name) < 0
	})

	return &ModelList{
		Data:    models,
		HasMore: upstream.HasMore,
		FirstID: upstream.FirstID,
		LastID:  upstream.LastID,
	}, nil
}
