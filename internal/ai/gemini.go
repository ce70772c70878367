package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/gleamhunt/gleam-finder/internal/models"
)

type Client struct {
	model *genai.GenerativeModel
}

type AnalysisResult struct {
	PrizeSummary string `json:"prize_summary"`
	IsHighValue  bool   `json:"is_high_value"`
}

func NewClient(ctx context.Context, apiKey, modelID string) (*Client, error) {
	if apiKey == "" {
		return nil, nil // Return nil client if no key provided
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelID)
	model.SetTemperature(0.1) // Low temperature for deterministic output
	model.ResponseMIMEType = "application/json"

	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"prize_summary": {
				Type:        genai.TypeString,
				Description: "A concise 5-15 word summary of what the giveaway's prize actually is. Strip hype words, emoji and entry instructions.",
			},
			"is_high_value": {
				Type:        genai.TypeBoolean,
				Description: "True if the prize seems worth over roughly $500 (hardware, consoles, large gift cards, cash). False otherwise.",
			},
		},
		Required: []string{"prize_summary", "is_high_value"},
	}

	return &Client{model: model}, nil
}

// AnalyzeGiveaway returns a cleaned prize summary and a high-value flag.
// A nil receiver degrades to empty results so callers need no key check.
func (c *Client) AnalyzeGiveaway(ctx context.Context, g *models.Giveaway) (string, bool, error) {
	if c == nil || c.model == nil {
		return "", false, nil // Graceful degradation
	}

	prompt := fmt.Sprintf(`
Analyze this gleam.io giveaway:
Name: "%s"
Prize description: "%s"
Entry methods: %d, worth %d total entries

Task:
1. Summarize the actual prize in 5-15 words. Drop hype ("MEGA", "INSANE"), emoji and entry instructions.
2. Decide if the prize is high value (roughly $500+: hardware, consoles, large gift cards, cash prizes).

Output JSON adhering to the schema.
`, g.Name, g.Description, len(g.EntryMethods), g.MaxEntries())

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", false, fmt.Errorf("gemini generation failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", false, fmt.Errorf("no response candidates from gemini")
	}

	var result AnalysisResult
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			// Clean up potential markdown formatting just in case
			jsonStr := strings.TrimSpace(string(txt))
			jsonStr = strings.TrimPrefix(jsonStr, "```json")
			jsonStr = strings.TrimPrefix(jsonStr, "```")
			jsonStr = strings.TrimSuffix(jsonStr, "```")

			if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
				return "", false, fmt.Errorf("failed to parse gemini response: %w", err)
			}
			return result.PrizeSummary, result.IsHighValue, nil
		}
	}

	return "", false, fmt.Errorf("no text part in response")
}
