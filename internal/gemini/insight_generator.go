package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/evenmoney/bookbot/internal/models"
)

// GenerateInsightsTimeout is the timeout for insight generation.
const GenerateInsightsTimeout = 20 * time.Second

// MaxInsights caps how many insights one generation run produces.
const MaxInsights = 3

// ErrNoInsights indicates Gemini produced no usable insights.
var ErrNoInsights = errors.New("no insights generated")

// insightResponse is one element of the JSON array returned by Gemini.
type insightResponse struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

// GenerateInsights asks Gemini for short financial observations about
// the given transactions. Returned insights carry only title, content
// and type; the repository stamps IDs, book and date on save.
func (c *Client) GenerateInsights(ctx context.Context, transactions []models.Transaction) ([]models.Insight, error) {
	if len(transactions) == 0 {
		return nil, ErrNoInsights
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, GenerateInsightsTimeout)
	defer cancel()

	var summary strings.Builder
	for _, t := range transactions {
		fmt.Fprintf(&summary, "%s: %s of %s in %s\n",
			t.Date.Format("2006-01-02"), t.Type, t.Amount.String(), t.Category)
	}

	prompt := fmt.Sprintf(`Based on these transactions, provide up to %d short, punchy financial insights or tips. Focus on trends and savings.
Each insight has a title (a few words), a content sentence, and a type of "info", "warning" or "success".

Transactions:
%s`, MaxInsights, summary.String())

	resp, err := c.generator.GenerateContent(timeoutCtx, ModelName, []*genai.Content{
		{Parts: []*genai.Part{{Text: prompt}}},
	}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   insightSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate insights: %w", err)
	}

	content := responseText(resp)
	if content == "" {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	return parseInsightsResponse(content)
}

func insightSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title":   {Type: genai.TypeString},
				"content": {Type: genai.TypeString},
				"type": {
					Type:        genai.TypeString,
					Description: "One of: info, warning, success",
				},
			},
			Required: []string{"title", "content", "type"},
		},
	}
}

func parseInsightsResponse(response string) ([]models.Insight, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var items []insightResponse
	if err := json.Unmarshal([]byte(response), &items); err != nil {
		return nil, fmt.Errorf("failed to parse insights response: %w", err)
	}

	insights := make([]models.Insight, 0, MaxInsights)
	for _, item := range items {
		if len(insights) == MaxInsights {
			break
		}
		title := strings.TrimSpace(item.Title)
		content := strings.TrimSpace(item.Content)
		if title == "" || content == "" {
			continue
		}
		insightType := models.InsightType(strings.ToLower(strings.TrimSpace(item.Type)))
		switch insightType {
		case models.InsightInfo, models.InsightWarning, models.InsightSuccess:
		default:
			insightType = models.InsightInfo
		}
		insights = append(insights, models.Insight{
			Title:   title,
			Content: content,
			Type:    insightType,
		})
	}
	if len(insights) == 0 {
		return nil, ErrNoInsights
	}
	return insights, nil
}
