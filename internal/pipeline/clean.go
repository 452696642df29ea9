// internal/pipeline/clean.go
//
// Stage 2: editorial cleanup. One completion per item; a failed item falls
// back to a truncation of the raw input so the batch shape never changes.

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/airwavefm/airwave/internal/llm"
	"github.com/airwavefm/airwave/internal/logbook"
	"github.com/airwavefm/airwave/internal/news"
)

const cleanPromptTemplate = `You are a professional news editor. Clean and summarize the following news article for radio broadcast.
Remove any ads, promotional content, or irrelevant information.
Create a concise, clear summary suitable for a radio presenter.

Title: %s
Content: %s

Provide:
1. A cleaned title (max 15 words)
2. A broadcast-ready summary (max 50 words)
3. A relevance score (0-10) for general audience
4. A category (politics, sports, entertainment, business, health, technology, or general)

Format as JSON:
{
  "title": "cleaned title",
  "summary": "broadcast summary",
  "relevanceScore": 8,
  "category": "politics"
}`

// CleanBatch runs the cleanup stage. Output is 1:1 with input and preserves
// order; a single bad item never aborts the batch.
func CleanBatch(ctx context.Context, completer llm.Completer, items []news.Item, book *logbook.Logbook) []CleanedItem {
	cleaned := make([]CleanedItem, 0, len(items))
	for _, item := range items {
		prompt := fmt.Sprintf(cleanPromptTemplate, item.Title, item.Content)
		reply, err := complete(ctx, completer, prompt, 300)
		if err != nil {
			book.Warn("pipeline: clean %s: %v", item.ID, err)
			cleaned = append(cleaned, CleanedItem{
				ID:             item.ID,
				Source:         item.Source,
				Title:          item.Title,
				Summary:        truncate(item.Content, 200),
				Category:       "general",
				RelevanceScore: 5,
				OriginalURL:    item.URL,
			})
			continue
		}

		var parsed struct {
			Title          string `json:"title"`
			Summary        string `json:"summary"`
			RelevanceScore int    `json:"relevanceScore"`
			Category       string `json:"category"`
		}
		if err := json.Unmarshal([]byte(cleanJSONResponse(reply)), &parsed); err != nil {
			parsed.Title = truncate(item.Title, 100)
			parsed.Summary = truncate(item.Content, 200)
			parsed.RelevanceScore = 7
			parsed.Category = "general"
		}
		if parsed.Title == "" {
			parsed.Title = item.Title
		}
		if parsed.Summary == "" {
			parsed.Summary = truncate(item.Content, 200)
		}
		if parsed.Category == "" {
			parsed.Category = "general"
		}
		if parsed.RelevanceScore == 0 {
			parsed.RelevanceScore = 7
		}
		cleaned = append(cleaned, CleanedItem{
			ID:             item.ID,
			Source:         item.Source,
			Title:          parsed.Title,
			Summary:        parsed.Summary,
			Category:       parsed.Category,
			RelevanceScore: parsed.RelevanceScore,
			OriginalURL:    item.URL,
		})
	}
	return cleaned
}

// cleanJSONResponse strips markdown code fences some models wrap JSON in.
func cleanJSONResponse(response string) string {
	cleaned := strings.TrimSpace(response)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}
	return cleaned
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
