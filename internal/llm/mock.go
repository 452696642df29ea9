package llm

import (
	"context"
	"strings"
)

// Mock is the Completer used when no API key is configured. It shapes its
// reply to the prompt so every pipeline stage still gets parseable output.
type Mock struct{}

var _ Completer = (*Mock)(nil)

// Complete returns a canned reply matching the kind of prompt it received.
func (Mock) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.Contains(prompt, "relevanceScore") {
		return `{"title": "Local Update Keeps the City Talking", "summary": "A brief update on developments around the city, with officials promising more detail soon.", "relevanceScore": 6, "category": "general"}`, nil
	}
	return "And here is something you will want to hear! Local officials say the city is moving FORWARD, and honestly, it is about time.", nil
}
