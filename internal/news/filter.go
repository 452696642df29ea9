package news

import "strings"

// categoryKeywords backs the keyword heuristic used when a show only wants
// certain kinds of stories.
var categoryKeywords = map[string][]string{
	"politics":      {"president", "government", "election", "senate", "policy", "minister"},
	"sports":        {"football", "team", "match", "tournament", "player", "coach"},
	"entertainment": {"film", "music", "celebrity", "movie", "artist", "award", "festival"},
	"business":      {"economy", "market", "business", "trade", "investment", "startup"},
	"technology":    {"tech", "digital", "internet", "software", "innovation", "ai"},
	"health":        {"health", "hospital", "doctor", "medical", "disease", "treatment"},
}

// FilterByCategory keeps items whose title or content mentions a keyword of
// any requested category. An empty category list keeps everything.
func FilterByCategory(items []Item, categories []string) []Item {
	if len(categories) == 0 {
		return items
	}
	var kept []Item
	for _, item := range items {
		text := strings.ToLower(item.Title + " " + item.Content)
		for _, category := range categories {
			if matchesCategory(text, category) {
				kept = append(kept, item)
				break
			}
		}
	}
	return kept
}

func matchesCategory(text, category string) bool {
	for _, keyword := range categoryKeywords[strings.ToLower(category)] {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
