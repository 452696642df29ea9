// internal/pipeline/style.go
//
// Stage 3: rewrite every cleaned item in the presenter's voice. The style
// descriptor is built once per run; failures fall back to the unstyled
// summary.

package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/airwavefm/airwave/internal/llm"
	"github.com/airwavefm/airwave/internal/logbook"
	"github.com/airwavefm/airwave/internal/profile"
)

var (
	capsWordExpr    = regexp.MustCompile(`\b[A-Z]{2,}\b`)
	exclaimWordExpr = regexp.MustCompile(`\b\w+!`)
)

const stylePromptTemplate = `%s

Rewrite this news story in the presenter's exact speaking style and tone.
Match their energy, cadence, and language preferences.
Make it sound natural for radio broadcast.

Original: %s

Provide the rewritten version that sounds like this specific presenter would say it.
Include natural pauses, emphasis points, and their signature style.`

// StyleBatch runs the tone-rewrite stage. Output is 1:1 with input and
// preserves order.
func StyleBatch(ctx context.Context, completer llm.Completer, cleaned []CleanedItem, p *profile.Profile, book *logbook.Logbook) []StyledItem {
	descriptor := styleDescriptor(p)
	language := "English"
	if len(p.PreferredLanguage) > 0 {
		language = p.PreferredLanguage[0]
	}

	styled := make([]StyledItem, 0, len(cleaned))
	for _, item := range cleaned {
		prompt := fmt.Sprintf(stylePromptTemplate, descriptor, item.Summary)
		reply, err := complete(ctx, completer, prompt, 400)
		if err != nil {
			book.Warn("pipeline: style %s: %v", item.ID, err)
			styled = append(styled, StyledItem{
				ID:            item.ID,
				OriginalTitle: item.Title,
				StyledContent: item.Summary,
				Tone:          "neutral",
				Language:      "English",
				Emphasis:      []string{},
				Category:      item.Category,
				Source:        item.Source,
			})
			continue
		}
		content := strings.TrimSpace(reply)
		styled = append(styled, StyledItem{
			ID:            item.ID,
			OriginalTitle: item.Title,
			StyledContent: content,
			Tone:          p.FormalityLevel,
			Language:      language,
			Emphasis:      ExtractEmphasis(content),
			Category:      item.Category,
			Source:        item.Source,
		})
	}
	return styled
}

func styleDescriptor(p *profile.Profile) string {
	tone := p.ToneDescription
	if tone == "" {
		tone = "Professional and engaging"
	}
	emojis := "No"
	if p.UseEmojis {
		emojis = "Yes"
	}
	return fmt.Sprintf(`Presenter Profile:
- Languages: %s
- Speaking Speed: %s
- Signature Intro: %q
- Signature Outro: %q
- Tone: %s
- Formality: %s
- Use Emojis: %s`,
		strings.Join(p.PreferredLanguage, ", "),
		p.SpeakingSpeed,
		p.SignatureIntro,
		p.SignatureOutro,
		tone,
		p.FormalityLevel,
		emojis,
	)
}

// ExtractEmphasis collects ALL-CAPS words and words directly before an
// exclamation mark, deduplicated in order of first appearance.
func ExtractEmphasis(text string) []string {
	emphasis := []string{}
	seen := map[string]bool{}
	add := func(word string) {
		if word == "" || seen[word] {
			return
		}
		seen[word] = true
		emphasis = append(emphasis, word)
	}
	for _, word := range capsWordExpr.FindAllString(text, -1) {
		add(word)
	}
	for _, word := range exclaimWordExpr.FindAllString(text, -1) {
		add(strings.TrimSuffix(word, "!"))
	}
	return emphasis
}
