// internal/pipeline/chunk.go
//
// Stage 5: flatten the populated script into teleprompter chunks. Splitting
// is sentence-level and lossy on purpose: every chunk is renormalized to end
// with a single period so playback pacing stays uniform.

package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	sentenceSplitExpr = regexp.MustCompile(`[.!?]+`)
	emphasisExpr      = regexp.MustCompile(`[A-Z]{2,}|!`)
	pauseMarkExpr     = regexp.MustCompile(`[,—…]`)
)

const (
	pausePerMark      = 500  // ms per comma, dash, or ellipsis
	sectionBreakPause = 2000 // ms between sections
)

// GenerateTeleprompter runs the chunking stage. Every non-outro section is
// followed by a break chunk so playback pauses between sections.
func GenerateTeleprompter(populated PopulatedScript) TeleprompterScript {
	var chunks []Chunk
	for _, section := range populated.Sections {
		for _, sentence := range sentenceSplitExpr.Split(section.Content, -1) {
			trimmed := strings.TrimSpace(sentence)
			if trimmed == "" {
				continue
			}
			chunks = append(chunks, Chunk{
				Text:        trimmed + ".",
				Emphasis:    emphasisExpr.MatchString(trimmed),
				Pause:       pausePerMark * len(pauseMarkExpr.FindAllString(trimmed, -1)),
				Notes:       fmt.Sprintf("[%s]", section.Type),
				SectionType: section.Type,
			})
		}
		if ParseSectionKind(section.Type) != SectionOutro {
			chunks = append(chunks, Chunk{
				Text:        "",
				Emphasis:    false,
				Pause:       sectionBreakPause,
				Notes:       fmt.Sprintf("[End of %s]", section.Type),
				SectionType: "break",
			})
		}
	}
	return TeleprompterScript{Chunks: chunks}
}
