// internal/pipeline/template.go
//
// Stage 4: populate the presenter's show structure. Fully deterministic; the
// only inputs are the styled batch, the structure, and the profile.

package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/airwavefm/airwave/internal/profile"
)

// SectionKind classifies a show section name. Unrecognized names map to
// SectionOther and keep their raw string.
type SectionKind int

const (
	SectionOther SectionKind = iota
	SectionIntro
	SectionWeather
	SectionTrendingNews
	SectionGlobalHeadlines
	SectionHumanInterest
	SectionTraffic
	SectionOutro
)

// ParseSectionKind normalizes a section name (case-insensitive, spaces and
// underscores fold together) and classifies it.
func ParseSectionKind(name string) SectionKind {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	switch normalized {
	case "intro":
		return SectionIntro
	case "weather":
		return SectionWeather
	case "trending_news":
		return SectionTrendingNews
	case "global_headlines":
		return SectionGlobalHeadlines
	case "human_interest":
		return SectionHumanInterest
	case "traffic":
		return SectionTraffic
	case "outro":
		return SectionOutro
	default:
		return SectionOther
	}
}

const (
	fallbackIntro         = "Good morning everyone! Welcome to the show. I'm your host, and we've got an amazing lineup for you today."
	fallbackOutro         = "That's all for today folks! Thanks for tuning in. Stay blessed and I'll catch you next time!"
	weatherFiller         = "Let's check out the weather. It's looking like a beautiful day ahead, so make sure you're prepared!"
	trafficFiller         = "Traffic update: Roads are looking good this morning. Stay safe out there!"
	humanInterestFallback = "Here's an inspiring story that'll warm your heart..."
)

// PopulateTemplate fills each configured section with content. Sections are
// emitted in ascending Order; equal orders keep their configured position.
func PopulateTemplate(styled []StyledItem, structure []profile.ShowSection, p *profile.Profile) PopulatedScript {
	sorted := make([]profile.ShowSection, len(structure))
	copy(sorted, structure)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	sections := make([]Section, 0, len(sorted))
	for _, entry := range sorted {
		sections = append(sections, Section{
			Type:     entry.Section,
			Content:  sectionContent(entry.Section, styled, p),
			Duration: entry.Duration,
			Order:    entry.Order,
		})
	}
	return PopulatedScript{Sections: sections}
}

func sectionContent(name string, styled []StyledItem, p *profile.Profile) string {
	switch ParseSectionKind(name) {
	case SectionIntro:
		if p.SignatureIntro != "" {
			return p.SignatureIntro
		}
		return fallbackIntro

	case SectionWeather:
		return weatherFiller

	case SectionTrendingNews:
		return joinStories(firstN(styled, 0, 3), "Story")

	case SectionGlobalHeadlines:
		return joinStories(firstN(styled, 3, 5), "International news")

	case SectionHumanInterest:
		for _, item := range styled {
			if item.Category == "entertainment" || item.Category == "general" {
				return item.StyledContent
			}
		}
		return humanInterestFallback

	case SectionTraffic:
		return trafficFiller

	case SectionOutro:
		if p.SignatureOutro != "" {
			return p.SignatureOutro
		}
		return fallbackOutro

	default:
		return fmt.Sprintf("[%s section]", name)
	}
}

func firstN(styled []StyledItem, from, to int) []StyledItem {
	if from >= len(styled) {
		return nil
	}
	if to > len(styled) {
		to = len(styled)
	}
	return styled[from:to]
}

func joinStories(items []StyledItem, label string) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("%s %d: %s", label, i+1, item.StyledContent)
	}
	return strings.Join(parts, "\n\n")
}
