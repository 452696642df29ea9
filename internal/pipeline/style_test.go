package pipeline

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/airwavefm/airwave/internal/profile"
)

func testProfile() *profile.Profile {
	return &profile.Profile{
		UserID:            "sofia",
		PreferredLanguage: []string{"English", "Italian"},
		SpeakingSpeed:     "fast",
		SignatureIntro:    "Goooood morning, city!",
		SignatureOutro:    "Stay golden, see you tomorrow!",
		ToneDescription:   "Energetic, warm",
		FormalityLevel:    "casual",
		ShowStructure:     profile.DefaultShowStructure(),
	}
}

func TestStyleBatchCarriesProfileVoice(t *testing.T) {
	var gotPrompt string
	completer := fakeCompleter{fn: func(prompt string) (string, error) {
		gotPrompt = prompt
		return "  This is HUGE news, folks! Stay tuned.  ", nil
	}}
	cleaned := []CleanedItem{{ID: "a", Title: "T", Summary: "S", Category: "politics", Source: "metro-fm"}}

	styled := StyleBatch(context.Background(), completer, cleaned, testProfile(), nil)
	if len(styled) != 1 {
		t.Fatalf("expected 1 styled item, got %d", len(styled))
	}
	if !strings.Contains(gotPrompt, "Goooood morning, city!") {
		t.Fatal("style prompt missing signature intro")
	}
	if styled[0].StyledContent != "This is HUGE news, folks! Stay tuned." {
		t.Fatalf("content not trimmed: %q", styled[0].StyledContent)
	}
	if styled[0].Tone != "casual" || styled[0].Language != "English" {
		t.Fatalf("tone/language wrong: %+v", styled[0])
	}
	if !reflect.DeepEqual(styled[0].Emphasis, []string{"HUGE", "folks"}) {
		t.Fatalf("emphasis wrong: %v", styled[0].Emphasis)
	}
}

func TestStyleBatchFallsBackPerItem(t *testing.T) {
	completer := fakeCompleter{fn: func(prompt string) (string, error) {
		if strings.Contains(prompt, "works") {
			return "Styled!", nil
		}
		return "", errors.New("model offline")
	}}
	cleaned := []CleanedItem{
		{ID: "a", Title: "A", Summary: "this one works", Category: "sports"},
		{ID: "b", Title: "B", Summary: "this one fails", Category: "health"},
	}
	styled := StyleBatch(context.Background(), completer, cleaned, testProfile(), nil)
	if len(styled) != 2 {
		t.Fatalf("length changed: %d", len(styled))
	}
	if styled[1].StyledContent != "this one fails" {
		t.Fatalf("fallback should keep unstyled summary: %q", styled[1].StyledContent)
	}
	if styled[1].Tone != "neutral" || len(styled[1].Emphasis) != 0 {
		t.Fatalf("fallback tone/emphasis wrong: %+v", styled[1])
	}
	if styled[1].Category != "health" {
		t.Fatalf("category lost in fallback: %+v", styled[1])
	}
}

func TestExtractEmphasis(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{"The BIG and BOLD move shocked everyone!", []string{"BIG", "BOLD", "everyone"}},
		{"WOW! Just WOW!", []string{"WOW"}},
		{"nothing special here", []string{}},
	}
	for _, tc := range cases {
		got := ExtractEmphasis(tc.text)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("ExtractEmphasis(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}
