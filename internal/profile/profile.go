// internal/profile/profile.go
//
// Presenter profiles: voice, signature phrases, and the show structure the
// template stage builds scripts around.

package profile

import "time"

// ShowSection is one entry in a presenter's show structure. Duration is
// advisory seconds; Order is the sort key within the profile.
type ShowSection struct {
	Section  string `json:"section"`
	Duration int    `json:"duration"`
	Order    int    `json:"order"`
}

// Profile holds everything the pipeline needs to speak like its presenter.
type Profile struct {
	UserID              string        `json:"userId"`
	PreferredLanguage   []string      `json:"preferredLanguage"`
	SpeakingSpeed       string        `json:"speakingSpeed"`
	SignatureIntro      string        `json:"signatureIntro"`
	SignatureOutro      string        `json:"signatureOutro"`
	TopicPreferences    []string      `json:"topicPreferences"`
	ShowStructure       []ShowSection `json:"showStructure"`
	ToneDescription     string        `json:"toneDescription"`
	FormalityLevel      string        `json:"formalityLevel"`
	UseEmojis           bool          `json:"useEmojis"`
	OnboardingCompleted bool          `json:"onboardingCompleted"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

// DefaultShowStructure returns the structure new profiles start with.
func DefaultShowStructure() []ShowSection {
	return []ShowSection{
		{Section: "intro", Duration: 30, Order: 1},
		{Section: "weather", Duration: 60, Order: 2},
		{Section: "trending_news", Duration: 180, Order: 3},
		{Section: "global_headlines", Duration: 120, Order: 4},
		{Section: "human_interest", Duration: 90, Order: 5},
		{Section: "traffic", Duration: 60, Order: 6},
		{Section: "outro", Duration: 30, Order: 7},
	}
}

func defaultProfile(userID string, now time.Time) *Profile {
	return &Profile{
		UserID:            userID,
		PreferredLanguage: []string{"English"},
		SpeakingSpeed:     "medium",
		TopicPreferences:  []string{},
		ShowStructure:     DefaultShowStructure(),
		FormalityLevel:    "professional",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Patch carries a partial profile update. Nil fields are left untouched.
type Patch struct {
	PreferredLanguage   *[]string      `json:"preferredLanguage"`
	SpeakingSpeed       *string        `json:"speakingSpeed"`
	SignatureIntro      *string        `json:"signatureIntro"`
	SignatureOutro      *string        `json:"signatureOutro"`
	TopicPreferences    *[]string      `json:"topicPreferences"`
	ShowStructure       *[]ShowSection `json:"showStructure"`
	ToneDescription     *string        `json:"toneDescription"`
	FormalityLevel      *string        `json:"formalityLevel"`
	UseEmojis           *bool          `json:"useEmojis"`
	OnboardingCompleted *bool          `json:"onboardingCompleted"`
}

// NormalizeStructure backfills missing Order values by position and defaults
// Duration to 60 seconds, matching what profile updates have always done.
func NormalizeStructure(sections []ShowSection) []ShowSection {
	out := make([]ShowSection, len(sections))
	for i, s := range sections {
		if s.Duration <= 0 {
			s.Duration = 60
		}
		if s.Order == 0 {
			s.Order = i + 1
		}
		out[i] = s
	}
	return out
}
