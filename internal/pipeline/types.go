// internal/pipeline/types.go
//
// Stage artifacts for the script pipeline. Each stage consumes the previous
// stage's type and never mutates it.

package pipeline

// CleanedItem is one news item after editorial cleanup. Score and category
// are advisory; downstream stages use them for ordering and grouping only.
type CleanedItem struct {
	ID             string `json:"id"`
	Source         string `json:"source"`
	Title          string `json:"title"`
	Summary        string `json:"summary"`
	Category       string `json:"category"`
	RelevanceScore int    `json:"relevanceScore"`
	OriginalURL    string `json:"originalUrl"`
}

// StyledItem is a cleaned item rewritten in the presenter's voice.
type StyledItem struct {
	ID            string   `json:"id"`
	OriginalTitle string   `json:"originalTitle"`
	StyledContent string   `json:"styledContent"`
	Tone          string   `json:"tone"`
	Language      string   `json:"language"`
	Emphasis      []string `json:"emphasis"`
	Category      string   `json:"category"`
	Source        string   `json:"source"`
}

// Section is one populated show section.
type Section struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	Duration int    `json:"duration"`
	Order    int    `json:"order"`
}

// PopulatedScript is the show template with every section filled in.
type PopulatedScript struct {
	Sections []Section `json:"sections"`
}

// Chunk is one teleprompter unit: roughly a sentence, plus pause and
// presenter notes. A break chunk has empty text and SectionType "break".
type Chunk struct {
	Text        string `json:"text"`
	Emphasis    bool   `json:"emphasis"`
	Pause       int    `json:"pause"`
	Notes       string `json:"notes"`
	SectionType string `json:"sectionType"`
}

// TeleprompterScript is the final playback artifact.
type TeleprompterScript struct {
	Chunks []Chunk `json:"chunks"`
}
