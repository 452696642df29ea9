// internal/script/script.go
//
// Persisted show scripts. A script carries every stage artifact of a pipeline
// run so the teleprompter (and the API) can replay or inspect any of them.

package script

import (
	"encoding/json"
	"time"
)

// Status tracks a script through its lifecycle.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusDelivered  Status = "delivered"
)

// Script is the persisted aggregate of one pipeline run. Stage payloads are
// kept as raw JSON; the pipeline owns their shapes.
type Script struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	Title        string          `json:"title"`
	RawNews      json.RawMessage `json:"rawNews"`
	CleanedNews  json.RawMessage `json:"cleanedNews"`
	StyledNews   json.RawMessage `json:"styledNews"`
	Populated    json.RawMessage `json:"populated"`
	Teleprompter json.RawMessage `json:"teleprompter"`
	Status       Status          `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}
