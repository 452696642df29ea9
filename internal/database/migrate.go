package database

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
    user_id              TEXT PRIMARY KEY,
    preferred_languages  TEXT NOT NULL DEFAULT '[]',
    speaking_speed       TEXT NOT NULL DEFAULT 'normal',
    signature_intro      TEXT NOT NULL DEFAULT '',
    signature_outro      TEXT NOT NULL DEFAULT '',
    topic_preferences    TEXT NOT NULL DEFAULT '[]',
    show_structure       TEXT NOT NULL DEFAULT '[]',
    tone_description     TEXT NOT NULL DEFAULT '',
    formality_level      TEXT NOT NULL DEFAULT 'balanced',
    use_emojis           INTEGER NOT NULL DEFAULT 0,
    onboarding_completed INTEGER NOT NULL DEFAULT 0,
    created_at           TIMESTAMP NOT NULL,
    updated_at           TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS scripts (
    id            TEXT PRIMARY KEY,
    user_id       TEXT NOT NULL,
    title         TEXT NOT NULL DEFAULT '',
    raw_news      TEXT NOT NULL DEFAULT '[]',
    cleaned_news  TEXT NOT NULL DEFAULT '[]',
    styled_news   TEXT NOT NULL DEFAULT '[]',
    populated     TEXT NOT NULL DEFAULT '{}',
    teleprompter  TEXT NOT NULL DEFAULT '{}',
    status        TEXT NOT NULL DEFAULT 'draft',
    created_at    TIMESTAMP NOT NULL,
    updated_at    TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scripts_user_created
    ON scripts (user_id, created_at DESC);
`

// Migrate applies the schema. Statements are idempotent so this runs on
// every startup.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
