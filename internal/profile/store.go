package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Store persists profiles in sqlite. The first Get for a user synthesizes
// and saves a default profile so callers never handle a missing one.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithClock replaces the time source used for created/updated stamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore wires a sql.DB implementation.
func NewStore(db *sql.DB, opts ...StoreOption) *Store {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var profileColumns = []string{
	"user_id", "preferred_languages", "speaking_speed", "signature_intro",
	"signature_outro", "topic_preferences", "show_structure",
	"tone_description", "formality_level", "use_emojis",
	"onboarding_completed", "created_at", "updated_at",
}

// Get loads the profile for userID, creating and persisting the default
// profile when none exists yet.
func (s *Store) Get(ctx context.Context, userID string) (*Profile, error) {
	query, args, err := sq.Select(profileColumns...).
		From("profiles").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build profile query: %w", err)
	}

	p, err := scanProfile(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		p = defaultProfile(userID, s.now().UTC())
		if err := s.insert(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}
	return p, nil
}

// Upsert applies the non-nil fields of patch to the user's profile, creating
// the default profile first when none exists.
func (s *Store) Upsert(ctx context.Context, userID string, patch Patch) (*Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.PreferredLanguage != nil {
		p.PreferredLanguage = *patch.PreferredLanguage
	}
	if patch.SpeakingSpeed != nil {
		p.SpeakingSpeed = *patch.SpeakingSpeed
	}
	if patch.SignatureIntro != nil {
		p.SignatureIntro = *patch.SignatureIntro
	}
	if patch.SignatureOutro != nil {
		p.SignatureOutro = *patch.SignatureOutro
	}
	if patch.TopicPreferences != nil {
		p.TopicPreferences = *patch.TopicPreferences
	}
	if patch.ShowStructure != nil {
		p.ShowStructure = NormalizeStructure(*patch.ShowStructure)
	}
	if patch.ToneDescription != nil {
		p.ToneDescription = *patch.ToneDescription
	}
	if patch.FormalityLevel != nil {
		p.FormalityLevel = *patch.FormalityLevel
	}
	if patch.UseEmojis != nil {
		p.UseEmojis = *patch.UseEmojis
	}
	if patch.OnboardingCompleted != nil {
		p.OnboardingCompleted = *patch.OnboardingCompleted
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetShowStructure replaces the user's show structure wholesale.
func (s *Store) SetShowStructure(ctx context.Context, userID string, sections []ShowSection) (*Profile, error) {
	normalized := NormalizeStructure(sections)
	return s.Upsert(ctx, userID, Patch{ShowStructure: &normalized})
}

func (s *Store) insert(ctx context.Context, p *Profile) error {
	languages, topics, structure, err := marshalSlices(p)
	if err != nil {
		return err
	}
	query, args, err := sq.Insert("profiles").
		Columns(profileColumns...).
		Values(
			p.UserID, languages, p.SpeakingSpeed, p.SignatureIntro,
			p.SignatureOutro, topics, structure, p.ToneDescription,
			p.FormalityLevel, p.UseEmojis, p.OnboardingCompleted,
			p.CreatedAt, p.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build profile insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert profile %s: %w", p.UserID, err)
	}
	return nil
}

func (s *Store) update(ctx context.Context, p *Profile) error {
	languages, topics, structure, err := marshalSlices(p)
	if err != nil {
		return err
	}
	query, args, err := sq.Update("profiles").
		Set("preferred_languages", languages).
		Set("speaking_speed", p.SpeakingSpeed).
		Set("signature_intro", p.SignatureIntro).
		Set("signature_outro", p.SignatureOutro).
		Set("topic_preferences", topics).
		Set("show_structure", structure).
		Set("tone_description", p.ToneDescription).
		Set("formality_level", p.FormalityLevel).
		Set("use_emojis", p.UseEmojis).
		Set("onboarding_completed", p.OnboardingCompleted).
		Set("updated_at", p.UpdatedAt).
		Where(sq.Eq{"user_id": p.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build profile update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update profile %s: %w", p.UserID, err)
	}
	return nil
}

func marshalSlices(p *Profile) (languages, topics, structure string, err error) {
	lb, err := json.Marshal(p.PreferredLanguage)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal languages: %w", err)
	}
	tb, err := json.Marshal(p.TopicPreferences)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal topics: %w", err)
	}
	sb, err := json.Marshal(p.ShowStructure)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal show structure: %w", err)
	}
	return string(lb), string(tb), string(sb), nil
}

func scanProfile(row *sql.Row) (*Profile, error) {
	var (
		p         Profile
		languages string
		topics    string
		structure string
	)
	err := row.Scan(
		&p.UserID, &languages, &p.SpeakingSpeed, &p.SignatureIntro,
		&p.SignatureOutro, &topics, &structure, &p.ToneDescription,
		&p.FormalityLevel, &p.UseEmojis, &p.OnboardingCompleted,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(languages), &p.PreferredLanguage); err != nil {
		return nil, fmt.Errorf("unmarshal languages: %w", err)
	}
	if err := json.Unmarshal([]byte(topics), &p.TopicPreferences); err != nil {
		return nil, fmt.Errorf("unmarshal topics: %w", err)
	}
	if err := json.Unmarshal([]byte(structure), &p.ShowStructure); err != nil {
		return nil, fmt.Errorf("unmarshal show structure: %w", err)
	}
	return &p, nil
}
