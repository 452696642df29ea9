package script

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var (
	// ErrNotFound means no script exists with the requested id.
	ErrNotFound = errors.New("script not found")
	// ErrNotOwner means the script exists but belongs to someone else.
	ErrNotOwner = errors.New("script belongs to another user")
)

const listLimit = 50

// Store persists scripts in sqlite.
type Store struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithClock replaces the time source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithIDFunc replaces the id generator. Tests pass a deterministic one.
func WithIDFunc(fn func() string) StoreOption {
	return func(s *Store) { s.newID = fn }
}

// NewStore wires a sql.DB implementation.
func NewStore(db *sql.DB, opts ...StoreOption) *Store {
	s := &Store{db: db, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var scriptColumns = []string{
	"id", "user_id", "title", "raw_news", "cleaned_news", "styled_news",
	"populated", "teleprompter", "status", "created_at", "updated_at",
}

// Create inserts a new script owned by userID and returns it. Status starts
// at draft unless the caller set one.
func (s *Store) Create(ctx context.Context, userID, title string) (*Script, error) {
	now := s.now().UTC()
	sc := &Script{
		ID:           s.newID(),
		UserID:       userID,
		Title:        title,
		RawNews:      []byte("[]"),
		CleanedNews:  []byte("[]"),
		StyledNews:   []byte("[]"),
		Populated:    []byte("{}"),
		Teleprompter: []byte("{}"),
		Status:       StatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	query, args, err := sq.Insert("scripts").
		Columns(scriptColumns...).
		Values(
			sc.ID, sc.UserID, sc.Title, string(sc.RawNews),
			string(sc.CleanedNews), string(sc.StyledNews),
			string(sc.Populated), string(sc.Teleprompter),
			string(sc.Status), sc.CreatedAt, sc.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build script insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("insert script: %w", err)
	}
	return sc, nil
}

// Get loads a script by id.
func (s *Store) Get(ctx context.Context, id string) (*Script, error) {
	query, args, err := sq.Select(scriptColumns...).
		From("scripts").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build script query: %w", err)
	}
	sc, err := scanScript(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load script %s: %w", id, err)
	}
	return sc, nil
}

// GetForUser loads a script and enforces ownership.
func (s *Store) GetForUser(ctx context.Context, id, userID string) (*Script, error) {
	sc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sc.UserID != userID {
		return nil, ErrNotOwner
	}
	return sc, nil
}

// Update persists the script's stage payloads, title, and status.
func (s *Store) Update(ctx context.Context, sc *Script) error {
	sc.UpdatedAt = s.now().UTC()
	query, args, err := sq.Update("scripts").
		Set("title", sc.Title).
		Set("raw_news", string(sc.RawNews)).
		Set("cleaned_news", string(sc.CleanedNews)).
		Set("styled_news", string(sc.StyledNews)).
		Set("populated", string(sc.Populated)).
		Set("teleprompter", string(sc.Teleprompter)).
		Set("status", string(sc.Status)).
		Set("updated_at", sc.UpdatedAt).
		Where(sq.Eq{"id": sc.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build script update: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update script %s: %w", sc.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus flips a script's status.
func (s *Store) SetStatus(ctx context.Context, id string, status Status) error {
	query, args, err := sq.Update("scripts").
		Set("status", string(status)).
		Set("updated_at", s.now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build status update: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set status %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Deliver marks a user's script as delivered.
func (s *Store) Deliver(ctx context.Context, id, userID string) (*Script, error) {
	sc, err := s.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.SetStatus(ctx, id, StatusDelivered); err != nil {
		return nil, err
	}
	sc.Status = StatusDelivered
	return sc, nil
}

// Delete removes a user's script.
func (s *Store) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.GetForUser(ctx, id, userID); err != nil {
		return err
	}
	query, args, err := sq.Delete("scripts").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build script delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete script %s: %w", id, err)
	}
	return nil
}

// ListByOwner returns the user's scripts newest first, capped at 50.
func (s *Store) ListByOwner(ctx context.Context, userID string) ([]Script, error) {
	query, args, err := sq.Select(scriptColumns...).
		From("scripts").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(listLimit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build script list: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scripts: %w", err)
	}
	defer rows.Close()

	var scripts []Script
	for rows.Next() {
		sc, err := scanScript(rows)
		if err != nil {
			return nil, fmt.Errorf("scan script: %w", err)
		}
		scripts = append(scripts, *sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return scripts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScript(row rowScanner) (*Script, error) {
	var (
		sc                                            Script
		raw, cleaned, styled, populated, teleprompter string
		status                                        string
	)
	err := row.Scan(
		&sc.ID, &sc.UserID, &sc.Title, &raw, &cleaned, &styled,
		&populated, &teleprompter, &status, &sc.CreatedAt, &sc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	sc.RawNews = []byte(raw)
	sc.CleanedNews = []byte(cleaned)
	sc.StyledNews = []byte(styled)
	sc.Populated = []byte(populated)
	sc.Teleprompter = []byte(teleprompter)
	sc.Status = Status(status)
	return &sc, nil
}
