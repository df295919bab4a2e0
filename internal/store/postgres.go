// Package store provides storage backends for the StorySprout story archive.
//
// This file implements the PostgreSQL-backed archive.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/storysprout/storysprout/internal/models"
)

const postgresMigrations = `
CREATE TABLE IF NOT EXISTS stories (
    id TEXT PRIMARY KEY,
    participant_id TEXT NOT NULL,
    template_id TEXT NOT NULL,
    title TEXT NOT NULL,
    stages_json TEXT NOT NULL,
    final_image_ref TEXT,
    created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stories_participant ON stories(participant_id, created_at);
`

// PostgresStore is the PostgreSQL-backed story archive.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL store using the DSN connection string
// and runs migrations.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open PostgreSQL connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("PostgreSQL ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run PostgreSQL migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Debug("PostgreSQL story archive ready")
	return &PostgresStore{db: db}, nil
}

// SaveStory inserts a completed narrative record.
func (s *PostgresStore) SaveStory(story models.Story) error {
	stagesJSON, err := json.Marshal(story.Stages)
	if err != nil {
		return fmt.Errorf("failed to marshal story stages: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO stories (id, participant_id, template_id, title, stages_json, final_image_ref, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		story.ID, story.ParticipantID, story.TemplateID, story.Title, string(stagesJSON), nilIfEmpty(story.FinalImageRef), story.CreatedAt,
	)
	if err != nil {
		slog.Error("PostgresStore SaveStory failed", "error", err, "storyID", story.ID)
		return fmt.Errorf("failed to insert story %s: %w", story.ID, err)
	}
	slog.Debug("PostgresStore SaveStory succeeded", "storyID", story.ID, "participantID", story.ParticipantID)
	return nil
}

// ListStories returns the participant's stories, most recent first.
func (s *PostgresStore) ListStories(participantID string) ([]models.Story, error) {
	rows, err := s.db.Query(
		`SELECT id, participant_id, template_id, title, stages_json, final_image_ref, created_at FROM stories WHERE participant_id = $1 ORDER BY created_at DESC`,
		participantID,
	)
	if err != nil {
		slog.Error("PostgresStore ListStories query failed", "error", err, "participantID", participantID)
		return nil, fmt.Errorf("failed to query stories: %w", err)
	}
	defer rows.Close()

	var stories []models.Story
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	return stories, rows.Err()
}

// Close closes the underlying database.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
