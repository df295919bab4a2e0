// Package store provides storage backends for the StorySprout story archive.
//
// This file implements the SQLite-backed archive.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"

	"github.com/storysprout/storysprout/internal/models"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore is the SQLite-backed story archive.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLite store at the DSN file path, creating the
// parent directory and running migrations as needed.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Debug("SQLite story archive ready", "dsn", cfg.DSN)
	return &SQLiteStore{db: db}, nil
}

// SaveStory inserts a completed narrative record.
func (s *SQLiteStore) SaveStory(story models.Story) error {
	stagesJSON, err := json.Marshal(story.Stages)
	if err != nil {
		return fmt.Errorf("failed to marshal story stages: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO stories (id, participant_id, template_id, title, stages_json, final_image_ref, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		story.ID, story.ParticipantID, story.TemplateID, story.Title, string(stagesJSON), nilIfEmpty(story.FinalImageRef), story.CreatedAt,
	)
	if err != nil {
		slog.Error("SQLiteStore SaveStory failed", "error", err, "storyID", story.ID)
		return fmt.Errorf("failed to insert story %s: %w", story.ID, err)
	}
	slog.Debug("SQLiteStore SaveStory succeeded", "storyID", story.ID, "participantID", story.ParticipantID)
	return nil
}

// ListStories returns the participant's stories, most recent first.
func (s *SQLiteStore) ListStories(participantID string) ([]models.Story, error) {
	rows, err := s.db.Query(
		`SELECT id, participant_id, template_id, title, stages_json, final_image_ref, created_at FROM stories WHERE participant_id = ? ORDER BY created_at DESC`,
		participantID,
	)
	if err != nil {
		slog.Error("SQLiteStore ListStories query failed", "error", err, "participantID", participantID)
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
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
