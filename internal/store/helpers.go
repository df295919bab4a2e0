package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/storysprout/storysprout/internal/models"
)

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// scanStory scans a Story from sql.Rows.
func scanStory(rows *sql.Rows) (models.Story, error) {
	var story models.Story
	var stagesJSON string
	var finalImage sql.NullString
	err := rows.Scan(
		&story.ID, &story.ParticipantID, &story.TemplateID, &story.Title,
		&stagesJSON, &finalImage, &story.CreatedAt,
	)
	if err != nil {
		return story, fmt.Errorf("scan story failed: %w", err)
	}
	if err := json.Unmarshal([]byte(stagesJSON), &story.Stages); err != nil {
		return story, fmt.Errorf("failed to unmarshal story stages: %w", err)
	}
	story.FinalImageRef = finalImage.String
	return story, nil
}
