package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/storysprout/storysprout/internal/models"
)

func sampleStory(id, participantID string, createdAt time.Time) models.Story {
	return models.Story{
		ID:            id,
		ParticipantID: participantID,
		TemplateID:    "toddler_adventure",
		Title:         "a little bunny - Today's Little Adventure",
		Stages: []models.StoryStage{
			{StageID: "character", StageTitle: "Our Hero", UserInput: "a little bunny"},
			{StageID: "place", StageTitle: "Where Are We Going", UserInput: "the beach"},
		},
		CreatedAt: createdAt,
	}
}

func TestInMemoryStoreSaveAndList(t *testing.T) {
	s := NewInMemoryStore()
	defer s.Close()

	now := time.Now()
	if err := s.SaveStory(sampleStory("story_1", "parent1", now.Add(-time.Hour))); err != nil {
		t.Fatalf("SaveStory failed: %v", err)
	}
	if err := s.SaveStory(sampleStory("story_2", "parent1", now)); err != nil {
		t.Fatalf("SaveStory failed: %v", err)
	}
	if err := s.SaveStory(sampleStory("story_3", "parent2", now)); err != nil {
		t.Fatalf("SaveStory failed: %v", err)
	}

	stories, err := s.ListStories("parent1")
	if err != nil {
		t.Fatalf("ListStories failed: %v", err)
	}
	if len(stories) != 2 {
		t.Fatalf("ListStories returned %d stories, want 2", len(stories))
	}
	if stories[0].ID != "story_2" || stories[1].ID != "story_1" {
		t.Errorf("ListStories order = [%s, %s], want most recent first", stories[0].ID, stories[1].ID)
	}

	stories, err = s.ListStories("nobody")
	if err != nil {
		t.Fatalf("ListStories failed: %v", err)
	}
	if len(stories) != 0 {
		t.Errorf("ListStories for unknown participant returned %d stories, want 0", len(stories))
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "stories.db")
	s, err := NewSQLiteStore(WithDSN(dsn))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer s.Close()

	story := sampleStory("story_abc", "parent1", time.Now().UTC().Truncate(time.Second))
	story.FinalImageRef = "data:image/png;base64,aGVsbG8="
	if err := s.SaveStory(story); err != nil {
		t.Fatalf("SaveStory failed: %v", err)
	}

	noImage := sampleStory("story_def", "parent1", time.Now().UTC().Truncate(time.Second).Add(time.Minute))
	if err := s.SaveStory(noImage); err != nil {
		t.Fatalf("SaveStory failed: %v", err)
	}

	stories, err := s.ListStories("parent1")
	if err != nil {
		t.Fatalf("ListStories failed: %v", err)
	}
	if len(stories) != 2 {
		t.Fatalf("ListStories returned %d stories, want 2", len(stories))
	}
	if stories[0].ID != "story_def" {
		t.Errorf("ListStories order: first = %s, want most recent", stories[0].ID)
	}

	got := stories[1]
	if got.Title != story.Title || got.TemplateID != story.TemplateID {
		t.Errorf("story metadata = %+v", got)
	}
	if got.FinalImageRef != story.FinalImageRef {
		t.Errorf("final image ref = %q, want %q", got.FinalImageRef, story.FinalImageRef)
	}
	if len(got.Stages) != 2 || got.Stages[0].StageID != "character" || got.Stages[1].UserInput != "the beach" {
		t.Errorf("stages = %+v, want the saved stage content in order", got.Stages)
	}
	if stories[0].FinalImageRef != "" {
		t.Errorf("story without image has final image ref %q, want empty", stories[0].FinalImageRef)
	}

	empty, err := s.ListStories("parent2")
	if err != nil {
		t.Fatalf("ListStories failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("ListStories for other participant = %d stories, want 0", len(empty))
	}
}
