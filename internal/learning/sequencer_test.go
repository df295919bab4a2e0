package learning

import (
	"errors"
	"testing"

	"github.com/storysprout/storysprout/internal/models"
)

func storyTemplate() models.Template {
	return models.Template{
		ID:   "bedtime_story",
		Kind: models.TemplateKindLinear,
		Stages: []models.Stage{
			{ID: "hero", Order: 1, Title: "The Hero"},
			{ID: "journey", Order: 2, Title: "The Journey"},
			{ID: "ending", Order: 3, Title: "The Ending"},
		},
	}
}

func linearSession() *models.Session {
	return &models.Session{
		ID:     "sess_test",
		Kind:   models.TemplateKindLinear,
		Linear: &models.LinearState{StageInputs: make(map[string]string)},
	}
}

func TestSequencerCurrentStage(t *testing.T) {
	seq := NewSequencer(storyTemplate())
	sess := linearSession()

	stage, err := seq.CurrentStage(sess)
	if err != nil {
		t.Fatalf("CurrentStage returned error: %v", err)
	}
	if stage.ID != "hero" {
		t.Errorf("CurrentStage = %s, want hero", stage.ID)
	}

	sess.Linear.StageIndex = 7
	if _, err := seq.CurrentStage(sess); !errors.Is(err, models.ErrInvalidStageIndex) {
		t.Errorf("CurrentStage with bad index error = %v, want ErrInvalidStageIndex", err)
	}
}

func TestSequencerVerifyStage(t *testing.T) {
	seq := NewSequencer(storyTemplate())
	sess := linearSession()

	if _, err := seq.VerifyStage(sess, "hero"); err != nil {
		t.Fatalf("VerifyStage with matching id returned error: %v", err)
	}
	if _, err := seq.VerifyStage(sess, "ending"); !errors.Is(err, models.ErrStageMismatch) {
		t.Errorf("VerifyStage with mismatched id error = %v, want ErrStageMismatch", err)
	}
}

func TestSequencerAdvance(t *testing.T) {
	seq := NewSequencer(storyTemplate())
	sess := linearSession()

	next, ok := seq.Advance(sess)
	if !ok || next.ID != "journey" {
		t.Fatalf("Advance = (%s, %v), want (journey, true)", next.ID, ok)
	}
	if sess.Linear.StageIndex != 1 {
		t.Errorf("StageIndex after advance = %d, want 1", sess.Linear.StageIndex)
	}

	seq.Advance(sess)
	if !seq.IsFinalStage(sess.Linear.StageIndex) {
		t.Fatal("expected final stage after two advances")
	}

	// Advancing from the final stage stays put.
	if _, ok := seq.Advance(sess); ok {
		t.Error("Advance on final stage reported ok = true")
	}
	if sess.Linear.StageIndex != 2 {
		t.Errorf("StageIndex after final advance = %d, want 2", sess.Linear.StageIndex)
	}
}

func TestSequencerRecordStageInput(t *testing.T) {
	seq := NewSequencer(storyTemplate())
	sess := linearSession()

	stage, _ := seq.CurrentStage(sess)
	seq.RecordStageInput(sess, stage, "a brave bunny")
	seq.RecordStageInput(sess, stage, "a brave little bunny")

	if got := sess.Linear.StageInputs["hero"]; got != "a brave little bunny" {
		t.Errorf("StageInputs[hero] = %q, want the latest input to win", got)
	}
	if len(sess.Linear.StageInputs) != 1 {
		t.Errorf("StageInputs size = %d, want 1", len(sess.Linear.StageInputs))
	}
}
