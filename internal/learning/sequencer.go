package learning

import (
	"log/slog"

	"github.com/storysprout/storysprout/internal/models"
)

// Sequencer advances a linear-template session one fixed-order stage at a time.
// It holds no state of its own; position is purely a function of the template
// and the session's stage index.
type Sequencer struct {
	tmpl models.Template
}

// NewSequencer creates a sequencer for the given linear template.
func NewSequencer(tmpl models.Template) *Sequencer {
	return &Sequencer{tmpl: tmpl}
}

// CurrentStage returns the stage at the session's current index.
func (sq *Sequencer) CurrentStage(sess *models.Session) (models.Stage, error) {
	idx := sess.Linear.StageIndex
	if idx < 0 || idx >= len(sq.tmpl.Stages) {
		slog.Error("Sequencer CurrentStage index out of range", "sessionID", sess.ID, "index", idx, "stages", len(sq.tmpl.Stages))
		return models.Stage{}, models.ErrInvalidStageIndex
	}
	return sq.tmpl.Stages[idx], nil
}

// VerifyStage returns the current stage iff stageID matches it. A mismatched id
// means the caller and session are desynchronized; resyncing silently would
// allow duplicate or out-of-order completion records.
func (sq *Sequencer) VerifyStage(sess *models.Session, stageID string) (models.Stage, error) {
	stage, err := sq.CurrentStage(sess)
	if err != nil {
		return models.Stage{}, err
	}
	if stage.ID != stageID {
		slog.Warn("Sequencer VerifyStage mismatch", "sessionID", sess.ID, "expected", stage.ID, "got", stageID)
		return models.Stage{}, models.ErrStageMismatch
	}
	return stage, nil
}

// IsFinalStage reports whether the stage at the given index is the last one.
func (sq *Sequencer) IsFinalStage(index int) bool {
	return index == len(sq.tmpl.Stages)-1
}

// RecordStageInput records the raw input under the stage's id so the full
// narrative can be reconstructed in stage order later. Called before advancing;
// on retry the latest input wins.
func (sq *Sequencer) RecordStageInput(sess *models.Session, stage models.Stage, input string) {
	if sess.Linear.StageInputs == nil {
		sess.Linear.StageInputs = make(map[string]string)
	}
	sess.Linear.StageInputs[stage.ID] = input
}

// Advance moves the session to the next stage and returns it. On the final
// stage the session stays put and ok is false; the caller must treat the turn
// as a completion event.
func (sq *Sequencer) Advance(sess *models.Session) (models.Stage, bool) {
	if sq.IsFinalStage(sess.Linear.StageIndex) {
		return models.Stage{}, false
	}
	sess.Linear.StageIndex++
	slog.Debug("Sequencer advanced", "sessionID", sess.ID, "stageIndex", sess.Linear.StageIndex)
	return sq.tmpl.Stages[sess.Linear.StageIndex], true
}
