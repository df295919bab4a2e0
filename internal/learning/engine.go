package learning

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/storysprout/storysprout/internal/catalog"
	"github.com/storysprout/storysprout/internal/models"
	"github.com/storysprout/storysprout/internal/util"
)

// Collaborator is the external analysis/guidance service consumed by the
// engine. Implementations are expected to return structurally complete results;
// if a call fails anyway, the engine recovers with a local degraded-mode
// response rather than aborting the turn.
type Collaborator interface {
	// AnalyzeQuality scores the input text. levelOrStage is the session's
	// current level (leveled mode) or stage index (linear mode); storyMode
	// distinguishes linear story framing from open practice.
	AnalyzeQuality(ctx context.Context, text string, levelOrStage int, storyMode bool) (models.QualityAnalysis, error)
	// GenerateGuidance produces the guidance text shown to the user.
	GenerateGuidance(ctx context.Context, text string, levelOrStage int, contextLabel string, storyMode bool) (string, error)
}

// Engine is the interaction processor: the single entry point invoked once per
// user turn. It composes the catalog, session store, heuristics, sequencer,
// and leveled policy, and touches no transport concerns.
type Engine struct {
	catalog   *catalog.Catalog
	sessions  SessionStore
	genai     Collaborator
	estimator Estimator
	policy    LevelPolicy
	locks     *keyedLocks
}

// NewEngine creates an engine with the given dependencies. estimator may be nil,
// in which case the default lexicon estimator is used.
func NewEngine(cat *catalog.Catalog, sessions SessionStore, genai Collaborator, estimator Estimator) *Engine {
	if estimator == nil {
		estimator = NewLexiconEstimator()
	}
	return &Engine{
		catalog:   cat,
		sessions:  sessions,
		genai:     genai,
		estimator: estimator,
		locks:     newKeyedLocks(),
	}
}

// StartSession starts a new session for the participant on the given template.
func (e *Engine) StartSession(participantID, templateID string) (*models.Session, error) {
	return e.sessions.Create(participantID, templateID)
}

// GetSession retrieves a session by id.
func (e *Engine) GetSession(sessionID string) (*models.Session, error) {
	sess, ok := e.sessions.Get(sessionID)
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return sess, nil
}

// ProcessInteraction processes one turn. refID is the stage id the user just
// completed (linear mode) or an optional scenario id (leveled mode).
//
// Resolution failures abort before any external call or state mutation;
// collaborator failures never abort the turn. The interaction is appended only
// after every value for the turn, including degraded fallbacks, is computed.
func (e *Engine) ProcessInteraction(ctx context.Context, sessionID, userInput, refID string) (*models.TurnResult, error) {
	sess, ok := e.sessions.Get(sessionID)
	if !ok {
		slog.Warn("Engine ProcessInteraction: session not found", "sessionID", sessionID)
		return nil, models.ErrSessionNotFound
	}

	tmpl, ok := e.catalog.Get(sess.TemplateID)
	if !ok {
		// Should not occur under the normal lifecycle, but a stale session
		// must not reach the collaborator.
		slog.Error("Engine ProcessInteraction: session references missing template", "sessionID", sessionID, "templateID", sess.TemplateID)
		return nil, models.ErrTemplateNotFound
	}

	// Serialize turns on this session; other sessions proceed in parallel.
	lock := e.locks.lock(sessionID)
	defer lock.Unlock()

	if sess.Kind == models.TemplateKindLinear {
		return e.processLinearTurn(ctx, sess, tmpl, userInput, refID)
	}
	return e.processLeveledTurn(ctx, sess, tmpl, userInput, refID)
}

// processLinearTurn handles one turn of a fixed-order story session.
func (e *Engine) processLinearTurn(ctx context.Context, sess *models.Session, tmpl models.Template, userInput, stageID string) (*models.TurnResult, error) {
	seq := NewSequencer(tmpl)
	stage, err := seq.VerifyStage(sess, stageID)
	if err != nil {
		return nil, err
	}

	analysis, guidance := e.consultCollaborator(ctx, sess, userInput, sess.Linear.StageIndex, stage.Title, true)

	seq.RecordStageInput(sess, stage, userInput)
	e.appendInteraction(sess, userInput, guidance, analysis, e.policy.SkillsLearned(analysis), 100)

	result := &models.TurnResult{
		SystemResponse: guidance,
		Analysis:       analysis,
		CurrentStage:   &stage,
	}
	if seq.IsFinalStage(sess.Linear.StageIndex) {
		result.StoryComplete = true
		slog.Info("Engine linear turn completed story", "sessionID", sess.ID, "stage", stage.ID)
		return result, nil
	}

	next, _ := seq.Advance(sess)
	result.NextStage = &next
	slog.Debug("Engine linear turn processed", "sessionID", sess.ID, "completed", stage.ID, "next", next.ID)
	return result, nil
}

// processLeveledTurn handles one turn of an open-scenario practice session.
func (e *Engine) processLeveledTurn(ctx context.Context, sess *models.Session, tmpl models.Template, userInput, scenarioID string) (*models.TurnResult, error) {
	level := sess.Leveled.Level

	progress, err := e.estimator.Evaluate(userInput, level)
	if err != nil {
		slog.Error("Engine leveled turn: estimator failed", "sessionID", sess.ID, "level", level, "error", err)
		return nil, err
	}

	contextLabel := "open practice"
	if scenarioID != "" {
		for _, sc := range tmpl.Scenarios {
			if sc.ID == scenarioID {
				contextLabel = sc.Title
				break
			}
		}
	}

	analysis, guidance := e.consultCollaborator(ctx, sess, userInput, level, contextLabel, false)

	skills := e.policy.SkillsLearned(analysis)
	prior := len(sess.Interactions)
	advancing := e.policy.ShouldAdvance(prior, analysis, progress)

	e.appendInteraction(sess, userInput, guidance, analysis, skills, progress.Progress)

	result := &models.TurnResult{
		SystemResponse: guidance,
		Analysis:       analysis,
		LevelProgress:  &progress,
		SkillsLearned:  skills,
		AdvancedLevel:  advancing,
		NextStep:       e.policy.NextStep(level, advancing, progress),
	}
	if advancing {
		if level < models.MaxLevel {
			sess.Leveled.Level = level + 1
			slog.Info("Engine leveled turn advanced", "sessionID", sess.ID, "from", level, "to", sess.Leveled.Level)
		} else {
			result.CompletionReady = true
			slog.Info("Engine leveled turn completion-ready", "sessionID", sess.ID, "level", level)
		}
	}
	return result, nil
}

// consultCollaborator invokes the external analysis and guidance operations,
// substituting locally computed degraded-mode values on failure so a valid turn
// always completes. The result shape does not distinguish degraded from live.
func (e *Engine) consultCollaborator(ctx context.Context, sess *models.Session, userInput string, levelOrStage int, contextLabel string, storyMode bool) (models.QualityAnalysis, string) {
	analysis, err := e.genai.AnalyzeQuality(ctx, userInput, levelOrStage, storyMode)
	if err != nil {
		slog.Warn("Engine collaborator analysis failed, using heuristic fallback", "sessionID", sess.ID, "error", err)
		analysis = e.fallbackAnalysis(userInput)
	}

	guidance, err := e.genai.GenerateGuidance(ctx, userInput, levelOrStage, contextLabel, storyMode)
	if err != nil || guidance == "" {
		if err != nil {
			slog.Warn("Engine collaborator guidance failed, using canned fallback", "sessionID", sess.ID, "error", err)
		}
		guidance = fallbackGuidance(storyMode)
	}
	return analysis, guidance
}

// fallbackAnalysis derives a complete, schema-valid quality analysis from the
// lexical signals alone.
func (e *Engine) fallbackAnalysis(userInput string) models.QualityAnalysis {
	s := e.estimator.Detect(userInput)

	base := 40 + s.WordCount*5
	if base > 70 {
		base = 70
	}
	if s.HasAdjective {
		base += 10
	}
	if s.HasAction {
		base += 10
	}
	if s.HasEmotion {
		base += 10
	}

	emotion := clampScore(base-20, 30, 100)
	if s.HasEmotion {
		emotion = clampScore(base+15, 0, 90)
	}
	visual := clampScore(base-15, 35, 100)
	if s.HasAdjective {
		visual = clampScore(base+10, 0, 85)
	}

	return models.QualityAnalysis{
		Clarity:         clampScore(base+5, 0, 85),
		Detail:          clampScore(base, 0, 80),
		Emotion:         emotion,
		Structure:       clampScore(base+5, 0, 75),
		Visual:          visual,
		Overall:         clampScore(base, 0, 100),
		Suggestions:     []string{"Try adding more concrete description"},
		OptimizedPrompt: userInput,
	}
}

// fallbackGuidance returns a canned encouragement appropriate to the mode.
// Never empty.
func fallbackGuidance(storyMode bool) string {
	if storyMode {
		return "So wonderful! And then what happens?"
	}
	return "Great try! Let's add a few more details to make the description come alive!"
}

func clampScore(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// appendInteraction records one completed turn on the session's history. Every
// value must already be final; history entries are never mutated afterward.
func (e *Engine) appendInteraction(sess *models.Session, userInput, guidance string, analysis models.QualityAnalysis, skills []string, progress int) {
	sess.Interactions = append(sess.Interactions, models.Interaction{
		ID:             util.GenerateInteractionID(),
		Timestamp:      time.Now(),
		UserInput:      userInput,
		SystemResponse: guidance,
		Analysis:       analysis,
		SkillsLearned:  skills,
		LevelProgress:  progress,
	})
}

// FinishSession stamps the end time and computes the final score as the rounded
// mean of the authoritative overall scores across all interactions, or 0 when
// there are none. The score is recomputed, not cached, on repeated calls.
func (e *Engine) FinishSession(sessionID string) (*models.Session, error) {
	sess, ok := e.sessions.Get(sessionID)
	if !ok {
		return nil, models.ErrSessionNotFound
	}

	lock := e.locks.lock(sessionID)
	defer lock.Unlock()

	now := time.Now()
	sess.EndTime = &now
	score := finalScore(sess.Interactions)
	sess.FinalScore = &score

	slog.Info("Engine FinishSession succeeded", "sessionID", sessionID, "finalScore", score, "interactions", len(sess.Interactions))
	return sess, nil
}

func finalScore(interactions []models.Interaction) int {
	if len(interactions) == 0 {
		return 0
	}
	sum := 0
	for _, it := range interactions {
		sum += it.Analysis.Overall
	}
	return int(math.Round(float64(sum) / float64(len(interactions))))
}

// StoryRecord reconstructs the completed narrative for a linear session in
// stage order, pairing each stage with the last input recorded for it.
func (e *Engine) StoryRecord(sess *models.Session) (models.Story, error) {
	if sess.Kind != models.TemplateKindLinear || sess.Linear == nil {
		return models.Story{}, fmt.Errorf("session %s is not a story session", sess.ID)
	}
	tmpl, ok := e.catalog.Get(sess.TemplateID)
	if !ok {
		return models.Story{}, models.ErrTemplateNotFound
	}

	title := tmpl.Name
	if hero := sess.Linear.StageInputs["character"]; hero != "" {
		title = fmt.Sprintf("%s - %s", hero, tmpl.Name)
	}

	stages := make([]models.StoryStage, 0, len(tmpl.Stages))
	for _, st := range tmpl.Stages {
		stages = append(stages, models.StoryStage{
			StageID:    st.ID,
			StageTitle: st.Title,
			UserInput:  sess.Linear.StageInputs[st.ID],
		})
	}

	return models.Story{
		ID:            util.GenerateStoryID(),
		ParticipantID: sess.ParticipantID,
		TemplateID:    sess.TemplateID,
		Title:         title,
		Stages:        stages,
		CreatedAt:     time.Now(),
	}, nil
}
