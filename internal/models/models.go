// Package models defines the core data structures for StorySprout.
//
// It includes templates, sessions, interactions, and quality analysis types,
// which are shared across modules.
package models

import (
	"errors"
	"time"
)

// TemplateKind defines how a template drives a session.
type TemplateKind string

const (
	// TemplateKindLeveled drives open scenario practice across four skill levels.
	TemplateKindLeveled TemplateKind = "leveled"
	// TemplateKindLinear drives a fixed, ordered sequence of story stages.
	TemplateKindLinear TemplateKind = "linear"
)

// InteractionKind describes how a stage expects the child to respond.
type InteractionKind string

const (
	// InteractionKindChoice expects the child to pick from suggestions.
	InteractionKindChoice InteractionKind = "choice"
	// InteractionKindOpenEnded expects free-form input.
	InteractionKindOpenEnded InteractionKind = "open_ended"
	// InteractionKindVisualCreation expects input meant to drive an illustration.
	InteractionKindVisualCreation InteractionKind = "visual_creation"
)

// Level bounds for leveled templates.
const (
	MinLevel = 1
	MaxLevel = 4
)

// Error variables for better error handling and testability
var (
	ErrTemplateNotFound  = errors.New("template not found")
	ErrSessionNotFound   = errors.New("session not found")
	ErrStageMismatch     = errors.New("stage id does not match current stage")
	ErrInvalidStageIndex = errors.New("stage index out of range")
	ErrInvalidLevel      = errors.New("level out of range")
	ErrEmptyParticipant  = errors.New("participant id cannot be empty")
	ErrEmptyTemplateID   = errors.New("template id cannot be empty")
	ErrEmptySessionID    = errors.New("session id cannot be empty")
)

// Scenario is one open practice situation in a leveled template. A scenario may
// be attempted at any level; the level belongs to the session, not the scenario.
type Scenario struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Prompt           string   `json:"prompt"`            // seed prompt shown to the child
	ExpectedElements []string `json:"expected_elements"` // descriptive elements to aim for
}

// Stage is one fixed step in a linear template. Order is 1-based and contiguous;
// the sequencer advances strictly by order.
type Stage struct {
	ID              string          `json:"id"`
	Order           int             `json:"order"`
	Title           string          `json:"title"`
	SimpleTitle     string          `json:"simple_title"` // shorter title for UI
	Description     string          `json:"description"`
	EducationalGoal string          `json:"educational_goal"`
	ChildPrompt     string          `json:"child_prompt"`    // prompt directed at the child
	ParentGuidance  string          `json:"parent_guidance"` // guidance for the facilitating parent
	VisualCues      []string        `json:"visual_cues"`     // keywords for illustration prompts
	Suggestions     []string        `json:"suggestions,omitempty"`
	TimeEstimate    int             `json:"time_estimate"` // estimated minutes
	InteractionKind InteractionKind `json:"interaction_kind"`
}

// Template is immutable content describing one progression path. Exactly one of
// Scenarios or Stages is populated, selected by Kind.
type Template struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Kind        TemplateKind `json:"kind"`
	Difficulty  string       `json:"difficulty,omitempty"`
	Emoji       string       `json:"emoji,omitempty"`
	Scenarios   []Scenario   `json:"scenarios,omitempty"`
	Stages      []Stage      `json:"stages,omitempty"`
}

// QualityAnalysis is the collaborator-produced scoring of one piece of input.
// All sub-scores and the overall value are 0-100.
type QualityAnalysis struct {
	Clarity         int      `json:"clarity"`
	Detail          int      `json:"detail"`
	Emotion         int      `json:"emotion"`
	Structure       int      `json:"structure"`
	Visual          int      `json:"visual"`
	Overall         int      `json:"overall"`
	Suggestions     []string `json:"suggestions"`
	OptimizedPrompt string   `json:"optimized_prompt"`
}

// Interaction is one completed turn. Records are append-only; the slice of
// interactions on a session is its full history and is never mutated.
type Interaction struct {
	ID             string          `json:"id"`
	Timestamp      time.Time       `json:"timestamp"`
	UserInput      string          `json:"user_input"`
	SystemResponse string          `json:"system_response"` // guidance text shown to the user
	Analysis       QualityAnalysis `json:"analysis"`
	SkillsLearned  []string        `json:"skills_learned"`
	LevelProgress  int             `json:"level_progress"` // 0-100 progress for this turn
}

// LeveledState holds the per-session state of a leveled template run.
type LeveledState struct {
	Level int `json:"level"` // 1-4
}

// LinearState holds the per-session state of a linear template run.
type LinearState struct {
	StageIndex  int               `json:"stage_index"`  // 0-based index into the template's stages
	StageInputs map[string]string `json:"stage_inputs"` // raw input recorded per stage id, latest wins
}

// Session is one participant's run through one template. Exactly one of Leveled
// or Linear is set, selected by the template kind at creation time.
type Session struct {
	ID            string        `json:"id"`
	ParticipantID string        `json:"participant_id"`
	TemplateID    string        `json:"template_id"`
	Kind          TemplateKind  `json:"kind"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       *time.Time    `json:"end_time,omitempty"`
	Interactions  []Interaction `json:"interactions"`
	FinalScore    *int          `json:"final_score,omitempty"`
	Leveled       *LeveledState `json:"leveled,omitempty"`
	Linear        *LinearState  `json:"linear,omitempty"`
}

// LevelProgress is the locally computed progress estimate for one turn.
type LevelProgress struct {
	CurrentLevel int      `json:"current_level"`
	Progress     int      `json:"progress"` // 0-100
	NextSkills   []string `json:"next_skills"`
}

// TurnResult is the structured outcome of one processed interaction. Fields that
// do not apply to the active mode are omitted rather than zero-filled; callers
// must treat an absent field as "not applicable".
type TurnResult struct {
	SystemResponse string          `json:"system_response"`
	Analysis       QualityAnalysis `json:"analysis"`

	// Leveled mode only.
	LevelProgress *LevelProgress `json:"level_progress,omitempty"`
	SkillsLearned []string       `json:"skills_learned,omitempty"`
	NextStep      string         `json:"next_step,omitempty"`
	AdvancedLevel bool           `json:"advanced_level,omitempty"`
	// CompletionReady is set when the advancement gate fires while the session
	// is already at the level cap.
	CompletionReady bool `json:"completion_ready,omitempty"`

	// Linear mode only.
	CurrentStage  *Stage `json:"current_stage,omitempty"` // the stage just completed
	NextStage     *Stage `json:"next_stage,omitempty"`    // absent when the story is complete
	StoryComplete bool   `json:"story_complete,omitempty"`
}

// StoryStage is one stage's contribution to an archived story.
type StoryStage struct {
	StageID    string `json:"stage_id"`
	StageTitle string `json:"stage_title"`
	UserInput  string `json:"user_input"`
	ImageRef   string `json:"image_ref,omitempty"`
}

// Story is a completed narrative record for the archive.
type Story struct {
	ID            string       `json:"id"`
	ParticipantID string       `json:"participant_id"`
	TemplateID    string       `json:"template_id"`
	Title         string       `json:"title"`
	Stages        []StoryStage `json:"stages"`
	FinalImageRef string       `json:"final_image_ref,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// CreateSessionRequest is the payload for starting a session.
type CreateSessionRequest struct {
	ParticipantID string `json:"participant_id"`
	TemplateID    string `json:"template_id"`
}

// Validate validates a CreateSessionRequest.
func (r *CreateSessionRequest) Validate() error {
	if r.ParticipantID == "" {
		return ErrEmptyParticipant
	}
	if r.TemplateID == "" {
		return ErrEmptyTemplateID
	}
	return nil
}

// InteractRequest is the payload for processing one turn. StageID carries the
// stage the user just completed in linear mode, or an optional scenario id in
// leveled mode.
type InteractRequest struct {
	SessionID string `json:"session_id"`
	UserInput string `json:"user_input"`
	StageID   string `json:"stage_id,omitempty"`
}

// Validate validates an InteractRequest.
func (r *InteractRequest) Validate() error {
	if r.SessionID == "" {
		return ErrEmptySessionID
	}
	return nil
}

// FinishSessionRequest is the payload for closing a session.
type FinishSessionRequest struct {
	SessionID string `json:"session_id"`
}

// Validate validates a FinishSessionRequest.
func (r *FinishSessionRequest) Validate() error {
	if r.SessionID == "" {
		return ErrEmptySessionID
	}
	return nil
}
