package learning

import (
	"fmt"

	"github.com/storysprout/storysprout/internal/models"
)

// Thresholds for the leveled progression policy.
const (
	// skillCreditThreshold is the analysis sub-score at which a skill is credited.
	skillCreditThreshold = 70
	// advanceProgressThreshold is the heuristic progress required to advance.
	advanceProgressThreshold = 80
	// advanceOverallThreshold is the authoritative overall score required to advance.
	advanceOverallThreshold = 75
	// advanceMinPriorTurns is how many interactions must already be recorded
	// before advancement is possible (so the earliest advance is turn three).
	advanceMinPriorTurns = 2
)

// LevelPolicy decides per-level skill crediting, advancement, and next-step
// narration for open-scenario sessions.
type LevelPolicy struct{}

// SkillsLearned credits one named skill for each authoritative analysis
// sub-score at or above the threshold. Credits attach to the turn's interaction
// record only; they are not accumulated as session state.
func (LevelPolicy) SkillsLearned(a models.QualityAnalysis) []string {
	var skills []string
	if a.Clarity >= skillCreditThreshold {
		skills = append(skills, "clear expression")
	}
	if a.Detail >= skillCreditThreshold {
		skills = append(skills, "detailed description")
	}
	if a.Emotion >= skillCreditThreshold {
		skills = append(skills, "emotional expression")
	}
	if a.Visual >= skillCreditThreshold {
		skills = append(skills, "visual description")
	}
	if a.Structure >= skillCreditThreshold {
		skills = append(skills, "structured writing")
	}
	return skills
}

// ShouldAdvance reports whether this turn qualifies for a level advancement.
// priorInteractions is the history length before this turn is appended. All
// three gates must hold; the rule is evaluated every turn.
func (LevelPolicy) ShouldAdvance(priorInteractions int, a models.QualityAnalysis, progress models.LevelProgress) bool {
	return progress.Progress >= advanceProgressThreshold &&
		a.Overall >= advanceOverallThreshold &&
		priorInteractions >= advanceMinPriorTurns
}

// NextStep selects the single advisory hint for this turn. level is the level
// the turn was evaluated at (before any increment).
func (LevelPolicy) NextStep(level int, advancing bool, progress models.LevelProgress) string {
	if advancing {
		if level >= models.MaxLevel {
			return "Amazing! You're a little prompt expert now! Ready to try something even more creative?"
		}
		return fmt.Sprintf("Congratulations, you've reached Level %d! Time to learn some new skills!", level+1)
	}
	if progress.Progress >= 70 {
		return "Great work! Let's practice once more to make it stick!"
	}
	if progress.Progress >= 50 {
		skill := "describing"
		if len(progress.NextSkills) > 0 {
			skill = progress.NextSkills[0]
		}
		return fmt.Sprintf("Let's focus on practicing: %s", skill)
	}
	return "No rush, we'll practice the basics one step at a time!"
}
