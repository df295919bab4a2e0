// Package learning implements the session progression engine for StorySprout.
//
// It tracks where a participant is in a story or practice flow, scores input,
// decides advancement, and produces the structured result driving the next turn.
package learning

import (
	"strings"

	"github.com/storysprout/storysprout/internal/models"
)

// Signals are the lexical features detected in one piece of raw input.
type Signals struct {
	WordCount      int
	HasAdjective   bool
	HasEnvironment bool
	HasEmotion     bool
	HasAction      bool
}

// Estimator is the pluggable local progress estimator. It is a cheap secondary
// signal used for level-advancement gating and for degraded-mode responses; it
// is never the authoritative quality score.
type Estimator interface {
	Detect(input string) Signals
	Evaluate(input string, level int) (models.LevelProgress, error)
}

// LexiconEstimator evaluates input against fixed word lists. Deterministic and
// side-effect free; the lists can be swapped out without touching the
// progression policy.
type LexiconEstimator struct {
	adjectives   map[string]struct{}
	environments map[string]struct{}
	emotions     map[string]struct{}
	actions      map[string]struct{}
}

// Default lexicons. Intentionally small: the estimator is a coarse proxy, not a
// language model.
var (
	defaultAdjectives = []string{
		"beautiful", "cute", "warm", "bright", "happy", "big", "small", "little",
		"red", "blue", "green", "white", "black", "yellow", "soft", "shiny",
	}
	defaultEnvironments = []string{
		"room", "kitchen", "park", "school", "garden", "beach", "forest", "home",
		"outside", "playground", "bed", "backyard",
	}
	defaultEmotions = []string{
		"happy", "joyful", "excited", "warm", "love", "loves", "like", "likes",
		"sad", "angry", "proud", "cozy",
	}
	defaultActions = []string{
		"jump", "jumps", "jumping", "run", "runs", "running", "play", "plays",
		"playing", "laugh", "laughs", "laughing", "hug", "hugs", "hugging",
		"look", "looks", "looking", "listen", "listens", "sing", "sings",
		"singing", "draw", "draws", "drawing", "eat", "eats", "eating",
	}
)

// NewLexiconEstimator creates an estimator with the default English lexicons.
func NewLexiconEstimator() *LexiconEstimator {
	return &LexiconEstimator{
		adjectives:   toSet(defaultAdjectives),
		environments: toSet(defaultEnvironments),
		emotions:     toSet(defaultEmotions),
		actions:      toSet(defaultActions),
	}
}

// NewLexiconEstimatorWithWords creates an estimator with caller-supplied word
// lists, e.g. for localization.
func NewLexiconEstimatorWithWords(adjectives, environments, emotions, actions []string) *LexiconEstimator {
	return &LexiconEstimator{
		adjectives:   toSet(adjectives),
		environments: toSet(environments),
		emotions:     toSet(emotions),
		actions:      toSet(actions),
	}
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

// tokenize lowercases the input and splits it into words, trimming punctuation.
func tokenize(input string) []string {
	return strings.FieldsFunc(strings.ToLower(input), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '\''
	})
}

// Detect reports which lexical signals are present in the input.
func (e *LexiconEstimator) Detect(input string) Signals {
	tokens := tokenize(input)
	s := Signals{WordCount: len(tokens)}
	for _, tok := range tokens {
		if _, ok := e.adjectives[tok]; ok {
			s.HasAdjective = true
		}
		if _, ok := e.environments[tok]; ok {
			s.HasEnvironment = true
		}
		if _, ok := e.emotions[tok]; ok {
			s.HasEmotion = true
		}
		if _, ok := e.actions[tok]; ok {
			s.HasAction = true
		}
	}
	// Location prepositions count as an environment reference even without a
	// named place ("in the treehouse").
	if !s.HasEnvironment {
		for _, tok := range tokens {
			if tok == "in" || tok == "inside" || tok == "at" {
				s.HasEnvironment = true
				break
			}
		}
	}
	return s
}

// Evaluate computes the 0-100 progress estimate and next-skill hints for the
// given level. Levels outside 1-4 are a programming error.
func (e *LexiconEstimator) Evaluate(input string, level int) (models.LevelProgress, error) {
	if level < models.MinLevel || level > models.MaxLevel {
		return models.LevelProgress{}, models.ErrInvalidLevel
	}

	s := e.Detect(input)
	var progress int
	var nextSkills []string

	switch level {
	case 1:
		if s.HasAdjective {
			progress = 75
			nextSkills = []string{"scene setting", "sensory detail"}
		} else {
			progress = 25
			nextSkills = []string{"concrete adjectives", "richer description"}
		}
		if s.WordCount >= 5 {
			progress += 15
		}
	case 2:
		if s.HasAdjective {
			progress += 25
		}
		if s.HasEnvironment {
			progress += 50
			nextSkills = []string{"expressing feelings", "describing actions"}
		} else {
			nextSkills = []string{"scene setting", "describing the place"}
		}
		if s.WordCount >= 8 {
			progress += 25
		}
	case 3:
		if s.HasAdjective {
			progress += 20
		}
		if s.HasEnvironment {
			progress += 20
		}
		if s.HasEmotion {
			progress += 30
		}
		if s.HasAction {
			progress += 30
		}
		if s.HasEmotion && s.HasAction {
			nextSkills = []string{"creative imagination", "combining elements"}
		} else {
			nextSkills = []string{"expressing feelings", "describing actions"}
		}
	case 4:
		complexity := 0
		for _, present := range []bool{s.HasAdjective, s.HasEnvironment, s.HasEmotion, s.HasAction} {
			if present {
				complexity++
			}
		}
		progress = complexity * 25
		nextSkills = []string{"creative leaps", "master-level description"}
	}

	if progress > 100 {
		progress = 100
	}
	if progress < 0 {
		progress = 0
	}

	return models.LevelProgress{
		CurrentLevel: level,
		Progress:     progress,
		NextSkills:   nextSkills,
	}, nil
}
