package genai

import (
	"fmt"
	"strings"

	"github.com/storysprout/storysprout/internal/models"
)

// analysisSystemPrompt frames every analysis request.
const analysisSystemPrompt = "You are an assistant that evaluates descriptive prompts written by " +
	"children practicing with a parent. You always respond with a single JSON object and nothing else."

// levelDescriptions summarize what each practice level trains.
var levelDescriptions = map[int]string{
	1: "basic description - using concrete adjectives",
	2: "scene awareness - describing the environment and atmosphere",
	3: "emotional expression - adding feelings and actions",
	4: "creative integration - combining all the elements creatively",
}

// buildAnalysisPrompt constructs the user prompt for quality analysis.
func buildAnalysisPrompt(text string, levelOrStage int, storyMode bool) string {
	if storyMode {
		return fmt.Sprintf(`You are analyzing a young child's story idea or choice. The child is likely 3-6 years old.
The input is: %q
Focus on whether their input is understandable and fits the current story stage.
Score clarity (is it understandable?) from 0-100. Other scores (detail, emotion, structure, visual) should stay low (0-30) unless clearly expressed.
Offer one very simple suggestion for the parent to help the child if needed.
The optimized_prompt should be the child's original input.

Respond in JSON:
{"clarity": number, "detail": number, "emotion": number, "structure": number, "visual": number, "overall": number, "suggestions": [string], "optimized_prompt": string}`, text)
	}

	desc, ok := levelDescriptions[levelOrStage]
	if !ok {
		desc = "general creative practice"
	}
	return fmt.Sprintf(`Analyze the following prompt written for AI image generation. Score each dimension 0-100:

1. clarity: is the description clear and unambiguous?
2. detail: does it include enough detail?
3. emotion: does it convey feeling or atmosphere?
4. structure: is the description logically complete?
5. visual: does it help with visualization?

User prompt: %q
Target practice level: %d (%s)

Respond in JSON:
{"clarity": number, "detail": number, "emotion": number, "structure": number, "visual": number, "overall": number, "suggestions": [string], "optimized_prompt": string}`, text, levelOrStage, desc)
}

// guidanceSystemPrompt frames every guidance request.
func guidanceSystemPrompt(storyMode bool) string {
	if storyMode {
		return "You are a friendly AI assistant helping a parent and a 3-6 year old child create a story together."
	}
	return "You are a parent-and-child AI teaching assistant guiding families through descriptive prompting practice."
}

// levelSkills names the skills each level cultivates, used in guidance prompts.
var levelSkills = map[int][]string{
	1: {"concrete description", "basic adjective use"},
	2: {"scene setting", "sensory detail", "building atmosphere"},
	3: {"expressing feelings", "describing actions", "showing relationships"},
	4: {"creative imagination", "combining elements", "story coherence"},
}

// buildGuidancePrompt constructs the user prompt for guidance generation.
func buildGuidancePrompt(text string, levelOrStage int, contextLabel string, storyMode bool) string {
	if storyMode {
		return fmt.Sprintf(`Current story stage: %q
The child said or chose: %q

Generate a warm, encouraging, very simple message for the parent to say to the child to continue the story, make a choice, or affirm their input.
Keep it short (1-2 sentences), playful, and directly related to the child's input and the current stage.
Example: if the stage is "Our Hero" and the child says "bunny!", respond like: "A bunny! What a great choice! What color is our bunny?"`, contextLabel, text)
	}

	skills := levelSkills[levelOrStage]
	if skills == nil {
		skills = levelSkills[1]
	}
	return fmt.Sprintf(`Current practice level: %d
Skills to cultivate: %s

User input: %q
Context: %s

Generate a warm, encouraging response that helps the user reach the next level. The response should:
1. Affirm the attempt
2. Point out what could improve
3. Offer a concrete suggestion
4. Use family-friendly language`, levelOrStage, strings.Join(skills, ", "), text, contextLabel)
}

// Fallback word lists for the degraded analysis path. Deliberately small; the
// engine's estimator carries the richer lexicons.
var (
	fallbackAdjectives = []string{"beautiful", "cute", "warm", "bright", "happy", "big", "small", "red", "blue", "green"}
	fallbackActions    = []string{"run", "jump", "play", "laugh", "cry", "look", "listen", "eat", "sleep"}
	fallbackEmotions   = []string{"happy", "joyful", "excited", "warm", "love", "like", "sad", "angry"}
)

func containsAny(text string, words []string) bool {
	lower := strings.ToLower(text)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// fallbackAnalysis produces a complete, schema-valid analysis without the
// upstream service.
func (c *Client) fallbackAnalysis(text string, storyMode bool) models.QualityAnalysis {
	if storyMode {
		clarity := 40
		if containsAny(text, []string{"bunny", "bear", "park", "play", "happy"}) {
			clarity = 70
		}
		engagement := 30
		if len(strings.TrimSpace(text)) > 2 {
			engagement = 60
		}
		return models.QualityAnalysis{
			Clarity:         clarity,
			Detail:          20,
			Emotion:         20,
			Structure:       30,
			Visual:          20,
			Overall:         (clarity + engagement) / 2,
			Suggestions:     []string{"Maybe ask them about their favorite color!"},
			OptimizedPrompt: text,
		}
	}

	wordCount := len(strings.Fields(text))
	hasAdjectives := containsAny(text, fallbackAdjectives)
	hasActions := containsAny(text, fallbackActions)
	hasEmotions := containsAny(text, fallbackEmotions)

	base := 40 + wordCount*5
	if base > 70 {
		base = 70
	}
	if hasAdjectives {
		base += 10
	}
	if hasActions {
		base += 10
	}
	if hasEmotions {
		base += 10
	}

	emotion := max(base-20, 30)
	if hasEmotions {
		emotion = min(base+15, 90)
	}
	visual := max(base-15, 35)
	if hasAdjectives {
		visual = min(base+10, 85)
	}

	return models.QualityAnalysis{
		Clarity:         min(base+5, 85),
		Detail:          min(base, 80),
		Emotion:         emotion,
		Structure:       min(base+5, 75),
		Visual:          visual,
		Overall:         min(base, 100),
		Suggestions:     []string{"Try adding more concrete description"},
		OptimizedPrompt: text,
	}
}

// fallbackGuidance returns a canned, mode-appropriate encouragement.
func fallbackGuidance(storyMode bool) string {
	if storyMode {
		return "So wonderful! And then what happens?"
	}
	return "Great try! Let's add a few more details to make the description come alive!"
}
