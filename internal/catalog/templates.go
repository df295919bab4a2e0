package catalog

import "github.com/storysprout/storysprout/internal/models"

// builtinTemplates returns the static template content shipped with StorySprout.
func builtinTemplates() []models.Template {
	return []models.Template{dailyLifeTemplate(), toddlerAdventureTemplate()}
}

// dailyLifeTemplate is the leveled practice template: four everyday scenarios a
// child can describe at any skill level.
func dailyLifeTemplate() models.Template {
	return models.Template{
		ID:          "daily-life",
		Name:        "My Day",
		Description: "Practice concrete description, scene awareness, and expressing feelings",
		Kind:        models.TemplateKindLeveled,
		Difficulty:  "basic",
		Emoji:       "🥛",
		Scenarios: []models.Scenario{
			{
				ID:               "morning",
				Title:            "Waking Up",
				Description:      "Describe the scene of a child waking up in the morning",
				Prompt:           "a child wakes up",
				ExpectedElements: []string{"time", "action", "setting", "feeling"},
			},
			{
				ID:               "breakfast",
				Title:            "Breakfast Time",
				Description:      "Describe a cozy breakfast moment",
				Prompt:           "a child eats breakfast",
				ExpectedElements: []string{"food", "action", "setting", "feeling"},
			},
			{
				ID:               "play",
				Title:            "Playtime",
				Description:      "Describe a child having a wonderful time playing",
				Prompt:           "a child plays",
				ExpectedElements: []string{"toy", "action", "setting", "feeling"},
			},
			{
				ID:               "bedtime",
				Title:            "Goodnight",
				Description:      "Describe a warm bedtime moment",
				Prompt:           "a child goes to sleep",
				ExpectedElements: []string{"setting", "action", "feeling", "object"},
			},
		},
	}
}

// toddlerAdventureTemplate is the linear story template: five fixed stages that
// build one small adventure together.
func toddlerAdventureTemplate() models.Template {
	return models.Template{
		ID:          "toddler_adventure",
		Name:        "Today's Little Adventure",
		Description: "Create a simple, fun story together with your little one",
		Kind:        models.TemplateKindLinear,
		Difficulty:  "basic",
		Emoji:       "🧸",
		Stages: []models.Stage{
			{
				ID:              "character",
				Order:           1,
				Title:           "Our Hero",
				SimpleTitle:     "Hero",
				Description:     "Pick or invent an adorable main character.",
				EducationalGoal: "Introduce different animals and characters and practice simple choices.",
				ChildPrompt:     "Who is the hero of our story today? Do you like a little bunny, a teddy bear, or another animal?",
				ParentGuidance: "Show some animal pictures, or just ask which one they like.\n" +
					"A favorite toy can be the hero too.\n" +
					"Encourage the child to name the animal or imitate its sound.",
				VisualCues:      []string{"cute animal", "main character", "happy expression"},
				Suggestions:     []string{"a little bunny", "a teddy bear", "a kitten", "a brave firefighter"},
				TimeEstimate:    3,
				InteractionKind: models.InteractionKindChoice,
			},
			{
				ID:              "place",
				Order:           2,
				Title:           "Where Are We Going",
				SimpleTitle:     "Place",
				Description:     "Decide where the hero goes to play.",
				EducationalGoal: "Help the child recognize different places and settings.",
				ChildPrompt:     "Where is our hero going to play today? The slide at the park, or building castles at the beach?",
				ParentGuidance: "Offer a few familiar options like the park, the playground, the beach, or the forest.\n" +
					"Use pictures to help the child picture each place.\n" +
					"Ask what the place has in it, like flowers, grass, or a slide.",
				VisualCues:      []string{"fun place", "playground", "beach", "forest"},
				Suggestions:     []string{"the park", "the beach", "in the forest", "the playground"},
				TimeEstimate:    3,
				InteractionKind: models.InteractionKindChoice,
			},
			{
				ID:              "activity",
				Order:           3,
				Title:           "What Happens There",
				SimpleTitle:     "Activity",
				Description:     "Describe what fun thing the hero is doing.",
				EducationalGoal: "Grow the child's action vocabulary and understanding of simple activities.",
				ChildPrompt:     "Wonderful! What fun thing is our hero doing there? Building a sandcastle, or swinging on the swings?",
				ParentGuidance: "Suggest activities that fit the chosen place.\n" +
					"Encourage the child to act it out, like pretending to swing or dig.\n" +
					"If the child has their own idea, follow their lead.",
				VisualCues:      []string{"playing", "activity", "fun action"},
				Suggestions:     []string{"building a sandcastle", "swinging", "picking berries", "going down the slide"},
				TimeEstimate:    3,
				InteractionKind: models.InteractionKindOpenEnded,
			},
			{
				ID:              "little_problem",
				Order:           4,
				Title:           "A Little Problem",
				SimpleTitle:     "Problem",
				Description:     "A tiny difficulty appears in the story.",
				EducationalGoal: "Gently introduce facing a problem and thinking about solutions.",
				ChildPrompt:     "Uh oh, while our hero was playing, a little problem came up! What happened?",
				ParentGuidance: "Keep the problem very simple and age-appropriate.\n" +
					"For example: the bunny lost its carrot, or the ball rolled away.\n" +
					"Avoid anything scary. The point is to wonder together about what to do.",
				VisualCues:      []string{"little problem", "oops", "confused face"},
				Suggestions:     []string{"something got lost", "the ball rolled away", "it suddenly started to rain"},
				TimeEstimate:    3,
				InteractionKind: models.InteractionKindOpenEnded,
			},
			{
				ID:              "happy_solution",
				Order:           5,
				Title:           "All Better Now",
				SimpleTitle:     "Solved",
				Description:     "The hero happily solves the little problem.",
				EducationalGoal: "Give positive feedback and the joy of solving a problem.",
				ChildPrompt:     "Wow! How did our hero fix it? What happened next?",
				ParentGuidance: "Guide the child toward a simple solution.\n" +
					"Offer hints like \"maybe ask mommy for help?\" or \"can we pick it up with our hands?\"\n" +
					"Celebrate the happy ending so the child feels proud.",
				VisualCues:      []string{"happy ending", "problem solved", "smiling"},
				Suggestions:     []string{"mommy helped find it", "picked it up all by themselves", "the rain stopped and a rainbow came out"},
				TimeEstimate:    3,
				InteractionKind: models.InteractionKindOpenEnded,
			},
		},
	}
}
