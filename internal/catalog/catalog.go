// Package catalog provides the static registry of progression templates.
//
// Templates are loaded once at startup and never mutated. The catalog has no
// behavior beyond lookup and a projection of linear stages into the shared
// scenario shape used by catalog views.
package catalog

import (
	"log/slog"

	"github.com/storysprout/storysprout/internal/models"
)

// Catalog is an immutable registry of templates keyed by id.
type Catalog struct {
	templates map[string]models.Template
	order     []string // preserves registration order for listings
}

// New creates a catalog populated with the built-in templates.
func New() *Catalog {
	c := &Catalog{templates: make(map[string]models.Template)}
	for _, t := range builtinTemplates() {
		c.register(t)
	}
	slog.Debug("Catalog initialized", "templates", len(c.order))
	return c
}

func (c *Catalog) register(t models.Template) {
	if _, exists := c.templates[t.ID]; exists {
		slog.Warn("Catalog register: duplicate template id ignored", "id", t.ID)
		return
	}
	c.templates[t.ID] = t
	c.order = append(c.order, t.ID)
}

// Get retrieves a template by id. The second return value reports whether the
// template exists; lookup failures are never papered over with a default.
func (c *Catalog) Get(id string) (models.Template, bool) {
	t, ok := c.templates[id]
	return t, ok
}

// List returns all templates in registration order.
func (c *Catalog) List() []models.Template {
	out := make([]models.Template, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.templates[id])
	}
	return out
}

// ScenarioView projects a template's content into the scenario shape regardless
// of kind, so catalog consumers can render both kinds uniformly. The underlying
// stage data is not modified.
func ScenarioView(t models.Template) []models.Scenario {
	if t.Kind == models.TemplateKindLeveled {
		return t.Scenarios
	}
	out := make([]models.Scenario, 0, len(t.Stages))
	for _, st := range t.Stages {
		out = append(out, models.Scenario{
			ID:               st.ID,
			Title:            st.Title,
			Description:      st.Description,
			Prompt:           st.ChildPrompt,
			ExpectedElements: st.Suggestions,
		})
	}
	return out
}
