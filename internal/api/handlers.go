package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/storysprout/storysprout/internal/catalog"
	"github.com/storysprout/storysprout/internal/models"
)

// templateListing is the catalog view returned by the templates endpoints: the
// template metadata plus its content projected into the shared scenario shape.
type templateListing struct {
	models.Template
	ScenarioView []models.Scenario `json:"scenario_view"`
}

func (s *Server) templatesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
		return
	}
	templates := s.catalog.List()
	listings := make([]templateListing, 0, len(templates))
	for _, t := range templates {
		listings = append(listings, templateListing{Template: t, ScenarioView: catalog.ScenarioView(t)})
	}
	writeJSONResponse(w, http.StatusOK, models.Success(listings))
}

func (s *Server) templateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/templates/")
	tmpl, ok := s.catalog.Get(id)
	if !ok {
		writeError(w, models.ErrTemplateNotFound)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(templateListing{Template: tmpl, ScenarioView: catalog.ScenarioView(tmpl)}))
}

func (s *Server) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
		return
	}
	var req models.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("invalid JSON payload"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	sess, err := s.engine.StartSession(req.ParticipantID, req.TemplateID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, models.Created(sess))
}

func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/sessions/")
	sess, err := s.engine.GetSession(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(sess))
}

func (s *Server) finishHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
		return
	}
	var req models.FinishSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("invalid JSON payload"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	sess, err := s.engine.FinishSession(req.SessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(sess))
}

func (s *Server) storiesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
		return
	}
	if s.archive == nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, models.Error("story archive not configured"))
		return
	}
	participantID := r.URL.Query().Get("participant_id")
	if participantID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("participant_id is required"))
		return
	}

	stories, err := s.archive.ListStories(participantID)
	if err != nil {
		slog.Error("Server.storiesHandler: archive query failed", "error", err, "participantID", participantID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("failed to list stories"))
		return
	}
	if stories == nil {
		stories = []models.Story{}
	}
	writeJSONResponse(w, http.StatusOK, models.Success(stories))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"status": "healthy"}))
}
