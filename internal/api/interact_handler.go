package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/storysprout/storysprout/internal/models"
)

// imageWorthyStages are the stage ids that always get an illustration; other
// stages only get one when they complete the story.
var imageWorthyStages = map[string]bool{
	"character":      true,
	"place":          true,
	"happy_solution": true,
}

// interactResponse is the turn result plus the transport-level image fields.
type interactResponse struct {
	models.TurnResult
	ImageData  string `json:"image_data,omitempty"`
	ImageError string `json:"image_error,omitempty"`
}

func (s *Server) interactHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
		return
	}
	var req models.InteractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("invalid JSON payload"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	result, err := s.engine.ProcessInteraction(r.Context(), req.SessionID, req.UserInput, req.StageID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := interactResponse{TurnResult: *result}

	// Illustration cadence: the just-completed stage must carry visual cues,
	// and either be one of the always-illustrated stages or end the story.
	if stage := result.CurrentStage; stage != nil && len(stage.VisualCues) > 0 &&
		(imageWorthyStages[stage.ID] || result.StoryComplete) && s.images != nil {
		imageData, imgErr := s.images.GenerateImage(r.Context(), buildImagePrompt(*stage, req.UserInput))
		if imgErr != nil {
			slog.Warn("Server.interactHandler: image generation failed", "sessionID", req.SessionID, "stage", stage.ID, "error", imgErr)
			resp.ImageError = imgErr.Error()
		} else {
			resp.ImageData = imageData
		}
	}

	if result.StoryComplete {
		s.archiveStory(req.SessionID, result, resp.ImageData)
	}

	writeJSONResponse(w, http.StatusOK, models.Success(resp))
}

// buildImagePrompt composes an illustration prompt from the stage's visual cues
// and the child's input.
func buildImagePrompt(stage models.Stage, userInput string) string {
	var b strings.Builder
	b.WriteString("Vibrant storybook illustration for a young child. ")
	if len(stage.VisualCues) > 0 {
		b.WriteString(strings.Join(stage.VisualCues, ", "))
		b.WriteString(". ")
	}
	fmt.Fprintf(&b, "The child described or chose: %q. ", userInput)
	if stage.SimpleTitle != "" {
		fmt.Fprintf(&b, "This is for the story stage: %q.", stage.SimpleTitle)
	}
	return b.String()
}

// archiveStory saves the completed narrative. Best-effort: failures are logged
// and never affect the turn response already produced.
func (s *Server) archiveStory(sessionID string, result *models.TurnResult, imageData string) {
	if s.archive == nil {
		return
	}
	sess, err := s.engine.GetSession(sessionID)
	if err != nil {
		slog.Warn("Server.archiveStory: session lookup failed", "sessionID", sessionID, "error", err)
		return
	}

	story, err := s.engine.StoryRecord(sess)
	if err != nil {
		slog.Warn("Server.archiveStory: could not build story record", "sessionID", sessionID, "error", err)
		return
	}
	if imageData != "" && result.CurrentStage != nil {
		for i := range story.Stages {
			if story.Stages[i].StageID == result.CurrentStage.ID {
				story.Stages[i].ImageRef = imageData
			}
		}
		story.FinalImageRef = imageData
	}

	if err := s.archive.SaveStory(story); err != nil {
		slog.Warn("Server.archiveStory: save failed", "sessionID", sessionID, "storyID", story.ID, "error", err)
		return
	}
	slog.Info("Server.archiveStory: story saved", "sessionID", sessionID, "storyID", story.ID)
}
