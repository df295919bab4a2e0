package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/storysprout/storysprout/internal/catalog"
	"github.com/storysprout/storysprout/internal/learning"
	"github.com/storysprout/storysprout/internal/models"
	"github.com/storysprout/storysprout/internal/store"
)

// stubCollaborator returns fixed analysis and guidance for every turn.
type stubCollaborator struct{}

func (stubCollaborator) AnalyzeQuality(ctx context.Context, text string, levelOrStage int, storyMode bool) (models.QualityAnalysis, error) {
	return models.QualityAnalysis{
		Clarity: 80, Detail: 70, Emotion: 60, Structure: 75, Visual: 65, Overall: 72,
		Suggestions: []string{}, OptimizedPrompt: text,
	}, nil
}

func (stubCollaborator) GenerateGuidance(ctx context.Context, text string, levelOrStage int, contextLabel string, storyMode bool) (string, error) {
	return "Lovely! Tell me more!", nil
}

// stubImages records prompts and returns a canned data URL.
type stubImages struct {
	prompts []string
	err     error
}

func (s *stubImages) GenerateImage(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return "data:image/png;base64,aW1n", nil
}

func newTestServer(t *testing.T, images ImageGenerator, archive store.Store) *Server {
	t.Helper()
	cat := catalog.New()
	sessions := learning.NewInMemorySessionStore(cat)
	engine := learning.NewEngine(cat, sessions, stubCollaborator{}, nil)
	return NewServer(engine, cat, images, archive)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s returned invalid JSON: %v (body %q)", method, path, err, rec.Body.String())
	}
	return rec, resp
}

func createSession(t *testing.T, handler http.Handler, templateID string) string {
	t.Helper()
	rec, resp := doJSON(t, handler, http.MethodPost, "/sessions", models.CreateSessionRequest{
		ParticipantID: "parent1",
		TemplateID:    templateID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /sessions = %d, body %s", rec.Code, rec.Body.String())
	}
	sess, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("session result has unexpected shape: %v", resp.Result)
	}
	id, _ := sess["id"].(string)
	if id == "" {
		t.Fatal("created session has no id")
	}
	return id
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestServer(t, nil, nil).Handler()
	rec, resp := doJSON(t, handler, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health = %d, want 200", rec.Code)
	}
	if resp.Status != "ok" {
		t.Errorf("health status = %q, want ok", resp.Status)
	}
}

func TestTemplatesEndpoints(t *testing.T) {
	handler := newTestServer(t, nil, nil).Handler()

	rec, resp := doJSON(t, handler, http.MethodGet, "/templates", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /templates = %d", rec.Code)
	}
	listings, ok := resp.Result.([]interface{})
	if !ok || len(listings) != 2 {
		t.Fatalf("templates result = %v, want 2 listings", resp.Result)
	}
	first, _ := listings[0].(map[string]interface{})
	if _, ok := first["scenario_view"]; !ok {
		t.Error("template listing missing scenario_view")
	}

	rec, _ = doJSON(t, handler, http.MethodGet, "/templates/toddler_adventure", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /templates/toddler_adventure = %d, want 200", rec.Code)
	}

	rec, resp = doJSON(t, handler, http.MethodGet, "/templates/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /templates/nope = %d, want 404", rec.Code)
	}
	if resp.Status != "error" {
		t.Errorf("missing template status = %q, want error", resp.Status)
	}
}

func TestCreateSessionValidation(t *testing.T) {
	handler := newTestServer(t, nil, nil).Handler()

	rec, _ := doJSON(t, handler, http.MethodPost, "/sessions", models.CreateSessionRequest{TemplateID: "daily-life"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /sessions without participant = %d, want 400", rec.Code)
	}

	rec, _ = doJSON(t, handler, http.MethodPost, "/sessions", models.CreateSessionRequest{
		ParticipantID: "parent1", TemplateID: "nope",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("POST /sessions with unknown template = %d, want 404", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader("{not json"))
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusBadRequest {
		t.Errorf("POST /sessions with bad JSON = %d, want 400", rec2.Code)
	}
}

func TestInteractErrorMapping(t *testing.T) {
	handler := newTestServer(t, nil, nil).Handler()

	rec, _ := doJSON(t, handler, http.MethodPost, "/interact", models.InteractRequest{
		SessionID: "sess_missing", UserInput: "a bunny",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("interact on missing session = %d, want 404", rec.Code)
	}

	id := createSession(t, handler, "toddler_adventure")
	rec, _ = doJSON(t, handler, http.MethodPost, "/interact", models.InteractRequest{
		SessionID: id, UserInput: "the beach", StageID: "place",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("interact on wrong stage = %d, want 409", rec.Code)
	}
}

func TestStoryFlowWithImagesAndArchive(t *testing.T) {
	images := &stubImages{}
	archive := store.NewInMemoryStore()
	handler := newTestServer(t, images, archive).Handler()

	id := createSession(t, handler, "toddler_adventure")
	turns := []struct {
		stageID   string
		input     string
		wantImage bool
	}{
		{"character", "a little bunny", true},
		{"place", "the beach", true},
		{"activity", "building a sandcastle", false},
		{"little_problem", "the bucket floated away", false},
		{"happy_solution", "daddy caught it", true},
	}

	for _, turn := range turns {
		rec, resp := doJSON(t, handler, http.MethodPost, "/interact", models.InteractRequest{
			SessionID: id, UserInput: turn.input, StageID: turn.stageID,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("interact %s = %d, body %s", turn.stageID, rec.Code, rec.Body.String())
		}
		result, _ := resp.Result.(map[string]interface{})
		_, gotImage := result["image_data"]
		if gotImage != turn.wantImage {
			t.Errorf("stage %s: image present = %v, want %v", turn.stageID, gotImage, turn.wantImage)
		}
	}

	if len(images.prompts) != 3 {
		t.Errorf("image generator called %d times, want 3", len(images.prompts))
	}
	for _, p := range images.prompts {
		if !strings.Contains(p, "storybook illustration") {
			t.Errorf("image prompt %q missing the illustration framing", p)
		}
	}

	stories, err := archive.ListStories("parent1")
	if err != nil {
		t.Fatalf("ListStories failed: %v", err)
	}
	if len(stories) != 1 {
		t.Fatalf("archive holds %d stories, want 1", len(stories))
	}
	story := stories[0]
	if story.Title != "a little bunny - Today's Little Adventure" {
		t.Errorf("archived title = %q", story.Title)
	}
	if len(story.Stages) != 5 {
		t.Errorf("archived stages = %d, want 5", len(story.Stages))
	}
	if story.FinalImageRef == "" {
		t.Error("archived story missing final image ref")
	}

	// The archive endpoint surfaces the saved story.
	rec, resp := doJSON(t, handler, http.MethodGet, "/stories?participant_id=parent1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /stories = %d", rec.Code)
	}
	listed, _ := resp.Result.([]interface{})
	if len(listed) != 1 {
		t.Errorf("GET /stories returned %d stories, want 1", len(listed))
	}
}

func TestImageFailureDoesNotFailTurn(t *testing.T) {
	images := &stubImages{err: errors.New("quota exceeded")}
	handler := newTestServer(t, images, nil).Handler()

	id := createSession(t, handler, "toddler_adventure")
	rec, resp := doJSON(t, handler, http.MethodPost, "/interact", models.InteractRequest{
		SessionID: id, UserInput: "a little bunny", StageID: "character",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("interact with failing images = %d, want 200", rec.Code)
	}
	result, _ := resp.Result.(map[string]interface{})
	if _, ok := result["image_data"]; ok {
		t.Error("failed generation still produced image_data")
	}
	if _, ok := result["image_error"]; !ok {
		t.Error("failed generation did not surface image_error")
	}
}

func TestLeveledInteractResponseShape(t *testing.T) {
	handler := newTestServer(t, nil, nil).Handler()

	id := createSession(t, handler, "daily-life")
	rec, resp := doJSON(t, handler, http.MethodPost, "/interact", models.InteractRequest{
		SessionID: id, UserInput: "the happy little bunny jumps in the park", StageID: "morning",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("leveled interact = %d", rec.Code)
	}
	result, _ := resp.Result.(map[string]interface{})
	if _, ok := result["level_progress"]; !ok {
		t.Error("leveled turn missing level_progress")
	}
	if _, ok := result["next_step"]; !ok {
		t.Error("leveled turn missing next_step")
	}
	if _, ok := result["current_stage"]; ok {
		t.Error("leveled turn carries linear stage fields")
	}
}

func TestFinishEndpoint(t *testing.T) {
	handler := newTestServer(t, nil, nil).Handler()

	id := createSession(t, handler, "daily-life")
	for i := 0; i < 2; i++ {
		rec, _ := doJSON(t, handler, http.MethodPost, "/interact", models.InteractRequest{
			SessionID: id, UserInput: fmt.Sprintf("a happy dog number %d", i),
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("interact %d = %d", i, rec.Code)
		}
	}

	rec, resp := doJSON(t, handler, http.MethodPost, "/finish", models.FinishSessionRequest{SessionID: id})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /finish = %d", rec.Code)
	}
	sess, _ := resp.Result.(map[string]interface{})
	score, ok := sess["final_score"].(float64)
	if !ok {
		t.Fatalf("finished session missing final_score: %v", resp.Result)
	}
	if score != 72 {
		t.Errorf("final score = %v, want 72", score)
	}

	rec, _ = doJSON(t, handler, http.MethodPost, "/finish", models.FinishSessionRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /finish without session id = %d, want 400", rec.Code)
	}
}

func TestStoriesEndpointGuards(t *testing.T) {
	handler := newTestServer(t, nil, nil).Handler()
	rec, _ := doJSON(t, handler, http.MethodGet, "/stories?participant_id=parent1", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /stories without archive = %d, want 503", rec.Code)
	}

	handler = newTestServer(t, nil, store.NewInMemoryStore()).Handler()
	rec, _ = doJSON(t, handler, http.MethodGet, "/stories", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("GET /stories without participant_id = %d, want 400", rec.Code)
	}

	rec, resp := doJSON(t, handler, http.MethodGet, "/stories?participant_id=parent1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /stories on empty archive = %d", rec.Code)
	}
	if resp.Status != "ok" {
		t.Errorf("empty archive status = %q, want ok", resp.Status)
	}
	if resp.Result != nil {
		if listed, ok := resp.Result.([]interface{}); !ok || len(listed) != 0 {
			t.Errorf("empty archive result = %v, want empty or absent", resp.Result)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestServer(t, nil, nil).Handler()
	paths := map[string]string{
		"/templates": http.MethodPost,
		"/sessions":  http.MethodGet,
		"/interact":  http.MethodGet,
		"/finish":    http.MethodGet,
		"/stories":   http.MethodPost,
		"/health":    http.MethodPost,
	}
	for path, method := range paths {
		rec, _ := doJSON(t, handler, method, path, nil)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s = %d, want 405", method, path, rec.Code)
		}
	}
}
