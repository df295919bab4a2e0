// Package genai provides the GenAI collaborator client using the OpenAI API.
//
// It exposes quality analysis, guidance generation, and image generation. The
// analysis and guidance operations always return structurally valid results:
// on any upstream failure they fall back to locally computed values instead of
// raising to the caller.
package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/storysprout/storysprout/internal/models"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = openai.ChatModelGPT4oMini

// chatService defines the minimal interface for chat completions.
type chatService interface {
	Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error)
}

// imageService defines the minimal interface for image generation.
type imageService interface {
	Generate(ctx context.Context, params openai.ImageGenerateParams) (openai.ImagesResponse, error)
}

// openAIChat adapts the OpenAI SDK to chatService.
type openAIChat struct {
	client openai.Client
}

func (s openAIChat) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return openai.ChatCompletion{}, err
	}
	return *resp, nil
}

// openAIImages adapts the OpenAI SDK to imageService.
type openAIImages struct {
	client openai.Client
}

func (s openAIImages) Generate(ctx context.Context, params openai.ImageGenerateParams) (openai.ImagesResponse, error) {
	resp, err := s.client.Images.Generate(ctx, params)
	if err != nil {
		return openai.ImagesResponse{}, err
	}
	return *resp, nil
}

// Opts holds configuration for the client.
type Opts struct {
	APIKey string
	Model  string
}

// Option configures the client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel sets the chat model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// Client wraps the OpenAI services behind the collaborator contract.
type Client struct {
	chat   chatService
	images imageService
	model  string
}

// NewClient initializes a client from options, falling back to the
// OPENAI_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	cli := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	slog.Debug("GenAI client initialized", "model", cfg.Model)
	return &Client{chat: openAIChat{client: cli}, images: openAIImages{client: cli}, model: cfg.Model}, nil
}

// NewOfflineClient creates a client with no upstream services. Every analysis
// and guidance call takes the local fallback path; image generation reports
// unavailable. Useful when no API key is configured.
func NewOfflineClient() *Client {
	slog.Warn("GenAI running offline: analysis and guidance use local fallbacks only")
	return &Client{model: DefaultModel}
}

// jsonBlockRe extracts the first JSON object from a model response that may be
// wrapped in prose or code fences.
var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// AnalyzeQuality scores the input text across five dimensions. storyMode
// switches to the gentler framing used for very young children's story input.
// The returned analysis is always structurally complete.
func (c *Client) AnalyzeQuality(ctx context.Context, text string, levelOrStage int, storyMode bool) (models.QualityAnalysis, error) {
	if c.chat == nil {
		return c.fallbackAnalysis(text, storyMode), nil
	}

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(analysisSystemPrompt),
			openai.UserMessage(buildAnalysisPrompt(text, levelOrStage, storyMode)),
		},
	}
	resp, err := c.chat.Create(ctx, params)
	if err != nil {
		slog.Warn("GenAI AnalyzeQuality upstream failed, using fallback", "error", err)
		return c.fallbackAnalysis(text, storyMode), nil
	}
	if len(resp.Choices) == 0 {
		slog.Warn("GenAI AnalyzeQuality returned no choices, using fallback")
		return c.fallbackAnalysis(text, storyMode), nil
	}

	analysis, ok := parseAnalysis(resp.Choices[0].Message.Content, text)
	if !ok {
		slog.Warn("GenAI AnalyzeQuality returned unparseable analysis, using fallback")
		return c.fallbackAnalysis(text, storyMode), nil
	}
	slog.Debug("GenAI AnalyzeQuality succeeded", "overall", analysis.Overall, "storyMode", storyMode)
	return analysis, nil
}

// GenerateGuidance produces the guidance text shown to the user. Never returns
// empty text.
func (c *Client) GenerateGuidance(ctx context.Context, text string, levelOrStage int, contextLabel string, storyMode bool) (string, error) {
	if c.chat == nil {
		return fallbackGuidance(storyMode), nil
	}

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(guidanceSystemPrompt(storyMode)),
			openai.UserMessage(buildGuidancePrompt(text, levelOrStage, contextLabel, storyMode)),
		},
	}
	resp, err := c.chat.Create(ctx, params)
	if err != nil {
		slog.Warn("GenAI GenerateGuidance upstream failed, using fallback", "error", err)
		return fallbackGuidance(storyMode), nil
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		slog.Warn("GenAI GenerateGuidance returned empty content, using fallback")
		return fallbackGuidance(storyMode), nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GenerateImage renders an illustration for the prompt and returns it as a
// data URL. Unlike analysis and guidance, image generation may fail; callers
// treat the image as absent.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if c.images == nil {
		return "", fmt.Errorf("image generation unavailable: no API key configured")
	}

	resp, err := c.images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModelDallE3,
		Size:           openai.ImageGenerateParamsSize1024x1024,
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
		N:              openai.Int(1),
	})
	if err != nil {
		slog.Warn("GenAI GenerateImage failed", "error", err)
		return "", fmt.Errorf("image generation failed: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", fmt.Errorf("image generation returned no image data")
	}
	return "data:image/png;base64," + resp.Data[0].B64JSON, nil
}

// parseAnalysis extracts and validates a QualityAnalysis from raw model output.
func parseAnalysis(content, originalText string) (models.QualityAnalysis, bool) {
	block := jsonBlockRe.FindString(content)
	if block == "" {
		return models.QualityAnalysis{}, false
	}

	var a models.QualityAnalysis
	if err := json.Unmarshal([]byte(block), &a); err != nil {
		return models.QualityAnalysis{}, false
	}

	for _, v := range []int{a.Clarity, a.Detail, a.Emotion, a.Structure, a.Visual, a.Overall} {
		if v < 0 || v > 100 {
			return models.QualityAnalysis{}, false
		}
	}
	if a.Suggestions == nil {
		a.Suggestions = []string{}
	}
	if a.OptimizedPrompt == "" {
		a.OptimizedPrompt = originalText
	}
	return a, true
}
