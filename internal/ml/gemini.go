package ml

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiConfig holds configuration for the Gemini API backend
type GeminiConfig struct {
	APIKey string `json:"api_key"`
	Model  string `json:"model"`
}

// Load loads the Gemini configuration
func (c *GeminiConfig) Load() error {
	if err := loadBackendConfig("gemini", c); err != nil {
		return err
	}

	// Fall back to environment variables if not set
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.Model == "" {
		c.Model = "gemini-1.5-flash"
	}

	if c.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is not set")
	}
	return nil
}

// GeminiModel implements the Model interface for the Gemini API
type GeminiModel struct {
	config GeminiConfig
	client *genai.Client
	model  *genai.GenerativeModel
}

// GeminiModelFactory implements ModelFactory for Gemini models
type GeminiModelFactory struct {
	config GeminiConfig
}

// NewGeminiModelFactory creates a new Gemini model factory
func NewGeminiModelFactory(config GeminiConfig) *GeminiModelFactory {
	return &GeminiModelFactory{config: config}
}

// CreateModel creates a new Gemini model instance
func (f *GeminiModelFactory) CreateModel() (Model, error) {
	return &GeminiModel{
		config: f.config,
	}, nil
}

// Load initializes the Gemini client
func (m *GeminiModel) Load(ctx context.Context) error {
	client, err := genai.NewClient(ctx, option.WithAPIKey(m.config.APIKey))
	if err != nil {
		return fmt.Errorf("failed to create gemini client: %w", err)
	}

	m.client = client
	m.model = client.GenerativeModel(m.config.Model)
	return nil
}

// AnalyzeImage sends the photo and prompt to Gemini and returns the raw
// free-text reply. Structuring the reply is the parser's job, not ours.
func (m *GeminiModel) AnalyzeImage(ctx context.Context, imageData []byte, conditionType string) (string, error) {
	if m.model == nil {
		return "", fmt.Errorf("model not loaded")
	}

	resp, err := m.model.GenerateContent(ctx,
		genai.Text(buildPrompt(conditionType)),
		genai.ImageData("jpeg", imageData),
	)
	if err != nil {
		return "", fmt.Errorf("failed to call ai: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response generated")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	if text, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(text), nil
	}
	return "", fmt.Errorf("unexpected response format")
}
