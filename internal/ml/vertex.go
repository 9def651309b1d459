package ml

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

// VertexConfig holds configuration for the Vertex AI backend
type VertexConfig struct {
	ProjectID       string `json:"project_id"`
	Location        string `json:"location"`
	CredentialsFile string `json:"credentials_file"`
	Model           string `json:"model"`
}

// Load loads the Vertex configuration
func (c *VertexConfig) Load() error {
	if err := loadBackendConfig("vertex", c); err != nil {
		return err
	}

	// Fall back to environment variables if not set
	if c.ProjectID == "" {
		c.ProjectID = os.Getenv("GOOGLE_PROJECT_ID")
	}
	if c.Location == "" {
		c.Location = os.Getenv("GOOGLE_LOCATION")
	}
	if c.CredentialsFile == "" {
		c.CredentialsFile = os.Getenv("GOOGLE_CREDENTIALS_FILE")
	}
	if c.Model == "" {
		c.Model = "gemini-1.5-flash"
	}

	if c.ProjectID == "" {
		return fmt.Errorf("GOOGLE_PROJECT_ID is not set")
	}
	return nil
}

// VertexModel implements the Model interface for Google's Vertex AI
type VertexModel struct {
	config VertexConfig
	client *genai.Client
	model  *genai.GenerativeModel
}

// VertexModelFactory implements ModelFactory for Vertex models
type VertexModelFactory struct {
	config VertexConfig
}

// NewVertexModelFactory creates a new Vertex model factory
func NewVertexModelFactory(config VertexConfig) *VertexModelFactory {
	return &VertexModelFactory{config: config}
}

// CreateModel creates a new Vertex model instance
func (f *VertexModelFactory) CreateModel() (Model, error) {
	return &VertexModel{
		config: f.config,
	}, nil
}

// Load initializes the Vertex AI client
func (m *VertexModel) Load(ctx context.Context) error {
	opts := []option.ClientOption{}
	if m.config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(m.config.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, m.config.ProjectID, m.config.Location, opts...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	m.client = client
	m.model = client.GenerativeModel(m.config.Model)
	return nil
}

// AnalyzeImage sends the photo and prompt to Vertex AI and returns the raw
// free-text reply.
func (m *VertexModel) AnalyzeImage(ctx context.Context, imageData []byte, conditionType string) (string, error) {
	if m.model == nil {
		return "", fmt.Errorf("model not loaded")
	}

	resp, err := m.model.GenerateContent(ctx,
		genai.Text(buildPrompt(conditionType)),
		genai.ImageData("image/jpeg", imageData),
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
	// Vertex parts are not guaranteed to be Text; fall back to their
	// string form rather than failing the whole analysis.
	return fmt.Sprintf("%v", candidate.Content.Parts[0]), nil
}
