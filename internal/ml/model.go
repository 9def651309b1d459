// Package ml wraps the generative vision backends behind a single Model
// interface. The rest of the app treats a backend as an opaque fallible
// call: image bytes plus a condition in, free text out.
package ml

import (
	"context"
	"fmt"
)

// Model represents a vision model that can analyze a condition photo
type Model interface {
	// Load initializes the model with its configuration
	Load(ctx context.Context) error
	// AnalyzeImage takes a photo and the selected condition id and returns
	// the model's free-text reply. Any failure means "analysis failed";
	// nothing is persisted from a failed call.
	AnalyzeImage(ctx context.Context, imageData []byte, conditionType string) (string, error)
}

// ModelFactory creates a new model instance based on configuration
type ModelFactory interface {
	// CreateModel creates a new model instance
	CreateModel() (Model, error)
}

// NewModel creates a new model instance based on the model type
func NewModel(modelType string) (Model, error) {
	var factory ModelFactory

	switch modelType {
	case "gemini":
		config := GeminiConfig{}
		if err := config.Load(); err != nil {
			return nil, fmt.Errorf("failed to load Gemini config: %w", err)
		}
		factory = NewGeminiModelFactory(config)
	case "vertex":
		config := VertexConfig{}
		if err := config.Load(); err != nil {
			return nil, fmt.Errorf("failed to load Vertex config: %w", err)
		}
		factory = NewVertexModelFactory(config)
	default:
		return nil, fmt.Errorf("unsupported model type: %s", modelType)
	}
	return factory.CreateModel()
}
