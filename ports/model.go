package ports

import (
	"context"
)

// ModelInfo describes a loaded model artifact
type ModelInfo struct {
	Path       string `json:"path"`
	Format     string `json:"format"` // "json" or "onnx"
	Kind       string `json:"kind"`   // gradient_boosting, random_forest, linear, onnx
	InputWidth int    `json:"input_width"`
}

// Model is a pre-trained regression artifact exposing a single inference operation.
// Predict accepts rows of exactly InputWidth features and returns one value per row.
type Model interface {
	Predict(ctx context.Context, rows [][]float64) ([]float64, error)
	InputWidth() int
	Info() ModelInfo
	Close() error
}

// FeatureNamer is implemented by models whose artifact records the training
// column names. An empty result means the artifact carries none.
type FeatureNamer interface {
	FeatureNames() []string
}

// ModelLoader opens a model artifact from disk
type ModelLoader interface {
	Load(ctx context.Context, path string) (Model, error)
}
