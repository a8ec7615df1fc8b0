package prediction

import (
	"salesdash/domain/core"
	"salesdash/domain/schema"
)

// Prediction is one model invocation triggered by the predict button
type Prediction struct {
	ID        core.PredictionID    `json:"id"`
	Variant   core.VariantName     `json:"variant"`
	Inputs    schema.Inputs        `json:"inputs,omitempty"`
	Features  schema.FeatureVector `json:"features"`
	Value     float64              `json:"value"`
	Formatted string               `json:"formatted"`
	CreatedAt core.Timestamp       `json:"created_at"`
}

// New stamps a fresh prediction record
func New(variant core.VariantName, inputs schema.Inputs, features schema.FeatureVector, value float64, formatted string) *Prediction {
	return &Prediction{
		ID:        core.NewPredictionID(),
		Variant:   variant,
		Inputs:    inputs,
		Features:  features,
		Value:     value,
		Formatted: formatted,
		CreatedAt: core.Now(),
	}
}
