package ports

import (
	"context"

	"salesdash/domain/core"
	"salesdash/domain/prediction"
)

// PredictionRepository is the append-only prediction log
type PredictionRepository interface {
	Save(ctx context.Context, p *prediction.Prediction) error
	ListRecent(ctx context.Context, variant core.VariantName, limit int) ([]*prediction.Prediction, error)
	Close() error
}
