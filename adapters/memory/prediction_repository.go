package memory

import (
	"context"
	"sort"
	"sync"

	"salesdash/domain/core"
	"salesdash/domain/prediction"
	"salesdash/ports"
)

// DefaultCapacity bounds how many predictions are kept per variant
const DefaultCapacity = 500

// PredictionRepository is the prediction log used when no database is configured
type PredictionRepository struct {
	mu       sync.RWMutex
	capacity int
	byVar    map[core.VariantName][]*prediction.Prediction
}

// NewPredictionRepository creates an in-process log keeping the newest capacity entries per variant
func NewPredictionRepository(capacity int) *PredictionRepository {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &PredictionRepository{
		capacity: capacity,
		byVar:    make(map[core.VariantName][]*prediction.Prediction),
	}
}

func (r *PredictionRepository) Save(ctx context.Context, p *prediction.Prediction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := *p
	r.mu.Lock()
	defer r.mu.Unlock()
	list := append(r.byVar[p.Variant], &cp)
	if len(list) > r.capacity {
		list = list[len(list)-r.capacity:]
	}
	r.byVar[p.Variant] = list
	return nil
}

func (r *PredictionRepository) ListRecent(ctx context.Context, variant core.VariantName, limit int) ([]*prediction.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	list := append([]*prediction.Prediction(nil), r.byVar[variant]...)
	r.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].CreatedAt, list[j].CreatedAt
		if a.UnixMilli() != b.UnixMilli() {
			return a.After(b)
		}
		return list[i].ID > list[j].ID
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *PredictionRepository) Close() error { return nil }

var _ ports.PredictionRepository = (*PredictionRepository)(nil)
