package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"salesdash/domain/core"
	"salesdash/domain/prediction"
	"salesdash/domain/schema"
	"salesdash/ports"
)

// PredictionRepositoryImpl implements PredictionRepository on PostgreSQL or SQLite
type PredictionRepositoryImpl struct {
	db *sqlx.DB
}

// NewPredictionRepository creates a SQL-backed prediction log
func NewPredictionRepository(db *sqlx.DB) ports.PredictionRepository {
	return &PredictionRepositoryImpl{db: db}
}

// predictionRow is the predictions table layout; vectors are stored as JSON text
type predictionRow struct {
	ID            string  `db:"id"`
	Variant       string  `db:"variant"`
	Inputs        string  `db:"inputs"`
	Features      string  `db:"features"`
	Value         float64 `db:"value"`
	Formatted     string  `db:"formatted"`
	CreatedUnixMs int64   `db:"created_unix_ms"`
}

func toRow(p *prediction.Prediction) (*predictionRow, error) {
	inputs := p.Inputs
	if inputs == nil {
		inputs = schema.Inputs{}
	}
	inputsJSON, err := json.Marshal(inputs)
	if err != nil {
		return nil, err
	}
	featuresJSON, err := json.Marshal(p.Features)
	if err != nil {
		return nil, err
	}
	return &predictionRow{
		ID:            p.ID.String(),
		Variant:       p.Variant.String(),
		Inputs:        string(inputsJSON),
		Features:      string(featuresJSON),
		Value:         p.Value,
		Formatted:     p.Formatted,
		CreatedUnixMs: p.CreatedAt.UnixMilli(),
	}, nil
}

func (r predictionRow) toPrediction() (*prediction.Prediction, error) {
	p := &prediction.Prediction{
		ID:        core.PredictionID(r.ID),
		Variant:   core.VariantName(r.Variant),
		Value:     r.Value,
		Formatted: r.Formatted,
		CreatedAt: core.FromUnixMilli(r.CreatedUnixMs),
	}
	if err := json.Unmarshal([]byte(r.Inputs), &p.Inputs); err != nil {
		return nil, fmt.Errorf("prediction %s inputs: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.Features), &p.Features); err != nil {
		return nil, fmt.Errorf("prediction %s features: %w", r.ID, err)
	}
	return p, nil
}

// Save appends a prediction to the log
func (r *PredictionRepositoryImpl) Save(ctx context.Context, p *prediction.Prediction) error {
	row, err := toRow(p)
	if err != nil {
		return err
	}
	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO predictions (
			id, variant, inputs, features, value, formatted, created_unix_ms
		) VALUES (
			:id, :variant, :inputs, :features, :value, :formatted, :created_unix_ms
		)
	`, row)
	return err
}

// ListRecent returns the newest predictions of a variant first
func (r *PredictionRepositoryImpl) ListRecent(ctx context.Context, variant core.VariantName, limit int) ([]*prediction.Prediction, error) {
	var rows []predictionRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT id, variant, inputs, features, value, formatted, created_unix_ms
		FROM predictions
		WHERE variant = ?
		ORDER BY created_unix_ms DESC, id DESC
		LIMIT ?
	`), variant.String(), limit)
	if err != nil {
		return nil, err
	}

	out := make([]*prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		p, err := row.toPrediction()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *PredictionRepositoryImpl) Close() error {
	return r.db.Close()
}
