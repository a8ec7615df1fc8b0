package pricing

import (
	"context"
	"fmt"
	"sort"

	"salesdash/domain/core"
	"salesdash/domain/prediction"
	"salesdash/domain/schema"
	"salesdash/domain/variant"
	"salesdash/internal"
	apperrors "salesdash/internal/errors"
	"salesdash/ports"
)

// Deployment pairs a variant with its loaded model
type Deployment struct {
	Variant *variant.Variant
	Model   ports.Model
}

// Service turns form inputs into a price prediction.
// Deployments are registered during bootstrap and read-only afterwards.
type Service struct {
	deployments map[core.VariantName]*Deployment
	repo        ports.PredictionRepository
	logger      *internal.Logger
}

// NewService creates a pricing service; repo may be nil to disable the prediction log
func NewService(repo ports.PredictionRepository, logger *internal.Logger) *Service {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Service{
		deployments: make(map[core.VariantName]*Deployment),
		repo:        repo,
		logger:      logger,
	}
}

// Register validates that the variant's schema matches the model width and
// makes the variant available for prediction.
func (s *Service) Register(v *variant.Variant, m ports.Model) error {
	if err := v.Validate(); err != nil {
		return apperrors.WithCode(apperrors.CodeConfigInvalid, err)
	}
	if err := v.Schema.ValidateWidth(m.InputWidth()); err != nil {
		return apperrors.Wrapf(err, "variant %s: model %s", v.Name, m.Info().Path)
	}
	if named, ok := m.(ports.FeatureNamer); ok && len(named.FeatureNames()) > 0 {
		if err := v.Schema.ValidateNames(named.FeatureNames()); err != nil {
			return apperrors.Wrapf(err, "variant %s: model %s", v.Name, m.Info().Path)
		}
	}
	s.deployments[v.Name] = &Deployment{Variant: v, Model: m}
	s.logger.Info("[Pricing] registered variant %s (%d features, %s model)", v.Name, v.Schema.Width(), m.Info().Kind)
	return nil
}

// Deployment looks up a registered variant
func (s *Service) Deployment(name core.VariantName) (*Deployment, error) {
	d, ok := s.deployments[name]
	if !ok {
		return nil, apperrors.Wrap(fmt.Errorf("%w: %s", core.ErrVariantNotFound, name), "unknown variant")
	}
	return d, nil
}

// Variants returns the registered variant names in sorted order
func (s *Service) Variants() []core.VariantName {
	names := make([]core.VariantName, 0, len(s.deployments))
	for n := range s.deployments {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Predict assembles the feature vector, invokes the model once and formats the result
func (s *Service) Predict(ctx context.Context, name core.VariantName, inputs schema.Inputs) (*prediction.Prediction, error) {
	d, err := s.Deployment(name)
	if err != nil {
		return nil, err
	}

	vec, err := d.Variant.Schema.Assemble(inputs)
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid input")
	}

	out, err := d.Model.Predict(ctx, [][]float64{vec})
	if err != nil {
		return nil, apperrors.ModelError("model inference failed", err)
	}
	if len(out) != 1 {
		return nil, apperrors.ModelError("model inference failed",
			fmt.Errorf("%w: model returned %d values for one row", core.ErrShapeMismatch, len(out)))
	}

	p := prediction.New(name, inputs, vec, out[0], FormatCurrency(d.Variant.Currency, out[0]))
	s.logger.Debug("[Pricing] %s predicted %s", name, p.Formatted)

	if s.repo != nil {
		if err := s.repo.Save(ctx, p); err != nil {
			s.logger.Warn("[Pricing] failed to log prediction %s: %v", p.ID, err)
		}
	}
	return p, nil
}

// Recent returns the latest logged predictions for a variant, newest first
func (s *Service) Recent(ctx context.Context, name core.VariantName, limit int) ([]*prediction.Prediction, error) {
	if _, err := s.Deployment(name); err != nil {
		return nil, err
	}
	if s.repo == nil {
		return []*prediction.Prediction{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	items, err := s.repo.ListRecent(ctx, name, limit)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError, err)
	}
	return items, nil
}

// Close releases every registered model
func (s *Service) Close() error {
	var first error
	for _, d := range s.deployments {
		if err := d.Model.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
