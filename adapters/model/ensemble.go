package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"salesdash/domain/core"
	"salesdash/ports"
)

// ArtifactFormat identifies the native JSON model document
const ArtifactFormat = "salesdash-model/v1"

// Supported native model kinds
const (
	KindGradientBoosting = "gradient_boosting"
	KindRandomForest     = "random_forest"
	KindLinear           = "linear"
)

// Artifact is the on-disk native model document. Trees use the flat array
// layout of a fitted scikit-learn tree_ object.
type Artifact struct {
	Format       string    `json:"format"`
	Kind         string    `json:"kind"`
	NFeatures    int       `json:"n_features"`
	FeatureNames []string  `json:"feature_names,omitempty"`
	Init         float64   `json:"init,omitempty"`
	LearningRate float64   `json:"learning_rate,omitempty"`
	Intercept    float64   `json:"intercept,omitempty"`
	Coef         []float64 `json:"coef,omitempty"`
	Trees        []Tree    `json:"trees,omitempty"`
}

// Tree is one regression tree. A node is a leaf when ChildrenLeft is -1.
type Tree struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

const leaf = -1

func (t *Tree) validate(nFeatures int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("tree arrays differ in length (%d nodes)", n)
	}
	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if l == leaf || r == leaf {
			if l != r {
				return fmt.Errorf("node %d has a single child", i)
			}
			continue
		}
		// children always follow their parent, so walks terminate
		if l <= i || l >= n || r <= i || r >= n {
			return fmt.Errorf("node %d has out of order children (%d, %d)", i, l, r)
		}
		if f := t.Feature[i]; f < 0 || f >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d outside [0,%d)", i, f, nFeatures)
		}
	}
	return nil
}

func (t *Tree) eval(x []float64) float64 {
	node := 0
	for t.ChildrenLeft[node] != leaf {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

// Validate checks the document before it is used for inference
func (a *Artifact) Validate() error {
	if a.Format != ArtifactFormat {
		return fmt.Errorf("format %q, want %q: %w", a.Format, ArtifactFormat, core.ErrInvalidArtifact)
	}
	if a.NFeatures <= 0 {
		return fmt.Errorf("n_features must be positive: %w", core.ErrInvalidArtifact)
	}
	if len(a.FeatureNames) > 0 && len(a.FeatureNames) != a.NFeatures {
		return fmt.Errorf("%d feature names for %d features: %w", len(a.FeatureNames), a.NFeatures, core.ErrInvalidArtifact)
	}

	switch a.Kind {
	case KindLinear:
		if len(a.Coef) != a.NFeatures {
			return fmt.Errorf("%d coefficients for %d features: %w", len(a.Coef), a.NFeatures, core.ErrInvalidArtifact)
		}
		return nil
	case KindGradientBoosting, KindRandomForest:
		if len(a.Trees) == 0 {
			return fmt.Errorf("%s has no trees: %w", a.Kind, core.ErrInvalidArtifact)
		}
		if a.Kind == KindGradientBoosting && a.LearningRate <= 0 {
			return fmt.Errorf("learning_rate must be positive: %w", core.ErrInvalidArtifact)
		}
		for i := range a.Trees {
			if err := a.Trees[i].validate(a.NFeatures); err != nil {
				return fmt.Errorf("tree %d: %v: %w", i, err, core.ErrInvalidArtifact)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported kind %q: %w", a.Kind, core.ErrInvalidArtifact)
	}
}

// EnsembleModel evaluates a native artifact in process
type EnsembleModel struct {
	path     string
	artifact Artifact

	mu     sync.RWMutex
	closed bool
}

// NewEnsembleModel validates an artifact and wraps it as a ports.Model
func NewEnsembleModel(path string, a Artifact) (*EnsembleModel, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &EnsembleModel{path: path, artifact: a}, nil
}

// LoadEnsemble reads and validates a native JSON artifact
func LoadEnsemble(path string) (*EnsembleModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact %s: %w", path, err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact %s: %v: %w", path, err, core.ErrInvalidArtifact)
	}
	m, err := NewEnsembleModel(path, a)
	if err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	return m, nil
}

// Predict returns one value per row
func (m *EnsembleModel) Predict(ctx context.Context, rows [][]float64) ([]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, core.ErrModelClosed
	}
	if err := checkShape(rows, m.artifact.NFeatures); err != nil {
		return nil, err
	}

	out := make([]float64, len(rows))
	for i, x := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = m.eval(x)
	}
	return out, nil
}

func (m *EnsembleModel) eval(x []float64) float64 {
	a := &m.artifact
	switch a.Kind {
	case KindLinear:
		y := a.Intercept
		for j, c := range a.Coef {
			y += c * x[j]
		}
		return y
	case KindGradientBoosting:
		sum := 0.0
		for i := range a.Trees {
			sum += a.Trees[i].eval(x)
		}
		return a.Init + a.LearningRate*sum
	default:
		sum := 0.0
		for i := range a.Trees {
			sum += a.Trees[i].eval(x)
		}
		return sum / float64(len(a.Trees))
	}
}

// InputWidth is the number of features each row must carry
func (m *EnsembleModel) InputWidth() int { return m.artifact.NFeatures }

// FeatureNames returns the training column names when the artifact records them
func (m *EnsembleModel) FeatureNames() []string { return m.artifact.FeatureNames }

func (m *EnsembleModel) Info() ports.ModelInfo {
	return ports.ModelInfo{
		Path:       m.path,
		Format:     "json",
		Kind:       m.artifact.Kind,
		InputWidth: m.artifact.NFeatures,
	}
}

func (m *EnsembleModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func checkShape(rows [][]float64, width int) error {
	for i, r := range rows {
		if len(r) != width {
			return core.NewShapeMismatchError(i, len(r), width)
		}
	}
	return nil
}

var (
	_ ports.Model        = (*EnsembleModel)(nil)
	_ ports.FeatureNamer = (*EnsembleModel)(nil)
	_ ports.Model        = (*ONNXModel)(nil)
)
