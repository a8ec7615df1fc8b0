package model

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"salesdash/domain/core"
	"salesdash/ports"
)

var (
	ortMu    sync.Mutex
	ortReady bool
)

// initRuntime loads the onnxruntime shared library once per process
func initRuntime(libraryPath string) error {
	ortMu.Lock()
	defer ortMu.Unlock()
	if ortReady || ort.IsInitialized() {
		ortReady = true
		return nil
	}
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize onnxruntime: %w", err)
	}
	ortReady = true
	return nil
}

// ONNXModel runs a single-input, single-output regression graph, as produced
// by skl2onnx for scikit-learn regressors.
type ONNXModel struct {
	path       string
	inputName  string
	outputName string
	width      int

	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
}

// LoadONNX opens a session for the model at path
func LoadONNX(path, libraryPath string) (*ONNXModel, error) {
	if err := initRuntime(libraryPath); err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect onnx model %s: %v: %w", path, err, core.ErrInvalidArtifact)
	}
	if len(inputs) != 1 || len(outputs) < 1 {
		return nil, fmt.Errorf("onnx model %s has %d inputs and %d outputs, want 1 and 1: %w",
			path, len(inputs), len(outputs), core.ErrInvalidArtifact)
	}
	dims := inputs[0].Dimensions
	if len(dims) != 2 || dims[1] <= 0 {
		return nil, fmt.Errorf("onnx model %s input shape %v is not [batch, features]: %w", path, dims, core.ErrInvalidArtifact)
	}

	session, err := ort.NewDynamicAdvancedSession(path,
		[]string{inputs[0].Name}, []string{outputs[0].Name}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create onnx session for %s: %w", path, err)
	}

	return &ONNXModel{
		path:       path,
		inputName:  inputs[0].Name,
		outputName: outputs[0].Name,
		width:      int(dims[1]),
		session:    session,
	}, nil
}

// Predict runs the batch through the session
func (m *ONNXModel) Predict(ctx context.Context, rows [][]float64) ([]float64, error) {
	if err := checkShape(rows, m.width); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []float64{}, nil
	}

	flat := make([]float32, 0, len(rows)*m.width)
	for _, r := range rows {
		for _, v := range r {
			flat = append(flat, float32(v))
		}
	}

	input, err := ort.NewTensor(ort.NewShape(int64(len(rows)), int64(m.width)), flat)
	if err != nil {
		return nil, fmt.Errorf("failed to build input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(int64(len(rows)), 1))
	if err != nil {
		return nil, fmt.Errorf("failed to build output tensor: %w", err)
	}
	defer output.Destroy()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, core.ErrModelClosed
	}
	if err := m.session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return nil, fmt.Errorf("onnx inference failed: %w", err)
	}

	data := output.GetData()
	out := make([]float64, len(rows))
	for i := range out {
		out[i] = float64(data[i])
	}
	return out, nil
}

func (m *ONNXModel) InputWidth() int { return m.width }

func (m *ONNXModel) Info() ports.ModelInfo {
	return ports.ModelInfo{Path: m.path, Format: "onnx", Kind: "onnx", InputWidth: m.width}
}

// Close destroys the session; later Predict calls fail with ErrModelClosed
func (m *ONNXModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	err := m.session.Destroy()
	m.session = nil
	return err
}
