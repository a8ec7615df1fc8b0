package model

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"salesdash/domain/core"
	"salesdash/internal"
	"salesdash/ports"
)

// Loader picks a model backend from the artifact's file extension
type Loader struct {
	OrtLibraryPath string
	logger         *internal.Logger
}

// NewLoader creates a loader; ortLibraryPath may be empty when only JSON artifacts are used
func NewLoader(ortLibraryPath string, logger *internal.Logger) *Loader {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Loader{OrtLibraryPath: ortLibraryPath, logger: logger}
}

// Load opens the artifact at path
func (l *Loader) Load(ctx context.Context, path string) (ports.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	l.logger.Debug("[ModelLoader] loading %s artifact %s", ext, path)

	var (
		m   ports.Model
		err error
	)
	switch ext {
	case ".json":
		m, err = LoadEnsemble(path)
	case ".onnx":
		m, err = LoadONNX(path, l.OrtLibraryPath)
	default:
		return nil, fmt.Errorf("unsupported model artifact %q (want .json or .onnx): %w", path, core.ErrInvalidArtifact)
	}
	if err != nil {
		return nil, err
	}

	info := m.Info()
	l.logger.Info("[ModelLoader] loaded %s model %s (%d features)", info.Kind, filepath.Base(path), info.InputWidth)
	return m, nil
}

var _ ports.ModelLoader = (*Loader)(nil)
