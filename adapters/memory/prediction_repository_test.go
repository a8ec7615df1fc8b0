package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/domain/core"
	"salesdash/domain/prediction"
)

func at(variant core.VariantName, ms int64, value float64) *prediction.Prediction {
	p := prediction.New(variant, nil, []float64{value}, value, "")
	p.CreatedAt = core.FromUnixMilli(ms)
	return p
}

func TestPredictionRepository_NewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewPredictionRepository(0)

	require.NoError(t, repo.Save(ctx, at("gb21", 1000, 1)))
	require.NoError(t, repo.Save(ctx, at("gb21", 3000, 3)))
	require.NoError(t, repo.Save(ctx, at("gb21", 2000, 2)))
	require.NoError(t, repo.Save(ctx, at("rf15", 4000, 4)))

	got, err := repo.ListRecent(ctx, "gb21", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3.0, got[0].Value)
	assert.Equal(t, 2.0, got[1].Value)

	other, err := repo.ListRecent(ctx, "rf15", 10)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestPredictionRepository_Capacity(t *testing.T) {
	ctx := context.Background()
	repo := NewPredictionRepository(2)
	for i := int64(1); i <= 3; i++ {
		require.NoError(t, repo.Save(ctx, at("rf15", i*1000, float64(i))))
	}

	got, err := repo.ListRecent(ctx, "rf15", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3.0, got[0].Value)
	assert.Equal(t, 2.0, got[1].Value)
}
