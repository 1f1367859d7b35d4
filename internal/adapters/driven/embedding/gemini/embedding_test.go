package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNewEmbeddingService_RequiresKey(t *testing.T) {
	_, err := NewEmbeddingService(context.Background(), Config{})
	assert.Error(t, err)
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc, err := NewEmbeddingService(context.Background(), Config{APIKey: "key"})
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.NoError(t, svc.Close())
}

func TestEmbedBatch_Empty(t *testing.T) {
	svc, err := NewEmbeddingService(context.Background(), Config{APIKey: "key"})
	require.NoError(t, err)

	vectors, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(genai.APIError{Code: 429}))
	assert.True(t, isTransient(fmt.Errorf("wrapped: %w", genai.APIError{Code: 503})))
	assert.False(t, isTransient(genai.APIError{Code: 400}))
	assert.False(t, isTransient(context.Canceled))
	assert.True(t, isTransient(context.DeadlineExceeded))
	assert.False(t, isTransient(errors.New("other")))
}
