package postprocessors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/postprocessors/chunker"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r)
	assert.Empty(t, r.Names())
}

func TestRegistry_RegisterAndBuild(t *testing.T) {
	r := NewRegistry()
	r.Register("mock", func(_ map[string]any) (driven.PostProcessor, error) {
		return &mockProcessor{name: "mock"}, nil
	})

	assert.True(t, r.Has("mock"))
	assert.False(t, r.Has("other"))

	proc, err := r.Build("mock", nil)
	require.NoError(t, err)
	assert.Equal(t, "mock", proc.Name())
}

func TestRegistry_Build_UnknownProcessor(t *testing.T) {
	r := NewRegistry()

	_, err := r.Build("missing", nil)
	assert.EqualError(t, err, "unknown processor: missing")
}

func TestRegistry_Names_Sorted(t *testing.T) {
	r := NewRegistry()
	noop := func(_ map[string]any) (driven.PostProcessor, error) { return &mockProcessor{}, nil }
	r.Register("zeta", noop)
	r.Register("alpha", noop)

	assert.Equal(t, []string{"alpha", "zeta"}, r.Names())
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	for _, name := range DefaultPipeline {
		assert.True(t, r.Has(name), name)
	}
}

func TestBuildChunker_WithConfig(t *testing.T) {
	proc, err := buildChunker(map[string]any{"chunk_size": int64(500), "overlap": float64(50)})
	require.NoError(t, err)

	c, ok := proc.(*chunker.Processor)
	require.True(t, ok)
	assert.Equal(t, 500, c.ChunkSize())
	assert.Equal(t, 50, c.Overlap())
}

func TestBuildChunker_WithNilConfig(t *testing.T) {
	proc, err := buildChunker(nil)
	require.NoError(t, err)

	c := proc.(*chunker.Processor)
	assert.Equal(t, chunker.DefaultChunkSize, c.ChunkSize())
	assert.Equal(t, chunker.DefaultChunkOverlap, c.Overlap())
}

func TestBuildChunker_InvalidConfig(t *testing.T) {
	_, err := buildChunker(map[string]any{"chunk_size": 100, "overlap": 100})
	assert.ErrorIs(t, err, chunker.ErrInvalidChunkConfig)
}

func TestIntFromConfig(t *testing.T) {
	cfg := map[string]any{"a": 1, "b": int64(2), "c": float64(3), "d": "4"}

	v, ok := intFromConfig(cfg, "a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = intFromConfig(cfg, "b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	v, ok = intFromConfig(cfg, "c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = intFromConfig(cfg, "d")
	assert.False(t, ok)

	_, ok = intFromConfig(cfg, "missing")
	assert.False(t, ok)
}

func TestBuildPipeline_FromSettings(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	p, err := r.BuildPipeline(DefaultPipeline, map[string]map[string]any{
		"chunker": ChunkerConfig(domain.ChunkerSettings{ChunkSize: 50, Overlap: 10}),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"chunker"}, p.Names())

	conv := &domain.Conversation{
		ID:       "c",
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "una frase abbastanza lunga da dividere in più pezzi diversi"}},
	}
	chunks, err := p.Process(context.Background(), conv)
	require.NoError(t, err)
	assert.Greater(t, len(chunks), 1)
}

func TestBuildPipeline_UnknownName(t *testing.T) {
	r := NewRegistry()

	_, err := r.BuildPipeline([]string{"nope"}, nil)
	assert.ErrorContains(t, err, "building nope")
}
