package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/core/domain"
)

func TestSessionSave(t *testing.T) {
	emb := &mockEmbedder{}
	store := &mockStore{}
	svc := NewSessionService(emb, store)
	at := time.UnixMilli(1760455800000).UTC()
	svc.SetClock(func() time.Time { return at })

	err := svc.Save(context.Background(), domain.SessionRequest{
		OwnerID:   "u1",
		SessionID: "s-1",
		Messages: []domain.Message{
			{Role: domain.RoleUser, Content: "Ciao"},
			{Role: domain.RoleAssistant, Content: "Ciao! Come stai?"},
			{Role: domain.RoleUser, Content: "  "},
		},
	})
	require.NoError(t, err)

	rows := store.rows()
	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, "llucy-s-1-1760455800000", r.ID)
	assert.Equal(t, "s-1", r.ConversationID)
	assert.Equal(t, domain.SourceLlucy, r.Source)
	assert.Equal(t, SessionTitle, r.Title)
	assert.Equal(t, "Utente: Ciao\n\nllucy: Ciao! Come stai?", r.Content)
	assert.Equal(t, r.Content, emb.lastEmbed)
	assert.Equal(t, at, r.CreatedAt)
}

func TestSessionSave_EmptyIsNoop(t *testing.T) {
	store := &mockStore{}
	svc := NewSessionService(nil, store)

	err := svc.Save(context.Background(), domain.SessionRequest{OwnerID: "u1", SessionID: "s"})
	require.NoError(t, err)
	assert.Empty(t, store.upserts)
}

func TestSessionSave_Errors(t *testing.T) {
	msgs := []domain.Message{{Role: domain.RoleUser, Content: "ciao"}}

	t.Run("invalid request", func(t *testing.T) {
		err := NewSessionService(&mockEmbedder{}, &mockStore{}).
			Save(context.Background(), domain.SessionRequest{OwnerID: "u1", Messages: msgs})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("embedding failure", func(t *testing.T) {
		emb := &mockEmbedder{embedErr: errors.New("down")}
		err := NewSessionService(emb, &mockStore{}).
			Save(context.Background(), domain.SessionRequest{OwnerID: "u1", SessionID: "s", Messages: msgs})
		assert.ErrorContains(t, err, "down")
	})

	t.Run("store failure", func(t *testing.T) {
		store := &mockStore{upsertErr: domain.NewStoreError("upsert", errors.New("full"))}
		err := NewSessionService(&mockEmbedder{}, store).
			Save(context.Background(), domain.SessionRequest{OwnerID: "u1", SessionID: "s", Messages: msgs})
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})

	t.Run("no embedder", func(t *testing.T) {
		err := NewSessionService(nil, &mockStore{}).
			Save(context.Background(), domain.SessionRequest{OwnerID: "u1", SessionID: "s", Messages: msgs})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}
