package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
	"github.com/custodia-labs/recall/internal/logger"
	"github.com/custodia-labs/recall/internal/util"
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

// Live session labels.
const (
	SessionAssistantLabel = "llucy"
	SessionTitle          = "Conversazione con llucy"
)

// SessionService saves a live assistant session as a single memory chunk.
type SessionService struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
	now      func() time.Time
}

// NewSessionService creates a new session service.
func NewSessionService(embedder driven.EmbeddingService, store driven.VectorStore) *SessionService {
	return &SessionService{
		embedder: embedder,
		store:    store,
		now:      time.Now,
	}
}

// SetClock overrides the time source used for chunk ids and timestamps.
func (s *SessionService) SetClock(now func() time.Time) {
	s.now = now
}

// Save embeds the whole transcript once and upserts it.
// An empty message list is a no-op.
func (s *SessionService) Save(ctx context.Context, req domain.SessionRequest) error {
	if err := util.Validate(req); err != nil {
		return err
	}

	msgs := make([]domain.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		if strings.TrimSpace(m.Content) != "" {
			msgs = append(msgs, m)
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	if s.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}

	transcript := domain.FormatTranscript(msgs, SessionAssistantLabel)
	vector, err := s.embedder.Embed(ctx, transcript)
	if err != nil {
		return fmt.Errorf("embedding session: %w", err)
	}

	at := s.now()
	row := domain.ChunkRecord{
		Chunk: domain.Chunk{
			ID:             fmt.Sprintf("llucy-%s-%d", req.SessionID, at.UnixMilli()),
			ConversationID: req.SessionID,
			Content:        transcript,
			Source:         domain.SourceLlucy,
			Title:          SessionTitle,
		},
		OwnerID:   req.OwnerID,
		Vector:    vector,
		CreatedAt: at,
	}
	if err := s.store.Upsert(ctx, []domain.ChunkRecord{row}); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	logger.Debug("Saved session %s (%d messages)", req.SessionID, len(msgs))
	return nil
}
