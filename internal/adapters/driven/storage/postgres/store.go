package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq" // Postgres driver
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/recall/internal/adapters/driven/storage"
	"github.com/custodia-labs/recall/internal/adapters/driven/storage/postgres/migrations"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a pgvector-backed vector store.
type Store struct {
	db *sql.DB
}

// NewStore connects to databaseURL and applies pending migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("%w: database URL is required", domain.ErrStoreUnavailable)
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs all pending migrations and records each applied version.
func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}
	return nil
}

// Upsert stores rows, overwriting any with the same owner and chunk id.
func (s *Store) Upsert(ctx context.Context, rows []domain.ChunkRecord) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStoreError("upsert", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	dims := make(map[string]int)
	for _, r := range rows {
		want, ok := dims[r.OwnerID]
		if !ok {
			if want, err = ownerDimensions(ctx, tx, r.OwnerID); err != nil {
				return domain.NewStoreError("upsert", err)
			}
		}
		dim, err := storage.CheckDimensions([]domain.ChunkRecord{r}, want)
		if err != nil {
			return domain.NewStoreError("upsert", err)
		}
		dims[r.OwnerID] = dim
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chat_chunks
			(id, user_id, content, embedding, source, title, conversation_id, chunk_index, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, id) DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			source = EXCLUDED.source,
			title = EXCLUDED.title,
			conversation_id = EXCLUDED.conversation_id,
			chunk_index = EXCLUDED.chunk_index,
			created_at = EXCLUDED.created_at
	`)
	if err != nil {
		return domain.NewStoreError("upsert", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx,
			r.ID, r.OwnerID, r.Content, pgvector.NewVector(r.Vector),
			string(r.Source), r.Title, r.ConversationID, r.Index, r.CreatedAt,
		)
		if err != nil {
			return domain.NewStoreError("upsert", fmt.Errorf("row %s: %w", r.ID, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStoreError("upsert", err)
	}
	return nil
}

// Search calls match_chunks for the owner.
func (s *Store) Search(ctx context.Context, query []float32, ownerID string, topK int) ([]domain.SearchResult, error) {
	if err := s.checkQuery(ctx, query, ownerID); err != nil {
		return nil, domain.NewStoreError("search", err)
	}
	if topK <= 0 {
		return []domain.SearchResult{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, content, source, title, conversation_id, similarity FROM match_chunks($1, $2, $3)",
		pgvector.NewVector(query), topK, ownerID,
	)
	if err != nil {
		return nil, domain.NewStoreError("search", err)
	}
	defer rows.Close()

	results := []domain.SearchResult{}
	for rows.Next() {
		var (
			r      domain.SearchResult
			source string
		)
		if err := rows.Scan(&r.ID, &r.Content, &source, &r.Title, &r.ConversationID, &r.Similarity); err != nil {
			return nil, domain.NewStoreError("search", err)
		}
		r.Source = domain.Source(source)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("search", err)
	}
	return results, nil
}

// SearchInRange calls match_chunks_in_range for the owner.
func (s *Store) SearchInRange(
	ctx context.Context,
	query []float32,
	ownerID string,
	topK int,
	from, to time.Time,
) ([]domain.SearchResult, error) {
	if err := s.checkQuery(ctx, query, ownerID); err != nil {
		return nil, domain.NewStoreError("search_in_range", err)
	}
	if topK <= 0 {
		return []domain.SearchResult{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, source, title, conversation_id, similarity, created_at
		FROM match_chunks_in_range($1, $2, $3, $4, $5)`,
		pgvector.NewVector(query), topK, ownerID, from, to,
	)
	if err != nil {
		return nil, domain.NewStoreError("search_in_range", err)
	}
	defer rows.Close()

	results := []domain.SearchResult{}
	for rows.Next() {
		var (
			r       domain.SearchResult
			source  string
			created time.Time
		)
		err := rows.Scan(&r.ID, &r.Content, &source, &r.Title, &r.ConversationID, &r.Similarity, &created)
		if err != nil {
			return nil, domain.NewStoreError("search_in_range", err)
		}
		r.Source = domain.Source(source)
		created = created.UTC()
		r.CreatedAt = &created
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("search_in_range", err)
	}
	return results, nil
}

// checkQuery rejects a query whose length differs from the owner's rows.
// pgvector would fail the distance operator with a less useful message.
func (s *Store) checkQuery(ctx context.Context, query []float32, ownerID string) error {
	dim, err := ownerDimensions(ctx, s.db, ownerID)
	if err != nil {
		return err
	}
	if dim != 0 && dim != len(query) {
		return domain.ErrDimensionMismatch
	}
	return nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func ownerDimensions(ctx context.Context, q queryer, ownerID string) (int, error) {
	var dim int
	err := q.QueryRowContext(ctx,
		"SELECT vector_dims(embedding) FROM chat_chunks WHERE user_id = $1 LIMIT 1", ownerID,
	).Scan(&dim)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return dim, err
}
