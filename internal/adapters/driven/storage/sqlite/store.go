package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/recall/internal/adapters/driven/storage"
	"github.com/custodia-labs/recall/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a SQLite-based vector store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.recall/data/memory.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".recall", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "memory.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations and records each applied version.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_chat_chunks.up.sql" -> 1
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

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
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
// The batch runs in one transaction, so a dimension mismatch leaves the
// store untouched.
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
			want, err = ownerDimensions(ctx, tx, r.OwnerID)
			if err != nil {
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
			(id, user_id, content, embedding, dimensions, source, title, conversation_id, chunk_index, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, id) DO UPDATE SET
			content = excluded.content,
			embedding = excluded.embedding,
			dimensions = excluded.dimensions,
			source = excluded.source,
			title = excluded.title,
			conversation_id = excluded.conversation_id,
			chunk_index = excluded.chunk_index,
			created_at = excluded.created_at
	`)
	if err != nil {
		return domain.NewStoreError("upsert", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx,
			r.ID, r.OwnerID, r.Content,
			float32SliceToBytes(r.Vector), len(r.Vector),
			string(r.Source), r.Title, r.ConversationID, r.Index,
			r.CreatedAt.UnixMilli(),
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

// Search returns the owner's topK rows most similar to query.
func (s *Store) Search(ctx context.Context, query []float32, ownerID string, topK int) ([]domain.SearchResult, error) {
	return s.search(ctx, "search", query, ownerID, topK, nil)
}

// SearchInRange is Search over rows created within [from, to].
func (s *Store) SearchInRange(
	ctx context.Context,
	query []float32,
	ownerID string,
	topK int,
	from, to time.Time,
) ([]domain.SearchResult, error) {
	return s.search(ctx, "search_in_range", query, ownerID, topK, &[2]time.Time{from, to})
}

func (s *Store) search(
	ctx context.Context,
	op string,
	query []float32,
	ownerID string,
	topK int,
	window *[2]time.Time,
) ([]domain.SearchResult, error) {
	dim, err := ownerDimensions(ctx, s.db, ownerID)
	if err != nil {
		return nil, domain.NewStoreError(op, err)
	}
	if dim == 0 {
		return []domain.SearchResult{}, nil
	}
	if len(query) != dim {
		return nil, domain.NewStoreError(op, domain.ErrDimensionMismatch)
	}

	q := `SELECT id, content, embedding, source, title, conversation_id, created_at
		FROM chat_chunks WHERE user_id = ?`
	args := []any{ownerID}
	if window != nil {
		q += " AND created_at BETWEEN ? AND ?"
		args = append(args, window[0].UnixMilli(), window[1].UnixMilli())
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, domain.NewStoreError(op, err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var (
			r         domain.SearchResult
			blob      []byte
			source    string
			createdMs int64
		)
		if err := rows.Scan(&r.ID, &r.Content, &blob, &source, &r.Title, &r.ConversationID, &createdMs); err != nil {
			return nil, domain.NewStoreError(op, err)
		}
		r.Source = domain.Source(source)
		r.Similarity = storage.Cosine(query, bytesToFloat32Slice(blob))
		if window != nil {
			created := time.UnixMilli(createdMs).UTC()
			r.CreatedAt = &created
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError(op, err)
	}

	return storage.TopK(results, topK), nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ownerDimensions returns the vector length of the owner's rows, or 0
// when the owner has none.
func ownerDimensions(ctx context.Context, q queryer, ownerID string) (int, error) {
	var dim int
	err := q.QueryRowContext(ctx,
		"SELECT dimensions FROM chat_chunks WHERE user_id = ? LIMIT 1", ownerID,
	).Scan(&dim)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return dim, err
}

// float32SliceToBytes converts a float32 slice to bytes for storage.
func float32SliceToBytes(floats []float32) []byte {
	if floats == nil {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts bytes back to a float32 slice.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
