package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-strategy-builder/internal/logger"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
	"go.uber.org/zap"
)

var entryColumns = []string{
	"id", "created_at", "strategy_name", "timeframe", "node_count", "warning_count", "source_sha256",
}

// DuckDBStore implements Store on a DuckDB database.
type DuckDBStore struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

var _ Store = (*DuckDBStore)(nil)

// NewDuckDBStore opens the database at path, or an in-memory database when
// path is empty or ":memory:".
func NewDuckDBStore(path string, log *logger.Logger) (*DuckDBStore, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if path == "" {
		path = ":memory:"
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeHistoryUnavailable, err, "failed to create directory for %s", path)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		log.Error("Failed to open history database", zap.String("path", path), zap.Error(err))

		return nil, errors.Wrap(errors.ErrCodeHistoryUnavailable, "failed to open history database", err)
	}

	if err := db.Ping(); err != nil {
		log.Error("Failed to connect to history database", zap.String("path", path), zap.Error(err))
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeHistoryUnavailable, "failed to connect to history database", err)
	}

	store := &DuckDBStore{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := store.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return store, nil
}

// Record implements Store.
func (s *DuckDBStore) Record(ctx context.Context, entry Entry) (Entry, error) {
	_, err := s.sq.
		Insert("exports").
		Columns(append(entryColumns, "source")...).
		Values(entry.ID, entry.CreatedAt, entry.StrategyName, entry.Timeframe,
			entry.NodeCount, entry.WarningCount, entry.SourceSHA256, entry.Source).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeHistoryQueryFailed, "failed to record export", err)
	}

	s.logger.Debug("Export recorded",
		zap.String("id", entry.ID),
		zap.String("strategy", entry.StrategyName),
		zap.String("sha256", entry.SourceSHA256),
	)

	return entry, nil
}

// List implements Store.
func (s *DuckDBStore) List(ctx context.Context, filter Filter) ([]Entry, error) {
	columns := entryColumns
	if filter.WithSource {
		columns = append(columns[:len(columns):len(columns)], "source")
	}

	query := s.sq.Select(columns...).From("exports").OrderBy("created_at DESC", "id ASC")
	if filter.StrategyName != "" {
		query = query.Where(squirrel.Eq{"strategy_name": filter.StrategyName})
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHistoryQueryFailed, "failed to query exports", err)
	}
	defer rows.Close()

	var entries []Entry

	for rows.Next() {
		var entry Entry

		targets := []any{
			&entry.ID, &entry.CreatedAt, &entry.StrategyName, &entry.Timeframe,
			&entry.NodeCount, &entry.WarningCount, &entry.SourceSHA256,
		}
		if filter.WithSource {
			targets = append(targets, &entry.Source)
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeHistoryQueryFailed, "failed to scan export", err)
		}

		entry.CreatedAt = entry.CreatedAt.UTC()
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeHistoryQueryFailed, "error iterating exports", err)
	}

	return entries, nil
}

// Get implements Store. A missing id yields an error wrapping sql.ErrNoRows.
func (s *DuckDBStore) Get(ctx context.Context, id string) (Entry, error) {
	var entry Entry

	err := s.sq.
		Select(append(entryColumns, "source")...).
		From("exports").
		Where(squirrel.Eq{"id": id}).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&entry.ID, &entry.CreatedAt, &entry.StrategyName, &entry.Timeframe,
			&entry.NodeCount, &entry.WarningCount, &entry.SourceSHA256, &entry.Source)
	if err != nil {
		return Entry{}, errors.Wrapf(errors.ErrCodeHistoryQueryFailed, err, "failed to load export %s", id)
	}

	entry.CreatedAt = entry.CreatedAt.UTC()

	return entry, nil
}

// Write implements Store.
func (s *DuckDBStore) Write(ctx context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeHistoryUnavailable, "failed to create directory", err)
	}

	path := filepath.Join(dir, "exports.parquet")

	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`COPY exports TO '%s' (FORMAT PARQUET)`, strings.ReplaceAll(path, "'", "''")))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeHistoryQueryFailed, "failed to export history to Parquet", err)
	}

	s.logger.Info("Exported history to Parquet file", zap.String("path", path))

	return path, nil
}

// Close implements Store.
func (s *DuckDBStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *DuckDBStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS exports (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMP,
			strategy_name TEXT,
			timeframe TEXT,
			node_count INTEGER,
			warning_count INTEGER,
			source_sha256 TEXT,
			source TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeHistoryUnavailable, "failed to create exports table", err)
	}

	return nil
}
