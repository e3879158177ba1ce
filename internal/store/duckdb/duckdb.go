// Package duckdb is the DuckDB-backed candidate store used by the CLI.
package duckdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/januswing/strategy-miner/internal/logger"
	"github.com/januswing/strategy-miner/internal/store"
	"github.com/januswing/strategy-miner/internal/types"
	"github.com/januswing/strategy-miner/pkg/errors"
)

// Store persists candidates in a DuckDB database file. A single writer
// mutex serialises updates on top of the per-update SQL transaction.
type Store struct {
	db     *sql.DB
	sq     squirrel.StatementBuilderType
	logger *logger.Logger

	writeMu sync.Mutex
}

var _ store.Store = (*Store)(nil)

// NewStore opens (or creates) the database at path and ensures the schema
// exists. Use ":memory:" for an ephemeral store.
func NewStore(path string, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeStoreUnavailable, err, "failed to open database at %s", path)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, errors.Wrapf(errors.ErrCodeStoreUnavailable, err, "failed to connect to database at %s", path)
	}

	s := &Store{
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		logger: log,
	}

	if err := s.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return s, nil
}

func (s *Store) initialize() error {
	schema := `
		CREATE TABLE IF NOT EXISTS candidates (
			id BIGINT PRIMARY KEY,
			source VARCHAR NOT NULL,
			author VARCHAR NOT NULL,
			url VARCHAR NOT NULL,
			title VARCHAR NOT NULL,
			content VARCHAR NOT NULL,
			extracted_logic VARCHAR NOT NULL,
			keywords VARCHAR NOT NULL,
			score INTEGER NOT NULL,
			num_comments INTEGER NOT NULL,
			discovered_at TIMESTAMP NOT NULL,
			validated_at TIMESTAMP,
			status VARCHAR NOT NULL,
			backtest_result VARCHAR
		)
	`

	if _, err := s.db.Exec(schema); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, "failed to create candidates table", err)
	}

	return nil
}

const candidateColumns = "id, source, author, url, title, content, extracted_logic, " +
	"keywords, score, num_comments, discovered_at, validated_at, status, backtest_result"

func (s *Store) Get(ctx context.Context, id int64) (types.StrategyCandidate, error) {
	row := s.sq.
		Select(candidateColumns).
		From("candidates").
		Where(squirrel.Eq{"id": id}).
		RunWith(s.db).
		QueryRowContext(ctx)

	candidate, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.StrategyCandidate{}, store.ErrNotFound
	}

	if err != nil {
		return types.StrategyCandidate{}, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to load candidate %d", id)
	}

	return candidate, nil
}

func (s *Store) List(ctx context.Context) ([]types.StrategyCandidate, error) {
	return s.list(ctx, s.sq.Select(candidateColumns).From("candidates").OrderBy("id ASC"))
}

func (s *Store) ListByStatus(ctx context.Context, status types.CandidateStatus) ([]types.StrategyCandidate, error) {
	return s.list(ctx, s.sq.
		Select(candidateColumns).
		From("candidates").
		Where(squirrel.Eq{"status": string(status)}).
		OrderBy("id ASC"))
}

func (s *Store) list(ctx context.Context, query squirrel.SelectBuilder) ([]types.StrategyCandidate, error) {
	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to list candidates", err)
	}
	defer rows.Close()

	candidates := make([]types.StrategyCandidate, 0)

	for rows.Next() {
		candidate, err := scanCandidate(rows)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreCorrupt, "failed to scan candidate row", err)
		}

		candidates = append(candidates, candidate)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate candidate rows", err)
	}

	return candidates, nil
}

func (s *Store) Insert(ctx context.Context, candidate types.StrategyCandidate) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var exists int

	err := s.sq.
		Select("count(*)").
		From("candidates").
		Where(squirrel.Eq{"id": candidate.ID}).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&exists)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to check candidate %d", candidate.ID)
	}

	if exists > 0 {
		return store.ErrDuplicateID
	}

	values, err := candidateValues(candidate)
	if err != nil {
		return err
	}

	_, err = s.sq.
		Insert("candidates").
		Columns("id", "source", "author", "url", "title", "content", "extracted_logic",
			"keywords", "score", "num_comments", "discovered_at", "validated_at", "status", "backtest_result").
		Values(values...).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to insert candidate %d", candidate.ID)
	}

	return nil
}

// Update rewrites a single candidate row inside a transaction. Only the row
// with the given ID is touched.
func (s *Store) Update(ctx context.Context, id int64, mutate func(*types.StrategyCandidate) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, "failed to begin update transaction", err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	row := s.sq.
		Select(candidateColumns).
		From("candidates").
		Where(squirrel.Eq{"id": id}).
		RunWith(tx).
		QueryRowContext(ctx)

	candidate, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}

	if err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to load candidate %d for update", id)
	}

	if err := mutate(&candidate); err != nil {
		return err
	}

	candidate.ID = id

	keywords, validatedAt, backtestResult, err := encodedFields(candidate)
	if err != nil {
		return err
	}

	_, err = s.sq.
		Update("candidates").
		Set("source", candidate.Source).
		Set("author", candidate.Author).
		Set("url", candidate.URL).
		Set("title", candidate.Title).
		Set("content", candidate.Content).
		Set("extracted_logic", candidate.ExtractedLogic).
		Set("keywords", keywords).
		Set("score", candidate.Score).
		Set("num_comments", candidate.NumComments).
		Set("discovered_at", candidate.DiscoveredAt).
		Set("validated_at", validatedAt).
		Set("status", string(candidate.Status)).
		Set("backtest_result", backtestResult).
		Where(squirrel.Eq{"id": id}).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to update candidate %d", id)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrapf(errors.ErrCodeStoreUnavailable, err, "failed to commit update of candidate %d", id)
	}

	return nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("failed to close candidate store", zap.Error(err))

		return err
	}

	return nil
}

func candidateValues(candidate types.StrategyCandidate) ([]any, error) {
	keywords, validatedAt, backtestResult, err := encodedFields(candidate)
	if err != nil {
		return nil, err
	}

	return []any{
		candidate.ID,
		candidate.Source,
		candidate.Author,
		candidate.URL,
		candidate.Title,
		candidate.Content,
		candidate.ExtractedLogic,
		keywords,
		candidate.Score,
		candidate.NumComments,
		candidate.DiscoveredAt,
		validatedAt,
		string(candidate.Status),
		backtestResult,
	}, nil
}

func encodedFields(candidate types.StrategyCandidate) (string, any, any, error) {
	keywords := candidate.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	keywordsJSON, err := json.Marshal(keywords)
	if err != nil {
		return "", nil, nil, errors.Wrap(errors.ErrCodeStoreCorrupt, "failed to encode keywords", err)
	}

	var validatedAt any
	if t, err := candidate.ValidatedAt.Take(); err == nil {
		validatedAt = t
	}

	var backtestResult any

	if metrics, err := candidate.BacktestResult.Take(); err == nil {
		encoded, err := json.Marshal(metrics)
		if err != nil {
			return "", nil, nil, errors.Wrap(errors.ErrCodeStoreCorrupt, "failed to encode backtest result", err)
		}

		backtestResult = string(encoded)
	}

	return string(keywordsJSON), validatedAt, backtestResult, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (types.StrategyCandidate, error) {
	var (
		candidate      types.StrategyCandidate
		keywordsJSON   string
		status         string
		validatedAt    sql.NullTime
		backtestResult sql.NullString
	)

	err := row.Scan(
		&candidate.ID,
		&candidate.Source,
		&candidate.Author,
		&candidate.URL,
		&candidate.Title,
		&candidate.Content,
		&candidate.ExtractedLogic,
		&keywordsJSON,
		&candidate.Score,
		&candidate.NumComments,
		&candidate.DiscoveredAt,
		&validatedAt,
		&status,
		&backtestResult,
	)
	if err != nil {
		return types.StrategyCandidate{}, err
	}

	candidate.Status = types.CandidateStatus(status)

	if err := json.Unmarshal([]byte(keywordsJSON), &candidate.Keywords); err != nil {
		return types.StrategyCandidate{}, err
	}

	if validatedAt.Valid {
		candidate.ValidatedAt = optional.Some(validatedAt.Time.UTC())
	}

	if backtestResult.Valid && backtestResult.String != "" {
		var metrics types.BacktestMetrics
		if err := json.Unmarshal([]byte(backtestResult.String), &metrics); err != nil {
			return types.StrategyCandidate{}, err
		}

		candidate.BacktestResult = optional.Some(metrics)
	}

	return candidate, nil
}
