package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rquegea/ai-visibility-mvp/internal/models"
)

// PostgresStore implements Store on a pooled database/sql connection.
type PostgresStore struct {
	db *sql.DB
}

// Ensure PostgresStore implements Store
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore opens a connection pool and verifies connectivity.
func NewPostgresStore(dsn string, maxConns, maxIdle int) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromDB wraps an existing connection, used by tests.
func NewPostgresStoreFromDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// ListEnabledQueries returns the queries the current cycle must poll.
func (s *PostgresStore) ListEnabledQueries(ctx context.Context) ([]models.Query, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, query FROM queries WHERE enabled = TRUE`)
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled queries: %w", err)
	}
	defer rows.Close()

	var queries []models.Query
	for rows.Next() {
		var q models.Query
		if err := rows.Scan(&q.ID, &q.Text); err != nil {
			return nil, fmt.Errorf("failed to scan query row: %w", err)
		}
		q.Enabled = true
		queries = append(queries, q)
	}

	return queries, rows.Err()
}

// SaveMention persists one mention and, when present, its insight inside a
// single transaction. The insight row is inserted first so the mention's
// generated_insight_id never points at a row that does not exist yet; any
// failure before commit rolls both inserts back.
func (s *PostgresStore) SaveMention(ctx context.Context, mention *models.Mention, insight *models.InsightPayload) (int64, *int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var insightID *int64
	if insight != nil {
		payload, err := json.Marshal(insight)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal insight payload: %w", err)
		}

		var id int64
		err = tx.QueryRowContext(ctx,
			`INSERT INTO insights (query_id, payload) VALUES ($1, $2) RETURNING id`,
			mention.QueryID, payload,
		).Scan(&id)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to insert insight: %w", err)
		}
		insightID = &id
	}

	var mentionID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO mentions (
			query_id, engine, source, response, sentiment, emotion,
			confidence_score, source_title, source_url, language, created_at,
			summary, key_topics, generated_insight_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`,
		mention.QueryID,
		mention.Engine,
		mention.Source,
		mention.Response,
		mention.Sentiment,
		mention.Emotion,
		mention.Confidence,
		nullableString(mention.SourceTitle),
		nullableString(mention.SourceURL),
		mention.Language,
		mention.CreatedAt,
		mention.Summary,
		pq.Array(mention.KeyTopics),
		nullableID(insightID),
	).Scan(&mentionID)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to insert mention: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, fmt.Errorf("failed to commit mention transaction: %w", err)
	}

	mention.ID = mentionID
	mention.GeneratedInsightID = insightID
	return mentionID, insightID, nil
}

func nullableString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}
