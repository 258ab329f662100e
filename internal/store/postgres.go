package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/law-makers/listcrawl/pkg/models"
)

// DefaultPostgresTable receives mirrored records
const DefaultPostgresTable = "listings"

// PostgresSink mirrors appended records into a table keyed by link. Rows that
// already exist are left untouched.
type PostgresSink struct {
	db    *pgxpool.Pool
	table string
}

// NewPostgresSink connects to dsn and creates the table if needed.
func NewPostgresSink(ctx context.Context, dsn, table string) (*PostgresSink, error) {
	if table == "" {
		table = DefaultPostgresTable
	}
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	s := &PostgresSink{db: db, table: pgx.Identifier{table}.Sanitize()}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresSink) migrate(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			link          TEXT PRIMARY KEY,
			brand         TEXT NOT NULL,
			title         TEXT NOT NULL,
			price         TEXT NOT NULL,
			seller_name   TEXT NOT NULL,
			rating        TEXT NOT NULL,
			reviews_count TEXT NOT NULL,
			crawled_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		);`, s.table)
	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}
	return nil
}

// Name identifies the sink in logs.
func (s *PostgresSink) Name() string {
	return "postgres"
}

// Append inserts records in one batch.
func (s *PostgresSink) Append(ctx context.Context, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (link, brand, title, price, seller_name, rating, reviews_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (link) DO NOTHING;`, s.table)

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(query, r.Link, r.Section, r.Title, r.Price, r.SellerName, r.Rating, r.ReviewsCount)
	}

	br := s.db.SendBatch(ctx, batch)
	for range records {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert into %s: %w", s.table, err)
		}
	}
	return br.Close()
}

// Close closes the pool.
func (s *PostgresSink) Close() error {
	s.db.Close()
	return nil
}
