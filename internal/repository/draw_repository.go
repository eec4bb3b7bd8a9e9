package repository

import (
	"context"

	"drawsage/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createDrawsTable = `
CREATE TABLE IF NOT EXISTS draws (
    issue      TEXT        PRIMARY KEY,
    result     TEXT        NOT NULL,
    number     INTEGER     NOT NULL,
    outcome    TEXT        NOT NULL,
    drawn_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_draws_issue_desc ON draws (issue DESC);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DrawRepository persists normalized draw records in Postgres.
type DrawRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewDrawRepository(pool PgxPool, tracer trace.Tracer) *DrawRepository {
	return &DrawRepository{pool: pool, tracer: tracer}
}

func (r *DrawRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "draw-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createDrawsTable)
	return err
}

// UpsertDraws writes records in one batch. Re-fetched issues overwrite
// their previous row, so repeated polling is idempotent.
func (r *DrawRepository) UpsertDraws(ctx context.Context, records []domain.DrawRecord) error {
	if len(records) == 0 {
		return nil
	}

	_, span := r.tracer.Start(ctx, "draw-repo.upsert-draws")
	defer span.End()

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(
			`INSERT INTO draws (issue, result, number, outcome, drawn_at)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (issue) DO UPDATE SET
			     result = EXCLUDED.result,
			     number = EXCLUDED.number,
			     outcome = EXCLUDED.outcome,
			     drawn_at = EXCLUDED.drawn_at`,
			rec.Issue, rec.ResultRaw, rec.Number, string(rec.Outcome), rec.Timestamp,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// GetLatest returns up to limit records, newest first.
func (r *DrawRepository) GetLatest(ctx context.Context, limit int) ([]domain.DrawRecord, error) {
	_, span := r.tracer.Start(ctx, "draw-repo.get-latest")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT issue, result, number, outcome, drawn_at
		 FROM draws
		 ORDER BY issue DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.DrawRecord
	for rows.Next() {
		var rec domain.DrawRecord
		var outcome string
		if err := rows.Scan(&rec.Issue, &rec.ResultRaw, &rec.Number, &outcome, &rec.Timestamp); err != nil {
			return nil, err
		}
		rec.Outcome = domain.Outcome(outcome)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the total number of stored draws.
func (r *DrawRepository) Count(ctx context.Context) (int64, error) {
	_, span := r.tracer.Start(ctx, "draw-repo.count")
	defer span.End()

	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM draws`).Scan(&count)
	return count, err
}
