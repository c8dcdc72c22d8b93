package journal

import (
	"context"
	"fmt"
	"time"

	out "tidywork/internal/booking/application/ports/out"
	"tidywork/internal/shared/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgJournal пишет переходы статусов в Postgres для аудита и отладки
// рассинхронов между optimistic-состоянием и сервером.
type PgJournal struct {
	pool *pgxpool.Pool
}

// NewPgJournal создает пул и таблицу журнала (идемпотентно).
func NewPgJournal(ctx context.Context, cfg config.JournalConfig) (*PgJournal, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse journal dsn: %w", err)
	}
	poolCfg.MaxConns = 4
	poolCfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create journal pool: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS transition_events (
			id BIGSERIAL PRIMARY KEY,
			booking_id TEXT NOT NULL,
			from_status TEXT,
			to_status TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			outcome TEXT NOT NULL,
			version BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create transition_events: %w", err)
	}

	return &PgJournal{pool: pool}, nil
}

func (j *PgJournal) Record(ctx context.Context, rec out.TransitionRecord) error {
	_, err := j.pool.Exec(ctx, `
		INSERT INTO transition_events (
			booking_id, from_status, to_status, actor_id, outcome, version, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.BookingID,
		string(rec.FromStatus),
		string(rec.ToStatus),
		rec.ActorID,
		rec.Outcome,
		rec.Version,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transition event: %w", err)
	}
	return nil
}

func (j *PgJournal) Close() {
	j.pool.Close()
}
