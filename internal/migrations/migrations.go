package migrations

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Migration struct {
	ID    string
	UpSQL string
}

var allMigrations = []Migration{
	{
		ID: "020240301120000_create_feed_cache_table",
		UpSQL: `
		CREATE TABLE feed_cache(
		feed_url TEXT PRIMARY KEY,
		cached_at TIMESTAMPTZ NOT NULL
		);`,
	},
	{
		ID: "020240301120100_create_feed_images_table",
		UpSQL: `
		CREATE TABLE feed_images(
		feed_url TEXT NOT NULL REFERENCES feed_cache(feed_url) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		id TEXT NOT NULL,
		description TEXT,
		location TEXT,
		url TEXT NOT NULL,
		PRIMARY KEY (feed_url, position)
		);`,
	},
}

// Apply применяет к базе данных миграции, которых еще нет в schema_migrations.
// Все новые миграции выполняются в одной транзакции.
func Apply(ctx context.Context, log *slog.Logger, pool *pgxpool.Pool) error {
	log = log.With(slog.String("component", "migrations"))
	log.Info("Checking database migrations")
	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (id TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	rows, err := pool.Query(ctx, "SELECT id FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}
	applied, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("failed to scan migration ids: %w", err)
	}
	todo := pending(allMigrations, applied)
	if len(todo) == 0 {
		log.Info("Database is up to date")
		return nil
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)
	for _, m := range todo {
		log.Info("Applying migration", slog.String("id", m.ID))
		if _, err := tx.Exec(ctx, m.UpSQL); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (id) VALUES ($1)", m.ID); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migrations transaction: %w", err)
	}
	log.Info("Database migrations applied", slog.Int("count", len(todo)))
	return nil
}

// pending возвращает не примененные миграции в порядке возрастания ID.
func pending(all []Migration, applied []string) []Migration {
	done := make(map[string]bool, len(applied))
	for _, id := range applied {
		done[id] = true
	}
	var todo []Migration
	for _, m := range all {
		if !done[m.ID] {
			todo = append(todo, m)
		}
	}
	sort.Slice(todo, func(i, j int) bool {
		return todo[i].ID < todo[j].ID
	})
	return todo
}
