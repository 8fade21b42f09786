package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"essentialfeed/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresFeedStore struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewPostgresFeedStore(pool *pgxpool.Pool, log *slog.Logger) *PostgresFeedStore {
	log.Info("Initializing Postgres feed storage")
	return &PostgresFeedStore{
		pool: pool,
		log:  log,
	}
}

func (db *PostgresFeedStore) Close() {
	db.log.Info("Closing database connection pool")
	db.pool.Close()
}

// DeleteCachedFeed удаляет ленту по URL. Отсутствие ленты ошибкой не считается.
func (db *PostgresFeedStore) DeleteCachedFeed(ctx context.Context, feedURL string) error {
	const op = "storage.postgres.DeleteCachedFeed"
	log := db.log.With(slog.String("op", op), slog.String("url", feedURL))
	// feed_images удаляются каскадно
	if _, err := db.pool.Exec(ctx, `DELETE FROM feed_cache WHERE feed_url = $1;`, feedURL); err != nil {
		log.Error("Failed to delete cached feed", slog.Any("error", err))
		return fmt.Errorf("%s: failed to delete cached feed: %w", op, err)
	}
	return nil
}

// Insert заменяет сохраненную ленту в одной транзакции.
func (db *PostgresFeedStore) Insert(ctx context.Context, feedURL string, feed []domain.LocalFeedImage, timestamp time.Time) (err error) {
	const op = "storage.postgres.Insert"
	log := db.log.With(slog.String("op", op), slog.String("url", feedURL))
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		log.Error(
			"Failed to begin transaction",
			slog.Any("error", err),
		)
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(context.Background()); rollbackErr != nil {
				log.Error("Failed to rollback transaction", slog.Any("error", rollbackErr))
			}
		}
	}()
	batch := &pgx.Batch{}
	batch.Queue(`
	INSERT INTO feed_cache (feed_url, cached_at)
	VALUES ($1, $2)
	ON CONFLICT (feed_url) DO UPDATE SET cached_at = EXCLUDED.cached_at;
	`, feedURL, timestamp)
	batch.Queue(`DELETE FROM feed_images WHERE feed_url = $1;`, feedURL)
	query := `
	INSERT INTO feed_images (feed_url, position, id, description, location, url)
	VALUES ($1, $2, $3, $4, $5, $6);
	`
	for i, image := range feed {
		batch.Queue(
			query,
			feedURL,
			i,
			image.ID.String(),
			nullableText(image.Description),
			nullableText(image.Location),
			image.URL,
		)
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		log.Error(
			"Failed to execute batch",
			slog.Any("error", err),
		)
		return fmt.Errorf("%s: failed to execute batch: %w", op, err)
	}
	if err = tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	log.Info("Feed cached", slog.Int("count", len(feed)))
	return nil
}

func (db *PostgresFeedStore) Retrieve(ctx context.Context, feedURL string) (*CachedFeed, error) {
	const op = "storage.postgres.Retrieve"
	log := db.log.With(slog.String("op", op), slog.String("url", feedURL))
	var cachedAt time.Time
	err := db.pool.QueryRow(ctx, `SELECT cached_at FROM feed_cache WHERE feed_url = $1;`, feedURL).Scan(&cachedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("Database query failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to query cache: %w", op, err)
	}
	query := `
	SELECT id, description, location, url
	FROM feed_images
	WHERE feed_url = $1
	ORDER BY position;
	`
	rows, err := db.pool.Query(ctx, query, feedURL)
	if err != nil {
		log.Error("Database query failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	defer rows.Close()
	feed, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.LocalFeedImage, error) {
		var image domain.LocalFeedImage
		var id string
		var description, location *string
		if err := row.Scan(&id, &description, &location, &image.URL); err != nil {
			return image, err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return image, fmt.Errorf("invalid image id %q: %w", id, err)
		}
		image.ID = parsed
		if description != nil {
			image.Description = *description
		}
		if location != nil {
			image.Location = *location
		}
		return image, nil
	})
	if err != nil {
		log.Error("Failed to collect rows", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to scan row: %w", op, err)
	}
	log.Debug("Retrieved cached feed", slog.Int("count", len(feed)))
	return &CachedFeed{Feed: feed, Timestamp: cachedAt}, nil
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
