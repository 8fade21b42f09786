package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"essentialfeed/internal/domain"

	"github.com/allegro/bigcache"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	bigcachestore "github.com/eko/gocache/store/bigcache/v4"
)

// MemoryFeedStore хранит ленты в памяти процесса поверх bigcache.
// Запись старше eviction не возвращается из Retrieve и удаляется при обращении.
type MemoryFeedStore struct {
	client   *bigcache.BigCache
	cache    *cache.Cache[[]byte]
	eviction time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// memoryEntry - то, что лежит в bigcache: лента и момент записи.
type memoryEntry struct {
	CachedFeed
	StoredAt time.Time `json:"stored_at"`
}

// NewMemoryFeedStore создает хранилище в памяти. eviction должен быть положительным.
func NewMemoryFeedStore(eviction time.Duration, log *slog.Logger) (*MemoryFeedStore, error) {
	if eviction <= 0 {
		return nil, fmt.Errorf("non-positive eviction %s", eviction)
	}
	cfg := bigcache.DefaultConfig(eviction)
	cfg.Shards = 64
	cfg.MaxEntriesInWindow = 1024
	cfg.MaxEntrySize = 4096
	cfg.Verbose = false
	// bigcache сам не проверяет срок жизни в Get, только чистит по таймеру
	cfg.CleanWindow = max(eviction, time.Second)
	client, err := bigcache.NewBigCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bigcache: %w", err)
	}
	log.Info("Initializing in-memory feed storage", slog.Duration("eviction", eviction))
	return &MemoryFeedStore{
		client:   client,
		cache:    cache.New[[]byte](bigcachestore.NewBigcache(client)),
		eviction: eviction,
		log:      log,
		now:      time.Now,
	}, nil
}

func (s *MemoryFeedStore) Close() {
	s.log.Info("Closing in-memory feed storage")
	if err := s.client.Close(); err != nil {
		s.log.Error("Failed to close bigcache", slog.Any("error", err))
	}
}

func (s *MemoryFeedStore) DeleteCachedFeed(ctx context.Context, feedURL string) error {
	const op = "storage.memory.DeleteCachedFeed"
	if err := s.cache.Delete(ctx, feedURL); err != nil && !isNotFound(err) {
		s.log.Error("Failed to delete cached feed", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *MemoryFeedStore) Insert(ctx context.Context, feedURL string, feed []domain.LocalFeedImage, timestamp time.Time) error {
	const op = "storage.memory.Insert"
	if feed == nil {
		feed = []domain.LocalFeedImage{}
	}
	data, err := json.Marshal(memoryEntry{
		CachedFeed: CachedFeed{Feed: feed, Timestamp: timestamp},
		StoredAt:   s.now(),
	})
	if err != nil {
		return fmt.Errorf("%s: failed to encode feed: %w", op, err)
	}
	if err := s.cache.Set(ctx, feedURL, data); err != nil {
		s.log.Error("Failed to cache feed", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Retrieve возвращает nil, если ленты нет или она старше eviction.
func (s *MemoryFeedStore) Retrieve(ctx context.Context, feedURL string) (*CachedFeed, error) {
	const op = "storage.memory.Retrieve"
	data, err := s.cache.Get(ctx, feedURL)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		s.log.Error("Failed to read cached feed", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var entry memoryEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.log.Error("Failed to decode cached feed", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to decode feed: %w", op, err)
	}
	if s.now().Sub(entry.StoredAt) >= s.eviction {
		s.log.Debug("Cached feed expired", slog.String("op", op), slog.String("url", feedURL))
		if err := s.cache.Delete(ctx, feedURL); err != nil && !isNotFound(err) {
			s.log.Warn("Failed to drop expired feed", slog.String("op", op), slog.Any("error", err))
		}
		return nil, nil
	}
	return &entry.CachedFeed, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, bigcache.ErrEntryNotFound) || errors.Is(err, store.NotFound{})
}
