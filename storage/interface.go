package storage

import (
	"context"
	"essentialfeed/internal/domain"
	"time"
)

// CachedFeed - сохраненная лента вместе с моментом сохранения.
type CachedFeed struct {
	Feed      []domain.LocalFeedImage `json:"feed"`
	Timestamp time.Time               `json:"timestamp"`
}

// Storage определяет общий интерфейс хранилища загруженных лент.
// Ленты хранятся по URL источника, Insert заменяет ранее сохраненную ленту.
// Retrieve возвращает nil, если для URL ничего не сохранено.
type Storage interface {
	DeleteCachedFeed(ctx context.Context, feedURL string) error
	Insert(ctx context.Context, feedURL string, feed []domain.LocalFeedImage, timestamp time.Time) error
	Retrieve(ctx context.Context, feedURL string) (*CachedFeed, error)
	Close()
}
