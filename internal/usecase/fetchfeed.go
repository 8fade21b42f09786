package usecase

import (
	"context"
	"net/url"
	"time"

	"essentialfeed/internal/domain"
)

// HTTPClient определяет интерфейс транспорта, через который загружаются ленты.
// Get возвращается сразу, в канал отправляется ровно один результат.
type HTTPClient interface {
	Get(ctx context.Context, u *url.URL) <-chan domain.HTTPClientResult
}

// FeedItemsMapper определяет интерфейс для преобразования ответа в доменную модель.
// Возвращает ошибку при неподходящем статусе или некорректных данных.
type FeedItemsMapper interface {
	Map(statusCode int, data []byte) ([]domain.FeedImage, error)
}

// FeedStorage определяет интерфейс для сохранения загруженных лент.
type FeedStorage interface {
	DeleteCachedFeed(ctx context.Context, feedURL string) error
	Insert(ctx context.Context, feedURL string, feed []domain.LocalFeedImage, timestamp time.Time) error
}
