package usecase

import (
	"context"
	"log/slog"
	"net/url"

	"essentialfeed/internal/domain"
)

// LoaderError - ошибки уровня предметной области, которыми завершается RemoteFeedLoader.
type LoaderError int

const (
	// ErrConnectivity - запрос не дошел до сервера или транспорт вернул некорректный результат.
	ErrConnectivity LoaderError = iota + 1
	// ErrInvalidData - ответ получен, но его нельзя использовать.
	ErrInvalidData
)

func (e LoaderError) Error() string {
	switch e {
	case ErrConnectivity:
		return "connectivity"
	case ErrInvalidData:
		return "invalid data"
	default:
		return "unknown loader error"
	}
}

// LoadResult содержит либо загруженные элементы, либо ошибку.
type LoadResult struct {
	Images []domain.FeedImage
	Err    error
}

// RemoteFeedLoader загружает ленту по одному URL через HTTPClient.
// Не хранит состояния между вызовами Load.
type RemoteFeedLoader struct {
	url    *url.URL
	client HTTPClient
	mapper FeedItemsMapper
	log    *slog.Logger
}

// NewRemoteFeedLoader создает загрузчик. Запросы при создании не выполняются.
// Load загрузчика с nil URL завершается ErrConnectivity без обращения к клиенту.
func NewRemoteFeedLoader(u *url.URL, client HTTPClient, mapper FeedItemsMapper, log *slog.Logger) *RemoteFeedLoader {
	return &RemoteFeedLoader{
		url:    u,
		client: client,
		mapper: mapper,
		log:    log,
	}
}

// Load выполняет один запрос к клиенту до возврата из метода, поэтому порядок
// запросов совпадает с порядком вызовов. Результат приходит в канал ровно один раз.
func (l *RemoteFeedLoader) Load(ctx context.Context) <-chan LoadResult {
	results := make(chan LoadResult, 1)
	if l.url == nil {
		l.log.Error("Feed loader has no url", slog.String("component", "remote-feed-loader"))
		results <- LoadResult{Err: ErrConnectivity}
		close(results)
		return results
	}
	responses := l.client.Get(ctx, l.url)
	log := l.log.With(
		slog.String("component", "remote-feed-loader"),
		slog.String("url", l.url.String()),
	)
	mapper := l.mapper
	go func() {
		defer close(results)
		response, ok := <-responses
		if !ok {
			log.Error("HTTP client closed without a result")
			results <- LoadResult{Err: ErrConnectivity}
			return
		}
		results <- mapResponse(response, mapper, log)
	}()
	return results
}

func mapResponse(response domain.HTTPClientResult, mapper FeedItemsMapper, log *slog.Logger) LoadResult {
	if err := response.Err(); err != nil {
		log.Warn("Feed request failed",
			slog.String("stage", "fetch"),
			slog.Any("error", err),
		)
		return LoadResult{Err: ErrConnectivity}
	}
	images, err := mapper.Map(response.Response().StatusCode, response.Data())
	if err != nil {
		log.Warn("Feed response rejected",
			slog.String("stage", "map"),
			slog.Int("status_code", response.Response().StatusCode),
			slog.Any("error", err),
		)
		return LoadResult{Err: ErrInvalidData}
	}
	log.Debug("Feed loaded", slog.Int("items", len(images)))
	return LoadResult{Images: images}
}
