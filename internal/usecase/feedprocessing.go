package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"essentialfeed/internal/domain"
)

// FeedProcessingUseCase загружает ленту из сети и сохраняет ее в хранилище.
type FeedProcessingUseCase struct {
	client    HTTPClient
	mapper    FeedItemsMapper
	storage   FeedStorage
	log       *slog.Logger
	feedNames map[string]string
	now       func() time.Time
}

// NewFeedProcessingUseCase создает новый экземпляр UseCase для обработки лент.
// Принимает зависимости: HTTP-клиент, маппер, хранилище, логгер и маппинг URL на имена.
func NewFeedProcessingUseCase(
	client HTTPClient,
	mapper FeedItemsMapper,
	storage FeedStorage,
	log *slog.Logger,
	feedNames map[string]string,
) *FeedProcessingUseCase {
	return &FeedProcessingUseCase{
		client:    client,
		mapper:    mapper,
		storage:   storage,
		log:       log,
		feedNames: feedNames,
		now:       time.Now,
	}
}

// ProcessFeed выполняет полный цикл: загрузка через RemoteFeedLoader, замена
// сохраненной ленты новой. Ошибки загрузчика возвращаются обернутыми, их можно
// проверить через errors.Is с ErrConnectivity или ErrInvalidData.
func (uc *FeedProcessingUseCase) ProcessFeed(ctx context.Context, rawURL string) error {
	start := time.Now()
	feedName := uc.extractFeedName(rawURL)
	log := uc.log.With(
		slog.String("component", "feed-processor"),
		slog.String("feed", feedName),
		slog.String("url", rawURL),
	)

	log.Info("Processing feed started")

	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		log.Error("Invalid feed url", slog.Any("error", err))
		return fmt.Errorf("invalid url for %s: %w", feedName, err)
	}

	loader := NewRemoteFeedLoader(u, uc.client, uc.mapper, uc.log)
	var result LoadResult
	select {
	case result = <-loader.Load(ctx):
	case <-ctx.Done():
		log.Error("Feed load abandoned", slog.String("stage", "load"), slog.Any("error", ctx.Err()))
		return fmt.Errorf("load abandoned for %s: %w", feedName, ctx.Err())
	}
	if result.Err != nil {
		log.Error("Feed load failed",
			slog.String("stage", "load"),
			slog.Any("error", result.Err),
		)
		return fmt.Errorf("load failed for %s: %w", feedName, result.Err)
	}

	log.Debug("Feed loaded successfully",
		slog.String("stage", "load"),
		slog.Int("items_loaded", len(result.Images)),
	)

	if err := uc.storage.DeleteCachedFeed(ctx, rawURL); err != nil {
		log.Error("Cached feed deletion failed",
			slog.String("stage", "delete"),
			slog.Any("error", err),
		)
		return fmt.Errorf("delete failed for %s: %w", feedName, err)
	}

	if err := uc.storage.Insert(ctx, rawURL, domain.ToLocal(result.Images), uc.now()); err != nil {
		log.Error("Feed save failed",
			slog.String("stage", "save"),
			slog.Any("error", err),
		)
		return fmt.Errorf("save failed for %s: %w", feedName, err)
	}

	log.Info("Feed processing completed successfully",
		slog.Int("items_found", len(result.Images)),
		slog.Duration("duration", time.Since(start)),
	)

	return nil
}

// extractFeedName возвращает имя ленты из конфигурации или домен из URL.
func (uc *FeedProcessingUseCase) extractFeedName(rawURL string) string {
	if name, ok := uc.feedNames[rawURL]; ok {
		return name
	}
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		return strings.TrimPrefix(u.Hostname(), "www.")
	}
	return "Unknown"
}
