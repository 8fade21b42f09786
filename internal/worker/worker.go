package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// FeedProcessor обновляет одну ленту.
type FeedProcessor interface {
	ProcessFeed(ctx context.Context, url string) error
}

// CycleStats - итоги одного цикла обновления.
type CycleStats struct {
	Successful int
	Failed     int
	Duration   time.Duration
}

// Worker периодически обновляет все ленты, одновременно не более limit штук.
type Worker struct {
	processor   FeedProcessor
	urls        []string
	interval    time.Duration
	feedTimeout time.Duration
	limit       int
	log         *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// New создает воркер. limit <= 0 означает отсутствие ограничения.
func New(processor FeedProcessor, urls []string, interval, feedTimeout time.Duration, limit int, log *slog.Logger) *Worker {
	return &Worker{
		processor:   processor,
		urls:        urls,
		interval:    interval,
		feedTimeout: feedTimeout,
		limit:       limit,
		log:         log.With(slog.String("component", "worker")),
	}
}

// Start запускает первый цикл сразу, следующие - по таймеру.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	go w.run(ctx)
}

// Stop отменяет текущий цикл и ждет завершения воркера.
func (w *Worker) Stop() {
	w.once.Do(func() {
		if w.cancel == nil {
			return
		}
		w.cancel()
		<-w.done
	})
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	w.log.Info("Feed processing worker started",
		slog.Duration("interval", w.interval),
		slog.Int("feed_count", len(w.urls)),
		slog.Int("limit", w.limit),
	)
	w.ProcessAll(ctx)
	if w.interval <= 0 {
		w.log.Warn("Non-positive interval, periodic processing disabled", slog.Duration("interval", w.interval))
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.ProcessAll(ctx)
		case <-ctx.Done():
			w.log.Info("Worker stopping")
			return
		}
	}
}

// ProcessAll обновляет все ленты и возвращает итоги цикла.
// Ошибка одной ленты не прерывает обработку остальных.
func (w *Worker) ProcessAll(ctx context.Context) CycleStats {
	start := time.Now()
	w.log.Info("Feed processing cycle started", slog.Int("feeds_to_process", len(w.urls)))
	var successCount, errorCount atomic.Int64
	var g errgroup.Group
	if w.limit > 0 {
		g.SetLimit(w.limit)
	}
	for _, url := range w.urls {
		url := url
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			opCtx := ctx
			if w.feedTimeout > 0 {
				var cancel context.CancelFunc
				opCtx, cancel = context.WithTimeout(ctx, w.feedTimeout)
				defer cancel()
			}
			if err := w.processor.ProcessFeed(opCtx, url); err != nil {
				errorCount.Add(1)
				w.log.Error("Feed processing failed",
					slog.String("url", url),
					slog.Any("error", err),
				)
				return nil
			}
			successCount.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	stats := CycleStats{
		Successful: int(successCount.Load()),
		Failed:     int(errorCount.Load()),
		Duration:   time.Since(start),
	}
	w.log.Info("Feed processing cycle completed",
		slog.Int("successful", stats.Successful),
		slog.Int("errors", stats.Failed),
		slog.Int("total", len(w.urls)),
		slog.Duration("duration", stats.Duration),
	)
	return stats
}

func (w *Worker) URLs() []string { return w.urls }

func (w *Worker) Interval() time.Duration { return w.interval }
