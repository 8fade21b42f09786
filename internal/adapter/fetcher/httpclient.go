package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"essentialfeed/internal/domain"
)

// HTTPClient выполняет GET-запросы через Session и приводит сырой результат
// (данные, ответ, ошибка) к domain.HTTPClientResult.
// Безопасен для конкурентного использования.
type HTTPClient struct {
	session Session
	log     *slog.Logger
	metrics *Metrics
}

// NewHTTPClient создает клиент поверх переданной сессии.
// metrics может быть nil.
func NewHTTPClient(session Session, log *slog.Logger, metrics *Metrics) *HTTPClient {
	return &HTTPClient{
		session: session,
		log:     log,
		metrics: metrics,
	}
}

// Get запускает один запрос и возвращается сразу. В канал будет отправлен
// ровно один результат, после чего канал закрывается.
func (c *HTTPClient) Get(ctx context.Context, u *url.URL) <-chan domain.HTTPClientResult {
	results := make(chan domain.HTTPClientResult, 1)
	if u == nil {
		results <- domain.Failure(errors.New("url is nil"))
		close(results)
		return results
	}
	log := c.log.With(slog.String("component", "http-client"), slog.String("url", u.String()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		log.Error("Failed to create HTTP request", slog.Any("error", err))
		results <- domain.Failure(fmt.Errorf("failed to create request for url %s: %w", u, err))
		close(results)
		return results
	}

	started := time.Now()
	metrics := c.metrics
	var once sync.Once
	c.session.DataTask(req, func(data []byte, response URLResponse, err error) {
		delivered := false
		once.Do(func() {
			delivered = true
			result := normalize(data, response, err)
			metrics.observe(resultLabel(result), started)
			if rErr := result.Err(); rErr != nil {
				log.Warn("HTTP request failed", slog.Any("error", rErr))
			} else {
				log.Debug("HTTP request completed", slog.Int("status_code", result.Response().StatusCode))
			}
			results <- result
			close(results)
		})
		if !delivered {
			log.Warn("Session completed the same task more than once, ignoring")
		}
	})
	return results
}

// normalize сводит восемь возможных комбинаций сырого результата к двум:
// только ошибка - отказ с этой ошибкой, данные и HTTP-ответ без ошибки - успех,
// все остальное - отказ с UnexpectedValuesRepresentationError.
func normalize(data []byte, response URLResponse, err error) domain.HTTPClientResult {
	hasData := data != nil
	hasResponse := !isNilResponse(response)
	switch {
	case err != nil && !hasData && !hasResponse:
		return domain.Failure(err)
	case err == nil && hasData && hasResponse:
		if httpResponse, ok := response.(*HTTPURLResponse); ok {
			return domain.Success(data, &domain.HTTPResponse{
				StatusCode: httpResponse.StatusCode,
				Header:     httpResponse.Header,
				URL:        httpResponse.URL,
			})
		}
	}
	return domain.Failure(&domain.UnexpectedValuesRepresentationError{
		HasData:     hasData,
		HasResponse: hasResponse,
		HasError:    err != nil,
	})
}

func isNilResponse(response URLResponse) bool {
	if response == nil {
		return true
	}
	httpResponse, ok := response.(*HTTPURLResponse)
	return ok && httpResponse == nil
}

func resultLabel(result domain.HTTPClientResult) string {
	err := result.Err()
	switch {
	case err == nil:
		return resultSuccess
	case errors.Is(err, domain.ErrUnexpectedValuesRepresentation):
		return resultUnexpected
	default:
		return resultFailure
	}
}
