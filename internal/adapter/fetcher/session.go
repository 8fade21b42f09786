package fetcher

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// URLResponse - метаданные ответа, которые сессия передает вместе с данными.
type URLResponse interface {
	ResponseURL() *url.URL
}

// HTTPURLResponse - ответ, полученный по протоколу HTTP.
type HTTPURLResponse struct {
	URL        *url.URL
	StatusCode int
	Header     http.Header
}

func (r *HTTPURLResponse) ResponseURL() *url.URL { return r.URL }

// DataTaskCompletion получает три независимых поля результата запроса.
// Любое из них может отсутствовать.
type DataTaskCompletion func(data []byte, response URLResponse, err error)

// Session - асинхронный примитив загрузки данных, поверх которого работает HTTPClient.
// DataTask запускает запрос и возвращается сразу, completion вызывается позже.
type Session interface {
	DataTask(req *http.Request, completion DataTaskCompletion)
}

// SessionConfig содержит параметры HTTPSession.
type SessionConfig struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
}

// HTTPSession реализует Session поверх net/http.
// Каждый запрос выполняется в отдельной горутине, общий *http.Client
// безопасен для конкурентного использования.
type HTTPSession struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
	log          *slog.Logger
}

// NewHTTPSession создает сессию с клиентом, настроенным по cfg.
func NewHTTPSession(cfg SessionConfig, log *slog.Logger) *HTTPSession {
	return NewHTTPSessionWithClient(&http.Client{Timeout: cfg.Timeout}, cfg, log)
}

// NewHTTPSessionWithClient позволяет подменить *http.Client, например его Transport.
func NewHTTPSessionWithClient(client *http.Client, cfg SessionConfig, log *slog.Logger) *HTTPSession {
	return &HTTPSession{
		client:       client,
		userAgent:    cfg.UserAgent,
		maxBodyBytes: cfg.MaxBodyBytes,
		log:          log,
	}
}

// DataTask выполняет запрос асинхронно.
func (s *HTTPSession) DataTask(req *http.Request, completion DataTaskCompletion) {
	if s.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	go s.run(req, completion)
}

func (s *HTTPSession) run(req *http.Request, completion DataTaskCompletion) {
	log := s.log.With(slog.String("url", req.URL.String()))
	log.Debug("Starting data task")
	resp, err := s.client.Do(req)
	if err != nil {
		log.Debug("Data task failed", slog.Any("error", err))
		completion(nil, nil, err)
		return
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if s.maxBodyBytes > 0 {
		body = io.LimitReader(resp.Body, s.maxBodyBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		completion(nil, nil, fmt.Errorf("failed to read response body: %w", err))
		return
	}
	if s.maxBodyBytes > 0 && int64(len(data)) > s.maxBodyBytes {
		completion(nil, nil, fmt.Errorf("response body exceeds %d bytes", s.maxBodyBytes))
		return
	}
	completion(data, &HTTPURLResponse{
		URL:        resp.Request.URL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
	}, nil)
}
