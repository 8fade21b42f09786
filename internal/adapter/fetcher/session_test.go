package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTripperStub перехватывает запросы до сети.
type roundTripperStub struct {
	mu       sync.Mutex
	requests []*http.Request
	status   int
	body     string
	err      error
}

func (s *roundTripperStub) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return &http.Response{
		StatusCode: s.status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(s.body)),
		Request:    req,
	}, nil
}

func makeSessionSUT(t *testing.T, stub *roundTripperStub, cfg SessionConfig) *HTTPClient {
	t.Helper()
	session := NewHTTPSessionWithClient(&http.Client{Transport: stub}, cfg, discardLogger())
	return makeSUT(t, session)
}

func TestHTTPSession_PerformsGETRequestWithURL(t *testing.T) {
	stub := &roundTripperStub{status: http.StatusOK}
	sut := makeSessionSUT(t, stub, SessionConfig{UserAgent: "essentialfeed-test"})
	u := anyURL(t)

	awaitResult(t, sut.Get(context.Background(), u))

	stub.mu.Lock()
	defer stub.mu.Unlock()
	require.Len(t, stub.requests, 1)
	assert.Equal(t, u.String(), stub.requests[0].URL.String())
	assert.Equal(t, http.MethodGet, stub.requests[0].Method)
	assert.Equal(t, "essentialfeed-test", stub.requests[0].Header.Get("User-Agent"))
}

func TestHTTPSession_FailsOnRequestError(t *testing.T) {
	requestErr := errors.New("any error")
	sut := makeSessionSUT(t, &roundTripperStub{err: requestErr}, SessionConfig{})

	result := awaitResult(t, sut.Get(context.Background(), anyURL(t)))

	assert.False(t, result.IsSuccess())
	assert.ErrorIs(t, result.Err(), requestErr)
}

func TestHTTPSession_SucceedsWithEmptyData(t *testing.T) {
	sut := makeSessionSUT(t, &roundTripperStub{status: http.StatusOK}, SessionConfig{})

	result := awaitResult(t, sut.Get(context.Background(), anyURL(t)))

	require.NoError(t, result.Err())
	assert.NotNil(t, result.Data())
	assert.Empty(t, result.Data())
}

func TestHTTPSession_PassesNonOKStatusThrough(t *testing.T) {
	sut := makeSessionSUT(t, &roundTripperStub{status: http.StatusNotFound, body: "missing"}, SessionConfig{})

	result := awaitResult(t, sut.Get(context.Background(), anyURL(t)))

	require.NoError(t, result.Err())
	assert.Equal(t, http.StatusNotFound, result.Response().StatusCode)
	assert.Equal(t, "missing", string(result.Data()))
}

func TestHTTPSession_FailsWhenBodyTooLarge(t *testing.T) {
	sut := makeSessionSUT(t, &roundTripperStub{status: http.StatusOK, body: "0123456789"}, SessionConfig{MaxBodyBytes: 4})

	result := awaitResult(t, sut.Get(context.Background(), anyURL(t)))

	assert.Error(t, result.Err())
	assert.Contains(t, result.Err().Error(), "exceeds 4 bytes")
}

func TestHTTPSession_Success(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("any data"))
	}))
	defer testServer.Close()
	u, err := url.Parse(testServer.URL + "/feed")
	require.NoError(t, err)
	sut := NewHTTPClient(NewHTTPSession(SessionConfig{Timeout: time.Second}, discardLogger()), discardLogger(), nil)

	result := awaitResult(t, sut.Get(context.Background(), u))

	require.NoError(t, result.Err())
	assert.Equal(t, "any data", string(result.Data()))
	assert.Equal(t, http.StatusOK, result.Response().StatusCode)
	assert.Equal(t, u.String(), result.Response().URL.String())
}

func TestHTTPSession_ContextCancelled(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer testServer.Close()
	u, err := url.Parse(testServer.URL)
	require.NoError(t, err)
	sut := NewHTTPClient(NewHTTPSession(SessionConfig{}, discardLogger()), discardLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := awaitResult(t, sut.Get(ctx, u))

	assert.ErrorIs(t, result.Err(), context.Canceled)
}
