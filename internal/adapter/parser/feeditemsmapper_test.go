package parser

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedItemsMapper_Map_Success(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mapper := NewFeedItemsMapper(logger)

	jsonData := `{
		"items": [
			{
				"id": "2c5e7a0e-3f2a-4d8e-9b4d-0a4f0f3b7f11",
				"image": "https://a-url.com/1.png"
			},
			{
				"id": "8f0f6a52-b3f7-4b5e-8d0c-2c2b4a1b8c22",
				"description": "a description",
				"location": "a location",
				"image": "https://another-url.com/2.png"
			}
		]
	}`

	images, err := mapper.Map(http.StatusOK, []byte(jsonData))

	require.NoError(t, err)
	require.Len(t, images, 2)

	assert.Equal(t, "2c5e7a0e-3f2a-4d8e-9b4d-0a4f0f3b7f11", images[0].ID.String())
	assert.Empty(t, images[0].Description)
	assert.Empty(t, images[0].Location)
	assert.Equal(t, "https://a-url.com/1.png", images[0].URL.String())

	assert.Equal(t, "8f0f6a52-b3f7-4b5e-8d0c-2c2b4a1b8c22", images[1].ID.String())
	assert.Equal(t, "a description", images[1].Description)
	assert.Equal(t, "a location", images[1].Location)
	assert.Equal(t, "https://another-url.com/2.png", images[1].URL.String())
}

func TestFeedItemsMapper_Map_NonOKStatus(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mapper := NewFeedItemsMapper(logger)
	validJSON := []byte(`{"items": []}`)

	for _, code := range []int{199, 201, 300, 400, 500} {
		images, err := mapper.Map(code, validJSON)

		assert.ErrorIs(t, err, ErrInvalidStatus, "status %d", code)
		assert.Nil(t, images)
	}
}

func TestFeedItemsMapper_Map_InvalidJSON(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mapper := NewFeedItemsMapper(logger)

	images, err := mapper.Map(http.StatusOK, []byte("invalid json"))

	assert.Error(t, err)
	assert.Nil(t, images)
	assert.Contains(t, err.Error(), "failed to decode JSON")
}

func TestFeedItemsMapper_Map_MissingItems(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mapper := NewFeedItemsMapper(logger)

	images, err := mapper.Map(http.StatusOK, []byte(`{"other": []}`))

	assert.Error(t, err)
	assert.Nil(t, images)
}

func TestFeedItemsMapper_Map_InvalidItem(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mapper := NewFeedItemsMapper(logger)

	tests := []struct {
		name string
		body string
	}{
		{name: "bad id", body: `{"items": [{"id": "not-a-uuid", "image": "https://a-url.com"}]}`},
		{name: "missing image", body: `{"items": [{"id": "2c5e7a0e-3f2a-4d8e-9b4d-0a4f0f3b7f11"}]}`},
		{name: "relative image", body: `{"items": [{"id": "2c5e7a0e-3f2a-4d8e-9b4d-0a4f0f3b7f11", "image": "/1.png"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			images, err := mapper.Map(http.StatusOK, []byte(tt.body))

			assert.Error(t, err)
			assert.Nil(t, images)
			assert.Contains(t, err.Error(), "invalid item at index 0")
		})
	}
}

func TestFeedItemsMapper_Map_EmptyList(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mapper := NewFeedItemsMapper(logger)

	images, err := mapper.Map(http.StatusOK, []byte(`{"items": []}`))

	require.NoError(t, err)
	assert.NotNil(t, images)
	assert.Empty(t, images)
}
