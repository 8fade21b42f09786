package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"essentialfeed/internal/domain"

	"github.com/google/uuid"
)

// ErrInvalidStatus возвращается, если код ответа не равен 200.
var ErrInvalidStatus = errors.New("invalid status code")

type rootJSON struct {
	Items *[]itemJSON `json:"items"`
}

type itemJSON struct {
	ID          string  `json:"id"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Image       string  `json:"image"`
}

type FeedItemsMapper struct {
	log *slog.Logger
}

func NewFeedItemsMapper(log *slog.Logger) *FeedItemsMapper {
	return &FeedItemsMapper{
		log: log,
	}
}

// Map реализует метод интерфейса FeedItemsMapper.
func (m *FeedItemsMapper) Map(statusCode int, data []byte) ([]domain.FeedImage, error) {
	if statusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, statusCode)
	}
	var root rootJSON
	if err := json.Unmarshal(data, &root); err != nil {
		m.log.Error(
			"Error decoding JSON",
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	if root.Items == nil {
		return nil, errors.New("failed to decode JSON: missing items")
	}
	images := make([]domain.FeedImage, 0, len(*root.Items))
	for i, item := range *root.Items {
		image, err := item.toModel()
		if err != nil {
			m.log.Error(
				"Invalid feed item",
				slog.Int("index", i),
				slog.Any("error", err),
			)
			return nil, fmt.Errorf("invalid item at index %d: %w", i, err)
		}
		images = append(images, image)
	}
	return images, nil
}

func (i itemJSON) toModel() (domain.FeedImage, error) {
	id, err := uuid.Parse(i.ID)
	if err != nil {
		return domain.FeedImage{}, fmt.Errorf("invalid id %q: %w", i.ID, err)
	}
	image, err := url.Parse(i.Image)
	if err != nil || image.Scheme == "" || image.Host == "" {
		return domain.FeedImage{}, fmt.Errorf("invalid image url %q", i.Image)
	}
	feedImage := domain.FeedImage{ID: id, URL: image}
	if i.Description != nil {
		feedImage.Description = *i.Description
	}
	if i.Location != nil {
		feedImage.Location = *i.Location
	}
	return feedImage, nil
}
