package domain

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// FeedImage представляет отдельный элемент ленты, полученный из удаленного источника.
// Пустые Description и Location означают отсутствие значения.
type FeedImage struct {
	ID          uuid.UUID
	Description string
	Location    string
	URL         *url.URL
}

// LocalFeedImage - представление FeedImage для хранилища.
type LocalFeedImage struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	URL         string    `json:"url"`
}

// ToLocal преобразует элементы ленты в форму, пригодную для сохранения.
func ToLocal(images []FeedImage) []LocalFeedImage {
	local := make([]LocalFeedImage, 0, len(images))
	for _, image := range images {
		var rawURL string
		if image.URL != nil {
			rawURL = image.URL.String()
		}
		local = append(local, LocalFeedImage{
			ID:          image.ID,
			Description: image.Description,
			Location:    image.Location,
			URL:         rawURL,
		})
	}
	return local
}

// ToModels выполняет обратное преобразование и проверяет сохраненные URL.
func ToModels(local []LocalFeedImage) ([]FeedImage, error) {
	images := make([]FeedImage, 0, len(local))
	for _, l := range local {
		u, err := url.Parse(l.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid url for image %s: %w", l.ID, err)
		}
		images = append(images, FeedImage{
			ID:          l.ID,
			Description: l.Description,
			Location:    l.Location,
			URL:         u,
		})
	}
	return images, nil
}
