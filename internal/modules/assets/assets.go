package assets

import (
	"context"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/sohepalslamat/shopify-front/internal/modules/countries"
	"github.com/sohepalslamat/shopify-front/internal/storage"
)

// CountryPlaceholder is the token inside the stored modal markup that gets
// replaced with generated <option> tags.
const CountryPlaceholder = "${countryOptionsPlaceholder}"

const DefaultMarkupKey = "modal-content.html"

// Service loads the modal markup from the configured storage backend and
// substitutes the country options. Markup is read once per key and cached;
// a failed load logs and degrades to empty content, which the widget
// treats as a no-op.
type Service struct {
	store storage.Storage

	mu    sync.Mutex
	cache map[string]string
}

func NewService(store storage.Storage) *Service {
	return &Service{store: store, cache: make(map[string]string)}
}

func (s *Service) ModalHTML(ctx context.Context, key string, list []countries.Country) string {
	if key == "" {
		key = DefaultMarkupKey
	}

	markup, ok := s.cached(key)
	if !ok {
		loaded, err := s.load(ctx, key)
		if err != nil {
			log.Printf("assets: modal markup %q unavailable: %v", key, err)
			return ""
		}
		markup = loaded
		s.remember(key, markup)
	}

	return strings.ReplaceAll(markup, CountryPlaceholder, countries.OptionsHTML(list))
}

// Invalidate drops the cached markup after an admin upload.
func (s *Service) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, key)
}

func (s *Service) load(ctx context.Context, key string) (string, error) {
	rc, err := s.store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	b, err := io.ReadAll(io.LimitReader(rc, 4<<20))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *Service) cached(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache[key]
	return v, ok
}

func (s *Service) remember(key, markup string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = markup
}
