package countries

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Loader fetches the country list and caches the first successful result
// for the process lifetime. A failed fetch logs and degrades to an empty
// list for that request only; the next request tries again.
type Loader struct {
	URL  string
	HTTP *http.Client

	mu     sync.Mutex
	loaded bool
	list   []Country
}

func NewLoader(url string, timeout time.Duration) *Loader {
	return &Loader{URL: url, HTTP: &http.Client{Timeout: timeout}}
}

func (l *Loader) List(ctx context.Context) []Country {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		return l.list
	}

	list, err := l.fetch(ctx)
	if err != nil {
		log.Printf("countries: fetch failed, degrading to empty list: %v", err)
		return []Country{}
	}

	l.list = list
	l.loaded = true
	return l.list
}

func (l *Loader) fetch(ctx context.Context) ([]Country, error) {
	if l.URL == "" {
		return nil, fmt.Errorf("no country source configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := l.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var list []Country
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// OptionsHTML renders the <option> tags substituted into the modal markup.
func OptionsHTML(list []Country) string {
	var sb strings.Builder
	for _, c := range list {
		sb.WriteString(`<option value="`)
		sb.WriteString(html.EscapeString(c.Code))
		sb.WriteString(`">`)
		sb.WriteString(html.EscapeString(c.Name))
		sb.WriteString(`</option>`)
	}
	return sb.String()
}
