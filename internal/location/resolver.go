// Package location resolves where newly admitted units are shelved.
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TypeWarehouse is the catalog store type that receives admitted stock.
const TypeWarehouse = "warehouse"

// Store is a physical location as listed by the catalog service.
type Store struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Resolver looks up the admission location in the store catalog.
type Resolver struct {
	baseURL  string
	apiToken string
	fallback string
	client   *http.Client
	log      *zap.Logger
}

type Config struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	Fallback string
}

func NewResolver(cfg Config, log *zap.Logger) *Resolver {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Resolver{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiToken: cfg.Token,
		fallback: cfg.Fallback,
		client:   &http.Client{Timeout: timeout},
		log:      log,
	}
}

// Resolve returns the name of the first warehouse in the catalog. Lookup
// failures are logged and answered with the configured default.
func (r *Resolver) Resolve(ctx context.Context) string {
	if r.baseURL == "" {
		return r.fallback
	}

	stores, err := r.Stores(ctx)
	if err != nil {
		r.log.Warn("store catalog unavailable, using default location",
			zap.String("default", r.fallback),
			zap.Error(err),
		)

		return r.fallback
	}

	for _, s := range stores {
		if strings.EqualFold(s.Type, TypeWarehouse) && s.Name != "" {
			return s.Name
		}
	}

	r.log.Debug("no warehouse in store catalog, using default location", zap.String("default", r.fallback))

	return r.fallback
}

// Stores lists the catalog's stores.
func (r *Resolver) Stores(ctx context.Context) ([]Store, error) {
	url := r.baseURL + "/stores"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if r.apiToken != "" {
		req.Header.Set("Authorization", "Token "+r.apiToken)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d for url %s", resp.StatusCode, url)
	}

	var stores []Store
	if err := json.NewDecoder(resp.Body).Decode(&stores); err != nil {
		return nil, fmt.Errorf("decoding stores: %w", err)
	}

	return stores, nil
}
