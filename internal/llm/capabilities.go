package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const openRouterModelsURL = openRouterBaseURL + "/models"

// ImageCapabilitiesCache caches per-provider model image-input lookups.
type ImageCapabilitiesCache struct {
	mu      sync.Mutex
	entries map[ProviderID]capEntry
	url     string
	client  *http.Client
}

type capEntry struct {
	expiry  time.Time
	support map[string]bool // modelID -> accepts image input
}

var imageCapCache = &ImageCapabilitiesCache{
	entries: make(map[ProviderID]capEntry),
	url:     openRouterModelsURL,
	client:  http.DefaultClient,
}

// SupportsImagesForModel returns (supports, known) for a provider/model.
// known==false means the lookup failed and callers should try anyway.
func SupportsImagesForModel(ctx context.Context, provider Provider, modelID string, openRouterAPIKey string) (bool, bool) {
	for _, m := range provider.Models() {
		if m.ID == modelID {
			return m.SupportsImages, true
		}
	}

	// OpenRouter's catalog changes too often for a static list.
	if provider.ID() == ProviderOpenRouter {
		if supports, known := imageCapCache.fetchOpenRouter(ctx, openRouterAPIKey, modelID); known {
			return supports, true
		}
	}

	return true, false
}

func (c *ImageCapabilitiesCache) fetchOpenRouter(ctx context.Context, apiKey, targetModel string) (bool, bool) {
	if apiKey == "" {
		return false, false
	}

	c.mu.Lock()
	entry, ok := c.entries[ProviderOpenRouter]
	if ok && time.Now().Before(entry.expiry) {
		if v, found := entry.support[targetModel]; found {
			c.mu.Unlock()
			return v, true
		}
	}
	c.mu.Unlock()

	support, err := c.pull(ctx, apiKey)
	if err != nil {
		return false, false
	}

	c.mu.Lock()
	c.entries[ProviderOpenRouter] = capEntry{
		expiry:  time.Now().Add(6 * time.Hour),
		support: support,
	}
	c.mu.Unlock()

	v, found := support[targetModel]
	return v, found
}

func (c *ImageCapabilitiesCache) pull(ctx context.Context, apiKey string) (map[string]bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openrouter models: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Data []openRouterModel `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	out := make(map[string]bool, len(body.Data))
	for _, m := range body.Data {
		if m.ID == "" {
			continue
		}
		out[m.ID] = m.acceptsImages()
	}
	return out, nil
}

type openRouterModel struct {
	ID           string `json:"id"`
	Architecture struct {
		Modality        string   `json:"modality"`
		InputModalities []string `json:"input_modalities"`
	} `json:"architecture"`
}

func (m openRouterModel) acceptsImages() bool {
	for _, mod := range m.Architecture.InputModalities {
		if mod == "image" {
			return true
		}
	}
	// Older entries only carry "text+image->text".
	switch m.Architecture.Modality {
	case "text+image->text", "text+image->text+image":
		return true
	}
	return false
}
