package service

import (
	"sync"
	"time"

	"github.com/ElarizT/Mavericks/internal/domain"
)

// ModelsCache keeps the model configs listing of one bearer token. A listing
// fetched under another token, or older than the ttl, is a miss.
type ModelsCache struct {
	ttl time.Duration

	mu      sync.Mutex
	owner   string
	configs []domain.ProviderConfig
	expires time.Time
}

func NewModelsCache(ttl time.Duration) *ModelsCache {
	return &ModelsCache{ttl: ttl}
}

// Get returns the listing cached for token, nil on a miss.
func (c *ModelsCache) Get(token string) []domain.ProviderConfig {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.configs == nil || c.owner != token || !time.Now().Before(c.expires) {
		return nil
	}
	return c.configs
}

// Set replaces the cached listing; a listing from a different token evicts
// the previous one.
func (c *ModelsCache) Set(token string, configs []domain.ProviderConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owner = token
	c.configs = configs
	c.expires = time.Now().Add(c.ttl)
}

func (c *ModelsCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owner = ""
	c.configs = nil
}
