package bookforge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
)

// Client sends one system/user prompt pair to a language model and returns
// the raw text of its reply.
type Client interface {
	SendMessage(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// CachedClient memoizes replies for identical prompt pairs.
type CachedClient struct {
	Client
	cache *cache.Cache
}

func NewCachedClient(c Client, ttl time.Duration) *CachedClient {
	return &CachedClient{
		Client: c,
		cache:  cache.New(ttl, 2*ttl),
	}
}

func (c *CachedClient) SendMessage(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	key := cacheKey(systemPrompt, userPrompt)
	if v, ok := c.cache.Get(key); ok {
		if reply, ok := v.(string); ok {
			return reply, nil
		}
	}
	reply, err := c.Client.SendMessage(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}
	c.cache.Set(key, reply, cache.DefaultExpiration)
	return reply, nil
}

// Drop removes the cached reply for one prompt pair, so the next identical
// request goes back to the model.
func (c *CachedClient) Drop(systemPrompt, userPrompt string) {
	c.cache.Delete(cacheKey(systemPrompt, userPrompt))
}

// Forget drops every cached reply.
func (c *CachedClient) Forget() {
	c.cache.Flush()
}

func cacheKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
