package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"html/template"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

// renderCacheSize bounds the number of memoized Markdown renders.
const renderCacheSize = 1000

// RenderCache memoizes rendered HTML by the SHA-256 of its Markdown source.
// Rendering is a pure function of the source, so entries never go stale.
type RenderCache struct {
	lruCache *lru.Cache[string, template.HTML]
}

var (
	renderCache     *RenderCache
	renderCacheOnce sync.Once
)

// GetRenderCache returns the process-wide render cache.
func GetRenderCache() *RenderCache {
	renderCacheOnce.Do(func() {
		l, err := lru.New[string, template.HTML](renderCacheSize)
		if err != nil {
			logrus.Fatalf("Failed to create LRU cache: %v", err)
		}
		renderCache = &RenderCache{lruCache: l}
	})
	return renderCache
}

func cacheKey(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// GetOrRender returns the cached HTML for source, calling render on a miss.
func (c *RenderCache) GetOrRender(source string, render func(string) template.HTML) template.HTML {
	key := cacheKey(source)
	if html, ok := c.lruCache.Get(key); ok {
		return html
	}
	html := render(source)
	c.lruCache.Add(key, html)
	return html
}

// Len is the number of cached entries.
func (c *RenderCache) Len() int {
	return c.lruCache.Len()
}
