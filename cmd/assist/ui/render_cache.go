package ui

import "sync"

// RenderCache memoizes rendered message bodies. Messages are immutable once
// appended, so (ID, width) fully determines the output. Only the current
// width is kept: a resize drops every entry rendered for the old width, and
// otherwise the cache grows with the transcript.
type RenderCache struct {
	mu      sync.Mutex
	width   int
	entries map[uint64]string
}

// NewRenderCache creates an empty cache.
func NewRenderCache() *RenderCache {
	return &RenderCache{entries: make(map[uint64]string)}
}

// GetOrCompute returns the cached render for (id, width), computing it on a miss.
func (rc *RenderCache) GetOrCompute(id uint64, width int, compute func() string) string {
	rc.mu.Lock()
	if width != rc.width {
		rc.width = width
		rc.entries = make(map[uint64]string)
	}
	if content, ok := rc.entries[id]; ok {
		rc.mu.Unlock()
		return content
	}
	rc.mu.Unlock()

	content := compute()

	rc.mu.Lock()
	defer rc.mu.Unlock()
	if width == rc.width {
		rc.entries[id] = content
	}
	return content
}

// Len returns the number of cached entries.
func (rc *RenderCache) Len() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.entries)
}
