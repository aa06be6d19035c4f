package testutil

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// MemoryFetcher serves fixed bodies by URL and counts requests
type MemoryFetcher struct {
	mu     sync.Mutex
	bodies map[string]string
	calls  map[string]int
}

// NewMemoryFetcher creates an empty fetcher; unknown URLs fail
func NewMemoryFetcher() *MemoryFetcher {
	return &MemoryFetcher{bodies: map[string]string{}, calls: map[string]int{}}
}

// Serve sets the body returned for url
func (m *MemoryFetcher) Serve(url, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bodies[url] = body
}

// Calls returns how often url was requested
func (m *MemoryFetcher) Calls(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[url]
}

func (m *MemoryFetcher) Fetch(url string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[url]++
	body, ok := m.bodies[url]
	if !ok {
		return nil, fmt.Errorf("no body for %s", url)
	}
	return io.NopCloser(bytes.NewBufferString(body)), nil
}
