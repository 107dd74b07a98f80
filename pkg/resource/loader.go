// Package resource provides the byte loaders layout uses for replaced
// content, and an HTTP fetcher that fills a loader before a layout pass.
package resource

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"l14core/pkg/images"
)

func logger() *zap.Logger { return zap.L().Named("resource") }

// NoResources never has anything to load.
type NoResources struct{}

func (NoResources) LoadBytes(string) ([]byte, error) { return nil, nil }

// DirLoader loads references relative to Root; a leading slash also
// resolves against Root. References escaping Root are refused, network URLs
// are unavailable and data: URIs are decoded inline.
type DirLoader struct {
	Root string
}

func (d DirLoader) LoadBytes(ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}
	if images.IsDataURI(ref) {
		return images.DataURIBytes(ref)
	}
	if IsNetworkURL(ref) {
		return nil, nil
	}
	ref = strings.TrimPrefix(ref, "file://")
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(ref, "/")))
	if !filepath.IsLocal(clean) {
		return nil, fmt.Errorf("reference %q escapes %s", ref, d.Root)
	}
	data, err := os.ReadFile(filepath.Join(d.Root, clean))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ref, err)
	}
	return data, nil
}

// MemoryLoader serves bytes stored under their reference. It is safe for
// concurrent use, so a prefetch can fill it from several goroutines.
type MemoryLoader struct {
	mu      sync.RWMutex
	entries map[string][]byte
	types   map[string]string
}

func NewMemoryLoader() *MemoryLoader {
	return &MemoryLoader{entries: make(map[string][]byte), types: make(map[string]string)}
}

// Put stores data and its content type under ref.
func (m *MemoryLoader) Put(ref string, data []byte, contentType string) {
	ref = strings.TrimSpace(ref)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[ref] = data
	m.types[ref] = contentType
}

func (m *MemoryLoader) LoadBytes(ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if images.IsDataURI(ref) {
		return images.DataURIBytes(ref)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[ref], nil
}

// ContentType returns the content type recorded for ref.
func (m *MemoryLoader) ContentType(ref string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.types[strings.TrimSpace(ref)]
}

// Len returns the number of stored references.
func (m *MemoryLoader) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Chain tries each loader in turn and returns the first non-nil result.
type Chain []interface {
	LoadBytes(ref string) ([]byte, error)
}

func (c Chain) LoadBytes(ref string) ([]byte, error) {
	for _, l := range c {
		data, err := l.LoadBytes(ref)
		if err != nil {
			return nil, err
		}
		if data != nil {
			return data, nil
		}
	}
	return nil, nil
}
