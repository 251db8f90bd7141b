// Package memory provides an in-process implementation of storage.Provider.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/akilaweerasekara/Home-Inventory/internal/storage"
)

// Ensure Provider implements storage.Provider and storage.Lister
var (
	_ storage.Provider = (*Provider)(nil)
	_ storage.Lister   = (*Provider)(nil)
)

// Provider keeps values in a map. Nothing survives the process.
type Provider struct {
	mu     sync.Mutex
	values map[string][]byte
	quota  int
}

// New returns an empty provider with no size limit.
func New() *Provider {
	return &Provider{values: make(map[string][]byte)}
}

// SetQuota limits the total size of all stored values in bytes.
// Zero removes the limit. Existing values are kept even when over the limit.
func (p *Provider) SetQuota(bytes int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quota = bytes
}

// Get implements storage.Provider.
func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set implements storage.Provider.
func (p *Provider) Set(_ context.Context, key string, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.quota > 0 {
		used := len(value)
		for k, v := range p.values {
			if k != key {
				used += len(v)
			}
		}
		if used > p.quota {
			return storage.ErrQuotaExceeded
		}
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	p.values[key] = stored
	return nil
}

// Delete implements storage.Provider.
func (p *Provider) Delete(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.values, key)
	return nil
}

// Keys implements storage.Lister.
func (p *Provider) Keys(_ context.Context, prefix string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var keys []string
	for k := range p.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements storage.Provider.
func (p *Provider) Close() error {
	return nil
}
