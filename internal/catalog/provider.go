package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrNotLoaded is returned by Current before the first successful Load.
var ErrNotLoaded = errors.New("catalog: not loaded")

// Source produces a catalog from some backing store.
type Source interface {
	Load(ctx context.Context) (*Catalog, error)
}

// Provider owns the process-wide catalog reference. The first Load wins and
// concurrent early callers block behind it; Reload swaps the whole reference
// atomically so an in-flight pipeline run never observes a half-updated
// catalog.
type Provider struct {
	source Source

	once    sync.Once
	loadErr error
	current atomic.Pointer[Catalog]
}

// NewProvider creates a provider backed by the given source. Nothing is
// loaded until Load is called.
func NewProvider(source Source) *Provider {
	return &Provider{source: source}
}

// Load performs the one-time initial load. Safe for concurrent use: exactly
// one caller loads, the rest wait and share the outcome.
func (p *Provider) Load(ctx context.Context) error {
	p.once.Do(func() {
		cat, err := p.source.Load(ctx)
		if err != nil {
			p.loadErr = err
			return
		}
		p.current.Store(cat)
	})
	return p.loadErr
}

// Reload fetches a fresh catalog and swaps it in atomically. The previous
// catalog stays valid for runs already holding it.
func (p *Provider) Reload(ctx context.Context) error {
	cat, err := p.source.Load(ctx)
	if err != nil {
		return err
	}
	p.current.Store(cat)
	return nil
}

// Current returns the live catalog reference.
func (p *Provider) Current() (*Catalog, error) {
	if cat := p.current.Load(); cat != nil {
		return cat, nil
	}
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	return nil, ErrNotLoaded
}
