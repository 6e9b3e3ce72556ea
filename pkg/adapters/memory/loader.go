package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/spoolworks/spindle/pkg/domain"
)

// Loader implements ports.StoryworldLoader over an in-memory map, keyed by
// storyworld id. Useful for tests and embedded storyworlds.
type Loader struct {
	mu     sync.RWMutex
	worlds map[string]*domain.Storyworld
}

// NewLoader creates an empty in-memory loader.
func NewLoader() *Loader {
	return &Loader{worlds: make(map[string]*domain.Storyworld)}
}

// Add registers a storyworld under its own id.
func (l *Loader) Add(sw *domain.Storyworld) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.worlds[sw.ID] = sw
}

// Load resolves a storyworld by id.
func (l *Loader) Load(ctx context.Context, ref string) (*domain.Storyworld, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	sw, ok := l.worlds[ref]
	if !ok {
		return nil, fmt.Errorf("storyworld %q not registered", ref)
	}
	return sw, nil
}
