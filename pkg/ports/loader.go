package ports

import (
	"context"

	"github.com/spoolworks/spindle/pkg/domain"
)

// StoryworldLoader resolves a storyworld reference (path, key, name) to a
// validated definition. Decouples the engine from the storage layer.
type StoryworldLoader interface {
	Load(ctx context.Context, ref string) (*domain.Storyworld, error)
}
