package artifactstore

import (
	"fmt"

	"github.com/electric-coding/artifactstore/internal/storage"
)

// Error kinds. Match them with errors.Is; the underlying cause stays in
// the chain.
var (
	ErrNotFound              = storage.ErrNotFound
	ErrAccessDenied          = storage.ErrAccessDenied
	ErrTransfer              = storage.ErrTransfer
	ErrParse                 = storage.ErrParse
	ErrCapabilityUnavailable = storage.ErrCapabilityUnavailable
	ErrUnsupported           = storage.ErrUnsupported
)

func parseError(rel string, err error) error {
	return fmt.Errorf("parse %s: %w: %w", rel, ErrParse, err)
}
