package storage

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrAccessDenied          = errors.New("access denied")
	ErrTransfer              = errors.New("transfer failed")
	ErrParse                 = errors.New("parse failed")
	ErrCapabilityUnavailable = errors.New("object store capability unavailable")
	ErrUnsupported           = errors.New("unsupported operation")
)

// fsError tags a filesystem error with its kind while keeping the
// original *fs.PathError reachable through errors.As.
func fsError(op, path string, err error) error {
	kind := ErrTransfer
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = ErrAccessDenied
	}
	return fmt.Errorf("%s %s: %w: %w", op, path, kind, err)
}
