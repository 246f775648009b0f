// Package store uploads exported images to an image host and downloads
// them again.
package store

import (
	"context"
	"errors"
	"fmt"
	"image"
)

// Store is an image host.
type Store interface {
	// Upload stores img losslessly and returns its ID.
	Upload(ctx context.Context, img *image.RGBA) (string, error)
	// Download fetches the image stored under id.
	Download(ctx context.Context, id string) (*image.RGBA, error)
	// URL is where the image with the given id can be viewed.
	URL(id string) string
}

// ErrNotFound is returned by Download for an unknown ID.
var ErrNotFound = errors.New("store: image not found")

// UploadError reports a failed exchange with a remote host.
type UploadError struct {
	Op     string // "upload" or "download"
	Status int
	Body   string
	Err    error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store: %s: host answered %d: %s", e.Op, e.Status, e.Body)
}

func (e *UploadError) Unwrap() error { return e.Err }
