package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/aswearingen91/skillcheck/internal/steg"
)

// Disk keeps images as PNG files in a directory.
type Disk struct {
	dir     string
	baseURL string
}

// NewDisk creates dir if needed. baseURL prefixes the IDs returned by URL.
func NewDisk(dir, baseURL string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}
	return &Disk{dir: dir, baseURL: baseURL}, nil
}

func (d *Disk) path(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", ErrNotFound
	}
	return filepath.Join(d.dir, u.String()+".png"), nil
}

func (d *Disk) Upload(ctx context.Context, img *image.RGBA) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	p, _ := d.path(id)

	tmp, err := os.CreateTemp(d.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("store: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := png.Encode(w, img); err != nil {
		tmp.Close()
		return "", fmt.Errorf("store: encode png: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("store: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return "", fmt.Errorf("store: %w", err)
	}
	return id, nil
}

func (d *Disk) Download(ctx context.Context, id string) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := d.path(id)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", id, err)
	}
	return steg.ToRGBA(img), nil
}

// Path returns the file backing id, for serving it directly.
func (d *Disk) Path(id string) (string, error) {
	p, err := d.path(id)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	} else if err != nil {
		return "", fmt.Errorf("store: %w", err)
	}
	return p, nil
}

func (d *Disk) URL(id string) string {
	return d.baseURL + "/images/" + id
}
