// Package uploads stores photos attached to issue submissions on local disk.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	DefaultDir      = "images"
	DefaultMaxBytes = 5 * 1024 * 1024
	// URLPrefix is where stored files are served from.
	URLPrefix = "/images/"
)

var (
	ErrTooLarge        = errors.New("image exceeds maximum size")
	ErrUnsupportedType = errors.New("image must be JPEG, PNG or WebP")
)

var allowedTypes = []string{"image/jpeg", "image/png", "image/webp"}

// Saved locates a stored image on disk and on the public path.
type Saved struct {
	Path string
	URL  string
}

type Store struct {
	dir      string
	maxBytes int64
}

func NewStore(dir string, maxBytes int64) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Store{dir: dir, maxBytes: maxBytes}
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) MaxBytes() int64 { return s.maxBytes }

// Save sniffs the upload's content type and writes it as <uuid><ext>.
// The client-supplied filename is ignored.
func (s *Store) Save(fh *multipart.FileHeader) (Saved, error) {
	if fh.Size > s.maxBytes {
		return Saved{}, ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return Saved{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return Saved{}, fmt.Errorf("detect image type: %w", err)
	}
	if !mimetype.EqualsAny(mtype.String(), allowedTypes...) {
		return Saved{}, ErrUnsupportedType
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return Saved{}, fmt.Errorf("rewind upload: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Saved{}, fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + mtype.Extension()
	path := filepath.Join(s.dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return Saved{}, fmt.Errorf("create %s: %w", path, err)
	}

	n, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > s.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, ErrTooLarge) {
			return Saved{}, err
		}
		return Saved{}, fmt.Errorf("write %s: %w", path, err)
	}

	return Saved{Path: path, URL: URLPrefix + name}, nil
}

// Remove deletes a stored image, ignoring files that are already gone.
func (s *Store) Remove(saved Saved) error {
	if saved.Path == "" {
		return nil
	}
	if err := os.Remove(saved.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
