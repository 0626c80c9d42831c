// Package uploads stores menu images on local disk and turns stored
// references into public URLs.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"pos-api/apperr"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// PathPrefix is the URL path the upload directory is served under.
const PathPrefix = "/uploads/"

var allowedTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// Store writes images into a single directory.
type Store struct {
	dir      string
	maxBytes int64
}

func New(dir string, maxBytes int64) *Store {
	return &Store{dir: dir, maxBytes: maxBytes}
}

// Dir is the directory files are written to.
func (s *Store) Dir() string { return s.dir }

// Saved describes a stored image. Ref is what menus keep in imageRef.
type Saved struct {
	Ref      string `json:"filename"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimetype"`
}

// Save sniffs the upload's content type and copies it under a random name.
// The client-supplied name and Content-Type are ignored.
func (s *Store) Save(fh *multipart.FileHeader) (*Saved, error) {
	if fh.Size > s.maxBytes {
		return nil, s.tooLarge()
	}
	src, err := fh.Open()
	if err != nil {
		return nil, apperr.Validation("cannot read uploaded file")
	}
	defer src.Close()

	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, apperr.Validation("cannot read uploaded file")
	}
	if !mimetype.EqualsAny(mt.String(), allowedTypes...) {
		return nil, apperr.Validation("file must be an image (png, jpeg, gif or webp), got %s", mt.String())
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, apperr.Store("rewind upload", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, apperr.Store("create upload dir", err)
	}
	name := uuid.NewString() + mt.Extension()
	path := filepath.Join(s.dir, name)
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, apperr.Store("create upload file", err)
	}

	n, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, apperr.Store("write upload file", err)
	}
	if n > s.maxBytes {
		os.Remove(path)
		return nil, s.tooLarge()
	}
	return &Saved{Ref: name, Size: n, MimeType: mt.String()}, nil
}

func (s *Store) tooLarge() error {
	return apperr.Validation("file is larger than %s", humanize.IBytes(uint64(s.maxBytes)))
}

// IsRemote reports whether ref is an absolute http(s) URL rather than a
// stored file.
func IsRemote(ref string) bool {
	l := strings.ToLower(ref)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// URL resolves ref against base, the public origin such as
// "https://pos.example.com". Remote refs are returned unchanged.
func URL(ref, base string) string {
	if ref == "" || IsRemote(ref) {
		return ref
	}
	return strings.TrimRight(base, "/") + PathPrefix + localName(ref)
}

// Remove deletes the file behind a local ref. Remote refs and files that
// are already gone are ignored.
func (s *Store) Remove(ref string) error {
	if ref == "" || IsRemote(ref) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, localName(ref)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", ref, err)
	}
	return nil
}

// localName strips any "/uploads/" prefix and directory parts so a ref can
// never point outside the upload directory.
func localName(ref string) string {
	ref = strings.TrimPrefix(strings.TrimPrefix(ref, "/"), strings.TrimPrefix(PathPrefix, "/"))
	return filepath.Base(filepath.FromSlash(ref))
}
