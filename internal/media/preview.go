// Package media keeps locally attached images until a draft is submitted or discarded.
//
// Every attachment is a preview handle backed by a file in the store directory. A
// handle must be released when it is superseded, when its draft is discarded and
// after a successful submission; Close releases whatever is left at shutdown.
package media

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

var (
	// ErrUnknownHandle is returned for handles that were never issued or were already released.
	ErrUnknownHandle = errors.New("media: unknown preview handle")
	// ErrTooLarge is returned when an upload exceeds the store's hard read limit.
	ErrTooLarge = errors.New("media: upload exceeds size limit")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("media: store closed")
)

// DefaultReadLimit bounds how much of an upload the store will buffer.
const DefaultReadLimit = 32 << 20

// Preview describes an attached image.
type Preview struct {
	Handle      string    `json:"handle"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Digest      string    `json:"digest"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store owns preview files under a directory.
type Store struct {
	mu        sync.Mutex
	dir       string
	readLimit int64
	previews  map[string]Preview
	closed    bool
	now       func() time.Time
	logger    *slog.Logger
}

// NewStore creates dir if needed. readLimit <= 0 uses DefaultReadLimit.
func NewStore(dir string, readLimit int64, now func() time.Time, logger *slog.Logger) (*Store, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "eventadmin-previews")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("media: create preview dir: %w", err)
	}
	if readLimit <= 0 {
		readLimit = DefaultReadLimit
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		dir:       dir,
		readLimit: readLimit,
		previews:  make(map[string]Preview),
		now:       now,
		logger:    logger.With("component", "media"),
	}, nil
}

// Attach buffers r into a new preview file. The content type is sniffed from the data;
// the caller-declared type is not trusted.
func (s *Store) Attach(filename string, r io.Reader) (Preview, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.readLimit+1))
	if err != nil {
		return Preview{}, fmt.Errorf("media: read upload: %w", err)
	}
	if int64(len(data)) > s.readLimit {
		return Preview{}, ErrTooLarge
	}

	sum := blake2b.Sum256(data)
	preview := Preview{
		Handle:      uuid.NewString(),
		Filename:    filepath.Base(filename),
		ContentType: mimetype.Detect(data).String(),
		Size:        int64(len(data)),
		Digest:      hex.EncodeToString(sum[:]),
		CreatedAt:   s.now(),
	}
	if preview.Filename == "." || preview.Filename == string(filepath.Separator) {
		preview.Filename = "image"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Preview{}, ErrClosed
	}
	if err := os.WriteFile(s.path(preview.Handle), data, 0o600); err != nil {
		return Preview{}, fmt.Errorf("media: write preview: %w", err)
	}
	s.previews[preview.Handle] = preview
	s.logger.Debug("preview attached", "handle", preview.Handle, "size", preview.Size, "content_type", preview.ContentType)
	return preview, nil
}

// Get returns metadata for handle.
func (s *Store) Get(handle string) (Preview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	preview, ok := s.previews[handle]
	if !ok {
		return Preview{}, ErrUnknownHandle
	}
	return preview, nil
}

// Read returns the bytes behind handle.
func (s *Store) Read(handle string) ([]byte, Preview, error) {
	s.mu.Lock()
	preview, ok := s.previews[handle]
	s.mu.Unlock()
	if !ok {
		return nil, Preview{}, ErrUnknownHandle
	}
	data, err := os.ReadFile(s.path(handle))
	if err != nil {
		return nil, Preview{}, fmt.Errorf("media: read preview: %w", err)
	}
	return data, preview, nil
}

// Release deletes the preview behind handle. Releasing an unknown or empty handle is a no-op
// so every exit path can call it unconditionally.
func (s *Store) Release(handle string) error {
	if handle == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.previews[handle]; !ok {
		return nil
	}
	delete(s.previews, handle)
	if err := os.Remove(s.path(handle)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("media: release preview: %w", err)
	}
	s.logger.Debug("preview released", "handle", handle)
	return nil
}

// Len reports how many previews are currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.previews)
}

// Close releases every remaining preview.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	for handle := range s.previews {
		if err := os.Remove(s.path(handle)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
		delete(s.previews, handle)
	}
	return errors.Join(errs...)
}

func (s *Store) path(handle string) string {
	return filepath.Join(s.dir, handle)
}
