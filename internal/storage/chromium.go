package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nikbrunner/bmtag/internal/model"
)

// BackupSuffix is appended to a store path to name its backup copy.
const BackupSuffix = ".bak"

// ErrNoBookmarkBar is returned when a Chromium store lacks roots.bookmark_bar.
var ErrNoBookmarkBar = errors.New("bookmark file has no bookmark_bar root")

// ChromiumStore reads and writes a Chromium-family `Bookmarks` file.
type ChromiumStore struct {
	path string
}

// NewChromiumStore creates a ChromiumStore for the given file path.
func NewChromiumStore(path string) *ChromiumStore {
	return &ChromiumStore{path: path}
}

// Path returns the store file path.
func (s *ChromiumStore) Path() string {
	return s.path
}

// BackupPath returns where Backup writes its copy.
func (s *ChromiumStore) BackupPath() string {
	return s.path + BackupSuffix
}

// Load reads and decodes the whole bookmark file.
func (s *ChromiumStore) Load() (*model.BookmarkFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	var file model.BookmarkFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if file.Roots.BookmarkBar == nil {
		return nil, fmt.Errorf("%s: %w", s.path, ErrNoBookmarkBar)
	}
	return &file, nil
}

// Backup copies the store next to itself, keeping permissions and
// modification time.
func (s *ChromiumStore) Backup() error {
	src, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}

	dst, err := os.OpenFile(s.BackupPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}

	return os.Chtimes(s.BackupPath(), info.ModTime(), info.ModTime())
}

// Save writes the whole file with 2-space indentation. Non-ASCII text and
// HTML characters are written as-is.
func (s *ChromiumStore) Save(file *model.BookmarkFile) error {
	data, err := MarshalIndent(file)
	if err != nil {
		return err
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, mode)
}

// MarshalIndent encodes v with 2-space indentation and no HTML escaping,
// the layout browsers write their own bookmark files in.
func MarshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
