package storage_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nikbrunner/bmtag/internal/model"
	"github.com/nikbrunner/bmtag/internal/storage"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

const sampleBookmarks = `{
  "checksum": "d41d8cd98f00b204e9800998ecf8427e",
  "roots": {
    "bookmark_bar": {
      "children": [
        {
          "date_added": "13350000000000000",
          "guid": "0b2c1f2e-0000-4000-8000-000000000001",
          "id": "5",
          "meta_info": {"power_bookmark_meta": ""},
          "name": "Go & <Tools>",
          "type": "url",
          "url": "https://go.dev/?a=1&b=2"
        },
        {
          "children": [],
          "date_added": "13350000000000000",
          "date_modified": "13350000000000000",
          "id": "6",
          "name": "读书",
          "type": "folder"
        }
      ],
      "date_added": "13350000000000000",
      "date_modified": "13350000000000000",
      "id": "1",
      "name": "Bookmarks bar",
      "type": "folder"
    },
    "other": {
      "children": [],
      "date_added": "13350000000000000",
      "date_modified": "0",
      "id": "2",
      "name": "Other bookmarks",
      "type": "folder"
    },
    "synced": {
      "children": [],
      "date_added": "13350000000000000",
      "date_modified": "0",
      "id": "3",
      "name": "Mobile bookmarks",
      "type": "folder"
    }
  },
  "sync_metadata": "CgQIARAA",
  "version": 1
}`

func writeStore(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Default", "Bookmarks")
	assert.NilError(t, os.MkdirAll(filepath.Dir(path), 0755))
	assert.NilError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestChromiumStore_Load(t *testing.T) {
	s := storage.NewChromiumStore(writeStore(t, sampleBookmarks))

	file, err := s.Load()
	assert.NilError(t, err)

	bar := file.Roots.BookmarkBar
	assert.Equal(t, bar.ID, "1")
	assert.Assert(t, is.Len(bar.Children, 2))
	assert.Equal(t, bar.Children[0].Kind, model.KindURL)
	assert.Equal(t, bar.Children[0].URL, "https://go.dev/?a=1&b=2")
	assert.Equal(t, bar.Children[1].Name, "读书")
	assert.Equal(t, file.Checksum, "d41d8cd98f00b204e9800998ecf8427e")
	assert.Equal(t, file.Version, 1)
	assert.Assert(t, file.Extra["sync_metadata"] != nil)
}

func TestChromiumStore_SaveRoundTripKeepsUnknownFields(t *testing.T) {
	path := writeStore(t, sampleBookmarks)
	s := storage.NewChromiumStore(path)

	file, err := s.Load()
	assert.NilError(t, err)
	assert.NilError(t, s.Save(file))

	data, err := os.ReadFile(path)
	assert.NilError(t, err)
	out := string(data)

	// Non-ASCII and HTML characters are written verbatim
	assert.Assert(t, is.Contains(out, `"name": "读书"`))
	assert.Assert(t, is.Contains(out, `"name": "Go & <Tools>"`))
	assert.Assert(t, is.Contains(out, `"url": "https://go.dev/?a=1&b=2"`))

	// Keys the codec doesn't model survive
	assert.Assert(t, is.Contains(out, `"power_bookmark_meta": ""`))
	assert.Assert(t, is.Contains(out, `"sync_metadata": "CgQIARAA"`))
	assert.Assert(t, is.Contains(out, `"guid": "0b2c1f2e-0000-4000-8000-000000000001"`))

	// 2-space indentation
	assert.Assert(t, strings.HasPrefix(out, "{\n  \""))

	reloaded, err := s.Load()
	assert.NilError(t, err)
	bar := reloaded.Roots.BookmarkBar
	assert.Assert(t, is.Len(bar.Children, 2))
	assert.Equal(t, bar.Children[0].Name, "Go & <Tools>")
	assert.Equal(t, bar.Children[0].DateAdded, model.ChromeTime(13350000000000000))
	assert.Equal(t, bar.Children[1].Kind, model.KindFolder)
	assert.Equal(t, reloaded.Checksum, file.Checksum)
}

func TestChromiumStore_SaveKeepsPermissions(t *testing.T) {
	path := writeStore(t, sampleBookmarks)
	s := storage.NewChromiumStore(path)

	file, err := s.Load()
	assert.NilError(t, err)
	assert.NilError(t, s.Save(file))

	info, err := os.Stat(path)
	assert.NilError(t, err)
	assert.Equal(t, info.Mode().Perm(), os.FileMode(0600))
}

func TestChromiumStore_Backup(t *testing.T) {
	path := writeStore(t, sampleBookmarks)
	s := storage.NewChromiumStore(path)

	assert.NilError(t, s.Backup())
	assert.Equal(t, s.BackupPath(), path+".bak")

	data, err := os.ReadFile(s.BackupPath())
	assert.NilError(t, err)
	assert.Equal(t, string(data), sampleBookmarks)
}

func TestChromiumStore_LoadMissingFile(t *testing.T) {
	s := storage.NewChromiumStore(filepath.Join(t.TempDir(), "nope"))

	_, err := s.Load()
	assert.Assert(t, os.IsNotExist(err))
}

func TestChromiumStore_LoadWithoutBookmarkBar(t *testing.T) {
	s := storage.NewChromiumStore(writeStore(t, `{"roots": {"other": {"type": "folder", "id": "2", "children": []}}, "version": 1}`))

	_, err := s.Load()
	assert.ErrorIs(t, err, storage.ErrNoBookmarkBar)
}

func TestChromiumStore_LoadMalformed(t *testing.T) {
	s := storage.NewChromiumStore(writeStore(t, `{"roots": [`))

	_, err := s.Load()
	assert.ErrorContains(t, err, "decode")
}
