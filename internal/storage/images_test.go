package storage

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartFiles(t *testing.T, names ...string) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range names {
		fw, err := w.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("image-bytes-" + name))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["images"]
}

func TestDiskStoreUpload(t *testing.T) {
	dir := t.TempDir()
	ds, err := NewDiskStore(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	urls, err := ds.Upload(context.Background(), multipartFiles(t, "brownie.JPG", "caixa.png"))
	require.NoError(t, err)
	require.Len(t, urls, 2)

	assert.True(t, strings.HasPrefix(urls[0], "http://localhost:8080/uploads/"))
	assert.True(t, strings.HasSuffix(urls[0], ".jpg"))
	assert.True(t, strings.HasSuffix(urls[1], ".png"))

	// stored names are opaque, not the client filenames
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), "brownie")
	}
}

func TestDiskStoreUploadNamesWithoutExtension(t *testing.T) {
	ds, err := NewDiskStore(t.TempDir(), "http://cdn.test")
	require.NoError(t, err)

	urls, err := ds.Upload(context.Background(), multipartFiles(t, "raw"))
	require.NoError(t, err)
	require.Len(t, urls, 1)
	assert.True(t, strings.HasSuffix(urls[0], ".bin"))
}

func TestDiskStoreUploadLimits(t *testing.T) {
	ds, err := NewDiskStore(t.TempDir(), "http://cdn.test")
	require.NoError(t, err)

	_, err = ds.Upload(context.Background(), nil)
	assert.Error(t, err)

	_, err = ds.Upload(context.Background(), multipartFiles(t, "a.jpg", "b.jpg", "c.jpg", "d.jpg"))
	assert.Error(t, err)
}

func TestDiskStoreContentRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ds, err := NewDiskStore(dir, "http://cdn.test")
	require.NoError(t, err)

	urls, err := ds.Upload(context.Background(), multipartFiles(t, "brownie.jpg"))
	require.NoError(t, err)
	require.Len(t, urls, 1)

	name := urls[0][strings.LastIndex(urls[0], "/")+1:]
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "image-bytes-brownie.jpg", string(data))
}
