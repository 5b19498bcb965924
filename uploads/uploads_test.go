package uploads

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func TestSavePNG(t *testing.T) {
	s := NewStore(t.TempDir(), 0)

	// The extension comes from the content, not the client's filename.
	saved, err := s.Save(fileHeader(t, "photo.gif", pngBytes))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(saved.URL, URLPrefix))
	assert.True(t, strings.HasSuffix(saved.URL, ".png"))
	assert.Equal(t, filepath.Join(s.Dir(), strings.TrimPrefix(saved.URL, URLPrefix)), saved.Path)

	got, err := os.ReadFile(saved.Path)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, got)

	require.NoError(t, s.Remove(saved))
	_, err = os.Stat(saved.Path)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, s.Remove(saved))
}

func TestSaveRejectsUnsupportedContent(t *testing.T) {
	s := NewStore(t.TempDir(), 0)
	_, err := s.Save(fileHeader(t, "pothole.jpg", []byte("just some text, not an image")))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveRejectsOversizedUpload(t *testing.T) {
	s := NewStore(t.TempDir(), 16)
	_, err := s.Save(fileHeader(t, "big.png", pngBytes))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestNewStoreDefaults(t *testing.T) {
	s := NewStore("", -1)
	assert.Equal(t, DefaultDir, s.Dir())
	assert.Equal(t, int64(DefaultMaxBytes), s.MaxBytes())
}
