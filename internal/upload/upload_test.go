package upload

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newSink(t *testing.T, maxDim int) *Sink {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "uploads"), maxDim)
	require.NoError(t, err)
	return s
}

func TestStoreUniqueNames(t *testing.T) {
	s := newSink(t, 0)

	seen := map[string]bool{}
	for range 20 {
		p, err := s.Store(strings.NewReader("data"), "Photo.JPG")
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(p, URLPrefix))
		require.True(t, strings.HasSuffix(p, ".jpg"), "extension should be lower-cased: %s", p)
		require.False(t, seen[p], "duplicate name %s", p)
		seen[p] = true
	}

	entries, err := os.ReadDir(s.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 20)
}

func TestStoreVerbatim(t *testing.T) {
	s := newSink(t, 0)

	p, err := s.Store(strings.NewReader("hello world"), "notes.txt")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(s.Dir, strings.TrimPrefix(p, URLPrefix)))
	require.NoError(t, err)
	require.Equal(t, "hello world", string(data))
}

func TestStoreNoExtension(t *testing.T) {
	s := newSink(t, 0)

	p, err := s.Store(strings.NewReader("x"), "blob")
	require.NoError(t, err)
	require.NotContains(t, strings.TrimPrefix(p, URLPrefix), ".")
}

func TestStoreDownscalesImages(t *testing.T) {
	s := newSink(t, 50)

	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for x := range 200 {
		for y := range 100 {
			img.Set(x, y, color.RGBA{0, 255, 0, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	p, err := s.Store(&buf, "big.png")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(p, ".jpg"))

	f, err := os.Open(filepath.Join(s.Dir, strings.TrimPrefix(p, URLPrefix)))
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	require.Equal(t, 50, cfg.Width)
	require.Equal(t, 25, cfg.Height)
}

func TestStoreDownscaleKeepsNonImages(t *testing.T) {
	s := newSink(t, 50)

	p, err := s.Store(strings.NewReader("plain text"), "readme.TXT")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(p, ".txt"))
}

func TestRemove(t *testing.T) {
	s := newSink(t, 0)

	p, err := s.Store(strings.NewReader("x"), "a.png")
	require.NoError(t, err)
	require.NoError(t, s.Remove(p))

	_, err = os.Stat(filepath.Join(s.Dir, strings.TrimPrefix(p, URLPrefix)))
	require.ErrorIs(t, err, os.ErrNotExist)

	// Removing again, or a foreign path, is a no-op.
	require.NoError(t, s.Remove(p))
	require.NoError(t, s.Remove("/etc/passwd"))
	require.NoError(t, s.Remove(URLPrefix+"../secret"))
}

func TestHandler(t *testing.T) {
	s := newSink(t, 0)

	p, err := s.Store(strings.NewReader("image bytes"), "cat.png")
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(s.Dir, "sub"), 0o755))

	mux := http.NewServeMux()
	mux.Handle("GET "+URLPrefix, s.Handler())
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tests := []struct {
		path string
		want int
	}{
		{p, http.StatusOK},
		{URLPrefix, http.StatusNotFound},
		{URLPrefix + "sub", http.StatusNotFound},
		{URLPrefix + "sub/", http.StatusNotFound},
		{URLPrefix + "missing.png", http.StatusNotFound},
	}
	for _, tt := range tests {
		resp, err := http.Get(srv.URL + tt.path)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.Equal(t, tt.want, resp.StatusCode, "GET %s", tt.path)
		if tt.want == http.StatusOK {
			require.Equal(t, "image bytes", string(body))
		}
	}
}
