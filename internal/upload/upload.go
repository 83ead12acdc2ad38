// Package upload stores item photos on local disk and serves them back.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/imaging"
)

// URLPrefix is the path under which stored files are served.
const URLPrefix = "/uploads/"

// Sink writes uploaded files into Dir under generated unique names.
type Sink struct {
	Dir string
	// MaxDimension, when positive, downscales JPEG and PNG uploads so that
	// neither side exceeds it. Other content is stored verbatim.
	MaxDimension int
}

// New creates the upload directory if needed and returns a Sink for it.
func New(dir string, maxDimension int) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &Sink{Dir: dir, MaxDimension: maxDimension}, nil
}

// Store writes r to a new file named after a random UUID and the lower-cased
// extension of originalName. It returns the URL path the file is served at.
func (s *Sink) Store(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))

	if s.MaxDimension > 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("reading upload: %w", err)
		}
		res, err := imaging.Process(data, s.MaxDimension)
		switch {
		case err == nil:
			data, ext = res.Data, res.Ext
		case errors.Is(err, imaging.ErrUnsupported):
			// Not an image we can resize; keep the bytes as sent.
		default:
			slog.Warn("downscaling upload failed, storing original", "name", originalName, "error", err)
		}
		r = bytes.NewReader(data)
	}

	name := uuid.NewString() + ext
	full := filepath.Join(s.Dir, name)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("writing upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("closing upload file: %w", err)
	}

	return URLPrefix + name, nil
}

// Remove deletes a file previously returned by Store. Paths outside the
// upload prefix are ignored.
func (s *Sink) Remove(urlPath string) error {
	name, ok := strings.CutPrefix(urlPath, URLPrefix)
	if !ok || name == "" || strings.ContainsAny(name, `/\`) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing upload: %w", err)
	}
	return nil
}

// Handler serves stored files verbatim. It must be mounted at URLPrefix.
// Directory listings are refused with 404.
func (s *Sink) Handler() http.Handler {
	fs := http.StripPrefix(strings.TrimSuffix(URLPrefix, "/"), http.FileServer(noListingFS{http.Dir(s.Dir)}))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") || path.Clean(r.URL.Path)+"/" == URLPrefix {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}

// noListingFS hides directories from http.FileServer.
type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
