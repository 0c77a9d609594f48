package media

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalBackend writes objects into a directory that the HTTP server exposes
// under baseURL.
type LocalBackend struct {
	dir     string
	baseURL string
}

func NewLocalBackend(dir, baseURL string) (*LocalBackend, error) {
	if dir == "" {
		return nil, errors.New("media directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return &LocalBackend{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (b *LocalBackend) Name() string { return "local" }

// Dir is the directory objects are written to.
func (b *LocalBackend) Dir() string { return b.dir }

// BaseURL is the URL prefix objects are served under.
func (b *LocalBackend) BaseURL() string { return b.baseURL }

func (b *LocalBackend) Put(_ context.Context, name, _ string, data []byte) (string, error) {
	if !validObjectName(name) {
		return "", fs.ErrInvalid
	}
	if err := os.WriteFile(filepath.Join(b.dir, name), data, 0o600); err != nil {
		return "", err
	}
	return b.baseURL + "/" + name, nil
}

func (b *LocalBackend) Remove(_ context.Context, name string) error {
	if !validObjectName(name) {
		return fs.ErrInvalid
	}
	err := os.Remove(filepath.Join(b.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (b *LocalBackend) ObjectName(url string) (string, bool) {
	name, ok := strings.CutPrefix(url, b.baseURL+"/")
	if !ok || !validObjectName(name) {
		return "", false
	}
	return name, true
}
