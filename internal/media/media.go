// Package media hosts user uploaded images. Uploads arrive as data URIs,
// are normalized to bounded WebP and stored on a Backend that hands back a
// durable public URL.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"reelroom/internal/config"
	"reelroom/internal/models"
	"reelroom/internal/observability"

	"github.com/google/uuid"
)

const DefaultMaxUploadSizeMB = 10

var (
	errUnsupportedFormat = errors.New("unsupported image format")
	errNotDataURI        = errors.New("not a base64 data URI")
)

// Backend persists encoded objects under flat names.
type Backend interface {
	Name() string
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
	Remove(ctx context.Context, name string) error
	// ObjectName maps a URL returned by Put back to its object name. It
	// reports false for URLs the backend does not own.
	ObjectName(url string) (string, bool)
}

// Store validates and normalizes images before handing them to a Backend.
type Store struct {
	backend            Backend
	maxUploadSizeBytes int64
}

func NewStore(backend Backend, maxUploadSizeMB int) *Store {
	if maxUploadSizeMB <= 0 {
		maxUploadSizeMB = DefaultMaxUploadSizeMB
	}
	return &Store{backend: backend, maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024}
}

// New builds the Store described by cfg: a GCS bucket when MEDIA_GCS_BUCKET
// is set, the local directory otherwise. The returned func releases the
// backend.
func New(ctx context.Context, cfg *config.Config) (*Store, func() error, error) {
	if cfg.MediaGCSBucket != "" {
		gcs, err := NewGCSBackend(ctx, cfg.MediaGCSBucket, cfg.MediaGCSCredentials)
		if err != nil {
			return nil, nil, fmt.Errorf("gcs media backend: %w", err)
		}
		return NewStore(gcs, cfg.ImageMaxUploadSizeMB), gcs.Close, nil
	}
	local, err := NewLocalBackend(cfg.MediaLocalDir, cfg.MediaPublicBaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("local media backend: %w", err)
	}
	return NewStore(local, cfg.ImageMaxUploadSizeMB), func() error { return nil }, nil
}

// Backend returns the storage backend behind s.
func (s *Store) Backend() Backend {
	return s.backend
}

// Upload stores an image given as a data URI and returns its URL. Values that
// are already http(s) URLs are returned unchanged.
func (s *Store) Upload(ctx context.Context, data string) (url string, err error) {
	data = strings.TrimSpace(data)
	if isRemoteURL(data) {
		return data, nil
	}
	defer func() {
		observability.MediaOperations.WithLabelValues(s.backend.Name(), "upload", observability.Outcome(err)).Inc()
	}()

	raw, err := decodeDataURI(data)
	if err != nil {
		return "", models.NewValidationError("Invalid image data")
	}
	if int64(len(raw)) > s.maxUploadSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	encoded, bounds, err := normalize(raw)
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	name := uuid.NewString() + ".webp"
	url, err = s.backend.Put(ctx, name, "image/webp", encoded)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	observability.GlobalLogger.DebugContext(ctx, "media uploaded",
		slog.String("backend", s.backend.Name()),
		slog.String("object", name),
		slog.Int("width", bounds.Dx()),
		slog.Int("height", bounds.Dy()),
	)
	return url, nil
}

// Delete removes the object behind url. URLs not owned by the backend are
// ignored.
func (s *Store) Delete(ctx context.Context, url string) (err error) {
	name, ok := s.backend.ObjectName(url)
	if !ok {
		return nil
	}
	defer func() {
		observability.MediaOperations.WithLabelValues(s.backend.Name(), "delete", observability.Outcome(err)).Inc()
	}()
	return s.backend.Remove(ctx, name)
}

func isRemoteURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

// decodeDataURI returns the payload of a data:<mime>;base64,<payload> URI.
func decodeDataURI(s string) ([]byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, errNotDataURI
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, errNotDataURI
	}
	if mime := strings.TrimSuffix(header, ";base64"); mime != "" && !strings.HasPrefix(mime, "image/") {
		return nil, errUnsupportedFormat
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return base64.RawStdEncoding.DecodeString(payload)
	}
	return raw, nil
}

// validObjectName rejects names that could escape a flat namespace.
func validObjectName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && name != "." && name != ".."
}
