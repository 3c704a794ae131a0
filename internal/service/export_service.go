package service

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/deck-tracker-api/pkg/errors"
	"github.com/noah-isme/deck-tracker-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type urlSigner interface {
	Generate(id, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (storage.SignedObject, error)
}

// ExportConfig tunes where download links point and how long files live.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult describes a stored artifact and its download link.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	ExpiresAt    time.Time
}

// ExportService persists generated files (import error reports, label PDFs)
// and serves them back through signed links.
type ExportService struct {
	storage fileStorage
	signer  urlSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(storage fileStorage, signer urlSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 7 * 24 * time.Hour
	}
	cfg.APIPrefix = strings.TrimRight(cfg.APIPrefix, "/")
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &ExportService{storage: storage, signer: signer, logger: logger, cfg: cfg}
}

// Publish stores payload under filename and signs a download link for it.
func (s *ExportService) Publish(id, filename string, payload []byte) (*ExportResult, error) {
	relPath, err := s.storage.Save(sanitizeFilename(filename), payload)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", filename, err)
	}
	token, expiresAt, err := s.signer.Generate(id, relPath)
	if err != nil {
		return nil, fmt.Errorf("sign %s: %w", relPath, err)
	}
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/static/%s", s.cfg.APIPrefix, token),
		ExpiresAt:    expiresAt,
	}, nil
}

// Resolve validates a download token and opens the file it points to.
func (s *ExportService) Resolve(token string) (*os.File, storage.SignedObject, error) {
	obj, err := s.signer.Parse(token, false)
	switch {
	case errors.Is(err, storage.ErrTokenExpired):
		return nil, obj, appErrors.Clone(appErrors.ErrNotFound, "download link has expired")
	case err != nil:
		return nil, obj, appErrors.Clone(appErrors.ErrNotFound, "download link is invalid")
	}
	file, err := s.storage.Open(obj.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, obj, appErrors.Clone(appErrors.ErrNotFound, "file no longer available")
		}
		return nil, obj, appErrors.Dependency(err, "failed to open file")
	}
	return file, obj, nil
}

// Cleanup removes files older than ttl (the configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	removed, err := s.storage.CleanupOlderThan(ttl)
	if err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		s.logger.Info("expired files removed", zap.Int("count", len(removed)))
	}
	return removed, nil
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
