package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidKey is returned for keys this store could not have generated
var ErrInvalidKey = errors.New("invalid document key")

var (
	keyPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}(\.[a-z0-9]{1,10})?$`)
	extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)
)

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".jpg":  "image/jpeg",
	".png":  "image/png",
}

// DefaultContentType is served for unknown extensions
const DefaultContentType = "application/octet-stream"

// LocalDocumentStore implements port.DocumentStore on the local filesystem.
// Documents live under baseDir/<first two key chars>/<key>.
type LocalDocumentStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalDocumentStore creates a new LocalDocumentStore
func NewLocalDocumentStore(baseDir string, logger *zap.Logger) *LocalDocumentStore {
	return &LocalDocumentStore{
		baseDir: baseDir,
		logger:  logger,
	}
}

// Store writes content under a freshly generated key that keeps the original extension
func (s *LocalDocumentStore) Store(ctx context.Context, content []byte, originalFilename string) (string, error) {
	key := uuid.NewString()
	if ext := strings.ToLower(filepath.Ext(originalFilename)); extPattern.MatchString(ext) {
		key += ext
	}

	fullPath := s.pathFor(key)
	if err := s.validatePath(fullPath); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		s.logger.Error("Failed to create document directory",
			zap.String("path", filepath.Dir(fullPath)),
			zap.Error(err))
		return "", fmt.Errorf("failed to create directories: %w", err)
	}

	// O_EXCL: a key is never reused
	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		s.logger.Error("Failed to create document file", zap.String("path", fullPath), zap.Error(err))
		return "", fmt.Errorf("failed to create document: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(fullPath)
		s.logger.Error("Failed to write document", zap.String("path", fullPath), zap.Error(err))
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("failed to close document: %w", err)
	}

	s.logger.Debug("Document stored",
		zap.String("key", key),
		zap.String("original_filename", originalFilename),
		zap.Int("size", len(content)))

	return key, nil
}

// Retrieve reads the document stored under key
func (s *LocalDocumentStore) Retrieve(ctx context.Context, key string) ([]byte, error) {
	if !keyPattern.MatchString(key) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	fullPath := s.pathFor(key)
	if err := s.validatePath(fullPath); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("document %s: %w", key, entity.ErrNotFound)
	}
	if err != nil {
		s.logger.Error("Failed to read document", zap.String("path", fullPath), zap.Error(err))
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	return content, nil
}

// Delete removes the document; a missing document is not an error
func (s *LocalDocumentStore) Delete(ctx context.Context, key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	fullPath := s.pathFor(key)
	if err := s.validatePath(fullPath); err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		s.logger.Error("Failed to delete document", zap.String("path", fullPath), zap.Error(err))
		return fmt.Errorf("failed to delete document: %w", err)
	}

	s.logger.Debug("Document deleted", zap.String("key", key))
	return nil
}

// List returns every stored document key with its modification time.
// Files whose names are not document keys are skipped.
func (s *LocalDocumentStore) List(ctx context.Context) ([]port.StoredDocument, error) {
	var docs []port.StoredDocument

	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == s.baseDir {
				return fs.SkipDir
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !keyPattern.MatchString(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		docs = append(docs, port.StoredDocument{Key: d.Name(), ModifiedAt: info.ModTime()})
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to list documents", zap.String("base_dir", s.baseDir), zap.Error(err))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return docs, nil
}

// ContentType maps a filename extension to its MIME type
func (s *LocalDocumentStore) ContentType(filename string) string {
	return ContentTypeFor(filename)
}

// ContentTypeFor maps a filename extension to its MIME type
func ContentTypeFor(filename string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return DefaultContentType
}

// Health checks that the base directory exists and is writable
func (s *LocalDocumentStore) Health() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return fmt.Errorf("document directory unavailable: %w", err)
	}
	tmp, err := os.CreateTemp(s.baseDir, ".health-*")
	if err != nil {
		return fmt.Errorf("document directory not writable: %w", err)
	}
	name := tmp.Name()
	_ = tmp.Close()
	return os.Remove(name)
}

func (s *LocalDocumentStore) pathFor(key string) string {
	return filepath.Join(s.baseDir, key[:2], key)
}

// validatePath checks that the path is safe and within baseDir
func (s *LocalDocumentStore) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}

	return nil
}

// Verify interface compliance
var (
	_ port.DocumentStore     = (*LocalDocumentStore)(nil)
	_ port.DocumentInventory = (*LocalDocumentStore)(nil)
)
