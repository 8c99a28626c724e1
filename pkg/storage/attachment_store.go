package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/noah-isme/noticeboard-api/pkg/errors"
)

const (
	dirLayout  = "2006010215"
	fileLayout = "20060102150405"
)

var allowedExtensions = map[string]struct{}{
	// images
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "bmp": {}, "webp": {},
	// documents
	"pdf": {}, "doc": {}, "docx": {}, "xls": {}, "xlsx": {}, "ppt": {}, "pptx": {}, "txt": {},
	// archives
	"zip": {}, "rar": {}, "tar": {}, "gz": {}, "7z": {},
}

// Upload is a single file handed over by the transport layer.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// AttachmentStore writes notice attachments under a base directory bucketed
// by date and hour.
type AttachmentStore struct {
	baseDir     string
	maxFileSize int64
	now         func() time.Time
}

// Option customises an AttachmentStore.
type Option func(*AttachmentStore)

// WithMaxFileSize rejects uploads larger than limit bytes. Zero disables the check.
func WithMaxFileSize(limit int64) Option {
	return func(s *AttachmentStore) { s.maxFileSize = limit }
}

// WithClock overrides the time source used for directory and file names.
func WithClock(now func() time.Time) Option {
	return func(s *AttachmentStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewAttachmentStore ensures the base directory exists and returns a handle.
func NewAttachmentStore(baseDir string, opts ...Option) (*AttachmentStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	s := &AttachmentStore{baseDir: baseDir, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IsAllowedExtension reports whether filename ends in an accepted extension.
func IsAllowedExtension(filename string) bool {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(ext)]
	return ok
}

// Store validates the upload and writes it to <base>/<yyyyMMddHH>/<yyyyMMddHHmmss>_<name>.
// The returned path is relative to the base directory and slash separated.
func (s *AttachmentStore) Store(upload Upload) (string, error) {
	name := cleanName(upload.Filename)
	if upload.Size <= 0 || upload.Content == nil {
		return "", appErrors.Clone(appErrors.ErrAttachmentEmpty, fmt.Sprintf("file %q must not be empty", name))
	}
	if !IsAllowedExtension(name) {
		return "", appErrors.Clone(appErrors.ErrAttachmentInvalidExtension, fmt.Sprintf("invalid file type: %q", name))
	}
	if s.maxFileSize > 0 && upload.Size > s.maxFileSize {
		return "", appErrors.Clone(appErrors.ErrAttachmentTooLarge, fmt.Sprintf("file %q exceeds %d bytes", name, s.maxFileSize))
	}

	now := s.now()
	dir := now.Format(dirLayout)
	if err := os.MkdirAll(filepath.Join(s.baseDir, dir), 0o755); err != nil {
		return "", appErrors.CloneWrap(appErrors.ErrAttachmentDirectory, err, "")
	}

	fileName := now.Format(fileLayout) + "_" + name
	file, err := s.create(dir, fileName)
	if errors.Is(err, os.ErrExist) {
		fileName = now.Format(fileLayout) + "_" + uuid.NewString()[:8] + "_" + name
		file, err = s.create(dir, fileName)
	}
	if err != nil {
		return "", appErrors.CloneWrap(appErrors.ErrAttachmentWrite, err, "")
	}

	if _, err := io.Copy(file, upload.Content); err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())
		return "", appErrors.CloneWrap(appErrors.ErrAttachmentWrite, err, "")
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(file.Name())
		return "", appErrors.CloneWrap(appErrors.ErrAttachmentWrite, err, "")
	}
	return path.Join(dir, fileName), nil
}

// Path resolves a stored relative path to its location on disk.
func (s *AttachmentStore) Path(relPath string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(relPath))
}

func (s *AttachmentStore) create(dir, fileName string) (*os.File, error) {
	return os.OpenFile(filepath.Join(s.baseDir, dir, fileName), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}

// cleanName drops any directory components a client may have sent.
func cleanName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
