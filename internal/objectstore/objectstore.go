// Package objectstore issues upload destinations for attachments and serves
// stored objects back by their object path.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotConfigured = errors.New("object storage not configured")
	ErrNotFound      = errors.New("object not found")
	ErrInvalidPath   = errors.New("invalid object path")
	ErrTooLarge      = errors.New("object too large")
	ErrExists        = errors.New("object already exists")
)

// PathPrefix starts every object path handed to clients.
const PathPrefix = "/objects/"

const (
	uploadsDir  = "uploads"
	typeSidecar = ".type"
)

// UploadTarget tells the client where and how to send the bytes. ObjectPath
// is what the client later stores as the attachment URL.
type UploadTarget struct {
	UploadURL  string            `json:"uploadURL"`
	Method     string            `json:"method"`
	ObjectPath string            `json:"objectPath"`
	Headers    map[string]string `json:"headers"`
}

type Store interface {
	RequestUpload(ctx context.Context, name, contentType string) (*UploadTarget, error)
	Put(ctx context.Context, objectPath, contentType string, body io.Reader) error
	Open(ctx context.Context, objectPath string) (io.ReadCloser, string, error)
}

// Disabled is used when no storage is configured.
type Disabled struct{}

func (Disabled) RequestUpload(context.Context, string, string) (*UploadTarget, error) {
	return nil, ErrNotConfigured
}

func (Disabled) Put(context.Context, string, string, io.Reader) error {
	return ErrNotConfigured
}

func (Disabled) Open(context.Context, string) (io.ReadCloser, string, error) {
	return nil, "", ErrNotConfigured
}

// LocalStore keeps objects on disk under root/uploads. The content type of
// each object is kept in a sidecar file next to it.
type LocalStore struct {
	root     string
	maxBytes int64
}

func NewLocalStore(root string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(root, uploadsDir), 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{root: root, maxBytes: maxBytes}, nil
}

func (s *LocalStore) RequestUpload(ctx context.Context, name, contentType string) (*UploadTarget, error) {
	ext := strings.ToLower(path.Ext(name))
	if ext != "" && (!validExt(ext) || ext == typeSidecar) {
		ext = ""
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	objectPath := PathPrefix + uploadsDir + "/" + uuid.NewString() + ext
	return &UploadTarget{
		UploadURL:  objectPath,
		Method:     "PUT",
		ObjectPath: objectPath,
		Headers:    map[string]string{"Content-Type": contentType},
	}, nil
}

// Put stores a new object. Objects are written once: a second Put on the
// same path fails with ErrExists and leaves the stored bytes untouched.
func (s *LocalStore) Put(ctx context.Context, objectPath, contentType string, body io.Reader) error {
	file, err := s.resolve(objectPath)
	if err != nil {
		return err
	}
	if _, err := os.Lstat(file); err == nil {
		return ErrExists
	}
	tmp, err := os.CreateTemp(filepath.Dir(file), ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(body, s.maxBytes+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	if n > s.maxBytes {
		return ErrTooLarge
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	// Link refuses to replace an existing file.
	if err := os.Link(tmp.Name(), file); err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrExists
		}
		return err
	}
	if err := writeExclusive(file+typeSidecar, contentType); err != nil {
		os.Remove(file)
		return err
	}
	return nil
}

func writeExclusive(name, content string) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	_, err = f.WriteString(content)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}

func (s *LocalStore) Open(ctx context.Context, objectPath string) (io.ReadCloser, string, error) {
	file, err := s.resolve(objectPath)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(file)
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	contentType := "application/octet-stream"
	if raw, err := os.ReadFile(file + typeSidecar); err == nil && len(raw) > 0 {
		contentType = string(raw)
	} else if byExt := mime.TypeByExtension(filepath.Ext(file)); byExt != "" {
		contentType = byExt
	}
	return f, contentType, nil
}

// resolve maps "/objects/uploads/<name>" to a file under root. Anything
// else, including nested paths and sidecar names, is rejected.
func (s *LocalStore) resolve(objectPath string) (string, error) {
	rel := strings.TrimPrefix(objectPath, PathPrefix)
	dir, name := path.Split(rel)
	if dir != uploadsDir+"/" || name == "" || name != path.Base(name) ||
		strings.HasPrefix(name, ".") || strings.HasSuffix(name, typeSidecar) {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, uploadsDir, name), nil
}

func validExt(ext string) bool {
	if len(ext) > 10 {
		return false
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
