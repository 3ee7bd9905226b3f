package telepub

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Filesystem layout constants.
const (
	filesystemFileExt         = ".yaml"
	filesystemDirPermissions  = 0o755
	filesystemFilePermissions = 0o644
)

// FilesystemStore keeps templates as YAML files on the filesystem, one
// file per template named <name>.yaml under the root directory. It is
// meant for template libraries kept under version control.
type FilesystemStore struct {
	mu     sync.RWMutex
	root   string
	closed bool
}

// FilesystemStoreDriver is the driver for creating FilesystemStore instances.
type FilesystemStoreDriver struct{}

func init() {
	RegisterStoreDriver(StoreDriverNameFilesystem, &FilesystemStoreDriver{})
}

// Open creates a new FilesystemStore instance.
// The connection string is the root directory path.
func (d *FilesystemStoreDriver) Open(connectionString string) (TemplateStore, error) {
	return NewFilesystemStore(connectionString)
}

// NewFilesystemStore creates a filesystem-backed template store.
// The root directory is created if it doesn't exist.
func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if root == "" {
		return nil, NewStoreConfigError(ErrMsgEmptyStoreRoot)
	}
	if err := os.MkdirAll(root, filesystemDirPermissions); err != nil {
		return nil, NewStoreIOError(ErrMsgCreateStoreDir, err)
	}
	return &FilesystemStore{root: root}, nil
}

// Get retrieves a template by name.
func (s *FilesystemStore) Get(ctx context.Context, name string) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateTemplateName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}
	return s.readTemplate(name)
}

// Save stores a template, replacing any existing file of the same name.
func (s *FilesystemStore) Save(ctx context.Context, tmpl *StoredTemplate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateTemplateName(tmpl.Name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	now := time.Now().UTC()
	tmpl.UpdatedAt = now
	if existing, err := s.readTemplate(tmpl.Name); err == nil {
		tmpl.CreatedAt = existing.CreatedAt
	} else {
		tmpl.CreatedAt = now
	}

	data, err := yaml.Marshal(tmpl)
	if err != nil {
		return NewStoreIOError(ErrMsgStoreIO, err)
	}
	if err := os.WriteFile(s.path(tmpl.Name), data, filesystemFilePermissions); err != nil {
		return NewStoreIOError(ErrMsgStoreIO, err)
	}
	return nil
}

// Delete removes a template by name.
func (s *FilesystemStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateTemplateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	err := os.Remove(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return NewTemplateNotFoundError(name)
	}
	if err != nil {
		return NewStoreIOError(ErrMsgStoreIO, err)
	}
	return nil
}

// List returns templates matching the query, ordered by name.
func (s *FilesystemStore) List(ctx context.Context, query *TemplateQuery) ([]*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, NewStoreIOError(ErrMsgStoreIO, err)
	}

	var results []*StoredTemplate
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), filesystemFileExt) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filesystemFileExt)
		tmpl, err := s.readTemplate(name)
		if err != nil {
			continue
		}
		if matchesQuery(tmpl, query) {
			results = append(results, tmpl)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Name < results[j].Name
	})
	return applyWindow(results, query), nil
}

// Exists checks if a template with the given name exists.
func (s *FilesystemStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := validateTemplateName(name); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, NewStoreClosedError()
	}

	_, err := os.Stat(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, NewStoreIOError(ErrMsgStoreIO, err)
	}
	return true, nil
}

// Close marks the store closed. Further operations fail.
func (s *FilesystemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// path returns the file path for a template name.
func (s *FilesystemStore) path(name string) string {
	return filepath.Join(s.root, name+filesystemFileExt)
}

// readTemplate loads and decodes one template file.
func (s *FilesystemStore) readTemplate(name string) (*StoredTemplate, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, NewTemplateNotFoundError(name)
	}
	if err != nil {
		return nil, NewStoreIOError(ErrMsgStoreIO, err)
	}

	var tmpl StoredTemplate
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, NewStoreIOError(ErrMsgStoreIO, err)
	}
	if tmpl.Name == "" {
		tmpl.Name = name
	}
	return &tmpl, nil
}
