package configstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// defaultFilePermissions restricts records to the device user; they hold credentials.
const defaultFilePermissions = 0o600

// fileNames maps record keys to the file names used on the card.
var fileNames = map[string]string{
	KeyNetworkName:            "ssid.txt",
	KeyNetworkSecret:          "pass.txt",
	KeyOperatingMode:          "mode.txt",
	KeyNotificationCredential: "token.txt",
}

// ErrUnknownKey is returned for keys outside the record set.
var ErrUnknownKey = errors.New("unknown record key")

// FileStore keeps each record in its own file inside dir.
type FileStore struct {
	// dir is the mount point of the storage medium.
	dir string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir: filepath.Clean(dir),
	}
}

// Read returns the record text with trailing line breaks removed.
func (s *FileStore) Read(_ context.Context, key string) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}

		return "", fmt.Errorf("read record file: %w", err)
	}

	return strings.TrimRight(string(contents), "\r\n"), nil
}

// Write replaces the record through a temporary file and a rename,
// so an interrupted write leaves the previous value in place.
func (s *FileStore) Write(_ context.Context, key, value string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}

	tmpName := tmp.Name()

	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err = tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp record: %w", err)
	}

	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp record: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp record: %w", err)
	}

	if err = os.Chmod(tmpName, defaultFilePermissions); err != nil {
		return fmt.Errorf("chmod temp record: %w", err)
	}

	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace record file: %w", err)
	}

	return nil
}

// path resolves the file backing key.
func (s *FileStore) path(key string) (string, error) {
	name, ok := fileNames[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	return filepath.Join(s.dir, name), nil
}
