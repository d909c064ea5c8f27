package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"empowerher/logger"
)

// FileBackend stores every key in one JSON document on disk. Each Save rewrites
// the document atomically (temp file + rename) so a failed write never leaves a
// half-written file behind.
type FileBackend struct {
	mu           sync.Mutex
	path         string
	enableBackup bool
	log          *logger.Logger
	data         map[string]json.RawMessage
}

// NewFileBackend opens path, loading it if it exists. A missing file starts
// empty; an unparseable file is a hard error so existing data is never overwritten.
func NewFileBackend(path string, enableBackup bool, log *logger.Logger) (*FileBackend, error) {
	fb := &FileBackend{
		path:         path,
		enableBackup: enableBackup,
		log:          log,
		data:         make(map[string]json.RawMessage),
	}

	fileData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info("data file not found, starting empty", "path", path)
			return fb, nil
		}
		return nil, fmt.Errorf("read data file '%s': %w", path, err)
	}
	if len(fileData) == 0 {
		return fb, nil
	}
	if err := json.Unmarshal(fileData, &fb.data); err != nil {
		return nil, fmt.Errorf("parse data file '%s': %w", path, err)
	}
	if fb.data == nil {
		fb.data = make(map[string]json.RawMessage)
	}
	log.Info("loaded data file", "path", path, "keys", len(fb.data))
	return fb, nil
}

func (fb *FileBackend) Load(_ context.Context, key string) ([]byte, error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	v, ok := fb.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (fb *FileBackend) Save(ctx context.Context, entries map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()

	next := make(map[string]json.RawMessage, len(fb.data)+len(entries))
	for k, v := range fb.data {
		next[k] = v
	}
	for k, v := range entries {
		if !json.Valid(v) {
			return fmt.Errorf("value for key '%s' is not valid JSON", k)
		}
		next[k] = append(json.RawMessage(nil), v...)
	}

	if err := fb.persist(next); err != nil {
		return err
	}
	fb.data = next
	return nil
}

// persist writes the whole document: temp file, optional .bak of the previous
// file, then rename over the destination.
func (fb *FileBackend) persist(data map[string]json.RawMessage) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal data file: %w", err)
	}

	tempFilePath := fb.path + ".tmp"
	backupFilePath := fb.path + ".bak"

	if err := os.WriteFile(tempFilePath, jsonData, 0644); err != nil {
		return fmt.Errorf("write temporary data file '%s': %w", tempFilePath, err)
	}

	if fb.enableBackup {
		if _, err := os.Stat(fb.path); err == nil {
			if err := os.Rename(fb.path, backupFilePath); err != nil {
				fb.log.Warn("failed to create backup, proceeding with save", "path", backupFilePath, "error", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			fb.log.Warn("failed to stat data file before backup", "path", fb.path, "error", err)
		}
	}

	if err := os.Rename(tempFilePath, fb.path); err != nil {
		_ = os.Remove(tempFilePath)
		return fmt.Errorf("rename '%s' to '%s': %w", tempFilePath, fb.path, err)
	}

	fb.log.Debug("saved data file", "path", fb.path, "bytes", len(jsonData))
	return nil
}

func (fb *FileBackend) Close() error { return nil }
