package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const fileExt = ".json"

// FileStore persists artifacts as <dir>/<job>_<artifactID>.json. Artifact
// ids must not contain underscores so that a job's files can be told apart
// from those of jobs sharing its prefix.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir. The directory is created
// on first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the root directory.
func (f *FileStore) Dir() string { return f.dir }

func (f *FileStore) path(jobName, artifactID string) (string, error) {
	if jobName == "" || artifactID == "" ||
		strings.ContainsAny(jobName, `/\`) || strings.ContainsAny(artifactID, `/\_`) {
		return "", fmt.Errorf("%w: %q/%q", ErrInvalidName, jobName, artifactID)
	}
	return filepath.Join(f.dir, jobName+"_"+artifactID+fileExt), nil
}

// Save writes the artifact atomically.
func (f *FileStore) Save(jobName, artifactID string, data []byte) error {
	p, err := f.path(jobName, artifactID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save artifact: %w", err)
	}
	return nil
}

// Get reads an artifact or returns ErrNotFound.
func (f *FileStore) Get(jobName, artifactID string) ([]byte, error) {
	p, err := f.path(jobName, artifactID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// List returns the sorted artifact ids of a job. A missing directory yields
// an empty list.
func (f *FileStore) List(jobName string) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	prefix := jobName + "_"
	ids := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, fileExt) {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, prefix), fileExt)
		if id == "" || strings.Contains(id, "_") {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes an artifact or returns ErrNotFound.
func (f *FileStore) Delete(jobName, artifactID string) error {
	p, err := f.path(jobName, artifactID)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}
