package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	appLog "dayplanner/internal/log"
	"dayplanner/internal/model"
)

// Store persists the planner document as a single JSON file.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the document. A missing file yields empty collections.
func (s *Store) Load() (*model.Document, error) {
	if s.path == "" {
		return nil, errors.New("store: data file path is empty")
	}

	doc := &model.Document{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			appLog.Info("data file not found; starting empty", "path", s.path)
			doc.Normalize()
			return doc, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", s.path, err)
	}

	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("store: decode %s: %w", s.path, err)
		}
	}
	doc.Normalize()

	appLog.Debug("data file loaded",
		"path", s.path,
		"tasks", len(doc.Tasks),
		"events", len(doc.Events),
		"notes", len(doc.Notes),
	)
	return doc, nil
}

// Save rewrites the whole document: all three collections, indented, with
// non-ASCII text left as UTF-8.
//
// The bytes go to a temp file in the target directory which is then
// renamed over the data file, so readers see either the old or the new
// document.
func (s *Store) Save(doc *model.Document) error {
	if s.path == "" {
		return errors.New("store: data file path is empty")
	}
	if doc == nil {
		return errors.New("store: document is nil")
	}
	doc.Normalize()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}

	if err := writeFileAtomic(s.path, buf.Bytes()); err != nil {
		return fmt.Errorf("store: write %s: %w", s.path, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".dayplanner-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
