// Package kv stores a small set of named records as one JSON document on
// disk. Writes replace the whole document through a temp file and a rename,
// so readers never observe a half-written set of records.
package kv

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// File is a handle on the on-disk document. The zero value is not usable;
// use Open.
type File struct {
	path string
}

// Open returns a handle on the document at path. The file does not need to
// exist yet; it is created on the first write.
func Open(path string) *File {
	return &File{path: path}
}

// Path returns the location of the backing file.
func (f *File) Path() string { return f.path }

// load reads and decodes the whole document. A missing file decodes to an
// empty document.
func (f *File) load() (map[string]json.RawMessage, error) {
	content, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("could not read %q: %w", f.path, err)
	}
	records := map[string]json.RawMessage{}
	if err := json.Unmarshal(content, &records); err != nil {
		return nil, fmt.Errorf("could not decode %q: %w", f.path, err)
	}
	return records, nil
}

// Get returns the raw record stored under key. The boolean is false when
// the key (or the whole file) does not exist.
func (f *File) Get(key string) ([]byte, bool, error) {
	records, err := f.load()
	if err != nil {
		return nil, false, err
	}
	raw, ok := records[key]
	if !ok {
		return nil, false, nil
	}
	return raw, true, nil
}

// SetAll replaces the records under the given keys in a single write.
// Keys absent from the batch keep their previous value. Either every record
// of the batch lands on disk or none does.
func (f *File) SetAll(batch map[string][]byte) error {
	records, err := f.load()
	if err != nil {
		// A corrupted document is replaced wholesale rather than blocking
		// every future write.
		records = map[string]json.RawMessage{}
	}
	for key, value := range batch {
		records[key] = json.RawMessage(value)
	}

	content, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode %q: %w", f.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("could not create directory for %q: %w", f.path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("could not create temp file for %q: %w", f.path, err)
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("could not write %q: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("could not close %q: %w", f.path, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("could not replace %q: %w", f.path, err)
	}
	return nil
}

// Exists reports whether the backing file is present on disk.
func (f *File) Exists() (bool, error) {
	_, err := os.Stat(f.path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
