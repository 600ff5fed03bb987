// Package docstore persists whole JSON documents on disk. Every mutation in
// the stores above it is a full read-modify-rewrite of one document, so the
// only job here is to make each rewrite atomic: marshal, write a temp file
// in the same directory, then rename over the target.
package docstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lezionipari/coursecore/internal/apperr"
)

const indent = "    "

// Document is the injected repository a store reads and rewrites.
type Document interface {
	Exists() (bool, error)
	Load(v interface{}) error
	Save(v interface{}) error
	Snapshot(dir string) (string, error)
}

// File is a Document backed by a single pretty-printed JSON file.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Exists() (bool, error) {
	_, err := os.Stat(f.path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, apperr.Wrap(apperr.KindIO, err, "stat %s", f.path)
}

func (f *File) Load(v interface{}) error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return apperr.Wrap(apperr.KindIO, err, "read %s", f.path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperr.Wrap(apperr.KindIO, err, "parse %s", f.path)
	}
	return nil
}

func (f *File) Save(v interface{}) error {
	data, err := json.MarshalIndent(v, "", indent)
	if err != nil {
		return apperr.Wrap(apperr.KindIO, err, "encode %s", f.path)
	}
	return WriteAtomic(f.path, append(data, '\n'))
}

// Snapshot copies the current document into dir under a timestamped name and
// returns the copy's path. The document must exist.
func (f *File) Snapshot(dir string) (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", apperr.Wrap(apperr.KindIO, err, "snapshot source %s", f.path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperr.Wrap(apperr.KindIO, err, "create snapshot dir %s", dir)
	}
	base := filepath.Base(f.path)
	ext := filepath.Ext(base)
	stamp := time.Now().UTC().Format("20060102T150405.000000000")
	name := fmt.Sprintf("%s-%s%s", strings.TrimSuffix(base, ext), stamp, ext)
	dest := filepath.Join(dir, name)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", apperr.Wrap(apperr.KindIO, err, "write snapshot %s", dest)
	}
	return dest, nil
}

// WriteAtomic replaces path with data via a same-directory temp file and
// rename, so concurrent readers never observe a torn document.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return apperr.Wrap(apperr.KindIO, err, "create temp for %s", path)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperr.Wrap(apperr.KindIO, err, "write temp for %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperr.Wrap(apperr.KindIO, err, "close temp for %s", path)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return apperr.Wrap(apperr.KindIO, err, "chmod temp for %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return apperr.Wrap(apperr.KindIO, err, "replace %s", path)
	}
	return nil
}
