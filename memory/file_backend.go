package memory

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gofrs/flock"
	"github.com/habiliai/agentloop/errors"
)

var docNameRe = regexp.MustCompile(`^[\w\-]+$`)

// FileBackend stores each document as <dir>/<name>.json. Writers hold an
// exclusive lock on <dir>/.lock so concurrent processes never interleave.
type FileBackend struct {
	dir  string
	lock *flock.Flock
}

var _ Backend = (*FileBackend)(nil)

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create memory directory %s", dir)
	}
	return &FileBackend{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, ".lock")),
	}, nil
}

func (b *FileBackend) path(name string) (string, error) {
	if !docNameRe.MatchString(name) {
		return "", errors.Wrapf(errors.ErrInvalidRequest, "bad document name %q", name)
	}
	return filepath.Join(b.dir, name+".json"), nil
}

func (b *FileBackend) Load(_ context.Context, name string, v any) (bool, error) {
	path, err := b.path(name)
	if err != nil {
		return false, err
	}

	if err := b.lock.RLock(); err != nil {
		return false, errors.Wrapf(err, "failed to lock memory directory")
	}
	defer b.lock.Unlock()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, errors.Wrapf(err, "failed to read %s", path)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return true, errors.Wrapf(errors.ErrInvalidDocument, "%s: %v", name, err)
	}
	return true, nil
}

func (b *FileBackend) Save(_ context.Context, name string, v any) error {
	path, err := b.path(name)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", name)
	}

	if err := b.lock.Lock(); err != nil {
		return errors.Wrapf(err, "failed to lock memory directory")
	}
	defer b.lock.Unlock()

	tmp, err := os.CreateTemp(b.dir, "."+name+"-*.tmp")
	if err != nil {
		return errors.Wrapf(err, "failed to create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "failed to write %s", name)
	}
	if err := tmp.Close(); err != nil {
		return errors.WithStack(err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "failed to replace %s", path)
	}
	return nil
}

func (b *FileBackend) Close() error {
	return b.lock.Close()
}
