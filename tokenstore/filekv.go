package tokenstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

var _ KV = (*FileKV)(nil)

// FileKV persists keys as a single JSON document on disk. It is the CLI's
// localStorage stand-in: sessions survive process restarts, and the file is
// created 0600 because it holds bearer credentials.
type FileKV struct {
	path   string
	values map[string]string
	lock   sync.Mutex
}

// OpenFileKV loads (or lazily creates) the JSON document at path.
func OpenFileKV(path string) (*FileKV, error) {
	kv := &FileKV{path: path, values: make(map[string]string)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return kv, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[OpenFileKV] read")
	}
	if len(data) == 0 {
		return kv, nil
	}
	if err := json.Unmarshal(data, &kv.values); err != nil {
		return nil, errors.Wrap(err, "[OpenFileKV] corrupt state file")
	}
	return kv, nil
}

func (f *FileKV) Get(key string) (string, bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	v, ok := f.values[key]
	return v, ok
}

func (f *FileKV) Set(key, value string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.values[key] = value
	return f.flush()
}

func (f *FileKV) Delete(key string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if _, ok := f.values[key]; !ok {
		return nil
	}
	delete(f.values, key)
	return f.flush()
}

// flush writes via a temp file and rename so a crash mid-write never leaves
// a truncated credential file behind. Caller holds the lock.
func (f *FileKV) flush() error {
	data, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileKV flush] marshal")
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "[FileKV flush] mkdir")
	}

	tmp, err := os.CreateTemp(dir, ".planner-state-*")
	if err != nil {
		return errors.Wrap(err, "[FileKV flush] temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileKV flush] write")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileKV flush] close")
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileKV flush] chmod")
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileKV flush] rename")
	}
	return nil
}
