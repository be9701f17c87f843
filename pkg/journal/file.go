package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/netsmith/pkg/errors"
)

// File appends entries to a JSON-lines file.
type File struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// OpenFile opens (creating if needed) the journal at path for appending.
func OpenFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "create journal directory")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open journal %s", path)
	}
	return &File{f: f, path: path}, nil
}

// Path returns the journal file path.
func (j *File) Path() string { return j.path }

// Record implements Recorder.
func (j *File) Record(_ context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode journal entry")
	}
	data = append(data, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.f.Write(data); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write journal %s", j.path)
	}
	return nil
}

// Close implements Recorder.
func (j *File) Close(context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.f.Close()
}

// ReadFile returns every entry stored in the journal at path.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open journal %s", path)
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; sc.Scan(); line++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "%s:%d", path, line)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read journal %s", path)
	}
	return entries, nil
}
