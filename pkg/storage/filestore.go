package storage

import (
	"fmt"
	"sync"
	"time"
)

// fileInfo tracks one in-flight resumable upload: the headers to send with
// each TUS request, the upload link issued by the server, and its expiry.
type fileInfo struct {
	name      string
	link      string
	length    int64
	expiresAt time.Time
	headers   map[string]string
}

// fileStore is the in-memory registry of in-flight resumable uploads,
// keyed by object name.
type fileStore struct {
	mu    sync.Mutex
	files map[string]*fileInfo
}

func newFileStore() *fileStore {
	return &fileStore{files: map[string]*fileInfo{}}
}

func (s *fileStore) mark(info *fileInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[info.name] = info
}

func (s *fileStore) get(name string) (*fileInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("storage: no resumable upload entry for %q", name)
	}
	return info, nil
}

func (s *fileStore) exists(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[name]
	return ok
}

func (s *fileStore) setHeader(name, key, value string) error {
	info, err := s.get(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	info.headers[key] = value
	return nil
}

// headers returns a copy so callers can't race concurrent mutation.
func (s *fileStore) headers(name string) (map[string]string, error) {
	info, err := s.get(name)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(info.headers))
	for k, v := range info.headers {
		out[k] = v
	}
	return out, nil
}

func (s *fileStore) remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, name)
}
