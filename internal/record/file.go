package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore keeps one JSON file per user under dir. Saves go through a
// temp-file-then-rename so a crash mid-write can never truncate a prior
// valid record. A per-user mutex serializes read-modify-write cycles for
// concurrent events from the same user.
type FileStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure record dir: %w", err)
	}
	return &FileStore{dir: dir, locks: make(map[string]*sync.Mutex)}, nil
}

func (s *FileStore) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

func (s *FileStore) path(userID string) string {
	return filepath.Join(s.dir, sanitizeID(userID)+".json")
}

// Load returns the stored record, or the zero-value record when the user
// has never been seen. A corrupt or unreadable existing file is an error.
func (s *FileStore) Load(userID string) (Record, error) {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()
	return s.loadUnlocked(userID)
}

func (s *FileStore) loadUnlocked(userID string) (Record, error) {
	data, err := os.ReadFile(s.path(userID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, nil
		}
		return Record{}, fmt.Errorf("%w: read %s: %v", ErrStorage, userID, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: decode %s: %v", ErrStorage, userID, err)
	}
	return rec, nil
}

// Save overwrites the user's entire record atomically.
func (s *FileStore) Save(userID string, rec Record) error {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()
	return s.saveUnlocked(userID, rec)
}

func (s *FileStore) saveUnlocked(userID string, rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrStorage, userID, err)
	}
	path := s.path(userID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStorage, userID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: rename %s: %v", ErrStorage, userID, err)
	}
	return nil
}

// Update applies fn to the user's record under the per-user lock, so
// concurrent events for one user apply their appends in a total order
// without lost updates.
func (s *FileStore) Update(userID string, fn func(*Record)) (Record, error) {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()
	rec, err := s.loadUnlocked(userID)
	if err != nil {
		return Record{}, err
	}
	fn(&rec)
	if err := s.saveUnlocked(userID, rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// LoadAll reads every stored record, keyed by the sanitized user id. Used
// by the daily report; corrupt files are skipped rather than failing the
// whole sweep.
func (s *FileStore) LoadAll() (map[string]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read dir: %v", ErrStorage, err)
	}
	out := make(map[string]Record)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		userID := strings.TrimSuffix(name, ".json")
		rec, err := s.Load(userID)
		if err != nil {
			continue
		}
		out[userID] = rec
	}
	return out, nil
}

// sanitizeID maps an opaque platform user id onto a safe file name.
func sanitizeID(userID string) string {
	if userID == "" {
		return "_unknown"
	}
	var b strings.Builder
	for _, r := range userID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
