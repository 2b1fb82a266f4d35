package draft

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/andy/jobclock/internal/domain"
)

// Store keeps one JSON snapshot per job on local disk. Snapshots are replaced
// by rename, so a reader in another process sees either the old or the new
// draft, never a partial one. mu only serializes access within this process.
// Two processes racing through Load and Save are not locked against each
// other and the last Save wins.
type Store struct {
	Dir string
	mu  sync.Mutex
}

// NewStore returns a Store rooted at dir. The directory is created on first Save.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) path(jobID string) string {
	// Job ids are uuids; strip separators anyway so a bad id cannot escape Dir
	name := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(jobID)
	return filepath.Join(s.Dir, name+".json")
}

// Load returns the snapshot for jobID, or an idle draft if none exists
func (s *Store) Load(jobID string) (*domain.DraftSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(jobID))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.NewDraftSession(jobID), nil
		}
		return nil, fmt.Errorf("failed to read draft snapshot: %w", err)
	}

	d := &domain.DraftSession{}
	if err := json.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("failed to decode draft snapshot: %w", err)
	}
	d.JobID = jobID
	return d, nil
}

// Save writes the snapshot atomically
func (s *Store) Save(d *domain.DraftSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return fmt.Errorf("failed to create draft directory: %w", err)
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode draft snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, ".draft-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write draft snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write draft snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path(d.JobID)); err != nil {
		return fmt.Errorf("failed to replace draft snapshot: %w", err)
	}
	return nil
}

// Clear removes every snapshot in the directory
func (s *Store) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches, err := filepath.Glob(filepath.Join(s.Dir, "*.json"))
	if err != nil {
		return 0, err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			return 0, fmt.Errorf("failed to remove %s: %w", m, err)
		}
	}
	return len(matches), nil
}
