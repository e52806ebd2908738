package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/felixgeelhaar/issuehub/internal/errors"
)

// CredentialsFile is the name of the persisted token file under the
// IssueHub home directory
const CredentialsFile = "credentials.json"

// Record is the persisted credential document
type Record struct {
	Token   string    `json:"token,omitempty"`
	Email   string    `json:"email,omitempty"`
	SavedAt time.Time `json:"saved_at,omitempty"`
}

// TokenStore persists the single bearer token between runs
type TokenStore interface {
	// Load returns the stored record; a missing record is not an error.
	Load() (Record, error)

	// Save replaces the stored record.
	Save(rec Record) error

	// Clear removes the token. It is a no-op when none is stored.
	Clear() error
}

// FileTokenStore keeps the record as JSON in a file readable only by the
// owner
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

// NewFileTokenStore returns a store for <home>/credentials.json
func NewFileTokenStore(home string) *FileTokenStore {
	return &FileTokenStore{path: filepath.Join(home, CredentialsFile)}
}

// Path returns the credentials file location
func (f *FileTokenStore) Path() string {
	return f.path
}

// Load reads the record
func (f *FileTokenStore) Load() (Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *FileTokenStore) load() (Record, error) {
	var rec Record
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return rec, nil
		}
		return rec, errors.Wrap(errors.ErrCodeFileReadFailed, "failed to read credentials", err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, errors.NewFileUnmarshalError(f.path, "JSON", err)
	}
	return rec, nil
}

// Save writes the record with mode 0600
func (f *FileTokenStore) Save(rec Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now().UTC()
	}
	return f.write(rec)
}

func (f *FileTokenStore) write(rec Record) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, "failed to create credentials directory", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, "failed to encode credentials", err)
	}

	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write credentials", err)
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(f.path, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to restrict credentials file", err)
	}
	return nil
}

// Clear drops the token but remembers the last email for the next login
// prompt. The file is removed when nothing is left.
func (f *FileTokenStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, err := f.load()
	if err != nil {
		// an unreadable file holds no usable token either
		rec = Record{}
	}
	if rec.Email == "" {
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to remove credentials", err)
		}
		return nil
	}
	if rec.Token == "" {
		return nil
	}
	return f.write(Record{Email: rec.Email, SavedAt: time.Now().UTC()})
}

// MemoryTokenStore keeps the record in memory
type MemoryTokenStore struct {
	mu  sync.Mutex
	rec Record
}

// NewMemoryTokenStore returns an empty in-memory store
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

// Load returns the record
func (m *MemoryTokenStore) Load() (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rec, nil
}

// Save replaces the record
func (m *MemoryTokenStore) Save(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = rec
	return nil
}

// Clear drops the token and keeps the email
func (m *MemoryTokenStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = Record{Email: m.rec.Email}
	return nil
}
