package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// State is the persisted session record. Saved on every successful login
// and reloaded at process start, so a restart inside the freshness window
// does not force an unnecessary re-login.
type State struct {
	UID      string    `json:"uid"`
	IssuedAt time.Time `json:"issuedAt"`
}

// Store persists session state as a single JSON file.
type Store struct {
	path string
}

// NewStore constructs a store writing to the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted state. A missing file is not an error; it
// returns an empty state.
func (s *Store) Load() (State, error) {
	if s == nil || s.path == "" {
		return State{}, errors.New("session store not configured")
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, nil
		}
		return State{}, err
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, err
	}
	return st, nil
}

// Save writes the state atomically (per-call temp file + rename), so two
// loops logging in at once cannot consume each other's staging file.
func (s *Store) Save(st State) error {
	if s == nil || s.path == "" {
		return errors.New("session store not configured")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
