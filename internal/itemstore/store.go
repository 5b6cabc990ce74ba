// Package itemstore persists annotated QA records keyed by question ID.
//
// The on-disk format is a single JSON object whose keys are decimal
// question IDs, so files written by earlier tooling load unchanged.
package itemstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/abhisek/rcscout/internal/qa"
)

// Store maps question IDs to annotated records. It is not safe for
// concurrent use; one annotation session owns a store at a time.
type Store struct {
	items map[int64]qa.Record
}

// New returns an empty store.
func New() *Store {
	return &Store{items: make(map[int64]qa.Record)}
}

// Load reads the store at path. A missing file yields an empty store.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(), nil
		}
		return nil, &CorruptStateError{Path: path, Err: err}
	}

	var raw map[string]qa.Record
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &CorruptStateError{Path: path, Err: err}
	}

	s := New()
	for key, rec := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, &CorruptStateError{Path: path, Err: fmt.Errorf("key %q is not a question id: %w", key, err)}
		}
		if rec.Question.QuestionID == 0 {
			rec.Question.QuestionID = id
		}
		if rec.Question.QuestionID != id {
			return nil, &CorruptStateError{
				Path: path,
				Err:  fmt.Errorf("key %d holds question %d", id, rec.Question.QuestionID),
			}
		}
		s.items[id] = rec
	}
	return s, nil
}

// Save writes the whole store to path. The data goes to a temporary file
// in the same directory which is synced and renamed over path, so a failed
// write never clobbers the previous contents.
func (s *Store) Save(path string) error {
	raw := make(map[string]qa.Record, len(s.items))
	for id, rec := range s.items {
		raw[strconv.FormatInt(id, 10)] = rec
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return &StorageError{Path: path, Op: "marshal", Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &StorageError{Path: path, Op: "create dir", Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &StorageError{Path: path, Op: "create temp", Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return &StorageError{Path: path, Op: "write", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return &StorageError{Path: path, Op: "sync", Err: err}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return &StorageError{Path: path, Op: "close", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return &StorageError{Path: path, Op: "rename", Err: err}
	}
	return nil
}

// Merge adds or replaces records by question ID.
func (s *Store) Merge(records ...qa.Record) {
	for _, rec := range records {
		s.items[rec.ID()] = rec
	}
}

// Add inserts rec only if its question is not yet stored. It reports
// whether the record was inserted.
func (s *Store) Add(rec qa.Record) bool {
	if _, ok := s.items[rec.ID()]; ok {
		return false
	}
	s.items[rec.ID()] = rec
	return true
}

// Has reports whether the question was already annotated.
func (s *Store) Has(questionID int64) bool {
	_, ok := s.items[questionID]
	return ok
}

// Get returns the record for questionID.
func (s *Store) Get(questionID int64) (qa.Record, bool) {
	rec, ok := s.items[questionID]
	return rec, ok
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	return len(s.items)
}

// IDs returns the stored question IDs in ascending order.
func (s *Store) IDs() []int64 {
	ids := make([]int64, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Records returns all records ordered by question ID.
func (s *Store) Records() []qa.Record {
	ids := s.IDs()
	out := make([]qa.Record, len(ids))
	for i, id := range ids {
		out[i] = s.items[id]
	}
	return out
}

// Stats summarizes the labels held in a store.
type Stats struct {
	Records        int
	ValidAnswers   int
	RootCauses     int
	NotRootCauses  int
	UnsetRootCause int
}

// Stats counts records by their judgments.
func (s *Store) Stats() Stats {
	st := Stats{Records: len(s.items)}
	for _, rec := range s.items {
		if rec.ValidatedAnswer == qa.Accepted {
			st.ValidAnswers++
		}
		switch rec.ValidatedRootCause {
		case qa.Accepted:
			st.RootCauses++
		case qa.Rejected:
			st.NotRootCauses++
		case qa.Unset:
			st.UnsetRootCause++
		}
	}
	return st
}
