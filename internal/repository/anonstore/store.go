package anonstore

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sousamj2/explicolivais/internal/domain/entity"
	apperrors "github.com/sousamj2/explicolivais/internal/pkg/errors"
)

// FileName is the CSV file kept inside the results directory
const FileName = "quiz_results.csv"

// DefaultTTL is how long an anonymous result stays retrievable
const DefaultTTL = time.Hour

var header = []string{"quiz_uuid", "timestamp", "answers"}

// StorageError reports a failed file operation on the store.
// errors.Is(err, apperrors.ErrStorage) holds for every StorageError.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("anonymous result store: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes StorageError match apperrors.ErrStorage
func (e *StorageError) Is(target error) bool {
	return target == apperrors.ErrStorage
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUIDv4 generator
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithTTL sets the retention period
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// Store keeps anonymous quiz results in a CSV file with the columns
// quiz_uuid, timestamp and answers. Rows are appended on save; sweeps and
// deletes rewrite the file through a temp file and a rename.
//
// Writers within one process are serialised by a mutex. Several processes
// sharing the same file are not supported.
type Store struct {
	path   string
	ttl    time.Duration
	mu     sync.Mutex
	now    func() time.Time
	newID  func() string
	logger *zap.Logger
}

// New creates the results directory if needed and returns a Store on it
func New(dir string, logger *zap.Logger, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Op: "mkdir", Path: dir, Err: err}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		path:   filepath.Join(dir, FileName),
		ttl:    DefaultTTL,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the location of the CSV file
func (s *Store) Path() string {
	return s.path
}

// Save appends a result and returns its id. answers are keyed by
// presentation index; key i is stored under questionNumbers[i], with "0"
// (skip) for indices that were never answered. With no question numbers the
// answers are stored as given.
func (s *Store) Save(answers entity.AnswerMap, questionNumbers []int) (string, error) {
	byNumber := entity.AnswerMap{}
	if len(questionNumbers) == 0 {
		for k, v := range answers {
			byNumber[k] = v
		}
	} else {
		for idx, num := range questionNumbers {
			selected, ok := answers[strconv.Itoa(idx)]
			if !ok {
				selected = []string{"0"}
			}
			byNumber[strconv.Itoa(num)] = selected
		}
	}

	encoded, err := json.Marshal(byNumber)
	if err != nil {
		return "", &StorageError{Op: "encode", Path: s.path, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	timestamp := s.now().Format(entity.AnonymousTimestampLayout)

	if err := s.appendRow([]string{id, timestamp, string(encoded)}); err != nil {
		return "", err
	}
	s.logger.Debug("Anonymous quiz result saved", zap.String("quiz_uuid", id))
	return id, nil
}

// Get returns an unexpired result. Expired rows are swept first.
// A missing id yields apperrors.ErrNotFound.
func (s *Store) Get(id string) (*entity.AnonymousResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sweepLocked(); err != nil {
		return nil, err
	}
	rows, err := s.readRows()
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if len(row) < 3 || row[0] != id {
			continue
		}
		answers := entity.AnswerMap{}
		if row[2] != "" {
			if err := json.Unmarshal([]byte(row[2]), &answers); err != nil {
				return nil, &StorageError{Op: "decode", Path: s.path, Err: err}
			}
		}
		res := &entity.AnonymousResult{ID: row[0], Answers: answers}
		if ts, err := time.ParseInLocation(entity.AnonymousTimestampLayout, row[1], s.now().Location()); err == nil {
			res.CreatedAt = ts
		}
		return res, nil
	}
	return nil, fmt.Errorf("anonymous result %s: %w", id, apperrors.ErrNotFound)
}

// List sweeps expired rows and returns the remaining id/timestamp pairs
func (s *Store) List() ([]entity.AnonymousResultSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sweepLocked(); err != nil {
		return nil, err
	}
	rows, err := s.readRows()
	if err != nil {
		return nil, err
	}
	out := make([]entity.AnonymousResultSummary, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		out = append(out, entity.AnonymousResultSummary{ID: row[0], Timestamp: row[1]})
	}
	return out, nil
}

// SweepExpired removes rows older than the TTL and reports how many went.
// Rows with an unreadable timestamp are kept. The file is rewritten only
// when something was removed.
func (s *Store) SweepExpired() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

// Delete removes the result with the given id, reporting whether it existed
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return false, err
	}
	keep := rows[:0]
	deleted := false
	for _, row := range rows {
		if len(row) > 0 && row[0] == id {
			deleted = true
			continue
		}
		keep = append(keep, row)
	}
	if !deleted {
		return false, nil
	}
	if err := s.rewrite(keep); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) sweepLocked() (int, error) {
	rows, err := s.readRows()
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	now := s.now()
	cutoff := now.Add(-s.ttl)
	keep := make([][]string, 0, len(rows))
	removed := 0
	for _, row := range rows {
		if len(row) < 2 {
			keep = append(keep, row)
			continue
		}
		ts, err := time.ParseInLocation(entity.AnonymousTimestampLayout, row[1], now.Location())
		if err != nil || ts.After(cutoff) {
			keep = append(keep, row)
			continue
		}
		removed++
	}

	if removed == 0 {
		return 0, nil
	}
	if err := s.rewrite(keep); err != nil {
		return 0, err
	}
	s.logger.Info("Expired anonymous quiz results removed", zap.Int("removed", removed))
	return removed, nil
}

// readRows returns the data rows without the header. A missing file is empty.
func (s *Store) readRows() ([][]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &StorageError{Op: "open", Path: s.path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var rows [][]string
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &StorageError{Op: "read", Path: s.path, Err: err}
		}
		if first {
			first = false
			if len(rec) > 0 && rec[0] == header[0] {
				continue
			}
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func (s *Store) appendRow(row []string) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &StorageError{Op: "open", Path: s.path, Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return &StorageError{Op: "stat", Path: s.path, Err: err}
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		w.Write(header)
	}
	w.Write(row)
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return &StorageError{Op: "append", Path: s.path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &StorageError{Op: "close", Path: s.path, Err: err}
	}
	return nil
}

// rewrite replaces the file atomically with header plus rows
func (s *Store) rewrite(rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), FileName+".*.tmp")
	if err != nil {
		return &StorageError{Op: "create temp", Path: s.path, Err: err}
	}
	tmpName := tmp.Name()
	fail := func(op string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &StorageError{Op: op, Path: s.path, Err: err}
	}

	w := csv.NewWriter(tmp)
	w.Write(header)
	w.WriteAll(rows)
	if err := w.Error(); err != nil {
		return fail("write temp", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync temp", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &StorageError{Op: "close temp", Path: s.path, Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &StorageError{Op: "rename", Path: s.path, Err: err}
	}
	return nil
}
