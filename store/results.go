package store

import (
	"os"
	"sort"

	badger "github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/pagek/check"
)

var _ Storer = (*ResultStore)(nil)

// ResultStore keeps the history of check runs
type ResultStore struct {
	Store    *badger.DB
	filepath string
}

// NewResultStore at filepath, an empty filepath keeps everything in memory
func NewResultStore(filepath string) *ResultStore {
	return &ResultStore{filepath: filepath}
}

// Open and Init a ResultStore
func Open(filepath string) (*ResultStore, error) {
	s := NewResultStore(filepath)
	if err := s.Init(); err != nil {
		return nil, err
	}
	return s, nil
}

// Init the result storage
func (s *ResultStore) Init() error {
	var err error

	if s.filepath == "" {
		s.Store, err = badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
		return err
	}

	if err = os.MkdirAll(s.filepath, 0755); err != nil {
		return err
	}

	opts := badger.DefaultOptions(s.filepath).WithLogger(nil)
	s.Store, err = badger.Open(opts)

	if errors.Is(err, badger.ErrTruncateNeeded) {
		log.Warn().Msg("there was a failure re-opening database, trying to recover")
		opts.Truncate = true
		s.Store, err = badger.Open(opts)
	}

	if err != nil {
		return errors.Wrapf(err, "failed to open results at %s", s.filepath)
	}
	return nil
}

// Save a result under its run and page, a page checked twice in one run is overwritten
func (s *ResultStore) Save(result *check.Result) error {
	if result.RunID == "" || result.Page == "" {
		return errors.New("result needs a run id and page name")
	}

	data, err := EncodeResult(result)
	if err != nil {
		return errors.Wrap(err, "failed to encode result")
	}

	return s.Store.Update(func(txn *badger.Txn) error {
		return txn.Set(MakeKey(resultPredicate, result.RunID, result.Page), data)
	})
}

// Results of runID ordered by start time, an empty runID returns every run
func (s *ResultStore) Results(runID string) ([]*check.Result, error) {
	prefix := MakeKey(resultPredicate, "")
	if runID != "" {
		prefix = MakeKey(resultPredicate, runID, "")
	}

	results := make([]*check.Result, 0)
	err := s.Store.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: true, PrefetchSize: 100})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				result, err := DecodeResult(val)
				if err != nil {
					return errors.Wrapf(err, "failed to decode %s", item.Key())
				}
				results = append(results, result)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Started.Before(results[j].Started)
	})
	return results, nil
}

// Runs returns every run id with stored results
func (s *ResultStore) Runs() ([]string, error) {
	seen := make(map[string]struct{})
	runs := make([]string, 0)

	err := s.Store.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = MakeKey(resultPredicate, "")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			runAndPage := GetID(it.Item().Key())
			run := string(GetPredicate(runAndPage))
			if _, ok := seen[run]; ok {
				continue
			}
			seen[run] = struct{}{}
			runs = append(runs, run)
		}
		return nil
	})
	return runs, err
}

// Close the result store
func (s *ResultStore) Close() error {
	return s.Store.Close()
}
