// Package history persists finished transcripts and ledger snapshots in a
// local Badger database so the record survives restarts.
package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/earshot-app/earshot/internal/types"
)

const (
	transcriptPrefix = "transcript:"
	ledgerKey        = "ledger:stats"
)

// Store is a Badger-backed transcript history.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the history database at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // badger's own logger is too chatty for a desktop app

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	return &Store{db: db}, nil
}

// Append stores a transcript. The transcript is assigned an ID if it does
// not already have one, and the stored (possibly updated) value is returned.
func (s *Store) Append(tr types.Transcript) (types.Transcript, error) {
	if tr.ID == "" {
		tr.ID = uuid.NewString()
	}
	if tr.Timestamp == 0 {
		tr.Timestamp = time.Now().UnixMilli()
	}

	data, err := json.Marshal(tr)
	if err != nil {
		return tr, fmt.Errorf("marshal transcript: %w", err)
	}

	// Keys sort by timestamp so Recent can iterate in reverse order.
	key := fmt.Sprintf("%s%020d:%s", transcriptPrefix, tr.Timestamp, tr.ID)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return tr, fmt.Errorf("store transcript: %w", err)
	}
	return tr, nil
}

// Recent returns up to n transcripts, newest first.
func (s *Store) Recent(n int) ([]types.Transcript, error) {
	if n <= 0 {
		return nil, nil
	}

	var out []types.Transcript
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(transcriptPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		// With Reverse set, seeking to the byte after the prefix range
		// positions the iterator at the newest key.
		seek := append([]byte(transcriptPrefix), 0xFF)
		for it.Seek(seek); it.Valid() && len(out) < n; it.Next() {
			var tr types.Transcript
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &tr)
			})
			if err != nil {
				slog.Warn("skip unreadable history entry", "error", err)
				continue
			}
			out = append(out, tr)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return out, nil
}

// SaveLedger persists a ledger snapshot.
func (s *Store) SaveLedger(stats types.LedgerStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(ledgerKey), data)
	})
	if err != nil {
		return fmt.Errorf("store ledger: %w", err)
	}
	return nil
}

// LoadLedger returns the last persisted ledger snapshot, or a zero value
// when none has been saved yet.
func (s *Store) LoadLedger() (types.LedgerStats, error) {
	var stats types.LedgerStats
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(ledgerKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &stats)
		})
	})
	if err == badger.ErrKeyNotFound {
		return types.LedgerStats{}, nil
	}
	if err != nil {
		return types.LedgerStats{}, fmt.Errorf("read ledger: %w", err)
	}
	return stats, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
