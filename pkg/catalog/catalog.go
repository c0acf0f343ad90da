// Package catalog keeps a persistent, chronologically ordered record of
// generated processes in a pebble database keyed by KSUID.
package catalog

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	jsoniter "github.com/json-iterator/go"
	"github.com/segmentio/ksuid"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrEntryNotFound is returned when no entry exists for a key
var ErrEntryNotFound = errors.New("catalog entry not found")

// Entry describes one generated process pair
type Entry struct {
	Key        ksuid.KSUID `json:"-"`
	RunID      string      `json:"run_id"`
	Index      int         `json:"index"`
	ProcessID  uint8       `json:"process_id"`
	CodeSize   int         `json:"code_size"`
	DataSize   int         `json:"data_size"`
	Offset     int64       `json:"offset"`
	Bytes      int64       `json:"bytes"`
	BinaryPath string      `json:"binary_path"`
	TextPath   string      `json:"text_path"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Options configures how the catalog database is opened
type Options struct {
	// FS overrides the filesystem, e.g. vfs.NewMem() in tests
	FS vfs.FS
}

// Catalog stores entries under monotonically increasing KSUIDs
type Catalog struct {
	db    *pebble.DB
	mutex sync.Mutex
	last  ksuid.KSUID
}

// Open opens or creates the catalog database in dir
func Open(dir string, opts Options) (*Catalog, error) {
	pebbleOpts := &pebble.Options{}
	if opts.FS != nil {
		pebbleOpts.FS = opts.FS
	}

	db, err := pebble.Open(dir, pebbleOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	c := &Catalog{db: db}
	if err := c.loadLastKey(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Put stores an entry and returns its key. Keys are strictly increasing so
// listing returns entries in insertion order even within the same second.
func (c *Catalog) Put(e *Entry) (ksuid.KSUID, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	id := ksuid.New()
	if ksuid.Compare(id, c.last) <= 0 {
		id = c.last.Next()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("failed to marshal catalog entry: %w", err)
	}

	if err := c.db.Set(id.Bytes(), data, pebble.Sync); err != nil {
		return ksuid.Nil, fmt.Errorf("failed to store catalog entry: %w", err)
	}

	c.last = id
	e.Key = id
	return id, nil
}

// Get returns the entry stored under id
func (c *Catalog) Get(id ksuid.KSUID) (*Entry, error) {
	data, closer, err := c.db.Get(id.Bytes())
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
		}
		return nil, err
	}
	defer closer.Close()

	return decodeEntry(id.Bytes(), data)
}

// List returns up to limit entries, oldest first. A limit of 0 or less returns all entries.
func (c *Catalog) List(limit int) ([]*Entry, error) {
	iter, err := c.db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var entries []*Entry
	for iter.First(); iter.Valid(); iter.Next() {
		if limit > 0 && len(entries) >= limit {
			break
		}
		e, err := decodeEntry(iter.Key(), iter.Value())
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, iter.Error()
}

// Close closes the catalog database
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) loadLastKey() error {
	iter, err := c.db.NewIter(nil)
	if err != nil {
		return err
	}
	defer iter.Close()

	if iter.Last() {
		id, err := ksuid.FromBytes(iter.Key())
		if err != nil {
			return fmt.Errorf("catalog contains a non-KSUID key: %w", err)
		}
		c.last = id
	}
	return iter.Error()
}

func decodeEntry(key, value []byte) (*Entry, error) {
	id, err := ksuid.FromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("catalog contains a non-KSUID key: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(value, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog entry %s: %w", id, err)
	}
	e.Key = id
	return &e, nil
}
