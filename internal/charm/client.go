// ABOUTME: Charm KV client wrapper for body-composition storage.
// ABOUTME: Provides thread-safe initialization, prefix scans, and automatic cloud sync.
package charm

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/bodycomp/internal/storage"
)

const (
	DBName           = "bodycomp"
	defaultCharmHost = "charm.2389.dev"

	SubjectPrefix     = "subject:"
	MeasurementPrefix = "measurement:"
)

var (
	globalClient *Client
	clientOnce   sync.Once
	clientErr    error

	errReadOnly = errors.New("cannot write: database is locked by another process (MCP server?)")
)

// Client stores subjects and measurements as JSON values under
// type-prefixed keys.
type Client struct {
	kv       *kv.KV
	autoSync bool
	mu       sync.RWMutex
}

// Compile-time check that Client implements storage.Repository.
var _ storage.Repository = (*Client)(nil)

// InitClient initializes the global Charm client.
// Thread-safe; can be called multiple times.
func InitClient() (*Client, error) {
	clientOnce.Do(func() {
		// Set server before opening KV unless the user already chose one
		if os.Getenv("CHARM_HOST") == "" {
			if err := os.Setenv("CHARM_HOST", defaultCharmHost); err != nil {
				clientErr = err
				return
			}
		}

		db, err := kv.OpenWithDefaultsFallback(DBName)
		if err != nil {
			clientErr = err
			return
		}

		globalClient = &Client{
			kv:       db,
			autoSync: true,
		}

		// Pull remote data on startup (skip in read-only mode)
		if !db.IsReadOnly() {
			_ = db.Sync()
		}
	})

	return globalClient, clientErr
}

// Close closes the KV database connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

// IsReadOnly returns true if the database is open in read-only mode.
// This happens when another process (like an MCP server) holds the lock.
func (c *Client) IsReadOnly() bool {
	return c.kv.IsReadOnly()
}

// Sync synchronizes local state with Charm Cloud.
func (c *Client) Sync() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.kv.IsReadOnly() {
		return nil
	}
	return c.kv.Sync()
}

func (c *Client) syncIfEnabled() {
	if c.autoSync && !c.kv.IsReadOnly() {
		_ = c.kv.Sync()
	}
}

// SetAutoSync enables or disables automatic sync after writes.
func (c *Client) SetAutoSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoSync = enabled
}

// ID returns the Charm user ID for the current account.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// set stores a value with the given key.
func (c *Client) set(key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return errReadOnly
	}

	if err := c.kv.Set([]byte(key), data); err != nil {
		return err
	}
	c.syncIfEnabled()
	return nil
}

// entry is one key/value pair read from a prefix scan.
type entry struct {
	key   string
	value []byte
}

// scanPrefix returns every entry whose key starts with prefix.
func (c *Client) scanPrefix(prefix string) ([]entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []entry
	p := []byte(prefix)
	err := c.kv.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = p
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out = append(out, entry{key: string(item.KeyCopy(nil)), value: val})
		}
		return nil
	})
	return out, err
}

// listByPrefix returns all values with keys matching the given prefix.
func (c *Client) listByPrefix(prefix string) ([][]byte, error) {
	entries, err := c.scanPrefix(prefix)
	if err != nil {
		return nil, err
	}
	values := make([][]byte, len(entries))
	for i, e := range entries {
		values[i] = e.value
	}
	return values, nil
}

// getByIDPrefix retrieves a single value by ID prefix match.
func (c *Client) getByIDPrefix(typePrefix, idPrefix string) ([]byte, error) {
	e, err := c.resolve(typePrefix, idPrefix)
	if err != nil {
		return nil, err
	}
	return e.value, nil
}

// resolve finds the single entry under typePrefix whose ID starts with idPrefix.
func (c *Client) resolve(typePrefix, idPrefix string) (entry, error) {
	if idPrefix == "" {
		return entry{}, fmt.Errorf("%w: empty id", storage.ErrNotFound)
	}
	matches, err := c.scanPrefix(typePrefix + idPrefix)
	if err != nil {
		return entry{}, err
	}
	return single(matches, idPrefix)
}

func single(matches []entry, idPrefix string) (entry, error) {
	switch len(matches) {
	case 0:
		return entry{}, fmt.Errorf("%w: %s", storage.ErrNotFound, idPrefix)
	case 1:
		return matches[0], nil
	default:
		return entry{}, fmt.Errorf("ambiguous prefix %s: matches multiple records", idPrefix)
	}
}

// deleteByIDPrefix deletes a record by ID prefix match.
func (c *Client) deleteByIDPrefix(typePrefix, idPrefix string) error {
	e, err := c.resolve(typePrefix, idPrefix)
	if err != nil {
		return err
	}
	return c.deleteKeys(e.key)
}

// deleteKeys removes keys then syncs once.
func (c *Client) deleteKeys(keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return errReadOnly
	}

	for _, k := range keys {
		if err := c.kv.Delete([]byte(k)); err != nil {
			return err
		}
	}
	c.syncIfEnabled()
	return nil
}

// unmarshalJSON is a helper to unmarshal JSON data.
func unmarshalJSON[T any](data []byte) (*T, error) {
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
