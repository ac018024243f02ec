package repositories

import (
	"errors"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

const cachePrefix = "cache:"

// BadgerCache persists session values under "cache:{key}".
// Clear only drops that prefix, the message log sharing the database is kept.
type BadgerCache struct {
	db *badger.DB
}

func NewBadgerCache(db *badger.DB) *BadgerCache {
	return &BadgerCache{db: db}
}

func (c *BadgerCache) Get(key string) (string, bool, error) {
	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cachePrefix + key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(value), true, nil
}

func (c *BadgerCache) Set(key, value string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(cachePrefix+key), []byte(value))
	})
}

func (c *BadgerCache) Clear() error {
	return c.db.DropPrefix([]byte(cachePrefix))
}

// MemoryCache is used when no database could be opened.
type MemoryCache struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{values: make(map[string]string)}
}

func (c *MemoryCache) Get(key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.values[key]
	return value, ok, nil
}

func (c *MemoryCache) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *MemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.values)
	return nil
}
