// Package session holds the logged-in user's identifier in durable storage
// scoped to one browser.
package session

import (
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
)

// Key is the storage key of the session user id.
const Key = "userId"

// Storage is a durable string key/value store for one browser.
type Storage interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// Store reads and writes the session user id. The stored value is trusted
// until a request made with it fails.
type Store struct {
	storage Storage
	log     *logrus.Entry
}

func NewStore(storage Storage, log *logrus.Entry) *Store {
	return &Store{storage: storage, log: log}
}

// Get returns the stored user id. Missing, empty, unparsable and unreadable
// values all read as absent.
func (s *Store) Get() (int64, bool) {
	raw, ok, err := s.storage.GetItem(Key)
	if err != nil {
		s.log.WithError(err).Warn("failed to read session")
		return 0, false
	}
	if !ok || raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.log.WithField("value", raw).Warn("ignoring malformed session value")
		return 0, false
	}
	return id, true
}

func (s *Store) Set(id int64) {
	if err := s.storage.SetItem(Key, strconv.FormatInt(id, 10)); err != nil {
		s.log.WithError(err).Error("failed to persist session")
	}
}

func (s *Store) Clear() {
	if err := s.storage.RemoveItem(Key); err != nil {
		s.log.WithError(err).Error("failed to clear session")
	}
}

// MemoryStorage is a process-local Storage.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (m *MemoryStorage) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryStorage) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryStorage) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}
