package keyedmutex

import "sync"

// KeyedMutex hands out one mutex per key so operations on distinct keys
// never contend. Locks are never reclaimed; key cardinality is bounded
// by the catalog size.
type KeyedMutex struct {
	locks sync.Map
}

func New() *KeyedMutex {
	return &KeyedMutex{}
}

func (m *KeyedMutex) Lock(key string) {
	m.get(key).Lock()
}

func (m *KeyedMutex) Unlock(key string) {
	m.get(key).Unlock()
}

func (m *KeyedMutex) get(key string) *sync.Mutex {
	lock, _ := m.locks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
