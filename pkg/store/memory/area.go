package memory

import (
	"sync"

	"tespkg.in/stash/pkg/store"
)

// Area is an in-memory store.Area enumerating keys in insertion order.
type Area struct {
	mu    sync.RWMutex
	order []string
	vals  map[string]string
}

var _ store.Area = (*Area)(nil)

func NewArea() *Area {
	return &Area{vals: map[string]string{}}
}

func (a *Area) Get(key string) (string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	v, ok := a.vals[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (a *Area) Set(key, val string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.vals[key]; !ok {
		a.order = append(a.order, key)
	}
	a.vals[key] = val
	return nil
}

func (a *Area) Delete(key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.vals[key]; !ok {
		return nil
	}
	delete(a.vals, key)
	for i, k := range a.order {
		if k == key {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	return nil
}

func (a *Area) Keys() ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]string, len(a.order))
	copy(out, a.order)
	return out, nil
}

func (a *Area) Len() (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.order), nil
}
