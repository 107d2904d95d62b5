package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/awmpietro/golang-exercise-scoring/internal/exercise"
)

// InMemory caches compiled models by key. Concurrent misses on the same key
// share one computation; failures are not cached.
type InMemory struct {
	mu    sync.RWMutex
	max   int
	items map[string]*exercise.Model
	group singleflight.Group
}

func NewInMemory(max int) *InMemory {
	if max < 0 {
		max = 0
	}
	return &InMemory{
		max:   max,
		items: make(map[string]*exercise.Model, max),
	}
}

func (c *InMemory) GetOrCompute(key string, fn func() (*exercise.Model, error)) (*exercise.Model, error) {
	if m, ok := c.get(key); ok {
		return m, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if m, ok := c.get(key); ok {
			return m, nil
		}
		m, err := compute(fn)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if len(c.items) < c.max {
			c.items[key] = m
		}
		c.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*exercise.Model), nil
}

func (c *InMemory) get(key string) (*exercise.Model, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.items[key]
	return m, ok
}

func (c *InMemory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// compute turns a compile panic into an error so singleflight waiters are
// released with a result instead of a re-panic.
func compute(fn func() (*exercise.Model, error)) (m *exercise.Model, err error) {
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("model compile panicked: %v", r)
		}
	}()
	return fn()
}

// Key hashes a definition so identical step sets share one model.
func Key(steps []exercise.Step) (string, error) {
	b, err := json.Marshal(steps)
	if err != nil {
		return "", fmt.Errorf("hash exercise definition: %w", err)
	}
	return hash(b), nil
}

func hash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
