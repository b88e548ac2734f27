package datastore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore keeps documents in process. Documents are deep copied through
// JSON on every read and write so callers see the same value types a remote
// store would return. Queries return documents in insertion order.
type MemoryStore struct {
	mu           sync.RWMutex
	collections  map[string]*memCollection
	maxBatchSize int
}

type memCollection struct {
	order []string
	docs  map[string]map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections:  make(map[string]*memCollection),
		maxBatchSize: DefaultMaxBatchSize,
	}
}

// WithMaxBatchSize changes the batch limit reported to writers.
func (s *MemoryStore) WithMaxBatchSize(n int) *MemoryStore {
	s.maxBatchSize = n
	return s
}

func (s *MemoryStore) MaxBatchSize() int {
	return s.maxBatchSize
}

func (s *MemoryStore) NewID(collection string) string {
	return newID()
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (*Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.collections[collection]
	if c == nil {
		return nil, ErrNotFound
	}
	data, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Doc{ID: id, Data: cloneData(data)}, nil
}

func (s *MemoryStore) Query(ctx context.Context, collection string, where ...Where) ([]*Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := []*Doc{}
	c := s.collections[collection]
	if c == nil {
		return docs, nil
	}

	for _, id := range c.order {
		data := c.docs[id]
		if !matches(data, where) {
			continue
		}
		docs = append(docs, &Doc{ID: id, Data: cloneData(data)})
	}
	return docs, nil
}

func (s *MemoryStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := s.NewID(collection)
	return id, s.Set(ctx, collection, id, data)
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	return s.commit([]Op{SetOp(collection, id, data)})
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	return s.commit([]Op{UpdateOp(collection, id, patch)})
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	return s.commit([]Op{DeleteOp(collection, id)})
}

func (s *MemoryStore) Batch() Batch {
	return &memoryBatch{store: s}
}

// commit applies ops to a staged copy of the touched collections and swaps
// it in only if every op succeeded.
func (s *MemoryStore) commit(ops []Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[string]*memCollection)
	stage := func(name string) *memCollection {
		if c, ok := staged[name]; ok {
			return c
		}
		c := &memCollection{docs: make(map[string]map[string]any)}
		if current := s.collections[name]; current != nil {
			c.order = append(c.order, current.order...)
			for id, data := range current.docs {
				c.docs[id] = data
			}
		}
		staged[name] = c
		return c
	}

	for i, op := range ops {
		c := stage(op.Collection)
		if err := applyMemoryOp(c, op); err != nil {
			return fmt.Errorf("op %d (%s %s/%s): %w", i, op.Kind, op.Collection, op.ID, err)
		}
	}

	for name, c := range staged {
		s.collections[name] = c
	}
	return nil
}

func applyMemoryOp(c *memCollection, op Op) error {
	existing, exists := c.docs[op.ID]

	switch op.Kind {
	case OpSet:
		if !exists {
			c.order = append(c.order, op.ID)
		}
		c.docs[op.ID] = cloneData(op.Data)
	case OpUpdate:
		if !exists {
			return ErrNotFound
		}
		merged := cloneData(existing)
		for k, v := range cloneData(op.Data) {
			merged[k] = v
		}
		c.docs[op.ID] = merged
	case OpDelete:
		if !exists {
			return nil
		}
		delete(c.docs, op.ID)
		for i, id := range c.order {
			if id == op.ID {
				c.order = append(c.order[:i:i], c.order[i+1:]...)
				break
			}
		}
	case OpIncrement:
		merged := map[string]any{}
		if exists {
			merged = cloneData(existing)
		} else {
			c.order = append(c.order, op.ID)
		}
		merged[op.Field] = float64(toInt64(merged[op.Field]) + op.Delta)
		for k, v := range cloneData(op.Data) {
			merged[k] = v
		}
		c.docs[op.ID] = merged
	}
	return nil
}

type memoryBatch struct {
	opList
	store *MemoryStore
}

func (b *memoryBatch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	if len(b.ops) > b.store.maxBatchSize {
		return fmt.Errorf("batch of %d operations exceeds limit %d", len(b.ops), b.store.maxBatchSize)
	}
	return b.store.commit(b.ops)
}

func matches(data map[string]any, where []Where) bool {
	for _, w := range where {
		value, ok := data[w.Field]
		if w.Value == nil {
			if ok && value != nil {
				return false
			}
			continue
		}
		if !ok || value == nil || fmt.Sprint(value) != fmt.Sprint(w.Value) {
			return false
		}
	}
	return true
}

func cloneData(data map[string]any) map[string]any {
	if data == nil {
		return map[string]any{}
	}
	b, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		panic(err)
	}
	return out
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	default:
		return 0
	}
}
