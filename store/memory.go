package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-memory Store used by tests and ephemeral environments.
// Batches apply under a single lock, so they are atomic with respect to every
// other operation.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]bson.M
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]bson.M)}
}

var _ Store = (*MemoryStore)(nil)

// coll lazily creates the named collection. Callers must hold the write lock;
// read paths use s.collections directly and treat a missing collection as empty.
func (s *MemoryStore) coll(name string) map[string]bson.M {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[string]bson.M)
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (bson.M, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDoc(doc), nil
}

func (s *MemoryStore) Find(ctx context.Context, collection string, filter bson.M) ([]bson.M, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var docs []bson.M
	for _, doc := range s.collections[collection] {
		if matchesFilter(doc, filter) {
			docs = append(docs, copyDoc(doc))
		}
	}
	return docs, nil
}

func (s *MemoryStore) Insert(ctx context.Context, collection string, doc bson.M) error {
	id, _ := doc["_id"].(string)
	if id == "" {
		return fmt.Errorf("insert into %s: document has no string _id", collection)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coll(collection)[id] = copyDoc(doc)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, set bson.M) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.coll(collection)[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range set {
		doc[k] = v
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.coll(collection), id)
	return nil
}

func (s *MemoryStore) ApplyBatch(ctx context.Context, ops []WriteOp) error {
	if len(ops) > MaxBatchOps {
		return fmt.Errorf("%w: %d ops exceeds limit of %d", ErrBatchRejected, len(ops), MaxBatchOps)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range ops {
		switch op.Kind {
		case WriteDelete:
			delete(s.coll(op.Collection), op.ID)
		case WriteUpdate:
			doc, ok := s.coll(op.Collection)[op.ID]
			if !ok {
				continue
			}
			for k, v := range op.Set {
				doc[k] = v
			}
		default:
			return fmt.Errorf("%w: unknown write kind %q", ErrBatchRejected, op.Kind)
		}
	}
	return nil
}

// Count reports the number of documents in a collection. Test helper.
func (s *MemoryStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

func copyDoc(doc bson.M) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		switch t := v.(type) {
		case bson.M:
			out[k] = copyDoc(t)
		case primitive.A:
			out[k] = append(primitive.A(nil), t...)
		case []interface{}:
			out[k] = append([]interface{}(nil), t...)
		case []string:
			out[k] = append([]string(nil), t...)
		default:
			out[k] = v
		}
	}
	return out
}

func matchesFilter(doc bson.M, filter bson.M) bool {
	for key, want := range filter {
		got, ok := lookupPath(doc, key)
		if !ok {
			return false
		}
		if !matchesValue(got, want) {
			return false
		}
	}
	return true
}

func matchesValue(got, want interface{}) bool {
	if m, ok := want.(bson.M); ok {
		in, ok := m["$in"]
		if !ok {
			return false
		}
		for _, candidate := range toSlice(in) {
			if matchesValue(got, candidate) {
				return true
			}
		}
		return false
	}
	// Equality against an array field means "array contains", as in Mongo.
	if elems := toSlice(got); elems != nil {
		for _, el := range elems {
			if el == want {
				return true
			}
		}
		return false
	}
	return got == want
}

func lookupPath(doc bson.M, path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	var cur interface{} = doc
	for _, p := range parts {
		m, ok := cur.(bson.M)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func toSlice(v interface{}) []interface{} {
	switch t := v.(type) {
	case primitive.A:
		return []interface{}(t)
	case []interface{}:
		return t
	case []string:
		out := make([]interface{}, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	default:
		return nil
	}
}
