// Package store abstracts the document database behind a small CRUD/query/
// batch surface so services can be wired against Mongo in production and an
// in-memory double in tests.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrNotFound is returned by Get when no document carries the requested id.
var ErrNotFound = errors.New("document not found")

// ErrBatchRejected wraps any failure of an atomic batch commit. Callers that
// can degrade to per-document writes check for it with errors.Is.
var ErrBatchRejected = errors.New("atomic batch rejected")

// MaxBatchOps is the upper bound the backing platform imposes on a single
// atomic batch.
const MaxBatchOps = 500

type WriteKind string

const (
	WriteDelete WriteKind = "delete"
	WriteUpdate WriteKind = "update"
)

// WriteOp is one mutation inside a batch. Update ops carry the fields to set
// in Set; delete ops carry only the target.
type WriteOp struct {
	Kind       WriteKind
	Collection string
	ID         string
	Set        bson.M
}

// Store is the document-store contract the services consume.
//
// Find filters support Mongo semantics for the subset the services use:
// top-level and dotted-path equality, $in over string ids, and equality
// against array fields meaning "array contains".
type Store interface {
	Get(ctx context.Context, collection, id string) (bson.M, error)
	Find(ctx context.Context, collection string, filter bson.M) ([]bson.M, error)
	Insert(ctx context.Context, collection string, doc bson.M) error
	Update(ctx context.Context, collection, id string, set bson.M) error
	Delete(ctx context.Context, collection, id string) error

	// ApplyBatch commits all ops or none. A rejection (size bound, backend
	// refusal) is reported as ErrBatchRejected.
	ApplyBatch(ctx context.Context, ops []WriteOp) error
}

// ToDoc converts a tagged struct into the bson.M shape the Store works with.
func ToDoc(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return doc, nil
}

// Decode maps a raw document back onto a tagged struct.
func Decode(doc bson.M, out interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}
