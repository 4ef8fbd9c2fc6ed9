package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStore implements Store on top of a mongo database handle. Batches run
// inside a session transaction so the commit is all-or-nothing.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

var _ Store = (*MongoStore)(nil)

func (s *MongoStore) Get(ctx context.Context, collection, id string) (bson.M, error) {
	var doc bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

func (s *MongoStore) Find(ctx context.Context, collection string, filter bson.M) ([]bson.M, error) {
	cursor, err := s.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer cursor.Close(ctx)
	var docs []bson.M
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, cursor.Err()
}

func (s *MongoStore) Insert(ctx context.Context, collection string, doc bson.M) error {
	_, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", collection, err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, set bson.M) error {
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) ApplyBatch(ctx context.Context, ops []WriteOp) error {
	if len(ops) > MaxBatchOps {
		return fmt.Errorf("%w: %d ops exceeds limit of %d", ErrBatchRejected, len(ops), MaxBatchOps)
	}
	session, err := s.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("%w: start session: %v", ErrBatchRejected, err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, op := range ops {
			var opErr error
			switch op.Kind {
			case WriteDelete:
				_, opErr = s.db.Collection(op.Collection).DeleteOne(sc, bson.M{"_id": op.ID})
			case WriteUpdate:
				_, opErr = s.db.Collection(op.Collection).UpdateOne(sc, bson.M{"_id": op.ID}, bson.M{"$set": op.Set})
			default:
				opErr = fmt.Errorf("unknown write kind %q", op.Kind)
			}
			if opErr != nil {
				return nil, opErr
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBatchRejected, err)
	}
	return nil
}
