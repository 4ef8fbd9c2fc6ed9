package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"
)

func TestMemoryStoreCRUD(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	_, err := st.Get(ctx, "things", "t1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Insert(ctx, "things", bson.M{"_id": "t1", "color": "red"}))
	doc, err := st.Get(ctx, "things", "t1")
	require.NoError(t, err)
	assert.Equal(t, "red", doc["color"])

	require.NoError(t, st.Update(ctx, "things", "t1", bson.M{"color": "blue"}))
	doc, err = st.Get(ctx, "things", "t1")
	require.NoError(t, err)
	assert.Equal(t, "blue", doc["color"])

	assert.ErrorIs(t, st.Update(ctx, "things", "missing", bson.M{"color": "blue"}), ErrNotFound)

	require.NoError(t, st.Delete(ctx, "things", "t1"))
	_, err = st.Get(ctx, "things", "t1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreInsertRequiresID(t *testing.T) {
	st := NewMemoryStore()
	assert.Error(t, st.Insert(context.Background(), "things", bson.M{"color": "red"}))
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.Insert(ctx, "things", bson.M{"_id": "t1", "tags": []string{"a"}}))

	doc, err := st.Get(ctx, "things", "t1")
	require.NoError(t, err)
	doc["color"] = "mutated"

	fresh, err := st.Get(ctx, "things", "t1")
	require.NoError(t, err)
	assert.NotContains(t, fresh, "color")
}

func TestMemoryStoreFindFilters(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.Insert(ctx, "apps", bson.M{"_id": "a1", "propertyId": "p1", "status": "pending"}))
	require.NoError(t, st.Insert(ctx, "apps", bson.M{"_id": "a2", "propertyId": "p2", "status": "pending"}))
	require.NoError(t, st.Insert(ctx, "apps", bson.M{"_id": "a3", "metadata": bson.M{"propertyId": "p1"}}))
	require.NoError(t, st.Insert(ctx, "apps", bson.M{"_id": "a4", "listingId": "l1"}))
	require.NoError(t, st.Insert(ctx, "saved", bson.M{"_id": "s1", "propertyIds": []string{"p1", "p2"}}))
	require.NoError(t, st.Insert(ctx, "saved", bson.M{"_id": "s2", "propertyIds": []string{"p3"}}))

	docs, err := st.Find(ctx, "apps", bson.M{"propertyId": "p1"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a1", docs[0]["_id"])

	// Dotted-path equality reaches into nested documents.
	docs, err = st.Find(ctx, "apps", bson.M{"metadata.propertyId": "p1"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a3", docs[0]["_id"])

	// $in over ids.
	docs, err = st.Find(ctx, "apps", bson.M{"listingId": bson.M{"$in": []string{"l1", "l2"}}})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a4", docs[0]["_id"])

	// Equality against an array field means "contains".
	docs, err = st.Find(ctx, "saved", bson.M{"propertyIds": "p1"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "s1", docs[0]["_id"])

	// Empty filter matches everything.
	docs, err = st.Find(ctx, "apps", bson.M{})
	require.NoError(t, err)
	assert.Len(t, docs, 4)

	// Missing field never matches.
	docs, err = st.Find(ctx, "apps", bson.M{"nope": "x"})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestMemoryStoreConcurrentReadsOnMissingCollections(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.Insert(ctx, "things", bson.M{"_id": "t1", "color": "red"}))

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("coll-%d", i)
		g.Go(func() error {
			docs, err := st.Find(ctx, name, bson.M{"color": "red"})
			if err != nil {
				return err
			}
			if len(docs) != 0 {
				return fmt.Errorf("found %d docs in empty collection %s", len(docs), name)
			}
			_, err = st.Get(ctx, name, "t1")
			if !errors.Is(err, ErrNotFound) {
				return fmt.Errorf("get from %s: expected not found, got %v", name, err)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	// Reading a collection must not create it.
	assert.Len(t, st.collections, 1)
}

func TestMemoryStoreApplyBatch(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.Insert(ctx, "units", bson.M{"_id": "u1"}))
	require.NoError(t, st.Insert(ctx, "saved", bson.M{"_id": "s1", "propertyIds": []string{"p1", "p2"}}))

	err := st.ApplyBatch(ctx, []WriteOp{
		{Kind: WriteDelete, Collection: "units", ID: "u1"},
		{Kind: WriteUpdate, Collection: "saved", ID: "s1", Set: bson.M{"propertyIds": []string{"p2"}}},
	})
	require.NoError(t, err)

	_, err = st.Get(ctx, "units", "u1")
	assert.ErrorIs(t, err, ErrNotFound)
	doc, err := st.Get(ctx, "saved", "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, doc["propertyIds"])
}

func TestMemoryStoreApplyBatchSizeBound(t *testing.T) {
	st := NewMemoryStore()
	ops := make([]WriteOp, MaxBatchOps+1)
	for i := range ops {
		ops[i] = WriteOp{Kind: WriteDelete, Collection: "units", ID: fmt.Sprintf("u%d", i)}
	}
	err := st.ApplyBatch(context.Background(), ops)
	assert.ErrorIs(t, err, ErrBatchRejected)
}

func TestDocRoundTrip(t *testing.T) {
	type widget struct {
		ID   string `bson:"_id"`
		Name string `bson:"name"`
	}
	doc, err := ToDoc(&widget{ID: "w1", Name: "sprocket"})
	require.NoError(t, err)
	assert.Equal(t, "w1", doc["_id"])

	var out widget
	require.NoError(t, Decode(doc, &out))
	assert.Equal(t, "sprocket", out.Name)
}
