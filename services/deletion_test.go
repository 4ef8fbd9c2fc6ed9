package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Leizel2402/cocoon-platform-sub000/models"
	"github.com/Leizel2402/cocoon-platform-sub000/store"
)

const (
	testPropertyID = "PROP2001"
	testLandlordID = "landlord-1"
)

func newDeletionFixture(t *testing.T) (*PropertyDeletionService, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	notifier := NewNotificationService(st, &fakeMailer{}, testLogger())
	svc := NewPropertyDeletionService(st, notifier, testLogger())
	return svc, st
}

func seedDoc(t *testing.T, st store.Store, collection string, doc bson.M) {
	t.Helper()
	require.NoError(t, st.Insert(context.Background(), collection, doc))
}

func seedProperty(t *testing.T, st store.Store) {
	t.Helper()
	seedDoc(t, st, CollProperties, bson.M{
		"_id":        testPropertyID,
		"landlordId": testLandlordID,
		"name":       "Elm Street Flats",
		"address":    "12 Elm St",
	})
}

// seedScenario builds the reference data set: two applications (pending and
// approved), one submitted maintenance request, one active subscription, plus
// a unit and a listing.
func seedScenario(t *testing.T, st store.Store) {
	t.Helper()
	seedProperty(t, st)
	seedDoc(t, st, CollUnits, bson.M{"_id": "unit-1", "propertyId": testPropertyID})
	seedDoc(t, st, CollListings, bson.M{"_id": "listing-1", "propertyId": testPropertyID, "unitId": "unit-1"})
	seedDoc(t, st, CollApplications, bson.M{
		"_id": "app-pending", "propertyId": testPropertyID, "userId": "prospect-1", "status": "pending",
	})
	seedDoc(t, st, CollApplications, bson.M{
		"_id": "app-approved", "propertyId": testPropertyID, "userId": "renter-1", "status": "approved",
	})
	seedDoc(t, st, CollMaintenanceRequests, bson.M{
		"_id": "maint-1", "propertyId": testPropertyID, "tenantId": "renter-1", "status": "submitted",
	})
	seedDoc(t, st, CollSubscriptions, bson.M{
		"_id": "sub-1", "propertyId": testPropertyID, "userId": "subscriber-1", "status": "active",
	})
}

func deletionReq() DeletionRequest {
	return DeletionRequest{PropertyID: testPropertyID, LandlordID: testLandlordID}
}

func TestDeletePropertyCascade(t *testing.T) {
	svc, st := newDeletionFixture(t)
	seedScenario(t, st)

	result, err := svc.DeleteProperty(context.Background(), deletionReq())
	require.NoError(t, err)

	assert.Equal(t, 1, result.DeletedCounts["properties"])
	assert.Equal(t, 1, result.DeletedCounts["units"])
	assert.Equal(t, 1, result.DeletedCounts["listings"])
	assert.Equal(t, 2, result.DeletedCounts["applications"])
	assert.Equal(t, 1, result.DeletedCounts["maintenanceRequests"])
	assert.Equal(t, 1, result.DeletedCounts["subscriptions"])
	assert.Empty(t, result.Warnings)

	// Nothing referencing the property survives.
	for _, coll := range []string{CollUnits, CollListings, CollMaintenanceRequests, CollSubscriptions} {
		docs, err := st.Find(context.Background(), coll, bson.M{"propertyId": testPropertyID})
		require.NoError(t, err)
		assert.Empty(t, docs, coll)
	}
	apps, err := st.Find(context.Background(), CollApplications, bson.M{"propertyId": testPropertyID})
	require.NoError(t, err)
	assert.Empty(t, apps)
	_, err = st.Get(context.Background(), CollProperties, testPropertyID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Notification arithmetic: non-rejected applications + maintenance +
	// subscriptions = 2 + 1 + 1.
	assert.Equal(t, 4, st.Count(CollNotifications))

	// The approved application's notification is the urgent tenant variant.
	docs, err := st.Find(context.Background(), CollNotifications, bson.M{"userId": "renter-1", "type": string(KindPropertyDeletedTenant)})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	var n models.Notification
	require.NoError(t, store.Decode(docs[0], &n))
	assert.True(t, n.ActionRequired)

	// The pending application's notification is informational.
	docs, err = st.Find(context.Background(), CollNotifications, bson.M{"userId": "prospect-1"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.NoError(t, store.Decode(docs[0], &n))
	assert.Equal(t, string(KindPropertyDeletedProspect), n.Type)
	assert.False(t, n.ActionRequired)
}

func TestDeletePropertySkipsRejectedApplications(t *testing.T) {
	svc, st := newDeletionFixture(t)
	seedProperty(t, st)
	seedDoc(t, st, CollApplications, bson.M{
		"_id": "app-rejected", "propertyId": testPropertyID, "userId": "prospect-2", "status": "rejected",
	})

	result, err := svc.DeleteProperty(context.Background(), deletionReq())
	require.NoError(t, err)

	assert.Equal(t, 1, result.DeletedCounts["applications"])
	assert.Equal(t, 0, st.Count(CollNotifications))
}

func TestDeletePropertyToleratesReferenceShapeDrift(t *testing.T) {
	svc, st := newDeletionFixture(t)
	seedProperty(t, st)
	seedDoc(t, st, CollListings, bson.M{"_id": "listing-1", "propertyId": testPropertyID})

	// Three historical reference shapes, one of them doubled across queries.
	seedDoc(t, st, CollApplications, bson.M{
		"_id": "app-flat", "propertyId": testPropertyID, "userId": "u1", "status": "pending",
	})
	seedDoc(t, st, CollApplications, bson.M{
		"_id":    "app-nested",
		"status": "pending",
		"userId": "u2",
		"metadata": bson.M{
			"propertyId":   testPropertyID,
			"propertyName": "Elm Street Flats",
		},
	})
	seedDoc(t, st, CollApplications, bson.M{
		"_id": "app-listing", "listingId": "listing-1", "applicantId": "u3", "status": "under_review",
	})
	// Matches both the flat and nested queries; must be counted once.
	seedDoc(t, st, CollApplications, bson.M{
		"_id":        "app-both",
		"status":     "pending",
		"userId":     "u4",
		"propertyId": testPropertyID,
		"metadata":   bson.M{"propertyId": testPropertyID},
	})

	result, err := svc.DeleteProperty(context.Background(), deletionReq())
	require.NoError(t, err)

	assert.Equal(t, 4, result.DeletedCounts["applications"])
	assert.Equal(t, 0, st.Count(CollApplications))

	// Every shape yielded an affected party via the fallback field chain.
	users := map[string]bool{}
	for _, p := range result.AffectedParties {
		if p.Source == "application" {
			users[p.UserID] = true
		}
	}
	assert.Equal(t, map[string]bool{"u1": true, "u2": true, "u3": true, "u4": true}, users)
}

func TestDeletePropertyPrunesSavedArrays(t *testing.T) {
	svc, st := newDeletionFixture(t)
	seedProperty(t, st)
	seedDoc(t, st, CollSavedProperties, bson.M{
		"_id": "saved-only", "userId": "u1", "propertyIds": []string{testPropertyID},
	})
	seedDoc(t, st, CollSavedProperties, bson.M{
		"_id": "saved-mixed", "userId": "u2", "propertyIds": []string{testPropertyID, "PROP3001"},
	})
	seedDoc(t, st, CollSavedSearches, bson.M{
		"_id": "search-mixed", "userId": "u3", "propertyIds": []string{"PROP3001", testPropertyID, "PROP4001"},
	})

	result, err := svc.DeleteProperty(context.Background(), deletionReq())
	require.NoError(t, err)

	assert.Equal(t, 1, result.DeletedCounts["savedProperties"])
	assert.Equal(t, 1, result.UpdatedCounts["savedProperties"])
	assert.Equal(t, 1, result.UpdatedCounts["savedSearches"])

	_, err = st.Get(context.Background(), CollSavedProperties, "saved-only")
	assert.ErrorIs(t, err, store.ErrNotFound)

	doc, err := st.Get(context.Background(), CollSavedProperties, "saved-mixed")
	require.NoError(t, err)
	var saved models.SavedProperty
	require.NoError(t, store.Decode(doc, &saved))
	assert.Equal(t, []string{"PROP3001"}, saved.PropertyIDs)

	doc, err = st.Get(context.Background(), CollSavedSearches, "search-mixed")
	require.NoError(t, err)
	var search models.SavedSearch
	require.NoError(t, store.Decode(doc, &search))
	assert.NotContains(t, search.PropertyIDs, testPropertyID)
	assert.Len(t, search.PropertyIDs, 2)
}

func TestDeletePropertyUnauthorized(t *testing.T) {
	svc, st := newDeletionFixture(t)
	seedScenario(t, st)

	_, err := svc.DeleteProperty(context.Background(), DeletionRequest{
		PropertyID: testPropertyID,
		LandlordID: "landlord-impostor",
	})
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Nothing was mutated anywhere.
	assert.Equal(t, 1, st.Count(CollProperties))
	assert.Equal(t, 1, st.Count(CollUnits))
	assert.Equal(t, 1, st.Count(CollListings))
	assert.Equal(t, 2, st.Count(CollApplications))
	assert.Equal(t, 1, st.Count(CollMaintenanceRequests))
	assert.Equal(t, 1, st.Count(CollSubscriptions))
	assert.Equal(t, 0, st.Count(CollNotifications))
}

func TestDeletePropertyIdempotence(t *testing.T) {
	svc, st := newDeletionFixture(t)
	seedProperty(t, st)

	_, err := svc.DeleteProperty(context.Background(), deletionReq())
	require.NoError(t, err)

	before := st.Count(CollNotifications)
	_, err = svc.DeleteProperty(context.Background(), deletionReq())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, st.Count(CollNotifications))
}

// rejectingBatchStore forces the atomic path to fail so the sequential
// fallback has to carry the cascade.
type rejectingBatchStore struct {
	*store.MemoryStore
}

func (s *rejectingBatchStore) ApplyBatch(ctx context.Context, ops []store.WriteOp) error {
	return fmt.Errorf("%w: simulated backend refusal", store.ErrBatchRejected)
}

func TestDeletePropertyFallsBackToSequential(t *testing.T) {
	mem := store.NewMemoryStore()
	st := &rejectingBatchStore{mem}
	notifier := NewNotificationService(st, &fakeMailer{}, testLogger())
	svc := NewPropertyDeletionService(st, notifier, testLogger())
	seedScenario(t, mem)

	result, err := svc.DeleteProperty(context.Background(), deletionReq())
	require.NoError(t, err)

	assert.Equal(t, 1, result.DeletedCounts["properties"])
	assert.Equal(t, 0, mem.Count(CollUnits))
	assert.Equal(t, 0, mem.Count(CollApplications))
	_, err = mem.Get(context.Background(), CollProperties, testPropertyID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// The fallback path still fans notifications out.
	assert.Equal(t, 4, mem.Count(CollNotifications))
}

func TestDeletePropertyNotificationFailureIsNonFatal(t *testing.T) {
	st := store.NewMemoryStore()
	notifier := NewNotificationService(&insertFailingStore{st}, &fakeMailer{}, testLogger())
	svc := NewPropertyDeletionService(st, notifier, testLogger())
	seedScenario(t, st)

	result, err := svc.DeleteProperty(context.Background(), deletionReq())
	require.NoError(t, err)
	assert.NotEmpty(t, result.Warnings)
	assert.Equal(t, 1, result.DeletedCounts["properties"])
}

// insertFailingStore makes every notification write fail while leaving the
// rest of the store intact.
type insertFailingStore struct {
	*store.MemoryStore
}

func (s *insertFailingStore) Insert(ctx context.Context, collection string, doc bson.M) error {
	if collection == CollNotifications {
		return fmt.Errorf("write quota exceeded")
	}
	return s.MemoryStore.Insert(ctx, collection, doc)
}

func TestWithoutID(t *testing.T) {
	assert.Equal(t, []string{"a", "c"}, withoutID([]string{"a", "b", "c"}, "b"))
	assert.Equal(t, []string{"a"}, withoutID([]interface{}{"a", "b"}, "b"))
	assert.Empty(t, withoutID([]string{"b"}, "b"))
	assert.Empty(t, withoutID(nil, "b"))
	assert.Empty(t, withoutID(42, "b"))
}

func TestFirstStringField(t *testing.T) {
	doc := bson.M{"applicantId": "u2", "submittedBy": "u3", "count": 7}
	assert.Equal(t, "u2", firstStringField(doc, "userId", "applicantId", "submittedBy"))
	assert.Equal(t, "u3", firstStringField(doc, "userId", "submittedBy"))
	assert.Equal(t, "", firstStringField(doc, "userId", "count"))
}

func TestSequentialStrategyPartialFailure(t *testing.T) {
	mem := store.NewMemoryStore()
	seedDoc(t, mem, CollUnits, bson.M{"_id": "unit-1", "propertyId": testPropertyID})

	strat := sequentialStrategy{store: &updateFailingStore{mem}}
	applied, warnings, err := strat.commit(context.Background(), []store.WriteOp{
		{Kind: store.WriteDelete, Collection: CollUnits, ID: "unit-1"},
		{Kind: store.WriteUpdate, Collection: CollSavedProperties, ID: "saved-1", Set: bson.M{"propertyIds": []string{}}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Len(t, warnings, 1)
}

type updateFailingStore struct {
	*store.MemoryStore
}

func (s *updateFailingStore) Update(ctx context.Context, collection, id string, set bson.M) error {
	return fmt.Errorf("update refused")
}

func TestCommitTotalFailureReportsPerOpDiagnostics(t *testing.T) {
	st := &downStore{store.NewMemoryStore()}
	notifier := NewNotificationService(st, &fakeMailer{}, testLogger())
	svc := NewPropertyDeletionService(st, notifier, testLogger())

	_, warnings, err := svc.commit(context.Background(), []store.WriteOp{
		{Kind: store.WriteDelete, Collection: CollUnits, ID: "unit-1"},
		{Kind: store.WriteUpdate, Collection: CollSavedProperties, ID: "saved-1", Set: bson.M{"propertyIds": []string{}}},
	})
	require.ErrorIs(t, err, ErrAtomicWriteFailed)
	// The sequential pass's per-op failures survive into the error and the
	// returned warnings, not just an op count.
	assert.Contains(t, err.Error(), "units/unit-1")
	assert.Contains(t, err.Error(), "savedProperties/saved-1")
	assert.Len(t, warnings, 2)
}

// downStore refuses every write so both commit strategies fail.
type downStore struct {
	*store.MemoryStore
}

func (s *downStore) ApplyBatch(ctx context.Context, ops []store.WriteOp) error {
	return fmt.Errorf("%w: backend unavailable", store.ErrBatchRejected)
}

func (s *downStore) Delete(ctx context.Context, collection, id string) error {
	return fmt.Errorf("backend unavailable")
}

func (s *downStore) Update(ctx context.Context, collection, id string, set bson.M) error {
	return fmt.Errorf("backend unavailable")
}
