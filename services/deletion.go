package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/Leizel2402/cocoon-platform-sub000/models"
	"github.com/Leizel2402/cocoon-platform-sub000/store"
)

// DeletionRequest identifies the property to remove and the landlord asking.
// Name and address are carried for notification rendering so the phase after
// the property document is gone still has them.
type DeletionRequest struct {
	PropertyID      string
	PropertyName    string
	PropertyAddress string
	LandlordID      string
}

// AffectedParty is a user who must be notified because a document referencing
// the deleted property named them.
type AffectedParty struct {
	UserID            string                   `json:"userId"`
	Source            string                   `json:"source"` // application | maintenance | subscription
	DocumentID        string                   `json:"documentId"`
	ApplicationStatus models.ApplicationStatus `json:"applicationStatus,omitempty"`
}

// DeletionResult reports what the cascade did. Warnings carry every non-fatal
// failure (fallback write misses, notification dispatch errors); they never
// flip the overall outcome.
type DeletionResult struct {
	DeletedCounts   map[string]int  `json:"deletedCounts"`
	UpdatedCounts   map[string]int  `json:"updatedCounts"`
	AffectedParties []AffectedParty `json:"affectedParties"`
	Warnings        []string        `json:"warnings,omitempty"`
}

// Ordered fallback chains for resolving the acting user id out of raw
// documents. Historical records are inconsistent about the field name, so the
// legacy-shape knowledge lives here and nowhere else.
var (
	applicationUserFields  = []string{"userId", "applicantId", "submittedBy"}
	maintenanceUserFields  = []string{"tenantId", "userId", "submittedBy"}
	subscriptionUserFields = []string{"userId", "subscriberId", "email"}
)

// PropertyDeletionService is the single authorized path to remove a property
// and everything referencing it.
type PropertyDeletionService struct {
	store    store.Store
	notifier *NotificationService
	logger   *slog.Logger
	now      func() time.Time
}

func NewPropertyDeletionService(st store.Store, notifier *NotificationService, logger *slog.Logger) *PropertyDeletionService {
	return &PropertyDeletionService{
		store:    st,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// DeleteProperty runs the full cascade: ownership check, concurrent
// discovery, one atomic batch (with a sequential fallback if the store
// rejects the batch), then notification fan-out. Discovery and ownership
// failures abort with nothing mutated; notification failures only accumulate
// as warnings.
func (s *PropertyDeletionService) DeleteProperty(ctx context.Context, req DeletionRequest) (*DeletionResult, error) {
	propDoc, err := s.store.Get(ctx, CollProperties, req.PropertyID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: property %s", ErrNotFound, req.PropertyID)
	}
	if err != nil {
		return nil, err
	}
	owner, _ := propDoc["landlordId"].(string)
	if owner != req.LandlordID {
		return nil, fmt.Errorf("%w: landlord %s does not own property %s (owner %s)",
			ErrUnauthorized, req.LandlordID, req.PropertyID, owner)
	}
	if req.PropertyName == "" {
		req.PropertyName, _ = propDoc["name"].(string)
	}
	if req.PropertyAddress == "" {
		req.PropertyAddress, _ = propDoc["address"].(string)
	}

	disc, err := s.discover(ctx, req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("cascade discovery for property %s: %w", req.PropertyID, err)
	}

	parties := extractAffectedParties(disc)
	result := &DeletionResult{
		DeletedCounts:   map[string]int{},
		UpdatedCounts:   map[string]int{},
		AffectedParties: parties,
	}

	ops := s.buildOps(req.PropertyID, disc, result)

	applied, warnings, err := s.commit(ctx, ops)
	result.Warnings = append(result.Warnings, warnings...)
	if err != nil {
		return nil, err
	}
	s.logger.Info("property cascade committed",
		"propertyId", req.PropertyID, "ops", len(ops), "applied", applied)

	s.notifyAffectedParties(ctx, req, parties, result)

	return result, nil
}

// discovered holds the raw documents gathered in the fan-out phase.
type discovered struct {
	units           []bson.M
	listings        []bson.M
	applications    []bson.M
	maintenance     []bson.M
	savedProperties []bson.M
	savedSearches   []bson.M
	subscriptions   []bson.M
}

func (s *PropertyDeletionService) discover(ctx context.Context, propertyID string) (*discovered, error) {
	d := &discovered{}
	byProperty := bson.M{"propertyId": propertyID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.units, err = s.store.Find(gctx, CollUnits, byProperty)
		return
	})
	g.Go(func() (err error) {
		d.listings, err = s.store.Find(gctx, CollListings, byProperty)
		return
	})
	g.Go(func() (err error) {
		d.maintenance, err = s.store.Find(gctx, CollMaintenanceRequests, byProperty)
		return
	})
	g.Go(func() (err error) {
		d.subscriptions, err = s.store.Find(gctx, CollSubscriptions, byProperty)
		return
	})
	g.Go(func() (err error) {
		d.savedProperties, err = s.store.Find(gctx, CollSavedProperties, bson.M{"propertyIds": propertyID})
		return
	})
	g.Go(func() (err error) {
		d.savedSearches, err = s.store.Find(gctx, CollSavedSearches, bson.M{"propertyIds": propertyID})
		return
	})

	// Applications are queried under every reference shape historical records
	// used: the flat field and the nested metadata field here, the listing-id
	// shape after the listing ids are known.
	var appsFlat, appsNested []bson.M
	g.Go(func() (err error) {
		appsFlat, err = s.store.Find(gctx, CollApplications, bson.M{"propertyId": propertyID})
		return
	})
	g.Go(func() (err error) {
		appsNested, err = s.store.Find(gctx, CollApplications, bson.M{"metadata.propertyId": propertyID})
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var appsByListing []bson.M
	if ids := docIDs(d.listings); len(ids) > 0 {
		var err error
		appsByListing, err = s.store.Find(ctx, CollApplications, bson.M{"listingId": bson.M{"$in": ids}})
		if err != nil {
			return nil, err
		}
	}

	d.applications = dedupeByID(appsFlat, appsNested, appsByListing)
	return d, nil
}

func (s *PropertyDeletionService) buildOps(propertyID string, d *discovered, result *DeletionResult) []store.WriteOp {
	var ops []store.WriteOp
	addDeletes := func(collection, counter string, docs []bson.M) {
		for _, doc := range docs {
			id := docID(doc)
			if id == "" {
				continue
			}
			ops = append(ops, store.WriteOp{Kind: store.WriteDelete, Collection: collection, ID: id})
			result.DeletedCounts[counter]++
		}
	}
	addDeletes(CollUnits, "units", d.units)
	addDeletes(CollListings, "listings", d.listings)
	addDeletes(CollApplications, "applications", d.applications)
	addDeletes(CollMaintenanceRequests, "maintenanceRequests", d.maintenance)
	addDeletes(CollSubscriptions, "subscriptions", d.subscriptions)

	now := s.now()
	prune := func(collection, counter string, docs []bson.M) {
		for _, doc := range docs {
			id := docID(doc)
			if id == "" {
				continue
			}
			remaining := withoutID(doc["propertyIds"], propertyID)
			if len(remaining) == 0 {
				ops = append(ops, store.WriteOp{Kind: store.WriteDelete, Collection: collection, ID: id})
				result.DeletedCounts[counter]++
			} else {
				ops = append(ops, store.WriteOp{
					Kind:       store.WriteUpdate,
					Collection: collection,
					ID:         id,
					Set:        bson.M{"propertyIds": remaining, "updatedAt": now},
				})
				result.UpdatedCounts[counter]++
			}
		}
	}
	prune(CollSavedProperties, "savedProperties", d.savedProperties)
	prune(CollSavedSearches, "savedSearches", d.savedSearches)

	ops = append(ops, store.WriteOp{Kind: store.WriteDelete, Collection: CollProperties, ID: propertyID})
	result.DeletedCounts["properties"]++
	return ops
}

// commit tries the atomic batch first and degrades to per-document writes
// only when the store rejects the batch as a unit. The sequential path is a
// resilience fallback: individual misses become warnings, and only a fallback
// that applies nothing at all is fatal.
func (s *PropertyDeletionService) commit(ctx context.Context, ops []store.WriteOp) (int, []string, error) {
	var lastWarnings []string
	for _, strat := range []commitStrategy{atomicStrategy{s.store}, sequentialStrategy{s.store}} {
		applied, warnings, err := strat.commit(ctx, ops)
		if errors.Is(err, store.ErrBatchRejected) {
			s.logger.Warn("commit strategy rejected, degrading",
				"strategy", strat.name(), "ops", len(ops), "error", err)
			lastWarnings = warnings
			continue
		}
		return applied, warnings, err
	}
	err := fmt.Errorf("%w: batch and sequential fallback both failed for %d ops", ErrAtomicWriteFailed, len(ops))
	if len(lastWarnings) > 0 {
		err = fmt.Errorf("%w: %s", err, strings.Join(lastWarnings, "; "))
	}
	return 0, lastWarnings, err
}

type commitStrategy interface {
	name() string
	commit(ctx context.Context, ops []store.WriteOp) (applied int, warnings []string, err error)
}

type atomicStrategy struct{ store store.Store }

func (atomicStrategy) name() string { return "atomic" }

func (a atomicStrategy) commit(ctx context.Context, ops []store.WriteOp) (int, []string, error) {
	if err := a.store.ApplyBatch(ctx, ops); err != nil {
		return 0, nil, err
	}
	return len(ops), nil, nil
}

type sequentialStrategy struct{ store store.Store }

func (sequentialStrategy) name() string { return "sequential" }

func (f sequentialStrategy) commit(ctx context.Context, ops []store.WriteOp) (int, []string, error) {
	applied := 0
	var warnings []string
	for _, op := range ops {
		var err error
		switch op.Kind {
		case store.WriteDelete:
			err = f.store.Delete(ctx, op.Collection, op.ID)
		case store.WriteUpdate:
			err = f.store.Update(ctx, op.Collection, op.ID, op.Set)
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("fallback %s on %s/%s failed: %v", op.Kind, op.Collection, op.ID, err))
			continue
		}
		applied++
	}
	if applied == 0 && len(ops) > 0 {
		return 0, warnings, fmt.Errorf("%w: sequential fallback applied none of %d ops", store.ErrBatchRejected, len(ops))
	}
	return applied, warnings, nil
}

func (s *PropertyDeletionService) notifyAffectedParties(ctx context.Context, req DeletionRequest, parties []AffectedParty, result *DeletionResult) {
	for _, p := range parties {
		var err error
		switch p.Source {
		case "application":
			_, err = s.notifier.NotifyApplicationCancelled(ctx, p.UserID, p.ApplicationStatus,
				req.PropertyID, req.PropertyName, req.PropertyAddress)
		case "maintenance":
			err = s.notifier.Create(ctx, Event{
				Kind:            KindMaintenanceCancelled,
				UserID:          p.UserID,
				PropertyID:      req.PropertyID,
				PropertyName:    req.PropertyName,
				PropertyAddress: req.PropertyAddress,
				Reason:          "the property was removed by its owner",
			})
		case "subscription":
			err = s.notifier.Create(ctx, Event{
				Kind:            KindSubscriptionCancelled,
				UserID:          p.UserID,
				PropertyID:      req.PropertyID,
				PropertyName:    req.PropertyName,
				PropertyAddress: req.PropertyAddress,
			})
		}
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("notification to %s (%s %s) failed: %v", p.UserID, p.Source, p.DocumentID, err))
		}
	}
}

func extractAffectedParties(d *discovered) []AffectedParty {
	var parties []AffectedParty
	for _, doc := range d.applications {
		userID := firstStringField(doc, applicationUserFields...)
		if userID == "" {
			continue
		}
		status, _ := doc["status"].(string)
		parties = append(parties, AffectedParty{
			UserID:            userID,
			Source:            "application",
			DocumentID:        docID(doc),
			ApplicationStatus: models.ApplicationStatus(status),
		})
	}
	for _, doc := range d.maintenance {
		userID := firstStringField(doc, maintenanceUserFields...)
		if userID == "" {
			continue
		}
		parties = append(parties, AffectedParty{UserID: userID, Source: "maintenance", DocumentID: docID(doc)})
	}
	for _, doc := range d.subscriptions {
		userID := firstStringField(doc, subscriptionUserFields...)
		if userID == "" {
			continue
		}
		parties = append(parties, AffectedParty{UserID: userID, Source: "subscription", DocumentID: docID(doc)})
	}
	return parties
}

// firstStringField walks the candidate field names in order and returns the
// first non-empty string value.
func firstStringField(doc bson.M, fields ...string) string {
	for _, f := range fields {
		if v, ok := doc[f].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func docID(doc bson.M) string {
	id, _ := doc["_id"].(string)
	return id
}

func docIDs(docs []bson.M) []string {
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		if id := docID(doc); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// dedupeByID merges the overlapping application query results, keeping the
// first document seen for each id.
func dedupeByID(groups ...[]bson.M) []bson.M {
	seen := make(map[string]bool)
	var out []bson.M
	for _, group := range groups {
		for _, doc := range group {
			id := docID(doc)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, doc)
		}
	}
	return out
}

// withoutID returns the array's string elements minus the deleted id,
// tolerating every array representation the driver or a fake may hand back.
func withoutID(arr interface{}, dropID string) []string {
	var elems []interface{}
	switch t := arr.(type) {
	case primitive.A:
		elems = t
	case []interface{}:
		elems = t
	case []string:
		for _, v := range t {
			elems = append(elems, v)
		}
	}
	out := make([]string, 0, len(elems))
	for _, el := range elems {
		s, ok := el.(string)
		if !ok || s == dropID {
			continue
		}
		out = append(out, s)
	}
	return out
}
