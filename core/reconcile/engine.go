package reconcile

import (
	"fmt"
	"sort"
	"strings"
)

// Reconcile diffs the source map against the store map and returns the plan
// that converges the store to the source. It is a pure function of its
// inputs: identical maps always yield identical plans.
//
// Stored keys the source no longer lists are deleted. Keys present on both
// sides whose size or timestamp differ are deleted and re-uploaded. Source
// keys missing from the store are uploaded. An empty source map therefore
// plans a full teardown.
func Reconcile(source map[string]SourceRecord, store map[string]StoredObject) *Plan {
	plan := &Plan{}
	plan.Summary.SourceItems = len(source)
	plan.Summary.StoreItems = len(store)

	var deletes, uploads []Action

	for _, key := range sortedKeys(store) {
		if _, listed := source[key]; listed {
			continue
		}
		deletes = append(deletes, Action{
			Type:   ActionDelete,
			Key:    key,
			Reason: "withdrawn from source",
		})
		plan.Summary.Withdrawn++
	}

	for _, key := range sortedKeys(source) {
		record := source[key]
		obj, stored := store[key]
		if !stored {
			uploads = append(uploads, uploadAction(record, "new in source"))
			plan.Summary.New++
			continue
		}

		mismatch := Compare(record, obj)
		if len(mismatch) == 0 {
			plan.Summary.Unchanged++
			continue
		}

		reason := "changed: " + strings.Join(mismatch, "; ")
		deletes = append(deletes, Action{Type: ActionDelete, Key: key, Reason: reason})
		uploads = append(uploads, uploadAction(record, reason))
		plan.Summary.Changed++
	}

	// Withdrawn and replaced keys share one delete group ordered by key.
	sort.SliceStable(deletes, func(i, j int) bool {
		return deletes[i].Key < deletes[j].Key
	})

	plan.Actions = make([]Action, 0, len(deletes)+len(uploads))
	plan.Actions = append(plan.Actions, deletes...)
	plan.Actions = append(plan.Actions, uploads...)
	plan.Summary.DeleteActions = len(deletes)
	plan.Summary.UploadActions = len(uploads)

	return plan
}

// Compare returns a description of every comparable field that differs
// between a source record and a stored object, e.g. "size: source=100 store=90".
// An empty result means the object is up to date.
func Compare(record SourceRecord, obj StoredObject) []string {
	var mismatch []string

	if !sizesEqual(record.Size, obj.EffectiveSize()) {
		mismatch = append(mismatch, fmt.Sprintf("size: source=%s store=%s",
			formatSize(record.Size), formatSize(obj.EffectiveSize())))
	}

	// Unknown on both sides is equal; a known value on either side is more
	// authoritative than unknown and forces a re-upload.
	if stored := obj.LastModified(); record.LastModified != stored {
		mismatch = append(mismatch, fmt.Sprintf("last_modified: source=%s store=%s",
			formatTimestamp(record.LastModified), formatTimestamp(stored)))
	}

	return mismatch
}

func uploadAction(record SourceRecord, reason string) Action {
	rec := record
	return Action{
		Type:   ActionUpload,
		Key:    record.Key,
		Reason: reason,
		Record: &rec,
	}
}

func sizesEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func formatSize(size *int64) string {
	if size == nil {
		return MetaUnknown
	}
	return fmt.Sprintf("%d", *size)
}

func formatTimestamp(ts string) string {
	if ts == "" {
		return MetaUnknown
	}
	return ts
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
