package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func size(n int64) *int64 {
	return &n
}

func src(key string, sz *int64, ts string) SourceRecord {
	return SourceRecord{Key: key, Size: sz, LastModified: ts, FetchRef: "/pub/" + key}
}

func stored(key string, physical int64, meta map[string]string) StoredObject {
	if meta == nil {
		meta = map[string]string{}
	}
	return StoredObject{Key: key, Size: physical, Metadata: meta}
}

func actionList(plan *Plan) []string {
	out := make([]string, 0, len(plan.Actions))
	for _, a := range plan.Actions {
		out = append(out, string(a.Type)+":"+a.Key)
	}
	return out
}

// TestReconcile_EmptySourceTearsDown tests that an empty listing deletes every stored key in order.
func TestReconcile_EmptySourceTearsDown(t *testing.T) {
	store := map[string]StoredObject{
		"k2": stored("k2", 1, nil),
		"k1": stored("k1", 1, nil),
	}

	plan := Reconcile(map[string]SourceRecord{}, store)

	assert.Equal(t, []string{"delete:k1", "delete:k2"}, actionList(plan))
	assert.Equal(t, 2, plan.Summary.Withdrawn)
	assert.Equal(t, 0, plan.Summary.UploadActions)
}

// TestReconcile_EmptyStoreUploadsAll tests that an empty store yields a full upload plan.
func TestReconcile_EmptyStoreUploadsAll(t *testing.T) {
	source := map[string]SourceRecord{
		"b": src("b", size(2), ""),
		"a": src("a", size(1), ""),
	}

	plan := Reconcile(source, map[string]StoredObject{})

	assert.Equal(t, []string{"upload:a", "upload:b"}, actionList(plan))
	require.NotNil(t, plan.Actions[0].Record)
	assert.Equal(t, "/pub/a", plan.Actions[0].Record.FetchRef)
	assert.Equal(t, 2, plan.Summary.New)
}

// TestReconcile_ChangedSizeReplaces tests that a size change plans a delete followed by an upload.
func TestReconcile_ChangedSizeReplaces(t *testing.T) {
	source := map[string]SourceRecord{"a": src("a", size(100), "")}
	store := map[string]StoredObject{"a": stored("a", 90, nil)}

	plan := Reconcile(source, store)

	assert.Equal(t, []string{"delete:a", "upload:a"}, actionList(plan))
	assert.Contains(t, plan.Actions[0].Reason, "size: source=100 store=90")
	assert.Equal(t, 1, plan.Summary.Changed)
}

// TestReconcile_Scenarios tests the comparison rules for keys present on both sides.
func TestReconcile_Scenarios(t *testing.T) {
	tests := []struct {
		name    string
		record  SourceRecord
		object  StoredObject
		changed bool
	}{
		{
			name:   "unknown timestamps with equal sizes",
			record: src("a", size(10), ""),
			object: stored("a", 10, nil),
		},
		{
			name:    "known source timestamp against unknown store",
			record:  src("a", size(10), "2024-01-05T08:30:00"),
			object:  stored("a", 10, nil),
			changed: true,
		},
		{
			name:    "unknown source timestamp against known store",
			record:  src("a", size(10), ""),
			object:  stored("a", 10, map[string]string{MetaSourceLastModified: "2024-01-05T08:30:00"}),
			changed: true,
		},
		{
			name:   "equal timestamps",
			record: src("a", size(10), "2024-01-05T08:30:00"),
			object: stored("a", 10, map[string]string{MetaSourceLastModified: "2024-01-05T08:30:00"}),
		},
		{
			name:    "different timestamps",
			record:  src("a", size(10), "2024-01-06T08:30:00"),
			object:  stored("a", 10, map[string]string{MetaSourceLastModified: "2024-01-05T08:30:00"}),
			changed: true,
		},
		{
			name:   "declared size overrides physical size",
			record: src("a", size(100), ""),
			object: stored("a", 64, map[string]string{MetaSourceSize: "100"}),
		},
		{
			name:    "truncated transfer detected through override",
			record:  src("a", size(64), ""),
			object:  stored("a", 64, map[string]string{MetaSourceSize: "100"}),
			changed: true,
		},
		{
			name:   "unknown size recorded on both sides",
			record: src("a", nil, ""),
			object: stored("a", 64, map[string]string{MetaSourceSize: MetaUnknown}),
		},
		{
			name:    "unknown source size against physical size",
			record:  src("a", nil, ""),
			object:  stored("a", 64, nil),
			changed: true,
		},
		{
			name:    "zero is not unknown",
			record:  src("a", size(0), ""),
			object:  stored("a", 0, map[string]string{MetaSourceSize: MetaUnknown}),
			changed: true,
		},
		{
			name:   "unparseable override falls back to physical size",
			record: src("a", size(64), ""),
			object: stored("a", 64, map[string]string{MetaSourceSize: "abc"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Reconcile(
				map[string]SourceRecord{"a": tt.record},
				map[string]StoredObject{"a": tt.object},
			)
			if tt.changed {
				assert.Equal(t, []string{"delete:a", "upload:a"}, actionList(plan))
			} else {
				assert.Empty(t, plan.Actions)
				assert.Equal(t, 1, plan.Summary.Unchanged)
			}
		})
	}
}

// TestReconcile_OrderingAndUniqueness tests group ordering, key ordering and delete-before-upload.
func TestReconcile_OrderingAndUniqueness(t *testing.T) {
	source := map[string]SourceRecord{
		"d": src("d", size(4), ""), // new
		"b": src("b", size(9), ""), // changed
		"c": src("c", size(3), ""), // unchanged
		"a": src("a", size(5), ""), // changed
	}
	store := map[string]StoredObject{
		"e": stored("e", 1, nil), // withdrawn
		"b": stored("b", 2, nil),
		"c": stored("c", 3, nil),
		"a": stored("a", 1, nil),
		"0": stored("0", 1, nil), // withdrawn
	}

	plan := Reconcile(source, store)

	assert.Equal(t, []string{
		"delete:0", "delete:a", "delete:b", "delete:e",
		"upload:a", "upload:b", "upload:d",
	}, actionList(plan))

	// Every key appears once per action type and deletes precede uploads.
	deleteAt := map[string]int{}
	uploadAt := map[string]int{}
	for i, a := range plan.Actions {
		switch a.Type {
		case ActionDelete:
			_, dup := deleteAt[a.Key]
			assert.False(t, dup, "duplicate delete for %s", a.Key)
			deleteAt[a.Key] = i
		case ActionUpload:
			_, dup := uploadAt[a.Key]
			assert.False(t, dup, "duplicate upload for %s", a.Key)
			uploadAt[a.Key] = i
		}
	}
	for key, u := range uploadAt {
		if d, ok := deleteAt[key]; ok {
			assert.Less(t, d, u, "delete for %s must precede its upload", key)
		}
	}

	assert.Equal(t, []string{"0", "a", "b", "d", "e"}, plan.Keys())
	assert.Equal(t, 2, plan.Summary.Withdrawn)
	assert.Equal(t, 2, plan.Summary.Changed)
	assert.Equal(t, 1, plan.Summary.New)
	assert.Equal(t, 1, plan.Summary.Unchanged)
	assert.Len(t, plan.Deletes(), 4)
	assert.Len(t, plan.Uploads(), 3)
}

// TestReconcile_Idempotent tests that identical inputs produce identical plans.
func TestReconcile_Idempotent(t *testing.T) {
	source := map[string]SourceRecord{}
	store := map[string]StoredObject{}
	for _, k := range []string{"x", "y", "z", "m", "n"} {
		source[k] = src(k, size(int64(len(k))), "2024-01-05T08:30:00")
		store[k+"-old"] = stored(k+"-old", 1, nil)
	}
	store["x"] = stored("x", 7, nil)

	first := Reconcile(source, store)
	second := Reconcile(source, store)

	assert.Equal(t, first, second)
}

func TestCompare(t *testing.T) {
	mismatch := Compare(
		src("a", size(100), "2024-01-05T08:30:00"),
		stored("a", 90, nil),
	)
	assert.Equal(t, []string{
		"size: source=100 store=90",
		"last_modified: source=2024-01-05T08:30:00 store=unknown",
	}, mismatch)
}
