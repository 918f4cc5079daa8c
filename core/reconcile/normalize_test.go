package reconcile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNormalizeTimestamp(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"Empty", "", "", true},
		{"Whitespace", "   ", "", true},
		{"ISO without zone", "2024-01-05T08:30:00", "2024-01-05T08:30:00", true},
		{"ISO with fraction", "2024-01-05T08:30:00.250", "2024-01-05T08:30:00", true},
		{"RFC3339 UTC", "2024-01-05T08:30:00Z", "2024-01-05T08:30:00", true},
		{"RFC3339 offset", "2024-01-05T10:30:00+02:00", "2024-01-05T08:30:00", true},
		{"Space separated", "2024-01-05 08:30:00", "2024-01-05T08:30:00", true},
		{"Listing form PM", "1/5/2024 8:30 PM", "2024-01-05T20:30:00", true},
		{"Listing form lowercase", "12/31/2023 11:05 am", "2023-12-31T11:05:00", true},
		{"Garbage", "yesterday", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeTimestamp(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestCanonicalMetaKey(t *testing.T) {
	assert.Equal(t, "source-last-modified", CanonicalMetaKey("X-Amz-Meta-Source-Last-Modified"))
	assert.Equal(t, "source-last-modified", CanonicalMetaKey("source_last_modified"))
	assert.Equal(t, "file-size", CanonicalMetaKey("File_Size"))
}

func TestNormalizer_KeyFor(t *testing.T) {
	n := &Normalizer{Prefix: "bls_data/"}

	key, err := n.KeyFor(" pr.data.0.Current ")
	require.NoError(t, err)
	assert.Equal(t, "bls_data/pr.data.0.Current", key)

	key, err = n.KeyFor("/pub/time.series/pr/pr.series")
	require.NoError(t, err)
	assert.Equal(t, "bls_data/pr.series", key)

	for _, bad := range []string{"", "  ", "/", "..", "./"} {
		_, err := n.KeyFor(bad)
		assert.ErrorIs(t, err, ErrMalformedRecord, "input %q", bad)
	}
}

// TestNormalizeSource_FirstValidWins tests that duplicates never replace an earlier record.
func TestNormalizeSource_FirstValidWins(t *testing.T) {
	n := &Normalizer{Prefix: "bls_data/", Logger: zap.NewNop()}

	entries := []RawEntry{
		{FileName: "pr.txt", Link: "/pub/pr.txt", Size: size(10), LastModified: "1/5/2024 8:30 AM"},
		{FileName: "", Link: "/pub/broken"},
		{FileName: "pr.txt", Link: "/pub/other/pr.txt", Size: size(99)},
		{FileName: "nolink.txt", Link: "  "},
		{FileName: "b.txt", Link: "/pub/b.txt", LastModified: "not a date"},
		{FileName: "neg.txt", Link: "/pub/neg.txt", Size: size(-1)},
	}

	out, anomalies, err := n.NormalizeSource(entries)
	require.NoError(t, err)

	require.Len(t, out, 3)
	first := out["bls_data/pr.txt"]
	assert.Equal(t, "/pub/pr.txt", first.FetchRef)
	assert.Equal(t, int64(10), *first.Size)
	assert.Equal(t, "2024-01-05T08:30:00", first.LastModified)

	assert.Equal(t, "", out["bls_data/b.txt"].LastModified)
	assert.Nil(t, out["bls_data/neg.txt"].Size)

	kinds := map[AnomalyKind]int{}
	for _, a := range anomalies {
		kinds[a.Kind]++
	}
	assert.Equal(t, 2, kinds[AnomalyMalformed])
	assert.Equal(t, 1, kinds[AnomalyDuplicate])
	assert.Equal(t, 2, kinds[AnomalyAmbiguous])

	for _, a := range anomalies {
		if a.Kind == AnomalyDuplicate {
			assert.Equal(t, "bls_data/pr.txt", a.Key)
			assert.Equal(t, 2, a.Index)
		}
	}
}

// TestNormalizeSource_InvalidInput tests the structural failure rules.
func TestNormalizeSource_InvalidInput(t *testing.T) {
	n := &Normalizer{Prefix: "bls_data/"}

	out, anomalies, err := n.NormalizeSource(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, anomalies)

	_, anomalies, err = n.NormalizeSource([]RawEntry{{}, {FileName: "x"}})
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Len(t, anomalies, 2)
}

// TestNormalizeSource_IgnoredKeyConverges tests that a listed file named like
// the generated index page never enters the plan.
func TestNormalizeSource_IgnoredKeyConverges(t *testing.T) {
	n := &Normalizer{Prefix: "bls_data/", Ignore: []string{"bls_data/index.html"}}

	entries := []RawEntry{
		{FileName: "index.html", Link: "/pub/index.html", Size: size(10), LastModified: "1/5/2024 8:30 AM"},
		{FileName: "a.txt", Link: "/pub/a.txt", Size: size(3), LastModified: "1/5/2024 8:30 AM"},
	}
	objects := []RawObject{
		{Key: "bls_data/index.html", Size: 10, Metadata: map[string]string{
			MetaSourceSize:         "10",
			MetaSourceLastModified: "2024-01-05T08:30:00",
		}},
		{Key: "bls_data/a.txt", Size: 3, Metadata: map[string]string{
			MetaSourceSize:         "3",
			MetaSourceLastModified: "2024-01-05T08:30:00",
		}},
	}

	out, anomalies, err := n.NormalizeSource(entries)
	require.NoError(t, err)
	assert.NotContains(t, out, "bls_data/index.html")
	require.Len(t, anomalies, 1)
	assert.Equal(t, AnomalyReserved, anomalies[0].Kind)
	assert.Equal(t, "bls_data/index.html", anomalies[0].Key)
	assert.Equal(t, 0, anomalies[0].Index)

	for run := 0; run < 2; run++ {
		plan, _, err := ReconcileWithPlan(n, entries, objects)
		require.NoError(t, err)
		assert.Empty(t, plan.Actions, "run %d", run)
		assert.Equal(t, 1, plan.Summary.Unchanged)
	}
}

func TestNormalizeStore(t *testing.T) {
	n := &Normalizer{Prefix: "bls_data/", Ignore: []string{"bls_data/index.html"}}

	objects := []RawObject{
		{Key: "bls_data/", Size: 0},
		{Key: "bls_data/index.html", Size: 500},
		{Key: "datausa/datausa_population.json", Size: 10},
		{Key: "bls_data/a.txt", Size: 10, Metadata: map[string]string{
			"X-Amz-Meta-Source-Last-Modified": "2024-01-05T08:30:00",
			"Source-Size":                     "12",
		}},
		{Key: "bls_data/legacy.txt", Size: 7, Metadata: map[string]string{
			"source_last_modified": "2023-02-01T00:00:00",
			"file_size":            "7",
		}},
		{Key: "bls_data/a.txt", Size: 99},
		{Key: "", Size: 1},
		{Key: "bls_data/bad-ts.txt", Size: 1, Metadata: map[string]string{"source-last-modified": "??"}},
	}

	out, anomalies, err := n.NormalizeStore(objects)
	require.NoError(t, err)

	require.Len(t, out, 3)
	a := out["bls_data/a.txt"]
	assert.Equal(t, int64(10), a.Size)
	assert.Equal(t, int64(12), *a.EffectiveSize())
	assert.Equal(t, "2024-01-05T08:30:00", a.LastModified())

	legacy := out["bls_data/legacy.txt"]
	assert.Equal(t, int64(7), *legacy.EffectiveSize())
	assert.Equal(t, "2023-02-01T00:00:00", legacy.LastModified())

	assert.Equal(t, "", out["bls_data/bad-ts.txt"].LastModified())

	kinds := map[AnomalyKind]int{}
	for _, a := range anomalies {
		kinds[a.Kind]++
	}
	assert.Equal(t, 1, kinds[AnomalyDuplicate])
	assert.Equal(t, 1, kinds[AnomalyMalformed])
	assert.Equal(t, 1, kinds[AnomalyAmbiguous])
}

func TestNormalizeStore_InvalidInput(t *testing.T) {
	n := &Normalizer{Prefix: "bls_data/"}

	_, _, err := n.NormalizeStore([]RawObject{{Key: ""}, {Key: " "}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	out, _, err := n.NormalizeStore(nil)
	assert.NoError(t, err)
	assert.Empty(t, out)
}

func TestReconcileWithPlan(t *testing.T) {
	n := &Normalizer{Prefix: "bls_data/"}

	plan, anomalies, err := ReconcileWithPlan(n,
		[]RawEntry{{FileName: "a.txt", Link: "/pub/a.txt", Size: size(3)}},
		[]RawObject{{Key: "bls_data/old.txt", Size: 1}},
	)
	require.NoError(t, err)
	assert.Empty(t, anomalies)
	assert.Equal(t, []string{"delete:bls_data/old.txt", "upload:bls_data/a.txt"}, actionList(plan))

	_, _, err = ReconcileWithPlan(n, []RawEntry{{}}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
