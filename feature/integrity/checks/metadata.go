package checks

import (
	"context"
	"strings"

	"listing-mirror/core/reconcile"
	"listing-mirror/core/storage"
)

// MetadataReport lists mirrored objects that lack the metadata a sync
// compares against. Such objects are replaced on the next run.
type MetadataReport struct {
	Checked             int      `json:"checked"`
	MissingSize         []string `json:"missing_size"`
	MissingLastModified []string `json:"missing_last_modified"`
}

// Healthy reports whether every object carries both metadata fields.
func (r *MetadataReport) Healthy() bool {
	return len(r.MissingSize) == 0 && len(r.MissingLastModified) == 0
}

// CheckMetadata inspects every object under prefix, skipping folder markers
// and the keys in ignore.
func CheckMetadata(ctx context.Context, client storage.Client, bucket, prefix string, ignore []string) (*MetadataReport, error) {
	objects, err := storage.ListWithMetadata(ctx, client, bucket, prefix)
	if err != nil {
		return nil, err
	}

	skip := make(map[string]bool, len(ignore))
	for _, key := range ignore {
		skip[key] = true
	}

	report := &MetadataReport{MissingSize: []string{}, MissingLastModified: []string{}}
	for _, obj := range objects {
		if skip[obj.Key] || strings.HasSuffix(obj.Key, "/") {
			continue
		}
		report.Checked++

		meta := make(map[string]string, len(obj.UserMetadata))
		for k, v := range obj.UserMetadata {
			meta[reconcile.CanonicalMetaKey(k)] = v
		}

		if _, ok := meta[reconcile.MetaSourceSize]; !ok {
			if _, legacy := meta["file-size"]; !legacy {
				report.MissingSize = append(report.MissingSize, obj.Key)
			}
		}
		if _, ok := meta[reconcile.MetaSourceLastModified]; !ok {
			report.MissingLastModified = append(report.MissingLastModified, obj.Key)
		}
	}

	return report, nil
}
