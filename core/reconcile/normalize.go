package reconcile

import (
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
)

// timestampLayout is the canonical comparable form of a source timestamp.
const timestampLayout = "2006-01-02T15:04:05"

// zonedLayouts carry an offset and are converted to UTC.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

// localLayouts carry no zone and are kept as written.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04:05 PM",
}

// NormalizeTimestamp converts a raw timestamp into the canonical ISO-8601
// form. An empty input is a valid unknown and returns ("", true); an
// unreadable input returns ("", false).
func NormalizeTimestamp(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", true
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(timestampLayout), true
		}
	}
	upper := strings.ToUpper(raw)
	for _, layout := range localLayouts {
		if t, err := time.Parse(layout, upper); err == nil {
			return t.Format(timestampLayout), true
		}
	}
	return "", false
}

// CanonicalMetaKey lowercases a user metadata key, strips the S3 header
// prefix and treats underscores as dashes.
func CanonicalMetaKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.TrimPrefix(key, "x-amz-meta-")
	return strings.ReplaceAll(key, "_", "-")
}

// Normalizer turns raw listing entries and raw store objects into keyed,
// comparable maps.
type Normalizer struct {
	// Prefix is the namespace segment every mirrored key starts with
	// (e.g. "bls_data/").
	Prefix string

	// Ignore lists keys that are never reconciled, such as the generated
	// index page. Source records claiming one are dropped.
	Ignore []string

	// Logger receives anomaly warnings. Nil disables logging.
	Logger *zap.Logger
}

// KeyFor derives the comparison key for a remote file name.
func (n *Normalizer) KeyFor(fileName string) (string, error) {
	name := strings.TrimSpace(fileName)
	name = strings.Trim(name, "/")
	if name == "" {
		return "", fmt.Errorf("%w: empty file name", ErrMalformedRecord)
	}
	name = path.Base(name)
	if name == "." || name == ".." || name == "/" {
		return "", fmt.Errorf("%w: file name %q has no usable base", ErrMalformedRecord, fileName)
	}
	return n.Prefix + name, nil
}

// NormalizeSource builds the source map. The first valid record for a key
// wins; later duplicates and unusable records are reported as anomalies.
// A non-empty batch without a single valid record is ErrInvalidInput.
func (n *Normalizer) NormalizeSource(entries []RawEntry) (map[string]SourceRecord, []Anomaly, error) {
	out := make(map[string]SourceRecord, len(entries))
	var anomalies []Anomaly
	ignored := n.ignored()

	for i, entry := range entries {
		key, err := n.KeyFor(entry.FileName)
		if err != nil {
			anomalies = append(anomalies, n.anomaly(AnomalyMalformed, "", i, err.Error()))
			continue
		}
		if _, skip := ignored[key]; skip {
			anomalies = append(anomalies, n.anomaly(AnomalyReserved, key, i, "key is reserved for a generated object"))
			continue
		}

		ref := strings.TrimSpace(entry.Link)
		if ref == "" {
			anomalies = append(anomalies, n.anomaly(AnomalyMalformed, key, i,
				fmt.Sprintf("%v: no fetch reference", ErrMalformedRecord)))
			continue
		}

		if _, exists := out[key]; exists {
			anomalies = append(anomalies, n.anomaly(AnomalyDuplicate, key, i, "key already claimed by an earlier record"))
			continue
		}

		record := SourceRecord{Key: key, FetchRef: ref}

		if entry.Size != nil {
			if *entry.Size < 0 {
				anomalies = append(anomalies, n.anomaly(AnomalyAmbiguous, key, i,
					fmt.Sprintf("negative size %d compared as unknown", *entry.Size)))
			} else {
				size := *entry.Size
				record.Size = &size
			}
		}

		ts, ok := NormalizeTimestamp(entry.LastModified)
		if !ok {
			anomalies = append(anomalies, n.anomaly(AnomalyAmbiguous, key, i,
				fmt.Sprintf("unreadable timestamp %q compared as unknown", entry.LastModified)))
		}
		record.LastModified = ts

		out[key] = record
	}

	if len(entries) > 0 && len(out) == 0 {
		return nil, anomalies, fmt.Errorf("%w: none of %d source records is usable", ErrInvalidInput, len(entries))
	}

	return out, anomalies, nil
}

// NormalizeStore builds the store map from the inventory. Objects outside
// the prefix, directory markers and ignored keys are skipped silently. An
// inventory made only of keyless objects is ErrInvalidInput.
func (n *Normalizer) NormalizeStore(objects []RawObject) (map[string]StoredObject, []Anomaly, error) {
	out := make(map[string]StoredObject, len(objects))
	var anomalies []Anomaly
	malformed := 0
	ignored := n.ignored()

	for i, obj := range objects {
		key := strings.TrimSpace(obj.Key)
		if key == "" {
			anomalies = append(anomalies, n.anomaly(AnomalyMalformed, "", i, "store object without key"))
			malformed++
			continue
		}
		if !strings.HasPrefix(key, n.Prefix) || strings.HasSuffix(key, "/") {
			continue
		}
		if _, skip := ignored[key]; skip {
			continue
		}
		if _, exists := out[key]; exists {
			anomalies = append(anomalies, n.anomaly(AnomalyDuplicate, key, i, "store listed key twice"))
			continue
		}

		meta := make(map[string]string, len(obj.Metadata))
		for k, v := range obj.Metadata {
			meta[CanonicalMetaKey(k)] = v
		}

		if raw, ok := meta[MetaSourceLastModified]; ok && !strings.EqualFold(strings.TrimSpace(raw), MetaUnknown) {
			if _, readable := NormalizeTimestamp(raw); !readable {
				anomalies = append(anomalies, n.anomaly(AnomalyAmbiguous, key, i,
					fmt.Sprintf("unreadable stored timestamp %q compared as unknown", raw)))
			}
		}

		out[key] = StoredObject{Key: key, Size: obj.Size, Metadata: meta}
	}

	if len(objects) > 0 && malformed == len(objects) {
		return nil, anomalies, fmt.Errorf("%w: none of %d store objects has a key", ErrInvalidInput, len(objects))
	}

	return out, anomalies, nil
}

func (n *Normalizer) ignored() map[string]struct{} {
	ignored := make(map[string]struct{}, len(n.Ignore))
	for _, key := range n.Ignore {
		ignored[key] = struct{}{}
	}
	return ignored
}

func (n *Normalizer) anomaly(kind AnomalyKind, key string, index int, detail string) Anomaly {
	if n.Logger != nil {
		n.Logger.Warn("Record anomaly",
			zap.String("kind", string(kind)),
			zap.String("key", key),
			zap.Int("index", index),
			zap.String("detail", detail),
		)
	}
	return Anomaly{Kind: kind, Key: key, Index: index, Detail: detail}
}
