package reconcile

import (
	"sort"
	"strconv"
	"strings"
)

// Stored metadata keys written on upload and read back on the next run.
const (
	// MetaSourceSize holds the byte size the source declared for the file.
	MetaSourceSize = "source-size"
	// MetaSourceLastModified holds the normalized source timestamp.
	MetaSourceLastModified = "source-last-modified"
	// MetaUnknown marks a field the source did not provide.
	MetaUnknown = "unknown"
)

// legacySizeKeys are size override keys written by earlier mirror revisions.
var legacySizeKeys = []string{"file-size"}

// RawEntry is one record produced by the listing provider.
// Empty or nil fields mean the provider could not parse them.
type RawEntry struct {
	// FileName is the display name of the remote file.
	FileName string `json:"file_name"`

	// Link is the fragment used to fetch the file bytes.
	Link string `json:"link"`

	// Size is the declared size in bytes, nil when absent.
	Size *int64 `json:"file_size"`

	// LastModified is the raw timestamp text, empty when absent.
	LastModified string `json:"source_last_modified"`
}

// RawObject is one record produced by the store inventory.
type RawObject struct {
	Key      string
	Size     int64
	Metadata map[string]string
}

// SourceRecord is a normalized remote file.
type SourceRecord struct {
	// Key is the comparison key (namespace prefix + file name).
	Key string `json:"key"`

	// Size is the declared size in bytes. Nil is a comparable "unknown" state
	// distinct from zero.
	Size *int64 `json:"size,omitempty"`

	// LastModified is the normalized ISO-8601 timestamp, empty when unknown.
	LastModified string `json:"last_modified,omitempty"`

	// FetchRef is handed to the fetch capability to retrieve the bytes.
	FetchRef string `json:"fetch_ref"`
}

// StoredObject is a normalized object currently in the mirror.
type StoredObject struct {
	// Key is the storage path.
	Key string `json:"key"`

	// Size is the physical size reported by the store.
	Size int64 `json:"size"`

	// Metadata is the user metadata with canonical (lowercase, dashed) keys.
	Metadata map[string]string `json:"metadata"`
}

// EffectiveSize returns the size used for change detection: the declared
// size recorded at upload time when present, the physical size otherwise.
// A recorded "unknown" declared size yields nil.
func (o StoredObject) EffectiveSize() *int64 {
	for _, key := range append([]string{MetaSourceSize}, legacySizeKeys...) {
		raw, ok := o.Metadata[key]
		if !ok {
			continue
		}
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.EqualFold(raw, MetaUnknown) {
			return nil
		}
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n >= 0 {
			return &n
		}
		// Unparseable override: fall back to what physically landed.
		break
	}
	size := o.Size
	return &size
}

// LastModified returns the normalized source timestamp recorded at upload
// time, empty when unknown.
func (o StoredObject) LastModified() string {
	raw, ok := o.Metadata[MetaSourceLastModified]
	if !ok || strings.EqualFold(strings.TrimSpace(raw), MetaUnknown) {
		return ""
	}
	ts, _ := NormalizeTimestamp(raw)
	return ts
}

// ActionType represents the type of mirror mutation.
type ActionType string

const (
	// ActionDelete removes an object from the store.
	ActionDelete ActionType = "delete"
	// ActionUpload fetches a source file and writes it to the store.
	ActionUpload ActionType = "upload"
)

// Action represents a planned mutation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the comparison key the action applies to.
	Key string `json:"key"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`

	// Record is the source record to upload. Only populated for ActionUpload.
	Record *SourceRecord `json:"record,omitempty"`
}

// Plan is the ordered list of actions for one run: all deletes, then all
// uploads, each group ascending by key.
type Plan struct {
	Actions []Action    `json:"actions"`
	Summary PlanSummary `json:"summary"`
}

// Deletes returns the delete group of the plan in order.
func (p *Plan) Deletes() []Action {
	return p.group(ActionDelete)
}

// Uploads returns the upload group of the plan in order.
func (p *Plan) Uploads() []Action {
	return p.group(ActionUpload)
}

func (p *Plan) group(t ActionType) []Action {
	var out []Action
	for _, a := range p.Actions {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

// Keys returns the distinct keys touched by the plan, sorted.
func (p *Plan) Keys() []string {
	seen := make(map[string]struct{}, len(p.Actions))
	keys := make([]string, 0, len(p.Actions))
	for _, a := range p.Actions {
		if _, ok := seen[a.Key]; ok {
			continue
		}
		seen[a.Key] = struct{}{}
		keys = append(keys, a.Key)
	}
	sort.Strings(keys)
	return keys
}

// PlanSummary provides aggregate counts for a plan.
type PlanSummary struct {
	// SourceItems is the number of normalized source records.
	SourceItems int `json:"source_items"`

	// StoreItems is the number of normalized stored objects.
	StoreItems int `json:"store_items"`

	// Withdrawn counts stored keys the source no longer lists.
	Withdrawn int `json:"withdrawn"`

	// Changed counts keys whose size or timestamp differ.
	Changed int `json:"changed"`

	// New counts source keys missing from the store.
	New int `json:"new"`

	// Unchanged counts keys that need no action.
	Unchanged int `json:"unchanged"`

	// DeleteActions counts planned deletes (withdrawn + changed).
	DeleteActions int `json:"delete_actions"`

	// UploadActions counts planned uploads (changed + new).
	UploadActions int `json:"upload_actions"`
}

// AnomalyKind classifies a record-level problem found while normalizing.
type AnomalyKind string

const (
	// AnomalyMalformed marks a record dropped because its key or fetch
	// reference could not be derived.
	AnomalyMalformed AnomalyKind = "malformed_record"
	// AnomalyDuplicate marks a record dropped because an earlier record
	// already claimed its key.
	AnomalyDuplicate AnomalyKind = "duplicate_key"
	// AnomalyAmbiguous marks a field that was unreadable and is compared as
	// unknown.
	AnomalyAmbiguous AnomalyKind = "ambiguous_comparison"
	// AnomalyReserved marks a source record dropped because its key belongs
	// to an object the mirror generates itself.
	AnomalyReserved AnomalyKind = "reserved_key"
)

// Anomaly is a non-fatal problem with one input record.
type Anomaly struct {
	Kind   AnomalyKind `json:"kind"`
	Key    string      `json:"key,omitempty"`
	Index  int         `json:"index"`
	Detail string      `json:"detail"`
}

// Outcome is the result of executing one action.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// ReportItem is the audit entry for one attempted action.
type ReportItem struct {
	Key    string     `json:"key"`
	Action ActionType `json:"action"`
	// Outcome is success or failure.
	Outcome Outcome `json:"outcome"`
	// Stage names the capability that failed (fetch, store, canceled).
	Stage Stage `json:"stage,omitempty"`
	// Reason is the failure message, empty on success.
	Reason string `json:"reason,omitempty"`
}

// Report is the ordered outcome of executing a plan.
type Report struct {
	Items   []ReportItem  `json:"items"`
	Summary ReportSummary `json:"summary"`
}

// ReportSummary provides aggregate counts for a report.
type ReportSummary struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Converged reports whether every action in the run succeeded.
func (r *Report) Converged() bool {
	return r.Summary.Failed == 0
}

// Failures returns the failed items in report order.
func (r *Report) Failures() []ReportItem {
	var out []ReportItem
	for _, item := range r.Items {
		if item.Outcome == OutcomeFailure {
			out = append(out, item)
		}
	}
	return out
}
