package mirror

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"listing-mirror/core/reconcile"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Prefix}}</title>
</head>
<body>
<h1>{{.Prefix}}</h1>
<p>{{.Count}} files, {{.Total}}. Generated {{.GeneratedAt}}; links expire after {{.Expiry}}.</p>
<table>
<tr><th>Name</th><th>Size</th><th>Source last modified</th></tr>
{{- range .Entries}}
<tr><td><a href="{{.URL}}">{{.Name}}</a></td><td>{{.Size}}</td><td>{{.LastModified}}</td></tr>
{{- end}}
</table>
</body>
</html>
`))

type indexPage struct {
	Prefix      string
	Count       string
	Total       string
	GeneratedAt string
	Expiry      string
	Entries     []indexEntry
}

type indexEntry struct {
	Name         string
	URL          string
	Size         string
	LastModified string
}

// IndexResult describes a generated index page.
type IndexResult struct {
	Key         string    `json:"key"`
	Objects     int       `json:"objects"`
	Bytes       int       `json:"bytes"`
	GeneratedAt time.Time `json:"generated_at"`
}

// RebuildIndex writes an HTML page under the prefix that links every
// mirrored object through a presigned URL.
func (s *Service) RebuildIndex(ctx context.Context) (*IndexResult, error) {
	objects, err := s.store.Inventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list mirror for index: %w", err)
	}

	indexKey := s.cfg.IndexKey()
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })

	now := time.Now().UTC()
	page := indexPage{
		Prefix:      s.cfg.Prefix,
		GeneratedAt: now.Format(time.RFC1123),
		Expiry:      strings.TrimSpace(humanize.RelTime(now, now.Add(s.cfg.PresignExpiry()), "", "")),
	}

	var total uint64
	for _, obj := range objects {
		if obj.Key == indexKey || strings.HasSuffix(obj.Key, "/") {
			continue
		}

		u, err := s.client.PresignedGetObject(ctx, s.bucket, obj.Key, s.cfg.PresignExpiry(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to presign %s: %w", obj.Key, err)
		}

		stored := reconcile.StoredObject{Key: obj.Key, Size: obj.Size, Metadata: canonical(obj.Metadata)}
		lastModified := stored.LastModified()
		if lastModified == "" {
			lastModified = reconcile.MetaUnknown
		}

		total += uint64(obj.Size)
		page.Entries = append(page.Entries, indexEntry{
			Name:         strings.TrimPrefix(obj.Key, s.cfg.Prefix),
			URL:          u.String(),
			Size:         humanize.Bytes(uint64(obj.Size)),
			LastModified: lastModified,
		})
	}
	page.Count = humanize.Comma(int64(len(page.Entries)))
	page.Total = humanize.Bytes(total)

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("failed to render index: %w", err)
	}

	if err := s.store.put(ctx, indexKey, buf.Bytes(), map[string]string{"generated-at": now.Format(time.RFC3339)}, "text/html; charset=utf-8"); err != nil {
		return nil, err
	}

	s.logger.Info("Rebuilt mirror index",
		zap.String("key", indexKey),
		zap.Int("objects", len(page.Entries)),
		zap.String("total", page.Total))

	return &IndexResult{
		Key:         indexKey,
		Objects:     len(page.Entries),
		Bytes:       buf.Len(),
		GeneratedAt: now,
	}, nil
}

func canonical(metadata map[string]string) map[string]string {
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		out[reconcile.CanonicalMetaKey(k)] = v
	}
	return out
}
