package source

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"listing-mirror/core/reconcile"

	"golang.org/x/net/html"
)

const (
	// parentDirectoryText is the anchor text of the link back up the tree.
	parentDirectoryText = "To Parent Directory"
	// dirMarker replaces the size column for subdirectories.
	dirMarker = "<dir>"
)

// ParseListing extracts one entry per file link from an IIS-style directory
// listing, where each line reads
//
//	1/5/2024  8:30 AM        12345 <A HREF="/pub/x/file.txt">file.txt</A><br>
//
// A line whose date or size cannot be read still yields an entry with those
// fields empty; only a broken document is an error.
func ParseListing(r io.Reader) ([]reconcile.RawEntry, error) {
	z := html.NewTokenizer(r)

	var (
		entries  []reconcile.RawEntry
		line     strings.Builder
		anchor   strings.Builder
		href     string
		inAnchor bool
	)

	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return entries, nil
			}
			return entries, fmt.Errorf("failed to tokenize listing: %w", z.Err())

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch string(name) {
			case "br":
				line.Reset()
			case "a":
				inAnchor = true
				anchor.Reset()
				href = ""
				for hasAttr {
					var key, val []byte
					key, val, hasAttr = z.TagAttr()
					if string(key) == "href" {
						href = string(val)
					}
				}
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) != "a" || !inAnchor {
				continue
			}
			inAnchor = false
			if entry, ok := parseLine(line.String(), anchor.String(), href); ok {
				entries = append(entries, entry)
			}
			line.Reset()

		case html.TextToken:
			if inAnchor {
				anchor.Write(z.Text())
			} else {
				line.Write(z.Text())
			}
		}
	}
}

// parseLine builds an entry from the text preceding a link and the link
// itself. Parent directory links and subdirectories are skipped.
func parseLine(prefix, text, href string) (reconcile.RawEntry, bool) {
	name := strings.TrimSpace(text)
	if strings.Contains(name, parentDirectoryText) {
		return reconcile.RawEntry{}, false
	}

	entry := reconcile.RawEntry{
		FileName: name,
		Link:     strings.TrimSpace(href),
	}

	// Only the last four fields belong to this line: date, time, AM/PM, size.
	fields := strings.Fields(prefix)
	if len(fields) < 4 {
		return entry, true
	}
	fields = fields[len(fields)-4:]

	if strings.EqualFold(fields[3], dirMarker) {
		return reconcile.RawEntry{}, false
	}

	entry.LastModified = strings.Join(fields[:3], " ")
	if n, err := strconv.ParseInt(fields[3], 10, 64); err == nil {
		entry.Size = &n
	}

	return entry, true
}
