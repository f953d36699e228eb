package response

import (
	"bytes"
	"net/http"
	"time"
)

// CrawlDelay is how old the newest response for a URL may be before the URL
// should be fetched again.
const CrawlDelay = 24 * time.Hour

// Entry is a response in a URL's history together with the times of later
// responses that returned the same content.
type Entry struct {
	Response Response
	AlsoSeen []Optional
}

// Equivalent reports whether two responses describe the same content. Only
// successful responses are ever equivalent. Digests are compared over their
// common prefix, so a missing digest matches any other.
func Equivalent(a, b *Response) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Status != http.StatusOK || b.Status != http.StatusOK {
		return false
	}
	if a.Type != b.Type {
		return false
	}
	if a.Length != b.Length {
		return false
	}
	for algo, da := range a.Digests {
		db := b.Digests[algo]
		n := min(len(da), len(db))
		if !bytes.Equal(da[:n], db[:n]) {
			return false
		}
	}
	return true
}

// Collapse folds each response that is equivalent to the one before it into
// the entry of its predecessor.
func Collapse(responses []Response) []Entry {
	var entries []Entry
	for i := range responses {
		if i > 0 && len(entries) > 0 && Equivalent(&responses[i-1], &responses[i]) {
			last := &entries[len(entries)-1]
			last.AlsoSeen = append(last.AlsoSeen, responses[i].Time)
			continue
		}
		entries = append(entries, Entry{Response: responses[i]})
	}
	return entries
}

// Outdated reports whether a URL whose newest response is latest should be
// fetched again at now.
func Outdated(latest *Response, now time.Time, delay time.Duration) bool {
	if latest == nil {
		return true
	}
	t, ok := latest.Time.Get()
	if !ok {
		return true
	}
	return int64(t) < now.Add(-delay).Unix()
}
