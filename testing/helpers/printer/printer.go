package printer

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/storacha/go-hximport/digest"
	"github.com/storacha/go-hximport/response"
)

func withIndent(t testing.TB, level int) func(format string, args ...any) {
	indent := strings.Repeat("  ", level)
	return func(format string, args ...any) {
		t.Logf(indent+format, args...)
	}
}

// PrintResponse logs a response record, digests in wire order.
func PrintResponse(t testing.TB, r *response.Response, level int) {
	t.Helper()
	log := withIndent(t, level)

	log("%s", r.URL)
	log("  Status: %d %s", r.Status, response.StatusText(r.Status))
	if ts, ok := r.Time.Get(); ok {
		log("  Time: %s", time.Unix(int64(ts), 0).UTC().String())
	} else {
		log("  Time: unknown")
	}
	log("  Type: %s", r.Type)
	if n, ok := r.Length.Get(); ok {
		log("  Length: %s", SprintBytes(t, int(n)))
	}
	if len(r.Digests) == 0 {
		return
	}
	log("  Digests:")
	for _, algo := range digest.Algorithms {
		if d, ok := r.Digests[algo]; ok {
			log("    %s: %s", algo, hex.EncodeToString(d))
		}
	}
}

// PrintRecord logs an encoded record as a hex dump.
func PrintRecord(t testing.TB, b []byte) {
	t.Helper()
	t.Logf("record (%d bytes)\n%s", len(b), hex.Dump(b))
}

func SprintBytes(t testing.TB, b int) string {
	t.Helper()
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

func PrintHeaders(t testing.TB, h http.Header) {
	t.Helper()
	for name, values := range h {
		for _, value := range values {
			t.Logf("%s: %s", name, value)
		}
	}
}
