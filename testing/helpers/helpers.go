package helpers

import (
	crand "crypto/rand"
	"fmt"
	"net/http"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/storacha/go-hximport/digest"
	"github.com/storacha/go-hximport/response"
)

// Must takes return values from a function and returns the non-error one. If
// the error value is non-nil then it panics.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

func RandomBytes(size int) []byte {
	bytes := make([]byte, size)
	_, _ = crand.Read(bytes)
	return bytes
}

func RandomCID() cid.Cid {
	bytes := RandomBytes(10)
	c, _ := cid.Prefix{
		Version:  1,
		Codec:    cid.Raw,
		MhType:   multihash.SHA2_256,
		MhLength: -1,
	}.Sum(bytes)
	return c
}

// Responses creates n distinct successful responses with random content and
// every digest set.
func Responses(t testing.TB, n int) []*response.Response {
	t.Helper()
	rs := make([]*response.Response, 0, n)
	for i := range n {
		body := RandomBytes(64 + i)
		digests, err := digest.Sum(body)
		if err != nil {
			t.Fatalf("computing digests: %s", err)
		}
		rs = append(rs, &response.Response{
			Time:    response.Some(uint64(1459036800 + i)),
			URL:     fmt.Sprintf("https://example.com/%d", i),
			Status:  http.StatusOK,
			Type:    "application/octet-stream",
			Length:  response.Some(uint64(len(body))),
			Digests: digests,
		})
	}
	return rs
}
