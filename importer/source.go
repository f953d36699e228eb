package importer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"iter"

	"github.com/pkg/errors"
	"github.com/storacha/go-hximport/digest"
	"github.com/storacha/go-hximport/response"
)

// MaxLineSize is the longest JSON Lines record a source accepts.
const MaxLineSize = 1024 * 1024

// Source yields the responses to import.
type Source = iter.Seq2[*response.Response, error]

type record struct {
	Time    response.Optional `json:"time"`
	URL     string            `json:"url"`
	Status  int               `json:"status"`
	Type    string            `json:"type"`
	Length  response.Optional `json:"length"`
	Digests map[string]string `json:"digests"`
}

func (r record) response() (*response.Response, error) {
	res := response.Response{
		Time:    r.Time,
		URL:     r.URL,
		Status:  r.Status,
		Type:    r.Type,
		Length:  r.Length,
		Digests: make(map[string][]byte, len(r.Digests)),
	}
	for algo, s := range r.Digests {
		d, err := digest.Parse(s)
		if err != nil {
			return nil, errors.Wrapf(err, "digest %s", algo)
		}
		res.Digests[algo] = d
	}
	return &res, nil
}

// NewJSONLSource reads one JSON response record per line. Blank lines are
// skipped. Iteration stops at the first malformed line.
//
//	{"time":1459036800,"url":"https://example.com/","status":200,"type":"text/html","length":512,"digests":{"sha256":"e3b0..."}}
func NewJSONLSource(r io.Reader) Source {
	return func(yield func(*response.Response, error) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
		line := 0
		for sc.Scan() {
			line++
			b := bytes.TrimSpace(sc.Bytes())
			if len(b) == 0 {
				continue
			}
			var rec record
			if err := json.Unmarshal(b, &rec); err != nil {
				yield(nil, errors.Wrapf(err, "line %d", line))
				return
			}
			res, err := rec.response()
			if err != nil {
				yield(nil, errors.Wrapf(err, "line %d", line))
				return
			}
			if !yield(res, nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(nil, errors.Wrapf(err, "reading line %d", line+1))
		}
	}
}

// Responses yields the given responses.
func Responses(rs ...*response.Response) Source {
	return func(yield func(*response.Response, error) bool) {
		for _, r := range rs {
			if !yield(r, nil) {
				return
			}
		}
	}
}
