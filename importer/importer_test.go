package importer

import (
	"bytes"
	"context"
	"encoding/hex"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/storacha/go-hximport/archive"
	"github.com/storacha/go-hximport/digest"
	"github.com/storacha/go-hximport/response"
	"github.com/storacha/go-hximport/testing/helpers"
	"github.com/storacha/go-hximport/wire"
	"github.com/stretchr/testify/require"
)

func TestJSONLSource(t *testing.T) {
	sha := bytes.Repeat([]byte{0xab}, 32)
	input := strings.Join([]string{
		`{"time":1459036800,"url":"https://example.com/","status":200,"type":"text/html","length":512,"digests":{"sha256":"` + hex.EncodeToString(sha) + `"}}`,
		``,
		`{"url":"https://gone.example.com/","status":-12402,"time":null}`,
	}, "\n")

	var got []*response.Response
	for res, err := range NewJSONLSource(strings.NewReader(input)) {
		require.NoError(t, err)
		got = append(got, res)
	}
	require.Len(t, got, 2)

	require.Equal(t, &response.Response{
		Time:    response.Some(1459036800),
		URL:     "https://example.com/",
		Status:  http.StatusOK,
		Type:    "text/html",
		Length:  response.Some(512),
		Digests: map[string][]byte{digest.SHA256: sha},
	}, got[0])

	require.False(t, got[1].Time.Present())
	require.False(t, got[1].Length.Present())
	require.Equal(t, response.ErrNotFound, got[1].Status)
}

func TestJSONLSourceErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"malformed json", "{\"url\":\"ok\"}\n{not json}", "line 2"},
		{"bad digest", `{"digests":{"md5":"!!"}}`, "digest md5"},
		{"negative time", `{"time":-5}`, "line 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			for _, e := range NewJSONLSource(strings.NewReader(tt.input)) {
				if e != nil {
					err = e
				}
			}
			require.ErrorContains(t, err, tt.msg)
		})
	}
}

func TestImport(t *testing.T) {
	rs := helpers.Responses(t, 3)

	var out bytes.Buffer
	im, err := New(wire.NewWriterSink(&out))
	require.NoError(t, err)

	stats, err := im.Import(context.Background(), Responses(rs...))
	require.NoError(t, err)
	require.Equal(t, 3, stats.Written)
	require.Zero(t, stats.Backpressure)

	var want []byte
	for _, r := range rs {
		b, err := wire.Encoded(r)
		require.NoError(t, err)
		want = append(want, b...)
	}
	require.Equal(t, want, out.Bytes())
	require.Equal(t, int64(len(want)), stats.Bytes)
}

func TestImportDrainsOnBackpressure(t *testing.T) {
	rs := helpers.Responses(t, 5)

	var out bytes.Buffer
	sink := wire.NewBufferedSink(&out, wire.WithHighWaterMark(1))
	im, err := New(sink)
	require.NoError(t, err)

	stats, err := im.Import(context.Background(), Responses(rs...))
	require.NoError(t, err)
	require.Equal(t, 5, stats.Backpressure)
	require.Zero(t, sink.Buffered())
	require.Equal(t, stats.Bytes, int64(out.Len()))
}

func TestImportDedupe(t *testing.T) {
	rs := helpers.Responses(t, 2)
	dup := *rs[0]

	reg := prometheus.NewRegistry()
	var out bytes.Buffer
	im, err := New(wire.NewWriterSink(&out), WithDedupe(16), WithMetrics(reg))
	require.NoError(t, err)

	stats, err := im.Import(context.Background(), Responses(rs[0], rs[1], &dup))
	require.NoError(t, err)
	require.Equal(t, 2, stats.Written)
	require.Equal(t, 1, stats.Skipped)

	require.Equal(t, float64(2), testutil.ToFloat64(im.metrics.records.WithLabelValues("written")))
	require.Equal(t, float64(1), testutil.ToFloat64(im.metrics.records.WithLabelValues("skipped")))
	require.Equal(t, float64(out.Len()), testutil.ToFloat64(im.metrics.bytes))
	require.Zero(t, testutil.ToFloat64(im.metrics.backpressure))
}

func TestImportArchive(t *testing.T) {
	rs := helpers.Responses(t, 3)
	aw := archive.NewWriter()

	im, err := New(wire.NewWriterSink(&bytes.Buffer{}), WithArchive(aw))
	require.NoError(t, err)
	_, err = im.Import(context.Background(), Responses(rs...))
	require.NoError(t, err)
	require.Equal(t, 3, aw.Len())

	var car bytes.Buffer
	_, err = aw.WriteTo(&car)
	require.NoError(t, err)
	roots, blocks, err := archive.Decode(&car)
	require.NoError(t, err)
	records, err := archive.Records(roots, blocks)
	require.NoError(t, err)

	for i, r := range rs {
		b, err := wire.Encoded(r)
		require.NoError(t, err)
		require.Equal(t, b, records[i])
	}
}

func TestImportErrors(t *testing.T) {
	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		im, err := New(wire.NewWriterSink(&bytes.Buffer{}))
		require.NoError(t, err)
		stats, err := im.Import(ctx, Responses(helpers.Responses(t, 1)...))
		require.ErrorIs(t, err, context.Canceled)
		require.Zero(t, stats.Written)
	})

	t.Run("overflow", func(t *testing.T) {
		im, err := New(wire.NewWriterSink(&bytes.Buffer{}))
		require.NoError(t, err)
		res := &response.Response{URL: strings.Repeat("x", wire.MaxFieldSize+1)}
		_, err = im.Import(context.Background(), Responses(res))
		require.ErrorIs(t, err, wire.ErrEncodingOverflow)
	})

	t.Run("source", func(t *testing.T) {
		im, err := New(wire.NewWriterSink(&bytes.Buffer{}))
		require.NoError(t, err)
		stats, err := im.Import(context.Background(), NewJSONLSource(strings.NewReader("{}\n[")))
		require.ErrorContains(t, err, "line 2")
		require.Equal(t, 1, stats.Written)
	})

	t.Run("duplicate metrics registration", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		_, err := New(wire.NewWriterSink(&bytes.Buffer{}), WithMetrics(reg))
		require.NoError(t, err)
		_, err = New(wire.NewWriterSink(&bytes.Buffer{}), WithMetrics(reg))
		require.Error(t, err)
	})
}
