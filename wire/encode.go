package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/storacha/go-hximport/digest"
	"github.com/storacha/go-hximport/response"
)

const (
	// Absent is written in place of an optional 64-bit field that has no
	// value. A present value equal to Absent cannot be told apart from it.
	Absent uint64 = 0xFFFFFFFFFFFFFFFF
	// StatusBias is added to the status code before it is written.
	StatusBias = 0xFFFF
	// MaxFieldSize is the largest string or digest a 16-bit length prefix
	// can describe.
	MaxFieldSize = 0xFFFF
)

var (
	ErrEncodingOverflow = errors.New("field too large for 16-bit length prefix")
	ErrStatusRange      = errors.New("status out of encodable range")
)

// Option is an option configuring an [Encoder].
type Option func(cfg *encConfig)

type encConfig struct {
	maxFieldSize int
}

// WithMaxFieldSize lowers the largest string or digest the encoder accepts.
// Values above [MaxFieldSize] are ignored.
func WithMaxFieldSize(n int) Option {
	return func(cfg *encConfig) {
		cfg.maxFieldSize = n
	}
}

// Encoder writes responses to a sink.
type Encoder struct {
	sink         Sink
	maxFieldSize int
}

func NewEncoder(sink Sink, opts ...Option) *Encoder {
	cfg := encConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.maxFieldSize <= 0 || cfg.maxFieldSize > MaxFieldSize {
		cfg.maxFieldSize = MaxFieldSize
	}
	return &Encoder{sink: sink, maxFieldSize: cfg.maxFieldSize}
}

// Encode writes res to the sink. It returns false if any write reported
// backpressure. All fields are written regardless of backpressure. The
// record is checked before the first write, so an invalid record leaves the
// stream untouched.
func (e *Encoder) Encode(res *response.Response) (bool, error) {
	if err := e.check(res); err != nil {
		return false, err
	}

	w := fieldWriter{sink: e.sink}
	w.putUint64(optional(res.Time))
	w.putString(res.URL)
	w.putUint64(uint64(int64(res.Status) + StatusBias))
	w.putString(res.Type)
	w.putUint64(optional(res.Length))
	w.putUint16(digest.Count)
	for _, algo := range digest.Algorithms {
		w.putBlob(res.Digests[algo])
	}
	if w.err != nil {
		return false, fmt.Errorf("writing response: %w", w.err)
	}
	return !w.blocked, nil
}

func (e *Encoder) check(res *response.Response) error {
	if int64(res.Status)+StatusBias < 0 {
		return fmt.Errorf("%w: %d", ErrStatusRange, res.Status)
	}
	if len(res.URL) > e.maxFieldSize {
		return fmt.Errorf("%w: url is %d bytes", ErrEncodingOverflow, len(res.URL))
	}
	if len(res.Type) > e.maxFieldSize {
		return fmt.Errorf("%w: type is %d bytes", ErrEncodingOverflow, len(res.Type))
	}
	for _, algo := range digest.Algorithms {
		if n := len(res.Digests[algo]); n > e.maxFieldSize {
			return fmt.Errorf("%w: %s digest is %d bytes", ErrEncodingOverflow, algo, n)
		}
	}
	return nil
}

// WriteResponse writes res to sink. It returns false if the sink reported
// backpressure during any of the writes.
func WriteResponse(sink Sink, res *response.Response) (bool, error) {
	return NewEncoder(sink).Encode(res)
}

// Encoded returns the wire encoding of res.
func Encoded(res *response.Response) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(Size(res))
	if _, err := WriteResponse(NewWriterSink(&buf), res); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Size returns the number of bytes the wire encoding of res occupies.
func Size(res *response.Response) int {
	n := 8 + 2 + len(res.URL) + 8 + 2 + len(res.Type) + 8 + 2
	for _, algo := range digest.Algorithms {
		n += 2 + len(res.Digests[algo])
	}
	return n
}

func optional(o response.Optional) uint64 {
	v, ok := o.Get()
	if !ok {
		return Absent
	}
	return v
}

// fieldWriter issues one sink write per wire element and remembers whether
// any of them reported backpressure. It stops at the first error.
type fieldWriter struct {
	sink    Sink
	blocked bool
	err     error
}

func (w *fieldWriter) write(p []byte) {
	if w.err != nil {
		return
	}
	ok, err := w.sink.Write(p)
	if err != nil {
		w.err = err
		return
	}
	if !ok {
		w.blocked = true
	}
}

func (w *fieldWriter) putUint16(v uint16) {
	w.write(binary.BigEndian.AppendUint16(nil, v))
}

func (w *fieldWriter) putUint64(v uint64) {
	w.write(binary.BigEndian.AppendUint64(nil, v))
}

func (w *fieldWriter) putString(s string) {
	w.putUint16(uint16(len(s)))
	if len(s) > 0 {
		w.write([]byte(s))
	}
}

func (w *fieldWriter) putBlob(b []byte) {
	w.putUint16(uint16(len(b)))
	if len(b) > 0 {
		w.write(b)
	}
}
