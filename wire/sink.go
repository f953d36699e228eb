package wire

import (
	"bytes"
	"io"
	"sync"
)

// Sink is a byte stream destination. Write reports false when the sink
// accepted the bytes but is buffering them under pressure. Backpressure is
// advisory: the bytes are not lost. A non-nil error means the sink is broken.
type Sink interface {
	Write(p []byte) (bool, error)
}

// SinkFunc adapts a function to a [Sink].
type SinkFunc func(p []byte) (bool, error)

func (f SinkFunc) Write(p []byte) (bool, error) {
	return f(p)
}

type writerSink struct {
	w io.Writer
}

func (s writerSink) Write(p []byte) (bool, error) {
	if _, err := s.w.Write(p); err != nil {
		return false, err
	}
	return true, nil
}

// NewWriterSink adapts an [io.Writer] to a [Sink] that never reports
// backpressure.
func NewWriterSink(w io.Writer) Sink {
	return writerSink{w}
}

// DefaultHighWaterMark is the number of buffered bytes at which a
// [BufferedSink] starts reporting backpressure.
const DefaultHighWaterMark = 16 * 1024

// BufferOption is an option configuring a [BufferedSink].
type BufferOption func(cfg *bufConfig)

type bufConfig struct {
	highWaterMark int
}

// WithHighWaterMark configures the number of buffered bytes at which the
// sink reports backpressure. The default is [DefaultHighWaterMark].
func WithHighWaterMark(n int) BufferOption {
	return func(cfg *bufConfig) {
		cfg.highWaterMark = n
	}
}

// BufferedSink queues writes in memory until Flush is called, in the manner
// of a socket write queue. Writes always succeed until a flush fails; they
// report backpressure once the queue holds at least the high water mark.
// It is safe for concurrent use.
type BufferedSink struct {
	mu            sync.Mutex
	w             io.Writer
	buf           bytes.Buffer
	highWaterMark int
	err           error
}

func NewBufferedSink(w io.Writer, opts ...BufferOption) *BufferedSink {
	cfg := bufConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.highWaterMark <= 0 {
		cfg.highWaterMark = DefaultHighWaterMark
	}
	return &BufferedSink{w: w, highWaterMark: cfg.highWaterMark}
}

func (s *BufferedSink) Write(p []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	s.buf.Write(p)
	return s.buf.Len() < s.highWaterMark, nil
}

// Buffered returns the number of bytes waiting to be flushed.
func (s *BufferedSink) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Len()
}

// Flush writes all queued bytes to the underlying writer. After a failed
// flush every write and flush returns the same error.
func (s *BufferedSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, err := s.buf.WriteTo(s.w); err != nil {
		s.err = err
		return err
	}
	return nil
}

var _ Sink = (*BufferedSink)(nil)
var _ Sink = SinkFunc(nil)
