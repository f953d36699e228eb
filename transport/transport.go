package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strings"
	"sync"

	logging "github.com/ipfs/go-log/v2"
	"github.com/storacha/go-hximport/wire"
)

var log = logging.Logger("transport")

var (
	ErrUnsupportedScheme = errors.New("unsupported destination scheme")
	ErrClosed            = errors.New("destination closed")
)

// ContentType is the default media type of an uploaded response stream.
const ContentType = "application/x-hx-responses"

// Destination is a [wire.Sink] that can be drained and closed.
type Destination interface {
	wire.Sink
	// Flush blocks until all buffered bytes have been handed to the
	// underlying connection, file or upload.
	Flush() error
	// Close flushes and releases the destination. For uploads it waits for
	// the remote side to accept the stream.
	Close() error
	// Key identifies the destination in logs.
	Key() string
}

// Open opens the destination named by dest:
//
//   - "" or "-" writes to stdout, or the writer set by [WithStdout]
//   - "/dev/null" discards everything
//   - tcp://host:port writes to a TCP connection
//   - http:// and https:// URLs stream the responses as a POST body
//   - s3://bucket/key streams the responses into an S3 object
//   - anything else is a file path
func Open(ctx context.Context, dest string, opts ...Option) (Destination, error) {
	cfg := config{}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.contentType == "" {
		cfg.contentType = ContentType
	}
	if cfg.dialer == nil {
		cfg.dialer = &net.Dialer{}
	}
	if cfg.stdout == nil {
		cfg.stdout = os.Stdout
	}

	switch dest {
	case "", "-":
		return newDestination("stdout", cfg.stdout, nil, cfg), nil
	case "/dev/null":
		return newDestination("null", io.Discard, nil, cfg), nil
	}

	scheme, _, ok := strings.Cut(dest, "://")
	if !ok {
		f, err := os.Create(dest)
		if err != nil {
			return nil, fmt.Errorf("creating destination file: %w", err)
		}
		return newDestination(dest, f, f.Close, cfg), nil
	}

	u, err := url.Parse(dest)
	if err != nil {
		return nil, fmt.Errorf("parsing destination URL: %w", err)
	}

	switch scheme {
	case "tcp":
		conn, err := cfg.dialer.DialContext(ctx, "tcp", u.Host)
		if err != nil {
			return nil, fmt.Errorf("dialing %s: %w", u.Host, err)
		}
		log.Debugw("connected", "remote", conn.RemoteAddr().String())
		return newDestination(dest, conn, conn.Close, cfg), nil
	case "http", "https":
		return openHTTP(ctx, u, cfg)
	case "s3":
		return openS3(ctx, u, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
}

type destination struct {
	*wire.BufferedSink
	key    string
	finish func() error

	mu     sync.Mutex
	closed bool
}

func newDestination(key string, w io.Writer, finish func() error, cfg config) *destination {
	return &destination{
		BufferedSink: wire.NewBufferedSink(w, wire.WithHighWaterMark(cfg.highWaterMark)),
		key:          key,
		finish:       finish,
	}
}

func (d *destination) Key() string {
	return d.key
}

// Write holds mu so that a write either lands before the final flush of
// Close or fails with ErrClosed.
func (d *destination) Write(p []byte) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false, ErrClosed
	}
	return d.BufferedSink.Write(p)
}

func (d *destination) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	err := d.Flush()
	if d.finish != nil {
		err = errors.Join(err, d.finish())
	}
	if err != nil {
		return fmt.Errorf("closing %s: %w", d.key, err)
	}
	return nil
}

var _ Destination = (*destination)(nil)
