package transport

import (
	"io"
	"net"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Option is an option configuring a destination.
type Option func(cfg *config)

type config struct {
	highWaterMark int
	dialer        *net.Dialer
	client        *http.Client
	contentType   string
	s3Client      *s3.Client
	stdout        io.Writer
}

// WithHighWaterMark configures the number of buffered bytes at which the
// destination reports backpressure. The default is
// [wire.DefaultHighWaterMark].
func WithHighWaterMark(n int) Option {
	return func(cfg *config) {
		cfg.highWaterMark = n
	}
}

// WithDialer configures the dialer used for tcp:// destinations.
func WithDialer(d *net.Dialer) Option {
	return func(cfg *config) {
		cfg.dialer = d
	}
}

// WithHTTPClient configures the HTTP client used for http:// and https://
// destinations.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *config) {
		cfg.client = c
	}
}

// WithContentType configures the media type sent with uploads. The default
// is [ContentType].
func WithContentType(ct string) Option {
	return func(cfg *config) {
		cfg.contentType = ct
	}
}

// WithS3Client configures the client used for s3:// destinations. If not
// configured a client is created from the default AWS configuration.
func WithS3Client(c *s3.Client) Option {
	return func(cfg *config) {
		cfg.s3Client = c
	}
}

// WithStdout configures the writer used for the "-" destination. The default
// is [os.Stdout].
func WithStdout(w io.Writer) Option {
	return func(cfg *config) {
		cfg.stdout = w
	}
}
