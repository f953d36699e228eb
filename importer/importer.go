package importer

import (
	"context"
	"fmt"

	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/storacha/go-hximport/archive"
	"github.com/storacha/go-hximport/wire"
)

var log = logging.Logger("importer")

// Flusher is implemented by sinks that can drain their buffers. When a write
// reports backpressure the importer flushes before the next record.
type Flusher interface {
	Flush() error
}

// Stats summarises an import.
type Stats struct {
	Written      int
	Skipped      int
	Bytes        int64
	Backpressure int
}

// Option is an option configuring an [Importer].
type Option func(cfg *config) error

type config struct {
	dedupe   bool
	seenSize int
	archive  *archive.Writer
	registry prometheus.Registerer
	encOpts  []wire.Option
}

// WithDedupe skips records whose encoding is identical to one of the last
// size records written. Pass a size less than 1 to use
// [DefaultSeenCacheSize].
func WithDedupe(size int) Option {
	return func(cfg *config) error {
		cfg.dedupe = true
		cfg.seenSize = size
		return nil
	}
}

// WithArchive configures an archive that receives a copy of every written
// record.
func WithArchive(w *archive.Writer) Option {
	return func(cfg *config) error {
		cfg.archive = w
		return nil
	}
}

// WithMetrics registers the importer's counters with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(cfg *config) error {
		cfg.registry = reg
		return nil
	}
}

// WithEncoderOptions configures the encoder used to write records.
func WithEncoderOptions(opts ...wire.Option) Option {
	return func(cfg *config) error {
		cfg.encOpts = append(cfg.encOpts, opts...)
		return nil
	}
}

// Importer writes response records to a sink.
type Importer struct {
	sink    wire.Sink
	enc     *wire.Encoder
	seen    *seenCache
	archive *archive.Writer
	metrics *metrics
}

func New(sink wire.Sink, opts ...Option) (*Importer, error) {
	cfg := config{}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	im := Importer{
		sink:    sink,
		enc:     wire.NewEncoder(sink, cfg.encOpts...),
		archive: cfg.archive,
	}
	if cfg.dedupe {
		seen, err := newSeenCache(cfg.seenSize)
		if err != nil {
			return nil, err
		}
		im.seen = seen
	}
	if cfg.registry != nil {
		m, err := newMetrics(cfg.registry)
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
		im.metrics = m
	}
	return &im, nil
}

// Import writes every response from src. It stops at the first source,
// encoding or sink error, or when ctx is done. Stats describe the records
// handled before the stop.
func (im *Importer) Import(ctx context.Context, src Source) (Stats, error) {
	var stats Stats
	for res, err := range src {
		if err != nil {
			return stats, fmt.Errorf("reading source: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		var data []byte
		if im.seen != nil || im.archive != nil {
			data, err = wire.Encoded(res)
			if err != nil {
				return stats, fmt.Errorf("encoding %s: %w", res.URL, err)
			}
		}
		if im.seen != nil {
			key, err := Key(data)
			if err != nil {
				return stats, err
			}
			if im.seen.Seen(key) {
				log.Debugw("skipping duplicate", "url", res.URL, "cid", key.String())
				stats.Skipped++
				im.metrics.skipped()
				continue
			}
		}

		flowing, err := im.enc.Encode(res)
		if err != nil {
			return stats, fmt.Errorf("writing %s: %w", res.URL, err)
		}
		if im.archive != nil {
			if _, err := im.archive.Put(data); err != nil {
				return stats, fmt.Errorf("archiving %s: %w", res.URL, err)
			}
		}
		n := wire.Size(res)
		stats.Written++
		stats.Bytes += int64(n)
		im.metrics.written(n)

		if !flowing {
			stats.Backpressure++
			im.metrics.blocked()
			if err := im.drain(); err != nil {
				return stats, err
			}
		}
	}
	log.Infow("import complete", "written", stats.Written, "skipped", stats.Skipped, "bytes", stats.Bytes)
	return stats, nil
}

func (im *Importer) drain() error {
	f, ok := im.sink.(Flusher)
	if !ok {
		return nil
	}
	log.Debug("sink reported backpressure, draining")
	if err := f.Flush(); err != nil {
		return fmt.Errorf("draining sink: %w", err)
	}
	return nil
}

// Key returns the CID of the wire encoding of a record.
func Key(data []byte) (cid.Cid, error) {
	blk, err := archive.NewBlock(data)
	if err != nil {
		return cid.Undef, err
	}
	return blk.Link(), nil
}
