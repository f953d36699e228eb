package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	kingpin "github.com/alecthomas/kingpin/v2"
	logging "github.com/ipfs/go-log/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/storacha/go-hximport/archive"
	"github.com/storacha/go-hximport/importer"
	"github.com/storacha/go-hximport/transport"
	"github.com/storacha/go-hximport/wire"
)

var log = logging.Logger("hximport")

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	ctx := context.Background()
	app := kingpin.New("hximport", "Encode fetch responses into the hash archive import stream")
	app.HelpFlag.Short('h')
	timeout := app.Flag(
		"timeout",
		"Maximum execution time (e.g. 30s, 2m); 0 means no timeout",
	).Envar("HXIMPORT_TIMEOUT").Default("0").Duration()
	logLevel := app.Flag("log-level", "Log level (debug, info, warn, error)").
		Envar("HXIMPORT_LOG_LEVEL").Default("warn").String()

	importCmd := app.Command("import", "Encode JSON lines response records")
	importTo := importCmd.Flag("to", "Destination ('-' for stdout, /dev/null, file, tcp://, http(s)://, s3://)").
		Short('o').Envar("HXIMPORT_TO").Default("-").String()
	dedupe := importCmd.Flag("dedupe", "Skip records identical to one of the last N written; 0 disables").
		Envar("HXIMPORT_DEDUPE").Default("0").Int()
	highWater := importCmd.Flag("high-water", "Buffered bytes at which the destination is drained").
		Envar("HXIMPORT_HIGH_WATER").Default(fmt.Sprint(wire.DefaultHighWaterMark)).Int()
	archiveOut := importCmd.Flag("archive", "Also write the encoded records to a CAR file").
		Envar("HXIMPORT_ARCHIVE").String()
	metricsOut := importCmd.Flag("metrics", "Write import counters in Prometheus text format to a file").
		Envar("HXIMPORT_METRICS").String()
	importFiles := importCmd.Arg("files", "JSON lines files; stdin if none").ExistingFiles()

	hashCmd := app.Command("hash", "Digest a file and encode a single response record")
	hashURL := hashCmd.Flag("url", "URL the content was fetched from").Required().String()
	hashType := hashCmd.Flag("type", "Content type").Default("application/octet-stream").String()
	hashStatus := hashCmd.Flag("status", "Fetch status").Default("200").Int()
	hashTo := hashCmd.Flag("to", "Destination").Short('o').Envar("HXIMPORT_TO").Default("-").String()
	hashFile := hashCmd.Arg("file", "Content file").Required().ExistingFile()

	linksCmd := app.Command("links", "Print the hash links of a file")
	linksFile := linksCmd.Arg("file", "Content file").Required().ExistingFile()

	cmd, err := app.Parse(args)
	if err != nil {
		return fmt.Errorf("failed to parse command line arguments: %w", err)
	}

	lvl, err := logging.LevelFromString(*logLevel)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	logging.SetAllLoggers(lvl)

	var cancel context.CancelFunc
	if *timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, *timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	var destOpts []transport.Option
	if stdout != nil {
		destOpts = append(destOpts, transport.WithStdout(stdout))
	}

	switch cmd {
	case importCmd.FullCommand():
		return runImport(ctx, importArgs{
			files:     *importFiles,
			to:        *importTo,
			dedupe:    *dedupe,
			highWater: *highWater,
			archive:   *archiveOut,
			metrics:   *metricsOut,
		}, stdin, destOpts...)
	case hashCmd.FullCommand():
		res, err := hashResponse(*hashFile, *hashURL, *hashType, *hashStatus, time.Now())
		if err != nil {
			return err
		}
		dest, err := transport.Open(ctx, *hashTo, destOpts...)
		if err != nil {
			return err
		}
		_, werr := wire.WriteResponse(dest, res)
		return errors.Join(werr, dest.Close())
	case linksCmd.FullCommand():
		return printLinks(stdout, *linksFile)
	default:
		return fmt.Errorf("unimplemented command %q", cmd)
	}
}

type importArgs struct {
	files     []string
	to        string
	dedupe    int
	highWater int
	archive   string
	metrics   string
}

func runImport(ctx context.Context, args importArgs, stdin io.Reader, destOpts ...transport.Option) (err error) {
	destOpts = append(destOpts, transport.WithHighWaterMark(args.highWater))
	dest, err := transport.Open(ctx, args.to, destOpts...)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, dest.Close())
	}()

	var opts []importer.Option
	if args.dedupe > 0 {
		opts = append(opts, importer.WithDedupe(args.dedupe))
	}
	var aw *archive.Writer
	if args.archive != "" {
		aw = archive.NewWriter()
		opts = append(opts, importer.WithArchive(aw))
	}
	var reg *prometheus.Registry
	if args.metrics != "" {
		reg = prometheus.NewRegistry()
		opts = append(opts, importer.WithMetrics(reg))
	}

	im, err := importer.New(dest, opts...)
	if err != nil {
		return fmt.Errorf("creating importer: %w", err)
	}

	sources, closeAll, err := openSources(args.files, stdin)
	if err != nil {
		return err
	}
	defer closeAll()

	var total importer.Stats
	for _, src := range sources {
		stats, err := im.Import(ctx, src.records)
		total.Written += stats.Written
		total.Skipped += stats.Skipped
		total.Bytes += stats.Bytes
		total.Backpressure += stats.Backpressure
		if err != nil {
			return fmt.Errorf("importing %s: %w", src.name, err)
		}
	}
	log.Infow("wrote responses", "destination", dest.Key(), "written", total.Written, "skipped", total.Skipped, "bytes", total.Bytes)

	if aw != nil {
		if err := writeArchive(args.archive, aw); err != nil {
			return err
		}
	}
	if reg != nil {
		if err := prometheus.WriteToTextfile(args.metrics, reg); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}

func writeArchive(path string, aw *archive.Writer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	if _, err := aw.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing archive: %w", err)
	}
	return f.Close()
}

type namedSource struct {
	name    string
	records importer.Source
}

func openSources(files []string, stdin io.Reader) ([]namedSource, func(), error) {
	if len(files) == 0 {
		return []namedSource{{"stdin", importer.NewJSONLSource(stdin)}}, func() {}, nil
	}
	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}
	sources := make([]namedSource, 0, len(files))
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("opening source: %w", err)
		}
		opened = append(opened, f)
		sources = append(sources, namedSource{name, importer.NewJSONLSource(f)})
	}
	return sources, closeAll, nil
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "hximport: %s\n", err)
		os.Exit(1)
	}
}
