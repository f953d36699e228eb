package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/storacha/go-hximport/digest"
	"github.com/storacha/go-hximport/response"
)

func digestFile(path string) (map[string][]byte, uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening content: %w", err)
	}
	defer f.Close()

	h, err := digest.NewHasher()
	if err != nil {
		return nil, 0, err
	}
	n, err := io.Copy(h, f)
	if err != nil {
		return nil, 0, fmt.Errorf("reading content: %w", err)
	}
	return h.Digests(), uint64(n), nil
}

// hashResponse builds the record of a successful fetch of the content in path.
func hashResponse(path, url, contentType string, status int, now time.Time) (*response.Response, error) {
	digests, n, err := digestFile(path)
	if err != nil {
		return nil, err
	}
	return &response.Response{
		Time:    response.Some(uint64(now.Unix())),
		URL:     url,
		Status:  status,
		Type:    contentType,
		Length:  response.Some(n),
		Digests: digests,
	}, nil
}

func printLinks(out io.Writer, path string) error {
	digests, _, err := digestFile(path)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, algo := range digest.Algorithms {
		for _, kind := range digest.LinkKinds {
			link, err := digest.Link(kind, algo, digests[algo])
			if err != nil {
				return fmt.Errorf("formatting %s %s link: %w", algo, kind, err)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", algo, kind, link)
		}
	}
	return tw.Flush()
}
