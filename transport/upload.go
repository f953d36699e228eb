package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var successStatuses = []int{
	http.StatusOK,
	http.StatusCreated,
	http.StatusAccepted,
	http.StatusNoContent,
}

// pipeUpload starts upload in the background reading from a pipe, and
// returns a destination that writes into the pipe. Closing the destination
// waits for the upload to finish.
func pipeUpload(key string, cfg config, upload func(body io.Reader) error) *destination {
	pr, pw := io.Pipe()
	done := make(chan error, 1)

	go func() {
		err := upload(pr)
		// unblocks writers if the upload gave up early
		pr.CloseWithError(err)
		done <- err
		close(done)
	}()

	finish := func() error {
		if err := pw.Close(); err != nil {
			return err
		}
		return <-done
	}
	return newDestination(key, pw, finish, cfg)
}

func openHTTP(ctx context.Context, u *url.URL, cfg config) (Destination, error) {
	client := cfg.client
	if client == nil {
		client = &http.Client{}
	}

	return pipeUpload(u.String(), cfg, func(body io.Reader) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), body)
		if err != nil {
			return fmt.Errorf("creating HTTP request: %w", err)
		}
		req.Header.Set("Content-Type", cfg.contentType)

		res, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("doing HTTP request: %w", err)
		}
		defer res.Body.Close()
		if !slices.Contains(successStatuses, res.StatusCode) {
			msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
			return fmt.Errorf("HTTP Request failed. %s %s → %d: %s", req.Method, u.String(), res.StatusCode, strings.TrimSpace(string(msg)))
		}
		log.Debugw("upload accepted", "url", u.String(), "status", res.StatusCode)
		return nil
	}), nil
}

func openS3(ctx context.Context, u *url.URL, cfg config) (Destination, error) {
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("invalid S3 destination %q: expected s3://bucket/key", u.String())
	}

	client := cfg.s3Client
	if client == nil {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		client = s3.NewFromConfig(awsCfg)
	}

	return pipeUpload(u.String(), cfg, func(body io.Reader) error {
		uploader := manager.NewUploader(client)
		_, err := uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:      &bucket,
			Key:         &key,
			Body:        body,
			ContentType: &cfg.contentType,
		})
		if err != nil {
			return fmt.Errorf("uploading to S3: %w", err)
		}
		return nil
	}), nil
}
