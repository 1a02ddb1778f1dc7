// Package fetch downloads a GTFS static feed zip over HTTP with retries.
// Agency feed endpoints drop connections and serve transient 5xx responses
// often enough that a single attempt is not good enough for scheduled runs.
package fetch

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultTimeout bounds one whole download including retries.
const DefaultTimeout = 5 * time.Minute

// StaticFeed downloads the GTFS zip at url into destPath, retrying with
// exponential backoff until ctx is done. The file is written through a
// temporary name and renamed into place, so a half-finished download never
// replaces a good feed.
func StaticFeed(ctx context.Context, log *zap.Logger, url, destPath string) error {
	client := &http.Client{Timeout: 2 * time.Minute}

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(errors.Wrap(err, "build request"))
		}
		resp, err := client.Do(req)
		if err != nil {
			return errors.Wrap(err, "fetch static feed")
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := errors.Errorf("fetch static feed: status %s", resp.Status)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		return writeAtomic(destPath, resp.Body)
	}

	notify := func(err error, wait time.Duration) {
		log.Warn("static feed download failed, retrying",
			zap.String("url", url), zap.Duration("wait", wait), zap.Error(err))
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return err
	}
	log.Info("static feed downloaded",
		zap.String("url", url), zap.String("dest", destPath))
	return nil
}

func writeAtomic(destPath string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".gtfs-static-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write feed body")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), destPath), "replace feed file")
}
