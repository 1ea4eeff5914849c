// Package registry implements a small client for a package registry
// index. The installer consults it for declared dependencies that are
// not installed locally, so diagnostics can distinguish "exists upstream
// but is not installed" from "unknown package". Transient network
// failures are retried a bounded number of times before they become
// fatal.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/arthur-debert/sitelink/pkg/errors"
	"github.com/arthur-debert/sitelink/pkg/logging"
	"github.com/cenkalti/backoff/v4"
)

// Entry is the index record for one package
type Entry struct {
	Name     string   `json:"name"`
	Versions []string `json:"versions"`
}

// Client queries a registry index over HTTP
type Client struct {
	baseURL    string
	attempts   int
	httpClient *http.Client
}

// NewClient creates a client for the given index base URL. attempts is
// the total number of tries per lookup (minimum 1).
func NewClient(baseURL string, attempts int) *Client {
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		baseURL:  baseURL,
		attempts: attempts,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Lookup fetches the index entry for a package. It returns
// ErrNotFound when the registry does not know the package and
// ErrDependencyFetch when the index stays unreachable after the
// bounded retries.
func (c *Client) Lookup(ctx context.Context, name string) (*Entry, error) {
	logger := logging.GetLogger("registry")

	endpoint, err := url.JoinPath(c.baseURL, name, "json")
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput,
			"invalid registry index URL %q", c.baseURL)
	}

	var entry *Entry

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Transport-level failure: transient, retry
			logger.Warn().Err(err).Str("url", endpoint).Msg("Registry fetch failed, will retry")
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(errors.Newf(errors.ErrNotFound,
				"package %q not in registry index", name))
		case resp.StatusCode >= 500:
			logger.Warn().Int("status", resp.StatusCode).Str("url", endpoint).
				Msg("Registry returned server error, will retry")
			return fmt.Errorf("registry returned status %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("registry returned status %d", resp.StatusCode))
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		var e Entry
		if err := json.Unmarshal(body, &e); err != nil {
			return backoff.Permanent(fmt.Errorf("malformed index entry: %w", err))
		}

		entry = &e
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newBackOff(), uint64(c.attempts-1)), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		if errors.IsErrorCode(err, errors.ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrapf(err, errors.ErrDependencyFetch,
			"registry index unreachable after %d attempts", c.attempts)
	}

	return entry, nil
}

// newBackOff returns the exponential policy used between attempts
func newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	return b
}
