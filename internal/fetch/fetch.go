// Package fetch retrieves process artifacts over HTTP. It implements
// the engine's fetcher contract: a cheap HEAD probe for size gating
// and a GET that materializes the artifact on disk.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/augustosouza8/aplicativos-sei/internal/record"
)

const userAgent = "seirel/1.0 (monitoramento-sei)"

// Client downloads artifacts into a local directory, one file per
// process id. Transfers are capped by maxBytes; the cap is enforced
// again during the transfer in case the probe lied.
type Client struct {
	baseURL  string
	dir      string
	maxBytes int64
	http     *http.Client
}

// NewClient builds a client rooted at baseURL that stores artifacts
// under dir. maxBytes caps each transfer; timeout covers a whole
// request.
func NewClient(baseURL string, dir string, maxBytes int64, timeout time.Duration) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		dir:      dir,
		maxBytes: maxBytes,
		http:     &http.Client{Timeout: timeout},
	}
}

// StatusError reports a non-OK response from the artifact endpoint.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("artifact endpoint returned HTTP %d for %s", e.Code, e.URL)
}

// ProbeSize issues a HEAD request and returns the declared artifact
// size. Endpoints that do not declare a length produce an error, so
// the planner records the record as a fetch failure instead of
// transferring blind.
func (c *Client) ProbeSize(ctx context.Context, rec record.Record) (int64, error) {
	target := c.artifactURL(rec)
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return 0, fmt.Errorf("create probe request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", rec.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &StatusError{URL: target, Code: resp.StatusCode}
	}
	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("artifact size not reported for %s", rec.ID)
	}
	return resp.ContentLength, nil
}

// Materialize downloads the artifact and moves it into place under the
// artifact directory. The write goes through a temp file in the same
// directory so a crashed transfer never leaves a partial artifact
// under the final name.
func (c *Client) Materialize(ctx context.Context, rec record.Record) error {
	target := c.artifactURL(rec)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("create fetch request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", rec.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: target, Code: resp.StatusCode}
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, ".artifact-*.tmp")
	if err != nil {
		return fmt.Errorf("create artifact temp file: %w", err)
	}
	tmpPath := tmp.Name()

	n, err := io.Copy(tmp, io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write artifact for %s: %w", rec.ID, err)
	}
	if n > c.maxBytes {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("artifact for %s exceeded the %d byte cap during transfer", rec.ID, c.maxBytes)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync artifact for %s: %w", rec.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close artifact for %s: %w", rec.ID, err)
	}
	if err := os.Rename(tmpPath, c.ArtifactPath(rec.ID)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("place artifact for %s: %w", rec.ID, err)
	}
	return nil
}

// ArtifactPath returns where Materialize places the artifact for id.
func (c *Client) ArtifactPath(id string) string {
	return filepath.Join(c.dir, SanitizeID(id)+".pdf")
}

// artifactURL prefers the link published with the record and falls
// back to the conventional download path for the process id.
func (c *Client) artifactURL(rec record.Record) string {
	if rec.Link != "" {
		return rec.Link
	}
	return c.baseURL + "/processos/" + url.PathEscape(rec.ID) + "/pdf"
}

// SanitizeID maps a process id to a filesystem-safe file stem.
// Protocol numbers carry "/" and "." ("53500.000123/2026-10"); both
// become "_" so ids never escape the artifact directory.
func SanitizeID(id string) string {
	return strings.NewReplacer("/", "_", ".", "_").Replace(id)
}

// IsStatus reports whether err is a StatusError, handing back the
// response code.
func IsStatus(err error) (int, bool) {
	var serr *StatusError
	if errors.As(err, &serr) {
		return serr.Code, true
	}
	return 0, false
}
