// Package fetch streams remote resources (installer scripts, versioned
// archives) into local files.
//
// A download is written to a temporary file next to its destination and
// renamed into place only once the whole body arrived, so an interrupted
// transfer never leaves something that looks like a finished artifact.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/specialistvlad/bindforge/internal/ctxlog"
)

// Downloader fetches uri into destination.
type Downloader interface {
	Fetch(ctx context.Context, uri, destination string) error
}

// Client is the default Downloader. It supports http, https, s3 and file URIs.
type Client struct {
	fs   billy.Filesystem
	http *http.Client

	s3Mu      sync.Mutex
	s3        ObjectGetter
	s3Factory func(ctx context.Context) (ObjectGetter, error)
}

// Option configures a Client.
type Option func(*Client)

// WithFilesystem sets the filesystem downloads are written to. file:// URIs
// are read from it too.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(c *Client) { c.fs = fs }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithS3 uses the given getter for s3:// URIs.
func WithS3(getter ObjectGetter) Option {
	return func(c *Client) { c.s3 = getter }
}

// WithS3Factory defers building the S3 client until the first s3:// URI, so
// pipelines that never touch S3 never load AWS credentials.
func WithS3Factory(factory func(ctx context.Context) (ObjectGetter, error)) Option {
	return func(c *Client) { c.s3Factory = factory }
}

// New creates a Client. Without options it writes to the host filesystem and
// uses a plain http.Client.
func New(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	if c.fs == nil {
		c.fs = osfs.New("/")
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c
}

// Fetch implements Downloader. It never retries.
func (c *Client) Fetch(ctx context.Context, uri, destination string) error {
	logger := ctxlog.FromContext(ctx).With("uri", uri, "destination", destination)
	u, err := url.Parse(uri)
	if err != nil {
		return &DownloadError{URI: uri, Destination: destination, Err: err}
	}

	logger.Debug("Opening remote resource.")
	body, status, err := c.open(ctx, u)
	if err != nil {
		return &DownloadError{URI: uri, Destination: destination, StatusCode: status, Err: err}
	}
	defer body.Close()

	n, err := c.writeAtomic(destination, body)
	if err != nil {
		return &DownloadError{URI: uri, Destination: destination, StatusCode: status, Err: err}
	}
	logger.Info("⬇️ Downloaded resource.", "bytes", n)
	return nil
}

func (c *Client) open(ctx context.Context, u *url.URL) (io.ReadCloser, int, error) {
	switch u.Scheme {
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, 0, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, 0, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			return nil, resp.StatusCode, fmt.Errorf("unexpected status %q", resp.Status)
		}
		return resp.Body, resp.StatusCode, nil
	case "s3":
		getter, err := c.s3Getter(ctx)
		if err != nil {
			return nil, 0, err
		}
		out, err := getter.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(u.Host),
			Key:    aws.String(strings.TrimPrefix(u.Path, "/")),
		})
		if err != nil {
			return nil, 0, err
		}
		return out.Body, 0, nil
	case "file":
		f, err := c.fs.Open(u.Path)
		if err != nil {
			return nil, 0, err
		}
		return f, 0, nil
	default:
		return nil, 0, fmt.Errorf("%w %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func (c *Client) s3Getter(ctx context.Context) (ObjectGetter, error) {
	c.s3Mu.Lock()
	defer c.s3Mu.Unlock()
	if c.s3 != nil {
		return c.s3, nil
	}
	if c.s3Factory == nil {
		return nil, fmt.Errorf("%w %q: no S3 client configured", ErrUnsupportedScheme, "s3")
	}
	getter, err := c.s3Factory(ctx)
	if err != nil {
		return nil, err
	}
	c.s3 = getter
	return getter, nil
}

// writeAtomic streams r into a temp file beside dest and renames it over
// dest. The temp file is removed on every failure path.
func (c *Client) writeAtomic(dest string, r io.Reader) (int64, error) {
	dir := filepath.Dir(dest)
	if err := c.fs.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := c.fs.TempFile(dir, "."+filepath.Base(dest)+".part-")
	if err != nil {
		return 0, fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	n, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		_ = c.fs.Remove(tmpName)
		if copyErr != nil {
			return n, fmt.Errorf("writing body: %w", copyErr)
		}
		return n, fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := c.fs.Rename(tmpName, dest); err != nil {
		_ = c.fs.Remove(tmpName)
		return n, fmt.Errorf("moving into place: %w", err)
	}
	return n, nil
}
