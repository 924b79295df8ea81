package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/specialistvlad/bindforge/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGetter struct {
	bucket, key string
	body        string
	err         error
}

func (f *fakeGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket, f.key = *in.Bucket, *in.Key
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func testCtx() context.Context { return ctxlog.Discard(context.Background()) }

func readFile(t *testing.T, c *Client, name string) string {
	t.Helper()
	b, err := util.ReadFile(c.fs, name)
	require.NoError(t, err)
	return string(b)
}

func assertNoLeftovers(t *testing.T, c *Client, dir string, want ...string) {
	t.Helper()
	entries, err := c.fs.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, want, names)
}

func TestFetch_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/archive/v4.9.3.zip", r.URL.Path)
		_, _ = w.Write([]byte("PK-archive"))
	}))
	defer srv.Close()

	c := New(WithFilesystem(memfs.New()), WithHTTPClient(srv.Client()))
	err := c.Fetch(testCtx(), srv.URL+"/archive/v4.9.3.zip", "/build/openzeppelin.zip")
	require.NoError(t, err)

	assert.Equal(t, "PK-archive", readFile(t, c, "/build/openzeppelin.zip"))
	assertNoLeftovers(t, c, "/build", "openzeppelin.zip")
}

func TestFetch_HTTPStatusIsDownloadError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := New(WithFilesystem(memfs.New()), WithHTTPClient(srv.Client()))
	err := c.Fetch(testCtx(), srv.URL+"/missing.zip", "/build/openzeppelin.zip")

	var dlErr *DownloadError
	require.True(t, errors.As(err, &dlErr))
	assert.Equal(t, http.StatusNotFound, dlErr.StatusCode)
	_, statErr := c.fs.Stat("/build/openzeppelin.zip")
	assert.Error(t, statErr, "no artifact may appear after a failed download")
}

func TestFetch_TruncatedBodyLeavesNoArtifact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		_, _ = w.Write([]byte("only a few bytes"))
	}))
	defer srv.Close()

	c := New(WithFilesystem(memfs.New()), WithHTTPClient(srv.Client()))
	err := c.Fetch(testCtx(), srv.URL+"/a.zip", "/build/a.zip")
	require.Error(t, err)

	var dlErr *DownloadError
	require.True(t, errors.As(err, &dlErr))
	assertNoLeftovers(t, c, "/build")
}

func TestFetch_OverwritesPreviousFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("fresh"))
	}))
	defer srv.Close()

	mem := memfs.New()
	require.NoError(t, util.WriteFile(mem, "/build/installer.sh", []byte("stale"), 0o644))
	c := New(WithFilesystem(mem), WithHTTPClient(srv.Client()))

	require.NoError(t, c.Fetch(testCtx(), srv.URL, "/build/installer.sh"))
	assert.Equal(t, "fresh", readFile(t, c, "/build/installer.sh"))
}

func TestFetch_S3(t *testing.T) {
	getter := &fakeGetter{body: "from-s3"}
	c := New(WithFilesystem(memfs.New()), WithS3(getter))

	require.NoError(t, c.Fetch(testCtx(), "s3://mirror/openzeppelin/v4.9.3.zip", "/build/oz.zip"))
	assert.Equal(t, "mirror", getter.bucket)
	assert.Equal(t, "openzeppelin/v4.9.3.zip", getter.key)
	assert.Equal(t, "from-s3", readFile(t, c, "/build/oz.zip"))
}

func TestFetch_S3FactoryIsLazyAndCached(t *testing.T) {
	calls := 0
	getter := &fakeGetter{body: "x"}
	c := New(WithFilesystem(memfs.New()), WithS3Factory(func(context.Context) (ObjectGetter, error) {
		calls++
		return getter, nil
	}))
	assert.Zero(t, calls)

	require.NoError(t, c.Fetch(testCtx(), "s3://b/k1", "/build/k1"))
	require.NoError(t, c.Fetch(testCtx(), "s3://b/k2", "/build/k2"))
	assert.Equal(t, 1, calls)
}

func TestFetch_S3Error(t *testing.T) {
	c := New(WithFilesystem(memfs.New()), WithS3(&fakeGetter{err: errors.New("access denied")}))
	err := c.Fetch(testCtx(), "s3://b/k", "/build/k")
	var dlErr *DownloadError
	require.True(t, errors.As(err, &dlErr))
	assert.ErrorContains(t, err, "access denied")
}

func TestFetch_FileScheme(t *testing.T) {
	mem := memfs.New()
	require.NoError(t, util.WriteFile(mem, "/mirror/oz.zip", []byte("local"), 0o644))
	c := New(WithFilesystem(mem))

	require.NoError(t, c.Fetch(testCtx(), "file:///mirror/oz.zip", "/build/oz.zip"))
	assert.Equal(t, "local", readFile(t, c, "/build/oz.zip"))
}

func TestFetch_UnsupportedScheme(t *testing.T) {
	c := New(WithFilesystem(memfs.New()))

	err := c.Fetch(testCtx(), "ftp://example.com/a.zip", "/build/a.zip")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)

	err = c.Fetch(testCtx(), "s3://bucket/key", "/build/a.zip")
	assert.ErrorIs(t, err, ErrUnsupportedScheme, "s3 without a configured client")
}
