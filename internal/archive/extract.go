// Package archive unpacks a filtered subset of an archive into a directory,
// rewriting entry paths by stripping a leading prefix.
package archive

import (
	"archive/tar"
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/klauspost/compress/gzip"
	"github.com/moby/patternmatcher"
	"github.com/specialistvlad/bindforge/internal/ctxlog"
)

// sniffLen is how much of the archive is read for format detection.
const sniffLen = 3072

// Request describes one extraction.
type Request struct {
	// Archive is the path of the archive file.
	Archive string
	// Destination receives the extracted files; it is created if absent.
	Destination string
	// Include selects entries by their stored name. "**" matches any number
	// of directories. Empty matches everything.
	Include string
	// StripPrefix is removed from the start of every stored name that has it.
	StripPrefix string
}

// Extractor unpacks archives.
type Extractor interface {
	Extract(ctx context.Context, req Request) (int, error)
}

// Unpacker is the default Extractor, writing through a billy.Filesystem.
type Unpacker struct {
	fs billy.Filesystem
}

// New returns an Unpacker over fs; nil means the host filesystem.
func New(fs billy.Filesystem) *Unpacker {
	if fs == nil {
		fs = osfs.New("/")
	}
	return &Unpacker{fs: fs}
}

// entry is a format-independent view of one archive member.
type entry struct {
	name    string
	regular bool
	open    func() (io.ReadCloser, error)
}

// Extract implements Extractor and returns the number of files written.
//
// Matching entries are first written to a staging directory beside the
// destination and moved into it only after the whole archive was read, so a
// failed extraction never leaves a destination that a skip predicate would
// take as complete.
func (u *Unpacker) Extract(ctx context.Context, req Request) (int, error) {
	logger := ctxlog.FromContext(ctx).With("archive", req.Archive, "destination", req.Destination)
	fail := func(kind error, entryName string, err error) (int, error) {
		return 0, &ExtractError{Archive: req.Archive, Entry: entryName, Kind: kind, Err: err}
	}

	var matcher *patternmatcher.PatternMatcher
	if req.Include != "" {
		m, err := patternmatcher.New([]string{req.Include})
		if err != nil {
			return fail(ErrCorrupt, "", fmt.Errorf("invalid include pattern %q: %w", req.Include, err))
		}
		matcher = m
	}

	f, err := u.fs.Open(req.Archive)
	if err != nil {
		return fail(ErrCorrupt, "", err)
	}
	defer f.Close()
	info, err := u.fs.Stat(req.Archive)
	if err != nil {
		return fail(ErrCorrupt, "", err)
	}

	parent := filepath.Dir(filepath.Clean(req.Destination))
	if err := u.fs.MkdirAll(parent, 0o755); err != nil {
		return fail(ErrWrite, "", err)
	}
	staging, err := util.TempDir(u.fs, parent, "."+filepath.Base(req.Destination)+".partial-")
	if err != nil {
		return fail(ErrWrite, "", err)
	}
	defer func() { _ = util.RemoveAll(u.fs, staging) }()

	written := make(map[string]struct{})
	visit := func(e entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !e.regular {
			return nil
		}
		if matcher != nil {
			ok, err := matcher.MatchesOrParentMatches(e.name)
			if err != nil || !ok {
				return err
			}
		}
		rel, keep, err := rewrite(e.name, req.StripPrefix)
		if err != nil {
			return &ExtractError{Archive: req.Archive, Entry: e.name, Kind: ErrUnsafePath}
		}
		if !keep {
			return nil
		}
		if err := u.writeEntry(filepath.Join(staging, rel), e); err != nil {
			return &ExtractError{Archive: req.Archive, Entry: e.name, Kind: ErrWrite, Err: err}
		}
		written[rel] = struct{}{}
		return nil
	}

	if err := u.walk(f, info.Size(), visit); err != nil {
		var extractErr *ExtractError
		if errors.As(err, &extractErr) {
			return 0, err
		}
		if errors.Is(err, ErrUnknownFormat) {
			return fail(ErrUnknownFormat, "", nil)
		}
		if ctx.Err() != nil {
			return 0, err
		}
		return fail(ErrCorrupt, "", err)
	}

	if len(written) == 0 {
		return fail(ErrNoMatches, "", fmt.Errorf("include %q", req.Include))
	}

	if err := u.commit(staging, req.Destination, written); err != nil {
		return fail(ErrWrite, "", err)
	}
	logger.Info("📦 Extracted entries.", "files", len(written))
	return len(written), nil
}

// walk detects the archive format and calls visit for every member.
func (u *Unpacker) walk(f billy.File, size int64, visit func(entry) error) error {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	mt := mimetype.Detect(head[:n])
	switch {
	case isA(mt, "application/zip"):
		return walkZip(f, size, visit)
	case isA(mt, "application/gzip"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gz.Close()
		return walkTar(tar.NewReader(gz), visit)
	case isA(mt, "application/x-tar"):
		return walkTar(tar.NewReader(f), visit)
	default:
		return ErrUnknownFormat
	}
}

// isA reports whether mt is mime or one of its descendants (jar is a zip).
func isA(mt *mimetype.MIME, mime string) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is(mime) {
			return true
		}
	}
	return false
}

func walkZip(r io.ReaderAt, size int64, visit func(entry) error) error {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return err
	}
	for _, zf := range zr.File {
		mode := zf.Mode()
		e := entry{
			name:    zf.Name,
			regular: mode.IsRegular() && !strings.HasSuffix(zf.Name, "/"),
			open:    func() (io.ReadCloser, error) { return zf.Open() },
		}
		if err := visit(e); err != nil {
			return err
		}
	}
	return nil
}

func walkTar(tr *tar.Reader, visit func(entry) error) error {
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		e := entry{
			name:    hdr.Name,
			regular: hdr.Typeflag == tar.TypeReg,
			open:    func() (io.ReadCloser, error) { return io.NopCloser(tr), nil },
		}
		if err := visit(e); err != nil {
			return err
		}
	}
}

// rewrite strips prefix from a stored name and validates the result. keep is
// false for names that reduce to nothing (the prefix directory itself).
func rewrite(name, prefix string) (rel string, keep bool, err error) {
	name = filepath.ToSlash(name)
	prefix = strings.TrimSuffix(filepath.ToSlash(prefix), "/")
	if prefix != "" && (name == prefix || strings.HasPrefix(name, prefix+"/")) {
		name = strings.TrimPrefix(name[len(prefix):], "/")
	}
	if name == "" {
		return "", false, nil
	}
	rel = filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		return "", false, ErrUnsafePath
	}
	return rel, true, nil
}

func (u *Unpacker) writeEntry(target string, e entry) error {
	if err := u.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	src, err := e.open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := u.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// commit moves the staged tree into dest. A missing dest is created by a
// single rename of the staging directory, so it never appears half filled.
// An existing dest is merged into file by file.
func (u *Unpacker) commit(staging, dest string, written map[string]struct{}) error {
	if _, err := u.fs.Lstat(dest); os.IsNotExist(err) {
		if err := u.fs.Rename(staging, dest); err != nil {
			return fmt.Errorf("moving %s into place: %w", staging, err)
		}
		return nil
	} else if err != nil {
		return err
	}
	rels := make([]string, 0, len(written))
	for rel := range written {
		rels = append(rels, rel)
	}
	sort.Strings(rels)
	for _, rel := range rels {
		target := filepath.Join(dest, rel)
		if err := u.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := u.fs.Rename(filepath.Join(staging, rel), target); err != nil {
			return fmt.Errorf("moving %s into place: %w", rel, err)
		}
	}
	return nil
}
