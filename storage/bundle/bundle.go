// Package bundle snapshots a store's artifacts as a deterministic,
// zstd-compressed TAR stream.
//
// Snapshots exist for in-process transfer and replica auditing; the
// core never reads one back at startup and gains no durability from
// them. The bytes are deterministic: entry order is lexicographic by
// digest, TAR headers are normalized and the compressor runs
// single-threaded, so equal store contents produce equal snapshots.
package bundle

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/klauspost/compress/zstd"

	"xdao.co/dualcas/artifact"
	"xdao.co/dualcas/digest"
	"xdao.co/dualcas/storage"
)

// FormatVersion is the current snapshot index schema version.
const FormatVersion = 1

var epoch0 = time.Unix(0, 0).UTC()

// ExportOptions controls snapshot export behavior.
type ExportOptions struct {
	// Labels is optional, non-authoritative metadata mapping names to
	// digests.
	Labels map[string]cid.Cid
	// IncludeIndex controls whether index.json is included.
	IncludeIndex bool
}

// Export writes a snapshot containing the artifacts for the given
// digests. Every artifact's bytes are validated against its digest
// under h, which must be the algorithm the store keys by.
func Export(w io.Writer, s storage.Store, h digest.Hasher, ids []cid.Cid, opts ExportOptions) error {
	if s == nil {
		return fmt.Errorf("bundle: nil store")
	}
	if h == nil {
		return fmt.Errorf("bundle: nil hasher")
	}

	uniq := make(map[string]cid.Cid, len(ids))
	for _, id := range ids {
		if !id.Defined() {
			return storage.ErrInvalidDigest
		}
		uniq[id.String()] = id
	}

	keys := make([]string, 0, len(uniq))
	for k := range uniq {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	zw, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return err
	}
	tw := tar.NewWriter(zw)
	fail := func(err error) error {
		_ = tw.Close()
		_ = zw.Close()
		return err
	}

	entries := make([]indexEntry, 0, len(keys))
	for _, k := range keys {
		id := uniq[k]
		a, err := s.Get(id)
		if err != nil {
			return fail(err)
		}
		if h.Sum(a.Bytes()) != id {
			return fail(storage.ErrDigestMismatch)
		}
		if err := writeFile(tw, "artifacts/"+k, a.Bytes()); err != nil {
			return fail(err)
		}
		entries = append(entries, indexEntry{Digest: k, Size: a.Len()})
	}

	if opts.IncludeIndex {
		idx := indexJSON{
			Version:   FormatVersion,
			Algorithm: h.Algorithm(),
			Artifacts: entries,
		}
		if len(opts.Labels) > 0 {
			names := make([]string, 0, len(opts.Labels))
			for name := range opts.Labels {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				if name == "" {
					return fail(fmt.Errorf("bundle: empty label name"))
				}
				v := opts.Labels[name]
				if !v.Defined() {
					return fail(storage.ErrInvalidDigest)
				}
				idx.Labels = append(idx.Labels, indexLabel{Name: name, Digest: v.String()})
			}
		}

		b, err := json.Marshal(idx)
		if err != nil {
			return fail(err)
		}
		if err := writeFile(tw, "index.json", append(b, '\n')); err != nil {
			return fail(err)
		}
	}

	if err := tw.Close(); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

// Import reads a snapshot from r and stores every artifact into dst.
//
// Each payload is validated against the digest in its entry name under
// h; a snapshot taken under a different algorithm fails with
// ErrDigestMismatch. Returns the imported digests in entry order.
func Import(r io.Reader, dst storage.Store, h digest.Hasher) ([]cid.Cid, error) {
	if dst == nil {
		return nil, fmt.Errorf("bundle: nil store")
	}
	if h == nil {
		return nil, fmt.Errorf("bundle: nil hasher")
	}

	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	seen := map[string]struct{}{}
	var imported []cid.Cid

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return imported, nil
		}
		if err != nil {
			return nil, err
		}
		name := cleanTarPath(hdr.Name)
		if name == "" {
			return nil, fmt.Errorf("bundle: invalid entry path: %q", hdr.Name)
		}
		if hdr.Typeflag != tar.TypeReg {
			return nil, fmt.Errorf("bundle: unexpected tar entry type: %v (%s)", hdr.Typeflag, name)
		}

		// Non-authoritative metadata.
		if name == "index.json" {
			_, _ = io.Copy(io.Discard, tr)
			continue
		}
		if !strings.HasPrefix(name, "artifacts/") {
			return nil, fmt.Errorf("bundle: unknown entry: %s", name)
		}

		idStr := strings.TrimPrefix(name, "artifacts/")
		id, derr := cid.Decode(idStr)
		if derr != nil || !id.Defined() {
			return nil, storage.ErrInvalidDigest
		}
		if _, ok := seen[idStr]; ok {
			return nil, fmt.Errorf("bundle: duplicate artifact entry: %s", idStr)
		}
		seen[idStr] = struct{}{}

		payload, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}
		a := artifact.New(payload, h)
		if a.ID() != id {
			return nil, storage.ErrDigestMismatch
		}
		if _, err := dst.Put(a); err != nil {
			return nil, err
		}
		imported = append(imported, id)
	}
}

type indexJSON struct {
	Version   int          `json:"version"`
	Algorithm string       `json:"algorithm"`
	Artifacts []indexEntry `json:"artifacts"`
	Labels    []indexLabel `json:"labels,omitempty"`
}

type indexEntry struct {
	Digest string `json:"digest"`
	Size   int    `json:"size"`
}

type indexLabel struct {
	Name   string `json:"name"`
	Digest string `json:"digest"`
}

func writeFile(tw *tar.Writer, name string, content []byte) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  epoch0,
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := io.Copy(tw, bytes.NewReader(content))
	return err
}

func cleanTarPath(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return ""
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return ""
		}
	}
	return name
}
