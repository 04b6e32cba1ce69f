// Package ioutils holds the file plumbing shared by the text adapters:
// transparent gzip and charset decoding.
package ioutils

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// OpenMaybeCompressed opens path ("-" for stdin). Input is gunzipped when the
// name ends in .gz or the stream starts with the gzip magic bytes.
func OpenMaybeCompressed(path string) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		return maybeGunzip(bufio.NewReader(os.Stdin), func() error { return nil }, false)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc, err := maybeGunzip(bufio.NewReader(f), f.Close, isGzipName(path))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return rc, nil
}

func maybeGunzip(br *bufio.Reader, closeFn func() error, force bool) (io.ReadCloser, error) {
	if !force {
		b, err := br.Peek(2)
		force = err == nil && b[0] == 0x1f && b[1] == 0x8b
	}
	if !force {
		return readCloser{Reader: br, closeFn: closeFn}, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, err
	}
	return readCloser{Reader: zr, closeFn: func() error {
		_ = zr.Close()
		return closeFn()
	}}, nil
}

// ReadAllMaybeCompressed reads the whole (possibly gzipped) file.
func ReadAllMaybeCompressed(path string) ([]byte, error) {
	rc, err := OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// CreateMaybeCompressed creates path ("-" for stdout), gzipping when the name
// ends in .gz. Close flushes and closes every layer.
func CreateMaybeCompressed(path string) (io.WriteCloser, error) {
	if path == "-" || path == "" {
		bw := bufio.NewWriter(os.Stdout)
		return writeCloser{w: bw, flush: bw.Flush, closeFn: func() error { return nil }}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if isGzipName(path) {
		zw := gzip.NewWriter(f)
		return writeCloser{w: zw, flush: zw.Close, closeFn: f.Close}, nil
	}
	bw := bufio.NewWriter(f)
	return writeCloser{w: bw, flush: bw.Flush, closeFn: f.Close}, nil
}

func isGzipName(path string) bool { return strings.EqualFold(filepath.Ext(path), ".gz") }

type readCloser struct {
	io.Reader
	closeFn func() error
}

func (r readCloser) Close() error { return r.closeFn() }

type writeCloser struct {
	w       io.Writer
	flush   func() error
	closeFn func() error
}

func (w writeCloser) Write(p []byte) (int, error) { return w.w.Write(p) }

func (w writeCloser) Close() error {
	ferr := w.flush()
	cerr := w.closeFn()
	if ferr != nil {
		return ferr
	}
	return cerr
}
