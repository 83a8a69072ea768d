package pipeline

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Input is an opened capture
type Input struct {
	io.Reader
	Name    string
	closers []io.Closer
}

// Close releases the capture
func (in *Input) Close() error {
	var first error
	for i := len(in.closers) - 1; i >= 0; i-- {
		if err := in.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	in.closers = nil
	return first
}

// OpenInput opens the capture at path, "-" or "" meaning stdin.
// Gzip compressed captures are detected and decompressed transparently.
func OpenInput(path string) (*Input, error) {
	if path == "" || path == "-" {
		return NewInput(os.Stdin, "stdin")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), ".gz")
	name = strings.TrimSuffix(name, filepath.Ext(name))

	in, err := NewInput(f, name)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	in.closers = append([]io.Closer{f}, in.closers...)
	return in, nil
}

// NewInput wraps r, decompressing it when it starts with the gzip magic
func NewInput(r io.Reader, name string) (*Input, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read capture: %w", err)
	}

	in := &Input{Reader: br, Name: name}
	if bytes.Equal(head, gzipMagic) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip capture: %w", err)
		}
		in.Reader = zr
		in.closers = append(in.closers, zr)
	}
	return in, nil
}
