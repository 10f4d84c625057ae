package mrfvalidator

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

var gzipMagic = []byte{0x1f, 0x8b}

// NewInput returns r, transparently decompressed when it starts with a gzip
// header.
func NewInput(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if len(head) == len(gzipMagic) && head[0] == gzipMagic[0] && head[1] == gzipMagic[1] {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		return zr, nil
	}
	return io.NopCloser(br), nil
}

// OpenInput opens the data file at path; see NewInput.
func OpenInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	in, err := NewInput(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &fileInput{ReadCloser: in, f: f}, nil
}

type fileInput struct {
	io.ReadCloser
	f *os.File
}

func (i *fileInput) Close() error {
	return errors.Join(i.ReadCloser.Close(), i.f.Close())
}
