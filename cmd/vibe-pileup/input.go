package main

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
)

// openInput opens a pileup input path, transparently handling gzip
// compression. Use "-" for stdin. The returned close function must be
// called when done; the returned name identifies the source in errors.
func openInput(path string) (io.Reader, func() error, string, error) {
	if path == "-" {
		return os.Stdin, func() error { return nil }, "stdin", nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, "", fmt.Errorf("open pileup file: %w", err)
	}

	// Check for gzip magic bytes (0x1f, 0x8b)
	buf := make([]byte, 2)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, nil, "", fmt.Errorf("read pileup file: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return nil, nil, "", fmt.Errorf("seek pileup file: %w", err)
	}

	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, nil, "", fmt.Errorf("create gzip reader: %w", err)
		}
		closeFn := func() error {
			gz.Close()
			return file.Close()
		}
		return gz, closeFn, path, nil
	}

	return file, file.Close, path, nil
}
