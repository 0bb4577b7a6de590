// Package nbt decodes the Minecraft save-file records this tool needs —
// level header, map metadata and pixels, banners, players, region chunks
// and the recursive item tree — on top of github.com/Tnze/go-mc/nbt and
// github.com/Tnze/go-mc/save/region. Every decoder here tolerates unknown
// siblings and the handful of shapes that changed across game versions.
package nbt

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
)

// ReadGzipFile reads and fully decompresses a gzip-wrapped save file.
func ReadGzipFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readGzip(f, path)
}

func readGzip(r io.Reader, path string) ([]byte, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening gzip stream %s: %w", path, err)
	}
	defer gz.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, gz); err != nil {
		return nil, fmt.Errorf("reading gzip stream %s: %w", path, err)
	}
	return buf.Bytes(), nil
}
