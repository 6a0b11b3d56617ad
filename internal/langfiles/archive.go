package langfiles

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Archive writes a zip of every regular file below the translation
// directory. Entry names are slash separated and relative to the root,
// e.g. "fr/messages.json".
func (s *Store) Archive(ctx context.Context, w io.Writer) error {
	if _, err := os.Stat(s.root); err != nil {
		return fmt.Errorf("%w: %s", ErrBaseLocaleMissing, s.root)
	}

	zw := zip.NewWriter(w)
	walkErr := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		return addToArchive(zw, filepath.ToSlash(rel), path)
	})
	if walkErr != nil {
		_ = zw.Close()
		return fmt.Errorf("langfiles: archive: %w", walkErr)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("langfiles: archive: %w", err)
	}
	return nil
}

func addToArchive(zw *zip.Writer, name, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(dst, src)
	return err
}
