package langfiles

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goliatone/go-localization/internal/logging"
	"github.com/goliatone/go-localization/pkg/interfaces"
)

// Config configures a Store.
type Config struct {
	// Path is the directory containing one subdirectory per locale.
	Path string
	// BaseLocale names the authoritative locale directory.
	BaseLocale string
	// Exclude lists base file names hidden from ListBaseFiles.
	Exclude []string
	// Codec defaults to JSONCodec.
	Codec  Codec
	Logger interfaces.Logger
}

// Store reads and writes translation files laid out as <path>/<locale>/<file>.
type Store struct {
	root    string
	base    string
	exclude map[string]struct{}
	codec   Codec
	logger  interfaces.Logger
}

// NewStore constructs a Store. The directories are not checked until the
// first read so a misconfigured path surfaces from ListBaseFiles.
func NewStore(cfg Config) *Store {
	codec := cfg.Codec
	if codec == nil {
		codec = JSONCodec{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	exclude := make(map[string]struct{}, len(cfg.Exclude))
	for _, name := range cfg.Exclude {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			exclude[trimmed] = struct{}{}
		}
	}
	return &Store{
		root:    filepath.Clean(cfg.Path),
		base:    strings.TrimSpace(cfg.BaseLocale),
		exclude: exclude,
		codec:   codec,
		logger:  logger,
	}
}

// BaseLocale returns the authoritative locale code.
func (s *Store) BaseLocale() string { return s.base }

// Root returns the translation directory.
func (s *Store) Root() string { return s.root }

// Codec returns the codec used for every file.
func (s *Store) Codec() Codec { return s.codec }

// Namespace returns the file name without its extension, the first segment
// of every fully qualified key from that file.
func (s *Store) Namespace(file string) string {
	return strings.TrimSuffix(file, filepath.Ext(file))
}

// FileForNamespace maps a namespace back onto a file name.
func (s *Store) FileForNamespace(namespace string) string {
	return namespace + s.codec.Extension()
}

// ListBaseFiles enumerates the editable files of the base locale, sorted by
// name. Excluded names and files that are not flat mappings are skipped.
func (s *Store) ListBaseFiles(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := filepath.Join(s.root, s.base)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrBaseLocaleMissing, dir)
		}
		return nil, fmt.Errorf("langfiles: list %s: %w", dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !s.hasExtension(name) {
			continue
		}
		if _, skip := s.exclude[name]; skip {
			continue
		}
		if _, err := s.ReadFile(ctx, s.base, name); err != nil {
			logging.WithFileContext(s.logger, s.base, name, "list").Debug("langfiles.list.skipped", "error", err)
			continue
		}
		files = append(files, name)
	}
	slices.Sort(files)
	return files, nil
}

// ListLocales returns the locale directories. The base locale comes first
// unless excludeBase is set; the rest are sorted.
func (s *Store) ListLocales(ctx context.Context, excludeBase bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrBaseLocaleMissing, s.root)
		}
		return nil, fmt.Errorf("langfiles: list %s: %w", s.root, err)
	}

	hasBase := false
	others := []string{}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if entry.Name() == s.base {
			hasBase = true
			continue
		}
		others = append(others, entry.Name())
	}
	if !hasBase {
		return nil, fmt.Errorf("%w: %s", ErrBaseLocaleMissing, filepath.Join(s.root, s.base))
	}
	slices.Sort(others)
	if excludeBase {
		return others, nil
	}
	return append([]string{s.base}, others...), nil
}

// ReadFile loads one flat file. ErrFileNotFound is returned when the locale
// has no copy and ErrNotFlat when the content is nested.
func (s *Store) ReadFile(ctx context.Context, locale, file string) (*Messages, error) {
	data, err := s.read(ctx, locale, file)
	if err != nil {
		return nil, err
	}
	messages, err := s.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("langfiles: %s/%s: %w", locale, file, err)
	}
	return messages, nil
}

// ReadTree loads one file as nested values, including non flat files.
func (s *Store) ReadTree(ctx context.Context, locale, file string) (map[string]any, error) {
	data, err := s.read(ctx, locale, file)
	if err != nil {
		return nil, err
	}
	tree, err := s.codec.DecodeTree(data)
	if err != nil {
		return nil, fmt.Errorf("langfiles: %s/%s: %w", locale, file, err)
	}
	return tree, nil
}

// WriteFile replaces the content of one locale file with messages. The
// data is written to a temporary file in the same directory and renamed
// over the target.
func (s *Store) WriteFile(ctx context.Context, locale, file string, messages *Messages) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.path(locale, file)
	if err != nil {
		return err
	}
	logger := logging.WithFileContext(s.logger, locale, file, "write")

	data, err := s.codec.Encode(messages)
	if err != nil {
		return fmt.Errorf("%w: %s/%s: %w", ErrWriteFailed, locale, file, err)
	}
	if err := writeAtomic(target, data); err != nil {
		logger.Error("langfiles.write.failed", "error", err)
		return fmt.Errorf("%w: %s/%s: %w", ErrWriteFailed, locale, file, err)
	}
	logger.Debug("langfiles.write.success", "keys", messages.Len(), "bytes", len(data))
	return nil
}

func (s *Store) read(ctx context.Context, locale, file string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, err := s.path(locale, file)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s/%s", ErrFileNotFound, locale, file)
		}
		return nil, fmt.Errorf("langfiles: read %s/%s: %w", locale, file, err)
	}
	return data, nil
}

func (s *Store) path(locale, file string) (string, error) {
	if !validName(locale) || !validName(file) {
		return "", fmt.Errorf("%w: %q/%q", ErrInvalidName, locale, file)
	}
	return filepath.Join(s.root, locale, file), nil
}

func (s *Store) hasExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == s.codec.Extension() {
		return true
	}
	return s.codec.Name() == "yaml" && ext == ".yml"
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "\x00")
}

func writeAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(target); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return err
	}
	return nil
}
