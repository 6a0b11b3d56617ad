package diff

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/goliatone/go-localization/internal/langfiles"
	"github.com/goliatone/go-localization/internal/logging"
	"github.com/goliatone/go-localization/pkg/interfaces"
)

// FileReader loads one flat translation file.
type FileReader interface {
	ReadFile(ctx context.Context, locale, file string) (*langfiles.Messages, error)
}

// Missing maps file -> locale -> keys absent or blank in that locale, each
// carrying the base locale value. Pairs without gaps are never present.
type Missing map[string]map[string]*langfiles.Messages

// Count returns the number of missing keys of file across every locale.
func (m Missing) Count(file string) int {
	total := 0
	for _, keys := range m[file] {
		total += keys.Len()
	}
	return total
}

// Has reports whether file has at least one gap.
func (m Missing) Has(file string) bool {
	return len(m[file]) > 0
}

// Locale returns the gaps of file for locale, or nil.
func (m Missing) Locale(file, locale string) *langfiles.Messages {
	return m[file][locale]
}

// FileStatus summarises the gaps of one file.
type FileStatus struct {
	Missing int    `json:"missing"`
	Label   string `json:"label"`
}

const completeLabel = "All complete"

// Engine compares locale files against the base locale.
type Engine struct {
	reader FileReader
	logger interfaces.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for degraded reads.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine constructs an Engine reading files through reader.
func NewEngine(reader FileReader, opts ...Option) *Engine {
	engine := &Engine{reader: reader, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// ComputeMissing returns the keys of every base file that are absent or
// blank in each other locale. Unreadable files count as empty, so a locale
// without a copy of a file misses every base key.
func (e *Engine) ComputeMissing(ctx context.Context, files []string, base string, others []string) Missing {
	result := Missing{}
	for _, file := range files {
		baseMessages := e.load(ctx, base, file)
		if baseMessages.Len() == 0 {
			continue
		}
		for _, locale := range others {
			if locale == base {
				continue
			}
			gaps := Gaps(baseMessages, e.load(ctx, locale, file))
			if gaps.Len() == 0 {
				continue
			}
			if result[file] == nil {
				result[file] = map[string]*langfiles.Messages{}
			}
			result[file][locale] = gaps
		}
	}
	return result
}

// Gaps returns the base pairs whose key is absent or blank in target, in
// base order.
func Gaps(base, target *langfiles.Messages) *langfiles.Messages {
	gaps := &langfiles.Messages{}
	for key, baseValue := range base.All() {
		value, ok := target.Get(key)
		if !ok || langfiles.IsBlank(value) {
			gaps.Set(key, baseValue)
		}
	}
	return gaps
}

func (e *Engine) load(ctx context.Context, locale, file string) *langfiles.Messages {
	messages, err := e.reader.ReadFile(ctx, locale, file)
	if err == nil && messages != nil {
		return messages
	}
	if err != nil && !errors.Is(err, langfiles.ErrFileNotFound) {
		logging.WithFileContext(e.logger, locale, file, "diff").Warn("diff.read.degraded", "error", err)
	}
	return &langfiles.Messages{}
}

// SortFiles orders files with gaps first. Ties keep the input order.
func SortFiles(files []string, missing Missing) []string {
	sorted := slices.Clone(files)
	slices.SortStableFunc(sorted, func(a, b string) int {
		hasA, hasB := missing.Has(a), missing.Has(b)
		switch {
		case hasA == hasB:
			return 0
		case hasA:
			return -1
		default:
			return 1
		}
	})
	return sorted
}

// Statuses labels every file with its total gap count.
func Statuses(files []string, missing Missing) map[string]FileStatus {
	statuses := make(map[string]FileStatus, len(files))
	for _, file := range files {
		count := missing.Count(file)
		label := completeLabel
		if count > 0 {
			label = fmt.Sprintf("%d missing keys", count)
		}
		statuses[file] = FileStatus{Missing: count, Label: label}
	}
	return statuses
}
