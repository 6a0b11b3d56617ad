package editor

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-localization/internal/diff"
	"github.com/goliatone/go-localization/internal/langfiles"
	"github.com/goliatone/go-localization/internal/logging"
	"github.com/goliatone/go-localization/internal/validation"
	"github.com/goliatone/go-localization/pkg/interfaces"
)

// FileStore is the file access the editor needs.
type FileStore interface {
	BaseLocale() string
	ListBaseFiles(ctx context.Context) ([]string, error)
	ListLocales(ctx context.Context, excludeBase bool) ([]string, error)
	ReadFile(ctx context.Context, locale, file string) (*langfiles.Messages, error)
	WriteFile(ctx context.Context, locale, file string, messages *langfiles.Messages) error
}

// Index is the overview of every base file.
type Index struct {
	BaseLocale   string                     `json:"base_locale"`
	Locales      []string                   `json:"locales"`
	Files        []string                   `json:"files"`
	Statuses     map[string]diff.FileStatus `json:"statuses"`
	Missing      diff.Missing               `json:"missing"`
	TotalMissing int                        `json:"total_missing"`
}

// Comparison holds the editor data of a single file.
type Comparison struct {
	File         string                         `json:"file"`
	BaseLocale   string                         `json:"base_locale"`
	Locales      []string                       `json:"locales"`
	BaseKeys     []string                       `json:"base_keys"`
	Content      map[string]*langfiles.Messages `json:"content"`
	Missing      map[string]*langfiles.Messages `json:"missing"`
	TotalKeys    int                            `json:"total_keys"`
	MissingCount int                            `json:"missing_count"`
}

// Service builds editor views and writes edits back to the files.
type Service struct {
	files  FileStore
	engine *diff.Engine
	logger interfaces.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs the editor service over files.
func NewService(files FileStore, opts ...Option) *Service {
	s := &Service{files: files, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = diff.NewEngine(files, diff.WithLogger(s.logger))
	return s
}

// Index lists the base files, files with gaps first, with their gaps per
// locale.
func (s *Service) Index(ctx context.Context) (Index, error) {
	files, err := s.files.ListBaseFiles(ctx)
	if err != nil {
		return Index{}, err
	}
	locales, err := s.files.ListLocales(ctx, false)
	if err != nil {
		return Index{}, err
	}
	base := s.files.BaseLocale()
	missing := s.engine.ComputeMissing(ctx, files, base, locales)

	total := 0
	for _, file := range files {
		total += missing.Count(file)
	}
	return Index{
		BaseLocale:   base,
		Locales:      locales,
		Files:        diff.SortFiles(files, missing),
		Statuses:     diff.Statuses(files, missing),
		Missing:      missing,
		TotalMissing: total,
	}, nil
}

// Compare loads file for every locale. Locales without a copy get an
// empty mapping.
func (s *Service) Compare(ctx context.Context, file string) (Comparison, error) {
	file = strings.TrimSpace(file)
	if err := s.requireBaseFile(ctx, file); err != nil {
		return Comparison{}, err
	}
	locales, err := s.files.ListLocales(ctx, false)
	if err != nil {
		return Comparison{}, err
	}
	base := s.files.BaseLocale()

	content := make(map[string]*langfiles.Messages, len(locales))
	for _, locale := range locales {
		messages, err := s.files.ReadFile(ctx, locale, file)
		if err != nil {
			logging.WithFileContext(s.logger, locale, file, "compare").Debug("editor.compare.read_degraded", "error", err)
			messages = langfiles.NewMessages()
		}
		content[locale] = messages
	}

	missing := s.engine.ComputeMissing(ctx, []string{file}, base, locales)
	baseKeys := content[base].Keys()
	gaps := missing[file]
	if gaps == nil {
		gaps = map[string]*langfiles.Messages{}
	}
	return Comparison{
		File:         file,
		BaseLocale:   base,
		Locales:      locales,
		BaseKeys:     baseKeys,
		Content:      content,
		Missing:      gaps,
		TotalKeys:    len(baseKeys),
		MissingCount: missing.Count(file),
	}, nil
}

// ApplyUpdate replaces the content of file for every submitted locale.
// Locales are written one at a time in sorted order and the first failed
// write stops the update, leaving earlier locales written.
func (s *Service) ApplyUpdate(ctx context.Context, file string, submission map[string]*langfiles.Messages) error {
	file = strings.TrimSpace(file)
	if err := s.requireBaseFile(ctx, file); err != nil {
		return err
	}
	if len(submission) == 0 {
		return validation.NewError("translations", "at least one locale is required")
	}
	known, err := s.files.ListLocales(ctx, false)
	if err != nil {
		return err
	}
	locales := slices.Sorted(maps.Keys(submission))
	issues := []validation.ValidationIssue{}
	for _, locale := range locales {
		if !slices.Contains(known, locale) {
			issues = append(issues, validation.ValidationIssue{
				Location: "translations." + locale,
				Message:  "must be a known locale",
			})
			continue
		}
		for key, value := range submission[locale].All() {
			if !utf8.ValidString(key) || !utf8.ValidString(value) {
				issues = append(issues, validation.ValidationIssue{
					Location: "translations." + locale + "." + strings.ToValidUTF8(key, "\ufffd"),
					Message:  "must be valid UTF-8",
				})
			}
		}
	}
	if len(issues) > 0 {
		return &validation.PayloadValidationError{Issues: issues}
	}

	for _, locale := range locales {
		messages := submission[locale]
		if messages == nil {
			messages = langfiles.NewMessages()
		}
		logger := logging.WithFileContext(s.logger, locale, file, "update")
		if err := s.files.WriteFile(ctx, locale, file, messages); err != nil {
			logger.Error("editor.update.write_failed", "error", err)
			return err
		}
		logger.Info("editor.update.written", "keys", messages.Len())
	}
	return nil
}

func (s *Service) requireBaseFile(ctx context.Context, file string) error {
	if file == "" {
		return validation.NewError("file", "cannot be blank")
	}
	files, err := s.files.ListBaseFiles(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(files, file) {
		return validation.NewError("file", fmt.Sprintf("%q is not a translation file of the base locale", file))
	}
	return nil
}
