package translator

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-localization/internal/langfiles"
	"github.com/goliatone/go-localization/internal/logging"
	"github.com/goliatone/go-localization/internal/overrides"
	"github.com/goliatone/go-localization/pkg/interfaces"
)

// FileSource is the part of the file store a Translator reads lines from.
type FileSource interface {
	BaseLocale() string
	FileForNamespace(namespace string) string
	ListLocales(ctx context.Context, excludeBase bool) ([]string, error)
	ReadFile(ctx context.Context, locale, file string) (*langfiles.Messages, error)
}

// Translator resolves keys for one locale. Lines registered with AddLines
// take precedence over the files, the locale's file takes precedence over
// the base locale's file.
type Translator struct {
	files  FileSource
	locale string
	logger interfaces.Logger

	mu     sync.RWMutex
	lines  map[string]map[string]string
	loaded map[string]*langfiles.Messages
}

// Option configures a Translator.
type Option func(*Translator)

// WithLogger sets the logger used for degraded file reads.
func WithLogger(logger interfaces.Logger) Option {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New returns a translator for locale. An empty locale resolves to the base
// locale of files.
func New(files FileSource, locale string, opts ...Option) *Translator {
	t := &Translator{
		files:  files,
		locale: strings.TrimSpace(locale),
		logger: logging.NoOp(),
		lines:  map[string]map[string]string{},
		loaded: map[string]*langfiles.Messages{},
	}
	if t.locale == "" && files != nil {
		t.locale = files.BaseLocale()
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Locale reports the locale the translator resolves.
func (t *Translator) Locale() string {
	return t.locale
}

// AddLines registers lines under namespace. Keys of lines are relative to
// the namespace. Later calls overwrite earlier lines with the same key.
func (t *Translator) AddLines(lines map[string]string, namespace string) {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = overrides.WildcardNamespace
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	group, ok := t.lines[namespace]
	if !ok {
		group = make(map[string]string, len(lines))
		t.lines[namespace] = group
	}
	maps.Copy(group, lines)
}

// Lines returns a copy of the lines registered under namespace.
func (t *Translator) Lines(namespace string) map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.lines[namespace])
}

// Namespaces lists the namespaces holding registered lines.
func (t *Translator) Namespaces() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Sorted(maps.Keys(t.lines))
}

// Has reports whether key resolves to something other than itself.
func (t *Translator) Has(ctx context.Context, key string) bool {
	_, ok := t.resolve(ctx, key)
	return ok
}

// Translate resolves key and substitutes ":name" placeholders from args,
// given as name and value pairs. Unresolved keys are returned unchanged.
func (t *Translator) Translate(ctx context.Context, key string, args ...any) string {
	value, ok := t.resolve(ctx, key)
	if !ok {
		return key
	}
	return replacePlaceholders(value, args)
}

func (t *Translator) resolve(ctx context.Context, key string) (string, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false
	}
	namespace, rest := overrides.SplitKey(key)
	if namespace == "" {
		namespace, rest = overrides.WildcardNamespace, key
	}

	t.mu.RLock()
	value, ok := t.lines[namespace][rest]
	if !ok && namespace != overrides.WildcardNamespace {
		value, ok = t.lines[overrides.WildcardNamespace][key]
	}
	t.mu.RUnlock()
	if ok {
		return value, true
	}
	if namespace == overrides.WildcardNamespace || t.files == nil {
		return "", false
	}

	for _, locale := range t.fallbackChain() {
		messages := t.load(ctx, locale, namespace)
		if messages == nil {
			continue
		}
		if value, ok := messages.Get(rest); ok && !langfiles.IsBlank(value) {
			return value, true
		}
	}
	return "", false
}

func (t *Translator) fallbackChain() []string {
	base := t.files.BaseLocale()
	if t.locale == "" || t.locale == base {
		return []string{base}
	}
	return []string{t.locale, base}
}

func (t *Translator) load(ctx context.Context, locale, namespace string) *langfiles.Messages {
	cacheKey := locale + "/" + namespace
	t.mu.RLock()
	messages, ok := t.loaded[cacheKey]
	t.mu.RUnlock()
	if ok {
		return messages
	}

	file := t.files.FileForNamespace(namespace)
	messages, err := t.files.ReadFile(ctx, locale, file)
	if err != nil {
		messages = nil
		if !errors.Is(err, langfiles.ErrFileNotFound) {
			logging.WithFileContext(t.logger, locale, file, "translate").Warn("translator.file.read_failed", "error", err)
		}
	}

	t.mu.Lock()
	t.loaded[cacheKey] = messages
	t.mu.Unlock()
	return messages
}

func replacePlaceholders(value string, args []any) string {
	if len(args) < 2 || !strings.Contains(value, ":") {
		return value
	}
	pairs := make([][2]string, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		name := strings.TrimPrefix(fmt.Sprint(args[i]), ":")
		if name == "" {
			continue
		}
		pairs = append(pairs, [2]string{":" + name, fmt.Sprint(args[i+1])})
	}
	// Longer names first so ":name" does not clobber ":name_full".
	slices.SortStableFunc(pairs, func(a, b [2]string) int { return len(b[0]) - len(a[0]) })
	oldnew := make([]string, 0, len(pairs)*2)
	for _, pair := range pairs {
		oldnew = append(oldnew, pair[0], pair[1])
	}
	return strings.NewReplacer(oldnew...).Replace(value)
}
