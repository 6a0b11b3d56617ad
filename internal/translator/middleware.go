package translator

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"golang.org/x/text/language"

	"github.com/goliatone/go-localization/internal/logging"
	"github.com/goliatone/go-localization/internal/overrides"
	"github.com/goliatone/go-localization/pkg/interfaces"
)

const (
	// LocaleParam is the query parameter selecting the request locale.
	LocaleParam = "locale"
	// LocaleCookie is the cookie carrying a remembered locale.
	LocaleCookie = "locale"
)

// OverrideSource returns the override lines of a locale keyed by their
// fully qualified key.
type OverrideSource interface {
	LocaleOverrides(ctx context.Context, locale string) (map[string]string, error)
}

type contextKey struct{}

// WithTranslator stores t in ctx.
func WithTranslator(ctx context.Context, t *Translator) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext returns the translator installed by the middleware.
func FromContext(ctx context.Context) (*Translator, bool) {
	if ctx == nil {
		return nil, false
	}
	t, ok := ctx.Value(contextKey{}).(*Translator)
	return t, ok && t != nil
}

// LocaleFromContext returns the locale resolved for the request.
func LocaleFromContext(ctx context.Context) string {
	if t, ok := FromContext(ctx); ok {
		return t.Locale()
	}
	return ""
}

type middlewareConfig struct {
	locales []string
	logger  interfaces.Logger
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithLocales fixes the set of locales requests may resolve to instead of
// listing the locale folders on every request. The first entry is the
// fallback.
func WithLocales(locales ...string) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		cfg.locales = slices.Clone(locales)
	}
}

// WithMiddlewareLogger sets the middleware logger.
func WithMiddlewareLogger(logger interfaces.Logger) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Middleware installs a Translator for the request locale with the stored
// overrides of that locale registered on top of the files. Override lookup
// failures are logged and the request proceeds with file lines only.
func Middleware(files FileSource, source OverrideSource, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := middlewareConfig{logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			locale := ResolveLocale(r, cfg.knownLocales(ctx, files, cfg.logger))

			if existing, ok := FromContext(ctx); ok && existing.Locale() == locale {
				next.ServeHTTP(w, r)
				return
			}

			t := New(files, locale, WithLogger(cfg.logger))
			if source != nil {
				values, err := source.LocaleOverrides(ctx, locale)
				if err != nil {
					cfg.logger.Warn("translator.overrides.load_failed", "locale", locale, "error", err)
				} else {
					for namespace, lines := range GroupLines(values) {
						t.AddLines(lines, namespace)
					}
				}
			}
			next.ServeHTTP(w, r.WithContext(WithTranslator(ctx, t)))
		})
	}
}

func (cfg middlewareConfig) knownLocales(ctx context.Context, files FileSource, logger interfaces.Logger) []string {
	if len(cfg.locales) > 0 {
		return cfg.locales
	}
	if files == nil {
		return nil
	}
	locales, err := files.ListLocales(ctx, false)
	if err != nil {
		logger.Warn("translator.locales.list_failed", "error", err)
		return []string{files.BaseLocale()}
	}
	return locales
}

// GroupLines splits fully qualified override keys into namespace groups on
// their first dot. Keys without a dot land in the wildcard group.
func GroupLines(values map[string]string) map[string]map[string]string {
	groups := map[string]map[string]string{}
	for key, value := range values {
		namespace, rest := overrides.SplitKey(key)
		if namespace == "" || rest == "" {
			namespace, rest = overrides.WildcardNamespace, key
		}
		group, ok := groups[namespace]
		if !ok {
			group = map[string]string{}
			groups[namespace] = group
		}
		group[rest] = value
	}
	return groups
}

// ResolveLocale picks the request locale out of known: the locale query
// parameter, then the locale cookie, then the best Accept-Language match.
// The first known locale is the fallback.
func ResolveLocale(r *http.Request, known []string) string {
	if len(known) == 0 {
		return ""
	}
	if r == nil {
		return known[0]
	}
	if value := strings.TrimSpace(r.URL.Query().Get(LocaleParam)); value != "" {
		if locale, ok := lookupLocale(known, value); ok {
			return locale
		}
	}
	if cookie, err := r.Cookie(LocaleCookie); err == nil {
		if locale, ok := lookupLocale(known, cookie.Value); ok {
			return locale
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if locale, ok := matchAcceptLanguage(known, accept); ok {
			return locale
		}
	}
	return known[0]
}

func lookupLocale(known []string, value string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, locale := range known {
		if strings.EqualFold(locale, value) {
			return locale, true
		}
	}
	return "", false
}

func matchAcceptLanguage(known []string, accept string) (string, bool) {
	desired, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(desired) == 0 {
		return "", false
	}
	tags := make([]language.Tag, 0, len(known))
	candidates := make([]string, 0, len(known))
	for _, locale := range known {
		tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		candidates = append(candidates, locale)
	}
	if len(tags) == 0 {
		return "", false
	}
	_, index, confidence := language.NewMatcher(tags).Match(desired...)
	if confidence == language.No {
		return "", false
	}
	return candidates[index], true
}
