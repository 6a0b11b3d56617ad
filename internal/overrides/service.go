package overrides

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-localization/internal/audit"
	"github.com/goliatone/go-localization/internal/langfiles"
	"github.com/goliatone/go-localization/internal/logging"
	"github.com/goliatone/go-localization/internal/overridecache"
	"github.com/goliatone/go-localization/internal/validation"
	"github.com/goliatone/go-localization/pkg/interfaces"
)

// MinSearchLength is the shortest query Search executes.
const MinSearchLength = 2

// FileSource is the part of the file store the override service reads.
type FileSource interface {
	BaseLocale() string
	Namespace(file string) string
	FileForNamespace(namespace string) string
	ListBaseFiles(ctx context.Context) ([]string, error)
	ListLocales(ctx context.Context, excludeBase bool) ([]string, error)
	ReadFile(ctx context.Context, locale, file string) (*langfiles.Messages, error)
	ReadTree(ctx context.Context, locale, file string) (map[string]any, error)
}

// InvalidationHook runs after the cached overrides of locales were dropped.
type InvalidationHook func(ctx context.Context, locales []string) error

// Service manages override rows and the per-locale override cache.
type Service struct {
	repo   Repository
	files  FileSource
	cache  overridecache.Cache
	audit  audit.Recorder
	hooks  []InvalidationHook
	clock  func() time.Time
	newID  func() uuid.UUID
	logger interfaces.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCache replaces the default in-memory override cache.
func WithCache(cache overridecache.Cache) Option {
	return func(s *Service) {
		if cache != nil {
			s.cache = cache
		}
	}
}

// WithAuditRecorder records every mutation.
func WithAuditRecorder(recorder audit.Recorder) Option {
	return func(s *Service) {
		s.audit = recorder
	}
}

// WithInvalidationHook adds a hook run on every cache invalidation.
func WithInvalidationHook(hook InvalidationHook) Option {
	return func(s *Service) {
		if hook != nil {
			s.hooks = append(s.hooks, hook)
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator overrides the id generator. Ids should sort by creation
// time to keep List newest first.
func WithIDGenerator(generator func() uuid.UUID) Option {
	return func(s *Service) {
		if generator != nil {
			s.newID = generator
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs the override service.
func NewService(repo Repository, files FileSource, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		files:  files,
		clock:  time.Now,
		newID:  newTimeOrderedID,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		cache, err := overridecache.NewMemoryCache(overridecache.DefaultTTL, "")
		if err != nil {
			s.logger.Warn("overrides.cache.init_failed", "error", err)
			s.cache = overridecache.Uncached{}
		} else {
			s.cache = cache
		}
	}
	return s
}

func newTimeOrderedID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// List returns every override, newest first.
func (s *Service) List(ctx context.Context) ([]*Override, error) {
	if s.repo == nil {
		return nil, ErrRepositoryRequired
	}
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, persistenceError(err, "list overrides")
	}
	return records, nil
}

// Locales returns every known locale, base first.
func (s *Service) Locales(ctx context.Context) ([]string, error) {
	return s.files.ListLocales(ctx, false)
}

// Search looks up query in the base locale files and the stored overrides.
// File hits come first, in file then key order, then override hits.
// Queries shorter than MinSearchLength return no results.
func (s *Service) Search(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinSearchLength {
		return []SearchResult{}, nil
	}
	if s.repo == nil {
		return nil, ErrRepositoryRequired
	}
	needle := strings.ToLower(query)
	base := s.files.BaseLocale()

	files, err := s.files.ListBaseFiles(ctx)
	if err != nil {
		return nil, err
	}

	results := []SearchResult{}
	for _, file := range files {
		messages, err := s.files.ReadFile(ctx, base, file)
		if err != nil {
			logging.WithFileContext(s.logger, base, file, "search").Warn("overrides.search.file_skipped", "error", err)
			continue
		}
		namespace := s.files.Namespace(file)
		for key, value := range messages.All() {
			fullKey := namespace + "." + key
			if strings.Contains(strings.ToLower(fullKey), needle) || strings.Contains(strings.ToLower(value), needle) {
				results = append(results, SearchResult{ID: fullKey, Text: fullKey, Value: value, Locale: base, Source: SourceFile})
			}
		}
	}

	records, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, persistenceError(err, "search overrides")
	}
	for _, record := range records {
		results = append(results, SearchResult{ID: record.Key, Text: record.Key, Value: record.Value, Locale: record.Locale, Source: SourceOverride})
	}
	return results, nil
}

// OriginalValues returns the file value of fullKey for every locale. The
// key is split on its first dot into a file namespace and a path. The path
// is first looked up as a literal key, then as a dotted path through nested
// values. Locales without a value map to "".
func (s *Service) OriginalValues(ctx context.Context, fullKey string) (map[string]string, error) {
	locales, err := s.files.ListLocales(ctx, false)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(locales))
	namespace, path := SplitKey(strings.TrimSpace(fullKey))
	for _, locale := range locales {
		values[locale] = ""
		if namespace == "" || path == "" {
			continue
		}
		tree, err := s.files.ReadTree(ctx, locale, s.files.FileForNamespace(namespace))
		if err != nil {
			continue
		}
		values[locale] = lookup(tree, path)
	}
	return values, nil
}

func lookup(tree map[string]any, path string) string {
	if value, ok := tree[path]; ok {
		if text, ok := scalarText(value); ok {
			return text
		}
	}
	var current any = tree
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return ""
		}
		if current, ok = node[segment]; !ok {
			return ""
		}
	}
	text, _ := scalarText(current)
	return text
}

func scalarText(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	case int, int64, float64:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}

// Save upserts every filled input on its key and locale and returns how
// many distinct overrides were stored. Inputs with a blank value are
// skipped and not counted. When the same key and locale appear more than
// once the last value wins. The cache of each changed locale is
// invalidated.
func (s *Service) Save(ctx context.Context, inputs []Input) (int, error) {
	if s.repo == nil {
		return 0, ErrRepositoryRequired
	}
	filled, positions := filledInputs(inputs)
	if len(filled) == 0 {
		return 0, validation.NewError("overrides", "at least one override with a value is required")
	}
	if err := s.validateInputs(ctx, filled, positions); err != nil {
		return 0, err
	}

	ordered := dedupe(filled)
	changed := []string{}
	for _, input := range ordered {
		record, action, err := s.upsert(ctx, input)
		if err != nil {
			s.logger.Error("overrides.save.failed", "key", input.Key, "locale", input.Locale, "error", err)
			s.invalidate(ctx, changed)
			return 0, err
		}
		if action == "" {
			continue
		}
		if !slices.Contains(changed, record.Locale) {
			changed = append(changed, record.Locale)
		}
		s.recordAudit(ctx, record, auditActionSaved, map[string]any{"change": action})
	}

	s.invalidate(ctx, changed)
	s.logger.Info("overrides.save.success", "count", len(ordered), "skipped", len(inputs)-len(filled), "locales", changed)
	return len(ordered), nil
}

// filledInputs drops inputs whose value is blank. positions holds the
// request index of every kept input so issues point at the submitted entry.
func filledInputs(inputs []Input) ([]Input, []int) {
	filled := make([]Input, 0, len(inputs))
	positions := make([]int, 0, len(inputs))
	for i, input := range inputs {
		if strings.TrimSpace(input.Value) == "" {
			continue
		}
		filled = append(filled, input)
		positions = append(positions, i)
	}
	return filled, positions
}

func (s *Service) validateInputs(ctx context.Context, inputs []Input, positions []int) error {
	locales, err := s.files.ListLocales(ctx, false)
	if err != nil {
		return err
	}
	known := make([]any, 0, len(locales))
	for _, locale := range locales {
		known = append(known, locale)
	}

	errs := ozzo.Errors{}
	for i := range inputs {
		input := inputs[i]
		if err := ozzo.ValidateStruct(&input,
			ozzo.Field(&input.Key, ozzo.Required, ozzo.Length(1, 255)),
			ozzo.Field(&input.Locale, ozzo.Required, ozzo.In(known...).Error("must be a known locale")),
		); err != nil {
			errs[strconv.Itoa(positions[i])] = err
		}
	}
	if len(errs) > 0 {
		return validation.Wrap("overrides", errs)
	}
	return nil
}

func dedupe(inputs []Input) []Input {
	index := map[[2]string]int{}
	out := make([]Input, 0, len(inputs))
	for _, input := range inputs {
		input.Key = strings.TrimSpace(input.Key)
		input.Locale = strings.TrimSpace(input.Locale)
		id := [2]string{input.Key, input.Locale}
		if pos, ok := index[id]; ok {
			out[pos] = input
			continue
		}
		index[id] = len(out)
		out = append(out, input)
	}
	return out
}

// upsert returns the stored record and "created", "updated" or "" when the
// row already held the value.
func (s *Service) upsert(ctx context.Context, input Input) (*Override, string, error) {
	existing, err := s.repo.GetByKeyLocale(ctx, input.Key, input.Locale)
	if err != nil && !errors.Is(err, ErrOverrideNotFound) {
		return nil, "", persistenceError(err, "lookup override")
	}
	if existing != nil {
		if existing.Value == input.Value {
			return existing, "", nil
		}
		return s.overwrite(ctx, existing, input.Value)
	}

	now := s.clock().UTC()
	record := &Override{
		ID:        s.newID(),
		Key:       input.Key,
		Locale:    input.Locale,
		Value:     input.Value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, createErr := s.repo.Create(ctx, record)
	if createErr == nil {
		return created, "created", nil
	}

	// A concurrent request may have inserted the same key and locale.
	existing, err = s.repo.GetByKeyLocale(ctx, input.Key, input.Locale)
	if err != nil {
		return nil, "", persistenceError(createErr, "create override")
	}
	return s.overwrite(ctx, existing, input.Value)
}

func (s *Service) overwrite(ctx context.Context, existing *Override, value string) (*Override, string, error) {
	next := existing.clone()
	next.Value = value
	next.UpdatedAt = s.clock().UTC()
	updated, err := s.repo.Update(ctx, next)
	if err != nil {
		return nil, "", persistenceError(err, "update override")
	}
	return updated, "updated", nil
}

// Update overwrites the value of the override id. ErrOverrideNotFound is
// returned for unknown ids. A blank value leaves the override unchanged,
// the same way Save skips blank entries.
func (s *Service) Update(ctx context.Context, id uuid.UUID, value string) (*Override, error) {
	if s.repo == nil {
		return nil, ErrRepositoryRequired
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOverrideNotFound) {
			return nil, ErrOverrideNotFound
		}
		return nil, persistenceError(err, "get override")
	}
	if strings.TrimSpace(value) == "" {
		s.logger.Debug("overrides.update.skipped_blank", "id", id)
		return existing, nil
	}
	updated, action, err := s.overwrite(ctx, existing, value)
	if err != nil {
		s.logger.Error("overrides.update.failed", "id", id, "error", err)
		return nil, err
	}
	s.invalidate(ctx, []string{updated.Locale})
	s.recordAudit(ctx, updated, auditActionUpdated, map[string]any{"change": action})
	s.logger.Info("overrides.update.success", "id", id, "key", updated.Key, "locale", updated.Locale)
	return updated, nil
}

// Delete removes the override id. Unknown ids are a no-op.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if s.repo == nil {
		return ErrRepositoryRequired
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOverrideNotFound) {
			s.logger.Debug("overrides.delete.missing", "id", id)
			return nil
		}
		return persistenceError(err, "get override")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrOverrideNotFound) {
			return nil
		}
		s.logger.Error("overrides.delete.failed", "id", id, "error", err)
		return persistenceError(err, "delete override")
	}
	s.invalidate(ctx, []string{existing.Locale})
	s.recordAudit(ctx, existing, auditActionDeleted, nil)
	s.logger.Info("overrides.delete.success", "id", id, "key", existing.Key, "locale", existing.Locale)
	return nil
}

// LocaleOverrides returns the key to value map of locale, reading through
// the cache. A cache failure falls back to the repository.
func (s *Service) LocaleOverrides(ctx context.Context, locale string) (map[string]string, error) {
	if s.repo == nil {
		return nil, ErrRepositoryRequired
	}
	var loadErr error
	values, err := s.cache.Fetch(ctx, locale, func(ctx context.Context) (map[string]string, error) {
		loaded, err := s.loadLocale(ctx, locale)
		loadErr = err
		return loaded, err
	})
	if loadErr != nil {
		return nil, loadErr
	}
	if err == nil {
		return values, nil
	}
	s.logger.Warn("overrides.cache.fetch_failed", "locale", locale, "error", err)
	return s.loadLocale(ctx, locale)
}

func (s *Service) loadLocale(ctx context.Context, locale string) (map[string]string, error) {
	records, err := s.repo.ListByLocale(ctx, locale)
	if err != nil {
		return nil, persistenceError(err, "list locale overrides")
	}
	values := make(map[string]string, len(records))
	for _, record := range records {
		values[record.Key] = record.Value
	}
	return values, nil
}

// ClearCache drops the cached overrides of locales. Without arguments
// every locale found in the files or the table is dropped. Registered
// hooks run afterwards.
func (s *Service) ClearCache(ctx context.Context, locales ...string) error {
	if len(locales) == 0 {
		all, err := s.allLocales(ctx)
		if err != nil {
			return err
		}
		locales = all
	}
	if err := s.cache.Forget(ctx, locales...); err != nil {
		return fmt.Errorf("overrides: forget cache: %w", err)
	}
	var hookErrs []error
	for _, hook := range s.hooks {
		if err := hook(ctx, slices.Clone(locales)); err != nil {
			hookErrs = append(hookErrs, err)
		}
	}
	s.logger.Debug("overrides.cache.cleared", "locales", locales)
	return errors.Join(hookErrs...)
}

func (s *Service) allLocales(ctx context.Context) ([]string, error) {
	locales := []string{}
	if s.repo != nil {
		stored, err := s.repo.Locales(ctx)
		if err != nil {
			return nil, persistenceError(err, "list override locales")
		}
		locales = append(locales, stored...)
	}
	if known, err := s.files.ListLocales(ctx, false); err == nil {
		for _, locale := range known {
			if !slices.Contains(locales, locale) {
				locales = append(locales, locale)
			}
		}
	}
	return locales, nil
}

func (s *Service) invalidate(ctx context.Context, locales []string) {
	if len(locales) == 0 {
		return
	}
	if err := s.ClearCache(ctx, locales...); err != nil {
		s.logger.Error("overrides.cache.invalidate_failed", "locales", locales, "error", err)
	}
}

// Subscribe forwards repository change events.
func (s *Service) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	if s.repo == nil {
		return nil, ErrRepositoryRequired
	}
	return s.repo.Subscribe(ctx)
}

func (s *Service) recordAudit(ctx context.Context, record *Override, action string, metadata map[string]any) {
	if s.audit == nil || record == nil {
		return
	}
	meta := map[string]any{"key": record.Key, "locale": record.Locale}
	maps.Copy(meta, metadata)
	event := audit.Event{
		EntityType: auditEntityType,
		EntityID:   record.ID.String(),
		Action:     action,
		OccurredAt: s.clock().UTC(),
		Metadata:   meta,
	}
	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.Warn("overrides.audit.failed", "action", action, "error", err)
	}
}

// IsPersistenceError reports whether err came from the override storage.
func IsPersistenceError(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryInternal)
}

func persistenceError(err error, action string) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "overrides: "+action).
		WithTextCode(persistenceErrorCode)
}
