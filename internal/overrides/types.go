package overrides

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	// ErrOverrideNotFound is returned when no row matches an id or key.
	ErrOverrideNotFound = errors.New("overrides: override not found")
	// ErrRepositoryRequired indicates the service was built without storage.
	ErrRepositoryRequired = errors.New("overrides: repository is required")
)

const (
	persistenceErrorCode = "OVERRIDE_PERSISTENCE_FAILED"

	auditEntityType    = "override"
	auditActionSaved   = "override_saved"
	auditActionUpdated = "override_updated"
	auditActionDeleted = "override_deleted"

	// WildcardNamespace groups override keys that carry no file segment.
	WildcardNamespace = "*"
)

// Override is a translation value stored outside the files. Keys follow
// the "file.nested.key" convention. At most one row exists per key and
// locale.
type Override struct {
	bun.BaseModel `bun:"table:override_translations,alias:ot"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Key       string    `bun:"key,notnull,unique:override_translations_key_locale" json:"key"`
	Locale    string    `bun:"locale,notnull,unique:override_translations_key_locale" json:"locale"`
	Value     string    `bun:"value" json:"value"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

func (o *Override) clone() *Override {
	if o == nil {
		return nil
	}
	copied := *o
	return &copied
}

// Input is one entry of a store request.
type Input struct {
	Key    string `json:"key"`
	Locale string `json:"locale"`
	Value  string `json:"value"`
}

// Source tells where a search hit came from.
type Source string

const (
	SourceFile     Source = "file"
	SourceOverride Source = "override"
)

// SearchResult is a single search hit. ID and Text both carry the fully
// qualified key.
type SearchResult struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Value  string `json:"value"`
	Locale string `json:"locale"`
	Source Source `json:"source"`
}

// SplitKey splits a fully qualified key on its first dot. Keys without a
// dot return an empty namespace.
func SplitKey(fullKey string) (namespace, rest string) {
	for i := 0; i < len(fullKey); i++ {
		if fullKey[i] == '.' {
			return fullKey[:i], fullKey[i+1:]
		}
	}
	return "", fullKey
}

// ChangeType enumerates override change events.
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// ChangeEvent reports repository mutations to subscribers.
type ChangeEvent struct {
	Type     ChangeType
	Override Override
}

func newChangeEvent(changeType ChangeType, record *Override) ChangeEvent {
	evt := ChangeEvent{Type: changeType}
	if record != nil {
		evt.Override = *record
	}
	return evt
}
