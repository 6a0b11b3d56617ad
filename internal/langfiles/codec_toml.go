package langfiles

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// TOMLCodec stores files as top level TOML key/value pairs.
type TOMLCodec struct{}

func (TOMLCodec) Name() string      { return "toml" }
func (TOMLCodec) Extension() string { return ".toml" }

func (TOMLCodec) Decode(data []byte) (*Messages, error) {
	messages := &Messages{}
	if isEmptyDocument(data) {
		return messages, nil
	}

	var raw map[string]any
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("langfiles: decode toml: %w", err)
	}

	for _, key := range meta.Keys() {
		if len(key) != 1 {
			return nil, fmt.Errorf("%w: key %q", ErrNotFlat, key.String())
		}
		name := key[0]
		value, err := tomlScalar(raw[name])
		if err != nil {
			return nil, fmt.Errorf("%w: key %q", err, name)
		}
		messages.Set(name, value)
	}
	return messages, nil
}

func (TOMLCodec) DecodeTree(data []byte) (map[string]any, error) {
	tree := map[string]any{}
	if isEmptyDocument(data) {
		return tree, nil
	}
	if _, err := toml.Decode(string(data), &tree); err != nil {
		return nil, fmt.Errorf("langfiles: decode toml: %w", err)
	}
	return tree, nil
}

// Encode writes one line per key. Each pair is marshalled on its own so
// the file keeps the Messages order instead of the encoder's sorted order.
func (TOMLCodec) Encode(messages *Messages) ([]byte, error) {
	var buf bytes.Buffer
	for key, value := range messages.All() {
		line, err := toml.Marshal(map[string]string{key: value})
		if err != nil {
			return nil, fmt.Errorf("langfiles: encode toml %q: %w", key, err)
		}
		buf.Write(line)
	}
	return buf.Bytes(), nil
}

func tomlScalar(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	default:
		return "", ErrNotFlat
	}
}
