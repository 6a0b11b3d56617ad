package langfiles

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// JSONCodec stores files as a single JSON object indented with two spaces.
type JSONCodec struct{}

func (JSONCodec) Name() string      { return "json" }
func (JSONCodec) Extension() string { return ".json" }

func (JSONCodec) Decode(data []byte) (*Messages, error) {
	return decodeFlatJSON(data)
}

func (JSONCodec) DecodeTree(data []byte) (map[string]any, error) {
	if isEmptyDocument(data) {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tree := map[string]any{}
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("langfiles: decode json: %w", err)
	}
	return tree, nil
}

func (JSONCodec) Encode(messages *Messages) ([]byte, error) {
	if messages.Len() == 0 {
		return []byte("{}\n"), nil
	}
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, key := range messages.Keys() {
		value, _ := messages.Get(key)
		buf.WriteString("  ")
		if err := writeJSONString(&buf, key); err != nil {
			return nil, err
		}
		buf.WriteString(": ")
		if err := writeJSONString(&buf, value); err != nil {
			return nil, err
		}
		if i < messages.Len()-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func decodeFlatJSON(data []byte) (*Messages, error) {
	messages := &Messages{}
	if isEmptyDocument(data) {
		return messages, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("langfiles: decode json: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: top level value is not an object", ErrNotFlat)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("langfiles: decode json: %w", err)
		}
		key, _ := keyTok.(string)

		valueTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("langfiles: decode json: %w", err)
		}
		switch v := valueTok.(type) {
		case json.Delim:
			return nil, fmt.Errorf("%w: key %q", ErrNotFlat, key)
		case string:
			messages.Set(key, v)
		case json.Number:
			messages.Set(key, v.String())
		case bool:
			messages.Set(key, fmt.Sprint(v))
		case nil:
			messages.Set(key, "")
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("langfiles: decode json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("langfiles: decode json: trailing data after object")
	}
	return messages, nil
}
