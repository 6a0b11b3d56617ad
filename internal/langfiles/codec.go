package langfiles

import (
	"fmt"
	"strings"
)

// Codec converts between file bytes and flat Messages.
type Codec interface {
	Name() string
	Extension() string
	// Decode returns ErrNotFlat when the document holds nested values.
	Decode(data []byte) (*Messages, error)
	// DecodeTree returns the document as generic nested values.
	DecodeTree(data []byte) (map[string]any, error)
	// Encode must be deterministic for equal input.
	Encode(messages *Messages) ([]byte, error)
}

// CodecFor resolves a codec by format name. An empty name selects JSON.
func CodecFor(format string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return JSONCodec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	case "toml":
		return TOMLCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, format)
	}
}

func isEmptyDocument(data []byte) bool {
	return strings.TrimSpace(string(data)) == ""
}
