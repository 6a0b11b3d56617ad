package langfiles

import "errors"

var (
	// ErrBaseLocaleMissing signals a misconfigured path or base locale.
	ErrBaseLocaleMissing = errors.New("langfiles: base locale folder does not exist")
	// ErrFileNotFound is returned when a locale has no copy of a file.
	ErrFileNotFound = errors.New("langfiles: translation file not found")
	// ErrNotFlat marks files holding nested maps or lists.
	ErrNotFlat = errors.New("langfiles: translation file is not a flat mapping")
	// ErrWriteFailed wraps any failure while persisting a file.
	ErrWriteFailed = errors.New("langfiles: failed to write translation file")
	// ErrInvalidName rejects locale or file names that would escape the root.
	ErrInvalidName = errors.New("langfiles: invalid locale or file name")
	// ErrUnknownCodec is returned by CodecFor for unsupported formats.
	ErrUnknownCodec = errors.New("langfiles: unknown file format")
	// ErrInvalidUTF8 reports submitted messages that are not valid UTF-8.
	ErrInvalidUTF8 = errors.New("langfiles: messages are not valid UTF-8")
)
