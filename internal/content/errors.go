package content

import "errors"

var (
	// ErrNotFound is returned when a referenced content file does not exist.
	ErrNotFound = errors.New("content: file not found")

	// ErrParse wraps a JSON syntax or shape problem in a stored file.
	ErrParse = errors.New("content: malformed JSON")

	// ErrAlreadyExists is returned by Create when the target path is taken.
	ErrAlreadyExists = errors.New("content: file already exists")

	// ErrProtected is returned when deleting an index artifact such as a
	// *_thumbs.json file through the per-item delete path.
	ErrProtected = errors.New("content: protected resource")

	// ErrInvalidInput is returned when a record fails validation before any
	// write happens. The on-disk file is left untouched.
	ErrInvalidInput = errors.New("content: invalid input")
)
