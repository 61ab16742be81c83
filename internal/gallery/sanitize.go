package gallery

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrInvalidName is returned when a username or person name cannot be used
// as a single path segment.
var ErrInvalidName = errors.New("invalid name")

const maxSegmentLen = 64

// ValidateName checks that name is safe to use as one directory segment
// under the storage roots. Usernames and person names come from request
// payloads, so traversal sequences and separator characters are rejected
// before any path is built from them. The user registry applies the same
// check at registration time so every account maps to a usable gallery
// directory.
func ValidateName(name string) error {
	if name == "" {
		return ErrInvalidName
	}
	if utf8.RuneCountInString(name) > maxSegmentLen {
		return ErrInvalidName
	}
	if name == "." || name == ".." {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return ErrInvalidName
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return ErrInvalidName
		}
	}
	return nil
}
