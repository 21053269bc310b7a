package model

import (
	"fmt"
	"strings"
)

// MissingKeyError is returned by Validate when a required key is absent
// from a decoded response.
type MissingKeyError struct {
	Path string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("key %q not found", e.Path)
}

// Validator is implemented by every decode target.
type Validator interface {
	Validate() error
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	if strings.HasPrefix(key, "[") {
		return prefix + key
	}
	return prefix + "." + key
}
