package store

import "fmt"

// NotFoundError is returned when an entity doesn't exist in the store.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e NotFoundError) Error() string {
	if e.Key == "" {
		return e.Kind + " not found"
	}

	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}
