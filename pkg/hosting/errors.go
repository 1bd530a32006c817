package hosting

import "fmt"

// APIError is a non-200 response from the hosting provider.
type APIError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hosting API %s returned %d: %s", e.Path, e.StatusCode, e.Body)
}
