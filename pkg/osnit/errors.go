package osnit

import (
	"errors"
	"fmt"

	"github.com/osnit-shield/osnit/internal/utils"
)

// ErrUnavailable covers every way a resource can fail to produce a value:
// transport errors, non-2xx responses and undecodable bodies.
var ErrUnavailable = errors.New("resource unavailable")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Name       string
	StatusCode int
	Title      string // title of an HTML error page, if any
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: %s: status %d", e.Name, ErrUnavailable, e.StatusCode)
	if e.Title != "" {
		return msg + " (" + e.Title + ")"
	}
	if e.Body != "" {
		return msg + ": " + utils.Truncate(e.Body, 120)
	}
	return msg
}

func (e *StatusError) Unwrap() error { return ErrUnavailable }

func unavailable(name string, err error) error {
	return fmt.Errorf("%s: %w: %v", name, ErrUnavailable, err)
}
