package reconcile

import (
	"errors"
	"fmt"

	"github.com/ppiankov/coasterscan/internal/model"
)

var (
	// ErrNoWebsite means the entity has no website configured
	ErrNoWebsite = errors.New("no website configured")
	// ErrUnsupportedKind means the entity kind has no reconciliation profile
	ErrUnsupportedKind = errors.New("kind is not supported by reconciliation")
)

// ValidationError is a caller precondition failure. Nothing is fetched or
// written when it is returned.
type ValidationError struct {
	Kind model.Kind
	ID   string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.ID, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
