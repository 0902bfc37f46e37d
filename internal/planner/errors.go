package planner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/metalagman/goap/internal/goap"
)

var (
	// ErrMultipleUnknownConditions is matched by UnsupportedError.
	ErrMultipleUnknownConditions = errors.New("unsupported: multiple unknown conditions")
	// ErrUnresolvedCondition is returned when the resolver answers Unknown.
	ErrUnresolvedCondition = errors.New("condition could not be resolved")
)

// UnsupportedError reports a start state with more than one unknown
// condition. Only one unknown condition can be branched on.
type UnsupportedError struct {
	Conditions []goap.Condition
}

func (e *UnsupportedError) Error() string {
	names := make([]string, 0, len(e.Conditions))
	for _, c := range e.Conditions {
		names = append(names, string(c))
	}
	return fmt.Sprintf("%s: %s", ErrMultipleUnknownConditions, strings.Join(names, ", "))
}

func (e *UnsupportedError) Unwrap() error {
	return ErrMultipleUnknownConditions
}
