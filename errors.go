package relay

import (
	"errors"
	"fmt"

	"github.com/xraph/relay/state"
)

var (
	// State errors.
	ErrNotPending = errors.New("relay: container already prepared")
	ErrNotReady   = errors.New("relay: container not ready")

	// Resolution errors.
	ErrNotFound = errors.New("relay: not found")

	// Request errors.
	ErrAuth       = errors.New("relay: authentication failed")
	ErrActivation = errors.New("relay: service activation failed")
	ErrInternal   = errors.New("relay: internal error")
)

// StateError reports an entry point called while the container was in a
// state that cannot admit it. The call fails, the state is left unchanged,
// and the container remains usable.
type StateError struct {
	Op    string
	State state.State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("relay: %s rejected: container is %s", e.Op, e.State)
}

func (e *StateError) Unwrap() error { return ErrNotReady }

// NotFoundError reports a failed route resolution along with the key that
// missed. Kind names the resolution step: "application", "service",
// "method" or "route".
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("relay: %s %q not found", e.Kind, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
