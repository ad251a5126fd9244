package module

import "fmt"

// ErrDuplicateModuleID is returned when two modules in the same tree share
// an id.
type ErrDuplicateModuleID struct{ ID string }

func (e *ErrDuplicateModuleID) Error() string {
	return fmt.Sprintf("module: duplicate module id %q", e.ID)
}

// ErrCircularModule is returned when a module's children form a cycle back
// to an ancestor.
type ErrCircularModule struct{ ID string }

func (e *ErrCircularModule) Error() string {
	return fmt.Sprintf("module: circular module dependency at %q", e.ID)
}

// ErrAlreadyBootstrapped is returned by a second Bootstrap call on the same
// App.
type ErrAlreadyBootstrapped struct{ ID string }

func (e *ErrAlreadyBootstrapped) Error() string {
	return fmt.Sprintf("module: app rooted at %q already bootstrapped", e.ID)
}

// ErrModuleNotFound is returned when GetModuleContext is asked for an id
// that is not part of the bootstrapped tree.
type ErrModuleNotFound struct{ ID string }

func (e *ErrModuleNotFound) Error() string {
	return fmt.Sprintf("module: no module %q in this app", e.ID)
}
