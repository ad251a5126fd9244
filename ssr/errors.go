package ssr

import "fmt"

// ErrSsrTimeout is returned when a render exceeds its configured timeout.
type ErrSsrTimeout struct{ Budget string }

func (e *ErrSsrTimeout) Error() string {
	return fmt.Sprintf("ssr: render exceeded timeout budget %s", e.Budget)
}
