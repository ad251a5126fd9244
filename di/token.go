package di

import (
	"fmt"
	"sync/atomic"
)

var tokenCounter uint64

// Token is a typed handle identifying a provider. Two tokens created with
// the same name are still distinct, preventing accidental collisions
// across unrelated packages that happen to pick the same label.
type Token[T any] struct {
	id   string
	name string
}

// NewToken creates a fresh token labelled name (used in error messages and
// devtools, not for equality; tokens compare by identity).
func NewToken[T any](name string) Token[T] {
	id := atomic.AddUint64(&tokenCounter, 1)
	return Token[T]{id: fmt.Sprintf("%s#%d", name, id), name: name}
}

// String returns the token's human-readable label.
func (t Token[T]) String() string { return t.name }
