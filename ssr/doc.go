// Package ssr provides the per-render server context that
// renderToString-style collaborators thread through a component tree:
// collected data, deduplicated styles, and a timeout budget. Unlike the
// reactive and scope packages, which keep their "current" state on a
// package-level stack, SSR context rides on a stdlib context.Context:
// an SSR render is itself request-scoped and the stdlib type is the
// idiomatic way to carry that, propagate cancellation, and avoid leaking
// one request's context into another's goroutine.
package ssr
