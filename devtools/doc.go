// Package devtools publishes read-only snapshots of the running reactive
// graph and component tree (signals, effects, and instances) for an
// external inspector to consume, plus a serializer that makes arbitrary
// props safe to ship over JSON or MessagePack even when they contain
// cycles, times, or compiled regexes.
package devtools
