// Package config loads the small process-wide configuration record the
// rest of the core reads at startup: log level, devtools enablement,
// default SSR timeout, and the observability environment/release tags
// the observability package attaches to every reported error. Config is
// read once at process start; nothing in the core mutates it afterward.
package config
