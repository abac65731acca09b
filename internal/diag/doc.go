// Package diag defines the diagnostic model shared by manifest loading, role
// resolution and code generation.
//
// Diagnostic is the central record: a Severity, a compact numeric Code with a
// stable string form, a message, the manifest path it belongs to and the TOML
// key that triggered it. Bag aggregates diagnostics with a capacity limit and
// supports deterministic sorting and deduplication, so CLI output and golden
// tests never depend on traversal order.
//
// The package performs no IO and no formatting beyond the stable one-line
// rendering used for golden comparisons; presentation belongs to the CLI.
package diag
