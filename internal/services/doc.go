// Package services defines shared utilities consumed by the reconciliation
// engine and its artifact adapters.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, meeting slugs, and step names for
//     logging.
//   - Structured error markers plus the Wrap helper so failures can be
//     classified as run-fatal (schema, selector) or contained per meeting
//     (external services).
//
// Use these helpers when wiring new adapters so error handling and
// observability stay uniform across every step.
package services
