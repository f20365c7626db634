// Package logging builds the slog loggers autobot writes its run log with.
//
// Console output is one line per record, "ts LEVEL component: [meeting/step]
// msg k=v run=<id>", with the run, meeting and step taken from context by
// WithContext. JSON output keeps every field as a key. WarnWithContext and
// ErrorWithContext make sure warnings and errors carry an event type and a
// hint for the operator.
package logging
