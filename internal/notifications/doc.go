// Package notifications delivers run events via ntfy.
//
// NewService publishes to the topic configured in config.toml and degrades to
// a no-op when no topic is set. Callers depend only on the Service interface.
package notifications
