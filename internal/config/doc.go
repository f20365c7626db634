// Package config loads, normalizes, and validates autobot configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// KAGGLE_USERNAME and KAGGLE_KEY. The Config type centralizes every knob the
// CLI and the reconciliation engine need so group roots, the site checkout,
// and external service credentials are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
