// Package main hosts the autobot CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration and the target group and
// semester, then hands off to internal packages: bootstrap for
// semester-setup, upkeep for semester-upkeep, and ledger for history.
// Console progress and summary tables are rendered here; everything else
// lives behind internal interfaces.
package main
