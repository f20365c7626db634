// Package ledger keeps a durable history of upkeep runs in SQLite.
//
// Every run gets a row in runs; every step outcome the reconciler reports is
// appended to outcomes through the Recorder observer. The ledger is
// append-mostly and never consulted for reconcile decisions: artifact state
// always comes from the stores themselves.
package ledger
